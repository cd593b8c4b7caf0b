package services

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type seedFile struct {
	Users []SeedAccount `yaml:"users"`
}

// LoadSeedFile reads the accounts listed under "users" in a YAML file.
// A missing role defaults to user.
func LoadSeedFile(path string) ([]SeedAccount, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sf seedFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	for i := range sf.Users {
		if sf.Users[i].Role == "" {
			sf.Users[i].Role = "user"
		}
	}
	return sf.Users, nil
}
