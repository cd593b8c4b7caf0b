/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/notekeep/apiserver/config"
	"github.com/notekeep/apiserver/internal/auth"
	"github.com/notekeep/apiserver/internal/db"
	"github.com/notekeep/apiserver/internal/services"
	"github.com/notekeep/apiserver/internal/store"
	"github.com/spf13/cobra"
)

var seedFilePath string

// seedCmd represents the seed command.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Provision data out of band",
}

var seedUsersCmd = &cobra.Command{
	Use:   "users",
	Short: "Create accounts listed in a YAML file",
	Long: `Create accounts listed in a YAML file. Accounts whose email is
already registered are skipped. Example file:

	users:
	  - name: Root
	    email: root@example.com
	    password: changeme
	    role: admin
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		if err := cfg.Validate(); err != nil {
			return err
		}
		log := newLogger(cfg)
		ctx := cmd.Context()

		accounts, err := services.LoadSeedFile(seedFilePath)
		if err != nil {
			return fmt.Errorf("load seed file: %w", err)
		}

		conn, err := db.Open(ctx, cfg.Database)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer conn.Close()

		hasher, err := auth.NewHasher(cfg.Auth.BcryptCost)
		if err != nil {
			return err
		}
		codec, err := auth.NewTokenCodec([]byte(cfg.Auth.JWTSecret))
		if err != nil {
			return err
		}
		users := store.NewUserRepository(conn)
		userService := services.NewUserService(users, auth.NewAuthenticator(users, hasher, codec, cfg.Auth.TokenTTL), nil)

		var created, skipped int
		for _, acct := range accounts {
			ok, err := userService.Seed(ctx, acct)
			if err != nil {
				return fmt.Errorf("seed %s: %w", acct.Email, err)
			}
			if ok {
				created++
				log.Info(ctx, "account created", "email", acct.Email, "role", acct.Role)
			} else {
				skipped++
			}
		}
		log.Info(ctx, "seeding finished", "created", created, "skipped", skipped)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.AddCommand(seedUsersCmd)

	seedUsersCmd.Flags().StringVarP(&seedFilePath, "file", "f", "users.yaml", "YAML file listing the accounts")
}
