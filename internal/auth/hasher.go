package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const maxPasswordBytes = 72

// Hasher produces and checks salted bcrypt password hashes.
type Hasher struct {
	cost      int
	dummyHash []byte
}

// NewHasher constructs a Hasher with the given bcrypt work factor.
func NewHasher(cost int) (*Hasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("notekeep-dummy-password"), cost)
	if err != nil {
		return nil, err
	}
	return &Hasher{cost: cost, dummyHash: dummy}, nil
}

// Cost returns the configured work factor.
func (h *Hasher) Cost() int {
	return h.cost
}

// Hash returns a bcrypt hash of plaintext with a fresh random salt.
func (h *Hasher) Hash(plaintext string) (string, error) {
	if len(plaintext) == 0 || len(plaintext) > maxPasswordBytes {
		return "", ErrInvalidPassword
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify reports whether plaintext matches hashed.
func (h *Hasher) Verify(plaintext, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plaintext)) == nil
}

// Burn spends the same work as a failed Verify. Used when there is no stored
// hash to compare against, so that response time does not reveal whether an
// account exists.
func (h *Hasher) Burn(plaintext string) {
	_ = bcrypt.CompareHashAndPassword(h.dummyHash, []byte(plaintext))
}
