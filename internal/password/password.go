// Package password hashes and verifies user passwords with bcrypt.
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor applied to new hashes.
const DefaultCost = 10

// ErrMismatch is returned when a password does not match its hash.
var ErrMismatch = errors.New("password does not match")

// Hasher produces and checks bcrypt password hashes.
type Hasher struct {
	cost  int
	dummy []byte
}

// NewHasher creates a hasher with the given cost. Costs outside bcrypt's range fall back to DefaultCost.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	dummy, _ := bcrypt.GenerateFromPassword([]byte("currencyguard-dummy-password"), cost)
	return &Hasher{cost: cost, dummy: dummy}
}

// Hash returns the salted bcrypt hash of plain.
func (h *Hasher) Hash(plain string) ([]byte, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	return hash, nil
}

// Compare checks plain against hash.
func (h *Hasher) Compare(hash []byte, plain string) error {
	err := bcrypt.CompareHashAndPassword(hash, []byte(plain))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrMismatch
	}
	if err != nil {
		return fmt.Errorf("failed to compare password: %w", err)
	}
	return nil
}

// CompareDummy spends the same time as a real comparison and always fails.
// Used when the account does not exist so that timing does not reveal it.
func (h *Hasher) CompareDummy(plain string) error {
	_ = bcrypt.CompareHashAndPassword(h.dummy, []byte(plain))
	return ErrMismatch
}
