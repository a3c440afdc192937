package security

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const MinBcryptCost = 10

type PasswordHasher struct {
	cost int
}

func NewPasswordHasher(cost int) PasswordHasher {
	if cost < MinBcryptCost {
		cost = MinBcryptCost
	}
	return PasswordHasher{cost: cost}
}

func (h PasswordHasher) Hash(plain string) ([]byte, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return hash, nil
}

// HashPassword hashes with the minimum accepted cost.
func HashPassword(plain string) ([]byte, error) {
	return NewPasswordHasher(MinBcryptCost).Hash(plain)
}

func VerifyPassword(plain string, hash []byte) bool {
	return bcrypt.CompareHashAndPassword(hash, []byte(plain)) == nil
}
