package accountinfra

import (
	"github.com/cloudeforte/accounts/pkg/account"
	"golang.org/x/crypto/bcrypt"
)

// BcryptHasher implements account.PasswordHasher with bcrypt.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a hasher with the given cost. A cost outside
// bcrypt's valid range falls back to the default.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", account.ErrHashing(err)
	}
	return string(hash), nil
}

func (h *BcryptHasher) Compare(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return account.ErrInvalidCredentials()
	}
	return nil
}
