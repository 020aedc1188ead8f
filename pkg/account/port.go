package account

import (
	"context"

	"github.com/cloudeforte/accounts/pkg/kernel"
)

// Repository persists accounts. Emails are stored normalized; lookups take
// the raw identity and normalize internally.
type Repository interface {
	Create(ctx context.Context, acc *Account) error
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByID(ctx context.Context, id kernel.AccountID) (*Account, error)
	MarkVerified(ctx context.Context, email string) error
	UpdatePasswordHash(ctx context.Context, email, passwordHash string) error
}

// PasswordHasher hashes and checks credentials.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}
