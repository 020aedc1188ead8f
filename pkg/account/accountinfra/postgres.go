package accountinfra

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/cloudeforte/accounts/pkg/account"
	"github.com/cloudeforte/accounts/pkg/kernel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// PostgresAccountRepository is the PostgreSQL implementation of
// account.Repository.
type PostgresAccountRepository struct {
	db *sqlx.DB
}

// NewPostgresAccountRepository creates a new repository instance.
func NewPostgresAccountRepository(db *sqlx.DB) account.Repository {
	return &PostgresAccountRepository{db: db}
}

// Create inserts a new account row. The unique index on the normalized
// email makes concurrent duplicate registrations lose here with 23505.
func (r *PostgresAccountRepository) Create(ctx context.Context, acc *account.Account) error {
	acc.Email = kernel.NormalizeIdentity(acc.Email)

	query := `
		INSERT INTO accounts (
			id, email, password_hash, verified,
			company_name, contact, company_size, business_profession, request_demo,
			created_at, updated_at
		) VALUES (
			:id, :email, :password_hash, :verified,
			:company_name, :contact, :company_size, :business_profession, :request_demo,
			:created_at, :updated_at
		)`

	_, err := r.db.NamedExecContext(ctx, query, acc)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" { // unique_violation
			return account.ErrAlreadyExists()
		}
		return account.ErrRepository(err)
	}
	return nil
}

// FindByEmail looks an account up by its normalized email.
func (r *PostgresAccountRepository) FindByEmail(ctx context.Context, email string) (*account.Account, error) {
	var acc account.Account
	query := `SELECT * FROM accounts WHERE email = $1`

	err := r.db.GetContext(ctx, &acc, query, kernel.NormalizeIdentity(email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, account.ErrNotFound()
		}
		return nil, account.ErrRepository(err)
	}
	return &acc, nil
}

// FindByID looks an account up by its id.
func (r *PostgresAccountRepository) FindByID(ctx context.Context, id kernel.AccountID) (*account.Account, error) {
	var acc account.Account
	query := `SELECT * FROM accounts WHERE id = $1`

	err := r.db.GetContext(ctx, &acc, query, id.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, account.ErrNotFound()
		}
		return nil, account.ErrRepository(err)
	}
	return &acc, nil
}

// MarkVerified flips the verified flag for the account with this email.
func (r *PostgresAccountRepository) MarkVerified(ctx context.Context, email string) error {
	query := `UPDATE accounts SET verified = true, updated_at = $2 WHERE email = $1`
	return r.exec(ctx, query, kernel.NormalizeIdentity(email), time.Now())
}

// UpdatePasswordHash replaces the stored credential for this email.
func (r *PostgresAccountRepository) UpdatePasswordHash(ctx context.Context, email, passwordHash string) error {
	query := `UPDATE accounts SET password_hash = $2, updated_at = $3 WHERE email = $1`
	return r.exec(ctx, query, kernel.NormalizeIdentity(email), passwordHash, time.Now())
}

func (r *PostgresAccountRepository) exec(ctx context.Context, query string, args ...interface{}) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return account.ErrRepository(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return account.ErrRepository(err)
	}
	if rowsAffected == 0 {
		return account.ErrNotFound()
	}
	return nil
}
