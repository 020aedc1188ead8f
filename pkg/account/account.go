package account

import (
	"time"

	"github.com/cloudeforte/accounts/pkg/kernel"
)

// Account is a registered credential holder. Verified gates login: an
// account exists from registration onward but cannot authenticate until
// its email challenge has been confirmed.
type Account struct {
	ID           kernel.AccountID `json:"id" db:"id"`
	Email        string           `json:"email" db:"email"`
	PasswordHash string           `json:"-" db:"password_hash"`
	Verified     bool             `json:"verified" db:"verified"`

	CompanyName        string `json:"company_name" db:"company_name"`
	Contact            string `json:"contact" db:"contact"`
	CompanySize        string `json:"company_size" db:"company_size"`
	BusinessProfession string `json:"business_profession" db:"business_profession"`
	RequestDemo        bool   `json:"request_demo" db:"request_demo"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// TokenPair is the result of a successful authentication.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
