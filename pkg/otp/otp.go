package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// Purpose is the intent a challenge is scoped to. A challenge issued for
// one purpose is never acceptable for another; the purpose is part of the
// store key, so cross-use is structurally impossible.
type Purpose string

const (
	PurposeEmailVerification Purpose = "EMAIL_VERIFICATION"
	PurposePasswordReset     Purpose = "PASSWORD_RESET"
)

// String returns the purpose identifier.
func (p Purpose) String() string { return string(p) }

// Challenge is a one-time code tied to an identity and a purpose.
// Verified means this specific challenge was successfully matched; it is
// distinct from the account's verified flag and gates the privileged
// follow-up action (password reset).
type Challenge struct {
	ID        string    `json:"id"`
	Identity  string    `json:"identity"`
	Code      string    `json:"code"`
	Purpose   Purpose   `json:"purpose"`
	Verified  bool      `json:"verified"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// IsExpired reports whether the challenge is past its expiry at now.
func (c *Challenge) IsExpired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// IsLive reports whether the challenge may still be matched at now.
func (c *Challenge) IsLive(now time.Time) bool {
	return !c.IsExpired(now)
}

// GenerateCode generates a cryptographically secure numeric code of the
// given length, zero padded.
func GenerateCode(length int) (string, error) {
	if length < 4 || length > 10 {
		return "", fmt.Errorf("otp: invalid code length %d", length)
	}

	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length)), nil)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(fmt.Sprintf("%%0%dd", length), n), nil
}
