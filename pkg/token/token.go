package token

import (
	"errors"
	"time"

	"github.com/cloudeforte/accounts/pkg/kernel"
	"github.com/golang-jwt/jwt/v5"
)

// Kind distinguishes the two token families. Each kind is signed with its
// own secret and carries its kind as a claim, so a refresh token can never
// pass verification as an access token and vice versa.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

// Claims are the JWT claims minted for both token kinds.
type Claims struct {
	AccountID kernel.AccountID `json:"account_id"`
	Kind      Kind             `json:"kind"`
	jwt.RegisteredClaims
}

// Config configures the issuer.
type Config struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
}

// Issuer mints and verifies signed access and refresh tokens. It is
// stateless; both methods are safe for concurrent use.
type Issuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	issuer        string
}

// NewIssuer creates a token issuer from config, applying the service
// defaults for any zero TTL.
func NewIssuer(cfg Config) (*Issuer, error) {
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, tokenErrors.New(CodeMissingSecret)
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		return nil, tokenErrors.New(CodeSharedSecret)
	}
	if cfg.AccessTTL == 0 {
		cfg.AccessTTL = 15 * time.Minute
	}
	if cfg.RefreshTTL == 0 {
		cfg.RefreshTTL = 7 * 24 * time.Hour
	}
	if cfg.Issuer == "" {
		cfg.Issuer = "cloudeforte-accounts"
	}

	return &Issuer{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
		issuer:        cfg.Issuer,
	}, nil
}

// IssueAccessToken mints a short-lived access token for the account.
func (i *Issuer) IssueAccessToken(accountID kernel.AccountID) (string, error) {
	return i.issue(accountID, KindAccess, i.accessTTL, i.accessSecret)
}

// IssueRefreshToken mints a long-lived refresh token for the account.
func (i *Issuer) IssueRefreshToken(accountID kernel.AccountID) (string, error) {
	return i.issue(accountID, KindRefresh, i.refreshTTL, i.refreshSecret)
}

func (i *Issuer) issue(accountID kernel.AccountID, kind Kind, ttl time.Duration, secret []byte) (string, error) {
	now := time.Now()

	claims := Claims{
		AccountID: accountID,
		Kind:      kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.issuer,
			Subject:   accountID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", tokenErrors.NewWithCause(CodeSigningFailed, err)
	}
	return signed, nil
}

// Verify parses a token and checks it against the secret for the expected
// kind. A token of the wrong kind fails signature verification (different
// secret) and, as a second line of defense, the kind claim check.
func (i *Issuer) Verify(tokenStr string, kind Kind) (*Claims, error) {
	secret := i.accessSecret
	if kind == KindRefresh {
		secret = i.refreshSecret
	}

	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, tokenErrors.New(CodeTokenExpired)
		}
		return nil, tokenErrors.NewWithCause(CodeTokenInvalid, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, tokenErrors.New(CodeTokenInvalid)
	}
	if claims.Kind != kind {
		return nil, tokenErrors.New(CodeTokenInvalid).WithDetail("reason", "wrong token kind")
	}
	if claims.AccountID.IsEmpty() {
		return nil, tokenErrors.New(CodeTokenInvalid).WithDetail("reason", "missing account id")
	}

	return claims, nil
}
