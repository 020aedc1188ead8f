package token

import (
	"net/http"

	"github.com/cloudeforte/accounts/pkg/errx"
)

var tokenErrors = errx.NewRegistry("TOKEN")

var (
	CodeTokenInvalid  = tokenErrors.Register("INVALID", errx.TypeAuthorization, http.StatusUnauthorized, "Invalid token")
	CodeTokenExpired  = tokenErrors.Register("EXPIRED", errx.TypeAuthorization, http.StatusUnauthorized, "Token has expired")
	CodeMissingSecret = tokenErrors.Register("MISSING_SECRET", errx.TypeInternal, http.StatusInternalServerError, "Token signing secret not configured")
	CodeSharedSecret  = tokenErrors.Register("SHARED_SECRET", errx.TypeInternal, http.StatusInternalServerError, "Access and refresh secrets must differ")
	CodeSigningFailed = tokenErrors.Register("SIGNING_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Token signing failed")
)

// ErrInvalidToken returns the invalid-token error.
func ErrInvalidToken() *errx.Error { return tokenErrors.New(CodeTokenInvalid) }

// ErrExpiredToken returns the expired-token error.
func ErrExpiredToken() *errx.Error { return tokenErrors.New(CodeTokenExpired) }

// ErrInvalidRefreshToken returns the invalid-token error worded for the
// refresh surface.
func ErrInvalidRefreshToken() *errx.Error {
	return tokenErrors.NewWithMessage(CodeTokenInvalid, "Invalid refresh token")
}
