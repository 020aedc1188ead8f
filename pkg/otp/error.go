package otp

import (
	"net/http"

	"github.com/cloudeforte/accounts/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("OTP")

var (
	// CodeInvalidOrExpired deliberately covers wrong-code and expired-code:
	// the caller must not be able to tell which one happened.
	CodeInvalidOrExpired = ErrRegistry.Register("INVALID_OR_EXPIRED", errx.TypeValidation, http.StatusBadRequest, "Invalid or expired OTP")
	CodeNotVerified      = ErrRegistry.Register("NOT_VERIFIED", errx.TypeBusiness, http.StatusUnprocessableEntity, "OTP has not been verified")
	CodeStoreUnavailable = ErrRegistry.Register("STORE_UNAVAILABLE", errx.TypeInternal, http.StatusInternalServerError, "Challenge store unavailable")
	CodeGeneration       = ErrRegistry.Register("GENERATION_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Failed to generate OTP code")
)

func ErrInvalidOrExpired() *errx.Error { return ErrRegistry.New(CodeInvalidOrExpired) }
func ErrNotVerified() *errx.Error      { return ErrRegistry.New(CodeNotVerified) }
func ErrStoreUnavailable(cause error) *errx.Error {
	return ErrRegistry.NewWithCause(CodeStoreUnavailable, cause)
}
func ErrGeneration(cause error) *errx.Error {
	return ErrRegistry.NewWithCause(CodeGeneration, cause)
}
