package account

import (
	"net/http"

	"github.com/cloudeforte/accounts/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("ACCOUNT")

var (
	CodeAlreadyExists      = ErrRegistry.Register("ALREADY_EXISTS", errx.TypeConflict, http.StatusBadRequest, "User already exists")
	CodeNotFound           = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "User not found")
	CodeInvalidCredentials = ErrRegistry.Register("INVALID_CREDENTIALS", errx.TypeAuthorization, http.StatusUnauthorized, "Invalid credentials")
	CodeNotVerified        = ErrRegistry.Register("NOT_VERIFIED", errx.TypeAuthorization, http.StatusForbidden, "Please verify your email first")
	CodeAlreadyVerified    = ErrRegistry.Register("ALREADY_VERIFIED", errx.TypeBusiness, http.StatusBadRequest, "User is already verified")
	CodeRepository         = ErrRegistry.Register("REPOSITORY", errx.TypeInternal, http.StatusInternalServerError, "Account storage failure")
	CodeHashing            = ErrRegistry.Register("HASHING", errx.TypeInternal, http.StatusInternalServerError, "Password hashing failure")
)

func ErrAlreadyExists() *errx.Error      { return ErrRegistry.New(CodeAlreadyExists) }
func ErrNotFound() *errx.Error           { return ErrRegistry.New(CodeNotFound) }
func ErrInvalidCredentials() *errx.Error { return ErrRegistry.New(CodeInvalidCredentials) }
func ErrNotVerified() *errx.Error        { return ErrRegistry.New(CodeNotVerified) }
func ErrAlreadyVerified() *errx.Error    { return ErrRegistry.New(CodeAlreadyVerified) }

func ErrRepository(cause error) *errx.Error { return ErrRegistry.NewWithCause(CodeRepository, cause) }
func ErrHashing(cause error) *errx.Error    { return ErrRegistry.NewWithCause(CodeHashing, cause) }
