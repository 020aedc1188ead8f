package accountapi

import (
	"net/http"
	"net/mail"
	"strings"
	"unicode"

	"github.com/cloudeforte/accounts/pkg/errx"
)

var reqErrors = errx.NewRegistry("REQUEST")

var CodeInvalidPayload = reqErrors.Register("INVALID_PAYLOAD", errx.TypeValidation, http.StatusBadRequest, "Invalid request payload")

func errInvalid(field, reason string) *errx.Error {
	return reqErrors.NewWithMessage(CodeInvalidPayload, reason).WithDetail("field", field)
}

type registerRequest struct {
	CompanyName        string `json:"companyName"`
	Contact            string `json:"contact"`
	Email              string `json:"email"`
	Password           string `json:"password"`
	CompanySize        string `json:"companySize"`
	BusinessProfession string `json:"businessProfession"`
	RequestDemo        bool   `json:"requestDemo"`
}

func (r *registerRequest) validate() error {
	r.CompanyName = strings.TrimSpace(r.CompanyName)
	r.Contact = strings.TrimSpace(r.Contact)
	r.CompanySize = strings.TrimSpace(r.CompanySize)
	r.BusinessProfession = strings.TrimSpace(r.BusinessProfession)

	if r.CompanyName == "" {
		return errInvalid("companyName", "Company name is required")
	}
	if r.Contact == "" {
		return errInvalid("contact", "Contact number is required")
	}
	if err := validateEmail(&r.Email); err != nil {
		return err
	}
	return validatePassword("password", r.Password)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *loginRequest) validate() error {
	if err := validateEmail(&r.Email); err != nil {
		return err
	}
	if strings.TrimSpace(r.Password) == "" {
		return errInvalid("password", "Password is required")
	}
	return nil
}

type verifyOtpRequest struct {
	Email string `json:"email"`
	Otp   string `json:"otp"`
}

func (r *verifyOtpRequest) validate() error {
	if err := validateEmail(&r.Email); err != nil {
		return err
	}
	r.Otp = strings.TrimSpace(r.Otp)
	return validateOtp(r.Otp)
}

type emailRequest struct {
	Email string `json:"email"`
}

func (r *emailRequest) validate() error {
	return validateEmail(&r.Email)
}

type refreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (r *refreshTokenRequest) validate() error {
	r.RefreshToken = strings.TrimSpace(r.RefreshToken)
	if r.RefreshToken == "" {
		return errInvalid("refreshToken", "Refresh token is required")
	}
	return nil
}

type resetPasswordRequest struct {
	Email       string `json:"email"`
	NewPassword string `json:"newPassword"`
}

func (r *resetPasswordRequest) validate() error {
	if err := validateEmail(&r.Email); err != nil {
		return err
	}
	return validatePassword("newPassword", r.NewPassword)
}

func validateEmail(email *string) error {
	*email = strings.TrimSpace(*email)
	if *email == "" {
		return errInvalid("email", "Email is required")
	}
	if _, err := mail.ParseAddress(*email); err != nil {
		return errInvalid("email", "Please enter a valid email")
	}
	return nil
}

// validatePassword requires at least 8 characters with an uppercase
// letter, a lowercase letter, a digit and a special character.
func validatePassword(field, password string) error {
	if strings.TrimSpace(password) == "" {
		return errInvalid(field, "Password is required")
	}
	if len(password) < 8 {
		return errInvalid(field, "Password must be at least 8 characters long")
	}

	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune("@$!%*?&#^()_-+=", r):
			special = true
		}
	}
	if !upper || !lower || !digit || !special {
		return errInvalid(field, "Password must contain at least one uppercase letter, one lowercase letter, one number and one special character")
	}
	return nil
}

func validateOtp(code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return errInvalid("otp", "OTP is required")
	}
	if len(code) != 6 {
		return errInvalid("otp", "OTP must be 6 digits")
	}
	for _, r := range code {
		if !unicode.IsDigit(r) {
			return errInvalid("otp", "OTP must contain only numbers")
		}
	}
	return nil
}
