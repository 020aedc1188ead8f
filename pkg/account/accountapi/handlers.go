package accountapi

import (
	"github.com/cloudeforte/accounts/pkg/account"
	"github.com/cloudeforte/accounts/pkg/account/accountsrv"
	"github.com/cloudeforte/accounts/pkg/kernel"
	"github.com/cloudeforte/accounts/pkg/token"
	"github.com/gofiber/fiber/v2"
)

// Handlers exposes the account lifecycle over HTTP.
type Handlers struct {
	svc     *accountsrv.Service
	auth    *token.Middleware
	echoOTP bool
}

// NewHandlers creates the HTTP handlers. When echoOTP is true the
// register/resend/forgot responses include the issued code; this exists
// for test environments only.
func NewHandlers(svc *accountsrv.Service, auth *token.Middleware, echoOTP bool) *Handlers {
	return &Handlers{svc: svc, auth: auth, echoOTP: echoOTP}
}

// RegisterRoutes mounts the account routes under /api/v1/accounts.
func (h *Handlers) RegisterRoutes(app fiber.Router) {
	grp := app.Group("/api/v1/accounts")

	grp.Post("/register", h.register)
	grp.Post("/verify-otp", h.verifyOtp)
	grp.Post("/resend-otp", h.resendOtp)
	grp.Post("/login", h.login)
	grp.Post("/refresh-token", h.refreshToken)
	grp.Post("/forgot-password", h.forgotPassword)
	grp.Post("/verify-reset-otp", h.verifyResetOtp)
	grp.Post("/reset-password", h.resetPassword)

	grp.Get("/me", h.auth.Authenticate(), h.me)
}

func (h *Handlers) register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return reqErrors.NewWithCause(CodeInvalidPayload, err)
	}
	if err := req.validate(); err != nil {
		return err
	}

	acc, challenge, err := h.svc.Register(c.Context(), accountsrv.RegisterInput{
		Email:              req.Email,
		Password:           req.Password,
		CompanyName:        req.CompanyName,
		Contact:            req.Contact,
		CompanySize:        req.CompanySize,
		BusinessProfession: req.BusinessProfession,
		RequestDemo:        req.RequestDemo,
	})
	if err != nil {
		return err
	}

	data := fiber.Map{"id": acc.ID, "email": acc.Email}
	if h.echoOTP && challenge != nil {
		data["otp"] = challenge.Code
	}
	return respond(c, fiber.StatusCreated, "Registration successful. Please verify your email.", data)
}

func (h *Handlers) verifyOtp(c *fiber.Ctx) error {
	var req verifyOtpRequest
	if err := c.BodyParser(&req); err != nil {
		return reqErrors.NewWithCause(CodeInvalidPayload, err)
	}
	if err := req.validate(); err != nil {
		return err
	}

	if _, err := h.svc.VerifyOtp(c.Context(), req.Email, req.Otp); err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Email verified successfully", nil)
}

func (h *Handlers) resendOtp(c *fiber.Ctx) error {
	var req emailRequest
	if err := c.BodyParser(&req); err != nil {
		return reqErrors.NewWithCause(CodeInvalidPayload, err)
	}
	if err := req.validate(); err != nil {
		return err
	}

	challenge, err := h.svc.ResendOtp(c.Context(), req.Email)
	if err != nil {
		return err
	}

	var data fiber.Map
	if h.echoOTP {
		data = fiber.Map{"otp": challenge.Code}
	}
	return respond(c, fiber.StatusOK, "New OTP sent successfully", data)
}

func (h *Handlers) login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return reqErrors.NewWithCause(CodeInvalidPayload, err)
	}
	if err := req.validate(); err != nil {
		return err
	}

	result, err := h.svc.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "", fiber.Map{
		"accessToken":  result.Tokens.AccessToken,
		"refreshToken": result.Tokens.RefreshToken,
		"isVerified":   result.Verified,
	})
}

func (h *Handlers) refreshToken(c *fiber.Ctx) error {
	var req refreshTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return reqErrors.NewWithCause(CodeInvalidPayload, err)
	}
	if err := req.validate(); err != nil {
		return err
	}

	accessToken, err := h.svc.RefreshAccessToken(c.Context(), req.RefreshToken)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "", fiber.Map{"accessToken": accessToken})
}

func (h *Handlers) forgotPassword(c *fiber.Ctx) error {
	var req emailRequest
	if err := c.BodyParser(&req); err != nil {
		return reqErrors.NewWithCause(CodeInvalidPayload, err)
	}
	if err := req.validate(); err != nil {
		return err
	}

	challenge, err := h.svc.ForgotPassword(c.Context(), req.Email)
	if err != nil {
		return err
	}

	var data fiber.Map
	if h.echoOTP {
		data = fiber.Map{"otp": challenge.Code}
	}
	return respond(c, fiber.StatusOK, "Password reset OTP sent to your email", data)
}

func (h *Handlers) verifyResetOtp(c *fiber.Ctx) error {
	var req verifyOtpRequest
	if err := c.BodyParser(&req); err != nil {
		return reqErrors.NewWithCause(CodeInvalidPayload, err)
	}
	if err := req.validate(); err != nil {
		return err
	}

	if err := h.svc.VerifyOtpForReset(c.Context(), req.Email, req.Otp); err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "OTP verified successfully", nil)
}

func (h *Handlers) resetPassword(c *fiber.Ctx) error {
	var req resetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return reqErrors.NewWithCause(CodeInvalidPayload, err)
	}
	if err := req.validate(); err != nil {
		return err
	}

	acc, err := h.svc.ResetPassword(c.Context(), req.Email, req.NewPassword)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Password reset successfully", fiber.Map{
		"isVerified": acc.Verified,
	})
}

func (h *Handlers) me(c *fiber.Ctx) error {
	id, ok := c.Locals(string(kernel.AccountContextKey)).(kernel.AccountID)
	if !ok || id.IsEmpty() {
		return token.ErrInvalidToken()
	}

	acc, err := h.svc.Profile(c.Context(), id)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "", fiber.Map{"account": publicAccount(acc)})
}

func publicAccount(acc *account.Account) fiber.Map {
	return fiber.Map{
		"id":                 acc.ID,
		"email":              acc.Email,
		"verified":           acc.Verified,
		"companyName":        acc.CompanyName,
		"contact":            acc.Contact,
		"companySize":        acc.CompanySize,
		"businessProfession": acc.BusinessProfession,
		"requestDemo":        acc.RequestDemo,
		"createdAt":          acc.CreatedAt,
	}
}

func respond(c *fiber.Ctx, status int, message string, data fiber.Map) error {
	body := fiber.Map{"success": true}
	if message != "" {
		body["message"] = message
	}
	if data != nil {
		body["data"] = data
	}
	return c.Status(status).JSON(body)
}
