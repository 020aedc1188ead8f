package accountapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/cloudeforte/accounts/pkg/account"
	"github.com/cloudeforte/accounts/pkg/account/accountapi"
	"github.com/cloudeforte/accounts/pkg/account/accountinfra"
	"github.com/cloudeforte/accounts/pkg/account/accountsrv"
	"github.com/cloudeforte/accounts/pkg/config"
	"github.com/cloudeforte/accounts/pkg/errx"
	"github.com/cloudeforte/accounts/pkg/kernel"
	"github.com/cloudeforte/accounts/pkg/otp"
	"github.com/cloudeforte/accounts/pkg/otp/otpinfra"
	"github.com/cloudeforte/accounts/pkg/otp/otpsrv"
	"github.com/cloudeforte/accounts/pkg/token"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

type memRepo struct {
	mu      sync.Mutex
	byEmail map[string]*account.Account
	byID    map[kernel.AccountID]*account.Account
}

func newMemRepo() *memRepo {
	return &memRepo{
		byEmail: make(map[string]*account.Account),
		byID:    make(map[kernel.AccountID]*account.Account),
	}
}

func (r *memRepo) Create(_ context.Context, acc *account.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[acc.Email]; ok {
		return account.ErrAlreadyExists()
	}
	cp := *acc
	r.byEmail[acc.Email] = &cp
	r.byID[acc.ID] = &cp
	return nil
}

func (r *memRepo) FindByEmail(_ context.Context, email string) (*account.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	acc, ok := r.byEmail[kernel.NormalizeIdentity(email)]
	if !ok {
		return nil, account.ErrNotFound()
	}
	cp := *acc
	return &cp, nil
}

func (r *memRepo) FindByID(_ context.Context, id kernel.AccountID) (*account.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	acc, ok := r.byID[id]
	if !ok {
		return nil, account.ErrNotFound()
	}
	cp := *acc
	return &cp, nil
}

func (r *memRepo) MarkVerified(_ context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	acc, ok := r.byEmail[kernel.NormalizeIdentity(email)]
	if !ok {
		return account.ErrNotFound()
	}
	acc.Verified = true
	return nil
}

func (r *memRepo) UpdatePasswordHash(_ context.Context, email, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	acc, ok := r.byEmail[kernel.NormalizeIdentity(email)]
	if !ok {
		return account.ErrNotFound()
	}
	acc.PasswordHash = hash
	return nil
}

type noopNotifier struct{}

func (noopNotifier) SendCode(context.Context, string, string, otp.Purpose) error { return nil }

func testErrorHandler(c *fiber.Ctx, err error) error {
	var domainErr *errx.Error
	if errors.As(err, &domainErr) {
		return c.Status(domainErr.HTTPStatus).JSON(fiber.Map{
			"success": false,
			"message": domainErr.Message,
			"code":    domainErr.Code,
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"success": false,
		"message": "An unexpected error occurred",
	})
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	issuer, err := token.NewIssuer(token.Config{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
	})
	if err != nil {
		t.Fatalf("NewIssuer failed: %v", err)
	}

	challenges := otpsrv.NewChallengeService(
		otpinfra.NewRedisChallengeStore(client),
		noopNotifier{},
		otpsrv.Config{CodeDigits: 6, TTL: 10 * time.Minute},
	)

	svc := accountsrv.NewService(
		newMemRepo(),
		accountinfra.NewBcryptHasher(4),
		challenges,
		issuer,
		config.LoginPolicyStrict,
	)

	app := fiber.New(fiber.Config{ErrorHandler: testErrorHandler})
	accountapi.NewHandlers(svc, token.NewMiddleware(issuer), true).RegisterRoutes(app)
	return app
}

type envelope struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data"`
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}, headers map[string]string) (int, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp.StatusCode, env
}

func registerBody(email string) map[string]interface{} {
	return map[string]interface{}{
		"companyName": "CloudeForte",
		"contact":     "+1-555-0100",
		"email":       email,
		"password":    "Abc12345!",
	}
}

func registerAndVerify(t *testing.T, app *fiber.App, email string) {
	t.Helper()

	status, env := doJSON(t, app, http.MethodPost, "/api/v1/accounts/register", registerBody(email), nil)
	if status != http.StatusCreated {
		t.Fatalf("register status %d: %s", status, env.Message)
	}
	code, _ := env.Data["otp"].(string)
	if code == "" {
		t.Fatal("register response missing echoed otp")
	}

	status, env = doJSON(t, app, http.MethodPost, "/api/v1/accounts/verify-otp", map[string]interface{}{
		"email": email,
		"otp":   code,
	}, nil)
	if status != http.StatusOK {
		t.Fatalf("verify-otp status %d: %s", status, env.Message)
	}
}

func TestRegisterEndpoint(t *testing.T) {
	app := newTestApp(t)

	status, env := doJSON(t, app, http.MethodPost, "/api/v1/accounts/register", registerBody("co@x.com"), nil)
	if status != http.StatusCreated {
		t.Fatalf("status %d, want 201", status)
	}
	if !env.Success {
		t.Fatal("success should be true")
	}
	if env.Message != "Registration successful. Please verify your email." {
		t.Fatalf("unexpected message: %q", env.Message)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	app := newTestApp(t)
	doJSON(t, app, http.MethodPost, "/api/v1/accounts/register", registerBody("co@x.com"), nil)

	status, env := doJSON(t, app, http.MethodPost, "/api/v1/accounts/register", registerBody("co@x.com"), nil)
	if status != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", status)
	}
	if env.Message != "User already exists" {
		t.Fatalf("unexpected message: %q", env.Message)
	}
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	app := newTestApp(t)

	body := registerBody("co@x.com")
	body["password"] = "password" // no uppercase, digit or special
	status, env := doJSON(t, app, http.MethodPost, "/api/v1/accounts/register", body, nil)
	if status != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", status)
	}
	if env.Success {
		t.Fatal("success should be false")
	}
}

func TestVerifyOtpEndpointRejectsWrongCode(t *testing.T) {
	app := newTestApp(t)
	status, env := doJSON(t, app, http.MethodPost, "/api/v1/accounts/register", registerBody("co@x.com"), nil)
	if status != http.StatusCreated {
		t.Fatalf("register status %d", status)
	}

	wrong := "000000"
	if env.Data["otp"] == wrong {
		wrong = "000001"
	}
	status, env = doJSON(t, app, http.MethodPost, "/api/v1/accounts/verify-otp", map[string]interface{}{
		"email": "co@x.com",
		"otp":   wrong,
	}, nil)
	if status != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", status)
	}
	if env.Message != "Invalid or expired OTP" {
		t.Fatalf("unexpected message: %q", env.Message)
	}
}

func TestLoginEndpoint(t *testing.T) {
	app := newTestApp(t)
	registerAndVerify(t, app, "co@x.com")

	status, env := doJSON(t, app, http.MethodPost, "/api/v1/accounts/login", map[string]interface{}{
		"email":    "co@x.com",
		"password": "Abc12345!",
	}, nil)
	if status != http.StatusOK {
		t.Fatalf("status %d: %s", status, env.Message)
	}
	if tok, _ := env.Data["accessToken"].(string); tok == "" {
		t.Fatal("accessToken missing from payload")
	}
	if tok, _ := env.Data["refreshToken"].(string); tok == "" {
		t.Fatal("refreshToken missing from payload")
	}
	if env.Data["isVerified"] != true {
		t.Fatal("isVerified should be true")
	}
}

func TestLoginUnverifiedIsForbidden(t *testing.T) {
	app := newTestApp(t)
	doJSON(t, app, http.MethodPost, "/api/v1/accounts/register", registerBody("co@x.com"), nil)

	status, env := doJSON(t, app, http.MethodPost, "/api/v1/accounts/login", map[string]interface{}{
		"email":    "co@x.com",
		"password": "Abc12345!",
	}, nil)
	if status != http.StatusForbidden {
		t.Fatalf("status %d, want 403", status)
	}
	if env.Message != "Please verify your email first" {
		t.Fatalf("unexpected message: %q", env.Message)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	app := newTestApp(t)
	registerAndVerify(t, app, "co@x.com")

	for _, body := range []map[string]interface{}{
		{"email": "ghost@x.com", "password": "Abc12345!"},
		{"email": "co@x.com", "password": "Wrong123!"},
	} {
		status, env := doJSON(t, app, http.MethodPost, "/api/v1/accounts/login", body, nil)
		if status != http.StatusUnauthorized {
			t.Fatalf("status %d, want 401", status)
		}
		if env.Message != "Invalid credentials" {
			t.Fatalf("unexpected message: %q", env.Message)
		}
	}
}

func TestRefreshTokenEndpoint(t *testing.T) {
	app := newTestApp(t)
	registerAndVerify(t, app, "co@x.com")

	_, login := doJSON(t, app, http.MethodPost, "/api/v1/accounts/login", map[string]interface{}{
		"email":    "co@x.com",
		"password": "Abc12345!",
	}, nil)

	refresh, _ := login.Data["refreshToken"].(string)
	status, env := doJSON(t, app, http.MethodPost, "/api/v1/accounts/refresh-token", map[string]interface{}{
		"refreshToken": refresh,
	}, nil)
	if status != http.StatusOK {
		t.Fatalf("status %d: %s", status, env.Message)
	}
	if tok, _ := env.Data["accessToken"].(string); tok == "" {
		t.Fatal("accessToken missing")
	}

	// An access token presented as a refresh token must be rejected.
	access, _ := login.Data["accessToken"].(string)
	status, env = doJSON(t, app, http.MethodPost, "/api/v1/accounts/refresh-token", map[string]interface{}{
		"refreshToken": access,
	}, nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("status %d, want 401", status)
	}
	if env.Message != "Invalid refresh token" {
		t.Fatalf("unexpected message: %q", env.Message)
	}
}

func TestPasswordResetFlowOverHTTP(t *testing.T) {
	app := newTestApp(t)
	registerAndVerify(t, app, "co@x.com")

	status, env := doJSON(t, app, http.MethodPost, "/api/v1/accounts/forgot-password", map[string]interface{}{
		"email": "co@x.com",
	}, nil)
	if status != http.StatusOK {
		t.Fatalf("forgot-password status %d: %s", status, env.Message)
	}
	code, _ := env.Data["otp"].(string)
	if code == "" {
		t.Fatal("forgot-password response missing echoed otp")
	}

	// Reset before verification must fail.
	status, _ = doJSON(t, app, http.MethodPost, "/api/v1/accounts/reset-password", map[string]interface{}{
		"email":       "co@x.com",
		"newPassword": "NewPass1!",
	}, nil)
	if status != http.StatusUnprocessableEntity {
		t.Fatalf("premature reset status %d, want 422", status)
	}

	status, env = doJSON(t, app, http.MethodPost, "/api/v1/accounts/verify-reset-otp", map[string]interface{}{
		"email": "co@x.com",
		"otp":   code,
	}, nil)
	if status != http.StatusOK {
		t.Fatalf("verify-reset-otp status %d: %s", status, env.Message)
	}

	status, env = doJSON(t, app, http.MethodPost, "/api/v1/accounts/reset-password", map[string]interface{}{
		"email":       "co@x.com",
		"newPassword": "NewPass1!",
	}, nil)
	if status != http.StatusOK {
		t.Fatalf("reset-password status %d: %s", status, env.Message)
	}

	// Old password rejected, new password accepted.
	status, _ = doJSON(t, app, http.MethodPost, "/api/v1/accounts/login", map[string]interface{}{
		"email":    "co@x.com",
		"password": "Abc12345!",
	}, nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("old password login status %d, want 401", status)
	}
	status, _ = doJSON(t, app, http.MethodPost, "/api/v1/accounts/login", map[string]interface{}{
		"email":    "co@x.com",
		"password": "NewPass1!",
	}, nil)
	if status != http.StatusOK {
		t.Fatalf("new password login status %d, want 200", status)
	}
}

func TestMeEndpoint(t *testing.T) {
	app := newTestApp(t)
	registerAndVerify(t, app, "co@x.com")

	_, login := doJSON(t, app, http.MethodPost, "/api/v1/accounts/login", map[string]interface{}{
		"email":    "co@x.com",
		"password": "Abc12345!",
	}, nil)
	access, _ := login.Data["accessToken"].(string)

	status, env := doJSON(t, app, http.MethodGet, "/api/v1/accounts/me", nil, map[string]string{
		"Authorization": fmt.Sprintf("Bearer %s", access),
	})
	if status != http.StatusOK {
		t.Fatalf("status %d: %s", status, env.Message)
	}
	acc, _ := env.Data["account"].(map[string]interface{})
	if acc["email"] != "co@x.com" {
		t.Fatalf("unexpected account payload: %v", env.Data)
	}

	// No token, bad token.
	status, _ = doJSON(t, app, http.MethodGet, "/api/v1/accounts/me", nil, nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("missing token status %d, want 401", status)
	}
	status, _ = doJSON(t, app, http.MethodGet, "/api/v1/accounts/me", nil, map[string]string{
		"Authorization": "Bearer garbage",
	})
	if status != http.StatusUnauthorized {
		t.Fatalf("bad token status %d, want 401", status)
	}
}
