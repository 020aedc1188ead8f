package accountsrv

import (
	"context"
	"errors"
	"time"

	"github.com/cloudeforte/accounts/pkg/account"
	"github.com/cloudeforte/accounts/pkg/config"
	"github.com/cloudeforte/accounts/pkg/kernel"
	"github.com/cloudeforte/accounts/pkg/logx"
	"github.com/cloudeforte/accounts/pkg/otp"
	"github.com/cloudeforte/accounts/pkg/otp/otpsrv"
	"github.com/cloudeforte/accounts/pkg/token"
	"github.com/google/uuid"
)

// RegisterInput is the registration payload accepted by the service.
// Shape validation happens at the transport layer; the service assumes a
// well-formed input and only enforces domain rules.
type RegisterInput struct {
	Email              string
	Password           string
	CompanyName        string
	Contact            string
	CompanySize        string
	BusinessProfession string
	RequestDemo        bool
}

// LoginResult carries the issued tokens plus the account's verified flag,
// which permissive-policy callers use to branch.
type LoginResult struct {
	Tokens   account.TokenPair
	Verified bool
}

// Service orchestrates the account lifecycle: registration, email
// verification, login, token refresh and the password reset flow.
type Service struct {
	repo       account.Repository
	hasher     account.PasswordHasher
	challenges *otpsrv.ChallengeService
	tokens     *token.Issuer
	policy     config.LoginPolicy
}

// NewService creates the lifecycle service.
func NewService(
	repo account.Repository,
	hasher account.PasswordHasher,
	challenges *otpsrv.ChallengeService,
	tokens *token.Issuer,
	policy config.LoginPolicy,
) *Service {
	if policy == "" {
		policy = config.LoginPolicyStrict
	}
	return &Service{
		repo:       repo,
		hasher:     hasher,
		challenges: challenges,
		tokens:     tokens,
		policy:     policy,
	}
}

// Policy returns the login verification policy the service was built with.
func (s *Service) Policy() config.LoginPolicy { return s.policy }

// Register creates an unverified account and issues its email
// verification challenge. The challenge is returned so debug surfaces can
// echo the code; production handlers must not.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*account.Account, *otp.Challenge, error) {
	email := kernel.NormalizeIdentity(in.Email)

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	acc := &account.Account{
		ID:                 kernel.NewAccountID(uuid.NewString()),
		Email:              email,
		PasswordHash:       hash,
		Verified:           false,
		CompanyName:        in.CompanyName,
		Contact:            in.Contact,
		CompanySize:        in.CompanySize,
		BusinessProfession: in.BusinessProfession,
		RequestDemo:        in.RequestDemo,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.repo.Create(ctx, acc); err != nil {
		return nil, nil, err
	}

	challenge, err := s.challenges.IssueAndSend(ctx, email, otp.PurposeEmailVerification)
	if err != nil {
		// The account row is committed; a challenge failure here is
		// recoverable through ResendOtp.
		logx.WithError(err).WithField("email", email).Warn("account: verification challenge failed after registration")
		return acc, nil, nil
	}
	return acc, challenge, nil
}

// VerifyOtp matches the email verification code, marks the account
// verified and consumes the challenge so the code cannot be replayed.
func (s *Service) VerifyOtp(ctx context.Context, email, code string) (*account.Account, error) {
	if _, err := s.challenges.Confirm(ctx, email, code, otp.PurposeEmailVerification); err != nil {
		return nil, err
	}

	acc, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if !acc.Verified {
		if err := s.repo.MarkVerified(ctx, acc.Email); err != nil {
			return nil, err
		}
		acc.Verified = true
	}

	if err := s.challenges.Consume(ctx, email, otp.PurposeEmailVerification); err != nil {
		logx.WithError(err).WithField("email", acc.Email).Warn("account: failed to consume verification challenge")
	}
	return acc, nil
}

// ResendOtp re-issues the email verification challenge, superseding any
// prior live one.
func (s *Service) ResendOtp(ctx context.Context, email string) (*otp.Challenge, error) {
	acc, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if acc.Verified {
		return nil, account.ErrAlreadyVerified()
	}
	return s.challenges.IssueAndSend(ctx, acc.Email, otp.PurposeEmailVerification)
}

// Login checks credentials and mints a token pair. An unknown identity
// and a wrong password return the same failure so callers cannot probe
// which emails are registered.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	acc, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, account.ErrNotFound()) {
			return nil, account.ErrInvalidCredentials()
		}
		return nil, err
	}

	if err := s.hasher.Compare(acc.PasswordHash, password); err != nil {
		return nil, account.ErrInvalidCredentials()
	}

	if s.policy == config.LoginPolicyStrict && !acc.Verified {
		return nil, account.ErrNotVerified()
	}

	pair, err := s.issueTokenPair(acc.ID)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Tokens: *pair, Verified: acc.Verified}, nil
}

// RefreshAccessToken verifies a refresh token and mints a new access
// token. The refresh token itself is not rotated.
func (s *Service) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.tokens.Verify(refreshToken, token.KindRefresh)
	if err != nil {
		return "", token.ErrInvalidRefreshToken()
	}
	return s.tokens.IssueAccessToken(claims.AccountID)
}

// Profile returns the account for an authenticated id.
func (s *Service) Profile(ctx context.Context, id kernel.AccountID) (*account.Account, error) {
	return s.repo.FindByID(ctx, id)
}

// ForgotPassword issues a password reset challenge for an existing
// account. Unlike Login, this surface does reveal whether the email is
// registered.
func (s *Service) ForgotPassword(ctx context.Context, email string) (*otp.Challenge, error) {
	acc, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return s.challenges.IssueAndSend(ctx, acc.Email, otp.PurposePasswordReset)
}

// VerifyOtpForReset matches the reset code and marks the challenge
// verified. The challenge stays live until ResetPassword consumes it.
func (s *Service) VerifyOtpForReset(ctx context.Context, email, code string) error {
	_, err := s.challenges.Confirm(ctx, email, code, otp.PurposePasswordReset)
	return err
}

// ResetPassword replaces the credential for an account whose reset
// challenge has been verified, then consumes the challenge. The account's
// verified flag is untouched.
func (s *Service) ResetPassword(ctx context.Context, email, newPassword string) (*account.Account, error) {
	acc, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if _, err := s.challenges.Verified(ctx, acc.Email, otp.PurposePasswordReset); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdatePasswordHash(ctx, acc.Email, hash); err != nil {
		return nil, err
	}

	if err := s.challenges.Consume(ctx, acc.Email, otp.PurposePasswordReset); err != nil {
		logx.WithError(err).WithField("email", acc.Email).Warn("account: failed to consume reset challenge")
	}
	acc.PasswordHash = hash
	return acc, nil
}

func (s *Service) issueTokenPair(id kernel.AccountID) (*account.TokenPair, error) {
	access, err := s.tokens.IssueAccessToken(id)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.IssueRefreshToken(id)
	if err != nil {
		return nil, err
	}
	return &account.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
