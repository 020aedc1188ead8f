package otpsrv

import (
	"context"
	"time"

	"github.com/cloudeforte/accounts/pkg/asyncx"
	"github.com/cloudeforte/accounts/pkg/kernel"
	"github.com/cloudeforte/accounts/pkg/logx"
	"github.com/cloudeforte/accounts/pkg/otp"
	"github.com/google/uuid"
)

const dispatchTimeout = 30 * time.Second

// Config holds the challenge parameters.
type Config struct {
	CodeDigits int
	TTL        time.Duration
}

// ChallengeService issues, verifies and consumes OTP challenges. Delivery
// runs off the caller's path: a failed send is logged and never rolls
// back the stored challenge.
type ChallengeService struct {
	store    otp.Store
	notifier otp.Notifier
	cfg      Config
}

// NewChallengeService creates a challenge service.
func NewChallengeService(store otp.Store, notifier otp.Notifier, cfg Config) *ChallengeService {
	if cfg.CodeDigits == 0 {
		cfg.CodeDigits = 6
	}
	if cfg.TTL == 0 {
		cfg.TTL = 10 * time.Minute
	}
	return &ChallengeService{
		store:    store,
		notifier: notifier,
		cfg:      cfg,
	}
}

// TTL returns the configured challenge lifetime.
func (s *ChallengeService) TTL() time.Duration { return s.cfg.TTL }

// IssueAndSend creates a fresh challenge for (identity, purpose),
// superseding any prior one, and dispatches it fire-and-forget.
func (s *ChallengeService) IssueAndSend(ctx context.Context, identity string, purpose otp.Purpose) (*otp.Challenge, error) {
	identity = kernel.NormalizeIdentity(identity)

	code, err := otp.GenerateCode(s.cfg.CodeDigits)
	if err != nil {
		return nil, otp.ErrGeneration(err)
	}

	now := time.Now()
	challenge := &otp.Challenge{
		ID:        uuid.NewString(),
		Identity:  identity,
		Code:      code,
		Purpose:   purpose,
		ExpiresAt: now.Add(s.cfg.TTL),
		CreatedAt: now,
	}

	if err := s.store.Put(ctx, challenge); err != nil {
		return nil, err
	}

	s.dispatch(identity, code, purpose)
	return challenge, nil
}

// Confirm matches a submitted code against the live challenge and marks
// it verified. The caller decides whether to consume it afterwards.
func (s *ChallengeService) Confirm(ctx context.Context, identity, code string, purpose otp.Purpose) (*otp.Challenge, error) {
	identity = kernel.NormalizeIdentity(identity)

	challenge, err := s.store.FindLive(ctx, identity, code, purpose)
	if err != nil {
		return nil, err
	}

	if !challenge.Verified {
		if err := s.store.MarkVerified(ctx, identity, purpose); err != nil {
			return nil, err
		}
		challenge.Verified = true
	}
	return challenge, nil
}

// Verified returns the live, verified challenge for (identity, purpose).
func (s *ChallengeService) Verified(ctx context.Context, identity string, purpose otp.Purpose) (*otp.Challenge, error) {
	return s.store.FindVerifiedLive(ctx, kernel.NormalizeIdentity(identity), purpose)
}

// Consume deletes the challenge so it can never be replayed.
func (s *ChallengeService) Consume(ctx context.Context, identity string, purpose otp.Purpose) error {
	return s.store.Consume(ctx, kernel.NormalizeIdentity(identity), purpose)
}

func (s *ChallengeService) dispatch(identity, code string, purpose otp.Purpose) {
	asyncx.DoTimeout(dispatchTimeout, func(ctx context.Context) {
		if err := s.notifier.SendCode(ctx, identity, code, purpose); err != nil {
			logx.WithError(err).WithFields(logx.Fields{
				"identity": identity,
				"purpose":  purpose.String(),
			}).Warn("otp: code delivery failed")
		}
	})
}
