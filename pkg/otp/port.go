package otp

import "context"

// Store is the contract for challenge persistence. At most one live
// challenge exists per (identity, purpose); Put replaces whatever was
// there, so the latest code is the only one that ever validates.
// Every read filters expiry itself; a record past its expiry is treated
// as absent regardless of whether the backend already deleted it.
type Store interface {
	// Put stores the challenge, superseding any prior challenge for the
	// same (identity, purpose).
	Put(ctx context.Context, challenge *Challenge) error

	// FindLive returns the live challenge matching identity, code and
	// purpose. Wrong code, expired code and no code at all are
	// indistinguishable: all return ErrInvalidOrExpired.
	FindLive(ctx context.Context, identity, code string, purpose Purpose) (*Challenge, error)

	// MarkVerified flags the live challenge for (identity, purpose) as
	// verified, preserving its remaining lifetime.
	MarkVerified(ctx context.Context, identity string, purpose Purpose) error

	// FindVerifiedLive returns the live, verified challenge for
	// (identity, purpose), or ErrNotVerified when none exists.
	FindVerifiedLive(ctx context.Context, identity string, purpose Purpose) (*Challenge, error)

	// Consume deletes the challenge for (identity, purpose). Exactly one
	// consume succeeds per challenge; later matches fail.
	Consume(ctx context.Context, identity string, purpose Purpose) error
}

// Notifier delivers a challenge code to the identity's owner. Best
// effort: implementations report failure but callers never let delivery
// block or roll back committed state.
type Notifier interface {
	SendCode(ctx context.Context, identity, code string, purpose Purpose) error
}
