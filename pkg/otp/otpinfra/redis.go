package otpinfra

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cloudeforte/accounts/pkg/kernel"
	"github.com/cloudeforte/accounts/pkg/otp"
	"github.com/redis/go-redis/v9"
)

const challengeKeyPrefix = "otp:challenge"

// RedisChallengeStore implements otp.Store on Redis. One key per
// (purpose, identity), written with a TTL matching the challenge expiry:
// a plain SET both supersedes the previous challenge atomically and lets
// Redis garbage collect expired records. Reads still check expires_at
// themselves so a record that outlived its expiry (clock skew, disabled
// eviction) never validates.
type RedisChallengeStore struct {
	rdb *redis.Client
}

// NewRedisChallengeStore creates a challenge store backed by the client.
func NewRedisChallengeStore(rdb *redis.Client) *RedisChallengeStore {
	return &RedisChallengeStore{rdb: rdb}
}

func challengeKey(identity string, purpose otp.Purpose) string {
	return fmt.Sprintf("%s:%s:%s", challengeKeyPrefix, purpose, kernel.NormalizeIdentity(identity))
}

// Put stores the challenge, replacing any prior one for the same
// (identity, purpose).
func (s *RedisChallengeStore) Put(ctx context.Context, challenge *otp.Challenge) error {
	ttl := time.Until(challenge.ExpiresAt)
	if ttl <= 0 {
		return otp.ErrInvalidOrExpired()
	}

	data, err := json.Marshal(challenge)
	if err != nil {
		return otp.ErrStoreUnavailable(err)
	}

	key := challengeKey(challenge.Identity, challenge.Purpose)
	if err := s.rdb.Set(ctx, key, data, ttl).Err(); err != nil {
		return otp.ErrStoreUnavailable(err)
	}
	return nil
}

// FindLive returns the live challenge matching identity, code and purpose.
func (s *RedisChallengeStore) FindLive(ctx context.Context, identity, code string, purpose otp.Purpose) (*otp.Challenge, error) {
	challenge, err := s.get(ctx, identity, purpose)
	if err != nil {
		return nil, err
	}

	if subtle.ConstantTimeCompare([]byte(challenge.Code), []byte(code)) != 1 {
		return nil, otp.ErrInvalidOrExpired()
	}
	return challenge, nil
}

// MarkVerified flags the live challenge as verified, keeping its TTL.
func (s *RedisChallengeStore) MarkVerified(ctx context.Context, identity string, purpose otp.Purpose) error {
	challenge, err := s.get(ctx, identity, purpose)
	if err != nil {
		return err
	}

	challenge.Verified = true
	data, err := json.Marshal(challenge)
	if err != nil {
		return otp.ErrStoreUnavailable(err)
	}

	key := challengeKey(identity, purpose)
	if err := s.rdb.Set(ctx, key, data, redis.KeepTTL).Err(); err != nil {
		return otp.ErrStoreUnavailable(err)
	}
	return nil
}

// FindVerifiedLive returns the live, verified challenge for the identity.
func (s *RedisChallengeStore) FindVerifiedLive(ctx context.Context, identity string, purpose otp.Purpose) (*otp.Challenge, error) {
	challenge, err := s.get(ctx, identity, purpose)
	if err != nil {
		if errors.Is(err, otp.ErrInvalidOrExpired()) {
			return nil, otp.ErrNotVerified()
		}
		return nil, err
	}
	if !challenge.Verified {
		return nil, otp.ErrNotVerified()
	}
	return challenge, nil
}

// Consume deletes the challenge for (identity, purpose).
func (s *RedisChallengeStore) Consume(ctx context.Context, identity string, purpose otp.Purpose) error {
	if err := s.rdb.Del(ctx, challengeKey(identity, purpose)).Err(); err != nil {
		return otp.ErrStoreUnavailable(err)
	}
	return nil
}

func (s *RedisChallengeStore) get(ctx context.Context, identity string, purpose otp.Purpose) (*otp.Challenge, error) {
	data, err := s.rdb.Get(ctx, challengeKey(identity, purpose)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, otp.ErrInvalidOrExpired()
		}
		return nil, otp.ErrStoreUnavailable(err)
	}

	var challenge otp.Challenge
	if err := json.Unmarshal(data, &challenge); err != nil {
		return nil, otp.ErrStoreUnavailable(err)
	}

	// TTL normally removes expired keys, but never trust it.
	if challenge.IsExpired(time.Now()) {
		s.rdb.Del(ctx, challengeKey(identity, purpose))
		return nil, otp.ErrInvalidOrExpired()
	}

	return &challenge, nil
}
