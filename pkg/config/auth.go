package config

import "time"

// LoginPolicy decides how login treats unverified accounts.
type LoginPolicy string

const (
	// LoginPolicyStrict rejects unverified accounts with a NotVerified failure.
	LoginPolicyStrict LoginPolicy = "strict"
	// LoginPolicyPermissive issues tokens regardless of verification and
	// reports the verified flag so the caller can branch.
	LoginPolicyPermissive LoginPolicy = "permissive"
)

// AuthConfig configures credentials, tokens and the OTP challenge flow.
type AuthConfig struct {
	// JWTSecret signs access tokens; JWTRefreshSecret signs refresh tokens.
	// They are independent so one leaked key cannot verify the other kind.
	JWTSecret        string
	JWTRefreshSecret string
	AccessTokenTTL   time.Duration
	RefreshTokenTTL  time.Duration
	Issuer           string

	BcryptCost int

	OTPDigits int
	OTPTTL    time.Duration

	LoginPolicy LoginPolicy

	// DebugEchoOTP echoes issued OTP codes in API responses. Testing
	// convenience only; must stay off in any production posture.
	DebugEchoOTP bool
}

func loadAuthConfig() AuthConfig {
	policy := LoginPolicy(getEnv("AUTH_LOGIN_POLICY", string(LoginPolicyStrict)))
	if policy != LoginPolicyStrict && policy != LoginPolicyPermissive {
		policy = LoginPolicyStrict
	}

	return AuthConfig{
		JWTSecret:        getEnv("JWT_SECRET", ""),
		JWTRefreshSecret: getEnv("JWT_REFRESH_SECRET", ""),
		AccessTokenTTL:   getEnvDuration("JWT_ACCESS_TTL", 15*time.Minute),
		RefreshTokenTTL:  getEnvDuration("JWT_REFRESH_TTL", 7*24*time.Hour),
		Issuer:           getEnv("JWT_ISSUER", "cloudeforte-accounts"),
		BcryptCost:       getEnvInt("AUTH_BCRYPT_COST", 12),
		OTPDigits:        getEnvInt("AUTH_OTP_DIGITS", 6),
		OTPTTL:           getEnvDuration("AUTH_OTP_TTL", 10*time.Minute),
		LoginPolicy:      policy,
		DebugEchoOTP:     getEnvBool("AUTH_DEBUG_ECHO_OTP", false),
	}
}
