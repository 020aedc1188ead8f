package kernel

import "strings"

// NormalizeIdentity canonicalizes an account identity (an email address).
// Identities are case-insensitive; every lookup and every persisted row
// goes through this so "Co@X.com" and "co@x.com" are the same account.
func NormalizeIdentity(identity string) string {
	return strings.ToLower(strings.TrimSpace(identity))
}

// ContextKey is the type used for values stored in request contexts.
type ContextKey string

const (
	// AccountContextKey holds the authenticated AccountID
	AccountContextKey ContextKey = "account_id"

	// RequestIDKey holds the request id
	RequestIDKey ContextKey = "request_id"
)
