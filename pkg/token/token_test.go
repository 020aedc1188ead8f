package token_test

import (
	"errors"
	"testing"
	"time"

	"github.com/cloudeforte/accounts/pkg/kernel"
	"github.com/cloudeforte/accounts/pkg/token"
)

func newTestIssuer(t *testing.T) *token.Issuer {
	t.Helper()
	issuer, err := token.NewIssuer(token.Config{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
		Issuer:        "accounts-test",
	})
	if err != nil {
		t.Fatalf("NewIssuer failed: %v", err)
	}
	return issuer
}

func TestNewIssuerRejectsMissingSecrets(t *testing.T) {
	_, err := token.NewIssuer(token.Config{AccessSecret: "", RefreshSecret: "x"})
	if err == nil {
		t.Fatal("expected error for missing access secret")
	}
	_, err = token.NewIssuer(token.Config{AccessSecret: "x", RefreshSecret: ""})
	if err == nil {
		t.Fatal("expected error for missing refresh secret")
	}
}

func TestNewIssuerRejectsSharedSecret(t *testing.T) {
	_, err := token.NewIssuer(token.Config{AccessSecret: "same", RefreshSecret: "same"})
	if err == nil {
		t.Fatal("expected error for shared secret")
	}
}

func TestIssueAndVerifyAccessToken(t *testing.T) {
	issuer := newTestIssuer(t)
	id := kernel.NewAccountID("acc-1")

	signed, err := issuer.IssueAccessToken(id)
	if err != nil {
		t.Fatalf("IssueAccessToken failed: %v", err)
	}

	claims, err := issuer.Verify(signed, token.KindAccess)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if claims.AccountID != id {
		t.Fatalf("account id mismatch: got %q", claims.AccountID)
	}
	if claims.Kind != token.KindAccess {
		t.Fatalf("kind mismatch: got %q", claims.Kind)
	}
}

func TestIssueAndVerifyRefreshToken(t *testing.T) {
	issuer := newTestIssuer(t)
	id := kernel.NewAccountID("acc-1")

	signed, err := issuer.IssueRefreshToken(id)
	if err != nil {
		t.Fatalf("IssueRefreshToken failed: %v", err)
	}

	claims, err := issuer.Verify(signed, token.KindRefresh)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if claims.Kind != token.KindRefresh {
		t.Fatalf("kind mismatch: got %q", claims.Kind)
	}
}

func TestCrossKindUseIsRejected(t *testing.T) {
	issuer := newTestIssuer(t)
	id := kernel.NewAccountID("acc-1")

	access, err := issuer.IssueAccessToken(id)
	if err != nil {
		t.Fatalf("IssueAccessToken failed: %v", err)
	}
	refresh, err := issuer.IssueRefreshToken(id)
	if err != nil {
		t.Fatalf("IssueRefreshToken failed: %v", err)
	}

	if _, err := issuer.Verify(access, token.KindRefresh); !errors.Is(err, token.ErrInvalidToken()) {
		t.Fatalf("access token verified as refresh: %v", err)
	}
	if _, err := issuer.Verify(refresh, token.KindAccess); !errors.Is(err, token.ErrInvalidToken()) {
		t.Fatalf("refresh token verified as access: %v", err)
	}
}

func TestExpiredTokenIsRejected(t *testing.T) {
	issuer, err := token.NewIssuer(token.Config{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     -time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
	})
	if err != nil {
		t.Fatalf("NewIssuer failed: %v", err)
	}

	signed, err := issuer.IssueAccessToken(kernel.NewAccountID("acc-1"))
	if err != nil {
		t.Fatalf("IssueAccessToken failed: %v", err)
	}

	if _, err := issuer.Verify(signed, token.KindAccess); !errors.Is(err, token.ErrExpiredToken()) {
		t.Fatalf("expected expired-token, got %v", err)
	}
}

func TestTamperedTokenIsRejected(t *testing.T) {
	issuer := newTestIssuer(t)

	signed, err := issuer.IssueAccessToken(kernel.NewAccountID("acc-1"))
	if err != nil {
		t.Fatalf("IssueAccessToken failed: %v", err)
	}

	tampered := signed[:len(signed)-2] + "xx"
	if _, err := issuer.Verify(tampered, token.KindAccess); !errors.Is(err, token.ErrInvalidToken()) {
		t.Fatalf("expected invalid-token, got %v", err)
	}
}

func TestTokensFromAnotherIssuerAreRejected(t *testing.T) {
	issuer := newTestIssuer(t)
	other, err := token.NewIssuer(token.Config{
		AccessSecret:  "other-access",
		RefreshSecret: "other-refresh",
	})
	if err != nil {
		t.Fatalf("NewIssuer failed: %v", err)
	}

	signed, err := other.IssueAccessToken(kernel.NewAccountID("acc-1"))
	if err != nil {
		t.Fatalf("IssueAccessToken failed: %v", err)
	}

	if _, err := issuer.Verify(signed, token.KindAccess); !errors.Is(err, token.ErrInvalidToken()) {
		t.Fatalf("expected invalid-token, got %v", err)
	}
}
