package accountapi

import "testing"

func TestValidatePassword(t *testing.T) {
	cases := []struct {
		name     string
		password string
		ok       bool
	}{
		{"valid", "Abc12345!", true},
		{"valid with other special", "Abc12345#", true},
		{"too short", "Ab1!", false},
		{"no uppercase", "abc12345!", false},
		{"no lowercase", "ABC12345!", false},
		{"no digit", "Abcdefgh!", false},
		{"no special", "Abc12345", false},
		{"empty", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validatePassword("password", tc.password)
			if tc.ok && err != nil {
				t.Fatalf("expected valid, got %v", err)
			}
			if !tc.ok && err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestValidateOtp(t *testing.T) {
	cases := []struct {
		name string
		code string
		ok   bool
	}{
		{"valid", "123456", true},
		{"valid with padding", " 123456 ", true},
		{"too short", "12345", false},
		{"too long", "1234567", false},
		{"letters", "12a456", false},
		{"empty", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateOtp(tc.code)
			if tc.ok && err != nil {
				t.Fatalf("expected valid, got %v", err)
			}
			if !tc.ok && err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestValidateEmailNormalizes(t *testing.T) {
	email := "  user@example.com  "
	if err := validateEmail(&email); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}
	if email != "user@example.com" {
		t.Fatalf("email not trimmed: %q", email)
	}

	bad := "not-an-email"
	if err := validateEmail(&bad); err == nil {
		t.Fatal("expected validation error")
	}
}
