// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"strings"
	"testing"
)

func TestNewUserID(t *testing.T) {
	id1 := NewUserID()
	id2 := NewUserID()
	if id1 == "" || id1 == id2 {
		t.Errorf("NewUserID() = %q, %q; want distinct non-empty ids", id1, id2)
	}
}

func TestSessionTokenRoundTrip(t *testing.T) {
	userID := NewUserID()
	token := GenerateSessionToken(userID, "session-secret")

	got, err := ValidateSessionToken(token, "session-secret")
	if err != nil {
		t.Fatalf("ValidateSessionToken() error = %v", err)
	}
	if got != userID {
		t.Errorf("ValidateSessionToken() = %q, want %q", got, userID)
	}
}

func TestValidateSessionTokenRejects(t *testing.T) {
	userID := NewUserID()
	token := GenerateSessionToken(userID, "session-secret")

	tests := []struct {
		name   string
		token  string
		secret string
	}{
		{"wrong secret", token, "other-secret"},
		{"no separator", strings.ReplaceAll(token, ".", ""), "session-secret"},
		{"empty token", "", "session-secret"},
		{"tampered user id", "someone-else." + strings.SplitN(token, ".", 2)[1], "session-secret"},
		{"tampered signature", userID + ".AAAA", "session-secret"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ValidateSessionToken(tt.token, tt.secret); err == nil {
				t.Error("ValidateSessionToken() accepted an invalid token")
			}
		})
	}
}

func TestValidateManageKey(t *testing.T) {
	if err := ValidateManageKey("op-key", "op-key"); err != nil {
		t.Errorf("ValidateManageKey() rejected matching key: %v", err)
	}
	if err := ValidateManageKey("wrong", "op-key"); err == nil {
		t.Error("ValidateManageKey() accepted wrong key")
	}
	// An unset operator key must never validate, even against itself.
	if err := ValidateManageKey("", ""); err == nil {
		t.Error("ValidateManageKey() accepted empty configured key")
	}
}
