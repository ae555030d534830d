// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrInvalidSessionToken = errors.New("invalid session token")
	ErrInvalidManageKey    = errors.New("invalid manage API key")
)

// NewUserID returns a fresh user identifier.
func NewUserID() string {
	return uuid.NewString()
}

// GenerateSessionToken creates an HMAC-signed bearer token for a user.
// Format: "<user_id>.<signature>". Deterministic and verifiable without a
// session table; the WebAuthn ceremony that authenticates the user happens
// before this is issued and is out of scope here.
func GenerateSessionToken(userID, secret string) string {
	return userID + "." + signUserID(userID, secret)
}

// ValidateSessionToken checks the token signature and returns the user ID.
func ValidateSessionToken(token, secret string) (string, error) {
	userID, sig, ok := strings.Cut(token, ".")
	if !ok || userID == "" {
		return "", ErrInvalidSessionToken
	}
	expected := signUserID(userID, secret)
	if !hmac.Equal([]byte(sig), []byte(expected)) {
		return "", ErrInvalidSessionToken
	}
	return userID, nil
}

// ValidateManageKey checks the operator API key in constant time.
func ValidateManageKey(provided, expected string) error {
	if expected == "" || !hmac.Equal([]byte(provided), []byte(expected)) {
		return ErrInvalidManageKey
	}
	return nil
}

func signUserID(userID, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(userID))
	sum := h.Sum(nil)
	// URL-safe base64 without padding for cleaner tokens
	return strings.TrimRight(base64.URLEncoding.EncodeToString(sum), "=")
}
