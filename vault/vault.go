// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// KeySize is the byte length of every key tier (VMK, KEK, DEK).
	KeySize = 32
	// KEKSaltSize is the byte length of the PBKDF2 salt.
	KEKSaltSize = 16
	// NonceSize is the AES-GCM nonce length.
	NonceSize = 12
	// PBKDF2Iterations is the password key-stretching cost.
	PBKDF2Iterations = 600_000
	// MinPasswordLength is the minimum accepted vault password length.
	MinPasswordLength = 8
)

// Fixed HKDF labels for the biometric KEK. The salt label can be bumped to
// rotate the KEK derived from the same authenticator PRF output.
const (
	prfKEKSalt = "vault-hkdf-salt-v1"
	prfKEKInfo = "vault:kek:webauthn-prf:v1"
)

var (
	ErrWeakPassword       = errors.New("vault: password must be at least 8 characters")
	ErrPasswordMismatch   = errors.New("vault: password confirmation does not match")
	ErrAlreadyInitialized = errors.New("vault: master key already resident in session")
	ErrNotUnlocked        = errors.New("vault: no master key resident in session")
	// ErrAuthentication covers every unwrap failure. It deliberately does not
	// distinguish a wrong secret from corrupted ciphertext.
	ErrAuthentication = errors.New("vault: authentication failed")
)

// KeyMaterial is the password-path wrapping of the VMK, as persisted
// server-side. All fields are base64; the VMK itself never appears.
type KeyMaterial struct {
	KEKSalt    string
	WrappedVMK string
	VMKIV      string
}

// PRFKeyMaterial is the biometric-path wrapping of the same VMK.
type PRFKeyMaterial struct {
	WrappedVMKPRF string
	PRFVMKIV      string
}

// Item is a per-item envelope: content encrypted under a fresh DEK, the DEK
// wrapped under the VMK.
type Item struct {
	Ciphertext string
	IV         string
	WrappedDEK string
	DEKIV      string
}

// GenerateVMK returns a fresh random Vault Master Key.
func GenerateVMK() ([]byte, error) {
	vmk := make([]byte, KeySize)
	if _, err := rand.Read(vmk); err != nil {
		return nil, fmt.Errorf("failed to generate vault master key: %w", err)
	}
	return vmk, nil
}

// deriveKEK stretches a password into a key-encryption-key.
func deriveKEK(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, PBKDF2Iterations, KeySize, sha256.New)
}

// derivePRFKEK derives an independent KEK from the platform authenticator's
// PRF output. The server only ever sees the wrapped VMK, never prfSecret.
func derivePRFKEK(prfSecret []byte) ([]byte, error) {
	r := hkdf.New(sha256.New, prfSecret, []byte(prfKEKSalt), []byte(prfKEKInfo))
	kek := make([]byte, KeySize)
	if _, err := io.ReadFull(r, kek); err != nil {
		return nil, fmt.Errorf("failed to derive PRF KEK: %w", err)
	}
	return kek, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// seal encrypts plaintext under key with a fresh random nonce.
func seal(key, plaintext []byte) (ciphertext, nonce []byte, err error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, nil, err
	}
	nonce = make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, err
	}
	return gcm.Seal(nil, nonce, plaintext, nil), nonce, nil
}

// open reverses seal. Every failure collapses to ErrAuthentication.
func open(key, ciphertext, nonce []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, ErrAuthentication
	}
	if len(nonce) != NonceSize {
		return nil, ErrAuthentication
	}
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrAuthentication
	}
	return plaintext, nil
}

// wrapVMKWithPassword derives the password KEK and wraps vmk under it.
func wrapVMKWithPassword(password string, vmk []byte) (KeyMaterial, error) {
	salt := make([]byte, KEKSaltSize)
	if _, err := rand.Read(salt); err != nil {
		return KeyMaterial{}, fmt.Errorf("failed to generate KEK salt: %w", err)
	}

	kek := deriveKEK(password, salt)
	wrapped, iv, err := seal(kek, vmk)
	if err != nil {
		return KeyMaterial{}, fmt.Errorf("failed to wrap vault master key: %w", err)
	}

	return KeyMaterial{
		KEKSalt:    base64.StdEncoding.EncodeToString(salt),
		WrappedVMK: base64.StdEncoding.EncodeToString(wrapped),
		VMKIV:      base64.StdEncoding.EncodeToString(iv),
	}, nil
}

// wrapVMKWithPRF wraps the same vmk bytes under the biometric KEK.
func wrapVMKWithPRF(prfSecret, vmk []byte) (PRFKeyMaterial, error) {
	kek, err := derivePRFKEK(prfSecret)
	if err != nil {
		return PRFKeyMaterial{}, err
	}
	wrapped, iv, err := seal(kek, vmk)
	if err != nil {
		return PRFKeyMaterial{}, fmt.Errorf("failed to wrap vault master key: %w", err)
	}
	return PRFKeyMaterial{
		WrappedVMKPRF: base64.StdEncoding.EncodeToString(wrapped),
		PRFVMKIV:      base64.StdEncoding.EncodeToString(iv),
	}, nil
}

// unwrapVMK reverses either wrapping path.
func unwrapVMK(kek []byte, wrappedB64, ivB64 string) ([]byte, error) {
	wrapped, err := base64.StdEncoding.DecodeString(wrappedB64)
	if err != nil {
		return nil, ErrAuthentication
	}
	iv, err := base64.StdEncoding.DecodeString(ivB64)
	if err != nil {
		return nil, ErrAuthentication
	}
	return open(kek, wrapped, iv)
}

// wrapItem envelope-encrypts plaintext: fresh DEK for the content, the DEK
// wrapped under vmk.
func wrapItem(vmk, plaintext []byte) (Item, error) {
	dek := make([]byte, KeySize)
	if _, err := rand.Read(dek); err != nil {
		return Item{}, fmt.Errorf("failed to generate data key: %w", err)
	}

	ciphertext, iv, err := seal(dek, plaintext)
	if err != nil {
		return Item{}, fmt.Errorf("failed to encrypt item: %w", err)
	}

	wrappedDEK, dekIV, err := seal(vmk, dek)
	if err != nil {
		return Item{}, fmt.Errorf("failed to wrap data key: %w", err)
	}

	return Item{
		Ciphertext: base64.StdEncoding.EncodeToString(ciphertext),
		IV:         base64.StdEncoding.EncodeToString(iv),
		WrappedDEK: base64.StdEncoding.EncodeToString(wrappedDEK),
		DEKIV:      base64.StdEncoding.EncodeToString(dekIV),
	}, nil
}

// unwrapItem reverses wrapItem.
func unwrapItem(vmk []byte, item Item) ([]byte, error) {
	wrappedDEK, err := base64.StdEncoding.DecodeString(item.WrappedDEK)
	if err != nil {
		return nil, ErrAuthentication
	}
	dekIV, err := base64.StdEncoding.DecodeString(item.DEKIV)
	if err != nil {
		return nil, ErrAuthentication
	}
	dek, err := open(vmk, wrappedDEK, dekIV)
	if err != nil {
		return nil, err
	}

	ciphertext, err := base64.StdEncoding.DecodeString(item.Ciphertext)
	if err != nil {
		return nil, ErrAuthentication
	}
	iv, err := base64.StdEncoding.DecodeString(item.IV)
	if err != nil {
		return nil, ErrAuthentication
	}
	return open(dek, ciphertext, iv)
}
