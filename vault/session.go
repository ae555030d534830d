// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package vault

import (
	"encoding/base64"
	"sync"

	"github.com/awnumar/memguard"
)

// Session holds the unwrapped Vault Master Key for the lifetime of a client
// session. The key lives in a memguard locked buffer (mlocked, guarded,
// zeroed on destroy) and is released with Drop on logout. There is no
// process-wide key; every cryptographic call takes the session explicitly.
type Session struct {
	mu  sync.Mutex
	vmk *memguard.LockedBuffer
}

func NewSession() *Session {
	return &Session{}
}

// CreateVault generates a fresh VMK, wraps it under a password-derived KEK,
// and leaves the VMK resident in the session. Returns ErrWeakPassword /
// ErrPasswordMismatch on bad input and ErrAlreadyInitialized if a VMK is
// already resident.
func (s *Session) CreateVault(password, confirm string) (KeyMaterial, error) {
	if len(password) < MinPasswordLength {
		return KeyMaterial{}, ErrWeakPassword
	}
	if password != confirm {
		return KeyMaterial{}, ErrPasswordMismatch
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.vmk != nil {
		return KeyMaterial{}, ErrAlreadyInitialized
	}

	vmk, err := GenerateVMK()
	if err != nil {
		return KeyMaterial{}, err
	}

	material, err := wrapVMKWithPassword(password, vmk)
	if err != nil {
		return KeyMaterial{}, err
	}

	// NewBufferFromBytes wipes the source slice.
	s.vmk = memguard.NewBufferFromBytes(vmk)
	return material, nil
}

// WrapBiometric wraps the resident VMK under a KEK derived from the platform
// authenticator's PRF output. Invoked lazily, once biometric capability is
// confirmed, any time after CreateVault.
func (s *Session) WrapBiometric(prfSecret []byte) (PRFKeyMaterial, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.vmk == nil {
		return PRFKeyMaterial{}, ErrNotUnlocked
	}
	return wrapVMKWithPRF(prfSecret, s.vmk.Bytes())
}

// UnwrapPassword makes the VMK resident from its password wrapping.
func (s *Session) UnwrapPassword(password string, material KeyMaterial) error {
	salt, err := base64.StdEncoding.DecodeString(material.KEKSalt)
	if err != nil {
		return ErrAuthentication
	}
	kek := deriveKEK(password, salt)
	return s.install(kek, material.WrappedVMK, material.VMKIV)
}

// UnwrapBiometric makes the VMK resident from its biometric wrapping.
func (s *Session) UnwrapBiometric(prfSecret []byte, material PRFKeyMaterial) error {
	kek, err := derivePRFKEK(prfSecret)
	if err != nil {
		return ErrAuthentication
	}
	return s.install(kek, material.WrappedVMKPRF, material.PRFVMKIV)
}

func (s *Session) install(kek []byte, wrappedB64, ivB64 string) error {
	vmk, err := unwrapVMK(kek, wrappedB64, ivB64)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.vmk != nil {
		s.vmk.Destroy()
	}
	s.vmk = memguard.NewBufferFromBytes(vmk)
	return nil
}

// WithVMK runs fn with the raw VMK bytes while holding the session lock. The
// slice is only valid inside fn; callers must not retain it.
func (s *Session) WithVMK(fn func(vmk []byte) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.vmk == nil {
		return ErrNotUnlocked
	}
	return fn(s.vmk.Bytes())
}

// WrapItem envelope-encrypts plaintext under a fresh DEK wrapped by the
// resident VMK, for client-side content that must be recoverable later
// (commitment salts, notes).
func (s *Session) WrapItem(plaintext []byte) (Item, error) {
	var item Item
	err := s.WithVMK(func(vmk []byte) error {
		var err error
		item, err = wrapItem(vmk, plaintext)
		return err
	})
	return item, err
}

// UnwrapItem reverses WrapItem.
func (s *Session) UnwrapItem(item Item) ([]byte, error) {
	var plaintext []byte
	err := s.WithVMK(func(vmk []byte) error {
		var err error
		plaintext, err = unwrapItem(vmk, item)
		return err
	})
	return plaintext, err
}

// Unlocked reports whether a VMK is resident.
func (s *Session) Unlocked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vmk != nil
}

// Drop zeroes and releases the resident VMK. Safe to call repeatedly. Any
// in-flight wrap or unwrap completes first because both paths hold the lock.
func (s *Session) Drop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.vmk != nil {
		s.vmk.Destroy()
		s.vmk = nil
	}
}
