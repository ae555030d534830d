// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package vault implements the three-tier envelope-encryption key hierarchy
used by the private data game and the encrypted storage collaborator.

# Key Tiers

  - VMK (Vault Master Key): random 256-bit key, exists only inside a
    client Session. Never persisted, never transmitted.
  - KEK (Key-Encryption-Key): derived from the vault password
    (PBKDF2-SHA256, 600k iterations, random 16-byte salt) or from the
    platform authenticator's PRF output (HKDF-SHA256 with fixed labels).
    Used only to wrap/unwrap the VMK.
  - DEK (Data-Encryption-Key): fresh per item, wraps content, itself
    wrapped under the VMK.

Every tier uses AES-256-GCM with a fresh random 12-byte nonce.

# Sessions

The unwrapped VMK lives in a memguard locked buffer inside a Session:

	s := vault.NewSession()
	material, err := s.CreateVault(password, confirm)
	...
	s.Drop() // on logout

The server-visible state is only ciphertexts, salts, and IVs. Losing both
the password and every enrolled authenticator is unrecoverable by design;
there is no server-side key recovery.

Unwrap failures always surface as ErrAuthentication, with no distinction
between a wrong secret and corrupted ciphertext.
*/
package vault
