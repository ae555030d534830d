// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides token generation and validation for the Mora Poll API.

Two credentials exist:

  - Session tokens: HMAC-signed "<user_id>.<signature>" bearer tokens sent
    in the X-Session-Token header. Stateless; validated against the
    configured session secret.
  - Manage API key: a shared operator secret sent in the X-Api-Key header,
    compared in constant time.

All comparisons use crypto/hmac.Equal to avoid timing leaks.
*/
package auth
