// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and JSON helpers for the Mora
Poll API.

  - WithLogging: request start/finish logging via slog
  - RequireSession: X-Session-Token validation, user ID into the context
  - RequireManageKey: X-Api-Key validation for operator endpoints
  - CORS: cross-origin headers and preflight handling
  - JSONResponse / ErrorResponse / ParseJSONBody: shared JSON plumbing

Every entry point parses its body exactly once through ParseJSONBody into a
typed request struct from the models package, then validates fields
explicitly before touching the store.
*/
package middleware
