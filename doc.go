// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the MORA poll API server.

MORA is an hourly two-choice poll: every UTC hour one question goes live, each
user answers at most once, and votes arrive as anonymous commitments tied to
the hour rather than to the user. After the hour closes an aggregation pass
tallies the votes and publishes a single immutable result per epoch.

# Starting the Server

The server reads environment variables (a .env file is honored) or CLI flags:

	DATABASE_URL=postgres://... SESSION_SECRET=... MANAGE_API_KEY=... go run main.go

Or with flags:

	go run main.go -p 3319 -d "postgres://..." -session-secret ... -manage-key ...

# Configuration

Required settings:

  - DATABASE_URL (-d): Connection string (Postgres URL, or a file path for sqlite)
  - SESSION_SECRET (-session-secret): Secret for session token HMAC
  - MANAGE_API_KEY (-manage-key): Key guarding the /manage endpoints

Optional settings:

  - PORT (-p): Server port (default: 3319)
  - DATABASE_TYPE (-t): "postgres" (default) or "sqlite"

# Architecture

The server uses a handler-based architecture with dependency injection:

  - gameclock: Epoch ids and hour boundaries
  - pool: Question lifecycle state machine (promote, recycle, finalize)
  - aggregate: Epoch tallying
  - vault: Client-side key hierarchy (wrap/unwrap, session-held VMK)
  - mora: Nullifier and commitment derivation
  - handlers: HTTP request handlers
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers, auth guards
  - models: Request/response types
  - auth: Token generation and validation
  - db: Schema creation
  - cliparse: Configuration parsing

The vault and mora packages run in clients; the server stores only wrapped
key material and opaque commitments.

See package documentation for each component.
*/
package main
