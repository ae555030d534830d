// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3319)
  - DatabaseURL: connection string (required)
  - DatabaseType: "postgres" or "sqlite" (default: postgres)
  - SessionSecret: secret for session token HMAC (required)
  - ManageAPIKey: operator key for /manage endpoints (required)

# Environment Variables

Flags fall back to environment variables:

	PORT           → -p
	DATABASE_URL   → -d
	DATABASE_TYPE  → -t
	SESSION_SECRET → -session-secret
	MANAGE_API_KEY → -manage-key

CLI flags take precedence over environment variables.
*/
package cliparse
