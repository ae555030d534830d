// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database schema creation for the Mora Poll server.

CreateSchema creates all tables if they do not exist, so it is safe to run
on every startup:

	if err := db.CreateSchema(conn, cfg.DatabaseType); err != nil {
		// ...
	}

Two dialects are supported: "postgres" (production, lib/pq) and "sqlite"
(dev and tests, modernc.org/sqlite). Queries elsewhere in the codebase use
$N placeholders in ascending order, which both drivers accept.
*/
package db
