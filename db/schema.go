// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB, databaseType string) error {
	ddl := schemaPostgres
	if databaseType == "sqlite" {
		ddl = SchemaSQLite
	}
	_, err := db.Exec(ddl)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schemaPostgres = `
-- Users and their vault key material. The wrapped VMK columns stay NULL
-- until the client creates its vault; the unwrapped VMK never reaches us.
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    username TEXT NOT NULL UNIQUE,
    kek_salt TEXT,
    wrapped_vmk TEXT,
    vmk_iv TEXT,
    wrapped_vmk_prf TEXT,
    prf_vmk_iv TEXT,
    created_at TIMESTAMP NOT NULL DEFAULT NOW()
);

-- Question pool (append-only; recycling inserts copies, never deletes)
CREATE TABLE IF NOT EXISTS questions_repo (
    id SERIAL PRIMARY KEY,
    title TEXT,
    image TEXT,
    text TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'UPCOMING' CHECK (status IN ('UPCOMING', 'ACTIVE', 'AGGREGATING', 'FINALIZED')),
    epoch_id TEXT,
    opens_at TIMESTAMP,
    closes_at TIMESTAMP,
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    last_promoted_at TIMESTAMP,
    times_asked INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_questions_repo_status ON questions_repo(status);
CREATE INDEX IF NOT EXISTS idx_questions_repo_epoch_id ON questions_repo(epoch_id);

-- Answers, ordered by id; the first answer is bit 0
CREATE TABLE IF NOT EXISTS question_answers (
    id SERIAL PRIMARY KEY,
    question_id INTEGER NOT NULL REFERENCES questions_repo(id) ON DELETE CASCADE,
    text TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_question_answers_question_id ON question_answers(question_id);

-- Anonymous vote commitments. The nullifier alone is unique: it already
-- binds identity, question, and epoch.
CREATE TABLE IF NOT EXISTS response_commitments (
    id SERIAL PRIMARY KEY,
    question_id INTEGER NOT NULL REFERENCES questions_repo(id) ON DELETE CASCADE,
    epoch_id TEXT NOT NULL,
    nullifier TEXT NOT NULL UNIQUE,
    commitment TEXT NOT NULL,
    encrypted_answer TEXT,
    plaintext_answer_bit INTEGER NOT NULL CHECK (plaintext_answer_bit IN (0, 1)),
    submitted_at TIMESTAMP NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_response_commitments_epoch_id ON response_commitments(epoch_id);

-- One immutable aggregate per epoch; the UNIQUE epoch_id makes a re-run
-- fail closed instead of double-counting.
CREATE TABLE IF NOT EXISTS question_aggregates (
    id SERIAL PRIMARY KEY,
    question_id INTEGER NOT NULL REFERENCES questions_repo(id) ON DELETE CASCADE,
    epoch_id TEXT NOT NULL UNIQUE,
    total_responses INTEGER NOT NULL,
    count_a INTEGER NOT NULL,
    count_b INTEGER NOT NULL,
    winning_answer INTEGER NOT NULL CHECK (winning_answer IN (0, 1)),
    aggregation_digest TEXT NOT NULL,
    finalized_at TIMESTAMP NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_question_aggregates_question_id ON question_aggregates(question_id);
`

// SchemaSQLite mirrors the Postgres DDL for the embedded driver used in dev
// and tests.
const SchemaSQLite = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    username TEXT NOT NULL UNIQUE,
    kek_salt TEXT,
    wrapped_vmk TEXT,
    vmk_iv TEXT,
    wrapped_vmk_prf TEXT,
    prf_vmk_iv TEXT,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS questions_repo (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT,
    image TEXT,
    text TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'UPCOMING' CHECK (status IN ('UPCOMING', 'ACTIVE', 'AGGREGATING', 'FINALIZED')),
    epoch_id TEXT,
    opens_at TIMESTAMP,
    closes_at TIMESTAMP,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    last_promoted_at TIMESTAMP,
    times_asked INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_questions_repo_status ON questions_repo(status);
CREATE INDEX IF NOT EXISTS idx_questions_repo_epoch_id ON questions_repo(epoch_id);

CREATE TABLE IF NOT EXISTS question_answers (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    question_id INTEGER NOT NULL REFERENCES questions_repo(id) ON DELETE CASCADE,
    text TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_question_answers_question_id ON question_answers(question_id);

CREATE TABLE IF NOT EXISTS response_commitments (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    question_id INTEGER NOT NULL REFERENCES questions_repo(id) ON DELETE CASCADE,
    epoch_id TEXT NOT NULL,
    nullifier TEXT NOT NULL UNIQUE,
    commitment TEXT NOT NULL,
    encrypted_answer TEXT,
    plaintext_answer_bit INTEGER NOT NULL CHECK (plaintext_answer_bit IN (0, 1)),
    submitted_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_response_commitments_epoch_id ON response_commitments(epoch_id);

CREATE TABLE IF NOT EXISTS question_aggregates (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    question_id INTEGER NOT NULL REFERENCES questions_repo(id) ON DELETE CASCADE,
    epoch_id TEXT NOT NULL UNIQUE,
    total_responses INTEGER NOT NULL,
    count_a INTEGER NOT NULL,
    count_b INTEGER NOT NULL,
    winning_answer INTEGER NOT NULL CHECK (winning_answer IN (0, 1)),
    aggregation_digest TEXT NOT NULL,
    finalized_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_question_aggregates_question_id ON question_aggregates(question_id);
`
