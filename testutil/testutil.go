// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/danielhkuo/mora-poll/auth"
	"github.com/danielhkuo/mora-poll/cliparse"
	"github.com/danielhkuo/mora-poll/db"
)

// SetupTestDB creates a fresh in-memory sqlite database with the full schema.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	// A single connection so every statement sees the same in-memory db.
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("Failed to enable foreign keys: %v", err)
	}
	if err := db.CreateSchema(conn, "sqlite"); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	t.Cleanup(func() { conn.Close() })
	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:          3319,
		DatabaseURL:   ":memory:",
		DatabaseType:  "sqlite",
		SessionSecret: "test-session-secret",
		ManageAPIKey:  "test-manage-key",
	}
}

// CreateTestUser inserts a user and returns its ID and a valid session token.
func CreateTestUser(t *testing.T, conn *sql.DB, cfg cliparse.Config, username string) (userID, token string) {
	t.Helper()

	userID = auth.NewUserID()
	_, err := conn.Exec(`
		INSERT INTO users (id, username, created_at) VALUES ($1, $2, $3)
	`, userID, username, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return userID, auth.GenerateSessionToken(userID, cfg.SessionSecret)
}

// CreateTestQuestion inserts a question with the given status and answers,
// returning the question ID. epochID may be empty for UPCOMING/FINALIZED
// rows without epoch metadata.
func CreateTestQuestion(t *testing.T, conn *sql.DB, status, epochID string, answers ...string) int {
	t.Helper()

	now := time.Now().UTC()
	var (
		epoch             *string
		opensAt, closesAt *time.Time
	)
	if epochID != "" {
		epoch = &epochID
		o := now.Truncate(time.Hour)
		c := o.Add(time.Hour - time.Millisecond)
		opensAt, closesAt = &o, &c
	}

	var questionID int
	err := conn.QueryRow(`
		INSERT INTO questions_repo (title, image, text, status, epoch_id, opens_at, closes_at, created_at, times_asked)
		VALUES ('Test Question', NULL, 'What do you do?', $1, $2, $3, $4, $5, 0)
		RETURNING id
	`, status, epoch, opensAt, closesAt, now).Scan(&questionID)
	if err != nil {
		t.Fatalf("Failed to create test question: %v", err)
	}

	for _, text := range answers {
		if _, err := conn.Exec(`
			INSERT INTO question_answers (question_id, text) VALUES ($1, $2)
		`, questionID, text); err != nil {
			t.Fatalf("Failed to create test answer: %v", err)
		}
	}

	return questionID
}

// InsertTestCommitment inserts a commitment row directly.
func InsertTestCommitment(t *testing.T, conn *sql.DB, questionID int, epochID, nullifier string, bit int) {
	t.Helper()

	_, err := conn.Exec(`
		INSERT INTO response_commitments
			(question_id, epoch_id, nullifier, commitment, encrypted_answer, plaintext_answer_bit, submitted_at)
		VALUES ($1, $2, $3, 'test-commitment', 'test-ciphertext', $4, $5)
	`, questionID, epochID, nullifier, bit, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to insert test commitment: %v", err)
	}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
