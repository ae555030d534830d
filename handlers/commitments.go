// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielhkuo/mora-poll/middleware"
	"github.com/danielhkuo/mora-poll/models"
)

type CommitmentHandler struct {
	db *sql.DB
}

func NewCommitmentHandler(db *sql.DB) *CommitmentHandler {
	return &CommitmentHandler{db: db}
}

// SubmitCommitment handles POST /game/commitments. The nullifier's UNIQUE
// constraint is the only duplicate check: it already binds identity, question
// and epoch, so a second submission for the same triple collides no matter
// which server instance takes it.
func (h *CommitmentHandler) SubmitCommitment(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitCommitmentRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.QuestionID <= 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "question_id is required")
		return
	}
	if req.EpochID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "epoch_id is required")
		return
	}
	if req.Nullifier == "" || req.Commitment == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "nullifier and commitment are required")
		return
	}
	if req.PlaintextAnswerBit == nil || (*req.PlaintextAnswerBit != models.AnswerBitA && *req.PlaintextAnswerBit != models.AnswerBitB) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "plaintext_answer_bit must be 0 or 1")
		return
	}

	var encryptedAnswer *string
	if req.EncryptedAnswer != "" {
		encryptedAnswer = &req.EncryptedAnswer
	}

	submittedAt := time.Now().UTC()
	var id int
	err := h.db.QueryRow(`
		INSERT INTO response_commitments
			(question_id, epoch_id, nullifier, commitment, encrypted_answer, plaintext_answer_bit, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, req.QuestionID, req.EpochID, req.Nullifier, req.Commitment,
		encryptedAnswer, *req.PlaintextAnswerBit, submittedAt).Scan(&id)

	if err != nil {
		if isUniqueViolation(err, "response_commitments.nullifier") {
			middleware.ErrorResponse(w, http.StatusConflict, "Already submitted for this question and epoch")
			return
		}
		if isForeignKeyViolation(err) {
			middleware.ErrorResponse(w, http.StatusBadRequest, "Unknown question_id")
			return
		}
		slog.Error("failed to insert commitment", "error", err, "epoch_id", req.EpochID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to submit commitment")
		return
	}

	slog.Info("commitment recorded", "commitment_id", id, "question_id", req.QuestionID, "epoch_id", req.EpochID)

	middleware.JSONResponse(w, http.StatusCreated, models.SubmitCommitmentResponse{
		ID:          id,
		SubmittedAt: submittedAt,
	})
}

// isUniqueViolation reports whether err is a unique-constraint failure from
// either driver; needle narrows sqlite's message to a specific constraint.
func isUniqueViolation(err error, needle string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint failed") {
		return needle == "" || strings.Contains(msg, needle)
	}
	return strings.Contains(msg, "duplicate key value violates unique constraint")
}

func isForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "FOREIGN KEY constraint failed") ||
		strings.Contains(msg, "violates foreign key constraint")
}
