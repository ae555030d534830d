// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielhkuo/mora-poll/aggregate"
	"github.com/danielhkuo/mora-poll/middleware"
	"github.com/danielhkuo/mora-poll/models"
)

type ManageHandler struct {
	db     *sql.DB
	engine *aggregate.Engine
}

func NewManageHandler(db *sql.DB, engine *aggregate.Engine) *ManageHandler {
	return &ManageHandler{db: db, engine: engine}
}

// Aggregate handles POST /manage/aggregate
func (h *ManageHandler) Aggregate(w http.ResponseWriter, r *http.Request) {
	var req models.AggregateRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.EpochID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "epoch_id is required")
		return
	}

	if _, err := h.engine.Run(req.EpochID); err != nil {
		if errors.Is(err, aggregate.ErrNoCommitments) {
			middleware.ErrorResponse(w, http.StatusBadRequest, "No commitments found for this epoch")
			return
		}
		if isUniqueViolation(err, "question_aggregates.epoch_id") {
			middleware.ErrorResponse(w, http.StatusBadRequest, "Epoch already aggregated")
			return
		}
		slog.Error("aggregation failed", "error", err, "epoch_id", req.EpochID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Aggregation failed")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.AggregateResponse{Success: true})
}

// CommitmentsByEpoch handles GET /manage/commitments?epoch_id=
func (h *ManageHandler) CommitmentsByEpoch(w http.ResponseWriter, r *http.Request) {
	epochID := r.URL.Query().Get("epoch_id")
	if epochID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "epoch_id is required")
		return
	}

	rows, err := h.db.Query(`
		SELECT id, question_id, epoch_id, nullifier, commitment, encrypted_answer, submitted_at
		FROM response_commitments
		WHERE epoch_id = $1
		ORDER BY id
	`, epochID)
	if err != nil {
		slog.Error("failed to query commitments", "error", err, "epoch_id", epochID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	commitments := []models.Commitment{}
	for rows.Next() {
		var c models.Commitment
		if err := rows.Scan(&c.ID, &c.QuestionID, &c.EpochID, &c.Nullifier,
			&c.Commitment, &c.EncryptedAnswer, &c.SubmittedAt); err != nil {
			slog.Error("failed to scan commitment", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		commitments = append(commitments, c)
	}
	if err := rows.Err(); err != nil {
		slog.Error("failed to read commitments", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.CommitmentsByEpochResponse{
		Commitments: commitments,
		Count:       len(commitments),
	})
}

// AddQuestion handles POST /manage/questions
func (h *ManageHandler) AddQuestion(w http.ResponseWriter, r *http.Request) {
	var req models.AddQuestionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if strings.TrimSpace(req.Text) == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "text is required")
		return
	}
	if len(req.Answers) < 2 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "at least 2 answers are required")
		return
	}
	for _, a := range req.Answers {
		if strings.TrimSpace(a.Text) == "" {
			middleware.ErrorResponse(w, http.StatusBadRequest, "answer text cannot be empty")
			return
		}
	}

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	var questionID int
	err = tx.QueryRow(`
		INSERT INTO questions_repo (title, image, text, status, created_at, times_asked)
		VALUES ($1, $2, $3, 'UPCOMING', $4, 0)
		RETURNING id
	`, req.Title, req.Image, req.Text, time.Now().UTC()).Scan(&questionID)
	if err != nil {
		slog.Error("failed to insert question", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to add question")
		return
	}

	answerIDs := make([]int, 0, len(req.Answers))
	for _, a := range req.Answers {
		var answerID int
		err = tx.QueryRow(`
			INSERT INTO question_answers (question_id, text) VALUES ($1, $2)
			RETURNING id
		`, questionID, a.Text).Scan(&answerID)
		if err != nil {
			slog.Error("failed to insert answer", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to add question")
			return
		}
		answerIDs = append(answerIDs, answerID)
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit question", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to add question")
		return
	}

	slog.Info("question added", "question_id", questionID, "answers", len(answerIDs))

	middleware.JSONResponse(w, http.StatusCreated, models.AddQuestionResponse{
		QuestionID: questionID,
		AnswerIDs:  answerIDs,
	})
}

// ResetGameMeta handles POST /manage/reset-game-meta. Clears epoch metadata
// on every question and returns them all to UPCOMING.
func (h *ManageHandler) ResetGameMeta(w http.ResponseWriter, r *http.Request) {
	res, err := h.db.Exec(`
		UPDATE questions_repo
		SET status = 'UPCOMING', epoch_id = NULL, opens_at = NULL, closes_at = NULL
	`)
	if err != nil {
		slog.Error("failed to reset game meta", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to reset game meta")
		return
	}

	affected, err := res.RowsAffected()
	if err != nil {
		slog.Error("failed to count reset rows", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to reset game meta")
		return
	}

	slog.Info("game meta reset", "reset_count", affected)

	middleware.JSONResponse(w, http.StatusOK, models.ResetGameMetaResponse{
		Success:    true,
		ResetCount: int(affected),
	})
}
