// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/mora-poll/middleware"
	"github.com/danielhkuo/mora-poll/models"
)

type ResultsHandler struct {
	db *sql.DB
}

func NewResultsHandler(db *sql.DB) *ResultsHandler {
	return &ResultsHandler{db: db}
}

// GetPastResults handles GET /game/past-results. Public: aggregates are the
// only per-question data ever exposed, never individual commitments.
func (h *ResultsHandler) GetPastResults(w http.ResponseWriter, r *http.Request) {
	rows, err := h.db.Query(`
		SELECT a.question_id, a.epoch_id, q.title, q.image, q.text,
		       a.total_responses, a.count_a, a.count_b, a.winning_answer, a.finalized_at,
		       (SELECT text FROM question_answers WHERE question_id = q.id ORDER BY id LIMIT 1),
		       (SELECT text FROM question_answers WHERE question_id = q.id ORDER BY id LIMIT 1 OFFSET 1)
		FROM question_aggregates a
		JOIN questions_repo q ON q.id = a.question_id
		ORDER BY a.finalized_at DESC, a.id DESC
	`)
	if err != nil {
		slog.Error("failed to query past results", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	results := []models.PastResult{}
	for rows.Next() {
		var (
			res              models.PastResult
			answerA, answerB sql.NullString
		)
		if err := rows.Scan(&res.QuestionID, &res.EpochID, &res.Title, &res.Image, &res.Text,
			&res.TotalResponses, &res.CountA, &res.CountB, &res.WinningAnswer, &res.FinalizedAt,
			&answerA, &answerB); err != nil {
			slog.Error("failed to scan past result", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		res.AnswerAText = answerA.String
		res.AnswerBText = answerB.String
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		slog.Error("failed to read past results", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, map[string]interface{}{
		"results": results,
		"count":   len(results),
	})
}
