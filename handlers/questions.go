// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/mora-poll/auth"
	"github.com/danielhkuo/mora-poll/cliparse"
	"github.com/danielhkuo/mora-poll/middleware"
	"github.com/danielhkuo/mora-poll/models"
	"github.com/danielhkuo/mora-poll/pool"
)

type QuestionHandler struct {
	pool *pool.Manager
	cfg  cliparse.Config
}

func NewQuestionHandler(p *pool.Manager, cfg cliparse.Config) *QuestionHandler {
	return &QuestionHandler{pool: p, cfg: cfg}
}

// GetActiveQuestion handles GET /game/active-question. With ?sample=1 it
// serves the most recently closed question without authentication and without
// touching pool state; otherwise it requires a session and resolves (possibly
// promoting) the question for the current epoch.
func (h *QuestionHandler) GetActiveQuestion(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("sample") == "1" {
		question, err := h.pool.SampleQuestion()
		if err != nil {
			if errors.Is(err, pool.ErrNoQuestion) {
				middleware.ErrorResponse(w, http.StatusNotFound, "No question available")
				return
			}
			slog.Error("failed to load sample question", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		middleware.JSONResponse(w, http.StatusOK, models.ActiveQuestionResponse{ActiveQuestion: question})
		return
	}

	// The guarded path validates its own session so the sample branch above
	// can stay public on the same route.
	if _, err := auth.ValidateSessionToken(r.Header.Get("X-Session-Token"), h.cfg.SessionSecret); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	question, err := h.pool.ResolveActiveQuestion(time.Now())
	if err != nil {
		switch {
		case errors.Is(err, pool.ErrCorruptedState):
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Question pool state is corrupted")
		case errors.Is(err, pool.ErrPoolExhausted):
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Question pool is exhausted")
		default:
			slog.Error("failed to resolve active question", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		}
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ActiveQuestionResponse{ActiveQuestion: question})
}
