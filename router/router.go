// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/mora-poll/aggregate"
	"github.com/danielhkuo/mora-poll/cliparse"
	"github.com/danielhkuo/mora-poll/handlers"
	"github.com/danielhkuo/mora-poll/middleware"
	"github.com/danielhkuo/mora-poll/pool"
)

func NewRouter(db *sql.DB, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	poolManager := pool.NewManager(db)
	engine := aggregate.NewEngine(db, poolManager)

	questionHandler := handlers.NewQuestionHandler(poolManager, cfg)
	commitmentHandler := handlers.NewCommitmentHandler(db)
	manageHandler := handlers.NewManageHandler(db, engine)
	resultsHandler := handlers.NewResultsHandler(db)
	userHandler := handlers.NewUserHandler(db, cfg)

	session := func(next http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(middleware.RequireSession(cfg.SessionSecret, next))
	}
	manage := func(next http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(middleware.RequireManageKey(cfg.ManageAPIKey, next))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Game operations (active question guards its own session so the
	// ?sample=1 branch stays public)
	mux.HandleFunc("GET /game/active-question", middleware.WithLogging(questionHandler.GetActiveQuestion))
	mux.HandleFunc("POST /game/commitments", session(commitmentHandler.SubmitCommitment))
	mux.HandleFunc("GET /game/past-results", middleware.WithLogging(resultsHandler.GetPastResults))

	// Manage operations (requires X-Api-Key)
	mux.HandleFunc("POST /manage/aggregate", manage(manageHandler.Aggregate))
	mux.HandleFunc("GET /manage/commitments", manage(manageHandler.CommitmentsByEpoch))
	mux.HandleFunc("POST /manage/questions", manage(manageHandler.AddQuestion))
	mux.HandleFunc("POST /manage/reset-game-meta", manage(manageHandler.ResetGameMeta))

	// Auth and vault key material
	mux.HandleFunc("POST /auth/register", middleware.WithLogging(userHandler.Register))
	mux.HandleFunc("GET /auth/me", session(userHandler.GetMe))
	mux.HandleFunc("POST /vault/keys", session(userHandler.SaveVaultKeys))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("mora-poll API v1"))
	})

	return mux
}
