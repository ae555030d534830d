// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the MORA poll API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg)

# Endpoints

Health:

	GET /health

Game (session via X-Session-Token unless noted):

	GET  /game/active-question          - Resolve the hour's question (promotes on first read)
	GET  /game/active-question?sample=1 - Most recently closed question (public)
	POST /game/commitments              - Submit an anonymous commitment
	GET  /game/past-results             - Finalized aggregates (public)

Manage (requires X-Api-Key):

	POST /manage/aggregate       - Tally and finalize an epoch
	GET  /manage/commitments     - Raw commitments for an epoch
	POST /manage/questions       - Add a question with answers
	POST /manage/reset-game-meta - Return every question to UPCOMING

Auth and vault:

	POST /auth/register - Create a user, issue a session token
	GET  /auth/me       - User row with wrapped vault key material
	POST /vault/keys    - Persist wrapped VMK (password wrap, optional PRF wrap)

# Handler Initialization

The router builds the pool manager and aggregation engine once and injects
them into the handlers:

	poolManager := pool.NewManager(db)
	engine := aggregate.NewEngine(db, poolManager)
	questionHandler := handlers.NewQuestionHandler(poolManager, cfg)
*/
package router
