// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the MORA poll API.

# Handler Types

Each handler is a struct with its dependencies injected:

  - QuestionHandler: Active-question resolution and the anonymous sample view
  - CommitmentHandler: Anonymous commitment submission
  - ManageHandler: Aggregation, question authoring, epoch inspection, resets
  - ResultsHandler: Public past results
  - UserHandler: Registration, profile, vault key material

Handlers are created via constructor functions:

	questionHandler := handlers.NewQuestionHandler(poolManager, cfg)

# Game Flow

Each UTC hour is an epoch. The first authenticated read of

	GET /game/active-question

inside a fresh epoch promotes an UPCOMING question to ACTIVE for that epoch
(recycling a FINALIZED question when the pool is empty). Clients then submit
exactly one commitment per question and epoch:

	POST /game/commitments

A duplicate nullifier answers 409 — the UNIQUE constraint on the nullifier is
the whole replay check.

# Aggregation

After the epoch closes, an operator tallies it:

	POST /manage/aggregate

This counts the plaintext bits, writes one immutable aggregate row for the
epoch and finalizes the epoch's question. Results become public via

	GET /game/past-results

# Vault Keys

The server stores only wrapped key material; unwrapping happens client-side:

	POST /auth/register → session token
	POST /vault/keys    → persist wrapped VMK (password wrap, optional PRF wrap)
	GET  /auth/me       → user row including the wrapped material
*/
package handlers
