// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package aggregate

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/danielhkuo/mora-poll/models"
	"github.com/danielhkuo/mora-poll/pool"
)

// ErrNoCommitments is returned when an epoch has nothing to tally.
var ErrNoCommitments = errors.New("aggregate: no commitments found for epoch")

// Engine tallies the commitments of a closed epoch into one immutable
// aggregate row and finalizes the epoch's question.
type Engine struct {
	db   *sql.DB
	pool *pool.Manager
}

func NewEngine(db *sql.DB, pool *pool.Manager) *Engine {
	return &Engine{db: db, pool: pool}
}

// Run aggregates one epoch. It is a one-shot operator action, not a
// background job: the UNIQUE constraint on question_aggregates.epoch_id
// makes an accidental re-run fail instead of double-counting.
//
// The tally reads the transitional plaintext answer bit stored beside each
// commitment; a blind aggregator will replace this source later.
func (e *Engine) Run(epochID string) (models.Aggregate, error) {
	rows, err := e.db.Query(`
		SELECT question_id, plaintext_answer_bit
		FROM response_commitments
		WHERE epoch_id = $1
	`, epochID)
	if err != nil {
		return models.Aggregate{}, fmt.Errorf("failed to load commitments: %w", err)
	}
	defer rows.Close()

	var (
		questionID int
		countA     int
		countB     int
	)
	for rows.Next() {
		var qid, bit int
		if err := rows.Scan(&qid, &bit); err != nil {
			return models.Aggregate{}, fmt.Errorf("failed to scan commitment: %w", err)
		}
		questionID = qid
		if bit == models.AnswerBitB {
			countB++
		} else {
			countA++
		}
	}
	if err := rows.Err(); err != nil {
		return models.Aggregate{}, fmt.Errorf("failed to read commitments: %w", err)
	}

	total := countA + countB
	if total == 0 {
		return models.Aggregate{}, ErrNoCommitments
	}

	// Ties resolve to answer A.
	winning := models.AnswerBitA
	if countB > countA {
		winning = models.AnswerBitB
	}

	digest := fmt.Sprintf("%s_%d_%d", epochID, total, winning)
	finalizedAt := time.Now().UTC()

	agg := models.Aggregate{
		QuestionID:        questionID,
		EpochID:           epochID,
		TotalResponses:    total,
		CountA:            countA,
		CountB:            countB,
		WinningAnswer:     winning,
		AggregationDigest: digest,
		FinalizedAt:       finalizedAt,
	}

	err = e.db.QueryRow(`
		INSERT INTO question_aggregates
			(question_id, epoch_id, total_responses, count_a, count_b,
			 winning_answer, aggregation_digest, finalized_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, questionID, epochID, total, countA, countB, winning, digest, finalizedAt).Scan(&agg.ID)
	if err != nil {
		return models.Aggregate{}, fmt.Errorf("failed to insert aggregate: %w", err)
	}

	if err := e.pool.CloseEpoch(epochID); err != nil {
		return models.Aggregate{}, err
	}

	slog.Info("epoch aggregated",
		"epoch_id", epochID,
		"total_responses", total,
		"count_a", countA,
		"count_b", countB,
		"winning_answer", winning,
	)
	return agg, nil
}
