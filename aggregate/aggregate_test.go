// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package aggregate_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/mora-poll/aggregate"
	"github.com/danielhkuo/mora-poll/models"
	"github.com/danielhkuo/mora-poll/pool"
	"github.com/danielhkuo/mora-poll/testutil"
)

func TestRunTalliesAndFinalizes(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	engine := aggregate.NewEngine(conn, pool.NewManager(conn))

	const epochID = "05010101"
	questionID := testutil.CreateTestQuestion(t, conn, models.StatusAggregating, epochID, "A", "B")
	for i := 0; i < 4; i++ {
		testutil.InsertTestCommitment(t, conn, questionID, epochID, fmt.Sprintf("null-a-%d", i), models.AnswerBitA)
	}
	for i := 0; i < 3; i++ {
		testutil.InsertTestCommitment(t, conn, questionID, epochID, fmt.Sprintf("null-b-%d", i), models.AnswerBitB)
	}

	agg, err := engine.Run(epochID)
	require.NoError(t, err)

	assert.Equal(t, questionID, agg.QuestionID)
	assert.Equal(t, epochID, agg.EpochID)
	assert.Equal(t, 7, agg.TotalResponses)
	assert.Equal(t, 4, agg.CountA)
	assert.Equal(t, 3, agg.CountB)
	assert.Equal(t, models.AnswerBitA, agg.WinningAnswer)
	assert.Equal(t, "05010101_7_0", agg.AggregationDigest)
	assert.NotZero(t, agg.ID)

	var status string
	require.NoError(t, conn.QueryRow(
		`SELECT status FROM questions_repo WHERE id = $1`, questionID).Scan(&status))
	assert.Equal(t, models.StatusFinalized, status)
}

func TestRunWinningAnswer(t *testing.T) {
	tests := []struct {
		name    string
		countA  int
		countB  int
		winning int
	}{
		{"a wins", 3, 1, models.AnswerBitA},
		{"b wins", 1, 3, models.AnswerBitB},
		{"tie goes to a", 2, 2, models.AnswerBitA},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := testutil.SetupTestDB(t)
			engine := aggregate.NewEngine(conn, pool.NewManager(conn))

			const epochID = "06010101"
			questionID := testutil.CreateTestQuestion(t, conn, models.StatusAggregating, epochID, "A", "B")
			for i := 0; i < tt.countA; i++ {
				testutil.InsertTestCommitment(t, conn, questionID, epochID, fmt.Sprintf("null-a-%d", i), models.AnswerBitA)
			}
			for i := 0; i < tt.countB; i++ {
				testutil.InsertTestCommitment(t, conn, questionID, epochID, fmt.Sprintf("null-b-%d", i), models.AnswerBitB)
			}

			agg, err := engine.Run(epochID)
			require.NoError(t, err)
			assert.Equal(t, tt.winning, agg.WinningAnswer)
			expectedDigest := fmt.Sprintf("%s_%d_%d", epochID, tt.countA+tt.countB, tt.winning)
			assert.Equal(t, expectedDigest, agg.AggregationDigest)
		})
	}
}

func TestRunEmptyEpoch(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	engine := aggregate.NewEngine(conn, pool.NewManager(conn))

	_, err := engine.Run("07010101")
	require.ErrorIs(t, err, aggregate.ErrNoCommitments)
}

func TestRunTwiceFailsClosed(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	engine := aggregate.NewEngine(conn, pool.NewManager(conn))

	const epochID = "08010101"
	questionID := testutil.CreateTestQuestion(t, conn, models.StatusAggregating, epochID, "A", "B")
	testutil.InsertTestCommitment(t, conn, questionID, epochID, "null-1", models.AnswerBitA)

	_, err := engine.Run(epochID)
	require.NoError(t, err)

	_, err = engine.Run(epochID)
	require.Error(t, err)

	var count int
	require.NoError(t, conn.QueryRow(
		`SELECT COUNT(*) FROM question_aggregates WHERE epoch_id = $1`, epochID).Scan(&count))
	assert.Equal(t, 1, count)
}
