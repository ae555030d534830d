// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package pool_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/mora-poll/gameclock"
	"github.com/danielhkuo/mora-poll/models"
	"github.com/danielhkuo/mora-poll/pool"
	"github.com/danielhkuo/mora-poll/testutil"
)

func TestResolvePromotesUpcoming(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	m := pool.NewManager(conn)

	id := testutil.CreateTestQuestion(t, conn, models.StatusUpcoming, "", "Coffee", "Tea")

	now := time.Now()
	q, err := m.ResolveActiveQuestion(now)
	require.NoError(t, err)

	assert.Equal(t, id, q.ID)
	assert.Equal(t, models.StatusActive, q.Status)
	require.NotNil(t, q.EpochID)
	assert.Equal(t, gameclock.EpochID(now), *q.EpochID)
	assert.Equal(t, 1, q.TimesAsked)
	require.NotNil(t, q.OpensAt)
	require.NotNil(t, q.ClosesAt)
	assert.True(t, q.OpensAt.Before(*q.ClosesAt))
	require.Len(t, q.Answers, 2)
	assert.Equal(t, "Coffee", q.Answers[0].Text)
	assert.Equal(t, "Tea", q.Answers[1].Text)
}

func TestResolveIsStableWithinEpoch(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	m := pool.NewManager(conn)

	testutil.CreateTestQuestion(t, conn, models.StatusUpcoming, "", "Cats", "Dogs")
	testutil.CreateTestQuestion(t, conn, models.StatusUpcoming, "", "Sun", "Moon")

	now := time.Now()
	first, err := m.ResolveActiveQuestion(now)
	require.NoError(t, err)
	second, err := m.ResolveActiveQuestion(now)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, second.TimesAsked)
}

func TestResolveDemotesStaleActive(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	m := pool.NewManager(conn)

	// An ACTIVE row left over from a previous hour.
	staleID := testutil.CreateTestQuestion(t, conn, models.StatusActive, "01010101", "Old A", "Old B")
	testutil.CreateTestQuestion(t, conn, models.StatusUpcoming, "", "New A", "New B")

	q, err := m.ResolveActiveQuestion(time.Now())
	require.NoError(t, err)
	assert.NotEqual(t, staleID, q.ID)

	var status string
	require.NoError(t, conn.QueryRow(
		`SELECT status FROM questions_repo WHERE id = $1`, staleID).Scan(&status))
	assert.Equal(t, models.StatusAggregating, status)
}

func TestResolveRecyclesFinalized(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	m := pool.NewManager(conn)

	sourceID := testutil.CreateTestQuestion(t, conn, models.StatusFinalized, "01010101", "Left", "Right")

	q, err := m.ResolveActiveQuestion(time.Now())
	require.NoError(t, err)

	assert.NotEqual(t, sourceID, q.ID)
	assert.Equal(t, models.StatusActive, q.Status)
	assert.Equal(t, "What do you do?", q.Text)
	assert.Equal(t, 1, q.TimesAsked)
	require.Len(t, q.Answers, 2)
	// Answer order may be swapped, but both texts survive the clone.
	texts := []string{q.Answers[0].Text, q.Answers[1].Text}
	assert.ElementsMatch(t, []string{"Left", "Right"}, texts)

	var sourceStatus string
	require.NoError(t, conn.QueryRow(
		`SELECT status FROM questions_repo WHERE id = $1`, sourceID).Scan(&sourceStatus))
	assert.Equal(t, models.StatusFinalized, sourceStatus)
}

func TestResolveExhaustedPool(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	m := pool.NewManager(conn)

	_, err := m.ResolveActiveQuestion(time.Now())
	require.ErrorIs(t, err, pool.ErrPoolExhausted)
}

func TestResolveCorruptedState(t *testing.T) {
	t.Run("too many active rows", func(t *testing.T) {
		conn := testutil.SetupTestDB(t)
		m := pool.NewManager(conn)

		for i := 0; i < 3; i++ {
			testutil.CreateTestQuestion(t, conn, models.StatusActive, "01010101", "A", "B")
		}

		_, err := m.ResolveActiveQuestion(time.Now())
		require.ErrorIs(t, err, pool.ErrCorruptedState)
	})

	t.Run("duplicate active rows for one epoch", func(t *testing.T) {
		conn := testutil.SetupTestDB(t)
		m := pool.NewManager(conn)

		now := time.Now()
		epochID := gameclock.EpochID(now)
		testutil.CreateTestQuestion(t, conn, models.StatusActive, epochID, "A", "B")
		testutil.CreateTestQuestion(t, conn, models.StatusActive, epochID, "C", "D")

		_, err := m.ResolveActiveQuestion(now)
		require.ErrorIs(t, err, pool.ErrCorruptedState)
	})
}

func TestCloseEpochIsIdempotent(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	m := pool.NewManager(conn)

	now := time.Now()
	epochID := gameclock.EpochID(now)
	id := testutil.CreateTestQuestion(t, conn, models.StatusAggregating, epochID, "A", "B")

	require.NoError(t, m.CloseEpoch(epochID))
	require.NoError(t, m.CloseEpoch(epochID))

	var status string
	require.NoError(t, conn.QueryRow(
		`SELECT status FROM questions_repo WHERE id = $1`, id).Scan(&status))
	assert.Equal(t, models.StatusFinalized, status)
}

func TestSampleQuestion(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	m := pool.NewManager(conn)

	older := testutil.CreateTestQuestion(t, conn, models.StatusFinalized, "01010101", "A", "B")
	newer := testutil.CreateTestQuestion(t, conn, models.StatusFinalized, "02010101", "C", "D")
	_, err := conn.Exec(`UPDATE questions_repo SET closes_at = $1 WHERE id = $2`,
		time.Now().UTC().Add(-48*time.Hour), older)
	require.NoError(t, err)

	q, err := m.SampleQuestion()
	require.NoError(t, err)
	assert.Equal(t, newer, q.ID)
	assert.Len(t, q.Answers, 2)
}

func TestSampleQuestionEmpty(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	m := pool.NewManager(conn)

	// UPCOMING rows have no closes_at and never appear in the sample.
	testutil.CreateTestQuestion(t, conn, models.StatusUpcoming, "", "A", "B")

	_, err := m.SampleQuestion()
	require.ErrorIs(t, err, pool.ErrNoQuestion)
}
