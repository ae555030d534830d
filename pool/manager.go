// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package pool

import (
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/danielhkuo/mora-poll/gameclock"
	"github.com/danielhkuo/mora-poll/models"
)

var (
	// ErrCorruptedState signals an invariant breach (more than two ACTIVE
	// rows, or two ACTIVE rows sharing an epoch). Never auto-healed; an
	// operator must reset the pool out-of-band.
	ErrCorruptedState = errors.New("pool: corrupted active-question state")
	// ErrPoolExhausted means no UPCOMING question exists and no FINALIZED
	// question is available to recycle.
	ErrPoolExhausted = errors.New("pool: no upcoming or finalized questions available")
	// ErrNoQuestion means the sample path found nothing to preview.
	ErrNoQuestion = errors.New("pool: no question available")
)

// resolveAttempts bounds the promote loop: one initial pass plus retries
// after an on-demand recycle or a lost promotion race.
const resolveAttempts = 3

// Manager owns the question lifecycle state machine over the shared store.
type Manager struct {
	db *sql.DB
}

func NewManager(db *sql.DB) *Manager {
	return &Manager{db: db}
}

// ResolveActiveQuestion returns the question live for the epoch containing
// now, promoting an UPCOMING question (recycling a FINALIZED one if the pool
// is empty) when no question is live yet.
//
// Promotion is a conditional write guarded on status, so two concurrent
// resolutions for the same epoch cannot both promote: the loser re-reads and
// adopts the winner's row.
func (m *Manager) ResolveActiveQuestion(now time.Time) (models.QuestionWithAnswers, error) {
	epochID := gameclock.EpochID(now)
	opensAt, closesAt := gameclock.EpochBounds(now)

	var question models.Question
	for attempt := 0; attempt < resolveAttempts; attempt++ {
		q, err := m.findActiveForEpoch(epochID)
		if err != nil {
			return models.QuestionWithAnswers{}, err
		}
		if q != nil {
			question = *q
			break
		}

		candidate, err := m.latestUpcoming()
		if err != nil {
			return models.QuestionWithAnswers{}, err
		}
		if candidate == 0 {
			if err := m.recycleFinalized(now); err != nil {
				return models.QuestionWithAnswers{}, err
			}
			continue
		}

		promoted, err := m.promote(candidate, epochID, opensAt, closesAt, now)
		if err != nil {
			return models.QuestionWithAnswers{}, err
		}
		if promoted == nil {
			// Lost the promotion race; the next pass picks up whichever
			// row won.
			continue
		}
		question = *promoted
		break
	}

	if question.ID == 0 {
		return models.QuestionWithAnswers{}, fmt.Errorf("pool: could not resolve active question after %d attempts", resolveAttempts)
	}

	m.demoteStale(epochID)

	answers, err := m.loadAnswers(question.ID)
	if err != nil {
		return models.QuestionWithAnswers{}, err
	}
	return models.QuestionWithAnswers{Question: question, Answers: answers}, nil
}

// findActiveForEpoch runs the corruption checks and returns the ACTIVE row
// for the epoch, or nil when none is live yet.
func (m *Manager) findActiveForEpoch(epochID string) (*models.Question, error) {
	var activeCount int
	err := m.db.QueryRow(`SELECT COUNT(*) FROM questions_repo WHERE status = 'ACTIVE'`).Scan(&activeCount)
	if err != nil {
		return nil, fmt.Errorf("failed to count active questions: %w", err)
	}
	// At most two ACTIVE rows can legitimately coexist: the current epoch's
	// and a not-yet-demoted previous one.
	if activeCount > 2 {
		slog.Error("active question invariant breached", "active_count", activeCount)
		return nil, ErrCorruptedState
	}

	rows, err := m.db.Query(`
		SELECT id, title, image, text, status, epoch_id, opens_at, closes_at,
		       created_at, last_promoted_at, times_asked
		FROM questions_repo
		WHERE status = 'ACTIVE' AND epoch_id = $1
		LIMIT 2
	`, epochID)
	if err != nil {
		return nil, fmt.Errorf("failed to query active question: %w", err)
	}
	defer rows.Close()

	var matches []models.Question
	for rows.Next() {
		var q models.Question
		if err := scanQuestion(rows, &q); err != nil {
			return nil, err
		}
		matches = append(matches, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read active questions: %w", err)
	}

	if len(matches) > 1 {
		slog.Error("duplicate active questions for epoch", "epoch_id", epochID)
		return nil, ErrCorruptedState
	}
	if len(matches) == 1 {
		return &matches[0], nil
	}
	return nil, nil
}

// latestUpcoming returns the id of the most recently created UPCOMING
// question, or 0 when the pool is empty.
func (m *Manager) latestUpcoming() (int, error) {
	var id int
	err := m.db.QueryRow(`
		SELECT id FROM questions_repo
		WHERE status = 'UPCOMING'
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to select upcoming question: %w", err)
	}
	return id, nil
}

// promote performs the conditional ACTIVE write. Returns nil (no error) when
// another resolution promoted first.
func (m *Manager) promote(id int, epochID string, opensAt, closesAt, now time.Time) (*models.Question, error) {
	res, err := m.db.Exec(`
		UPDATE questions_repo
		SET status = 'ACTIVE', epoch_id = $1, opens_at = $2, closes_at = $3,
		    last_promoted_at = $4, times_asked = times_asked + 1
		WHERE id = $5 AND status = 'UPCOMING'
	`, epochID, opensAt, closesAt, now.UTC(), id)
	if err != nil {
		return nil, fmt.Errorf("failed to promote question: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check promotion result: %w", err)
	}
	if affected == 0 {
		slog.Warn("promotion race lost", "question_id", id, "epoch_id", epochID)
		return nil, nil
	}

	slog.Info("question promoted", "question_id", id, "epoch_id", epochID)

	var q models.Question
	row := m.db.QueryRow(`
		SELECT id, title, image, text, status, epoch_id, opens_at, closes_at,
		       created_at, last_promoted_at, times_asked
		FROM questions_repo WHERE id = $1
	`, id)
	if err := scanQuestion(row, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

// recycleFinalized clones a uniformly random FINALIZED question (text and
// answer text only, no identifiers or timestamps) into a fresh UPCOMING row.
// With exactly two answers their order is swapped on an unbiased coin to
// avoid positional bias.
func (m *Manager) recycleFinalized(now time.Time) error {
	var (
		sourceID     int
		title, image *string
		text         string
	)
	err := m.db.QueryRow(`
		SELECT id, title, image, text FROM questions_repo
		WHERE status = 'FINALIZED'
		ORDER BY random()
		LIMIT 1
	`).Scan(&sourceID, &title, &image, &text)
	if err == sql.ErrNoRows {
		return ErrPoolExhausted
	}
	if err != nil {
		return fmt.Errorf("failed to select finalized question: %w", err)
	}

	answerRows, err := m.db.Query(`
		SELECT text FROM question_answers WHERE question_id = $1 ORDER BY id
	`, sourceID)
	if err != nil {
		return fmt.Errorf("failed to load answers for recycling: %w", err)
	}
	defer answerRows.Close()

	var answerTexts []string
	for answerRows.Next() {
		var t string
		if err := answerRows.Scan(&t); err != nil {
			return fmt.Errorf("failed to scan answer: %w", err)
		}
		answerTexts = append(answerTexts, t)
	}
	if err := answerRows.Err(); err != nil {
		return fmt.Errorf("failed to read answers: %w", err)
	}
	if len(answerTexts) < 2 {
		return fmt.Errorf("finalized question %d has fewer than 2 answers", sourceID)
	}

	if len(answerTexts) == 2 {
		swap, err := coinFlip()
		if err != nil {
			return err
		}
		if swap {
			answerTexts[0], answerTexts[1] = answerTexts[1], answerTexts[0]
		}
	}

	tx, err := m.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin recycle transaction: %w", err)
	}
	defer tx.Rollback()

	var newID int
	err = tx.QueryRow(`
		INSERT INTO questions_repo (title, image, text, status, created_at, times_asked)
		VALUES ($1, $2, $3, 'UPCOMING', $4, 0)
		RETURNING id
	`, title, image, text, now.UTC()).Scan(&newID)
	if err != nil {
		return fmt.Errorf("failed to insert recycled question: %w", err)
	}

	for _, t := range answerTexts {
		if _, err := tx.Exec(`
			INSERT INTO question_answers (question_id, text) VALUES ($1, $2)
		`, newID, t); err != nil {
			return fmt.Errorf("failed to insert recycled answer: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit recycle: %w", err)
	}

	slog.Info("question recycled", "source_id", sourceID, "question_id", newID)
	return nil
}

// demoteStale moves ACTIVE rows from previous epochs to AGGREGATING.
// Best-effort: a failure is logged and never fails the caller's request.
func (m *Manager) demoteStale(epochID string) {
	res, err := m.db.Exec(`
		UPDATE questions_repo
		SET status = 'AGGREGATING'
		WHERE status = 'ACTIVE' AND (epoch_id IS NULL OR epoch_id <> $1)
	`, epochID)
	if err != nil {
		slog.Warn("failed to demote stale active questions", "error", err)
		return
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		slog.Info("stale questions demoted", "count", n, "epoch_id", epochID)
	}
}

// CloseEpoch finalizes every question tied to the epoch. Setting an already
// FINALIZED row to FINALIZED is a no-op, so repeated calls are safe.
func (m *Manager) CloseEpoch(epochID string) error {
	_, err := m.db.Exec(`
		UPDATE questions_repo SET status = 'FINALIZED' WHERE epoch_id = $1
	`, epochID)
	if err != nil {
		return fmt.Errorf("failed to close epoch %s: %w", epochID, err)
	}
	return nil
}

// SampleQuestion returns the most recently closed question for the anonymous
// preview. Read-only; never mutates pool state.
func (m *Manager) SampleQuestion() (models.QuestionWithAnswers, error) {
	var q models.Question
	row := m.db.QueryRow(`
		SELECT id, title, image, text, status, epoch_id, opens_at, closes_at,
		       created_at, last_promoted_at, times_asked
		FROM questions_repo
		WHERE status IN ('ACTIVE', 'AGGREGATING', 'FINALIZED') AND closes_at IS NOT NULL
		ORDER BY closes_at DESC
		LIMIT 1
	`)
	if err := scanQuestion(row, &q); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.QuestionWithAnswers{}, ErrNoQuestion
		}
		return models.QuestionWithAnswers{}, err
	}

	answers, err := m.loadAnswers(q.ID)
	if err != nil {
		return models.QuestionWithAnswers{}, err
	}
	return models.QuestionWithAnswers{Question: q, Answers: answers}, nil
}

func (m *Manager) loadAnswers(questionID int) ([]models.Answer, error) {
	rows, err := m.db.Query(`
		SELECT id, question_id, text FROM question_answers
		WHERE question_id = $1
		ORDER BY id
	`, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query answers: %w", err)
	}
	defer rows.Close()

	answers := []models.Answer{}
	for rows.Next() {
		var a models.Answer
		if err := rows.Scan(&a.ID, &a.QuestionID, &a.Text); err != nil {
			return nil, fmt.Errorf("failed to scan answer: %w", err)
		}
		answers = append(answers, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read answers: %w", err)
	}
	return answers, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuestion(row rowScanner, q *models.Question) error {
	err := row.Scan(&q.ID, &q.Title, &q.Image, &q.Text, &q.Status, &q.EpochID,
		&q.OpensAt, &q.ClosesAt, &q.CreatedAt, &q.LastPromotedAt, &q.TimesAsked)
	if err == sql.ErrNoRows {
		return err
	}
	if err != nil {
		return fmt.Errorf("failed to scan question: %w", err)
	}
	return nil
}

// coinFlip returns an unbiased random bool from crypto/rand.
func coinFlip() (bool, error) {
	var b [1]byte
	if _, err := rand.Read(b[:]); err != nil {
		return false, fmt.Errorf("failed to flip coin: %w", err)
	}
	return b[0]&1 == 1, nil
}
