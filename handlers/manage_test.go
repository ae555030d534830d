package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/mora-poll/aggregate"
	"github.com/danielhkuo/mora-poll/models"
	"github.com/danielhkuo/mora-poll/pool"
	"github.com/danielhkuo/mora-poll/testutil"
)

func TestAggregate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewManageHandler(db, aggregate.NewEngine(db, pool.NewManager(db)))

	const epochID = "09010101"
	questionID := testutil.CreateTestQuestion(t, db, models.StatusAggregating, epochID, "A", "B")
	testutil.InsertTestCommitment(t, db, questionID, epochID, "null-1", models.AnswerBitA)
	testutil.InsertTestCommitment(t, db, questionID, epochID, "null-2", models.AnswerBitA)
	testutil.InsertTestCommitment(t, db, questionID, epochID, "null-3", models.AnswerBitB)

	tests := []struct {
		name           string
		requestBody    interface{}
		expectedStatus int
	}{
		{
			name:           "valid aggregation",
			requestBody:    models.AggregateRequest{EpochID: epochID},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "epoch already aggregated",
			requestBody:    models.AggregateRequest{EpochID: epochID},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "epoch without commitments",
			requestBody:    models.AggregateRequest{EpochID: "10010101"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing epoch_id",
			requestBody:    models.AggregateRequest{},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/manage/aggregate", tt.requestBody, nil)
			w := httptest.NewRecorder()

			handler.Aggregate(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
		})
	}

	t.Run("aggregation finalizes the question", func(t *testing.T) {
		var status string
		if err := db.QueryRow(`SELECT status FROM questions_repo WHERE id = $1`, questionID).Scan(&status); err != nil {
			t.Fatalf("Failed to query question: %v", err)
		}
		if status != models.StatusFinalized {
			t.Errorf("Expected status FINALIZED, got %s", status)
		}

		var agg models.Aggregate
		err := db.QueryRow(`
			SELECT total_responses, count_a, count_b, winning_answer, aggregation_digest
			FROM question_aggregates WHERE epoch_id = $1
		`, epochID).Scan(&agg.TotalResponses, &agg.CountA, &agg.CountB, &agg.WinningAnswer, &agg.AggregationDigest)
		if err != nil {
			t.Fatalf("Failed to query aggregate: %v", err)
		}
		if agg.TotalResponses != 3 || agg.CountA != 2 || agg.CountB != 1 {
			t.Errorf("Unexpected tally: total=%d a=%d b=%d", agg.TotalResponses, agg.CountA, agg.CountB)
		}
		if agg.WinningAnswer != models.AnswerBitA {
			t.Errorf("Expected winning answer %d, got %d", models.AnswerBitA, agg.WinningAnswer)
		}
		if agg.AggregationDigest != "09010101_3_0" {
			t.Errorf("Unexpected digest: %s", agg.AggregationDigest)
		}
	})
}

func TestCommitmentsByEpoch(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewManageHandler(db, aggregate.NewEngine(db, pool.NewManager(db)))

	const epochID = "11010101"
	questionID := testutil.CreateTestQuestion(t, db, models.StatusActive, epochID, "A", "B")
	testutil.InsertTestCommitment(t, db, questionID, epochID, "null-1", models.AnswerBitA)
	testutil.InsertTestCommitment(t, db, questionID, epochID, "null-2", models.AnswerBitB)
	testutil.InsertTestCommitment(t, db, questionID, "12010101", "null-other-epoch", models.AnswerBitA)

	t.Run("missing epoch_id", func(t *testing.T) {
		req := testutil.MakeRequest("GET", "/manage/commitments", nil, nil)
		w := httptest.NewRecorder()

		handler.CommitmentsByEpoch(w, req)

		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})

	t.Run("returns the epoch's commitments", func(t *testing.T) {
		req := testutil.MakeRequest("GET", "/manage/commitments?epoch_id="+epochID, nil, nil)
		w := httptest.NewRecorder()

		handler.CommitmentsByEpoch(w, req)

		testutil.AssertStatus(t, w, http.StatusOK)

		var resp models.CommitmentsByEpochResponse
		testutil.AssertJSON(t, w, &resp)
		if resp.Count != 2 || len(resp.Commitments) != 2 {
			t.Errorf("Expected 2 commitments, got count=%d len=%d", resp.Count, len(resp.Commitments))
		}
		for _, c := range resp.Commitments {
			if c.EpochID != epochID {
				t.Errorf("Commitment %d has epoch %s, want %s", c.ID, c.EpochID, epochID)
			}
		}
	})

	t.Run("unknown epoch returns empty list", func(t *testing.T) {
		req := testutil.MakeRequest("GET", "/manage/commitments?epoch_id=24010101", nil, nil)
		w := httptest.NewRecorder()

		handler.CommitmentsByEpoch(w, req)

		testutil.AssertStatus(t, w, http.StatusOK)

		var resp models.CommitmentsByEpochResponse
		testutil.AssertJSON(t, w, &resp)
		if resp.Count != 0 {
			t.Errorf("Expected 0 commitments, got %d", resp.Count)
		}
	})
}

func TestAddQuestion(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewManageHandler(db, aggregate.NewEngine(db, pool.NewManager(db)))

	title := "Morning ritual"

	tests := []struct {
		name           string
		requestBody    interface{}
		expectedStatus int
		checkResponse  func(t *testing.T, resp *models.AddQuestionResponse)
	}{
		{
			name: "valid question",
			requestBody: models.AddQuestionRequest{
				Title: &title,
				Text:  "Coffee or tea?",
				Answers: []models.AddQuestionAnswer{
					{Text: "Coffee"},
					{Text: "Tea"},
				},
			},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, resp *models.AddQuestionResponse) {
				if resp.QuestionID == 0 {
					t.Error("Expected non-zero question id")
				}
				if len(resp.AnswerIDs) != 2 {
					t.Errorf("Expected 2 answer ids, got %d", len(resp.AnswerIDs))
				}

				var status string
				if err := db.QueryRow(`SELECT status FROM questions_repo WHERE id = $1`, resp.QuestionID).Scan(&status); err != nil {
					t.Fatalf("Failed to query question: %v", err)
				}
				if status != models.StatusUpcoming {
					t.Errorf("Expected status UPCOMING, got %s", status)
				}
			},
		},
		{
			name: "missing text",
			requestBody: models.AddQuestionRequest{
				Answers: []models.AddQuestionAnswer{{Text: "A"}, {Text: "B"}},
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "too few answers",
			requestBody: models.AddQuestionRequest{
				Text:    "Lonely question?",
				Answers: []models.AddQuestionAnswer{{Text: "Only"}},
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "blank answer",
			requestBody: models.AddQuestionRequest{
				Text:    "Half-hearted?",
				Answers: []models.AddQuestionAnswer{{Text: "Yes"}, {Text: "  "}},
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/manage/questions", tt.requestBody, nil)
			w := httptest.NewRecorder()

			handler.AddQuestion(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
			if tt.checkResponse != nil {
				var resp models.AddQuestionResponse
				testutil.AssertJSON(t, w, &resp)
				tt.checkResponse(t, &resp)
			}
		})
	}
}

func TestResetGameMeta(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewManageHandler(db, aggregate.NewEngine(db, pool.NewManager(db)))

	testutil.CreateTestQuestion(t, db, models.StatusActive, "13010101", "A", "B")
	testutil.CreateTestQuestion(t, db, models.StatusFinalized, "14010101", "C", "D")
	testutil.CreateTestQuestion(t, db, models.StatusUpcoming, "", "E", "F")

	req := testutil.MakeRequest("POST", "/manage/reset-game-meta", nil, nil)
	w := httptest.NewRecorder()

	handler.ResetGameMeta(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.ResetGameMetaResponse
	testutil.AssertJSON(t, w, &resp)
	if !resp.Success {
		t.Error("Expected success")
	}
	if resp.ResetCount != 3 {
		t.Errorf("Expected reset count 3, got %d", resp.ResetCount)
	}

	var count int
	if err := db.QueryRow(`
		SELECT COUNT(*) FROM questions_repo
		WHERE status = 'UPCOMING' AND epoch_id IS NULL AND opens_at IS NULL AND closes_at IS NULL
	`).Scan(&count); err != nil {
		t.Fatalf("Failed to count reset questions: %v", err)
	}
	if count != 3 {
		t.Errorf("Expected 3 reset questions, got %d", count)
	}
}
