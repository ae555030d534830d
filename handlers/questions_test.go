package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/mora-poll/models"
	"github.com/danielhkuo/mora-poll/pool"
	"github.com/danielhkuo/mora-poll/testutil"
)

func TestGetActiveQuestion(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewQuestionHandler(pool.NewManager(db), cfg)

	_, token := testutil.CreateTestUser(t, db, cfg, "alice")
	questionID := testutil.CreateTestQuestion(t, db, models.StatusUpcoming, "", "Coffee", "Tea")

	t.Run("requires session", func(t *testing.T) {
		req := testutil.MakeRequest("GET", "/game/active-question", nil, nil)
		w := httptest.NewRecorder()

		handler.GetActiveQuestion(w, req)

		testutil.AssertStatus(t, w, http.StatusUnauthorized)
	})

	t.Run("promotes and returns the question", func(t *testing.T) {
		req := testutil.MakeRequest("GET", "/game/active-question", nil, map[string]string{
			"X-Session-Token": token,
		})
		w := httptest.NewRecorder()

		handler.GetActiveQuestion(w, req)

		testutil.AssertStatus(t, w, http.StatusOK)

		var resp models.ActiveQuestionResponse
		testutil.AssertJSON(t, w, &resp)
		if resp.ActiveQuestion.ID != questionID {
			t.Errorf("Expected question %d, got %d", questionID, resp.ActiveQuestion.ID)
		}
		if resp.ActiveQuestion.Status != models.StatusActive {
			t.Errorf("Expected status ACTIVE, got %s", resp.ActiveQuestion.Status)
		}
		if len(resp.ActiveQuestion.Answers) != 2 {
			t.Errorf("Expected 2 answers, got %d", len(resp.ActiveQuestion.Answers))
		}
	})

	t.Run("exhausted pool surfaces as server error", func(t *testing.T) {
		empty := testutil.SetupTestDB(t)
		h := NewQuestionHandler(pool.NewManager(empty), cfg)

		req := testutil.MakeRequest("GET", "/game/active-question", nil, map[string]string{
			"X-Session-Token": token,
		})
		w := httptest.NewRecorder()

		h.GetActiveQuestion(w, req)

		testutil.AssertStatus(t, w, http.StatusInternalServerError)
	})
}

func TestGetActiveQuestionSample(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewQuestionHandler(pool.NewManager(db), cfg)

	t.Run("no closed question yet", func(t *testing.T) {
		req := testutil.MakeRequest("GET", "/game/active-question?sample=1", nil, nil)
		w := httptest.NewRecorder()

		handler.GetActiveQuestion(w, req)

		testutil.AssertStatus(t, w, http.StatusNotFound)
	})

	t.Run("serves the latest closed question without auth", func(t *testing.T) {
		questionID := testutil.CreateTestQuestion(t, db, models.StatusFinalized, "01010101", "A", "B")

		req := testutil.MakeRequest("GET", "/game/active-question?sample=1", nil, nil)
		w := httptest.NewRecorder()

		handler.GetActiveQuestion(w, req)

		testutil.AssertStatus(t, w, http.StatusOK)

		var resp models.ActiveQuestionResponse
		testutil.AssertJSON(t, w, &resp)
		if resp.ActiveQuestion.ID != questionID {
			t.Errorf("Expected question %d, got %d", questionID, resp.ActiveQuestion.ID)
		}
	})

	t.Run("sample never promotes", func(t *testing.T) {
		upcomingID := testutil.CreateTestQuestion(t, db, models.StatusUpcoming, "", "C", "D")

		req := testutil.MakeRequest("GET", "/game/active-question?sample=1", nil, nil)
		w := httptest.NewRecorder()

		handler.GetActiveQuestion(w, req)

		testutil.AssertStatus(t, w, http.StatusOK)

		var status string
		if err := db.QueryRow(`SELECT status FROM questions_repo WHERE id = $1`, upcomingID).Scan(&status); err != nil {
			t.Fatalf("Failed to query question: %v", err)
		}
		if status != models.StatusUpcoming {
			t.Errorf("Expected sample read to leave question UPCOMING, got %s", status)
		}
	})
}
