package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"quizzy-service/internal/app"
	"quizzy-service/internal/domain"
	"quizzy-service/internal/infra/memory"
)

func TestQuestionsEndpointHidesAnswerKeys(t *testing.T) {
	server := newTestServer(t, sampleBank())
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/questions")
	if err != nil {
		t.Fatalf("get questions: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var questions []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&questions); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(questions) != 5 {
		t.Fatalf("expected 5 questions, got %d", len(questions))
	}
	for _, q := range questions {
		for _, field := range []string{"id", "question", "option_a", "option_b", "option_c", "option_d"} {
			if _, ok := q[field]; !ok {
				t.Fatalf("missing field %q in %v", field, q)
			}
		}
		if _, ok := q["correct_answer"]; ok {
			t.Fatalf("answer key leaked: %v", q)
		}
	}
}

func TestQuestionsEndpointEmptyBank(t *testing.T) {
	server := newTestServer(t, nil)
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/questions")
	if err != nil {
		t.Fatalf("get questions: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for an empty bank, got %d", resp.StatusCode)
	}
}

func TestSubmitQuizSuccess(t *testing.T) {
	server := newTestServer(t, sampleBank())
	defer server.Close()

	body := `{"userName":"Alice","answers":{"1":"A","2":"B","3":"C","4":"D","5":"A"},"timeTaken":120}`
	resp := postJSON(t, server.URL+"/api/submit-quiz", body)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result domain.GradeResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Score != 5 || result.Total != 5 || result.Percentage != 100 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.TimeTaken == nil || *result.TimeTaken != 120 {
		t.Fatalf("expected timeTaken echoed, got %+v", result.TimeTaken)
	}
}

func TestSubmitQuizValidation(t *testing.T) {
	server := newTestServer(t, sampleBank())
	defer server.Close()

	cases := []struct {
		name       string
		body       string
		wantStatus int
		wantError  string
	}{
		{"short name", `{"userName":"J","answers":{"1":"A"}}`, http.StatusBadRequest, "Invalid user name"},
		{"missing answers", `{"userName":"Alice"}`, http.StatusBadRequest, "No answers provided"},
		{"malformed body", `{"userName":`, http.StatusBadRequest, "Invalid answers format"},
		{"unparsable ids", `{"userName":"Alice","answers":{"abc":"A"}}`, http.StatusBadRequest, "Invalid question IDs"},
		{"stale ids", `{"userName":"Alice","answers":{"777":"A"}}`, http.StatusNotFound, "Questions not found"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := postJSON(t, server.URL+"/api/submit-quiz", tc.body)
			defer resp.Body.Close()
			if resp.StatusCode != tc.wantStatus {
				t.Fatalf("expected %d, got %d", tc.wantStatus, resp.StatusCode)
			}
			var body errorResponse
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if body.Error != tc.wantError {
				t.Fatalf("expected error %q, got %q", tc.wantError, body.Error)
			}
		})
	}
}

func TestLeaderboardEndpoint(t *testing.T) {
	server := newTestServer(t, sampleBank())
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/leaderboard")
	if err != nil {
		t.Fatalf("get leaderboard: %v", err)
	}
	var entries []domain.LeaderboardEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		t.Fatalf("decode: %v", err)
	}
	resp.Body.Close()
	if len(entries) != 0 {
		t.Fatalf("expected empty leaderboard, got %v", entries)
	}

	postJSON(t, server.URL+"/api/submit-quiz", `{"userName":"Alice","answers":{"1":"A"}}`).Body.Close()
	postJSON(t, server.URL+"/api/submit-quiz", `{"userName":"Bob","answers":{"1":"B"}}`).Body.Close()

	resp, err = http.Get(server.URL + "/api/leaderboard")
	if err != nil {
		t.Fatalf("get leaderboard: %v", err)
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(entries) != 2 || entries[0].UserName != "Alice" {
		t.Fatalf("expected Alice leading, got %+v", entries)
	}
}

func TestStatsEndpoint(t *testing.T) {
	server := newTestServer(t, sampleBank())
	defer server.Close()

	postJSON(t, server.URL+"/api/submit-quiz", `{"userName":"Alice","answers":{"1":"A","2":"B"}}`).Body.Close()

	resp, err := http.Get(server.URL + "/api/stats")
	if err != nil {
		t.Fatalf("get stats: %v", err)
	}
	defer resp.Body.Close()
	var stats domain.Stats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stats.TotalAttempts != 1 || stats.HighestScore != 2 || stats.UniqueUsers != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	server := newTestServer(t, sampleBank())
	defer server.Close()

	resp := postJSON(t, server.URL+"/api/questions", `{}`)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.StatusCode)
	}

	resp2, err := http.Get(server.URL + "/api/submit-quiz")
	if err != nil {
		t.Fatalf("get submit: %v", err)
	}
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp2.StatusCode)
	}
}

func newTestServer(t *testing.T, questions []domain.Question) *httptest.Server {
	t.Helper()
	service := app.NewQuizService(memory.NewQuestionStore(questions), memory.NewAttemptStore())
	handler := NewAPIHandler(service)
	mux := http.NewServeMux()
	handler.Register(mux)
	return httptest.NewServer(mux)
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", bytes.NewReader([]byte(body)))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	return resp
}

func sampleBank() []domain.Question {
	questions := make([]domain.Question, 0, 5)
	labels := []string{"A", "B", "C", "D", "A"}
	for i, label := range labels {
		questions = append(questions, domain.Question{
			ID:      int64(i + 1),
			Prompt:  "Pick " + strings.ToLower(label),
			OptionA: "a", OptionB: "b", OptionC: "c", OptionD: "d",
			CorrectAnswer: label,
		})
	}
	return questions
}
