package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"quizzy-service/internal/domain"
)

// Client talks to the quiz REST API on behalf of the terminal session.
type Client struct {
	baseURL    string
	httpClient *http.Client
	retryWait  time.Duration
}

func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		retryWait:  time.Second,
	}
}

type submitRequest struct {
	UserName  string            `json:"userName"`
	Answers   map[string]string `json:"answers"`
	TimeTaken *int              `json:"timeTaken,omitempty"`
}

type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// FetchQuestions retrieves a fresh question sample.
func (c *Client) FetchQuestions(ctx context.Context) ([]domain.QuestionSummary, error) {
	var questions []domain.QuestionSummary
	if err := c.getJSON(ctx, "/api/questions", &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

// Leaderboard retrieves the ranked top attempts.
func (c *Client) Leaderboard(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	var entries []domain.LeaderboardEntry
	if err := c.getJSON(ctx, "/api/leaderboard", &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Stats retrieves aggregate attempt statistics.
func (c *Client) Stats(ctx context.Context) (domain.Stats, error) {
	var stats domain.Stats
	if err := c.getJSON(ctx, "/api/stats", &stats); err != nil {
		return domain.Stats{}, err
	}
	return stats, nil
}

// SubmitQuiz sends the answer set for grading. A transport error or 5xx is
// retried once before the failure surfaces; a 4xx is the caller's fault and
// never retried. Submissions carry no idempotency key, so a retry after a
// lost response can double-insert the attempt.
func (c *Client) SubmitQuiz(ctx context.Context, name string, answers map[string]string, timeTaken int) (domain.GradeResult, error) {
	body, err := json.Marshal(submitRequest{
		UserName:  name,
		Answers:   answers,
		TimeTaken: &timeTaken,
	})
	if err != nil {
		return domain.GradeResult{}, fmt.Errorf("encode submission: %w", err)
	}

	result, retryable, err := c.postSubmission(ctx, body)
	if err == nil || !retryable {
		return result, err
	}

	select {
	case <-time.After(c.retryWait):
	case <-ctx.Done():
		return domain.GradeResult{}, ctx.Err()
	}
	result, _, err = c.postSubmission(ctx, body)
	return result, err
}

func (c *Client) postSubmission(ctx context.Context, body []byte) (domain.GradeResult, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/submit-quiz", bytes.NewReader(body))
	if err != nil {
		return domain.GradeResult{}, false, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.GradeResult{}, true, fmt.Errorf("submit quiz: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		retryable := resp.StatusCode >= 500
		return domain.GradeResult{}, retryable, decodeError(resp)
	}

	var result domain.GradeResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return domain.GradeResult{}, false, fmt.Errorf("decode result: %w", err)
	}
	return result, false, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// decodeError turns an API error body into a readable error, falling back to
// the bare status when the body is not the expected shape.
func decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var apiErr apiError
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
		if apiErr.Message != "" {
			return fmt.Errorf("%s: %s", apiErr.Error, apiErr.Message)
		}
		return fmt.Errorf("%s", apiErr.Error)
	}
	return fmt.Errorf("server returned %s", resp.Status)
}
