package app

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"quizzy-service/internal/domain"
)

// SampleSize is how many questions one quiz attempt receives.
const SampleSize = 5

// LeaderboardLimit caps the ranked projection served to clients.
const LeaderboardLimit = 10

// maxNameLength caps the stored display name.
const maxNameLength = 100

// QuestionRepository abstracts the question bank (Postgres, memory, cached).
type QuestionRepository interface {
	// SampleQuestions returns up to limit pseudo-randomly chosen questions
	// with their answer keys withheld.
	SampleQuestions(ctx context.Context, limit int) ([]domain.QuestionSummary, error)
	// AnswerKeys resolves the correct option label for every id that exists
	// in the bank; ids not found are simply absent from the result.
	AnswerKeys(ctx context.Context, ids []int64) (map[int64]string, error)
}

// AttemptRepository abstracts the append-only attempts log.
type AttemptRepository interface {
	InsertAttempt(ctx context.Context, attempt domain.Attempt) (domain.Attempt, error)
	Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
	Stats(ctx context.Context) (domain.Stats, error)
}

// QuizService contains the scoring use cases: sampling, grading, leaderboard
// and stats derivation.
type QuizService struct {
	questions QuestionRepository
	attempts  AttemptRepository
	feed      *leaderboardFeed
}

func NewQuizService(questions QuestionRepository, attempts AttemptRepository) *QuizService {
	return &QuizService{
		questions: questions,
		attempts:  attempts,
		feed:      newLeaderboardFeed(time.Now),
	}
}

// SampleQuestions returns the question sample for a fresh quiz attempt.
func (s *QuizService) SampleQuestions(ctx context.Context) ([]domain.QuestionSummary, error) {
	questions, err := s.questions.SampleQuestions(ctx, SampleSize)
	if err != nil {
		return nil, fmt.Errorf("sample questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, domain.ErrNoQuestions
	}
	return questions, nil
}

// GradeSubmission validates a submitted answer set, grades it against the
// stored answer keys, persists the attempt, and returns the outcome.
//
// The name check is intentionally length-only: the browser client enforces a
// letters-and-spaces rule on top of this, and the server stays lenient so
// non-browser clients are not locked out.
func (s *QuizService) GradeSubmission(ctx context.Context, name string, answers map[string]string, timeTaken *int) (domain.GradeResult, error) {
	trimmed := strings.TrimSpace(name)
	runes := []rune(trimmed)
	if len(runes) < 2 {
		return domain.GradeResult{}, domain.ErrInvalidName
	}
	if len(answers) == 0 {
		return domain.GradeResult{}, domain.ErrNoAnswers
	}

	if len(runes) > maxNameLength {
		trimmed = string(runes[:maxNameLength])
	}

	// Coerce answer-set keys to ids, discarding ones that do not parse.
	ids := make([]int64, 0, len(answers))
	byID := make(map[int64]string, len(answers))
	for raw, label := range answers {
		id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
		byID[id] = label
	}
	if len(ids) == 0 {
		return domain.GradeResult{}, domain.ErrInvalidQuestionIDs
	}

	keys, err := s.questions.AnswerKeys(ctx, ids)
	if err != nil {
		return domain.GradeResult{}, fmt.Errorf("lookup answer keys: %w", err)
	}
	if len(keys) == 0 {
		return domain.GradeResult{}, domain.ErrQuestionsNotFound
	}

	// Only ids the bank actually knows are graded; stale or forged ids are
	// neither counted correct nor treated as an error.
	score := 0
	for id, correct := range keys {
		if byID[id] == correct {
			score++
		}
	}
	total := len(keys)

	saved, err := s.attempts.InsertAttempt(ctx, domain.Attempt{
		UserName:       trimmed,
		Score:          score,
		TotalQuestions: total,
		TimeTaken:      timeTaken,
	})
	if err != nil {
		return domain.GradeResult{}, fmt.Errorf("%w: %v", domain.ErrResultNotSaved, err)
	}

	s.publishLeaderboard(ctx)

	return domain.GradeResult{
		Score:      score,
		Total:      total,
		Percentage: int(math.Round(float64(score) / float64(total) * 100)),
		TimeTaken:  timeTaken,
		ResultID:   saved.ID,
	}, nil
}

// Leaderboard returns the top attempts, best score first, earlier completion
// breaking ties. An empty log yields an empty slice, not an error.
func (s *QuizService) Leaderboard(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	entries, err := s.attempts.Leaderboard(ctx, LeaderboardLimit)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	if entries == nil {
		entries = []domain.LeaderboardEntry{}
	}
	return entries, nil
}

// Stats aggregates the attempts log; all-zero when no attempts exist.
func (s *QuizService) Stats(ctx context.Context) (domain.Stats, error) {
	stats, err := s.attempts.Stats(ctx)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("stats: %w", err)
	}
	return stats, nil
}

// Subscribe returns a channel receiving leaderboard snapshots: one on
// subscription, then one after every graded submission. The caller must
// invoke the returned cancel function to avoid leaks.
func (s *QuizService) Subscribe(ctx context.Context) (<-chan domain.Leaderboard, func(), error) {
	entries, err := s.Leaderboard(ctx)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := s.feed.subscribe(entries)
	return ch, cancel, nil
}

func (s *QuizService) publishLeaderboard(ctx context.Context) {
	if !s.feed.hasSubscribers() {
		return
	}
	entries, err := s.attempts.Leaderboard(ctx, LeaderboardLimit)
	if err != nil {
		return
	}
	s.feed.publish(entries)
}
