package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"quizzy-service/internal/domain"
)

// QuestionStore is an in-memory question bank, used when no Postgres is
// configured and in tests. The bank is read-only after construction.
type QuestionStore struct {
	mu        sync.Mutex
	questions []domain.Question
	rnd       *rand.Rand
}

func NewQuestionStore(questions []domain.Question) *QuestionStore {
	return &QuestionStore{
		questions: questions,
		rnd:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SampleQuestions returns up to limit questions in shuffled order, answer
// keys withheld. Exact distribution is unspecified, matching the SQL
// ORDER BY random() the Postgres store uses.
func (s *QuestionStore) SampleQuestions(_ context.Context, limit int) ([]domain.QuestionSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order := s.rnd.Perm(len(s.questions))
	if limit > len(order) {
		limit = len(order)
	}
	sample := make([]domain.QuestionSummary, 0, limit)
	for _, i := range order[:limit] {
		sample = append(sample, s.questions[i].Summary())
	}
	return sample, nil
}

// AnswerKeys resolves correct labels for the ids that exist in the bank.
func (s *QuestionStore) AnswerKeys(_ context.Context, ids []int64) (map[int64]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byID := make(map[int64]string, len(s.questions))
	for _, q := range s.questions {
		byID[q.ID] = q.CorrectAnswer
	}

	keys := make(map[int64]string, len(ids))
	for _, id := range ids {
		if label, ok := byID[id]; ok {
			keys[id] = label
		}
	}
	return keys, nil
}
