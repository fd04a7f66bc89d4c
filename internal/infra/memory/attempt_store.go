package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"quizzy-service/internal/domain"
)

// AttemptStore is an in-memory, append-only attempts log.
type AttemptStore struct {
	mu       sync.RWMutex
	now      func() time.Time
	attempts []domain.Attempt
	nextID   int64
}

func NewAttemptStore() *AttemptStore {
	return NewAttemptStoreWithClock(time.Now)
}

// NewAttemptStoreWithClock allows deterministic completion timestamps in tests.
func NewAttemptStoreWithClock(now func() time.Time) *AttemptStore {
	return &AttemptStore{now: now, nextID: 1}
}

// InsertAttempt assigns the id and completion timestamp and appends the record.
func (s *AttemptStore) InsertAttempt(_ context.Context, attempt domain.Attempt) (domain.Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	attempt.ID = s.nextID
	s.nextID++
	attempt.CompletedAt = s.now()
	s.attempts = append(s.attempts, attempt)
	return attempt, nil
}

// Leaderboard returns up to limit entries, score descending, earlier
// completion breaking ties.
func (s *AttemptStore) Leaderboard(_ context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	s.mu.RLock()
	ranked := make([]domain.Attempt, len(s.attempts))
	copy(ranked, s.attempts)
	s.mu.RUnlock()

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].CompletedAt.Before(ranked[j].CompletedAt)
	})
	if limit < len(ranked) {
		ranked = ranked[:limit]
	}

	entries := make([]domain.LeaderboardEntry, 0, len(ranked))
	for _, attempt := range ranked {
		entries = append(entries, domain.LeaderboardEntry{
			UserName:       attempt.UserName,
			Score:          attempt.Score,
			TotalQuestions: attempt.TotalQuestions,
			CompletedAt:    attempt.CompletedAt,
		})
	}
	return entries, nil
}

// Stats aggregates the log; all-zero when empty.
func (s *AttemptStore) Stats(_ context.Context) (domain.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := domain.Stats{TotalAttempts: len(s.attempts)}
	if len(s.attempts) == 0 {
		return stats, nil
	}

	sum := 0
	names := make(map[string]struct{})
	for _, attempt := range s.attempts {
		sum += attempt.Score
		if attempt.Score > stats.HighestScore {
			stats.HighestScore = attempt.Score
		}
		names[attempt.UserName] = struct{}{}
	}
	stats.AverageScore = float64(sum) / float64(len(s.attempts))
	stats.UniqueUsers = len(names)
	return stats, nil
}
