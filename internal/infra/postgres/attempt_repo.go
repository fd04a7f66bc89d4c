package postgres

import (
	"context"
	"fmt"

	"quizzy-service/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// AttemptRepo persists and projects the append-only attempts log.
type AttemptRepo struct {
	pool *pgxpool.Pool
}

func NewAttemptRepo(pool *pgxpool.Pool) *AttemptRepo {
	return &AttemptRepo{pool: pool}
}

// InsertAttempt appends one record; the database assigns id and completed_at.
func (r *AttemptRepo) InsertAttempt(ctx context.Context, attempt domain.Attempt) (domain.Attempt, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO quiz_results (user_name, score, total_questions, time_taken)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, completed_at`,
		attempt.UserName, attempt.Score, attempt.TotalQuestions, attempt.TimeTaken,
	).Scan(&attempt.ID, &attempt.CompletedAt)
	if err != nil {
		return domain.Attempt{}, fmt.Errorf("insert attempt: %w", err)
	}
	return attempt, nil
}

// Leaderboard returns the top attempts, score descending then earliest
// completion first.
func (r *AttemptRepo) Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT user_name, score, total_questions, completed_at
		 FROM quiz_results ORDER BY score DESC, completed_at ASC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []domain.LeaderboardEntry
	for rows.Next() {
		var e domain.LeaderboardEntry
		if err := rows.Scan(&e.UserName, &e.Score, &e.TotalQuestions, &e.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan leaderboard entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	return entries, nil
}

// Stats aggregates the log in one query; COALESCE keeps the empty table a
// zero-valued result instead of a NULL scan failure.
func (r *AttemptRepo) Stats(ctx context.Context) (domain.Stats, error) {
	var stats domain.Stats
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COALESCE(AVG(score), 0),
		        COALESCE(MAX(score), 0),
		        COUNT(DISTINCT user_name)
		 FROM quiz_results`,
	).Scan(&stats.TotalAttempts, &stats.AverageScore, &stats.HighestScore, &stats.UniqueUsers)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("stats: %w", err)
	}
	return stats, nil
}
