package postgres

import (
	"context"
	"fmt"

	"quizzy-service/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// QuestionRepo reads the question bank from Postgres. The bank is populated
// out-of-band; this repo never writes it.
type QuestionRepo struct {
	pool *pgxpool.Pool
}

func NewQuestionRepo(pool *pgxpool.Pool) *QuestionRepo {
	return &QuestionRepo{pool: pool}
}

// SampleQuestions pulls a pseudo-random sample without answer keys.
func (r *QuestionRepo) SampleQuestions(ctx context.Context, limit int) ([]domain.QuestionSummary, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, question, option_a, option_b, option_c, option_d
		 FROM questions ORDER BY random() LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("sample questions: %w", err)
	}
	defer rows.Close()

	var sample []domain.QuestionSummary
	for rows.Next() {
		var q domain.QuestionSummary
		if err := rows.Scan(&q.ID, &q.Prompt, &q.OptionA, &q.OptionB, &q.OptionC, &q.OptionD); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		sample = append(sample, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sample questions: %w", err)
	}
	return sample, nil
}

// AnswerKeys batch-resolves correct labels for the given ids; unknown ids are
// simply absent from the result.
func (r *QuestionRepo) AnswerKeys(ctx context.Context, ids []int64) (map[int64]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, correct_answer FROM questions WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("answer keys: %w", err)
	}
	defer rows.Close()

	keys := make(map[int64]string)
	for rows.Next() {
		var (
			id    int64
			label string
		)
		if err := rows.Scan(&id, &label); err != nil {
			return nil, fmt.Errorf("scan answer key: %w", err)
		}
		keys[id] = label
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("answer keys: %w", err)
	}
	return keys, nil
}
