package repository

import (
	"context"

	"github.com/certlab/certprep-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// QuestionRepository handles question pool data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// ListByTest retrieves all questions of a test in stored order. Choices and
// images are JSONB columns scanned straight into their Go forms.
func (r *QuestionRepository) ListByTest(ctx context.Context, testID uuid.UUID) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, test_id, text, choices, correct_answer, images
		 FROM questions
		 WHERE test_id = $1
		 ORDER BY position, id`, testID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.TestID, &q.Text, &q.Choices, &q.CorrectAnswer, &q.Images); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// CountByTest returns the number of questions in a test's pool.
func (r *QuestionRepository) CountByTest(ctx context.Context, testID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM questions WHERE test_id = $1`, testID,
	).Scan(&count)
	return count, err
}

// BulkInsert replaces a test's question pool. Used by the question seeder.
func (r *QuestionRepository) BulkInsert(ctx context.Context, testID uuid.UUID, questions []model.Question) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM questions WHERE test_id = $1`, testID); err != nil {
		return err
	}

	for i, q := range questions {
		if _, err := tx.Exec(ctx,
			`INSERT INTO questions (test_id, position, text, choices, correct_answer, images)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			testID, i, q.Text, q.Choices, q.CorrectAnswer, q.Images,
		); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}
