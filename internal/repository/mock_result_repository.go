package repository

import (
	"context"

	"github.com/certlab/certprep-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MockResultRepository handles mock result history data access. Writes go
// through the background worker; this repository only reads.
type MockResultRepository struct {
	pool *pgxpool.Pool
}

// NewMockResultRepository creates a new MockResultRepository.
func NewMockResultRepository(pool *pgxpool.Pool) *MockResultRepository {
	return &MockResultRepository{pool: pool}
}

// ListPaginated retrieves the user's mock results for one test, newest first.
func (r *MockResultRepository) ListPaginated(ctx context.Context, userID int, testID uuid.UUID, limit, offset int) ([]model.MockResult, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM mock_results WHERE user_id = $1 AND test_id = $2`,
		userID, testID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, test_id, score, total_questions, time_spent_seconds, created_at
		 FROM mock_results
		 WHERE user_id = $1 AND test_id = $2
		 ORDER BY created_at DESC
		 LIMIT $3 OFFSET $4`, userID, testID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var results []model.MockResult
	for rows.Next() {
		var m model.MockResult
		if err := rows.Scan(&m.ID, &m.UserID, &m.TestID, &m.Score, &m.TotalQuestions, &m.TimeSpentSeconds, &m.CreatedAt); err != nil {
			return nil, 0, err
		}
		results = append(results, m)
	}
	return results, total, rows.Err()
}

// GetByID retrieves one mock result header, scoped to its owner.
func (r *MockResultRepository) GetByID(ctx context.Context, userID int, resultID uuid.UUID) (*model.MockResult, error) {
	m := &model.MockResult{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, test_id, score, total_questions, time_spent_seconds, created_at
		 FROM mock_results
		 WHERE id = $1 AND user_id = $2`, resultID, userID,
	).Scan(&m.ID, &m.UserID, &m.TestID, &m.Score, &m.TotalQuestions, &m.TimeSpentSeconds, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// ListAnswers retrieves a result's per-question answers joined with the
// question content for historical review.
func (r *MockResultRepository) ListAnswers(ctx context.Context, resultID uuid.UUID) ([]model.MockReviewAnswer, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT a.question_id, a.user_answer, a.is_correct, a.time_taken_seconds,
		        q.text, q.choices, q.correct_answer
		 FROM mock_result_answers a
		 JOIN questions q ON q.id = a.question_id
		 WHERE a.result_id = $1
		 ORDER BY a.id`, resultID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var answers []model.MockReviewAnswer
	for rows.Next() {
		var a model.MockReviewAnswer
		if err := rows.Scan(&a.QuestionID, &a.UserAnswer, &a.IsCorrect, &a.TimeTakenSeconds, &a.QuestionText, &a.Choices, &a.CorrectAnswer); err != nil {
			return nil, err
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}
