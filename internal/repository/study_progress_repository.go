package repository

import (
	"context"

	"github.com/certlab/certprep-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// StudyProgressRepository handles durable study progress data access. Writes
// go through the background worker; this repository only reads.
type StudyProgressRepository struct {
	pool *pgxpool.Pool
}

// NewStudyProgressRepository creates a new StudyProgressRepository.
func NewStudyProgressRepository(pool *pgxpool.Pool) *StudyProgressRepository {
	return &StudyProgressRepository{pool: pool}
}

// ListByUserAndTest retrieves the user's study records for one test.
func (r *StudyProgressRepository) ListByUserAndTest(ctx context.Context, userID int, testID uuid.UUID) ([]model.StudyProgress, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, test_id, question_id, user_answer, is_correct, time_taken_seconds, created_at, updated_at
		 FROM study_progress
		 WHERE user_id = $1 AND test_id = $2
		 ORDER BY updated_at`, userID, testID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []model.StudyProgress
	for rows.Next() {
		var p model.StudyProgress
		if err := rows.Scan(&p.ID, &p.UserID, &p.TestID, &p.QuestionID, &p.UserAnswer, &p.IsCorrect, &p.TimeTakenSeconds, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		records = append(records, p)
	}
	return records, rows.Err()
}

// StatsByUserAndTest aggregates the user's study accuracy for one test.
func (r *StudyProgressRepository) StatsByUserAndTest(ctx context.Context, userID int, testID uuid.UUID) (*model.StudyStats, error) {
	stats := &model.StudyStats{}
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE is_correct)
		 FROM study_progress
		 WHERE user_id = $1 AND test_id = $2`, userID, testID,
	).Scan(&stats.Answered, &stats.Correct)
	if err != nil {
		return nil, err
	}
	if stats.Answered > 0 {
		stats.Accuracy = float64(stats.Correct) / float64(stats.Answered)
	}
	return stats, nil
}

// DeleteByUserAndTest wipes the user's study history for one test.
func (r *StudyProgressRepository) DeleteByUserAndTest(ctx context.Context, userID int, testID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM study_progress WHERE user_id = $1 AND test_id = $2`,
		userID, testID)
	return err
}
