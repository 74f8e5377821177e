package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/certlab/certprep-backend/internal/config"
	"github.com/certlab/certprep-backend/internal/progress"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// MockResultWorker consumes persist_mock_queue and writes each completed
// mock session (the session record plus one answer record per question)
// as a single transaction. A mock submission always creates a new record.
type MockResultWorker struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
	log  zerolog.Logger
}

// NewMockResultWorker creates a new MockResultWorker.
func NewMockResultWorker(pool *pgxpool.Pool, rdb *redis.Client, log zerolog.Logger) *MockResultWorker {
	return &MockResultWorker{
		pool: pool,
		rdb:  rdb,
		log:  log.With().Str("component", "mock_result_worker").Logger(),
	}
}

// Start begins the infinite worker loop. Call in a goroutine.
func (w *MockResultWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopping...")
			w.drain(context.Background())
			w.log.Info().Msg("Worker stopped")
			return
		default:
			w.processNext(ctx)
		}
	}
}

func (w *MockResultWorker) processNext(ctx context.Context) {
	result, err := w.rdb.BLPop(ctx, time.Second, config.WorkerKey.PersistMockQueue).Result()
	if err != nil {
		if err != redis.Nil && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("BLPop error")
		}
		return
	}

	if len(result) < 2 {
		return
	}

	var payload progress.MockPayload
	if err := json.Unmarshal([]byte(result[1]), &payload); err != nil {
		w.log.Error().Err(err).Msg("Unmarshal error")
		return
	}

	if err := w.persist(ctx, &payload); err != nil {
		w.log.Error().Err(err).
			Int("user_id", payload.UserID).
			Str("test_id", payload.TestID).
			Msg("Persist error, retrying in 5s")
		w.rdb.RPush(ctx, config.WorkerKey.PersistMockQueue, result[1])
		time.Sleep(5 * time.Second)
	}
}

// persist writes the session record and all answer records atomically.
func (w *MockResultWorker) persist(ctx context.Context, p *progress.MockPayload) error {
	testID, err := uuid.Parse(p.TestID)
	if err != nil {
		return err
	}

	tx, err := w.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var resultID uuid.UUID
	err = tx.QueryRow(ctx,
		`INSERT INTO mock_results (user_id, test_id, score, total_questions, time_spent_seconds)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		p.UserID, testID, p.Score, p.TotalQuestions, p.TimeSpentSeconds,
	).Scan(&resultID)
	if err != nil {
		return err
	}

	for _, a := range p.Answers {
		questionID, err := uuid.Parse(a.QuestionID)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO mock_result_answers (result_id, question_id, user_answer, is_correct, time_taken_seconds)
			 VALUES ($1, $2, $3, $4, $5)`,
			resultID, questionID, a.UserAnswer, a.IsCorrect, a.TimeTakenSeconds,
		); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// drain processes all remaining items in the queue before shutdown.
func (w *MockResultWorker) drain(ctx context.Context) {
	drained := 0
	for {
		result, err := w.rdb.LPop(ctx, config.WorkerKey.PersistMockQueue).Result()
		if err != nil {
			break
		}

		var payload progress.MockPayload
		if err := json.Unmarshal([]byte(result), &payload); err != nil {
			w.log.Error().Err(err).Msg("Drain unmarshal error")
			continue
		}

		if err := w.persist(ctx, &payload); err != nil {
			w.log.Error().Err(err).Msg("Drain persist error")
			w.rdb.RPush(ctx, config.WorkerKey.PersistMockQueue, result)
			break
		}
		drained++
	}

	if drained > 0 {
		w.log.Info().Int("count", drained).Msg("Drained remaining items")
	}
}
