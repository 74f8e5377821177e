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

// StudyProgressWorker consumes persist_study_queue and UPSERTs per-question
// study records to PostgreSQL. The UNIQUE(user_id, question_id) constraint
// gives the idempotency the study protocol requires: a resend with new
// values overwrites, it never duplicates.
type StudyProgressWorker struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
	log  zerolog.Logger
}

// NewStudyProgressWorker creates a new StudyProgressWorker.
func NewStudyProgressWorker(pool *pgxpool.Pool, rdb *redis.Client, log zerolog.Logger) *StudyProgressWorker {
	return &StudyProgressWorker{
		pool: pool,
		rdb:  rdb,
		log:  log.With().Str("component", "study_progress_worker").Logger(),
	}
}

// Start begins the infinite worker loop. Call in a goroutine.
func (w *StudyProgressWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopping...")
			// Drain remaining items before exit.
			w.drain(context.Background())
			w.log.Info().Msg("Worker stopped")
			return
		default:
			w.processNext(ctx)
		}
	}
}

func (w *StudyProgressWorker) processNext(ctx context.Context) {
	// BLPop blocks until an item is available or timeout (1 second).
	result, err := w.rdb.BLPop(ctx, time.Second, config.WorkerKey.PersistStudyQueue).Result()
	if err != nil {
		if err != redis.Nil && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("BLPop error")
		}
		return
	}

	if len(result) < 2 {
		return
	}

	var payload progress.StudyPayload
	if err := json.Unmarshal([]byte(result[1]), &payload); err != nil {
		w.log.Error().Err(err).Msg("Unmarshal error")
		return
	}

	if err := w.persist(ctx, &payload); err != nil {
		w.log.Error().Err(err).
			Int("user_id", payload.UserID).
			Str("question_id", payload.QuestionID).
			Msg("Persist error, retrying in 5s")
		// Push back to queue for retry.
		w.rdb.RPush(ctx, config.WorkerKey.PersistStudyQueue, result[1])
		time.Sleep(5 * time.Second)
	}
}

func (w *StudyProgressWorker) persist(ctx context.Context, p *progress.StudyPayload) error {
	testID, err := uuid.Parse(p.TestID)
	if err != nil {
		return err
	}
	questionID, err := uuid.Parse(p.QuestionID)
	if err != nil {
		return err
	}

	// UPSERT keyed on (user_id, question_id): creates or overwrites.
	_, err = w.pool.Exec(ctx,
		`INSERT INTO study_progress (user_id, test_id, question_id, user_answer, is_correct, time_taken_seconds)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (user_id, question_id) DO UPDATE
		 SET user_answer = EXCLUDED.user_answer,
		     is_correct = EXCLUDED.is_correct,
		     time_taken_seconds = EXCLUDED.time_taken_seconds,
		     updated_at = NOW()`,
		p.UserID, testID, questionID, p.UserAnswer, p.IsCorrect, p.TimeTakenSeconds,
	)
	return err
}

// drain processes all remaining items in the queue before shutdown.
func (w *StudyProgressWorker) drain(ctx context.Context) {
	drained := 0
	for {
		result, err := w.rdb.LPop(ctx, config.WorkerKey.PersistStudyQueue).Result()
		if err != nil {
			break
		}

		var payload progress.StudyPayload
		if err := json.Unmarshal([]byte(result), &payload); err != nil {
			w.log.Error().Err(err).Msg("Drain unmarshal error")
			continue
		}

		if err := w.persist(ctx, &payload); err != nil {
			w.log.Error().Err(err).Msg("Drain persist error")
			w.rdb.RPush(ctx, config.WorkerKey.PersistStudyQueue, result)
			break
		}
		drained++
	}

	if drained > 0 {
		w.log.Info().Int("count", drained).Msg("Drained remaining items")
	}
}
