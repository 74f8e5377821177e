package progress

import (
	"context"
	"encoding/json"
	"time"

	"github.com/certlab/certprep-backend/internal/config"
	"github.com/certlab/certprep-backend/internal/quiz"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Enqueuer is the slice of the Redis client the synchronizer needs; tests
// substitute a fake.
type Enqueuer interface {
	RPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
}

// Synchronizer implements quiz.ProgressSink by pushing results onto Redis
// persist queues, where background workers pick them up. Dispatch is
// fire-and-forget: a failed push is logged, reported through the done
// callback as a soft indicator, and never retried from here; local session
// state stays authoritative.
type Synchronizer struct {
	q       Enqueuer
	log     zerolog.Logger
	timeout time.Duration
}

// NewSynchronizer creates a Synchronizer writing to q.
func NewSynchronizer(q Enqueuer, log zerolog.Logger) *Synchronizer {
	return &Synchronizer{
		q:       q,
		log:     log.With().Str("component", "progress_sync").Logger(),
		timeout: 5 * time.Second,
	}
}

// SaveStudyAnswer enqueues one per-question study record. The worker-side
// UPSERT keyed (user, question) makes resends overwrite, never duplicate.
func (s *Synchronizer) SaveStudyAnswer(rec quiz.StudyRecord, done func(ok bool)) {
	payload := StudyPayload{
		UserID:           rec.UserID,
		TestID:           rec.TestID.String(),
		QuestionID:       rec.QuestionID.String(),
		UserAnswer:       rec.UserAnswer,
		IsCorrect:        rec.IsCorrect,
		TimeTakenSeconds: rec.TimeTakenSeconds,
	}
	go s.push(config.WorkerKey.PersistStudyQueue, payload, done)
}

// SaveMockResult enqueues one completed mock session as a single unit; the
// worker persists the session record and all answer records in one
// transaction.
func (s *Synchronizer) SaveMockResult(rec quiz.MockRecord, done func(ok bool)) {
	answers := make([]MockAnswerPayload, len(rec.Answers))
	for i, a := range rec.Answers {
		answers[i] = MockAnswerPayload{
			QuestionID:       a.QuestionID.String(),
			UserAnswer:       a.UserAnswer,
			IsCorrect:        a.IsCorrect,
			TimeTakenSeconds: a.TimeTakenSeconds,
		}
	}
	payload := MockPayload{
		UserID:           rec.UserID,
		TestID:           rec.TestID.String(),
		Score:            rec.Score,
		TotalQuestions:   rec.TotalQuestions,
		TimeSpentSeconds: rec.TimeSpentSeconds,
		Answers:          answers,
	}
	go s.push(config.WorkerKey.PersistMockQueue, payload, done)
}

func (s *Synchronizer) push(queue string, payload any, done func(ok bool)) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	raw, err := json.Marshal(payload)
	if err == nil {
		err = s.q.RPush(ctx, queue, raw).Err()
	}
	if err != nil {
		s.log.Warn().Err(err).Str("queue", queue).Msg("Progress enqueue failed")
	}
	if done != nil {
		done(err == nil)
	}
}
