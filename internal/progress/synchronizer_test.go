package progress

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/certlab/certprep-backend/internal/config"
	"github.com/certlab/certprep-backend/internal/model"
	"github.com/certlab/certprep-backend/internal/quiz"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQueue struct {
	mu     sync.Mutex
	pushes map[string][]string
	err    error
}

func newFakeQueue() *fakeQueue {
	return &fakeQueue{pushes: make(map[string][]string)}
}

func (f *fakeQueue) RPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		cmd.SetErr(f.err)
		return cmd
	}
	for _, v := range values {
		f.pushes[key] = append(f.pushes[key], string(v.([]byte)))
	}
	cmd.SetVal(int64(len(f.pushes[key])))
	return cmd
}

func (f *fakeQueue) items(key string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.pushes[key]...)
}

func waitDone(t *testing.T, done chan bool) bool {
	t.Helper()
	select {
	case ok := <-done:
		return ok
	case <-time.After(2 * time.Second):
		t.Fatal("done callback never fired")
		return false
	}
}

func TestSaveStudyAnswerEnqueues(t *testing.T) {
	q := newFakeQueue()
	s := NewSynchronizer(q, zerolog.Nop())

	rec := quiz.StudyRecord{
		UserID:           3,
		TestID:           uuid.New(),
		QuestionID:       uuid.New(),
		UserAnswer:       "AB",
		IsCorrect:        true,
		TimeTakenSeconds: 12,
	}

	done := make(chan bool, 1)
	s.SaveStudyAnswer(rec, func(ok bool) { done <- ok })
	assert.True(t, waitDone(t, done))

	items := q.items(config.WorkerKey.PersistStudyQueue)
	require.Len(t, items, 1)

	var payload StudyPayload
	require.NoError(t, json.Unmarshal([]byte(items[0]), &payload))
	assert.Equal(t, 3, payload.UserID)
	assert.Equal(t, rec.TestID.String(), payload.TestID)
	assert.Equal(t, rec.QuestionID.String(), payload.QuestionID)
	assert.Equal(t, "AB", payload.UserAnswer)
	assert.True(t, payload.IsCorrect)
	assert.Equal(t, 12, payload.TimeTakenSeconds)
}

func TestSaveMockResultEnqueues(t *testing.T) {
	q := newFakeQueue()
	s := NewSynchronizer(q, zerolog.Nop())

	rec := quiz.MockRecord{
		UserID:           8,
		TestID:           uuid.New(),
		Score:            1,
		TotalQuestions:   2,
		TimeSpentSeconds: 40,
		Answers: []model.MockAnswer{
			{QuestionID: uuid.New(), UserAnswer: "A", IsCorrect: true, TimeTakenSeconds: 20},
			{QuestionID: uuid.New(), UserAnswer: model.SkippedAnswer, IsCorrect: false, TimeTakenSeconds: 20},
		},
	}

	done := make(chan bool, 1)
	s.SaveMockResult(rec, func(ok bool) { done <- ok })
	assert.True(t, waitDone(t, done))

	items := q.items(config.WorkerKey.PersistMockQueue)
	require.Len(t, items, 1)

	var payload MockPayload
	require.NoError(t, json.Unmarshal([]byte(items[0]), &payload))
	assert.Equal(t, 8, payload.UserID)
	assert.Equal(t, 2, payload.TotalQuestions)
	require.Len(t, payload.Answers, 2)
	assert.Equal(t, model.SkippedAnswer, payload.Answers[1].UserAnswer)
}

func TestEnqueueFailureReportsNotOK(t *testing.T) {
	q := newFakeQueue()
	q.err = errors.New("redis down")
	s := NewSynchronizer(q, zerolog.Nop())

	done := make(chan bool, 1)
	s.SaveStudyAnswer(quiz.StudyRecord{TestID: uuid.New(), QuestionID: uuid.New()}, func(ok bool) { done <- ok })
	assert.False(t, waitDone(t, done))
	assert.Empty(t, q.items(config.WorkerKey.PersistStudyQueue))
}
