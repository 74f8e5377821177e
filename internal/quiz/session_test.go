package quiz

import (
	"fmt"
	"sync"
	"testing"

	"github.com/certlab/certprep-backend/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSink captures dispatched records and answers done synchronously.
type recordingSink struct {
	mu    sync.Mutex
	study []StudyRecord
	mocks []MockRecord
	fail  bool
}

func (s *recordingSink) SaveStudyAnswer(rec StudyRecord, done func(ok bool)) {
	s.mu.Lock()
	s.study = append(s.study, rec)
	s.mu.Unlock()
	if done != nil {
		done(!s.fail)
	}
}

func (s *recordingSink) SaveMockResult(rec MockRecord, done func(ok bool)) {
	s.mu.Lock()
	s.mocks = append(s.mocks, rec)
	s.mu.Unlock()
	if done != nil {
		done(!s.fail)
	}
}

func (s *recordingSink) studyRecords() []StudyRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]StudyRecord(nil), s.study...)
}

func (s *recordingSink) mockRecords() []MockRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]MockRecord(nil), s.mocks...)
}

// holdingSink hands the done callback to the test instead of invoking it.
type holdingSink struct {
	recordingSink
	done func(ok bool)
}

func (s *holdingSink) SaveMockResult(rec MockRecord, done func(ok bool)) {
	s.recordingSink.SaveMockResult(rec, nil)
	s.done = done
}

func makePool(n int) []model.Question {
	testID := uuid.New()
	pool := make([]model.Question, n)
	for i := range pool {
		pool[i] = model.Question{
			ID:     uuid.New(),
			TestID: testID,
			Text:   fmt.Sprintf("question %d", i),
			Choices: map[string]string{
				"A": "first",
				"B": "second",
				"C": "third",
				"D": "fourth",
			},
			CorrectAnswer: "A",
		}
	}
	return pool
}

func newTestSession(t *testing.T, pool []model.Question, cfg Config) *Session {
	t.Helper()
	s, err := NewSession(pool, cfg)
	require.NoError(t, err)
	return s
}

func TestNewSessionErrors(t *testing.T) {
	_, err := NewSession(makePool(3), Config{Mode: "turbo"})
	assert.ErrorIs(t, err, ErrUnknownMode)

	_, err = NewSession(nil, Config{Mode: ModeRandom})
	assert.ErrorIs(t, err, ErrNoQuestions)
}

func TestDrawSubset(t *testing.T) {
	pool := makePool(10)

	s := newTestSession(t, pool, Config{Mode: ModeRandom, QuestionCount: 4})
	snap := s.Snapshot()
	assert.Equal(t, 4, snap.QuestionCount)

	seen := make(map[uuid.UUID]struct{})
	for _, q := range snap.Questions {
		seen[q.ID] = struct{}{}
	}
	assert.Len(t, seen, 4, "drawn questions must be unique")

	// Zero or oversized count takes the whole pool.
	s = newTestSession(t, pool, Config{Mode: ModeRandom})
	assert.Equal(t, 10, s.Snapshot().QuestionCount)
	s = newTestSession(t, pool, Config{Mode: ModeRandom, QuestionCount: 99})
	assert.Equal(t, 10, s.Snapshot().QuestionCount)
}

func TestChoiceOrderStableAcrossSnapshots(t *testing.T) {
	s := newTestSession(t, makePool(6), Config{Mode: ModePractice})
	s.Start()

	first := s.Snapshot()
	s.Advance()
	s.SelectAnswer(1, "B")
	second := s.Snapshot()

	for i := range first.Questions {
		assert.Equal(t, first.Questions[i].Choices, second.Questions[i].Choices,
			"choice order drifted for question %d", i)
	}
}

func TestSingleAnswerInstantFeedback(t *testing.T) {
	s := newTestSession(t, makePool(3), Config{Mode: ModePractice})
	s.Start()

	correct := s.questions[0].CorrectAnswer
	fb := s.SelectAnswer(0, correct)
	assert.True(t, fb.Finalized)
	assert.True(t, fb.Revealed)
	assert.True(t, fb.IsCorrect)
	assert.Equal(t, correct, fb.CorrectAnswer)

	// Finalized answers are immutable.
	fb = s.SelectAnswer(0, "B")
	assert.False(t, fb.Finalized)

	snap := s.Snapshot()
	assert.Equal(t, 1, snap.Stats.Answered)
	assert.Equal(t, 1, snap.Stats.Correct)
	assert.Equal(t, correct, snap.Questions[0].Selected)
}

func TestSelectAnswerRejectsUnknownLabel(t *testing.T) {
	s := newTestSession(t, makePool(1), Config{Mode: ModePractice})
	s.Start()

	fb := s.SelectAnswer(0, "Z")
	assert.False(t, fb.Finalized)
	assert.Zero(t, s.Snapshot().Stats.Answered)
}

func TestMultiAnswerToggleAndSubmit(t *testing.T) {
	pool := makePool(1)
	pool[0].CorrectAnswer = "AB"
	s := newTestSession(t, pool, Config{Mode: ModePractice})
	s.Start()

	// Submit with nothing pending is a no-op.
	fb := s.SubmitAnswer(0)
	assert.False(t, fb.Finalized)

	// SelectAnswer toggles on multi-answer questions instead of finalizing.
	fb = s.SelectAnswer(0, "A")
	assert.False(t, fb.Finalized)
	s.ToggleSelection(0, "B")
	s.ToggleSelection(0, "C")
	s.ToggleSelection(0, "C") // toggled back off

	fb = s.SubmitAnswer(0)
	assert.True(t, fb.Finalized)
	assert.True(t, fb.IsCorrect)

	// Resubmission is a no-op.
	fb = s.SubmitAnswer(0)
	assert.False(t, fb.Finalized)
}

func TestMockHidesCorrectnessUntilComplete(t *testing.T) {
	s := newTestSession(t, makePool(2), Config{Mode: ModeMock})
	s.Start()

	fb := s.SelectAnswer(0, "A")
	assert.True(t, fb.Finalized)
	assert.False(t, fb.Revealed)
	assert.Empty(t, fb.CorrectAnswer)

	snap := s.Snapshot()
	assert.Nil(t, snap.Questions[0].IsCorrect)
	assert.Empty(t, snap.Questions[0].CorrectAnswer)

	s.Complete()
	snap = s.Snapshot()
	assert.NotNil(t, snap.Questions[0].IsCorrect)
	assert.Equal(t, "A", snap.Questions[0].CorrectAnswer)
	assert.Equal(t, "A", snap.Questions[1].CorrectAnswer, "unanswered questions reveal too")
}

func TestMockSkipTracking(t *testing.T) {
	s := newTestSession(t, makePool(3), Config{Mode: ModeMock})
	s.Start()

	// Leaving an unanswered question marks it skipped.
	s.Advance()
	assert.Equal(t, 1, s.Snapshot().Stats.Skipped)

	// Jumping back marks question 1 too, then answering question 0 clears
	// only its own mark.
	s.Jump(0)
	s.SelectAnswer(0, "B")
	snap := s.Snapshot()
	assert.Equal(t, 1, snap.Stats.Skipped)
	assert.False(t, snap.Questions[0].Skipped)
	assert.True(t, snap.Questions[1].Skipped)
}

func TestFlagsMockOnly(t *testing.T) {
	s := newTestSession(t, makePool(2), Config{Mode: ModeMock})
	s.Start()
	s.ToggleFlag(1)
	assert.Equal(t, 1, s.Snapshot().Stats.Flagged)
	s.ToggleFlag(1)
	assert.Zero(t, s.Snapshot().Stats.Flagged)

	p := newTestSession(t, makePool(2), Config{Mode: ModePractice})
	p.Start()
	p.ToggleFlag(1)
	assert.Zero(t, p.Snapshot().Stats.Flagged)
}

func TestJumpClamped(t *testing.T) {
	s := newTestSession(t, makePool(4), Config{Mode: ModePractice})
	s.Start()

	s.Jump(-5)
	assert.Zero(t, s.Snapshot().Cursor)
	s.Jump(999)
	assert.Equal(t, 3, s.Snapshot().Cursor)
	s.Previous()
	assert.Equal(t, 2, s.Snapshot().Cursor)
}

func TestMockCompleteDispatchesOneRecord(t *testing.T) {
	sink := &recordingSink{}
	s := newTestSession(t, makePool(4), Config{UserID: 7, Mode: ModeMock, Sink: sink})
	s.Start()

	s.SelectAnswer(0, s.questions[0].CorrectAnswer)
	s.SelectAnswer(1, "C")
	require.True(t, s.Complete())
	assert.False(t, s.Complete(), "second completion must be rejected")

	records := sink.mockRecords()
	require.Len(t, records, 1)
	rec := records[0]
	assert.Equal(t, 7, rec.UserID)
	assert.Equal(t, 4, rec.TotalQuestions)
	assert.Equal(t, 1, rec.Score)
	require.Len(t, rec.Answers, 4)

	skipped := 0
	for _, a := range rec.Answers {
		if a.UserAnswer == model.SkippedAnswer {
			skipped++
			assert.False(t, a.IsCorrect)
		}
	}
	assert.Equal(t, 2, skipped)
	assert.False(t, s.LastSyncFailed())
}

func TestSyncFailureIsSoft(t *testing.T) {
	sink := &recordingSink{fail: true}
	s := newTestSession(t, makePool(2), Config{Mode: ModeMock, Sink: sink})
	s.Start()
	s.SelectAnswer(0, "A")
	s.Complete()

	// The session stays COMPLETED with its local result intact.
	assert.Equal(t, StateCompleted, s.State())
	assert.True(t, s.LastSyncFailed())
	assert.True(t, s.Snapshot().SyncFailed)
}

func TestTimerExpiryCompletes(t *testing.T) {
	sink := &recordingSink{}
	s := newTestSession(t, makePool(2), Config{Mode: ModeMock, Sink: sink})
	s.Start()

	budget := s.Remaining()
	assert.Equal(t, MockTimeBudget(2), budget)

	for i := 0; i < budget; i++ {
		s.Tick()
	}
	assert.Equal(t, StateCompleted, s.State())
	assert.Zero(t, s.Remaining())
	require.Len(t, sink.mockRecords(), 1)

	// Late ticks after completion change nothing.
	s.Tick()
	assert.Equal(t, StateCompleted, s.State())
	assert.Zero(t, s.Remaining())
	assert.Len(t, sink.mockRecords(), 1)
}

func TestTickBeforeStartAndUntimed(t *testing.T) {
	s := newTestSession(t, makePool(2), Config{Mode: ModeMock})
	s.Tick()
	assert.Equal(t, StateNotStarted, s.State())
	assert.Equal(t, MockTimeBudget(2), s.Remaining())

	p := newTestSession(t, makePool(2), Config{Mode: ModePractice})
	p.Start()
	p.Tick()
	assert.Equal(t, StateInProgress, p.State())
}

func TestStudyDispatchesPerAnswer(t *testing.T) {
	sink := &recordingSink{}
	s := newTestSession(t, makePool(3), Config{UserID: 5, Mode: ModeStudy, Sink: sink})
	s.Start()

	s.SelectAnswer(0, "B")
	s.SelectAnswer(1, s.questions[1].CorrectAnswer)

	records := sink.studyRecords()
	require.Len(t, records, 2)
	assert.Equal(t, 5, records[0].UserID)
	assert.Equal(t, s.questions[0].ID, records[0].QuestionID)
	assert.Equal(t, "B", records[0].UserAnswer)
	assert.False(t, records[0].IsCorrect)
	assert.True(t, records[1].IsCorrect)
}

func TestStudyResumesFromPriorProgress(t *testing.T) {
	pool := makePool(3)
	prior := []model.StudyProgress{
		{QuestionID: pool[0].ID, UserAnswer: "A", TimeTakenSeconds: 9},
		{QuestionID: pool[2].ID, UserAnswer: "D"},
		{QuestionID: uuid.New(), UserAnswer: "A"}, // different test, ignored
	}

	s := newTestSession(t, pool, Config{Mode: ModeStudy, PriorProgress: prior})
	snap := s.Snapshot()

	assert.Equal(t, 2, snap.Stats.Answered)
	assert.Equal(t, 1, snap.Stats.Correct)

	for _, q := range snap.Questions {
		switch q.ID {
		case pool[0].ID:
			assert.True(t, q.Answered)
			assert.Equal(t, "A", q.Selected)
		case pool[2].ID:
			assert.True(t, q.Answered)
			assert.Equal(t, "D", q.Selected)
		default:
			assert.False(t, q.Answered)
		}
	}
}

func TestReviewTransitions(t *testing.T) {
	s := newTestSession(t, makePool(2), Config{Mode: ModeMock})
	s.Start()

	assert.False(t, s.Review(), "review requires a completed session")
	require.True(t, s.Complete())
	require.True(t, s.Review())
	assert.Equal(t, StateReviewing, s.State())
	assert.False(t, s.Review())

	require.True(t, s.BackToSummary())
	assert.Equal(t, StateCompleted, s.State())
	assert.False(t, s.BackToSummary())
}

func TestRestartDiscardsAttempt(t *testing.T) {
	s := newTestSession(t, makePool(5), Config{Mode: ModeMock, QuestionCount: 3})
	s.Start()
	s.SelectAnswer(0, "A")

	assert.False(t, s.Restart(), "restart requires a finished session")
	require.True(t, s.Complete())
	require.True(t, s.Restart())

	snap := s.Snapshot()
	assert.Equal(t, StateNotStarted, snap.State)
	assert.Zero(t, snap.Stats.Answered)
	assert.Equal(t, 3, snap.QuestionCount)
	assert.Equal(t, MockTimeBudget(3), snap.RemainingSeconds)
	for _, q := range snap.Questions {
		assert.False(t, q.Answered)
	}
}

func TestStaleSyncCallbackDropped(t *testing.T) {
	sink := &holdingSink{recordingSink: recordingSink{fail: true}}
	s := newTestSession(t, makePool(2), Config{Mode: ModeMock, Sink: sink})
	s.Start()
	require.True(t, s.Complete())
	require.NotNil(t, sink.done)

	// The attempt is superseded before the persistence outcome arrives; the
	// late failure report must not mark the fresh attempt.
	require.True(t, s.Restart())
	sink.done(false)
	assert.False(t, s.LastSyncFailed())
}

func TestEventsEmitted(t *testing.T) {
	var mu sync.Mutex
	var types []EventType

	s := newTestSession(t, makePool(2), Config{Mode: ModeMock, Notify: func(ev Event) {
		mu.Lock()
		types = append(types, ev.Type)
		mu.Unlock()
	}})

	s.Start()
	s.SelectAnswer(0, "A")
	s.Advance()
	s.ToggleFlag(1)
	s.Complete()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []EventType{EventStarted, EventAnswered, EventCursor, EventFlagged, EventCompleted}, types)
}

func TestSnapshotPagination(t *testing.T) {
	s := newTestSession(t, makePool(25), Config{Mode: ModeStudy, PageSize: 10})
	s.Start()

	snap := s.Snapshot()
	assert.Equal(t, 3, snap.PageCount)
	assert.Zero(t, snap.CurrentPage)

	s.Jump(17)
	assert.Equal(t, 1, s.Snapshot().CurrentPage)
}

func TestManagerSupersedes(t *testing.T) {
	m := NewManager()
	old := newTestSession(t, makePool(2), Config{Mode: ModePractice})
	fresh := newTestSession(t, makePool(2), Config{Mode: ModePractice})

	m.Put(1, old)
	m.Put(1, fresh)
	assert.Same(t, fresh, m.Get(1))

	m.Remove(1)
	assert.Nil(t, m.Get(1))

	m.Put(2, newTestSession(t, makePool(2), Config{Mode: ModeRandom}))
	m.Shutdown()
	assert.Nil(t, m.Get(2))
}
