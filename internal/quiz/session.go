package quiz

import (
	"errors"
	"sync"
	"time"

	"github.com/certlab/certprep-backend/internal/model"
	"github.com/google/uuid"
)

// Mode enumerates the four session types.
type Mode string

const (
	// ModeRandom is unstructured practice with instant feedback.
	ModeRandom Mode = "random"
	// ModeMock is the timed, scored, single-submission exam simulation.
	ModeMock Mode = "mock"
	// ModePractice is paginated practice with instant feedback.
	ModePractice Mode = "practice"
	// ModeStudy is paginated practice with durable per-question progress.
	ModeStudy Mode = "study"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	switch m {
	case ModeRandom, ModeMock, ModePractice, ModeStudy:
		return true
	}
	return false
}

// Timed reports whether the mode runs under a countdown.
func (m Mode) Timed() bool { return m == ModeMock }

// InstantFeedback reports whether correctness is revealed as soon as an
// answer is finalized. Mock sessions reveal nothing until completion.
func (m Mode) InstantFeedback() bool { return m != ModeMock }

// State enumerates session lifecycle states.
type State string

const (
	StateNotStarted State = "NOT_STARTED"
	StateInProgress State = "IN_PROGRESS"
	StateCompleted  State = "COMPLETED"
	StateReviewing  State = "REVIEWING"
)

// Answer is a finalized per-question answer. Single-answer questions are
// finalized on selection; multi-answer questions on explicit submit. Answers
// are immutable for the rest of the session instance and discarded only on
// restart.
type Answer struct {
	QuestionIndex    int
	QuestionID       uuid.UUID
	Selected         map[string]struct{}
	IsCorrect        bool
	TimeTakenSeconds int
}

// StudyRecord is the per-question payload handed to the ProgressSink in
// study mode.
type StudyRecord struct {
	UserID           int
	TestID           uuid.UUID
	QuestionID       uuid.UUID
	UserAnswer       string
	IsCorrect        bool
	TimeTakenSeconds int
}

// MockRecord is the per-session payload handed to the ProgressSink exactly
// once, at the IN_PROGRESS → COMPLETED transition of a mock session.
type MockRecord struct {
	UserID           int
	TestID           uuid.UUID
	Score            int
	TotalQuestions   int
	TimeSpentSeconds int
	Answers          []model.MockAnswer
}

// ProgressSink receives finalized results for persistence. Implementations
// must return quickly (dispatch happens on the session's mutation path) and
// report the outcome through done, which only feeds the session's
// non-authoritative sync-status indicator.
type ProgressSink interface {
	SaveStudyAnswer(rec StudyRecord, done func(ok bool))
	SaveMockResult(rec MockRecord, done func(ok bool))
}

// Feedback is returned from answer finalization. Correctness is populated
// only in instant-feedback modes.
type Feedback struct {
	Finalized     bool   `json:"finalized"`
	Revealed      bool   `json:"revealed"`
	IsCorrect     bool   `json:"is_correct,omitempty"`
	CorrectAnswer string `json:"correct_answer,omitempty"`
}

// Config parameterizes a new session.
type Config struct {
	UserID        int
	TestID        uuid.UUID
	Mode          Mode
	QuestionCount int // size of the drawn subset; 0 or > pool takes the whole pool
	PageSize      int // practice/study pagination; 0 means DefaultPageSize
	// TickInterval is the mock countdown cadence. Zero disables the
	// autonomous ticker; the owner drives Tick itself (tests do this).
	TickInterval time.Duration
	// PriorProgress pre-populates study-mode answers so a returning user
	// resumes instead of restarting.
	PriorProgress []model.StudyProgress
	Sink          ProgressSink
	Notify        Notifier
}

// DefaultPageSize is used by paginated modes when Config.PageSize is unset.
const DefaultPageSize = 10

var (
	ErrUnknownMode = errors.New("unknown session mode")
	ErrNoQuestions = errors.New("question pool is empty")
)

// Session is one attempt at a test under a specific mode. All mutations are
// serialized behind one mutex; the timer tick is the only autonomous caller.
// Nothing in here aborts an in-progress session: late ticks, invalid cursor
// moves, and sync failures all degrade to no-ops or soft indicators.
type Session struct {
	mu  sync.Mutex
	id  uuid.UUID
	cfg Config

	pool      []model.Question
	questions []model.Question
	choices   [][]model.ShuffledChoice
	answers   []*Answer
	pending   map[int]map[string]struct{}
	flagged   map[int]struct{}
	skipped   map[int]struct{}

	state  State
	cursor int
	stats  Stats

	startedAt       time.Time
	completedAt     time.Time
	questionShownAt time.Time
	budget          int // mock time budget, seconds
	remaining       int

	// epoch guards async results against superseded session state: restart
	// and teardown bump it, late callbacks carrying an old epoch are dropped.
	epoch          int
	lastSyncFailed bool

	stopTimer chan struct{}
}

// NewSession draws a question subset from pool, fixes one shuffled choice
// ordering per question, and returns a NOT_STARTED session.
func NewSession(pool []model.Question, cfg Config) (*Session, error) {
	if !cfg.Mode.Valid() {
		return nil, ErrUnknownMode
	}
	if len(pool) == 0 {
		return nil, ErrNoQuestions
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}

	s := &Session{
		id:      uuid.New(),
		cfg:     cfg,
		pool:    pool,
		state:   StateNotStarted,
		pending: make(map[int]map[string]struct{}),
		flagged: make(map[int]struct{}),
		skipped: make(map[int]struct{}),
	}
	s.drawLocked()
	s.applyPriorProgressLocked()
	return s, nil
}

// drawLocked selects and orders a fresh random subset and rebuilds every
// choice ordering. Called once at construction and again on restart.
func (s *Session) drawLocked() {
	count := s.cfg.QuestionCount
	if count <= 0 || count > len(s.pool) {
		count = len(s.pool)
	}

	shuffled := Shuffle(s.pool)
	s.questions = shuffled[:count]

	s.choices = make([][]model.ShuffledChoice, count)
	for i := range s.questions {
		s.choices[i] = BuildChoiceOrder(&s.questions[i])
	}

	s.answers = make([]*Answer, count)
	s.pending = make(map[int]map[string]struct{})
	s.flagged = make(map[int]struct{})
	s.skipped = make(map[int]struct{})
	s.cursor = 0
	s.stats = Stats{}
	s.lastSyncFailed = false
	if s.cfg.Mode.Timed() {
		s.budget = MockTimeBudget(count)
		s.remaining = s.budget
	}
}

// applyPriorProgressLocked replays durable study records onto the freshly
// drawn subset so a returning user resumes where they left off.
func (s *Session) applyPriorProgressLocked() {
	if s.cfg.Mode != ModeStudy || len(s.cfg.PriorProgress) == 0 {
		return
	}

	byQuestion := make(map[uuid.UUID]model.StudyProgress, len(s.cfg.PriorProgress))
	for _, rec := range s.cfg.PriorProgress {
		byQuestion[rec.QuestionID] = rec
	}

	for i := range s.questions {
		rec, ok := byQuestion[s.questions[i].ID]
		if !ok {
			continue
		}
		selected := make(map[string]struct{}, len(rec.UserAnswer))
		for _, r := range rec.UserAnswer {
			selected[string(r)] = struct{}{}
		}
		s.answers[i] = &Answer{
			QuestionIndex:    i,
			QuestionID:       s.questions[i].ID,
			Selected:         selected,
			IsCorrect:        Score(selected, s.questions[i].CorrectAnswer),
			TimeTakenSeconds: rec.TimeTakenSeconds,
		}
		s.stats.Answered++
		if s.answers[i].IsCorrect {
			s.stats.Correct++
		}
	}
}

// ID returns the session identifier.
func (s *Session) ID() uuid.UUID { return s.id }

// Mode returns the session mode.
func (s *Session) Mode() Mode { return s.cfg.Mode }

// TestID returns the test this session practices.
func (s *Session) TestID() uuid.UUID { return s.cfg.TestID }

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start transitions NOT_STARTED → IN_PROGRESS, captures the start timestamp
// and, for mock sessions, initializes the countdown and launches the ticker.
// Returns false if the session is not in NOT_STARTED.
func (s *Session) Start() bool {
	s.mu.Lock()
	if s.state != StateNotStarted {
		s.mu.Unlock()
		return false
	}
	s.state = StateInProgress
	s.startedAt = time.Now()
	s.questionShownAt = s.startedAt

	if s.cfg.Mode.Timed() && s.cfg.TickInterval > 0 {
		stop := make(chan struct{})
		s.stopTimer = stop
		go s.runTimer(stop, s.cfg.TickInterval)
	}
	s.mu.Unlock()

	s.emit(Event{Type: EventStarted, Data: map[string]any{
		"session_id": s.id,
		"remaining":  s.budget,
	}})
	return true
}

func (s *Session) runTimer(stop chan struct{}, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.Tick()
		}
	}
}

// Tick decrements the mock countdown by one second. A tick outside
// IN_PROGRESS (or on an untimed session) is a no-op, never an error. A late
// tick after completion must not touch anything.
func (s *Session) Tick() {
	s.mu.Lock()
	if s.state != StateInProgress || !s.cfg.Mode.Timed() {
		s.mu.Unlock()
		return
	}
	s.remaining--
	if s.remaining <= 0 {
		s.remaining = 0
		events, dispatch := s.completeLocked()
		s.mu.Unlock()
		if dispatch != nil {
			dispatch()
		}
		s.emit(events...)
		return
	}
	remaining := s.remaining
	s.mu.Unlock()

	s.emit(Event{Type: EventTick, Data: map[string]int{"remaining": remaining}})
}

// SelectAnswer finalizes a single-answer selection for the question at idx.
// For multi-answer questions it behaves like ToggleSelection (the explicit
// submit stays required). Selecting on an already-finalized or unanswerable
// question is a no-op.
func (s *Session) SelectAnswer(idx int, label string) Feedback {
	s.mu.Lock()
	if s.state != StateInProgress || !s.validIndexLocked(idx) || !s.validLabelLocked(idx, label) {
		s.mu.Unlock()
		return Feedback{}
	}
	if s.questions[idx].IsMultiAnswer() {
		s.togglePendingLocked(idx, label)
		s.mu.Unlock()
		return Feedback{}
	}
	if s.answers[idx] != nil {
		s.mu.Unlock()
		return Feedback{}
	}

	fb, events, dispatch := s.finalizeLocked(idx, map[string]struct{}{label: {}})
	s.mu.Unlock()
	if dispatch != nil {
		dispatch()
	}
	s.emit(events...)
	return fb
}

// ToggleSelection toggles a label in the pending multi-answer selection for
// the question at idx. Nothing is scored or persisted until SubmitAnswer.
func (s *Session) ToggleSelection(idx int, label string) {
	s.mu.Lock()
	if s.state != StateInProgress || !s.validIndexLocked(idx) || !s.validLabelLocked(idx, label) {
		s.mu.Unlock()
		return
	}
	if s.answers[idx] != nil || !s.questions[idx].IsMultiAnswer() {
		s.mu.Unlock()
		return
	}
	s.togglePendingLocked(idx, label)
	s.mu.Unlock()
}

func (s *Session) togglePendingLocked(idx int, label string) {
	if s.answers[idx] != nil {
		return
	}
	sel := s.pending[idx]
	if sel == nil {
		sel = make(map[string]struct{})
		s.pending[idx] = sel
	}
	if _, ok := sel[label]; ok {
		delete(sel, label)
	} else {
		sel[label] = struct{}{}
	}
}

// SubmitAnswer finalizes the pending multi-answer selection for the question
// at idx. Submitting with nothing pending is a no-op.
func (s *Session) SubmitAnswer(idx int) Feedback {
	s.mu.Lock()
	if s.state != StateInProgress || !s.validIndexLocked(idx) || s.answers[idx] != nil {
		s.mu.Unlock()
		return Feedback{}
	}
	sel := s.pending[idx]
	if len(sel) == 0 {
		s.mu.Unlock()
		return Feedback{}
	}
	delete(s.pending, idx)

	fb, events, dispatch := s.finalizeLocked(idx, sel)
	s.mu.Unlock()
	if dispatch != nil {
		dispatch()
	}
	s.emit(events...)
	return fb
}

// finalizeLocked records the answer, updates counters, and clears a skip
// mark if present. The returned dispatch closure hands the study record to
// the sink and must run after the lock is released.
func (s *Session) finalizeLocked(idx int, selected map[string]struct{}) (Feedback, []Event, func()) {
	q := &s.questions[idx]
	ans := &Answer{
		QuestionIndex:    idx,
		QuestionID:       q.ID,
		Selected:         selected,
		IsCorrect:        Score(selected, q.CorrectAnswer),
		TimeTakenSeconds: int(time.Since(s.questionShownAt).Seconds()),
	}
	s.answers[idx] = ans

	s.stats.Answered++
	if ans.IsCorrect {
		s.stats.Correct++
	}
	if _, wasSkipped := s.skipped[idx]; wasSkipped {
		delete(s.skipped, idx)
		s.stats.Skipped = len(s.skipped)
	}

	fb := Feedback{Finalized: true}
	if s.cfg.Mode.InstantFeedback() {
		fb.Revealed = true
		fb.IsCorrect = ans.IsCorrect
		fb.CorrectAnswer = q.CorrectAnswer
	}

	events := []Event{{Type: EventAnswered, Data: map[string]any{
		"question_index": idx,
		"answered":       s.stats.Answered,
	}}}

	var dispatch func()
	if s.cfg.Mode == ModeStudy && s.cfg.Sink != nil {
		epoch := s.epoch
		rec := StudyRecord{
			UserID:           s.cfg.UserID,
			TestID:           s.cfg.TestID,
			QuestionID:       q.ID,
			UserAnswer:       SelectionString(selected),
			IsCorrect:        ans.IsCorrect,
			TimeTakenSeconds: ans.TimeTakenSeconds,
		}
		dispatch = func() {
			s.cfg.Sink.SaveStudyAnswer(rec, func(ok bool) { s.reportSync(epoch, ok) })
		}
	}

	return fb, events, dispatch
}

// Advance moves the cursor to the next question.
func (s *Session) Advance() { s.Jump(s.cursorIndex() + 1) }

// Previous moves the cursor to the prior question.
func (s *Session) Previous() { s.Jump(s.cursorIndex() - 1) }

func (s *Session) cursorIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// Jump moves the cursor to idx, clamped into [0, len). Moving away from an
// unanswered question marks it skipped in mock mode; answering later clears
// the mark again.
func (s *Session) Jump(idx int) {
	s.mu.Lock()
	if s.state != StateInProgress {
		s.mu.Unlock()
		return
	}
	if idx < 0 {
		idx = 0
	}
	if idx >= len(s.questions) {
		idx = len(s.questions) - 1
	}
	if idx == s.cursor {
		s.mu.Unlock()
		return
	}

	if s.cfg.Mode == ModeMock && s.answers[s.cursor] == nil {
		s.skipped[s.cursor] = struct{}{}
		s.stats.Skipped = len(s.skipped)
	}
	s.cursor = idx
	s.questionShownAt = time.Now()
	s.mu.Unlock()

	s.emit(Event{Type: EventCursor, Data: map[string]int{"cursor": idx}})
}

// ToggleFlag toggles the review flag on the question at idx. Flags exist in
// mock mode only and never affect scoring.
func (s *Session) ToggleFlag(idx int) {
	s.mu.Lock()
	if s.state != StateInProgress || s.cfg.Mode != ModeMock || !s.validIndexLocked(idx) {
		s.mu.Unlock()
		return
	}
	if _, ok := s.flagged[idx]; ok {
		delete(s.flagged, idx)
	} else {
		s.flagged[idx] = struct{}{}
	}
	s.stats.Flagged = len(s.flagged)
	flagged := s.stats.Flagged
	s.mu.Unlock()

	s.emit(Event{Type: EventFlagged, Data: map[string]int{"flagged": flagged}})
}

// Complete transitions IN_PROGRESS → COMPLETED explicitly. Reaching the last
// question never completes a session on its own; only this call or a timer
// expiry does. Returns false outside IN_PROGRESS.
func (s *Session) Complete() bool {
	s.mu.Lock()
	if s.state != StateInProgress {
		s.mu.Unlock()
		return false
	}
	events, dispatch := s.completeLocked()
	s.mu.Unlock()
	if dispatch != nil {
		dispatch()
	}
	s.emit(events...)
	return true
}

// completeLocked stops the timer and freezes elapsed time. For mock sessions
// the returned dispatch closure hands the one-and-only session record to the
// sink; it must run after the lock is released.
func (s *Session) completeLocked() ([]Event, func()) {
	s.stopTimerLocked()
	s.state = StateCompleted
	s.completedAt = time.Now()

	events := []Event{{Type: EventCompleted, Data: map[string]any{
		"score":    s.stats.Correct,
		"answered": s.stats.Answered,
		"skipped":  s.stats.Skipped,
	}}}

	var dispatch func()
	if s.cfg.Mode == ModeMock && s.cfg.Sink != nil {
		rec := s.buildMockRecordLocked()
		epoch := s.epoch
		dispatch = func() {
			s.cfg.Sink.SaveMockResult(rec, func(ok bool) { s.reportSync(epoch, ok) })
		}
	}
	return events, dispatch
}

// buildMockRecordLocked assembles the submitted answers array, one entry per
// question, with the SKIPPED sentinel for anything never answered.
//
// TODO: per-question time is the total elapsed time split evenly, inherited
// from the original statistics pipeline; replace with real dwell tracking
// once the stats consumers can handle it.
func (s *Session) buildMockRecordLocked() MockRecord {
	n := len(s.questions)
	elapsed := int(s.completedAt.Sub(s.startedAt).Seconds())
	perQuestion := 0
	if n > 0 {
		perQuestion = elapsed / n
	}

	answers := make([]model.MockAnswer, n)
	for i := range s.questions {
		if ans := s.answers[i]; ans != nil {
			answers[i] = model.MockAnswer{
				QuestionID:       ans.QuestionID,
				UserAnswer:       SelectionString(ans.Selected),
				IsCorrect:        ans.IsCorrect,
				TimeTakenSeconds: perQuestion,
			}
			continue
		}
		answers[i] = model.MockAnswer{
			QuestionID:       s.questions[i].ID,
			UserAnswer:       model.SkippedAnswer,
			IsCorrect:        false,
			TimeTakenSeconds: perQuestion,
		}
	}

	return MockRecord{
		UserID:           s.cfg.UserID,
		TestID:           s.cfg.TestID,
		Score:            s.stats.Correct,
		TotalQuestions:   n,
		TimeSpentSeconds: elapsed,
		Answers:          answers,
	}
}

// Review transitions COMPLETED → REVIEWING. Returns false otherwise.
func (s *Session) Review() bool {
	s.mu.Lock()
	if s.state != StateCompleted {
		s.mu.Unlock()
		return false
	}
	s.state = StateReviewing
	s.mu.Unlock()

	s.emit(Event{Type: EventReviewing})
	return true
}

// BackToSummary transitions REVIEWING → COMPLETED. Returns false otherwise.
func (s *Session) BackToSummary() bool {
	s.mu.Lock()
	if s.state != StateReviewing {
		s.mu.Unlock()
		return false
	}
	s.state = StateCompleted
	s.mu.Unlock()

	s.emit(Event{Type: EventCompleted})
	return true
}

// Restart transitions COMPLETED/REVIEWING → NOT_STARTED: a fresh random
// subset is drawn, every choice ordering is re-shuffled, and all in-memory
// answers are discarded. Durable study progress is untouched.
func (s *Session) Restart() bool {
	s.mu.Lock()
	if s.state != StateCompleted && s.state != StateReviewing {
		s.mu.Unlock()
		return false
	}
	s.stopTimerLocked()
	s.epoch++
	s.drawLocked()
	s.state = StateNotStarted
	s.startedAt = time.Time{}
	s.completedAt = time.Time{}
	s.mu.Unlock()

	s.emit(Event{Type: EventRestarted})
	return true
}

// Teardown stops the timer and invalidates outstanding async callbacks. Used
// when the session is superseded or the owner shuts down; in-flight
// synchronization calls finish or fail on their own but can no longer touch
// this session.
func (s *Session) Teardown() {
	s.mu.Lock()
	s.stopTimerLocked()
	s.epoch++
	s.mu.Unlock()
}

func (s *Session) stopTimerLocked() {
	if s.stopTimer != nil {
		close(s.stopTimer)
		s.stopTimer = nil
	}
}

// reportSync records the outcome of an async persistence call. Callbacks
// from a superseded epoch are dropped so a stale result never marks the
// current session instance.
func (s *Session) reportSync(epoch int, ok bool) {
	s.mu.Lock()
	if epoch != s.epoch {
		s.mu.Unlock()
		return
	}
	s.lastSyncFailed = !ok
	s.mu.Unlock()

	s.emit(Event{Type: EventSyncStatus, Data: map[string]bool{"failed": !ok}})
}

// LastSyncFailed reports the soft "not saved" indicator. Local state stays
// authoritative either way.
func (s *Session) LastSyncFailed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSyncFailed
}

// Remaining returns the mock countdown in seconds.
func (s *Session) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remaining
}

func (s *Session) validIndexLocked(idx int) bool {
	return idx >= 0 && idx < len(s.questions)
}

func (s *Session) validLabelLocked(idx int, label string) bool {
	for _, c := range s.choices[idx] {
		if c.Label == label {
			return true
		}
	}
	return false
}

func (s *Session) emit(events ...Event) {
	if s.cfg.Notify == nil {
		return
	}
	for _, ev := range events {
		s.cfg.Notify(ev)
	}
}
