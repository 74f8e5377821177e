package quiz

import (
	"time"

	"github.com/certlab/certprep-backend/internal/model"
	"github.com/google/uuid"
)

// QuestionView is the client-facing rendering of one session question.
// Correctness fields are present only once revealed (instant-feedback answer
// or a completed/reviewing session).
type QuestionView struct {
	Index         int                    `json:"index"`
	ID            uuid.UUID              `json:"id"`
	Text          string                 `json:"text"`
	Images        model.QuestionImages   `json:"images"`
	Choices       []model.ShuffledChoice `json:"choices"`
	MultiAnswer   bool                   `json:"multi_answer"`
	Answerable    bool                   `json:"answerable"`
	Answered      bool                   `json:"answered"`
	Flagged       bool                   `json:"flagged"`
	Skipped       bool                   `json:"skipped"`
	Pending       []string               `json:"pending,omitempty"`
	Selected      string                 `json:"selected,omitempty"`
	IsCorrect     *bool                  `json:"is_correct,omitempty"`
	CorrectAnswer string                 `json:"correct_answer,omitempty"`
}

// Snapshot is a full, consistent view of the session for rendering. It is
// assembled under the session lock so counters and answers never disagree.
type Snapshot struct {
	ID                uuid.UUID      `json:"id"`
	TestID            uuid.UUID      `json:"test_id"`
	Mode              Mode           `json:"mode"`
	State             State          `json:"state"`
	Cursor            int            `json:"cursor"`
	QuestionCount     int            `json:"question_count"`
	PageSize          int            `json:"page_size"`
	PageCount         int            `json:"page_count"`
	CurrentPage       int            `json:"current_page"`
	RemainingSeconds  int            `json:"remaining_seconds"`
	TimeBudgetSeconds int            `json:"time_budget_seconds"`
	ElapsedSeconds    int            `json:"elapsed_seconds"`
	Stats             Stats          `json:"stats"`
	Accuracy          float64        `json:"accuracy"`
	SyncFailed        bool           `json:"sync_failed"`
	Questions         []QuestionView `json:"questions"`
}

// Snapshot renders the whole session.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.questions)
	snap := Snapshot{
		ID:                s.id,
		TestID:            s.cfg.TestID,
		Mode:              s.cfg.Mode,
		State:             s.state,
		Cursor:            s.cursor,
		QuestionCount:     n,
		PageSize:          s.cfg.PageSize,
		PageCount:         (n + s.cfg.PageSize - 1) / s.cfg.PageSize,
		CurrentPage:       s.cursor / s.cfg.PageSize,
		RemainingSeconds:  s.remaining,
		TimeBudgetSeconds: s.budget,
		ElapsedSeconds:    s.elapsedSecondsLocked(),
		Stats:             s.stats,
		Accuracy:          s.stats.Accuracy(),
		SyncFailed:        s.lastSyncFailed,
		Questions:         make([]QuestionView, n),
	}

	for i := range s.questions {
		snap.Questions[i] = s.questionViewLocked(i)
	}
	return snap
}

func (s *Session) elapsedSecondsLocked() int {
	if s.startedAt.IsZero() {
		return 0
	}
	end := s.completedAt
	if end.IsZero() {
		end = time.Now()
	}
	return int(end.Sub(s.startedAt).Seconds())
}

func (s *Session) questionViewLocked(i int) QuestionView {
	q := &s.questions[i]
	_, flagged := s.flagged[i]
	_, skipped := s.skipped[i]

	view := QuestionView{
		Index:       i,
		ID:          q.ID,
		Text:        q.Text,
		Images:      model.QuestionImages{Question: q.Images.Question},
		Choices:     s.choices[i],
		MultiAnswer: q.IsMultiAnswer(),
		Answerable:  len(s.choices[i]) > 0,
		Flagged:     flagged,
		Skipped:     skipped,
	}

	if sel, ok := s.pending[i]; ok && len(sel) > 0 {
		for label := range sel {
			view.Pending = append(view.Pending, label)
		}
	}

	revealed := s.state == StateCompleted || s.state == StateReviewing
	if ans := s.answers[i]; ans != nil {
		view.Answered = true
		view.Selected = SelectionString(ans.Selected)
		if revealed || s.cfg.Mode.InstantFeedback() {
			correct := ans.IsCorrect
			view.IsCorrect = &correct
			view.CorrectAnswer = q.CorrectAnswer
			view.Images.Answer = q.Images.Answer
		}
	} else if revealed {
		view.CorrectAnswer = q.CorrectAnswer
		view.Images.Answer = q.Images.Answer
	}

	return view
}
