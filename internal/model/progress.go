package model

import (
	"time"

	"github.com/google/uuid"
)

// SkippedAnswer is the sentinel recorded for a mock-session question the
// user never answered.
const SkippedAnswer = "SKIPPED"

// StudyProgress is one durable per-question study record. Exactly one row
// exists per (user, question); re-answering overwrites it.
type StudyProgress struct {
	ID               int       `json:"id"`
	UserID           int       `json:"user_id"`
	TestID           uuid.UUID `json:"test_id"`
	QuestionID       uuid.UUID `json:"question_id"`
	UserAnswer       string    `json:"user_answer"`
	IsCorrect        bool      `json:"is_correct"`
	TimeTakenSeconds int       `json:"time_taken_seconds"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// StudyStats aggregates a user's durable study progress for one test.
type StudyStats struct {
	Answered int     `json:"answered"`
	Correct  int     `json:"correct"`
	Accuracy float64 `json:"accuracy"`
}

// MockResult is one completed mock-session record. A mock session always
// creates a new record; nothing is overwritten.
type MockResult struct {
	ID               uuid.UUID    `json:"id"`
	UserID           int          `json:"user_id"`
	TestID           uuid.UUID    `json:"test_id"`
	Score            int          `json:"score"`
	TotalQuestions   int          `json:"total_questions"`
	TimeSpentSeconds int          `json:"time_spent_seconds"`
	Answers          []MockAnswer `json:"answers,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`
}

// MockAnswer is one per-question record inside a mock result. UserAnswer is
// SkippedAnswer when the question was never answered.
type MockAnswer struct {
	QuestionID       uuid.UUID `json:"question_id"`
	UserAnswer       string    `json:"user_answer"`
	IsCorrect        bool      `json:"is_correct"`
	TimeTakenSeconds int       `json:"time_taken_seconds"`
}

// MockReviewAnswer joins a stored mock answer with its question content for
// rendering a historical review.
type MockReviewAnswer struct {
	MockAnswer
	QuestionText  string            `json:"question_text"`
	Choices       map[string]string `json:"choices"`
	CorrectAnswer string            `json:"correct_answer"`
}
