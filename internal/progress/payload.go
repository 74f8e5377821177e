package progress

// StudyPayload is the wire form of one study answer on the persist queue.
type StudyPayload struct {
	UserID           int    `json:"user_id"`
	TestID           string `json:"test_id"`
	QuestionID       string `json:"question_id"`
	UserAnswer       string `json:"user_answer"`
	IsCorrect        bool   `json:"is_correct"`
	TimeTakenSeconds int    `json:"time_taken_seconds"`
}

// MockAnswerPayload is one per-question entry inside a MockPayload.
type MockAnswerPayload struct {
	QuestionID       string `json:"question_id"`
	UserAnswer       string `json:"user_answer"`
	IsCorrect        bool   `json:"is_correct"`
	TimeTakenSeconds int    `json:"time_taken_seconds"`
}

// MockPayload is the wire form of one completed mock session on the persist
// queue. Answers always has TotalQuestions entries, skipped ones carrying
// the SKIPPED sentinel.
type MockPayload struct {
	UserID           int                 `json:"user_id"`
	TestID           string              `json:"test_id"`
	Score            int                 `json:"score"`
	TotalQuestions   int                 `json:"total_questions"`
	TimeSpentSeconds int                 `json:"time_spent_seconds"`
	Answers          []MockAnswerPayload `json:"answers"`
}
