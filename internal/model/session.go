package model

// CreateSessionRequest starts a new quiz session on a test.
type CreateSessionRequest struct {
	TestID        string `json:"test_id" binding:"required,uuid"`
	Mode          string `json:"mode" binding:"required,oneof=random mock practice study"`
	QuestionCount int    `json:"question_count" binding:"omitempty,min=1"`
}

// AnswerRequest selects or toggles a choice on one question.
type AnswerRequest struct {
	Index int    `json:"index" binding:"min=0"`
	Label string `json:"label" binding:"required,len=1"`
}

// SubmitRequest finalizes the pending multi-answer selection on one question.
type SubmitRequest struct {
	Index int `json:"index" binding:"min=0"`
}

// CursorRequest moves the session cursor to an absolute question index.
type CursorRequest struct {
	Index int `json:"index" binding:"min=0"`
}

// FlagRequest toggles the review flag on one question.
type FlagRequest struct {
	Index int `json:"index" binding:"min=0"`
}
