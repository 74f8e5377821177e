package model

import (
	"strings"

	"github.com/google/uuid"
)

// ImagePlaceholder is the token embedded in question text where an image
// belongs. Images are matched positionally against placeholder occurrences.
const ImagePlaceholder = "[img]"

// QuestionImages groups image URLs attached to a question, split between the
// question body and the answer explanation.
type QuestionImages struct {
	Question []string `json:"question,omitempty"`
	Answer   []string `json:"answer,omitempty"`
}

// Question is a single exam question, immutable within a session.
//
// Choices maps label → text; labels are unique and insertion order is
// irrelevant (presentation order is decided per session by the engine).
// CorrectAnswer is the concatenation of the correct labels, e.g. "B" or "AB".
// A question with no non-empty choices and no image placeholder is invalid
// and is excluded upstream before it ever reaches the engine.
type Question struct {
	ID            uuid.UUID         `json:"id"`
	TestID        uuid.UUID         `json:"test_id"`
	Text          string            `json:"text"`
	Choices       map[string]string `json:"choices"`
	CorrectAnswer string            `json:"correct_answer"`
	Images        QuestionImages    `json:"images"`
}

// ShuffledChoice is a question's answer choice with its randomized display
// order fixed for the session.
type ShuffledChoice struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// HasImagePlaceholder reports whether the question text embeds at least one
// image placeholder.
func (q *Question) HasImagePlaceholder() bool {
	return strings.Contains(q.Text, ImagePlaceholder)
}

// UsableChoices returns the question's non-empty choices.
func (q *Question) UsableChoices() map[string]string {
	out := make(map[string]string, len(q.Choices))
	for label, text := range q.Choices {
		if strings.TrimSpace(text) != "" {
			out[label] = text
		}
	}
	return out
}

// Answerable reports whether the question can be answered at all. A question
// whose choice set is entirely empty is rendered as an informational block
// and auto-scored incorrect inside a scored session.
func (q *Question) Answerable() bool {
	return len(q.UsableChoices()) > 0
}

// IsMultiAnswer reports whether the question expects more than one label.
// This drives submission behavior only; scoring is uniform.
func (q *Question) IsMultiAnswer() bool {
	return len(q.CorrectAnswer) > 1
}
