package quiz

import (
	"sort"

	"github.com/certlab/certprep-backend/internal/model"
)

// BuildChoiceOrder builds the single shuffled choice ordering a question gets
// for the lifetime of a session. Empty-text choices are dropped; the result
// is reused for both display and scoring so the choice→label mapping never
// drifts mid-session.
//
// Returns an empty slice for an unanswerable (image-only) question.
func BuildChoiceOrder(q *model.Question) []model.ShuffledChoice {
	usable := q.UsableChoices()

	labels := make([]string, 0, len(usable))
	for label := range usable {
		labels = append(labels, label)
	}
	// Deterministic base order before the one permitted shuffle.
	sort.Strings(labels)

	choices := make([]model.ShuffledChoice, len(labels))
	for i, label := range labels {
		choices[i] = model.ShuffledChoice{Label: label, Text: usable[label]}
	}
	return Shuffle(choices)
}
