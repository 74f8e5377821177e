package quiz

import (
	"testing"

	"github.com/certlab/certprep-backend/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestBuildChoiceOrderKeepsUsableChoices(t *testing.T) {
	q := &model.Question{
		ID:   uuid.New(),
		Text: "pick one",
		Choices: map[string]string{
			"A": "alpha",
			"B": "beta",
			"C": "",
			"D": "   ",
			"E": "epsilon",
		},
		CorrectAnswer: "A",
	}

	choices := BuildChoiceOrder(q)
	assert.Len(t, choices, 3)

	labels := make([]string, len(choices))
	for i, c := range choices {
		labels[i] = c.Label
		assert.Equal(t, q.Choices[c.Label], c.Text)
	}
	assert.ElementsMatch(t, []string{"A", "B", "E"}, labels)
}

func TestBuildChoiceOrderUnanswerable(t *testing.T) {
	q := &model.Question{
		ID:      uuid.New(),
		Text:    "diagram only [img]",
		Choices: map[string]string{"A": "", "B": ""},
	}
	assert.Empty(t, BuildChoiceOrder(q))
}
