package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUsableChoices(t *testing.T) {
	q := &Question{Choices: map[string]string{
		"A": "valid",
		"B": "",
		"C": "  ",
		"D": "also valid",
	}}

	usable := q.UsableChoices()
	assert.Len(t, usable, 2)
	assert.Contains(t, usable, "A")
	assert.Contains(t, usable, "D")
}

func TestAnswerable(t *testing.T) {
	assert.True(t, (&Question{Choices: map[string]string{"A": "x"}}).Answerable())
	assert.False(t, (&Question{Choices: map[string]string{"A": ""}}).Answerable())
	assert.False(t, (&Question{}).Answerable())
}

func TestHasImagePlaceholder(t *testing.T) {
	assert.True(t, (&Question{Text: "see [img] below"}).HasImagePlaceholder())
	assert.False(t, (&Question{Text: "plain text"}).HasImagePlaceholder())
}

func TestIsMultiAnswer(t *testing.T) {
	assert.False(t, (&Question{CorrectAnswer: "A"}).IsMultiAnswer())
	assert.True(t, (&Question{CorrectAnswer: "AB"}).IsMultiAnswer())
	assert.False(t, (&Question{}).IsMultiAnswer())
}
