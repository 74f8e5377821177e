package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sel(labels ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		m[l] = struct{}{}
	}
	return m
}

func TestScore(t *testing.T) {
	tests := []struct {
		name     string
		selected map[string]struct{}
		correct  string
		want     bool
	}{
		{"single correct", sel("B"), "B", true},
		{"single wrong", sel("A"), "B", false},
		{"multi exact", sel("A", "B"), "AB", true},
		{"multi order independent", sel("B", "A"), "AB", true},
		{"multi subset", sel("A"), "AB", false},
		{"multi superset", sel("A", "B", "C"), "AB", false},
		{"multi disjoint", sel("C", "D"), "AB", false},
		{"empty selection", sel(), "A", false},
		{"empty both", sel(), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(tt.selected, tt.correct))
		})
	}
}

func TestSelectionString(t *testing.T) {
	assert.Equal(t, "", SelectionString(sel()))
	assert.Equal(t, "A", SelectionString(sel("A")))
	assert.Equal(t, "AB", SelectionString(sel("B", "A")))
	assert.Equal(t, "ACD", SelectionString(sel("D", "A", "C")))
}
