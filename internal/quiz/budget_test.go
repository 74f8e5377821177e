package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMockTimeBudget(t *testing.T) {
	tests := []struct {
		questions int
		want      int
	}{
		{65, 7200}, // full draft keeps the 120 minute baseline
		{10, 1110},
		{1, 120},
		{2, 225},
		{130, 14400},
		{0, 0},
		{-3, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, MockTimeBudget(tt.questions), "questions=%d", tt.questions)
	}
}

func TestMockTimeBudgetAlignment(t *testing.T) {
	// Every budget lands on a 15 second boundary.
	for qc := 1; qc <= 200; qc++ {
		got := MockTimeBudget(qc)
		assert.Zero(t, got%15, "questions=%d budget=%d", qc, got)
		assert.Positive(t, got)
	}
}
