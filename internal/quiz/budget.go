package quiz

import "math"

// Mock time budget baseline: a 65-question mock gets 120 minutes; smaller
// drafts get a proportional share, rounded up to the nearest 15 seconds.
const (
	baselineQuestions = 65
	baselineMinutes   = 120
)

// MockTimeBudget returns the countdown budget in seconds for a mock session
// of questionCount questions.
func MockTimeBudget(questionCount int) int {
	if questionCount <= 0 {
		return 0
	}
	raw := float64(baselineMinutes) * float64(questionCount) / float64(baselineQuestions) * 60
	secs := int(math.Ceil(raw))
	if rem := secs % 15; rem != 0 {
		secs += 15 - rem
	}
	return secs
}
