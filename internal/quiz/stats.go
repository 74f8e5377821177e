package quiz

// Stats holds the session counters, maintained incrementally on every
// state-machine transition rather than recomputed by scanning answers.
type Stats struct {
	Answered int `json:"answered"`
	Correct  int `json:"correct"`
	Skipped  int `json:"skipped"`
	Flagged  int `json:"flagged"`
}

// Accuracy is correct/answered, 0 while nothing has been answered.
func (s Stats) Accuracy() float64 {
	if s.Answered == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Answered)
}
