package quiz

import "math/rand/v2"

// Shuffle returns a new slice holding a uniformly random permutation of seq
// (Fisher–Yates, last index down to 1, swapping with a uniform pick in
// [0, i]). The input is never mutated.
//
// Call it exactly once per session or page construction: shuffling again
// changes the presented order and breaks choice-ordering stability.
func Shuffle[T any](seq []T) []T {
	out := make([]T, len(seq))
	copy(out, seq)
	for i := len(out) - 1; i >= 1; i-- {
		j := rand.IntN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}
