package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShufflePermutes(t *testing.T) {
	in := []int{1, 2, 3, 4, 5, 6, 7, 8}
	out := Shuffle(in)

	assert.Len(t, out, len(in))
	assert.ElementsMatch(t, in, out)
}

func TestShuffleDoesNotMutateInput(t *testing.T) {
	in := []int{1, 2, 3, 4, 5, 6, 7, 8}
	snapshot := append([]int(nil), in...)

	for i := 0; i < 50; i++ {
		Shuffle(in)
	}
	assert.Equal(t, snapshot, in)
}

func TestShuffleEdgeSizes(t *testing.T) {
	assert.Empty(t, Shuffle([]int{}))
	assert.Equal(t, []int{7}, Shuffle([]int{7}))
}

func TestShuffleReachesAllPositions(t *testing.T) {
	// Every element should land at every index across enough runs; a biased
	// or off-by-one loop (skipping index 0) fails this quickly.
	const n = 5
	const runs = 3000

	in := []int{0, 1, 2, 3, 4}
	seen := [n][n]int{}
	for r := 0; r < runs; r++ {
		out := Shuffle(in)
		for pos, v := range out {
			seen[v][pos]++
		}
	}

	for v := 0; v < n; v++ {
		for pos := 0; pos < n; pos++ {
			assert.Positive(t, seen[v][pos], "element %d never at position %d", v, pos)
		}
	}
}
