package quiz

import "sort"

// Score reports whether the selected labels exactly match the correct ones.
// correct is the concatenation of single-character labels ("B", "AB", ...);
// the match is order-independent: same size, same membership.
func Score(selected map[string]struct{}, correct string) bool {
	if len(selected) != len(correct) {
		return false
	}
	for _, r := range correct {
		if _, ok := selected[string(r)]; !ok {
			return false
		}
	}
	return true
}

// SelectionString renders a selected label set as a sorted concatenation,
// the persistence format shared with CorrectAnswer ("AB", never "BA").
func SelectionString(selected map[string]struct{}) string {
	labels := make([]string, 0, len(selected))
	for label := range selected {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	joined := ""
	for _, l := range labels {
		joined += l
	}
	return joined
}
