package quiz

// Grade reports whether selected equals answer as a set.
// Values are compared literally: no case folding, no trimming.
func Grade(selected, answer []string) bool {
	if len(selected) != len(answer) {
		return false
	}
	for _, s := range selected {
		if !contains(answer, s) {
			return false
		}
	}
	for _, a := range answer {
		if !contains(selected, a) {
			return false
		}
	}
	return true
}
