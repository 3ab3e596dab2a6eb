package quiz

// Toggle applies a selection event for option to selected and returns the
// new selection. The input slice is never modified. Events that break the
// question's constraints leave the selection unchanged.
func Toggle(selected []string, option string, q Question) []string {
	switch {
	case q.IsFillInBlank():
		if option == "" {
			return nil
		}
		return []string{option}
	case !q.HasOption(option):
		return clone(selected)
	case q.RequiredSelections() == 1:
		return []string{option}
	}

	if contains(selected, option) {
		out := make([]string, 0, len(selected)-1)
		for _, s := range selected {
			if s != option {
				out = append(out, s)
			}
		}
		return out
	}
	if len(selected) < q.RequiredSelections() {
		return append(clone(selected), option)
	}
	// at the cap
	return clone(selected)
}
