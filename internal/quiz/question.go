package quiz

// Question is a normalized, immutable exam question.
type Question struct {
	prompt  string
	options []string
	answer  []string
}

// NewQuestion builds a question without validation or shuffling.
// Banks should go through Normalize instead.
func NewQuestion(prompt string, options, answer []string) Question {
	return Question{
		prompt:  prompt,
		options: clone(options),
		answer:  clone(answer),
	}
}

// Prompt returns the question text.
func (q Question) Prompt() string { return q.prompt }

// Options returns a copy of the options in presentation order.
func (q Question) Options() []string { return clone(q.options) }

// Answer returns a copy of the canonical answer set.
func (q Question) Answer() []string { return clone(q.answer) }

// IsFillInBlank reports whether the question takes a free-text answer.
// Such questions carry a single placeholder option.
func (q Question) IsFillInBlank() bool { return len(q.options) == 1 }

// RequiredSelections is the number of values a complete answer holds.
// A fill-in-the-blank answer is always one value, matched against
// any of the accepted literals.
func (q Question) RequiredSelections() int {
	if q.IsFillInBlank() {
		return 1
	}
	return len(q.answer)
}

// IsMultipleChoice reports whether more than one option must be picked.
func (q Question) IsMultipleChoice() bool { return q.RequiredSelections() > 1 }

// HasOption reports whether option is one of the question's options.
func (q Question) HasOption(option string) bool {
	return contains(q.options, option)
}

// Check grades selected against the question's answer.
func (q Question) Check(selected []string) bool {
	if q.IsFillInBlank() {
		return len(selected) == 1 && contains(q.answer, selected[0])
	}
	return Grade(selected, q.answer)
}

func clone(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
