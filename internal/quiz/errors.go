package quiz

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedQuestion matches any *MalformedQuestionError.
	ErrMalformedQuestion = errors.New("malformed question")
	// ErrEmptyBank is returned when a bank holds no questions.
	ErrEmptyBank = errors.New("question bank is empty")
	// ErrAlreadyLoaded is returned by Load outside the loading phase.
	ErrAlreadyLoaded = errors.New("session already loaded")
)

// MalformedQuestionError reports the first invalid record of a bank.
type MalformedQuestionError struct {
	Index  int // zero-based position in the raw bank
	Prompt string
	Reason string
}

func (e *MalformedQuestionError) Error() string {
	return fmt.Sprintf("malformed question #%d (%q): %s", e.Index+1, truncate(e.Prompt, 60), e.Reason)
}

// Is makes errors.Is(err, ErrMalformedQuestion) succeed.
func (e *MalformedQuestionError) Is(target error) bool {
	return target == ErrMalformedQuestion
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
