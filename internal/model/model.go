package model

import (
	"slices"
	"time"
)

// RawQuestion is a question record as it appears in a question bank file.
type RawQuestion struct {
	Question string   `json:"question" yaml:"question"`
	Options  []string `json:"options" yaml:"options"`
	Answer   []string `json:"answer" yaml:"answer"`
}

// Variant names a question bank flavour.
type Variant string

const (
	// VariantStandard is the default exam bank.
	VariantStandard Variant = "standard"
	// VariantExtended is the exercise bank with extra practice questions.
	VariantExtended Variant = "extended"
)

// MissedEntry is a snapshot of an incorrectly answered question.
type MissedEntry struct {
	Question        string   `json:"question"`
	Options         []string `json:"options"`
	CorrectAnswers  []string `json:"correct_answers"`
	SelectedAnswers []string `json:"selected_answers"`
}

// OptionMark classifies an option of a missed question for review.
type OptionMark string

const (
	MarkNone     OptionMark = ""
	MarkCorrect  OptionMark = "correct"  // right answer the user did not pick
	MarkWrong    OptionMark = "wrong"    // picked but not an answer
	MarkAnswered OptionMark = "answered" // picked and an answer
)

// Mark returns how option should be highlighted in the review of e.
func (e MissedEntry) Mark(option string) OptionMark {
	selected := contains(e.SelectedAnswers, option)
	correct := contains(e.CorrectAnswers, option)
	switch {
	case selected && correct:
		return MarkAnswered
	case selected:
		return MarkWrong
	case correct:
		return MarkCorrect
	}
	return MarkNone
}

// IsFillIn reports whether e records a fill-in-the-blank question, whose
// single option is only a placeholder.
func (e MissedEntry) IsFillIn() bool { return len(e.Options) == 1 }

// Choices returns the values to list when reviewing e. For fill-in
// questions these are the typed answer followed by the accepted answers.
func (e MissedEntry) Choices() []string {
	if !e.IsFillIn() {
		return slices.Clone(e.Options)
	}
	out := slices.Clone(e.SelectedAnswers)
	for _, a := range e.CorrectAnswers {
		if !contains(out, a) {
			out = append(out, a)
		}
	}
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

// Review is the end-of-session summary handed to presentation code.
type Review struct {
	Score  int           `json:"score"`
	Total  int           `json:"total"`
	Missed []MissedEntry `json:"missed"`
}

// Incorrect returns the number of questions not answered correctly.
func (r Review) Incorrect() int {
	return r.Total - r.Score
}

// Percent returns the score as a whole percentage of the total.
func (r Review) Percent() int {
	if r.Total == 0 {
		return 0
	}
	return r.Score * 100 / r.Total
}

// Attempt is a completed quiz run as recorded in the history store.
type Attempt struct {
	ID          string         `json:"id"`
	Bank        string         `json:"bank"`
	Variant     Variant        `json:"variant"`
	Digest      string         `json:"digest"`
	Score       int            `json:"score"`
	Total       int            `json:"total"`
	StartedAt   time.Time      `json:"started_at"`
	CompletedAt time.Time      `json:"completed_at"`
	Missed      []MissedReview `json:"missed"`
}

// MissedReview is a recorded missed question with its optional explanation.
type MissedReview struct {
	Position    int    `json:"position"`
	Explanation string `json:"explanation,omitempty"`
	MissedEntry
}

// Review converts a recorded attempt back into a session review.
func (a Attempt) Review() Review {
	r := Review{Score: a.Score, Total: a.Total}
	for _, m := range a.Missed {
		r.Missed = append(r.Missed, m.MissedEntry)
	}
	return r
}

// QuizConfig holds runtime quiz parameters set via CLI flags.
type QuizConfig struct {
	Bank         string // explicit bank location; overrides Variant
	Variant      Variant
	BankStandard string // location used for VariantStandard
	BankExtended string // location used for VariantExtended
	NumQuestions int    // 0 means all available
	Shuffle      bool
	Lang         string
	NoColor      bool
}
