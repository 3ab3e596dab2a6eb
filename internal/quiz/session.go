package quiz

import (
	"github.com/pavelanni/quizdrill/internal/model"
)

// Phase is a session lifecycle state.
type Phase string

const (
	PhaseLoading    Phase = "loading"
	PhasePresenting Phase = "presenting"
	PhaseRevealed   Phase = "revealed"
	PhaseComplete   Phase = "complete"
)

// Outcome is the grading result of the current question.
type Outcome int

const (
	OutcomeUnknown Outcome = iota
	OutcomeCorrect
	OutcomeIncorrect
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCorrect:
		return "correct"
	case OutcomeIncorrect:
		return "incorrect"
	}
	return "unknown"
}

// Session drives one pass through a question bank.
// It is not safe for concurrent use; callers serialize events.
type Session struct {
	phase     Phase
	questions []Question
	index     int
	selected  []string
	outcome   Outcome
	score     int
	missed    []model.MissedEntry
	loadErr   error
}

// NewSession returns an empty session waiting for its questions.
func NewSession() *Session {
	return &Session{phase: PhaseLoading}
}

// Load moves a loading session to presenting the first question.
func (s *Session) Load(questions []Question) error {
	if s.phase != PhaseLoading {
		return ErrAlreadyLoaded
	}
	if len(questions) == 0 {
		return ErrEmptyBank
	}
	s.questions = make([]Question, len(questions))
	copy(s.questions, questions)
	s.loadErr = nil
	s.phase = PhasePresenting
	return nil
}

// Fail records a load failure. The session stays in loading and accepts
// no events until Reset.
func (s *Session) Fail(err error) {
	if s.phase == PhaseLoading {
		s.loadErr = err
	}
}

// Err returns the recorded load failure, if any.
func (s *Session) Err() error { return s.loadErr }

// Reset discards all progress and starts over with questions, as if a new
// session had been loaded with them.
func (s *Session) Reset(questions []Question) error {
	*s = Session{phase: PhaseLoading}
	return s.Load(questions)
}

// Phase returns the current lifecycle state.
func (s *Session) Phase() Phase { return s.phase }

// Index returns the zero-based position of the current question.
func (s *Session) Index() int { return s.index }

// Total returns the number of questions in the session.
func (s *Session) Total() int { return len(s.questions) }

// Current returns the active question. ok is false while loading or
// after completion.
func (s *Session) Current() (Question, bool) {
	if s.phase != PhasePresenting && s.phase != PhaseRevealed {
		return Question{}, false
	}
	return s.questions[s.index], true
}

// Selected returns a copy of the working selection.
func (s *Session) Selected() []string { return clone(s.selected) }

// IsSelected reports whether option is in the working selection.
func (s *Session) IsSelected(option string) bool { return contains(s.selected, option) }

// Revealed reports whether grading feedback is visible.
func (s *Session) Revealed() bool { return s.phase == PhaseRevealed }

// LastOutcome returns the grading result of the current question.
func (s *Session) LastOutcome() Outcome { return s.outcome }

// Score returns the number of correctly answered questions so far.
func (s *Session) Score() int { return s.score }

// Missed returns a copy of the missed-question log.
func (s *Session) Missed() []model.MissedEntry { return cloneMissed(s.missed) }

// Toggle applies a selection event to the current question and reports
// whether the selection changed. It is ignored unless a question is being
// presented.
func (s *Session) Toggle(option string) bool {
	if s.phase != PhasePresenting {
		return false
	}
	next := Toggle(s.selected, option, s.questions[s.index])
	changed := !equalOrdered(next, s.selected)
	s.selected = next
	return changed
}

// CanSubmit reports whether the selection is complete.
func (s *Session) CanSubmit() bool {
	if s.phase != PhasePresenting {
		return false
	}
	return len(s.selected) == s.questions[s.index].RequiredSelections()
}

// Submit grades the current selection and reveals the result. ok is false
// when nothing happened: incomplete selection, already revealed, or not
// presenting.
func (s *Session) Submit() (outcome Outcome, ok bool) {
	if !s.CanSubmit() {
		return s.outcome, false
	}
	q := s.questions[s.index]
	if q.Check(s.selected) {
		s.outcome = OutcomeCorrect
		s.score++
	} else {
		s.outcome = OutcomeIncorrect
		s.missed = append(s.missed, model.MissedEntry{
			Question:        q.prompt,
			Options:         clone(q.options),
			CorrectAnswers:  clone(q.answer),
			SelectedAnswers: clone(s.selected),
		})
	}
	s.phase = PhaseRevealed
	return s.outcome, true
}

// Advance moves past a revealed question, to the next one or to
// completion. It reports whether the session moved.
func (s *Session) Advance() bool {
	if s.phase != PhaseRevealed {
		return false
	}
	s.selected = nil
	s.outcome = OutcomeUnknown
	if s.index == len(s.questions)-1 {
		s.phase = PhaseComplete
		return true
	}
	s.index++
	s.phase = PhasePresenting
	return true
}

// Review returns the end-of-session summary once the session is complete.
func (s *Session) Review() (model.Review, bool) {
	if s.phase != PhaseComplete {
		return model.Review{}, false
	}
	return model.Review{
		Score:  s.score,
		Total:  len(s.questions),
		Missed: cloneMissed(s.missed),
	}, true
}

func cloneMissed(in []model.MissedEntry) []model.MissedEntry {
	if in == nil {
		return nil
	}
	out := make([]model.MissedEntry, len(in))
	for i, m := range in {
		out[i] = model.MissedEntry{
			Question:        m.Question,
			Options:         clone(m.Options),
			CorrectAnswers:  clone(m.CorrectAnswers),
			SelectedAnswers: clone(m.SelectedAnswers),
		}
	}
	return out
}

func equalOrdered(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
