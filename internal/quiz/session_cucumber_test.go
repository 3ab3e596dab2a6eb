package quiz_test

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/cucumber/godog"

	"github.com/pavelanni/quizdrill/internal/model"
	"github.com/pavelanni/quizdrill/internal/quiz"
)

// TestSessionFeatures runs the quiz session feature scenarios.
func TestSessionFeatures(t *testing.T) {
	suite := godog.TestSuite{
		Name:                "quiz-session",
		ScenarioInitializer: initializeSessionScenario,
		Options: &godog.Options{
			Format:    "pretty",
			Paths:     []string{filepath.Join("features", "session.feature")},
			Strict:    true,
			TestingT:  t,
			Randomize: 0,
		},
	}
	if suite.Run() != 0 {
		t.Fatalf("non-zero godog status")
	}
}

type sessionScenario struct {
	session *quiz.Session
}

func initializeSessionScenario(ctx *godog.ScenarioContext) {
	state := &sessionScenario{}
	ctx.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		state.session = quiz.NewSession()
		return ctx, nil
	})

	ctx.Step(`^a question bank:$`, state.aQuestionBank)
	ctx.Step(`^I select "([^"]*)"$`, state.iSelect)
	ctx.Step(`^I submit$`, state.iSubmit)
	ctx.Step(`^I advance$`, state.iAdvance)
	ctx.Step(`^I cannot submit$`, state.iCannotSubmit)
	ctx.Step(`^the answer is (correct|incorrect)$`, state.theAnswerIs)
	ctx.Step(`^the score is (\d+)$`, state.theScoreIs)
	ctx.Step(`^the selection is "([^"]*)"$`, state.theSelectionIs)
	ctx.Step(`^the session is complete with (\d+) of (\d+)$`, state.theSessionIsComplete)
	ctx.Step(`^no questions were missed$`, state.noQuestionsWereMissed)
	ctx.Step(`^the missed log has (\d+) entr(?:y|ies)$`, state.theMissedLogHas)
	ctx.Step(`^missed entry (\d+) has selected "([^"]*)" and correct "([^"]*)"$`, state.missedEntryHas)
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func (s *sessionScenario) aQuestionBank(table *godog.Table) error {
	var raw []model.RawQuestion
	for i, row := range table.Rows {
		if i == 0 {
			continue
		}
		raw = append(raw, model.RawQuestion{
			Question: row.Cells[0].Value,
			Options:  splitList(row.Cells[1].Value),
			Answer:   splitList(row.Cells[2].Value),
		})
	}
	questions, err := quiz.Normalize(raw, quiz.WithoutShuffle())
	if err != nil {
		return fmt.Errorf("normalize bank: %w", err)
	}
	return s.session.Load(questions)
}

func (s *sessionScenario) iSelect(option string) error {
	s.session.Toggle(option)
	return nil
}

func (s *sessionScenario) iSubmit() error {
	s.session.Submit()
	return nil
}

func (s *sessionScenario) iAdvance() error {
	if !s.session.Advance() {
		return fmt.Errorf("advance refused in phase %s", s.session.Phase())
	}
	return nil
}

func (s *sessionScenario) iCannotSubmit() error {
	if s.session.CanSubmit() {
		return fmt.Errorf("submit is enabled with selection %v", s.session.Selected())
	}
	return nil
}

func (s *sessionScenario) theAnswerIs(want string) error {
	if got := s.session.LastOutcome().String(); got != want {
		return fmt.Errorf("outcome is %s, want %s", got, want)
	}
	return nil
}

func (s *sessionScenario) theScoreIs(want int) error {
	if got := s.session.Score(); got != want {
		return fmt.Errorf("score is %d, want %d", got, want)
	}
	return nil
}

func (s *sessionScenario) theSelectionIs(want string) error {
	got := slices.Clone(s.session.Selected())
	slices.Sort(got)
	if !slices.Equal(got, splitList(want)) {
		return fmt.Errorf("selection is %v, want %s", got, want)
	}
	return nil
}

func (s *sessionScenario) theSessionIsComplete(score, total int) error {
	review, ok := s.session.Review()
	if !ok {
		return fmt.Errorf("session is %s, not complete", s.session.Phase())
	}
	if review.Score != score || review.Total != total {
		return fmt.Errorf("review is %d of %d, want %d of %d", review.Score, review.Total, score, total)
	}
	return nil
}

func (s *sessionScenario) noQuestionsWereMissed() error {
	return s.theMissedLogHas(0)
}

func (s *sessionScenario) theMissedLogHas(n int) error {
	if got := len(s.session.Missed()); got != n {
		return fmt.Errorf("missed log has %d entries, want %d", got, n)
	}
	return nil
}

func (s *sessionScenario) missedEntryHas(pos int, selected, correct string) error {
	missed := s.session.Missed()
	if pos < 1 || pos > len(missed) {
		return fmt.Errorf("no missed entry %d", pos)
	}
	m := missed[pos-1]
	gotSel := slices.Clone(m.SelectedAnswers)
	slices.Sort(gotSel)
	gotCorrect := slices.Clone(m.CorrectAnswers)
	slices.Sort(gotCorrect)
	if !slices.Equal(gotSel, splitList(selected)) {
		return fmt.Errorf("selected %v, want %s", gotSel, selected)
	}
	if !slices.Equal(gotCorrect, splitList(correct)) {
		return fmt.Errorf("correct %v, want %s", gotCorrect, correct)
	}
	return nil
}
