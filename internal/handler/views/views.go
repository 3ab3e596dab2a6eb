// Package views renders the review server pages as templ components.
package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/pavelanni/quizdrill/internal/model"
)

const timeLayout = "2006-01-02 15:04"

// BankCheck is the outcome of validating an uploaded bank.
type BankCheck struct {
	Name   string
	Digest string
	Count  int
	Err    string
}

func formatTime(t time.Time) string {
	return t.Local().Format(timeLayout)
}

func scoreCell(a model.Attempt) string {
	return fmt.Sprintf("%d / %d (%d%%)", a.Score, a.Total, a.Review().Percent())
}

func attemptURL(id string) string {
	return "/attempts/" + id
}

func explainURL(attemptID string, position int) string {
	return fmt.Sprintf("/attempts/%s/missed/%d/explain", attemptID, position)
}

func explanationID(position int) string {
	return fmt.Sprintf("explanation-%d", position)
}

func markClass(mark model.OptionMark) string {
	return "mark-" + string(mark)
}

// paragraphs splits LLM output on blank lines.
func paragraphs(text string) []string {
	return strings.Split(strings.TrimSpace(text), "\n\n")
}

func glyph(mark model.OptionMark) string {
	switch mark {
	case model.MarkCorrect:
		return "✔"
	case model.MarkWrong:
		return "✘"
	case model.MarkAnswered:
		return "⚠"
	}
	return ""
}
