package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pavelanni/quizdrill/internal/i18n"
	"github.com/pavelanni/quizdrill/internal/model"
	"github.com/pavelanni/quizdrill/internal/quiz"
	"github.com/pavelanni/quizdrill/internal/textfmt"
)

const (
	colorCorrect  = lipgloss.Color("34")
	colorWrong    = lipgloss.Color("160")
	colorAnswered = lipgloss.Color("33")
	colorMuted    = lipgloss.Color("242")
	colorCode     = lipgloss.Color("214")
)

const barWidth = 40

// renderLoading renders the spinner or the load failure.
func renderLoading(ctx context.Context, spin string, err error, noColor bool) string {
	if err == nil {
		return spin + " " + i18n.T(ctx, "LoadingQuestions")
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		stylize(i18n.T(ctx, "LoadFailed"), noColor, colorWrong),
		stylize(err.Error(), noColor, colorMuted),
		"",
		i18n.T(ctx, "PressRetry"),
	)
}

// renderQuestion renders the current question, its options and, once
// revealed, the result.
func (m Model) renderQuestion() string {
	q, ok := m.session.Current()
	if !ok {
		return ""
	}
	s := m.session
	header := i18n.Td(m.ctx, "QuestionNofM", map[string]any{"N": s.Index() + 1, "Total": s.Total()}) +
		"   " + i18n.Td(m.ctx, "ScoreSoFar", map[string]any{"Score": s.Score()})

	lines := []string{
		stylize(header, m.opts.NoColor, colorMuted),
		"",
		renderText(q.Prompt(), m.width-2, m.opts.NoColor),
		"",
		stylize(instruction(m.ctx, q), m.opts.NoColor, colorMuted),
	}

	if q.IsFillInBlank() {
		if s.Revealed() {
			lines = append(lines, "> "+strings.Join(s.Selected(), ""))
		} else {
			lines = append(lines, m.input.View())
		}
	} else {
		for i, opt := range q.Options() {
			lines = append(lines, m.renderOption(q, i, opt))
		}
	}

	if s.Revealed() {
		lines = append(lines, "", renderOutcome(m.ctx, q, s.LastOutcome(), m.opts.NoColor))
	}
	return strings.Join(lines, "\n")
}

func instruction(ctx context.Context, q quiz.Question) string {
	switch {
	case q.IsFillInBlank():
		return i18n.T(ctx, "TypeAnswer")
	case q.IsMultipleChoice():
		return i18n.Td(ctx, "SelectMany", map[string]any{"Count": q.RequiredSelections()})
	}
	return i18n.T(ctx, "SelectOne")
}

func (m Model) renderOption(q quiz.Question, i int, opt string) string {
	pointer := "  "
	if i == m.cursor && !m.session.Revealed() {
		pointer = "> "
	}
	checked := m.session.IsSelected(opt)
	box := "( )"
	if q.IsMultipleChoice() {
		box = "[ ]"
		if checked {
			box = "[x]"
		}
	} else if checked {
		box = "(•)"
	}
	line := fmt.Sprintf("%s%s %d. %s", pointer, box, i+1, renderText(opt, 0, m.opts.NoColor))
	if !m.session.Revealed() {
		return line
	}
	mark := model.MissedEntry{
		CorrectAnswers:  q.Answer(),
		SelectedAnswers: m.session.Selected(),
	}.Mark(opt)
	return markStyle(line, mark, m.opts.NoColor)
}

func renderOutcome(ctx context.Context, q quiz.Question, outcome quiz.Outcome, noColor bool) string {
	if outcome == quiz.OutcomeCorrect {
		return stylize(i18n.T(ctx, "Correct"), noColor, colorCorrect)
	}
	lines := []string{stylize(i18n.T(ctx, "Incorrect"), noColor, colorWrong)}
	lines = append(lines, i18n.T(ctx, "CorrectAnswersAre"))
	for _, a := range q.Answer() {
		lines = append(lines, "  • "+renderText(a, 0, noColor))
	}
	return strings.Join(lines, "\n")
}

// renderReview renders the end-of-session summary and the review of every
// missed question.
func renderReview(ctx context.Context, review model.Review, savedID string, saveErr error, width int, noColor bool) string {
	lines := []string{
		stylize(i18n.T(ctx, "ExamCompleted"), noColor, colorAnswered),
		"",
		i18n.Td(ctx, "AnsweredOutOf", map[string]any{"Score": review.Score, "Total": review.Total}),
		scoreBar(review.Score, review.Total, min(barWidth, max(width-10, 10)), noColor) +
			fmt.Sprintf(" %d%%", review.Percent()),
	}
	switch {
	case savedID != "":
		lines = append(lines, stylize(i18n.Td(ctx, "SavedAttempt", map[string]any{"ID": savedID}), noColor, colorMuted))
	case saveErr != nil:
		lines = append(lines, stylize(saveErr.Error(), noColor, colorWrong))
	}
	lines = append(lines, "")

	if len(review.Missed) == 0 {
		lines = append(lines, stylize(i18n.T(ctx, "AllCorrect"), noColor, colorCorrect))
		return strings.Join(lines, "\n")
	}

	lines = append(lines,
		i18n.Tp(ctx, "QuestionsMissed", len(review.Missed)),
		"",
		stylize(i18n.T(ctx, "ReviewIncorrect"), noColor, colorAnswered),
		renderLegend(ctx, noColor),
	)
	for i, entry := range review.Missed {
		lines = append(lines, "", fmt.Sprintf("%d. %s", i+1, renderText(entry.Question, width-4, noColor)))
		for _, opt := range entry.Choices() {
			mark := entry.Mark(opt)
			lines = append(lines, markStyle("   "+markGlyph(mark)+" "+renderText(opt, 0, noColor), mark, noColor))
		}
	}
	return strings.Join(lines, "\n")
}

func renderLegend(ctx context.Context, noColor bool) string {
	return strings.Join([]string{
		markStyle(i18n.T(ctx, "LegendCorrect"), model.MarkCorrect, noColor),
		markStyle(i18n.T(ctx, "LegendWrong"), model.MarkWrong, noColor),
		markStyle(i18n.T(ctx, "LegendAnswered"), model.MarkAnswered, noColor),
	}, "   ")
}

func markGlyph(mark model.OptionMark) string {
	switch mark {
	case model.MarkCorrect:
		return "✔"
	case model.MarkWrong:
		return "✘"
	case model.MarkAnswered:
		return "⚠"
	}
	return " "
}

func markStyle(text string, mark model.OptionMark, noColor bool) string {
	switch mark {
	case model.MarkCorrect:
		return stylize(text, noColor, colorCorrect)
	case model.MarkWrong:
		return stylize(text, noColor, colorWrong)
	case model.MarkAnswered:
		return stylize(text, noColor, colorAnswered)
	}
	return text
}

// scoreBar draws the correct share of width cells as filled blocks.
func scoreBar(score, total, width int, noColor bool) string {
	if total <= 0 || width <= 0 {
		return ""
	}
	filled := score * width / total
	return stylize(strings.Repeat("█", filled), noColor, colorCorrect) +
		stylize(strings.Repeat("░", width-filled), noColor, colorWrong)
}

// renderText wraps prose to width, styles inline literals as code and
// boxes long or multi-line literals. A width of zero disables wrapping.
func renderText(s string, width int, noColor bool) string {
	seg := textfmt.Classify(s)
	switch seg.Kind {
	case textfmt.KindInline:
		if noColor {
			return "`" + seg.Text + "`"
		}
		return lipgloss.NewStyle().Foreground(colorCode).Bold(true).Render(seg.Text)
	case textfmt.KindBlock:
		if noColor {
			return "\n" + indent(seg.Text, "    ")
		}
		return "\n" + lipgloss.NewStyle().
			Foreground(colorCode).
			Border(lipgloss.NormalBorder()).
			Padding(0, 1).
			Render(seg.Text)
	}
	if width > 0 {
		return lipgloss.NewStyle().Width(width).Render(seg.Text)
	}
	return seg.Text
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}

// stylize applies optional color styling.
func stylize(text string, noColor bool, color lipgloss.Color) string {
	if noColor {
		return text
	}
	return lipgloss.NewStyle().Foreground(color).Render(text)
}
