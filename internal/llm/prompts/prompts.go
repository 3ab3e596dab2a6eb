package prompts

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"strings"
	"sync"
	"text/template"
	"unicode/utf8"

	"github.com/pavelanni/quizdrill/internal/model"
)

//go:embed templates/*.txt
var templateFS embed.FS

var (
	studentAnswerRegex      = regexp.MustCompile(`(?i)</?\s*student-answer\b[^>]*>`)
	systemInstructionsRegex = regexp.MustCompile(`(?i)</?\s*system-instructions\b[^>]*>`)
)

const maxAnswerRunes = 2000

// PromptVariant represents an explanation prompt variant.
type PromptVariant string

const (
	// PromptBrief asks for a two-sentence explanation.
	PromptBrief PromptVariant = "brief"
	// PromptStandard is the default explanation variant.
	PromptStandard PromptVariant = "standard"
	// PromptDetailed walks through every option.
	PromptDetailed PromptVariant = "detailed"
)

var variants = []PromptVariant{PromptBrief, PromptStandard, PromptDetailed}

// IsValidVariant checks if a prompt variant name is valid.
func IsValidVariant(v string) bool {
	for _, known := range variants {
		if string(known) == v {
			return true
		}
	}
	return false
}

var (
	loadOnce         sync.Once
	loadErr          error
	explainTemplates map[PromptVariant]*template.Template
)

// ExplainData holds template data for explanation prompts.
type ExplainData struct {
	Question      string
	Options       []string
	Correct       []string
	Selected      string
	HasWrongPicks bool
}

// Load parses the embedded prompt templates once.
func Load() error {
	loadOnce.Do(func() {
		explainTemplates, loadErr = parse(templateFS)
	})
	return loadErr
}

func parse(fsys fs.FS) (map[PromptVariant]*template.Template, error) {
	out := make(map[PromptVariant]*template.Template, len(variants))
	for _, v := range variants {
		file := "templates/explain_" + string(v) + ".txt"
		content, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, fmt.Errorf("read prompt file %s: %w", file, err)
		}
		tmpl, err := template.New(string(v)).Parse(string(content))
		if err != nil {
			return nil, fmt.Errorf("parse prompt template %s: %w", file, err)
		}
		out[v] = tmpl
	}
	return out, nil
}

// BuildExplainPrompt renders the explanation prompt for a missed question.
func BuildExplainPrompt(variant PromptVariant, entry model.MissedEntry) (string, error) {
	if err := Load(); err != nil {
		return "", fmt.Errorf("templates load failed: %w", err)
	}
	tmpl, ok := explainTemplates[variant]
	if !ok {
		return "", errors.New("invalid prompt variant: " + string(variant))
	}

	data := ExplainData{
		Question:      entry.Question,
		Options:       entry.Options,
		Correct:       entry.CorrectAnswers,
		Selected:      sanitizeAnswer(strings.Join(entry.SelectedAnswers, "\n")),
		HasWrongPicks: hasWrongPicks(entry),
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func hasWrongPicks(entry model.MissedEntry) bool {
	for _, s := range entry.SelectedAnswers {
		if entry.Mark(s) == model.MarkWrong {
			return true
		}
	}
	return false
}

func sanitizeAnswer(answer string) string {
	answer = studentAnswerRegex.ReplaceAllString(answer, "")
	answer = systemInstructionsRegex.ReplaceAllString(answer, "")
	answer = strings.TrimSpace(answer)

	if answer == "" {
		return "[No answer provided]"
	}

	if utf8.RuneCountInString(answer) > maxAnswerRunes {
		runes := []rune(answer)
		answer = string(runes[:maxAnswerRunes]) + "\n\n[Answer truncated due to length]"
	}

	return answer
}
