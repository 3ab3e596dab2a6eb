package tui

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pavelanni/quizdrill/internal/model"
)

// Run drives an interactive quiz on the given terminal streams until the
// user quits. It returns the review of the last completed session, if any.
func Run(ctx context.Context, opts Options, in io.Reader, out io.Writer) (model.Review, bool, error) {
	program := tea.NewProgram(
		NewModel(ctx, opts),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
		tea.WithAltScreen(),
	)
	final, err := program.Run()
	if err != nil {
		return model.Review{}, false, fmt.Errorf("run quiz UI: %w", err)
	}
	m, ok := final.(Model)
	if !ok {
		return model.Review{}, false, nil
	}
	review, done := m.Session().Review()
	return review, done, nil
}
