package tui

import (
	"context"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pavelanni/quizdrill/internal/i18n"
	"github.com/pavelanni/quizdrill/internal/model"
	"github.com/pavelanni/quizdrill/internal/quiz"
)

// Recorder persists completed sessions.
type Recorder interface {
	RecordReview(meta model.Attempt, review model.Review) (string, error)
}

// Options configures the quiz UI model.
type Options struct {
	Source   Source
	Recorder Recorder // optional
	Variant  model.Variant
	Lang     string
	NoColor  bool
}

// Model renders a quiz session using Bubble Tea.
type Model struct {
	ctx       context.Context // carries the localizer
	opts      Options
	session   *quiz.Session
	loaded    Loaded
	started   time.Time
	cursor    int
	input     textinput.Model
	spinner   spinner.Model
	review    viewport.Model
	width     int
	height    int
	savedID   string
	saveErr   error
	reloading bool // a retry is fetching a fresh bank
	quitting  bool
}

// NewModel constructs a quiz model. Questions are requested from
// opts.Source when the program starts.
func NewModel(ctx context.Context, opts Options) Model {
	if ctx == nil {
		ctx = context.Background()
	}
	lang := opts.Lang
	if lang == "" {
		lang = "en"
	}
	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 200

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))

	return Model{
		ctx:     i18n.WithLocalizer(ctx, i18n.NewLocalizer(lang)),
		opts:    opts,
		session: quiz.NewSession(),
		input:   ti,
		spinner: sp,
		review:  viewport.New(80, 20),
		width:   80,
		height:  24,
	}
}

// Session exposes the underlying quiz session.
func (m Model) Session() *quiz.Session { return m.session }

// Init starts the spinner and loads the question bank.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.load())
}

// load requests the questions from the configured source.
func (m Model) load() tea.Cmd {
	ctx, source := m.ctx, m.opts.Source
	return func() tea.Msg {
		loaded, err := source(ctx)
		return bankLoadedMsg{Loaded: loaded, Err: err}
	}
}

// record writes the finished session to the history store.
func (m Model) record() tea.Cmd {
	rec := m.opts.Recorder
	if rec == nil {
		return nil
	}
	review, ok := m.session.Review()
	if !ok {
		return nil
	}
	meta := model.Attempt{
		Bank:      m.loaded.Location,
		Variant:   m.opts.Variant,
		Digest:    m.loaded.Digest,
		StartedAt: m.started,
	}
	return func() tea.Msg {
		id, err := rec.RecordReview(meta, review)
		return attemptRecordedMsg{ID: id, Err: err}
	}
}

// Update consumes key presses and load results.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = typed.Width, typed.Height
		m.review.Width = typed.Width
		m.review.Height = max(typed.Height-4, 1)
		m.refreshReview()
		return m, nil
	case spinner.TickMsg:
		if m.session.Phase() != quiz.PhaseLoading && !m.reloading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(typed)
		return m, cmd
	case bankLoadedMsg:
		return m.applyLoaded(typed)
	case attemptRecordedMsg:
		m.savedID, m.saveErr = typed.ID, typed.Err
		if typed.Err != nil {
			slog.Error("record attempt", "error", typed.Err)
		} else {
			slog.Info("attempt recorded", "id", typed.ID)
		}
		m.refreshReview()
		return m, nil
	case tea.KeyMsg:
		if key.Matches(typed, keys.Abort) {
			m.quitting = true
			return m, tea.Quit
		}
		if m.reloading {
			if key.Matches(typed, keys.Quit) {
				m.quitting = true
				return m, tea.Quit
			}
			return m, nil
		}
		switch m.session.Phase() {
		case quiz.PhaseLoading:
			return m.updateLoading(typed)
		case quiz.PhasePresenting:
			return m.updatePresenting(typed)
		case quiz.PhaseRevealed:
			return m.updateRevealed(typed)
		case quiz.PhaseComplete:
			return m.updateComplete(typed)
		}
	}
	return m, nil
}

func (m Model) applyLoaded(msg bankLoadedMsg) (tea.Model, tea.Cmd) {
	retry := m.reloading
	m.reloading = false

	err := msg.Err
	if err == nil {
		if retry {
			err = m.session.Reset(msg.Loaded.Questions)
		} else {
			err = m.session.Load(msg.Loaded.Questions)
		}
	}
	if err != nil {
		slog.Error("load question bank", "error", err)
		if m.session.Phase() != quiz.PhaseLoading {
			m.session = quiz.NewSession()
		}
		m.session.Fail(err)
		return m, nil
	}
	m.loaded = msg.Loaded
	m.started = time.Now()
	slog.Debug("session started", "bank", msg.Loaded.Location, "questions", m.session.Total())
	cmd := m.enterQuestion()
	return m, cmd
}

// enterQuestion resets per-question widgets for the current question.
func (m *Model) enterQuestion() tea.Cmd {
	m.cursor = 0
	m.input.Reset()
	q, ok := m.session.Current()
	if ok && q.IsFillInBlank() {
		m.input.Placeholder = q.Options()[0]
		return m.input.Focus()
	}
	m.input.Blur()
	return nil
}

func (m Model) updateLoading(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.session.Err() == nil {
		if key.Matches(msg, keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}
	switch {
	case key.Matches(msg, keys.Retry):
		return m.restart()
	case key.Matches(msg, keys.Quit):
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

// restart fetches a fresh bank; the session is reset once it arrives.
func (m Model) restart() (tea.Model, tea.Cmd) {
	m.reloading = true
	m.savedID, m.saveErr = "", nil
	return m, tea.Batch(m.spinner.Tick, m.load())
}

func (m Model) updatePresenting(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	q, _ := m.session.Current()
	if q.IsFillInBlank() {
		if key.Matches(msg, keys.Submit) {
			m.session.Submit()
			m.input.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		m.session.Toggle(m.input.Value())
		return m, cmd
	}

	options := q.Options()
	switch {
	case key.Matches(msg, keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keys.Down):
		if m.cursor < len(options)-1 {
			m.cursor++
		}
	case key.Matches(msg, keys.Toggle):
		m.session.Toggle(options[m.cursor])
	case key.Matches(msg, keys.Submit):
		if !q.IsMultipleChoice() && !m.session.CanSubmit() {
			m.session.Toggle(options[m.cursor])
		}
		m.session.Submit()
	default:
		if i, ok := optionIndex(msg.String()); ok && i < len(options) {
			m.cursor = i
			m.session.Toggle(options[i])
		}
	}
	return m, nil
}

func (m Model) updateRevealed(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, keys.Submit), key.Matches(msg, keys.Toggle):
		m.session.Advance()
		if m.session.Phase() == quiz.PhaseComplete {
			m.review.GotoTop()
			m.refreshReview()
			return m, m.record()
		}
		cmd := m.enterQuestion()
		return m, cmd
	}
	return m, nil
}

func (m Model) updateComplete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, keys.Retry):
		return m.restart()
	}
	var cmd tea.Cmd
	m.review, cmd = m.review.Update(msg)
	return m, cmd
}

// refreshReview re-renders the review into the scrollable viewport.
func (m *Model) refreshReview() {
	review, ok := m.session.Review()
	if !ok {
		return
	}
	m.review.SetContent(renderReview(m.ctx, review, m.savedID, m.saveErr, m.width, m.opts.NoColor))
}

// View renders the current phase.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	title := stylize(i18n.T(m.ctx, "AppTitle"), m.opts.NoColor, lipgloss.Color("33"))
	var body, help string
	switch phase := m.session.Phase(); {
	case m.reloading:
		body = renderLoading(m.ctx, m.spinner.View(), nil, m.opts.NoColor)
	case phase == quiz.PhaseLoading:
		body, help = renderLoading(m.ctx, m.spinner.View(), m.session.Err(), m.opts.NoColor), ""
	case phase == quiz.PhasePresenting, phase == quiz.PhaseRevealed:
		body = m.renderQuestion()
		help = m.questionHelp()
	case phase == quiz.PhaseComplete:
		body = m.review.View()
		help = i18n.T(m.ctx, "HelpReview")
	}
	parts := []string{title, "", body}
	if help != "" {
		parts = append(parts, "", stylize(help, m.opts.NoColor, lipgloss.Color("244")))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) questionHelp() string {
	if m.session.Revealed() {
		return i18n.T(m.ctx, "HelpNext")
	}
	if q, ok := m.session.Current(); ok && q.IsFillInBlank() {
		return i18n.T(m.ctx, "HelpFill")
	}
	return i18n.T(m.ctx, "HelpSelect")
}
