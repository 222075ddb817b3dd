// Package tui provides the Bubble Tea drill and calibration screens.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/fretdrill/internal/music"
)

// Engine is the part of the adaptive selector the drill drives.
type Engine interface {
	SelectNext(enabled []string) (string, error)
	RecordResponse(itemID string, responseTime time.Duration, correct bool, now time.Time) error
	GetRecall(itemID string, now time.Time) float64
	GetAutomaticity(itemID string, now time.Time) float64
}

var (
	promptStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F0F0F0"))
	correctStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#73D13D"))
	incorrectStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	accentStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// Drill asks one question at a time and feeds timed answers to the engine.
type Drill struct {
	mode   music.Mode
	engine Engine
	items  []string
	now    func() time.Time

	input textinput.Model

	width  int
	height int

	current  string
	question music.Question
	shownAt  time.Time

	feedback   string
	lastResult bool
	answered   int
	correct    int

	err error
}

// DrillOption configures a Drill.
type DrillOption func(*Drill)

// WithClock replaces time.Now for response timing.
func WithClock(now func() time.Time) DrillOption {
	return func(d *Drill) {
		d.now = now
	}
}

// NewDrill builds a drill over the enabled items of mode and shows the first question.
func NewDrill(mode music.Mode, engine Engine, items []string, opts ...DrillOption) *Drill {
	input := textinput.New()
	input.Prompt = "> "
	input.Placeholder = "answer"
	input.CharLimit = 24
	input.Width = 24
	input.Focus()

	d := &Drill{
		mode:   mode,
		engine: engine,
		items:  append([]string(nil), items...),
		now:    time.Now,
		input:  input,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.nextQuestion()
	return d
}

// Err returns the error that ended the drill, if any.
func (d *Drill) Err() error {
	return d.err
}

// Answered returns the number of answers given this session and how many were correct.
func (d *Drill) Answered() (answered, correct int) {
	return d.answered, d.correct
}

// Init implements tea.Model.
func (d *Drill) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (d *Drill) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		d.width = msg.Width
		d.height = msg.Height
		return d, nil
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return d, tea.Quit
		case tea.KeyEnter:
			return d, d.submit()
		}
	}
	var cmd tea.Cmd
	d.input, cmd = d.input.Update(msg)
	return d, cmd
}

func (d *Drill) submit() tea.Cmd {
	answer := strings.TrimSpace(d.input.Value())
	if answer == "" || d.current == "" {
		return nil
	}
	now := d.now()
	elapsed := now.Sub(d.shownAt)
	if elapsed < 0 {
		elapsed = 0
	}
	ok, err := d.mode.Check(d.current, answer)
	if err != nil {
		d.err = err
		return tea.Quit
	}
	if err := d.engine.RecordResponse(d.current, elapsed, ok, now); err != nil {
		d.err = fmt.Errorf("failed to record answer: %w", err)
		return tea.Quit
	}
	d.answered++
	d.lastResult = ok
	if ok {
		d.correct++
		d.feedback = fmt.Sprintf("✓ %s  %.1fs", d.question.Answers[0], elapsed.Seconds())
	} else {
		d.feedback = fmt.Sprintf("✗ %s, not %s", strings.Join(d.question.Answers, " / "), answer)
	}
	d.input.Reset()
	d.nextQuestion()
	if d.err != nil {
		return tea.Quit
	}
	return nil
}

func (d *Drill) nextQuestion() {
	id, err := d.engine.SelectNext(d.items)
	if err != nil {
		d.err = err
		d.current = ""
		return
	}
	q, err := d.mode.Question(id)
	if err != nil {
		d.err = err
		d.current = ""
		return
	}
	d.current = id
	d.question = q
	d.shownAt = d.now()
}

// View implements tea.Model.
func (d *Drill) View() string {
	if d.current == "" {
		return ""
	}
	lines := []string{
		accentStyle.Render(d.mode.Name()),
		"",
		promptStyle.Render(d.question.Prompt),
		"",
		d.input.View(),
		"",
		d.renderFeedback(),
	}
	content := lipgloss.JoinVertical(lipgloss.Center, lines...)
	if d.width == 0 || d.height == 0 {
		return content + "\n" + d.renderFooter()
	}
	footer := d.renderFooter()
	if d.height < 3 {
		return lipgloss.Place(d.width, d.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(d.width, d.height-1, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(d.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (d *Drill) renderFeedback() string {
	switch {
	case d.feedback == "":
		return pendingStyle.Render("type the answer, enter to submit, esc to quit")
	case d.lastResult:
		return correctStyle.Render(d.feedback)
	default:
		return incorrectStyle.Render(d.feedback)
	}
}

func (d *Drill) renderFooter() string {
	if d.current == "" {
		return ""
	}
	now := d.now()
	segments := []string{
		fmt.Sprintf("Recall %.0f%%", d.engine.GetRecall(d.current, now)*100),
		fmt.Sprintf("Automaticity %.0f%%", d.engine.GetAutomaticity(d.current, now)*100),
	}
	if d.answered > 0 {
		acc := float64(d.correct) / float64(d.answered)
		segments = append(segments, fmt.Sprintf("Session %d/%d · %.1f%%", d.correct, d.answered, acc*100))
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}
