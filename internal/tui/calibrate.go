package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/fretdrill/internal/calibration"
)

const calibrationKeys = "asdfjkl"

// Rand picks calibration targets.
type Rand interface {
	Intn(n int) int
}

// Calibration measures how long the user takes to press a shown key.
type Calibration struct {
	trials int
	rng    Rand
	now    func() time.Time

	width  int
	height int

	target  rune
	shownAt time.Time
	samples []time.Duration

	baseline time.Duration
	err      error
	done     bool
}

// NewCalibration asks for trials key presses. Fewer than calibration.MinSamples is raised to it.
func NewCalibration(trials int, rng Rand, now func() time.Time) *Calibration {
	if trials < calibration.MinSamples {
		trials = calibration.MinSamples
	}
	if now == nil {
		now = time.Now
	}
	c := &Calibration{trials: trials, rng: rng, now: now}
	c.nextTarget()
	return c
}

// Result returns the measured baseline. ok is false if the user quit early.
func (c *Calibration) Result() (baseline time.Duration, ok bool, err error) {
	return c.baseline, c.done && c.err == nil, c.err
}

// Samples returns the recorded latencies, warm-up included.
func (c *Calibration) Samples() []time.Duration {
	return append([]time.Duration(nil), c.samples...)
}

// Init implements tea.Model.
func (c *Calibration) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (c *Calibration) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		c.width = msg.Width
		c.height = msg.Height
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return c, tea.Quit
		case tea.KeyRunes:
			return c, c.handleRunes(msg.Runes)
		}
	}
	return c, nil
}

func (c *Calibration) handleRunes(runes []rune) tea.Cmd {
	if c.done || len(runes) == 0 {
		return nil
	}
	if runes[0] != c.target {
		return nil
	}
	c.samples = append(c.samples, c.now().Sub(c.shownAt))
	if len(c.samples) < c.trials {
		c.nextTarget()
		return nil
	}
	c.done = true
	c.baseline, c.err = calibration.Baseline(c.samples)
	return tea.Quit
}

func (c *Calibration) nextTarget() {
	keys := []rune(calibrationKeys)
	idx := c.rng.Intn(len(keys))
	if keys[idx] == c.target {
		idx = (idx + 1 + c.rng.Intn(len(keys)-1)) % len(keys)
	}
	c.target = keys[idx]
	c.shownAt = c.now()
}

// View implements tea.Model.
func (c *Calibration) View() string {
	lines := []string{
		accentStyle.Render("calibration"),
		"",
		promptStyle.Render(fmt.Sprintf("press  %c", c.target)),
		"",
		pendingStyle.Render(fmt.Sprintf("%d/%d", len(c.samples), c.trials)),
	}
	content := lipgloss.JoinVertical(lipgloss.Center, lines...)
	if c.width == 0 || c.height == 0 {
		return content
	}
	return lipgloss.Place(c.width, c.height, lipgloss.Center, lipgloss.Center, content)
}
