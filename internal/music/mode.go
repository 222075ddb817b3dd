// Package music defines the quiz modes: item universes, groups and answer checking.
package music

import (
	"errors"
	"fmt"
	"strings"

	"github.com/verte-zerg/fretdrill/internal/model"
)

var (
	ErrUnknownMode     = errors.New("music: unknown mode")
	ErrUnknownItem     = errors.New("music: unknown item")
	ErrUnknownNotation = errors.New("music: unknown notation")
)

// Settings holds user preferences shared by every mode.
type Settings struct {
	Notation Notation
}

// Question is what the drill shows for one item.
type Question struct {
	Prompt string
	// Answers lists accepted spellings, preferred first.
	Answers []string
}

// Mode is one quiz mode. Each mode is its own stats namespace.
type Mode interface {
	Name() string
	Description() string
	Items() []string
	Groups() []model.GroupDef
	Question(itemID string) (Question, error)
	Check(itemID, answer string) (bool, error)
	// SortUnstarted orders unstarted groups for expansion. Nil means index order.
	SortUnstarted() func(a, b model.GroupDef) int
}

type entry struct {
	question Question
	accept   func(answer string) bool
}

// catalog is the table-backed Mode shared by every concrete mode.
type catalog struct {
	name        string
	description string
	items       []string
	groups      []model.GroupDef
	entries     map[string]entry
	sortGroups  func(a, b model.GroupDef) int
}

func newCatalog(name, description string) *catalog {
	return &catalog{name: name, description: description, entries: map[string]entry{}}
}

func (c *catalog) add(group int, itemID string, e entry) {
	c.items = append(c.items, itemID)
	c.groups[group].ItemIDs = append(c.groups[group].ItemIDs, itemID)
	c.entries[itemID] = e
}

func (c *catalog) Name() string { return c.name }
func (c *catalog) Description() string { return c.description }

func (c *catalog) Items() []string {
	return append([]string(nil), c.items...)
}

func (c *catalog) Groups() []model.GroupDef {
	out := make([]model.GroupDef, len(c.groups))
	for i, g := range c.groups {
		g.ItemIDs = append([]string(nil), g.ItemIDs...)
		out[i] = g
	}
	return out
}

func (c *catalog) Question(itemID string) (Question, error) {
	e, ok := c.entries[itemID]
	if !ok {
		return Question{}, fmt.Errorf("%w: %s/%s", ErrUnknownItem, c.name, itemID)
	}
	q := e.question
	q.Answers = append([]string(nil), q.Answers...)
	return q, nil
}

func (c *catalog) Check(itemID, answer string) (bool, error) {
	e, ok := c.entries[itemID]
	if !ok {
		return false, fmt.Errorf("%w: %s/%s", ErrUnknownItem, c.name, itemID)
	}
	return e.accept(answer), nil
}

func (c *catalog) SortUnstarted() func(a, b model.GroupDef) int {
	return c.sortGroups
}

func acceptPitch(pc int) func(string) bool {
	return func(answer string) bool {
		got, ok := ParseNote(answer)
		return ok && got == pc
	}
}

// Modes returns every mode in menu order.
func Modes(settings Settings) []Mode {
	return []Mode{
		NewFretboard(settings),
		NewIntervals(settings),
		NewKeys(settings),
	}
}

// Names returns the mode names in menu order.
func Names() []string {
	modes := Modes(Settings{})
	names := make([]string, len(modes))
	for i, m := range modes {
		names[i] = m.Name()
	}
	return names
}

// Lookup returns the mode called name.
func Lookup(name string, settings Settings) (Mode, error) {
	want := strings.ToLower(strings.TrimSpace(name))
	for _, m := range Modes(settings) {
		if m.Name() == want {
			return m, nil
		}
	}
	return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownMode, name, strings.Join(Names(), ", "))
}
