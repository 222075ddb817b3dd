package stats

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

type align int

const (
	alignLeft align = iota
	alignRight
)

// column describes one table column. A maxWidth of 0 leaves cells untruncated.
type column struct {
	header   string
	align    align
	maxWidth int
}

// table lays out cells in columns measured in terminal cells, so ♯ and ♭
// labels line up with plain ASCII ones.
type table struct {
	columns []column
	rows    [][]string
}

func newTable(columns ...column) *table {
	return &table{columns: columns}
}

// addRow appends one row. Missing cells are blank and extra cells are dropped.
func (t *table) addRow(cells ...string) {
	row := make([]string, len(t.columns))
	copy(row, cells)
	for i, c := range t.columns {
		if c.maxWidth > 0 {
			row[i] = runewidth.Truncate(row[i], c.maxWidth, "…")
		}
	}
	t.rows = append(t.rows, row)
}

// lines renders the header, when any column has one, followed by every row.
func (t *table) lines() []string {
	if len(t.columns) == 0 {
		return nil
	}
	widths := make([]int, len(t.columns))
	headers := make([]string, len(t.columns))
	hasHeader := false
	for i, c := range t.columns {
		headers[i] = c.header
		widths[i] = runewidth.StringWidth(c.header)
		hasHeader = hasHeader || c.header != ""
	}
	for _, row := range t.rows {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	out := make([]string, 0, len(t.rows)+1)
	if hasHeader {
		out = append(out, t.render(headers, widths))
	}
	for _, row := range t.rows {
		out = append(out, t.render(row, widths))
	}
	return out
}

func (t *table) render(cells []string, widths []int) string {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		if t.columns[i].align == alignRight {
			parts[i] = runewidth.FillLeft(cell, widths[i])
		} else {
			parts[i] = runewidth.FillRight(cell, widths[i])
		}
	}
	return strings.TrimRight(strings.Join(parts, " "), " ")
}
