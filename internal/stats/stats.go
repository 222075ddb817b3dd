package stats

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

const (
	sparkChars    = " .:-=+*#%@"
	maxLabelWidth = 24
)

var recommendedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))

// Sparkline renders a single-line ASCII sparkline for values on the fixed
// scale [lo, hi]. Values outside the scale are clamped.
func Sparkline(values []float64, lo, hi float64) string {
	if len(values) == 0 {
		return ""
	}
	if math.Abs(hi-lo) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - lo) / (hi - lo)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

func percent(v float64) string {
	return fmt.Sprintf("%.0f%%", v*100)
}

// RenderSummary prints mode-wide totals and the expansion gate.
func RenderSummary(w io.Writer, r Report) error {
	if _, err := fmt.Fprintf(w, "Summary (%s)\n", r.Mode); err != nil {
		return err
	}
	if r.Seen == 0 {
		_, err := fmt.Fprint(w, "No answers recorded yet.\n\n")
		return err
	}
	if _, err := fmt.Fprintf(w, "Seen: %d/%d\n", r.Seen, r.Items); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Mastered: %d (recall >= %s)\n", r.Mastered, percent(r.Config.RecallThreshold)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Fluent: %d (automaticity >= %s)\n", r.Fluent, percent(r.Config.AutomaticityThreshold)); err != nil {
		return err
	}
	ratio, ok := r.Recommendation.ConsolidationRatio()
	if ok {
		if _, err := fmt.Fprintf(w, "Consolidation: %s (expand at %s)\n", percent(ratio), percent(r.Config.ExpansionThreshold)); err != nil {
			return err
		}
	}
	if r.Recommendation.Expanded >= 0 {
		label := fmt.Sprintf("group %d", r.Recommendation.Expanded)
		for _, row := range r.Rows {
			if row.Index == r.Recommendation.Expanded {
				label = row.Label
			}
		}
		if _, err := fmt.Fprintf(w, "Ready for new material: %s\n", label); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return nil
}

// RenderGroupTable prints one row per group. Recommended groups are starred.
func RenderGroupTable(w io.Writer, r Report, useColor bool) error {
	if len(r.Rows) == 0 {
		_, err := fmt.Fprintln(w, "No groups defined.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Groups"); err != nil {
		return err
	}
	tbl := newTable(
		column{},
		column{header: "Group", maxWidth: maxLabelWidth},
		column{header: "Items", align: alignRight},
		column{header: "Seen", align: alignRight},
		column{header: "Mastered", align: alignRight},
		column{header: "Fluent", align: alignRight},
		column{header: "Due", align: alignRight},
		column{header: "Recall", align: alignRight},
		column{header: "Last seen"},
	)
	for _, row := range r.Rows {
		marker := ""
		if row.Recommended {
			marker = "*"
		}
		if row.Enabled {
			marker += "+"
		}
		recall := "-"
		lastSeen := "never"
		if row.Seen > 0 {
			recall = percent(row.MeanRecall)
		}
		if row.LastSeen != nil {
			lastSeen = humanize.RelTime(*row.LastSeen, r.GeneratedAt, "ago", "from now")
		}
		tbl.addRow(
			marker,
			row.Label,
			strconv.Itoa(row.Items),
			strconv.Itoa(row.Seen),
			strconv.Itoa(row.Mastered),
			strconv.Itoa(row.Fluent),
			strconv.Itoa(row.Due),
			recall,
			lastSeen,
		)
	}
	for i, line := range tbl.lines() {
		if useColor && i > 0 && r.Rows[i-1].Recommended {
			line = recommendedStyle.Render(line)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, "* recommended  + enabled"); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return nil
}

// RenderForecast prints a recall sparkline per series, followed by a plot of
// the first series (the overall mean) sized to totalWidth.
func RenderForecast(w io.Writer, r Report, totalWidth int, useColor bool) error {
	if len(r.Forecast) == 0 {
		return nil
	}
	days := len(r.Forecast[0].Values) - 1
	if _, err := fmt.Fprintf(w, "Recall forecast (today to +%dd, no practice)\n", days); err != nil {
		return err
	}
	tbl := newTable(
		column{maxWidth: maxLabelWidth},
		column{},
		column{align: alignRight},
		column{align: alignRight},
	)
	for _, s := range r.Forecast {
		tbl.addRow(s.Name, Sparkline(s.Values, 0, 1), percent(s.Values[0]), percent(s.Values[len(s.Values)-1]))
	}
	for _, line := range tbl.lines() {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	return PlotRecall(w, "Mean recall", r.Forecast[:1], width, defaultPlotHeight, useColor)
}
