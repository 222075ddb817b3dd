// Package stats contains progress calculations and reporting.
package stats

import (
	"time"

	"github.com/verte-zerg/fretdrill/internal/adaptive"
	"github.com/verte-zerg/fretdrill/internal/model"
)

// Reader is the per-item query surface the report needs. *adaptive.Selector satisfies it.
type Reader interface {
	GetStats(itemID string) *model.ItemStats
	GetRecall(itemID string, now time.Time) float64
	GetAutomaticity(itemID string, now time.Time) float64
}

// ReportOptions controls BuildReport.
type ReportOptions struct {
	Mode          string
	Now           time.Time
	SortUnstarted func(a, b model.GroupDef) int
	// ForecastDays is the forecast horizon; zero disables the forecast.
	ForecastDays int
	// Enabled marks the groups currently selected for practice.
	Enabled []int
}

// GroupRow summarises one group.
type GroupRow struct {
	Index       int
	Label       string
	Items       int
	Seen        int
	Mastered    int
	Fluent      int
	Due         int
	MeanRecall  float64
	LastSeen    *time.Time
	Recommended bool
	Enabled     bool
}

// Report contains precomputed data for progress rendering.
type Report struct {
	Mode           string
	GeneratedAt    time.Time
	Rows           []GroupRow
	Items          int
	Seen           int
	Mastered       int
	Fluent         int
	Config         adaptive.Config
	Recommendation adaptive.Recommendation
	Forecast       []Series
}

// BuildReport evaluates every group at a single instant.
func BuildReport(reader Reader, groups []model.GroupDef, cfg adaptive.Config, opts ReportOptions) Report {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	rec := adaptive.ComputeRecommendations(reader, groups, cfg, adaptive.RecommendOptions{
		Now:           now,
		SortUnstarted: opts.SortUnstarted,
	})
	enabled := map[int]struct{}{}
	for _, idx := range opts.Enabled {
		enabled[idx] = struct{}{}
	}

	report := Report{
		Mode:           opts.Mode,
		GeneratedAt:    now,
		Config:         cfg,
		Recommendation: rec,
	}
	for _, g := range groups {
		row := buildRow(reader, g, cfg, now)
		_, row.Recommended = rec.Recommended[g.Index]
		_, row.Enabled = enabled[g.Index]
		report.Rows = append(report.Rows, row)
		report.Items += row.Items
		report.Seen += row.Seen
		report.Mastered += row.Mastered
		report.Fluent += row.Fluent
	}
	if opts.ForecastDays > 0 {
		report.Forecast = Forecast(reader, groups, now, opts.ForecastDays)
	}
	return report
}

func buildRow(reader Reader, g model.GroupDef, cfg adaptive.Config, now time.Time) GroupRow {
	row := GroupRow{Index: g.Index, Label: g.Label, Items: len(g.ItemIDs)}
	var recallSum float64
	for _, id := range g.ItemIDs {
		stats := reader.GetStats(id)
		if stats == nil || stats.Count == 0 {
			continue
		}
		row.Seen++
		recall := reader.GetRecall(id, now)
		recallSum += recall
		if recall >= cfg.RecallThreshold {
			row.Mastered++
		} else {
			row.Due++
		}
		if reader.GetAutomaticity(id, now) >= cfg.AutomaticityThreshold {
			row.Fluent++
		}
		if stats.LastSeenAt != nil && (row.LastSeen == nil || stats.LastSeenAt.After(*row.LastSeen)) {
			last := *stats.LastSeenAt
			row.LastSeen = &last
		}
	}
	if row.Seen > 0 {
		row.MeanRecall = recallSum / float64(row.Seen)
	}
	return row
}

// Forecast returns, per started group and overall, the mean predicted recall of
// seen items at now and at each of the next days, assuming no further practice.
func Forecast(reader Reader, groups []model.GroupDef, now time.Time, days int) []Series {
	if days <= 0 {
		return nil
	}
	var out []Series
	overall := make([]float64, days+1)
	overallSeen := 0
	for _, g := range groups {
		var seen []model.ItemStats
		for _, id := range g.ItemIDs {
			if stats := reader.GetStats(id); stats != nil && stats.Count > 0 {
				seen = append(seen, *stats)
			}
		}
		if len(seen) == 0 {
			continue
		}
		values := make([]float64, days+1)
		for d := range values {
			at := now.Add(time.Duration(d) * 24 * time.Hour)
			var sum float64
			for _, stats := range seen {
				sum += adaptive.Recall(stats, at)
			}
			values[d] = sum / float64(len(seen))
			overall[d] += sum
		}
		overallSeen += len(seen)
		out = append(out, Series{Name: g.Label, Values: values})
	}
	if overallSeen == 0 {
		return nil
	}
	for d := range overall {
		overall[d] /= float64(overallSeen)
	}
	return append([]Series{{Name: "All", Values: overall}}, out...)
}
