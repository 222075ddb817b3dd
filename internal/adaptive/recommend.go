package adaptive

import (
	"sort"
	"time"

	"github.com/verte-zerg/fretdrill/internal/model"
)

// StatsReader is the query surface the recommendation engine reads.
// *Selector satisfies it.
type StatsReader interface {
	GetStats(itemID string) *model.ItemStats
	GetRecall(itemID string, now time.Time) float64
}

// RecommendOptions tunes ComputeRecommendations.
type RecommendOptions struct {
	// Now is used for every recall query of one computation. Zero means time.Now().
	Now time.Time
	// SortUnstarted orders unstarted groups for expansion; nil keeps index order.
	SortUnstarted func(a, b model.GroupDef) int
}

// Recommendation is the outcome of ComputeRecommendations.
type Recommendation struct {
	// Recommended holds the indexes of groups worth practising now.
	Recommended map[int]struct{}
	// Enabled is non-nil only on first launch and holds the group to enable.
	// Nil means the caller keeps its current selection.
	Enabled map[int]struct{}

	Seen     int
	Mastered int
	// Expanded is the unstarted group added by the expansion gate, or -1.
	Expanded int
}

// ConsolidationRatio returns mastered/seen across started groups.
// ok is false when nothing has been seen yet.
func (r Recommendation) ConsolidationRatio() (ratio float64, ok bool) {
	if r.Seen == 0 {
		return 0, false
	}
	return float64(r.Mastered) / float64(r.Seen), true
}

// RecommendedGroups returns the recommended indexes in ascending order.
func (r Recommendation) RecommendedGroups() []int {
	return sortedKeys(r.Recommended)
}

// EnabledItems returns the item ids of the enabled groups, in group order.
func (r Recommendation) EnabledItems(groups []model.GroupDef) []string {
	if r.Enabled == nil {
		return nil
	}
	var items []string
	for _, g := range groups {
		if _, ok := r.Enabled[g.Index]; ok {
			items = append(items, g.ItemIDs...)
		}
	}
	return items
}

type groupWork struct {
	index int
	due   int
	seen  int
	work  int
}

// ComputeRecommendations decides which started groups to keep practising and
// whether the learner has consolidated enough to start one new group.
//
// Started groups are ranked by remaining work (due + unseen items) and every
// group at or above the median is recommended. When the mastered share of seen
// items reaches ExpansionThreshold, one unstarted group is added. With no
// started group at all, the first unstarted group is recommended and enabled.
func ComputeRecommendations(reader StatsReader, groups []model.GroupDef, cfg Config, opts RecommendOptions) Recommendation {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	rec := Recommendation{
		Recommended: map[int]struct{}{},
		Expanded:    -1,
	}

	var started []groupWork
	var unstarted []model.GroupDef
	for _, g := range groups {
		gw := groupWork{index: g.Index}
		unseen := 0
		for _, id := range g.ItemIDs {
			stats := reader.GetStats(id)
			if stats == nil || stats.Count == 0 {
				unseen++
				continue
			}
			gw.seen++
			if reader.GetRecall(id, now) >= cfg.RecallThreshold {
				rec.Mastered++
			} else {
				gw.due++
			}
		}
		if gw.seen == 0 {
			unstarted = append(unstarted, g)
			continue
		}
		gw.work = gw.due + unseen
		rec.Seen += gw.seen
		started = append(started, gw)
	}

	if len(started) == 0 {
		if first, ok := firstUnstarted(unstarted, opts.SortUnstarted); ok {
			rec.Recommended[first.Index] = struct{}{}
			rec.Enabled = map[int]struct{}{first.Index: {}}
		}
		return rec
	}

	sort.SliceStable(started, func(i, j int) bool {
		if started[i].work == started[j].work {
			return started[i].index < started[j].index
		}
		return started[i].work > started[j].work
	})
	med := medianWork(started)
	for _, gw := range started {
		if float64(gw.work) >= med {
			rec.Recommended[gw.index] = struct{}{}
		}
	}

	if ratio, ok := rec.ConsolidationRatio(); ok && ratio >= cfg.ExpansionThreshold {
		if next, ok := firstUnstarted(unstarted, opts.SortUnstarted); ok {
			rec.Recommended[next.Index] = struct{}{}
			rec.Expanded = next.Index
		}
	}
	return rec
}

// medianWork expects groups sorted by work, descending.
func medianWork(groups []groupWork) float64 {
	n := len(groups)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return float64(groups[n/2].work)
	}
	return float64(groups[n/2-1].work+groups[n/2].work) / 2
}

func firstUnstarted(groups []model.GroupDef, cmp func(a, b model.GroupDef) int) (model.GroupDef, bool) {
	if len(groups) == 0 {
		return model.GroupDef{}, false
	}
	ordered := make([]model.GroupDef, len(groups))
	copy(ordered, groups)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Index < ordered[j].Index
	})
	if cmp != nil {
		sort.SliceStable(ordered, func(i, j int) bool {
			return cmp(ordered[i], ordered[j]) < 0
		})
	}
	return ordered[0], true
}

func sortedKeys(set map[int]struct{}) []int {
	keys := make([]int, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
