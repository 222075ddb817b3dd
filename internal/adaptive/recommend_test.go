package adaptive

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/fretdrill/internal/model"
)

func makeGroups(sizes ...int) []model.GroupDef {
	groups := make([]model.GroupDef, len(sizes))
	for gi, size := range sizes {
		ids := make([]string, size)
		for i := range ids {
			ids[i] = fmt.Sprintf("g%d-i%d", gi, i)
		}
		groups[gi] = model.GroupDef{Index: gi, ItemIDs: ids}
	}
	return groups
}

// seedGroup marks the first mastered items of g as mastered and the next
// struggling items as seen but not known.
func seedGroup(t *testing.T, st *MemoryStorage, g model.GroupDef, mastered, struggling int) {
	t.Helper()
	require.LessOrEqual(t, mastered+struggling, len(g.ItemIDs))
	items := map[string]model.ItemStats{}
	for i := 0; i < mastered; i++ {
		items[g.ItemIDs[i]] = masteredStats(t0)
	}
	for i := mastered; i < mastered+struggling; i++ {
		items[g.ItemIDs[i]] = strugglingStats(t0)
	}
	seed(t, st, items)
}

func byIndexDesc(a, b model.GroupDef) int {
	return b.Index - a.Index
}

func TestRecommendFirstLaunch(t *testing.T) {
	groups := makeGroups(3, 3, 3)
	sel := mustSelector(t, NewMemoryStorage(), testConfig(), 1)

	rec := ComputeRecommendations(sel, groups, sel.Config(), RecommendOptions{Now: t0})
	assert.Equal(t, []int{0}, rec.RecommendedGroups())
	assert.Equal(t, map[int]struct{}{0: {}}, rec.Enabled)
	assert.Equal(t, groups[0].ItemIDs, rec.EnabledItems(groups))
	_, ok := rec.ConsolidationRatio()
	assert.False(t, ok)

	rec = ComputeRecommendations(sel, groups, sel.Config(), RecommendOptions{Now: t0, SortUnstarted: byIndexDesc})
	assert.Equal(t, []int{2}, rec.RecommendedGroups())
	assert.Equal(t, map[int]struct{}{2: {}}, rec.Enabled)
}

func TestRecommendNoGroups(t *testing.T) {
	sel := mustSelector(t, NewMemoryStorage(), testConfig(), 1)
	rec := ComputeRecommendations(sel, nil, sel.Config(), RecommendOptions{Now: t0})
	assert.Empty(t, rec.Recommended)
	assert.Nil(t, rec.Enabled)
}

func TestRecommendExpansionAtThreshold(t *testing.T) {
	groups := makeGroups(10, 4, 4)
	st := NewMemoryStorage()
	seedGroup(t, st, groups[0], 7, 3)
	sel := mustSelector(t, st, testConfig(), 1)

	rec := ComputeRecommendations(sel, groups, sel.Config(), RecommendOptions{Now: t0})
	ratio, ok := rec.ConsolidationRatio()
	require.True(t, ok)
	assert.Equal(t, sel.Config().ExpansionThreshold, ratio)
	assert.Equal(t, []int{0, 1}, rec.RecommendedGroups())
	assert.Equal(t, 1, rec.Expanded)
	assert.Nil(t, rec.Enabled)
}

func TestRecommendNoExpansionJustBelowThreshold(t *testing.T) {
	groups := makeGroups(100, 4, 4)
	st := NewMemoryStorage()
	seedGroup(t, st, groups[0], 69, 31)
	sel := mustSelector(t, st, testConfig(), 1)

	rec := ComputeRecommendations(sel, groups, sel.Config(), RecommendOptions{Now: t0})
	ratio, ok := rec.ConsolidationRatio()
	require.True(t, ok)
	assert.Less(t, ratio, sel.Config().ExpansionThreshold)
	assert.Equal(t, []int{0}, rec.RecommendedGroups())
	assert.Equal(t, -1, rec.Expanded)
	assert.Nil(t, rec.Enabled)
}

func TestRecommendFiveGroupProgression(t *testing.T) {
	groups := makeGroups(4, 4, 4, 4, 4)
	st := NewMemoryStorage()
	seedGroup(t, st, groups[0], 3, 1)
	sel := mustSelector(t, st, testConfig(), 1)

	byIndex := func(a, b model.GroupDef) int { return a.Index - b.Index }
	rec := ComputeRecommendations(sel, groups, sel.Config(), RecommendOptions{Now: t0, SortUnstarted: byIndex})
	ratio, _ := rec.ConsolidationRatio()
	assert.Equal(t, 0.75, ratio)
	assert.Equal(t, []int{0, 1}, rec.RecommendedGroups())
	assert.Nil(t, rec.Enabled)
}

func TestRecommendRanksByWorkRemaining(t *testing.T) {
	groups := makeGroups(6, 6, 6, 6)
	st := NewMemoryStorage()
	// work = due + unseen: group 0 -> 5, group 1 -> 3, group 2 -> 1.
	seedGroup(t, st, groups[0], 1, 4)
	seedGroup(t, st, groups[1], 3, 3)
	seedGroup(t, st, groups[2], 5, 1)
	sel := mustSelector(t, st, testConfig(), 1)

	rec := ComputeRecommendations(sel, groups, sel.Config(), RecommendOptions{Now: t0})
	ratio, _ := rec.ConsolidationRatio()
	require.Less(t, ratio, sel.Config().ExpansionThreshold)
	assert.Equal(t, []int{0, 1}, rec.RecommendedGroups())
}

func TestRecommendEvenCountUsesMeanMedian(t *testing.T) {
	groups := makeGroups(6, 6)
	st := NewMemoryStorage()
	seedGroup(t, st, groups[0], 0, 6)
	seedGroup(t, st, groups[1], 4, 2)
	sel := mustSelector(t, st, testConfig(), 1)

	rec := ComputeRecommendations(sel, groups, sel.Config(), RecommendOptions{Now: t0})
	assert.Equal(t, []int{0}, rec.RecommendedGroups())
}

func TestRecommendTiesAllRecommended(t *testing.T) {
	groups := makeGroups(4, 4, 4)
	st := NewMemoryStorage()
	for _, g := range groups {
		seedGroup(t, st, g, 2, 2)
	}
	sel := mustSelector(t, st, testConfig(), 1)

	rec := ComputeRecommendations(sel, groups, sel.Config(), RecommendOptions{Now: t0})
	assert.Equal(t, []int{0, 1, 2}, rec.RecommendedGroups())
	assert.Equal(t, -1, rec.Expanded)
}

func TestRecommendUsesSingleNow(t *testing.T) {
	groups := makeGroups(5, 5)
	st := NewMemoryStorage()
	seedGroup(t, st, groups[0], 3, 2)
	seedGroup(t, st, groups[1], 1, 1)
	sel := mustSelector(t, st, testConfig(), 1)
	reader := &nowRecorder{StatsReader: sel}

	ComputeRecommendations(reader, groups, sel.Config(), RecommendOptions{Now: t0})
	require.NotEmpty(t, reader.seen)
	for _, now := range reader.seen {
		assert.True(t, now.Equal(t0))
	}
}
