package store

import (
	"context"
	"math/rand"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/fretdrill/internal/adaptive"
	"github.com/verte-zerg/fretdrill/internal/model"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fretdrill.db")
	st, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st, path
}

func TestNamespaceRoundTrip(t *testing.T) {
	st, path := openTestStore(t)
	ctx := context.Background()

	ns, err := st.Namespace(ctx, "fretboard")
	require.NoError(t, err)
	got, err := ns.GetStats("s6f5")
	require.NoError(t, err)
	assert.Nil(t, got)

	stability := 4.0
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	want := model.ItemStats{EWMA: 1234.5, Count: 2, Stability: &stability, LastCorrectAt: &at, LastSeenAt: &at}
	require.NoError(t, ns.SaveStats("s6f5", want))
	require.NoError(t, st.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = reopened.Close()
	})
	ns, err = reopened.Namespace(ctx, "fretboard")
	require.NoError(t, err)
	got, err = ns.GetStats("s6f5")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want.EWMA, got.EWMA)
	assert.Equal(t, want.Count, got.Count)
	assert.Equal(t, stability, *got.Stability)
	assert.True(t, got.LastCorrectAt.Equal(at))
	assert.Equal(t, []string{"s6f5"}, ns.ItemIDs())
}

func TestNamespacesAreIsolated(t *testing.T) {
	st, _ := openTestStore(t)
	ctx := context.Background()

	a, err := st.Namespace(ctx, "fretboard")
	require.NoError(t, err)
	require.NoError(t, a.SaveStats("x", model.ItemStats{Count: 1, EWMA: 10}))

	b, err := st.Namespace(ctx, "keys")
	require.NoError(t, err)
	got, err := b.GetStats("x")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Empty(t, b.All())
}

func TestMalformedRowsAreSkipped(t *testing.T) {
	st, _ := openTestStore(t)
	ctx := context.Background()

	_, err := st.db.Exec(`INSERT INTO item_stats (namespace, item_id, data, updated_at) VALUES (?, ?, ?, ?)`,
		"keys", "G:fwd", "{not json", "2025-01-01T00:00:00Z")
	require.NoError(t, err)
	_, err = st.db.Exec(`INSERT INTO item_stats (namespace, item_id, data, updated_at) VALUES (?, ?, ?, ?)`,
		"keys", "D:fwd", `{"ewma":900,"count":1,"stability":null,"last_correct_at":null,"last_seen_at":null}`, "2025-01-01T00:00:00Z")
	require.NoError(t, err)

	ns, err := st.Namespace(ctx, "keys")
	require.NoError(t, err)
	bad, err := ns.GetStats("G:fwd")
	require.NoError(t, err)
	assert.Nil(t, bad)
	good, err := ns.GetStats("D:fwd")
	require.NoError(t, err)
	require.NotNil(t, good)
	assert.Equal(t, 1, good.Count)
}

func TestSaveStatsKeepsCacheWhenWriteFails(t *testing.T) {
	st, _ := openTestStore(t)
	ns, err := st.Namespace(context.Background(), "intervals")
	require.NoError(t, err)
	require.NoError(t, st.Close())

	err = ns.SaveStats("C+4", model.ItemStats{Count: 1, EWMA: 700})
	assert.Error(t, err)
	got, err := ns.GetStats("C+4")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 700.0, got.EWMA)
}

func TestSelectorPersistsThroughItemStore(t *testing.T) {
	st, path := openTestStore(t)
	ctx := context.Background()
	now := time.Date(2025, 5, 5, 9, 0, 0, 0, time.UTC)

	ns, err := st.Namespace(ctx, "fretboard")
	require.NoError(t, err)
	sel, err := adaptive.NewSelector(ns, adaptive.DefaultConfig(), rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	require.NoError(t, sel.RecordResponse("s1f0", 700*time.Millisecond, true, now))
	require.NoError(t, st.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = reopened.Close()
	})
	ns, err = reopened.Namespace(ctx, "fretboard")
	require.NoError(t, err)
	sel, err = adaptive.NewSelector(ns, adaptive.DefaultConfig(), rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Equal(t, 1.0, sel.GetRecall("s1f0", now))
	assert.Equal(t, 1, sel.GetStats("s1f0").Count)
}

func TestSettings(t *testing.T) {
	st, _ := openTestStore(t)
	ctx := context.Background()

	_, ok, err := st.GetSetting(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, st.SetSetting(ctx, "k", "v1"))
	require.NoError(t, st.SetSetting(ctx, "k", "v2"))
	v, ok, err := st.GetSetting(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v2", v)
}

func TestBaseline(t *testing.T) {
	st, _ := openTestStore(t)
	ctx := context.Background()

	_, ok, err := st.Baseline(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, st.SetBaseline(ctx, 420*time.Millisecond))
	got, ok, err := st.Baseline(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 420*time.Millisecond, got)

	assert.Error(t, st.SetBaseline(ctx, 0))

	require.NoError(t, st.SetSetting(ctx, baselineKey, "garbage"))
	_, ok, err = st.Baseline(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEnabledGroups(t *testing.T) {
	st, _ := openTestStore(t)
	ctx := context.Background()

	_, ok, err := st.EnabledGroups(ctx, "fretboard")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, st.SetEnabledGroups(ctx, "fretboard", []int{0, 2}))
	groups, ok, err := st.EnabledGroups(ctx, "fretboard")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []int{0, 2}, groups)

	_, ok, err = st.EnabledGroups(ctx, "keys")
	require.NoError(t, err)
	assert.False(t, ok)
}
