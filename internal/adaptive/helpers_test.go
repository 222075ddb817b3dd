package adaptive

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/fretdrill/internal/model"
)

var t0 = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func mustSelector(t *testing.T, st Storage, cfg Config, seed int64) *Selector {
	t.Helper()
	sel, err := NewSelector(st, cfg, rand.New(rand.NewSource(seed)))
	require.NoError(t, err)
	return sel
}

func testConfig() Config {
	return ScaledConfig(time.Second)
}

func floatPtr(v float64) *float64 {
	return &v
}

func timePtr(v time.Time) *time.Time {
	return &v
}

// masteredStats was answered correctly at now.
func masteredStats(now time.Time) model.ItemStats {
	return model.ItemStats{
		EWMA:          800,
		Count:         3,
		Stability:     floatPtr(4),
		LastCorrectAt: timePtr(now),
		LastSeenAt:    timePtr(now),
	}
}

// strugglingStats was seen but never answered correctly.
func strugglingStats(now time.Time) model.ItemStats {
	return model.ItemStats{
		EWMA:       4000,
		Count:      2,
		LastSeenAt: timePtr(now),
	}
}

func seed(t *testing.T, st *MemoryStorage, items map[string]model.ItemStats) {
	t.Helper()
	for id, stats := range items {
		require.NoError(t, st.SaveStats(id, stats))
	}
}

var errDisk = errors.New("disk on fire")

type failingStorage struct{}

func (failingStorage) GetStats(string) (*model.ItemStats, error) {
	return nil, errDisk
}

func (failingStorage) SaveStats(string, model.ItemStats) error {
	return errDisk
}

// nowRecorder wraps a reader and remembers every now it is queried with.
type nowRecorder struct {
	StatsReader
	seen []time.Time
}

func (r *nowRecorder) GetRecall(itemID string, now time.Time) float64 {
	r.seen = append(r.seen, now)
	return r.StatsReader.GetRecall(itemID, now)
}
