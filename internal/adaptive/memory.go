package adaptive

import "github.com/verte-zerg/fretdrill/internal/model"

// MemoryStorage is a Storage that keeps records in a map.
// It is used when no database is available and in tests.
type MemoryStorage struct {
	items map[string]model.ItemStats
}

// NewMemoryStorage returns an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{items: map[string]model.ItemStats{}}
}

// GetStats implements Storage.
func (m *MemoryStorage) GetStats(itemID string) (*model.ItemStats, error) {
	stats, ok := m.items[itemID]
	if !ok {
		return nil, nil
	}
	out := stats.Clone()
	return &out, nil
}

// SaveStats implements Storage.
func (m *MemoryStorage) SaveStats(itemID string, stats model.ItemStats) error {
	m.items[itemID] = stats.Clone()
	return nil
}
