// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	"github.com/verte-zerg/fretdrill/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

const (
	baselineKey      = "baseline-ms"
	enabledKeyPrefix = "enabled-groups:"
)

// Store wraps SQLite access for item stats and settings.
type Store struct {
	db     *sqlx.DB
	logger zerolog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for skipped rows and write-through failures.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string, opts ...Option) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(store)
	}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS item_stats (
			namespace TEXT NOT NULL,
			item_id TEXT NOT NULL,
			data TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			PRIMARY KEY (namespace, item_id)
		);`,
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

type itemRow struct {
	Namespace string `db:"namespace"`
	ItemID    string `db:"item_id"`
	Data      string `db:"data"`
	UpdatedAt string `db:"updated_at"`
}

// ItemStore is the stats of one namespace, loaded up front so that reads
// are synchronous. Writes go to the cache first and then to SQLite.
type ItemStore struct {
	store     *Store
	namespace string
	cache     map[string]model.ItemStats
}

// Namespace loads every stored record of namespace. Rows that do not decode
// are skipped, which makes the item unseen again.
func (s *Store) Namespace(ctx context.Context, namespace string) (*ItemStore, error) {
	var rows []itemRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT namespace, item_id, data, updated_at FROM item_stats WHERE namespace = ?`, namespace)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s stats: %w", namespace, err)
	}
	cache := make(map[string]model.ItemStats, len(rows))
	for _, row := range rows {
		var stats model.ItemStats
		if err := json.Unmarshal([]byte(row.Data), &stats); err != nil {
			s.logger.Debug().Err(err).Str("namespace", namespace).Str("item", row.ItemID).Msg("skipping malformed stats row")
			continue
		}
		cache[row.ItemID] = stats
	}
	return &ItemStore{store: s, namespace: namespace, cache: cache}, nil
}

// GetStats returns the cached record for itemID, or nil.
func (n *ItemStore) GetStats(itemID string) (*model.ItemStats, error) {
	stats, ok := n.cache[itemID]
	if !ok {
		return nil, nil
	}
	out := stats.Clone()
	return &out, nil
}

// SaveStats caches stats and writes them through to SQLite.
// The cache is updated even when the write fails.
func (n *ItemStore) SaveStats(itemID string, stats model.ItemStats) error {
	n.cache[itemID] = stats.Clone()
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to encode stats: %w", err)
	}
	row := itemRow{
		Namespace: n.namespace,
		ItemID:    itemID,
		Data:      string(data),
		UpdatedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}
	_, err = n.store.db.NamedExec(
		`INSERT INTO item_stats (namespace, item_id, data, updated_at)
		 VALUES (:namespace, :item_id, :data, :updated_at)
		 ON CONFLICT(namespace, item_id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		row)
	if err != nil {
		return fmt.Errorf("failed to save stats: %w", err)
	}
	return nil
}

// Namespace returns the namespace name.
func (n *ItemStore) Namespace() string {
	return n.namespace
}

// ItemIDs returns the ids of every cached record, sorted.
func (n *ItemStore) ItemIDs() []string {
	ids := make([]string, 0, len(n.cache))
	for id := range n.cache {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// All returns a copy of every cached record.
func (n *ItemStore) All() map[string]model.ItemStats {
	out := make(map[string]model.ItemStats, len(n.cache))
	for id, stats := range n.cache {
		out[id] = stats.Clone()
	}
	return out
}

// GetSetting returns the value stored under key. ok is false when unset.
func (s *Store) GetSetting(ctx context.Context, key string) (value string, ok bool, err error) {
	err = s.db.GetContext(ctx, &value, `SELECT value FROM settings WHERE key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// SetSetting stores value under key, replacing any previous value.
func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	return err
}

// Baseline returns the calibrated motor baseline. ok is false before calibration.
func (s *Store) Baseline(ctx context.Context) (time.Duration, bool, error) {
	raw, ok, err := s.GetSetting(ctx, baselineKey)
	if err != nil || !ok {
		return 0, false, err
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || ms <= 0 {
		s.logger.Debug().Str("value", raw).Msg("ignoring malformed baseline")
		return 0, false, nil
	}
	return time.Duration(ms) * time.Millisecond, true, nil
}

// SetBaseline stores the calibrated motor baseline.
func (s *Store) SetBaseline(ctx context.Context, baseline time.Duration) error {
	if baseline <= 0 {
		return fmt.Errorf("baseline must be positive, got %s", baseline)
	}
	return s.SetSetting(ctx, baselineKey, strconv.FormatInt(baseline.Milliseconds(), 10))
}

// EnabledGroups returns the groups last practised in mode. ok is false when none were saved.
func (s *Store) EnabledGroups(ctx context.Context, mode string) ([]int, bool, error) {
	raw, ok, err := s.GetSetting(ctx, enabledKeyPrefix+mode)
	if err != nil || !ok {
		return nil, false, err
	}
	var groups []int
	if err := json.Unmarshal([]byte(raw), &groups); err != nil {
		s.logger.Debug().Err(err).Str("mode", mode).Msg("ignoring malformed enabled groups")
		return nil, false, nil
	}
	return groups, true, nil
}

// SetEnabledGroups stores the groups practised in mode.
func (s *Store) SetEnabledGroups(ctx context.Context, mode string, groups []int) error {
	data, err := json.Marshal(groups)
	if err != nil {
		return err
	}
	return s.SetSetting(ctx, enabledKeyPrefix+mode, string(data))
}
