// Package adaptive implements the learning engine: item selection, the
// half-life forgetting model and the "consolidate before expanding"
// recommendations.
//
// A Selector owns the statistics of one namespace (one quiz mode). It reads
// and writes them through a synchronous Storage; persistence failures are
// logged and swallowed so the caller's drill never stops on a bad disk.
//
//	sel, err := adaptive.NewSelector(storage, adaptive.DefaultConfig(), rand.New(rand.NewSource(1)))
//	if err != nil {
//	    return err
//	}
//	id, err := sel.SelectNext(enabled)
//	// ... ask the question ...
//	err = sel.RecordResponse(id, elapsed, correct, time.Now())
package adaptive

import (
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/verte-zerg/fretdrill/internal/model"
)

// ewmaAlpha weights the newest response time in the moving average.
const ewmaAlpha = 0.3

// Storage is the key/value contract the selector persists through.
// GetStats returns nil, nil for an item without history.
type Storage interface {
	GetStats(itemID string) (*model.ItemStats, error)
	SaveStats(itemID string, stats model.ItemStats) error
}

// Rand is the source of randomness for weighted selection.
// *rand.Rand satisfies it.
type Rand interface {
	Float64() float64
}

// Option configures a Selector.
type Option func(*Selector)

// WithLogger sets the logger used for swallowed storage failures.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Selector) {
		s.logger = logger
	}
}

// Selector chooses the next item to drill and maintains per-item statistics.
// It is not safe for concurrent use.
type Selector struct {
	storage Storage
	rng     Rand
	cfg     Config
	logger  zerolog.Logger

	// cache holds every record read or written this session; it is the
	// source of truth when the storage fails.
	cache        map[string]model.ItemStats
	lastSelected string
}

// NewSelector returns a Selector backed by storage.
func NewSelector(storage Storage, cfg Config, rng Rand, opts ...Option) (*Selector, error) {
	if storage == nil {
		return nil, fmt.Errorf("adaptive: storage is nil")
	}
	if rng == nil {
		return nil, fmt.Errorf("adaptive: rng is nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Selector{
		storage: storage,
		rng:     rng,
		cfg:     cfg,
		logger:  zerolog.Nop(),
		cache:   map[string]model.ItemStats{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Config returns the current tuning.
func (s *Selector) Config() Config {
	return s.cfg
}

// UpdateConfig merges patch into the current tuning. It affects later
// selections and updates only; stored statistics are never rewritten.
func (s *Selector) UpdateConfig(patch ConfigPatch) error {
	next := patch.Apply(s.cfg)
	if err := next.Validate(); err != nil {
		return err
	}
	s.cfg = next
	return nil
}

// LastSelected returns the item returned by the previous SelectNext call.
func (s *Selector) LastSelected() string {
	return s.lastSelected
}

// SelectNext picks one of enabled by weighted random draw. Unseen items weigh
// UnseenBoost; seen items weigh (2 - recall) * ewma / MinTime. The previous
// pick weighs zero unless it is the only candidate.
func (s *Selector) SelectNext(enabled []string) (string, error) {
	return s.SelectNextAt(enabled, time.Now())
}

// SelectNextAt is SelectNext with recall evaluated at now.
func (s *Selector) SelectNextAt(enabled []string, now time.Time) (string, error) {
	if len(enabled) == 0 {
		return "", ErrNoCandidates
	}
	if len(enabled) == 1 {
		s.lastSelected = enabled[0]
		return enabled[0], nil
	}

	weights := make([]float64, len(enabled))
	total := 0.0
	eligible := 0
	for i, id := range enabled {
		if id == s.lastSelected {
			continue
		}
		eligible++
		w := s.weight(id, now)
		weights[i] = w
		total += w
	}
	if eligible == 0 {
		// Every candidate is the previous pick.
		s.lastSelected = enabled[0]
		return enabled[0], nil
	}

	var picked string
	if total <= 0 || math.IsInf(total, 0) || math.IsNaN(total) {
		picked = s.pickUniform(enabled, eligible)
	} else {
		picked = s.pickWeighted(enabled, weights, total)
	}
	s.lastSelected = picked
	return picked, nil
}

func (s *Selector) weight(itemID string, now time.Time) float64 {
	stats := s.lookup(itemID)
	if stats == nil || stats.Count == 0 {
		return s.cfg.UnseenBoost
	}
	recallFactor := 1 + (1 - Recall(*stats, now))
	return recallFactor * (stats.EWMA / s.cfg.MinTime)
}

func (s *Selector) pickWeighted(enabled []string, weights []float64, total float64) string {
	r := s.rng.Float64() * total
	acc := 0.0
	last := ""
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		acc += w
		last = enabled[i]
		if r < acc {
			return enabled[i]
		}
	}
	// Rounding can leave r == total; fall back to the last positive weight.
	return last
}

func (s *Selector) pickUniform(enabled []string, eligible int) string {
	n := int(s.rng.Float64() * float64(eligible))
	if n >= eligible {
		n = eligible - 1
	}
	for _, id := range enabled {
		if id == s.lastSelected {
			continue
		}
		if n == 0 {
			return id
		}
		n--
	}
	return enabled[0]
}

// RecordResponse applies one answer to the item's statistics and persists them.
// responseTime is clamped to [0, MaxResponseTime] before it reaches the average.
func (s *Selector) RecordResponse(itemID string, responseTime time.Duration, correct bool, now time.Time) error {
	if itemID == "" {
		return ErrEmptyItemID
	}
	if responseTime < 0 {
		return fmt.Errorf("%w: %s", ErrNegativeResponseTime, responseTime)
	}
	ms := clampResponse(float64(responseTime)/float64(time.Millisecond), s.cfg.MaxResponseTime)

	var stats model.ItemStats
	if prev := s.lookup(itemID); prev != nil {
		stats = prev.Clone()
	}
	if stats.Count == 0 {
		stats.EWMA = ms
	} else {
		stats.EWMA = ewmaAlpha*ms + (1-ewmaAlpha)*stats.EWMA
	}
	stats.Count++
	seen := now
	stats.LastSeenAt = &seen

	if correct {
		stats = ApplyCorrect(stats, ms, now, s.cfg)
	} else {
		stats = ApplyWrong(stats, s.cfg)
	}

	s.cache[itemID] = stats
	if err := s.storage.SaveStats(itemID, stats); err != nil {
		s.logger.Warn().Err(err).Str("item", itemID).Msg("failed to save item stats; keeping in memory")
	}
	return nil
}

// GetStats returns a copy of the item's statistics, or nil when it has none.
func (s *Selector) GetStats(itemID string) *model.ItemStats {
	stats := s.lookup(itemID)
	if stats == nil {
		return nil
	}
	out := stats.Clone()
	return &out
}

// GetRecall returns the item's predicted retention at now.
// It is 0 for items never answered correctly; use GetStats to tell unseen apart.
func (s *Selector) GetRecall(itemID string, now time.Time) float64 {
	stats := s.lookup(itemID)
	if stats == nil {
		return 0
	}
	return Recall(*stats, now)
}

// GetAutomaticity returns recall multiplied by the speed score of the item's average.
func (s *Selector) GetAutomaticity(itemID string, now time.Time) float64 {
	stats := s.lookup(itemID)
	if stats == nil || stats.Count == 0 {
		return 0
	}
	return Recall(*stats, now) * SpeedScore(stats.EWMA, s.cfg)
}

func (s *Selector) lookup(itemID string) *model.ItemStats {
	if stats, ok := s.cache[itemID]; ok {
		return &stats
	}
	stats, err := s.storage.GetStats(itemID)
	if err != nil {
		s.logger.Warn().Err(err).Str("item", itemID).Msg("failed to load item stats; treating as unseen")
		return nil
	}
	if stats == nil || !validStats(*stats) {
		return nil
	}
	s.cache[itemID] = stats.Clone()
	return stats
}

// validStats rejects records no update path can produce.
func validStats(stats model.ItemStats) bool {
	if stats.Count < 0 || stats.EWMA < 0 || math.IsNaN(stats.EWMA) || math.IsInf(stats.EWMA, 0) {
		return false
	}
	if stats.Stability != nil {
		v := *stats.Stability
		if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func clampResponse(ms, maxMs float64) float64 {
	if ms < 0 {
		return 0
	}
	if ms > maxMs {
		return maxMs
	}
	return ms
}
