// Package model defines shared data structures.
package model

import "time"

// ItemStats is the learning record for a single drill item.
// Every field is always present; unset values are nil pointers.
type ItemStats struct {
	// EWMA is the smoothed response time in milliseconds.
	EWMA float64 `json:"ewma" yaml:"ewma"`
	// Count is the number of recorded responses, correct and incorrect.
	Count int `json:"count" yaml:"count"`
	// Stability is the forgetting half-life in hours; nil before the first correct answer.
	Stability     *float64   `json:"stability" yaml:"stability"`
	LastCorrectAt *time.Time `json:"last_correct_at" yaml:"last_correct_at"`
	LastSeenAt    *time.Time `json:"last_seen_at" yaml:"last_seen_at"`
}

// Clone returns a deep copy. Pointer fields are copied by value.
func (s ItemStats) Clone() ItemStats {
	out := s
	if s.Stability != nil {
		v := *s.Stability
		out.Stability = &v
	}
	if s.LastCorrectAt != nil {
		v := *s.LastCorrectAt
		out.LastCorrectAt = &v
	}
	if s.LastSeenAt != nil {
		v := *s.LastSeenAt
		out.LastSeenAt = &v
	}
	return out
}

// GroupDef is a caller-supplied subset of a mode's item universe.
type GroupDef struct {
	Index   int
	Label   string
	ItemIDs []string
}

// PracticeConfig defines drill settings.
type PracticeConfig struct {
	Mode     string
	Notation string
	Groups   []int
	Suggest  bool
}

// ProgressConfig defines options for progress output.
type ProgressConfig struct {
	Mode         string
	ForecastDays int
	Color        bool
}
