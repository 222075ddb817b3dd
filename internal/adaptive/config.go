package adaptive

import (
	"fmt"
	"time"
)

// Timing thresholds as multiples of the user's raw motor latency.
const (
	minTimeRatio                 = 1.0
	automaticityTargetRatio      = 3.0
	selfCorrectionThresholdRatio = 1.5
	maxResponseTimeRatio         = 9.0
)

// DefaultBaseline is assumed until the user calibrates.
const DefaultBaseline = 1000 * time.Millisecond

// Config tunes the selector, the forgetting model and the recommendation engine.
// Timing fields are in milliseconds, stability fields in hours.
type Config struct {
	UnseenBoost             float64 `json:"unseen_boost" toml:"unseen-boost"`
	MinTime                 float64 `json:"min_time" toml:"min-time"`
	AutomaticityTarget      float64 `json:"automaticity_target" toml:"automaticity-target"`
	SelfCorrectionThreshold float64 `json:"self_correction_threshold" toml:"self-correction-threshold"`
	SelfCorrectionMultiple  float64 `json:"self_correction_multiple" toml:"self-correction-multiple"`
	MaxResponseTime         float64 `json:"max_response_time" toml:"max-response-time"`
	InitialStability        float64 `json:"initial_stability" toml:"initial-stability"`
	StabilityGrowthBase     float64 `json:"stability_growth_base" toml:"stability-growth-base"`
	StabilityDecayOnWrong   float64 `json:"stability_decay_on_wrong" toml:"stability-decay-on-wrong"`
	RecallThreshold         float64 `json:"recall_threshold" toml:"recall-threshold"`
	ExpansionThreshold      float64 `json:"expansion_threshold" toml:"expansion-threshold"`
	AutomaticityThreshold   float64 `json:"automaticity_threshold" toml:"automaticity-threshold"`
}

// DefaultConfig returns the tuning used before calibration.
func DefaultConfig() Config {
	return ScaledConfig(DefaultBaseline)
}

// ScaledConfig returns the default tuning with timing thresholds derived from baseline.
func ScaledConfig(baseline time.Duration) Config {
	cfg := Config{
		UnseenBoost:            3,
		SelfCorrectionMultiple: 2,
		InitialStability:       4,
		StabilityGrowthBase:    1.3,
		StabilityDecayOnWrong:  0.3,
		RecallThreshold:        0.5,
		ExpansionThreshold:     0.7,
		AutomaticityThreshold:  0.8,
	}
	return cfg.WithBaseline(baseline)
}

// WithBaseline rescales every timing threshold proportionally to baseline.
// Non-timing fields are left untouched.
func (c Config) WithBaseline(baseline time.Duration) Config {
	if baseline <= 0 {
		baseline = DefaultBaseline
	}
	ms := float64(baseline) / float64(time.Millisecond)
	c.MinTime = minTimeRatio * ms
	c.AutomaticityTarget = automaticityTargetRatio * ms
	c.SelfCorrectionThreshold = selfCorrectionThresholdRatio * ms
	c.MaxResponseTime = maxResponseTimeRatio * ms
	return c
}

// Validate checks that every field is usable by the engine.
func (c Config) Validate() error {
	checks := []struct {
		name string
		ok   bool
	}{
		{"unseen-boost", c.UnseenBoost > 0},
		{"min-time", c.MinTime > 0},
		{"automaticity-target", c.AutomaticityTarget > 0},
		{"self-correction-threshold", c.SelfCorrectionThreshold >= 0},
		{"self-correction-multiple", c.SelfCorrectionMultiple > 0},
		{"max-response-time", c.MaxResponseTime > 0},
		{"initial-stability", c.InitialStability > 0},
		{"stability-growth-base", c.StabilityGrowthBase >= 1},
		{"stability-decay-on-wrong", c.StabilityDecayOnWrong >= 0 && c.StabilityDecayOnWrong <= 1},
		{"recall-threshold", c.RecallThreshold >= 0 && c.RecallThreshold <= 1},
		{"expansion-threshold", c.ExpansionThreshold >= 0 && c.ExpansionThreshold <= 1},
		{"automaticity-threshold", c.AutomaticityThreshold >= 0 && c.AutomaticityThreshold <= 1},
	}
	for _, check := range checks {
		if !check.ok {
			return fmt.Errorf("%w: %s", ErrInvalidConfig, check.name)
		}
	}
	return nil
}

// ConfigPatch holds optional overrides for Config. Nil fields are left unchanged.
type ConfigPatch struct {
	UnseenBoost             *float64 `toml:"unseen-boost"`
	MinTime                 *float64 `toml:"min-time"`
	AutomaticityTarget      *float64 `toml:"automaticity-target"`
	SelfCorrectionThreshold *float64 `toml:"self-correction-threshold"`
	SelfCorrectionMultiple  *float64 `toml:"self-correction-multiple"`
	MaxResponseTime         *float64 `toml:"max-response-time"`
	InitialStability        *float64 `toml:"initial-stability"`
	StabilityGrowthBase     *float64 `toml:"stability-growth-base"`
	StabilityDecayOnWrong   *float64 `toml:"stability-decay-on-wrong"`
	RecallThreshold         *float64 `toml:"recall-threshold"`
	ExpansionThreshold      *float64 `toml:"expansion-threshold"`
	AutomaticityThreshold   *float64 `toml:"automaticity-threshold"`
}

// Apply returns a copy of cfg with every non-nil patch field merged in.
func (p ConfigPatch) Apply(cfg Config) Config {
	merge := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}
	merge(&cfg.UnseenBoost, p.UnseenBoost)
	merge(&cfg.MinTime, p.MinTime)
	merge(&cfg.AutomaticityTarget, p.AutomaticityTarget)
	merge(&cfg.SelfCorrectionThreshold, p.SelfCorrectionThreshold)
	merge(&cfg.SelfCorrectionMultiple, p.SelfCorrectionMultiple)
	merge(&cfg.MaxResponseTime, p.MaxResponseTime)
	merge(&cfg.InitialStability, p.InitialStability)
	merge(&cfg.StabilityGrowthBase, p.StabilityGrowthBase)
	merge(&cfg.StabilityDecayOnWrong, p.StabilityDecayOnWrong)
	merge(&cfg.RecallThreshold, p.RecallThreshold)
	merge(&cfg.ExpansionThreshold, p.ExpansionThreshold)
	merge(&cfg.AutomaticityThreshold, p.AutomaticityThreshold)
	return cfg
}

// TimingPatch returns a patch that only carries the baseline-derived fields of cfg.
func TimingPatch(cfg Config) ConfigPatch {
	minTime := cfg.MinTime
	target := cfg.AutomaticityTarget
	selfCorrection := cfg.SelfCorrectionThreshold
	maxResponse := cfg.MaxResponseTime
	return ConfigPatch{
		MinTime:                 &minTime,
		AutomaticityTarget:      &target,
		SelfCorrectionThreshold: &selfCorrection,
		MaxResponseTime:         &maxResponse,
	}
}
