package adaptive

import (
	"math"
	"time"

	"github.com/verte-zerg/fretdrill/internal/model"
)

const (
	// selfCorrectionScale is applied to the gap since the last correct answer
	// when an overdue item is still answered quickly.
	selfCorrectionScale = 1.5
	// maxSpeedBonus is the extra growth granted to an instant answer.
	maxSpeedBonus = 0.5
)

// Recall returns the predicted retention of an item: 2^(-elapsedHours/stability).
// Items that were never answered correctly have recall 0.
func Recall(stats model.ItemStats, now time.Time) float64 {
	if stats.Stability == nil || stats.LastCorrectAt == nil {
		return 0
	}
	stability := *stats.Stability
	if stability <= 0 {
		return 0
	}
	elapsed := hoursBetween(*stats.LastCorrectAt, now)
	return math.Exp2(-elapsed / stability)
}

// SpeedScore maps a smoothed response time to [0, 1].
// It is 1 at or below the automaticity target and halves for every further
// target-length of delay.
func SpeedScore(ewma float64, cfg Config) float64 {
	target := cfg.AutomaticityTarget
	if target <= 0 || ewma <= target {
		return 1
	}
	return math.Exp2(-(ewma - target) / target)
}

// ApplyCorrect returns stats updated for a correct answer given at now.
// responseMs must already be clamped.
func ApplyCorrect(stats model.ItemStats, responseMs float64, now time.Time, cfg Config) model.ItemStats {
	out := stats.Clone()
	next := cfg.InitialStability
	if out.Stability != nil {
		prev := *out.Stability
		next = math.Max(prev*cfg.StabilityGrowthBase*speedFactor(responseMs, cfg), prev)
		if out.LastCorrectAt != nil {
			elapsed := hoursBetween(*out.LastCorrectAt, now)
			if elapsed > prev*cfg.SelfCorrectionMultiple && responseMs <= cfg.SelfCorrectionThreshold {
				next = math.Max(next, elapsed*selfCorrectionScale)
			}
		}
	}
	next = math.Max(next, cfg.InitialStability)
	at := now
	out.Stability = &next
	out.LastCorrectAt = &at
	return out
}

// ApplyWrong returns stats updated for an incorrect answer.
// LastCorrectAt is untouched and a nil stability stays nil.
func ApplyWrong(stats model.ItemStats, cfg Config) model.ItemStats {
	out := stats.Clone()
	if out.Stability == nil {
		return out
	}
	next := math.Max(*out.Stability*(1-cfg.StabilityDecayOnWrong), cfg.InitialStability)
	out.Stability = &next
	return out
}

// speedFactor is 1 at or above the automaticity target and rises linearly to
// 1+maxSpeedBonus for an instant answer.
func speedFactor(responseMs float64, cfg Config) float64 {
	target := cfg.AutomaticityTarget
	if target <= 0 || responseMs >= target {
		return 1
	}
	ratio := math.Max(responseMs, 0) / target
	return 1 + maxSpeedBonus*(1-ratio)
}

func hoursBetween(from, to time.Time) float64 {
	elapsed := to.Sub(from).Hours()
	if elapsed < 0 {
		return 0
	}
	return elapsed
}
