// Package calibration derives the motor baseline from tap samples.
package calibration

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/verte-zerg/fretdrill/internal/adaptive"
)

// MinSamples is the fewest taps accepted, including the warm-up tap.
const MinSamples = 5

// DefaultTrials is the number of taps the calibration screen asks for.
const DefaultTrials = 10

var ErrTooFewSamples = errors.New("calibration: too few samples")

// Baseline drops the first (warm-up) sample and returns the median of the rest.
// Negative samples are rejected.
func Baseline(samples []time.Duration) (time.Duration, error) {
	if len(samples) < MinSamples {
		return 0, fmt.Errorf("%w: got %d, need %d", ErrTooFewSamples, len(samples), MinSamples)
	}
	rest := append([]time.Duration(nil), samples[1:]...)
	for _, s := range rest {
		if s < 0 {
			return 0, fmt.Errorf("calibration: negative sample %s", s)
		}
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i] < rest[j] })
	mid := len(rest) / 2
	if len(rest)%2 == 1 {
		return rest[mid], nil
	}
	return (rest[mid-1] + rest[mid]) / 2, nil
}

// Config returns the engine defaults with every timing threshold scaled to baseline.
func Config(baseline time.Duration) adaptive.Config {
	return adaptive.ScaledConfig(baseline)
}

// Patch returns the timing-only overrides for baseline, for Selector.UpdateConfig.
func Patch(baseline time.Duration) adaptive.ConfigPatch {
	return adaptive.TimingPatch(Config(baseline))
}
