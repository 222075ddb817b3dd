package adaptive

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestScaledConfigRatios(t *testing.T) {
	cfg := ScaledConfig(400 * time.Millisecond)
	assert.Equal(t, 400.0, cfg.MinTime)
	assert.Equal(t, 1200.0, cfg.AutomaticityTarget)
	assert.Equal(t, 600.0, cfg.SelfCorrectionThreshold)
	assert.Equal(t, 3600.0, cfg.MaxResponseTime)
	assert.Equal(t, DefaultConfig().InitialStability, cfg.InitialStability)
}

func TestWithBaselineFallsBackToDefault(t *testing.T) {
	assert.Equal(t, DefaultConfig(), DefaultConfig().WithBaseline(0))
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "zero boost", mutate: func(c *Config) { c.UnseenBoost = 0 }},
		{name: "zero min time", mutate: func(c *Config) { c.MinTime = 0 }},
		{name: "shrinking growth", mutate: func(c *Config) { c.StabilityGrowthBase = 0.9 }},
		{name: "decay above one", mutate: func(c *Config) { c.StabilityDecayOnWrong = 1.1 }},
		{name: "zero initial stability", mutate: func(c *Config) { c.InitialStability = 0 }},
		{name: "recall threshold above one", mutate: func(c *Config) { c.RecallThreshold = 2 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestConfigPatchApply(t *testing.T) {
	boost := 7.0
	threshold := 0.6
	cfg := ConfigPatch{UnseenBoost: &boost, ExpansionThreshold: &threshold}.Apply(DefaultConfig())

	assert.Equal(t, 7.0, cfg.UnseenBoost)
	assert.Equal(t, 0.6, cfg.ExpansionThreshold)
	assert.Equal(t, DefaultConfig().MinTime, cfg.MinTime)

	assert.Equal(t, DefaultConfig(), ConfigPatch{}.Apply(DefaultConfig()))
}
