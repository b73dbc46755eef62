package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)

	assert.InDelta(t, 0.25, cfg.Weights.LoadBalance, 1e-9)
	assert.InDelta(t, 0.25, cfg.Weights.ClassroomChanges, 1e-9)
	assert.InDelta(t, 0.20, cfg.Weights.TimeEfficiency, 1e-9)
	assert.InDelta(t, 0.15, cfg.Weights.SlotMinimization, 1e-9)
	assert.InDelta(t, 0.15, cfg.Weights.RuleCompliance, 1e-9)

	assert.Equal(t, "genetic", cfg.Planner.Algorithm)
	assert.Equal(t, "16:30", cfg.Planner.CutoffTime)
	assert.Equal(t, "16:00", cfg.Planner.LastSlotTime)
	assert.Equal(t, 20, cfg.Planner.ClassroomCapacity)
	assert.Equal(t, 30*time.Second, cfg.Planner.Timeout)

	assert.Equal(t, 40, cfg.Genetic.PopulationSize)
	assert.Equal(t, 120, cfg.Genetic.Generations)
	assert.Equal(t, "tournament", cfg.Genetic.Selection)

	assert.InDelta(t, 1e-6, cfg.Simplex.Tolerance, 1e-12)
	assert.Equal(t, 2, cfg.Simplex.LoadCapSlack)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("PLANNER_ALGORITHM", "swarm")
	t.Setenv("GENETIC_POPULATION_SIZE", "12")
	t.Setenv("PLANNER_TIMEOUT", "2m")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "swarm", cfg.Planner.Algorithm)
	assert.Equal(t, 12, cfg.Genetic.PopulationSize)
	assert.Equal(t, 2*time.Minute, cfg.Planner.Timeout)
}

func TestParseDurationFallback(t *testing.T) {
	assert.Equal(t, 30*time.Second, parseDuration("", 30*time.Second))
	assert.Equal(t, 30*time.Second, parseDuration("nonsense", 30*time.Second))
	assert.Equal(t, 45*time.Second, parseDuration("45s", time.Second))
}
