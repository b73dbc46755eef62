package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env string

	Log     LogConfig
	Weights WeightsConfig
	Planner PlannerConfig
	Genetic GeneticConfig
	Simplex SimplexConfig
}

type LogConfig struct {
	Level  string
	Format string
}

// WeightsConfig holds the objective weights applied by the scorer.
// Defaults follow the institutional weighting: load balance and classroom
// stability dominate, time efficiency next, slot usage and rule compliance
// share the rest.
type WeightsConfig struct {
	LoadBalance      float64
	ClassroomChanges float64
	TimeEfficiency   float64
	SlotMinimization float64
	RuleCompliance   float64
}

// PlannerConfig governs construction and repair behaviour shared by all
// algorithms.
type PlannerConfig struct {
	Algorithm         string
	CutoffTime        string
	LastSlotTime      string
	ClassroomCapacity int
	ShufflePasses     int
	RepairIterations  int
	Timeout           time.Duration
}

// GeneticConfig tunes the genetic + local search hybrid.
type GeneticConfig struct {
	PopulationSize int
	Generations    int
	CrossoverRate  float64
	MutationRate   float64
	ElitismCount   int
	Selection      string
	Crossover      string
}

// SimplexConfig tunes the LP relaxation variant.
type SimplexConfig struct {
	Tolerance    float64
	LoadCapSlack int
	MorningBonus float64
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing .env is fine; defaults and process env cover everything.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Weights = WeightsConfig{
		LoadBalance:      v.GetFloat64("WEIGHT_LOAD_BALANCE"),
		ClassroomChanges: v.GetFloat64("WEIGHT_CLASSROOM_CHANGES"),
		TimeEfficiency:   v.GetFloat64("WEIGHT_TIME_EFFICIENCY"),
		SlotMinimization: v.GetFloat64("WEIGHT_SLOT_MINIMIZATION"),
		RuleCompliance:   v.GetFloat64("WEIGHT_RULE_COMPLIANCE"),
	}

	cfg.Planner = PlannerConfig{
		Algorithm:         v.GetString("PLANNER_ALGORITHM"),
		CutoffTime:        v.GetString("PLANNER_CUTOFF_TIME"),
		LastSlotTime:      v.GetString("PLANNER_LAST_SLOT_TIME"),
		ClassroomCapacity: v.GetInt("PLANNER_CLASSROOM_CAPACITY"),
		ShufflePasses:     v.GetInt("PLANNER_SHUFFLE_PASSES"),
		RepairIterations:  v.GetInt("PLANNER_REPAIR_ITERATIONS"),
		Timeout:           parseDuration(v.GetString("PLANNER_TIMEOUT"), 30*time.Second),
	}

	cfg.Genetic = GeneticConfig{
		PopulationSize: v.GetInt("GENETIC_POPULATION_SIZE"),
		Generations:    v.GetInt("GENETIC_GENERATIONS"),
		CrossoverRate:  v.GetFloat64("GENETIC_CROSSOVER_RATE"),
		MutationRate:   v.GetFloat64("GENETIC_MUTATION_RATE"),
		ElitismCount:   v.GetInt("GENETIC_ELITISM_COUNT"),
		Selection:      v.GetString("GENETIC_SELECTION"),
		Crossover:      v.GetString("GENETIC_CROSSOVER"),
	}

	cfg.Simplex = SimplexConfig{
		Tolerance:    v.GetFloat64("SIMPLEX_TOLERANCE"),
		LoadCapSlack: v.GetInt("SIMPLEX_LOAD_CAP_SLACK"),
		MorningBonus: v.GetFloat64("SIMPLEX_MORNING_BONUS"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("WEIGHT_LOAD_BALANCE", 0.25)
	v.SetDefault("WEIGHT_CLASSROOM_CHANGES", 0.25)
	v.SetDefault("WEIGHT_TIME_EFFICIENCY", 0.20)
	v.SetDefault("WEIGHT_SLOT_MINIMIZATION", 0.15)
	v.SetDefault("WEIGHT_RULE_COMPLIANCE", 0.15)

	v.SetDefault("PLANNER_ALGORITHM", "genetic")
	v.SetDefault("PLANNER_CUTOFF_TIME", "16:30")
	v.SetDefault("PLANNER_LAST_SLOT_TIME", "16:00")
	v.SetDefault("PLANNER_CLASSROOM_CAPACITY", 20)
	v.SetDefault("PLANNER_SHUFFLE_PASSES", 3)
	v.SetDefault("PLANNER_REPAIR_ITERATIONS", 12)
	v.SetDefault("PLANNER_TIMEOUT", "30s")

	v.SetDefault("GENETIC_POPULATION_SIZE", 40)
	v.SetDefault("GENETIC_GENERATIONS", 120)
	v.SetDefault("GENETIC_CROSSOVER_RATE", 0.85)
	v.SetDefault("GENETIC_MUTATION_RATE", 0.15)
	v.SetDefault("GENETIC_ELITISM_COUNT", 2)
	v.SetDefault("GENETIC_SELECTION", "tournament")
	v.SetDefault("GENETIC_CROSSOVER", "single")

	v.SetDefault("SIMPLEX_TOLERANCE", 1e-6)
	v.SetDefault("SIMPLEX_LOAD_CAP_SLACK", 2)
	v.SetDefault("SIMPLEX_MORNING_BONUS", 5.0)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}
