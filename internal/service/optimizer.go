package service

import (
	"context"
	"math/rand"

	"go.uber.org/zap"

	"github.com/Ciriera/capstone-planner/internal/models"
	"github.com/Ciriera/capstone-planner/pkg/config"
	appErrors "github.com/Ciriera/capstone-planner/pkg/errors"
)

// Algorithm names accepted by the registry.
const (
	AlgorithmGenetic = "genetic"
	AlgorithmSimplex = "simplex"
	AlgorithmSwarm   = "swarm"
)

// Optimizer takes a seed solution and iteratively improves it. Every
// implementation keeps candidates legal through the repair engine and ranks
// them with the objective scorer; the best-seen solution is retained across
// iterations. Implementations honour ctx deadlines between iterations.
type Optimizer interface {
	Name() string
	Optimize(ctx context.Context, seed []models.Assignment) ([]models.Assignment, int, error)
}

// optimizerDeps bundles the collaborators shared by all variants.
type optimizerDeps struct {
	problem  *problem
	scorer   *ObjectiveScorer
	repair   *RepairEngine
	selector *instructorSelector
	cfg      *config.Config
	logger   *zap.Logger
	rng      *rand.Rand
}

func newOptimizer(name string, deps optimizerDeps) (Optimizer, error) {
	switch name {
	case AlgorithmGenetic:
		return newGeneticOptimizer(deps), nil
	case AlgorithmSimplex:
		return newSimplexOptimizer(deps), nil
	case AlgorithmSwarm:
		return newSwarmOptimizer(deps), nil
	default:
		return nil, appErrors.Clone(appErrors.ErrUnknownAlgorithm, "unknown optimization algorithm: "+name)
	}
}
