package service

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ciriera/capstone-planner/internal/dto"
	"github.com/Ciriera/capstone-planner/internal/models"
)

func geneticFixture(t *testing.T) (*PlannerService, []models.Assignment) {
	t.Helper()
	planner := newPlannerFixture(t, dto.ProblemRequest{
		Projects: []models.Project{
			araProject(1, 1), araProject(2, 1),
			bitirmeProject(3, 2), araProject(4, 3),
		},
		Instructors: []models.Instructor{faculty(1), faculty(2), faculty(3)},
		Classrooms:  makeClassrooms(2),
		Timeslots:   makeTimeslots(6),
	})
	construction := newConstructionHeuristic(planner.problem, planner.selector, planner.cfg.Planner, nil, rand.New(rand.NewSource(11)))
	return planner, construction.Build()
}

func TestGeneticOptimizerNeverWorseThanSeed(t *testing.T) {
	planner, seed := geneticFixture(t)
	seedFitness := planner.EvaluateFitness(seed)

	optimizer := newGeneticOptimizer(depsFixture(planner, 11))
	schedule, iterations, err := optimizer.Optimize(context.Background(), seed)
	require.NoError(t, err)
	assert.Equal(t, planner.cfg.Genetic.Generations, iterations)
	assert.GreaterOrEqual(t, planner.EvaluateFitness(schedule), seedFitness-1e-9)
}

func TestGeneticOptimizerProducesFeasibleFullCoverage(t *testing.T) {
	planner := newPlannerFixture(t, dto.ProblemRequest{
		Projects: []models.Project{
			araProject(1, 1), araProject(2, 1),
			araProject(3, 2), araProject(4, 3),
		},
		Instructors: []models.Instructor{faculty(1), faculty(2), faculty(3)},
		Classrooms:  makeClassrooms(2),
		Timeslots:   makeTimeslots(6),
	})
	construction := newConstructionHeuristic(planner.problem, planner.selector, planner.cfg.Planner, nil, rand.New(rand.NewSource(23)))
	seed := construction.Build()

	optimizer := newGeneticOptimizer(depsFixture(planner, 23))
	schedule, _, err := optimizer.Optimize(context.Background(), seed)
	require.NoError(t, err)
	require.Len(t, schedule, len(planner.problem.projects))

	report := planner.Validate(schedule)
	assert.True(t, report.IsFeasible, "violations: %v", report.Violations)
}

func TestGeneticOptimizerStopsOnContextCancel(t *testing.T) {
	planner, seed := geneticFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	optimizer := newGeneticOptimizer(depsFixture(planner, 5))
	schedule, iterations, err := optimizer.Optimize(ctx, seed)
	require.NoError(t, err)
	assert.Zero(t, iterations)
	assert.NotEmpty(t, schedule)
}
