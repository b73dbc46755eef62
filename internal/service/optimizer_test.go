package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ciriera/capstone-planner/internal/dto"
	"github.com/Ciriera/capstone-planner/internal/models"
	appErrors "github.com/Ciriera/capstone-planner/pkg/errors"
)

func TestNewOptimizerRegistry(t *testing.T) {
	planner := newPlannerFixture(t, dto.ProblemRequest{
		Projects:    []models.Project{araProject(1, 1)},
		Instructors: []models.Instructor{faculty(1)},
		Classrooms:  makeClassrooms(1),
		Timeslots:   makeTimeslots(2),
	})
	deps := depsFixture(planner, 1)

	for _, name := range []string{AlgorithmGenetic, AlgorithmSimplex, AlgorithmSwarm} {
		optimizer, err := newOptimizer(name, deps)
		require.NoError(t, err)
		assert.Equal(t, name, optimizer.Name())
	}

	_, err := newOptimizer("annealing", deps)
	require.Error(t, err)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrUnknownAlgorithm.Code, appErr.Code)
}

func TestPlacementRankPrefersEarlyMorningCells(t *testing.T) {
	planner := newPlannerFixture(t, dto.ProblemRequest{
		Projects:    []models.Project{araProject(1, 1)},
		Instructors: []models.Instructor{faculty(1)},
		Classrooms:  makeClassrooms(2),
		Timeslots:   makeTimeslots(8),
	})

	rank := placementRank(planner.problem, planner.cfg.Planner)

	// Earlier beats later, morning beats afternoon, low room id breaks ties.
	assert.Greater(t, rank(1, 1), rank(1, 2))
	assert.Greater(t, rank(1, 3), rank(1, 4))
	assert.Greater(t, rank(1, 1), rank(2, 1))

	// The 16:00 slot carries the graded penalty, the 16:30 slot the hard one.
	assert.Greater(t, rank(1, 6), rank(1, 7))
	assert.Less(t, rank(1, 8), 0.0)
}
