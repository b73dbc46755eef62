package service

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Ciriera/capstone-planner/internal/dto"
	"github.com/Ciriera/capstone-planner/internal/models"
	"github.com/Ciriera/capstone-planner/pkg/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Env: config.EnvDevelopment,
		Weights: config.WeightsConfig{
			LoadBalance:      0.25,
			ClassroomChanges: 0.25,
			TimeEfficiency:   0.20,
			SlotMinimization: 0.15,
			RuleCompliance:   0.15,
		},
		Planner: config.PlannerConfig{
			Algorithm:         AlgorithmGenetic,
			CutoffTime:        "16:30",
			LastSlotTime:      "16:00",
			ClassroomCapacity: 20,
			ShufflePasses:     3,
			RepairIterations:  12,
			Timeout:           5 * time.Second,
		},
		Genetic: config.GeneticConfig{
			PopulationSize: 8,
			Generations:    15,
			CrossoverRate:  0.8,
			MutationRate:   0.3,
			ElitismCount:   2,
			Selection:      "tournament",
			Crossover:      "single",
		},
		Simplex: config.SimplexConfig{
			Tolerance:    1e-6,
			LoadCapSlack: 2,
			MorningBonus: 5,
		},
	}
}

var (
	slotStarts = []string{"09:00", "10:00", "11:00", "13:00", "14:00", "15:00", "16:00", "16:30"}
	slotEnds   = []string{"09:50", "10:50", "11:50", "13:50", "14:50", "15:50", "16:50", "17:20"}
)

func makeTimeslots(n int) []models.TimeSlot {
	slots := make([]models.TimeSlot, 0, n)
	for i := 0; i < n && i < len(slotStarts); i++ {
		slots = append(slots, models.TimeSlot{
			ID:         i + 1,
			StartTime:  slotStarts[i],
			EndTime:    slotEnds[i],
			IsMorning:  slotStarts[i] < "12:00",
			OrderIndex: i,
		})
	}
	return slots
}

func makeClassrooms(n int) []models.Classroom {
	rooms := make([]models.Classroom, 0, n)
	for i := 0; i < n; i++ {
		rooms = append(rooms, models.Classroom{ID: i + 1, Capacity: 20})
	}
	return rooms
}

func faculty(id int) models.Instructor {
	return models.Instructor{ID: id, Category: models.CategoryInstructor}
}

func assistant(id int) models.Instructor {
	return models.Instructor{ID: id, Category: models.CategoryAssistant}
}

func araProject(id, responsibleID int) models.Project {
	return models.Project{ID: id, Type: models.ProjectTypeAra, ResponsibleID: responsibleID}
}

func bitirmeProject(id, responsibleID int) models.Project {
	return models.Project{ID: id, Type: models.ProjectTypeBitirme, ResponsibleID: responsibleID}
}

func newPlannerFixture(t *testing.T, req dto.ProblemRequest) *PlannerService {
	t.Helper()
	planner := NewPlannerService(testConfig(), nil, zap.NewNop(), nil)
	require.NoError(t, planner.Initialize(req))
	return planner
}

func newConstructionFixture(t *testing.T, req dto.ProblemRequest, seed int64) (*PlannerService, *constructionHeuristic) {
	t.Helper()
	planner := newPlannerFixture(t, req)
	heuristic := newConstructionHeuristic(planner.problem, planner.selector, planner.cfg.Planner, zap.NewNop(), rand.New(rand.NewSource(seed)))
	return planner, heuristic
}

func depsFixture(planner *PlannerService, seed int64) optimizerDeps {
	return optimizerDeps{
		problem:  planner.problem,
		scorer:   planner.scorer,
		repair:   planner.repair,
		selector: planner.selector,
		cfg:      planner.cfg,
		logger:   zap.NewNop(),
		rng:      rand.New(rand.NewSource(seed)),
	}
}

func violationsOfType(violations []dto.Violation, kind string) []dto.Violation {
	var result []dto.Violation
	for _, v := range violations {
		if v.Type == kind {
			result = append(result, v)
		}
	}
	return result
}
