package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ciriera/capstone-planner/internal/dto"
	"github.com/Ciriera/capstone-planner/internal/models"
)

func repairFixture(t *testing.T) *PlannerService {
	t.Helper()
	return newPlannerFixture(t, dto.ProblemRequest{
		Projects: []models.Project{
			araProject(1, 1), araProject(2, 1), araProject(3, 2),
		},
		Instructors: []models.Instructor{faculty(1), faculty(2), faculty(3)},
		Classrooms:  makeClassrooms(2),
		Timeslots:   makeTimeslots(6),
	})
}

func TestRepairDuplicatesKeepsEarliestOccurrence(t *testing.T) {
	planner := repairFixture(t)

	schedule := []models.Assignment{
		{ProjectID: 1, ClassroomID: 1, TimeslotID: 3, Instructors: []int{1}},
		{ProjectID: 2, ClassroomID: 1, TimeslotID: 2, Instructors: []int{1}},
		{ProjectID: 1, ClassroomID: 2, TimeslotID: 1, Instructors: []int{1}},
	}

	repaired := planner.repair.RepairDuplicates(schedule, nil)
	require.Len(t, repaired, 2)
	// First-seen order is preserved, the earlier occurrence wins.
	assert.Equal(t, 1, repaired[0].ProjectID)
	assert.Equal(t, 1, repaired[0].TimeslotID)
	assert.Equal(t, 2, repaired[1].ProjectID)

	assert.Equal(t, repaired, planner.repair.RepairDuplicates(repaired, nil))
}

func TestRepairGapsCompactsClassroom(t *testing.T) {
	planner := repairFixture(t)

	// Instructor 1 sits idle at slot order 1 between its two sessions.
	schedule := []models.Assignment{
		{ProjectID: 1, ClassroomID: 1, TimeslotID: 1, Instructors: []int{1}},
		{ProjectID: 2, ClassroomID: 1, TimeslotID: 4, Instructors: []int{1}},
	}

	repaired := planner.repair.RepairGaps(schedule)
	require.Len(t, repaired, 2)
	assert.Equal(t, 1, repaired[0].TimeslotID)
	assert.Equal(t, 2, repaired[1].TimeslotID)

	report := planner.Validate(repaired)
	assert.Empty(t, report.GapViolations)
}

func TestRepairGapsLeavesBlockedMoves(t *testing.T) {
	planner := repairFixture(t)

	// The hole at slot 2 in room 1 cannot be closed: instructor 1 already
	// works room 2 in that slot.
	schedule := []models.Assignment{
		{ProjectID: 1, ClassroomID: 1, TimeslotID: 1, Instructors: []int{1}},
		{ProjectID: 3, ClassroomID: 2, TimeslotID: 2, Instructors: []int{1}},
		{ProjectID: 2, ClassroomID: 1, TimeslotID: 4, Instructors: []int{1}},
	}

	repaired := planner.repair.RepairGaps(schedule)
	for _, a := range repaired {
		if a.ProjectID == 2 {
			assert.NotEqual(t, 2, a.TimeslotID)
		}
	}
}

func TestRepairCoverageInsertsMissingProjects(t *testing.T) {
	planner := repairFixture(t)

	schedule := []models.Assignment{
		{ProjectID: 1, ClassroomID: 1, TimeslotID: 1, Instructors: []int{1}},
	}

	repaired := planner.repair.RepairCoverage(schedule, nil)
	require.Len(t, repaired, 3)

	covered := make(map[int]bool)
	for _, a := range repaired {
		covered[a.ProjectID] = true
	}
	assert.True(t, covered[2])
	assert.True(t, covered[3])

	report := planner.Validate(repaired)
	assert.True(t, report.IsFeasible)
}

func TestRepairConstraintsDropsPostCutoff(t *testing.T) {
	planner := newPlannerFixture(t, dto.ProblemRequest{
		Projects:    []models.Project{araProject(1, 1), araProject(2, 2)},
		Instructors: []models.Instructor{faculty(1), faculty(2)},
		Classrooms:  makeClassrooms(1),
		Timeslots:   makeTimeslots(8),
	})

	// Timeslot 8 starts at the 16:30 cutoff. Its occupant is dropped, and a
	// coverage pass reinserts it into a pre-cutoff cell.
	schedule := []models.Assignment{
		{ProjectID: 1, ClassroomID: 1, TimeslotID: 1, Instructors: []int{1}},
		{ProjectID: 2, ClassroomID: 1, TimeslotID: 8, Instructors: []int{2}},
	}

	repaired := planner.repair.RepairConstraints(schedule)
	require.Len(t, repaired, 1)
	assert.Equal(t, 1, repaired[0].ProjectID)

	restored := planner.repair.RepairCoverage(repaired, nil)
	require.Len(t, restored, 2)
	for _, a := range restored {
		order := planner.problem.slotOrder[a.TimeslotID]
		assert.Less(t, order, 7)
	}
}

func TestRepairConstraintsRelocatesDoubleBookings(t *testing.T) {
	planner := repairFixture(t)

	// Two projects collide in room 1 slot 1; the loser moves to a free cell
	// with a fresh panel instead of being dropped.
	schedule := []models.Assignment{
		{ProjectID: 1, ClassroomID: 1, TimeslotID: 1, Instructors: []int{1}},
		{ProjectID: 3, ClassroomID: 1, TimeslotID: 1, Instructors: []int{2}},
	}

	repaired := planner.repair.RepairConstraints(schedule)
	require.Len(t, repaired, 2)

	report := planner.Validate(repaired)
	assert.True(t, report.IsFeasible)
}

func TestRepairAllProducesFeasibleFullCoverage(t *testing.T) {
	planner := repairFixture(t)

	// A thoroughly broken candidate: duplicate project, a slot conflict and a
	// missing project.
	schedule := []models.Assignment{
		{ProjectID: 1, ClassroomID: 1, TimeslotID: 1, Instructors: []int{1}},
		{ProjectID: 1, ClassroomID: 2, TimeslotID: 2, Instructors: []int{1}},
		{ProjectID: 2, ClassroomID: 1, TimeslotID: 1, Instructors: []int{1}},
	}

	repaired := planner.repair.RepairAll(schedule)
	require.Len(t, repaired, 3)

	report := planner.Validate(repaired)
	assert.True(t, report.IsFeasible)
}
