package service

import (
	"sort"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/Ciriera/capstone-planner/internal/models"
	"github.com/Ciriera/capstone-planner/pkg/config"
)

// RepairEngine restores feasibility after mutation. Every pass is total and
// idempotent: it never fails and applying it twice equals applying it once.
type RepairEngine struct {
	problem  *problem
	selector *instructorSelector
	cfg      config.PlannerConfig
	logger   *zap.Logger
}

func newRepairEngine(p *problem, selector *instructorSelector, cfg config.PlannerConfig, logger *zap.Logger) *RepairEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RepairEngine{problem: p, selector: selector, cfg: cfg, logger: logger}
}

// RepairAll chains the four passes in their canonical order.
func (r *RepairEngine) RepairAll(assignments []models.Assignment) []models.Assignment {
	assignments = r.RepairDuplicates(assignments, nil)
	assignments = r.RepairGaps(assignments)
	assignments = r.RepairCoverage(assignments, nil)
	return r.RepairConstraints(assignments)
}

// RepairDuplicates keeps exactly one occurrence per project. The better
// comparator decides which occurrence wins; nil means earliest timeslot.
func (r *RepairEngine) RepairDuplicates(assignments []models.Assignment, better func(kept, candidate models.Assignment) bool) []models.Assignment {
	if better == nil {
		better = func(kept, candidate models.Assignment) bool {
			return r.problem.slotOrder[candidate.TimeslotID] < r.problem.slotOrder[kept.TimeslotID]
		}
	}

	kept := make(map[int]models.Assignment, len(assignments))
	order := make([]int, 0, len(assignments))
	for _, a := range assignments {
		existing, seen := kept[a.ProjectID]
		if !seen {
			kept[a.ProjectID] = a
			order = append(order, a.ProjectID)
			continue
		}
		if better(existing, a) {
			kept[a.ProjectID] = a
		}
	}

	result := make([]models.Assignment, 0, len(kept))
	for _, projectID := range order {
		result = append(result, kept[projectID])
	}
	return result
}

// RepairGaps compacts each classroom's assignments toward its earliest used
// slot. Best-effort: a move happens only when the target cell is free and
// the whole panel is available there, so residual gaps may remain for the
// scorer to price.
func (r *RepairEngine) RepairGaps(assignments []models.Assignment) []models.Assignment {
	result := models.CloneSchedule(assignments)

	maxIterations := r.cfg.RepairIterations
	if maxIterations <= 0 {
		maxIterations = 12
	}

	for iteration := 0; iteration < maxIterations; iteration++ {
		if !r.closeOneGap(result) {
			break
		}
	}
	return result
}

// closeOneGap finds the first classroom hole and pulls the next-later
// assignment into it. Returns false when no move was possible.
func (r *RepairEngine) closeOneGap(assignments []models.Assignment) bool {
	used := usedSlotsFromAssignments(assignments)
	busy := busyFromAssignments(assignments)

	byRoom := lo.GroupBy(lo.Range(len(assignments)), func(i int) int { return assignments[i].ClassroomID })
	roomIDs := lo.Keys(byRoom)
	sort.Ints(roomIDs)

	for _, roomID := range roomIDs {
		indexes := byRoom[roomID]
		sort.Slice(indexes, func(a, b int) bool {
			return r.problem.slotOrder[assignments[indexes[a]].TimeslotID] < r.problem.slotOrder[assignments[indexes[b]].TimeslotID]
		})

		for i := 0; i+1 < len(indexes); i++ {
			current := assignments[indexes[i]]
			next := assignments[indexes[i+1]]
			currentOrder := r.problem.slotOrder[current.TimeslotID]
			nextOrder := r.problem.slotOrder[next.TimeslotID]
			if nextOrder-currentOrder <= 1 {
				continue
			}

			target, ok := r.slotAtOrder(currentOrder + 1)
			if !ok || used[slotKey{ClassroomID: roomID, TimeslotID: target.ID}] {
				continue
			}
			if !r.panelFree(next.Instructors, target.ID, busy) {
				continue
			}

			r.moveAssignment(assignments, indexes[i+1], target.ID)
			return true
		}
	}
	return false
}

func (r *RepairEngine) slotAtOrder(order int) (models.TimeSlot, bool) {
	for _, slot := range r.problem.timeslots {
		if slot.OrderIndex == order {
			return slot, true
		}
	}
	return models.TimeSlot{}, false
}

func (r *RepairEngine) panelFree(panel []int, timeslotID int, busy busyMap) bool {
	for _, instructorID := range panel {
		if busy.IsBusy(instructorID, timeslotID) {
			return false
		}
	}
	return true
}

func (r *RepairEngine) moveAssignment(assignments []models.Assignment, index, targetSlotID int) {
	assignments[index].TimeslotID = targetSlotID
}

// RepairCoverage inserts every project missing from the solution into a free
// (classroom, timeslot) cell with a valid panel. The rank function orders
// candidate cells; nil means first free in slot order.
func (r *RepairEngine) RepairCoverage(assignments []models.Assignment, rank func(classroomID, timeslotID int) float64) []models.Assignment {
	assigned := lo.SliceToMap(assignments, func(a models.Assignment) (int, bool) { return a.ProjectID, true })
	used := usedSlotsFromAssignments(assignments)
	busy := busyFromAssignments(assignments)

	result := models.CloneSchedule(assignments)
	for _, project := range r.problem.projects {
		if assigned[project.ID] {
			continue
		}

		room, slotID, found := r.bestFreeCell(project, used, busy, rank)
		if !found {
			r.logger.Warn("coverage repair found no cell for project",
				zap.Int("project_id", project.ID))
			continue
		}

		panel := r.selector.SelectPanel(project, slotID, busy)
		if len(panel) == 0 {
			r.logger.Warn("coverage repair found no panel for project",
				zap.Int("project_id", project.ID),
				zap.Int("timeslot_id", slotID))
			continue
		}

		result = append(result, models.Assignment{
			ProjectID:   project.ID,
			ClassroomID: room,
			TimeslotID:  slotID,
			Instructors: panel,
			IsMakeup:    project.IsMakeup,
		})
		used[slotKey{ClassroomID: room, TimeslotID: slotID}] = true
		for _, instructorID := range panel {
			busy.Book(instructorID, slotID)
		}
	}
	return result
}

// bestFreeCell scans cells in slot order, skipping cells where the
// responsible is busy, and keeps the highest-ranked free one. With no rank
// function the first free cell wins.
func (r *RepairEngine) bestFreeCell(project models.Project, used map[slotKey]bool, busy busyMap, rank func(classroomID, timeslotID int) float64) (int, int, bool) {
	bestRoom, bestSlot := 0, 0
	bestRank := 0.0
	found := false

	for _, slot := range r.problem.orderedSlots {
		if r.cfg.CutoffTime != "" && slot.StartTime >= r.cfg.CutoffTime {
			continue
		}
		if busy.IsBusy(project.ResponsibleID, slot.ID) {
			continue
		}
		for _, room := range r.problem.classrooms {
			if used[slotKey{ClassroomID: room.ID, TimeslotID: slot.ID}] {
				continue
			}
			if rank == nil {
				return room.ID, slot.ID, true
			}
			score := rank(room.ID, slot.ID)
			if !found || score > bestRank {
				bestRoom, bestSlot, bestRank = room.ID, slot.ID, score
				found = true
			}
		}
	}
	return bestRoom, bestSlot, found
}

// RepairConstraints resolves the remaining hard violations: assignments
// parked at or after the cutoff time are dropped outright, and room or
// instructor double-bookings are relocated to a free cell with a fresh
// panel. Whatever cannot be relocated is dropped.
func (r *RepairEngine) RepairConstraints(assignments []models.Assignment) []models.Assignment {
	ordered := models.CloneSchedule(assignments)
	sort.SliceStable(ordered, func(i, j int) bool {
		return r.problem.slotOrder[ordered[i].TimeslotID] < r.problem.slotOrder[ordered[j].TimeslotID]
	})

	used := make(map[slotKey]bool)
	busy := make(busyMap)
	result := make([]models.Assignment, 0, len(ordered))

	keep := func(a models.Assignment) {
		result = append(result, a)
		used[slotKey{ClassroomID: a.ClassroomID, TimeslotID: a.TimeslotID}] = true
		for _, instructorID := range a.Instructors {
			busy.Book(instructorID, a.TimeslotID)
		}
	}

	for _, a := range ordered {
		if r.cfg.CutoffTime != "" && r.problem.slotStartsAtOrAfter(a.TimeslotID, r.cfg.CutoffTime) {
			r.logger.Debug("dropping assignment past cutoff",
				zap.Int("project_id", a.ProjectID),
				zap.Int("timeslot_id", a.TimeslotID))
			continue
		}
		if !used[slotKey{ClassroomID: a.ClassroomID, TimeslotID: a.TimeslotID}] && r.panelFree(a.Instructors, a.TimeslotID, busy) {
			keep(a)
			continue
		}

		project, known := r.problem.projectByID[a.ProjectID]
		if !known {
			continue
		}
		room, slotID, found := r.bestFreeCell(project, used, busy, nil)
		if !found {
			r.logger.Debug("dropping unrelocatable assignment",
				zap.Int("project_id", a.ProjectID))
			continue
		}
		panel := r.selector.SelectPanel(project, slotID, busy)
		if len(panel) == 0 {
			continue
		}
		keep(models.Assignment{
			ProjectID:   project.ID,
			ClassroomID: room,
			TimeslotID:  slotID,
			Instructors: panel,
			IsMakeup:    project.IsMakeup,
		})
	}
	return result
}
