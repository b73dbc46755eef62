package service

import (
	"context"
	"sort"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/Ciriera/capstone-planner/internal/models"
)

// maxSimplexVariables caps the LP size; beyond it the dense tableau is not
// worth building and the greedy fallback takes over directly.
const maxSimplexVariables = 20000

// simplexOptimizer formulates the assignment as a binary program over
// x[project, classroom, timeslot], relaxes it to a linear program, solves
// with the simplex method and thresholds the continuous solution back to a
// discrete schedule. Solver failure falls back to a scored greedy
// construction; either way the result passes through gap-free
// post-processing.
type simplexOptimizer struct {
	deps optimizerDeps
}

func newSimplexOptimizer(deps optimizerDeps) *simplexOptimizer {
	return &simplexOptimizer{deps: deps}
}

func (o *simplexOptimizer) Name() string { return AlgorithmSimplex }

func (o *simplexOptimizer) Optimize(ctx context.Context, seed []models.Assignment) ([]models.Assignment, int, error) {
	p := o.deps.problem
	variables := len(p.projects) * len(p.classrooms) * len(p.timeslots)
	if variables == 0 || variables > maxSimplexVariables {
		o.deps.logger.Warn("lp formulation skipped, using greedy fallback",
			zap.Int("variables", variables))
		return o.greedyFallback(), 1, nil
	}

	schedule, err := o.solveRelaxation()
	if err != nil {
		o.deps.logger.Warn("lp solver failed, using greedy fallback", zap.Error(err))
		return o.greedyFallback(), 1, nil
	}

	schedule = o.deps.repair.RepairGaps(schedule)
	schedule = o.deps.repair.RepairCoverage(schedule, nil)
	schedule = o.deps.repair.RepairConstraints(schedule)

	if len(schedule) == 0 && len(seed) > 0 {
		return o.deps.repair.RepairAll(seed), 1, nil
	}
	return schedule, 1, nil
}

// variableIndex flattens (project, classroom, timeslot) positions.
func (o *simplexOptimizer) variableIndex(projectPos, roomPos, slotPos int) int {
	p := o.deps.problem
	return projectPos*len(p.classrooms)*len(p.timeslots) + roomPos*len(p.timeslots) + slotPos
}

// solveRelaxation assembles the standard-form program, runs simplex and
// recovers assignments from variables above the 0.5 threshold.
func (o *simplexOptimizer) solveRelaxation() ([]models.Assignment, error) {
	p := o.deps.problem
	cfg := o.deps.cfg

	nProjects := len(p.projects)
	nRooms := len(p.classrooms)
	nSlots := len(p.timeslots)
	decisionVars := nProjects * nRooms * nSlots

	// Responsible instructors, in a stable order, for the per-slot
	// no-double-booking rows and the load-cap rows.
	responsibleProjects := make(map[int][]int)
	for projectPos, project := range p.projects {
		responsibleProjects[project.ResponsibleID] = append(responsibleProjects[project.ResponsibleID], projectPos)
	}
	responsibleIDs := make([]int, 0, len(responsibleProjects))
	for id := range responsibleProjects {
		responsibleIDs = append(responsibleIDs, id)
	}
	sort.Ints(responsibleIDs)

	coverageRows := nProjects
	cellRows := nRooms * nSlots
	instructorRows := len(responsibleIDs) * nSlots
	loadCapRows := len(responsibleIDs)
	capacityRows := nRooms
	rows := coverageRows + cellRows + instructorRows + loadCapRows + capacityRows
	slackVars := cellRows + instructorRows + loadCapRows + capacityRows
	cols := decisionVars + slackVars

	objective := make([]float64, cols)
	for projectPos := range p.projects {
		for roomPos := range p.classrooms {
			for slotPos, slot := range p.timeslots {
				// Simplex minimises, so preferred cells get the more
				// negative coefficient.
				value := float64(nSlots-p.slotOrder[slot.ID]) * cfg.Weights.TimeEfficiency
				value += float64(nRooms-roomPos) * 0.1 * cfg.Weights.ClassroomChanges
				if slot.IsMorning {
					value += cfg.Simplex.MorningBonus
				}
				if slot.StartTime == cfg.Planner.LastSlotTime {
					value -= 10
				}
				if cfg.Planner.CutoffTime != "" && slot.StartTime >= cfg.Planner.CutoffTime {
					value -= 1000
				}
				objective[o.variableIndex(projectPos, roomPos, slotPos)] = -value
			}
		}
	}

	a := mat.NewDense(rows, cols, nil)
	b := make([]float64, rows)
	row := 0
	slack := decisionVars

	// Every project is assigned exactly once.
	for projectPos := 0; projectPos < nProjects; projectPos++ {
		for roomPos := 0; roomPos < nRooms; roomPos++ {
			for slotPos := 0; slotPos < nSlots; slotPos++ {
				a.Set(row, o.variableIndex(projectPos, roomPos, slotPos), 1)
			}
		}
		b[row] = 1
		row++
	}

	// Every (classroom, timeslot) cell hosts at most one project.
	for roomPos := 0; roomPos < nRooms; roomPos++ {
		for slotPos := 0; slotPos < nSlots; slotPos++ {
			for projectPos := 0; projectPos < nProjects; projectPos++ {
				a.Set(row, o.variableIndex(projectPos, roomPos, slotPos), 1)
			}
			a.Set(row, slack, 1)
			b[row] = 1
			row++
			slack++
		}
	}

	// A responsible instructor defends at most one project per timeslot.
	for _, responsibleID := range responsibleIDs {
		for slotPos := 0; slotPos < nSlots; slotPos++ {
			for _, projectPos := range responsibleProjects[responsibleID] {
				for roomPos := 0; roomPos < nRooms; roomPos++ {
					a.Set(row, o.variableIndex(projectPos, roomPos, slotPos), 1)
				}
			}
			a.Set(row, slack, 1)
			b[row] = 1
			row++
			slack++
		}
	}

	// Per-instructor load cap keeps any one person from absorbing the
	// whole schedule.
	loadCap := nProjects/len(p.instructors) + 1 + cfg.Simplex.LoadCapSlack
	for _, responsibleID := range responsibleIDs {
		for _, projectPos := range responsibleProjects[responsibleID] {
			for roomPos := 0; roomPos < nRooms; roomPos++ {
				for slotPos := 0; slotPos < nSlots; slotPos++ {
					a.Set(row, o.variableIndex(projectPos, roomPos, slotPos), 1)
				}
			}
		}
		a.Set(row, slack, 1)
		b[row] = float64(loadCap)
		row++
		slack++
	}

	// Aggregate per-classroom usage stays under its soft capacity.
	for roomPos, room := range p.classrooms {
		for projectPos := 0; projectPos < nProjects; projectPos++ {
			for slotPos := 0; slotPos < nSlots; slotPos++ {
				a.Set(row, o.variableIndex(projectPos, roomPos, slotPos), 1)
			}
		}
		a.Set(row, slack, 1)
		b[row] = float64(p.classroomByID[room.ID].Capacity)
		row++
		slack++
	}

	_, solution, err := lp.Simplex(objective, a, b, cfg.Simplex.Tolerance, nil)
	if err != nil {
		return nil, err
	}

	return o.thresholdSolution(solution), nil
}

// thresholdSolution converts the continuous relaxation into assignments:
// any x over 0.5 is selected, in timeslot order, with panels drawn through
// the shared selector.
func (o *simplexOptimizer) thresholdSolution(solution []float64) []models.Assignment {
	p := o.deps.problem

	type pick struct {
		project models.Project
		roomID  int
		slotID  int
		order   int
	}
	var picks []pick
	for projectPos, project := range p.projects {
		for roomPos, room := range p.classrooms {
			for slotPos, slot := range p.timeslots {
				if solution[o.variableIndex(projectPos, roomPos, slotPos)] <= 0.5 {
					continue
				}
				picks = append(picks, pick{
					project: project,
					roomID:  room.ID,
					slotID:  slot.ID,
					order:   p.slotOrder[slot.ID],
				})
			}
		}
	}
	sort.Slice(picks, func(i, j int) bool { return picks[i].order < picks[j].order })

	busy := make(busyMap)
	schedule := make([]models.Assignment, 0, len(picks))
	for _, candidate := range picks {
		panel := o.deps.selector.SelectPanel(candidate.project, candidate.slotID, busy)
		if len(panel) == 0 {
			continue
		}
		schedule = append(schedule, models.Assignment{
			ProjectID:   candidate.project.ID,
			ClassroomID: candidate.roomID,
			TimeslotID:  candidate.slotID,
			Instructors: panel,
			IsMakeup:    candidate.project.IsMakeup,
		})
		for _, instructorID := range panel {
			busy.Book(instructorID, candidate.slotID)
		}
	}
	return schedule
}

// greedyFallback builds a scored-greedy schedule from scratch: coverage
// repair over an empty solution ranked by the shared placement heuristic,
// then compaction and cutoff enforcement.
func (o *simplexOptimizer) greedyFallback() []models.Assignment {
	schedule := o.deps.repair.RepairCoverage(nil, placementRank(o.deps.problem, o.deps.cfg.Planner))
	schedule = o.deps.repair.RepairGaps(schedule)
	return o.deps.repair.RepairConstraints(schedule)
}

var _ Optimizer = (*simplexOptimizer)(nil)
