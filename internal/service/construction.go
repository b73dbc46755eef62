package service

import (
	"math/rand"
	"sort"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/Ciriera/capstone-planner/internal/models"
	"github.com/Ciriera/capstone-planner/pkg/config"
)

// constructionHeuristic builds the consecutive-grouping seed solution: each
// instructor's responsible projects land in contiguous blocks of one
// classroom, and physically adjacent instructors become each other's jury.
type constructionHeuristic struct {
	problem  *problem
	selector *instructorSelector
	cfg      config.PlannerConfig
	logger   *zap.Logger
	rng      *rand.Rand
}

func newConstructionHeuristic(p *problem, selector *instructorSelector, cfg config.PlannerConfig, logger *zap.Logger, rng *rand.Rand) *constructionHeuristic {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &constructionHeuristic{problem: p, selector: selector, cfg: cfg, logger: logger, rng: rng}
}

// roomPlacement records the per-classroom placement order feeding the jury
// pairing pass.
type roomPlacement struct {
	instructorID    int
	assignmentIndex int
}

// Build produces the initial, mostly-feasible solution.
func (c *constructionHeuristic) Build() []models.Assignment {
	slots := c.problem.orderedSlots
	groups := lo.GroupBy(c.problem.projects, func(p models.Project) int { return p.ResponsibleID })

	// Shuffle the instructor-group ordering so successive runs explore
	// different load and locality outcomes instead of favouring id order.
	order := lo.Keys(groups)
	sort.Ints(order)
	passes := c.cfg.ShufflePasses
	if passes <= 0 {
		passes = 1
	}
	for i := 0; i < passes; i++ {
		c.rng.Shuffle(len(order), func(a, b int) { order[a], order[b] = order[b], order[a] })
	}

	var assignments []models.Assignment
	used := make(map[slotKey]bool)
	busy := make(busyMap)
	roomSequences := make(map[int][]roomPlacement)

	for _, responsibleID := range order {
		projects := groups[responsibleID]
		if _, known := c.problem.instructorByID[responsibleID]; !known {
			c.logger.Warn("projects reference unknown responsible instructor, leaving unassigned",
				zap.Int("responsible_id", responsibleID),
				zap.Int("projects", len(projects)))
			continue
		}
		currentRoom := 0
		anchored := false

		for _, project := range projects {
			var room, slotID int
			var found bool
			if anchored {
				// Stay in the anchor classroom while it still has free
				// slots; fall back to the global earliest-slot scan only
				// when the room is exhausted.
				slotID, found = c.nextFreeSlotInRoom(currentRoom, responsibleID, slots, used, busy)
				room = currentRoom
			}
			if !found {
				room, slotID, found = c.earliestFreeSlot(responsibleID, slots, used, busy)
			}
			if !found {
				c.logger.Warn("no free slot for project, leaving unassigned",
					zap.Int("project_id", project.ID),
					zap.Int("responsible_id", responsibleID))
				continue
			}

			currentRoom = room
			anchored = true

			assignment := models.Assignment{
				ProjectID:   project.ID,
				ClassroomID: room,
				TimeslotID:  slotID,
				Instructors: []int{responsibleID},
				IsMakeup:    project.IsMakeup,
			}
			assignments = append(assignments, assignment)
			used[slotKey{ClassroomID: room, TimeslotID: slotID}] = true
			busy.Book(responsibleID, slotID)
			c.selector.accrueLoad(responsibleID, project.Type)

			roomSequences[room] = append(roomSequences[room], roomPlacement{
				instructorID:    responsibleID,
				assignmentIndex: len(assignments) - 1,
			})
		}
	}

	c.pairAdjacentJuries(assignments, roomSequences, busy)
	c.completeJuries(assignments, busy)
	return assignments
}

// earliestFreeSlot scans slots in start-time order across every classroom
// and returns the first cell unused globally and free for the instructor.
func (c *constructionHeuristic) earliestFreeSlot(instructorID int, slots []models.TimeSlot, used map[slotKey]bool, busy busyMap) (int, int, bool) {
	for _, slot := range slots {
		if busy.IsBusy(instructorID, slot.ID) {
			continue
		}
		for _, room := range c.problem.classrooms {
			if used[slotKey{ClassroomID: room.ID, TimeslotID: slot.ID}] {
				continue
			}
			return room.ID, slot.ID, true
		}
	}
	return 0, 0, false
}

// nextFreeSlotInRoom finds the earliest slot of one classroom that is both
// unused and free for the instructor.
func (c *constructionHeuristic) nextFreeSlotInRoom(classroomID, instructorID int, slots []models.TimeSlot, used map[slotKey]bool, busy busyMap) (int, bool) {
	for _, slot := range slots {
		if used[slotKey{ClassroomID: classroomID, TimeslotID: slot.ID}] {
			continue
		}
		if busy.IsBusy(instructorID, slot.ID) {
			continue
		}
		return slot.ID, true
	}
	return 0, false
}

// pairAdjacentJuries walks each classroom's placement order and makes every
// adjacent pair of distinct instructors reciprocal jury members on each
// other's projects in that block. Adding someone already on the panel, or
// already booked in the slot, is skipped.
func (c *constructionHeuristic) pairAdjacentJuries(assignments []models.Assignment, roomSequences map[int][]roomPlacement, busy busyMap) {
	roomIDs := lo.Keys(roomSequences)
	sort.Ints(roomIDs)

	for _, roomID := range roomIDs {
		blocks := c.blocksOf(roomSequences[roomID])
		for i := 0; i+1 < len(blocks); i++ {
			left, right := blocks[i], blocks[i+1]
			if left.instructorID == right.instructorID {
				continue
			}
			c.addJuryToBlock(assignments, left.assignmentIndexes, right.instructorID, busy)
			c.addJuryToBlock(assignments, right.assignmentIndexes, left.instructorID, busy)
		}
	}
}

type placementBlock struct {
	instructorID      int
	assignmentIndexes []int
}

// blocksOf compresses a placement sequence into runs of one instructor.
func (c *constructionHeuristic) blocksOf(sequence []roomPlacement) []placementBlock {
	var blocks []placementBlock
	for _, placement := range sequence {
		if n := len(blocks); n > 0 && blocks[n-1].instructorID == placement.instructorID {
			blocks[n-1].assignmentIndexes = append(blocks[n-1].assignmentIndexes, placement.assignmentIndex)
			continue
		}
		blocks = append(blocks, placementBlock{
			instructorID:      placement.instructorID,
			assignmentIndexes: []int{placement.assignmentIndex},
		})
	}
	return blocks
}

func (c *constructionHeuristic) addJuryToBlock(assignments []models.Assignment, indexes []int, juryID int, busy busyMap) {
	for _, index := range indexes {
		assignment := &assignments[index]
		if assignment.HasInstructor(juryID) {
			continue
		}
		if busy.IsBusy(juryID, assignment.TimeslotID) {
			continue
		}
		assignment.Instructors = append(assignment.Instructors, juryID)
		busy.Book(juryID, assignment.TimeslotID)

		if project, ok := c.problem.projectByID[assignment.ProjectID]; ok {
			c.selector.accrueLoad(juryID, project.Type)
		}
	}
}

// completeJuries tops up final projects that the pairing pass left below the
// two-instructor minimum, drawing jury through the shared selector.
func (c *constructionHeuristic) completeJuries(assignments []models.Assignment, busy busyMap) {
	for i := range assignments {
		assignment := &assignments[i]
		project, ok := c.problem.projectByID[assignment.ProjectID]
		if !ok || len(assignment.Instructors) >= project.Type.MinInstructors() {
			continue
		}

		candidates := c.selector.juryCandidates(project.ResponsibleID, assignment.TimeslotID, busy)
		if len(candidates) == 0 {
			c.logger.Warn("final project left without jury",
				zap.Int("project_id", project.ID),
				zap.Int("timeslot_id", assignment.TimeslotID))
			continue
		}
		juryID := candidates[0]
		assignment.Instructors = append(assignment.Instructors, juryID)
		busy.Book(juryID, assignment.TimeslotID)
		c.selector.accrueLoad(juryID, project.Type)
	}
}
