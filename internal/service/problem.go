package service

import (
	"sort"

	"github.com/Ciriera/capstone-planner/internal/dto"
	"github.com/Ciriera/capstone-planner/internal/models"
)

// problem is the read-only view of one scheduling instance plus the index
// maps every component shares. One problem instance belongs to exactly one
// PlannerService; nothing here is safe for concurrent mutation.
type problem struct {
	projects    []models.Project
	instructors []models.Instructor
	classrooms  []models.Classroom
	timeslots   []models.TimeSlot

	projectByID    map[int]models.Project
	instructorByID map[int]*models.Instructor
	classroomByID  map[int]models.Classroom
	slotByID       map[int]models.TimeSlot
	slotOrder      map[int]int

	// orderedSlots is sorted by start time; ties fall back to the order
	// index so the sequence stays a stable total order.
	orderedSlots []models.TimeSlot
}

func newProblem(req dto.ProblemRequest) *problem {
	p := &problem{
		projects:       req.Projects,
		classrooms:     req.Classrooms,
		timeslots:      req.Timeslots,
		projectByID:    make(map[int]models.Project, len(req.Projects)),
		instructorByID: make(map[int]*models.Instructor, len(req.Instructors)),
		classroomByID:  make(map[int]models.Classroom, len(req.Classrooms)),
		slotByID:       make(map[int]models.TimeSlot, len(req.Timeslots)),
		slotOrder:      make(map[int]int, len(req.Timeslots)),
	}

	p.instructors = make([]models.Instructor, len(req.Instructors))
	copy(p.instructors, req.Instructors)

	for _, project := range p.projects {
		p.projectByID[project.ID] = project
	}
	for i := range p.instructors {
		p.instructorByID[p.instructors[i].ID] = &p.instructors[i]
	}
	for _, room := range p.classrooms {
		if room.Capacity <= 0 {
			room.Capacity = 20
		}
		p.classroomByID[room.ID] = room
	}
	for _, slot := range p.timeslots {
		p.slotByID[slot.ID] = slot
		p.slotOrder[slot.ID] = slot.OrderIndex
	}

	p.orderedSlots = make([]models.TimeSlot, len(p.timeslots))
	copy(p.orderedSlots, p.timeslots)
	sort.SliceStable(p.orderedSlots, func(i, j int) bool {
		if p.orderedSlots[i].StartTime == p.orderedSlots[j].StartTime {
			return p.orderedSlots[i].OrderIndex < p.orderedSlots[j].OrderIndex
		}
		return p.orderedSlots[i].StartTime < p.orderedSlots[j].StartTime
	})

	return p
}

// slotKey addresses one (classroom, timeslot) cell.
type slotKey struct {
	ClassroomID int
	TimeslotID  int
}

// busyMap tracks which instructors are booked in which timeslot, counting
// both responsible and jury appearances.
type busyMap map[int]map[int]bool

func (b busyMap) IsBusy(instructorID, timeslotID int) bool {
	return b[instructorID] != nil && b[instructorID][timeslotID]
}

func (b busyMap) Book(instructorID, timeslotID int) {
	if b[instructorID] == nil {
		b[instructorID] = make(map[int]bool)
	}
	b[instructorID][timeslotID] = true
}

func (b busyMap) Release(instructorID, timeslotID int) {
	if b[instructorID] != nil {
		delete(b[instructorID], timeslotID)
	}
}

func busyFromAssignments(assignments []models.Assignment) busyMap {
	busy := make(busyMap)
	for _, a := range assignments {
		for _, instructorID := range a.Instructors {
			busy.Book(instructorID, a.TimeslotID)
		}
	}
	return busy
}

func usedSlotsFromAssignments(assignments []models.Assignment) map[slotKey]bool {
	used := make(map[slotKey]bool, len(assignments))
	for _, a := range assignments {
		used[slotKey{ClassroomID: a.ClassroomID, TimeslotID: a.TimeslotID}] = true
	}
	return used
}

// instructorSlotOrders returns, per instructor, the sorted order indices of
// every timeslot they appear in. Both gap detection and the time-efficiency
// score are built on this view.
func (p *problem) instructorSlotOrders(assignments []models.Assignment) map[int][]int {
	orders := make(map[int]map[int]bool)
	for _, a := range assignments {
		order, ok := p.slotOrder[a.TimeslotID]
		if !ok {
			continue
		}
		for _, instructorID := range a.Instructors {
			if orders[instructorID] == nil {
				orders[instructorID] = make(map[int]bool)
			}
			orders[instructorID][order] = true
		}
	}

	result := make(map[int][]int, len(orders))
	for instructorID, set := range orders {
		list := make([]int, 0, len(set))
		for order := range set {
			list = append(list, order)
		}
		sort.Ints(list)
		result[instructorID] = list
	}
	return result
}

// slotStartsAtOrAfter reports whether the slot begins at or after the given
// "HH:MM" wall-clock boundary.
func (p *problem) slotStartsAtOrAfter(timeslotID int, boundary string) bool {
	slot, ok := p.slotByID[timeslotID]
	if !ok || boundary == "" {
		return false
	}
	return slot.StartTime >= boundary
}
