package models

// Assignment binds one project to a classroom, a timeslot and an instructor
// panel. The instructor list is ordered: responsible first, jury after. The
// json tags are the wire contract preserved verbatim by surrounding layers.
type Assignment struct {
	ProjectID   int   `json:"project_id"`
	ClassroomID int   `json:"classroom_id"`
	TimeslotID  int   `json:"timeslot_id"`
	Instructors []int `json:"instructors"`
	IsMakeup    bool  `json:"is_makeup"`
}

// ResponsibleID returns the first instructor or 0 when the panel is empty.
func (a Assignment) ResponsibleID() int {
	if len(a.Instructors) == 0 {
		return 0
	}
	return a.Instructors[0]
}

// HasInstructor reports whether the given instructor sits on the panel.
func (a Assignment) HasInstructor(id int) bool {
	for _, candidate := range a.Instructors {
		if candidate == id {
			return true
		}
	}
	return false
}

// Clone copies the assignment including its panel so mutation operators can
// work on private copies.
func (a Assignment) Clone() Assignment {
	clone := a
	clone.Instructors = make([]int, len(a.Instructors))
	copy(clone.Instructors, a.Instructors)
	return clone
}

// CloneSchedule deep-copies a candidate solution.
func CloneSchedule(assignments []Assignment) []Assignment {
	result := make([]Assignment, 0, len(assignments))
	for _, a := range assignments {
		result = append(result, a.Clone())
	}
	return result
}
