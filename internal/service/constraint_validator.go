package service

import (
	"fmt"
	"sort"

	"github.com/samber/lo"

	"github.com/Ciriera/capstone-planner/internal/dto"
	"github.com/Ciriera/capstone-planner/internal/models"
)

// ConstraintValidator is a stateless checker of hard-rule violations over a
// candidate assignment set. It never fails: every problem is reported as
// data, not as an error.
type ConstraintValidator struct {
	problem *problem
}

func newConstraintValidator(p *problem) *ConstraintValidator {
	return &ConstraintValidator{problem: p}
}

// Validate inspects the candidate solution and returns the structured
// verdict. Hard violations (slot, instructor, rule) decide feasibility;
// gap violations are listed apart and priced by the scorer instead.
func (v *ConstraintValidator) Validate(assignments []models.Assignment) dto.ValidationReport {
	report := dto.ValidationReport{
		Violations:    []dto.Violation{},
		GapViolations: []dto.Violation{},
	}

	report.Violations = append(report.Violations, v.slotConflicts(assignments)...)
	report.Violations = append(report.Violations, v.instructorConflicts(assignments)...)
	report.Violations = append(report.Violations, v.ruleViolations(assignments)...)
	report.GapViolations = v.gapViolations(assignments)

	report.IsFeasible = len(report.Violations) == 0
	return report
}

// slotConflicts flags every (classroom, timeslot) cell hosting more than one
// assignment, naming all colliding projects in a single violation.
func (v *ConstraintValidator) slotConflicts(assignments []models.Assignment) []dto.Violation {
	grouped := lo.GroupBy(assignments, func(a models.Assignment) slotKey {
		return slotKey{ClassroomID: a.ClassroomID, TimeslotID: a.TimeslotID}
	})

	keys := lo.Keys(grouped)
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].ClassroomID == keys[j].ClassroomID {
			return keys[i].TimeslotID < keys[j].TimeslotID
		}
		return keys[i].ClassroomID < keys[j].ClassroomID
	})

	var violations []dto.Violation
	for _, key := range keys {
		group := grouped[key]
		if len(group) < 2 {
			continue
		}
		projectIDs := lo.Map(group, func(a models.Assignment, _ int) int { return a.ProjectID })
		sort.Ints(projectIDs)
		violations = append(violations, dto.Violation{
			Type:        dto.ViolationSlotConflict,
			Message:     fmt.Sprintf("classroom %d timeslot %d hosts projects %v", key.ClassroomID, key.TimeslotID, projectIDs),
			ProjectIDs:  projectIDs,
			ClassroomID: key.ClassroomID,
			TimeslotID:  key.TimeslotID,
		})
	}
	return violations
}

// instructorConflicts flags a person appearing in two assignments sharing a
// timeslot, whether as responsible or jury.
func (v *ConstraintValidator) instructorConflicts(assignments []models.Assignment) []dto.Violation {
	appearances := make(map[int]map[int][]int) // timeslot -> instructor -> projects
	for _, a := range assignments {
		if appearances[a.TimeslotID] == nil {
			appearances[a.TimeslotID] = make(map[int][]int)
		}
		for _, instructorID := range a.Instructors {
			appearances[a.TimeslotID][instructorID] = append(appearances[a.TimeslotID][instructorID], a.ProjectID)
		}
	}

	timeslotIDs := lo.Keys(appearances)
	sort.Ints(timeslotIDs)

	var violations []dto.Violation
	for _, timeslotID := range timeslotIDs {
		instructorIDs := lo.Keys(appearances[timeslotID])
		sort.Ints(instructorIDs)
		for _, instructorID := range instructorIDs {
			projectIDs := appearances[timeslotID][instructorID]
			if len(projectIDs) < 2 {
				continue
			}
			sort.Ints(projectIDs)
			violations = append(violations, dto.Violation{
				Type:         dto.ViolationInstructorConflict,
				Message:      fmt.Sprintf("instructor %d double-booked in timeslot %d across projects %v", instructorID, timeslotID, projectIDs),
				ProjectIDs:   projectIDs,
				InstructorID: instructorID,
				TimeslotID:   timeslotID,
			})
		}
	}
	return violations
}

// ruleViolations checks panel composition: minimum instructor count per
// project type and a responsible id duplicated inside its own jury.
func (v *ConstraintValidator) ruleViolations(assignments []models.Assignment) []dto.Violation {
	var violations []dto.Violation
	for _, a := range assignments {
		project, known := v.problem.projectByID[a.ProjectID]
		if !known {
			violations = append(violations, dto.Violation{
				Type:       dto.ViolationRule,
				Message:    fmt.Sprintf("assignment references unknown project %d", a.ProjectID),
				ProjectIDs: []int{a.ProjectID},
			})
			continue
		}

		for _, instructorID := range a.Instructors {
			if _, known := v.problem.instructorByID[instructorID]; known {
				continue
			}
			violations = append(violations, dto.Violation{
				Type:         dto.ViolationRule,
				Message:      fmt.Sprintf("project %d lists unknown instructor %d", a.ProjectID, instructorID),
				ProjectIDs:   []int{a.ProjectID},
				InstructorID: instructorID,
				TimeslotID:   a.TimeslotID,
			})
		}

		required := project.Type.MinInstructors()
		if len(a.Instructors) < required {
			violations = append(violations, dto.Violation{
				Type:       dto.ViolationRule,
				Message:    fmt.Sprintf("project %d (%s) has %d instructors, needs at least %d", a.ProjectID, project.Type, len(a.Instructors), required),
				ProjectIDs: []int{a.ProjectID},
				TimeslotID: a.TimeslotID,
			})
		}

		if len(a.Instructors) > 1 {
			for _, juryID := range a.Instructors[1:] {
				if juryID != a.ResponsibleID() {
					continue
				}
				violations = append(violations, dto.Violation{
					Type:         dto.ViolationRule,
					Message:      fmt.Sprintf("project %d lists responsible %d in its own jury", a.ProjectID, juryID),
					ProjectIDs:   []int{a.ProjectID},
					InstructorID: juryID,
					TimeslotID:   a.TimeslotID,
				})
				break
			}
		}
	}
	return violations
}

// gapViolations reports, per instructor, every hole in their sequence of
// timeslot order indices.
func (v *ConstraintValidator) gapViolations(assignments []models.Assignment) []dto.Violation {
	orders := v.problem.instructorSlotOrders(assignments)

	instructorIDs := lo.Keys(orders)
	sort.Ints(instructorIDs)

	var violations []dto.Violation
	for _, instructorID := range instructorIDs {
		sequence := orders[instructorID]
		for i := 0; i+1 < len(sequence); i++ {
			if sequence[i+1]-sequence[i] <= 1 {
				continue
			}
			violations = append(violations, dto.Violation{
				Type:         dto.ViolationGap,
				Message:      fmt.Sprintf("instructor %d idles between slot orders %d and %d", instructorID, sequence[i], sequence[i+1]),
				InstructorID: instructorID,
			})
		}
	}
	return violations
}
