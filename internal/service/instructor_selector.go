package service

import (
	"sort"

	"go.uber.org/zap"

	"github.com/Ciriera/capstone-planner/internal/models"
)

// instructorSelector is the shared panel-selection subroutine: responsible
// first, then the jury the project type demands.
type instructorSelector struct {
	problem *problem
	logger  *zap.Logger
}

func newInstructorSelector(p *problem, logger *zap.Logger) *instructorSelector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &instructorSelector{problem: p, logger: logger}
}

// SelectPanel determines the instructor list for placing the project in the
// given timeslot. An empty result signals "cannot place here": either the
// responsible is unknown or a final project found no eligible jury.
func (s *instructorSelector) SelectPanel(project models.Project, timeslotID int, busy busyMap) []int {
	if _, known := s.problem.instructorByID[project.ResponsibleID]; !known {
		s.logger.Warn("project has no known responsible instructor",
			zap.Int("project_id", project.ID),
			zap.Int("responsible_id", project.ResponsibleID))
		return nil
	}

	panel := []int{project.ResponsibleID}
	if project.Type != models.ProjectTypeBitirme {
		return panel
	}

	jury := s.juryCandidates(project.ResponsibleID, timeslotID, busy)
	if len(jury) == 0 {
		s.logger.Warn("no eligible jury for final project",
			zap.Int("project_id", project.ID),
			zap.Int("timeslot_id", timeslotID))
		return nil
	}
	return append(panel, jury[0])
}

// juryCandidates lists instructors eligible to sit on a jury in the slot,
// faculty before assistants, lighter load first.
func (s *instructorSelector) juryCandidates(responsibleID, timeslotID int, busy busyMap) []int {
	var candidates []*models.Instructor
	for _, instructor := range s.problem.instructorByID {
		if instructor.ID == responsibleID {
			continue
		}
		if busy.IsBusy(instructor.ID, timeslotID) {
			continue
		}
		candidates = append(candidates, instructor)
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if (a.Category == models.CategoryInstructor) != (b.Category == models.CategoryInstructor) {
			return a.Category == models.CategoryInstructor
		}
		if a.TotalLoad != b.TotalLoad {
			return a.TotalLoad < b.TotalLoad
		}
		return a.ID < b.ID
	})

	ids := make([]int, 0, len(candidates))
	for _, candidate := range candidates {
		ids = append(ids, candidate.ID)
	}
	return ids
}

// accrueLoad bumps the instructor's counters as assignments accumulate.
func (s *instructorSelector) accrueLoad(instructorID int, projectType models.ProjectType) {
	instructor, ok := s.problem.instructorByID[instructorID]
	if !ok {
		return
	}
	switch projectType {
	case models.ProjectTypeBitirme:
		instructor.BitirmeCount++
	case models.ProjectTypeAra:
		instructor.AraCount++
	}
	instructor.TotalLoad++
}
