package dto

import "github.com/Ciriera/capstone-planner/internal/models"

// ProblemRequest carries the full problem instance handed to the planner.
type ProblemRequest struct {
	Projects    []models.Project    `json:"projects" validate:"required,min=1"`
	Instructors []models.Instructor `json:"instructors" validate:"required,min=1"`
	Classrooms  []models.Classroom  `json:"classrooms" validate:"required,min=1"`
	Timeslots   []models.TimeSlot   `json:"timeslots" validate:"required,min=1"`
}

// OptimizeRequest selects the algorithm and its runtime budget.
type OptimizeRequest struct {
	Algorithm      string  `json:"algorithm" validate:"omitempty,oneof=genetic simplex swarm"`
	TimeoutSeconds float64 `json:"timeoutSeconds" validate:"omitempty,gt=0"`
	Seed           int64   `json:"seed"`
}

// Violation kinds reported by the constraint validator.
const (
	ViolationSlotConflict       = "slot_conflict"
	ViolationInstructorConflict = "instructor_conflict"
	ViolationRule               = "rule_violation"
	ViolationGap                = "gap_violation"
)

// Violation names one hard-rule breach inside a candidate solution.
type Violation struct {
	Type         string `json:"type"`
	Message      string `json:"message"`
	ProjectIDs   []int  `json:"projectIds,omitempty"`
	InstructorID int    `json:"instructorId,omitempty"`
	ClassroomID  int    `json:"classroomId,omitempty"`
	TimeslotID   int    `json:"timeslotId,omitempty"`
}

// ValidationReport is the validator's structured verdict. Gap violations are
// soft and listed apart from the hard ones.
type ValidationReport struct {
	IsFeasible    bool        `json:"isFeasible"`
	Violations    []Violation `json:"violations"`
	GapViolations []Violation `json:"gapViolations"`
}

// ScoreBreakdown exposes the five weighted sub-scores plus the combined
// fitness, each in [0,100].
type ScoreBreakdown struct {
	LoadBalance      float64 `json:"loadBalance"`
	ClassroomChanges float64 `json:"classroomChanges"`
	TimeEfficiency   float64 `json:"timeEfficiency"`
	SlotMinimization float64 `json:"slotMinimization"`
	RuleCompliance   float64 `json:"ruleCompliance"`
	Overall          float64 `json:"overall"`
}

// ScheduleMetrics summarises an optimization run.
type ScheduleMetrics struct {
	Scores           ScoreBreakdown `json:"scores"`
	AssignedProjects int            `json:"assignedProjects"`
	TotalProjects    int            `json:"totalProjects"`
	HardViolations   int            `json:"hardViolations"`
	GapViolations    int            `json:"gapViolations"`
	Iterations       int            `json:"iterations"`
}

// Optimization result statuses.
const (
	StatusCompleted = "completed"
	StatusError     = "error"
)

// OptimizeResult is the envelope returned to the caller. Optimize never
// raises; failures surface as StatusError with a message.
type OptimizeResult struct {
	Status        string              `json:"status"`
	RunID         string              `json:"runId"`
	Algorithm     string              `json:"algorithm"`
	Schedule      []models.Assignment `json:"schedule"`
	Metrics       ScheduleMetrics     `json:"metrics"`
	ExecutionTime float64             `json:"executionTime"`
	Message       string              `json:"message,omitempty"`
}
