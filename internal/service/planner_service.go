package service

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Ciriera/capstone-planner/internal/dto"
	"github.com/Ciriera/capstone-planner/internal/models"
	"github.com/Ciriera/capstone-planner/pkg/config"
	appErrors "github.com/Ciriera/capstone-planner/pkg/errors"
)

// PlannerService owns one problem instance and runs the full pipeline:
// construct, search, repair, score. One service handles one problem; the
// core is single-threaded and keeps all tracking structures private to the
// instance.
type PlannerService struct {
	cfg       *config.Config
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *MetricsService

	problem     *problem
	constraints *ConstraintValidator
	scorer      *ObjectiveScorer
	selector    *instructorSelector
	repair      *RepairEngine
}

// NewPlannerService wires planner dependencies.
func NewPlannerService(cfg *config.Config, validate *validator.Validate, logger *zap.Logger, metrics *MetricsService) *PlannerService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = NewMetricsService()
	}
	return &PlannerService{
		cfg:       cfg,
		validator: validate,
		logger:    logger,
		metrics:   metrics,
	}
}

// Initialize loads the problem instance. All four lists must be non-empty.
func (s *PlannerService) Initialize(req dto.ProblemRequest) error {
	if len(req.Projects) == 0 || len(req.Instructors) == 0 || len(req.Classrooms) == 0 || len(req.Timeslots) == 0 {
		return appErrors.Clone(appErrors.ErrDataInsufficient, "")
	}
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid problem payload")
	}

	s.problem = newProblem(req)
	s.constraints = newConstraintValidator(s.problem)
	s.scorer = newObjectiveScorer(s.problem, s.cfg.Weights, s.cfg.Planner)
	s.selector = newInstructorSelector(s.problem, s.logger)
	s.repair = newRepairEngine(s.problem, s.selector, s.cfg.Planner, s.logger)

	s.logger.Info("problem instance loaded",
		zap.Int("projects", len(req.Projects)),
		zap.Int("instructors", len(req.Instructors)),
		zap.Int("classrooms", len(req.Classrooms)),
		zap.Int("timeslots", len(req.Timeslots)))
	return nil
}

// Optimize runs the pipeline and always returns a result envelope: failures
// degrade to a repaired seed schedule or to a StatusError payload, never to
// a raised error.
func (s *PlannerService) Optimize(ctx context.Context, req dto.OptimizeRequest) (result *dto.OptimizeResult) {
	started := time.Now()
	algorithm := req.Algorithm
	if algorithm == "" {
		algorithm = s.cfg.Planner.Algorithm
	}

	result = &dto.OptimizeResult{
		Status:    dto.StatusCompleted,
		RunID:     uuid.NewString(),
		Algorithm: algorithm,
		Schedule:  []models.Assignment{},
	}

	defer func() {
		if recovered := recover(); recovered != nil {
			s.logger.Error("optimization panicked", zap.Any("panic", recovered))
			result.Status = dto.StatusError
			result.Message = fmt.Sprintf("optimization failed: %v", recovered)
			result.Schedule = []models.Assignment{}
		}
		result.ExecutionTime = time.Since(started).Seconds()
		s.metrics.ObserveRun(algorithm, result.Status, result.ExecutionTime, result.Metrics.Scores.Overall)
	}()

	if s.problem == nil {
		result.Status = dto.StatusError
		result.Message = appErrors.ErrNotInitialized.Message
		return result
	}
	if err := s.validator.Struct(req); err != nil {
		result.Status = dto.StatusError
		result.Message = appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid optimize payload").Error()
		return result
	}

	seed := req.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	timeout := s.cfg.Planner.Timeout
	if req.TimeoutSeconds > 0 {
		timeout = time.Duration(req.TimeoutSeconds * float64(time.Second))
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	construction := newConstructionHeuristic(s.problem, s.selector, s.cfg.Planner, s.logger, rng)
	initial := construction.Build()
	s.logger.Debug("construction finished",
		zap.Int("assignments", len(initial)),
		zap.String("algorithm", algorithm))

	optimizer, err := newOptimizer(algorithm, optimizerDeps{
		problem:  s.problem,
		scorer:   s.scorer,
		repair:   s.repair,
		selector: s.selector,
		cfg:      s.cfg,
		logger:   s.logger,
		rng:      rng,
	})
	if err != nil {
		result.Status = dto.StatusError
		result.Message = err.Error()
		return result
	}

	schedule, iterations, err := optimizer.Optimize(runCtx, initial)
	if err != nil {
		// Degraded but present: hand back the repaired seed solution.
		s.logger.Warn("optimizer failed, returning repaired seed", zap.Error(err))
		schedule = s.repair.RepairAll(initial)
		result.Message = fmt.Sprintf("optimizer degraded to seed solution: %v", err)
	}

	result.Schedule = schedule
	result.Metrics = s.buildMetrics(schedule, iterations)
	s.logger.Info("optimization completed",
		zap.String("run_id", result.RunID),
		zap.String("algorithm", algorithm),
		zap.Float64("overall", result.Metrics.Scores.Overall),
		zap.Int("assigned", result.Metrics.AssignedProjects),
		zap.Int("total", result.Metrics.TotalProjects))
	return result
}

// EvaluateFitness exposes the scorer's combined value for external
// comparison between candidate solutions.
func (s *PlannerService) EvaluateFitness(assignments []models.Assignment) float64 {
	if s.scorer == nil {
		return 0
	}
	return s.scorer.Score(assignments).Overall
}

// Validate exposes the constraint validator.
func (s *PlannerService) Validate(assignments []models.Assignment) dto.ValidationReport {
	if s.constraints == nil {
		return dto.ValidationReport{Violations: []dto.Violation{}, GapViolations: []dto.Violation{}}
	}
	return s.constraints.Validate(assignments)
}

// RepairSolution restores feasibility of an externally produced candidate,
// guided by the validation report the caller already holds.
func (s *PlannerService) RepairSolution(assignments []models.Assignment, report dto.ValidationReport) []models.Assignment {
	if s.repair == nil {
		return assignments
	}
	if report.IsFeasible && len(report.GapViolations) == 0 {
		return s.repair.RepairCoverage(assignments, nil)
	}
	return s.repair.RepairAll(assignments)
}

func (s *PlannerService) buildMetrics(schedule []models.Assignment, iterations int) dto.ScheduleMetrics {
	report := s.constraints.Validate(schedule)
	return dto.ScheduleMetrics{
		Scores:           s.scorer.Score(schedule),
		AssignedProjects: len(schedule),
		TotalProjects:    len(s.problem.projects),
		HardViolations:   len(report.Violations),
		GapViolations:    len(report.GapViolations),
		Iterations:       iterations,
	}
}
