package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/Ciriera/capstone-planner/internal/models"
	"github.com/Ciriera/capstone-planner/pkg/config"
)

// swarmOptimizer is the shared shape of the nature-inspired variants: it
// works on a single consecutive-grouping solution and applies the canonical
// four-stage repair until the score stops improving: deduplicate by
// placement quality, compact gaps, fill coverage into the best-ranked free
// cell, then enforce the hard time cutoff. The best-seen solution is kept.
type swarmOptimizer struct {
	deps optimizerDeps
}

func newSwarmOptimizer(deps optimizerDeps) *swarmOptimizer {
	return &swarmOptimizer{deps: deps}
}

func (o *swarmOptimizer) Name() string { return AlgorithmSwarm }

func (o *swarmOptimizer) Optimize(ctx context.Context, seed []models.Assignment) ([]models.Assignment, int, error) {
	scorer := o.deps.scorer.WithStrictTime()
	rank := placementRank(o.deps.problem, o.deps.cfg.Planner)
	better := func(kept, candidate models.Assignment) bool {
		return rank(candidate.ClassroomID, candidate.TimeslotID) > rank(kept.ClassroomID, kept.TimeslotID)
	}

	best := models.CloneSchedule(seed)
	bestScore := scorer.Score(best).Overall

	current := models.CloneSchedule(seed)
	maxPasses := o.deps.cfg.Planner.RepairIterations
	if maxPasses <= 0 {
		maxPasses = 12
	}

	passes := 0
	for ; passes < maxPasses; passes++ {
		if ctx.Err() != nil {
			break
		}

		current = o.deps.repair.RepairDuplicates(current, better)
		current = o.deps.repair.RepairGaps(current)
		current = o.deps.repair.RepairCoverage(current, rank)
		current = o.deps.repair.RepairConstraints(current)

		score := scorer.Score(current).Overall
		if score > bestScore {
			best = models.CloneSchedule(current)
			bestScore = score
			continue
		}
		break
	}

	o.deps.logger.Debug("swarm repair finished",
		zap.Int("passes", passes),
		zap.Float64("best_score", bestScore))
	return best, passes, nil
}

// placementRank scores a (classroom, timeslot) cell for the repair
// heuristics: morning sessions and earlier slots are preferred, and lower
// classroom ids win ties the way the alphabetical room ordering did on the
// printed schedules.
func placementRank(p *problem, cfg config.PlannerConfig) func(classroomID, timeslotID int) float64 {
	return func(classroomID, timeslotID int) float64 {
		slot, ok := p.slotByID[timeslotID]
		if !ok {
			return 0
		}

		score := 100 - float64(slot.OrderIndex)
		if slot.IsMorning {
			score += 25
		}
		if cfg.CutoffTime != "" && slot.StartTime >= cfg.CutoffTime {
			score -= 1000
		}
		if slot.StartTime == cfg.LastSlotTime {
			score -= 15
		}
		return score - float64(classroomID)*0.01
	}
}

var _ Optimizer = (*swarmOptimizer)(nil)
