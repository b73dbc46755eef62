package service

import (
	"math"
	"sort"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"

	"github.com/Ciriera/capstone-planner/internal/dto"
	"github.com/Ciriera/capstone-planner/internal/models"
	"github.com/Ciriera/capstone-planner/pkg/config"
)

// ObjectiveScorer computes the five weighted sub-scores and the combined
// fitness for a candidate solution. It is a pure computation over the
// assignment list plus the static problem tables.
type ObjectiveScorer struct {
	problem *problem
	weights config.WeightsConfig

	// strict enables the institutional late-session pricing: any session at
	// or after cutoffTime zeroes time efficiency, use of the last pre-cutoff
	// slot is penalised proportionally.
	strict       bool
	cutoffTime   string
	lastSlotTime string
}

func newObjectiveScorer(p *problem, weights config.WeightsConfig, planner config.PlannerConfig) *ObjectiveScorer {
	return &ObjectiveScorer{
		problem:      p,
		weights:      weights,
		cutoffTime:   planner.CutoffTime,
		lastSlotTime: planner.LastSlotTime,
	}
}

// WithStrictTime returns a copy of the scorer that applies the cutoff-time
// penalties. Used by the simplex and swarm variants.
func (s *ObjectiveScorer) WithStrictTime() *ObjectiveScorer {
	clone := *s
	clone.strict = true
	return &clone
}

// Score returns all sub-scores plus the weighted overall fitness.
func (s *ObjectiveScorer) Score(assignments []models.Assignment) dto.ScoreBreakdown {
	if len(assignments) == 0 {
		return dto.ScoreBreakdown{}
	}

	breakdown := dto.ScoreBreakdown{
		LoadBalance:      s.loadBalance(assignments),
		ClassroomChanges: s.classroomChanges(assignments),
		TimeEfficiency:   s.timeEfficiency(assignments),
		SlotMinimization: s.slotMinimization(assignments),
		RuleCompliance:   s.ruleCompliance(assignments),
	}
	breakdown.Overall = breakdown.LoadBalance*s.weights.LoadBalance +
		breakdown.ClassroomChanges*s.weights.ClassroomChanges +
		breakdown.TimeEfficiency*s.weights.TimeEfficiency +
		breakdown.SlotMinimization*s.weights.SlotMinimization +
		breakdown.RuleCompliance*s.weights.RuleCompliance
	return breakdown
}

// loadBalance scores the spread of panel appearances across instructors:
// 100*(1 - stddev/mean), floored at zero.
func (s *ObjectiveScorer) loadBalance(assignments []models.Assignment) float64 {
	counts := make(map[int]int)
	for _, a := range assignments {
		for _, instructorID := range a.Instructors {
			counts[instructorID]++
		}
	}
	if len(counts) == 0 {
		return 0
	}
	if len(counts) == 1 {
		return 100
	}

	loads := lo.Map(lo.Values(counts), func(c int, _ int) float64 { return float64(c) })
	mean := stat.Mean(loads, nil)
	if mean == 0 {
		return 0
	}
	deviation := stat.StdDev(loads, nil)
	return math.Max(0, 100*(1-deviation/mean))
}

// classroomChanges counts, per instructor, adjacent-pair classroom switches
// along their timeslot-ordered appearances.
func (s *ObjectiveScorer) classroomChanges(assignments []models.Assignment) float64 {
	type visit struct {
		order       int
		classroomID int
	}
	visits := make(map[int][]visit)
	for _, a := range assignments {
		order, ok := s.problem.slotOrder[a.TimeslotID]
		if !ok {
			continue
		}
		for _, instructorID := range a.Instructors {
			visits[instructorID] = append(visits[instructorID], visit{order: order, classroomID: a.ClassroomID})
		}
	}

	switches := 0
	for _, sequence := range visits {
		sort.Slice(sequence, func(i, j int) bool { return sequence[i].order < sequence[j].order })
		for i := 0; i+1 < len(sequence); i++ {
			if sequence[i].classroomID != sequence[i+1].classroomID {
				switches++
			}
		}
	}
	return math.Max(0, 100-100*float64(switches)/float64(len(assignments)))
}

// timeEfficiency prices gap-freeness: each hole in an instructor's slot
// sequence costs 20 points. Strict mode adds the late-session rules.
func (s *ObjectiveScorer) timeEfficiency(assignments []models.Assignment) float64 {
	gaps := 0
	for _, sequence := range s.problem.instructorSlotOrders(assignments) {
		for i := 0; i+1 < len(sequence); i++ {
			if sequence[i+1]-sequence[i] > 1 {
				gaps++
			}
		}
	}
	score := math.Max(0, 100-20*float64(gaps))

	if !s.strict {
		return score
	}

	lastSlotUse := 0
	for _, a := range assignments {
		if s.problem.slotStartsAtOrAfter(a.TimeslotID, s.cutoffTime) {
			return 0
		}
		slot, ok := s.problem.slotByID[a.TimeslotID]
		if ok && slot.StartTime == s.lastSlotTime {
			lastSlotUse++
		}
	}
	penalty := 40 * float64(lastSlotUse) / float64(len(assignments))
	return math.Max(0, score-penalty)
}

// slotMinimization rewards concentrating the schedule into few distinct
// timeslots.
func (s *ObjectiveScorer) slotMinimization(assignments []models.Assignment) float64 {
	if len(s.problem.timeslots) == 0 {
		return 0
	}
	used := lo.Uniq(lo.Map(assignments, func(a models.Assignment, _ int) int { return a.TimeslotID }))
	ratio := float64(len(used)) / float64(len(s.problem.timeslots))
	return math.Max(0, 100-50*ratio)
}

// ruleCompliance is the fraction of assignments meeting their panel minimum,
// scaled to 100.
func (s *ObjectiveScorer) ruleCompliance(assignments []models.Assignment) float64 {
	compliant := 0
	for _, a := range assignments {
		project, ok := s.problem.projectByID[a.ProjectID]
		if !ok {
			continue
		}
		if len(a.Instructors) >= project.Type.MinInstructors() {
			compliant++
		}
	}
	return 100 * float64(compliant) / float64(len(assignments))
}
