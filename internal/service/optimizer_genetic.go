package service

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/Ciriera/capstone-planner/internal/models"
)

// geneticOptimizer evolves a population of full assignment lists with
// pluggable selection and crossover strategies, elitism and a repair step
// after every variation. Fitness is the scorer's weighted overall value.
type geneticOptimizer struct {
	deps optimizerDeps
}

func newGeneticOptimizer(deps optimizerDeps) *geneticOptimizer {
	return &geneticOptimizer{deps: deps}
}

func (o *geneticOptimizer) Name() string { return AlgorithmGenetic }

type individual struct {
	schedule []models.Assignment
	fitness  float64
}

func (o *geneticOptimizer) Optimize(ctx context.Context, seed []models.Assignment) ([]models.Assignment, int, error) {
	cfg := o.deps.cfg.Genetic
	populationSize := cfg.PopulationSize
	if populationSize < 4 {
		populationSize = 4
	}
	elitism := cfg.ElitismCount
	if elitism < 1 || elitism >= populationSize {
		elitism = 1
	}

	population := o.initialPopulation(seed, populationSize)
	best := population[0]

	generation := 0
	for ; generation < cfg.Generations; generation++ {
		if ctx.Err() != nil {
			break
		}

		sort.Slice(population, func(i, j int) bool { return population[i].fitness > population[j].fitness })
		if population[0].fitness > best.fitness {
			best = individual{
				schedule: models.CloneSchedule(population[0].schedule),
				fitness:  population[0].fitness,
			}
		}

		next := make([]individual, 0, populationSize)
		for i := 0; i < elitism; i++ {
			next = append(next, individual{
				schedule: models.CloneSchedule(population[i].schedule),
				fitness:  population[i].fitness,
			})
		}

		for len(next) < populationSize {
			parentA := o.selectParent(population)
			parentB := o.selectParent(population)

			child := models.CloneSchedule(parentA.schedule)
			if o.deps.rng.Float64() < cfg.CrossoverRate {
				child = o.crossover(parentA.schedule, parentB.schedule)
			}
			if o.deps.rng.Float64() < cfg.MutationRate {
				o.mutate(child)
			}

			child = o.deps.repair.RepairAll(child)
			next = append(next, individual{schedule: child, fitness: o.deps.scorer.Score(child).Overall})
		}
		population = next
	}

	sort.Slice(population, func(i, j int) bool { return population[i].fitness > population[j].fitness })
	if population[0].fitness > best.fitness {
		best = population[0]
	}

	o.deps.logger.Debug("genetic search finished",
		zap.Int("generations", generation),
		zap.Float64("best_fitness", best.fitness))
	return best.schedule, generation, nil
}

// initialPopulation clones the seed and diversifies all but the first copy
// with a mutation burst.
func (o *geneticOptimizer) initialPopulation(seed []models.Assignment, size int) []individual {
	population := make([]individual, 0, size)
	for i := 0; i < size; i++ {
		schedule := models.CloneSchedule(seed)
		if i > 0 {
			for m := 0; m <= o.deps.rng.Intn(3); m++ {
				o.mutate(schedule)
			}
			schedule = o.deps.repair.RepairAll(schedule)
		}
		population = append(population, individual{schedule: schedule, fitness: o.deps.scorer.Score(schedule).Overall})
	}
	return population
}

// selectParent dispatches on the configured strategy; tournament is the
// default.
func (o *geneticOptimizer) selectParent(population []individual) individual {
	switch o.deps.cfg.Genetic.Selection {
	case "roulette":
		return o.rouletteSelect(population)
	case "rank":
		return o.rankSelect(population)
	default:
		return o.tournamentSelect(population)
	}
}

func (o *geneticOptimizer) tournamentSelect(population []individual) individual {
	const contestants = 3
	best := population[o.deps.rng.Intn(len(population))]
	for i := 1; i < contestants; i++ {
		challenger := population[o.deps.rng.Intn(len(population))]
		if challenger.fitness > best.fitness {
			best = challenger
		}
	}
	return best
}

func (o *geneticOptimizer) rouletteSelect(population []individual) individual {
	total := 0.0
	for _, ind := range population {
		total += ind.fitness
	}
	if total <= 0 {
		return population[o.deps.rng.Intn(len(population))]
	}
	pick := o.deps.rng.Float64() * total
	for _, ind := range population {
		pick -= ind.fitness
		if pick <= 0 {
			return ind
		}
	}
	return population[len(population)-1]
}

// rankSelect weights individuals by position: rank n gets weight n, the
// worst gets 1.
func (o *geneticOptimizer) rankSelect(population []individual) individual {
	ranked := make([]individual, len(population))
	copy(ranked, population)
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].fitness < ranked[j].fitness })

	total := len(ranked) * (len(ranked) + 1) / 2
	pick := o.deps.rng.Intn(total) + 1
	for i := range ranked {
		pick -= i + 1
		if pick <= 0 {
			return ranked[i]
		}
	}
	return ranked[len(ranked)-1]
}

// crossover aligns both parents by project id and splices them with the
// configured scheme.
func (o *geneticOptimizer) crossover(parentA, parentB []models.Assignment) []models.Assignment {
	a := models.CloneSchedule(parentA)
	b := models.CloneSchedule(parentB)
	sort.Slice(a, func(i, j int) bool { return a[i].ProjectID < a[j].ProjectID })
	sort.Slice(b, func(i, j int) bool { return b[i].ProjectID < b[j].ProjectID })

	if len(a) == 0 {
		return b
	}
	if len(b) == 0 {
		return a
	}

	byProject := make(map[int]models.Assignment, len(b))
	for _, assignment := range b {
		byProject[assignment.ProjectID] = assignment
	}

	takeFromB := o.crossoverMask(len(a))
	child := make([]models.Assignment, 0, len(a))
	for i, assignment := range a {
		if takeFromB[i] {
			if other, ok := byProject[assignment.ProjectID]; ok {
				child = append(child, other)
				continue
			}
		}
		child = append(child, assignment)
	}
	return child
}

// crossoverMask marks the positions inherited from the second parent under
// the configured scheme: single point, two point or uniform.
func (o *geneticOptimizer) crossoverMask(length int) []bool {
	mask := make([]bool, length)
	switch o.deps.cfg.Genetic.Crossover {
	case "two_point":
		first := o.deps.rng.Intn(length)
		second := o.deps.rng.Intn(length)
		if first > second {
			first, second = second, first
		}
		for i := first; i <= second; i++ {
			mask[i] = true
		}
	case "uniform":
		for i := range mask {
			mask[i] = o.deps.rng.Float64() < 0.5
		}
	default: // single point
		cut := o.deps.rng.Intn(length)
		for i := cut; i < length; i++ {
			mask[i] = true
		}
	}
	return mask
}

// mutate applies one random move operator in place: swap two assignments'
// cells, relocate one assignment to a random free cell, or flip one
// assignment's classroom within its slot.
func (o *geneticOptimizer) mutate(schedule []models.Assignment) {
	if len(schedule) == 0 {
		return
	}
	switch o.deps.rng.Intn(3) {
	case 0:
		o.mutateSwap(schedule)
	case 1:
		o.mutateRelocate(schedule)
	default:
		o.mutateFlipRoom(schedule)
	}
}

func (o *geneticOptimizer) mutateSwap(schedule []models.Assignment) {
	if len(schedule) < 2 {
		return
	}
	i := o.deps.rng.Intn(len(schedule))
	j := o.deps.rng.Intn(len(schedule))
	schedule[i].ClassroomID, schedule[j].ClassroomID = schedule[j].ClassroomID, schedule[i].ClassroomID
	schedule[i].TimeslotID, schedule[j].TimeslotID = schedule[j].TimeslotID, schedule[i].TimeslotID
}

func (o *geneticOptimizer) mutateRelocate(schedule []models.Assignment) {
	used := usedSlotsFromAssignments(schedule)
	index := o.deps.rng.Intn(len(schedule))

	rooms := o.deps.problem.classrooms
	slots := o.deps.problem.timeslots
	for attempt := 0; attempt < 10; attempt++ {
		room := rooms[o.deps.rng.Intn(len(rooms))]
		slot := slots[o.deps.rng.Intn(len(slots))]
		if used[slotKey{ClassroomID: room.ID, TimeslotID: slot.ID}] {
			continue
		}
		schedule[index].ClassroomID = room.ID
		schedule[index].TimeslotID = slot.ID
		return
	}
}

func (o *geneticOptimizer) mutateFlipRoom(schedule []models.Assignment) {
	used := usedSlotsFromAssignments(schedule)
	index := o.deps.rng.Intn(len(schedule))

	rooms := o.deps.problem.classrooms
	for attempt := 0; attempt < 10; attempt++ {
		room := rooms[o.deps.rng.Intn(len(rooms))]
		if room.ID == schedule[index].ClassroomID {
			continue
		}
		if used[slotKey{ClassroomID: room.ID, TimeslotID: schedule[index].TimeslotID}] {
			continue
		}
		schedule[index].ClassroomID = room.ID
		return
	}
}

var _ Optimizer = (*geneticOptimizer)(nil)
