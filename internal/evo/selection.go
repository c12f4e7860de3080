package evo

import (
	"fmt"
	"math"
	"math/rand"
)

// TournamentSelection fills each parent slot by drawing TournamentSize
// candidates uniformly with replacement and keeping the fittest draw. Ties
// resolve to the last-encountered maximal draw, not the lowest index. With
// TournamentSize 1 the strategy degenerates to uniform sampling.
type TournamentSelection[C Candidate[C]] struct {
	TournamentSize int
}

func (TournamentSelection[C]) Name() string {
	return "tournament"
}

func (s TournamentSelection[C]) Select(population []C, fitness []float64, rng *rand.Rand) ([]C, error) {
	if err := validateSelectionInput(population, fitness, rng); err != nil {
		return nil, err
	}
	if s.TournamentSize <= 0 {
		return nil, fmt.Errorf("%w: tournament size must be > 0, got %d", ErrContractViolation, s.TournamentSize)
	}

	parents := make([]C, len(population))
	for slot := range parents {
		best := rng.Intn(len(population))
		for draw := 1; draw < s.TournamentSize; draw++ {
			idx := rng.Intn(len(population))
			if fitness[idx] >= fitness[best] {
				best = idx
			}
		}
		parents[slot] = population[best]
	}
	return parents, nil
}

// RouletteSelection draws parents with probability proportional to fitness.
// Scores are shifted so the minimum maps to a small positive weight, which
// keeps negative-fitness populations drawable; a zero-spread population
// degenerates to uniform sampling.
type RouletteSelection[C Candidate[C]] struct{}

func (RouletteSelection[C]) Name() string {
	return "roulette"
}

func (RouletteSelection[C]) Select(population []C, fitness []float64, rng *rand.Rand) ([]C, error) {
	if err := validateSelectionInput(population, fitness, rng); err != nil {
		return nil, err
	}

	minFitness := fitness[0]
	for _, value := range fitness[1:] {
		if value < minFitness {
			minFitness = value
		}
	}
	shift := 0.0
	if minFitness <= 0 {
		shift = -minFitness + 1e-9
	}
	weights := make([]float64, len(fitness))
	total := 0.0
	for i, value := range fitness {
		weights[i] = value + shift
		total += weights[i]
	}
	if total <= 0 {
		for i := range weights {
			weights[i] = 1
		}
		total = float64(len(weights))
	}

	parents := make([]C, len(population))
	for slot := range parents {
		pick := rng.Float64() * total
		acc := 0.0
		chosen := len(population) - 1
		for i, weight := range weights {
			acc += weight
			if pick <= acc {
				chosen = i
				break
			}
		}
		parents[slot] = population[chosen]
	}
	return parents, nil
}

func validateSelectionInput[C Candidate[C]](population []C, fitness []float64, rng *rand.Rand) error {
	if rng == nil {
		return fmt.Errorf("%w: random source is required", ErrContractViolation)
	}
	if len(population) == 0 {
		return fmt.Errorf("%w: population is empty", ErrContractViolation)
	}
	if len(fitness) != len(population) {
		return fmt.Errorf("%w: fitness length mismatch: got=%d want=%d", ErrContractViolation, len(fitness), len(population))
	}
	for i, value := range fitness {
		if math.IsNaN(value) {
			return fmt.Errorf("%w: fitness is NaN at index %d", ErrNonComparableFitness, i)
		}
	}
	return nil
}
