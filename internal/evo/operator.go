package evo

import "math/rand"

// SelectionStrategy produces the parent pool for one generation. Select
// returns exactly len(population) parents drawn from population, where
// fitness[i] scores population[i].
type SelectionStrategy[C Candidate[C]] interface {
	Name() string
	Select(population []C, fitness []float64, rng *rand.Rand) ([]C, error)
}

// CrossoverOperator recombines one parent pair into at least one child.
// Parents must not be modified.
type CrossoverOperator[C Candidate[C]] interface {
	Name() string
	Crossover(parent1, parent2 C) []C
}

// MutationOperator perturbs one offspring in place.
type MutationOperator[C Candidate[C]] interface {
	Name() string
	Mutate(candidate C, rng *rand.Rand) error
}
