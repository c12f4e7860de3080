package evo

import "math/rand"

// Candidate is the self-referential contract for evolvable values. Fitness
// scores a candidate (higher is better, NaN is rejected by the engine),
// Crossover recombines two parents into two children without modifying
// either, Mutate perturbs genes in place using the supplied source, and
// Clone returns a copy sharing no mutable state with the receiver.
// Implementations are typically pointer types so Mutate can work in place.
type Candidate[C any] interface {
	Fitness() float64
	Crossover(other C) (C, C)
	Mutate(rng *rand.Rand)
	Clone() C
}

// ScaledMutator is an optional capability for candidates whose perturbation
// width can be set per call. GaussianMutation prefers it over Mutate when a
// positive Strength is configured.
type ScaledMutator interface {
	MutateScaled(rng *rand.Rand, strength float64)
}
