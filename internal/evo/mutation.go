package evo

import (
	"fmt"
	"math/rand"
)

// GaussianMutation perturbs offspring behind a Bernoulli gate: each
// candidate mutates with probability Rate and passes through untouched
// otherwise. When Strength is positive and the candidate implements
// ScaledMutator, the perturbation width is Strength; with Strength <= 0 or
// without the capability, the candidate's Mutate default applies.
type GaussianMutation[C Candidate[C]] struct {
	Rate     float64
	Strength float64
}

func (GaussianMutation[C]) Name() string {
	return "gaussian"
}

func (m GaussianMutation[C]) Mutate(candidate C, rng *rand.Rand) error {
	if rng == nil {
		return fmt.Errorf("%w: random source is required", ErrContractViolation)
	}
	if m.Rate < 0 || m.Rate > 1 {
		return fmt.Errorf("%w: mutation rate must be in [0, 1], got %v", ErrContractViolation, m.Rate)
	}
	if rng.Float64() >= m.Rate {
		return nil
	}
	if scaled, ok := any(candidate).(ScaledMutator); ok && m.Strength > 0 {
		scaled.MutateScaled(rng, m.Strength)
		return nil
	}
	candidate.Mutate(rng)
	return nil
}
