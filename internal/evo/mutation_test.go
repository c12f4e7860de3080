package evo

import (
	"errors"
	"math/rand"
	"testing"
)

// scaledCandidate records how it was mutated so tests can tell the scaled
// path from the default path.
type scaledCandidate struct {
	genes        []float64
	lastStrength float64
	scaledCalls  int
	defaultCalls int
}

func (c *scaledCandidate) Fitness() float64 { return 0 }

func (c *scaledCandidate) Crossover(other *scaledCandidate) (*scaledCandidate, *scaledCandidate) {
	return c.Clone(), other.Clone()
}

func (c *scaledCandidate) Mutate(_ *rand.Rand) {
	c.defaultCalls++
}

func (c *scaledCandidate) Clone() *scaledCandidate {
	return &scaledCandidate{genes: append([]float64(nil), c.genes...)}
}

func (c *scaledCandidate) MutateScaled(_ *rand.Rand, strength float64) {
	c.scaledCalls++
	c.lastStrength = strength
}

func TestGaussianMutationRateZeroNeverMutates(t *testing.T) {
	op := GaussianMutation[*testCandidate]{Rate: 0}
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		candidate := &testCandidate{genes: []float64{1, 2, 3}}
		if err := op.Mutate(candidate, rng); err != nil {
			t.Fatalf("mutate: %v", err)
		}
		if !equalGenes(candidate.genes, []float64{1, 2, 3}) {
			t.Fatalf("trial %d: rate 0 mutated genes to %v", i, candidate.genes)
		}
	}
}

func TestGaussianMutationRateOneAlwaysMutates(t *testing.T) {
	op := GaussianMutation[*testCandidate]{Rate: 1}
	rng := rand.New(rand.NewSource(2))
	for i := 0; i < 100; i++ {
		candidate := &testCandidate{genes: []float64{1, 2, 3}}
		if err := op.Mutate(candidate, rng); err != nil {
			t.Fatalf("mutate: %v", err)
		}
		if equalGenes(candidate.genes, []float64{1, 2, 3}) {
			t.Fatalf("trial %d: rate 1 left genes unchanged", i)
		}
	}
}

func TestGaussianMutationRateGatesProbability(t *testing.T) {
	op := GaussianMutation[*testCandidate]{Rate: 0.3}
	rng := rand.New(rand.NewSource(7))
	mutated := 0
	const trials = 2000
	for i := 0; i < trials; i++ {
		candidate := &testCandidate{genes: []float64{1, 2, 3}}
		if err := op.Mutate(candidate, rng); err != nil {
			t.Fatalf("mutate: %v", err)
		}
		if !equalGenes(candidate.genes, []float64{1, 2, 3}) {
			mutated++
		}
	}
	fraction := float64(mutated) / trials
	if fraction < 0.2 || fraction > 0.4 {
		t.Fatalf("mutation fraction %v outside [0.2, 0.4] for rate 0.3", fraction)
	}
}

func TestGaussianMutationUsesScaledCapability(t *testing.T) {
	op := GaussianMutation[*scaledCandidate]{Rate: 1, Strength: 0.5}
	candidate := &scaledCandidate{genes: []float64{1}}
	if err := op.Mutate(candidate, rand.New(rand.NewSource(3))); err != nil {
		t.Fatalf("mutate: %v", err)
	}
	if candidate.scaledCalls != 1 || candidate.defaultCalls != 0 {
		t.Fatalf("expected scaled path: scaled=%d default=%d", candidate.scaledCalls, candidate.defaultCalls)
	}
	if candidate.lastStrength != 0.5 {
		t.Fatalf("strength: got=%v want=%v", candidate.lastStrength, 0.5)
	}
}

func TestGaussianMutationZeroStrengthFallsBackToDefault(t *testing.T) {
	op := GaussianMutation[*scaledCandidate]{Rate: 1}
	candidate := &scaledCandidate{genes: []float64{1}}
	if err := op.Mutate(candidate, rand.New(rand.NewSource(3))); err != nil {
		t.Fatalf("mutate: %v", err)
	}
	if candidate.defaultCalls != 1 || candidate.scaledCalls != 0 {
		t.Fatalf("expected default path: scaled=%d default=%d", candidate.scaledCalls, candidate.defaultCalls)
	}
}

func TestGaussianMutationRejectsOutOfRangeRate(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	candidate := &testCandidate{genes: []float64{1}}

	err := GaussianMutation[*testCandidate]{Rate: -0.1}.Mutate(candidate, rng)
	if !errors.Is(err, ErrContractViolation) {
		t.Fatalf("expected contract violation for negative rate, got %v", err)
	}
	err = GaussianMutation[*testCandidate]{Rate: 1.1}.Mutate(candidate, rng)
	if !errors.Is(err, ErrContractViolation) {
		t.Fatalf("expected contract violation for rate above 1, got %v", err)
	}
}

func TestGaussianMutationRejectsNilRand(t *testing.T) {
	candidate := &testCandidate{genes: []float64{1}}
	err := GaussianMutation[*testCandidate]{Rate: 0.5}.Mutate(candidate, nil)
	if !errors.Is(err, ErrContractViolation) {
		t.Fatalf("expected contract violation, got %v", err)
	}
}
