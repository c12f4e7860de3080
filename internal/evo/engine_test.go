package evo

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"
)

// testCandidate is a minimal real-valued genome: fitness is the gene sum,
// crossover splits both parents at the midpoint, mutation perturbs one gene.
type testCandidate struct {
	genes []float64
	nan   bool
}

func (c *testCandidate) Fitness() float64 {
	if c.nan {
		return math.NaN()
	}
	total := 0.0
	for _, gene := range c.genes {
		total += gene
	}
	return total
}

func (c *testCandidate) Crossover(other *testCandidate) (*testCandidate, *testCandidate) {
	mid := len(c.genes) / 2
	first := make([]float64, len(c.genes))
	copy(first, c.genes[:mid])
	copy(first[mid:], other.genes[mid:])
	second := make([]float64, len(other.genes))
	copy(second, other.genes[:mid])
	copy(second[mid:], c.genes[mid:])
	return &testCandidate{genes: first}, &testCandidate{genes: second}
}

func (c *testCandidate) Mutate(rng *rand.Rand) {
	idx := rng.Intn(len(c.genes))
	c.genes[idx] += (rng.Float64()*2 - 1) * 0.1
}

func (c *testCandidate) Clone() *testCandidate {
	return &testCandidate{genes: append([]float64(nil), c.genes...), nan: c.nan}
}

func testGenerator(length int) func(rng *rand.Rand) *testCandidate {
	return func(rng *rand.Rand) *testCandidate {
		genes := make([]float64, length)
		for i := range genes {
			genes[i] = rng.Float64()
		}
		return &testCandidate{genes: genes}
	}
}

func testConfig(populationSize, workers int) Config[*testCandidate] {
	return Config[*testCandidate]{
		PopulationSize: populationSize,
		Selection:      TournamentSelection[*testCandidate]{TournamentSize: 2},
		Crossover:      SinglePointCrossover[*testCandidate]{},
		Mutation:       GaussianMutation[*testCandidate]{Rate: 0.2},
		Generator:      testGenerator(6),
		Workers:        workers,
	}
}

func equalGenes(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

type childlessCrossover struct{}

func (childlessCrossover) Name() string { return "childless" }

func (childlessCrossover) Crossover(_, _ *testCandidate) []*testCandidate { return nil }

type triplingCrossover struct{}

func (triplingCrossover) Name() string { return "tripling" }

func (triplingCrossover) Crossover(parent1, parent2 *testCandidate) []*testCandidate {
	first, second := parent1.Crossover(parent2)
	return []*testCandidate{first, second, parent1.Clone()}
}

type truncatedSelection struct{}

func (truncatedSelection) Name() string { return "truncated" }

func (truncatedSelection) Select(population []*testCandidate, _ []float64, _ *rand.Rand) ([]*testCandidate, error) {
	return population[:len(population)-1], nil
}

func TestNewValidatesConfig(t *testing.T) {
	cfg := testConfig(4, 1)
	cfg.PopulationSize = 0
	if _, err := New(cfg); err == nil {
		t.Fatal("expected error for non-positive population size")
	}

	cfg = testConfig(4, 1)
	cfg.Selection = nil
	if _, err := New(cfg); err == nil {
		t.Fatal("expected error for nil selection strategy")
	}

	cfg = testConfig(4, 1)
	cfg.Crossover = nil
	if _, err := New(cfg); err == nil {
		t.Fatal("expected error for nil crossover operator")
	}

	cfg = testConfig(4, 1)
	cfg.Mutation = nil
	if _, err := New(cfg); err == nil {
		t.Fatal("expected error for nil mutation operator")
	}
}

func TestEvolveMaintainsPopulationSize(t *testing.T) {
	engine, err := New(testConfig(10, 1))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	final, err := engine.Evolve(context.Background(), 5, rand.New(rand.NewSource(1)), nil)
	if err != nil {
		t.Fatalf("evolve: %v", err)
	}
	if len(final) != 10 {
		t.Fatalf("final population size: got=%d want=%d", len(final), 10)
	}
}

func TestEvolveOddPopulationPassesFinalParentThrough(t *testing.T) {
	engine, err := New(testConfig(5, 1))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	final, err := engine.Evolve(context.Background(), 4, rand.New(rand.NewSource(3)), nil)
	if err != nil {
		t.Fatalf("evolve: %v", err)
	}
	if len(final) != 5 {
		t.Fatalf("final population size: got=%d want=%d", len(final), 5)
	}
}

func TestEvolveDeterministicForFixedSeed(t *testing.T) {
	run := func() []*testCandidate {
		engine, err := New(testConfig(8, 1))
		if err != nil {
			t.Fatalf("new engine: %v", err)
		}
		final, err := engine.Evolve(context.Background(), 6, rand.New(rand.NewSource(42)), nil)
		if err != nil {
			t.Fatalf("evolve: %v", err)
		}
		return final
	}

	first := run()
	second := run()
	for i := range first {
		if !equalGenes(first[i].genes, second[i].genes) {
			t.Fatalf("final populations diverge at index %d", i)
		}
	}
}

func TestEvolveIndependentOfWorkerCount(t *testing.T) {
	run := func(workers int) []*testCandidate {
		engine, err := New(testConfig(9, workers))
		if err != nil {
			t.Fatalf("new engine: %v", err)
		}
		final, err := engine.Evolve(context.Background(), 6, rand.New(rand.NewSource(42)), nil)
		if err != nil {
			t.Fatalf("evolve: %v", err)
		}
		return final
	}

	sequential := run(1)
	parallel := run(4)
	for i := range sequential {
		if !equalGenes(sequential[i].genes, parallel[i].genes) {
			t.Fatalf("worker counts diverge at index %d", i)
		}
	}
}

func TestEvolveZeroGenerationsReturnsInitialUnchanged(t *testing.T) {
	engine, err := New(testConfig(3, 1))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	initial := []*testCandidate{
		{genes: []float64{1, 2}},
		{genes: []float64{3, 4}},
		{genes: []float64{5, 6}},
	}
	final, err := engine.Evolve(context.Background(), 0, rand.New(rand.NewSource(1)), initial)
	if err != nil {
		t.Fatalf("evolve: %v", err)
	}
	if len(final) != len(initial) {
		t.Fatalf("final population size: got=%d want=%d", len(final), len(initial))
	}
	for i := range final {
		if final[i] != initial[i] {
			t.Fatalf("candidate %d replaced without any generation running", i)
		}
	}
}

func TestEvolveRejectsInitialPopulationMismatch(t *testing.T) {
	engine, err := New(testConfig(4, 1))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	initial := []*testCandidate{{genes: []float64{1}}}
	_, err = engine.Evolve(context.Background(), 1, rand.New(rand.NewSource(1)), initial)
	if !errors.Is(err, ErrContractViolation) {
		t.Fatalf("expected contract violation, got %v", err)
	}
}

func TestEvolveWithoutGeneratorFails(t *testing.T) {
	cfg := testConfig(4, 1)
	cfg.Generator = nil
	engine, err := New(cfg)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	_, err = engine.Evolve(context.Background(), 1, rand.New(rand.NewSource(1)), nil)
	if !errors.Is(err, ErrMissingGenerator) {
		t.Fatalf("expected missing generator error, got %v", err)
	}
}

func TestEvolveRejectsNaNFitness(t *testing.T) {
	engine, err := New(testConfig(3, 1))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	initial := []*testCandidate{
		{genes: []float64{1}},
		{genes: []float64{2}, nan: true},
		{genes: []float64{3}},
	}
	_, err = engine.Evolve(context.Background(), 1, rand.New(rand.NewSource(1)), initial)
	if !errors.Is(err, ErrNonComparableFitness) {
		t.Fatalf("expected non-comparable fitness error, got %v", err)
	}
}

func TestEvolveRejectsChildlessCrossover(t *testing.T) {
	cfg := testConfig(4, 1)
	cfg.Crossover = childlessCrossover{}
	engine, err := New(cfg)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	_, err = engine.Evolve(context.Background(), 1, rand.New(rand.NewSource(1)), nil)
	if !errors.Is(err, ErrContractViolation) {
		t.Fatalf("expected contract violation, got %v", err)
	}
}

func TestEvolveRejectsShortParentPool(t *testing.T) {
	cfg := testConfig(4, 1)
	cfg.Selection = truncatedSelection{}
	engine, err := New(cfg)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	_, err = engine.Evolve(context.Background(), 1, rand.New(rand.NewSource(1)), nil)
	if !errors.Is(err, ErrContractViolation) {
		t.Fatalf("expected contract violation, got %v", err)
	}
}

func TestEvolvePopulationSizeFollowsCrossoverArity(t *testing.T) {
	cfg := testConfig(4, 1)
	cfg.Crossover = triplingCrossover{}
	engine, err := New(cfg)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	final, err := engine.Evolve(context.Background(), 1, rand.New(rand.NewSource(1)), nil)
	if err != nil {
		t.Fatalf("evolve: %v", err)
	}
	if len(final) != 6 {
		t.Fatalf("three-child pairs should grow the population: got=%d want=%d", len(final), 6)
	}
}

func TestEvolveObserverSeesEveryGeneration(t *testing.T) {
	cfg := testConfig(6, 1)
	var stats []GenerationStats
	cfg.OnGeneration = func(s GenerationStats) {
		stats = append(stats, s)
	}
	engine, err := New(cfg)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	if _, err := engine.Evolve(context.Background(), 4, rand.New(rand.NewSource(5)), nil); err != nil {
		t.Fatalf("evolve: %v", err)
	}
	if len(stats) != 4 {
		t.Fatalf("observed generations: got=%d want=%d", len(stats), 4)
	}
	for i, s := range stats {
		if s.Generation != i+1 {
			t.Fatalf("generation %d labeled %d", i+1, s.Generation)
		}
		if s.MinFitness > s.MeanFitness || s.MeanFitness > s.BestFitness {
			t.Fatalf("generation %d: min=%v mean=%v best=%v out of order", s.Generation, s.MinFitness, s.MeanFitness, s.BestFitness)
		}
	}
}

func TestEvolveStopsOnCancelledContext(t *testing.T) {
	engine, err := New(testConfig(4, 1))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = engine.Evolve(ctx, 3, rand.New(rand.NewSource(1)), nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestEvolveRejectsNilRand(t *testing.T) {
	engine, err := New(testConfig(4, 1))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	_, err = engine.Evolve(context.Background(), 1, nil, nil)
	if !errors.Is(err, ErrContractViolation) {
		t.Fatalf("expected contract violation, got %v", err)
	}
}

func TestEvolveSmallEndToEnd(t *testing.T) {
	cfg := Config[*testCandidate]{
		PopulationSize: 4,
		Selection:      TournamentSelection[*testCandidate]{TournamentSize: 2},
		Crossover:      SinglePointCrossover[*testCandidate]{},
		Mutation:       GaussianMutation[*testCandidate]{Rate: 0.5},
		Generator:      testGenerator(4),
		Workers:        1,
	}
	engine, err := New(cfg)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	final, err := engine.Evolve(context.Background(), 1, rand.New(rand.NewSource(7)), nil)
	if err != nil {
		t.Fatalf("evolve: %v", err)
	}
	if len(final) != 4 {
		t.Fatalf("final population size: got=%d want=%d", len(final), 4)
	}
	for i, candidate := range final {
		if len(candidate.genes) != 4 {
			t.Fatalf("candidate %d gene length: got=%d want=%d", i, len(candidate.genes), 4)
		}
	}
}
