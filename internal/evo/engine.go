package evo

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"
)

// GenerationStats summarizes one generation's fitness distribution as
// observed before selection runs. Generation is 1-based.
type GenerationStats struct {
	Generation  int     `json:"generation"`
	BestFitness float64 `json:"best_fitness"`
	MeanFitness float64 `json:"mean_fitness"`
	MinFitness  float64 `json:"min_fitness"`
}

type Config[C Candidate[C]] struct {
	PopulationSize int
	Selection      SelectionStrategy[C]
	Crossover      CrossoverOperator[C]
	Mutation       MutationOperator[C]
	// Generator builds one candidate from the supplied source. It is
	// required when Evolve runs without an initial population.
	Generator func(rng *rand.Rand) C
	// Workers caps evaluation and mutation parallelism. Values <= 1 run
	// sequentially; results never depend on the worker count.
	Workers int
	// OnGeneration observes per-generation stats when set.
	OnGeneration func(stats GenerationStats)
}

// Engine runs the generational loop: evaluate, select, recombine, mutate,
// replace. The population is replaced wholesale each generation.
type Engine[C Candidate[C]] struct {
	cfg Config[C]
}

func New[C Candidate[C]](cfg Config[C]) (*Engine[C], error) {
	if cfg.PopulationSize <= 0 {
		return nil, fmt.Errorf("population size must be > 0")
	}
	if cfg.Selection == nil {
		return nil, fmt.Errorf("selection strategy is required")
	}
	if cfg.Crossover == nil {
		return nil, fmt.Errorf("crossover operator is required")
	}
	if cfg.Mutation == nil {
		return nil, fmt.Errorf("mutation operator is required")
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &Engine[C]{cfg: cfg}, nil
}

// Evolve runs the configured number of generations and returns the final
// population. The supplied source drives every random decision: serial
// phases consume it directly, and parallel phases consume per-index
// sub-seeds drawn from it up front, so a fixed seed reproduces the run
// for any worker count. A nil initial population is built by the
// configured Generator; a non-nil one must match PopulationSize exactly.
func (e *Engine[C]) Evolve(ctx context.Context, generations int, rng *rand.Rand, initial []C) ([]C, error) {
	if rng == nil {
		return nil, fmt.Errorf("%w: random source is required", ErrContractViolation)
	}
	if generations < 0 {
		return nil, fmt.Errorf("%w: generations must be >= 0, got %d", ErrContractViolation, generations)
	}

	population, err := e.seedPopulation(rng, initial)
	if err != nil {
		return nil, err
	}

	for gen := 0; gen < generations; gen++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		fitness, err := e.evaluate(population)
		if err != nil {
			return nil, err
		}
		if e.cfg.OnGeneration != nil {
			e.cfg.OnGeneration(summarizeGeneration(gen+1, fitness))
		}

		parents, err := e.cfg.Selection.Select(population, fitness, rng)
		if err != nil {
			return nil, err
		}
		if len(parents) != len(population) {
			return nil, fmt.Errorf("%w: selection %s returned %d parents, want %d",
				ErrContractViolation, e.cfg.Selection.Name(), len(parents), len(population))
		}

		offspring, err := e.recombine(parents)
		if err != nil {
			return nil, err
		}
		if err := e.mutate(offspring, rng); err != nil {
			return nil, err
		}
		population = offspring
	}

	return population, nil
}

func (e *Engine[C]) seedPopulation(rng *rand.Rand, initial []C) ([]C, error) {
	if initial != nil {
		if len(initial) != e.cfg.PopulationSize {
			return nil, fmt.Errorf("%w: initial population mismatch: got=%d want=%d",
				ErrContractViolation, len(initial), e.cfg.PopulationSize)
		}
		population := make([]C, len(initial))
		copy(population, initial)
		return population, nil
	}
	if e.cfg.Generator == nil {
		return nil, fmt.Errorf("%w: no initial population and no generator configured", ErrMissingGenerator)
	}

	population := make([]C, e.cfg.PopulationSize)
	seeds := drawSeeds(rng, len(population))
	if err := e.parallelFor(len(population), func(i int) error {
		population[i] = e.cfg.Generator(rand.New(rand.NewSource(seeds[i])))
		return nil
	}); err != nil {
		return nil, err
	}
	return population, nil
}

func (e *Engine[C]) evaluate(population []C) ([]float64, error) {
	fitness := make([]float64, len(population))
	err := e.parallelFor(len(population), func(i int) error {
		value := population[i].Fitness()
		if math.IsNaN(value) {
			return fmt.Errorf("%w: fitness is NaN at index %d", ErrNonComparableFitness, i)
		}
		fitness[i] = value
		return nil
	})
	if err != nil {
		return nil, err
	}
	return fitness, nil
}

// recombine walks parents in adjacent pairs in order. An odd final parent
// has no partner and passes through as a clone; it still enters the
// mutation phase like every other offspring.
func (e *Engine[C]) recombine(parents []C) ([]C, error) {
	offspring := make([]C, 0, len(parents))
	for i := 0; i+1 < len(parents); i += 2 {
		children := e.cfg.Crossover.Crossover(parents[i], parents[i+1])
		if len(children) == 0 {
			return nil, fmt.Errorf("%w: crossover %s produced no children for pair %d",
				ErrContractViolation, e.cfg.Crossover.Name(), i/2)
		}
		offspring = append(offspring, children...)
	}
	if len(parents)%2 == 1 {
		offspring = append(offspring, parents[len(parents)-1].Clone())
	}
	return offspring, nil
}

func (e *Engine[C]) mutate(offspring []C, rng *rand.Rand) error {
	seeds := drawSeeds(rng, len(offspring))
	return e.parallelFor(len(offspring), func(i int) error {
		return e.cfg.Mutation.Mutate(offspring[i], rand.New(rand.NewSource(seeds[i])))
	})
}

// drawSeeds consumes one sub-seed per index from the master source. The
// draw happens serially so the stream each parallel task sees does not
// depend on worker scheduling.
func drawSeeds(rng *rand.Rand, n int) []int64 {
	seeds := make([]int64, n)
	for i := range seeds {
		seeds[i] = rng.Int63()
	}
	return seeds
}

func (e *Engine[C]) parallelFor(n int, task func(i int) error) error {
	if n == 0 {
		return nil
	}
	workerCount := e.cfg.Workers
	if workerCount > n {
		workerCount = n
	}
	if workerCount <= 1 {
		for i := 0; i < n; i++ {
			if err := task(i); err != nil {
				return err
			}
		}
		return nil
	}

	jobs := make(chan int)
	errs := make([]error, n)
	var wg sync.WaitGroup
	wg.Add(workerCount)
	for w := 0; w < workerCount; w++ {
		go func() {
			defer wg.Done()
			for i := range jobs {
				errs[i] = task(i)
			}
		}()
	}
	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func summarizeGeneration(generation int, fitness []float64) GenerationStats {
	if len(fitness) == 0 {
		return GenerationStats{Generation: generation}
	}

	total := 0.0
	bestFitness := fitness[0]
	minFitness := fitness[0]
	for _, value := range fitness {
		total += value
		if value > bestFitness {
			bestFitness = value
		}
		if value < minFitness {
			minFitness = value
		}
	}

	return GenerationStats{
		Generation:  generation,
		BestFitness: bestFitness,
		MeanFitness: total / float64(len(fitness)),
		MinFitness:  minFitness,
	}
}
