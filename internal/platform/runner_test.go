package platform

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anagenesis/internal/evo"
	"anagenesis/internal/genome"
	"anagenesis/internal/objective"
	"anagenesis/internal/storage"
)

func newTestRunner(t *testing.T) (*Runner, *storage.MemoryStore) {
	t.Helper()

	store := storage.NewMemoryStore()
	require.NoError(t, store.Init(context.Background()))

	runner, err := NewRunner(Config{Store: store})
	require.NoError(t, err)
	return runner, store
}

func testRunParams() RunParams {
	return RunParams{
		Objective:        "sum",
		GeneLength:       4,
		PopulationSize:   8,
		Generations:      5,
		Seed:             1,
		Workers:          1,
		Selection:        evo.TournamentSelection[*genome.Vector]{TournamentSize: 2},
		Crossover:        evo.SinglePointCrossover[*genome.Vector]{},
		Mutation:         evo.GaussianMutation[*genome.Vector]{Rate: 0.2, Strength: 0.1},
		TournamentSize:   2,
		MutationRate:     0.2,
		MutationStrength: 0.1,
	}
}

func TestNewRunnerRequiresStore(t *testing.T) {
	_, err := NewRunner(Config{})
	require.Error(t, err)
}

func TestRunnerRunPersistsResults(t *testing.T) {
	ctx := context.Background()
	runner, store := newTestRunner(t)

	result, err := runner.Run(ctx, testRunParams())
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	assert.Len(t, result.BestByGeneration, 5)
	require.Len(t, result.Stats, 5)
	assert.Equal(t, 1, result.Stats[0].Generation)
	assert.Equal(t, 5, result.Stats[4].Generation)

	record, ok, err := store.GetRun(ctx, result.RunID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "sum", record.Objective)
	assert.Equal(t, "tournament", record.Selection)
	assert.Equal(t, 1, record.Workers)
	assert.Equal(t, result.FinalBest, record.FinalBestFitness)
	assert.NotEmpty(t, record.CreatedAtUTC)

	history, ok, err := store.GetFitnessHistory(ctx, result.RunID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, result.BestByGeneration, history)

	stats, ok, err := store.GetGenerationStats(ctx, result.RunID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, result.Stats, stats)

	champions, ok, err := store.GetChampions(ctx, result.RunID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, champions, 5)
	for i, champion := range champions {
		assert.Equal(t, i+1, champion.Rank)
		assert.Len(t, champion.Genes, 4)
		if i > 0 {
			assert.LessOrEqual(t, champion.Fitness, champions[i-1].Fitness)
		}
	}
	assert.Equal(t, result.FinalBest, champions[0].Fitness)

	summary, ok, err := store.GetObjectiveSummary(ctx, "sum")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, result.FinalBest, summary.BestFitness)
	assert.NotEmpty(t, summary.Description)
}

func TestRunnerRunDeterministicAcrossWorkers(t *testing.T) {
	ctx := context.Background()

	serial, _ := newTestRunner(t)
	serialParams := testRunParams()
	serialParams.RunID = "serial"
	serialResult, err := serial.Run(ctx, serialParams)
	require.NoError(t, err)

	parallel, _ := newTestRunner(t)
	parallelParams := testRunParams()
	parallelParams.RunID = "parallel"
	parallelParams.Workers = 4
	parallelResult, err := parallel.Run(ctx, parallelParams)
	require.NoError(t, err)

	assert.Equal(t, serialResult.BestByGeneration, parallelResult.BestByGeneration)
	assert.Equal(t, serialResult.FinalBest, parallelResult.FinalBest)
	require.Len(t, parallelResult.Champions, len(serialResult.Champions))
	for i := range serialResult.Champions {
		assert.Equal(t, serialResult.Champions[i].Genes, parallelResult.Champions[i].Genes)
	}
}

func TestRunnerRunUnknownObjective(t *testing.T) {
	runner, _ := newTestRunner(t)

	params := testRunParams()
	params.Objective = "no-such-objective"
	_, err := runner.Run(context.Background(), params)
	require.ErrorIs(t, err, objective.ErrObjectiveNotFound)
}

func TestRunnerRunRejectsEmptyBounds(t *testing.T) {
	runner, _ := newTestRunner(t)

	params := testRunParams()
	params.InitMin = 3
	params.InitMax = 1
	_, err := runner.Run(context.Background(), params)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "init bounds are empty")
}

func TestRunnerRunRejectsNonPositiveGeneLength(t *testing.T) {
	runner, _ := newTestRunner(t)

	params := testRunParams()
	params.GeneLength = 0
	_, err := runner.Run(context.Background(), params)
	require.Error(t, err)
}

func TestRunnerRunAdoptsObjectiveBounds(t *testing.T) {
	ctx := context.Background()
	runner, store := newTestRunner(t)

	params := testRunParams()
	params.RunID = "sphere-run"
	params.Objective = "sphere"
	result, err := runner.Run(ctx, params)
	require.NoError(t, err)

	record, ok, err := store.GetRun(ctx, result.RunID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, -5.12, record.InitMin)
	assert.Equal(t, 5.12, record.InitMax)
}

func TestRunnerObjectiveSummaryIsMonotone(t *testing.T) {
	ctx := context.Background()
	runner, store := newTestRunner(t)

	first := testRunParams()
	first.RunID = "first"
	firstResult, err := runner.Run(ctx, first)
	require.NoError(t, err)

	second := testRunParams()
	second.RunID = "second"
	second.Seed = 99
	secondResult, err := runner.Run(ctx, second)
	require.NoError(t, err)

	summary, ok, err := store.GetObjectiveSummary(ctx, "sum")
	require.NoError(t, err)
	require.True(t, ok)

	best := firstResult.FinalBest
	if secondResult.FinalBest > best {
		best = secondResult.FinalBest
	}
	assert.Equal(t, best, summary.BestFitness)
}

func TestRunnerRunWithInitialPopulation(t *testing.T) {
	ctx := context.Background()
	runner, _ := newTestRunner(t)

	sum := func(genes []float64) float64 {
		total := 0.0
		for _, gene := range genes {
			total += gene
		}
		return total
	}
	initial := make([]*genome.Vector, 0, 8)
	for i := 0; i < 8; i++ {
		initial = append(initial, genome.New([]float64{float64(i), 0, 0, 0}, sum))
	}

	params := testRunParams()
	params.Generations = 0
	params.Initial = initial
	result, err := runner.Run(ctx, params)
	require.NoError(t, err)

	// Zero generations returns the initial population untouched, so the
	// best candidate is the highest seeded sum.
	assert.Equal(t, 7.0, result.FinalBest)
	assert.Empty(t, result.BestByGeneration)
	require.NotEmpty(t, result.Champions)
	assert.Equal(t, []float64{7, 0, 0, 0}, result.Champions[0].Genes)
}

func TestRunnerRunRejectsMismatchedInitial(t *testing.T) {
	runner, _ := newTestRunner(t)

	params := testRunParams()
	params.Initial = []*genome.Vector{genome.New([]float64{1, 2, 3, 4}, nil)}
	_, err := runner.Run(context.Background(), params)
	require.ErrorIs(t, err, evo.ErrContractViolation)
}
