package platform

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"anagenesis/internal/evo"
	"anagenesis/internal/genome"
	"anagenesis/internal/model"
	"anagenesis/internal/objective"
	"anagenesis/internal/storage"
)

// championCount caps how many final candidates are ranked and persisted.
const championCount = 5

type Config struct {
	Store  storage.Store
	Logger *zap.Logger
}

// Runner wires the evolution engine to the objective registry and the
// result store. One Runner serves any number of runs, including runs
// executing concurrently on the same store.
type Runner struct {
	store  storage.Store
	logger *zap.Logger

	// summaryMu serializes the read-compare-write on per-objective
	// summaries when runs finish concurrently.
	summaryMu sync.Mutex
}

func NewRunner(cfg Config) (*Runner, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{store: cfg.Store, logger: logger}, nil
}

// RunParams describes one evolution run over the gene-vector candidate.
// Operator instances come from the caller so custom operators plug in
// without touching the runner; the scalar fields echo the operator
// settings into the persisted run record.
type RunParams struct {
	RunID      string
	Objective  string
	GeneLength int
	// InitMin and InitMax bound initial gene values. Leaving both zero
	// adopts the objective's registered bounds.
	InitMin          float64
	InitMax          float64
	PopulationSize   int
	Generations      int
	Seed             int64
	Workers          int
	Selection        evo.SelectionStrategy[*genome.Vector]
	Crossover        evo.CrossoverOperator[*genome.Vector]
	Mutation         evo.MutationOperator[*genome.Vector]
	TournamentSize   int
	MutationRate     float64
	MutationStrength float64
	// Initial seeds the first generation instead of the generator. Its
	// length must equal PopulationSize.
	Initial []*genome.Vector
}

type RunResult struct {
	RunID            string
	Record           model.RunRecord
	BestByGeneration []float64
	Stats            []model.GenerationStats
	FinalBest        float64
	Champions        []model.ChampionRecord
}

type scoredVector struct {
	vector  *genome.Vector
	fitness float64
}

// Run executes one seeded evolution run and persists its results: the run
// record, best-by-generation history, per-generation stats, ranked
// champions, and the per-objective best-ever summary.
func (r *Runner) Run(ctx context.Context, params RunParams) (RunResult, error) {
	spec, err := objective.Resolve(params.Objective)
	if err != nil {
		return RunResult{}, err
	}
	if params.GeneLength <= 0 {
		return RunResult{}, fmt.Errorf("gene length must be > 0")
	}

	initMin, initMax := params.InitMin, params.InitMax
	if initMin == 0 && initMax == 0 {
		initMin, initMax = spec.InitMin, spec.InitMax
	}
	if initMax <= initMin {
		return RunResult{}, fmt.Errorf("init bounds are empty: min=%g max=%g", initMin, initMax)
	}

	workers := params.Workers
	if workers <= 0 {
		workers = 1
	}
	runID := params.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	var history []float64
	var stats []model.GenerationStats
	engine, err := evo.New(evo.Config[*genome.Vector]{
		PopulationSize: params.PopulationSize,
		Selection:      params.Selection,
		Crossover:      params.Crossover,
		Mutation:       params.Mutation,
		Generator:      genome.Generator(params.GeneLength, initMin, initMax, spec.Fn),
		Workers:        workers,
		OnGeneration: func(gs evo.GenerationStats) {
			history = append(history, gs.BestFitness)
			stats = append(stats, model.GenerationStats{
				Generation:  gs.Generation,
				BestFitness: gs.BestFitness,
				MeanFitness: gs.MeanFitness,
				MinFitness:  gs.MinFitness,
			})
			r.logger.Debug("generation complete",
				zap.String("run_id", runID),
				zap.Int("generation", gs.Generation),
				zap.Float64("best_fitness", gs.BestFitness),
				zap.Float64("mean_fitness", gs.MeanFitness))
		},
	})
	if err != nil {
		return RunResult{}, err
	}

	r.logger.Info("evolution run starting",
		zap.String("run_id", runID),
		zap.String("objective", spec.Name),
		zap.Int("population_size", params.PopulationSize),
		zap.Int("generations", params.Generations),
		zap.Int64("seed", params.Seed),
		zap.Int("workers", workers))

	started := time.Now()
	final, err := engine.Evolve(ctx, params.Generations, rand.New(rand.NewSource(params.Seed)), params.Initial)
	if err != nil {
		return RunResult{}, err
	}

	champions, finalBest := rankChampions(final)

	record := model.RunRecord{
		RunID:            runID,
		Objective:        spec.Name,
		Selection:        params.Selection.Name(),
		GeneLength:       params.GeneLength,
		InitMin:          initMin,
		InitMax:          initMax,
		PopulationSize:   params.PopulationSize,
		Generations:      params.Generations,
		TournamentSize:   params.TournamentSize,
		MutationRate:     params.MutationRate,
		MutationStrength: params.MutationStrength,
		Workers:          workers,
		Seed:             params.Seed,
		FinalBestFitness: finalBest,
		CreatedAtUTC:     time.Now().UTC().Format(time.RFC3339Nano),
	}
	if err := r.store.SaveRun(ctx, record); err != nil {
		return RunResult{}, err
	}
	if err := r.store.SaveFitnessHistory(ctx, runID, history); err != nil {
		return RunResult{}, err
	}
	if err := r.store.SaveGenerationStats(ctx, runID, stats); err != nil {
		return RunResult{}, err
	}
	if err := r.store.SaveChampions(ctx, runID, champions); err != nil {
		return RunResult{}, err
	}
	if err := r.updateObjectiveSummary(ctx, spec, finalBest); err != nil {
		return RunResult{}, err
	}

	r.logger.Info("evolution run complete",
		zap.String("run_id", runID),
		zap.Float64("final_best", finalBest),
		zap.Duration("elapsed", time.Since(started)))

	return RunResult{
		RunID:            runID,
		Record:           record,
		BestByGeneration: history,
		Stats:            stats,
		FinalBest:        finalBest,
		Champions:        champions,
	}, nil
}

// rankChampions scores the final population and returns the top candidates
// by fitness. Ties keep population order so fixed-seed runs rank
// identically everywhere.
func rankChampions(final []*genome.Vector) ([]model.ChampionRecord, float64) {
	if len(final) == 0 {
		return nil, 0
	}

	scored := make([]scoredVector, 0, len(final))
	for _, candidate := range final {
		scored = append(scored, scoredVector{vector: candidate, fitness: candidate.Fitness()})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].fitness > scored[j].fitness
	})

	topCount := championCount
	if len(scored) < topCount {
		topCount = len(scored)
	}
	champions := make([]model.ChampionRecord, 0, topCount)
	for i, item := range scored[:topCount] {
		champions = append(champions, model.ChampionRecord{
			Rank:    i + 1,
			Fitness: item.fitness,
			Genes:   append([]float64(nil), item.vector.Genes...),
		})
	}
	return champions, scored[0].fitness
}

// updateObjectiveSummary keeps the per-objective best-ever fitness. The
// stored value only moves up.
func (r *Runner) updateObjectiveSummary(ctx context.Context, spec objective.Spec, fitness float64) error {
	r.summaryMu.Lock()
	defer r.summaryMu.Unlock()

	summary, ok, err := r.store.GetObjectiveSummary(ctx, spec.Name)
	if err != nil {
		return err
	}
	if !ok {
		return r.store.SaveObjectiveSummary(ctx, model.ObjectiveSummary{
			Name:        spec.Name,
			Description: spec.Description,
			BestFitness: fitness,
		})
	}
	if fitness <= summary.BestFitness {
		return nil
	}
	summary.BestFitness = fitness
	return r.store.SaveObjectiveSummary(ctx, summary)
}
