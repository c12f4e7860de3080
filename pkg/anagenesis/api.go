package anagenesis

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"anagenesis/internal/evo"
	"anagenesis/internal/genome"
	"anagenesis/internal/model"
	"anagenesis/internal/objective"
	"anagenesis/internal/platform"
	"anagenesis/internal/stats"
	"anagenesis/internal/storage"
)

const (
	defaultBenchmarksDir = "benchmarks"
	defaultExportsDir    = "exports"
	defaultDBPath        = "anagenesis.db"
)

type Options struct {
	StoreKind     string
	DBPath        string
	BenchmarksDir string
	ExportsDir    string
	Workers       int
	Logger        *zap.Logger
}

type Client struct {
	store  storage.Store
	runner *platform.Runner

	benchmarksDir string
	exportsDir    string
	workers       int
	logger        *zap.Logger
}

type RunRequest struct {
	// RunID optionally names the run. Left empty, an id is derived from
	// the objective, seed, and start time.
	RunID      string
	Objective  string
	GeneLength int
	// InitMin and InitMax bound initial gene values. Leaving both zero
	// adopts the objective's registered bounds.
	InitMin          float64
	InitMax          float64
	Population       int
	Generations      int
	Seed             int64
	Workers          int
	Selection        string
	TournamentSize   int
	MutationRate     float64
	MutationStrength float64
}

type RunSummary struct {
	RunID            string
	ArtifactsDir     string
	BestByGeneration []float64
	FinalBestFitness float64
	Champions        []model.ChampionRecord
}

type RunsRequest struct {
	Limit int
}

type RunItem struct {
	RunID            string
	CreatedAtUTC     string
	Objective        string
	Selection        string
	Seed             int64
	Population       int
	Generations      int
	Workers          int
	FinalBestFitness float64
}

type ShowRequest struct {
	RunID  string
	Latest bool
}

type HistoryRequest struct {
	RunID  string
	Latest bool
	Limit  int
}

type ChampionsRequest struct {
	RunID  string
	Latest bool
	Limit  int
}

type ExportRequest struct {
	RunID  string
	Latest bool
	OutDir string
}

type ExportSummary struct {
	RunID     string
	Directory string
}

type ObjectiveItem struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	InitMin     float64 `json:"init_min"`
	InitMax     float64 `json:"init_max"`
	// BestFitness is nil until at least one run has completed against the
	// objective.
	BestFitness *float64 `json:"best_fitness,omitempty"`
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	benchmarksDir := opts.BenchmarksDir
	if benchmarksDir == "" {
		benchmarksDir = defaultBenchmarksDir
	}
	exportsDir := opts.ExportsDir
	if exportsDir == "" {
		exportsDir = defaultExportsDir
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}

	return &Client{
		store:         store,
		benchmarksDir: benchmarksDir,
		exportsDir:    exportsDir,
		workers:       opts.Workers,
		logger:        opts.Logger,
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	_, err := c.ensureRunner(ctx)
	return err
}

func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	if req.Objective == "" {
		req.Objective = "sum"
	}
	if req.GeneLength <= 0 {
		req.GeneLength = 10
	}
	if req.Population <= 0 {
		req.Population = 100
	}
	if req.Generations <= 0 {
		req.Generations = 50
	}
	if req.Workers <= 0 {
		req.Workers = c.workers
	}
	if req.Selection == "" {
		req.Selection = "tournament"
	}
	if req.TournamentSize <= 0 {
		req.TournamentSize = 3
	}
	if req.MutationRate <= 0 {
		req.MutationRate = 0.1
	}
	if req.MutationRate > 1 {
		return RunSummary{}, errors.New("mutation rate must be in [0, 1]")
	}
	if req.MutationStrength <= 0 {
		req.MutationStrength = 0.1
	}

	selector, err := selectionFromName(req.Selection, req.TournamentSize)
	if err != nil {
		return RunSummary{}, err
	}

	runner, err := c.ensureRunner(ctx)
	if err != nil {
		return RunSummary{}, err
	}

	runID := req.RunID
	if runID == "" {
		runID = fmt.Sprintf("%s-%d-%d", req.Objective, req.Seed, time.Now().UTC().Unix())
	}

	result, err := runner.Run(ctx, platform.RunParams{
		RunID:            runID,
		Objective:        req.Objective,
		GeneLength:       req.GeneLength,
		InitMin:          req.InitMin,
		InitMax:          req.InitMax,
		PopulationSize:   req.Population,
		Generations:      req.Generations,
		Seed:             req.Seed,
		Workers:          req.Workers,
		Selection:        selector,
		Crossover:        evo.SinglePointCrossover[*genome.Vector]{},
		Mutation:         evo.GaussianMutation[*genome.Vector]{Rate: req.MutationRate, Strength: req.MutationStrength},
		TournamentSize:   req.TournamentSize,
		MutationRate:     req.MutationRate,
		MutationStrength: req.MutationStrength,
	})
	if err != nil {
		return RunSummary{}, err
	}

	runDir, err := stats.WriteRunArtifacts(c.benchmarksDir, runArtifacts(result))
	if err != nil {
		return RunSummary{}, err
	}
	if err := stats.AppendRunIndex(c.benchmarksDir, runIndexEntry(result.Record)); err != nil {
		return RunSummary{}, err
	}

	return RunSummary{
		RunID:            result.RunID,
		ArtifactsDir:     filepath.Clean(runDir),
		BestByGeneration: append([]float64(nil), result.BestByGeneration...),
		FinalBestFitness: result.FinalBest,
		Champions:        append([]model.ChampionRecord(nil), result.Champions...),
	}, nil
}

func (c *Client) Runs(_ context.Context, req RunsRequest) ([]RunItem, error) {
	if req.Limit <= 0 {
		req.Limit = 20
	}

	entries, err := stats.ListRunIndex(c.benchmarksDir)
	if err != nil {
		return nil, err
	}
	if len(entries) > req.Limit {
		entries = entries[:req.Limit]
	}

	out := make([]RunItem, 0, len(entries))
	for _, e := range entries {
		out = append(out, RunItem{
			RunID:            e.RunID,
			CreatedAtUTC:     e.CreatedAtUTC,
			Objective:        e.Objective,
			Selection:        e.Selection,
			Seed:             e.Seed,
			Population:       e.PopulationSize,
			Generations:      e.Generations,
			Workers:          e.Workers,
			FinalBestFitness: e.FinalBestFitness,
		})
	}
	return out, nil
}

func (c *Client) Show(ctx context.Context, req ShowRequest) (model.RunRecord, error) {
	if req.RunID != "" && req.Latest {
		return model.RunRecord{}, errors.New("use either run id or latest")
	}

	runID := req.RunID
	if req.Latest {
		entries, err := stats.ListRunIndex(c.benchmarksDir)
		if err != nil {
			return model.RunRecord{}, err
		}
		if len(entries) == 0 {
			return model.RunRecord{}, errors.New("no runs available")
		}
		runID = entries[0].RunID
	}
	if runID == "" {
		return model.RunRecord{}, errors.New("show requires run id or latest")
	}

	if _, err := c.ensureRunner(ctx); err != nil {
		return model.RunRecord{}, err
	}
	record, ok, err := c.store.GetRun(ctx, runID)
	if err != nil {
		return model.RunRecord{}, err
	}
	if !ok {
		return model.RunRecord{}, fmt.Errorf("run not found: %s", runID)
	}
	return record, nil
}

func (c *Client) History(ctx context.Context, req HistoryRequest) ([]float64, error) {
	if req.RunID != "" && req.Latest {
		return nil, errors.New("use either run id or latest")
	}
	if req.Limit < 0 {
		return nil, errors.New("limit must be >= 0")
	}

	runID := req.RunID
	if req.Latest {
		entries, err := stats.ListRunIndex(c.benchmarksDir)
		if err != nil {
			return nil, err
		}
		if len(entries) == 0 {
			return nil, errors.New("no runs available")
		}
		runID = entries[0].RunID
	}
	if runID == "" {
		return nil, errors.New("fitness history requires run id or latest")
	}

	if _, err := c.ensureRunner(ctx); err != nil {
		return nil, err
	}
	history, ok, err := c.store.GetFitnessHistory(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("fitness history not found for run id: %s", runID)
	}
	if req.Limit > 0 && len(history) > req.Limit {
		history = history[:req.Limit]
	}
	return append([]float64(nil), history...), nil
}

func (c *Client) Champions(ctx context.Context, req ChampionsRequest) ([]model.ChampionRecord, error) {
	if req.RunID != "" && req.Latest {
		return nil, errors.New("use either run id or latest")
	}
	if req.Limit < 0 {
		return nil, errors.New("limit must be >= 0")
	}

	runID := req.RunID
	if req.Latest {
		entries, err := stats.ListRunIndex(c.benchmarksDir)
		if err != nil {
			return nil, err
		}
		if len(entries) == 0 {
			return nil, errors.New("no runs available")
		}
		runID = entries[0].RunID
	}
	if runID == "" {
		return nil, errors.New("champions requires run id or latest")
	}

	if _, err := c.ensureRunner(ctx); err != nil {
		return nil, err
	}
	champions, ok, err := c.store.GetChampions(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("champions not found for run id: %s", runID)
	}
	if req.Limit > 0 && len(champions) > req.Limit {
		champions = champions[:req.Limit]
	}
	out := make([]model.ChampionRecord, len(champions))
	copy(out, champions)
	return out, nil
}

func (c *Client) Export(_ context.Context, req ExportRequest) (ExportSummary, error) {
	if req.RunID != "" && req.Latest {
		return ExportSummary{}, errors.New("use either run id or latest")
	}
	if req.RunID == "" && !req.Latest {
		return ExportSummary{}, errors.New("export requires run id or latest")
	}
	if req.OutDir == "" {
		req.OutDir = c.exportsDir
	}

	runID := req.RunID
	if req.Latest {
		entries, err := stats.ListRunIndex(c.benchmarksDir)
		if err != nil {
			return ExportSummary{}, err
		}
		if len(entries) == 0 {
			return ExportSummary{}, errors.New("no runs available to export")
		}
		runID = entries[0].RunID
	}

	exportedDir, err := stats.ExportRunArtifacts(c.benchmarksDir, runID, req.OutDir)
	if err != nil {
		return ExportSummary{}, err
	}
	return ExportSummary{RunID: runID, Directory: filepath.Clean(exportedDir)}, nil
}

// Objectives lists every registered objective with its stored best-ever
// fitness where one exists.
func (c *Client) Objectives(ctx context.Context) ([]ObjectiveItem, error) {
	if _, err := c.ensureRunner(ctx); err != nil {
		return nil, err
	}
	summaries, err := c.store.ListObjectiveSummaries(ctx)
	if err != nil {
		return nil, err
	}
	best := make(map[string]float64, len(summaries))
	for _, summary := range summaries {
		best[summary.Name] = summary.BestFitness
	}

	names := objective.List()
	out := make([]ObjectiveItem, 0, len(names))
	for _, name := range names {
		spec, err := objective.Resolve(name)
		if err != nil {
			return nil, err
		}
		item := ObjectiveItem{
			Name:        spec.Name,
			Description: spec.Description,
			InitMin:     spec.InitMin,
			InitMax:     spec.InitMax,
		}
		if fitness, ok := best[name]; ok {
			value := fitness
			item.BestFitness = &value
		}
		out = append(out, item)
	}
	return out, nil
}

// Reset drops all stored run data. Filesystem artifacts under the
// benchmarks directory are left in place.
func (c *Client) Reset(ctx context.Context) error {
	if _, err := c.ensureRunner(ctx); err != nil {
		return err
	}
	resetter, ok := c.store.(storage.Resetter)
	if !ok {
		return errors.New("store backend does not support reset")
	}
	return resetter.Reset(ctx)
}

func (c *Client) ensureRunner(ctx context.Context) (*platform.Runner, error) {
	if c.runner != nil {
		return c.runner, nil
	}
	if err := c.store.Init(ctx); err != nil {
		return nil, err
	}
	runner, err := platform.NewRunner(platform.Config{Store: c.store, Logger: c.logger})
	if err != nil {
		return nil, err
	}
	c.runner = runner
	return c.runner, nil
}

func runArtifacts(result platform.RunResult) stats.RunArtifacts {
	record := result.Record
	return stats.RunArtifacts{
		Config: stats.RunConfig{
			RunID:            record.RunID,
			Objective:        record.Objective,
			GeneLength:       record.GeneLength,
			InitMin:          record.InitMin,
			InitMax:          record.InitMax,
			PopulationSize:   record.PopulationSize,
			Generations:      record.Generations,
			Selection:        record.Selection,
			TournamentSize:   record.TournamentSize,
			MutationRate:     record.MutationRate,
			MutationStrength: record.MutationStrength,
			Seed:             record.Seed,
			Workers:          record.Workers,
		},
		BestByGeneration: result.BestByGeneration,
		GenerationStats:  result.Stats,
		FinalBestFitness: result.FinalBest,
		Champions:        result.Champions,
	}
}

func runIndexEntry(record model.RunRecord) stats.RunIndexEntry {
	return stats.RunIndexEntry{
		RunID:            record.RunID,
		Objective:        record.Objective,
		Selection:        record.Selection,
		PopulationSize:   record.PopulationSize,
		Generations:      record.Generations,
		Seed:             record.Seed,
		Workers:          record.Workers,
		FinalBestFitness: record.FinalBestFitness,
		CreatedAtUTC:     record.CreatedAtUTC,
	}
}

func selectionFromName(name string, tournamentSize int) (evo.SelectionStrategy[*genome.Vector], error) {
	switch name {
	case "tournament":
		return evo.TournamentSelection[*genome.Vector]{TournamentSize: tournamentSize}, nil
	case "roulette":
		return evo.RouletteSelection[*genome.Vector]{}, nil
	default:
		return nil, fmt.Errorf("unsupported selection strategy: %s", name)
	}
}
