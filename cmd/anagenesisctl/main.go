package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"anagenesis/internal/stats"
	"anagenesis/internal/storage"
	anaapi "anagenesis/pkg/anagenesis"
)

const (
	defaultBenchmarksDir = "benchmarks"
	defaultExportsDir    = "exports"
	defaultDBFile        = "anagenesis.db"
)

// benchmarksDir resolves the run artifact directory, honoring the
// ANAGENESIS_BENCH_DIR override.
func benchmarksDir() string {
	if v := os.Getenv("ANAGENESIS_BENCH_DIR"); v != "" {
		return v
	}
	return defaultBenchmarksDir
}

func exportsDir() string {
	if v := os.Getenv("ANAGENESIS_EXPORT_DIR"); v != "" {
		return v
	}
	return defaultExportsDir
}

func defaultDBPath() string {
	if v := os.Getenv("ANAGENESIS_DB"); v != "" {
		return v
	}
	return defaultDBFile
}

func defaultStore() string {
	if v := os.Getenv("ANAGENESIS_STORE"); v != "" {
		return v
	}
	return storage.DefaultStoreKind()
}

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "init":
		return runInit(ctx, args[1:])
	case "reset":
		return runReset(ctx, args[1:])
	case "run":
		return runRun(ctx, args[1:])
	case "benchmark":
		return runBenchmark(ctx, args[1:])
	case "profile":
		return runProfile(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	case "show":
		return runShow(ctx, args[1:])
	case "history":
		return runHistory(ctx, args[1:])
	case "champions":
		return runChampions(ctx, args[1:])
	case "objectives":
		return runObjectives(ctx, args[1:])
	case "export":
		return runExport(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func runInit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	storeKind := fs.String("store", defaultStore(), "store backend: memory|badger|sqlite")
	dbPath := fs.String("db-path", defaultDBPath(), "database path (badger directory or sqlite file)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := storage.NewStore(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = storage.CloseIfSupported(store)
	}()

	if err := store.Init(ctx); err != nil {
		return err
	}

	fmt.Printf("initialized store=%s\n", *storeKind)
	return nil
}

func runReset(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("reset", flag.ContinueOnError)
	storeKind := fs.String("store", defaultStore(), "store backend: memory|badger|sqlite")
	dbPath := fs.String("db-path", defaultDBPath(), "database path (badger directory or sqlite file)")
	yes := fs.Bool("yes", false, "confirm wiping all persisted run records")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if !*yes {
		return errors.New("reset requires --yes to confirm")
	}

	client, err := anaapi.New(anaapi.Options{
		StoreKind:     *storeKind,
		DBPath:        *dbPath,
		BenchmarksDir: benchmarksDir(),
		ExportsDir:    exportsDir(),
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Reset(ctx); err != nil {
		return err
	}

	fmt.Printf("reset store=%s\n", *storeKind)
	return nil
}

func runRun(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	configPath := fs.String("config", "", "optional run profile path (YAML or JSON)")
	profileName := fs.String("profile", "", "named profile block inside the config file")
	runID := fs.String("run-id", "", "explicit run id (optional)")
	objectiveName := fs.String("objective", "sum", "objective name (see the objectives command)")
	geneLength := fs.Int("genes", 10, "gene vector length")
	initMin := fs.Float64("init-min", 0, "initial gene lower bound (0 with init-max 0 adopts the objective's bounds)")
	initMax := fs.Float64("init-max", 0, "initial gene upper bound")
	population := fs.Int("pop", 100, "population size")
	generations := fs.Int("gens", 50, "generation count")
	seed := fs.Int64("seed", 1, "rng seed")
	workers := fs.Int("workers", 4, "worker count")
	selectionName := fs.String("selection", "tournament", "parent selection strategy: tournament|roulette")
	tournamentSize := fs.Int("tournament-size", 3, "tournament draw count")
	mutationRate := fs.Float64("mutation-rate", 0.1, "per-gene mutation probability")
	mutationStrength := fs.Float64("mutation-strength", 0.1, "gaussian mutation scale")
	storeKind := fs.String("store", defaultStore(), "store backend: memory|badger|sqlite")
	dbPath := fs.String("db-path", defaultDBPath(), "database path (badger directory or sqlite file)")
	verbose := fs.Bool("verbose", false, "log run progress")
	if err := fs.Parse(args); err != nil {
		return err
	}
	setFlags := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		setFlags[f.Name] = true
	})

	req, err := loadOrDefaultRunRequest(*configPath, *profileName)
	if err != nil {
		return err
	}
	if *configPath == "" {
		req = anaapi.RunRequest{
			RunID:            *runID,
			Objective:        *objectiveName,
			GeneLength:       *geneLength,
			InitMin:          *initMin,
			InitMax:          *initMax,
			Population:       *population,
			Generations:      *generations,
			Seed:             *seed,
			Workers:          *workers,
			Selection:        *selectionName,
			TournamentSize:   *tournamentSize,
			MutationRate:     *mutationRate,
			MutationStrength: *mutationStrength,
		}
	} else {
		overrideFromFlags(&req, setFlags, map[string]any{
			"run-id":            *runID,
			"objective":         *objectiveName,
			"genes":             *geneLength,
			"init-min":          *initMin,
			"init-max":          *initMax,
			"pop":               *population,
			"gens":              *generations,
			"seed":              *seed,
			"workers":           *workers,
			"selection":         *selectionName,
			"tournament-size":   *tournamentSize,
			"mutation-rate":     *mutationRate,
			"mutation-strength": *mutationStrength,
		})
	}

	logger, err := commandLogger(*verbose)
	if err != nil {
		return err
	}
	client, err := anaapi.New(anaapi.Options{
		StoreKind:     *storeKind,
		DBPath:        *dbPath,
		BenchmarksDir: benchmarksDir(),
		ExportsDir:    exportsDir(),
		Logger:        logger,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	runSummary, err := client.Run(ctx, req)
	if err != nil {
		return err
	}
	fmt.Printf("run completed run_id=%s objective=%s pop=%d gens=%d seed=%d\n", runSummary.RunID, req.Objective, req.Population, req.Generations, req.Seed)
	for i, best := range runSummary.BestByGeneration {
		fmt.Printf("generation=%d best_fitness=%.6f\n", i+1, best)
	}
	fmt.Printf("final_best_fitness=%.6f\n", runSummary.FinalBestFitness)
	fmt.Printf("artifacts_dir=%s\n", filepath.Clean(runSummary.ArtifactsDir))
	return nil
}

func runProfile(_ context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("profile requires a subcommand: init|show")
	}
	switch args[0] {
	case "init":
		fs := flag.NewFlagSet("profile init", flag.ContinueOnError)
		outPath := fs.String("out", "anagenesis.yaml", "starter profile path")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if _, err := os.Stat(*outPath); err == nil {
			return fmt.Errorf("profile already exists: %s", *outPath)
		}
		if err := writeStarterProfile(*outPath); err != nil {
			return err
		}
		fmt.Printf("profile written path=%s\n", *outPath)
		return nil
	case "show":
		fs := flag.NewFlagSet("profile show", flag.ContinueOnError)
		configPath := fs.String("config", "", "run profile path (YAML or JSON)")
		profileName := fs.String("profile", "", "named profile block inside the config file")
		asJSON := fs.Bool("json", false, "print resolved request as JSON")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if *configPath == "" {
			return errors.New("profile show requires --config")
		}
		req, err := loadRunProfile(*configPath, *profileName)
		if err != nil {
			return err
		}
		if *asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(req)
		}
		fmt.Printf("objective=%s genes=%d init_min=%g init_max=%g pop=%d gens=%d seed=%d workers=%d selection=%s tournament_size=%d mutation_rate=%g mutation_strength=%g\n",
			req.Objective,
			req.GeneLength,
			req.InitMin,
			req.InitMax,
			req.Population,
			req.Generations,
			req.Seed,
			req.Workers,
			req.Selection,
			req.TournamentSize,
			req.MutationRate,
			req.MutationStrength,
		)
		return nil
	default:
		return fmt.Errorf("unsupported profile subcommand: %s", args[0])
	}
}

func runRuns(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	limit := fs.Int("limit", 20, "max runs to list")
	jsonOut := fs.Bool("json", false, "emit runs list as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *limit <= 0 {
		return errors.New("limit must be > 0")
	}

	entries, err := stats.ListRunIndex(benchmarksDir())
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	if len(entries) > *limit {
		entries = entries[:*limit]
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	for _, e := range entries {
		fmt.Printf("run_id=%s created_at=%s objective=%s selection=%s seed=%d pop=%d gens=%d workers=%d final_best_fitness=%.6f\n",
			e.RunID,
			e.CreatedAtUTC,
			e.Objective,
			e.Selection,
			e.Seed,
			e.PopulationSize,
			e.Generations,
			e.Workers,
			e.FinalBestFitness,
		)
	}
	return nil
}

func runShow(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "show the most recent run from run index")
	jsonOut := fs.Bool("json", false, "emit run record as JSON")
	storeKind := fs.String("store", defaultStore(), "store backend: memory|badger|sqlite")
	dbPath := fs.String("db-path", defaultDBPath(), "database path (badger directory or sqlite file)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID != "" && *latest {
		return errors.New("use either --run-id or --latest, not both")
	}
	if *runID == "" && !*latest {
		return errors.New("show requires --run-id or --latest")
	}

	client, err := anaapi.New(anaapi.Options{
		StoreKind:     *storeKind,
		DBPath:        *dbPath,
		BenchmarksDir: benchmarksDir(),
		ExportsDir:    exportsDir(),
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	record, err := client.Show(ctx, anaapi.ShowRequest{
		RunID:  *runID,
		Latest: *latest,
	})
	if err != nil {
		return err
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(record)
	}

	fmt.Printf("run_id=%s objective=%s selection=%s genes=%d init_min=%g init_max=%g pop=%d gens=%d tournament_size=%d mutation_rate=%g mutation_strength=%g workers=%d seed=%d final_best_fitness=%.6f created_at=%s\n",
		record.RunID,
		record.Objective,
		record.Selection,
		record.GeneLength,
		record.InitMin,
		record.InitMax,
		record.PopulationSize,
		record.Generations,
		record.TournamentSize,
		record.MutationRate,
		record.MutationStrength,
		record.Workers,
		record.Seed,
		record.FinalBestFitness,
		record.CreatedAtUTC,
	)
	return nil
}

func runHistory(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "show fitness history for the most recent run from run index")
	limit := fs.Int("limit", 50, "max generations to print (0 for all)")
	jsonOut := fs.Bool("json", false, "emit fitness history as JSON")
	storeKind := fs.String("store", defaultStore(), "store backend: memory|badger|sqlite")
	dbPath := fs.String("db-path", defaultDBPath(), "database path (badger directory or sqlite file)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID != "" && *latest {
		return errors.New("use either --run-id or --latest, not both")
	}
	if *runID == "" && !*latest {
		return errors.New("history requires --run-id or --latest")
	}

	client, err := anaapi.New(anaapi.Options{
		StoreKind:     *storeKind,
		DBPath:        *dbPath,
		BenchmarksDir: benchmarksDir(),
		ExportsDir:    exportsDir(),
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	history, err := client.History(ctx, anaapi.HistoryRequest{
		RunID:  *runID,
		Latest: *latest,
		Limit:  *limit,
	})
	if err != nil {
		return err
	}
	if len(history) == 0 {
		fmt.Println("no fitness history")
		return nil
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(history)
	}

	for i, best := range history {
		fmt.Printf("generation=%d best_fitness=%.6f\n", i+1, best)
	}
	return nil
}

func runChampions(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("champions", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "show champions for the most recent run from run index")
	limit := fs.Int("limit", 5, "max champions to print (0 for all)")
	jsonOut := fs.Bool("json", false, "emit champions as JSON")
	storeKind := fs.String("store", defaultStore(), "store backend: memory|badger|sqlite")
	dbPath := fs.String("db-path", defaultDBPath(), "database path (badger directory or sqlite file)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID != "" && *latest {
		return errors.New("use either --run-id or --latest, not both")
	}
	if *runID == "" && !*latest {
		return errors.New("champions requires --run-id or --latest")
	}

	client, err := anaapi.New(anaapi.Options{
		StoreKind:     *storeKind,
		DBPath:        *dbPath,
		BenchmarksDir: benchmarksDir(),
		ExportsDir:    exportsDir(),
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	champions, err := client.Champions(ctx, anaapi.ChampionsRequest{
		RunID:  *runID,
		Latest: *latest,
		Limit:  *limit,
	})
	if err != nil {
		return err
	}
	if len(champions) == 0 {
		fmt.Println("no champions")
		return nil
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(champions)
	}

	for _, item := range champions {
		fmt.Printf("rank=%d fitness=%.6f gene_length=%d\n", item.Rank, item.Fitness, len(item.Genes))
	}
	return nil
}

func runObjectives(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("objectives", flag.ContinueOnError)
	jsonOut := fs.Bool("json", false, "emit objectives as JSON")
	storeKind := fs.String("store", defaultStore(), "store backend: memory|badger|sqlite")
	dbPath := fs.String("db-path", defaultDBPath(), "database path (badger directory or sqlite file)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := anaapi.New(anaapi.Options{
		StoreKind:     *storeKind,
		DBPath:        *dbPath,
		BenchmarksDir: benchmarksDir(),
		ExportsDir:    exportsDir(),
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	items, err := client.Objectives(ctx)
	if err != nil {
		return err
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	}

	for _, item := range items {
		bestDisplay := "n/a"
		if item.BestFitness != nil {
			bestDisplay = fmt.Sprintf("%.6f", *item.BestFitness)
		}
		fmt.Printf("objective=%s init_min=%g init_max=%g best_fitness=%s description=%s\n",
			item.Name,
			item.InitMin,
			item.InitMax,
			bestDisplay,
			item.Description,
		)
	}
	return nil
}

func runExport(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "export the most recent run from run index")
	outDir := fs.String("out", exportsDir(), "export output directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID != "" && *latest {
		return errors.New("use either --run-id or --latest, not both")
	}
	if *runID == "" && !*latest {
		return errors.New("export requires --run-id or --latest")
	}
	if *latest {
		entries, err := stats.ListRunIndex(benchmarksDir())
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return errors.New("no runs available to export")
		}
		*runID = entries[0].RunID
	}

	exportedDir, err := stats.ExportRunArtifacts(benchmarksDir(), *runID, *outDir)
	if err != nil {
		return err
	}

	fmt.Printf("exported run_id=%s to=%s\n", *runID, filepath.Clean(exportedDir))
	return nil
}

// commandLogger builds the run logger. Non-verbose commands pass nil and
// the client substitutes a no-op logger.
func commandLogger(verbose bool) (*zap.Logger, error) {
	if !verbose {
		return nil, nil
	}
	return zap.NewDevelopment()
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: anagenesisctl <init|reset|run|benchmark|profile|runs|show|history|champions|objectives|export> [flags]", msg)
}
