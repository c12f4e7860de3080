package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"anagenesis/internal/stats"
	anaapi "anagenesis/pkg/anagenesis"
)

// runBenchmark executes one run configuration repeatedly, each repetition
// with its own derived seed, then aggregates the outcomes into an
// experiment report under the benchmarks directory.
func runBenchmark(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("benchmark", flag.ContinueOnError)
	experimentID := fs.String("id", "", "experiment id (derived from objective and time when empty)")
	configPath := fs.String("config", "", "optional run profile path (YAML or JSON)")
	profileName := fs.String("profile", "", "named profile block inside the config file")
	objectiveName := fs.String("objective", "sum", "objective name (see the objectives command)")
	geneLength := fs.Int("genes", 10, "gene vector length")
	initMin := fs.Float64("init-min", 0, "initial gene lower bound (0 with init-max 0 adopts the objective's bounds)")
	initMax := fs.Float64("init-max", 0, "initial gene upper bound")
	population := fs.Int("pop", 100, "population size")
	generations := fs.Int("gens", 50, "generation count")
	seed := fs.Int64("seed", 1, "base rng seed; repetition r runs with seed+r")
	workers := fs.Int("workers", 4, "worker count")
	selectionName := fs.String("selection", "tournament", "parent selection strategy: tournament|roulette")
	tournamentSize := fs.Int("tournament-size", 3, "tournament draw count")
	mutationRate := fs.Float64("mutation-rate", 0.1, "per-gene mutation probability")
	mutationStrength := fs.Float64("mutation-strength", 0.1, "gaussian mutation scale")
	reps := fs.Int("reps", 5, "repetition count")
	parallel := fs.Int("parallel", 1, "max repetitions in flight")
	minImprovement := fs.Float64("min-improvement", 0.001, "minimum expected fitness improvement")
	storeKind := fs.String("store", defaultStore(), "store backend: memory|badger|sqlite")
	dbPath := fs.String("db-path", defaultDBPath(), "database path (badger directory or sqlite file)")
	jsonOut := fs.Bool("json", false, "emit experiment report as JSON")
	verbose := fs.Bool("verbose", false, "log run progress")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *reps <= 0 {
		return errors.New("reps must be > 0")
	}
	concurrency := *parallel
	if concurrency <= 0 {
		concurrency = 1
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

	expID := strings.TrimSpace(*experimentID)
	if expID == "" {
		expID = fmt.Sprintf("%s-%d", req.Objective, time.Now().UTC().Unix())
	}
	if report, ok, err := stats.ReadExperimentReport(benchmarksDir(), expID); err != nil {
		return err
	} else if ok {
		return fmt.Errorf("experiment already exists: %s (repetitions=%d)", report.ExperimentID, report.Repetitions)
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

	summaries := make([]stats.BenchmarkSummary, *reps)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for rep := 0; rep < *reps; rep++ {
		rep := rep
		g.Go(func() error {
			repReq := req
			repReq.RunID = fmt.Sprintf("%s-rep-%03d", expID, rep+1)
			repReq.Seed = req.Seed + int64(rep)

			runSummary, err := client.Run(gctx, repReq)
			if err != nil {
				return fmt.Errorf("repetition %d: %w", rep+1, err)
			}
			cfg, ok, err := stats.ReadRunConfig(benchmarksDir(), runSummary.RunID)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("run config not found for run id: %s", runSummary.RunID)
			}

			summary := stats.BuildBenchmarkSummary(cfg, runSummary.BestByGeneration, *minImprovement)
			if err := stats.WriteBenchmarkSummary(runSummary.ArtifactsDir, summary); err != nil {
				return err
			}
			if err := stats.WriteBenchmarkSeries(runSummary.ArtifactsDir, runSummary.BestByGeneration); err != nil {
				return err
			}
			summaries[rep] = summary
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	report := stats.BuildExperimentReport(expID, req.Seed, summaries)
	reportDir, err := stats.WriteExperimentReport(benchmarksDir(), report)
	if err != nil {
		return err
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	for rep, summary := range summaries {
		fmt.Printf("repetition=%d run_id=%s seed=%d initial_best=%.6f final_best=%.6f improvement=%.6f passed=%t\n",
			rep+1,
			summary.RunID,
			summary.Seed,
			summary.InitialBest,
			summary.FinalBest,
			summary.Improvement,
			summary.Passed,
		)
	}
	fmt.Printf("benchmark id=%s objective=%s reps=%d final_mean=%.6f final_std=%.6f final_min=%.6f final_max=%.6f pass_rate=%.2f\n",
		report.ExperimentID,
		report.Objective,
		report.Repetitions,
		report.FinalMean,
		report.FinalStd,
		report.FinalMin,
		report.FinalMax,
		report.PassRate,
	)
	fmt.Printf("experiment_report=%s\n", filepath.Join(reportDir, "report.json"))
	return nil
}
