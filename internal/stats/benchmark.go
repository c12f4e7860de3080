package stats

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gonum.org/v1/gonum/stat"
)

const benchmarkExperimentsDir = "experiments"

// BenchmarkSummary grades a single repetition's best-by-generation series.
// Passed reflects whether the final-over-initial improvement reached
// MinImprovement.
type BenchmarkSummary struct {
	RunID          string  `json:"run_id"`
	Objective      string  `json:"objective"`
	PopulationSize int     `json:"population_size"`
	Generations    int     `json:"generations"`
	Seed           int64   `json:"seed"`
	InitialBest    float64 `json:"initial_best"`
	FinalBest      float64 `json:"final_best"`
	BestMean       float64 `json:"best_mean"`
	BestStd        float64 `json:"best_std"`
	BestMax        float64 `json:"best_max"`
	BestMin        float64 `json:"best_min"`
	Improvement    float64 `json:"improvement"`
	MinImprovement float64 `json:"min_improvement"`
	Passed         bool    `json:"passed"`
}

// ExperimentReport aggregates repetitions of the same configuration run
// from consecutive seeds.
type ExperimentReport struct {
	ExperimentID   string             `json:"experiment_id"`
	Objective      string             `json:"objective"`
	Repetitions    int                `json:"repetitions"`
	BaseSeed       int64              `json:"base_seed"`
	PopulationSize int                `json:"population_size"`
	Generations    int                `json:"generations"`
	GeneratedAtUTC string             `json:"generated_at_utc"`
	RunIDs         []string           `json:"run_ids"`
	Summaries      []BenchmarkSummary `json:"summaries"`
	FinalMean      float64            `json:"final_mean"`
	FinalStd       float64            `json:"final_std"`
	FinalMin       float64            `json:"final_min"`
	FinalMax       float64            `json:"final_max"`
	PassRate       float64            `json:"pass_rate"`
}

// BuildBenchmarkSummary grades one repetition's series against the
// improvement gate. An empty series yields a failed summary with zero
// statistics.
func BuildBenchmarkSummary(cfg RunConfig, series []float64, minImprovement float64) BenchmarkSummary {
	summary := BenchmarkSummary{
		RunID:          cfg.RunID,
		Objective:      cfg.Objective,
		PopulationSize: cfg.PopulationSize,
		Generations:    cfg.Generations,
		Seed:           cfg.Seed,
		MinImprovement: minImprovement,
	}
	if len(series) == 0 {
		return summary
	}

	summary.InitialBest = series[0]
	summary.FinalBest = series[len(series)-1]
	summary.BestMean = stat.Mean(series, nil)
	if len(series) > 1 {
		summary.BestStd = stat.StdDev(series, nil)
	}
	summary.BestMin = series[0]
	summary.BestMax = series[0]
	for _, value := range series[1:] {
		if value < summary.BestMin {
			summary.BestMin = value
		}
		if value > summary.BestMax {
			summary.BestMax = value
		}
	}
	summary.Improvement = summary.FinalBest - summary.InitialBest
	summary.Passed = summary.Improvement >= minImprovement
	return summary
}

// BuildExperimentReport aggregates per-repetition summaries. Final fitness
// mean and spread come from each repetition's FinalBest.
func BuildExperimentReport(experimentID string, baseSeed int64, summaries []BenchmarkSummary) ExperimentReport {
	report := ExperimentReport{
		ExperimentID:   experimentID,
		BaseSeed:       baseSeed,
		Repetitions:    len(summaries),
		GeneratedAtUTC: time.Now().UTC().Format(time.RFC3339Nano),
		RunIDs:         make([]string, 0, len(summaries)),
		Summaries:      summaries,
	}
	if len(summaries) == 0 {
		return report
	}

	report.Objective = summaries[0].Objective
	report.PopulationSize = summaries[0].PopulationSize
	report.Generations = summaries[0].Generations

	finals := make([]float64, 0, len(summaries))
	passed := 0
	for _, summary := range summaries {
		report.RunIDs = append(report.RunIDs, summary.RunID)
		finals = append(finals, summary.FinalBest)
		if summary.Passed {
			passed++
		}
	}

	report.FinalMean = stat.Mean(finals, nil)
	if len(finals) > 1 {
		report.FinalStd = stat.StdDev(finals, nil)
	}
	report.FinalMin = finals[0]
	report.FinalMax = finals[0]
	for _, value := range finals[1:] {
		if value < report.FinalMin {
			report.FinalMin = value
		}
		if value > report.FinalMax {
			report.FinalMax = value
		}
	}
	report.PassRate = float64(passed) / float64(len(summaries))
	return report
}

func WriteExperimentReport(baseDir string, report ExperimentReport) (string, error) {
	if report.ExperimentID == "" {
		return "", fmt.Errorf("experiment id is required")
	}
	reportDir := filepath.Join(baseDir, benchmarkExperimentsDir, report.ExperimentID)
	if err := os.MkdirAll(reportDir, 0o755); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(reportDir, "report.json"), report); err != nil {
		return "", err
	}
	return reportDir, nil
}

func ReadExperimentReport(baseDir, experimentID string) (ExperimentReport, bool, error) {
	if experimentID == "" {
		return ExperimentReport{}, false, fmt.Errorf("experiment id is required")
	}
	path := filepath.Join(baseDir, benchmarkExperimentsDir, experimentID, "report.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ExperimentReport{}, false, nil
		}
		return ExperimentReport{}, false, err
	}
	var report ExperimentReport
	if err := json.Unmarshal(data, &report); err != nil {
		return ExperimentReport{}, false, err
	}
	return report, true, nil
}
