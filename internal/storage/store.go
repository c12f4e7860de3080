package storage

import (
	"context"

	"anagenesis/internal/model"
)

// Store persists run results and per-objective aggregates. Implementations
// must be safe for concurrent use after Init.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run model.RunRecord) error
	GetRun(ctx context.Context, runID string) (model.RunRecord, bool, error)
	ListRuns(ctx context.Context) ([]model.RunRecord, error)
	SaveFitnessHistory(ctx context.Context, runID string, history []float64) error
	GetFitnessHistory(ctx context.Context, runID string) ([]float64, bool, error)
	SaveGenerationStats(ctx context.Context, runID string, stats []model.GenerationStats) error
	GetGenerationStats(ctx context.Context, runID string) ([]model.GenerationStats, bool, error)
	SaveChampions(ctx context.Context, runID string, champions []model.ChampionRecord) error
	GetChampions(ctx context.Context, runID string) ([]model.ChampionRecord, bool, error)
	SaveObjectiveSummary(ctx context.Context, summary model.ObjectiveSummary) error
	GetObjectiveSummary(ctx context.Context, name string) (model.ObjectiveSummary, bool, error)
	ListObjectiveSummaries(ctx context.Context) ([]model.ObjectiveSummary, error)
}

// Resetter is implemented by backends that can drop all persisted data.
type Resetter interface {
	Reset(ctx context.Context) error
}
