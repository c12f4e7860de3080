package storage

import (
	"context"
	"sort"
	"sync"

	"anagenesis/internal/model"
)

type MemoryStore struct {
	mu         sync.RWMutex
	runs       map[string]model.RunRecord
	history    map[string][]float64
	stats      map[string][]model.GenerationStats
	champions  map[string][]model.ChampionRecord
	objectives map[string]model.ObjectiveSummary
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs = make(map[string]model.RunRecord)
	s.history = make(map[string][]float64)
	s.stats = make(map[string][]model.GenerationStats)
	s.champions = make(map[string][]model.ChampionRecord)
	s.objectives = make(map[string]model.ObjectiveSummary)
	return nil
}

func (s *MemoryStore) SaveRun(_ context.Context, run model.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	run.SchemaVersion = CurrentSchemaVersion
	run.CodecVersion = CurrentCodecVersion
	s.runs[run.RunID] = run
	return nil
}

func (s *MemoryStore) GetRun(_ context.Context, runID string) (model.RunRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[runID]
	return run, ok, nil
}

func (s *MemoryStore) ListRuns(_ context.Context) ([]model.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]model.RunRecord, 0, len(s.runs))
	for _, run := range s.runs {
		runs = append(runs, run)
	}
	sortRunsNewestFirst(runs)
	return runs, nil
}

func (s *MemoryStore) SaveFitnessHistory(_ context.Context, runID string, history []float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := append([]float64(nil), history...)
	s.history[runID] = copied
	return nil
}

func (s *MemoryStore) GetFitnessHistory(_ context.Context, runID string) ([]float64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.history[runID]
	if !ok {
		return nil, false, nil
	}
	copied := append([]float64(nil), history...)
	return copied, true, nil
}

func (s *MemoryStore) SaveGenerationStats(_ context.Context, runID string, stats []model.GenerationStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]model.GenerationStats, len(stats))
	copy(copied, stats)
	s.stats[runID] = copied
	return nil
}

func (s *MemoryStore) GetGenerationStats(_ context.Context, runID string) ([]model.GenerationStats, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats, ok := s.stats[runID]
	if !ok {
		return nil, false, nil
	}
	copied := make([]model.GenerationStats, len(stats))
	copy(copied, stats)
	return copied, true, nil
}

func (s *MemoryStore) SaveChampions(_ context.Context, runID string, champions []model.ChampionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.champions[runID] = copyChampions(champions)
	return nil
}

func (s *MemoryStore) GetChampions(_ context.Context, runID string) ([]model.ChampionRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	champions, ok := s.champions[runID]
	if !ok {
		return nil, false, nil
	}
	return copyChampions(champions), true, nil
}

func (s *MemoryStore) SaveObjectiveSummary(_ context.Context, summary model.ObjectiveSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	summary.SchemaVersion = CurrentSchemaVersion
	summary.CodecVersion = CurrentCodecVersion
	s.objectives[summary.Name] = summary
	return nil
}

func (s *MemoryStore) GetObjectiveSummary(_ context.Context, name string) (model.ObjectiveSummary, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary, ok := s.objectives[name]
	return summary, ok, nil
}

func (s *MemoryStore) ListObjectiveSummaries(_ context.Context) ([]model.ObjectiveSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]model.ObjectiveSummary, 0, len(s.objectives))
	for _, summary := range s.objectives {
		summaries = append(summaries, summary)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Name < summaries[j].Name
	})
	return summaries, nil
}

func (s *MemoryStore) Reset(ctx context.Context) error {
	return s.Init(ctx)
}

// copyChampions deep-copies the gene slices so stored records stay isolated
// from caller mutation.
func copyChampions(champions []model.ChampionRecord) []model.ChampionRecord {
	copied := make([]model.ChampionRecord, 0, len(champions))
	for _, champion := range champions {
		copied = append(copied, model.ChampionRecord{
			Rank:    champion.Rank,
			Fitness: champion.Fitness,
			Genes:   append([]float64(nil), champion.Genes...),
		})
	}
	return copied
}

func sortRunsNewestFirst(runs []model.RunRecord) {
	sort.Slice(runs, func(i, j int) bool {
		if runs[i].CreatedAtUTC != runs[j].CreatedAtUTC {
			return runs[i].CreatedAtUTC > runs[j].CreatedAtUTC
		}
		return runs[i].RunID < runs[j].RunID
	})
}
