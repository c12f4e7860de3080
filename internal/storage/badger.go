package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/dgraph-io/badger/v4"

	"anagenesis/internal/model"
)

const (
	runKeyPrefix       = "run/"
	historyKeyPrefix   = "history/"
	statsKeyPrefix     = "stats/"
	championsKeyPrefix = "champions/"
	objectiveKeyPrefix = "objective/"
)

// BadgerStore is the default persistent backend. Records are stored as JSON
// values under prefixed keys in a single Badger directory.
type BadgerStore struct {
	path string

	mu sync.RWMutex
	db *badger.DB
}

func NewBadgerStore(path string) *BadgerStore {
	return &BadgerStore{path: path}
}

func (s *BadgerStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("badger path is required")
	}
	if s.db != nil {
		return nil
	}

	if err := os.MkdirAll(s.path, 0o750); err != nil {
		return fmt.Errorf("create badger directory %s: %w", s.path, err)
	}

	opts := badger.DefaultOptions(s.path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return fmt.Errorf("open badger database: %w", err)
	}

	s.db = db
	return nil
}

func (s *BadgerStore) SaveRun(_ context.Context, run model.RunRecord) error {
	payload, err := EncodeRun(run)
	if err != nil {
		return err
	}
	return s.put(runKeyPrefix+run.RunID, payload)
}

func (s *BadgerStore) GetRun(_ context.Context, runID string) (model.RunRecord, bool, error) {
	payload, ok, err := s.get(runKeyPrefix + runID)
	if err != nil || !ok {
		return model.RunRecord{}, false, err
	}

	run, err := DecodeRun(payload)
	if err != nil {
		return model.RunRecord{}, false, fmt.Errorf("decode run %s: %w", runID, err)
	}
	return run, true, nil
}

func (s *BadgerStore) ListRuns(_ context.Context) ([]model.RunRecord, error) {
	payloads, err := s.scan(runKeyPrefix)
	if err != nil {
		return nil, err
	}

	runs := make([]model.RunRecord, 0, len(payloads))
	for _, payload := range payloads {
		run, err := DecodeRun(payload)
		if err != nil {
			return nil, fmt.Errorf("decode run listing: %w", err)
		}
		runs = append(runs, run)
	}
	sortRunsNewestFirst(runs)
	return runs, nil
}

func (s *BadgerStore) SaveFitnessHistory(_ context.Context, runID string, history []float64) error {
	payload, err := EncodeFitnessHistory(history)
	if err != nil {
		return err
	}
	return s.put(historyKeyPrefix+runID, payload)
}

func (s *BadgerStore) GetFitnessHistory(_ context.Context, runID string) ([]float64, bool, error) {
	payload, ok, err := s.get(historyKeyPrefix + runID)
	if err != nil || !ok {
		return nil, false, err
	}

	history, err := DecodeFitnessHistory(payload)
	if err != nil {
		return nil, false, fmt.Errorf("decode fitness history %s: %w", runID, err)
	}
	return history, true, nil
}

func (s *BadgerStore) SaveGenerationStats(_ context.Context, runID string, stats []model.GenerationStats) error {
	payload, err := EncodeGenerationStats(stats)
	if err != nil {
		return err
	}
	return s.put(statsKeyPrefix+runID, payload)
}

func (s *BadgerStore) GetGenerationStats(_ context.Context, runID string) ([]model.GenerationStats, bool, error) {
	payload, ok, err := s.get(statsKeyPrefix + runID)
	if err != nil || !ok {
		return nil, false, err
	}

	stats, err := DecodeGenerationStats(payload)
	if err != nil {
		return nil, false, fmt.Errorf("decode generation stats %s: %w", runID, err)
	}
	return stats, true, nil
}

func (s *BadgerStore) SaveChampions(_ context.Context, runID string, champions []model.ChampionRecord) error {
	payload, err := EncodeChampions(champions)
	if err != nil {
		return err
	}
	return s.put(championsKeyPrefix+runID, payload)
}

func (s *BadgerStore) GetChampions(_ context.Context, runID string) ([]model.ChampionRecord, bool, error) {
	payload, ok, err := s.get(championsKeyPrefix + runID)
	if err != nil || !ok {
		return nil, false, err
	}

	champions, err := DecodeChampions(payload)
	if err != nil {
		return nil, false, fmt.Errorf("decode champions %s: %w", runID, err)
	}
	return champions, true, nil
}

func (s *BadgerStore) SaveObjectiveSummary(_ context.Context, summary model.ObjectiveSummary) error {
	payload, err := EncodeObjectiveSummary(summary)
	if err != nil {
		return err
	}
	return s.put(objectiveKeyPrefix+summary.Name, payload)
}

func (s *BadgerStore) GetObjectiveSummary(_ context.Context, name string) (model.ObjectiveSummary, bool, error) {
	payload, ok, err := s.get(objectiveKeyPrefix + name)
	if err != nil || !ok {
		return model.ObjectiveSummary{}, false, err
	}

	summary, err := DecodeObjectiveSummary(payload)
	if err != nil {
		return model.ObjectiveSummary{}, false, fmt.Errorf("decode objective summary %s: %w", name, err)
	}
	return summary, true, nil
}

func (s *BadgerStore) ListObjectiveSummaries(_ context.Context) ([]model.ObjectiveSummary, error) {
	payloads, err := s.scan(objectiveKeyPrefix)
	if err != nil {
		return nil, err
	}

	summaries := make([]model.ObjectiveSummary, 0, len(payloads))
	for _, payload := range payloads {
		summary, err := DecodeObjectiveSummary(payload)
		if err != nil {
			return nil, fmt.Errorf("decode objective summary listing: %w", err)
		}
		summaries = append(summaries, summary)
	}
	// Prefix iteration already yields key order, which is name order here.
	return summaries, nil
}

func (s *BadgerStore) Reset(_ context.Context) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}
	return db.DropAll()
}

func (s *BadgerStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *BadgerStore) put(key string, payload []byte) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	return db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), payload)
	})
}

func (s *BadgerStore) get(key string) ([]byte, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, false, err
	}

	var payload []byte
	err = db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			payload = append([]byte(nil), val...)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return payload, true, nil
}

func (s *BadgerStore) scan(prefix string) ([][]byte, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	var payloads [][]byte
	err = db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				payloads = append(payloads, append([]byte(nil), val...))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payloads, nil
}

func (s *BadgerStore) getDB() (*badger.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errors.New("store is not initialized")
	}
	return s.db, nil
}
