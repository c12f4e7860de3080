package storage

import (
	"encoding/json"
	"errors"

	"anagenesis/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

// EncodeRun stamps the current schema and codec versions before marshalling,
// so callers never have to manage version fields themselves.
func EncodeRun(run model.RunRecord) ([]byte, error) {
	run.SchemaVersion = CurrentSchemaVersion
	run.CodecVersion = CurrentCodecVersion
	return json.Marshal(run)
}

func DecodeRun(data []byte) (model.RunRecord, error) {
	var run model.RunRecord
	if err := json.Unmarshal(data, &run); err != nil {
		return model.RunRecord{}, err
	}
	if err := checkVersion(run.VersionedRecord); err != nil {
		return model.RunRecord{}, err
	}
	return run, nil
}

func EncodeObjectiveSummary(summary model.ObjectiveSummary) ([]byte, error) {
	summary.SchemaVersion = CurrentSchemaVersion
	summary.CodecVersion = CurrentCodecVersion
	return json.Marshal(summary)
}

func DecodeObjectiveSummary(data []byte) (model.ObjectiveSummary, error) {
	var summary model.ObjectiveSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return model.ObjectiveSummary{}, err
	}
	if err := checkVersion(summary.VersionedRecord); err != nil {
		return model.ObjectiveSummary{}, err
	}
	return summary, nil
}

func EncodeFitnessHistory(history []float64) ([]byte, error) {
	return json.Marshal(history)
}

func DecodeFitnessHistory(data []byte) ([]float64, error) {
	var history []float64
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, err
	}
	return history, nil
}

func EncodeGenerationStats(stats []model.GenerationStats) ([]byte, error) {
	return json.Marshal(stats)
}

func DecodeGenerationStats(data []byte) ([]model.GenerationStats, error) {
	var stats []model.GenerationStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

func EncodeChampions(champions []model.ChampionRecord) ([]byte, error) {
	return json.Marshal(champions)
}

func DecodeChampions(data []byte) ([]model.ChampionRecord, error) {
	var champions []model.ChampionRecord
	if err := json.Unmarshal(data, &champions); err != nil {
		return nil, err
	}
	return champions, nil
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}
