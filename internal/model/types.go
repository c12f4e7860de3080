package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// RunRecord is the durable summary of one evolution run.
type RunRecord struct {
	VersionedRecord
	RunID            string  `json:"run_id"`
	Objective        string  `json:"objective"`
	Selection        string  `json:"selection"`
	GeneLength       int     `json:"gene_length"`
	InitMin          float64 `json:"init_min"`
	InitMax          float64 `json:"init_max"`
	PopulationSize   int     `json:"population_size"`
	Generations      int     `json:"generations"`
	TournamentSize   int     `json:"tournament_size"`
	MutationRate     float64 `json:"mutation_rate"`
	MutationStrength float64 `json:"mutation_strength"`
	Workers          int     `json:"workers"`
	Seed             int64   `json:"seed"`
	FinalBestFitness float64 `json:"final_best_fitness"`
	CreatedAtUTC     string  `json:"created_at_utc"`
}

type GenerationStats struct {
	Generation  int     `json:"generation"`
	BestFitness float64 `json:"best_fitness"`
	MeanFitness float64 `json:"mean_fitness"`
	MinFitness  float64 `json:"min_fitness"`
}

type ChampionRecord struct {
	Rank    int       `json:"rank"`
	Fitness float64   `json:"fitness"`
	Genes   []float64 `json:"genes"`
}

type ObjectiveSummary struct {
	VersionedRecord
	Name        string  `json:"name"`
	Description string  `json:"description"`
	BestFitness float64 `json:"best_fitness"`
}
