package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	anaapi "anagenesis/pkg/anagenesis"
)

// loadRunProfile reads a run request from a config file. Top-level keys
// form the base request; a named block under profiles overlays it.
func loadRunProfile(path, name string) (anaapi.RunRequest, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return anaapi.RunRequest{}, fmt.Errorf("read profile %s: %w", path, err)
	}

	var req anaapi.RunRequest
	applyProfileKeys(&req, v)
	if name != "" {
		sub := v.Sub("profiles." + name)
		if sub == nil {
			return anaapi.RunRequest{}, fmt.Errorf("profile not found in %s: %s", path, name)
		}
		applyProfileKeys(&req, sub)
	}
	return req, nil
}

func applyProfileKeys(req *anaapi.RunRequest, v *viper.Viper) {
	if v.IsSet("run_id") {
		req.RunID = v.GetString("run_id")
	}
	if v.IsSet("objective") {
		req.Objective = v.GetString("objective")
	}
	if v.IsSet("gene_length") {
		req.GeneLength = v.GetInt("gene_length")
	}
	if v.IsSet("init_min") {
		req.InitMin = v.GetFloat64("init_min")
	}
	if v.IsSet("init_max") {
		req.InitMax = v.GetFloat64("init_max")
	}
	if v.IsSet("population") {
		req.Population = v.GetInt("population")
	}
	if v.IsSet("generations") {
		req.Generations = v.GetInt("generations")
	}
	if v.IsSet("seed") {
		req.Seed = v.GetInt64("seed")
	}
	if v.IsSet("workers") {
		req.Workers = v.GetInt("workers")
	}
	if v.IsSet("selection") {
		req.Selection = v.GetString("selection")
	}
	if v.IsSet("tournament_size") {
		req.TournamentSize = v.GetInt("tournament_size")
	}
	if v.IsSet("mutation_rate") {
		req.MutationRate = v.GetFloat64("mutation_rate")
	}
	if v.IsSet("mutation_strength") {
		req.MutationStrength = v.GetFloat64("mutation_strength")
	}
}

func loadOrDefaultRunRequest(configPath, profileName string) (anaapi.RunRequest, error) {
	if configPath == "" {
		if profileName != "" {
			return anaapi.RunRequest{}, errors.New("profile requires --config")
		}
		return anaapi.RunRequest{}, nil
	}
	req, err := loadRunProfile(configPath, profileName)
	if err != nil {
		return anaapi.RunRequest{}, fmt.Errorf("load config: %w", err)
	}
	return req, nil
}

// overrideFromFlags applies explicitly set command-line flags on top of a
// file-sourced request. Unset flags keep the file's values.
func overrideFromFlags(req *anaapi.RunRequest, setFlags map[string]bool, flagValue map[string]any) {
	for name, value := range flagValue {
		if !setFlags[name] {
			continue
		}
		switch v := value.(type) {
		case string:
			switch name {
			case "run-id":
				req.RunID = v
			case "objective":
				req.Objective = v
			case "selection":
				req.Selection = v
			}
		case int:
			switch name {
			case "genes":
				req.GeneLength = v
			case "pop":
				req.Population = v
			case "gens":
				req.Generations = v
			case "workers":
				req.Workers = v
			case "tournament-size":
				req.TournamentSize = v
			}
		case int64:
			if name == "seed" {
				req.Seed = v
			}
		case float64:
			switch name {
			case "init-min":
				req.InitMin = v
			case "init-max":
				req.InitMax = v
			case "mutation-rate":
				req.MutationRate = v
			case "mutation-strength":
				req.MutationStrength = v
			}
		}
	}
	if req.Objective == "" {
		req.Objective = "sum"
	}
}

type profileSpec struct {
	Objective        string  `yaml:"objective,omitempty"`
	GeneLength       int     `yaml:"gene_length,omitempty"`
	InitMin          float64 `yaml:"init_min,omitempty"`
	InitMax          float64 `yaml:"init_max,omitempty"`
	Population       int     `yaml:"population,omitempty"`
	Generations      int     `yaml:"generations,omitempty"`
	Seed             int64   `yaml:"seed,omitempty"`
	Workers          int     `yaml:"workers,omitempty"`
	Selection        string  `yaml:"selection,omitempty"`
	TournamentSize   int     `yaml:"tournament_size,omitempty"`
	MutationRate     float64 `yaml:"mutation_rate,omitempty"`
	MutationStrength float64 `yaml:"mutation_strength,omitempty"`
}

type profileFile struct {
	profileSpec `yaml:",inline"`
	Profiles    map[string]profileSpec `yaml:"profiles,omitempty"`
}

// writeStarterProfile emits a starter config with one reduced "quick"
// profile for smoke runs.
func writeStarterProfile(path string) error {
	starter := profileFile{
		profileSpec: profileSpec{
			Objective:        "sphere",
			GeneLength:       10,
			Population:       100,
			Generations:      50,
			Seed:             1,
			Workers:          4,
			Selection:        "tournament",
			TournamentSize:   3,
			MutationRate:     0.1,
			MutationStrength: 0.1,
		},
		Profiles: map[string]profileSpec{
			"quick": {
				Population:  30,
				Generations: 10,
			},
		},
	}
	data, err := yaml.Marshal(starter)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
