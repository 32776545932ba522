// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Analysis AnalysisConfig `toml:"analysis"`
	Weights  WeightsConfig  `toml:"weights"`
}

// AnalysisConfig maps analysis-related settings.
type AnalysisConfig struct {
	Mode        *string  `toml:"mode"`
	Sensitivity *float64 `toml:"sensitivity"`
	Outliers    *bool    `toml:"outliers"`
}

// WeightsConfig maps the default difficulty weights.
type WeightsConfig struct {
	Digits     *float64 `toml:"digits"`
	Carryovers *float64 `toml:"carryovers"`
	Zeros      *float64 `toml:"zeros"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
