// Package config provides configuration loading and management for dicomseg.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Segmentation parameters
	Segmentation struct {
		// Type selects the segmentation type, either BINARY or FRACTIONAL
		Type string `yaml:"type"`

		// FractionalType states how fractional values are interpreted,
		// either PROBABILITY or OCCUPANCY
		FractionalType string `yaml:"fractionalType"`

		// MaxFractionalValue is the stored sample value representing a
		// fraction of 1 for fractional segmentations
		MaxFractionalValue int `yaml:"maxFractionalValue"`

		// Encoding names the registered frame codec used for encapsulated
		// per-frame encoding, or empty for the raw scheme
		Encoding string `yaml:"encoding"`
	} `yaml:"segmentation"`

	// Query parameters
	Query struct {
		// ErrorOnMissing turns queries for sources or frames without stored
		// frames into errors instead of empty output
		ErrorOnMissing bool `yaml:"errorOnMissing"`

		// AssertLocationsPreserved overrides the refusal to index by source
		// frame when spatial preservation is unknown
		AssertLocationsPreserved bool `yaml:"assertLocationsPreserved"`
	} `yaml:"query"`

	// Output parameters
	Output struct {
		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// Set default segmentation parameters
	cfg.Segmentation.Type = "BINARY"
	cfg.Segmentation.FractionalType = "PROBABILITY"
	cfg.Segmentation.MaxFractionalValue = 255
	cfg.Segmentation.Encoding = ""

	// Set default query parameters
	cfg.Query.ErrorOnMissing = false
	cfg.Query.AssertLocationsPreserved = false

	// Set default output parameters
	cfg.Output.Verbose = true

	return cfg
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	// Marshal config to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
