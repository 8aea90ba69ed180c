package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the application's configuration. Secrets (JWT secret,
// master encryption key) come from the environment, not from this file.
type Config struct {
	Database struct {
		URL string `yaml:"url"`
	} `yaml:"database"`
	StealthWindow struct {
		URL             string `yaml:"url"`
		DurationMinutes int64  `yaml:"duration_minutes"`
	} `yaml:"stealth_window"`
	Verification struct {
		// Minimum completed identity checks required before any escape
		// action. Shared by all actions; change it for all or none.
		Minimum int `yaml:"minimum"`
	} `yaml:"verification"`
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
}

// LoadConfig reads configuration from the specified YAML file.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	if config.Verification.Minimum == 0 {
		config.Verification.Minimum = 2
	}

	return config, nil
}
