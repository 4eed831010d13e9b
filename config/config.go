// Package config loads runner configuration from environment variables.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Runner holds the scenario runner settings. Command-line flags override
// whatever the environment provides.
type Runner struct {
	Seed        int64  `env:"DICECORE_SEED"`
	RulesDir    string `env:"DICECORE_RULES"`
	JournalPath string `env:"DICECORE_JOURNAL"`
	Session     string `env:"DICECORE_SESSION"`
	Verbose     bool   `env:"DICECORE_VERBOSE"`
	Plain       bool   `env:"DICECORE_PLAIN"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadRunner parses a Runner from the environment.
func LoadRunner() (Runner, error) {
	var cfg Runner
	if err := ParseEnv(&cfg); err != nil {
		return Runner{}, err
	}
	return cfg, nil
}
