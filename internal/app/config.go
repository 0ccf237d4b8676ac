package app

import (
	"errors"
	"fmt"
	"slices"
)

// StdinSource names standard input in Config.Inputs.
const StdinSource = "-"

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	Inputs    []string // prefix files, one decoding session each
	RulesPath string   // optional HCL rules file

	Format    string
	LogFormat string
	LogLevel  string
	Workers   int
	CacheSize int
	KeepGoing bool
}

func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.Inputs) == 0 {
		cfg.Inputs = []string{StdinSource}
	}
	if n := countOf(cfg.Inputs, StdinSource); n > 1 {
		return nil, fmt.Errorf("standard input can only be read once, got %d %q inputs", n, StdinSource)
	}
	if cfg.Format == "" {
		cfg.Format = FormatText
	}
	if !slices.Contains([]string{FormatText, FormatJSON, FormatYAML}, cfg.Format) {
		return nil, fmt.Errorf("invalid format %q: must be 'text', 'json' or 'yaml'", cfg.Format)
	}
	if cfg.Workers <= 0 {
		return nil, errors.New("workers must be greater than zero")
	}
	if cfg.CacheSize < 0 {
		return nil, errors.New("cache size must not be negative")
	}

	return &cfg, nil
}

func countOf(values []string, v string) int {
	n := 0
	for _, s := range values {
		if s == v {
			n++
		}
	}
	return n
}
