// Package config loads the YAML configuration of the kdknn command.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Modes accepted by the predict command.
const (
	ModeClassify = "classify"
	ModeRegress  = "regress"
)

// Config mirrors the command-line flags. Flags set on the command line
// override values read from a file.
type Config struct {
	Train    string  `yaml:"train"`
	Test     string  `yaml:"test"`
	Out      string  `yaml:"out,omitempty"`
	K        int     `yaml:"k"`
	P        float64 `yaml:"p"`
	Mode     string  `yaml:"mode"`
	Labeled  bool    `yaml:"labeled,omitempty"`
	Workers  int     `yaml:"workers,omitempty"`
	LogLevel string  `yaml:"log_level"`

	Limits LimitsConfig `yaml:"limits,omitempty"`
}

// LimitsConfig holds the shared resource limits.
type LimitsConfig struct {
	MemoryBytes      int64   `yaml:"memory_bytes,omitempty"`
	SearchWorkers    int64   `yaml:"search_workers,omitempty"`
	QueriesPerSecond float64 `yaml:"queries_per_second,omitempty"`
	QueryBurst       int     `yaml:"query_burst,omitempty"`
}

// Default returns the configuration used when neither file nor flags set a value.
func Default() Config {
	return Config{
		K:        5,
		P:        2,
		Mode:     ModeClassify,
		LogLevel: "warn",
	}
}

// Load reads a YAML configuration from path on top of Default.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks the values that do not depend on the input data.
func (c Config) Validate() error {
	var errs []error

	if c.Train == "" {
		errs = append(errs, errors.New("train file is required"))
	}
	if c.Test == "" {
		errs = append(errs, errors.New("test file is required"))
	}
	if c.K < 1 {
		errs = append(errs, fmt.Errorf("k must be >= 1, got %d", c.K))
	}
	if math.IsNaN(c.P) || c.P <= 0 {
		errs = append(errs, fmt.Errorf("p must be > 0, got %g", c.P))
	}
	if c.Mode != ModeClassify && c.Mode != ModeRegress {
		errs = append(errs, fmt.Errorf("mode must be %q or %q, got %q", ModeClassify, ModeRegress, c.Mode))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.Limits.MemoryBytes < 0 || c.Limits.SearchWorkers < 0 || c.Limits.QueriesPerSecond < 0 {
		errs = append(errs, errors.New("limits must not be negative"))
	}

	return errors.Join(errs...)
}

// ParseLevel converts a level name (debug, info, warn, error) to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}
