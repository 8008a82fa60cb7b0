// Package config holds the run configuration for the hemesh command.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/chazu/hemesh/pkg/subdivide"
	"gopkg.in/yaml.v3"
)

// Config describes one subdivision run. Command-line flags override the
// values read from a file.
type Config struct {
	Input    string  `yaml:"input"`
	Output   string  `yaml:"output,omitempty"`
	Levels   int     `yaml:"levels"`
	Workers  int     `yaml:"workers"`
	Boundary string  `yaml:"boundary"`
	Weld     float64 `yaml:"weld"`
	Validate bool    `yaml:"validate"`
}

// Default returns a single-level run that validates its input and uses
// one worker per CPU.
func Default() Config {
	return Config{
		Levels:   1,
		Workers:  runtime.GOMAXPROCS(0),
		Boundary: subdivide.BoundarySmooth.String(),
		Weld:     1e-6,
		Validate: true,
	}
}

// Load reads a YAML config file. Keys missing from the file keep their
// Default values; unknown keys are an error.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	defer f.Close()

	c := Default()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	if err := c.Check(); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return c, nil
}

// Save writes c to path as YAML.
func Save(path string, c Config) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Check reports the first out-of-range value.
func (c Config) Check() error {
	if c.Levels < 0 {
		return fmt.Errorf("levels must be non-negative, got %d", c.Levels)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", c.Workers)
	}
	if c.Weld < 0 {
		return fmt.Errorf("weld must be non-negative, got %g", c.Weld)
	}
	if _, err := subdivide.ParseBoundaryRule(c.Boundary); err != nil {
		return err
	}
	return nil
}

// Options converts c to subdivision options.
func (c Config) Options() ([]subdivide.Option, error) {
	rule, err := subdivide.ParseBoundaryRule(c.Boundary)
	if err != nil {
		return nil, err
	}
	return []subdivide.Option{
		subdivide.WithWorkers(c.Workers),
		subdivide.WithBoundaryRule(rule),
	}, nil
}
