package stress

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wippyai/refkit/errors"
)

// Config controls how hard the scenarios push.
type Config struct {
	// Runs is the number of fresh objects each scenario goes through.
	Runs int `yaml:"runs"`
	// Workers is the number of goroutines racing on each object.
	Workers int `yaml:"workers"`
	// Attempts bounds the operations each worker performs per run.
	Attempts int `yaml:"attempts"`
	// Timeout bounds a whole scenario. Zero means no limit.
	Timeout time.Duration `yaml:"timeout"`
}

// DefaultConfig returns a configuration suitable for a quick local run.
func DefaultConfig() Config {
	return Config{
		Runs:     1000,
		Workers:  8,
		Attempts: 64,
		Timeout:  time.Minute,
	}
}

// Validate checks the configuration for values the scenarios cannot run with.
func (c Config) Validate() error {
	switch {
	case c.Runs <= 0:
		return errors.InvalidInput(errors.PhaseConfig, "runs must be positive, got %d", c.Runs)
	case c.Workers <= 0:
		return errors.InvalidInput(errors.PhaseConfig, "workers must be positive, got %d", c.Workers)
	case c.Attempts <= 0:
		return errors.InvalidInput(errors.PhaseConfig, "attempts must be positive, got %d", c.Attempts)
	case c.Timeout < 0:
		return errors.InvalidInput(errors.PhaseConfig, "timeout must not be negative, got %s", c.Timeout)
	}
	return nil
}

// LoadConfig reads a YAML configuration file. Fields missing from the file
// keep their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "read "+path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "parse "+path)
	}
	return cfg, cfg.Validate()
}
