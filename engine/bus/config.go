package bus

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config tunes dispatch latency/cost trade-offs. It never affects
// correctness: events are delivered eventually regardless of values.
type Config struct {
	ThrottleMs  int `yaml:"throttle_ms"`  // minimum time between queued flushes
	LogCapacity int `yaml:"log_capacity"` // bounded history entries
	BatchSize   int `yaml:"batch_size"`   // max events dispatched per flush
}

// DefaultConfig returns the baseline tuning.
func DefaultConfig() Config {
	return Config{ThrottleMs: 10, LogCapacity: 256, BatchSize: 16}
}

// LoadConfig reads tuning from a YAML file. Zero or missing fields fall
// back to defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("bus config %s: %w", path, err)
	}
	return cfg.withDefaults(), nil
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.ThrottleMs <= 0 {
		c.ThrottleMs = d.ThrottleMs
	}
	if c.LogCapacity <= 0 {
		c.LogCapacity = d.LogCapacity
	}
	if c.BatchSize <= 0 {
		c.BatchSize = d.BatchSize
	}
	return c
}

func (c Config) throttle() time.Duration {
	return time.Duration(c.ThrottleMs) * time.Millisecond
}
