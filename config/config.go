package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config holds everything a single simulation run needs: which
// protocol variant to run, how many nodes, the topology and schedule
// to replay, and a PRNG seed for determinism.
type Config struct {
	Protocol    string `json:"protocol"`     // "centralized", "pow", "pos"
	NodeCount   int    `json:"node_count"`
	Topology    string `json:"topology"`     // "equidistant", "wide-area"
	ScheduleDir string `json:"schedule_dir"` // directory of named schedule files; see schedule.ResolvePath
	RunName     string `json:"run_name"`
	Seed        int64  `json:"seed"`
	MaxTicks    int64  `json:"max_ticks"` // safety bound; 0 → DefaultMaxTicks
}

// DefaultMaxTicks bounds a run that never reaches consensus, per
// spec.md §5's allowance for "a maximum-tick safety bound."
const DefaultMaxTicks = 1_000_000

// DefaultConfig returns a four-node, equidistant, centralized
// development configuration.
func DefaultConfig() *Config {
	return &Config{
		Protocol:  "centralized",
		NodeCount: 4,
		Topology:  "equidistant",
		RunName:   "dev",
		Seed:      1,
		MaxTicks:  DefaultMaxTicks,
	}
}

// Load reads a JSON config file from path and validates required
// fields, failing fast before any tick loop starts (spec.md §7).
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return cfg, nil
}

// Validate checks that all required fields are present and
// well-formed. Unknown protocol/topology discriminators are caught
// here, not discovered mid-run.
func (c *Config) Validate() error {
	switch c.Protocol {
	case "centralized", "pow", "pos":
	default:
		return fmt.Errorf("protocol must be one of centralized|pow|pos, got %q", c.Protocol)
	}
	switch c.Topology {
	case "equidistant", "wide-area":
	default:
		return fmt.Errorf("topology must be one of equidistant|wide-area, got %q", c.Topology)
	}
	if c.NodeCount < 1 {
		return fmt.Errorf("node_count must be >= 1, got %d", c.NodeCount)
	}
	if c.RunName == "" {
		return fmt.Errorf("run_name must not be empty")
	}
	if c.MaxTicks <= 0 {
		c.MaxTicks = DefaultMaxTicks
	}
	return nil
}

// Save writes the config to path as formatted JSON.
func Save(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
