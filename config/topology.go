package config

import (
	"math/rand"

	"github.com/kestrelsim/consensim/latency"
)

// BuildLatencyModel resolves this Config's topology discriminator and
// node count into a seeded latency.Model. The returned *rand.Rand is
// also handed back so the caller can thread the same deterministic
// source into the bus's congestion draws and, for PoS, validator
// selection (spec.md §5 determinism requirement).
func (c *Config) BuildLatencyModel() (*latency.Model, *rand.Rand, error) {
	rng := rand.New(rand.NewSource(c.Seed))
	model, err := latency.ByName(c.Topology, rng, c.NodeCount)
	if err != nil {
		return nil, nil, err
	}
	return model, rng, nil
}
