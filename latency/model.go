// Package latency provides per-pair message delay sampling: the time a
// block or transaction takes to traverse the simulated network between
// two nodes, independent of the congestion-driven extra delay the bus
// layers on top (see package bus).
package latency

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/stat/distuv"
)

const (
	// EquidistantMean is the fixed mean delay between every node pair
	// under the equidistant topology.
	EquidistantMean = 200.0
	// WideAreaIntraMean is the mean delay between two nodes in the same
	// quarter under the wide-area topology.
	WideAreaIntraMean = 200.0
	// WideAreaInterMean is the mean delay between nodes in different
	// quarters under the wide-area topology.
	WideAreaInterMean = 400.0
	// DefaultMean is used for any pair this Model has no explicit entry
	// for.
	DefaultMean = 500.0
)

// Model samples a Poisson-distributed delay for a pair of nodes, keyed
// by an unordered pair so (a, b) and (b, a) share a mean.
type Model struct {
	means map[pairKey]float64
	rng   *rand.Rand
}

type pairKey struct {
	lo, hi int
}

func key(a, b int) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{a, b}
}

// New builds an empty Model; unlisted pairs fall back to DefaultMean.
// rng drives every Sample call and must be supplied by the caller for
// deterministic, seeded runs.
func New(rng *rand.Rand) *Model {
	return &Model{means: make(map[pairKey]float64), rng: rng}
}

// Set assigns an explicit mean delay to an unordered node pair.
func (m *Model) Set(a, b int, mean float64) {
	m.means[key(a, b)] = mean
}

// NewEquidistant builds a Model where every pair shares the same mean
// delay (spec.md §4.2's "equidistant" topology).
func NewEquidistant(rng *rand.Rand, nodeCount int, mean float64) *Model {
	m := New(rng)
	for i := 0; i < nodeCount; i++ {
		for j := i + 1; j < nodeCount; j++ {
			m.Set(i, j, mean)
		}
	}
	return m
}

// NewWideArea partitions nodeCount nodes into four contiguous quarters;
// pairs within a quarter use WideAreaIntraMean, pairs across quarters
// use WideAreaInterMean (spec.md §4.2's "wide-area" topology).
func NewWideArea(rng *rand.Rand, nodeCount int) *Model {
	m := New(rng)
	quarter := func(id int) int {
		if nodeCount == 0 {
			return 0
		}
		q := id * 4 / nodeCount
		if q > 3 {
			q = 3
		}
		return q
	}
	for i := 0; i < nodeCount; i++ {
		for j := i + 1; j < nodeCount; j++ {
			if quarter(i) == quarter(j) {
				m.Set(i, j, WideAreaIntraMean)
			} else {
				m.Set(i, j, WideAreaInterMean)
			}
		}
	}
	return m
}

// Sample draws a Poisson-distributed delay for the (a, b) pair, using
// DefaultMean if the pair has no explicit entry.
func (m *Model) Sample(a, b int) int {
	mean, ok := m.means[key(a, b)]
	if !ok {
		mean = DefaultMean
	}
	dist := distuv.Poisson{Lambda: mean, Src: m.rng}
	return int(dist.Rand())
}

// ByName resolves a topology discriminator string into a Model,
// matching spec.md §6/§7's "unknown topology is a config error"
// requirement.
func ByName(name string, rng *rand.Rand, nodeCount int) (*Model, error) {
	switch name {
	case "equidistant":
		return NewEquidistant(rng, nodeCount, EquidistantMean), nil
	case "wide-area":
		return NewWideArea(rng, nodeCount), nil
	default:
		return nil, fmt.Errorf("latency: unknown topology %q", name)
	}
}
