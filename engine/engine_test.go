package engine

import (
	"math/rand"
	"testing"

	"github.com/kestrelsim/consensim/core"
	"github.com/kestrelsim/consensim/latency"
	"github.com/kestrelsim/consensim/schedule"
)

func testSchedule() schedule.Schedule {
	return schedule.Schedule{
		0: {{Origin: 0, Payload: "tx-1"}},
		1: {{Origin: 1, Payload: "tx-2"}},
	}
}

func runProtocol(t *testing.T, name string, nodeCount int) *Result {
	t.Helper()
	rng := rand.New(rand.NewSource(1))
	lm := latency.NewEquidistant(rng, nodeCount, latency.EquidistantMean)
	genesis := core.NewGenesisBlock("genesis")
	sched := testSchedule()
	net := New(nodeCount, genesis, lm, rng, sched, 100_000)
	proto, err := Build(name, net)
	if err != nil {
		t.Fatalf("Build(%q): %v", name, err)
	}
	net.SetProtocol(proto)
	return net.Run()
}

func TestCentralizedReachesConsensus(t *testing.T) {
	result := runProtocol(t, "centralized", 4)
	if result.Metrics.Exhausted {
		t.Fatal("centralized run should reach full consensus well before MaxTicks")
	}
	if result.Metrics.ConsensusIndex != 2 {
		t.Fatalf("ConsensusIndex = %d, want 2 (two scheduled transactions)", result.Metrics.ConsensusIndex)
	}
	if len(result.Latency) != 2 {
		t.Fatalf("len(Latency) = %d, want 2", len(result.Latency))
	}
}

func TestProofOfWorkReachesConsensus(t *testing.T) {
	result := runProtocol(t, "pow", 3)
	if result.Metrics.Exhausted {
		t.Fatal("pow run should reach full consensus well before MaxTicks")
	}
	if result.Metrics.NumComputations <= 0 {
		t.Fatal("pow run should have spent some mining work")
	}
}

func TestProofOfStakeReachesConsensus(t *testing.T) {
	result := runProtocol(t, "pos", 3)
	if result.Metrics.Exhausted {
		t.Fatal("pos run should reach full consensus well before MaxTicks")
	}
	// PoS never gates on the modulus, so work is exactly one unit per
	// sealed block.
	if result.Metrics.NumComputations != 2 {
		t.Fatalf("NumComputations = %d, want 2 (one per sealed block, no modulus gate)", result.Metrics.NumComputations)
	}
}

func TestBuildUnknownProtocolErrors(t *testing.T) {
	net := New(2, core.NewGenesisBlock("g"), latency.NewEquidistant(rand.New(rand.NewSource(1)), 2, 200), rand.New(rand.NewSource(1)), schedule.Schedule{}, 10)
	if _, err := Build("nonsense", net); err == nil {
		t.Fatal("expected an error for an unregistered protocol name")
	}
}

func TestResultMarshalShapeHasMetricsSibling(t *testing.T) {
	r := &Result{
		Latency:   map[int64]int64{1: 5, 2: 9},
		Consensus: map[int64]int64{1: 6, 2: 11},
		Metrics:   Metrics{PacketsSent: 3},
	}
	data, err := r.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)
	if !contains(s, `"1":`) || !contains(s, `"2":`) || !contains(s, `"metrics":`) {
		t.Fatalf("expected per-tx keys plus a sibling metrics key, got %s", s)
	}
}

func contains(haystack, needle string) bool {
	return len(haystack) >= len(needle) && (func() bool {
		for i := 0; i+len(needle) <= len(haystack); i++ {
			if haystack[i:i+len(needle)] == needle {
				return true
			}
		}
		return false
	})()
}
