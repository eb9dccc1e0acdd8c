package monitor

import (
	"math/rand"
	"testing"

	"github.com/kestrelsim/consensim/core"
	"github.com/kestrelsim/consensim/engine"
	"github.com/kestrelsim/consensim/events"
	"github.com/kestrelsim/consensim/latency"
	"github.com/kestrelsim/consensim/schedule"
)

func testSchedule() schedule.Schedule {
	return schedule.Schedule{
		0: {{Origin: 0, Payload: "tx-1"}},
	}
}

func TestDispatchGetProgressBeforeRun(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	net := engine.New(2, core.NewGenesisBlock("g"), latency.NewEquidistant(rng, 2, latency.EquidistantMean), rng, schedule.Schedule{}, 10)
	h := NewHandler(net)
	resp := h.Dispatch("getProgress", 1)
	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error)
	}
}

func TestDispatchGetEventsReflectsRunActivity(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	net := engine.New(3, core.NewGenesisBlock("g"), latency.NewEquidistant(rng, 3, latency.EquidistantMean), rng, testSchedule(), 10_000)
	h := NewHandler(net)
	proto, err := engine.Build("centralized", net)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	net.SetProtocol(proto)
	net.Run()

	resp := h.Dispatch("getEvents", 1)
	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error)
	}
	got, ok := resp.Result.([]events.Event)
	if !ok {
		t.Fatalf("getEvents result type = %T, want []events.Event", resp.Result)
	}
	if len(got) == 0 {
		t.Fatal("expected NewHandler's subscription to have recorded at least one event during the run")
	}
}

func TestDispatchUnknownMethod(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	net := engine.New(2, core.NewGenesisBlock("g"), latency.NewEquidistant(rng, 2, latency.EquidistantMean), rng, schedule.Schedule{}, 10)
	h := NewHandler(net)
	resp := h.Dispatch("getNonsense", 1)
	if resp.Error == nil || resp.Error.Code != CodeMethodNotFound {
		t.Fatalf("expected CodeMethodNotFound, got %+v", resp.Error)
	}
}
