package monitor

import (
	"sync"

	"github.com/kestrelsim/consensim/engine"
	"github.com/kestrelsim/consensim/events"
)

// maxEventLog bounds the in-memory event log getEvents serves, so a
// long-running simulation doesn't grow the handler's memory without
// bound.
const maxEventLog = 200

// Handler dispatches JSON-RPC calls against a single running (or
// completed) simulation. It also subscribes to the Network's event
// emitter so getEvents can serve a recent-activity feed without polling
// the ledgers directly.
type Handler struct {
	net *engine.Network

	mu  sync.Mutex
	log []events.Event
}

// NewHandler builds a Handler bound to net and subscribes it to every
// simulation event so a client can poll getEvents for a running-commentary
// view alongside getProgress's point-in-time snapshot.
func NewHandler(net *engine.Network) *Handler {
	h := &Handler{net: net}
	for _, typ := range []events.EventType{
		events.EventTransactionInjected,
		events.EventBlockSealed,
		events.EventMajorityReached,
		events.EventConsensusReached,
	} {
		net.Subscribe(typ, h.record)
	}
	return h
}

// record appends ev to the bounded event log. Called synchronously
// from the tick loop via Network.Emit, so it must stay cheap and
// never panic; Emitter already recovers a panicking handler per spec.
func (h *Handler) record(ev events.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.log = append(h.log, ev)
	if len(h.log) > maxEventLog {
		h.log = h.log[len(h.log)-maxEventLog:]
	}
}

func (h *Handler) recentEvents() []events.Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]events.Event, len(h.log))
	copy(out, h.log)
	return out
}

// Dispatch routes a method name to its handling function. Unknown
// methods return a CodeMethodNotFound error, matching the teacher's
// rpc.Handler.Dispatch convention.
func (h *Handler) Dispatch(method string, id any) Response {
	switch method {
	case "getProgress":
		return Response{JSONRPC: "2.0", Result: h.net.Progress(), ID: id}
	case "getLatency":
		return Response{JSONRPC: "2.0", Result: h.net.LatencySnapshot(), ID: id}
	case "getMetrics":
		p := h.net.Progress()
		return Response{JSONRPC: "2.0", Result: map[string]any{
			"packets_sent":     p.PacketsSent,
			"num_computations": p.NumComputations,
			"tick":             p.Tick,
			"done":             p.Done,
		}, ID: id}
	case "getEvents":
		return Response{JSONRPC: "2.0", Result: h.recentEvents(), ID: id}
	default:
		return errResponse(id, CodeMethodNotFound, "method not found: "+method)
	}
}
