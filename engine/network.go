// Package engine runs the discrete-event tick loop shared by every
// consensus variant: check majority/consensus progress (halting once
// full consensus is reached), inject scheduled transactions, deliver
// messages in flight, then let the protocol do its per-tick work. The
// three variants differ only in how
// they route transactions and mine/mint blocks; that difference is
// captured by the Protocol interface rather than a class hierarchy.
package engine

import (
	"log"
	"math/rand"
	"sort"
	"sync"

	"github.com/kestrelsim/consensim/bus"
	"github.com/kestrelsim/consensim/core"
	"github.com/kestrelsim/consensim/events"
	"github.com/kestrelsim/consensim/latency"
	"github.com/kestrelsim/consensim/observer"
	"github.com/kestrelsim/consensim/schedule"
)

// Protocol captures the behavior that differs across consensus
// variants. Network drives the tick loop; a Protocol only decides how
// a transaction is routed and how mining/minting work happens.
type Protocol interface {
	// OnAssignNodes runs once before the tick loop starts, letting a
	// variant pick a privileged node (the centralized server, or the
	// randomly-selected PoS validator).
	OnAssignNodes(net *Network)
	// AddTransaction routes a freshly-injected transaction from
	// originNode at tick now, per spec.md §4.6-§4.8's per-variant
	// delivery rules.
	AddTransaction(net *Network, originNode int, payload string, now int64)
	// IngestBlock processes a BLOCK item delivered to nodeID.
	IngestBlock(net *Network, nodeID int, block *core.Block)
	// IngestTransaction processes a TRANSACTION item delivered to
	// nodeID at tick now (centralized and PoS act on it only at their
	// single privileged node; PoW queues it on every node).
	IngestTransaction(net *Network, nodeID int, payload string, now int64)
	// Work performs this tick's mining/minting sweep across all nodes.
	Work(net *Network, now int64)
}

// Network owns every node's ledger, the shared bus and latency model,
// the injection schedule, and the bookkeeping (packet/work counters,
// per-transaction timing) the Result is built from.
type Network struct {
	protocol Protocol

	ledgers []*core.Ledger
	bus     *bus.Bus
	latency *latency.Model
	rng     *rand.Rand
	emitter *events.Emitter

	sched     schedule.Schedule
	lastBlock int64
	maxTicks  int64
	time      int64

	txTimes        *observer.TxTimes
	transactionNum int64
	packetsSent    int64
	computations   int64

	// statusMu guards the fields a concurrently-running monitor reads
	// while Run is mid-loop; Run updates the snapshot once per tick
	// rather than holding a lock across the whole iteration.
	statusMu sync.RWMutex
	status   Progress
}

// Progress is a point-in-time snapshot safe to read from another
// goroutine (the monitor) while Run is executing.
type Progress struct {
	Tick            int64 `json:"tick"`
	MajorityIndex   int64 `json:"majority_index"`
	ConsensusIndex  int64 `json:"consensus_index"`
	LastBlockID     int64 `json:"last_block_id"`
	Done            bool  `json:"done"`
	PacketsSent     int64 `json:"packets_sent"`
	NumComputations int64 `json:"num_computations"`
}

// Progress returns the most recent status snapshot.
func (n *Network) Progress() Progress {
	n.statusMu.RLock()
	defer n.statusMu.RUnlock()
	return n.status
}

// LatencySnapshot returns a copy of every transaction's stamped
// latency so far. Safe to call while Run is mid-loop: Run only
// appends to n.txTimes.Latency between tick boundaries, and the copy
// here is a snapshot, not a live view.
func (n *Network) LatencySnapshot() map[int64]int64 {
	n.statusMu.RLock()
	defer n.statusMu.RUnlock()
	out := make(map[int64]int64, len(n.txTimes.Latency))
	for k, v := range n.txTimes.Latency {
		out[k] = v
	}
	return out
}

// New builds a Network over nodeCount nodes sharing a single genesis
// block, ready to run once a Protocol is attached via SetProtocol.
func New(nodeCount int, genesis *core.Block, lm *latency.Model, rng *rand.Rand, sched schedule.Schedule, maxTicks int64) *Network {
	ledgers := make([]*core.Ledger, nodeCount)
	for i := range ledgers {
		ledgers[i] = core.NewLedger(genesis)
	}
	return &Network{
		ledgers:   ledgers,
		bus:       bus.New(rng),
		latency:   lm,
		rng:       rng,
		emitter:   events.NewEmitter(),
		sched:     sched,
		lastBlock: sched.Count(),
		maxTicks:  maxTicks,
		txTimes:   observer.NewTxTimes(),
	}
}

// SetProtocol attaches the consensus variant this run executes and
// calls its OnAssignNodes hook.
func (n *Network) SetProtocol(p Protocol) {
	n.protocol = p
	p.OnAssignNodes(n)
}

// NodeCount returns the number of simulated nodes.
func (n *Network) NodeCount() int { return len(n.ledgers) }

// Ledger returns node id's ledger.
func (n *Network) Ledger(id int) *core.Ledger { return n.ledgers[id] }

// Ledgers returns every node's ledger, for the progress observer.
func (n *Network) Ledgers() observer.Ledgers { return observer.Ledgers(n.ledgers) }

// Bus returns the shared message bus.
func (n *Network) Bus() *bus.Bus { return n.bus }

// Latency returns the shared latency model.
func (n *Network) Latency() *latency.Model { return n.latency }

// Rng returns the shared deterministic PRNG source.
func (n *Network) Rng() *rand.Rand { return n.rng }

// Emit publishes an event through the shared emitter.
func (n *Network) Emit(ev events.Event) { n.emitter.Emit(ev) }

// Subscribe registers a handler on the shared emitter.
func (n *Network) Subscribe(typ events.EventType, h events.Handler) {
	n.emitter.Subscribe(typ, h)
}

// IncPackets increments the global packets-sent counter.
func (n *Network) IncPackets() { n.packetsSent++ }

// AddWork adds to the global mining-work counter.
func (n *Network) AddWork(w int64) { n.computations += w }

// EnqueueBlock schedules a sealed block for delivery from one node to
// another, respecting the latency model and the bus's congestion
// model. Same-node delivery is handled by the bus (zero congestion,
// but the base latency sample is still applied).
func (n *Network) EnqueueBlock(now int64, from, to int, b *core.Block) {
	delay := n.latency.Sample(from, to)
	n.bus.Enqueue(now, from, to, delay, bus.Item{Kind: bus.KindBlock, Block: b})
}

// EnqueueTransaction schedules a transaction payload for delivery.
func (n *Network) EnqueueTransaction(now int64, from, to int, payload string) {
	delay := n.latency.Sample(from, to)
	n.bus.Enqueue(now, from, to, delay, bus.Item{Kind: bus.KindTransaction, Payload: payload})
}

// EnqueueTransactionNow delivers a transaction payload to a node at
// the current tick with zero delay, bypassing both the latency model
// and the congestion counters (used for a node's own self-delivery
// under PoW/PoS, where there is no network hop to model).
func (n *Network) EnqueueTransactionNow(now int64, from, to int, payload string) {
	n.bus.Enqueue(now, from, to, 0, bus.Item{Kind: bus.KindTransaction, Payload: payload})
}

// Broadcast schedules a sealed block for delivery to every node other
// than from, incrementing the packet counter once per recipient.
func (n *Network) Broadcast(now int64, from int, b *core.Block) {
	for to := 0; to < n.NodeCount(); to++ {
		if to == from {
			continue
		}
		n.EnqueueBlock(now, from, to, b)
		n.IncPackets()
	}
}

// Result assembles the final Result from accumulated state. Called
// both on natural termination and on MaxTicks exhaustion.
func (n *Network) Result() *Result {
	majIdx := observer.MajorityIndex(n.Ledgers())
	consIdx := observer.ConsensusIndex(n.Ledgers())
	exhausted := consIdx < n.lastBlock

	var latSum, consSum float64
	for _, v := range n.txTimes.Latency {
		latSum += float64(v)
	}
	for _, v := range n.txTimes.Consensus {
		consSum += float64(v)
	}
	var avgLat, avgCons float64
	if len(n.txTimes.Latency) > 0 {
		avgLat = latSum / float64(len(n.txTimes.Latency))
	}
	if len(n.txTimes.Consensus) > 0 {
		avgCons = consSum / float64(len(n.txTimes.Consensus))
	}

	return &Result{
		Latency:   n.txTimes.Latency,
		Consensus: n.txTimes.Consensus,
		Metrics: Metrics{
			PacketsSent:      n.packetsSent,
			NumComputations:  n.computations,
			TicksElapsed:     n.time,
			MajorityIndex:    majIdx,
			ConsensusIndex:   consIdx,
			Exhausted:        exhausted,
			AverageLatency:   avgLat,
			AverageConsensus: avgCons,
		},
	}
}

// Run drives the tick loop to completion: full consensus reached, or
// MaxTicks exhausted first.
func (n *Network) Run() *Result {
	for {
		majIdx := observer.MajorityIndex(n.Ledgers())
		consIdx := observer.ConsensusIndex(n.Ledgers())
		n.statusMu.Lock()
		n.txTimes.StampLatency(majIdx, n.time)
		n.txTimes.StampConsensus(consIdx, n.time)
		n.statusMu.Unlock()
		if majIdx > 0 {
			n.Emit(events.Event{Type: events.EventMajorityReached, Tick: n.time, BlockID: majIdx})
		}
		if consIdx > 0 {
			n.Emit(events.Event{Type: events.EventConsensusReached, Tick: n.time, BlockID: consIdx})
		}

		// spec.md §4.5 step 2 terminates the instant consIdx ==
		// lastBlock, with no special case for an empty schedule: an
		// empty schedule has lastBlock == 0 and consIdx == 0 at tick
		// 0, so the loop halts immediately rather than running to
		// MaxTicks against nothing.
		done := consIdx >= n.lastBlock
		n.statusMu.Lock()
		n.status = Progress{
			Tick:            n.time,
			MajorityIndex:   majIdx,
			ConsensusIndex:  consIdx,
			LastBlockID:     n.lastBlock,
			Done:            done,
			PacketsSent:     n.packetsSent,
			NumComputations: n.computations,
		}
		n.statusMu.Unlock()

		if done {
			return n.Result()
		}
		if n.time > n.maxTicks {
			log.Printf("[engine] max ticks (%d) exhausted before full consensus", n.maxTicks)
			return n.Result()
		}

		for _, e := range n.sched[n.time] {
			n.transactionNum++
			n.txTimes.Injected[n.transactionNum] = n.time
			n.Emit(events.Event{Type: events.EventTransactionInjected, NodeID: e.Origin, Tick: n.time})
			n.protocol.AddTransaction(n, e.Origin, e.Payload, n.time)
		}

		for node := 0; node < n.NodeCount(); node++ {
			items := n.bus.Drain(node, n.time)

			var blocks []bus.Item
			for _, it := range items {
				if it.Kind == bus.KindBlock {
					blocks = append(blocks, it)
				}
			}
			sort.Slice(blocks, func(i, j int) bool {
				return blocks[i].Block.(*core.Block).ID < blocks[j].Block.(*core.Block).ID
			})
			for _, it := range blocks {
				b := it.Block.(*core.Block)
				n.protocol.IngestBlock(n, node, b)
				n.bus.Release(it.From, node)
			}
			for _, it := range items {
				if it.Kind != bus.KindTransaction {
					continue
				}
				n.protocol.IngestTransaction(n, node, it.Payload, n.time)
				n.bus.Release(it.From, node)
			}
		}

		n.protocol.Work(n, n.time)

		n.time++
	}
}
