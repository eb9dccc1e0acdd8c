// Package bus is the in-process stand-in for the network: a per-node,
// time-indexed inbox with a congestion model layered on top of the
// latency.Model's base delay. Non-goals (spec.md) exclude real sockets,
// so delivery is simulated entirely by scheduling items at future ticks.
package bus

import (
	"math/rand"

	"gonum.org/v1/gonum/stat/distuv"
)

// Kind distinguishes the two payload shapes the bus carries.
type Kind int

const (
	KindTransaction Kind = iota
	KindBlock
)

// Item is one delivered unit: a transaction payload or a sealed block,
// addressed to a single recipient node.
type Item struct {
	Kind    Kind
	Payload string
	Block   interface{} // *core.Block; kept untyped so bus does not import core
	From    int
}

// Bus holds every node's future inbox, keyed by delivery tick, plus the
// asymmetric in-transit congestion counters keyed by directed
// (sender, receiver) pair — spec.md §3/§4.3 define in_transit as a
// per-(sender, receiver) gauge, not a per-unordered-pair one, so the
// 0->1 and 1->0 links must not share a counter.
type Bus struct {
	inbox   map[int]map[int64][]Item // nodeID -> tick -> items
	transit map[dirKey]int
	rng     *rand.Rand
}

type dirKey struct{ from, to int }

// New creates an empty Bus. rng must be supplied by the caller for
// deterministic, seeded congestion draws.
func New(rng *rand.Rand) *Bus {
	return &Bus{
		inbox:   make(map[int]map[int64][]Item),
		transit: make(map[dirKey]int),
		rng:     rng,
	}
}

// congestionDelay draws the extra delay imposed by messages already in
// flight from "from" to "to" (the directed in_transit counter), then
// advances it.
//
// Same-node delivery bypasses congestion entirely (spec.md §4.3): a
// node talking to itself never queues behind its own traffic. The very
// first message ever sent along a directed pair initializes the
// counter to 1 with zero extra delay — there is nothing to queue behind
// yet. Every later call draws Poisson(2^c) using the OLD count c (read
// before the increment), then increments.
func (b *Bus) congestionDelay(from, to int) int {
	if from == to {
		return 0
	}
	k := dirKey{from, to}
	c, exists := b.transit[k]
	if !exists {
		b.transit[k] = 1
		return 0
	}
	dist := distuv.Poisson{Lambda: float64(int(1) << uint(c)), Src: b.rng}
	delay := int(dist.Rand())
	b.transit[k] = c + 1
	return delay
}

// Release decrements the directed in_transit counter for (from, to)
// toward zero floor, mirroring the original's remove_from_transit.
// Same-node delivery is a no-op, matching congestionDelay's bypass.
// The reverse direction (to, from) is a distinct counter and is never
// touched by a release in this direction.
func (b *Bus) Release(from, to int) {
	if from == to {
		return
	}
	k := dirKey{from, to}
	if c := b.transit[k]; c > 0 {
		b.transit[k] = c - 1
	}
}

// Enqueue schedules an item for delivery to "to" at now+baseDelay, with
// an additional congestion delay folded in automatically.
func (b *Bus) Enqueue(now int64, from, to int, baseDelay int, item Item) {
	item.From = from
	total := now + int64(baseDelay) + int64(b.congestionDelay(from, to))
	if b.inbox[to] == nil {
		b.inbox[to] = make(map[int64][]Item)
	}
	b.inbox[to][total] = append(b.inbox[to][total], item)
}

// Drain returns and removes every item addressed to node "to" that
// arrives exactly at tick "at".
func (b *Bus) Drain(to int, at int64) []Item {
	node := b.inbox[to]
	if node == nil {
		return nil
	}
	items := node[at]
	if items != nil {
		delete(node, at)
	}
	return items
}
