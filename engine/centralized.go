package engine

import (
	"github.com/kestrelsim/consensim/core"
	"github.com/kestrelsim/consensim/events"
)

func init() {
	Register("centralized", func(net *Network) Protocol { return &Centralized{} })
}

// Centralized is the trusted-server variant (spec.md §4.6): node 0 is
// the server. Every node's transaction is forwarded to the server,
// which mints, appends to its own ledger, and broadcasts.
//
// Unlike the PoW/PoS variants, AddTransaction never special-cases the
// sender being the server itself: it always samples a latency delay
// and always counts a packet, even for sender == server. This
// asymmetry is preserved from the original prototype rather than
// "fixed" to match the other two variants' same-node fast path.
type Centralized struct {
	server int
}

func (c *Centralized) OnAssignNodes(net *Network) {
	c.server = 0
}

func (c *Centralized) AddTransaction(net *Network, originNode int, payload string, now int64) {
	net.EnqueueTransaction(now, originNode, c.server, payload)
	net.IncPackets()
}

func (c *Centralized) IngestTransaction(net *Network, nodeID int, payload string, now int64) {
	if nodeID != c.server {
		return
	}
	ledger := net.Ledger(nodeID)
	block := ledger.ProcessTxn(payload, now)
	ledger.AddBlockCentralized(block)
	net.Emit(events.Event{Type: events.EventBlockSealed, NodeID: nodeID, Tick: now, BlockID: block.ID})
	net.Broadcast(now, nodeID, block)
}

func (c *Centralized) IngestBlock(net *Network, nodeID int, block *core.Block) {
	net.Ledger(nodeID).AddBlockCentralized(block)
}

// Work is a no-op for the centralized variant: blocks are minted
// immediately on transaction receipt, not via a per-tick mining sweep.
func (c *Centralized) Work(net *Network, now int64) {}
