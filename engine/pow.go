package engine

import (
	"github.com/kestrelsim/consensim/core"
	"github.com/kestrelsim/consensim/events"
)

func init() {
	Register("pow", func(net *Network) Protocol { return &ProofOfWork{} })
}

// ProofOfWork is the mod-600 nonce-search variant (spec.md §4.7): every
// node receives every transaction and independently races to seal the
// next block.
type ProofOfWork struct{}

func (p *ProofOfWork) OnAssignNodes(net *Network) {}

// AddTransaction delivers to the origin node immediately (zero delay,
// no congestion — there is no network hop to itself) and to every
// other node through the normal latency+congestion path, counting a
// packet only for the non-self deliveries.
func (p *ProofOfWork) AddTransaction(net *Network, originNode int, payload string, now int64) {
	net.EnqueueTransactionNow(now, originNode, originNode, payload)
	for to := 0; to < net.NodeCount(); to++ {
		if to == originNode {
			continue
		}
		net.EnqueueTransaction(now, originNode, to, payload)
		net.IncPackets()
	}
}

func (p *ProofOfWork) IngestTransaction(net *Network, nodeID int, payload string, now int64) {
	net.Ledger(nodeID).EnqueuePending(payload)
}

func (p *ProofOfWork) IngestBlock(net *Network, nodeID int, block *core.Block) {
	net.Ledger(nodeID).AddBlock(block)
}

// Work gives every node one mining attempt this tick; a sealed block
// is broadcast immediately so the race is decided by delivery order,
// not by simulated wall-clock.
func (p *ProofOfWork) Work(net *Network, now int64) {
	for node := 0; node < net.NodeCount(); node++ {
		block, work, ok := net.Ledger(node).Mine(now)
		if !ok {
			continue
		}
		net.AddWork(work)
		net.Emit(events.Event{Type: events.EventBlockSealed, NodeID: node, Tick: now, BlockID: block.ID})
		net.Broadcast(now, node, block)
	}
}
