package engine

import (
	"github.com/kestrelsim/consensim/core"
	"github.com/kestrelsim/consensim/events"
)

func init() {
	Register("pos", func(net *Network) Protocol { return &ProofOfStake{} })
}

// ProofOfStake is the single-validator variant (spec.md §4.8): one
// node is chosen at random for the whole run and mints every block,
// with no modulus gate.
type ProofOfStake struct {
	validator int
}

func (p *ProofOfStake) OnAssignNodes(net *Network) {
	p.validator = net.Rng().Intn(net.NodeCount())
}

// AddTransaction delivers only to the validator, using the same
// self-loop-bypasses-congestion fast path as PoW when the origin
// happens to be the validator itself.
func (p *ProofOfStake) AddTransaction(net *Network, originNode int, payload string, now int64) {
	if originNode == p.validator {
		net.EnqueueTransactionNow(now, originNode, p.validator, payload)
		return
	}
	net.EnqueueTransaction(now, originNode, p.validator, payload)
	net.IncPackets()
}

func (p *ProofOfStake) IngestTransaction(net *Network, nodeID int, payload string, now int64) {
	if nodeID != p.validator {
		return
	}
	net.Ledger(nodeID).EnqueuePending(payload)
}

func (p *ProofOfStake) IngestBlock(net *Network, nodeID int, block *core.Block) {
	net.Ledger(nodeID).AddBlock(block)
}

// Work gives the validator a single mint attempt this tick; unlike
// PoW's Mine, MinePoS always succeeds once there is a pending payload.
func (p *ProofOfStake) Work(net *Network, now int64) {
	block, work, ok := net.Ledger(p.validator).MinePoS(now)
	if !ok {
		return
	}
	net.AddWork(work)
	net.Emit(events.Event{Type: events.EventBlockSealed, NodeID: p.validator, Tick: now, BlockID: block.ID})
	net.Broadcast(now, p.validator, block)
}
