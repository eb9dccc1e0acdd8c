// Package observer computes the two global progress metrics the
// simulation terminates on: the majority index (a simple quorum of
// nodes sharing a block) and the consensus index (every node sharing
// it), plus the per-transaction latency/consensus-time stamping keyed
// on transaction sequence number.
package observer

import "github.com/kestrelsim/consensim/core"

// Ledgers is the read-only view the observer needs of each node's
// chain: just enough to walk by block id, never by pointer.
type Ledgers []*core.Ledger

// MajorityIndex returns the highest block id held by at least
// ceil(n/2) of the ledgers. Because Mint always assigns head.id+1,
// every ledger's chain is contiguous from genesis, so "has a block at
// id d" is equivalent to "height >= d" — no need to walk ids one by
// one for this metric.
func MajorityIndex(ledgers Ledgers) int64 {
	n := len(ledgers)
	if n == 0 {
		return 0
	}
	threshold := (n + 1) / 2
	heights := make([]int64, n)
	for i, l := range ledgers {
		heights[i] = l.Height()
	}
	// selection: the threshold-th largest height.
	for i := 0; i < threshold; i++ {
		maxIdx := i
		for j := i + 1; j < n; j++ {
			if heights[j] > heights[maxIdx] {
				maxIdx = j
			}
		}
		heights[i], heights[maxIdx] = heights[maxIdx], heights[i]
	}
	return heights[threshold-1]
}

// ConsensusIndex returns the highest block id at which every ledger
// agrees: each ledger has a block at that id, and all of them carry
// the same hash. Walked forward from genesis since a mismatch or a
// missing id at height d implies the same at every height beyond d.
func ConsensusIndex(ledgers Ledgers) int64 {
	if len(ledgers) == 0 {
		return 0
	}
	var agreed int64
	for id := int64(0); ; id++ {
		first, ok := ledgers[0].BlockAt(id)
		if !ok {
			return agreed
		}
		match := true
		for _, l := range ledgers[1:] {
			b, ok := l.BlockAt(id)
			if !ok || b.Hash != first.Hash {
				match = false
				break
			}
		}
		if !match {
			return agreed
		}
		agreed = id
	}
}

// TxTimes accumulates the latency and consensus-time stamp for every
// transaction, keyed by its 1-based injection sequence number.
type TxTimes struct {
	Injected  map[int64]int64 // tx seq -> tick injected
	Latency   map[int64]int64 // tx seq -> ticks from injection until the majority index reached that block id
	Consensus map[int64]int64 // tx seq -> ticks from injection until the consensus index reached that block id
}

// NewTxTimes constructs an empty stamping table.
func NewTxTimes() *TxTimes {
	return &TxTimes{
		Injected:  make(map[int64]int64),
		Latency:   make(map[int64]int64),
		Consensus: make(map[int64]int64),
	}
}

// StampLatency records, for every injected tx whose block id is <=
// majorityIdx and not yet stamped, the elapsed ticks since injection.
// Transaction sequence number N is assumed to occupy block id N (the
// genesis block is id 0, so the first injected transaction becomes
// block 1) — matching engine.Network's one-payload-per-schedule-entry
// mint order.
func (t *TxTimes) StampLatency(majorityIdx int64, now int64) {
	for seq, injectedAt := range t.Injected {
		if _, done := t.Latency[seq]; done {
			continue
		}
		if seq <= majorityIdx {
			t.Latency[seq] = now - injectedAt
		}
	}
}

// StampConsensus is StampLatency's counterpart against the consensus
// index.
func (t *TxTimes) StampConsensus(consensusIdx int64, now int64) {
	for seq, injectedAt := range t.Injected {
		if _, done := t.Consensus[seq]; done {
			continue
		}
		if seq <= consensusIdx {
			t.Consensus[seq] = now - injectedAt
		}
	}
}
