package observer

import (
	"testing"

	"github.com/kestrelsim/consensim/core"
)

func chainTo(height int64) *core.Ledger {
	genesis := core.NewGenesisBlock("genesis")
	l := core.NewLedger(genesis)
	for i := int64(0); i < height; i++ {
		b := l.Mint("p", i)
		b.Hash = core.BlockDigest(b)
		l.AddBlock(b)
	}
	return l
}

func TestMajorityIndexIsCeilHalf(t *testing.T) {
	// 5 nodes: heights 3,3,3,1,1 -> majority of 3 (ceil(5/2)=3) nodes
	// share height 3, so majority index is 3.
	ledgers := Ledgers{chainTo(3), chainTo(3), chainTo(3), chainTo(1), chainTo(1)}
	if got := MajorityIndex(ledgers); got != 3 {
		t.Fatalf("MajorityIndex = %d, want 3", got)
	}
}

func TestMajorityIndexRoundsUpNotBankers(t *testing.T) {
	// n=5 threshold must be 3 (ceil), not round(2.5)=2: only two nodes
	// reach 5, so a threshold of 2 would report 5 instead of 3.
	ledgers := Ledgers{chainTo(5), chainTo(5), chainTo(3), chainTo(0), chainTo(0)}
	if got := MajorityIndex(ledgers); got != 3 {
		t.Fatalf("MajorityIndex = %d, want 3", got)
	}
}

func TestConsensusIndexRequiresFullAgreement(t *testing.T) {
	ledgers := Ledgers{chainTo(4), chainTo(4), chainTo(2)}
	if got := ConsensusIndex(ledgers); got != 2 {
		t.Fatalf("ConsensusIndex = %d, want 2", got)
	}
}

func TestStampLatencyOnlyStampsReachedTransactions(t *testing.T) {
	tt := NewTxTimes()
	tt.Injected[1] = 0
	tt.Injected[2] = 0
	tt.StampLatency(1, 10)
	if _, ok := tt.Latency[1]; !ok {
		t.Fatal("tx 1 should be stamped once majority index >= 1")
	}
	if _, ok := tt.Latency[2]; ok {
		t.Fatal("tx 2 should not be stamped until majority index >= 2")
	}
}

func TestStampLatencyIsIdempotent(t *testing.T) {
	tt := NewTxTimes()
	tt.Injected[1] = 0
	tt.StampLatency(1, 10)
	tt.StampLatency(1, 20)
	if tt.Latency[1] != 10 {
		t.Fatalf("Latency[1] = %d, want 10 (first stamp wins)", tt.Latency[1])
	}
}
