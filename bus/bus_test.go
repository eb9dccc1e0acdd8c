package bus

import (
	"math/rand"
	"testing"
)

func TestSameNodeDeliveryBypassesCongestion(t *testing.T) {
	b := New(rand.New(rand.NewSource(1)))
	b.Enqueue(10, 2, 2, 0, Item{Kind: KindTransaction, Payload: "p"})
	items := b.Drain(2, 10)
	if len(items) != 1 {
		t.Fatalf("expected 1 item delivered at tick 10, got %d", len(items))
	}
	if _, tracked := b.transit[dirKey{2, 2}]; tracked {
		t.Fatal("same-node delivery must never create an in-transit entry")
	}
}

func TestFirstCrossNodePairInitializesZeroDelay(t *testing.T) {
	b := New(rand.New(rand.NewSource(1)))
	b.Enqueue(0, 0, 1, 0, Item{Kind: KindTransaction, Payload: "p"})
	items := b.Drain(1, 0)
	if len(items) != 1 {
		t.Fatalf("first-ever pair exchange must have zero congestion delay, got %d items at tick 0", len(items))
	}
	if c := b.transit[dirKey{0, 1}]; c != 1 {
		t.Fatalf("in-transit counter after first message = %d, want 1", c)
	}
}

func TestReleaseDecrementsFloorZero(t *testing.T) {
	b := New(rand.New(rand.NewSource(1)))
	b.Enqueue(0, 0, 1, 0, Item{Kind: KindTransaction, Payload: "p"})
	b.Release(0, 1)
	if c := b.transit[dirKey{0, 1}]; c != 0 {
		t.Fatalf("in-transit counter after release = %d, want 0", c)
	}
	b.Release(0, 1)
	if c := b.transit[dirKey{0, 1}]; c != 0 {
		t.Fatalf("in-transit counter must not go negative, got %d", c)
	}
}

func TestReleaseSameNodeIsNoOp(t *testing.T) {
	b := New(rand.New(rand.NewSource(1)))
	b.Release(3, 3) // must not panic or create an entry
	if _, tracked := b.transit[dirKey{3, 3}]; tracked {
		t.Fatal("Release on same node must not create an in-transit entry")
	}
}

func TestCongestionCounterIsDirected(t *testing.T) {
	b := New(rand.New(rand.NewSource(1)))
	// 0 -> 1 traffic must not feed or drain the reverse 1 -> 0 counter.
	b.Enqueue(0, 0, 1, 0, Item{Kind: KindTransaction, Payload: "p"})
	b.Enqueue(0, 0, 1, 0, Item{Kind: KindTransaction, Payload: "q"})
	if c := b.transit[dirKey{0, 1}]; c != 2 {
		t.Fatalf("transit[0->1] = %d, want 2", c)
	}
	if c := b.transit[dirKey{1, 0}]; c != 0 {
		t.Fatalf("transit[1->0] = %d, want 0 (reverse direction must be untouched)", c)
	}
	b.Release(1, 0) // releasing the reverse direction must not touch 0->1
	if c := b.transit[dirKey{0, 1}]; c != 2 {
		t.Fatalf("transit[0->1] = %d after releasing the reverse direction, want unchanged 2", c)
	}
}

func TestDrainRemovesDeliveredItems(t *testing.T) {
	b := New(rand.New(rand.NewSource(1)))
	b.Enqueue(5, 0, 1, 0, Item{Kind: KindBlock, Payload: "b"})
	first := b.Drain(1, 5)
	second := b.Drain(1, 5)
	if len(first) != 1 {
		t.Fatalf("first Drain returned %d items, want 1", len(first))
	}
	if len(second) != 0 {
		t.Fatalf("second Drain at the same tick returned %d items, want 0", len(second))
	}
}
