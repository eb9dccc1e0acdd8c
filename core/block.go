// Package core implements the per-node ledger: blocks, chain linkage,
// and the mining operations the consensus variants drive.
package core

// Block is an immutable-ish record once sealed. It carries no forward
// link: the Ledger owns a block-id-indexed chain index so a Block (in
// particular the shared genesis) stays a plain value shareable across
// every node without any node mutating another's view of it.
type Block struct {
	ID        int64
	Data      string // opaque payload; uniqueness is the de-facto transaction id
	Nonce     int64
	Timestamp int64 // simulated tick at construction
	PrevHash  uint64
	HasPrev   bool // false only for genesis
	Hash      uint64
	Sealed    bool // true once Hash has been assigned (and, under PoW, validated)
}

// NewGenesisBlock returns the single shared genesis block. Callers must
// pass the same *Block to every node's ledger; genesis is never mutated
// after construction.
func NewGenesisBlock(data string) *Block {
	b := &Block{ID: 0, Data: data, Timestamp: 0}
	b.Hash = BlockDigest(b)
	b.Sealed = true
	return b
}
