package core

// AddResult classifies the outcome of appending a block to a Ledger.
type AddResult int

const (
	// Rejected means the block failed hash/linkage validation and was
	// not linked. Not an error: expected under out-of-order delivery.
	Rejected AddResult = iota
	// Accepted means the block was newly linked onto the chain.
	Accepted
	// AcceptedStale means the block's id was already at or behind the
	// current head; treated as an idempotent no-op.
	AcceptedStale
)

// Ledger is one node's view of the chain: a block-id-indexed index (see
// core/block.go for why blocks don't carry their own forward link), the
// pending-payload queue, and the in-progress PoW mining state.
type Ledger struct {
	genesis *Block
	chain   map[int64]*Block
	headID  int64

	pending  []string
	seenData map[string]struct{}

	nonceCursor     int64
	workAccumulator int64
	candidate       *Block // in-progress mining candidate, nil if none
}

// NewLedger creates a Ledger seeded with the shared genesis block.
// genesis must be the same *Block instance passed to every other node's
// Ledger in the run.
func NewLedger(genesis *Block) *Ledger {
	l := &Ledger{
		genesis:  genesis,
		chain:    map[int64]*Block{genesis.ID: genesis},
		headID:   genesis.ID,
		seenData: map[string]struct{}{genesis.Data: {}},
	}
	return l
}

// Head returns the current chain tip.
func (l *Ledger) Head() *Block {
	return l.chain[l.headID]
}

// Height returns the current tip's block id.
func (l *Ledger) Height() int64 {
	return l.headID
}

// BlockAt returns the block at the given id, if this ledger has it.
// Ledger ids are contiguous from genesis (every accepted block's id is
// its predecessor's id + 1), so the ProgressObserver can walk by id
// lookup instead of chasing a pointer embedded in Block.
func (l *Ledger) BlockAt(id int64) (*Block, bool) {
	b, ok := l.chain[id]
	return b, ok
}

// AddBlock appends a block received over the network under PoW/PoS
// validation rules (L1/L4): hash-chain linkage and a self-consistent
// recomputed hash are both required.
func (l *Ledger) AddBlock(b *Block) AddResult {
	if b.ID <= l.headID {
		return AcceptedStale
	}
	head := l.Head()
	if head.Hash != b.PrevHash {
		return Rejected
	}
	if BlockDigest(b) != b.Hash {
		return Rejected
	}
	l.link(b)
	return Accepted
}

// AddBlockCentralized appends a trusted block with no hash validation;
// duplicate payloads are idempotent no-ops (L3).
func (l *Ledger) AddBlockCentralized(b *Block) AddResult {
	if _, seen := l.seenData[b.Data]; seen {
		return Accepted
	}
	l.link(b)
	return Accepted
}

func (l *Ledger) link(b *Block) {
	l.chain[b.ID] = b
	l.headID = b.ID
	l.seenData[b.Data] = struct{}{}
}

// EnqueuePending appends a payload awaiting mining (PoW/PoS only).
func (l *Ledger) EnqueuePending(payload string) {
	l.pending = append(l.pending, payload)
}

// Mint constructs an unsealed block chained onto the current head.
func (l *Ledger) Mint(payload string, now int64) *Block {
	head := l.Head()
	return &Block{
		ID:        head.ID + 1,
		Data:      payload,
		Timestamp: now,
		PrevHash:  head.Hash,
		HasPrev:   true,
	}
}

// dropMined drops payloads from the front of pending that a neighbor
// has already sealed (seen_data), abandoning any in-progress candidate
// for a dropped payload. Returns false once pending is empty.
func (l *Ledger) dropMined() bool {
	for len(l.pending) > 0 {
		if _, seen := l.seenData[l.pending[0]]; !seen {
			return true
		}
		l.pending = l.pending[1:]
		l.candidate = nil
		l.workAccumulator = 0
	}
	return false
}

// Mine performs exactly one PoW attempt against the head of pending.
// Returns the sealed block and the work spent on success, or ok=false
// if this attempt did not seal a block.
func (l *Ledger) Mine(now int64) (block *Block, work int64, ok bool) {
	if !l.dropMined() {
		return nil, 0, false
	}
	if l.candidate == nil {
		l.candidate = l.Mint(l.pending[0], now)
	}
	l.nonceCursor++
	l.workAccumulator++
	l.candidate.Nonce = l.nonceCursor
	h := BlockDigest(l.candidate)
	if h%SealedModulus != 0 {
		return nil, 0, false
	}
	sealed := l.candidate
	sealed.Hash = h
	sealed.Sealed = true
	work = l.workAccumulator
	l.workAccumulator = 0
	l.pending = l.pending[1:]
	l.candidate = nil
	// A neighbor may have sealed the same payload while we were mining;
	// if so, don't self-link — the incoming broadcast already did (or
	// will), and self-linking here would be redundant at best.
	if _, raced := l.seenData[sealed.Data]; !raced {
		l.AddBlock(sealed)
	}
	return sealed, work, true
}

// MinePoS is Mine without the modulus gate: the first attempt always
// seals, at a fixed cost of one unit of work.
func (l *Ledger) MinePoS(now int64) (block *Block, work int64, ok bool) {
	if !l.dropMined() {
		return nil, 0, false
	}
	if l.candidate == nil {
		l.candidate = l.Mint(l.pending[0], now)
	}
	l.nonceCursor++
	l.candidate.Nonce = l.nonceCursor
	sealed := l.candidate
	sealed.Hash = BlockDigest(sealed)
	sealed.Sealed = true
	l.pending = l.pending[1:]
	l.candidate = nil
	if _, raced := l.seenData[sealed.Data]; !raced {
		l.AddBlock(sealed)
	}
	return sealed, 1, true
}

// ProcessTxn mints a new block immediately for the centralized regime:
// no nonce search, no hash assignment — add_block_centralized never
// checks it.
func (l *Ledger) ProcessTxn(payload string, now int64) *Block {
	head := l.Head()
	return &Block{
		ID:        head.ID + 1,
		Data:      payload,
		Timestamp: now,
	}
}
