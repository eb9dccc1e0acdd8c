package core

import (
	"encoding/binary"

	"golang.org/x/crypto/blake2b"
)

// BlockDigest computes the deterministic digest of a block's contents:
// (id, data, nonce, timestamp). The protocol only depends on this being
// uniformly distributed modulo 600 (spec's PoW seal gate); any
// deterministic, well-distributed function satisfies that, so this uses
// blake2b rather than a hand-rolled checksum.
func BlockDigest(b *Block) uint64 {
	h, _ := blake2b.New256(nil)
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(b.ID))
	h.Write(buf[:])
	h.Write([]byte(b.Data))
	binary.BigEndian.PutUint64(buf[:], uint64(b.Nonce))
	h.Write(buf[:])
	binary.BigEndian.PutUint64(buf[:], uint64(b.Timestamp))
	h.Write(buf[:])
	sum := h.Sum(nil)
	return binary.BigEndian.Uint64(sum[:8])
}

// SealedModulus is the PoW acceptance gate: a sealed block's hash must
// be divisible by this value. Expected mining work per block is
// SealedModulus attempts under a uniform digest.
const SealedModulus = 600
