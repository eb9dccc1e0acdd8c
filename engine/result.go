package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Metrics summarizes a completed (or exhausted) run.
type Metrics struct {
	PacketsSent      int64   `json:"packets_sent"`
	NumComputations  int64   `json:"num_computations"`
	TicksElapsed     int64   `json:"ticks_elapsed"`
	MajorityIndex    int64   `json:"majority_index"`
	ConsensusIndex   int64   `json:"consensus_index"`
	Exhausted        bool    `json:"exhausted"` // true if MaxTicks was hit before full consensus
	AverageLatency   float64 `json:"average_latency"`
	AverageConsensus float64 `json:"average_consensus_time"`
}

// Result is the full output of a run: per-transaction latency and
// consensus-time stamps, plus run-level metrics.
//
// Its JSON shape intentionally preserves a quirk of the original
// prototype's companion plotting script, which divides total latency
// by len(result)-1 when averaging: MarshalJSON emits a single object
// with keys "1".."N" for stamped transactions, plus exactly one
// sibling "metrics" key, rather than two separate top-level maps.
type Result struct {
	Latency   map[int64]int64
	Consensus map[int64]int64
	Metrics   Metrics
}

type txRecord struct {
	Latency   *int64 `json:"LATENCY,omitempty"`
	Consensus *int64 `json:"CONSENSUS,omitempty"`
}

// MarshalJSON implements the single-object-plus-metrics-key shape
// described above. Only stamped transactions get a key: one that
// reached majority but not full agreement before MaxTicks was exhausted
// carries LATENCY with no CONSENSUS field, and one that reached neither
// has no key in the object at all, so unresolved transactions are not
// listed in the output.
func (r *Result) MarshalJSON() ([]byte, error) {
	seen := make(map[int64]struct{}, len(r.Latency)+len(r.Consensus))
	for seq := range r.Latency {
		seen[seq] = struct{}{}
	}
	for seq := range r.Consensus {
		seen[seq] = struct{}{}
	}
	seqs := make([]int64, 0, len(seen))
	for seq := range seen {
		seqs = append(seqs, seq)
	}
	sort.Slice(seqs, func(i, j int) bool { return seqs[i] < seqs[j] })

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, seq := range seqs {
		if i > 0 {
			buf.WriteByte(',')
		}
		rec := txRecord{}
		if v, ok := r.Latency[seq]; ok {
			rec.Latency = &v
		}
		if v, ok := r.Consensus[seq]; ok {
			rec.Consensus = &v
		}
		recJSON, err := json.Marshal(rec)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(&buf, "%q:%s", fmt.Sprint(seq), recJSON)
	}
	if len(seqs) > 0 {
		buf.WriteByte(',')
	}
	metricsJSON, err := json.Marshal(r.Metrics)
	if err != nil {
		return nil, err
	}
	buf.WriteString(`"metrics":`)
	buf.Write(metricsJSON)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
