package resultstore

import (
	"encoding/json"
	"fmt"
)

// Store archives completed run results under a DB, keyed by the run's
// identifying tuple so multiple runs over the same schedule (e.g. the
// three protocol variants) can be looked up and compared later.
type Store struct {
	db DB
}

// New wraps db as a result archive.
func New(db DB) *Store {
	return &Store{db: db}
}

// Key derives the archive key for a run's identifying tuple.
func Key(runTag, protocol, topology string, nodeCount int) []byte {
	return []byte(fmt.Sprintf("run:%s:%s:%s:%d", runTag, protocol, topology, nodeCount))
}

// Put archives result (anything JSON-marshalable, typically
// *engine.Result) under the run's identifying tuple.
func (s *Store) Put(runTag, protocol, topology string, nodeCount int, result any) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("resultstore: marshal result: %w", err)
	}
	return s.db.Set(Key(runTag, protocol, topology, nodeCount), data)
}

// Run names one result to archive as part of a PutBatch call.
type Run struct {
	RunTag    string
	Protocol  string
	Topology  string
	NodeCount int
	Result    any
}

// PutBatch archives several runs atomically via the DB's Batch, so
// comparing protocol variants over the same schedule (e.g. centralized
// vs pow vs pos) never leaves the archive holding only some of them if
// a write fails partway through.
func (s *Store) PutBatch(runs []Run) error {
	b := s.db.NewBatch()
	for _, r := range runs {
		data, err := json.Marshal(r.Result)
		if err != nil {
			return fmt.Errorf("resultstore: marshal result for %s/%s/%s: %w", r.RunTag, r.Protocol, r.Topology, err)
		}
		b.Set(Key(r.RunTag, r.Protocol, r.Topology, r.NodeCount), data)
	}
	return b.Write()
}

// Get retrieves the raw archived JSON for a run's identifying tuple.
func (s *Store) Get(runTag, protocol, topology string, nodeCount int) ([]byte, error) {
	return s.db.Get(Key(runTag, protocol, topology, nodeCount))
}

// List returns every archived key for a given run tag, across all
// protocol/topology/node-count combinations recorded under it.
func (s *Store) List(runTag string) ([][]byte, error) {
	it := s.db.NewIterator([]byte("run:" + runTag + ":"))
	defer it.Release()
	var keys [][]byte
	for it.Next() {
		k := make([]byte, len(it.Key()))
		copy(k, it.Key())
		keys = append(keys, k)
	}
	return keys, it.Error()
}
