// Package schedule loads the tick-indexed injection plan a simulation
// run replays: which node originates a transaction at which tick.
// Reading this from serialized form is ambient-stack, not part of the
// simulation core itself.
package schedule

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Entry is a single scheduled injection: node Origin sends Payload.
type Entry struct {
	Origin  int    `json:"origin"`
	Payload string `json:"payload"`
}

// Schedule maps a tick to the (possibly empty) list of entries
// injected at that tick. Every entry is assumed to become exactly one
// block — engine.Network derives its last-block-id bound from Count(),
// the sum over all ticks' entries.
type Schedule map[int64][]Entry

// Ticks returns every tick key in the schedule, ascending, including
// ticks whose entry list is empty.
func (s Schedule) Ticks() []int64 {
	ticks := make([]int64, 0, len(s))
	for t := range s {
		ticks = append(ticks, t)
	}
	sort.Slice(ticks, func(i, j int) bool { return ticks[i] < ticks[j] })
	return ticks
}

// Count returns the total number of scheduled entries across all
// ticks, used as the last-expected-block-id bound.
func (s Schedule) Count() int64 {
	var n int64
	for _, entries := range s {
		n += int64(len(entries))
	}
	return n
}

// ResolvePath turns the CLI's "--schedule: name" surface (spec.md §6)
// into a file path: name joined under dir as "<name>.json". If dir is
// empty, name is treated as a literal path instead, so a bare file
// path still works without a configured schedule directory.
func ResolvePath(dir, name string) string {
	if dir == "" {
		return name
	}
	return filepath.Join(dir, name+".json")
}

// Load reads a Schedule from a JSON file shaped as
// {"<tick>": [{"origin": <id>, "payload": "..."}]}.
func Load(path string) (Schedule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("schedule: read %s: %w", path, err)
	}
	var raw map[string][]Entry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("schedule: parse %s: %w", path, err)
	}
	s := make(Schedule, len(raw))
	for k, entries := range raw {
		var tick int64
		if _, err := fmt.Sscanf(k, "%d", &tick); err != nil {
			return nil, fmt.Errorf("schedule: invalid tick key %q: %w", k, err)
		}
		s[tick] = entries
	}
	return s, nil
}
