package clock

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Timestamp is a detached mapping from process ID to counter. Missing
// process IDs read as zero.
type Timestamp map[string]int64

// Entry is a single (process, counter) pair of a Timestamp.
type Entry struct {
	Process string `json:"process"`
	Counter int64  `json:"counter"`
}

// Get returns the counter for the given process ID, or 0 if not present.
func (ts Timestamp) Get(pid string) int64 {
	return ts[pid]
}

// Copy creates a deep copy of the timestamp. A nil timestamp copies to an
// empty one.
func (ts Timestamp) Copy() Timestamp {
	c := make(Timestamp, len(ts))
	for k, v := range ts {
		c[k] = v
	}
	return c
}

// Sum returns the total of all counters.
func (ts Timestamp) Sum() int64 {
	var total int64
	for _, v := range ts {
		total += v
	}
	return total
}

// Processes returns the process IDs of the timestamp in sorted order.
func (ts Timestamp) Processes() []string {
	pids := make([]string, 0, len(ts))
	for k := range ts {
		pids = append(pids, k)
	}
	sort.Strings(pids)
	return pids
}

// Entries returns the timestamp as (process, counter) pairs ordered by
// process ID.
func (ts Timestamp) Entries() []Entry {
	entries := make([]Entry, 0, len(ts))
	for _, pid := range ts.Processes() {
		entries = append(entries, Entry{Process: pid, Counter: ts[pid]})
	}
	return entries
}

// FromEntries builds a timestamp from ordered pairs. Empty or duplicate
// process IDs and negative counters are rejected.
func FromEntries(entries []Entry) (Timestamp, error) {
	ts := make(Timestamp, len(entries))
	for _, e := range entries {
		if e.Process == "" {
			return nil, ErrEmptyProcessID
		}
		if e.Counter < 0 {
			return nil, fmt.Errorf("%w: %s=%d", ErrNegativeCounter, e.Process, e.Counter)
		}
		if _, dup := ts[e.Process]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateProcess, e.Process)
		}
		ts[e.Process] = e.Counter
	}
	return ts, nil
}

// String returns a deterministic representation such as {A:1, B:0}.
func (ts Timestamp) String() string {
	if len(ts) == 0 {
		return "{}"
	}

	parts := make([]string, 0, len(ts))
	for _, e := range ts.Entries() {
		parts = append(parts, fmt.Sprintf("%s:%d", e.Process, e.Counter))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// MarshalJSON encodes the timestamp as an ordered list of entries.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(ts.Entries())
}

// UnmarshalJSON decodes an ordered list of entries.
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	decoded, err := FromEntries(entries)
	if err != nil {
		return err
	}
	*ts = decoded
	return nil
}

// union returns every process ID present in either timestamp.
func union(a, b Timestamp) map[string]struct{} {
	keys := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		keys[k] = struct{}{}
	}
	for k := range b {
		keys[k] = struct{}{}
	}
	return keys
}
