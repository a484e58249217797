package clock

import (
	"fmt"
)

// VectorClock is the clock owned by a single process. Its key set is fixed
// at construction to the system-wide process set.
// Thread-safe operations should be handled by the caller.
type VectorClock struct {
	pid      string
	counters Timestamp
}

// New creates a vector clock owned by pid with every process counter at 0.
func New(pid string, processes []string) (*VectorClock, error) {
	if len(processes) == 0 {
		return nil, ErrNoProcesses
	}

	counters := make(Timestamp, len(processes))
	for _, p := range processes {
		if p == "" {
			return nil, ErrEmptyProcessID
		}
		if _, dup := counters[p]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateProcess, p)
		}
		counters[p] = 0
	}
	if _, ok := counters[pid]; !ok {
		return nil, fmt.Errorf("%w: owner %q", ErrUnknownProcess, pid)
	}

	return &VectorClock{pid: pid, counters: counters}, nil
}

// PID returns the owning process ID.
func (vc *VectorClock) PID() string {
	return vc.pid
}

// Processes returns the fixed process set in sorted order.
func (vc *VectorClock) Processes() []string {
	return vc.counters.Processes()
}

// Get returns the counter value for the given process ID, or 0 if unknown.
func (vc *VectorClock) Get(pid string) int64 {
	return vc.counters[pid]
}

// Increment raises the owner's counter by one.
func (vc *VectorClock) Increment() {
	vc.counters[vc.pid]++
}

// Merge raises every known counter to the maximum of its value and the
// matching value in other. Process IDs unknown to this clock are ignored.
func (vc *VectorClock) Merge(other Timestamp) {
	for pid, counter := range vc.counters {
		if o := other[pid]; o > counter {
			vc.counters[pid] = o
		}
	}
}

// Snapshot returns an independent copy of the counters.
func (vc *VectorClock) Snapshot() Timestamp {
	return vc.counters.Copy()
}

// Compare classifies the current counters against other.
func (vc *VectorClock) Compare(other Timestamp) Ordering {
	return Compare(vc.counters, other)
}

// String returns a string representation of the vector clock.
func (vc *VectorClock) String() string {
	return vc.counters.String()
}
