package clock

import "fmt"

// Ordering is the causal relationship of one timestamp to another.
type Ordering int

const (
	// Before indicates the first timestamp strictly precedes the second.
	Before Ordering = iota
	// After indicates the first timestamp strictly follows the second.
	After
	// Concurrent indicates neither dominates and they differ.
	Concurrent
	// Equal indicates every counter matches.
	Equal
)

// String returns the name of the ordering.
func (o Ordering) String() string {
	switch o {
	case Before:
		return "before"
	case After:
		return "after"
	case Concurrent:
		return "concurrent"
	case Equal:
		return "equal"
	default:
		return fmt.Sprintf("Ordering(%d)", int(o))
	}
}

// MarshalText encodes the ordering by name.
func (o Ordering) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Inverse returns the ordering seen from the other side.
func (o Ordering) Inverse() Ordering {
	switch o {
	case Before:
		return After
	case After:
		return Before
	default:
		return o
	}
}

// Precedes reports whether a happened strictly before b: every counter of a
// is <= the matching counter of b and at least one is <.
func Precedes(a, b Timestamp) bool {
	lessOrEqual, strictlyLess := true, false
	for k := range union(a, b) {
		av, bv := a[k], b[k]
		if av > bv {
			lessOrEqual = false
			break
		}
		if av < bv {
			strictlyLess = true
		}
	}
	return lessOrEqual && strictlyLess
}

// Follows reports whether a happened strictly after b: every counter of a is
// >= the matching counter of b and at least one is >.
func Follows(a, b Timestamp) bool {
	greaterOrEqual, strictlyGreater := true, false
	for k := range union(a, b) {
		av, bv := a[k], b[k]
		if av < bv {
			greaterOrEqual = false
			break
		}
		if av > bv {
			strictlyGreater = true
		}
	}
	return greaterOrEqual && strictlyGreater
}

// Identical reports whether every counter of a equals the matching counter of
// b, treating missing process IDs as zero.
func Identical(a, b Timestamp) bool {
	for k := range union(a, b) {
		if a[k] != b[k] {
			return false
		}
	}
	return true
}

// IsConcurrent reports whether a and b are causally unrelated.
func IsConcurrent(a, b Timestamp) bool {
	return !Precedes(a, b) && !Follows(a, b) && !Identical(a, b)
}

// Compare classifies a against b. All four predicates are evaluated and
// exactly one of them must hold.
func Compare(a, b Timestamp) Ordering {
	before := Precedes(a, b)
	after := Follows(a, b)
	equal := Identical(a, b)
	concurrent := !before && !after && !equal

	matched := 0
	result := Concurrent
	for _, c := range []struct {
		ok bool
		o  Ordering
	}{{before, Before}, {after, After}, {equal, Equal}, {concurrent, Concurrent}} {
		if c.ok {
			matched++
			result = c.o
		}
	}
	if matched != 1 {
		panic(fmt.Sprintf("clock: %s vs %s matched %d orderings", a, b, matched))
	}
	return result
}
