package clock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// grid enumerates every timestamp over {A, B, C} with counters in [0, 2],
// plus a few with partial or foreign key sets.
func grid() []Timestamp {
	var out []Timestamp
	for a := int64(0); a <= 2; a++ {
		for b := int64(0); b <= 2; b++ {
			for c := int64(0); c <= 2; c++ {
				out = append(out, Timestamp{"A": a, "B": b, "C": c})
			}
		}
	}
	return append(out,
		Timestamp{},
		Timestamp{"A": 1},
		Timestamp{"B": 2},
		Timestamp{"A": 1, "D": 1},
		Timestamp{"D": 0},
	)
}

func TestProperty_ExactlyOneOrdering(t *testing.T) {
	for _, a := range grid() {
		for _, b := range grid() {
			holds := 0
			for _, ok := range []bool{Precedes(a, b), Follows(a, b), Identical(a, b), IsConcurrent(a, b)} {
				if ok {
					holds++
				}
			}
			require.Equal(t, 1, holds, "a=%v b=%v", a, b)
		}
	}
}

func TestProperty_CompareMatchesPredicates(t *testing.T) {
	for _, a := range grid() {
		for _, b := range grid() {
			want := Concurrent
			switch {
			case Precedes(a, b):
				want = Before
			case Follows(a, b):
				want = After
			case Identical(a, b):
				want = Equal
			}
			require.Equal(t, want, Compare(a, b), "a=%v b=%v", a, b)
		}
	}
}

func TestProperty_Reflexivity(t *testing.T) {
	for _, a := range grid() {
		assert.False(t, Precedes(a, a), "%v precedes itself", a)
		assert.False(t, Follows(a, a), "%v follows itself", a)
		assert.True(t, Identical(a, a), "%v not identical to itself", a)
		assert.Equal(t, Equal, Compare(a, a.Copy()))
	}
}

func TestProperty_Antisymmetry(t *testing.T) {
	for _, a := range grid() {
		for _, b := range grid() {
			if Precedes(a, b) {
				require.False(t, Precedes(b, a), "a=%v b=%v", a, b)
				require.True(t, Follows(b, a), "a=%v b=%v", a, b)
			}
			require.Equal(t, Compare(a, b).Inverse(), Compare(b, a), "a=%v b=%v", a, b)
		}
	}
}

func TestProperty_Transitivity(t *testing.T) {
	g := grid()
	for _, a := range g {
		for _, b := range g {
			if !Precedes(a, b) {
				continue
			}
			for _, c := range g {
				if Precedes(b, c) {
					require.True(t, Precedes(a, c), "a=%v b=%v c=%v", a, b, c)
				}
			}
		}
	}
}

func TestProperty_IncrementIsMonotonic(t *testing.T) {
	vc, err := New("B", abc)
	require.NoError(t, err)
	vc.Merge(Timestamp{"A": 2, "B": 1, "C": 1})

	before := vc.Snapshot()
	vc.Increment()
	after := vc.Snapshot()

	assert.Equal(t, After, Compare(after, before))
	assert.Equal(t, before["B"]+1, after["B"])
	assert.Equal(t, before["A"], after["A"])
	assert.Equal(t, before["C"], after["C"])
}

func TestProperty_MergeIsMonotonicAndIdempotent(t *testing.T) {
	for _, start := range grid() {
		for _, incoming := range grid() {
			vc, err := New("A", abc)
			require.NoError(t, err)
			vc.Merge(start)

			before := vc.Snapshot()
			vc.Merge(incoming)
			once := vc.Snapshot()
			vc.Merge(incoming)
			twice := vc.Snapshot()

			for pid, v := range before {
				require.GreaterOrEqual(t, once[pid], v, "merge lowered %s", pid)
			}
			require.Equal(t, once, twice, "merge not idempotent for %v", incoming)
			require.Len(t, once, 3, "key set changed")
		}
	}
}

func TestProperty_MergeDominatesInputs(t *testing.T) {
	for _, incoming := range grid() {
		vc, err := New("A", abc)
		require.NoError(t, err)
		vc.Merge(Timestamp{"A": 1, "B": 1})

		before := vc.Snapshot()
		vc.Merge(incoming)
		merged := vc.Snapshot()

		assert.Contains(t, []Ordering{After, Equal}, Compare(merged, before))

		// Restricted to known processes the merged clock dominates the input.
		known := Timestamp{}
		for _, pid := range abc {
			known[pid] = incoming[pid]
		}
		assert.Contains(t, []Ordering{After, Equal}, Compare(merged, known), "incoming=%v", incoming)
	}
}
