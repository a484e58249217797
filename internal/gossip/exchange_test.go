package gossip

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vcboard/internal/clock"
	"vcboard/internal/node"
	"vcboard/internal/storage"
)

var abc = []string{"A", "B", "C"}

func newNodes(t *testing.T, ids ...string) map[string]*node.Node {
	t.Helper()
	nodes := make(map[string]*node.Node, len(ids))
	for _, id := range ids {
		n, err := node.New(id, ids)
		require.NoError(t, err)
		nodes[id] = n
	}
	return nodes
}

func ids(posts []storage.Post) []int64 {
	out := make([]int64, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.ID)
	}
	return out
}

func TestExchange_TwoNodes(t *testing.T) {
	n := newNodes(t, abc...)
	a, b := n["A"], n["B"]

	_, err := a.Create("Hello everyone!", 1)
	require.NoError(t, err)
	postB, err := b.Create("Greetings from Bob!", 2)
	require.NoError(t, err)

	stats := Exchange(a, b)
	assert.Equal(t, ExchangeStats{Pulled: 1, Pushed: 1}, stats)

	assert.Equal(t, clock.Timestamp{"A": 2, "B": 1, "C": 0}, a.Clock())
	assert.Equal(t, clock.Timestamp{"A": 1, "B": 2, "C": 0}, b.Clock())
	assert.Equal(t, []int64{1, 2}, ids(a.Posts()))
	assert.Equal(t, []int64{2, 1}, ids(b.Posts()))

	next, err := a.Create("I just synced with Bob!", 3)
	require.NoError(t, err)
	assert.Equal(t, clock.Timestamp{"A": 3, "B": 1, "C": 0}, next.Timestamp)
	assert.True(t, clock.Follows(next.Timestamp, postB.Timestamp))
}

func TestExchange_IsIdempotent(t *testing.T) {
	n := newNodes(t, abc...)
	a, b := n["A"], n["B"]
	_, err := a.Create("x", 1)
	require.NoError(t, err)

	Exchange(a, b)
	clockA, clockB := a.Clock(), b.Clock()

	stats := Exchange(a, b)
	assert.Zero(t, stats.Total())
	assert.Equal(t, clockA, a.Clock())
	assert.Equal(t, clockB, b.Clock())
}

func TestExchange_Self(t *testing.T) {
	n := newNodes(t, abc...)
	_, err := n["A"].Create("x", 1)
	require.NoError(t, err)

	assert.Zero(t, Exchange(n["A"], n["A"]).Total())
	assert.Equal(t, int64(1), n["A"].Clock().Get("A"))
}

func TestExchange_ClockDominatesPriorStamps(t *testing.T) {
	n := newNodes(t, abc...)
	a, b := n["A"], n["B"]
	for i := int64(1); i <= 3; i++ {
		_, err := a.Create("a", i)
		require.NoError(t, err)
	}
	for i := int64(10); i <= 12; i++ {
		_, err := b.Create("b", i)
		require.NoError(t, err)
	}

	var before []storage.Post
	before = append(before, a.Posts()...)
	before = append(before, b.Posts()...)

	Exchange(a, b)

	for _, peer := range []*node.Node{a, b} {
		current := peer.Clock()
		for _, p := range before {
			o := clock.Compare(current, p.Timestamp)
			assert.Contains(t, []clock.Ordering{clock.After, clock.Equal}, o,
				"%s clock %v vs post %d %v", peer.ID(), current, p.ID, p.Timestamp)
		}
		assert.Len(t, peer.Posts(), 6)
	}
}

func TestExchange_OwnPostNeverDuplicated(t *testing.T) {
	n := newNodes(t, abc...)
	a, b, c := n["A"], n["B"], n["C"]
	_, err := a.Create("mine", 1)
	require.NoError(t, err)

	Exchange(a, b)
	Exchange(b, c)
	Exchange(c, a)
	Exchange(a, b)

	assert.Equal(t, []int64{1}, ids(a.Posts()))
	assert.Equal(t, int64(1), a.Clock().Get("A"))
}

func TestExchange_ChainedSyncConverges(t *testing.T) {
	n := newNodes(t, abc...)
	a, b, c := n["A"], n["B"], n["C"]
	_, err := a.Create("a", 1)
	require.NoError(t, err)
	_, err = b.Create("b", 2)
	require.NoError(t, err)
	_, err = c.Create("c", 3)
	require.NoError(t, err)

	Exchange(a, b)
	Exchange(b, c)
	Exchange(a, c)

	peers := []Peer{a, b, c}
	assert.True(t, Converged(peers))
	for _, p := range []*node.Node{a, b, c} {
		assert.ElementsMatch(t, []int64{1, 2, 3}, ids(p.Posts()), p.ID())
	}
}

func TestExchange_ChainedSyncDependsOnOrder(t *testing.T) {
	n := newNodes(t, abc...)
	a, b, c := n["A"], n["B"], n["C"]
	_, err := a.Create("a", 1)
	require.NoError(t, err)
	_, err = c.Create("c", 3)
	require.NoError(t, err)

	// B talks to C before it has A's post, so C never learns of it.
	Exchange(b, c)
	Exchange(a, b)

	assert.False(t, c.HasSeen(1))
	assert.False(t, Converged([]Peer{a, b, c}))

	Exchange(b, c)
	assert.True(t, Converged([]Peer{a, b, c}))
}

func TestConverged_Empty(t *testing.T) {
	n := newNodes(t, abc...)
	assert.True(t, Converged(nil))
	assert.True(t, Converged([]Peer{n["A"], n["B"]}))
}
