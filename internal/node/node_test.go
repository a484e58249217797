package node

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vcboard/internal/clock"
	"vcboard/internal/storage"
)

var abc = []string{"A", "B", "C"}

func newNode(t *testing.T, id string) *Node {
	t.Helper()
	n, err := New(id, abc)
	require.NoError(t, err)
	return n
}

func TestNew_RejectsUnknownOwner(t *testing.T) {
	_, err := New("Z", abc)
	assert.ErrorIs(t, err, clock.ErrUnknownProcess)
}

func TestCreate_IncrementsThenStamps(t *testing.T) {
	a := newNode(t, "A")

	post, err := a.Create("hello", 1)
	require.NoError(t, err)

	assert.Equal(t, int64(1), post.ID)
	assert.Equal(t, "A", post.Author)
	assert.Equal(t, "hello", post.Message)
	assert.Equal(t, clock.Timestamp{"A": 1, "B": 0, "C": 0}, post.Timestamp)
	assert.Equal(t, clock.Timestamp{"A": 1, "B": 0, "C": 0}, a.Clock())
	assert.True(t, a.HasSeen(1))
	assert.Equal(t, 1, a.Len())
}

func TestCreate_StampIsDetachedFromClock(t *testing.T) {
	a := newNode(t, "A")
	post, err := a.Create("first", 1)
	require.NoError(t, err)

	_, err = a.Create("second", 2)
	require.NoError(t, err)

	assert.Equal(t, int64(1), post.Timestamp.Get("A"), "returned stamp changed")
	logged := a.Posts()
	require.Len(t, logged, 2)
	assert.Equal(t, int64(1), logged[0].Timestamp.Get("A"), "logged stamp changed")
	assert.Equal(t, int64(2), logged[1].Timestamp.Get("A"))

	// Mutating a returned post must not reach the node.
	post.Timestamp["A"] = 100
	assert.Equal(t, int64(1), a.Posts()[0].Timestamp.Get("A"))
}

func TestCreate_Guards(t *testing.T) {
	a := newNode(t, "A")

	_, err := a.Create("zero", 0)
	assert.ErrorIs(t, err, ErrInvalidPostID)

	_, err = a.Create("ok", 5)
	require.NoError(t, err)

	_, err = a.Create("again", 5)
	assert.ErrorIs(t, err, ErrDuplicatePost)

	assert.Equal(t, int64(1), a.Clock().Get("A"), "rejected creates must not touch the clock")
	assert.Equal(t, 1, a.Len())
}

func TestReceive_IncrementsThenMerges(t *testing.T) {
	a := newNode(t, "A")
	b := newNode(t, "B")

	postB, err := b.Create("from B", 2)
	require.NoError(t, err)

	require.True(t, a.Receive(postB))
	assert.Equal(t, clock.Timestamp{"A": 1, "B": 1, "C": 0}, a.Clock())
	assert.True(t, a.HasSeen(2))
}

func TestReceive_DuplicateIsNoOp(t *testing.T) {
	a := newNode(t, "A")
	b := newNode(t, "B")

	postB, err := b.Create("from B", 2)
	require.NoError(t, err)

	require.True(t, a.Receive(postB))
	clockAfterFirst := a.Clock()
	lenAfterFirst := a.Len()

	assert.False(t, a.Receive(postB))
	assert.Equal(t, clockAfterFirst, a.Clock())
	assert.Equal(t, lenAfterFirst, a.Len())
	assert.True(t, a.HasSeen(2))
}

func TestReceive_OwnPostRoutedBack(t *testing.T) {
	a := newNode(t, "A")
	b := newNode(t, "B")

	postA, err := a.Create("mine", 1)
	require.NoError(t, err)
	require.True(t, b.Receive(postA))

	// A gets its own post back via B.
	for _, p := range b.Posts() {
		a.Receive(p)
	}

	posts := a.Posts()
	require.Len(t, posts, 1)
	assert.Equal(t, int64(1), posts[0].ID)
}

func TestReceive_IgnoresForeignProcesses(t *testing.T) {
	a := newNode(t, "A")

	a.Receive(storage.Post{ID: 9, Author: "X", Timestamp: clock.Timestamp{"X": 4, "B": 2}})

	assert.Equal(t, clock.Timestamp{"A": 1, "B": 2, "C": 0}, a.Clock())
}

func TestScenario_ConcurrentPostsThenSync(t *testing.T) {
	a := newNode(t, "A")
	b := newNode(t, "B")

	postA, err := a.Create("Hello everyone!", 1)
	require.NoError(t, err)
	postB, err := b.Create("Greetings from Bob!", 2)
	require.NoError(t, err)

	assert.Equal(t, clock.Timestamp{"A": 1, "B": 0, "C": 0}, postA.Timestamp)
	assert.Equal(t, clock.Timestamp{"A": 0, "B": 1, "C": 0}, postB.Timestamp)
	assert.Equal(t, clock.Concurrent, clock.Compare(postA.Timestamp, postB.Timestamp))

	a.Receive(postB)
	b.Receive(postA)
	assert.Equal(t, clock.Timestamp{"A": 2, "B": 1, "C": 0}, a.Clock())
	assert.Equal(t, clock.Timestamp{"A": 1, "B": 2, "C": 0}, b.Clock())

	next, err := a.Create("I just synced with Bob!", 3)
	require.NoError(t, err)
	assert.Equal(t, clock.Timestamp{"A": 3, "B": 1, "C": 0}, next.Timestamp)
	assert.Equal(t, clock.After, clock.Compare(next.Timestamp, postB.Timestamp))
}

func TestNode_ConcurrentCreateAndReceive(t *testing.T) {
	a := newNode(t, "A")
	b := newNode(t, "B")

	var incoming []storage.Post
	for i := int64(1); i <= 50; i++ {
		p, err := b.Create("b", i)
		require.NoError(t, err)
		incoming = append(incoming, p)
	}

	var wg sync.WaitGroup
	for _, p := range incoming {
		wg.Add(2)
		go func(p storage.Post) {
			defer wg.Done()
			a.Receive(p)
		}(p)
		go func(p storage.Post) {
			defer wg.Done()
			a.Receive(p)
		}(p)
	}
	for i := int64(100); i < 120; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			_, _ = a.Create("a", id)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 70, a.Len())
	got := a.Clock()
	assert.Equal(t, int64(70), got.Get("A"), "one increment per create and per first receive")
	assert.Equal(t, int64(50), got.Get("B"))
}

// countingLog records appends on top of the in-memory log.
type countingLog struct {
	*storage.InMemoryLog
	appends int
}

func (l *countingLog) Append(p storage.Post) bool {
	l.appends++
	return l.InMemoryLog.Append(p)
}

func TestNew_WithLog(t *testing.T) {
	log := &countingLog{InMemoryLog: storage.NewInMemoryLog()}
	log.Append(storage.Post{ID: 1, Author: "B", Message: "restored", Timestamp: clock.Timestamp{"B": 1}})

	n, err := New("A", abc, WithLog(log))
	require.NoError(t, err)

	assert.True(t, n.HasSeen(1), "posts already in the injected log count as seen")
	assert.False(t, n.Receive(storage.Post{ID: 1, Author: "B", Timestamp: clock.Timestamp{"B": 1}}))

	_, err = n.Create("taken", 1)
	assert.ErrorIs(t, err, ErrDuplicatePost)

	p, err := n.Create("fresh", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, log.appends)

	stored, ok := log.Get(2)
	require.True(t, ok)
	assert.Equal(t, p, stored)
	assert.Equal(t, clock.Timestamp{"A": 1, "B": 0, "C": 0}, stored.Timestamp)

	n2, err := New("A", abc, WithLog(nil))
	require.NoError(t, err)
	assert.Zero(t, n2.Len(), "a nil log keeps the default")
}
