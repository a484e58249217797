package storage

import (
	"sync"

	"vcboard/internal/clock"
)

// Post is a message stamped with its author's clock at creation time.
type Post struct {
	ID        int64           `json:"id"`
	Author    string          `json:"author"`
	Message   string          `json:"message"`
	Timestamp clock.Timestamp `json:"timestamp"`
}

// Clone returns a deep copy of the post so its timestamp can't be shared.
func (p Post) Clone() Post {
	p.Timestamp = p.Timestamp.Copy()
	return p
}

// Log defines the interface for a node's post record.
type Log interface {
	// Append adds a post unless its ID is already present. Returns false for
	// a duplicate.
	Append(p Post) bool
	// Get retrieves a post by ID.
	Get(id int64) (Post, bool)
	// Contains reports whether the ID has been appended.
	Contains(id int64) bool
	// List returns every post in append order.
	List() []Post
	// Len returns the number of posts.
	Len() int
}

// InMemoryLog is an in-memory implementation of Log.
// It's thread-safe and only hands out copies.
type InMemoryLog struct {
	mu    sync.RWMutex
	posts []Post
	seen  map[int64]int // post ID -> index in posts
}

// NewInMemoryLog creates an empty log.
func NewInMemoryLog() *InMemoryLog {
	return &InMemoryLog{
		posts: make([]Post, 0),
		seen:  make(map[int64]int),
	}
}

// Append stores a copy of p at the end of the log.
func (l *InMemoryLog) Append(p Post) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.seen[p.ID]; exists {
		return false
	}
	l.seen[p.ID] = len(l.posts)
	l.posts = append(l.posts, p.Clone())
	return true
}

// Get retrieves a post by ID.
func (l *InMemoryLog) Get(id int64) (Post, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	idx, exists := l.seen[id]
	if !exists {
		return Post{}, false
	}
	// Return a copy to avoid external modifications
	return l.posts[idx].Clone(), true
}

// Contains reports whether the ID has been appended.
func (l *InMemoryLog) Contains(id int64) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	_, exists := l.seen[id]
	return exists
}

// List returns copies of every post in append order.
func (l *InMemoryLog) List() []Post {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Post, len(l.posts))
	for i, p := range l.posts {
		out[i] = p.Clone()
	}
	return out
}

// Len returns the number of posts.
func (l *InMemoryLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.posts)
}
