package node

import (
	"fmt"
	"log/slog"
	"sync"

	"vcboard/internal/clock"
	"vcboard/internal/storage"
)

// Node represents a single process of the board.
type Node struct {
	mu     sync.Mutex
	id     string
	clock  *clock.VectorClock
	log    storage.Log
	logger *slog.Logger
}

// Option configures a Node.
type Option func(*Node)

// WithLogger sets the logger used for create/receive events.
func WithLogger(logger *slog.Logger) Option {
	return func(n *Node) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// WithLog replaces the default in-memory post log.
func WithLog(l storage.Log) Option {
	return func(n *Node) {
		if l != nil {
			n.log = l
		}
	}
}

// New creates a node for process id. processes is the full system process
// set and must include id.
func New(id string, processes []string, opts ...Option) (*Node, error) {
	vc, err := clock.New(id, processes)
	if err != nil {
		return nil, fmt.Errorf("node %q: %w", id, err)
	}

	n := &Node{
		id:     id,
		clock:  vc,
		log:    storage.NewInMemoryLog(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(n)
	}
	n.logger = n.logger.With("node", id)
	return n, nil
}

// ID returns the process ID of the node.
func (n *Node) ID() string {
	return n.id
}

// Create authors a post. The clock is incremented before the post is stamped
// so the stamp covers the act of authoring it. postID is allocated by the
// caller and must be globally unique.
func (n *Node) Create(message string, postID int64) (storage.Post, error) {
	if postID <= 0 {
		return storage.Post{}, fmt.Errorf("%w: %d", ErrInvalidPostID, postID)
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if n.log.Contains(postID) {
		return storage.Post{}, fmt.Errorf("%w: %d", ErrDuplicatePost, postID)
	}

	n.clock.Increment()
	post := storage.Post{
		ID:        postID,
		Author:    n.id,
		Message:   message,
		Timestamp: n.clock.Snapshot(),
	}
	n.log.Append(post)

	n.logger.Debug("post created", "post_id", postID, "clock", n.clock.String())
	return post.Clone(), nil
}

// Receive incorporates a post authored elsewhere. A post whose ID was already
// seen is ignored and false is returned. Otherwise the node's own counter is
// incremented for the receive, then the post's timestamp is merged in.
func (n *Node) Receive(post storage.Post) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.log.Contains(post.ID) {
		n.logger.Debug("duplicate post ignored", "post_id", post.ID)
		return false
	}

	n.clock.Increment()
	n.clock.Merge(post.Timestamp)
	n.log.Append(post)

	n.logger.Debug("post received", "post_id", post.ID, "author", post.Author, "clock", n.clock.String())
	return true
}

// Clock returns a snapshot of the node's current clock.
func (n *Node) Clock() clock.Timestamp {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.clock.Snapshot()
}

// Posts returns copies of the node's posts in the order they were logged.
func (n *Node) Posts() []storage.Post {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.log.List()
}

// HasSeen reports whether the post ID is in the node's log.
func (n *Node) HasSeen(postID int64) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.log.Contains(postID)
}

// Len returns the number of posts in the node's log.
func (n *Node) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.log.Len()
}

// State returns the clock and posts captured under a single lock.
func (n *Node) State() (clock.Timestamp, []storage.Post) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.clock.Snapshot(), n.log.List()
}
