package board

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"vcboard/internal/clock"
	"vcboard/internal/gossip"
	"vcboard/internal/node"
	"vcboard/internal/storage"
)

// ErrUnknownProcess is returned when a request names a process the board
// doesn't have.
var ErrUnknownProcess = errors.New("board: unknown process")

// Board owns one node per process and the post ID allocator.
type Board struct {
	processes []string
	nodes     map[string]*node.Node
	ids       *IDAllocator
	gossiper  *gossip.Gossiper
	logger    *slog.Logger

	gossipOpts []gossip.GossiperOption
}

// Option configures a Board.
type Option func(*Board)

// WithAllocator shares an existing post ID allocator.
func WithAllocator(a *IDAllocator) Option {
	return func(b *Board) {
		b.ids = a
	}
}

// WithLogger sets the logger for the board and its nodes.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Board) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithGossipSeed makes the board's gossip pairing deterministic.
func WithGossipSeed(seed int64) Option {
	return func(b *Board) {
		b.gossipOpts = append(b.gossipOpts, gossip.WithSeed(seed))
	}
}

// New creates a board over processes, one node each.
func New(processes []string, opts ...Option) (*Board, error) {
	if len(processes) == 0 {
		return nil, fmt.Errorf("board: %w", clock.ErrNoProcesses)
	}

	b := &Board{
		processes: append([]string(nil), processes...),
		nodes:     make(map[string]*node.Node, len(processes)),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}

	if b.ids == nil {
		b.ids = NewIDAllocator(1)
	}

	peers := make([]gossip.Peer, 0, len(processes))
	for _, pid := range processes {
		n, err := node.New(pid, processes, node.WithLogger(b.logger))
		if err != nil {
			return nil, fmt.Errorf("board: %w", err)
		}
		b.nodes[pid] = n
		peers = append(peers, n)
	}

	b.gossiper = gossip.NewGossiper(peers, append(b.gossipOpts, gossip.WithLogger(b.logger))...)
	return b, nil
}

// Processes returns the process IDs in configuration order.
func (b *Board) Processes() []string {
	return append([]string(nil), b.processes...)
}

// Node returns the node of process pid.
func (b *Board) Node(pid string) (*node.Node, error) {
	n, ok := b.nodes[pid]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProcess, pid)
	}
	return n, nil
}

// Peers returns every node as a gossip peer, in configuration order.
func (b *Board) Peers() []gossip.Peer {
	peers := make([]gossip.Peer, 0, len(b.processes))
	for _, pid := range b.processes {
		peers = append(peers, b.nodes[pid])
	}
	return peers
}

// Gossiper returns the board's anti-entropy gossiper.
func (b *Board) Gossiper() *gossip.Gossiper {
	return b.gossiper
}

// NextPostID returns the ID the next post will get.
func (b *Board) NextPostID() int64 {
	return b.ids.Peek()
}

// Post creates a post authored by pid with the next post ID.
func (b *Board) Post(pid, message string) (storage.Post, error) {
	n, err := b.Node(pid)
	if err != nil {
		return storage.Post{}, err
	}

	post, err := n.Create(message, b.ids.Next())
	if err != nil {
		return storage.Post{}, fmt.Errorf("board: post from %q: %w", pid, err)
	}

	b.logger.Info("message posted", "process", pid, "post_id", post.ID, "timestamp", post.Timestamp.String())
	return post, nil
}

// Sync exchanges missing posts between the nodes of a and c.
func (b *Board) Sync(a, c string) (gossip.ExchangeStats, error) {
	x, err := b.Node(a)
	if err != nil {
		return gossip.ExchangeStats{}, err
	}
	y, err := b.Node(c)
	if err != nil {
		return gossip.ExchangeStats{}, err
	}

	stats := gossip.Exchange(x, y)
	b.logger.Info("nodes synced", "a", a, "b", c, "pulled", stats.Pulled, "pushed", stats.Pushed)
	return stats, nil
}

// GossipResult summarizes a call to Gossip.
type GossipResult struct {
	Rounds     int  `json:"rounds"`
	Deliveries int  `json:"deliveries"`
	Converged  bool `json:"converged"`
}

// Gossip runs up to rounds anti-entropy rounds, stopping early once every
// node holds every post. Running out of rounds is reported through
// Converged, not as an error.
func (b *Board) Gossip(ctx context.Context, rounds int) (GossipResult, error) {
	run, err := b.gossiper.RunUntilConverged(ctx, rounds)
	result := GossipResult{
		Rounds:     run.Rounds,
		Deliveries: run.Deliveries,
		Converged:  err == nil,
	}
	if err != nil && !errors.Is(err, gossip.ErrNotConverged) {
		return result, err
	}
	return result, nil
}
