package gossip

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"
)

// ErrNotConverged is returned when peers still differ after the round budget.
var ErrNotConverged = errors.New("gossip: peers did not converge")

// RoundStats summarizes one gossip round.
type RoundStats struct {
	Pairs      int
	Deliveries int
}

// Gossiper runs anti-entropy rounds over a fixed set of peers.
type Gossiper struct {
	mu     sync.Mutex // guards rng and serializes rounds
	peers  []Peer
	rng    *rand.Rand
	logger *slog.Logger

	runMu  sync.Mutex // guards cancel
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// GossiperOption configures a Gossiper.
type GossiperOption func(*Gossiper)

// WithSeed makes peer pairing deterministic.
func WithSeed(seed int64) GossiperOption {
	return func(g *Gossiper) {
		g.rng = rand.New(rand.NewSource(seed))
	}
}

// WithLogger sets the logger for round summaries.
func WithLogger(logger *slog.Logger) GossiperOption {
	return func(g *Gossiper) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// NewGossiper creates a gossiper over peers.
func NewGossiper(peers []Peer, opts ...GossiperOption) *Gossiper {
	g := &Gossiper{
		peers:  append([]Peer(nil), peers...),
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Round shuffles the peers, pairs them up and exchanges every pair. Pairs
// are disjoint, so they run concurrently without two exchanges touching the
// same peer. With an odd peer count one peer sits the round out.
func (g *Gossiper) Round(ctx context.Context) RoundStats {
	g.mu.Lock()
	defer g.mu.Unlock()

	order := g.rng.Perm(len(g.peers))

	var (
		mu    sync.Mutex
		stats RoundStats
		wg    sync.WaitGroup
	)
	for i := 0; i+1 < len(order); i += 2 {
		if ctx.Err() != nil {
			break
		}
		x, y := g.peers[order[i]], g.peers[order[i+1]]
		stats.Pairs++

		wg.Add(1)
		go func(x, y Peer) {
			defer wg.Done()
			s := Exchange(x, y)

			mu.Lock()
			stats.Deliveries += s.Total()
			mu.Unlock()

			if s.Total() > 0 {
				g.logger.Debug("gossip exchange", "peer_a", x.ID(), "peer_b", y.ID(), "pulled", s.Pulled, "pushed", s.Pushed)
			}
		}(x, y)
	}
	wg.Wait()

	return stats
}

// RunStats accumulates the rounds run by RunUntilConverged.
type RunStats struct {
	Rounds     int
	Deliveries int
}

// RunUntilConverged runs rounds until Converged holds, at most maxRounds.
// Peers still differing after the budget yield ErrNotConverged along with
// the stats of the rounds run.
func (g *Gossiper) RunUntilConverged(ctx context.Context, maxRounds int) (RunStats, error) {
	var run RunStats
	for run.Rounds < maxRounds {
		if Converged(g.peers) {
			return run, nil
		}
		if err := ctx.Err(); err != nil {
			return run, err
		}
		stats := g.Round(ctx)
		run.Rounds++
		run.Deliveries += stats.Deliveries
	}
	if Converged(g.peers) {
		return run, nil
	}
	return run, fmt.Errorf("%w after %d rounds", ErrNotConverged, run.Rounds)
}

// Start runs a round every interval until Stop is called. Starting a
// running gossiper does nothing.
func (g *Gossiper) Start(interval time.Duration) {
	if interval <= 0 {
		interval = 1 * time.Second
	}

	g.runMu.Lock()
	defer g.runMu.Unlock()
	if g.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	g.cancel = cancel
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				stats := g.Round(ctx)
				if stats.Deliveries > 0 {
					g.logger.Info("gossip round", "pairs", stats.Pairs, "deliveries", stats.Deliveries)
				}
			}
		}
	}()
	g.logger.Info("gossip started", "peers", len(g.peers), "interval", interval)
}

// Stop stops the background loop started by Start and waits for it to exit.
// The gossiper can be started again afterwards.
func (g *Gossiper) Stop() {
	g.runMu.Lock()
	defer g.runMu.Unlock()
	if g.cancel == nil {
		return
	}
	g.cancel()
	g.cancel = nil
	g.wg.Wait()
	g.logger.Info("gossip stopped")
}
