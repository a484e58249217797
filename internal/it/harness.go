package it

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"

	"google.golang.org/grpc"

	"vcboard/internal/board"
	"vcboard/internal/rpc"
	"vcboard/internal/scenario"
)

// Cluster runs board servers on loopback TCP ports for integration tests.
type Cluster struct {
	mu      sync.Mutex
	servers []*Server
	logger  *slog.Logger
}

// Server is one running board server.
type Server struct {
	Name   string
	Addr   string
	Board  *board.Board
	grpc   *grpc.Server
	client *rpc.Client
	gossip bool
	done   chan struct{}
}

// NewCluster creates an empty cluster. Server logs go to logOut.
func NewCluster(logOut io.Writer) *Cluster {
	return &Cluster{
		logger: slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: slog.LevelDebug})),
	}
}

// StartServer starts a server for a board over processes on a free port.
// A positive gossipInterval runs the board's gossiper in the background.
func (c *Cluster) StartServer(ctx context.Context, name string, processes []string, gossipInterval time.Duration) (*Server, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	logger := c.logger.With("server", name)
	b, err := board.New(processes, board.WithLogger(logger), board.WithGossipSeed(1))
	if err != nil {
		return nil, fmt.Errorf("failed to create board %s: %w", name, err)
	}

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("failed to listen for %s: %w", name, err)
	}

	s := &Server{
		Name:  name,
		Addr:  lis.Addr().String(),
		Board: b,
		grpc:  rpc.NewGRPCServer(rpc.NewServer(b, logger)),
		done:  make(chan struct{}),
	}
	go func() {
		defer close(s.done)
		_ = s.grpc.Serve(lis)
	}()

	if gossipInterval > 0 {
		b.Gossiper().Start(gossipInterval)
		s.gossip = true
	}

	s.client, err = rpc.Dial(s.Addr)
	if err != nil {
		s.Stop()
		return nil, fmt.Errorf("failed to dial %s: %w", name, err)
	}

	c.servers = append(c.servers, s)

	if err := c.waitForReady(ctx, s, processes[0], 10*time.Second); err != nil {
		return nil, fmt.Errorf("server %s failed to become ready: %w", name, err)
	}
	return s, nil
}

// waitForReady polls View until the server answers.
func (c *Cluster) waitForReady(ctx context.Context, s *Server, process string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		readyCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		_, err := s.client.View(readyCtx, process)
		cancel()
		if err == nil {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if time.Now().After(deadline) {
				return fmt.Errorf("timeout waiting for %s: %w", s.Name, err)
			}
		}
	}
}

// Stop stops every server in the cluster.
func (c *Cluster) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, s := range c.servers {
		s.Stop()
	}
	c.servers = nil
}

// GetServer returns a server by name.
func (c *Cluster) GetServer(name string) *Server {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, s := range c.servers {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// Stop stops a single server.
func (s *Server) Stop() {
	if s.client != nil {
		_ = s.client.Close()
	}
	if s.gossip {
		s.Board.Gossiper().Stop()
	}
	s.grpc.GracefulStop()
	<-s.done
}

// GetClient returns the client connected to s.
func (s *Server) GetClient() *rpc.Client {
	return s.client
}

// Replay runs a scenario's steps through a client and returns the views
// of its show steps.
func Replay(ctx context.Context, c *rpc.Client, s *scenario.Script) ([]board.View, error) {
	var views []board.View
	for i, step := range s.Steps {
		switch {
		case step.Post != nil:
			if _, err := c.Post(ctx, step.Post.Process, step.Post.Message); err != nil {
				return nil, fmt.Errorf("steps[%d]: %w", i, err)
			}
		case step.Sync != nil:
			if _, err := c.Sync(ctx, step.Sync[0], step.Sync[1]); err != nil {
				return nil, fmt.Errorf("steps[%d]: %w", i, err)
			}
		case step.Show != "":
			v, err := c.View(ctx, step.Show)
			if err != nil {
				return nil, fmt.Errorf("steps[%d]: %w", i, err)
			}
			views = append(views, v)
		case step.Gossip > 0:
			if _, err := c.Gossip(ctx, step.Gossip); err != nil {
				return nil, fmt.Errorf("steps[%d]: %w", i, err)
			}
		}
	}
	return views, nil
}
