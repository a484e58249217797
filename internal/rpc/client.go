package rpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"vcboard/internal/board"
	"vcboard/internal/gossip"
	"vcboard/internal/storage"
)

// Client is a Board service client.
type Client struct {
	conn *grpc.ClientConn
}

// Dial creates a client for target. Connections are insecure and use the
// board codec; opts are applied after those defaults.
func Dial(target string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.ForceCodec(Codec())),
	}, opts...)

	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", target, err)
	}
	return &Client{conn: conn}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Post creates a post authored by process.
func (c *Client) Post(ctx context.Context, process, message string) (storage.Post, error) {
	out := new(PostResponse)
	if err := c.conn.Invoke(ctx, methodPost, &PostRequest{Process: process, Message: message}, out); err != nil {
		return storage.Post{}, fromStatus(err)
	}
	return out.Post, nil
}

// Sync exchanges missing posts between processes a and b.
func (c *Client) Sync(ctx context.Context, a, b string) (gossip.ExchangeStats, error) {
	out := new(SyncResponse)
	if err := c.conn.Invoke(ctx, methodSync, &SyncRequest{A: a, B: b}, out); err != nil {
		return gossip.ExchangeStats{}, fromStatus(err)
	}
	return out.Stats, nil
}

// View returns the board as seen by process.
func (c *Client) View(ctx context.Context, process string) (board.View, error) {
	out := new(ViewResponse)
	if err := c.conn.Invoke(ctx, methodView, &ViewRequest{Process: process}, out); err != nil {
		return board.View{}, fromStatus(err)
	}
	return out.View, nil
}

// Gossip runs up to rounds anti-entropy rounds on the server's board.
func (c *Client) Gossip(ctx context.Context, rounds int) (board.GossipResult, error) {
	out := new(GossipResponse)
	if err := c.conn.Invoke(ctx, methodGossip, &GossipRequest{Rounds: rounds}, out); err != nil {
		return board.GossipResult{}, fromStatus(err)
	}
	return out.Result, nil
}

// fromStatus restores board.ErrUnknownProcess for NotFound so callers can
// use errors.Is on both sides of the wire.
func fromStatus(err error) error {
	st, ok := status.FromError(err)
	if ok && st.Code() == codes.NotFound {
		return fmt.Errorf("%w: %s", board.ErrUnknownProcess, st.Message())
	}
	return err
}
