package rpc

import (
	"context"
	"errors"
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"vcboard/internal/board"
)

// Server implements BoardServer on top of a board.
type Server struct {
	board  *board.Board
	logger *slog.Logger
}

var _ BoardServer = (*Server)(nil)

// NewServer creates a Board service backed by b.
func NewServer(b *board.Board, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		board:  b,
		logger: logger,
	}
}

// NewGRPCServer creates a gRPC server using the board codec with srv
// registered.
func NewGRPCServer(srv BoardServer, opts ...grpc.ServerOption) *grpc.Server {
	opts = append([]grpc.ServerOption{grpc.ForceServerCodec(Codec())}, opts...)
	gs := grpc.NewServer(opts...)
	RegisterBoardServer(gs, srv)
	return gs
}

// Post handles Post requests.
func (s *Server) Post(ctx context.Context, req *PostRequest) (*PostResponse, error) {
	s.logger.Debug("post request", "process", req.Process)

	if req.Process == "" {
		return nil, status.Error(codes.InvalidArgument, "process cannot be empty")
	}

	post, err := s.board.Post(req.Process, req.Message)
	if err != nil {
		return nil, toStatus(err)
	}
	return &PostResponse{Post: post}, nil
}

// Sync handles Sync requests.
func (s *Server) Sync(ctx context.Context, req *SyncRequest) (*SyncResponse, error) {
	s.logger.Debug("sync request", "a", req.A, "b", req.B)

	if req.A == "" || req.B == "" {
		return nil, status.Error(codes.InvalidArgument, "sync needs two processes")
	}

	stats, err := s.board.Sync(req.A, req.B)
	if err != nil {
		return nil, toStatus(err)
	}
	return &SyncResponse{Stats: stats}, nil
}

// View handles View requests.
func (s *Server) View(ctx context.Context, req *ViewRequest) (*ViewResponse, error) {
	s.logger.Debug("view request", "process", req.Process)

	if req.Process == "" {
		return nil, status.Error(codes.InvalidArgument, "process cannot be empty")
	}

	v, err := s.board.View(req.Process)
	if err != nil {
		return nil, toStatus(err)
	}
	return &ViewResponse{View: v}, nil
}

// Gossip handles Gossip requests.
func (s *Server) Gossip(ctx context.Context, req *GossipRequest) (*GossipResponse, error) {
	s.logger.Debug("gossip request", "rounds", req.Rounds)

	if req.Rounds <= 0 {
		return nil, status.Errorf(codes.InvalidArgument, "rounds must be positive, got %d", req.Rounds)
	}

	res, err := s.board.Gossip(ctx, req.Rounds)
	if err != nil {
		return nil, toStatus(err)
	}
	return &GossipResponse{Result: res}, nil
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, board.ErrUnknownProcess):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
