package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	"vcboard/internal/board"
	"vcboard/internal/config"
	"vcboard/internal/rpc"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Listen         string
	Processes      string
	Gossip         bool
	GossipInterval time.Duration
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a board over gRPC",
		Long: `Start a gRPC server for a board holding one node per process.

Example:
  vcboard serve --listen 127.0.0.1:50061 --processes Alice,Bob,Charlie
  vcboard serve --config board.yaml --gossip --gossip-interval 500ms`,
		Args: commandArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Listen, "listen", "", "listen address, overrides config")
	cmd.Flags().StringVar(&opts.Processes, "processes", "", "comma-separated process IDs, overrides config")
	cmd.Flags().BoolVar(&opts.Gossip, "gossip", false, "run background anti-entropy gossip")
	cmd.Flags().DurationVar(&opts.GossipInterval, "gossip-interval", 0, "gossip interval, overrides config")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	cfg, logger, err := loadConfig(opts.RootOptions, cmd)
	if err != nil {
		return err
	}

	if opts.Listen != "" {
		cfg.ListenAddr = opts.Listen
	}
	if opts.Processes != "" {
		processes, err := config.ParseProcesses(opts.Processes)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid --processes", err)
		}
		cfg.Processes = processes
	}
	if opts.Gossip {
		cfg.Gossip.Enabled = true
	}
	if opts.GossipInterval > 0 {
		cfg.Gossip.Interval = opts.GossipInterval
	}
	if err := cfg.Validate(); err != nil {
		return WrapExitError(ExitCommandError, "invalid config", err)
	}

	b, err := board.New(cfg.Processes, boardOptions(cfg, logger)...)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create board", err)
	}

	lis, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to listen", err)
	}

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(cmd.OutOrStdout(), "Board listening on %s (processes: %v)\n", lis.Addr(), cfg.Processes)
	fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl-C to stop.")

	var interval time.Duration
	if cfg.Gossip.Enabled {
		interval = cfg.Gossip.Interval
	}
	if err := serveBoard(ctx, b, lis, interval, logger); err != nil {
		return WrapExitError(ExitFailure, "server error", err)
	}
	return nil
}

// serveBoard serves b on lis until ctx is done. A positive gossipInterval
// runs the board's gossiper for the lifetime of the server.
func serveBoard(ctx context.Context, b *board.Board, lis net.Listener, gossipInterval time.Duration, logger *slog.Logger) error {
	gs := rpc.NewGRPCServer(rpc.NewServer(b, logger))

	if gossipInterval > 0 {
		b.Gossiper().Start(gossipInterval)
		defer b.Gossiper().Stop()
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", lis.Addr().String())
		errCh <- gs.Serve(lis)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		gs.GracefulStop()
		<-errCh
		logger.Info("server stopped gracefully")
		return nil
	case err := <-errCh:
		if errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return err
	}
}
