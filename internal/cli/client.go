package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"vcboard/internal/board"
	"vcboard/internal/config"
	"vcboard/internal/rpc"
)

// ClientOptions holds flags shared by commands that talk to a server.
type ClientOptions struct {
	*RootOptions
	Addr    string
	Timeout time.Duration
}

func addClientFlags(cmd *cobra.Command, opts *ClientOptions) {
	cmd.Flags().StringVar(&opts.Addr, "addr", "", "server address, defaults to the config listen_addr")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 10*time.Second, "request timeout")
}

// withClient dials the server and calls fn with a request context.
func withClient(opts *ClientOptions, cmd *cobra.Command, fn func(ctx context.Context, c *rpc.Client, f *OutputFormatter, cfg *config.Config) error) error {
	cfg, _, err := loadConfig(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	addr := opts.Addr
	if addr == "" {
		addr = cfg.ListenAddr
	}

	c, err := rpc.Dial(addr, opts.dialOpts...)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to connect", err)
	}
	defer c.Close()

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithTimeout(parentCtx, opts.Timeout)
	defer cancel()

	f := newFormatter(opts.RootOptions, cmd)
	if err := fn(ctx, c, f, cfg); err != nil {
		if f.JSON() {
			_ = f.Error(err)
		}
		if errors.Is(err, board.ErrUnknownProcess) {
			return WrapExitError(ExitFailure, "unknown process", err)
		}
		return WrapExitError(ExitFailure, "request failed", err)
	}
	return nil
}

// NewPostCommand creates the post command.
func NewPostCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ClientOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "post <process> <message...>",
		Short: "Create a post on a process",
		Args:  commandArgs(cobra.MinimumNArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			message := strings.Join(args[1:], " ")
			return withClient(opts, cmd, func(ctx context.Context, c *rpc.Client, f *OutputFormatter, cfg *config.Config) error {
				post, err := c.Post(ctx, args[0], message)
				if err != nil {
					return err
				}
				return f.Success(post, func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "Post #%d by %s at %s\n", post.ID, post.Author, post.Timestamp)
					return err
				})
			})
		},
	}
	addClientFlags(cmd, opts)
	return cmd
}

// NewSyncCommand creates the sync command.
func NewSyncCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ClientOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sync <process> <process>",
		Short: "Exchange missing posts between two processes",
		Args:  commandArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(opts, cmd, func(ctx context.Context, c *rpc.Client, f *OutputFormatter, cfg *config.Config) error {
				stats, err := c.Sync(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				data := map[string]int{"pulled": stats.Pulled, "pushed": stats.Pushed}
				return f.Success(data, func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "Synced %s <-> %s: %s received %d, %s received %d\n",
						args[0], args[1], args[0], stats.Pulled, args[1], stats.Pushed)
					return err
				})
			})
		},
	}
	addClientFlags(cmd, opts)
	return cmd
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ClientOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "show <process>",
		Short: "Show the board as seen by a process",
		Args:  commandArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(opts, cmd, func(ctx context.Context, c *rpc.Client, f *OutputFormatter, cfg *config.Config) error {
				v, err := c.View(ctx, args[0])
				if err != nil {
					return err
				}
				return f.Success(v, func(w io.Writer) error {
					return board.Render(w, v)
				})
			})
		},
	}
	addClientFlags(cmd, opts)
	return cmd
}

// NewGossipCommand creates the gossip command.
func NewGossipCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ClientOptions{RootOptions: rootOpts}
	var rounds int

	cmd := &cobra.Command{
		Use:   "gossip",
		Short: "Run anti-entropy rounds on the server's board",
		Args:  commandArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(opts, cmd, func(ctx context.Context, c *rpc.Client, f *OutputFormatter, cfg *config.Config) error {
				if !cmd.Flags().Changed("rounds") {
					rounds = cfg.Gossip.MaxRounds
				}
				res, err := c.Gossip(ctx, rounds)
				if err != nil {
					return err
				}
				return f.Success(res, func(w io.Writer) error {
					state := "not converged"
					if res.Converged {
						state = "converged"
					}
					_, err := fmt.Fprintf(w, "Gossip: %d rounds, %d deliveries, %s\n", res.Rounds, res.Deliveries, state)
					return err
				})
			})
		},
	}
	cmd.Flags().IntVar(&rounds, "rounds", 0, "maximum number of rounds, defaults to the config gossip.max_rounds")
	addClientFlags(cmd, opts)
	return cmd
}
