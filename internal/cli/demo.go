package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"vcboard/internal/board"
	"vcboard/internal/config"
	"vcboard/internal/scenario"
)

// NewDemoCommand creates the demo command.
func NewDemoCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Run the built-in three-process demonstration",
		Long: `Run the built-in demonstration: Alice, Bob and Charlie post and sync
in a fixed order, and each step shows the affected boards with the causal
relation of every post to the viewer's clock.`,
		Args: commandArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScript(rootOpts, scenario.Default(), cmd)
		},
	}
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Run a scenario file against an in-process board",
		Long: `Run a YAML scenario against an in-process board.

Example:
  vcboard run ./scenarios/partition.yaml
  vcboard run --format json ./scenarios/partition.yaml`,
		Args: commandArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := scenario.Load(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to load scenario", err)
			}
			return runScript(rootOpts, s, cmd)
		},
	}
}

func runScript(opts *RootOptions, s *scenario.Script, cmd *cobra.Command) error {
	cfg, logger, err := loadConfig(opts, cmd)
	if err != nil {
		return err
	}
	f := newFormatter(opts, cmd)

	b, err := s.NewBoard(boardOptions(cfg, logger)...)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create board", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	out := f.Writer
	if f.JSON() {
		out = io.Discard
	} else {
		fmt.Fprintf(out, "=== %s ===\n", s.Name)
		if s.Description != "" {
			fmt.Fprintln(out, s.Description)
		}
		fmt.Fprintln(out)
	}

	res, err := scenario.Run(ctx, b, s, out)
	if err != nil {
		if f.JSON() {
			_ = f.Error(err)
		}
		return WrapExitError(ExitFailure, "scenario failed", err)
	}

	return f.Success(res, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "\n=== %s complete: %d steps, %d posts, %d syncs ===\n",
			res.Name, res.Steps, res.Posts, res.Syncs)
		return err
	})
}

func boardOptions(cfg *config.Config, logger *slog.Logger) []board.Option {
	return []board.Option{
		board.WithLogger(logger),
		board.WithAllocator(board.NewIDAllocator(cfg.FirstPostID)),
		board.WithGossipSeed(cfg.Gossip.Seed),
	}
}
