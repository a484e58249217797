package scenario

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"vcboard/internal/board"
)

//go:embed default.yaml
var defaultScript []byte

// ErrInvalid is returned for scripts that fail validation.
var ErrInvalid = errors.New("invalid scenario")

// Script is a named list of steps over a fixed set of processes.
type Script struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description,omitempty"`
	Processes   []string `yaml:"processes"`
	Steps       []Step   `yaml:"steps"`
}

// Step performs exactly one action. Title, when set, is printed first.
type Step struct {
	Title  string    `yaml:"title,omitempty"`
	Post   *PostStep `yaml:"post,omitempty"`
	Sync   []string  `yaml:"sync,omitempty"`
	Show   string    `yaml:"show,omitempty"`
	Gossip int       `yaml:"gossip,omitempty"`
}

// PostStep creates a post on one process.
type PostStep struct {
	Process string `yaml:"process"`
	Message string `yaml:"message"`
}

// Result collects what a run produced.
type Result struct {
	Name  string       `json:"name"`
	Steps int          `json:"steps"`
	Posts int          `json:"posts"`
	Syncs int          `json:"syncs"`
	Views []board.View `json:"views"`
}

// Default returns the built-in demonstration script.
func Default() *Script {
	s, err := Parse(defaultScript)
	if err != nil {
		panic(fmt.Sprintf("scenario: embedded default: %v", err))
	}
	return s
}

// Load reads and parses a script file.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a script, rejecting unknown fields, and validates it.
func Parse(data []byte) (*Script, error) {
	var s Script
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks that every step names declared processes and performs
// exactly one action.
func (s *Script) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if len(s.Processes) == 0 {
		return fmt.Errorf("%w: processes list is required and must be non-empty", ErrInvalid)
	}
	known := make(map[string]bool, len(s.Processes))
	for _, p := range s.Processes {
		if p == "" || known[p] {
			return fmt.Errorf("%w: process %q is empty or duplicated", ErrInvalid, p)
		}
		known[p] = true
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("%w: steps list is required and must be non-empty", ErrInvalid)
	}

	for i, step := range s.Steps {
		if err := validateStep(step, known); err != nil {
			return fmt.Errorf("%w: steps[%d]: %v", ErrInvalid, i, err)
		}
	}
	return nil
}

func validateStep(step Step, known map[string]bool) error {
	actions := 0
	if step.Post != nil {
		actions++
		if !known[step.Post.Process] {
			return fmt.Errorf("post: unknown process %q", step.Post.Process)
		}
	}
	if step.Sync != nil {
		actions++
		if len(step.Sync) != 2 {
			return fmt.Errorf("sync: needs exactly two processes, got %d", len(step.Sync))
		}
		for _, p := range step.Sync {
			if !known[p] {
				return fmt.Errorf("sync: unknown process %q", p)
			}
		}
	}
	if step.Show != "" {
		actions++
		if !known[step.Show] {
			return fmt.Errorf("show: unknown process %q", step.Show)
		}
	}
	if step.Gossip != 0 {
		actions++
		if step.Gossip < 0 {
			return fmt.Errorf("gossip: rounds must be positive, got %d", step.Gossip)
		}
	}
	if actions != 1 {
		return fmt.Errorf("expected exactly one of post, sync, show, gossip; got %d", actions)
	}
	return nil
}

// NewBoard creates a board over the script's processes.
func (s *Script) NewBoard(opts ...board.Option) (*board.Board, error) {
	return board.New(s.Processes, opts...)
}

// Run executes the script's steps against b, rendering titles and shown
// views to w.
func Run(ctx context.Context, b *board.Board, s *Script, w io.Writer) (Result, error) {
	res := Result{Name: s.Name}

	for i, step := range s.Steps {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if step.Title != "" {
			if _, err := fmt.Fprintln(w, step.Title); err != nil {
				return res, err
			}
		}

		switch {
		case step.Post != nil:
			if _, err := b.Post(step.Post.Process, step.Post.Message); err != nil {
				return res, fmt.Errorf("steps[%d]: %w", i, err)
			}
			res.Posts++
		case step.Sync != nil:
			if _, err := b.Sync(step.Sync[0], step.Sync[1]); err != nil {
				return res, fmt.Errorf("steps[%d]: %w", i, err)
			}
			res.Syncs++
		case step.Show != "":
			v, err := b.View(step.Show)
			if err != nil {
				return res, fmt.Errorf("steps[%d]: %w", i, err)
			}
			if err := board.Render(w, v); err != nil {
				return res, err
			}
			res.Views = append(res.Views, v)
		case step.Gossip > 0:
			if _, err := b.Gossip(ctx, step.Gossip); err != nil {
				return res, fmt.Errorf("steps[%d]: %w", i, err)
			}
		}
		res.Steps++
	}
	return res, nil
}
