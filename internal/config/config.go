package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the board configuration.
type Config struct {
	Processes   []string     `yaml:"processes"`
	ListenAddr  string       `yaml:"listen_addr"`
	FirstPostID int64        `yaml:"first_post_id"`
	Log         LogConfig    `yaml:"log"`
	Gossip      GossipConfig `yaml:"gossip"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// GossipConfig controls background anti-entropy.
type GossipConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Interval  time.Duration `yaml:"interval"`
	Seed      int64         `yaml:"seed"`
	MaxRounds int           `yaml:"max_rounds"` // rounds per gossip request when none is given
}

// Default returns the configuration of the three-process demo board.
func Default() *Config {
	return &Config{
		Processes:   []string{"Alice", "Bob", "Charlie"},
		ListenAddr:  "127.0.0.1:50061",
		FirstPostID: 1,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Gossip: GossipConfig{
			Interval:  2 * time.Second,
			Seed:      1,
			MaxRounds: 16,
		},
	}
}

// Load reads a YAML config file on top of Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML on top of Default and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if len(c.Processes) == 0 {
		return errors.New("config: processes must not be empty")
	}
	seen := make(map[string]bool, len(c.Processes))
	for _, p := range c.Processes {
		if strings.TrimSpace(p) == "" {
			return errors.New("config: process id cannot be empty")
		}
		if seen[p] {
			return fmt.Errorf("config: duplicate process %q", p)
		}
		seen[p] = true
	}
	if c.FirstPostID < 1 {
		return fmt.Errorf("config: first_post_id must be >= 1, got %d", c.FirstPostID)
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("config: log format %q must be text or json", c.Log.Format)
	}
	if c.Gossip.Enabled && c.Gossip.Interval <= 0 {
		return fmt.Errorf("config: gossip interval must be positive, got %s", c.Gossip.Interval)
	}
	if c.Gossip.MaxRounds < 1 {
		return fmt.Errorf("config: gossip max_rounds must be >= 1, got %d", c.Gossip.MaxRounds)
	}
	return nil
}

// ParseProcesses parses a comma-separated list of process IDs:
// "Alice,Bob,Charlie"
func ParseProcesses(s string) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return []string{}, nil
	}

	parts := strings.Split(s, ",")
	processes := make([]string, 0, len(parts))
	seen := make(map[string]bool, len(parts))

	for _, part := range parts {
		id := strings.TrimSpace(part)
		if id == "" {
			return nil, fmt.Errorf("empty process id in %q", s)
		}
		if seen[id] {
			return nil, fmt.Errorf("duplicate process id: %s", id)
		}
		seen[id] = true
		processes = append(processes, id)
	}

	return processes, nil
}

// NewLogger builds a slog logger writing to w.
func NewLogger(w io.Writer, lc LogConfig) (*slog.Logger, error) {
	level, err := parseLevel(lc.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}

	switch lc.Format {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("config: log format %q must be text or json", lc.Format)
	}
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("config: unknown log level %q", s)
	}
}
