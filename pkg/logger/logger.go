// Package logger configures structured logging for the research ledger.
// It builds log/slog loggers with a consistent output format and provides
// attribute constructors for the domain fields that appear throughout the
// ledger's logs, so every component names them the same way.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Format selects the log output encoding.
type Format string

const (
	// FormatJSON emits one JSON object per line. Default in production.
	FormatJSON Format = "json"
	// FormatText emits human-readable key=value lines. Useful locally.
	FormatText Format = "text"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum level to emit: debug, info, warn, error.
	// Default: info
	Level string

	// Format is the output encoding. Default: json
	Format Format

	// AddSource includes the file:line of the log call.
	AddSource bool

	// Output is the destination writer. Default: os.Stdout
	Output io.Writer
}

// New creates a slog.Logger from the config.
func New(cfg Config) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	opts := &slog.HandlerOptions{
		Level:     ParseLevel(cfg.Level),
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	switch cfg.Format {
	case FormatText:
		handler = slog.NewTextHandler(out, opts)
	default:
		handler = slog.NewJSONHandler(out, opts)
	}

	return slog.New(handler)
}

// NewDefault creates a JSON logger at info level writing to stdout.
func NewDefault() *slog.Logger {
	return New(Config{})
}

// ParseLevel converts a level name to a slog.Level. Unknown names map to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Domain field constructors. Keeping the key names in one place makes the
// logs queryable: "researcher_id" is always "researcher_id".

// ResearcherID creates a researcher ID field.
func ResearcherID(id string) slog.Attr {
	return slog.String("researcher_id", id)
}

// ProposalID creates a proposal ID field.
func ProposalID(id string) slog.Attr {
	return slog.String("proposal_id", id)
}

// MilestoneID creates a milestone ID field.
func MilestoneID(id string) slog.Attr {
	return slog.String("milestone_id", id)
}

// ReviewID creates a review ID field.
func ReviewID(id string) slog.Attr {
	return slog.String("review_id", id)
}

// Points creates a reputation points field.
func Points(amount int) slog.Attr {
	return slog.Int("points", amount)
}

// Badge creates a badge ID field.
func Badge(id string) slog.Attr {
	return slog.String("badge_id", id)
}

// Component creates a component name field.
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Operation creates an operation name field.
func Operation(name string) slog.Attr {
	return slog.String("operation", name)
}

// Latency creates a duration field in milliseconds.
func Latency(d time.Duration) slog.Attr {
	return slog.Int64("latency_ms", d.Milliseconds())
}

// Err creates an error field. Nil errors produce an empty string.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}
