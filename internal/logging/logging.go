// Package logging provides structured logging for the KigaliSim simulation
// engine and its driver, built on Go's standard library slog package.
//
// The engine itself never logs on the per-command hot path; logging lives
// at the granularity the driver cares about: scenario, trial, and year
// boundaries. See internal/runner for where these hooks are used.
//
// Usage:
//
//	logger := logging.New(logging.Config{
//	    Level:  slog.LevelInfo,
//	    Format: logging.FormatJSON,
//	})
//
//	logger.Info("simulation starting", slog.String("scenario", "bau"))
//
//	ctx = logging.WithTrial(ctx, "bau", 0)
//	logging.FromContext(ctx).Info("year complete")
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// =============================================================================
// Log Format Constants
// =============================================================================

// Format specifies the log output format.
type Format string

const (
	// FormatJSON outputs structured JSON logs, ideal for batch/CI runs.
	FormatJSON Format = "json"

	// FormatText outputs human-readable text logs, ideal for local development.
	FormatText Format = "text"
)

// =============================================================================
// Context Keys
// =============================================================================

type contextKey string

const (
	loggerKey contextKey = "kigalisim_logger"
	scenarioKey contextKey = "kigalisim_scenario"
	trialKey    contextKey = "kigalisim_trial"
)

// =============================================================================
// Configuration
// =============================================================================

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level to output. Defaults to slog.LevelInfo.
	Level slog.Level

	// Format specifies the output format (json or text). Defaults to FormatJSON.
	Format Format

	// Output is the destination for log output. Defaults to os.Stdout.
	Output io.Writer

	// AddSource includes source file and line number in log output.
	AddSource bool

	// TimeFormat specifies the time format for text output.
	// Defaults to time.RFC3339. Ignored for JSON format.
	TimeFormat string

	// AppName is included in every log entry.
	AppName string
}

func (c *Config) applyDefaults() {
	if c.Format == "" {
		c.Format = FormatJSON
	}
	if c.Output == nil {
		c.Output = os.Stdout
	}
	if c.TimeFormat == "" {
		c.TimeFormat = time.RFC3339
	}
	if c.AppName == "" {
		c.AppName = "kigalisim"
	}
}

// =============================================================================
// Logger Construction
// =============================================================================

// New creates a new structured logger with the given configuration.
func New(cfg Config) *slog.Logger {
	cfg.applyDefaults()

	opts := &slog.HandlerOptions{
		Level:     cfg.Level,
		AddSource: cfg.AddSource,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if isSensitiveKey(a.Key) {
				return slog.String(a.Key, "[REDACTED]")
			}
			if a.Key == slog.TimeKey && cfg.Format == FormatText {
				if t, ok := a.Value.Any().(time.Time); ok {
					return slog.String(a.Key, t.Format(cfg.TimeFormat))
				}
			}
			return a
		},
	}

	var handler slog.Handler
	switch cfg.Format {
	case FormatText:
		handler = slog.NewTextHandler(cfg.Output, opts)
	default:
		handler = slog.NewJSONHandler(cfg.Output, opts)
	}

	if cfg.AppName != "" {
		handler = handler.WithAttrs([]slog.Attr{slog.String("app", cfg.AppName)})
	}

	return slog.New(handler)
}

// Default returns the default production-ready JSON logger.
func Default() *slog.Logger {
	return New(Config{Level: slog.LevelInfo, Format: FormatJSON})
}

// =============================================================================
// Context Integration
// =============================================================================

// NewContext returns a new context with the logger attached.
func NewContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext retrieves the logger from context, falling back to slog.Default.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return slog.Default()
}

// WithTrial attaches scenario/trial identity to the context and returns a
// context whose logger carries both as structured fields.
func WithTrial(ctx context.Context, scenario string, trial int) context.Context {
	ctx = context.WithValue(ctx, scenarioKey, scenario)
	ctx = context.WithValue(ctx, trialKey, trial)
	logger := FromContext(ctx).With(slog.String("scenario", scenario), slog.Int("trial", trial))
	return NewContext(ctx, logger)
}

// ScenarioFromContext retrieves the scenario name attached by WithTrial.
func ScenarioFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(scenarioKey).(string); ok {
		return s
	}
	return ""
}

// =============================================================================
// Sensitive Data Handling
// =============================================================================

// sensitiveKeys lists field names that should be redacted from log output.
var sensitiveKeys = map[string]bool{
	"password":      true,
	"secret":        true,
	"token":         true,
	"api_key":       true,
	"apikey":        true,
	"authorization": true,
	"credential":    true,
}

func isSensitiveKey(key string) bool {
	return sensitiveKeys[strings.ToLower(key)]
}
