// Command kigalisim is the CLI driver for the KigaliSim simulation engine.
// Script parsing and the WebAssembly bridge are out of scope; this
// driver demonstrates the engine end to end with a small in-memory demo
// scenario in place of a parsed QubecTalk script.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/kigalisim/internal/config"
	"github.com/example/kigalisim/internal/logging"
)

var (
	logFormat string
	logLevel  string

	cfg    config.Config
	logger *slog.Logger
)

// rootCmd is the base command: load configuration once, via
// PersistentPreRunE, before any subcommand runs.
var rootCmd = &cobra.Command{
	Use:   "kigalisim",
	Short: "KigaliSim refrigerant-substance policy simulation engine",
	Long: `kigalisim runs refrigerant manufacture/import/recharge/retirement/
emissions simulations across applications and substances under stacked
policy scenarios, and exports the resulting time series.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
		cfg.Decimal.Apply()

		format := logging.FormatJSON
		if logFormat == "text" {
			format = logging.FormatText
		}
		level := parseLevel(logLevel)
		logger = logging.New(logging.Config{Level: level, Format: format, Output: os.Stderr})
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log output format: json or text")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
}

func parseLevel(s string) slog.Level {
	switch s {
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

// exitCoder lets a command signal a specific process exit code
// without main() having to inspect error string content.
type exitCoder struct {
	code int
	err  error
}

func (e *exitCoder) Error() string { return e.err.Error() }
func (e *exitCoder) Unwrap() error { return e.err }

func validationError(err error) error { return &exitCoder{code: 1, err: err} }
func runtimeError(err error) error    { return &exitCoder{code: 2, err: err} }

func main() {
	if err := rootCmd.Execute(); err != nil {
		code := 2
		if ec, ok := err.(*exitCoder); ok {
			code = ec.code
		}
		if logger != nil {
			logger.Error("command failed", "error", err)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(code)
	}
}
