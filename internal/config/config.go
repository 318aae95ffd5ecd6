// Package config provides centralized configuration loading for the
// KigaliSim simulation engine and its CLI driver. It reads configuration
// from environment variables with sensible defaults and validation to fail
// fast on misconfiguration.
//
// Environment variable naming convention:
//   - KIGALISIM_* prefix for all settings.
//
// Usage:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatalf("configuration error: %v", err)
//	}
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	defaultDecimalPrecision  = 28 // decimal digits kept by internal/decimalx, comparable to a 128-bit decimal's range
	defaultStartYear         = 2025
	defaultEndYear           = 2050
	defaultWorkerPoolSize    = 4
	defaultTolerateEmptyIntensity = true
)

// =============================================================================
// Environment Variable Keys
// =============================================================================

const (
	envDecimalPrecision         = "KIGALISIM_DECIMAL_PRECISION"
	envRoundingMode             = "KIGALISIM_ROUNDING_MODE"
	envTolerateEmptyIntensity   = "KIGALISIM_TOLERATE_EMPTY_INTENSITY"
	envStartYear                = "KIGALISIM_START_YEAR"
	envEndYear                  = "KIGALISIM_END_YEAR"
	envWorkerPoolSize           = "KIGALISIM_WORKER_POOL_SIZE"
	envLogLevel                 = "KIGALISIM_LOG_LEVEL"
	envLogFormat                = "KIGALISIM_LOG_FORMAT"
)

// =============================================================================
// Rounding Modes
// =============================================================================

// RoundingMode selects how decimal division resolves a fractional remainder.
// The engine's own arithmetic uses half-up rounding whenever a division
// forces a choice; HALF_EVEN is exposed for callers who need banker's
// rounding for a downstream report, never for the engine core.
type RoundingMode string

const (
	RoundHalfUp   RoundingMode = "half_up"
	RoundHalfEven RoundingMode = "half_even"
)

// IsValid reports whether m is a recognized rounding mode.
func (m RoundingMode) IsValid() bool {
	return m == RoundHalfUp || m == RoundHalfEven
}

// =============================================================================
// Configuration Structs
// =============================================================================

// Config holds all engine and driver configuration.
type Config struct {
	// Decimal controls the fixed-point arithmetic context (§4.1).
	Decimal DecimalConfig

	// Simulation holds default year-range settings for new engines.
	Simulation SimulationConfig

	// Runner controls the scenario/trial execution shell (internal/runner).
	Runner RunnerConfig

	// Logging controls the structured logger used by the driver.
	Logging LoggingConfig
}

// DecimalConfig configures internal/decimalx.
type DecimalConfig struct {
	// Precision is the number of significant decimal digits retained by
	// division operations (decimal.DivisionPrecision).
	Precision int32 `json:"precision"`

	// Rounding names a rounding mode. Validate checks that it is recognized;
	// Apply and the engine's arithmetic do not read it.
	Rounding RoundingMode `json:"rounding"`

	// TolerateEmptyIntensity, when true, makes the unit converter return a
	// zero quantity instead of ErrZeroDenominatorUnrecoverable when a ratio
	// conversion needs a total that is zero and no static scale applies.
	TolerateEmptyIntensity bool `json:"tolerate_empty_intensity"`
}

// SimulationConfig holds default simulation year bounds.
type SimulationConfig struct {
	StartYear int `json:"start_year"`
	EndYear   int `json:"end_year"`
}

// RunnerConfig configures the scenario/trial worker pool (internal/runner).
type RunnerConfig struct {
	// PoolSize bounds how many (scenario, trial) pairs run concurrently.
	PoolSize int `json:"pool_size"`
}

// LoggingConfig configures internal/logging.
type LoggingConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// =============================================================================
// Configuration Loading
// =============================================================================

// Load reads configuration from environment variables and returns a
// validated Config.
func Load() (Config, error) {
	cfg := Config{
		Decimal:    loadDecimalConfig(),
		Simulation: loadSimulationConfig(),
		Runner:     loadRunnerConfig(),
		Logging:    loadLoggingConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// MustLoad is like Load but panics on error. Use only in main().
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("config: failed to load: %v", err))
	}
	return cfg
}

// Default returns the configuration Load would produce with no environment
// variables set. Useful for tests and library callers that construct an
// engine directly rather than via the CLI.
func Default() Config {
	return Config{
		Decimal: DecimalConfig{
			Precision:              defaultDecimalPrecision,
			Rounding:               RoundHalfUp,
			TolerateEmptyIntensity: defaultTolerateEmptyIntensity,
		},
		Simulation: SimulationConfig{StartYear: defaultStartYear, EndYear: defaultEndYear},
		Runner:     RunnerConfig{PoolSize: defaultWorkerPoolSize},
		Logging:    LoggingConfig{Level: "info", Format: "json"},
	}
}

// Validate checks that the configuration is internally consistent.
func (c Config) Validate() error {
	var errs []string

	if c.Decimal.Precision <= 0 {
		errs = append(errs, "decimal precision must be positive")
	}
	if !c.Decimal.Rounding.IsValid() {
		errs = append(errs, fmt.Sprintf("invalid rounding mode %q", c.Decimal.Rounding))
	}
	if c.Simulation.EndYear < c.Simulation.StartYear {
		errs = append(errs, "end year must not precede start year")
	}
	if c.Runner.PoolSize <= 0 {
		errs = append(errs, "runner pool size must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: invalid configuration: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Apply writes this configuration's precision to the shopspring/decimal
// package-global division precision. It does not read Rounding.
// shopspring/decimal keeps its rounding precision as a package-level knob
// rather than a per-value context, so this is called once at startup.
func (c DecimalConfig) Apply() {
	decimal.DivisionPrecision = int(c.Precision)
}

// =============================================================================
// Per-Section Loaders
// =============================================================================

func loadDecimalConfig() DecimalConfig {
	return DecimalConfig{
		Precision:              int32(getIntEnv(envDecimalPrecision, defaultDecimalPrecision)),
		Rounding:               parseRoundingMode(os.Getenv(envRoundingMode)),
		TolerateEmptyIntensity: getBoolEnv(envTolerateEmptyIntensity, defaultTolerateEmptyIntensity),
	}
}

func loadSimulationConfig() SimulationConfig {
	return SimulationConfig{
		StartYear: getIntEnv(envStartYear, defaultStartYear),
		EndYear:   getIntEnv(envEndYear, defaultEndYear),
	}
}

func loadRunnerConfig() RunnerConfig {
	return RunnerConfig{PoolSize: getIntEnv(envWorkerPoolSize, defaultWorkerPoolSize)}
}

func loadLoggingConfig() LoggingConfig {
	level := strings.ToLower(strings.TrimSpace(os.Getenv(envLogLevel)))
	if level == "" {
		level = "info"
	}
	format := strings.ToLower(strings.TrimSpace(os.Getenv(envLogFormat)))
	if format == "" {
		format = "json"
	}
	return LoggingConfig{Level: level, Format: format}
}

// =============================================================================
// Helper Functions
// =============================================================================

func parseRoundingMode(v string) RoundingMode {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "half_even", "banker", "bankers":
		return RoundHalfEven
	default:
		return RoundHalfUp
	}
}

func getIntEnv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getBoolEnv(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
