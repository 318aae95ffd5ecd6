// Package engine implements the Engine public API: the
// single entry point a driver uses to apply commands for one (scenario,
// trial) run and collect per-year results. The Engine owns the Stream
// Keeper, the current scope, variable bindings, the year counter, and the
// RecalcKit; it is itself single-threaded cooperative, with a distinct
// Engine per goroutine as the concurrency model, enforced by
// internal/runner, not by this package.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/example/kigalisim/internal/convert"
	"github.com/example/kigalisim/internal/decimalx"
	"github.com/example/kigalisim/internal/logging"
	"github.com/example/kigalisim/internal/quantity"
	"github.com/example/kigalisim/internal/recalc"
	"github.com/example/kigalisim/internal/simerrors"
	"github.com/example/kigalisim/internal/streams"
)

// Scope is the engine's current (stanza, application, substance) context.
// Each field is optional; operations that need
// application+substance fail with ErrScopeMissing when either is unset.
type Scope struct {
	Stanza      string
	Application string
	Substance   string
}

// Engine is the simulation engine for a single (scenario, trial) run.
type Engine struct {
	startYear int
	endYear   int
	year      int

	scenario string
	trial    int
	scope    Scope

	keeper    *streams.Keeper
	converter *convert.Converter
	kit       *recalc.Kit

	// variables are scoped per stanza: a per-stanza map.
	variables map[string]map[string]quantity.Quantity

	logger *slog.Logger
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithLogger attaches a logger; defaults to logging.Default() otherwise.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithTolerateEmptyIntensity controls the converter's zero-denominator
// tolerance (config.DecimalConfig.TolerateEmptyIntensity).
func WithTolerateEmptyIntensity(tolerate bool) Option {
	return func(e *Engine) { e.converter = convert.New(tolerate) }
}

// New constructs an Engine covering [startYear, endYear] inclusive.
func New(startYear, endYear int, opts ...Option) *Engine {
	keeper := streams.NewKeeper()
	e := &Engine{
		startYear: startYear,
		endYear:   endYear,
		year:      startYear,
		keeper:    keeper,
		converter: convert.New(true),
		variables: map[string]map[string]quantity.Quantity{},
		logger:    logging.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.kit = &recalc.Kit{Keeper: keeper, Converter: e.converter}
	return e
}

// SetScenario records which named scenario and trial this Engine instance
// is running, for attribution in results and logs.
func (e *Engine) SetScenario(name string, trial int) {
	e.scenario = name
	e.trial = trial
}

// SetStanza sets the current policy stanza ("default" or a named policy).
func (e *Engine) SetStanza(name string) {
	e.scope.Stanza = name
}

// SetApplication sets the current application scope.
func (e *Engine) SetApplication(name string) {
	e.scope.Application = name
}

// SetSubstance sets the current substance scope.
func (e *Engine) SetSubstance(name string) {
	e.scope.Substance = name
}

// Year returns the current simulation year.
func (e *Engine) Year() int { return e.year }

// IsDone reports whether the simulation has advanced past endYear.
func (e *Engine) IsDone() bool {
	return e.year > e.endYear
}

func (e *Engine) yearsElapsed() decimalx.D {
	return decimalx.FromInt(int64(e.year - e.startYear))
}

func (e *Engine) requireScope() (streams.UseKey, error) {
	if e.scope.Application == "" || e.scope.Substance == "" {
		return streams.UseKey{}, fmt.Errorf("engine: %w: application=%q substance=%q",
			simerrors.ErrScopeMissing, e.scope.Application, e.scope.Substance)
	}
	return streams.UseKey{Application: e.scope.Application, Substance: e.scope.Substance}, nil
}

func (e *Engine) state(key streams.UseKey) convert.StateGetter {
	return e.keeper.StateFor(key, e.yearsElapsed())
}

// canonicalStreamName maps a stream to the Name used by the Stream Keeper.
func canonicalStreamName(name string) (streams.Name, bool) {
	n := streams.Name(name)
	_, ok := streams.CanonicalUnits[n]
	return n, ok
}
