// Package runner drives many (scenario, trial) pairs to completion
// concurrently, each against its own freshly constructed Engine: a
// distinct Engine per goroutine, invoked once per (scenario, trial) pair
// with a fresh state.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/example/kigalisim/internal/engine"
	"github.com/example/kigalisim/internal/logging"
	"github.com/example/kigalisim/internal/operations"
)

// YearPrograms supplies the operations to apply for a given simulation
// year. Implementations are expected to return a fixed program for a
// deterministic scenario, or a fresh, seeded-random program per call for a
// stochastic trial.
type YearPrograms func(year int) operations.Program

// Trial is one (scenario, trial) unit of work: a year range, an Engine
// construction option set, and a callback producing that year's operations.
type Trial struct {
	Scenario  string
	TrialNum  int
	StartYear int
	EndYear   int
	Programs  YearPrograms
	Options   []engine.Option
}

// Result is one completed trial's output: every EngineResult row produced
// across its year range, in year order, or the error that stopped it.
type Result struct {
	RunID    string
	Scenario string
	TrialNum int
	Rows     []engine.EngineResult
	Err      error
}

// Runner bounds how many trials run concurrently, one goroutine per trial,
// capped by a semaphore sized from config rather than spawning one
// goroutine per trial unconditionally: a full run can have far more
// (scenario, trial) pairs than a host has cores.
type Runner struct {
	logger   *slog.Logger
	poolSize int
}

// New constructs a Runner. poolSize <= 0 is treated as 1.
func New(logger *slog.Logger, poolSize int) *Runner {
	if logger == nil {
		logger = logging.Default()
	}
	if poolSize <= 0 {
		poolSize = 1
	}
	return &Runner{logger: logger, poolSize: poolSize}
}

// Run executes every trial, blocking until all complete or ctx is
// cancelled. Results are returned in the same order as trials, regardless
// of completion order.
func (r *Runner) Run(ctx context.Context, trials []Trial) []Result {
	results := make([]Result, len(trials))
	sem := make(chan struct{}, r.poolSize)
	var wg sync.WaitGroup

	for i, trial := range trials {
		i, trial := i, trial
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = r.runOne(ctx, trial)
		}()
	}

	wg.Wait()
	return results
}

func (r *Runner) runOne(ctx context.Context, trial Trial) Result {
	runID := uuid.New().String()
	logger := r.logger.With("scenario", trial.Scenario, "trial", trial.TrialNum, "run_id", runID)
	logCtx := logging.WithTrial(logging.NewContext(ctx, logger), trial.Scenario, trial.TrialNum)
	logger = logging.FromContext(logCtx)

	logger.Info("trial starting", "start_year", trial.StartYear, "end_year", trial.EndYear)

	e := engine.New(trial.StartYear, trial.EndYear, append([]engine.Option{engine.WithLogger(logger)}, trial.Options...)...)
	e.SetScenario(trial.Scenario, trial.TrialNum)

	var rows []engine.EngineResult
	for !e.IsDone() {
		if err := ctx.Err(); err != nil {
			return Result{RunID: runID, Scenario: trial.Scenario, TrialNum: trial.TrialNum, Err: err}
		}

		year := e.Year()
		if trial.Programs != nil {
			program := trial.Programs(year)
			if err := program.Apply(e); err != nil {
				logger.Error("year failed", "year", year, "error", err)
				return Result{RunID: runID, Scenario: trial.Scenario, TrialNum: trial.TrialNum, Err: fmt.Errorf("runner: year %d: %w", year, err)}
			}
		}

		rows = append(rows, e.GetResults()...)

		if err := e.IncrementYear(); err != nil {
			logger.Error("increment year failed", "year", year, "error", err)
			return Result{RunID: runID, Scenario: trial.Scenario, TrialNum: trial.TrialNum, Err: err}
		}
	}

	logger.Info("trial complete", "years", trial.EndYear-trial.StartYear+1, "rows", len(rows))
	return Result{RunID: runID, Scenario: trial.Scenario, TrialNum: trial.TrialNum, Rows: rows}
}
