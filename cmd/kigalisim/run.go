package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/kigalisim/internal/csvio"
	"github.com/example/kigalisim/internal/engine"
	"github.com/example/kigalisim/internal/runner"
)

var (
	outputPath string
	startYear  int
	endYear    int
)

// runCmd drives the demo scenarios end to end and exports the results as
// CSV.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the built-in demo scenarios and export results as CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		trials := buildDemoTrials(startYear, endYear)

		r := runner.New(logger, cfg.Runner.PoolSize)
		results := r.Run(context.Background(), trials)

		var rows []engine.EngineResult
		for _, res := range results {
			if res.Err != nil {
				return runtimeError(fmt.Errorf("scenario %q trial %d: %w", res.Scenario, res.TrialNum, res.Err))
			}
			rows = append(rows, res.Rows...)
		}

		out := os.Stdout
		if outputPath != "" && outputPath != "-" {
			f, err := os.Create(outputPath)
			if err != nil {
				return runtimeError(fmt.Errorf("open output file: %w", err))
			}
			defer f.Close()
			if err := csvio.WriteAll(f, rows); err != nil {
				return runtimeError(err)
			}
			return nil
		}

		if err := csvio.WriteAll(out, rows); err != nil {
			return runtimeError(err)
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringVarP(&outputPath, "output", "o", "-", "output CSV path, or - for stdout")
	runCmd.Flags().IntVar(&startYear, "start-year", 2025, "first simulation year")
	runCmd.Flags().IntVar(&endYear, "end-year", 2030, "last simulation year (inclusive)")
}
