package runner

import (
	"context"
	"testing"

	"github.com/example/kigalisim/internal/decimalx"
	"github.com/example/kigalisim/internal/engine"
	"github.com/example/kigalisim/internal/operations"
	"github.com/example/kigalisim/internal/quantity"
)

func baselineProgram(year int) operations.Program {
	if year != 2025 {
		return nil
	}
	return operations.Program{
		{
			Kind:        operations.SetInitialCharge,
			Application: "Domestic Refrigeration",
			Substance:   "HFC-134a",
			Channel:     "sales",
			Value:       operations.Literal(quantity.New(decimalx.FromInt(1), "kg/unit")),
			YearMatcher: engine.AnyYear(),
		},
		{
			Kind:        operations.SetStream,
			Application: "Domestic Refrigeration",
			Substance:   "HFC-134a",
			Stream:      "manufacture",
			Propagate:   true,
			Value:       operations.Literal(quantity.New(decimalx.FromInt(100), "mt")),
			YearMatcher: engine.AnyYear(),
		},
	}
}

func TestRunnerRunsTrialsConcurrentlyAndPreservesOrder(t *testing.T) {
	trials := []Trial{
		{Scenario: "bau", TrialNum: 0, StartYear: 2025, EndYear: 2026, Programs: baselineProgram},
		{Scenario: "policy", TrialNum: 0, StartYear: 2025, EndYear: 2026, Programs: baselineProgram},
		{Scenario: "policy", TrialNum: 1, StartYear: 2025, EndYear: 2026, Programs: baselineProgram},
	}

	r := New(nil, 2)
	results := r.Run(context.Background(), trials)

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, want := range []struct {
		scenario string
		trial    int
	}{{"bau", 0}, {"policy", 0}, {"policy", 1}} {
		if results[i].Scenario != want.scenario || results[i].TrialNum != want.trial {
			t.Fatalf("result %d: expected %s/%d, got %s/%d", i, want.scenario, want.trial, results[i].Scenario, results[i].TrialNum)
		}
		if results[i].Err != nil {
			t.Fatalf("result %d: unexpected error: %v", i, results[i].Err)
		}
		if results[i].RunID == "" {
			t.Fatalf("result %d: expected a non-empty run ID", i)
		}
	}

	if len(results[0].Rows) != 2 {
		t.Fatalf("expected 2 yearly rows (2025, 2026), got %d", len(results[0].Rows))
	}
	if !decimalx.Equal(results[0].Rows[0].Manufacture.Value, decimalx.FromInt(100000)) {
		t.Fatalf("expected first-year manufacture=100000 kg, got %s", results[0].Rows[0].Manufacture.Value)
	}
}

func TestRunnerDistinctRunIDsAcrossTrials(t *testing.T) {
	trials := []Trial{
		{Scenario: "bau", TrialNum: 0, StartYear: 2025, EndYear: 2025, Programs: baselineProgram},
		{Scenario: "bau", TrialNum: 1, StartYear: 2025, EndYear: 2025, Programs: baselineProgram},
	}
	r := New(nil, 4)
	results := r.Run(context.Background(), trials)
	if results[0].RunID == results[1].RunID {
		t.Fatal("expected distinct run IDs per trial")
	}
}

func TestRunnerRespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	trials := []Trial{
		{Scenario: "bau", TrialNum: 0, StartYear: 2025, EndYear: 2030, Programs: baselineProgram},
	}
	r := New(nil, 1)
	results := r.Run(ctx, trials)
	if results[0].Err == nil {
		t.Fatal("expected an error from a pre-cancelled context")
	}
}
