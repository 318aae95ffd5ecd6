package main

import (
	"github.com/example/kigalisim/internal/decimalx"
	"github.com/example/kigalisim/internal/engine"
	"github.com/example/kigalisim/internal/operations"
	"github.com/example/kigalisim/internal/quantity"
	"github.com/example/kigalisim/internal/runner"
)

// demoApplication/demoSubstance name the (application, substance) pair the
// built-in demo scenarios operate on.
const (
	demoApplication = "Domestic Refrigeration"
	demoSubstance   = "HFC-134a"
)

// buildDemoTrials constructs the in-memory Programs a parsed QubecTalk
// script would otherwise produce. It defines two scenarios:
//
//   - "business-as-usual": a flat manufacture baseline with a GHG intensity
//     set once at the start year.
//   - "recharge-policy": the same baseline, plus a recharge population/
//     intensity command and a retirement command applied once, in the year
//     two after the start year, exercising the recalculation chains end to
//     end.
func buildDemoTrials(startYear, endYear int) []runner.Trial {
	return []runner.Trial{
		{
			Scenario:  "business-as-usual",
			TrialNum:  0,
			StartYear: startYear,
			EndYear:   endYear,
			Programs:  businessAsUsualProgram(startYear),
		},
		{
			Scenario:  "recharge-policy",
			TrialNum:  0,
			StartYear: startYear,
			EndYear:   endYear,
			Programs:  rechargePolicyProgram(startYear),
		},
	}
}

func businessAsUsualProgram(startYear int) runner.YearPrograms {
	return func(year int) operations.Program {
		if year != startYear {
			return nil
		}
		return operations.Program{
			{
				Kind:        operations.SetInitialCharge,
				Application: demoApplication,
				Substance:   demoSubstance,
				Channel:     "sales",
				Value:       operations.Literal(quantity.New(decimalx.FromInt(1), "kg/unit")),
				YearMatcher: engine.AnyYear(),
			},
			{
				Kind:        operations.SetStream,
				Application: demoApplication,
				Substance:   demoSubstance,
				Stream:      "manufacture",
				Propagate:   true,
				Value:       operations.Literal(quantity.New(decimalx.FromInt(100), "mt")),
				YearMatcher: engine.AnyYear(),
			},
			{
				Kind:        operations.Equals,
				Application: demoApplication,
				Substance:   demoSubstance,
				Value:       operations.Literal(quantity.New(decimalx.FromInt(5), "tCO2e/mt")),
				YearMatcher: engine.AnyYear(),
			},
		}
	}
}

func rechargePolicyProgram(startYear int) runner.YearPrograms {
	base := businessAsUsualProgram(startYear)
	policyYear := startYear + 2
	return func(year int) operations.Program {
		program := base(year)
		if year != policyYear {
			return program
		}
		return append(program,
			operations.Operation{
				Kind:        operations.Recharge,
				Application: demoApplication,
				Substance:   demoSubstance,
				Value:       operations.Literal(quantity.New(decimalx.FromInt(10), "%")),
				Secondary:   operations.Literal(quantity.New(decimalx.FromFloat(0.5), "kg/unit")),
				YearMatcher: engine.AnyYear(),
			},
			operations.Operation{
				Kind:        operations.Retire,
				Application: demoApplication,
				Substance:   demoSubstance,
				Value:       operations.Literal(quantity.New(decimalx.FromInt(5), "%")),
				YearMatcher: engine.AnyYear(),
			},
		)
	}
}
