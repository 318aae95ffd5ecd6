package engine

import (
	"errors"
	"testing"

	"github.com/example/kigalisim/internal/decimalx"
	"github.com/example/kigalisim/internal/quantity"
	"github.com/example/kigalisim/internal/simerrors"
)

func setupScope(e *Engine, application, substance string) {
	e.SetApplication(application)
	e.SetSubstance(substance)
}

// TestBasicKgManufactureScenario exercises a manufacture volume driving
// population and consumption.
func TestBasicKgManufactureScenario(t *testing.T) {
	e := New(2025, 2030)
	setupScope(e, "Domestic Refrigeration", "HFC-134a")

	if err := e.SetInitialCharge(quantity.New(decimalx.FromInt(1), "kg/unit"), "sales", AnyYear()); err != nil {
		t.Fatalf("setInitialCharge failed: %v", err)
	}
	if err := e.SetStream("manufacture", quantity.New(decimalx.FromInt(100), "mt"), AnyYear(), true); err != nil {
		t.Fatalf("setStream failed: %v", err)
	}
	if err := e.Equals(quantity.New(decimalx.FromInt(5), "tCO2e/mt"), AnyYear()); err != nil {
		t.Fatalf("equals failed: %v", err)
	}

	manufacture, err := e.GetStream("manufacture", "kg")
	if err != nil {
		t.Fatalf("getStream failed: %v", err)
	}
	if !decimalx.Equal(manufacture.Value, decimalx.FromInt(100000)) {
		t.Fatalf("expected manufacture=100000 kg, got %s", manufacture.Value)
	}

	consumption, err := e.GetStream("consumption", "tCO2e")
	if err != nil {
		t.Fatalf("getStream failed: %v", err)
	}
	if !decimalx.Equal(consumption.Value, decimalx.FromInt(500)) {
		t.Fatalf("expected consumption=500 tCO2e, got %s", consumption.Value)
	}

	population, err := e.GetStream("equipment", "units")
	if err != nil {
		t.Fatalf("getStream failed: %v", err)
	}
	if !decimalx.Equal(population.Value, decimalx.FromInt(100000)) {
		t.Fatalf("expected population=100000 units, got %s", population.Value)
	}
}

// TestChangeStreamAppliesPercentDelta exercises a percent-of-base delta
// applied to an existing stream value.
func TestChangeStreamAppliesPercentDelta(t *testing.T) {
	e := New(2025, 2026)
	setupScope(e, "Domestic Refrigeration", "HFC-134a")

	if err := e.SetInitialCharge(quantity.New(decimalx.FromInt(1), "kg/unit"), "sales", AnyYear()); err != nil {
		t.Fatal(err)
	}
	if err := e.Equals(quantity.New(decimalx.FromFloat(0.005), "tCO2e/kg"), AnyYear()); err != nil {
		t.Fatal(err)
	}
	if err := e.SetStream("manufacture", quantity.New(decimalx.FromInt(100000), "kg"), AnyYear(), true); err != nil {
		t.Fatal(err)
	}

	if err := e.IncrementYear(); err != nil {
		t.Fatalf("incrementYear failed: %v", err)
	}

	if err := e.ChangeStream("manufacture", quantity.New(decimalx.FromInt(10), "%"), AnyYear()); err != nil {
		t.Fatalf("changeStream failed: %v", err)
	}

	manufacture, _ := e.GetStream("manufacture", "kg")
	if !decimalx.Equal(manufacture.Value, decimalx.FromInt(110000)) {
		t.Fatalf("expected manufacture=110000 kg, got %s", manufacture.Value)
	}
}

// TestRetireReducesPopulationAcrossYears exercises retirement applied in the
// second year to the population carried over from the first.
func TestRetireReducesPopulationAcrossYears(t *testing.T) {
	e := New(2025, 2027)
	setupScope(e, "Domestic Refrigeration", "HFC-134a")

	if err := e.SetInitialCharge(quantity.New(decimalx.FromInt(1), "kg/unit"), "sales", AnyYear()); err != nil {
		t.Fatal(err)
	}
	if err := e.SetStream("equipment", quantity.New(decimalx.FromInt(200000), "units"), AnyYear(), false); err != nil {
		t.Fatal(err)
	}
	if err := e.IncrementYear(); err != nil {
		t.Fatal(err)
	}
	if err := e.Retire(quantity.New(decimalx.FromInt(5), "%"), AnyYear()); err != nil {
		t.Fatalf("retire failed: %v", err)
	}

	population, _ := e.GetStream("equipment", "units")
	if !decimalx.Equal(population.Value, decimalx.FromInt(190000)) {
		t.Fatalf("expected population=190000 units, got %s", population.Value)
	}
}

// TestCapWithDisplacementMovesExcessToTarget exercises a capped stream
// displacing its excess into another substance's same stream.
func TestCapWithDisplacementMovesExcessToTarget(t *testing.T) {
	e := New(2025, 2025)
	setupScope(e, "Domestic Refrigeration", "SubA")
	if err := e.SetInitialCharge(quantity.New(decimalx.FromInt(10), "kg/unit"), "sales", AnyYear()); err != nil {
		t.Fatal(err)
	}
	if err := e.SetStream("manufacture", quantity.New(decimalx.FromInt(100), "kg"), AnyYear(), true); err != nil {
		t.Fatal(err)
	}

	setupScope(e, "Domestic Refrigeration", "SubB")
	if err := e.SetInitialCharge(quantity.New(decimalx.FromInt(20), "kg/unit"), "sales", AnyYear()); err != nil {
		t.Fatal(err)
	}
	if err := e.SetStream("manufacture", quantity.New(decimalx.FromInt(200), "kg"), AnyYear(), true); err != nil {
		t.Fatal(err)
	}

	setupScope(e, "Domestic Refrigeration", "SubA")
	if err := e.Cap("manufacture", quantity.New(decimalx.FromInt(70), "kg"), AnyYear(), "SubB"); err != nil {
		t.Fatalf("cap failed: %v", err)
	}

	subAManufacture, _ := e.GetStream("manufacture", "kg")
	if !decimalx.Equal(subAManufacture.Value, decimalx.FromInt(70)) {
		t.Fatalf("expected SubA manufacture=70 kg, got %s", subAManufacture.Value)
	}

	setupScope(e, "Domestic Refrigeration", "SubB")
	subBManufacture, _ := e.GetStream("manufacture", "kg")
	if !decimalx.Equal(subBManufacture.Value, decimalx.FromInt(260)) {
		t.Fatalf("expected SubB manufacture=260 kg (200 + 3 units * 20 kg/unit), got %s", subBManufacture.Value)
	}
}

func TestScopeMissingError(t *testing.T) {
	e := New(2025, 2030)
	err := e.SetStream("manufacture", quantity.New(decimalx.FromInt(1), "kg"), AnyYear(), true)
	if !errors.Is(err, simerrors.ErrScopeMissing) {
		t.Fatalf("expected ErrScopeMissing, got %v", err)
	}
}

func TestYearMatcherGatesCommands(t *testing.T) {
	e := New(2025, 2030)
	setupScope(e, "A", "B")

	min := 2027
	matcher := YearRange(&min, nil)
	if err := e.SetStream("manufacture", quantity.New(decimalx.FromInt(100), "kg"), matcher, true); err != nil {
		t.Fatal(err)
	}

	manufacture, _ := e.GetStream("manufacture", "kg")
	if !manufacture.IsZero() {
		t.Fatalf("expected command outside year window to no-op, got %s", manufacture.Value)
	}
}

func TestIsDoneAfterFinalYear(t *testing.T) {
	e := New(2025, 2026)
	if e.IsDone() {
		t.Fatal("expected not done at start")
	}
	_ = e.IncrementYear()
	_ = e.IncrementYear()
	if !e.IsDone() {
		t.Fatal("expected done after incrementing past endYear")
	}
}

func TestVariableRoundTrip(t *testing.T) {
	e := New(2025, 2030)
	e.SetStanza("default")
	if err := e.DefineVariable("x"); err != nil {
		t.Fatal(err)
	}
	if err := e.SetVariable("x", quantity.New(decimalx.FromInt(42), "kg")); err != nil {
		t.Fatal(err)
	}
	v, err := e.GetVariable("x")
	if err != nil {
		t.Fatal(err)
	}
	if !decimalx.Equal(v.Value, decimalx.FromInt(42)) {
		t.Fatalf("expected x=42, got %s", v.Value)
	}
}

func TestGetResultsOnlyIncludesEnabledRows(t *testing.T) {
	e := New(2025, 2030)
	setupScope(e, "A", "Unused")
	// never set or enabled: should not appear

	setupScope(e, "A", "Used")
	if err := e.SetInitialCharge(quantity.New(decimalx.FromInt(1), "kg/unit"), "sales", AnyYear()); err != nil {
		t.Fatal(err)
	}
	if err := e.SetStream("manufacture", quantity.New(decimalx.FromInt(10), "kg"), AnyYear(), true); err != nil {
		t.Fatal(err)
	}

	results := e.GetResults()
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Substance != "Used" {
		t.Fatalf("expected Used substance in results, got %s", results[0].Substance)
	}
}
