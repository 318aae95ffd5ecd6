package operations

import (
	"testing"

	"github.com/example/kigalisim/internal/decimalx"
	"github.com/example/kigalisim/internal/engine"
	"github.com/example/kigalisim/internal/quantity"
)

func TestExprEvalArithmetic(t *testing.T) {
	e := engine.New(2025, 2025)
	e.SetStanza("default")

	expr := Add(Literal(quantity.New(decimalx.FromInt(10), "kg")), Literal(quantity.New(decimalx.FromInt(5), "kg")))
	got, err := expr.Eval(e)
	if err != nil {
		t.Fatal(err)
	}
	if !decimalx.Equal(got.Value, decimalx.FromInt(15)) {
		t.Fatalf("expected 15, got %s", got.Value)
	}
}

func TestExprEvalVariableLookup(t *testing.T) {
	e := engine.New(2025, 2025)
	e.SetStanza("default")
	if err := e.DefineVariable("baseline"); err != nil {
		t.Fatal(err)
	}
	if err := e.SetVariable("baseline", quantity.New(decimalx.FromInt(100), "mt")); err != nil {
		t.Fatal(err)
	}

	expr := Mul(Var("baseline"), Literal(quantity.New(decimalx.FromInt(2), "")))
	got, err := expr.Eval(e)
	if err != nil {
		t.Fatal(err)
	}
	if !decimalx.Equal(got.Value, decimalx.FromInt(200)) {
		t.Fatalf("expected 200, got %s", got.Value)
	}
}

func TestExprEvalStackUnderflow(t *testing.T) {
	e := engine.New(2025, 2025)
	bad := Expr{{op: opAdd}}
	if _, err := bad.Eval(e); err == nil {
		t.Fatal("expected stack underflow error")
	}
}

func TestOperationApplySetStreamThenEquals(t *testing.T) {
	e := engine.New(2025, 2030)

	setCharge := Operation{
		Kind:        SetInitialCharge,
		Application: "Domestic Refrigeration",
		Substance:   "HFC-134a",
		Channel:     "sales",
		Value:       Literal(quantity.New(decimalx.FromInt(1), "kg/unit")),
		YearMatcher: engine.AnyYear(),
	}
	setStream := Operation{
		Kind:        SetStream,
		Application: "Domestic Refrigeration",
		Substance:   "HFC-134a",
		Stream:      "manufacture",
		Propagate:   true,
		Value:       Literal(quantity.New(decimalx.FromInt(100), "mt")),
		YearMatcher: engine.AnyYear(),
	}
	setIntensity := Operation{
		Kind:        Equals,
		Application: "Domestic Refrigeration",
		Substance:   "HFC-134a",
		Value:       Literal(quantity.New(decimalx.FromInt(5), "tCO2e/mt")),
		YearMatcher: engine.AnyYear(),
	}

	program := Program{setCharge, setStream, setIntensity}
	if err := program.Apply(e); err != nil {
		t.Fatalf("program apply failed: %v", err)
	}

	e.SetApplication("Domestic Refrigeration")
	e.SetSubstance("HFC-134a")
	consumption, err := e.GetStream("consumption", "tCO2e")
	if err != nil {
		t.Fatal(err)
	}
	if !decimalx.Equal(consumption.Value, decimalx.FromInt(500)) {
		t.Fatalf("expected consumption=500 tCO2e, got %s", consumption.Value)
	}
}

func TestOperationApplyUnknownKind(t *testing.T) {
	e := engine.New(2025, 2025)
	op := Operation{Kind: Kind(999), Application: "A", Substance: "B"}
	if err := op.Apply(e); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}
