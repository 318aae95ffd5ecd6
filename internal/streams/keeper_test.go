package streams

import (
	"testing"

	"github.com/example/kigalisim/internal/decimalx"
	"github.com/example/kigalisim/internal/quantity"
)

func TestSetMarksEnabled(t *testing.T) {
	k := NewKeeper()
	key := UseKey{Application: "Domestic Refrigeration", Substance: "HFC-134a"}

	if k.IsEnabled(key, Manufacture) {
		t.Fatal("expected manufacture to start disabled")
	}
	k.Set(key, Manufacture, quantity.New(decimalx.FromInt(100), "kg"))
	if !k.IsEnabled(key, Manufacture) {
		t.Fatal("expected Set to enable the stream")
	}
}

func TestEnableWithoutValue(t *testing.T) {
	k := NewKeeper()
	key := UseKey{Application: "A", Substance: "B"}

	k.Enable(key, Export)
	if !k.IsEnabled(key, Export) {
		t.Fatal("expected Enable to flip the flag")
	}
	if !k.Get(key, Export).IsZero() {
		t.Fatal("expected Enable not to write a value")
	}
}

func TestSalesIsManufacturePlusImport(t *testing.T) {
	k := NewKeeper()
	key := UseKey{Application: "A", Substance: "B"}

	k.Set(key, Manufacture, quantity.New(decimalx.FromInt(60), "kg"))
	k.Set(key, Import, quantity.New(decimalx.FromInt(40), "kg"))

	sales := k.Sales(key)
	if !decimalx.Equal(sales.Value, decimalx.FromInt(100)) {
		t.Fatalf("expected sales=100, got %s", sales.Value)
	}
}

func TestAdvanceYearRollsEquipmentAndClearsDerived(t *testing.T) {
	k := NewKeeper()
	key := UseKey{Application: "A", Substance: "B"}

	k.Set(key, Equipment, quantity.New(decimalx.FromInt(500), "units"))
	k.Set(key, Consumption, quantity.New(decimalx.FromInt(10), "tCO2e"))

	k.AdvanceYear(key)

	if !decimalx.Equal(k.Get(key, PriorEquipment).Value, decimalx.FromInt(500)) {
		t.Fatalf("expected priorEquipment=500, got %s", k.Get(key, PriorEquipment).Value)
	}
	if !k.Get(key, Consumption).IsZero() {
		t.Fatal("expected consumption to be cleared on year advance")
	}
}

func TestKeysSortedDeterministically(t *testing.T) {
	k := NewKeeper()
	k.Set(UseKey{Application: "Z", Substance: "A"}, Manufacture, quantity.Zero("kg"))
	k.Set(UseKey{Application: "A", Substance: "B"}, Manufacture, quantity.Zero("kg"))

	keys := k.Keys()
	if len(keys) != 2 || keys[0].Application != "A" || keys[1].Application != "Z" {
		t.Fatalf("expected sorted keys, got %+v", keys)
	}
}

func TestStateForReflectsCurrentValues(t *testing.T) {
	k := NewKeeper()
	key := UseKey{Application: "A", Substance: "B"}

	k.Set(key, Equipment, quantity.New(decimalx.FromInt(1000), "units"))
	k.Set(key, Manufacture, quantity.New(decimalx.FromInt(300), "kg"))
	k.Set(key, Import, quantity.New(decimalx.FromInt(200), "kg"))
	k.SetGhgIntensity(key, quantity.New(decimalx.FromInt(2), "tCO2e/kg"))

	state := k.StateFor(key, decimalx.FromInt(3))
	if !decimalx.Equal(state.Population(), decimalx.FromInt(1000)) {
		t.Fatalf("expected population=1000, got %s", state.Population())
	}
	if !decimalx.Equal(state.Volume(), decimalx.FromInt(500)) {
		t.Fatalf("expected volume=500, got %s", state.Volume())
	}
	if !decimalx.Equal(state.YearsElapsed(), decimalx.FromInt(3)) {
		t.Fatalf("expected yearsElapsed=3, got %s", state.YearsElapsed())
	}
}
