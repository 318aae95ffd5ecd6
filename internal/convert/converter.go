package convert

import (
	"fmt"

	"github.com/example/kigalisim/internal/decimalx"
	"github.com/example/kigalisim/internal/quantity"
	"github.com/example/kigalisim/internal/simerrors"
)

// recognized is the set of base (denominator-free) unit tokens the
// converter knows a rule for. Anything else is ErrUnsupportedUnits.
var recognized = map[string]bool{
	"kg": true, "mt": true,
	"unit": true, "units": true,
	"tCO2e": true,
	"kwh":   true,
	"year":  true, "years": true,
	"%": true,
}

// Converter implements the Unit Converter: it turns a
// Quantity expressed in one unit into the equivalent Quantity in another,
// consulting a StateGetter for the scope-dependent totals a ratio
// conversion needs.
type Converter struct {
	// TolerateEmptyIntensity, when true, treats a zero GHG/energy intensity
	// as "this substance has none" (producing a zero result) rather than
	// failing the conversion outright. Mirrors config.DecimalConfig's
	// TolerateEmptyIntensity.
	TolerateEmptyIntensity bool
}

// New constructs a Converter.
func New(tolerateEmptyIntensity bool) *Converter {
	return &Converter{TolerateEmptyIntensity: tolerateEmptyIntensity}
}

// Convert converts src into the equivalent quantity expressed in dstUnits,
// using getter to resolve whatever totals the conversion needs.
func (c *Converter) Convert(src quantity.Quantity, dstUnits string, getter StateGetter) (quantity.Quantity, error) {
	srcN := quantity.Normalize(src.Units)
	dstN := quantity.Normalize(dstUnits)

	// Identity shortcut.
	if srcN.String() == dstN.String() {
		return quantity.New(src.Value, dstUnits), nil
	}

	// Zero-value shortcut: a zero quantity converts to zero in any units,
	// skipping totals that may themselves be undefined (e.g. population
	// for a substance never sold).
	if src.IsZero() {
		return quantity.Zero(dstUnits), nil
	}

	// Same-denominator shortcut: only the numerator needs converting.
	if srcN.HasDenominator && dstN.HasDenominator && quantity.SameUnits(srcN.Denominator, dstN.Denominator) {
		numer, err := c.convertSingle(quantity.New(src.Value, srcN.Numerator), dstN.Numerator, getter)
		if err != nil {
			return quantity.Quantity{}, err
		}
		return quantity.New(numer.Value, dstN.String()), nil
	}

	// Same-numerator, statically-related-denominator shortcut: rebasing a
	// ratio like tCO2e/mt to tCO2e/kg is a fixed physical conversion
	// (1 mt = 1000 kg) that must not depend on a state total. Routing this
	// through toAbsolute/attachDenominator would multiply and then divide
	// by the same total, which collapses to zero whenever that total
	// happens to be zero instead of cancelling out, making the result
	// depend on command order.
	if srcN.HasDenominator && dstN.HasDenominator && quantity.SameUnits(srcN.Numerator, dstN.Numerator) {
		if scale, ok := staticScale(dstN.Denominator, srcN.Denominator); ok {
			return quantity.New(src.Value.Mul(scale), dstN.String()), nil
		}
	}

	// General path: strip any source denominator down to an absolute,
	// single-unit quantity, then re-attach the destination's denominator
	// (if any).
	abs, err := c.toAbsolute(src, srcN, getter)
	if err != nil {
		return quantity.Quantity{}, err
	}

	numer, err := c.convertSingle(abs, dstN.Numerator, getter)
	if err != nil {
		return quantity.Quantity{}, err
	}

	if !dstN.HasDenominator {
		return numer, nil
	}

	return c.attachDenominator(numer, srcN, dstN, getter)
}

// toAbsolute removes src's ratio denominator, if any, by multiplying
// through by the relevant total, yielding a single-unit quantity in
// srcN.Numerator's units.
func (c *Converter) toAbsolute(src quantity.Quantity, srcN quantity.Normalized, getter StateGetter) (quantity.Quantity, error) {
	if !srcN.HasDenominator {
		return quantity.New(src.Value, srcN.Numerator), nil
	}

	total, err := c.totalFor(srcN.Denominator, getter)
	if err != nil {
		return quantity.Quantity{}, err
	}
	return quantity.New(src.Value.Mul(total), srcN.Numerator), nil
}

// attachDenominator divides a destination-numerator-converted absolute
// quantity by the total for dstN's denominator, re-introducing the ratio.
// If that total is zero, it falls back to a static scale between the
// original source and destination denominator units; with no such scale it
// returns zero when TolerateEmptyIntensity is set and fails otherwise.
func (c *Converter) attachDenominator(numer quantity.Quantity, srcN, dstN quantity.Normalized, getter StateGetter) (quantity.Quantity, error) {
	total, err := c.totalFor(dstN.Denominator, getter)
	if err != nil {
		return quantity.Quantity{}, err
	}

	if !total.IsZero() {
		return quantity.New(numer.Value.Div(total), dstN.String()), nil
	}

	scale, ok := staticScale(srcN.Denominator, dstN.Denominator)
	if !ok {
		if c.TolerateEmptyIntensity {
			return quantity.Zero(dstN.String()), nil
		}
		return quantity.Quantity{}, fmt.Errorf("%w: zero %s total converting %s to %s",
			simerrors.ErrZeroDenominatorUnrecoverable, dstN.Denominator, srcN.String(), dstN.String())
	}
	return quantity.New(numer.Value.Mul(scale), dstN.String()), nil
}

// staticScale returns the fixed multiplicative factor between two
// denominator units that are the same physical quantity at a different
// scale or spelling (kg<->mt, unit<->units, year<->years), independent of
// any state total. ok is false when the units are not a known pair.
func staticScale(from, to string) (decimalx.D, bool) {
	if quantity.SameUnits(from, to) {
		return decimalx.FromInt(1), true
	}
	switch {
	case from == "kg" && to == "mt":
		return decimalx.FromFloat(0.001), true
	case from == "mt" && to == "kg":
		return decimalx.FromInt(1000), true
	case from == "unit" && to == "units", from == "units" && to == "unit":
		return decimalx.FromInt(1), true
	case from == "year" && to == "years", from == "years" && to == "year":
		return decimalx.FromInt(1), true
	default:
		return decimalx.Zero, false
	}
}

// totalFor returns the state total associated with a bare denominator unit:
// the quantity one would divide an absolute amount by to produce a
// "per unit" ratio expressed in that unit.
func (c *Converter) totalFor(unit string, getter StateGetter) (decimalx.D, error) {
	switch unit {
	case "kg":
		return getter.Volume(), nil
	case "mt":
		return getter.Volume().Mul(decimalx.FromFloat(0.001)), nil
	case "unit", "units":
		return getter.Population(), nil
	case "tCO2e":
		return getter.TotalGhgConsumption(), nil
	case "kwh":
		return getter.TotalEnergyConsumption(), nil
	case "year", "years":
		return getter.YearsElapsed(), nil
	case "%":
		return decimalx.Hundred, nil
	default:
		return decimalx.Zero, fmt.Errorf("%w: %q", simerrors.ErrUnsupportedUnits, unit)
	}
}

// convertSingle converts an absolute (denominator-free) quantity to a
// single destination unit, dispatching on the destination's physical
// dimension.
func (c *Converter) convertSingle(abs quantity.Quantity, dstUnit string, getter StateGetter) (quantity.Quantity, error) {
	srcUnit := abs.Units
	if !recognized[srcUnit] {
		return quantity.Quantity{}, fmt.Errorf("%w: %q", simerrors.ErrUnsupportedUnits, srcUnit)
	}
	if !recognized[dstUnit] {
		return quantity.Quantity{}, fmt.Errorf("%w: %q", simerrors.ErrUnsupportedUnits, dstUnit)
	}
	if srcUnit == dstUnit {
		return quantity.New(abs.Value, dstUnit), nil
	}

	switch dstUnit {
	case "kg", "mt":
		return c.toVolume(abs, dstUnit, getter)
	case "unit", "units":
		return c.toUnits(abs, getter)
	case "tCO2e":
		return c.toGhg(abs, getter)
	case "kwh":
		return c.toEnergy(abs, getter)
	case "year", "years":
		return c.toYears(abs, getter)
	case "%":
		return c.toPercent(abs, getter)
	default:
		return quantity.Quantity{}, fmt.Errorf("%w: %q", simerrors.ErrUnsupportedUnits, dstUnit)
	}
}

func (c *Converter) toVolume(abs quantity.Quantity, dstUnit string, getter StateGetter) (quantity.Quantity, error) {
	var kg decimalx.D
	switch abs.Units {
	case "kg":
		kg = abs.Value
	case "mt":
		kg = abs.Value.Mul(decimalx.FromInt(1000))
	case "unit", "units":
		kg = abs.Value.Mul(getter.AmortizedUnitVolume())
	case "tCO2e":
		intensity := getter.GhgIntensity()
		if intensity.IsZero() {
			if c.TolerateEmptyIntensity {
				kg = decimalx.Zero
				break
			}
			return quantity.Quantity{}, fmt.Errorf("%w: zero GHG intensity converting tCO2e to %s", simerrors.ErrZeroDenominatorUnrecoverable, dstUnit)
		}
		kg = decimalx.DivOrZero(abs.Value, intensity)
	case "kwh":
		intensity := getter.EnergyIntensity()
		if intensity.IsZero() {
			if c.TolerateEmptyIntensity {
				kg = decimalx.Zero
				break
			}
			return quantity.Quantity{}, fmt.Errorf("%w: zero energy intensity converting kwh to %s", simerrors.ErrZeroDenominatorUnrecoverable, dstUnit)
		}
		kg = decimalx.DivOrZero(abs.Value, intensity)
	case "%":
		kg = abs.Value.Div(decimalx.Hundred).Mul(getter.Volume())
	default:
		return quantity.Quantity{}, fmt.Errorf("%w: cannot convert %s to %s", simerrors.ErrIncompatibleUnits, abs.Units, dstUnit)
	}

	if dstUnit == "mt" {
		kg = kg.Mul(decimalx.FromFloat(0.001))
	}
	return quantity.New(kg, dstUnit), nil
}

func (c *Converter) toUnits(abs quantity.Quantity, getter StateGetter) (quantity.Quantity, error) {
	amortized := getter.AmortizedUnitVolume()

	switch abs.Units {
	case "kg":
		return c.divideOrTolerate(abs.Value, amortized, "units", "amortized unit volume")
	case "mt":
		return c.divideOrTolerate(abs.Value.Mul(decimalx.FromInt(1000)), amortized, "units", "amortized unit volume")
	case "unit", "units":
		return quantity.New(abs.Value, "units"), nil
	case "tCO2e":
		perUnit := amortized.Mul(getter.GhgIntensity())
		return c.divideOrTolerate(abs.Value, perUnit, "units", "amortized unit GHG consumption")
	case "kwh":
		perUnit := amortized.Mul(getter.EnergyIntensity())
		return c.divideOrTolerate(abs.Value, perUnit, "units", "amortized unit energy consumption")
	case "%":
		return quantity.New(abs.Value.Div(decimalx.Hundred).Mul(getter.Population()), "units"), nil
	default:
		return quantity.Quantity{}, fmt.Errorf("%w: cannot convert %s to units", simerrors.ErrIncompatibleUnits, abs.Units)
	}
}

func (c *Converter) toGhg(abs quantity.Quantity, getter StateGetter) (quantity.Quantity, error) {
	intensity := getter.GhgIntensity()

	switch abs.Units {
	case "kg":
		return quantity.New(abs.Value.Mul(intensity), "tCO2e"), nil
	case "mt":
		return quantity.New(abs.Value.Mul(decimalx.FromInt(1000)).Mul(intensity), "tCO2e"), nil
	case "unit", "units":
		return quantity.New(abs.Value.Mul(getter.AmortizedUnitVolume()).Mul(intensity), "tCO2e"), nil
	case "tCO2e":
		return quantity.New(abs.Value, "tCO2e"), nil
	case "%":
		return quantity.New(abs.Value.Div(decimalx.Hundred).Mul(getter.TotalGhgConsumption()), "tCO2e"), nil
	default:
		return quantity.Quantity{}, fmt.Errorf("%w: cannot convert %s to tCO2e", simerrors.ErrIncompatibleUnits, abs.Units)
	}
}

func (c *Converter) toEnergy(abs quantity.Quantity, getter StateGetter) (quantity.Quantity, error) {
	intensity := getter.EnergyIntensity()

	switch abs.Units {
	case "kg":
		return quantity.New(abs.Value.Mul(intensity), "kwh"), nil
	case "mt":
		return quantity.New(abs.Value.Mul(decimalx.FromInt(1000)).Mul(intensity), "kwh"), nil
	case "unit", "units":
		return quantity.New(abs.Value.Mul(getter.AmortizedUnitVolume()).Mul(intensity), "kwh"), nil
	case "kwh":
		return quantity.New(abs.Value, "kwh"), nil
	case "%":
		return quantity.New(abs.Value.Div(decimalx.Hundred).Mul(getter.TotalEnergyConsumption()), "kwh"), nil
	default:
		return quantity.Quantity{}, fmt.Errorf("%w: cannot convert %s to kwh", simerrors.ErrIncompatibleUnits, abs.Units)
	}
}

func (c *Converter) toYears(abs quantity.Quantity, getter StateGetter) (quantity.Quantity, error) {
	switch abs.Units {
	case "year", "years":
		return quantity.New(abs.Value, "years"), nil
	case "%":
		return quantity.New(abs.Value.Div(decimalx.Hundred).Mul(getter.YearsElapsed()), "years"), nil
	default:
		return quantity.Quantity{}, fmt.Errorf("%w: cannot convert %s to years", simerrors.ErrIncompatibleUnits, abs.Units)
	}
}

// toPercent expresses abs as a percentage of the total matching its own
// dimension (volume for kg/mt, population for unit/units, and so on).
func (c *Converter) toPercent(abs quantity.Quantity, getter StateGetter) (quantity.Quantity, error) {
	var total decimalx.D
	var value decimalx.D

	switch abs.Units {
	case "kg":
		total, value = getter.Volume(), abs.Value
	case "mt":
		total, value = getter.Volume(), abs.Value.Mul(decimalx.FromInt(1000))
	case "unit", "units":
		total, value = getter.Population(), abs.Value
	case "tCO2e":
		total, value = getter.TotalGhgConsumption(), abs.Value
	case "kwh":
		total, value = getter.TotalEnergyConsumption(), abs.Value
	case "year", "years":
		total, value = getter.YearsElapsed(), abs.Value
	case "%":
		return quantity.New(abs.Value, "%"), nil
	default:
		return quantity.Quantity{}, fmt.Errorf("%w: cannot convert %s to %%", simerrors.ErrIncompatibleUnits, abs.Units)
	}

	if total.IsZero() {
		if c.TolerateEmptyIntensity {
			return quantity.New(decimalx.Zero, "%"), nil
		}
		return quantity.Quantity{}, fmt.Errorf("%w: zero total expressing %s as %%", simerrors.ErrZeroDenominatorUnrecoverable, abs.Units)
	}
	return quantity.New(value.Div(total).Mul(decimalx.Hundred), "%"), nil
}

// divideOrTolerate divides num/denom, honoring TolerateEmptyIntensity when
// denom is zero instead of failing outright.
func (c *Converter) divideOrTolerate(num, denom decimalx.D, unit, what string) (quantity.Quantity, error) {
	if denom.IsZero() {
		if c.TolerateEmptyIntensity {
			return quantity.New(decimalx.Zero, unit), nil
		}
		return quantity.Quantity{}, fmt.Errorf("%w: zero %s", simerrors.ErrZeroDenominatorUnrecoverable, what)
	}
	return quantity.New(num.Div(denom), unit), nil
}
