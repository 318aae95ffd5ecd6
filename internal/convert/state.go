// Package convert implements the Unit Converter and the State Getter it
// queries for scope-dependent totals.
package convert

import "github.com/example/kigalisim/internal/decimalx"

// StateGetter is the façade the Unit Converter queries for the handful of
// scope-dependent totals a conversion might need: current population,
// current sales volume, the amortized per-unit volume, substance GHG/energy
// intensity, and the running totals those intensities produce.
//
// Two implementations exist: Base, computed directly from the Stream Keeper
// for the engine's current scope, and Overriding, which lets a caller pin
// selected values during a nested conversion (e.g. "what would this volume
// imply in units, if population were X instead of the real current
// population") without mutating engine state.
type StateGetter interface {
	// Population returns the current equipment population, in units.
	Population() decimalx.D

	// Volume returns the current sales volume (manufacture+import), in kg.
	Volume() decimalx.D

	// AmortizedUnitVolume returns the kg of refrigerant amortized per unit
	// of equipment (kg/unit), the blended initial charge across channels.
	AmortizedUnitVolume() decimalx.D

	// GhgIntensity returns the substance's GHG intensity, in tCO2e/kg.
	GhgIntensity() decimalx.D

	// EnergyIntensity returns the substance's energy intensity, in kwh/kg.
	EnergyIntensity() decimalx.D

	// TotalGhgConsumption returns the current scope's total GHG
	// consumption, in tCO2e.
	TotalGhgConsumption() decimalx.D

	// TotalEnergyConsumption returns the current scope's total energy
	// consumption, in kwh.
	TotalEnergyConsumption() decimalx.D

	// YearsElapsed returns the number of simulation years elapsed so far,
	// used to normalize "/year" ratio units and "% of years" targets.
	YearsElapsed() decimalx.D
}

// Base is a StateGetter backed by plain values, typically computed from the
// Stream Keeper for a given UseKey by the engine before invoking the
// converter.
type Base struct {
	PopulationValue             decimalx.D
	VolumeValue                 decimalx.D
	AmortizedUnitVolumeValue    decimalx.D
	GhgIntensityValue           decimalx.D
	EnergyIntensityValue        decimalx.D
	TotalGhgConsumptionValue    decimalx.D
	TotalEnergyConsumptionValue decimalx.D
	YearsElapsedValue           decimalx.D
}

func (b Base) Population() decimalx.D             { return b.PopulationValue }
func (b Base) Volume() decimalx.D                 { return b.VolumeValue }
func (b Base) AmortizedUnitVolume() decimalx.D    { return b.AmortizedUnitVolumeValue }
func (b Base) GhgIntensity() decimalx.D           { return b.GhgIntensityValue }
func (b Base) EnergyIntensity() decimalx.D        { return b.EnergyIntensityValue }
func (b Base) TotalGhgConsumption() decimalx.D    { return b.TotalGhgConsumptionValue }
func (b Base) TotalEnergyConsumption() decimalx.D { return b.TotalEnergyConsumptionValue }
func (b Base) YearsElapsed() decimalx.D           { return b.YearsElapsedValue }

// Override pins a subset of StateGetter fields; nil fields fall through to
// the wrapped base getter. This is an immutable context record with an
// explicit overrides field, used instead of mutate-then-restore
// setter/clearer pairs so converters stay trivially safe to call from
// multiple goroutines.
type Override struct {
	Population          *decimalx.D
	Volume              *decimalx.D
	AmortizedUnitVolume *decimalx.D
	GhgIntensity        *decimalx.D
}

// Overriding wraps a base StateGetter, substituting any field pinned in
// Override.
type Overriding struct {
	Base     StateGetter
	Override Override
}

// WithOverride returns a StateGetter that behaves like base except for the
// fields set in o.
func WithOverride(base StateGetter, o Override) StateGetter {
	return Overriding{Base: base, Override: o}
}

func (o Overriding) Population() decimalx.D {
	if o.Override.Population != nil {
		return *o.Override.Population
	}
	return o.Base.Population()
}

func (o Overriding) Volume() decimalx.D {
	if o.Override.Volume != nil {
		return *o.Override.Volume
	}
	return o.Base.Volume()
}

func (o Overriding) AmortizedUnitVolume() decimalx.D {
	if o.Override.AmortizedUnitVolume != nil {
		return *o.Override.AmortizedUnitVolume
	}
	return o.Base.AmortizedUnitVolume()
}

func (o Overriding) GhgIntensity() decimalx.D {
	if o.Override.GhgIntensity != nil {
		return *o.Override.GhgIntensity
	}
	return o.Base.GhgIntensity()
}

func (o Overriding) EnergyIntensity() decimalx.D        { return o.Base.EnergyIntensity() }
func (o Overriding) TotalGhgConsumption() decimalx.D    { return o.Base.TotalGhgConsumption() }
func (o Overriding) TotalEnergyConsumption() decimalx.D { return o.Base.TotalEnergyConsumption() }
func (o Overriding) YearsElapsed() decimalx.D           { return o.Base.YearsElapsed() }
