package engine

import (
	"fmt"

	"github.com/example/kigalisim/internal/decimalx"
	"github.com/example/kigalisim/internal/quantity"
	"github.com/example/kigalisim/internal/recalc"
	"github.com/example/kigalisim/internal/simerrors"
	"github.com/example/kigalisim/internal/streams"
)

// chainForStream returns the recalculation chain a direct write to name
// should run. Only the two sales-channel streams trigger a chain of their
// own; every other stream is either derived by a recalc strategy already
// (and so re-running one on a direct write would just be clobbered next
// recalc) or has no dependents of its own.
func chainForStream(name streams.Name) recalc.Operation {
	switch name {
	case streams.Manufacture, streams.Import:
		return recalc.VolumeSetChain()
	default:
		return recalc.Operation{}
	}
}

func (e *Engine) resolveStream(name string) (streams.Name, error) {
	streamName, ok := canonicalStreamName(name)
	if !ok {
		return "", fmt.Errorf("engine: %w: %q", simerrors.ErrUnsupportedUnits, name)
	}
	return streamName, nil
}

// SetStream converts value to the stream's canonical unit, writes it
// (marking it enabled), and, if propagate is true, runs the stream's
// recalculation chain.
func (e *Engine) SetStream(name string, value quantity.Quantity, yearMatcher YearMatcher, propagate bool) error {
	if !yearMatcher.Matches(e.year) {
		return nil
	}
	key, err := e.requireScope()
	if err != nil {
		return err
	}
	streamName, err := e.resolveStream(name)
	if err != nil {
		return err
	}

	canonicalUnits := streams.CanonicalUnits[streamName]
	converted, err := e.converter.Convert(value, canonicalUnits, e.state(key))
	if err != nil {
		return fmt.Errorf("engine: setStream %s: %w", name, err)
	}
	e.keeper.Set(key, streamName, converted)

	if !propagate {
		return nil
	}
	return chainForStream(streamName).Run(e.kit, key, e.yearsElapsed())
}

// ChangeStream reads the current value, adds delta (after conversion), and
// writes back, propagating.
func (e *Engine) ChangeStream(name string, delta quantity.Quantity, yearMatcher YearMatcher) error {
	if !yearMatcher.Matches(e.year) {
		return nil
	}
	key, err := e.requireScope()
	if err != nil {
		return err
	}
	streamName, err := e.resolveStream(name)
	if err != nil {
		return err
	}

	canonicalUnits := streams.CanonicalUnits[streamName]
	state := e.state(key)
	current := e.keeper.Get(key, streamName)
	deltaConverted, err := e.converter.Convert(delta, canonicalUnits, state)
	if err != nil {
		return fmt.Errorf("engine: changeStream %s: %w", name, err)
	}

	e.keeper.Set(key, streamName, quantity.New(current.Value.Add(deltaConverted.Value), canonicalUnits))
	return chainForStream(streamName).Run(e.kit, key, e.yearsElapsed())
}

// unitsBasedLimitKg returns the effective kg limit for a units-based
// cap/floor, adding the recharge-on-top term.
func (e *Engine) unitsBasedLimitKg(key streams.UseKey, limitUnits decimalx.D) decimalx.D {
	cfg := e.keeper.Config(key)
	capKg := limitUnits.Mul(e.keeper.InitialCharge(key, streams.ChannelSales).Value)

	priorPop := e.keeper.Get(key, streams.PriorEquipment).Value
	rechargeFraction := decimalx.DivOrZero(cfg.RechargePopulation.Value, decimalx.Hundred)
	rechargeKg := priorPop.Mul(rechargeFraction).Mul(cfg.RechargeIntensity.Value)

	return capKg.Add(rechargeKg)
}

// Cap implements the `cap` command: if current exceeds max, write max; the
// excess optionally displaces into another substance's same stream.
func (e *Engine) Cap(name string, max quantity.Quantity, yearMatcher YearMatcher, displaceTarget string) error {
	return e.capOrFloor(name, max, yearMatcher, displaceTarget, true)
}

// Floor implements the `floor` command: if current is below min, write
// min, symmetric to Cap.
func (e *Engine) Floor(name string, min quantity.Quantity, yearMatcher YearMatcher, displaceTarget string) error {
	return e.capOrFloor(name, min, yearMatcher, displaceTarget, false)
}

func (e *Engine) capOrFloor(name string, limit quantity.Quantity, yearMatcher YearMatcher, displaceTarget string, isCap bool) error {
	if !yearMatcher.Matches(e.year) {
		return nil
	}
	key, err := e.requireScope()
	if err != nil {
		return err
	}
	streamName, err := e.resolveStream(name)
	if err != nil {
		return err
	}
	canonicalUnits := streams.CanonicalUnits[streamName]
	state := e.state(key)

	effectiveLimit := limit
	if quantity.SameUnits(limit.Units, "unit") || quantity.SameUnits(limit.Units, "units") {
		limitUnits, err := e.converter.Convert(limit, "units", state)
		if err != nil {
			return err
		}
		effectiveLimit = quantity.New(e.unitsBasedLimitKg(key, limitUnits.Value), "kg")
	}

	limitConverted, err := e.converter.Convert(effectiveLimit, canonicalUnits, state)
	if err != nil {
		return err
	}
	current := e.keeper.Get(key, streamName)

	var delta decimalx.D
	if isCap {
		if current.Value.Cmp(limitConverted.Value) <= 0 {
			return nil
		}
		delta = current.Value.Sub(limitConverted.Value) // excess, displaced outward
	} else {
		if current.Value.Cmp(limitConverted.Value) >= 0 {
			return nil
		}
		delta = limitConverted.Value.Sub(current.Value)
		delta = delta.Neg() // deficit, pulled inward from the target
	}
	e.keeper.Set(key, streamName, limitConverted)

	if displaceTarget != "" {
		if err := e.displace(key, streamName, delta, displaceTarget); err != nil {
			return err
		}
	}
	return chainForStream(streamName).Run(e.kit, key, e.yearsElapsed())
}

// displace converts excessCanonical (in streamName's canonical unit) into
// units using the source substance's initial charge, then back into the
// target substance's canonical unit using the target's own initial charge,
// and adds the result to the target's stream.
func (e *Engine) displace(key streams.UseKey, streamName streams.Name, excessCanonical decimalx.D, targetSubstance string) error {
	srcCharge := e.keeper.InitialCharge(key, streams.ChannelSales).Value
	var units decimalx.D
	if !srcCharge.IsZero() {
		units = excessCanonical.Div(srcCharge)
	}

	targetKey := streams.UseKey{Application: key.Application, Substance: targetSubstance}
	targetCharge := e.keeper.InitialCharge(targetKey, streams.ChannelSales).Value
	addAmount := units.Mul(targetCharge)

	canonicalUnits := streams.CanonicalUnits[streamName]
	current := e.keeper.Get(targetKey, streamName)
	e.keeper.Set(targetKey, streamName, quantity.New(current.Value.Add(addAmount), canonicalUnits))

	return chainForStream(streamName).Run(e.kit, targetKey, e.yearsElapsed())
}

// Recharge implements the `recharge` command.
func (e *Engine) Recharge(population, intensity quantity.Quantity, yearMatcher YearMatcher) error {
	if !yearMatcher.Matches(e.year) {
		return nil
	}
	key, err := e.requireScope()
	if err != nil {
		return err
	}
	state := e.state(key)

	popConverted, err := e.converter.Convert(population, "%", state)
	if err != nil {
		return err
	}
	intensityConverted, err := e.converter.Convert(intensity, "kg/unit", state)
	if err != nil {
		return err
	}
	e.keeper.SetRecharge(key, popConverted, intensityConverted)

	return recalc.RechargeChain().Run(e.kit, key, e.yearsElapsed())
}

// Retire implements the `retire` command.
func (e *Engine) Retire(rate quantity.Quantity, yearMatcher YearMatcher) error {
	if !yearMatcher.Matches(e.year) {
		return nil
	}
	key, err := e.requireScope()
	if err != nil {
		return err
	}

	rateConverted, err := e.converter.Convert(rate, "%", e.state(key))
	if err != nil {
		return err
	}
	e.keeper.SetRetirementRate(key, rateConverted)

	return recalc.RetireChain().Run(e.kit, key, e.yearsElapsed())
}

// Recover implements the `recover` command (alias *recycle*). displacement
// defaults to 100% when its Units field is empty.
func (e *Engine) Recover(amount, yieldRate, displacement quantity.Quantity, yearMatcher YearMatcher) error {
	if !yearMatcher.Matches(e.year) {
		return nil
	}
	key, err := e.requireScope()
	if err != nil {
		return err
	}
	if displacement.Units == "" {
		displacement = quantity.New(decimalx.Hundred, "%")
	}
	e.keeper.SetRecovery(key, amount, yieldRate, displacement)

	return recalc.RecoverChain().Run(e.kit, key, e.yearsElapsed())
}

// Replace implements the `replace` command: subtracts amount from the
// source stream and adds the unit-equivalent amount to destSubstance's same
// stream.
func (e *Engine) Replace(amount quantity.Quantity, streamName string, destSubstance string, yearMatcher YearMatcher) error {
	if !yearMatcher.Matches(e.year) {
		return nil
	}
	key, err := e.requireScope()
	if err != nil {
		return err
	}
	name, err := e.resolveStream(streamName)
	if err != nil {
		return err
	}
	canonicalUnits := streams.CanonicalUnits[name]
	state := e.state(key)

	converted, err := e.converter.Convert(amount, canonicalUnits, state)
	if err != nil {
		return err
	}
	current := e.keeper.Get(key, name)
	e.keeper.Set(key, name, quantity.New(decimalx.ClampNonNegative(current.Value.Sub(converted.Value)), canonicalUnits))

	if err := e.displace(key, name, converted.Value, destSubstance); err != nil {
		return err
	}
	return chainForStream(name).Run(e.kit, key, e.yearsElapsed())
}

// Equals implements the `equals` command: sets the substance's GHG
// intensity and recomputes consumption and the emissions lines that also
// depend on it.
func (e *Engine) Equals(intensity quantity.Quantity, yearMatcher YearMatcher) error {
	if !yearMatcher.Matches(e.year) {
		return nil
	}
	key, err := e.requireScope()
	if err != nil {
		return err
	}

	converted, err := e.converter.Convert(intensity, "tCO2e/kg", e.state(key))
	if err != nil {
		return err
	}
	e.keeper.SetGhgIntensity(key, converted)

	return recalc.EqualsChain().Run(e.kit, key, e.yearsElapsed())
}

// Enable flips a stream's enabled flag without changing its value.
func (e *Engine) Enable(name string, yearMatcher YearMatcher) error {
	if !yearMatcher.Matches(e.year) {
		return nil
	}
	key, err := e.requireScope()
	if err != nil {
		return err
	}
	streamName, err := e.resolveStream(name)
	if err != nil {
		return err
	}
	e.keeper.Enable(key, streamName)
	return nil
}

// SetInitialCharge sets the initial charge for a sales channel
// ("manufacture", "import", or "sales"). Outside an active YearMatcher
// window it is a no-op, matching every other command rather than writing
// zero.
func (e *Engine) SetInitialCharge(value quantity.Quantity, channel string, yearMatcher YearMatcher) error {
	if !yearMatcher.Matches(e.year) {
		return nil
	}
	key, err := e.requireScope()
	if err != nil {
		return err
	}

	converted, err := e.converter.Convert(value, "kg/unit", e.state(key))
	if err != nil {
		return err
	}
	e.keeper.SetInitialCharge(key, streams.Channel(channel), converted)
	return nil
}

// GetStream returns a stream's current value, converted to units if
// non-empty.
func (e *Engine) GetStream(name string, units string) (quantity.Quantity, error) {
	key, err := e.requireScope()
	if err != nil {
		return quantity.Quantity{}, err
	}

	var value quantity.Quantity
	if name == "sales" {
		value = e.keeper.Sales(key)
	} else {
		streamName, err := e.resolveStream(name)
		if err != nil {
			return quantity.Quantity{}, err
		}
		value = e.keeper.Get(key, streamName)
	}

	if units == "" {
		return value, nil
	}
	return e.converter.Convert(value, units, e.state(key))
}

// IncrementYear advances priorEquipment<-equipment, clears recalculable
// streams, and moves the year counter forward.
func (e *Engine) IncrementYear() error {
	for _, key := range e.keeper.Keys() {
		e.keeper.AdvanceYear(key)
	}
	e.year++
	return nil
}

// DefineVariable declares a variable in the current stanza's scope,
// initializing it to zero if not already present.
func (e *Engine) DefineVariable(name string) error {
	stanza := e.variableScope()
	if _, ok := stanza[name]; !ok {
		stanza[name] = quantity.Quantity{}
	}
	return nil
}

// SetVariable writes a variable in the current stanza's scope.
func (e *Engine) SetVariable(name string, value quantity.Quantity) error {
	e.variableScope()[name] = value
	return nil
}

// GetVariable reads a variable from the current stanza's scope, returning a
// zero Quantity if it was never defined.
func (e *Engine) GetVariable(name string) (quantity.Quantity, error) {
	return e.variableScope()[name], nil
}

func (e *Engine) variableScope() map[string]quantity.Quantity {
	stanza, ok := e.variables[e.scope.Stanza]
	if !ok {
		stanza = map[string]quantity.Quantity{}
		e.variables[e.scope.Stanza] = stanza
	}
	return stanza
}
