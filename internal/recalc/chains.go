package recalc

// The chain constructors below are the canonical Operations each Engine
// command runs. Centralizing them here, rather than
// letting the Engine assemble ad hoc step lists per call, keeps every
// command's cascade checkable by inspection: the `recharge`, `equals` and
// `retire` chains each recompute the emissions lines whose inputs that
// command changes (rechargeEmissions, and eolEmissions where retired units
// or GHG intensity change).

// PopulationChangeChain recomputes equipment from current sales, then
// chains to RechargeEmissions.
func PopulationChangeChain(subtractRecharge bool) Operation {
	op, err := NewBuilder().
		PrimaryWithOptions(PopulationChange, subtractRecharge).
		ThenPropagate(RechargeEmissions).
		Build()
	if err != nil {
		panic(err)
	}
	return op
}

// SalesChain recomputes manufacture/import/recycle, then chains to
// Consumption.
func SalesChain() Operation {
	op, err := NewBuilder().
		Primary(Sales).
		ThenPropagate(Consumption).
		Build()
	if err != nil {
		panic(err)
	}
	return op
}

// ConsumptionChain recomputes the consumption/energy streams only.
func ConsumptionChain() Operation {
	op, err := NewBuilder().Primary(Consumption).Build()
	if err != nil {
		panic(err)
	}
	return op
}

// RetireChain implements the `retire` command's cascade: retire units, then
// EOL emissions, population-change (with subtractRecharge=true), sales,
// consumption, and recharge emissions (retiring units shrinks the prior
// population that recharge is computed from).
func RetireChain() Operation {
	op, err := NewBuilder().
		Primary(Retire).
		ThenPropagate(EolEmissions).
		ThenPropagatePopulationChange(PopulationChange, true).
		ThenPropagate(Sales).
		ThenPropagate(Consumption).
		ThenPropagate(RechargeEmissions).
		Build()
	if err != nil {
		panic(err)
	}
	return op
}

// RechargeChain implements the `recharge` command's cascade. Writing a new
// recharge population/intensity changes the kg required for new equipment
// and the recharge-driven emissions lines, so population change, sales and
// consumption are recomputed and rechargeEmissions last. eolEmissions is not
// recomputed: recharge does not feed it.
func RechargeChain() Operation {
	op, err := NewBuilder().
		PrimaryWithOptions(PopulationChange, true).
		ThenPropagate(Sales).
		ThenPropagate(Consumption).
		ThenPropagate(RechargeEmissions).
		Build()
	if err != nil {
		panic(err)
	}
	return op
}

// RecoverChain implements the `recover` command: recompute sales (which
// folds in the new recovery/yield/displacement rates) then consumption.
func RecoverChain() Operation {
	return SalesChain()
}

// VolumeSetChain is the chain a direct `setStream`/`changeStream` on
// manufacture or import runs: population and consumption need to reflect
// the new sales figure, but Sales itself must not re-run (that would
// immediately overwrite the value the command just wrote).
func VolumeSetChain() Operation {
	op, err := NewBuilder().
		PrimaryWithOptions(PopulationChange, false).
		ThenPropagate(Consumption).
		ThenPropagate(RechargeEmissions).
		Build()
	if err != nil {
		panic(err)
	}
	return op
}

// EqualsChain implements the `equals` command: recompute consumption, then
// the recharge- and EOL-emissions lines that also depend on GHG intensity.
func EqualsChain() Operation {
	op, err := NewBuilder().
		Primary(Consumption).
		ThenPropagate(RechargeEmissions).
		ThenPropagate(EolEmissions).
		Build()
	if err != nil {
		panic(err)
	}
	return op
}
