package recalc

import (
	"github.com/example/kigalisim/internal/decimalx"
	"github.com/example/kigalisim/internal/quantity"
	"github.com/example/kigalisim/internal/streams"
)

// Kind is the tagged-variant discriminant for a recalculation strategy.
// Strategies are a closed, finite set, so a Kind constant plus a single
// exec function per kind stands in for what the source models as a class
// hierarchy.
type Kind int

const (
	PopulationChange Kind = iota
	Sales
	Consumption
	RechargeEmissions
	EolEmissions
	Retire
)

func (k Kind) String() string {
	switch k {
	case PopulationChange:
		return "populationChange"
	case Sales:
		return "sales"
	case Consumption:
		return "consumption"
	case RechargeEmissions:
		return "rechargeEmissions"
	case EolEmissions:
		return "eolEmissions"
	case Retire:
		return "retire"
	default:
		return "unknown"
	}
}

// Step is one entry in an Operation: a strategy kind plus the flags that
// vary its behavior (currently only PopulationChange's subtractRecharge).
type Step struct {
	Kind             Kind
	SubtractRecharge bool
}

func (s Step) execute(kit *Kit, key streams.UseKey, yearsElapsed decimalx.D) error {
	switch s.Kind {
	case PopulationChange:
		return execPopulationChange(kit, key, yearsElapsed, s.SubtractRecharge)
	case Sales:
		return execSales(kit, key, yearsElapsed)
	case Consumption:
		return execConsumption(kit, key, yearsElapsed)
	case RechargeEmissions:
		return execRechargeEmissions(kit, key, yearsElapsed)
	case EolEmissions:
		return execEolEmissions(kit, key, yearsElapsed)
	case Retire:
		return execRetire(kit, key, yearsElapsed)
	default:
		return nil
	}
}

// execPopulationChange implements PopulationChangeRecalc.
func execPopulationChange(kit *Kit, key streams.UseKey, yearsElapsed decimalx.D, subtractRecharge bool) error {
	priorPopulation := kit.Keeper.Get(key, streams.PriorEquipment).Value
	salesKg := kit.Keeper.Sales(key).Value

	rechargeKg := decimalx.Zero
	if subtractRecharge {
		var err error
		rechargeKg, err = rechargeVolumeKg(kit, key, yearsElapsed)
		if err != nil {
			return err
		}
	}

	availableForNewKg := decimalx.ClampNonNegative(salesKg.Sub(rechargeKg))

	initCharge := kit.Keeper.InitialCharge(key, streams.ChannelSales)
	var deltaUnits decimalx.D
	if initCharge.Value.IsZero() {
		deltaUnits = decimalx.Zero
	} else {
		deltaUnits = availableForNewKg.Div(initCharge.Value)
	}

	newEquipment := decimalx.ClampNonNegative(deltaUnits)
	equipment := decimalx.ClampNonNegative(priorPopulation.Add(deltaUnits))

	kit.Keeper.Set(key, streams.Equipment, quantity.New(equipment, "units"))
	kit.Keeper.Set(key, streams.NewEquipment, quantity.New(newEquipment, "units"))
	return nil
}

// execSales implements SalesRecalc.
func execSales(kit *Kit, key streams.UseKey, yearsElapsed decimalx.D) error {
	cfg := kit.Keeper.Config(key)

	rechargeKg, err := rechargeVolumeKg(kit, key, yearsElapsed)
	if err != nil {
		return err
	}

	state := kit.State(key, yearsElapsed)
	recoveryKg, err := applyRate(kit.Converter, state, cfg.RecoveryRate, rechargeKg, "kg")
	if err != nil {
		return err
	}
	recycledKg, err := applyRate(kit.Converter, state, cfg.YieldRate, recoveryKg, "kg")
	if err != nil {
		return err
	}
	displacementFraction := decimalx.DivOrZero(cfg.DisplacementRate.Value, decimalx.Hundred)
	recycledDisplaced := recycledKg.Mul(displacementFraction)

	newEquipment := kit.Keeper.Get(key, streams.NewEquipment).Value
	initCharge := kit.Keeper.InitialCharge(key, streams.ChannelSales)
	kgForNew := newEquipment.Mul(initCharge.Value)

	requiredKg := decimalx.ClampNonNegative(rechargeKg.Add(kgForNew).Sub(recycledDisplaced))

	pctManufacture, pctImport := salesDistribution(kit.Keeper, key)

	// propagate=false: these writes do not themselves re-run recalculation
	//; the caller's Operation chains Consumption explicitly.
	kit.Keeper.Set(key, streams.Recycle, quantity.New(recycledDisplaced, "kg"))
	kit.Keeper.Set(key, streams.Manufacture, quantity.New(requiredKg.Mul(pctManufacture), "kg"))
	kit.Keeper.Set(key, streams.Import, quantity.New(requiredKg.Mul(pctImport), "kg"))
	return nil
}

// salesDistribution implements the Sales Distribution algorithm.
func salesDistribution(keeper *streams.Keeper, key streams.UseKey) (pctManufacture, pctImport decimalx.D) {
	mPrior := keeper.Get(key, streams.Manufacture).Value
	iPrior := keeper.Get(key, streams.Import).Value
	mEnabled := keeper.IsEnabled(key, streams.Manufacture)
	iEnabled := keeper.IsEnabled(key, streams.Import)

	switch {
	case !mPrior.IsZero() && !iPrior.IsZero():
		sum := mPrior.Add(iPrior)
		pctManufacture = decimalx.DivOrZero(mPrior, sum)
		pctImport = decimalx.DivOrZero(iPrior, sum)
	case !mPrior.IsZero():
		pctManufacture, pctImport = decimalx.FromInt(1), decimalx.Zero
	case !iPrior.IsZero():
		pctManufacture, pctImport = decimalx.Zero, decimalx.FromInt(1)
	default:
		cfg := keeper.Config(key)
		mCharge := cfg.InitialCharge[streams.ChannelManufacture].Value
		iCharge := cfg.InitialCharge[streams.ChannelImport].Value
		sum := mCharge.Add(iCharge)
		if sum.IsZero() {
			pctManufacture, pctImport = decimalx.FromInt(1), decimalx.Zero
		} else {
			pctManufacture = decimalx.DivOrZero(mCharge, sum)
			pctImport = decimalx.DivOrZero(iCharge, sum)
		}
	}

	if !mEnabled {
		pctManufacture = decimalx.Zero
	}
	if !iEnabled {
		pctImport = decimalx.Zero
	}

	total := pctManufacture.Add(pctImport)
	switch {
	case total.IsZero():
		switch {
		case mEnabled:
			pctManufacture = decimalx.FromInt(1)
		case iEnabled:
			pctImport = decimalx.FromInt(1)
		default:
			pctManufacture = decimalx.FromInt(1)
		}
	case !decimalx.Equal(total, decimalx.FromInt(1)):
		pctManufacture = decimalx.DivOrZero(pctManufacture, total)
		pctImport = decimalx.DivOrZero(pctImport, total)
	}
	return pctManufacture, pctImport
}

// execConsumption implements ConsumptionRecalc.
func execConsumption(kit *Kit, key streams.UseKey, yearsElapsed decimalx.D) error {
	salesKg := kit.Keeper.Sales(key).Value
	state := kit.State(key, yearsElapsed)

	ghg, err := kit.Converter.Convert(quantity.New(salesKg, "kg"), "tCO2e", state)
	if err != nil {
		return err
	}
	energy, err := kit.Converter.Convert(quantity.New(salesKg, "kg"), "kwh", state)
	if err != nil {
		return err
	}

	kit.Keeper.Set(key, streams.Consumption, quantity.New(decimalx.ClampNonNegative(ghg.Value), "tCO2e"))
	kit.Keeper.Set(key, streams.Energy, quantity.New(decimalx.ClampNonNegative(energy.Value), "kwh"))
	return nil
}

// execRechargeEmissions implements RechargeEmissionsRecalc.
func execRechargeEmissions(kit *Kit, key streams.UseKey, yearsElapsed decimalx.D) error {
	rechargeKg, err := rechargeVolumeKg(kit, key, yearsElapsed)
	if err != nil {
		return err
	}
	state := kit.State(key, yearsElapsed)

	rechargeGhg, err := kit.Converter.Convert(quantity.New(rechargeKg, "kg"), "tCO2e", state)
	if err != nil {
		return err
	}

	recycleKg := kit.Keeper.Get(key, streams.Recycle).Value
	recycleGhg, err := kit.Converter.Convert(quantity.New(recycleKg, "kg"), "tCO2e", state)
	if err != nil {
		return err
	}

	result := decimalx.ClampNonNegative(rechargeGhg.Value.Sub(recycleGhg.Value))
	kit.Keeper.Set(key, streams.RechargeEmissions, quantity.New(result, "tCO2e"))
	return nil
}

// execEolEmissions implements EolEmissionsRecalc, reading the
// retired-unit count RetireRecalc recorded for this simulation year.
func execEolEmissions(kit *Kit, key streams.UseKey, yearsElapsed decimalx.D) error {
	retiredUnits := kit.Keeper.RetiredUnits(key)
	amortized := kit.Keeper.InitialCharge(key, streams.ChannelSales).Value
	kgEquivalent := retiredUnits.Mul(amortized)

	state := kit.State(key, yearsElapsed)
	ghg, err := kit.Converter.Convert(quantity.New(kgEquivalent, "kg"), "tCO2e", state)
	if err != nil {
		return err
	}

	kit.Keeper.Set(key, streams.EolEmissions, quantity.New(decimalx.ClampNonNegative(ghg.Value), "tCO2e"))
	return nil
}

// execRetire implements RetireRecalc.
func execRetire(kit *Kit, key streams.UseKey, yearsElapsed decimalx.D) error {
	cfg := kit.Keeper.Config(key)
	priorEquipment := kit.Keeper.Get(key, streams.PriorEquipment).Value
	state := kit.State(key, yearsElapsed)

	retiredUnits, err := applyRate(kit.Converter, state, cfg.RetirementRate, priorEquipment, "units")
	if err != nil {
		return err
	}
	retiredUnits = decimalx.ClampNonNegative(retiredUnits)
	retiredUnits = decimalx.Min(retiredUnits, priorEquipment)

	newPrior := decimalx.ClampNonNegative(priorEquipment.Sub(retiredUnits))
	equipment := decimalx.ClampNonNegative(kit.Keeper.Get(key, streams.Equipment).Value.Sub(retiredUnits))

	kit.Keeper.Set(key, streams.PriorEquipment, quantity.New(newPrior, "units"))
	kit.Keeper.Set(key, streams.Equipment, quantity.New(equipment, "units"))
	kit.Keeper.SetRetiredUnits(key, retiredUnits)
	return nil
}
