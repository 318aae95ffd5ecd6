// Package recalc implements the recalculation graph: the six
// RecalcStrategies, the RecalcKit they execute against, and the
// RecalcOperation/RecalcOperationBuilder that compose them into the chains
// the Engine runs after each user command.
package recalc

import (
	"github.com/example/kigalisim/internal/convert"
	"github.com/example/kigalisim/internal/decimalx"
	"github.com/example/kigalisim/internal/quantity"
	"github.com/example/kigalisim/internal/streams"
)

// Kit bundles the collaborators every strategy needs: the Stream Keeper,
// the Unit Converter, and (via State) the StateGetter for a given scope.
type Kit struct {
	Keeper    *streams.Keeper
	Converter *convert.Converter
}

// State builds the StateGetter for key at the given simulation years-elapsed
// value.
func (k *Kit) State(key streams.UseKey, yearsElapsed decimalx.D) convert.StateGetter {
	return k.Keeper.StateFor(key, yearsElapsed)
}

// applyRate interprets rate as either a percentage of base (when its units
// are "%") or an absolute quantity in baseUnits, converting through getter when an absolute amount
// needs a unit change.
func applyRate(conv *convert.Converter, getter convert.StateGetter, rate quantity.Quantity, base decimalx.D, baseUnits string) (decimalx.D, error) {
	if quantity.SameUnits(rate.Units, "%") {
		return base.Mul(rate.Value).Div(decimalx.Hundred), nil
	}
	converted, err := conv.Convert(rate, baseUnits, getter)
	if err != nil {
		return decimalx.Zero, err
	}
	return converted.Value, nil
}

// rechargeVolumeKg computes the kg of refrigerant consumed recharging the
// existing fleet this year, evaluating the intensity conversion with an
// overriding state that exposes the recharge population rather than the
// total population.
func rechargeVolumeKg(kit *Kit, key streams.UseKey, yearsElapsed decimalx.D) (decimalx.D, error) {
	cfg := kit.Keeper.Config(key)
	priorPopulation := kit.Keeper.Get(key, streams.PriorEquipment).Value

	fraction := decimalx.DivOrZero(cfg.RechargePopulation.Value, decimalx.Hundred)
	rechargePopUnits := priorPopulation.Mul(fraction)

	base := kit.State(key, yearsElapsed)
	overridden := convert.WithOverride(base, convert.Override{Population: &rechargePopUnits})

	intensity, err := kit.Converter.Convert(cfg.RechargeIntensity, "kg/unit", overridden)
	if err != nil {
		return decimalx.Zero, err
	}
	return rechargePopUnits.Mul(intensity.Value), nil
}
