package engine

import (
	"github.com/example/kigalisim/internal/decimalx"
	"github.com/example/kigalisim/internal/quantity"
	"github.com/example/kigalisim/internal/streams"
)

// TradeSupplement carries import/export initial-charge attribution data a
// Serializer snapshot needs to reconcile trade flows against population
// changes.
type TradeSupplement struct {
	ImportInitialChargeValue       quantity.Quantity
	ImportInitialChargeConsumption quantity.Quantity
	ExportInitialChargeValue       quantity.Quantity
	ExportInitialChargeConsumption quantity.Quantity
}

// EngineResult is one (scenario, trial, year, application, substance)
// snapshot.
type EngineResult struct {
	Scenario    string
	Trial       int
	Year        int
	Application string
	Substance   string

	Manufacture         quantity.Quantity
	Import              quantity.Quantity
	Recycle             quantity.Quantity
	DomesticConsumption quantity.Quantity
	ImportConsumption   quantity.Quantity
	RecycleConsumption  quantity.Quantity
	Export              quantity.Quantity
	ExportConsumption   quantity.Quantity
	Population          quantity.Quantity
	PopulationNew       quantity.Quantity
	RechargeEmissions   quantity.Quantity
	EolEmissions        quantity.Quantity
	EnergyConsumption   quantity.Quantity

	Trade TradeSupplement
}

// GetResults produces one EngineResult per (application, substance) with
// any enabled stream, for the current year.
func (e *Engine) GetResults() []EngineResult {
	var results []EngineResult
	for _, key := range e.keeper.Keys() {
		if !e.keeper.AnyEnabled(key) {
			continue
		}
		results = append(results, e.serialize(key))
	}
	return results
}

func (e *Engine) serialize(key streams.UseKey) EngineResult {
	cfg := e.keeper.Config(key)
	ghgIntensity := cfg.GhgIntensity.Value

	manufactureKg := e.keeper.Get(key, streams.Manufacture).Value
	importKg := e.keeper.Get(key, streams.Import).Value
	recycleKg := e.keeper.Get(key, streams.Recycle).Value
	exportKg := e.keeper.Get(key, streams.Export).Value
	totalConsumption := e.keeper.Get(key, streams.Consumption).Value

	domestic, imported, recycled := splitConsumption(totalConsumption, manufactureKg, importKg, recycleKg, ghgIntensity)
	exportConsumption := decimalx.ClampNonNegative(exportKg.Mul(ghgIntensity))

	newEquipment := e.keeper.Get(key, streams.NewEquipment).Value
	importCharge := e.keeper.InitialCharge(key, streams.ChannelImport).Value
	importInitialChargeKg := newEquipment.Mul(importCharge)

	return EngineResult{
		Scenario:            e.scenario,
		Trial:               e.trial,
		Year:                e.year,
		Application:         key.Application,
		Substance:           key.Substance,
		Manufacture:         quantity.New(manufactureKg, "kg"),
		Import:              quantity.New(importKg, "kg"),
		Recycle:             quantity.New(recycleKg, "kg"),
		DomesticConsumption: quantity.New(domestic, "tCO2e"),
		ImportConsumption:   quantity.New(imported, "tCO2e"),
		RecycleConsumption:  quantity.New(recycled, "tCO2e"),
		Export:              quantity.New(exportKg, "kg"),
		ExportConsumption:   quantity.New(exportConsumption, "tCO2e"),
		Population:          e.keeper.Get(key, streams.Equipment),
		PopulationNew:       e.keeper.Get(key, streams.NewEquipment),
		RechargeEmissions:   e.keeper.Get(key, streams.RechargeEmissions),
		EolEmissions:        e.keeper.Get(key, streams.EolEmissions),
		EnergyConsumption:   e.keeper.Get(key, streams.Energy),
		Trade: TradeSupplement{
			ImportInitialChargeValue:       quantity.New(importInitialChargeKg, "kg"),
			ImportInitialChargeConsumption: quantity.New(decimalx.ClampNonNegative(importInitialChargeKg.Mul(ghgIntensity)), "tCO2e"),
			ExportInitialChargeValue:       quantity.New(exportKg, "kg"),
			ExportInitialChargeConsumption: quantity.New(exportConsumption, "tCO2e"),
		},
	}
}

// splitConsumption allocates totalConsumption across domestic, import, and
// recycle lines so the three sum back to the total: recycleConsumption is
// computed directly from the recycled volume, then offset proportionally
// out of the domestic/import shares.
func splitConsumption(total, manufactureKg, importKg, recycleKg, ghgIntensity decimalx.D) (domestic, imported, recycled decimalx.D) {
	recycled = decimalx.ClampNonNegative(recycleKg.Mul(ghgIntensity))
	if recycled.Cmp(total) > 0 {
		recycled = total
	}

	salesKg := manufactureKg.Add(importKg)
	var domesticShare, importShare decimalx.D
	if salesKg.IsZero() {
		domesticShare, importShare = decimalx.FromInt(1), decimalx.Zero
	} else {
		domesticShare = decimalx.DivOrZero(manufactureKg, salesKg)
		importShare = decimalx.DivOrZero(importKg, salesKg)
	}

	domesticRaw := total.Mul(domesticShare)
	importRaw := total.Mul(importShare)

	domestic = decimalx.ClampNonNegative(domesticRaw.Sub(recycled.Mul(domesticShare)))
	imported = decimalx.ClampNonNegative(importRaw.Sub(recycled.Mul(importShare)))
	return domestic, imported, recycled
}
