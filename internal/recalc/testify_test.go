package recalc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/example/kigalisim/internal/decimalx"
	"github.com/example/kigalisim/internal/quantity"
	"github.com/example/kigalisim/internal/streams"
)

// A handful of assertions in this package use testify/require, matching the
// teacher's sparing-not-pervasive use of it outside table-driven suites.
func TestSalesChainPreservesManufactureImportRatioWithTestify(t *testing.T) {
	kit, key := newKit()
	kit.Keeper.SetInitialCharge(key, streams.ChannelSales, quantity.New(decimalx.FromInt(1), "kg/unit"))
	kit.Keeper.Set(key, streams.Manufacture, quantity.New(decimalx.FromInt(60000), "kg"))
	kit.Keeper.Set(key, streams.Import, quantity.New(decimalx.FromInt(40000), "kg"))
	kit.Keeper.Enable(key, streams.Manufacture)
	kit.Keeper.Enable(key, streams.Import)
	kit.Keeper.SetGhgIntensity(key, quantity.New(decimalx.FromFloat(0.005), "tCO2e/kg"))

	require.NoError(t, PopulationChangeChain(false).Run(kit, key, decimalx.FromInt(1)))
	require.NoError(t, SalesChain().Run(kit, key, decimalx.FromInt(1)))

	sales := kit.Keeper.Sales(key)
	require.True(t, decimalx.Equal(sales.Value, decimalx.FromInt(100000)), "expected sales=100000 kg, got %s", sales.Value)

	manufacture := kit.Keeper.Get(key, streams.Manufacture).Value
	require.True(t, decimalx.Equal(manufacture, decimalx.FromInt(60000)), "expected manufacture=60000 kg (60%% ratio preserved), got %s", manufacture)
}
