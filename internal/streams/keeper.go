// Package streams implements the Stream Keeper: the
// per-(application, substance) store of named stream values and the
// configuration the recalculation graph and unit converter read from.
package streams

import (
	"sort"
	"sync"

	"github.com/example/kigalisim/internal/convert"
	"github.com/example/kigalisim/internal/decimalx"
	"github.com/example/kigalisim/internal/quantity"
)

// Name identifies a stream.
type Name string

const (
	Manufacture         Name = "manufacture"
	Import              Name = "import"
	Export              Name = "export"
	Recycle             Name = "recycle"
	Equipment           Name = "equipment"
	PriorEquipment      Name = "priorEquipment"
	NewEquipment        Name = "newEquipment"
	Consumption         Name = "consumption"
	DomesticConsumption Name = "domesticConsumption"
	ImportConsumption   Name = "importConsumption"
	RecycleConsumption  Name = "recycleConsumption"
	ExportConsumption   Name = "exportConsumption"
	Energy              Name = "energy"
	RechargeEmissions   Name = "rechargeEmissions"
	EolEmissions        Name = "eolEmissions"
)

// CanonicalUnits maps each stream to the unit it is always stored in.
// setStream/changeStream convert the caller's value into this unit before
// writing.
var CanonicalUnits = map[Name]string{
	Manufacture:         "kg",
	Import:              "kg",
	Export:              "kg",
	Recycle:             "kg",
	Equipment:           "units",
	PriorEquipment:      "units",
	NewEquipment:        "units",
	Consumption:         "tCO2e",
	DomesticConsumption: "tCO2e",
	ImportConsumption:   "tCO2e",
	RecycleConsumption:  "tCO2e",
	ExportConsumption:   "tCO2e",
	Energy:              "kwh",
	RechargeEmissions:   "tCO2e",
	EolEmissions:        "tCO2e",
}

// Channel identifies a sales channel that carries its own initial charge.
type Channel string

const (
	ChannelManufacture Channel = "manufacture"
	ChannelImport      Channel = "import"
	ChannelSales       Channel = "sales"
)

// UseKey addresses a (application, substance) row in the Stream Keeper.
type UseKey struct {
	Application string
	Substance   string
}

// Config holds the per-UseKey configuration items the recalc graph and
// converter consult.
type Config struct {
	RechargePopulation quantity.Quantity // fraction of prior equipment serviced each year, %
	RechargeIntensity  quantity.Quantity // kg refrigerant per serviced unit, kg/unit

	RetirementRate quantity.Quantity // fraction of prior equipment retired per year, %

	RecoveryRate     quantity.Quantity // fraction or volume recovered at retirement
	YieldRate        quantity.Quantity // fraction of recovered that is reusable, %
	DisplacementRate quantity.Quantity // percent of recycled that displaces virgin supply

	InitialCharge map[Channel]quantity.Quantity // kg per new unit, by channel

	GhgIntensity    quantity.Quantity // tCO2e/kg or tCO2e/unit
	EnergyIntensity quantity.Quantity // kwh/kg or kwh/unit
}

func newConfig() Config {
	return Config{
		RechargePopulation: quantity.Zero("%"),
		RechargeIntensity:  quantity.Zero("kg/unit"),
		RetirementRate:     quantity.Zero("%"),
		RecoveryRate:       quantity.Zero("%"),
		YieldRate:          quantity.Zero("%"),
		DisplacementRate:   quantity.New(decimalx.Hundred, "%"),
		InitialCharge:      map[Channel]quantity.Quantity{},
		GhgIntensity:       quantity.Zero("tCO2e/kg"),
		EnergyIntensity:    quantity.Zero("kwh/kg"),
	}
}

// row is one UseKey's mutable state: stream values, enabled flags, and
// configuration.
type row struct {
	values       map[Name]quantity.Quantity
	enabled      map[Name]bool
	config       Config
	retiredUnits decimalx.D
}

func newRow() *row {
	return &row{
		values:  map[Name]quantity.Quantity{},
		enabled: map[Name]bool{},
		config:  newConfig(),
	}
}

// Keeper is the Stream Keeper: the exclusive owner of all per-UseKey stream
// values and configuration for a single Engine instance.
type Keeper struct {
	mu   sync.Mutex
	rows map[UseKey]*row
}

// NewKeeper constructs an empty Stream Keeper.
func NewKeeper() *Keeper {
	return &Keeper{rows: map[UseKey]*row{}}
}

func (k *Keeper) rowFor(key UseKey) *row {
	k.mu.Lock()
	defer k.mu.Unlock()
	r, ok := k.rows[key]
	if !ok {
		r = newRow()
		k.rows[key] = r
	}
	return r
}

// Keys returns every UseKey the keeper has ever seen, sorted for
// deterministic iteration (application, then substance).
func (k *Keeper) Keys() []UseKey {
	k.mu.Lock()
	defer k.mu.Unlock()

	keys := make([]UseKey, 0, len(k.rows))
	for key := range k.rows {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Application != keys[j].Application {
			return keys[i].Application < keys[j].Application
		}
		return keys[i].Substance < keys[j].Substance
	})
	return keys
}

// Get returns the current value of a stream, defaulting to zero in the
// stream's canonical unit if it has never been written.
func (k *Keeper) Get(key UseKey, name Name) quantity.Quantity {
	r := k.rowFor(key)
	if v, ok := r.values[name]; ok {
		return v
	}
	return quantity.Zero(CanonicalUnits[name])
}

// Set writes a stream's value (already expected in its canonical unit) and
// marks it enabled.
func (k *Keeper) Set(key UseKey, name Name, value quantity.Quantity) {
	r := k.rowFor(key)
	r.values[name] = value
	r.enabled[name] = true
}

// Enable flips a stream's enabled flag without writing a value.
func (k *Keeper) Enable(key UseKey, name Name) {
	r := k.rowFor(key)
	r.enabled[name] = true
}

// IsEnabled reports whether a stream has been set or explicitly enabled.
func (k *Keeper) IsEnabled(key UseKey, name Name) bool {
	r := k.rowFor(key)
	return r.enabled[name]
}

// AnyEnabled reports whether any stream is enabled for the given key, used
// by the Serializer to decide whether a (app, sub) row produces output.
func (k *Keeper) AnyEnabled(key UseKey) bool {
	r := k.rowFor(key)
	for _, enabled := range r.enabled {
		if enabled {
			return true
		}
	}
	return false
}

// Sales returns the derived, read-only manufacture+import aggregate.
func (k *Keeper) Sales(key UseKey) quantity.Quantity {
	m := k.Get(key, Manufacture)
	i := k.Get(key, Import)
	return quantity.New(m.Value.Add(i.Value), "kg")
}

// Config returns a copy of the configuration for key.
func (k *Keeper) Config(key UseKey) Config {
	r := k.rowFor(key)
	return r.config
}

// SetRecharge writes rechargePopulation and rechargeIntensity together.
func (k *Keeper) SetRecharge(key UseKey, population, intensity quantity.Quantity) {
	r := k.rowFor(key)
	r.config.RechargePopulation = population
	r.config.RechargeIntensity = intensity
}

// SetRetirementRate writes the retirement rate.
func (k *Keeper) SetRetirementRate(key UseKey, rate quantity.Quantity) {
	r := k.rowFor(key)
	r.config.RetirementRate = rate
}

// SetRecovery writes recoveryRate, yieldRate, and displacementRate together.
func (k *Keeper) SetRecovery(key UseKey, recoveryRate, yieldRate, displacementRate quantity.Quantity) {
	r := k.rowFor(key)
	r.config.RecoveryRate = recoveryRate
	r.config.YieldRate = yieldRate
	r.config.DisplacementRate = displacementRate
}

// SetInitialCharge writes the initial charge for a sales channel.
func (k *Keeper) SetInitialCharge(key UseKey, channel Channel, value quantity.Quantity) {
	r := k.rowFor(key)
	r.config.InitialCharge[channel] = value
}

// InitialCharge returns the initial charge configured for a channel,
// defaulting to zero kg/unit if never set.
func (k *Keeper) InitialCharge(key UseKey, channel Channel) quantity.Quantity {
	r := k.rowFor(key)
	if v, ok := r.config.InitialCharge[channel]; ok {
		return v
	}
	return quantity.Zero("kg/unit")
}

// SetGhgIntensity writes the substance's GHG intensity.
func (k *Keeper) SetGhgIntensity(key UseKey, value quantity.Quantity) {
	r := k.rowFor(key)
	r.config.GhgIntensity = value
}

// SetEnergyIntensity writes the substance's energy intensity.
func (k *Keeper) SetEnergyIntensity(key UseKey, value quantity.Quantity) {
	r := k.rowFor(key)
	r.config.EnergyIntensity = value
}

// SetRetiredUnits records how many units RetireRecalc retired this year, so
// EolEmissionsRecalc can use the figure regardless of which command chain
// (`retire`, `equals`, `recharge`, ...) triggered it.
func (k *Keeper) SetRetiredUnits(key UseKey, units decimalx.D) {
	r := k.rowFor(key)
	r.retiredUnits = units
}

// RetiredUnits returns the units the most recent RetireRecalc this year
// retired (each run overwrites, not adds to, the figure), zero if `retire`
// has not run yet this year.
func (k *Keeper) RetiredUnits(key UseKey) decimalx.D {
	r := k.rowFor(key)
	return r.retiredUnits
}

// AdvanceYear moves equipment to priorEquipment and clears the streams the
// recalc graph recomputes every year, per incrementYear's contract.
func (k *Keeper) AdvanceYear(key UseKey) {
	r := k.rowFor(key)
	r.values[PriorEquipment] = r.values[Equipment]
	r.retiredUnits = decimalx.Zero
	for _, name := range []Name{
		NewEquipment, Consumption, DomesticConsumption, ImportConsumption,
		RecycleConsumption, ExportConsumption, Energy, RechargeEmissions, EolEmissions,
	} {
		delete(r.values, name)
	}
}

// StateFor builds a convert.StateGetter reflecting the keeper's current
// state for key, for use by the converter and recalc strategies.
// yearsElapsed is supplied by the engine, which alone tracks simulation
// time; the keeper itself has no notion of "year".
func (k *Keeper) StateFor(key UseKey, yearsElapsed decimalx.D) convert.Base {
	r := k.rowFor(key)

	totalGhg := r.values[Consumption].Value
	if totalGhg.IsZero() {
		totalGhg = r.values[DomesticConsumption].Value.
			Add(r.values[ImportConsumption].Value).
			Add(r.values[RecycleConsumption].Value).
			Add(r.values[ExportConsumption].Value)
	}

	amortized := r.config.InitialCharge[ChannelSales]
	if amortized.Units == "" {
		amortized = quantity.Zero("kg/unit")
	}

	return convert.Base{
		PopulationValue:             k.Get(key, Equipment).Value,
		VolumeValue:                 k.Sales(key).Value,
		AmortizedUnitVolumeValue:    amortized.Value,
		GhgIntensityValue:           r.config.GhgIntensity.Value,
		EnergyIntensityValue:        r.config.EnergyIntensity.Value,
		TotalGhgConsumptionValue:    totalGhg,
		TotalEnergyConsumptionValue: r.values[Energy].Value,
		YearsElapsedValue:           yearsElapsed,
	}
}
