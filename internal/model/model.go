// Package model defines the input data for the capacity expansion model:
// sites, commodities, conversion processes, transmission links, storage
// units and demand-side management, plus the hourly time series that
// drive them.
package model

// ComType classifies how a commodity participates in the energy balance.
type ComType string

const (
	// Stock commodities can be taken from an (infinite or limited)
	// source at a fixed price, e.g. natural gas.
	ComStock ComType = "Stock"
	// SupIm commodities are supplied intermittently according to a
	// capacity factor time series, e.g. solar irradiation.
	ComSupIm ComType = "SupIm"
	// Demand commodities must be satisfied in every timestep.
	ComDemand ComType = "Demand"
	// Env commodities are emitted by processes and may carry a price
	// and an annual cap, e.g. CO2.
	ComEnv ComType = "Env"
	// Buy commodities can be purchased at a (possibly time-varying) price.
	ComBuy ComType = "Buy"
	// Sell commodities can be sold at a (possibly time-varying) price.
	ComSell ComType = "Sell"
)

// Direction marks a process-commodity relation as consumption or production.
type Direction string

const (
	In  Direction = "In"
	Out Direction = "Out"
)

// Site is a location at which commodities are balanced.
// Area limits the total footprint of processes built there; a negative
// value means unlimited.
type Site struct {
	Name string
	Area float64 // m2, < 0: unlimited
}

// Commodity describes one commodity at one site.
// Units:
// - Price: EUR/MWh (Stock, Env) or a buy/sell price expression
// - Max: MWh/a total limit (Stock, Buy, Sell) or kg/a (Env)
// - MaxPerStep: MW per-timestep limit
type Commodity struct {
	Site       string
	Name       string
	Type       ComType
	Price      Price
	Max        float64 // +Inf: unlimited
	MaxPerStep float64 // +Inf: unlimited
}

// Process is a conversion technology at a site. Its input/output
// commodities and ratios are listed separately in ProcCom entries.
// Units:
// - capacities: MW
// - MaxGrad: fraction of capacity per hour; >= 1/dt disables the limit
// - MinFraction: minimal online fraction for partial-load operation
// - costs: EUR/MW (invest), EUR/MW/a (fixed), EUR/MWh (variable, startup)
// - AreaPerCap: m2/MW; < 0: no area usage
type Process struct {
	Site         string
	Name         string
	InstCap      float64
	CapLo        float64
	CapUp        float64
	MaxGrad      float64
	MinFraction  float64
	InvCost      float64
	FixCost      float64
	VarCost      float64
	StartupCost  float64
	WACC         float64
	Depreciation float64 // years
	AreaPerCap   float64
}

// ProcCom is one input or output commodity of a process with its ratio
// relative to process throughput. RatioMin is the input ratio at the
// minimal operation point; > 0 enables partial-load modelling.
type ProcCom struct {
	Process   string
	Commodity string
	Direction Direction
	Ratio     float64
	RatioMin  float64
}

// Transmission is a directed link for one commodity between two sites.
// Capacity expansion is symmetric: the reverse link must exist, too.
type Transmission struct {
	SiteIn       string
	SiteOut      string
	Name         string
	Commodity    string
	Eff          float64 // (0, 1]
	InstCap      float64 // MW
	CapLo        float64
	CapUp        float64
	InvCost      float64 // EUR/MW
	FixCost      float64 // EUR/MW/a
	VarCost      float64 // EUR/MWh
	WACC         float64
	Depreciation float64
}

// Storage stores one commodity at one site. Power (MW) and energy
// capacity (MWh) are expanded independently.
// Init is the fraction of the energy capacity that the storage holds
// in the first timestep and must at least hold again in the last.
type Storage struct {
	Site         string
	Name         string
	Commodity    string
	EffIn        float64 // (0, 1]
	EffOut       float64 // (0, 1]
	InstCapC     float64 // MWh
	CapLoC       float64
	CapUpC       float64
	InstCapP     float64 // MW
	CapLoP       float64
	CapUpP       float64
	InvCostC     float64 // EUR/MWh
	FixCostC     float64 // EUR/MWh/a
	VarCostC     float64 // EUR/MWh
	InvCostP     float64 // EUR/MW
	FixCostP     float64 // EUR/MW/a
	VarCostP     float64 // EUR/MWh
	WACC         float64
	Depreciation float64
	Init         float64 // [0, 1]
}

// DSM enables load shifting for one (site, commodity) pair.
// Upshifted demand must be compensated by downshifts within +-Delay
// timesteps.
type DSM struct {
	Site      string
	Commodity string
	Delay     int     // timesteps
	Eff       float64 // (0, 1]
	CapMaxUp  float64 // MW
	CapMaxDo  float64 // MW
	Recovery  int     // timesteps between full upshift uses
}

// SiteCom identifies a commodity at a site; used as time series key.
type SiteCom struct {
	Site string
	Com  string
}

// Input bundles all model input tables and time series.
// Demand and SupIm are indexed by timestep 0..T where index 0 is the
// storage initialisation step; modelled steps are 1..T.
type Input struct {
	Sites        []Site
	Commodities  []Commodity
	Processes    []Process
	ProcCom      []ProcCom
	Transmission []Transmission
	Storage      []Storage
	DSM          []DSM

	Demand       map[SiteCom][]float64 // MW
	SupIm        map[SiteCom][]float64 // capacity factor [0, 1]
	BuySellPrice map[string][]float64  // EUR/MWh by price series name

	// Global holds model-wide limits by name, e.g. "CO2 limit" (kg/a).
	Global map[string]float64
}

// Timesteps returns the number of timesteps including the
// initialisation step, derived from the demand series.
func (in *Input) Timesteps() int {
	for _, series := range in.Demand {
		return len(series)
	}
	return 0
}

// CommoditiesOfType returns the unique commodity names of the given type.
func (in *Input) CommoditiesOfType(t ComType) []string {
	seen := map[string]bool{}
	var names []string
	for _, c := range in.Commodities {
		if c.Type == t && !seen[c.Name] {
			seen[c.Name] = true
			names = append(names, c.Name)
		}
	}
	return names
}

// FindCommodity returns the commodity entry for (site, name, type), or nil.
func (in *Input) FindCommodity(site, name string, t ComType) *Commodity {
	for i := range in.Commodities {
		c := &in.Commodities[i]
		if c.Site == site && c.Name == name && c.Type == t {
			return c
		}
	}
	return nil
}

// ProcessInputs returns the input relations of the named process.
func (in *Input) ProcessInputs(process string) []ProcCom {
	return in.procComDir(process, In)
}

// ProcessOutputs returns the output relations of the named process.
func (in *Input) ProcessOutputs(process string) []ProcCom {
	return in.procComDir(process, Out)
}

func (in *Input) procComDir(process string, dir Direction) []ProcCom {
	var out []ProcCom
	for _, pc := range in.ProcCom {
		if pc.Process == process && pc.Direction == dir {
			out = append(out, pc)
		}
	}
	return out
}

// Clone returns a deep copy so that scenarios can mutate inputs freely.
func (in *Input) Clone() *Input {
	out := &Input{
		Sites:        append([]Site(nil), in.Sites...),
		Commodities:  append([]Commodity(nil), in.Commodities...),
		Processes:    append([]Process(nil), in.Processes...),
		ProcCom:      append([]ProcCom(nil), in.ProcCom...),
		Transmission: append([]Transmission(nil), in.Transmission...),
		Storage:      append([]Storage(nil), in.Storage...),
		DSM:          append([]DSM(nil), in.DSM...),
		Demand:       cloneSeriesMap(in.Demand),
		SupIm:        cloneSeriesMap(in.SupIm),
		BuySellPrice: make(map[string][]float64, len(in.BuySellPrice)),
		Global:       make(map[string]float64, len(in.Global)),
	}
	for k, v := range in.BuySellPrice {
		out.BuySellPrice[k] = append([]float64(nil), v...)
	}
	for k, v := range in.Global {
		out.Global[k] = v
	}
	return out
}

func cloneSeriesMap(m map[SiteCom][]float64) map[SiteCom][]float64 {
	out := make(map[SiteCom][]float64, len(m))
	for k, v := range m {
		out[k] = append([]float64(nil), v...)
	}
	return out
}
