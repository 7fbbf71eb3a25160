// Package plan translates model inputs into a linear program. The
// decision variables cover capacity expansion (processes, transmission,
// storage) and hourly operation (process throughput, commodity
// sourcing, storage charging, demand shifting); the objective
// minimises total annualised system cost.
package plan

import (
	"energyplan/internal/lp"
	"energyplan/internal/model"
)

// CostType partitions the objective into reportable components.
type CostType string

const (
	CostInvest        CostType = "Invest"
	CostFixed         CostType = "Fixed"
	CostVariable      CostType = "Variable"
	CostFuel          CostType = "Fuel"
	CostRevenue       CostType = "Revenue"
	CostPurchase      CostType = "Purchase"
	CostStartup       CostType = "Startup"
	CostEnvironmental CostType = "Environmental"
)

// CostTypes lists all cost components in report order.
var CostTypes = []CostType{
	CostInvest, CostFixed, CostVariable, CostFuel,
	CostRevenue, CostPurchase, CostStartup, CostEnvironmental,
}

// Variable index keys. Timestep T is an index into the selected
// horizon (absolute position in the input series).

type SitePro struct{ Site, Pro string }

type SiteSto struct{ Site, Sto, Com string }

type TraKey struct{ SiteIn, SiteOut, Tra, Com string }

type TSC struct {
	T    int
	Site string
	Com  string
}

type TSP struct {
	T    int
	Site string
	Pro  string
}

type TSPC struct {
	T    int
	Site string
	Pro  string
	Com  string
}

type TTra struct {
	T int
	TraKey
}

type TSto struct {
	T int
	SiteSto
}

// TTSC keys a demand downshift in timestep TT compensating an upshift
// in timestep T.
type TTSC struct {
	T    int
	TT   int
	Site string
	Com  string
}

// Plan is the built linear program together with the variable index
// needed to interpret its solution.
type Plan struct {
	In     *model.Input
	Prob   *lp.Problem
	DT     float64 // timestep length in hours
	Weight float64 // scales per-step costs to a full year
	Steps  []int   // selected timesteps; Steps[0] initialises storage

	Cost map[CostType]int

	CoStock map[TSC]int
	CoSell  map[TSC]int
	CoBuy   map[TSC]int

	CapPro    map[SitePro]int
	CapProNew map[SitePro]int
	TauPro    map[TSP]int
	ProIn     map[TSPC]int
	ProOut    map[TSPC]int
	CapOnline map[TSP]int
	Startup   map[TSP]int

	CapTra    map[TraKey]int
	CapTraNew map[TraKey]int
	TraIn     map[TTra]int
	TraOut    map[TTra]int

	CapStoC    map[SiteSto]int
	CapStoCNew map[SiteSto]int
	CapStoP    map[SiteSto]int
	CapStoPNew map[SiteSto]int
	StoIn      map[TSto]int
	StoOut     map[TSto]int
	StoCon     map[TSto]int

	DSMUp   map[TSC]int
	DSMDown map[TTSC]int
}

// Modelled returns the modelled timesteps (all but the initialisation
// step).
func (p *Plan) Modelled() []int { return p.Steps[1:] }

// dsmWindow returns the timesteps within +-delay of t, clipped to the
// modelled horizon. Downshifts compensating an upshift in t must fall
// into this window.
func dsmWindow(t, delay int, modelled []int) []int {
	lo, hi := modelled[0], modelled[len(modelled)-1]
	var out []int
	for tt := t - delay; tt <= t+delay; tt++ {
		if tt >= lo && tt <= hi {
			out = append(out, tt)
		}
	}
	return out
}
