// Package result turns a solved plan back into tables: total costs per
// cost type, capacity expansion per unit and hourly commodity balances
// per site. Results are plain data so they can be snapshotted to disk
// and reloaded for reporting without re-solving.
package result

import (
	"fmt"
	"sort"

	"energyplan/internal/lp"
	"energyplan/internal/model"
	"energyplan/internal/plan"
)

// ProcessCap is the capacity of one process after optimisation.
type ProcessCap struct {
	Site    string  `json:"site"`
	Process string  `json:"process"`
	Total   float64 `json:"total"` // MW
	New     float64 `json:"new"`   // MW
}

// TransmissionCap is the capacity of one transmission link.
type TransmissionCap struct {
	SiteIn       string  `json:"siteIn"`
	SiteOut      string  `json:"siteOut"`
	Transmission string  `json:"transmission"`
	Commodity    string  `json:"commodity"`
	Total        float64 `json:"total"` // MW
	New          float64 `json:"new"`   // MW
}

// StorageCap is the energy and power capacity of one storage unit.
type StorageCap struct {
	Site      string  `json:"site"`
	Storage   string  `json:"storage"`
	Commodity string  `json:"commodity"`
	TotalC    float64 `json:"totalC"` // MWh
	NewC      float64 `json:"newC"`   // MWh
	TotalP    float64 `json:"totalP"` // MW
	NewP      float64 `json:"newP"`   // MW
}

// Timeseries holds the hourly balance of one commodity at one site
// over the modelled horizon. Series are indexed 0..len(Steps)-1.
type Timeseries struct {
	Site string `json:"site"`
	Com  string `json:"com"`

	// Created and Consumed are keyed by process name.
	Created  map[string][]float64 `json:"created,omitempty"`
	Consumed map[string][]float64 `json:"consumed,omitempty"`

	Stock []float64 `json:"stock,omitempty"`
	Buy   []float64 `json:"buy,omitempty"`
	Sell  []float64 `json:"sell,omitempty"`

	Demand        []float64 `json:"demand,omitempty"`
	ShiftedDemand []float64 `json:"shiftedDemand,omitempty"`
	DSMUp         []float64 `json:"dsmUp,omitempty"`
	DSMDown       []float64 `json:"dsmDown,omitempty"`

	Imported []float64 `json:"imported,omitempty"`
	Exported []float64 `json:"exported,omitempty"`

	StorageLevel []float64 `json:"storageLevel,omitempty"`
	Charged      []float64 `json:"charged,omitempty"`
	Discharged   []float64 `json:"discharged,omitempty"`
}

// Result is the complete outcome of one scenario run.
type Result struct {
	Scenario  string  `json:"scenario"`
	Solver    string  `json:"solver"`
	Objective float64 `json:"objective"` // EUR/a

	DT     float64 `json:"dt"`     // h
	Weight float64 `json:"weight"` // annualisation factor
	Steps  []int   `json:"steps"`  // modelled timesteps

	Costs map[plan.CostType]float64 `json:"costs"` // EUR/a

	ProcessCaps      []ProcessCap      `json:"processCaps"`
	TransmissionCaps []TransmissionCap `json:"transmissionCaps"`
	StorageCaps      []StorageCap      `json:"storageCaps"`

	Timeseries []Timeseries `json:"timeseries"`
}

// Extract reads all reportable quantities out of a solution.
func Extract(p *plan.Plan, sol *lp.Solution) *Result {
	in := p.In
	tm := p.Modelled()

	r := &Result{
		Objective: sol.Objective,
		DT:        p.DT,
		Weight:    p.Weight,
		Steps:     append([]int(nil), tm...),
		Costs:     make(map[plan.CostType]float64, len(plan.CostTypes)),
	}
	for _, ct := range plan.CostTypes {
		r.Costs[ct] = sol.Value(p.Cost[ct])
	}

	for _, pro := range in.Processes {
		key := plan.SitePro{Site: pro.Site, Pro: pro.Name}
		r.ProcessCaps = append(r.ProcessCaps, ProcessCap{
			Site:    pro.Site,
			Process: pro.Name,
			Total:   sol.Value(p.CapPro[key]),
			New:     sol.Value(p.CapProNew[key]),
		})
	}
	for _, tr := range in.Transmission {
		key := plan.TraKey{SiteIn: tr.SiteIn, SiteOut: tr.SiteOut, Tra: tr.Name, Com: tr.Commodity}
		r.TransmissionCaps = append(r.TransmissionCaps, TransmissionCap{
			SiteIn:       tr.SiteIn,
			SiteOut:      tr.SiteOut,
			Transmission: tr.Name,
			Commodity:    tr.Commodity,
			Total:        sol.Value(p.CapTra[key]),
			New:          sol.Value(p.CapTraNew[key]),
		})
	}
	for _, st := range in.Storage {
		key := plan.SiteSto{Site: st.Site, Sto: st.Name, Com: st.Commodity}
		r.StorageCaps = append(r.StorageCaps, StorageCap{
			Site:      st.Site,
			Storage:   st.Name,
			Commodity: st.Commodity,
			TotalC:    sol.Value(p.CapStoC[key]),
			NewC:      sol.Value(p.CapStoCNew[key]),
			TotalP:    sol.Value(p.CapStoP[key]),
			NewP:      sol.Value(p.CapStoPNew[key]),
		})
	}

	for _, sc := range siteComPairs(in) {
		ts := extractTimeseries(p, sol, sc.Site, sc.Com)
		if ts != nil {
			r.Timeseries = append(r.Timeseries, *ts)
		}
	}
	return r
}

// siteComPairs returns the unique (site, commodity) pairs worth a
// balance timeseries, i.e. everything but Env commodities.
func siteComPairs(in *model.Input) []model.SiteCom {
	seen := map[model.SiteCom]bool{}
	var out []model.SiteCom
	for _, c := range in.Commodities {
		if c.Type == model.ComEnv {
			continue
		}
		key := model.SiteCom{Site: c.Site, Com: c.Name}
		if !seen[key] {
			seen[key] = true
			out = append(out, key)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Site != out[j].Site {
			return out[i].Site < out[j].Site
		}
		return out[i].Com < out[j].Com
	})
	return out
}

func extractTimeseries(p *plan.Plan, sol *lp.Solution, site, com string) *Timeseries {
	in := p.In
	tm := p.Modelled()
	n := len(tm)

	ts := &Timeseries{Site: site, Com: com}

	for _, pro := range in.Processes {
		if pro.Site != site {
			continue
		}
		for i, t := range tm {
			if v, ok := p.ProOut[plan.TSPC{T: t, Site: site, Pro: pro.Name, Com: com}]; ok {
				if ts.Created == nil {
					ts.Created = map[string][]float64{}
				}
				if ts.Created[pro.Name] == nil {
					ts.Created[pro.Name] = make([]float64, n)
				}
				ts.Created[pro.Name][i] = sol.Value(v)
			}
			if v, ok := p.ProIn[plan.TSPC{T: t, Site: site, Pro: pro.Name, Com: com}]; ok {
				if ts.Consumed == nil {
					ts.Consumed = map[string][]float64{}
				}
				if ts.Consumed[pro.Name] == nil {
					ts.Consumed[pro.Name] = make([]float64, n)
				}
				ts.Consumed[pro.Name][i] = sol.Value(v)
			}
		}
	}

	series := func(idx map[plan.TSC]int) []float64 {
		var out []float64
		for i, t := range tm {
			v, ok := idx[plan.TSC{T: t, Site: site, Com: com}]
			if !ok {
				return nil
			}
			if out == nil {
				out = make([]float64, n)
			}
			out[i] = sol.Value(v)
		}
		return out
	}
	ts.Stock = series(p.CoStock)
	ts.Buy = series(p.CoBuy)
	ts.Sell = series(p.CoSell)

	if demand, ok := in.Demand[model.SiteCom{Site: site, Com: com}]; ok {
		ts.Demand = make([]float64, n)
		for i, t := range tm {
			ts.Demand[i] = demand[t]
		}
	}

	for _, d := range in.DSM {
		if d.Site != site || d.Commodity != com {
			continue
		}
		ts.DSMUp = make([]float64, n)
		ts.DSMDown = make([]float64, n)
		for i, t := range tm {
			ts.DSMUp[i] = sol.Value(p.DSMUp[plan.TSC{T: t, Site: site, Com: com}])
			for k, v := range p.DSMDown {
				if k.TT == t && k.Site == site && k.Com == com {
					ts.DSMDown[i] += sol.Value(v)
				}
			}
		}
		if ts.Demand != nil {
			ts.ShiftedDemand = make([]float64, n)
			for i := range ts.ShiftedDemand {
				ts.ShiftedDemand[i] = ts.Demand[i] + ts.DSMUp[i] - ts.DSMDown[i]
			}
		}
	}

	for _, tr := range in.Transmission {
		if tr.Commodity != com {
			continue
		}
		key := plan.TraKey{SiteIn: tr.SiteIn, SiteOut: tr.SiteOut, Tra: tr.Name, Com: tr.Commodity}
		for i, t := range tm {
			if tr.SiteOut == site {
				if ts.Imported == nil {
					ts.Imported = make([]float64, n)
				}
				ts.Imported[i] += sol.Value(p.TraOut[plan.TTra{T: t, TraKey: key}])
			}
			if tr.SiteIn == site {
				if ts.Exported == nil {
					ts.Exported = make([]float64, n)
				}
				ts.Exported[i] += sol.Value(p.TraIn[plan.TTra{T: t, TraKey: key}])
			}
		}
	}

	for _, st := range in.Storage {
		if st.Site != site || st.Commodity != com {
			continue
		}
		if ts.StorageLevel == nil {
			ts.StorageLevel = make([]float64, n)
			ts.Charged = make([]float64, n)
			ts.Discharged = make([]float64, n)
		}
		key := plan.SiteSto{Site: st.Site, Sto: st.Name, Com: st.Commodity}
		for i, t := range tm {
			tk := plan.TSto{T: t, SiteSto: key}
			ts.StorageLevel[i] += sol.Value(p.StoCon[tk])
			ts.Charged[i] += sol.Value(p.StoIn[tk])
			ts.Discharged[i] += sol.Value(p.StoOut[tk])
		}
	}

	if ts.Created == nil && ts.Consumed == nil && ts.Stock == nil &&
		ts.Buy == nil && ts.Sell == nil && ts.Demand == nil &&
		ts.Imported == nil && ts.Exported == nil && ts.StorageLevel == nil {
		return nil
	}
	return ts
}

// Find returns the timeseries for (site, com), or an error naming the
// available pairs.
func (r *Result) Find(site, com string) (*Timeseries, error) {
	for i := range r.Timeseries {
		ts := &r.Timeseries[i]
		if ts.Site == site && ts.Com == com {
			return ts, nil
		}
	}
	return nil, fmt.Errorf("result: no timeseries for %s.%s", site, com)
}

// TotalCost sums all cost components.
func (r *Result) TotalCost() float64 {
	sum := 0.0
	for _, v := range r.Costs {
		sum += v
	}
	return sum
}

// Sum returns the energy total of a series in MWh, scaled by dt.
func (r *Result) Sum(series []float64) float64 {
	sum := 0.0
	for _, v := range series {
		sum += v * r.DT
	}
	return sum
}
