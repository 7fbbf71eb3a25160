package plan

import (
	"fmt"
	"math"

	"energyplan/internal/lp"
	"energyplan/internal/model"
)

// Options selects the modelled horizon.
type Options struct {
	// DT is the timestep length in hours; default 1.
	DT float64
	// Offset/Length select a slice of the input series. Length 0
	// selects everything after Offset. The first selected step only
	// initialises storage; operation starts one step later.
	Offset int
	Length int
}

// Build assembles the linear program for the given input.
func Build(in *model.Input, opts Options) (*Plan, error) {
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("plan: invalid input: %w", err)
	}
	dt := opts.DT
	if dt <= 0 {
		dt = 1
	}
	total := in.Timesteps()
	if opts.Offset < 0 || opts.Offset >= total-1 {
		return nil, fmt.Errorf("plan: offset %d outside series of length %d", opts.Offset, total)
	}
	length := opts.Length
	if length <= 0 || opts.Offset+length >= total {
		length = total - 1 - opts.Offset
	}
	steps := make([]int, length+1)
	for i := range steps {
		steps[i] = opts.Offset + i
	}

	b := &builder{
		p: &Plan{
			In:     in,
			Prob:   lp.New("energyplan"),
			DT:     dt,
			Weight: 8760 / (float64(length) * dt),
			Steps:  steps,

			Cost:       map[CostType]int{},
			CoStock:    map[TSC]int{},
			CoSell:     map[TSC]int{},
			CoBuy:      map[TSC]int{},
			CapPro:     map[SitePro]int{},
			CapProNew:  map[SitePro]int{},
			TauPro:     map[TSP]int{},
			ProIn:      map[TSPC]int{},
			ProOut:     map[TSPC]int{},
			CapOnline:  map[TSP]int{},
			Startup:    map[TSP]int{},
			CapTra:     map[TraKey]int{},
			CapTraNew:  map[TraKey]int{},
			TraIn:      map[TTra]int{},
			TraOut:     map[TTra]int{},
			CapStoC:    map[SiteSto]int{},
			CapStoCNew: map[SiteSto]int{},
			CapStoP:    map[SiteSto]int{},
			CapStoPNew: map[SiteSto]int{},
			StoIn:      map[TSto]int{},
			StoOut:     map[TSto]int{},
			StoCon:     map[TSto]int{},
			DSMUp:      map[TSC]int{},
			DSMDown:    map[TTSC]int{},
		},
		in:     in,
		byType: map[model.ComType]map[string]bool{},
	}
	for _, ct := range []model.ComType{
		model.ComStock, model.ComSupIm, model.ComDemand,
		model.ComEnv, model.ComBuy, model.ComSell,
	} {
		set := map[string]bool{}
		for _, name := range in.CommoditiesOfType(ct) {
			set[name] = true
		}
		b.byType[ct] = set
	}

	b.addVariables()
	if err := b.addCommodityRules(); err != nil {
		return nil, err
	}
	if err := b.addProcessRules(); err != nil {
		return nil, err
	}
	if err := b.addTransmissionRules(); err != nil {
		return nil, err
	}
	if err := b.addStorageRules(); err != nil {
		return nil, err
	}
	if err := b.addDSMRules(); err != nil {
		return nil, err
	}
	if err := b.addCostRules(); err != nil {
		return nil, err
	}
	if err := b.addGlobalLimits(); err != nil {
		return nil, err
	}
	return b.p, nil
}

type builder struct {
	p      *Plan
	in     *model.Input
	byType map[model.ComType]map[string]bool
}

func (b *builder) is(ct model.ComType, com string) bool { return b.byType[ct][com] }

// partial reports whether the process operates with a minimal online
// fraction, i.e. has an input with a partial-load ratio.
func (b *builder) partial(pro model.Process) bool {
	if pro.MinFraction <= 0 {
		return false
	}
	for _, pc := range b.in.ProcessInputs(pro.Name) {
		if pc.RatioMin > 0 {
			return true
		}
	}
	return false
}

func (b *builder) addVariables() {
	p, in := b.p, b.in
	inf := math.Inf(1)
	tm := p.Modelled()

	for _, ct := range CostTypes {
		p.Cost[ct] = p.Prob.AddVariable(fmt.Sprintf("cost(%s)", ct), math.Inf(-1), inf)
	}

	for _, c := range in.Commodities {
		for _, t := range tm {
			switch c.Type {
			case model.ComStock:
				p.CoStock[TSC{t, c.Site, c.Name}] = p.Prob.AddVariable(
					fmt.Sprintf("stock(%d,%s,%s)", t, c.Site, c.Name), 0, inf)
			case model.ComSell:
				p.CoSell[TSC{t, c.Site, c.Name}] = p.Prob.AddVariable(
					fmt.Sprintf("sell(%d,%s,%s)", t, c.Site, c.Name), 0, inf)
			case model.ComBuy:
				p.CoBuy[TSC{t, c.Site, c.Name}] = p.Prob.AddVariable(
					fmt.Sprintf("buy(%d,%s,%s)", t, c.Site, c.Name), 0, inf)
			}
		}
	}

	for _, pro := range in.Processes {
		key := SitePro{pro.Site, pro.Name}
		// capacity bounds go directly onto the variable
		p.CapPro[key] = p.Prob.AddVariable(
			fmt.Sprintf("cap_pro(%s,%s)", pro.Site, pro.Name), pro.CapLo, pro.CapUp)
		p.CapProNew[key] = p.Prob.AddVariable(
			fmt.Sprintf("cap_pro_new(%s,%s)", pro.Site, pro.Name), 0, inf)
		for _, t := range p.Steps {
			p.TauPro[TSP{t, pro.Site, pro.Name}] = p.Prob.AddVariable(
				fmt.Sprintf("tau(%d,%s,%s)", t, pro.Site, pro.Name), 0, inf)
		}
		for _, t := range tm {
			for _, pc := range in.ProcessInputs(pro.Name) {
				p.ProIn[TSPC{t, pro.Site, pro.Name, pc.Commodity}] = p.Prob.AddVariable(
					fmt.Sprintf("pro_in(%d,%s,%s,%s)", t, pro.Site, pro.Name, pc.Commodity), 0, inf)
			}
			for _, pc := range in.ProcessOutputs(pro.Name) {
				p.ProOut[TSPC{t, pro.Site, pro.Name, pc.Commodity}] = p.Prob.AddVariable(
					fmt.Sprintf("pro_out(%d,%s,%s,%s)", t, pro.Site, pro.Name, pc.Commodity), 0, inf)
			}
		}
		if b.partial(pro) {
			for _, t := range p.Steps {
				p.CapOnline[TSP{t, pro.Site, pro.Name}] = p.Prob.AddVariable(
					fmt.Sprintf("cap_online(%d,%s,%s)", t, pro.Site, pro.Name), 0, inf)
			}
			for _, t := range tm {
				p.Startup[TSP{t, pro.Site, pro.Name}] = p.Prob.AddVariable(
					fmt.Sprintf("startup(%d,%s,%s)", t, pro.Site, pro.Name), 0, inf)
			}
		}
	}

	for _, tr := range in.Transmission {
		key := TraKey{tr.SiteIn, tr.SiteOut, tr.Name, tr.Commodity}
		p.CapTra[key] = p.Prob.AddVariable(
			fmt.Sprintf("cap_tra(%s,%s,%s,%s)", tr.SiteIn, tr.SiteOut, tr.Name, tr.Commodity),
			tr.CapLo, tr.CapUp)
		p.CapTraNew[key] = p.Prob.AddVariable(
			fmt.Sprintf("cap_tra_new(%s,%s,%s,%s)", tr.SiteIn, tr.SiteOut, tr.Name, tr.Commodity),
			0, inf)
		for _, t := range tm {
			p.TraIn[TTra{t, key}] = p.Prob.AddVariable(
				fmt.Sprintf("tra_in(%d,%s,%s,%s)", t, tr.SiteIn, tr.SiteOut, tr.Commodity), 0, inf)
			p.TraOut[TTra{t, key}] = p.Prob.AddVariable(
				fmt.Sprintf("tra_out(%d,%s,%s,%s)", t, tr.SiteIn, tr.SiteOut, tr.Commodity), 0, inf)
		}
	}

	for _, st := range in.Storage {
		key := SiteSto{st.Site, st.Name, st.Commodity}
		p.CapStoC[key] = p.Prob.AddVariable(
			fmt.Sprintf("cap_sto_c(%s,%s)", st.Site, st.Name), st.CapLoC, st.CapUpC)
		p.CapStoCNew[key] = p.Prob.AddVariable(
			fmt.Sprintf("cap_sto_c_new(%s,%s)", st.Site, st.Name), 0, inf)
		p.CapStoP[key] = p.Prob.AddVariable(
			fmt.Sprintf("cap_sto_p(%s,%s)", st.Site, st.Name), st.CapLoP, st.CapUpP)
		p.CapStoPNew[key] = p.Prob.AddVariable(
			fmt.Sprintf("cap_sto_p_new(%s,%s)", st.Site, st.Name), 0, inf)
		for _, t := range tm {
			p.StoIn[TSto{t, key}] = p.Prob.AddVariable(
				fmt.Sprintf("sto_in(%d,%s,%s)", t, st.Site, st.Name), 0, inf)
			p.StoOut[TSto{t, key}] = p.Prob.AddVariable(
				fmt.Sprintf("sto_out(%d,%s,%s)", t, st.Site, st.Name), 0, inf)
		}
		for _, t := range p.Steps {
			p.StoCon[TSto{t, key}] = p.Prob.AddVariable(
				fmt.Sprintf("sto_con(%d,%s,%s)", t, st.Site, st.Name), 0, inf)
		}
	}

	for _, d := range in.DSM {
		for _, t := range tm {
			p.DSMUp[TSC{t, d.Site, d.Commodity}] = p.Prob.AddVariable(
				fmt.Sprintf("dsm_up(%d,%s,%s)", t, d.Site, d.Commodity), 0, d.CapMaxUp)
			for _, tt := range dsmWindow(t, d.Delay, tm) {
				p.DSMDown[TTSC{t, tt, d.Site, d.Commodity}] = p.Prob.AddVariable(
					fmt.Sprintf("dsm_down(%d,%d,%s,%s)", t, tt, d.Site, d.Commodity), 0, inf)
			}
		}
	}
}

// balance adds the net consumption of a commodity at (t, site) to
// expr with the given sign: process inputs, transmission exports and
// storage charging count positive; process outputs, imports and
// discharging count negative.
func (b *builder) balance(expr *lp.Expr, sign float64, t int, site, com string) {
	p, in := b.p, b.in
	for _, pro := range in.Processes {
		if pro.Site != site {
			continue
		}
		if v, ok := p.ProIn[TSPC{t, site, pro.Name, com}]; ok {
			expr.Add(v, sign)
		}
		if v, ok := p.ProOut[TSPC{t, site, pro.Name, com}]; ok {
			expr.Add(v, -sign)
		}
	}
	for _, tr := range in.Transmission {
		if tr.Commodity != com {
			continue
		}
		key := TTra{t, TraKey{tr.SiteIn, tr.SiteOut, tr.Name, tr.Commodity}}
		if tr.SiteIn == site {
			expr.Add(p.TraIn[key], sign)
		}
		if tr.SiteOut == site {
			expr.Add(p.TraOut[key], -sign)
		}
	}
	for _, st := range in.Storage {
		if st.Site != site || st.Commodity != com {
			continue
		}
		key := TSto{t, SiteSto{st.Site, st.Name, st.Commodity}}
		expr.Add(p.StoIn[key], sign)
		expr.Add(p.StoOut[key], -sign)
	}
}

func (b *builder) addCommodityRules() error {
	p, in := b.p, b.in
	tm := p.Modelled()

	for _, c := range in.Commodities {
		switch c.Type {
		case model.ComEnv, model.ComSupIm:
			// no balance; Env is limited separately below
		default:
			for _, t := range tm {
				// production - consumption + sourcing == demand
				surplus := lp.NewExpr()
				b.balance(surplus, -1, t, c.Site, c.Name)
				rhs := 0.0
				switch c.Type {
				case model.ComStock:
					surplus.Add(p.CoStock[TSC{t, c.Site, c.Name}], 1)
				case model.ComSell:
					surplus.Add(p.CoSell[TSC{t, c.Site, c.Name}], -1)
				case model.ComBuy:
					surplus.Add(p.CoBuy[TSC{t, c.Site, c.Name}], 1)
				case model.ComDemand:
					if series, ok := in.Demand[model.SiteCom{Site: c.Site, Com: c.Name}]; ok {
						rhs = series[t]
					}
				}
				for _, d := range in.DSM {
					if d.Site != c.Site || d.Commodity != c.Name {
						continue
					}
					surplus.Add(p.DSMUp[TSC{t, c.Site, c.Name}], -1)
					for _, tu := range dsmWindow(t, d.Delay, tm) {
						surplus.Add(p.DSMDown[TTSC{tu, t, c.Site, c.Name}], 1)
					}
				}
				name := fmt.Sprintf("balance(%d,%s,%s)", t, c.Site, c.Name)
				if err := p.Prob.AddEq(name, surplus, rhs); err != nil {
					return err
				}
			}
		}

		// per-step and annual limits on sourcing and emissions
		var perStep func(t int) (int, bool)
		switch c.Type {
		case model.ComStock:
			perStep = func(t int) (int, bool) { v, ok := p.CoStock[TSC{t, c.Site, c.Name}]; return v, ok }
		case model.ComSell:
			perStep = func(t int) (int, bool) { v, ok := p.CoSell[TSC{t, c.Site, c.Name}]; return v, ok }
		case model.ComBuy:
			perStep = func(t int) (int, bool) { v, ok := p.CoBuy[TSC{t, c.Site, c.Name}]; return v, ok }
		case model.ComEnv:
			if !math.IsInf(c.MaxPerStep, 1) {
				for _, t := range tm {
					e := lp.NewExpr()
					b.balance(e, -1, t, c.Site, c.Name)
					name := fmt.Sprintf("env_step_limit(%d,%s,%s)", t, c.Site, c.Name)
					if err := p.Prob.AddLe(name, e, c.MaxPerStep); err != nil {
						return err
					}
				}
			}
			if !math.IsInf(c.Max, 1) {
				e := lp.NewExpr()
				for _, t := range tm {
					b.balance(e, -p.DT*p.Weight, t, c.Site, c.Name)
				}
				name := fmt.Sprintf("env_total_limit(%s,%s)", c.Site, c.Name)
				if err := p.Prob.AddLe(name, e, c.Max); err != nil {
					return err
				}
			}
			continue
		default:
			continue
		}

		if !math.IsInf(c.MaxPerStep, 1) {
			for _, t := range tm {
				if v, ok := perStep(t); ok {
					e := lp.NewExpr().Add(v, 1)
					name := fmt.Sprintf("%s_step_limit(%d,%s,%s)", c.Type, t, c.Site, c.Name)
					if err := p.Prob.AddLe(name, e, c.MaxPerStep); err != nil {
						return err
					}
				}
			}
		}
		if !math.IsInf(c.Max, 1) {
			e := lp.NewExpr()
			for _, t := range tm {
				if v, ok := perStep(t); ok {
					e.Add(v, p.DT*p.Weight)
				}
			}
			name := fmt.Sprintf("%s_total_limit(%s,%s)", c.Type, c.Site, c.Name)
			if err := p.Prob.AddLe(name, e, c.Max); err != nil {
				return err
			}
		}
	}
	return nil
}

func (b *builder) addProcessRules() error {
	p, in := b.p, b.in
	tm := p.Modelled()

	for _, pro := range in.Processes {
		key := SitePro{pro.Site, pro.Name}
		partial := b.partial(pro)

		// cap == inst-cap + new
		e := lp.NewExpr().Add(p.CapPro[key], 1).Add(p.CapProNew[key], -1)
		if err := p.Prob.AddEq(fmt.Sprintf("process_capacity(%s,%s)", pro.Site, pro.Name),
			e, pro.InstCap); err != nil {
			return err
		}

		for _, pc := range in.ProcessInputs(pro.Name) {
			isPartialInput := partial && pc.RatioMin > 0
			for _, t := range tm {
				inVar := p.ProIn[TSPC{t, pro.Site, pro.Name, pc.Commodity}]
				tau := p.TauPro[TSP{t, pro.Site, pro.Name}]
				if isPartialInput {
					// linear interpolation between the input ratio at the
					// minimal operation point and at full throughput
					r, bigR, f := pc.RatioMin, pc.Ratio, pro.MinFraction
					onlineFactor := f * (r - bigR) / (1 - f)
					throughputFactor := (bigR - f*r) / (1 - f)
					e := lp.NewExpr().Add(inVar, 1).
						Add(p.CapOnline[TSP{t, pro.Site, pro.Name}], -onlineFactor).
						Add(tau, -throughputFactor)
					if err := p.Prob.AddEq(
						fmt.Sprintf("partial_input(%d,%s,%s,%s)", t, pro.Site, pro.Name, pc.Commodity),
						e, 0); err != nil {
						return err
					}
				} else {
					e := lp.NewExpr().Add(inVar, 1).Add(tau, -pc.Ratio)
					if err := p.Prob.AddEq(
						fmt.Sprintf("process_input(%d,%s,%s,%s)", t, pro.Site, pro.Name, pc.Commodity),
						e, 0); err != nil {
						return err
					}
				}
				// intermittent inputs are limited by capacity times the
				// capacity factor series
				if b.is(model.ComSupIm, pc.Commodity) {
					series := in.SupIm[model.SiteCom{Site: pro.Site, Com: pc.Commodity}]
					cf := 0.0
					if series != nil {
						cf = series[t]
					}
					e := lp.NewExpr().Add(inVar, 1).Add(p.CapPro[key], -cf)
					if err := p.Prob.AddLe(
						fmt.Sprintf("intermittent_supply(%d,%s,%s,%s)", t, pro.Site, pro.Name, pc.Commodity),
						e, 0); err != nil {
						return err
					}
				}
			}
		}

		for _, pc := range in.ProcessOutputs(pro.Name) {
			for _, t := range tm {
				e := lp.NewExpr().
					Add(p.ProOut[TSPC{t, pro.Site, pro.Name, pc.Commodity}], 1).
					Add(p.TauPro[TSP{t, pro.Site, pro.Name}], -pc.Ratio)
				if err := p.Prob.AddEq(
					fmt.Sprintf("process_output(%d,%s,%s,%s)", t, pro.Site, pro.Name, pc.Commodity),
					e, 0); err != nil {
					return err
				}
			}
		}

		for _, t := range tm {
			e := lp.NewExpr().Add(p.TauPro[TSP{t, pro.Site, pro.Name}], 1).Add(p.CapPro[key], -1)
			if err := p.Prob.AddLe(
				fmt.Sprintf("throughput_by_capacity(%d,%s,%s)", t, pro.Site, pro.Name), e, 0); err != nil {
				return err
			}
		}

		// ramping limit, only binding if the gradient is reachable
		// within one timestep
		if pro.MaxGrad < 1/p.DT {
			for i, t := range tm {
				prev := p.Steps[i] // element before tm[i]
				grad := pro.MaxGrad * p.DT
				up := lp.NewExpr().
					Add(p.TauPro[TSP{t, pro.Site, pro.Name}], 1).
					Add(p.TauPro[TSP{prev, pro.Site, pro.Name}], -1).
					Add(p.CapPro[key], -grad)
				if err := p.Prob.AddLe(
					fmt.Sprintf("maxgrad_up(%d,%s,%s)", t, pro.Site, pro.Name), up, 0); err != nil {
					return err
				}
				down := lp.NewExpr().
					Add(p.TauPro[TSP{prev, pro.Site, pro.Name}], 1).
					Add(p.TauPro[TSP{t, pro.Site, pro.Name}], -1).
					Add(p.CapPro[key], -grad)
				if err := p.Prob.AddLe(
					fmt.Sprintf("maxgrad_down(%d,%s,%s)", t, pro.Site, pro.Name), down, 0); err != nil {
					return err
				}
			}
		}

		if partial {
			for i, t := range tm {
				tsp := TSP{t, pro.Site, pro.Name}
				// min-fraction * online <= throughput <= online
				lo := lp.NewExpr().
					Add(p.CapOnline[tsp], pro.MinFraction).
					Add(p.TauPro[tsp], -1)
				if err := p.Prob.AddLe(
					fmt.Sprintf("online_min(%d,%s,%s)", t, pro.Site, pro.Name), lo, 0); err != nil {
					return err
				}
				hi := lp.NewExpr().Add(p.TauPro[tsp], 1).Add(p.CapOnline[tsp], -1)
				if err := p.Prob.AddLe(
					fmt.Sprintf("online_max(%d,%s,%s)", t, pro.Site, pro.Name), hi, 0); err != nil {
					return err
				}
				cap := lp.NewExpr().Add(p.CapOnline[tsp], 1).Add(p.CapPro[key], -1)
				if err := p.Prob.AddLe(
					fmt.Sprintf("online_by_capacity(%d,%s,%s)", t, pro.Site, pro.Name), cap, 0); err != nil {
					return err
				}
				// startup capacity covers increases of online capacity
				prev := p.Steps[i]
				su := lp.NewExpr().
					Add(p.Startup[tsp], 1).
					Add(p.CapOnline[tsp], -1).
					Add(p.CapOnline[TSP{prev, pro.Site, pro.Name}], 1)
				if err := p.Prob.AddGe(
					fmt.Sprintf("startup(%d,%s,%s)", t, pro.Site, pro.Name), su, 0); err != nil {
					return err
				}
			}
		}
	}

	// total process footprint per site
	for _, site := range in.Sites {
		if site.Area < 0 {
			continue
		}
		e := lp.NewExpr()
		used := false
		for _, pro := range in.Processes {
			if pro.Site == site.Name && pro.AreaPerCap >= 0 {
				e.Add(p.CapPro[SitePro{pro.Site, pro.Name}], pro.AreaPerCap)
				used = true
			}
		}
		if used {
			if err := p.Prob.AddLe(fmt.Sprintf("area(%s)", site.Name), e, site.Area); err != nil {
				return err
			}
		}
	}

	return b.addSellBuySymmetry()
}

// addSellBuySymmetry couples the capacities of grid connection process
// pairs: a process buying a commodity must have the same capacity as
// the process selling it back at the same site, since both share one
// physical connection.
func (b *builder) addSellBuySymmetry() error {
	p, in := b.p, b.in
	for _, pro := range in.Processes {
		buys := false
		for _, pc := range in.ProcessInputs(pro.Name) {
			if b.is(model.ComBuy, pc.Commodity) {
				buys = true
				break
			}
		}
		if !buys {
			continue
		}
		sell := b.sellPartner(pro)
		if sell == "" || sell == pro.Name {
			continue
		}
		e := lp.NewExpr().
			Add(p.CapPro[SitePro{pro.Site, pro.Name}], 1).
			Add(p.CapPro[SitePro{pro.Site, sell}], -1)
		if err := p.Prob.AddEq(
			fmt.Sprintf("sell_buy_symmetry(%s,%s,%s)", pro.Site, pro.Name, sell), e, 0); err != nil {
			return err
		}
	}
	return nil
}

// sellPartner finds the process that sells what the buy process
// delivers: its input commodities overlap the buy process' outputs and
// it outputs a sell commodity.
func (b *builder) sellPartner(buyPro model.Process) string {
	buyOut := map[string]bool{}
	for _, pc := range b.in.ProcessOutputs(buyPro.Name) {
		buyOut[pc.Commodity] = true
	}
	for _, cand := range b.in.Processes {
		if cand.Site != buyPro.Site {
			continue
		}
		sells := false
		for _, pc := range b.in.ProcessOutputs(cand.Name) {
			if b.is(model.ComSell, pc.Commodity) {
				sells = true
				break
			}
		}
		if !sells {
			continue
		}
		for _, pc := range b.in.ProcessInputs(cand.Name) {
			if buyOut[pc.Commodity] {
				return cand.Name
			}
		}
	}
	return ""
}

func (b *builder) addTransmissionRules() error {
	p, in := b.p, b.in
	tm := p.Modelled()

	for _, tr := range in.Transmission {
		key := TraKey{tr.SiteIn, tr.SiteOut, tr.Name, tr.Commodity}
		e := lp.NewExpr().Add(p.CapTra[key], 1).Add(p.CapTraNew[key], -1)
		if err := p.Prob.AddEq(
			fmt.Sprintf("transmission_capacity(%s,%s,%s)", tr.SiteIn, tr.SiteOut, tr.Name),
			e, tr.InstCap); err != nil {
			return err
		}

		for _, t := range tm {
			tk := TTra{t, key}
			out := lp.NewExpr().Add(p.TraOut[tk], 1).Add(p.TraIn[tk], -tr.Eff)
			if err := p.Prob.AddEq(
				fmt.Sprintf("transmission_output(%d,%s,%s,%s)", t, tr.SiteIn, tr.SiteOut, tr.Name),
				out, 0); err != nil {
				return err
			}
			cap := lp.NewExpr().Add(p.TraIn[tk], 1).Add(p.CapTra[key], -1)
			if err := p.Prob.AddLe(
				fmt.Sprintf("transmission_input_cap(%d,%s,%s,%s)", t, tr.SiteIn, tr.SiteOut, tr.Name),
				cap, 0); err != nil {
				return err
			}
		}

		// capacity is symmetric; add once per pair
		if tr.SiteIn < tr.SiteOut {
			rev := TraKey{tr.SiteOut, tr.SiteIn, tr.Name, tr.Commodity}
			if _, ok := p.CapTra[rev]; ok {
				e := lp.NewExpr().Add(p.CapTra[key], 1).Add(p.CapTra[rev], -1)
				if err := p.Prob.AddEq(
					fmt.Sprintf("transmission_symmetry(%s,%s,%s)", tr.SiteIn, tr.SiteOut, tr.Name),
					e, 0); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (b *builder) addStorageRules() error {
	p, in := b.p, b.in
	tm := p.Modelled()

	for _, st := range in.Storage {
		key := SiteSto{st.Site, st.Name, st.Commodity}

		for _, pair := range []struct {
			name          string
			cap, capNew   int
			inst          float64
		}{
			{"storage_energy_capacity", p.CapStoC[key], p.CapStoCNew[key], st.InstCapC},
			{"storage_power_capacity", p.CapStoP[key], p.CapStoPNew[key], st.InstCapP},
		} {
			e := lp.NewExpr().Add(pair.cap, 1).Add(pair.capNew, -1)
			if err := p.Prob.AddEq(
				fmt.Sprintf("%s(%s,%s)", pair.name, st.Site, st.Name), e, pair.inst); err != nil {
				return err
			}
		}

		for i, t := range tm {
			tk := TSto{t, key}
			prev := TSto{p.Steps[i], key}
			// content recursion with charge/discharge efficiencies
			state := lp.NewExpr().
				Add(p.StoCon[tk], 1).
				Add(p.StoCon[prev], -1).
				Add(p.StoIn[tk], -st.EffIn*p.DT).
				Add(p.StoOut[tk], p.DT/st.EffOut)
			if err := p.Prob.AddEq(
				fmt.Sprintf("storage_state(%d,%s,%s)", t, st.Site, st.Name), state, 0); err != nil {
				return err
			}

			inCap := lp.NewExpr().Add(p.StoIn[tk], 1).Add(p.CapStoP[key], -1)
			if err := p.Prob.AddLe(
				fmt.Sprintf("storage_input_power(%d,%s,%s)", t, st.Site, st.Name), inCap, 0); err != nil {
				return err
			}
			outCap := lp.NewExpr().Add(p.StoOut[tk], 1).Add(p.CapStoP[key], -1)
			if err := p.Prob.AddLe(
				fmt.Sprintf("storage_output_power(%d,%s,%s)", t, st.Site, st.Name), outCap, 0); err != nil {
				return err
			}
		}

		for _, t := range p.Steps {
			e := lp.NewExpr().Add(p.StoCon[TSto{t, key}], 1).Add(p.CapStoC[key], -1)
			if err := p.Prob.AddLe(
				fmt.Sprintf("storage_content_cap(%d,%s,%s)", t, st.Site, st.Name), e, 0); err != nil {
				return err
			}
		}

		// the storage starts at init * capacity and must end the horizon
		// at least as full, so it cannot be a free energy source
		first, last := p.Steps[0], p.Steps[len(p.Steps)-1]
		start := lp.NewExpr().Add(p.StoCon[TSto{first, key}], 1).Add(p.CapStoC[key], -st.Init)
		if err := p.Prob.AddEq(
			fmt.Sprintf("storage_cycle_start(%s,%s)", st.Site, st.Name), start, 0); err != nil {
			return err
		}
		end := lp.NewExpr().Add(p.StoCon[TSto{last, key}], 1).Add(p.CapStoC[key], -st.Init)
		if err := p.Prob.AddGe(
			fmt.Sprintf("storage_cycle_end(%s,%s)", st.Site, st.Name), end, 0); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) addDSMRules() error {
	p, in := b.p, b.in
	tm := p.Modelled()

	for _, d := range in.DSM {
		for _, t := range tm {
			up := p.DSMUp[TSC{t, d.Site, d.Commodity}]

			// every upshift must be compensated by downshifts within the
			// delay window, diminished by the shifting efficiency
			link := lp.NewExpr().Add(up, d.Eff)
			for _, tt := range dsmWindow(t, d.Delay, tm) {
				link.Add(p.DSMDown[TTSC{t, tt, d.Site, d.Commodity}], -1)
			}
			if err := p.Prob.AddEq(
				fmt.Sprintf("dsm_link(%d,%s,%s)", t, d.Site, d.Commodity), link, 0); err != nil {
				return err
			}

			// downshift capacity in this timestep (summed over all
			// compensated upshifts)
			down := lp.NewExpr()
			for _, tu := range dsmWindow(t, d.Delay, tm) {
				down.Add(p.DSMDown[TTSC{tu, t, d.Site, d.Commodity}], 1)
			}
			if err := p.Prob.AddLe(
				fmt.Sprintf("dsm_down_limit(%d,%s,%s)", t, d.Site, d.Commodity),
				down, d.CapMaxDo); err != nil {
				return err
			}

			// up- and downshift together may not exceed the larger limit
			both := lp.NewExpr().Add(up, 1)
			for _, tu := range dsmWindow(t, d.Delay, tm) {
				both.Add(p.DSMDown[TTSC{tu, t, d.Site, d.Commodity}], 1)
			}
			if err := p.Prob.AddLe(
				fmt.Sprintf("dsm_max(%d,%s,%s)", t, d.Site, d.Commodity),
				both, math.Max(d.CapMaxUp, d.CapMaxDo)); err != nil {
				return err
			}

			// recovery: upshifts within the recovery period are bounded
			if d.Recovery > d.Delay {
				rec := lp.NewExpr()
				for _, tu := range tm {
					if tu >= t && tu < t+d.Recovery {
						rec.Add(p.DSMUp[TSC{tu, d.Site, d.Commodity}], 1)
					}
				}
				if err := p.Prob.AddLe(
					fmt.Sprintf("dsm_recovery(%d,%s,%s)", t, d.Site, d.Commodity),
					rec, d.CapMaxUp*float64(d.Delay)); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (b *builder) addGlobalLimits() error {
	p, in := b.p, b.in
	limit, ok := in.Global["CO2 limit"]
	if !ok || math.IsInf(limit, 1) {
		return nil
	}
	e := lp.NewExpr()
	for _, t := range p.Modelled() {
		for _, site := range in.Sites {
			b.balance(e, -p.DT*p.Weight, t, site.Name, "CO2")
		}
	}
	return p.Prob.AddLe("co2_global_limit", e, limit)
}
