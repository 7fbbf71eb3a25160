package plan

import (
	"fmt"

	"energyplan/internal/lp"
	"energyplan/internal/model"
)

// addCostRules defines one equality per cost component and sets the
// objective to the sum of all components. Per-step terms are scaled by
// dt and the annualisation weight; invest costs are annualised with the
// annuity factor derived from wacc and depreciation period.
func (b *builder) addCostRules() error {
	p, in := b.p, b.in
	tm := p.Modelled()

	invest := lp.NewExpr()
	fixed := lp.NewExpr()
	variable := lp.NewExpr()
	fuel := lp.NewExpr()
	revenue := lp.NewExpr()
	purchase := lp.NewExpr()
	startup := lp.NewExpr()
	environmental := lp.NewExpr()

	for _, pro := range in.Processes {
		key := SitePro{pro.Site, pro.Name}
		invest.Add(p.CapProNew[key], pro.InvCost*pro.Annuity())
		fixed.Add(p.CapPro[key], pro.FixCost)
		for _, t := range tm {
			variable.Add(p.TauPro[TSP{t, pro.Site, pro.Name}], pro.VarCost*p.DT*p.Weight)
		}
		if b.partial(pro) {
			for _, t := range tm {
				startup.Add(p.Startup[TSP{t, pro.Site, pro.Name}], pro.StartupCost*p.DT*p.Weight)
			}
		}
	}

	for _, tr := range in.Transmission {
		key := TraKey{tr.SiteIn, tr.SiteOut, tr.Name, tr.Commodity}
		invest.Add(p.CapTraNew[key], tr.InvCost*tr.Annuity())
		fixed.Add(p.CapTra[key], tr.FixCost)
		for _, t := range tm {
			variable.Add(p.TraIn[TTra{t, key}], tr.VarCost*p.DT*p.Weight)
		}
	}

	for _, st := range in.Storage {
		key := SiteSto{st.Site, st.Name, st.Commodity}
		annuity := st.Annuity()
		invest.Add(p.CapStoCNew[key], st.InvCostC*annuity)
		invest.Add(p.CapStoPNew[key], st.InvCostP*annuity)
		fixed.Add(p.CapStoC[key], st.FixCostC)
		fixed.Add(p.CapStoP[key], st.FixCostP)
		for _, t := range tm {
			tk := TSto{t, key}
			variable.Add(p.StoCon[tk], st.VarCostC*p.Weight)
			variable.Add(p.StoIn[tk], st.VarCostP*p.DT*p.Weight)
			variable.Add(p.StoOut[tk], st.VarCostP*p.DT*p.Weight)
		}
	}

	for _, c := range in.Commodities {
		switch c.Type {
		case model.ComStock:
			for _, t := range tm {
				fuel.Add(p.CoStock[TSC{t, c.Site, c.Name}],
					c.Price.At(t, in.BuySellPrice)*p.DT*p.Weight)
			}
		case model.ComSell:
			// sold energy reduces total cost
			for _, t := range tm {
				revenue.Add(p.CoSell[TSC{t, c.Site, c.Name}],
					-c.Price.At(t, in.BuySellPrice)*p.DT*p.Weight)
			}
		case model.ComBuy:
			for _, t := range tm {
				purchase.Add(p.CoBuy[TSC{t, c.Site, c.Name}],
					c.Price.At(t, in.BuySellPrice)*p.DT*p.Weight)
			}
		case model.ComEnv:
			// emitted quantity is the negated commodity balance
			for _, t := range tm {
				b.balance(environmental, -c.Price.At(t, in.BuySellPrice)*p.DT*p.Weight,
					t, c.Site, c.Name)
			}
		}
	}

	defs := []struct {
		ct   CostType
		expr *lp.Expr
	}{
		{CostInvest, invest},
		{CostFixed, fixed},
		{CostVariable, variable},
		{CostFuel, fuel},
		{CostRevenue, revenue},
		{CostPurchase, purchase},
		{CostStartup, startup},
		{CostEnvironmental, environmental},
	}
	for _, d := range defs {
		e := lp.NewExpr().Add(p.Cost[d.ct], 1)
		for _, t := range d.expr.Terms() {
			e.Add(t.Var, -t.Coef)
		}
		if err := p.Prob.AddEq(fmt.Sprintf("cost_%s", d.ct), e, 0); err != nil {
			return err
		}
		p.Prob.SetObjective(p.Cost[d.ct], 1)
	}
	return nil
}
