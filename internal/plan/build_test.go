package plan_test

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"energyplan/internal/lp"
	"energyplan/internal/model"
	"energyplan/internal/plan"
)

// gasSystem is one site with a gas plant serving an electricity
// demand: 2 MWh gas per MWh electricity at 10 EUR/MWh gas.
func gasSystem() *model.Input {
	inf := math.Inf(1)
	return &model.Input{
		Sites: []model.Site{{Name: "Main", Area: -1}},
		Commodities: []model.Commodity{
			{Site: "Main", Name: "Elec", Type: model.ComDemand, Max: inf, MaxPerStep: inf},
			{Site: "Main", Name: "Gas", Type: model.ComStock,
				Price: model.FixedPrice(10), Max: inf, MaxPerStep: inf},
		},
		Processes: []model.Process{
			{Site: "Main", Name: "Gas plant", CapUp: 100, MaxGrad: inf,
				VarCost: 1, WACC: 0, Depreciation: 1, AreaPerCap: -1},
		},
		ProcCom: []model.ProcCom{
			{Process: "Gas plant", Commodity: "Gas", Direction: model.In, Ratio: 2},
			{Process: "Gas plant", Commodity: "Elec", Direction: model.Out, Ratio: 1},
		},
		Demand: map[model.SiteCom][]float64{
			{Site: "Main", Com: "Elec"}: {0, 10, 12, 8},
		},
		SupIm:        map[model.SiteCom][]float64{},
		BuySellPrice: map[string][]float64{},
		Global:       map[string]float64{},
	}
}

func TestBuildVariableCounts(t *testing.T) {
	p, err := plan.Build(gasSystem(), plan.Options{})
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3}, p.Modelled())
	assert.InDelta(t, 8760.0/3, p.Weight, 1e-9)

	assert.Len(t, p.CapPro, 1)
	assert.Len(t, p.CapProNew, 1)
	assert.Len(t, p.TauPro, 4, "throughput covers the initialisation step")
	assert.Len(t, p.ProIn, 3)
	assert.Len(t, p.ProOut, 3)
	assert.Len(t, p.CoStock, 3)
	assert.Empty(t, p.CapOnline, "no partial-load process")
	assert.Len(t, p.Cost, 8)
}

func TestBuildRejectsInvalidInput(t *testing.T) {
	in := gasSystem()
	in.Processes[0].CapLo = 200 // above cap-up
	_, err := plan.Build(in, plan.Options{})
	assert.Error(t, err)
}

func TestBuildOffsetLength(t *testing.T) {
	p, err := plan.Build(gasSystem(), plan.Options{Offset: 1, Length: 2})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, p.Steps)
	assert.Equal(t, []int{2, 3}, p.Modelled())

	_, err = plan.Build(gasSystem(), plan.Options{Offset: 9})
	assert.Error(t, err)
}

func TestSolveGasSystem(t *testing.T) {
	p, err := plan.Build(gasSystem(), plan.Options{})
	require.NoError(t, err)

	sol, err := (&lp.SimplexSolver{}).Solve(context.Background(), p.Prob)
	require.NoError(t, err)

	// throughput follows demand exactly, there is nothing to store
	for i, t2 := range p.Modelled() {
		want := []float64{10, 12, 8}[i]
		assert.InDelta(t, want, sol.Value(p.TauPro[plan.TSP{T: t2, Site: "Main", Pro: "Gas plant"}]), 1e-6)
		assert.InDelta(t, 2*want, sol.Value(p.CoStock[plan.TSC{T: t2, Site: "Main", Com: "Gas"}]), 1e-6)
	}

	// fuel: 60 MWh gas at 10 EUR/MWh, variable: 30 MWh at 1 EUR/MWh,
	// both scaled to a full year
	assert.InDelta(t, 600*p.Weight, sol.Value(p.Cost[plan.CostFuel]), 1e-4)
	assert.InDelta(t, 30*p.Weight, sol.Value(p.Cost[plan.CostVariable]), 1e-4)
	assert.InDelta(t, 630*p.Weight, sol.Objective, 1e-4)
}

func TestSolveIntermittentSupply(t *testing.T) {
	inf := math.Inf(1)
	in := &model.Input{
		Sites: []model.Site{{Name: "Main", Area: -1}},
		Commodities: []model.Commodity{
			{Site: "Main", Name: "Elec", Type: model.ComDemand, Max: inf, MaxPerStep: inf},
			{Site: "Main", Name: "Solar", Type: model.ComSupIm, Max: inf, MaxPerStep: inf},
		},
		Processes: []model.Process{
			{Site: "Main", Name: "Photovoltaics", CapUp: inf, MaxGrad: inf,
				InvCost: 1000, WACC: 0, Depreciation: 1, AreaPerCap: -1},
		},
		ProcCom: []model.ProcCom{
			{Process: "Photovoltaics", Commodity: "Solar", Direction: model.In, Ratio: 1},
			{Process: "Photovoltaics", Commodity: "Elec", Direction: model.Out, Ratio: 1},
		},
		Demand: map[model.SiteCom][]float64{
			{Site: "Main", Com: "Elec"}: {0, 5, 5},
		},
		SupIm: map[model.SiteCom][]float64{
			{Site: "Main", Com: "Solar"}: {0, 1, 0.5},
		},
		BuySellPrice: map[string][]float64{},
		Global:       map[string]float64{},
	}

	p, err := plan.Build(in, plan.Options{})
	require.NoError(t, err)
	sol, err := (&lp.SimplexSolver{}).Solve(context.Background(), p.Prob)
	require.NoError(t, err)

	// the half-sun hour dictates the built capacity: 5 MW / 0.5
	cap := sol.Value(p.CapPro[plan.SitePro{Site: "Main", Pro: "Photovoltaics"}])
	assert.InDelta(t, 10, cap, 1e-6)
	assert.InDelta(t, 10*1000, sol.Value(p.Cost[plan.CostInvest]), 1e-4)
}

func TestBuildStorageConstraints(t *testing.T) {
	in := gasSystem()
	in.Storage = []model.Storage{{
		Site: "Main", Name: "Battery", Commodity: "Elec",
		EffIn: 0.9, EffOut: 0.9,
		CapUpC: 50, CapUpP: 20,
		WACC: 0, Depreciation: 1, Init: 0.5,
	}}

	p, err := plan.Build(in, plan.Options{})
	require.NoError(t, err)

	assert.Len(t, p.StoCon, 4, "content covers the initialisation step")
	assert.Len(t, p.StoIn, 3)

	names := constraintNames(p)
	assert.Contains(t, names, "storage_state(1,Main,Battery)")
	assert.Contains(t, names, "storage_cycle_start(Main,Battery)")
	assert.Contains(t, names, "storage_cycle_end(Main,Battery)")
}

func TestBuildDSMConstraints(t *testing.T) {
	in := gasSystem()
	in.DSM = []model.DSM{{
		Site: "Main", Commodity: "Elec",
		Delay: 1, Eff: 1, CapMaxUp: 2, CapMaxDo: 2, Recovery: 0,
	}}

	p, err := plan.Build(in, plan.Options{})
	require.NoError(t, err)

	assert.Len(t, p.DSMUp, 3)
	// downshift pairs within +-1 step of each modelled upshift
	assert.Len(t, p.DSMDown, 7)

	names := constraintNames(p)
	assert.Contains(t, names, "dsm_link(1,Main,Elec)")
	assert.Contains(t, names, "dsm_down_limit(2,Main,Elec)")
	assert.Contains(t, names, "dsm_max(3,Main,Elec)")

	// still solvable; shifting is optional
	_, err = (&lp.SimplexSolver{}).Solve(context.Background(), p.Prob)
	require.NoError(t, err)
}

func TestBuildCO2Limit(t *testing.T) {
	in := gasSystem()
	in.Commodities = append(in.Commodities, model.Commodity{
		Site: "Main", Name: "CO2", Type: model.ComEnv,
		Max: math.Inf(1), MaxPerStep: math.Inf(1),
	})
	in.ProcCom = append(in.ProcCom, model.ProcCom{
		Process: "Gas plant", Commodity: "CO2", Direction: model.Out, Ratio: 0.5,
	})
	in.Global["CO2 limit"] = 1e9

	p, err := plan.Build(in, plan.Options{})
	require.NoError(t, err)
	assert.Contains(t, constraintNames(p), "co2_global_limit")

	// a limit below the necessary emissions makes the plan infeasible
	in.Global["CO2 limit"] = 1
	p, err = plan.Build(in, plan.Options{})
	require.NoError(t, err)
	_, err = (&lp.SimplexSolver{}).Solve(context.Background(), p.Prob)
	assert.ErrorIs(t, err, lp.ErrInfeasible)
}

func TestBuildPartialLoad(t *testing.T) {
	in := gasSystem()
	in.Processes[0].MinFraction = 0.3
	in.Processes[0].StartupCost = 5
	in.ProcCom[0].RatioMin = 2.8 // worse efficiency at the minimal point

	p, err := plan.Build(in, plan.Options{})
	require.NoError(t, err)

	assert.Len(t, p.CapOnline, 4)
	assert.Len(t, p.Startup, 3)

	names := constraintNames(p)
	assert.Contains(t, names, "partial_input(1,Main,Gas plant,Gas)")
	assert.Contains(t, names, "online_min(2,Main,Gas plant)")
	assert.Contains(t, names, "startup(3,Main,Gas plant)")
	for _, name := range names {
		assert.False(t, strings.HasPrefix(name, "process_input("),
			"partial inputs replace the fixed-ratio rule")
	}
}

func constraintNames(p *plan.Plan) []string {
	names := make([]string, 0, len(p.Prob.Constraints))
	for _, c := range p.Prob.Constraints {
		names = append(names, c.Name)
	}
	return names
}
