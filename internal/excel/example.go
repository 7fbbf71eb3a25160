package excel

import (
	"math"

	"energyplan/internal/model"
)

// Example builds a small single-site household system over one day:
// photovoltaics plus a battery against a grid connection with buy and
// sell tariffs. It doubles as the bundled getting-started input and as
// a solvable fixture for tests.
func Example() *model.Input {
	inf := math.Inf(1)

	in := &model.Input{
		Sites: []model.Site{{Name: "House", Area: -1}},
		Commodities: []model.Commodity{
			{Site: "House", Name: "Elec", Type: model.ComDemand, Max: inf, MaxPerStep: inf},
			{Site: "House", Name: "Solar", Type: model.ComSupIm, Max: inf, MaxPerStep: inf},
			{Site: "House", Name: "Grid", Type: model.ComBuy,
				Price: model.Price{Factor: 1, Series: "Buy"}, Max: inf, MaxPerStep: inf},
			{Site: "House", Name: "Feed-in", Type: model.ComSell,
				Price: model.Price{Factor: 1, Series: "Sell"}, Max: inf, MaxPerStep: inf},
			{Site: "House", Name: "CO2", Type: model.ComEnv,
				Price: model.FixedPrice(0), Max: inf, MaxPerStep: inf},
		},
		Processes: []model.Process{
			{Site: "House", Name: "Photovoltaics", CapUp: 20, MaxGrad: inf,
				InvCost: 600000, FixCost: 9000, WACC: 0.07, Depreciation: 25, AreaPerCap: -1},
			{Site: "House", Name: "Purchase", CapUp: inf, MaxGrad: inf,
				WACC: 0.07, Depreciation: 20, AreaPerCap: -1},
			{Site: "House", Name: "Feed-in sale", CapUp: inf, MaxGrad: inf,
				WACC: 0.07, Depreciation: 20, AreaPerCap: -1},
		},
		ProcCom: []model.ProcCom{
			{Process: "Photovoltaics", Commodity: "Solar", Direction: model.In, Ratio: 1},
			{Process: "Photovoltaics", Commodity: "Elec", Direction: model.Out, Ratio: 1},
			{Process: "Purchase", Commodity: "Grid", Direction: model.In, Ratio: 1},
			{Process: "Purchase", Commodity: "Elec", Direction: model.Out, Ratio: 1},
			{Process: "Purchase", Commodity: "CO2", Direction: model.Out, Ratio: 0.4},
			{Process: "Feed-in sale", Commodity: "Elec", Direction: model.In, Ratio: 1},
			{Process: "Feed-in sale", Commodity: "Feed-in", Direction: model.Out, Ratio: 1},
		},
		Storage: []model.Storage{
			{Site: "House", Name: "Battery", Commodity: "Elec",
				EffIn: 0.94, EffOut: 0.94,
				CapUpC: 50, CapUpP: 20,
				InvCostC: 200000, InvCostP: 50000,
				FixCostC: 2000, FixCostP: 500,
				WACC: 0.07, Depreciation: 10, Init: 0.5},
		},
		Demand:       map[model.SiteCom][]float64{},
		SupIm:        map[model.SiteCom][]float64{},
		BuySellPrice: map[string][]float64{},
		Global:       map[string]float64{"CO2 limit": inf},
	}

	// one day plus the initialisation step
	const steps = 25
	demand := make([]float64, steps)
	solar := make([]float64, steps)
	buy := make([]float64, steps)
	sell := make([]float64, steps)
	for t := 0; t < steps; t++ {
		h := float64(t % 24)
		// household profile: morning and evening peaks around a base load
		demand[t] = 2 +
			3*math.Exp(-(h-8)*(h-8)/8) +
			5*math.Exp(-(h-19)*(h-19)/6)
		// solar bell curve around noon
		if s := math.Sin((h - 6) / 12 * math.Pi); h >= 6 && h <= 18 && s > 0 {
			solar[t] = s
		}
		buy[t] = 300
		sell[t] = 80
	}
	demand[0] = 0 // initialisation step carries no demand

	in.Demand[model.SiteCom{Site: "House", Com: "Elec"}] = demand
	in.SupIm[model.SiteCom{Site: "House", Com: "Solar"}] = solar
	in.BuySellPrice["Buy"] = buy
	in.BuySellPrice["Sell"] = sell
	return in
}
