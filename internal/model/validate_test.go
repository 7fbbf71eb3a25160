package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validInput is a minimal system that passes validation: a gas plant
// serving an electricity demand at one site.
func validInput() *Input {
	inf := math.Inf(1)
	return &Input{
		Sites: []Site{{Name: "Main", Area: -1}},
		Commodities: []Commodity{
			{Site: "Main", Name: "Elec", Type: ComDemand, Max: inf, MaxPerStep: inf},
			{Site: "Main", Name: "Gas", Type: ComStock, Price: FixedPrice(27),
				Max: inf, MaxPerStep: inf},
		},
		Processes: []Process{
			{Site: "Main", Name: "Gas plant", CapUp: 100, MaxGrad: inf,
				WACC: 0.07, Depreciation: 30, AreaPerCap: -1},
		},
		ProcCom: []ProcCom{
			{Process: "Gas plant", Commodity: "Gas", Direction: In, Ratio: 1.67},
			{Process: "Gas plant", Commodity: "Elec", Direction: Out, Ratio: 1},
		},
		Demand: map[SiteCom][]float64{
			{Site: "Main", Com: "Elec"}: {0, 10, 12, 8},
		},
		SupIm:        map[SiteCom][]float64{},
		BuySellPrice: map[string][]float64{},
		Global:       map[string]float64{},
	}
}

func TestValidateOK(t *testing.T) {
	require.NoError(t, validInput().Validate())
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Input)
		wantErr string
	}{
		{"no sites", func(in *Input) { in.Sites = nil }, "no sites"},
		{"no demand", func(in *Input) { in.Demand = map[SiteCom][]float64{} }, "no demand"},
		{"duplicate site", func(in *Input) {
			in.Sites = append(in.Sites, Site{Name: "Main"})
		}, "duplicate site"},
		{"unknown commodity site", func(in *Input) {
			in.Commodities[0].Site = "Nowhere"
		}, "unknown site"},
		{"bad commodity type", func(in *Input) {
			in.Commodities[0].Type = "Magic"
		}, "invalid type"},
		{"unknown price series", func(in *Input) {
			in.Commodities[1].Price = Price{Factor: 1, Series: "Buy"}
		}, "unknown price series"},
		{"cap-lo above cap-up", func(in *Input) {
			in.Processes[0].CapLo = 200
		}, "cap-lo"},
		{"min-fraction one", func(in *Input) {
			in.Processes[0].MinFraction = 1
		}, "min-fraction"},
		{"unknown process in relation", func(in *Input) {
			in.ProcCom[0].Process = "Ghost"
		}, "unknown process"},
		{"non-positive ratio", func(in *Input) {
			in.ProcCom[0].Ratio = 0
		}, "ratio"},
		{"short series", func(in *Input) {
			in.Demand[SiteCom{Site: "Main", Com: "Elec"}] = []float64{1}
		}, "at least 2"},
		{"dsm zero delay", func(in *Input) {
			in.DSM = []DSM{{Site: "Main", Commodity: "Elec", Eff: 1}}
		}, "delay"},
		{"storage bad efficiency", func(in *Input) {
			in.Storage = []Storage{{Site: "Main", Name: "Tank", Commodity: "Elec",
				EffIn: 1.2, EffOut: 1}}
		}, "efficiencies"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(in)
			err := in.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateTransmissionNeedsReverse(t *testing.T) {
	in := validInput()
	in.Sites = append(in.Sites, Site{Name: "North", Area: -1})
	in.Transmission = []Transmission{
		{SiteIn: "Main", SiteOut: "North", Name: "hvac", Commodity: "Elec", Eff: 0.9,
			CapUp: 10},
	}
	err := in.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reverse")

	in.Transmission = append(in.Transmission, Transmission{
		SiteIn: "North", SiteOut: "Main", Name: "hvac", Commodity: "Elec", Eff: 0.9,
		CapUp: 10,
	})
	assert.NoError(t, in.Validate())
}

func TestCloneIsDeep(t *testing.T) {
	in := validInput()
	clone := in.Clone()
	clone.Processes[0].CapUp = 1
	clone.Demand[SiteCom{Site: "Main", Com: "Elec"}][1] = 99
	clone.Global["CO2 limit"] = 5

	assert.Equal(t, 100.0, in.Processes[0].CapUp)
	assert.Equal(t, 10.0, in.Demand[SiteCom{Site: "Main", Com: "Elec"}][1])
	_, ok := in.Global["CO2 limit"]
	assert.False(t, ok)
}
