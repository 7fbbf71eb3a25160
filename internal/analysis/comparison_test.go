package analysis

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"energyplan/internal/plan"
	"energyplan/internal/result"
)

func sampleResults() []*result.Result {
	return []*result.Result{
		{
			Scenario: "base",
			Costs: map[plan.CostType]float64{
				plan.CostInvest: 100,
				plan.CostFuel:   200,
			},
		},
		{
			Scenario: "co2-capped",
			Costs: map[plan.CostType]float64{
				plan.CostInvest: 250,
				plan.CostFuel:   20,
			},
		},
	}
}

func TestCompare(t *testing.T) {
	c := Compare(sampleResults())
	assert.Equal(t, []string{"base", "co2-capped"}, c.Scenarios)
	assert.Equal(t, []float64{100, 250}, c.Costs[plan.CostInvest])
	assert.Equal(t, []float64{200, 20}, c.Costs[plan.CostFuel])
	assert.Equal(t, []float64{300, 270}, c.Totals)
	assert.Equal(t, 1, c.Cheapest())
}

func TestCheapestEmpty(t *testing.T) {
	assert.Equal(t, -1, (&Comparison{}).Cheapest())
}

func TestWriteComparisonCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "comparison.csv")
	require.NoError(t, WriteComparisonCSV(path, sampleResults()))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, len(plan.CostTypes)+2)
	assert.Equal(t, []string{"cost_type", "base", "co2-capped"}, rows[0])
	last := rows[len(rows)-1]
	assert.Equal(t, []string{"Total", "300.000000", "270.000000"}, last)

	byType := map[string][]string{}
	for _, row := range rows[1:] {
		byType[row[0]] = row[1:]
	}
	assert.Equal(t, []string{"100.000000", "250.000000"}, byType[string(plan.CostInvest)])
}

func TestRankExpansion(t *testing.T) {
	r := &result.Result{
		ProcessCaps: []result.ProcessCap{
			{Site: "North", Process: "Wind park", New: 30},
			{Site: "South", Process: "Photovoltaics", New: 10},
			{Site: "South", Process: "Gas plant", New: 0},
		},
	}
	ranked := RankExpansion(r)
	require.Len(t, ranked, 2, "processes without additions are dropped")
	assert.Equal(t, "Wind park", ranked[0].Process)
	assert.InDelta(t, 0.75, ranked[0].Share, 1e-9)
	assert.Equal(t, "Photovoltaics", ranked[1].Process)
	assert.InDelta(t, 0.25, ranked[1].Share, 1e-9)

	assert.Equal(t, "North/Wind park: 30.0 MW (75%)", ranked[0].Describe())
}

func TestRankExpansionEmpty(t *testing.T) {
	assert.Empty(t, RankExpansion(&result.Result{}))
}
