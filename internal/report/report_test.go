package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"energyplan/internal/plan"
	"energyplan/internal/result"
)

func sampleResult() *result.Result {
	return &result.Result{
		Scenario:  "base",
		Solver:    "simplex",
		Objective: 1000,
		DT:        1,
		Weight:    365,
		Steps:     []int{1, 2, 3},
		Costs: map[plan.CostType]float64{
			plan.CostInvest: 600,
			plan.CostFuel:   400,
		},
		ProcessCaps: []result.ProcessCap{
			{Site: "North", Process: "Wind park", Total: 12, New: 12},
			{Site: "South", Process: "Gas plant", Total: 5, New: 0},
		},
		StorageCaps: []result.StorageCap{
			{Site: "North", Storage: "Battery", Commodity: "Elec", TotalC: 8, NewC: 8, TotalP: 2, NewP: 2},
		},
		Timeseries: []result.Timeseries{
			{
				Site: "North", Com: "Elec",
				Created:      map[string][]float64{"Wind park": {4, 6, 2}},
				Demand:       []float64{3, 5, 4},
				StorageLevel: []float64{4, 5, 3},
				Charged:      []float64{1, 1, 0},
				Discharged:   []float64{0, 0, 2},
			},
			{
				Site: "South", Com: "Elec",
				Created: map[string][]float64{"Gas plant": {3, 3, 3}},
				Demand:  []float64{3, 3, 3},
			},
		},
	}
}

func TestWriteWorkbook(t *testing.T) {
	r := sampleResult()
	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, WriteWorkbook(path, r, Options{}))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	assert.Contains(t, sheets, "Costs")
	assert.Contains(t, sheets, "Process caps")
	assert.Contains(t, sheets, "Storage caps")
	assert.Contains(t, sheets, "Commodity sums")
	assert.Contains(t, sheets, "North.Elec")
	assert.Contains(t, sheets, "South.Elec")
	assert.NotContains(t, sheets, "Sheet1")
	assert.NotContains(t, sheets, "Transmission caps", "no transmission in the result")

	rows, err := f.GetRows("Costs")
	require.NoError(t, err)
	assert.Equal(t, []string{"Cost type", "EUR/a"}, rows[0])
	assert.Equal(t, "Total", rows[len(rows)-1][0])
	assert.Equal(t, "1000", rows[len(rows)-1][1])

	rows, err = f.GetRows("North.Elec")
	require.NoError(t, err)
	require.Len(t, rows, 4, "header plus three timesteps")
	assert.Contains(t, rows[0], "Wind park")
	assert.Contains(t, rows[0], "Storage level")
}

func TestWriteWorkbookFiltered(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, WriteWorkbook(path, sampleResult(), Options{Sites: []string{"North"}}))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	sheets := f.GetSheetList()
	assert.Contains(t, sheets, "North.Elec")
	assert.NotContains(t, sheets, "South.Elec")
}

func TestOptionsWants(t *testing.T) {
	ts := result.Timeseries{Site: "North", Com: "Elec"}
	assert.True(t, Options{}.Wants(ts))
	assert.True(t, Options{Sites: []string{"North"}}.Wants(ts))
	assert.False(t, Options{Sites: []string{"South"}}.Wants(ts))
	assert.False(t, Options{Commodities: []string{"Heat"}}.Wants(ts))
	assert.True(t, Options{Sites: []string{"North"}, Commodities: []string{"Elec"}}.Wants(ts))
}

func TestWriteCostsCSV(t *testing.T) {
	r := sampleResult()
	path := filepath.Join(t.TempDir(), "costs.csv")
	require.NoError(t, WriteCostsCSV(path, r))

	rows := readCSV(t, path)
	require.Len(t, rows, len(plan.CostTypes)+2)
	assert.Equal(t, []string{"cost_type", "eur_per_a"}, rows[0])
	last := rows[len(rows)-1]
	assert.Equal(t, "Total", last[0])
	assert.Equal(t, "1000.000000", last[1])
}

func TestWriteTimeseriesCSV(t *testing.T) {
	r := sampleResult()
	ts := &r.Timeseries[0]
	path := filepath.Join(t.TempDir(), CSVName(ts))
	require.NoError(t, WriteTimeseriesCSV(path, r, ts))

	rows := readCSV(t, path)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{
		"t", "created_Wind park", "demand", "storage_level", "charged", "discharged",
	}, rows[0])
	assert.Equal(t, "1", rows[1][0])
	assert.Equal(t, "4.000000", rows[1][1])
}

func TestCSVName(t *testing.T) {
	ts := &result.Timeseries{Site: "North", Com: "Elec"}
	assert.Equal(t, "timeseries-North-Elec.csv", CSVName(ts))
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}
