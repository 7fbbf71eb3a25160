package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"energyplan/internal/plan"
	"energyplan/internal/result"
)

// WriteCostsCSV writes one row per cost type plus the total.
func WriteCostsCSV(path string, r *result.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"cost_type", "eur_per_a"}); err != nil {
		return err
	}
	for _, ct := range plan.CostTypes {
		if err := w.Write([]string{string(ct), fmtFloat(r.Costs[ct])}); err != nil {
			return err
		}
	}
	if err := w.Write([]string{"Total", fmtFloat(r.TotalCost())}); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

// WriteTimeseriesCSV writes the hourly balance of one (site, commodity)
// pair, one row per timestep.
func WriteTimeseriesCSV(path string, r *result.Result, ts *result.Timeseries) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"t"}
	var cols [][]float64
	addCol := func(name string, series []float64) {
		if series != nil {
			header = append(header, name)
			cols = append(cols, series)
		}
	}
	for _, pro := range sortedKeys(ts.Created) {
		addCol("created_"+pro, ts.Created[pro])
	}
	for _, pro := range sortedKeys(ts.Consumed) {
		addCol("consumed_"+pro, ts.Consumed[pro])
	}
	addCol("stock", ts.Stock)
	addCol("buy", ts.Buy)
	addCol("sell", ts.Sell)
	addCol("demand", ts.Demand)
	addCol("shifted_demand", ts.ShiftedDemand)
	addCol("dsm_up", ts.DSMUp)
	addCol("dsm_down", ts.DSMDown)
	addCol("imported", ts.Imported)
	addCol("exported", ts.Exported)
	addCol("storage_level", ts.StorageLevel)
	addCol("charged", ts.Charged)
	addCol("discharged", ts.Discharged)

	if err := w.Write(header); err != nil {
		return err
	}
	row := make([]string, len(header))
	for i, t := range r.Steps {
		row[0] = strconv.Itoa(t)
		for j, col := range cols {
			row[j+1] = fmtFloat(col[i])
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// CSVName builds the ledger file name for one timeseries.
func CSVName(ts *result.Timeseries) string {
	return fmt.Sprintf("timeseries-%s-%s.csv", ts.Site, ts.Com)
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
