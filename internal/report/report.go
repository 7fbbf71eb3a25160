// Package report renders solved scenario results to files: a summary
// workbook with cost, capacity and timeseries sheets, and flat CSV
// ledgers for spreadsheet-free postprocessing.
package report

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"energyplan/internal/plan"
	"energyplan/internal/result"
)

// Options selects which timeseries end up in the workbook. Empty
// slices select everything the result contains.
type Options struct {
	Sites       []string
	Commodities []string
}

// Wants reports whether the timeseries passes the site/commodity filter.
func (o Options) Wants(ts result.Timeseries) bool {
	return (len(o.Sites) == 0 || contains(o.Sites, ts.Site)) &&
		(len(o.Commodities) == 0 || contains(o.Commodities, ts.Com))
}

func contains(xs []string, x string) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

// WriteWorkbook writes the result summary workbook to path.
func WriteWorkbook(path string, r *result.Result, opts Options) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeCostSheet(f, r); err != nil {
		return err
	}
	if err := writeCapacitySheets(f, r); err != nil {
		return err
	}
	if err := writeCommoditySums(f, r, opts); err != nil {
		return err
	}
	for _, ts := range r.Timeseries {
		if !opts.Wants(ts) {
			continue
		}
		if err := writeTimeseriesSheet(f, r, ts); err != nil {
			return err
		}
	}

	// the default sheet is replaced by Costs
	f.DeleteSheet("Sheet1")
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("report: save %s: %w", path, err)
	}
	return nil
}

func writeCostSheet(f *excelize.File, r *result.Result) error {
	const sheet = "Costs"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("report: sheet %s: %w", sheet, err)
	}
	rows := [][]interface{}{{"Cost type", "EUR/a"}}
	for _, ct := range plan.CostTypes {
		rows = append(rows, []interface{}{string(ct), r.Costs[ct]})
	}
	rows = append(rows, []interface{}{"Total", r.TotalCost()})
	return writeRows(f, sheet, rows)
}

func writeCapacitySheets(f *excelize.File, r *result.Result) error {
	pro := [][]interface{}{{"Site", "Process", "Total MW", "New MW"}}
	for _, c := range r.ProcessCaps {
		pro = append(pro, []interface{}{c.Site, c.Process, c.Total, c.New})
	}
	if err := writeSheet(f, "Process caps", pro); err != nil {
		return err
	}

	if len(r.TransmissionCaps) > 0 {
		tra := [][]interface{}{{"Site In", "Site Out", "Transmission", "Commodity", "Total MW", "New MW"}}
		for _, c := range r.TransmissionCaps {
			tra = append(tra, []interface{}{c.SiteIn, c.SiteOut, c.Transmission, c.Commodity, c.Total, c.New})
		}
		if err := writeSheet(f, "Transmission caps", tra); err != nil {
			return err
		}
	}

	if len(r.StorageCaps) > 0 {
		sto := [][]interface{}{{"Site", "Storage", "Commodity", "Total MWh", "New MWh", "Total MW", "New MW"}}
		for _, c := range r.StorageCaps {
			sto = append(sto, []interface{}{c.Site, c.Storage, c.Commodity, c.TotalC, c.NewC, c.TotalP, c.NewP})
		}
		if err := writeSheet(f, "Storage caps", sto); err != nil {
			return err
		}
	}
	return nil
}

// writeCommoditySums writes annual energy totals per (site, commodity)
// and flow direction.
func writeCommoditySums(f *excelize.File, r *result.Result, opts Options) error {
	rows := [][]interface{}{{"Site", "Commodity", "Flow", "MWh"}}
	for _, ts := range r.Timeseries {
		if !opts.Wants(ts) {
			continue
		}
		add := func(flow string, series []float64) {
			if series != nil {
				rows = append(rows, []interface{}{ts.Site, ts.Com, flow, r.Sum(series)})
			}
		}
		for _, pro := range sortedKeys(ts.Created) {
			add("Created by "+pro, ts.Created[pro])
		}
		for _, pro := range sortedKeys(ts.Consumed) {
			add("Consumed by "+pro, ts.Consumed[pro])
		}
		add("Stock", ts.Stock)
		add("Buy", ts.Buy)
		add("Sell", ts.Sell)
		add("Demand", ts.Demand)
		add("Shifted demand", ts.ShiftedDemand)
		add("Imported", ts.Imported)
		add("Exported", ts.Exported)
		add("Charged", ts.Charged)
		add("Discharged", ts.Discharged)
	}
	return writeSheet(f, "Commodity sums", rows)
}

func writeTimeseriesSheet(f *excelize.File, r *result.Result, ts result.Timeseries) error {
	header := []interface{}{"t"}
	var cols [][]float64
	addCol := func(name string, series []float64) {
		if series != nil {
			header = append(header, name)
			cols = append(cols, series)
		}
	}
	for _, pro := range sortedKeys(ts.Created) {
		addCol(pro, ts.Created[pro])
	}
	addCol("Stock", ts.Stock)
	addCol("Buy", ts.Buy)
	addCol("Imported", ts.Imported)
	addCol("Discharged", ts.Discharged)
	for _, pro := range sortedKeys(ts.Consumed) {
		addCol("-"+pro, ts.Consumed[pro])
	}
	addCol("Sell", ts.Sell)
	addCol("Exported", ts.Exported)
	addCol("Charged", ts.Charged)
	addCol("Demand", ts.Demand)
	addCol("Shifted demand", ts.ShiftedDemand)
	addCol("Storage level", ts.StorageLevel)

	rows := [][]interface{}{header}
	for i, t := range r.Steps {
		row := make([]interface{}, 0, len(header))
		row = append(row, t)
		for _, col := range cols {
			row = append(row, col[i])
		}
		rows = append(rows, row)
	}
	return writeSheet(f, sheetName(ts.Site, ts.Com), rows)
}

// sheetName builds "<Site>.<Com>", truncated to the 31 character sheet
// name limit.
func sheetName(site, com string) string {
	name := site + "." + com
	if len(name) > 31 {
		name = name[:31]
	}
	return name
}

func writeSheet(f *excelize.File, sheet string, rows [][]interface{}) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("report: sheet %s: %w", sheet, err)
	}
	return writeRows(f, sheet, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("report: sheet %s: %w", sheet, err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("report: sheet %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func sortedKeys(m map[string][]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
