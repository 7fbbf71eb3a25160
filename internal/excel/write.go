package excel

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/xuri/excelize/v2"

	"energyplan/internal/model"
)

// Write saves a model input as a workbook in the documented sheet
// layout, the inverse of Read. Used for the bundled example and for
// round-trip tests.
func Write(path string, in *model.Input) error {
	f := excelize.NewFile()
	defer f.Close()

	sheets := []struct {
		name string
		rows [][]interface{}
		skip bool
	}{
		{name: SheetSite, rows: siteRows(in)},
		{name: SheetCommodity, rows: commodityRows(in)},
		{name: SheetProcess, rows: processRows(in)},
		{name: SheetProcCom, rows: procComRows(in)},
		{name: SheetTransmission, rows: transmissionRows(in), skip: len(in.Transmission) == 0},
		{name: SheetStorage, rows: storageRows(in), skip: len(in.Storage) == 0},
		{name: SheetDemand, rows: seriesRows(in.Demand, in.Timesteps())},
		{name: SheetSupIm, rows: seriesRows(in.SupIm, in.Timesteps()), skip: len(in.SupIm) == 0},
		{name: SheetBuySellPrice, rows: priceRows(in), skip: len(in.BuySellPrice) == 0},
		{name: SheetDSM, rows: dsmRows(in), skip: len(in.DSM) == 0},
		{name: SheetGlobal, rows: globalRows(in), skip: len(in.Global) == 0},
	}
	for _, s := range sheets {
		if s.skip {
			continue
		}
		if _, err := f.NewSheet(s.name); err != nil {
			return fmt.Errorf("excel: sheet %s: %w", s.name, err)
		}
		for i, row := range s.rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			if err != nil {
				return fmt.Errorf("excel: sheet %s: %w", s.name, err)
			}
			if err := f.SetSheetRow(s.name, cell, &row); err != nil {
				return fmt.Errorf("excel: sheet %s row %d: %w", s.name, i+1, err)
			}
		}
	}
	f.DeleteSheet("Sheet1")
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("excel: save %s: %w", path, err)
	}
	return nil
}

// cellNum renders a number the way Read parses it back.
func cellNum(v float64) interface{} {
	if math.IsInf(v, 1) {
		return "inf"
	}
	if math.IsInf(v, -1) {
		return "-inf"
	}
	return v
}

func cellPrice(p model.Price) interface{} {
	if p.IsTimeseries() {
		return strconv.FormatFloat(p.Factor, 'g', -1, 64) + "x" + p.Series
	}
	return p.Fixed
}

func siteRows(in *model.Input) [][]interface{} {
	rows := [][]interface{}{{"Site", "area"}}
	for _, s := range in.Sites {
		rows = append(rows, []interface{}{s.Name, cellNum(s.Area)})
	}
	return rows
}

func commodityRows(in *model.Input) [][]interface{} {
	rows := [][]interface{}{{"Site", "Commodity", "Type", "price", "max", "maxperstep"}}
	for _, c := range in.Commodities {
		rows = append(rows, []interface{}{
			c.Site, c.Name, string(c.Type), cellPrice(c.Price), cellNum(c.Max), cellNum(c.MaxPerStep),
		})
	}
	return rows
}

func processRows(in *model.Input) [][]interface{} {
	rows := [][]interface{}{{
		"Site", "Process", "inst-cap", "cap-lo", "cap-up", "max-grad", "min-fraction",
		"inv-cost", "fix-cost", "var-cost", "startup-cost", "wacc", "depreciation", "area-per-cap",
	}}
	for _, p := range in.Processes {
		rows = append(rows, []interface{}{
			p.Site, p.Name, cellNum(p.InstCap), cellNum(p.CapLo), cellNum(p.CapUp),
			cellNum(p.MaxGrad), p.MinFraction, p.InvCost, p.FixCost, p.VarCost,
			p.StartupCost, p.WACC, p.Depreciation, cellNum(p.AreaPerCap),
		})
	}
	return rows
}

func procComRows(in *model.Input) [][]interface{} {
	rows := [][]interface{}{{"Process", "Commodity", "Direction", "ratio", "ratio-min"}}
	for _, pc := range in.ProcCom {
		rows = append(rows, []interface{}{
			pc.Process, pc.Commodity, string(pc.Direction), pc.Ratio, pc.RatioMin,
		})
	}
	return rows
}

func transmissionRows(in *model.Input) [][]interface{} {
	rows := [][]interface{}{{
		"Site In", "Site Out", "Transmission", "Commodity", "eff",
		"inst-cap", "cap-lo", "cap-up", "inv-cost", "fix-cost", "var-cost", "wacc", "depreciation",
	}}
	for _, t := range in.Transmission {
		rows = append(rows, []interface{}{
			t.SiteIn, t.SiteOut, t.Name, t.Commodity, t.Eff,
			cellNum(t.InstCap), cellNum(t.CapLo), cellNum(t.CapUp),
			t.InvCost, t.FixCost, t.VarCost, t.WACC, t.Depreciation,
		})
	}
	return rows
}

func storageRows(in *model.Input) [][]interface{} {
	rows := [][]interface{}{{
		"Site", "Storage", "Commodity", "eff-in", "eff-out",
		"inst-cap-c", "cap-lo-c", "cap-up-c", "inst-cap-p", "cap-lo-p", "cap-up-p",
		"inv-cost-c", "fix-cost-c", "var-cost-c", "inv-cost-p", "fix-cost-p", "var-cost-p",
		"wacc", "depreciation", "init",
	}}
	for _, s := range in.Storage {
		rows = append(rows, []interface{}{
			s.Site, s.Name, s.Commodity, s.EffIn, s.EffOut,
			cellNum(s.InstCapC), cellNum(s.CapLoC), cellNum(s.CapUpC),
			cellNum(s.InstCapP), cellNum(s.CapLoP), cellNum(s.CapUpP),
			s.InvCostC, s.FixCostC, s.VarCostC, s.InvCostP, s.FixCostP, s.VarCostP,
			s.WACC, s.Depreciation, s.Init,
		})
	}
	return rows
}

func dsmRows(in *model.Input) [][]interface{} {
	rows := [][]interface{}{{"Site", "Commodity", "delay", "eff", "cap-max-up", "cap-max-do", "recovery"}}
	for _, d := range in.DSM {
		rows = append(rows, []interface{}{
			d.Site, d.Commodity, d.Delay, d.Eff, d.CapMaxUp, d.CapMaxDo, d.Recovery,
		})
	}
	return rows
}

func globalRows(in *model.Input) [][]interface{} {
	rows := [][]interface{}{{"Name", "Value"}}
	for name, v := range in.Global {
		rows = append(rows, []interface{}{name, cellNum(v)})
	}
	return rows
}

func seriesRows(m map[model.SiteCom][]float64, steps int) [][]interface{} {
	keys := make([]model.SiteCom, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Site != keys[j].Site {
			return keys[i].Site < keys[j].Site
		}
		return keys[i].Com < keys[j].Com
	})

	header := []interface{}{"t"}
	for _, k := range keys {
		header = append(header, k.Site+"."+k.Com)
	}
	rows := [][]interface{}{header}
	for t := 0; t < steps; t++ {
		row := []interface{}{t}
		for _, k := range keys {
			row = append(row, m[k][t])
		}
		rows = append(rows, row)
	}
	return rows
}

func priceRows(in *model.Input) [][]interface{} {
	names := make([]string, 0, len(in.BuySellPrice))
	for name := range in.BuySellPrice {
		names = append(names, name)
	}
	sort.Strings(names)

	header := []interface{}{"t"}
	for _, name := range names {
		header = append(header, name)
	}
	rows := [][]interface{}{header}
	for t := 0; t < in.Timesteps(); t++ {
		row := []interface{}{t}
		for _, name := range names {
			row = append(row, in.BuySellPrice[name][t])
		}
		rows = append(rows, row)
	}
	return rows
}
