// Package excel reads model inputs from a spreadsheet workbook.
//
// The workbook layout is one sheet per input table (Site, Commodity,
// Process, Process-Commodity, Transmission, Storage, Demand, SupIm,
// Buy-Sell-Price, DSM and optionally Global). Time series sheets carry
// one column per "Site.Commodity" pair; the literal "inf" marks
// unbounded limits.
package excel

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"energyplan/internal/model"
)

// Sheet names expected in an input workbook.
const (
	SheetSite         = "Site"
	SheetCommodity    = "Commodity"
	SheetProcess      = "Process"
	SheetProcCom      = "Process-Commodity"
	SheetTransmission = "Transmission"
	SheetStorage      = "Storage"
	SheetDemand       = "Demand"
	SheetSupIm        = "SupIm"
	SheetBuySellPrice = "Buy-Sell-Price"
	SheetDSM          = "DSM"
	SheetGlobal       = "Global"
)

// Read loads a complete model input from the workbook at path.
func Read(path string) (*model.Input, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("excel: open %s: %w", path, err)
	}
	defer f.Close()
	return ReadFile(f)
}

// ReadFile loads a model input from an already opened workbook.
func ReadFile(f *excelize.File) (*model.Input, error) {
	in := &model.Input{
		Demand:       map[model.SiteCom][]float64{},
		SupIm:        map[model.SiteCom][]float64{},
		BuySellPrice: map[string][]float64{},
		Global:       map[string]float64{},
	}

	readers := []struct {
		sheet    string
		optional bool
		read     func(*table) error
	}{
		{SheetSite, false, parseSites(in)},
		{SheetCommodity, false, parseCommodities(in)},
		{SheetProcess, false, parseProcesses(in)},
		{SheetProcCom, false, parseProcCom(in)},
		{SheetTransmission, true, parseTransmission(in)},
		{SheetStorage, true, parseStorage(in)},
		{SheetDSM, true, parseDSM(in)},
		{SheetGlobal, true, parseGlobal(in)},
	}
	for _, r := range readers {
		tab, err := readTable(f, r.sheet)
		if err != nil {
			if r.optional && isMissingSheet(err) {
				continue
			}
			return nil, err
		}
		if err := r.read(tab); err != nil {
			return nil, err
		}
	}

	var err error
	if in.Demand, err = readSiteSeries(f, SheetDemand, false); err != nil {
		return nil, err
	}
	if in.SupIm, err = readSiteSeries(f, SheetSupIm, true); err != nil {
		return nil, err
	}
	if err := readPriceSeries(f, in); err != nil {
		return nil, err
	}
	return in, nil
}

// table is a sheet with case-insensitive column lookup.
type table struct {
	sheet string
	cols  map[string]int
	rows  [][]string
}

func readTable(f *excelize.File, sheet string) (*table, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("excel: sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("excel: sheet %s: missing header row", sheet)
	}
	t := &table{sheet: sheet, cols: map[string]int{}, rows: rows[1:]}
	for i, h := range rows[0] {
		key := strings.ToLower(strings.TrimSpace(h))
		if key != "" {
			t.cols[key] = i
		}
	}
	return t, nil
}

func isMissingSheet(err error) bool {
	var missing excelize.ErrSheetNotExist
	return errors.As(err, &missing)
}

// cell returns the trimmed cell under the named column, "" if absent.
func (t *table) cell(row []string, col string) string {
	i, ok := t.cols[strings.ToLower(col)]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (t *table) str(row []string, rowNo int, col string) (string, error) {
	v := t.cell(row, col)
	if v == "" {
		return "", fmt.Errorf("excel: sheet %s row %d: column %q is empty", t.sheet, rowNo, col)
	}
	return v, nil
}

// num parses a required numeric cell; "inf" parses to +Inf.
func (t *table) num(row []string, rowNo int, col string) (float64, error) {
	s, err := t.str(row, rowNo, col)
	if err != nil {
		return 0, err
	}
	v, err := parseNum(s)
	if err != nil {
		return 0, fmt.Errorf("excel: sheet %s row %d column %q: %w", t.sheet, rowNo, col, err)
	}
	return v, nil
}

// numDefault parses an optional numeric cell.
func (t *table) numDefault(row []string, rowNo int, col string, def float64) (float64, error) {
	s := t.cell(row, col)
	if s == "" {
		return def, nil
	}
	v, err := parseNum(s)
	if err != nil {
		return 0, fmt.Errorf("excel: sheet %s row %d column %q: %w", t.sheet, rowNo, col, err)
	}
	return v, nil
}

func parseNum(s string) (float64, error) {
	switch strings.ToLower(s) {
	case "inf", "+inf", "infinity":
		return math.Inf(1), nil
	case "-inf":
		return math.Inf(-1), nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	return v, nil
}

// each calls fn once per non-empty data row with its 1-based workbook
// row number.
func (t *table) each(fn func(row []string, rowNo int) error) error {
	for i, row := range t.rows {
		empty := true
		for _, c := range row {
			if strings.TrimSpace(c) != "" {
				empty = false
				break
			}
		}
		if empty {
			continue
		}
		if err := fn(row, i+2); err != nil {
			return err
		}
	}
	return nil
}

func parseSites(in *model.Input) func(*table) error {
	return func(t *table) error {
		return t.each(func(row []string, no int) error {
			name, err := t.str(row, no, "Site")
			if err != nil {
				return err
			}
			area, err := t.numDefault(row, no, "area", -1)
			if err != nil {
				return err
			}
			in.Sites = append(in.Sites, model.Site{Name: name, Area: area})
			return nil
		})
	}
}

func parseCommodities(in *model.Input) func(*table) error {
	return func(t *table) error {
		return t.each(func(row []string, no int) error {
			site, err := t.str(row, no, "Site")
			if err != nil {
				return err
			}
			name, err := t.str(row, no, "Commodity")
			if err != nil {
				return err
			}
			typ, err := t.str(row, no, "Type")
			if err != nil {
				return err
			}
			price, err := model.ParsePrice(t.cell(row, "price"))
			if err != nil {
				return fmt.Errorf("excel: sheet %s row %d: %w", t.sheet, no, err)
			}
			max, err := t.numDefault(row, no, "max", math.Inf(1))
			if err != nil {
				return err
			}
			maxPerStep, err := t.numDefault(row, no, "maxperstep", math.Inf(1))
			if err != nil {
				return err
			}
			in.Commodities = append(in.Commodities, model.Commodity{
				Site:       site,
				Name:       name,
				Type:       model.ComType(typ),
				Price:      price,
				Max:        max,
				MaxPerStep: maxPerStep,
			})
			return nil
		})
	}
}

func parseProcesses(in *model.Input) func(*table) error {
	return func(t *table) error {
		return t.each(func(row []string, no int) error {
			site, err := t.str(row, no, "Site")
			if err != nil {
				return err
			}
			name, err := t.str(row, no, "Process")
			if err != nil {
				return err
			}
			p := model.Process{Site: site, Name: name}
			fields := []struct {
				col string
				dst *float64
				def float64
			}{
				{"inst-cap", &p.InstCap, 0},
				{"cap-lo", &p.CapLo, 0},
				{"cap-up", &p.CapUp, math.Inf(1)},
				{"max-grad", &p.MaxGrad, math.Inf(1)},
				{"min-fraction", &p.MinFraction, 0},
				{"inv-cost", &p.InvCost, 0},
				{"fix-cost", &p.FixCost, 0},
				{"var-cost", &p.VarCost, 0},
				{"startup-cost", &p.StartupCost, 0},
				{"wacc", &p.WACC, 0},
				{"depreciation", &p.Depreciation, 1},
				{"area-per-cap", &p.AreaPerCap, -1},
			}
			for _, f := range fields {
				if *f.dst, err = t.numDefault(row, no, f.col, f.def); err != nil {
					return err
				}
			}
			in.Processes = append(in.Processes, p)
			return nil
		})
	}
}

func parseProcCom(in *model.Input) func(*table) error {
	return func(t *table) error {
		return t.each(func(row []string, no int) error {
			pro, err := t.str(row, no, "Process")
			if err != nil {
				return err
			}
			com, err := t.str(row, no, "Commodity")
			if err != nil {
				return err
			}
			dir, err := t.str(row, no, "Direction")
			if err != nil {
				return err
			}
			ratio, err := t.num(row, no, "ratio")
			if err != nil {
				return err
			}
			ratioMin, err := t.numDefault(row, no, "ratio-min", 0)
			if err != nil {
				return err
			}
			pc := model.ProcCom{
				Process:   pro,
				Commodity: com,
				Ratio:     ratio,
				RatioMin:  ratioMin,
			}
			switch strings.ToLower(dir) {
			case "in":
				pc.Direction = model.In
			case "out":
				pc.Direction = model.Out
			default:
				return fmt.Errorf("excel: sheet %s row %d: direction %q is neither In nor Out",
					t.sheet, no, dir)
			}
			in.ProcCom = append(in.ProcCom, pc)
			return nil
		})
	}
}

func parseTransmission(in *model.Input) func(*table) error {
	return func(t *table) error {
		return t.each(func(row []string, no int) error {
			siteIn, err := t.str(row, no, "Site In")
			if err != nil {
				return err
			}
			siteOut, err := t.str(row, no, "Site Out")
			if err != nil {
				return err
			}
			name, err := t.str(row, no, "Transmission")
			if err != nil {
				return err
			}
			com, err := t.str(row, no, "Commodity")
			if err != nil {
				return err
			}
			tr := model.Transmission{SiteIn: siteIn, SiteOut: siteOut, Name: name, Commodity: com}
			fields := []struct {
				col string
				dst *float64
				def float64
			}{
				{"eff", &tr.Eff, 1},
				{"inst-cap", &tr.InstCap, 0},
				{"cap-lo", &tr.CapLo, 0},
				{"cap-up", &tr.CapUp, math.Inf(1)},
				{"inv-cost", &tr.InvCost, 0},
				{"fix-cost", &tr.FixCost, 0},
				{"var-cost", &tr.VarCost, 0},
				{"wacc", &tr.WACC, 0},
				{"depreciation", &tr.Depreciation, 1},
			}
			for _, f := range fields {
				if *f.dst, err = t.numDefault(row, no, f.col, f.def); err != nil {
					return err
				}
			}
			in.Transmission = append(in.Transmission, tr)
			return nil
		})
	}
}

func parseStorage(in *model.Input) func(*table) error {
	return func(t *table) error {
		return t.each(func(row []string, no int) error {
			site, err := t.str(row, no, "Site")
			if err != nil {
				return err
			}
			name, err := t.str(row, no, "Storage")
			if err != nil {
				return err
			}
			com, err := t.str(row, no, "Commodity")
			if err != nil {
				return err
			}
			st := model.Storage{Site: site, Name: name, Commodity: com}
			fields := []struct {
				col string
				dst *float64
				def float64
			}{
				{"eff-in", &st.EffIn, 1},
				{"eff-out", &st.EffOut, 1},
				{"inst-cap-c", &st.InstCapC, 0},
				{"cap-lo-c", &st.CapLoC, 0},
				{"cap-up-c", &st.CapUpC, math.Inf(1)},
				{"inst-cap-p", &st.InstCapP, 0},
				{"cap-lo-p", &st.CapLoP, 0},
				{"cap-up-p", &st.CapUpP, math.Inf(1)},
				{"inv-cost-c", &st.InvCostC, 0},
				{"fix-cost-c", &st.FixCostC, 0},
				{"var-cost-c", &st.VarCostC, 0},
				{"inv-cost-p", &st.InvCostP, 0},
				{"fix-cost-p", &st.FixCostP, 0},
				{"var-cost-p", &st.VarCostP, 0},
				{"wacc", &st.WACC, 0},
				{"depreciation", &st.Depreciation, 1},
				{"init", &st.Init, 0},
			}
			for _, f := range fields {
				if *f.dst, err = t.numDefault(row, no, f.col, f.def); err != nil {
					return err
				}
			}
			in.Storage = append(in.Storage, st)
			return nil
		})
	}
}

func parseDSM(in *model.Input) func(*table) error {
	return func(t *table) error {
		return t.each(func(row []string, no int) error {
			site, err := t.str(row, no, "Site")
			if err != nil {
				return err
			}
			com, err := t.str(row, no, "Commodity")
			if err != nil {
				return err
			}
			delay, err := t.num(row, no, "delay")
			if err != nil {
				return err
			}
			eff, err := t.numDefault(row, no, "eff", 1)
			if err != nil {
				return err
			}
			up, err := t.num(row, no, "cap-max-up")
			if err != nil {
				return err
			}
			do, err := t.num(row, no, "cap-max-do")
			if err != nil {
				return err
			}
			recovery, err := t.numDefault(row, no, "recovery", 0)
			if err != nil {
				return err
			}
			in.DSM = append(in.DSM, model.DSM{
				Site:      site,
				Commodity: com,
				Delay:     int(delay),
				Eff:       eff,
				CapMaxUp:  up,
				CapMaxDo:  do,
				Recovery:  int(recovery),
			})
			return nil
		})
	}
}

func parseGlobal(in *model.Input) func(*table) error {
	return func(t *table) error {
		return t.each(func(row []string, no int) error {
			name, err := t.str(row, no, "Name")
			if err != nil {
				return err
			}
			value, err := t.num(row, no, "Value")
			if err != nil {
				return err
			}
			in.Global[name] = value
			return nil
		})
	}
}

// readSiteSeries reads a time series sheet whose columns are named
// "Site.Commodity". The first column is the timestep number and is
// only checked for monotonicity.
func readSiteSeries(f *excelize.File, sheet string, optional bool) (map[model.SiteCom][]float64, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		if optional && isMissingSheet(err) {
			return map[model.SiteCom][]float64{}, nil
		}
		return nil, fmt.Errorf("excel: sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("excel: sheet %s: missing header row", sheet)
	}

	type column struct {
		idx int
		key model.SiteCom
	}
	var cols []column
	for i, h := range rows[0] {
		h = strings.TrimSpace(h)
		if i == 0 || h == "" {
			continue
		}
		site, com, ok := strings.Cut(h, ".")
		if !ok {
			return nil, fmt.Errorf("excel: sheet %s: column %q is not of the form Site.Commodity",
				sheet, h)
		}
		cols = append(cols, column{idx: i, key: model.SiteCom{
			Site: strings.TrimSpace(site),
			Com:  strings.TrimSpace(com),
		}})
	}

	out := make(map[model.SiteCom][]float64, len(cols))
	for _, c := range cols {
		out[c.key] = make([]float64, 0, len(rows)-1)
	}
	for r, row := range rows[1:] {
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		for _, c := range cols {
			cell := ""
			if c.idx < len(row) {
				cell = strings.TrimSpace(row[c.idx])
			}
			v := 0.0
			if cell != "" {
				if v, err = parseNum(cell); err != nil {
					return nil, fmt.Errorf("excel: sheet %s row %d column %s.%s: %w",
						sheet, r+2, c.key.Site, c.key.Com, err)
				}
			}
			out[c.key] = append(out[c.key], v)
		}
	}
	return out, nil
}

// readPriceSeries reads the Buy-Sell-Price sheet; columns are named
// after the price series they define ("Buy", "Sell", ...).
func readPriceSeries(f *excelize.File, in *model.Input) error {
	rows, err := f.GetRows(SheetBuySellPrice)
	if err != nil {
		if isMissingSheet(err) {
			return nil
		}
		return fmt.Errorf("excel: sheet %s: %w", SheetBuySellPrice, err)
	}
	if len(rows) == 0 {
		return nil
	}
	for i, h := range rows[0] {
		h = strings.TrimSpace(h)
		if i == 0 || h == "" {
			continue
		}
		series := make([]float64, 0, len(rows)-1)
		for r, row := range rows[1:] {
			if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
				continue
			}
			cell := ""
			if i < len(row) {
				cell = strings.TrimSpace(row[i])
			}
			v := 0.0
			if cell != "" {
				if v, err = parseNum(cell); err != nil {
					return fmt.Errorf("excel: sheet %s row %d column %q: %w",
						SheetBuySellPrice, r+2, h, err)
				}
			}
			series = append(series, v)
		}
		in.BuySellPrice[h] = series
	}
	return nil
}
