// Package chart renders interactive HTML plots of solved scenarios:
// a stacked energy balance per (site, commodity) pair with the demand
// curve on top, and the storage level over time.
package chart

import (
	"fmt"
	"hash/fnv"
	"os"
	"sort"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"energyplan/internal/result"
)

// colors maps well-known technology and flow names to plot colors;
// unknown names get a stable color derived from their hash.
var colors = map[string]string{
	"Biomass plant":    "#00b300",
	"Coal plant":       "#666666",
	"Gas plant":        "#b2b200",
	"Gud plant":        "#cc9900",
	"Hydro plant":      "#0066cc",
	"Lignite plant":    "#7f3f0f",
	"Photovoltaics":    "#ffcc00",
	"Slack powerplant": "#ff0000",
	"Wind park":        "#66c2ff",
	"Stock":            "#b29979",
	"Buy":              "#70bd99",
	"Sell":             "#cc2929",
	"Imported":         "#5c7bd9",
	"Exported":         "#8a5cd9",
	"Discharged":       "#9b71c2",
	"Charged":          "#9b71c2",
	"Demand":           "#000000",
	"Shifted demand":   "#404040",
	"Storage level":    "#9b71c2",
}

func colorFor(name string) string {
	if c, ok := colors[name]; ok {
		return c
	}
	h := fnv.New32a()
	h.Write([]byte(name))
	v := h.Sum32()
	// spread over a muted palette; avoid very dark and very light tones
	r := 64 + (v>>16)&0x7f
	g := 64 + (v>>8)&0x7f
	b := 64 + v&0x7f
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

// Write renders the plot page for one timeseries to path.
func Write(path string, r *result.Result, ts *result.Timeseries) error {
	page := components.NewPage()
	page.PageTitle = fmt.Sprintf("%s.%s", ts.Site, ts.Com)

	page.AddCharts(balanceChart(r, ts))
	if ts.StorageLevel != nil {
		page.AddCharts(storageChart(r, ts))
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("chart: create %s: %w", path, err)
	}
	defer f.Close()
	if err := page.Render(f); err != nil {
		return fmt.Errorf("chart: render %s: %w", path, err)
	}
	return f.Close()
}

func xAxis(r *result.Result) []string {
	x := make([]string, len(r.Steps))
	for i, t := range r.Steps {
		x[i] = strconv.Itoa(t)
	}
	return x
}

// balanceChart stacks all supplying flows as areas and overlays the
// demand curve.
func balanceChart(r *result.Result, ts *result.Timeseries) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("Energy balance %s.%s", ts.Site, ts.Com),
			Subtitle: "MW per timestep",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
		charts.WithInitializationOpts(opts.Initialization{Width: "1200px", Height: "500px"}),
	)
	line.SetXAxis(xAxis(r))

	stacked := func(name string, series []float64) {
		if series == nil {
			return
		}
		line.AddSeries(name, lineData(series),
			charts.WithLineChartOpts(opts.LineChart{Stack: "supply"}),
			charts.WithAreaStyleOpts(opts.AreaStyle{Opacity: 0.7}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: colorFor(name)}),
		)
	}
	for _, pro := range sortedKeys(ts.Created) {
		stacked(pro, ts.Created[pro])
	}
	stacked("Stock", ts.Stock)
	stacked("Buy", ts.Buy)
	stacked("Imported", ts.Imported)
	stacked("Discharged", ts.Discharged)

	demand := ts.ShiftedDemand
	name := "Shifted demand"
	if demand == nil {
		demand, name = ts.Demand, "Demand"
	}
	if demand != nil {
		line.AddSeries(name, lineData(demand),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: colorFor(name)}),
		)
	}
	return line
}

func storageChart(r *result.Result, ts *result.Timeseries) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("Storage level %s.%s", ts.Site, ts.Com),
			Subtitle: "MWh per timestep",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
		charts.WithInitializationOpts(opts.Initialization{Width: "1200px", Height: "300px"}),
	)
	line.SetXAxis(xAxis(r))
	line.AddSeries("Storage level", lineData(ts.StorageLevel),
		charts.WithAreaStyleOpts(opts.AreaStyle{Opacity: 0.4}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: colorFor("Storage level")}),
	)
	return line
}

func lineData(series []float64) []opts.LineData {
	out := make([]opts.LineData, len(series))
	for i, v := range series {
		out[i] = opts.LineData{Value: v}
	}
	return out
}

func sortedKeys(m map[string][]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// HTMLName builds the plot file name for one timeseries.
func HTMLName(ts *result.Timeseries) string {
	return fmt.Sprintf("chart-%s-%s.html", ts.Site, ts.Com)
}
