// Package analysis compares solved scenarios: cost breakdowns side by
// side and capacity expansion ranked by technology.
package analysis

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"

	"energyplan/internal/plan"
	"energyplan/internal/result"
)

// Comparison is the cost breakdown of several scenarios side by side.
type Comparison struct {
	Scenarios []string
	// Costs[ct][i] is the cost of type ct in scenario i, EUR/a.
	Costs  map[plan.CostType][]float64
	Totals []float64
}

// Compare builds a cost comparison across scenario results.
func Compare(results []*result.Result) *Comparison {
	c := &Comparison{Costs: map[plan.CostType][]float64{}}
	for _, r := range results {
		c.Scenarios = append(c.Scenarios, r.Scenario)
		c.Totals = append(c.Totals, r.TotalCost())
		for _, ct := range plan.CostTypes {
			c.Costs[ct] = append(c.Costs[ct], r.Costs[ct])
		}
	}
	return c
}

// Cheapest returns the index of the scenario with the lowest total
// cost, -1 for an empty comparison.
func (c *Comparison) Cheapest() int {
	best := -1
	for i, total := range c.Totals {
		if best < 0 || total < c.Totals[best] {
			best = i
		}
	}
	return best
}

// WriteComparisonCSV writes one row per cost type with one column per
// scenario, followed by the totals row.
func WriteComparisonCSV(path string, results []*result.Result) error {
	c := Compare(results)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := append([]string{"cost_type"}, c.Scenarios...)
	if err := w.Write(header); err != nil {
		return err
	}
	row := make([]string, len(header))
	for _, ct := range plan.CostTypes {
		row[0] = string(ct)
		for i, v := range c.Costs[ct] {
			row[i+1] = fmtFloat(v)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	row[0] = "Total"
	for i, v := range c.Totals {
		row[i+1] = fmtFloat(v)
	}
	if err := w.Write(row); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

// RankedExpansion is one technology's capacity addition in a scenario.
type RankedExpansion struct {
	Site    string
	Process string
	New     float64 // MW
	Share   float64 // fraction of all new capacity
}

// RankExpansion sorts process capacity additions descending, largest
// builds first. Processes without additions are dropped.
func RankExpansion(r *result.Result) []RankedExpansion {
	total := 0.0
	for _, c := range r.ProcessCaps {
		total += c.New
	}
	var out []RankedExpansion
	for _, c := range r.ProcessCaps {
		if c.New <= 0 {
			continue
		}
		e := RankedExpansion{Site: c.Site, Process: c.Process, New: c.New}
		if total > 0 {
			e.Share = c.New / total
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].New != out[j].New {
			return out[i].New > out[j].New
		}
		return out[i].Site+out[i].Process < out[j].Site+out[j].Process
	})
	return out
}

// Describe formats one ranked expansion for log output.
func (e RankedExpansion) Describe() string {
	return fmt.Sprintf("%s/%s: %.1f MW (%.0f%%)", e.Site, e.Process, e.New, e.Share*100)
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
