// Package scenario applies named input variations before solving, so
// one workbook can be optimised under several assumptions (scaled fuel
// prices, tightened emission caps, forced capacity limits) and the
// outcomes compared.
package scenario

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"energyplan/internal/model"
)

// Scenario is one named input variation. All override lists may be
// empty; the zero scenario leaves the input unchanged.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`

	// StockPriceFactor scales the price of every stock commodity;
	// 0 means unchanged.
	StockPriceFactor float64 `yaml:"stockPriceFactor,omitempty"`

	// Global sets model-wide values by name, e.g. "CO2 limit".
	Global map[string]float64 `yaml:"global,omitempty"`

	Commodities []CommodityOverride `yaml:"commodities,omitempty"`
	Processes   []ProcessOverride   `yaml:"processes,omitempty"`
	Storages    []StorageOverride   `yaml:"storages,omitempty"`
}

// CommodityOverride changes one commodity. Site "" matches the
// commodity at every site. Nil fields stay unchanged.
type CommodityOverride struct {
	Site       string   `yaml:"site,omitempty"`
	Commodity  string   `yaml:"commodity"`
	Price      *string  `yaml:"price,omitempty"`
	Max        *float64 `yaml:"max,omitempty"`
	MaxPerStep *float64 `yaml:"maxPerStep,omitempty"`
}

// ProcessOverride changes one process. Site "" matches every site.
type ProcessOverride struct {
	Site    string   `yaml:"site,omitempty"`
	Process string   `yaml:"process"`
	InstCap *float64 `yaml:"instCap,omitempty"`
	CapLo   *float64 `yaml:"capLo,omitempty"`
	CapUp   *float64 `yaml:"capUp,omitempty"`
	InvCost *float64 `yaml:"invCost,omitempty"`
	FixCost *float64 `yaml:"fixCost,omitempty"`
	VarCost *float64 `yaml:"varCost,omitempty"`
}

// StorageOverride changes one storage unit. Site "" matches every site.
type StorageOverride struct {
	Site     string   `yaml:"site,omitempty"`
	Storage  string   `yaml:"storage"`
	CapUpC   *float64 `yaml:"capUpC,omitempty"`
	CapUpP   *float64 `yaml:"capUpP,omitempty"`
	InvCostC *float64 `yaml:"invCostC,omitempty"`
	InvCostP *float64 `yaml:"invCostP,omitempty"`
	Init     *float64 `yaml:"init,omitempty"`
}

// Base is the unmodified input.
func Base() Scenario { return Scenario{Name: "base"} }

// Load reads a scenario list from a YAML file.
func Load(path string) ([]Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scenario: read %s: %w", path, err)
	}
	var file struct {
		Scenarios []Scenario `yaml:"scenarios"`
	}
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("scenario: parse %s: %w", path, err)
	}
	if len(file.Scenarios) == 0 {
		return nil, fmt.Errorf("scenario: %s defines no scenarios", path)
	}
	seen := map[string]bool{}
	for i, sc := range file.Scenarios {
		if sc.Name == "" {
			return nil, fmt.Errorf("scenario: %s: scenario %d has no name", path, i+1)
		}
		if seen[sc.Name] {
			return nil, fmt.Errorf("scenario: %s: duplicate scenario %q", path, sc.Name)
		}
		seen[sc.Name] = true
	}
	return file.Scenarios, nil
}

// Apply returns a copy of the input with all overrides applied.
// Overrides that match nothing are reported as errors, since a silently
// ignored scenario knob is worse than a failing run.
func (s Scenario) Apply(in *model.Input) (*model.Input, error) {
	out := in.Clone()

	if s.StockPriceFactor != 0 {
		for i := range out.Commodities {
			c := &out.Commodities[i]
			if c.Type == model.ComStock && !c.Price.IsTimeseries() {
				c.Price = model.FixedPrice(c.Price.Fixed * s.StockPriceFactor)
			}
		}
	}

	for name, v := range s.Global {
		out.Global[name] = v
	}

	for _, o := range s.Commodities {
		matched := false
		for i := range out.Commodities {
			c := &out.Commodities[i]
			if c.Name != o.Commodity || (o.Site != "" && c.Site != o.Site) {
				continue
			}
			matched = true
			if o.Price != nil {
				price, err := model.ParsePrice(*o.Price)
				if err != nil {
					return nil, fmt.Errorf("scenario %s: commodity %s: %w", s.Name, o.Commodity, err)
				}
				c.Price = price
			}
			setIf(&c.Max, o.Max)
			setIf(&c.MaxPerStep, o.MaxPerStep)
		}
		if !matched {
			return nil, fmt.Errorf("scenario %s: commodity %s at site %q not found",
				s.Name, o.Commodity, o.Site)
		}
	}

	for _, o := range s.Processes {
		matched := false
		for i := range out.Processes {
			p := &out.Processes[i]
			if p.Name != o.Process || (o.Site != "" && p.Site != o.Site) {
				continue
			}
			matched = true
			setIf(&p.InstCap, o.InstCap)
			setIf(&p.CapLo, o.CapLo)
			setIf(&p.CapUp, o.CapUp)
			setIf(&p.InvCost, o.InvCost)
			setIf(&p.FixCost, o.FixCost)
			setIf(&p.VarCost, o.VarCost)
		}
		if !matched {
			return nil, fmt.Errorf("scenario %s: process %s at site %q not found",
				s.Name, o.Process, o.Site)
		}
	}

	for _, o := range s.Storages {
		matched := false
		for i := range out.Storage {
			st := &out.Storage[i]
			if st.Name != o.Storage || (o.Site != "" && st.Site != o.Site) {
				continue
			}
			matched = true
			setIf(&st.CapUpC, o.CapUpC)
			setIf(&st.CapUpP, o.CapUpP)
			setIf(&st.InvCostC, o.InvCostC)
			setIf(&st.InvCostP, o.InvCostP)
			setIf(&st.Init, o.Init)
		}
		if !matched {
			return nil, fmt.Errorf("scenario %s: storage %s at site %q not found",
				s.Name, o.Storage, o.Site)
		}
	}

	return out, nil
}

func setIf(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}
