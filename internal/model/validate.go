package model

import (
	"errors"
	"fmt"
)

// Validate checks cross-references and value ranges of the input data.
// It is called after reading the workbook and after applying a
// scenario, so scenario typos surface before the model is built.
func (in *Input) Validate() error {
	if len(in.Sites) == 0 {
		return errors.New("no sites defined")
	}
	if len(in.Demand) == 0 {
		return errors.New("no demand time series defined")
	}

	sites := map[string]bool{}
	for _, s := range in.Sites {
		if s.Name == "" {
			return errors.New("site with empty name")
		}
		if sites[s.Name] {
			return fmt.Errorf("duplicate site %q", s.Name)
		}
		sites[s.Name] = true
	}

	commodities := map[string]bool{}
	for _, c := range in.Commodities {
		if !sites[c.Site] {
			return fmt.Errorf("commodity %s.%s: unknown site", c.Site, c.Name)
		}
		switch c.Type {
		case ComStock, ComSupIm, ComDemand, ComEnv, ComBuy, ComSell:
		default:
			return fmt.Errorf("commodity %s.%s: invalid type %q", c.Site, c.Name, c.Type)
		}
		if c.Price.IsTimeseries() {
			if _, ok := in.BuySellPrice[c.Price.Series]; !ok {
				return fmt.Errorf("commodity %s.%s: unknown price series %q",
					c.Site, c.Name, c.Price.Series)
			}
		}
		commodities[c.Name] = true
	}

	processes := map[string]bool{}
	for _, p := range in.Processes {
		if !sites[p.Site] {
			return fmt.Errorf("process %s.%s: unknown site", p.Site, p.Name)
		}
		if p.CapLo > p.CapUp {
			return fmt.Errorf("process %s.%s: cap-lo %g > cap-up %g",
				p.Site, p.Name, p.CapLo, p.CapUp)
		}
		if p.InstCap < 0 || p.CapLo < 0 {
			return fmt.Errorf("process %s.%s: negative capacity", p.Site, p.Name)
		}
		if p.MinFraction < 0 || p.MinFraction >= 1 {
			return fmt.Errorf("process %s.%s: min-fraction must be in [0, 1)", p.Site, p.Name)
		}
		processes[p.Name] = true
	}

	for _, pc := range in.ProcCom {
		if !processes[pc.Process] {
			return fmt.Errorf("process-commodity %s/%s: unknown process", pc.Process, pc.Commodity)
		}
		if !commodities[pc.Commodity] {
			return fmt.Errorf("process-commodity %s/%s: unknown commodity", pc.Process, pc.Commodity)
		}
		if pc.Direction != In && pc.Direction != Out {
			return fmt.Errorf("process-commodity %s/%s: invalid direction %q",
				pc.Process, pc.Commodity, pc.Direction)
		}
		if pc.Ratio <= 0 {
			return fmt.Errorf("process-commodity %s/%s: ratio must be > 0", pc.Process, pc.Commodity)
		}
	}

	for _, tr := range in.Transmission {
		if !sites[tr.SiteIn] || !sites[tr.SiteOut] {
			return fmt.Errorf("transmission %s (%s-%s): unknown site", tr.Name, tr.SiteIn, tr.SiteOut)
		}
		if tr.SiteIn == tr.SiteOut {
			return fmt.Errorf("transmission %s: identical end points %s", tr.Name, tr.SiteIn)
		}
		if tr.Eff <= 0 || tr.Eff > 1 {
			return fmt.Errorf("transmission %s (%s-%s): efficiency must be in (0, 1]",
				tr.Name, tr.SiteIn, tr.SiteOut)
		}
		if tr.CapLo > tr.CapUp {
			return fmt.Errorf("transmission %s (%s-%s): cap-lo > cap-up", tr.Name, tr.SiteIn, tr.SiteOut)
		}
		if !in.hasReverse(tr) {
			return fmt.Errorf("transmission %s (%s-%s): missing reverse direction entry",
				tr.Name, tr.SiteIn, tr.SiteOut)
		}
	}

	for _, st := range in.Storage {
		if !sites[st.Site] {
			return fmt.Errorf("storage %s.%s: unknown site", st.Site, st.Name)
		}
		if !commodities[st.Commodity] {
			return fmt.Errorf("storage %s.%s: unknown commodity %q", st.Site, st.Name, st.Commodity)
		}
		if st.EffIn <= 0 || st.EffIn > 1 || st.EffOut <= 0 || st.EffOut > 1 {
			return fmt.Errorf("storage %s.%s: efficiencies must be in (0, 1]", st.Site, st.Name)
		}
		if st.CapLoC > st.CapUpC || st.CapLoP > st.CapUpP {
			return fmt.Errorf("storage %s.%s: cap-lo > cap-up", st.Site, st.Name)
		}
		if st.Init < 0 || st.Init > 1 {
			return fmt.Errorf("storage %s.%s: init must be in [0, 1]", st.Site, st.Name)
		}
	}

	for _, d := range in.DSM {
		if !sites[d.Site] {
			return fmt.Errorf("dsm %s.%s: unknown site", d.Site, d.Commodity)
		}
		if d.Delay <= 0 {
			return fmt.Errorf("dsm %s.%s: delay must be > 0", d.Site, d.Commodity)
		}
		if d.Eff <= 0 || d.Eff > 1 {
			return fmt.Errorf("dsm %s.%s: efficiency must be in (0, 1]", d.Site, d.Commodity)
		}
		if d.CapMaxUp < 0 || d.CapMaxDo < 0 {
			return fmt.Errorf("dsm %s.%s: negative shift capacity", d.Site, d.Commodity)
		}
	}

	// all series must cover the same horizon
	steps := in.Timesteps()
	if steps < 2 {
		return errors.New("demand series must have at least 2 timesteps")
	}
	for key, series := range in.Demand {
		if len(series) != steps {
			return fmt.Errorf("demand %s.%s: series length %d != %d",
				key.Site, key.Com, len(series), steps)
		}
	}
	for key, series := range in.SupIm {
		if len(series) != steps {
			return fmt.Errorf("supim %s.%s: series length %d != %d",
				key.Site, key.Com, len(series), steps)
		}
		for t, v := range series {
			if v < 0 || v > 1 {
				return fmt.Errorf("supim %s.%s: capacity factor %g out of [0, 1] at t=%d",
					key.Site, key.Com, v, t)
			}
		}
	}
	for name, series := range in.BuySellPrice {
		if len(series) != steps {
			return fmt.Errorf("buy-sell-price %s: series length %d != %d", name, len(series), steps)
		}
	}
	return nil
}

func (in *Input) hasReverse(tr Transmission) bool {
	for _, other := range in.Transmission {
		if other.SiteIn == tr.SiteOut && other.SiteOut == tr.SiteIn &&
			other.Name == tr.Name && other.Commodity == tr.Commodity {
			return true
		}
	}
	return false
}
