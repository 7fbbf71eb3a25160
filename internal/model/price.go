package model

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Price is either a fixed value or a factor applied to a buy/sell
// price time series. In the input workbook a time-varying price is
// written as e.g. "1,5xBuy": factor 1.5 times the "Buy" column of the
// Buy-Sell-Price sheet.
type Price struct {
	Fixed  float64
	Factor float64
	Series string // empty: fixed price
}

// FixedPrice returns a constant price.
func FixedPrice(v float64) Price { return Price{Fixed: v} }

// IsTimeseries reports whether the price varies per timestep.
func (p Price) IsTimeseries() bool { return p.Series != "" }

// At returns the price in timestep t, given the buy/sell price series.
func (p Price) At(t int, buySell map[string][]float64) float64 {
	if p.Series == "" {
		return p.Fixed
	}
	series := buySell[p.Series]
	if t < 0 || t >= len(series) {
		return 0
	}
	return p.Factor * series[t]
}

// ParsePrice parses a price cell. Numeric cells become fixed prices.
// String cells of the form "<number>x<series>" become time-varying
// prices; the number may use either decimal comma or decimal point
// ("1,5xBuy" and "1.5xBuy" are equivalent). A missing number defaults
// to factor 1.
func ParsePrice(cell string) (Price, error) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return Price{}, nil
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return FixedPrice(v), nil
	}

	// split at the first letter: "1,5xBuy" -> "1,5" + "xBuy"
	cut := -1
	for i, r := range s {
		if unicode.IsLetter(r) {
			cut = i
			break
		}
	}
	if cut < 0 {
		return Price{}, fmt.Errorf("invalid price %q", cell)
	}
	numPart := strings.TrimSpace(s[:cut])
	series := strings.TrimPrefix(s[cut:], "x")
	series = strings.TrimSpace(series)
	if series == "" {
		return Price{}, fmt.Errorf("invalid price %q: missing series name", cell)
	}

	factor := 1.0
	if numPart != "" {
		v, err := parseDecimal(numPart)
		if err != nil {
			return Price{}, fmt.Errorf("invalid price %q: %w", cell, err)
		}
		factor = v
	}
	return Price{Factor: factor, Series: series}, nil
}

// parseDecimal accepts "1.5", "1,5" and grouped forms like "1,000.25"
// or "1.000,25".
func parseDecimal(s string) (float64, error) {
	dot := strings.Count(s, ".")
	comma := strings.Count(s, ",")
	switch {
	case comma == 0:
		return strconv.ParseFloat(s, 64)
	case dot == 0 && comma == 1:
		return strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	case strings.LastIndex(s, ".") > strings.LastIndex(s, ","):
		// comma groups thousands: 1,000.25
		return strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	default:
		// dot groups thousands: 1.000,25
		s = strings.ReplaceAll(s, ".", "")
		return strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	}
}
