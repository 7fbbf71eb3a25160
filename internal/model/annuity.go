package model

import "math"

// AnnuityFactor converts an investment into equivalent annual payments
// over the depreciation period n (years) at interest rate i
// (0.06 means 6 %): (1+i)^n * i / ((1+i)^n - 1).
// For i == 0 the factor degenerates to straight-line depreciation 1/n.
func AnnuityFactor(n, i float64) float64 {
	if n <= 0 {
		return 0
	}
	if i == 0 {
		return 1 / n
	}
	q := math.Pow(1+i, n)
	return q * i / (q - 1)
}

// Annuity returns the annuity factor for a process.
func (p Process) Annuity() float64 { return AnnuityFactor(p.Depreciation, p.WACC) }

// Annuity returns the annuity factor for a transmission link.
func (t Transmission) Annuity() float64 { return AnnuityFactor(t.Depreciation, t.WACC) }

// Annuity returns the annuity factor for a storage unit.
func (s Storage) Annuity() float64 { return AnnuityFactor(s.Depreciation, s.WACC) }
