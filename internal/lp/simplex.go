package lp

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	golp "gonum.org/v1/gonum/optimize/convex/lp"
)

// SimplexSolver solves problems with gonum's dense simplex
// implementation. It is exact enough for tests and short horizons;
// year-long runs should use the external GLPK backend instead, as the
// standard-form matrix is dense.
type SimplexSolver struct {
	// Tol is the pivot tolerance handed to gonum; 0 selects the default.
	Tol float64
}

func (s *SimplexSolver) Name() string { return "simplex" }

// Solve converts the problem to standard form (min c'y, Ay = b, y >= 0)
// and runs the simplex method on it.
func (s *SimplexSolver) Solve(ctx context.Context, p *Problem) (*Solution, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sf, err := toStandardForm(p)
	if err != nil {
		return nil, err
	}
	if sf.a == nil {
		// no rows survived; each variable independently sits on its
		// cheapest bound
		return solveUnconstrained(p)
	}

	_, y, err := golp.Simplex(sf.c, sf.a, sf.b, s.Tol, nil)
	switch {
	case err == nil:
	case errors.Is(err, golp.ErrInfeasible):
		return nil, ErrInfeasible
	case errors.Is(err, golp.ErrUnbounded):
		return nil, ErrUnbounded
	default:
		return nil, fmt.Errorf("lp: simplex failed: %w", err)
	}

	x := make([]float64, p.NumVariables())
	for j := range x {
		x[j] = sf.recover(j, y)
	}
	obj := 0.0
	for j, c := range p.obj {
		obj += c * x[j]
	}
	return &Solution{Objective: obj, X: x}, nil
}

func solveUnconstrained(p *Problem) (*Solution, error) {
	sol := &Solution{X: make([]float64, p.NumVariables())}
	for j := range sol.X {
		v, err := cheapestBound(p.obj[j], p.lo[j], p.hi[j])
		if err != nil {
			return nil, err
		}
		sol.X[j] = v
		sol.Objective += p.obj[j] * v
	}
	return sol, nil
}

// cheapestBound places a variable no constraint touches: on the bound
// the objective favours, ErrUnbounded if that bound is open.
func cheapestBound(c, lo, hi float64) (float64, error) {
	switch {
	case c > 0:
		if math.IsInf(lo, -1) {
			return 0, ErrUnbounded
		}
		return lo, nil
	case c < 0:
		if math.IsInf(hi, 1) {
			return 0, ErrUnbounded
		}
		return hi, nil
	case !math.IsInf(lo, -1):
		return lo, nil
	case !math.IsInf(hi, 1):
		return hi, nil
	default:
		return 0, nil
	}
}

// standardForm carries the converted program plus the mapping back to
// the original variables: x_j = offset_j + sign_j*y_{col_j}
// (+ optionally -y_{neg_j} for free variables).
type standardForm struct {
	c      []float64
	a      *mat.Dense
	b      []float64
	offset []float64
	sign   []float64
	col    []int
	neg    []int // -1 if variable is not free
}

func (sf *standardForm) recover(j int, y []float64) float64 {
	v := sf.offset[j]
	if sf.sign[j] != 0 {
		v += sf.sign[j] * y[sf.col[j]]
	}
	if sf.neg[j] >= 0 {
		v -= y[sf.neg[j]]
	}
	return v
}

type sfRow struct {
	terms []Term
	rhs   float64
}

func toStandardForm(p *Problem) (*standardForm, error) {
	n := p.NumVariables()
	sf := &standardForm{
		offset: make([]float64, n),
		sign:   make([]float64, n),
		col:    make([]int, n),
		neg:    make([]int, n),
	}

	var rows []sfRow
	cols := 0
	addCol := func(objCoef float64) int {
		sf.c = append(sf.c, objCoef)
		cols++
		return cols - 1
	}

	// columns that appear in no row would be all zeros, which the
	// simplex rejects; such variables sit on their cheapest bound
	used := make([]bool, n)
	for _, con := range p.Constraints {
		if math.IsInf(con.Lo, -1) && math.IsInf(con.Hi, 1) {
			continue
		}
		for _, t := range con.Terms {
			if t.Coef != 0 {
				used[t.Var] = true
			}
		}
	}

	// substitute each variable by a non-negative one
	for j := 0; j < n; j++ {
		lo, hi := p.lo[j], p.hi[j]
		sf.neg[j] = -1
		if lo > hi {
			return nil, fmt.Errorf("lp: variable %s: bounds [%g, %g] are empty", p.VarName(j), lo, hi)
		}
		if !used[j] {
			v, err := cheapestBound(p.obj[j], lo, hi)
			if err != nil {
				return nil, err
			}
			sf.offset[j] = v
			continue
		}
		switch {
		case !math.IsInf(lo, -1):
			// x = lo + y
			sf.offset[j], sf.sign[j] = lo, 1
			sf.col[j] = addCol(p.obj[j])
			if !math.IsInf(hi, 1) && hi > lo {
				// y + s = hi - lo
				slack := addCol(0)
				rows = append(rows, sfRow{
					terms: []Term{{sf.col[j], 1}, {slack, 1}},
					rhs:   hi - lo,
				})
			} else if hi == lo {
				rows = append(rows, sfRow{terms: []Term{{sf.col[j], 1}}, rhs: 0})
			}
		case !math.IsInf(hi, 1):
			// x = hi - y
			sf.offset[j], sf.sign[j] = hi, -1
			sf.col[j] = addCol(-p.obj[j])
		default:
			// free: x = y+ - y-
			sf.offset[j], sf.sign[j] = 0, 1
			sf.col[j] = addCol(p.obj[j])
			sf.neg[j] = addCol(-p.obj[j])
		}
	}

	// translate constraints, moving variable offsets to the right side
	for _, con := range p.Constraints {
		shift := 0.0
		terms := make([]Term, 0, len(con.Terms)+1)
		for _, t := range con.Terms {
			shift += t.Coef * sf.offset[t.Var]
			terms = append(terms, Term{sf.col[t.Var], t.Coef * sf.sign[t.Var]})
			if sf.neg[t.Var] >= 0 {
				terms = append(terms, Term{sf.neg[t.Var], -t.Coef})
			}
		}
		lo, hi := con.Lo, con.Hi
		if !math.IsInf(lo, -1) {
			lo -= shift
		}
		if !math.IsInf(hi, 1) {
			hi -= shift
		}

		switch {
		case math.IsInf(lo, -1) && math.IsInf(hi, 1):
			// vacuous
		case lo == hi:
			rows = append(rows, sfRow{terms: terms, rhs: lo})
		default:
			if !math.IsInf(hi, 1) {
				slack := addCol(0)
				row := append(append([]Term(nil), terms...), Term{slack, 1})
				rows = append(rows, sfRow{terms: row, rhs: hi})
				if !math.IsInf(lo, -1) {
					// ranged: slack is itself bounded by the range width
					extra := addCol(0)
					rows = append(rows, sfRow{
						terms: []Term{{slack, 1}, {extra, 1}},
						rhs:   hi - lo,
					})
				}
			} else {
				surplus := addCol(0)
				row := append(append([]Term(nil), terms...), Term{surplus, -1})
				rows = append(rows, sfRow{terms: row, rhs: lo})
			}
		}
	}

	m := len(rows)
	if m == 0 {
		return sf, nil
	}
	a := mat.NewDense(m, cols, nil)
	b := make([]float64, m)
	for i, row := range rows {
		for _, t := range row.terms {
			a.Set(i, t.Var, a.At(i, t.Var)+t.Coef)
		}
		b[i] = row.rhs
	}
	sf.a = a
	sf.b = b
	return sf, nil
}
