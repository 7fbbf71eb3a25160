// Package lp holds a general linear program in the form
//
//	minimize  c'x
//	s.t.      lo_i <= a_i'x <= hi_i   for every constraint i
//	          lb_j <= x_j   <= ub_j   for every variable j
//
// and solvers for it. The formulation layer only talks to this
// package; solver backends (built-in simplex, external GLPK) are
// selected at run time.
package lp

import (
	"context"
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInfeasible is returned when no point satisfies all constraints.
	ErrInfeasible = errors.New("lp: problem is infeasible")
	// ErrUnbounded is returned when the objective can decrease without limit.
	ErrUnbounded = errors.New("lp: problem is unbounded")
)

// Term is one coefficient of a linear expression.
type Term struct {
	Var  int
	Coef float64
}

// Expr is a linear expression built incrementally. Repeated Add calls
// for the same variable accumulate.
type Expr struct {
	terms map[int]float64
	Const float64
}

// NewExpr returns an empty linear expression.
func NewExpr() *Expr {
	return &Expr{terms: map[int]float64{}}
}

// Add accumulates coef * x_v and returns the expression for chaining.
func (e *Expr) Add(v int, coef float64) *Expr {
	if coef != 0 {
		e.terms[v] += coef
	}
	return e
}

// AddConst accumulates a constant offset.
func (e *Expr) AddConst(c float64) *Expr {
	e.Const += c
	return e
}

// Terms returns the non-zero terms in ascending variable order.
func (e *Expr) Terms() []Term {
	out := make([]Term, 0, len(e.terms))
	for v, c := range e.terms {
		if c != 0 {
			out = append(out, Term{Var: v, Coef: c})
		}
	}
	sortTerms(out)
	return out
}

func sortTerms(ts []Term) {
	// insertion sort; expressions are short
	for i := 1; i < len(ts); i++ {
		for j := i; j > 0 && ts[j-1].Var > ts[j].Var; j-- {
			ts[j-1], ts[j] = ts[j], ts[j-1]
		}
	}
}

// Constraint is a ranged linear constraint Lo <= expr <= Hi.
// Lo == Hi encodes an equality; -Inf/+Inf open one side.
type Constraint struct {
	Name  string
	Terms []Term
	Lo    float64
	Hi    float64
}

// Problem is a linear program under construction.
type Problem struct {
	Name        string
	varNames    []string
	lo, hi      []float64
	obj         []float64
	Constraints []Constraint
}

// New returns an empty problem.
func New(name string) *Problem {
	return &Problem{Name: name}
}

// AddVariable adds a bounded variable and returns its column index.
func (p *Problem) AddVariable(name string, lo, hi float64) int {
	p.varNames = append(p.varNames, name)
	p.lo = append(p.lo, lo)
	p.hi = append(p.hi, hi)
	p.obj = append(p.obj, 0)
	return len(p.varNames) - 1
}

// NumVariables returns the number of columns.
func (p *Problem) NumVariables() int { return len(p.varNames) }

// VarName returns the name of column v.
func (p *Problem) VarName(v int) string { return p.varNames[v] }

// Bounds returns the bounds of column v.
func (p *Problem) Bounds(v int) (lo, hi float64) { return p.lo[v], p.hi[v] }

// SetObjective adds coef to the objective coefficient of column v.
func (p *Problem) SetObjective(v int, coef float64) {
	p.obj[v] += coef
}

// Objective returns the objective coefficient of column v.
func (p *Problem) Objective(v int) float64 { return p.obj[v] }

// AddConstraint appends a ranged constraint built from expr.
// The expression's constant is moved to the bounds.
func (p *Problem) AddConstraint(name string, expr *Expr, lo, hi float64) error {
	if lo > hi {
		return fmt.Errorf("lp: constraint %s: lower bound %g > upper bound %g", name, lo, hi)
	}
	c := Constraint{Name: name, Terms: expr.Terms()}
	if !math.IsInf(lo, -1) {
		lo -= expr.Const
	}
	if !math.IsInf(hi, 1) {
		hi -= expr.Const
	}
	c.Lo, c.Hi = lo, hi
	p.Constraints = append(p.Constraints, c)
	return nil
}

// AddEq appends expr == rhs.
func (p *Problem) AddEq(name string, expr *Expr, rhs float64) error {
	return p.AddConstraint(name, expr, rhs, rhs)
}

// AddLe appends expr <= rhs.
func (p *Problem) AddLe(name string, expr *Expr, rhs float64) error {
	return p.AddConstraint(name, expr, math.Inf(-1), rhs)
}

// AddGe appends expr >= rhs.
func (p *Problem) AddGe(name string, expr *Expr, rhs float64) error {
	return p.AddConstraint(name, expr, rhs, math.Inf(1))
}

// Solution holds the primal values of a solved problem.
type Solution struct {
	Objective float64
	X         []float64
}

// Value returns x_v.
func (s *Solution) Value(v int) float64 {
	if v < 0 || v >= len(s.X) {
		return 0
	}
	return s.X[v]
}

// Eval computes the value of an expression at the solution point.
func (s *Solution) Eval(e *Expr) float64 {
	sum := e.Const
	for v, c := range e.terms {
		sum += c * s.Value(v)
	}
	return sum
}

// Solver solves a problem to optimality.
type Solver interface {
	Name() string
	Solve(ctx context.Context, p *Problem) (*Solution, error)
}
