package lp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExprAccumulates(t *testing.T) {
	e := NewExpr().Add(0, 1).Add(1, 2).Add(0, 2.5)
	e.AddConst(3)

	terms := e.Terms()
	require.Len(t, terms, 2)
	assert.Equal(t, Term{Var: 0, Coef: 3.5}, terms[0])
	assert.Equal(t, Term{Var: 1, Coef: 2}, terms[1])
	assert.Equal(t, 3.0, e.Const)

	// cancelling coefficients drop out
	e.Add(1, -2)
	assert.Len(t, e.Terms(), 1)
}

func TestProblemBuild(t *testing.T) {
	p := New("test")
	x := p.AddVariable("x", 0, 10)
	y := p.AddVariable("y", math.Inf(-1), math.Inf(1))

	assert.Equal(t, 2, p.NumVariables())
	assert.Equal(t, "x", p.VarName(x))
	lo, hi := p.Bounds(y)
	assert.True(t, math.IsInf(lo, -1))
	assert.True(t, math.IsInf(hi, 1))

	p.SetObjective(x, 1)
	p.SetObjective(x, 2)
	assert.Equal(t, 3.0, p.Objective(x))
}

func TestAddConstraintMovesConstant(t *testing.T) {
	p := New("test")
	x := p.AddVariable("x", 0, math.Inf(1))

	e := NewExpr().Add(x, 1).AddConst(5)
	require.NoError(t, p.AddEq("c", e, 8))

	con := p.Constraints[0]
	assert.Equal(t, 3.0, con.Lo)
	assert.Equal(t, 3.0, con.Hi)
}

func TestAddConstraintRejectsEmptyRange(t *testing.T) {
	p := New("test")
	x := p.AddVariable("x", 0, 1)
	err := p.AddConstraint("bad", NewExpr().Add(x, 1), 2, 1)
	assert.Error(t, err)
}

func TestSolutionEval(t *testing.T) {
	s := &Solution{X: []float64{2, 3}}
	assert.Equal(t, 2.0, s.Value(0))
	assert.Equal(t, 0.0, s.Value(7), "out of range reads as zero")

	e := NewExpr().Add(0, 2).Add(1, 1)
	e.AddConst(1)
	assert.Equal(t, 8.0, s.Eval(e))
}
