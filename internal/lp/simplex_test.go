package lp

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solve(t *testing.T, p *Problem) *Solution {
	t.Helper()
	sol, err := (&SimplexSolver{}).Solve(context.Background(), p)
	require.NoError(t, err)
	return sol
}

func TestSimplexSimple(t *testing.T) {
	// min 2x + 3y  s.t.  x + y >= 4, x, y >= 0  ->  x = 4, y = 0
	p := New("simple")
	x := p.AddVariable("x", 0, math.Inf(1))
	y := p.AddVariable("y", 0, math.Inf(1))
	p.SetObjective(x, 2)
	p.SetObjective(y, 3)
	require.NoError(t, p.AddGe("supply", NewExpr().Add(x, 1).Add(y, 1), 4))

	sol := solve(t, p)
	assert.InDelta(t, 8, sol.Objective, 1e-9)
	assert.InDelta(t, 4, sol.Value(x), 1e-9)
	assert.InDelta(t, 0, sol.Value(y), 1e-9)
}

func TestSimplexVariableBounds(t *testing.T) {
	// min x + 2y  s.t.  x + y == 10, 0 <= x <= 3, 2 <= y <= 20
	p := New("bounds")
	x := p.AddVariable("x", 0, 3)
	y := p.AddVariable("y", 2, 20)
	p.SetObjective(x, 1)
	p.SetObjective(y, 2)
	require.NoError(t, p.AddEq("balance", NewExpr().Add(x, 1).Add(y, 1), 10))

	sol := solve(t, p)
	assert.InDelta(t, 3, sol.Value(x), 1e-9, "cheaper variable hits its upper bound")
	assert.InDelta(t, 7, sol.Value(y), 1e-9)
	assert.InDelta(t, 17, sol.Objective, 1e-9)
}

func TestSimplexFixedVariable(t *testing.T) {
	p := New("fixed")
	x := p.AddVariable("x", 5, 5)
	y := p.AddVariable("y", 0, math.Inf(1))
	p.SetObjective(y, 1)
	require.NoError(t, p.AddGe("c", NewExpr().Add(x, 1).Add(y, 1), 8))

	sol := solve(t, p)
	assert.InDelta(t, 5, sol.Value(x), 1e-9)
	assert.InDelta(t, 3, sol.Value(y), 1e-9)
}

func TestSimplexFreeVariable(t *testing.T) {
	// min y  s.t.  y >= x - 2, y >= -x, x free  ->  x = 1, y = -1
	p := New("free")
	x := p.AddVariable("x", math.Inf(-1), math.Inf(1))
	y := p.AddVariable("y", math.Inf(-1), math.Inf(1))
	p.SetObjective(y, 1)
	require.NoError(t, p.AddGe("c1", NewExpr().Add(y, 1).Add(x, -1), -2))
	require.NoError(t, p.AddGe("c2", NewExpr().Add(y, 1).Add(x, 1), 0))

	sol := solve(t, p)
	assert.InDelta(t, -1, sol.Objective, 1e-9)
	assert.InDelta(t, 1, sol.Value(x), 1e-9)
}

func TestSimplexRangedConstraint(t *testing.T) {
	// min x  s.t.  2 <= x + y <= 5, y <= 1
	p := New("ranged")
	x := p.AddVariable("x", 0, math.Inf(1))
	y := p.AddVariable("y", 0, 1)
	p.SetObjective(x, 1)
	require.NoError(t, p.AddConstraint("window", NewExpr().Add(x, 1).Add(y, 1), 2, 5))

	sol := solve(t, p)
	assert.InDelta(t, 1, sol.Value(x), 1e-9)
	assert.InDelta(t, 1, sol.Value(y), 1e-9)
}

func TestSimplexSkipsConstraintFreeVariables(t *testing.T) {
	// variables no constraint touches (storage-free throughput steps,
	// unused capacities) must not reach the matrix as zero columns
	p := New("mixed")
	x := p.AddVariable("x", 0, math.Inf(1))
	idle := p.AddVariable("idle", 0, math.Inf(1))
	pricey := p.AddVariable("pricey", 1, 10)
	p.SetObjective(x, 1)
	p.SetObjective(pricey, 3)
	require.NoError(t, p.AddGe("c", NewExpr().Add(x, 1), 2))

	sol := solve(t, p)
	assert.InDelta(t, 2, sol.Value(x), 1e-9)
	assert.InDelta(t, 0, sol.Value(idle), 1e-9)
	assert.InDelta(t, 1, sol.Value(pricey), 1e-9, "sits on its cheap bound")
	assert.InDelta(t, 5, sol.Objective, 1e-9)
}

func TestSimplexUnboundedOutsideConstraints(t *testing.T) {
	// an unbounded variable stays unbounded even when other variables
	// are constrained
	p := New("unbounded-idle")
	x := p.AddVariable("x", 0, math.Inf(1))
	w := p.AddVariable("w", 0, math.Inf(1))
	p.SetObjective(w, -1)
	require.NoError(t, p.AddGe("c", NewExpr().Add(x, 1), 2))

	_, err := (&SimplexSolver{}).Solve(context.Background(), p)
	assert.ErrorIs(t, err, ErrUnbounded)
}

func TestSimplexInfeasible(t *testing.T) {
	p := New("infeasible")
	x := p.AddVariable("x", 0, 1)
	require.NoError(t, p.AddGe("impossible", NewExpr().Add(x, 1), 5))

	_, err := (&SimplexSolver{}).Solve(context.Background(), p)
	assert.ErrorIs(t, err, ErrInfeasible)
}

func TestSimplexUnbounded(t *testing.T) {
	p := New("unbounded")
	x := p.AddVariable("x", 0, math.Inf(1))
	p.SetObjective(x, -1)

	_, err := (&SimplexSolver{}).Solve(context.Background(), p)
	assert.ErrorIs(t, err, ErrUnbounded)
}

func TestSimplexCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := New("cancelled")
	p.AddVariable("x", 0, 1)
	_, err := (&SimplexSolver{}).Solve(ctx, p)
	assert.ErrorIs(t, err, context.Canceled)
}
