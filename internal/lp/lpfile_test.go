package lp

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteLP(t *testing.T) {
	p := New("demo")
	x := p.AddVariable("cap(Main,Gas plant)", 0, 100)
	y := p.AddVariable("tau(1,Main,Gas plant)", 0, math.Inf(1))
	z := p.AddVariable("cost(Invest)", math.Inf(-1), math.Inf(1))
	p.SetObjective(z, 1)
	require.NoError(t, p.AddLe("throughput", NewExpr().Add(y, 1).Add(x, -1), 0))
	require.NoError(t, p.AddEq("cost", NewExpr().Add(z, 1).Add(x, -42.5), 0))
	require.NoError(t, p.AddConstraint("window", NewExpr().Add(y, 1), 2, 5))

	var sb strings.Builder
	require.NoError(t, WriteLP(&sb, p))
	out := sb.String()

	assert.Contains(t, out, "Minimize")
	assert.Contains(t, out, "Subject To")
	assert.Contains(t, out, "Bounds")
	assert.Contains(t, out, "End")

	// variable names survive as comments, columns are positional
	assert.Contains(t, out, "\\ x1 = cap(Main,Gas plant)")
	assert.Contains(t, out, " obj: 1 x3")

	// one-sided, equality and ranged rows; terms come out in column order
	assert.Contains(t, out, " c1_u: -1 x1 + 1 x2 <= 0")
	assert.Contains(t, out, " c2: -42.5 x1 + 1 x3 = 0")
	assert.Contains(t, out, " c3_u: 1 x2 <= 5")
	assert.Contains(t, out, " c3_l: 1 x2 >= 2")

	// bounds: boxed, default-lower, free
	bounds := out[strings.Index(out, "Bounds"):]
	assert.Contains(t, bounds, " 0 <= x1 <= 100")
	assert.NotContains(t, bounds, "x2", "default lower bound stays implicit")
	assert.Contains(t, bounds, " x3 free")
}

func TestWriteLPEmptyObjective(t *testing.T) {
	p := New("empty")
	p.AddVariable("x", 0, 1)

	var sb strings.Builder
	require.NoError(t, WriteLP(&sb, p))
	assert.Contains(t, sb.String(), " obj: 0 x1")
}
