package lp

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
)

// WriteLP writes the problem in CPLEX LP format. Columns are emitted
// as x1..xN in column order so that solution files can be mapped back
// by index; the human-readable variable names are kept as comments.
func WriteLP(w io.Writer, p *Problem) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "\\ Problem: %s\n", p.Name)
	fmt.Fprintf(bw, "\\ Columns: %d  Rows: %d\n", p.NumVariables(), len(p.Constraints))
	for j := 0; j < p.NumVariables(); j++ {
		fmt.Fprintf(bw, "\\ x%d = %s\n", j+1, p.VarName(j))
	}

	fmt.Fprintln(bw, "Minimize")
	fmt.Fprint(bw, " obj:")
	wrote := false
	for j, c := range p.obj {
		if c == 0 {
			continue
		}
		writeCoef(bw, c, j, !wrote)
		wrote = true
	}
	if !wrote {
		fmt.Fprint(bw, " 0 x1")
	}
	fmt.Fprintln(bw)

	fmt.Fprintln(bw, "Subject To")
	for i, con := range p.Constraints {
		switch {
		case con.Lo == con.Hi:
			writeRow(bw, fmt.Sprintf("c%d", i+1), con.Terms, "=", con.Lo)
		default:
			// ranged rows become two one-sided rows
			if !math.IsInf(con.Hi, 1) {
				writeRow(bw, fmt.Sprintf("c%d_u", i+1), con.Terms, "<=", con.Hi)
			}
			if !math.IsInf(con.Lo, -1) {
				writeRow(bw, fmt.Sprintf("c%d_l", i+1), con.Terms, ">=", con.Lo)
			}
		}
	}

	fmt.Fprintln(bw, "Bounds")
	for j := 0; j < p.NumVariables(); j++ {
		lo, hi := p.lo[j], p.hi[j]
		switch {
		case math.IsInf(lo, -1) && math.IsInf(hi, 1):
			fmt.Fprintf(bw, " x%d free\n", j+1)
		case math.IsInf(hi, 1):
			if lo != 0 {
				fmt.Fprintf(bw, " x%d >= %s\n", j+1, formatFloat(lo))
			}
			// lo == 0 is the LP format default
		case math.IsInf(lo, -1):
			fmt.Fprintf(bw, " -inf <= x%d <= %s\n", j+1, formatFloat(hi))
		case lo == hi:
			fmt.Fprintf(bw, " x%d = %s\n", j+1, formatFloat(lo))
		default:
			fmt.Fprintf(bw, " %s <= x%d <= %s\n", formatFloat(lo), j+1, formatFloat(hi))
		}
	}
	fmt.Fprintln(bw, "End")
	return bw.Flush()
}

func writeRow(w io.Writer, name string, terms []Term, op string, rhs float64) {
	fmt.Fprintf(w, " %s:", name)
	if len(terms) == 0 {
		fmt.Fprint(w, " 0 x1")
	}
	for k, t := range terms {
		writeCoef(w, t.Coef, t.Var, k == 0)
	}
	fmt.Fprintf(w, " %s %s\n", op, formatFloat(rhs))
}

func writeCoef(w io.Writer, c float64, col int, first bool) {
	switch {
	case first:
		fmt.Fprintf(w, " %s x%d", formatFloat(c), col+1)
	case c < 0:
		fmt.Fprintf(w, " - %s x%d", formatFloat(-c), col+1)
	default:
		fmt.Fprintf(w, " + %s x%d", formatFloat(c), col+1)
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 12, 64)
}
