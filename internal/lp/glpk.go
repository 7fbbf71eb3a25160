package lp

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// GLPKSolver shells out to glpsol, the GLPK standalone solver. The
// problem is written in CPLEX LP format and the basic solution is read
// back from glpsol's plain-text solution file.
type GLPKSolver struct {
	// Path to the glpsol binary; default "glpsol".
	Path string
	// Extra command line options, e.g. "--tmlim 7200".
	Options []string
	// WorkDir keeps the .lp/.sol files for inspection when set;
	// otherwise a temporary directory is used and removed afterwards.
	WorkDir string
}

func (g *GLPKSolver) Name() string { return "glpk" }

func (g *GLPKSolver) Solve(ctx context.Context, p *Problem) (*Solution, error) {
	dir := g.WorkDir
	if dir == "" {
		tmp, err := os.MkdirTemp("", "energyplan-glpk-")
		if err != nil {
			return nil, fmt.Errorf("lp: create solver dir: %w", err)
		}
		defer os.RemoveAll(tmp)
		dir = tmp
	}

	lpPath := filepath.Join(dir, "model.lp")
	solPath := filepath.Join(dir, "model.sol")

	f, err := os.Create(lpPath)
	if err != nil {
		return nil, fmt.Errorf("lp: write model file: %w", err)
	}
	if err := WriteLP(f, p); err != nil {
		f.Close()
		return nil, fmt.Errorf("lp: write model file: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("lp: write model file: %w", err)
	}

	bin := g.Path
	if bin == "" {
		bin = "glpsol"
	}
	args := append([]string{"--lp", lpPath, "--write", solPath}, g.Options...)
	cmd := exec.CommandContext(ctx, bin, args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("lp: glpsol: %w (output: %s)", err, strings.TrimSpace(out.String()))
	}
	if msg := out.String(); strings.Contains(msg, "NO PRIMAL FEASIBLE") {
		return nil, ErrInfeasible
	} else if strings.Contains(msg, "NO DUAL FEASIBLE") {
		return nil, ErrUnbounded
	}

	return readSolution(solPath, p)
}

// readSolution parses glpsol's basic solution format: an "s" status
// line followed by "i" (row) and "j" (column) value lines.
func readSolution(path string, p *Problem) (*Solution, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("lp: read solution: %w", err)
	}
	defer f.Close()

	sol := &Solution{X: make([]float64, p.NumVariables())}
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "s":
			// s bas <m> <n> <pstat> <dstat> <obj>
			if len(fields) >= 7 {
				switch fields[4] {
				case "n", "i":
					return nil, ErrInfeasible
				}
				if fields[5] == "n" {
					return nil, ErrUnbounded
				}
				if v, err := strconv.ParseFloat(fields[6], 64); err == nil {
					sol.Objective = v
				}
			}
		case "j":
			// j <col> <stat> <prim> <dual>
			if len(fields) < 4 {
				return nil, fmt.Errorf("lp: malformed solution line %q", sc.Text())
			}
			col, err := strconv.Atoi(fields[1])
			if err != nil || col < 1 || col > len(sol.X) {
				return nil, fmt.Errorf("lp: bad column index in %q", sc.Text())
			}
			v, err := strconv.ParseFloat(fields[3], 64)
			if err != nil {
				return nil, fmt.Errorf("lp: bad column value in %q", sc.Text())
			}
			sol.X[col-1] = v
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("lp: read solution: %w", err)
	}
	return sol, nil
}
