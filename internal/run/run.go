// Package run orchestrates complete optimisation runs: it reads the
// input workbook, applies each scenario, builds and solves the plan and
// writes snapshots, reports and charts into a timestamped run
// directory, together with a manifest of everything produced.
package run

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"energyplan/internal/analysis"
	"energyplan/internal/chart"
	"energyplan/internal/config"
	"energyplan/internal/excel"
	"energyplan/internal/log"
	"energyplan/internal/lp"
	"energyplan/internal/model"
	"energyplan/internal/plan"
	"energyplan/internal/report"
	"energyplan/internal/result"
	"energyplan/internal/scenario"
)

// Runner executes scenario runs for one configuration.
type Runner struct {
	cfg    *config.Config
	solver lp.Solver
}

// New builds a runner with the solver backend named in the config.
func New(cfg *config.Config) (*Runner, error) {
	solver, err := NewSolver(cfg.Solver, "")
	if err != nil {
		return nil, err
	}
	return &Runner{cfg: cfg, solver: solver}, nil
}

// NewSolver builds the LP backend named in the solver config. workDir
// is only used by external solvers that keep their files.
func NewSolver(sc config.SolverConfig, workDir string) (lp.Solver, error) {
	switch sc.Name {
	case "", "simplex":
		return &lp.SimplexSolver{}, nil
	case "glpk":
		g := &lp.GLPKSolver{Path: sc.Path, Options: sc.Options}
		if sc.KeepFiles {
			g.WorkDir = workDir
		}
		return g, nil
	default:
		return nil, fmt.Errorf("run: unknown solver %q", sc.Name)
	}
}

// Run executes all scenarios and returns the manifest of the run
// directory it created.
func (r *Runner) Run(ctx context.Context, scenarios []scenario.Scenario) (*Manifest, error) {
	logger := log.With("run")

	if len(scenarios) == 0 {
		scenarios = []scenario.Scenario{scenario.Base()}
	}

	in, err := excel.Read(r.cfg.Input)
	if err != nil {
		return nil, err
	}

	dir, err := r.createRunDir()
	if err != nil {
		return nil, err
	}
	logger.Info().Str("dir", dir).Int("scenarios", len(scenarios)).Msg("starting run")

	m := &Manifest{
		Created: time.Now(),
		Input:   filepath.Base(r.cfg.Input),
		Solver:  r.solver.Name(),
		Dir:     dir,
	}
	if err := copyFile(r.cfg.Input, filepath.Join(dir, m.Input)); err != nil {
		return nil, err
	}
	m.Files = append(m.Files, m.Input)

	var results []*result.Result
	for _, sc := range scenarios {
		res, files, err := r.runScenario(ctx, dir, in, sc)
		if err != nil {
			return nil, fmt.Errorf("run: scenario %s: %w", sc.Name, err)
		}
		results = append(results, res)
		m.Scenarios = append(m.Scenarios, ScenarioEntry{
			Name:      sc.Name,
			Objective: res.Objective,
			Files:     files,
		})
		m.Files = append(m.Files, files...)
	}

	if len(results) > 1 {
		cmpPath := filepath.Join(dir, "comparison.csv")
		if err := analysis.WriteComparisonCSV(cmpPath, results); err != nil {
			return nil, err
		}
		m.Files = append(m.Files, "comparison.csv")
	}

	if err := m.Save(filepath.Join(dir, ManifestName)); err != nil {
		return nil, err
	}
	logger.Info().Str("dir", dir).Msg("run finished")
	return m, nil
}

func (r *Runner) runScenario(ctx context.Context, dir string, in *model.Input, sc scenario.Scenario) (*result.Result, []string, error) {
	logger := log.With("run")
	start := time.Now()

	applied, err := sc.Apply(in)
	if err != nil {
		return nil, nil, err
	}

	p, err := plan.Build(applied, plan.Options{
		DT:     r.cfg.Timesteps.DT,
		Offset: r.cfg.Timesteps.Offset,
		Length: r.cfg.Timesteps.Length,
	})
	if err != nil {
		return nil, nil, err
	}
	logger.Debug().
		Str("scenario", sc.Name).
		Int("variables", p.Prob.NumVariables()).
		Int("constraints", len(p.Prob.Constraints)).
		Msg("plan built")

	solver := r.solver
	if g, ok := solver.(*lp.GLPKSolver); ok && g.WorkDir == "" && r.cfg.Solver.KeepFiles {
		s := *g
		s.WorkDir = filepath.Join(dir, "solver-"+sc.Name)
		if err := os.MkdirAll(s.WorkDir, 0o755); err != nil {
			return nil, nil, err
		}
		solver = &s
	}

	sol, err := solver.Solve(ctx, p.Prob)
	if err != nil {
		return nil, nil, err
	}

	res := result.Extract(p, sol)
	res.Scenario = sc.Name
	res.Solver = solver.Name()
	logger.Info().
		Str("scenario", sc.Name).
		Float64("objective", res.Objective).
		Dur("elapsed", time.Since(start)).
		Msg("scenario solved")

	var files []string
	add := func(name string, write func(path string) error) error {
		if err := write(filepath.Join(dir, name)); err != nil {
			return err
		}
		files = append(files, name)
		return nil
	}

	if err := add("result-"+sc.Name+".json.gz", res.Save); err != nil {
		return nil, nil, err
	}
	opts := report.Options{
		Sites:       r.cfg.Report.Sites,
		Commodities: r.cfg.Report.Commodities,
	}
	if err := add("report-"+sc.Name+".xlsx", func(path string) error {
		return report.WriteWorkbook(path, res, opts)
	}); err != nil {
		return nil, nil, err
	}
	if err := add("costs-"+sc.Name+".csv", func(path string) error {
		return report.WriteCostsCSV(path, res)
	}); err != nil {
		return nil, nil, err
	}

	for i := range res.Timeseries {
		ts := &res.Timeseries[i]
		if !opts.Wants(*ts) {
			continue
		}
		if err := add(sc.Name+"-"+report.CSVName(ts), func(path string) error {
			return report.WriteTimeseriesCSV(path, res, ts)
		}); err != nil {
			return nil, nil, err
		}
		if r.cfg.Report.WantCharts() {
			if err := add(sc.Name+"-"+chart.HTMLName(ts), func(path string) error {
				return chart.Write(path, res, ts)
			}); err != nil {
				return nil, nil, err
			}
		}
	}
	return res, files, nil
}

// createRunDir builds result/<input>-<timestamp> and creates it.
func (r *Runner) createRunDir() (string, error) {
	base := strings.TrimSuffix(filepath.Base(r.cfg.Input), filepath.Ext(r.cfg.Input))
	dir := filepath.Join(r.cfg.ResultDir, fmt.Sprintf("%s-%s", base, time.Now().Format("20060102T1504")))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("run: create %s: %w", dir, err)
	}
	return dir, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
