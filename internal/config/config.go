package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk configuration shape (YAML).
type Config struct {
	// Input is the path to the model workbook (.xlsx).
	Input string `yaml:"input"`
	// ResultDir is where run directories are created; default "result".
	ResultDir string `yaml:"result_dir"`
	// ScenarioFile points to an optional scenario YAML; when empty only
	// the base scenario is run.
	ScenarioFile string `yaml:"scenario_file"`

	Timesteps TimestepsConfig `yaml:"timesteps"`
	Solver    SolverConfig    `yaml:"solver"`
	Report    ReportConfig    `yaml:"report"`
	Log       LogConfig       `yaml:"log"`
	API       APIConfig       `yaml:"api"`
}

// TimestepsConfig selects the modelled horizon.
type TimestepsConfig struct {
	// Offset into the input series; 0 starts at the first row.
	Offset int `yaml:"offset"`
	// Length of the horizon in timesteps; 0 selects everything.
	Length int `yaml:"length"`
	// DT is the timestep length in hours; default 1.
	DT float64 `yaml:"dt"`
}

// SolverConfig selects the LP backend.
type SolverConfig struct {
	// Name is "simplex" (built in) or "glpk" (external glpsol binary).
	Name string `yaml:"name"`
	// Path to the solver binary, for external solvers.
	Path string `yaml:"path"`
	// Options are extra command line flags for external solvers.
	Options []string `yaml:"options"`
	// KeepFiles keeps the .lp/.sol files in the run directory.
	KeepFiles bool `yaml:"keep_files"`
}

// ReportConfig filters which timeseries end up in reports and charts.
// Empty lists select everything.
type ReportConfig struct {
	Sites       []string `yaml:"sites"`
	Commodities []string `yaml:"commodities"`
	// Charts disables HTML plot output when false.
	Charts *bool `yaml:"charts"`
}

// WantCharts reports whether plot output is enabled (default true).
func (r ReportConfig) WantCharts() bool {
	return r.Charts == nil || *r.Charts
}

type LogConfig struct {
	// Level is trace, debug, info, warn or error; default info.
	Level string `yaml:"level"`
	// JSON switches from console to JSON output.
	JSON bool `yaml:"json"`
}

type APIConfig struct {
	// Addr is the listen address of the HTTP server; default ":8080".
	Addr string `yaml:"addr"`
	// AllowedOrigins for CORS; default allows localhost dev servers.
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Default returns a config with all defaults applied and no input set.
func Default() *Config {
	return &Config{
		ResultDir: "result",
		Timesteps: TimestepsConfig{DT: 1},
		Solver:    SolverConfig{Name: "simplex"},
		Log:       LogConfig{Level: "info"},
		API: APIConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"http://localhost:5173", "http://localhost:3000"},
		},
	}
}

func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads the config and applies defaults, but does not
// validate it. Useful for debugging/printing partial configs.
func LoadUnchecked(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	if err := yaml.Unmarshal(raw, c); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	c.applyDefaults()

	// interpret relative paths as relative to the config file
	dir := filepath.Dir(path)
	c.Input = resolve(dir, c.Input)
	c.ScenarioFile = resolve(dir, c.ScenarioFile)
	c.ResultDir = resolve(dir, c.ResultDir)
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.ResultDir == "" {
		c.ResultDir = "result"
	}
	if c.Timesteps.DT == 0 {
		c.Timesteps.DT = 1
	}
	if c.Solver.Name == "" {
		c.Solver.Name = "simplex"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.API.Addr == "" {
		c.API.Addr = ":8080"
	}
}

func resolve(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Input == "" {
		return errors.New("input is required")
	}
	if c.Timesteps.Offset < 0 {
		return fmt.Errorf("timesteps.offset %d must not be negative", c.Timesteps.Offset)
	}
	if c.Timesteps.Length < 0 {
		return fmt.Errorf("timesteps.length %d must not be negative", c.Timesteps.Length)
	}
	if c.Timesteps.DT <= 0 {
		return fmt.Errorf("timesteps.dt %g must be positive", c.Timesteps.DT)
	}
	switch c.Solver.Name {
	case "simplex", "glpk":
	default:
		return fmt.Errorf("solver.name %q is neither simplex nor glpk", c.Solver.Name)
	}
	return nil
}
