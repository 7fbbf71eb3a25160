package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"energyplan/internal/analysis"
	"energyplan/internal/log"
	"energyplan/internal/result"
	"energyplan/internal/run"
	"energyplan/internal/scenario"
)

var runOnly []string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Solve all configured scenarios and write a run directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		scenarios := []scenario.Scenario{scenario.Base()}
		if cfg.ScenarioFile != "" {
			if scenarios, err = scenario.Load(cfg.ScenarioFile); err != nil {
				return err
			}
		}
		if len(runOnly) > 0 {
			if scenarios, err = filterScenarios(scenarios, runOnly); err != nil {
				return err
			}
		}

		runner, err := run.New(cfg)
		if err != nil {
			return err
		}
		m, err := runner.Run(cmd.Context(), scenarios)
		if err != nil {
			return err
		}

		logger := log.With("cli")
		for _, sc := range m.Scenarios {
			logger.Info().
				Str("scenario", sc.Name).
				Float64("objective", sc.Objective).
				Msg("total annualised cost in EUR/a")

			res, err := result.Load(m.ResultPath(sc.Name))
			if err != nil {
				continue
			}
			for _, e := range analysis.RankExpansion(res) {
				logger.Info().Str("scenario", sc.Name).Msg(e.Describe())
			}
		}
		fmt.Println(m.Dir)
		return nil
	},
}

func filterScenarios(scenarios []scenario.Scenario, names []string) ([]scenario.Scenario, error) {
	byName := map[string]scenario.Scenario{}
	for _, sc := range scenarios {
		byName[sc.Name] = sc
	}
	var out []scenario.Scenario
	for _, name := range names {
		sc, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("scenario %q is not defined", name)
		}
		out = append(out, sc)
	}
	return out, nil
}

func init() {
	runCmd.Flags().StringSliceVar(&runOnly, "scenario", nil,
		"run only the named scenarios (default: all)")
	rootCmd.AddCommand(runCmd)
}
