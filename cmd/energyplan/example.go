package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"energyplan/internal/excel"
)

var exampleCmd = &cobra.Command{
	Use:   "example [dir]",
	Short: "Write an example workbook, config and scenario file to get started",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "example"
		if len(args) == 1 {
			dir = args[0]
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}

		if err := excel.Write(filepath.Join(dir, "house.xlsx"), excel.Example()); err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(dir, "energyplan.yaml"),
			[]byte(exampleConfig), 0o644); err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(dir, "scenarios.yaml"),
			[]byte(exampleScenarios), 0o644); err != nil {
			return err
		}

		fmt.Printf("wrote example to %s; run:\n  energyplan run -c %s\n",
			dir, filepath.Join(dir, "energyplan.yaml"))
		return nil
	},
}

const exampleConfig = `input: house.xlsx
result_dir: result
scenario_file: scenarios.yaml

timesteps:
  offset: 0
  length: 0 # whole series
  dt: 1

solver:
  name: simplex # or glpk, with path: glpsol

report:
  sites: []
  commodities: [Elec]
`

const exampleScenarios = `scenarios:
  - name: base

  - name: expensive-grid
    description: grid electricity costs 50% more
    commodities:
      - commodity: Grid
        price: "1.5xBuy"

  - name: co2-capped
    description: tight annual emission budget
    global:
      CO2 limit: 20000
`

func init() {
	rootCmd.AddCommand(exampleCmd)
}
