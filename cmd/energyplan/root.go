package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"energyplan/internal/config"
	"energyplan/internal/log"
)

var (
	cfgFile  string
	logLevel string
	logJSON  bool
)

var rootCmd = &cobra.Command{
	Use:   "energyplan",
	Short: "Linear capacity expansion planning for distributed energy systems",
	Long: `energyplan reads an energy system model from a spreadsheet workbook,
builds a cost-minimising linear program over conversion, transmission,
storage and demand-side management, solves it and reports the optimal
capacities and hourly operation per scenario.`,
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.Configure(logLevel, logJSON)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "energyplan.yaml",
		"path to the configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false,
		"log as JSON instead of console output")
}

// loadConfig loads the configured file and applies command line
// overrides shared by several subcommands.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", cfgFile, err)
	}
	return cfg, nil
}
