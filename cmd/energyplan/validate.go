package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"energyplan/internal/run"
)

var validateCmd = &cobra.Command{
	Use:   "validate <run-dir>",
	Short: "Check that a run directory contains every file its manifest names",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := run.LoadManifest(args[0])
		if err != nil {
			return err
		}
		broken, err := m.Validate()
		if err != nil {
			return err
		}
		if len(broken) > 0 {
			for _, name := range broken {
				fmt.Printf("missing or empty: %s\n", name)
			}
			return fmt.Errorf("%d of %d files are missing or empty", len(broken), len(m.Files))
		}
		fmt.Printf("ok: %d files, %d scenarios\n", len(m.Files), len(m.Scenarios))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
