package main

import (
	"github.com/spf13/cobra"

	"energyplan/internal/api"
	"energyplan/internal/log"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API for solving scenarios and browsing runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if serveAddr != "" {
			cfg.API.Addr = serveAddr
		}
		logger := log.With("api")
		logger.Info().Str("addr", cfg.API.Addr).Msg("listening")
		return api.Serve(cfg)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
	rootCmd.AddCommand(serveCmd)
}
