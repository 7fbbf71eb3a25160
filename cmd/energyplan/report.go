package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"energyplan/internal/chart"
	"energyplan/internal/report"
	"energyplan/internal/result"
	"energyplan/internal/run"
)

var reportCmd = &cobra.Command{
	Use:   "report <run-dir>",
	Short: "Regenerate reports and charts from the snapshots of a run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		m, err := run.LoadManifest(args[0])
		if err != nil {
			return err
		}

		opts := report.Options{
			Sites:       cfg.Report.Sites,
			Commodities: cfg.Report.Commodities,
		}
		for _, sc := range m.Scenarios {
			res, err := result.Load(m.ResultPath(sc.Name))
			if err != nil {
				return err
			}
			dst := filepath.Join(m.Dir, "report-"+sc.Name+".xlsx")
			if err := report.WriteWorkbook(dst, res, opts); err != nil {
				return err
			}
			if err := report.WriteCostsCSV(filepath.Join(m.Dir, "costs-"+sc.Name+".csv"), res); err != nil {
				return err
			}
			for i := range res.Timeseries {
				ts := &res.Timeseries[i]
				if !opts.Wants(*ts) {
					continue
				}
				if err := report.WriteTimeseriesCSV(
					filepath.Join(m.Dir, sc.Name+"-"+report.CSVName(ts)), res, ts); err != nil {
					return err
				}
				if cfg.Report.WantCharts() {
					if err := chart.Write(
						filepath.Join(m.Dir, sc.Name+"-"+chart.HTMLName(ts)), res, ts); err != nil {
						return err
					}
				}
			}
			fmt.Printf("regenerated %s\n", sc.Name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
}
