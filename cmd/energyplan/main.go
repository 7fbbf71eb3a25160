// Command energyplan optimises distributed energy systems: it reads a
// model workbook, minimises total annualised cost as a linear program
// and writes cost, capacity and timeseries reports per scenario.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
