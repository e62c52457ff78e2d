// Package main implements the report tool: offline analytics over CSV series
// and submission of report jobs to a running worker.
package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"
)

var Version = "dev" // Injected via ldflags during build

func newApp() *cli.App {
	return &cli.App{
		Name:     "FabZClean Analytics Report",
		HelpName: "report",
		Usage:    "summarizes, forecasts and screens business time series stored as CSV",
		Version:  Version,
		Flags: []cli.Flag{
			&verboseFlag,
		},
		Commands: []*cli.Command{
			&cmdSummary,
			&cmdForecast,
			&cmdAnomalies,
			&cmdReport,
			&cmdSubmit,
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
