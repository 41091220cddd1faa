package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "trendbot",
		Short: "Trendline break-and-retest trading bot",
		Long: "trendbot scans for trendline break-and-retest setups, sizes entries\n" +
			"against account risk limits and manages positions to their stop or\n" +
			"target. It runs live against an exchange or replays history.",
		SilenceUsage: true,
	}

	root.AddCommand(newLiveCommand())
	root.AddCommand(newBacktestCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
