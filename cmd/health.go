package cmd

import (
	"github.com/signalvane/signalvane/core"
	"github.com/signalvane/signalvane/internal/contract"
	"github.com/spf13/cobra"
)

// healthCmd reports data freshness.
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Report when data was last refreshed.",
	Long: `Report the time of the last successful refresh, how many snapshots are
retained and whether the data is still fresh (10 minutes by default).

Examples:
  signalvane health
  signalvane health --fresh-window 1h --output json`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteHealth(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot check health", err)
		}
	},
}

// seedCmd back-fills history so trends show up before several refreshes have run.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Back-fill history from the current narratives.",
	Long: `Write synthetic snapshots dated 5, 4, 3, 2 and 1 days ago, derived from the
narratives of the latest refresh. Only allowed while the history log is empty.

Examples:
  signalvane refresh && signalvane seed`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteSeed(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot seed history", err)
		}
	},
}
