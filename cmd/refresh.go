package cmd

import (
	"github.com/signalvane/signalvane/core"
	"github.com/signalvane/signalvane/internal/contract"
	"github.com/spf13/cobra"
)

// refreshCmd runs the fetch and synthesis pipeline when the cache window allows it.
var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Fetch fresh signals and rebuild narratives.",
	Long: `Collect signals from GitHub, Reddit and market intel, synthesize narratives
and append a new snapshot to the history log.

A refresh is skipped when the last successful one happened inside the cache
window (15 minutes by default). Use --force to refresh anyway.

GitHub is required. Reddit and market intel failures are reported and the
refresh continues without them. Nothing is recorded when a refresh fails.

Examples:
  # Refresh when the cache window has elapsed
  signalvane refresh

  # Refresh now and regenerate build ideas
  signalvane refresh --force --ideas

  # Report the outcome as JSON
  signalvane refresh --output json`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteRefresh(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot refresh narratives", err)
		}
	},
}
