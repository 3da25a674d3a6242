package cmd

import (
	"github.com/signalvane/signalvane/core"
	"github.com/signalvane/signalvane/internal/contract"
	"github.com/spf13/cobra"
)

// trendsCmd classifies every narrative in the latest snapshot.
var trendsCmd = &cobra.Command{
	Use:   "trends",
	Short: "Show which narratives are rising, falling, new or stable.",
	Long: `Classify every narrative in the latest snapshot by comparing its last two
recorded scores.

  NEW     - seen in only one snapshot
  RISING  - score grew by more than 1.0
  FALLING - score dropped by more than 1.0
  STABLE  - anything in between

Examples:
  # Top narratives by score
  signalvane trends

  # Only the ones gaining momentum
  signalvane trends --trend rising

  # Everything, as CSV
  signalvane trends --limit 1000 --output csv`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteTrends(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot compute trends", err)
		}
	},
}

// historyCmd prints the score series of one narrative.
var historyCmd = &cobra.Command{
	Use:   "history <narrative>",
	Short: "Show the recorded scores of one narrative.",
	Long: `Print every observation of a narrative across retained snapshots, oldest
first, together with its current trend.

Names with spaces can be passed unquoted.

Examples:
  signalvane history AI Agents
  signalvane history "Liquid Restaking" --output json`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteHistory(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot load narrative history", err)
		}
	},
}
