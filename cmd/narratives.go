package cmd

import (
	"github.com/signalvane/signalvane/core"
	"github.com/signalvane/signalvane/internal/contract"
	"github.com/spf13/cobra"
)

// narrativesCmd prints the narratives of the latest refresh.
var narrativesCmd = &cobra.Command{
	Use:   "narratives",
	Short: "List narratives from the latest refresh.",
	Long: `List the narratives synthesized by the latest refresh with their novelty
score, trend, sentiment and supporting evidence.

Examples:
  # Most novel first (default)
  signalvane narratives

  # Alphabetical, falling narratives only
  signalvane narratives --sort alphabetical --trend falling

  # One narrative with its full explanation
  signalvane narratives --narrative "AI Agents"`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteNarratives(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot list narratives", err)
		}
	},
}

// ideasCmd prints the build ideas generated per narrative.
var ideasCmd = &cobra.Command{
	Use:   "ideas",
	Short: "List build ideas generated for each narrative.",
	Long: `List the build ideas stored by the last 'refresh --ideas' run.

Examples:
  signalvane ideas
  signalvane ideas --narrative "AI Agents" --output json`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteIdeas(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot list ideas", err)
		}
	},
}
