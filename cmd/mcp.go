package cmd

import (
	"github.com/signalvane/signalvane/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd exposes narrative queries and refreshes to agents over stdio.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve narratives and trends to AI agents over MCP",
	Long: `Run a Model Context Protocol server on stdin/stdout.

Agents can read the current narratives, their rising or falling trend, build
ideas and per narrative score history, ask whether the data is fresh, and
request a refresh. Refreshes honor the same cache window as the refresh
command. Logs go to stderr so the protocol stream stays clean.`,
	Example: `  # Register with an MCP client
  signalvane mcp --data-dir ~/.signalvane/data`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return sharedSetup(rootCtx, cmd, args)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, cacheManager)
	},
}
