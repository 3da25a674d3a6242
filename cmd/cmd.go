// Package cmd defines the command-line interface for signalvane.
package cmd

import (
	"github.com/signalvane/signalvane/internal/contract"
	"github.com/signalvane/signalvane/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(refreshCmd)
	rootCmd.AddCommand(trendsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(narrativesCmd)
	rootCmd.AddCommand(ideasCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(archiveCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	// Add the archive subcommands to the parent archive command
	archiveCmd.AddCommand(archiveClearCmd)
	archiveCmd.AddCommand(archiveStatusCmd)
	archiveCmd.AddCommand(archiveExportCmd)
	archiveCmd.AddCommand(archiveMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("data-dir", contract.DefaultDataDir, "Directory holding history, marker and artifacts")
	rootCmd.PersistentFlags().Int("retention", contract.DefaultRetention, "Number of snapshots kept in the history log (2-30)")
	rootCmd.PersistentFlags().String("cache-window", contract.DefaultCacheWindow.String(), "Minimum gap between two upstream refreshes")
	rootCmd.PersistentFlags().String("fresh-window", contract.DefaultFreshWindow.String(), "Age under which health reports fresh data")
	rootCmd.PersistentFlags().String("fetch-ttl", contract.DefaultFetchTTL.String(), "Staleness bound for cached upstream responses")
	rootCmd.PersistentFlags().IntP("limit", "l", contract.DefaultResultLimit, "Number of results to display")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("sort", string(schema.SortNovelty), "Narrative order: novelty or alphabetical or trend or none")
	rootCmd.PersistentFlags().String("trend", "", "Only show narratives with this trend: new or rising or falling or stable")
	rootCmd.PersistentFlags().String("narrative", "", "Only show the narrative with this name")
	rootCmd.PersistentFlags().String("lookback", "14 days", "How far back to search GitHub for active repositories")
	rootCmd.PersistentFlags().String("query", contract.DefaultGitHubQuery, "GitHub search topic")
	rootCmd.PersistentFlags().Int("github-limit", contract.DefaultGitHubLimit, "Maximum number of GitHub repositories per refresh")
	rootCmd.PersistentFlags().String("github-url", contract.DefaultGitHubBaseURL, "GitHub API base URL")
	rootCmd.PersistentFlags().StringSlice("subreddits", contract.DefaultSubreddits, "Comma-separated list of subreddits to scan")
	rootCmd.PersistentFlags().String("reddit-lookback", "7 days", "How far back to keep Reddit posts")
	rootCmd.PersistentFlags().String("reddit-url", contract.DefaultRedditBaseURL, "Reddit base URL")
	rootCmd.PersistentFlags().String("timeout", contract.DefaultHTTPTimeout.String(), "Per-request timeout for upstream calls")
	rootCmd.PersistentFlags().String("gemini-model", contract.DefaultGeminiModel, "Gemini model used for synthesis")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "Fetch cache backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("archive-backend", "", "Narrative archive backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("archive-db-connect", "", "Database connection string for the archive (must differ from cache-db-connect)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of refreshCmd to Viper
	refreshCmd.Flags().Bool("force", false, "Refresh even when the cache window has not elapsed")
	refreshCmd.Flags().Bool("ideas", false, "Regenerate build ideas for every narrative")
	if err := viper.BindPFlags(refreshCmd.Flags()); err != nil {
		contract.LogFatal("Error binding refresh flags", err)
	}

	// Bind all flags of serveCmd to Viper
	serveCmd.Flags().String("listen", contract.DefaultListenAddr, "Address the HTTP API listens on")
	if err := viper.BindPFlags(serveCmd.Flags()); err != nil {
		contract.LogFatal("Error binding serve flags", err)
	}

	// Bind all flags of archiveMigrateCmd to Viper
	archiveMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(archiveMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding archive migrate flags", err)
	}
}
