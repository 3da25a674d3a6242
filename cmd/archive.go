package cmd

import (
	"fmt"
	"os"

	"github.com/signalvane/signalvane/internal/contract"
	"github.com/signalvane/signalvane/internal/iocache"
	"github.com/signalvane/signalvane/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// archiveConfig reads and validates the archive backend settings.
func archiveConfig() (schema.DatabaseBackend, string, error) {
	if err := loadConfigFile(); err != nil {
		return "", "", err
	}

	// Handle empty backend as NoneBackend
	backend := schema.NoneBackend
	if backendStr := viper.GetString("archive-backend"); backendStr != "" {
		backend = schema.DatabaseBackend(backendStr)
	}
	connStr := viper.GetString("archive-db-connect")

	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", "", err
	}
	return backend, connStr, nil
}

// archiveSetup loads minimal configuration needed for archive operations.
func archiveSetup() error {
	backend, connStr, err := archiveConfig()
	if err != nil {
		return err
	}

	// Initialize stores with the loaded config (no fetch caching for archive commands)
	if err := iocache.InitStores("", "", backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize archive: %w", err)
	}

	cfg.ArchiveBackend = backend
	cfg.ArchiveDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")
	return nil
}

// archiveSetupWrapper wraps archiveSetup to provide PreRunE for archive commands.
func archiveSetupWrapper(_ *cobra.Command, _ []string) error {
	return archiveSetup()
}

// archiveMigrateSetupWrapper loads archive settings without opening the store,
// so migrations can run against a fresh database.
func archiveMigrateSetupWrapper(_ *cobra.Command, _ []string) error {
	backend, connStr, err := archiveConfig()
	if err != nil {
		return err
	}
	cfg.ArchiveBackend = backend
	cfg.ArchiveDBConnect = connStr
	return nil
}

// archiveCmd focused on the narrative archive.
var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Manage the narrative archive",
	Long: `Manage the archive of every successful refresh and its narrative scores.

The archive is optional. Enable it with --archive-backend so refreshes are
recorded beyond the retention of the history log.

Subcommands:
  status  - Show archive statistics and connection info
  clear   - Remove all archived runs
  export  - Write archived narrative scores to a Parquet file
  migrate - Apply or roll back archive schema migrations

Examples:
  SIGNALVANE_ARCHIVE_BACKEND=sqlite signalvane archive status
  signalvane archive export --archive-backend sqlite --output-file scores.parquet`,
}

// archiveClearCmd clears the archive.
var archiveClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all archived refresh runs",
	Long: `Delete all archived runs and narrative scores.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the archive tables`,
	PreRunE: archiveSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearArchive(cfg.ArchiveBackend, iocache.GetArchiveDBFilePath(), cfg.ArchiveDBConnect); err != nil {
			contract.LogFatal("Failed to clear archive", err)
		}
		fmt.Println("Archive cleared successfully.")
	},
}

// archiveStatusCmd shows archive status.
var archiveStatusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Display archive statistics and connection details",
	PreRunE: archiveSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := iocache.Manager.GetArchiveStore()
		if store == nil {
			contract.LogFatal("Failed to get archive status", fmt.Errorf("archive backend %q is not enabled", cfg.ArchiveBackend))
		}
		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get archive status", err)
		}
		iocache.PrintArchiveStatus(os.Stdout, status)
	},
}

// archiveExportCmd exports archived narrative scores.
var archiveExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export archived narrative scores to Parquet",
	Long: `Write every archived run and narrative score to a Parquet file.

Examples:
  signalvane archive export --output-file scores.parquet`,
	PreRunE: archiveSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteArchiveExport(cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export archive", err)
		}
	},
}

// archiveMigrateCmd runs archive schema migrations.
var archiveMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply archive schema migrations",
	Long: `Migrate the archive schema to the latest version, or to --target-version.

Examples:
  signalvane archive migrate --archive-backend postgresql --archive-db-connect "host=... dbname=..."
  signalvane archive migrate --archive-backend sqlite --target-version 0`,
	PreRunE: archiveMigrateSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateArchive(os.Stdout, cfg.ArchiveBackend, cfg.ArchiveDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to migrate archive", err)
		}
	},
}
