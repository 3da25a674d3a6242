package cmd

import (
	"fmt"
	"runtime"

	"github.com/signalvane/signalvane/internal/history"
	"github.com/spf13/cobra"
)

// versionCmd reports build metadata along with the limits baked into this build.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the signalvane build and its snapshot limits",
	Long: `Report which signalvane build is running.

The output lists the release tag, the commit it was built from, the build date,
the Go toolchain, and the most snapshots the history log can hold. Include it
when filing a bug about trend classification or refresh behavior.`,
	Example: `  signalvane version`,
	Run: func(cmd *cobra.Command, _ []string) {
		for _, line := range buildInfo() {
			cmd.Println(line)
		}
	},
}

// buildInfo renders the version report one line at a time.
func buildInfo() []string {
	return []string{
		"signalvane CLI",
		fmt.Sprintf("  Release:   %s (%s)", version, commit),
		fmt.Sprintf("  Built:     %s with %s %s/%s", date, runtime.Version(), runtime.GOOS, runtime.GOARCH),
		fmt.Sprintf("  Snapshots: up to %d kept", history.MaxSnapshots),
	}
}
