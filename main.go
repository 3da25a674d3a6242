// main is the entry point for the signalvane CLI.
package main

import (
	"fmt"
	"os"

	"github.com/signalvane/signalvane/cmd"
	"github.com/signalvane/signalvane/internal/contract"
	"github.com/signalvane/signalvane/internal/iocache"
)

func main() {
	defer iocache.CloseCaching()
	cmd.SetCacheManager(iocache.Manager)

	err := cmd.Execute()
	if stopErr := cmd.StopProfiling(); stopErr != nil {
		contract.LogWarn("Cannot stop profiling", stopErr)
	}
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "❌", err)
		iocache.CloseCaching()
		os.Exit(1)
	}
}
