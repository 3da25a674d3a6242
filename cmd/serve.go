package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/signalvane/signalvane/internal/api"
	"github.com/signalvane/signalvane/internal/contract"
	"github.com/signalvane/signalvane/internal/metrics"
	"github.com/spf13/cobra"
)

// serveCmd runs the HTTP API until interrupted.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve narratives, trends and refresh over HTTP.",
	Long: `Start the SignalVane HTTP API.

Routes:
  GET  /narratives          - latest narratives (sort_by, trend, limit)
  GET  /narratives/{name}   - one narrative
  GET  /trends              - trend per narrative
  GET  /ideas               - build ideas (narrative_name)
  GET  /snapshot            - raw signals of the latest refresh
  GET  /history/{name}      - score series of one narrative
  POST /refresh             - run a refresh (force, regenerate)
  GET  /health              - freshness report
  GET  /metrics             - Prometheus metrics

Examples:
  signalvane serve
  signalvane serve --listen 127.0.0.1:9000`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
			contract.LogWarn("Cannot register metrics", err)
		}
		ctx, stop := signal.NotifyContext(rootCtx, os.Interrupt, syscall.SIGTERM)
		defer stop()
		return api.StartAPIServer(ctx, cfg, cacheManager)
	},
}
