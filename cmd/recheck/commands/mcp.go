package commands

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/recheck/internal/mcp"
	"github.com/Sumatoshi-tech/recheck/internal/observability"
	"github.com/Sumatoshi-tech/recheck/pkg/version"
)

// metricsReadTimeout bounds a single scrape request.
const metricsReadTimeout = 10 * time.Second

// NewMCPCommand creates the MCP server command.
func NewMCPCommand() *cobra.Command {
	var (
		configPath  string
		debug       bool
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for AI agent integration",
		Long: `Start a Model Context Protocol (MCP) server on stdio transport.

The MCP server exposes the remediation pipeline as tools that AI agents can
discover and invoke:
  - recheck_scan: List files carrying the suppression directive
  - recheck_remediate: Remediate one suppressed file and report the outcome
  - recheck_progress: Report the durable remediation ledger`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cobraCmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(configPath, nil)
			if err != nil {
				return err
			}

			providers, err := initMCPObservability(debug)
			if err != nil {
				return err
			}

			defer func() {
				shutdownErr := providers.Shutdown(context.Background())
				if shutdownErr != nil {
					providers.Logger.Warn("observability shutdown failed", "error", shutdownErr)
				}
			}()

			metrics, metricsErr := observability.NewRunMetrics(providers.Meter)
			if metricsErr != nil {
				return metricsErr
			}

			if metricsAddr != "" {
				stopMetrics := serveMetrics(metricsAddr, providers)
				defer stopMetrics()
			}

			srv := mcp.NewServer(mcp.ServerDeps{
				Config:  cfg,
				Logger:  providers.Logger,
				Metrics: metrics,
			})

			return srv.Run(cobraCmd.Context())
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "config file path (default: .recheck.yaml)")
	cmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging to stderr")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve a Prometheus /metrics endpoint on this address")

	return cmd
}

// serveMetrics exposes the Prometheus scrape endpoint for a long-running MCP
// session and returns a stop function.
func serveMetrics(addr string, providers observability.Providers) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.MetricsHandler(providers.Registry))

	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: metricsReadTimeout}

	go func() {
		serveErr := server.ListenAndServe()
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			providers.Logger.Warn("metrics endpoint failed", "error", serveErr)
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsReadTimeout)
		defer cancel()

		closeErr := server.Shutdown(shutdownCtx)
		if closeErr != nil {
			providers.Logger.Warn("metrics endpoint shutdown failed", "error", closeErr)
		}
	}
}

func initMCPObservability(debug bool) (observability.Providers, error) {
	cfg := observability.DefaultConfig()
	cfg.ServiceVersion = version.Version
	cfg.Mode = observability.ModeMCP
	cfg.LogJSON = true

	if debug {
		cfg.LogLevel = slog.LevelDebug
	}

	return observability.Init(cfg)
}
