// Package commands implements CLI command handlers for recheck.
package commands

import (
	"log/slog"
	"path/filepath"

	"github.com/Sumatoshi-tech/recheck/internal/config"
	"github.com/Sumatoshi-tech/recheck/internal/observability"
	"github.com/Sumatoshi-tech/recheck/internal/scan"
	"github.com/Sumatoshi-tech/recheck/pkg/version"
)

// loadConfig resolves configuration and applies the root positional argument.
func loadConfig(configPath string, args []string) (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	if len(args) > 0 && args[0] != "" {
		cfg.Root = args[0]
	}

	return cfg, nil
}

// initObservability builds providers for CLI command execution.
func initObservability(verbose bool) (observability.Providers, error) {
	cfg := observability.DefaultConfig()
	cfg.ServiceVersion = version.Version
	cfg.Mode = observability.ModeCLI

	if verbose {
		cfg.LogLevel = slog.LevelDebug
	}

	return observability.Init(cfg)
}

// newScanner builds the configured suppressed-file scanner.
func newScanner(cfg *config.Config, logger *slog.Logger) *scan.Scanner {
	return scan.New(cfg.Root, cfg.Directive, scan.Options{
		Excludes:   cfg.Scan.Excludes,
		Extensions: cfg.Scan.Extensions,
		Languages:  cfg.Scan.Languages,
		Logger:     logger,
	})
}

// ledgerPath resolves the configured ledger location under the scan root.
func ledgerPath(cfg *config.Config) string {
	if filepath.IsAbs(cfg.Ledger.Path) {
		return cfg.Ledger.Path
	}

	return filepath.Join(cfg.Root, cfg.Ledger.Path)
}
