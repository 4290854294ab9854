package config

import "errors"

// Config is the top-level configuration struct for recheck.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Root      string          `mapstructure:"root"`
	Directive string          `mapstructure:"directive"`
	Checker   CheckerConfig   `mapstructure:"checker"`
	Scan      ScanConfig      `mapstructure:"scan"`
	Pipeline  PipelineConfig  `mapstructure:"pipeline"`
	Ledger    LedgerConfig    `mapstructure:"ledger"`
	Snapshots SnapshotConfig  `mapstructure:"snapshots"`
	Utilities UtilitiesConfig `mapstructure:"utilities"`
}

// CheckerConfig describes how the external type checker is invoked.
type CheckerConfig struct {
	Command    string   `mapstructure:"command"`
	Args       []string `mapstructure:"args"`
	TimeoutSec int      `mapstructure:"timeout_sec"`
}

// ScanConfig holds suppression scanner settings.
type ScanConfig struct {
	Excludes   []string `mapstructure:"excludes"`
	Extensions []string `mapstructure:"extensions"`
	Languages  []string `mapstructure:"languages"`
}

// PipelineConfig holds remediation pipeline resource knobs.
type PipelineConfig struct {
	Workers int `mapstructure:"workers"`
}

// LedgerConfig holds progress ledger settings.
type LedgerConfig struct {
	Path string `mapstructure:"path"`
}

// SnapshotConfig holds pre-transform snapshot store settings.
type SnapshotConfig struct {
	Dir string `mapstructure:"dir"`
}

// UtilitiesConfig holds utility synthesizer settings.
type UtilitiesConfig struct {
	Dir string `mapstructure:"dir"`
}

// Sentinel errors for configuration validation.
var (
	// ErrEmptyDirective indicates the suppression directive text is empty.
	ErrEmptyDirective = errors.New("directive must not be empty")
	// ErrEmptyCheckerCommand indicates the checker command is empty.
	ErrEmptyCheckerCommand = errors.New("checker.command must not be empty")
	// ErrInvalidCheckerTimeout indicates the checker timeout is not positive.
	ErrInvalidCheckerTimeout = errors.New("checker.timeout_sec must be positive")
	// ErrInvalidWorkers indicates the workers value is not positive.
	ErrInvalidWorkers = errors.New("pipeline.workers must be positive")
	// ErrNoExtensions indicates the scan extension list is empty.
	ErrNoExtensions = errors.New("scan.extensions must not be empty")
	// ErrEmptyLedgerPath indicates the ledger path is empty.
	ErrEmptyLedgerPath = errors.New("ledger.path must not be empty")
)

// Validate checks Config invariants and returns the first error found.
func (c *Config) Validate() error {
	if c.Directive == "" {
		return ErrEmptyDirective
	}

	if c.Checker.Command == "" {
		return ErrEmptyCheckerCommand
	}

	if c.Checker.TimeoutSec <= 0 {
		return ErrInvalidCheckerTimeout
	}

	if c.Pipeline.Workers <= 0 {
		return ErrInvalidWorkers
	}

	if len(c.Scan.Extensions) == 0 {
		return ErrNoExtensions
	}

	if c.Ledger.Path == "" {
		return ErrEmptyLedgerPath
	}

	return nil
}
