package config

// Default configuration values applied before file and environment overrides.
const (
	// DefaultRoot is the default scan root.
	DefaultRoot = "."
	// DefaultDirective is the file-scoped suppression directive recheck targets.
	DefaultDirective = "// @ts-nocheck"
	// DefaultCheckerCommand is the external type checker executable.
	DefaultCheckerCommand = "npx"
	// DefaultCheckerTimeoutSec bounds one checker invocation.
	DefaultCheckerTimeoutSec = 120
	// DefaultPipelineWorkers is the diagnostic collection pool size.
	DefaultPipelineWorkers = 4
	// DefaultLedgerPath is the repository-relative progress ledger location.
	DefaultLedgerPath = ".recheck/progress.json"
	// DefaultSnapshotDir holds pre-transform file snapshots.
	DefaultSnapshotDir = ".recheck/snapshots"
	// DefaultUtilitiesDir is where synthesized helper modules are written.
	DefaultUtilitiesDir = "src/utils"
)

// DefaultCheckerArgs returns the default checker arguments (diagnostics-only mode).
func DefaultCheckerArgs() []string {
	return []string{"tsc", "--noEmit", "--pretty", "false"}
}

// DefaultScanExcludes returns path prefixes skipped by the scanner.
func DefaultScanExcludes() []string {
	return []string{"node_modules", "dist", "build", "coverage", ".recheck"}
}

// DefaultScanExtensions returns the target-language file extensions.
func DefaultScanExtensions() []string {
	return []string{".ts", ".tsx"}
}

// DefaultScanLanguages returns the accepted detected languages.
func DefaultScanLanguages() []string {
	return []string{"TypeScript", "TSX"}
}

// Default returns a fully populated configuration rooted at root.
func Default(root string) *Config {
	if root == "" {
		root = DefaultRoot
	}

	return &Config{
		Root:      root,
		Directive: DefaultDirective,
		Checker: CheckerConfig{
			Command:    DefaultCheckerCommand,
			Args:       DefaultCheckerArgs(),
			TimeoutSec: DefaultCheckerTimeoutSec,
		},
		Scan: ScanConfig{
			Excludes:   DefaultScanExcludes(),
			Extensions: DefaultScanExtensions(),
			Languages:  DefaultScanLanguages(),
		},
		Pipeline:  PipelineConfig{Workers: DefaultPipelineWorkers},
		Ledger:    LedgerConfig{Path: DefaultLedgerPath},
		Snapshots: SnapshotConfig{Dir: DefaultSnapshotDir},
		Utilities: UtilitiesConfig{Dir: DefaultUtilitiesDir},
	}
}
