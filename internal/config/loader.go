// Package config loads and validates recheck configuration from file,
// environment variables, and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// configName is the config file name without extension.
const configName = ".recheck"

// configType is the config file format.
const configType = "yaml"

// envPrefix is the environment variable prefix for recheck settings.
const envPrefix = "RECHECK"

// envKeySeparator is the nested key separator in environment variable names.
const envKeySeparator = "_"

// LoadConfig loads configuration from file, env vars, and defaults.
// If configPath is non-empty, it is used as the explicit config file path.
// Otherwise, the config file is searched in CWD and $HOME.
// Missing config file is not an error; defaults are used.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	applyDefaults(viperCfg)

	viperCfg.SetConfigType(configType)
	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	viperCfg.AutomaticEnv()

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viperCfg.AddConfigPath(home)
		}
	}

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFound) {
			return nil, fmt.Errorf("read config: %w", readErr)
		}
	}

	var cfg Config

	unmarshalErr := viperCfg.Unmarshal(&cfg)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal config: %w", unmarshalErr)
	}

	validateErr := cfg.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("validate config: %w", validateErr)
	}

	return &cfg, nil
}

func applyDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("root", DefaultRoot)
	viperCfg.SetDefault("directive", DefaultDirective)

	viperCfg.SetDefault("checker.command", DefaultCheckerCommand)
	viperCfg.SetDefault("checker.args", DefaultCheckerArgs())
	viperCfg.SetDefault("checker.timeout_sec", DefaultCheckerTimeoutSec)

	viperCfg.SetDefault("scan.excludes", DefaultScanExcludes())
	viperCfg.SetDefault("scan.extensions", DefaultScanExtensions())
	viperCfg.SetDefault("scan.languages", DefaultScanLanguages())

	viperCfg.SetDefault("pipeline.workers", DefaultPipelineWorkers)

	viperCfg.SetDefault("ledger.path", DefaultLedgerPath)
	viperCfg.SetDefault("snapshots.dir", DefaultSnapshotDir)
	viperCfg.SetDefault("utilities.dir", DefaultUtilitiesDir)
}
