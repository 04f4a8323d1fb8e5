package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"printfarm-backend/config"
	"printfarm-backend/internal/logging"
)

const defaultConfigPath = "./config/config.yaml"

// addConfigFlag registers --config on cmd. The flag wins over CONFIG_PATH.
func addConfigFlag(cmd *cobra.Command, path *string) {
	cmd.Flags().StringVarP(path, "config", "c", "", "path to config file (default $CONFIG_PATH or "+defaultConfigPath+")")
}

func resolveConfigPath(flag string) string {
	if flag != "" {
		return flag
	}
	if env := os.Getenv("CONFIG_PATH"); env != "" {
		return env
	}
	return defaultConfigPath
}

// loadConfig loads and validates the config, then builds the logger it asks for.
func loadConfig(flag string) (*config.Config, *zap.SugaredLogger, error) {
	path := resolveConfigPath(flag)
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration from %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration in %s: %w", path, err)
	}

	log, err := logging.New(cfg.Logging.Level, cfg.Logging.Development)
	if err != nil {
		return nil, nil, err
	}
	log.Infow("configuration loaded", "path", path)
	return cfg, log, nil
}
