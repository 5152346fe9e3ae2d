package cli

import (
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/computerscienceiscool/file-explorer/pkg/app"
	"github.com/computerscienceiscool/file-explorer/pkg/config"
)

// initConfig reads in config file and ENV variables if set
func initConfig() {
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file was found but another error was produced
			fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
		}
		// Config file not found; using defaults and flags
	}
}

// buildConfig constructs a config.Config from Viper values
func buildConfig() (*config.Config, error) {
	cfg := &config.Config{
		Root:              viper.GetString("root"),
		Scratch:           viper.GetBool("scratch"),
		ExcludedPaths:     viper.GetStringSlice("exclude"),
		AllowedExtensions: viper.GetStringSlice("allowed-extensions"),
		MaxFileSize:       viper.GetInt64("max-size"),
		Listen:            listenAddress(),
		BackupBeforeWrite: viper.GetBool("backup"),
		Snapshots:         viper.GetBool("snapshots"),
		AuditLogPath:      viper.GetString("audit-log"),
		AuditDBPath:       viper.GetString("audit-db"),
		Verbose:           viper.GetBool("verbose"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// listenAddress prefers the listen setting, then HTTP_PORT, then the default port
func listenAddress() string {
	if listen := viper.GetString("listen"); listen != "" {
		return listen
	}
	if port := os.Getenv(config.PortEnvVar); port != "" {
		return ":" + port
	}
	return config.DefaultListen
}

// bootstrapApp builds the config and wraps the app.Bootstrap function
func bootstrapApp() (*app.App, error) {
	cfg, err := buildConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to build config: %w", err)
	}
	a, err := app.Bootstrap(cfg)
	if err != nil {
		return nil, fmt.Errorf("bootstrap failed: %w", err)
	}
	return a, nil
}
