package config

import (
	"github.com/spf13/viper"

	"github.com/computerscienceiscool/file-explorer/pkg/sandbox"
)

// SetViperDefaults sets all default configuration values in Viper.
// listen is left unset so HTTP_PORT can take over.
func SetViperDefaults() {
	// Storage defaults
	viper.SetDefault("root", DefaultRoot)
	viper.SetDefault("scratch", false)
	viper.SetDefault("exclude", DefaultExcludedPaths)
	viper.SetDefault("allowed-extensions", sandbox.DefaultEditableExtensions)
	viper.SetDefault("max-size", DefaultMaxFileSize)
	viper.SetDefault("backup", false)
	viper.SetDefault("snapshots", false)

	// Audit defaults
	viper.SetDefault("audit-log", DefaultAuditLogPath)
	viper.SetDefault("audit-db", "")

	// Output defaults
	viper.SetDefault("verbose", false)
}

// Default returns a Config populated with the built-in defaults
func Default() *Config {
	return &Config{
		Root:              DefaultRoot,
		ExcludedPaths:     append([]string(nil), DefaultExcludedPaths...),
		AllowedExtensions: append([]string(nil), sandbox.DefaultEditableExtensions...),
		MaxFileSize:       DefaultMaxFileSize,
		Listen:            DefaultListen,
		AuditLogPath:      DefaultAuditLogPath,
	}
}
