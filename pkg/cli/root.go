package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/computerscienceiscool/file-explorer/pkg/config"
	"github.com/computerscienceiscool/file-explorer/pkg/sandbox"
)

// NewRootCmd builds the command tree and binds its flags to viper
func NewRootCmd() *cobra.Command {
	setupViper()

	rootCmd := &cobra.Command{
		Use:   "file-explorer",
		Short: "Browser file manager with an in-browser text editor",
		Long: `file-explorer serves a sandboxed directory to a browser editor over a websocket.
The editor supports find, replace, replace-all, save and save-as.
Without a subcommand it starts the server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			initConfig()
		},
		RunE: runServe,
	}

	// Storage flags
	rootCmd.PersistentFlags().String("root", config.DefaultRoot, "Root directory served to the editor")
	rootCmd.PersistentFlags().Bool("scratch", false, "Serve a temporary git-initialized root")
	rootCmd.PersistentFlags().StringSlice("exclude", config.DefaultExcludedPaths, "Comma-separated list of excluded paths")
	rootCmd.PersistentFlags().StringSlice("allowed-extensions", sandbox.DefaultEditableExtensions, "Comma-separated list of editable file extensions")
	rootCmd.PersistentFlags().Int64("max-size", config.DefaultMaxFileSize, "Maximum file size in bytes (default 1MB)")
	rootCmd.PersistentFlags().Bool("backup", false, "Create a .bak copy before overwriting files")
	rootCmd.PersistentFlags().Bool("snapshots", false, "Commit every save to the git repository at the root")

	// Server flags
	rootCmd.PersistentFlags().String("listen", "", fmt.Sprintf("Listen address (default :$%s or %s)", config.PortEnvVar, config.DefaultListen))

	// Audit flags
	rootCmd.PersistentFlags().String("audit-log", config.DefaultAuditLogPath, "Audit log file (empty disables)")
	rootCmd.PersistentFlags().String("audit-db", "", "SQLite audit database (empty disables)")

	// Output flags
	rootCmd.PersistentFlags().Bool("verbose", false, "Verbose output")

	// Bind flags to viper
	viper.BindPFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(
		newServeCmd(),
		newFindCmd(),
		newReplaceCmd(),
		newStatsCmd(),
		newAuditCmd(),
	)
	return rootCmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}

func setupViper() {
	// Set all default values in Viper
	config.SetViperDefaults()

	viper.SetConfigName(config.ConfigFileName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME")

	// Enable environment variables with EXPLORER prefix
	viper.SetEnvPrefix(config.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}
