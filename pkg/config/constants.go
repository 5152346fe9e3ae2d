package config

// Default values and limits for the file explorer
const (
	// Storage
	DefaultRoot        = "file-explorer"
	DefaultMaxFileSize = 1 * 1024 * 1024 // 1MB - maximum size of a file opened in the editor

	// Transport
	DefaultPort   = "3100"
	DefaultListen = ":" + DefaultPort
	PortEnvVar    = "HTTP_PORT"

	// Audit log configuration
	DefaultAuditLogPath = "audit.log"
	DefaultAuditLimit   = 50

	// Config file lookup
	ConfigFileName = "file-explorer.config"
	EnvPrefix      = "EXPLORER"
)

// DefaultExcludedPaths are never served, whatever the root
var DefaultExcludedPaths = []string{".git", ".env", "*.key", "*.pem"}
