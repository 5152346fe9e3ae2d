package config

import (
	"fmt"
)

// Config represents the complete application configuration
type Config struct {
	Root              string
	Scratch           bool
	ExcludedPaths     []string
	AllowedExtensions []string
	MaxFileSize       int64
	Listen            string
	BackupBeforeWrite bool
	Snapshots         bool
	AuditLogPath      string
	AuditDBPath       string
	Verbose           bool
}

// Validate rejects settings the store or server cannot run with
func (c *Config) Validate() error {
	if c.Root == "" && !c.Scratch {
		return fmt.Errorf("root directory is required")
	}
	if c.MaxFileSize <= 0 {
		return fmt.Errorf("max-size must be positive, got %d", c.MaxFileSize)
	}
	if c.Listen == "" {
		return fmt.Errorf("listen address is required")
	}
	return nil
}
