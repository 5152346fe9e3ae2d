package config

import (
	"testing"

	"github.com/spf13/viper"
)

func TestSetViperDefaults(t *testing.T) {
	viper.Reset()
	SetViperDefaults()

	tests := []struct {
		key      string
		got      interface{}
		expected interface{}
	}{
		{"root", viper.GetString("root"), DefaultRoot},
		{"scratch", viper.GetBool("scratch"), false},
		{"max-size", viper.GetInt64("max-size"), int64(DefaultMaxFileSize)},
		{"backup", viper.GetBool("backup"), false},
		{"snapshots", viper.GetBool("snapshots"), false},
		{"audit-log", viper.GetString("audit-log"), DefaultAuditLogPath},
		{"audit-db", viper.GetString("audit-db"), ""},
		{"verbose", viper.GetBool("verbose"), false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, tt.got)
			}
		})
	}

	if viper.IsSet("listen") {
		t.Error("listen should have no default so HTTP_PORT can apply")
	}

	excluded := viper.GetStringSlice("exclude")
	if len(excluded) != len(DefaultExcludedPaths) || excluded[0] != ".git" {
		t.Errorf("unexpected exclude default: %v", excluded)
	}

	extensions := viper.GetStringSlice("allowed-extensions")
	if len(extensions) != 14 {
		t.Errorf("expected 14 editable extensions, got %d: %v", len(extensions), extensions)
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
	if cfg.Listen != ":3100" {
		t.Errorf("Listen = %q, want :3100", cfg.Listen)
	}

	// slices are copies
	cfg.ExcludedPaths[0] = "changed"
	if DefaultExcludedPaths[0] != ".git" {
		t.Error("modifying a config should not affect the defaults")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing root", func(c *Config) { c.Root = "" }},
		{"zero max size", func(c *Config) { c.MaxFileSize = 0 }},
		{"missing listen", func(c *Config) { c.Listen = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() expected error")
			}
		})
	}

	cfg := Default()
	cfg.Root = ""
	cfg.Scratch = true
	if err := cfg.Validate(); err != nil {
		t.Errorf("scratch config without root should be valid: %v", err)
	}
}
