package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/computerscienceiscool/file-explorer/pkg/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Root = t.TempDir()
	cfg.AuditLogPath = filepath.Join(t.TempDir(), "audit.log")
	return cfg
}

func TestBootstrap_Success(t *testing.T) {
	cfg := testConfig(t)
	cfg.AuditDBPath = filepath.Join(t.TempDir(), "audit.db")

	app, err := Bootstrap(cfg)
	if err != nil {
		t.Fatalf("Bootstrap() error = %v", err)
	}
	defer app.Close()

	if app.GetStore() == nil {
		t.Error("App store is nil")
	}
	if app.GetAuditDB() == nil {
		t.Error("App audit database is nil")
	}
	if app.GetSnapshotter() != nil {
		t.Error("snapshots should be off by default")
	}
	if !filepath.IsAbs(app.GetConfig().Root) {
		t.Errorf("Root should be absolute, got %q", app.GetConfig().Root)
	}
}

func TestBootstrap_CreatesMissingRoot(t *testing.T) {
	cfg := testConfig(t)
	cfg.Root = filepath.Join(t.TempDir(), "file-explorer")

	app, err := Bootstrap(cfg)
	if err != nil {
		t.Fatalf("Bootstrap() error = %v", err)
	}
	defer app.Close()

	info, err := os.Stat(cfg.Root)
	if err != nil || !info.IsDir() {
		t.Errorf("root should be created: %v", err)
	}
}

func TestBootstrap_ResolvesRelativePath(t *testing.T) {
	tempDir := t.TempDir()

	originalDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get current directory: %v", err)
	}
	defer os.Chdir(originalDir)

	if err := os.Chdir(tempDir); err != nil {
		t.Fatalf("Failed to change directory: %v", err)
	}

	cfg := testConfig(t)
	cfg.Root = "subdir"

	app, err := Bootstrap(cfg)
	if err != nil {
		t.Fatalf("Bootstrap() error = %v", err)
	}
	defer app.Close()

	if !strings.HasSuffix(app.GetConfig().Root, "subdir") || !filepath.IsAbs(app.GetConfig().Root) {
		t.Errorf("Root = %q, want an absolute path ending in subdir", app.GetConfig().Root)
	}
}

func TestBootstrap_InvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.MaxFileSize = 0

	if _, err := Bootstrap(cfg); err == nil {
		t.Error("Bootstrap() expected error for invalid config")
	}
}

func TestBootstrap_RootIsFile(t *testing.T) {
	cfg := testConfig(t)
	file := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}
	cfg.Root = file

	if _, err := Bootstrap(cfg); err == nil {
		t.Error("Bootstrap() expected error when root is a file")
	}
}

func TestBootstrap_Scratch(t *testing.T) {
	t.Setenv("KEEP_SCRATCH_ROOTS", "")
	cfg := testConfig(t)
	cfg.Root = ""
	cfg.Scratch = true

	app, err := Bootstrap(cfg)
	if err != nil {
		t.Fatalf("Bootstrap() error = %v", err)
	}

	root := app.GetConfig().Root
	if _, err := os.Stat(filepath.Join(root, ".git")); err != nil {
		t.Errorf("scratch root should be a git repository: %v", err)
	}
	if app.GetSnapshotter() == nil {
		t.Error("scratch roots record snapshots")
	}

	if err := app.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, err := os.Stat(root); !os.IsNotExist(err) {
		t.Error("scratch root should be removed on close")
	}
}

func TestOpenSessionSaveAudited(t *testing.T) {
	cfg := testConfig(t)
	cfg.AuditDBPath = filepath.Join(t.TempDir(), "audit.db")
	cfg.Snapshots = true
	if err := os.WriteFile(filepath.Join(cfg.Root, "notes.txt"), []byte("hello world"), 0644); err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}

	app, err := Bootstrap(cfg)
	if err != nil {
		t.Fatalf("Bootstrap() error = %v", err)
	}
	defer app.Close()

	sess, err := app.OpenSession(context.Background(), "notes.txt")
	if err != nil {
		t.Fatalf("OpenSession() error = %v", err)
	}
	if err := sess.SetText("hello there"); err != nil {
		t.Fatalf("SetText() error = %v", err)
	}
	if err := sess.Save(context.Background()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	entries, err := app.GetAuditDB().Recent(sess.ID(), 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(entries) != 2 || entries[0].Command != "save" || entries[1].Command != "open" {
		t.Errorf("unexpected audit entries: %+v", entries)
	}

	history, err := app.GetSnapshotter().History("notes.txt")
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(history) != 1 || history[0] != "save notes.txt" {
		t.Errorf("History = %q", history)
	}

	data, err := os.ReadFile(cfg.AuditLogPath)
	if err != nil {
		t.Fatalf("Failed to read audit log: %v", err)
	}
	if !strings.Contains(string(data), "session:"+sess.ID()+"|save|notes.txt|success|chars:11") {
		t.Errorf("audit log missing save entry: %q", data)
	}
}
