package app

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/computerscienceiscool/file-explorer/pkg/audit"
	"github.com/computerscienceiscool/file-explorer/pkg/config"
	"github.com/computerscienceiscool/file-explorer/pkg/dynrepo"
	"github.com/computerscienceiscool/file-explorer/pkg/editor"
	"github.com/computerscienceiscool/file-explorer/pkg/sandbox"
	"github.com/computerscienceiscool/file-explorer/pkg/store"
	"github.com/computerscienceiscool/file-explorer/pkg/web"
)

// App represents the main application
type App struct {
	config     *config.Config
	store      *store.Store
	snapshots  *dynrepo.Snapshotter
	fileLog    *sandbox.AuditLogger
	db         *audit.DB
	sink       audit.Sink
	scratchDir string
}

// Serve runs the websocket server until ctx is canceled
func (a *App) Serve(ctx context.Context) error {
	if a.config.Verbose {
		a.printVerboseInfo()
	}
	srv := web.NewServer(a.store, a.sink)
	return srv.ListenAndServe(ctx, a.config.Listen)
}

// OpenSession starts a standalone editor session, as the one-shot commands use
func (a *App) OpenSession(ctx context.Context, path string) (*editor.Session, error) {
	id := uuid.NewString()
	return editor.Open(ctx, a.store, path,
		editor.WithID(id),
		editor.WithAudit(audit.ForSession(a.sink, id)),
	)
}

// Close releases audit resources and removes a scratch root
func (a *App) Close() error {
	var firstErr error
	if a.fileLog != nil {
		if err := a.fileLog.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if a.scratchDir != "" && os.Getenv("KEEP_SCRATCH_ROOTS") != "true" {
		if err := dynrepo.Cleanup(a.scratchDir); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// printVerboseInfo prints verbose configuration information
func (a *App) printVerboseInfo() {
	fmt.Fprintf(os.Stderr, "Root: %s\n", a.config.Root)
	fmt.Fprintf(os.Stderr, "Listen: %s\n", a.config.Listen)
	fmt.Fprintf(os.Stderr, "Max file size: %d bytes\n", a.config.MaxFileSize)
	fmt.Fprintf(os.Stderr, "Allowed extensions: %v\n", a.config.AllowedExtensions)
	fmt.Fprintf(os.Stderr, "Excluded paths: %v\n", a.config.ExcludedPaths)
	fmt.Fprintf(os.Stderr, "Backup enabled: %v\n", a.config.BackupBeforeWrite)
	fmt.Fprintf(os.Stderr, "Snapshots enabled: %v\n", a.snapshots != nil)
	if a.config.AuditLogPath != "" {
		fmt.Fprintf(os.Stderr, "Audit log: %s\n", a.config.AuditLogPath)
	}
	if a.config.AuditDBPath != "" {
		fmt.Fprintf(os.Stderr, "Audit database: %s\n", a.config.AuditDBPath)
	}
}

// GetConfig returns the app's config
func (a *App) GetConfig() *config.Config {
	return a.config
}

// GetStore returns the app's file store
func (a *App) GetStore() *store.Store {
	return a.store
}

// GetAuditDB returns the SQLite audit store, or nil when it is not configured
func (a *App) GetAuditDB() *audit.DB {
	return a.db
}

// GetSnapshotter returns the git snapshotter, or nil when snapshots are off
func (a *App) GetSnapshotter() *dynrepo.Snapshotter {
	return a.snapshots
}
