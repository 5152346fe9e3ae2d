package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/computerscienceiscool/file-explorer/pkg/audit"
	"github.com/computerscienceiscool/file-explorer/pkg/config"
	"github.com/computerscienceiscool/file-explorer/pkg/dynrepo"
	"github.com/computerscienceiscool/file-explorer/pkg/sandbox"
	"github.com/computerscienceiscool/file-explorer/pkg/store"
)

// Bootstrap initializes and returns a configured App
func Bootstrap(cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	a := &App{config: cfg}

	if cfg.Scratch {
		dir, err := dynrepo.CreateScratch()
		if err != nil {
			return nil, fmt.Errorf("failed to create scratch root: %w", err)
		}
		cfg.Root = dir
		a.scratchDir = dir
	}

	// Resolve root to absolute path
	absRoot, err := filepath.Abs(cfg.Root)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("cannot resolve root: %w", err)
	}
	cfg.Root = absRoot

	if err := os.MkdirAll(cfg.Root, 0755); err != nil {
		a.Close()
		return nil, fmt.Errorf("cannot create root: %w", err)
	}

	st, err := store.New(store.Config{
		Root:              cfg.Root,
		ExcludedPaths:     cfg.ExcludedPaths,
		AllowedExtensions: cfg.AllowedExtensions,
		MaxFileSize:       cfg.MaxFileSize,
		BackupBeforeWrite: cfg.BackupBeforeWrite,
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	a.store = st

	if cfg.Snapshots || cfg.Scratch {
		snap, err := dynrepo.OpenSnapshotter(cfg.Root)
		if err != nil {
			a.Close()
			return nil, err
		}
		st.SetSnapshotter(snap)
		a.snapshots = snap
	}

	var sinks audit.Fanout
	if cfg.AuditLogPath != "" {
		fileLog, err := sandbox.NewAuditLogger(cfg.AuditLogPath)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.fileLog = fileLog
		sinks = append(sinks, fileLog)
	}
	if cfg.AuditDBPath != "" {
		db, err := audit.Open(cfg.AuditDBPath)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.db = db
		sinks = append(sinks, db)
	}
	if len(sinks) > 0 {
		a.sink = sinks
	}

	return a, nil
}
