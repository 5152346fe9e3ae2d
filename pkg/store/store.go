package store

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	apperrors "github.com/computerscienceiscool/file-explorer/pkg/errors"
	"github.com/computerscienceiscool/file-explorer/pkg/sandbox"
)

// Snapshotter records a saved file in version control
type Snapshotter interface {
	Snapshot(ctx context.Context, relPath, message string) error
}

// Config holds the limits applied to every store operation
type Config struct {
	Root              string
	ExcludedPaths     []string
	AllowedExtensions []string
	MaxFileSize       int64
	BackupBeforeWrite bool
}

// Store reads and writes text files under a single root directory
type Store struct {
	cfg         Config
	snapshotter Snapshotter
}

// New creates a store rooted at cfg.Root, which must exist
func New(cfg Config) (*Store, error) {
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve store root: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("store root not accessible: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("store root is not a directory: %s", root)
	}
	cfg.Root = root
	return &Store{cfg: cfg}, nil
}

// SetSnapshotter enables version snapshots after each successful save
func (s *Store) SetSnapshotter(snap Snapshotter) {
	s.snapshotter = snap
}

// Root returns the absolute store root
func (s *Store) Root() string {
	return s.cfg.Root
}

// LoadText returns the content and base name of the text file at relPath
func (s *Store) LoadText(ctx context.Context, relPath string) (string, string, error) {
	if err := ctx.Err(); err != nil {
		return "", "", err
	}

	safePath, err := s.resolve("load", relPath)
	if err != nil {
		return "", "", err
	}

	info, err := os.Stat(safePath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", "", &apperrors.StoreError{Op: "load", Path: relPath, Err: apperrors.ErrNotFound}
		}
		return "", "", &apperrors.StoreError{Op: "load", Path: relPath, Err: err}
	}
	if info.IsDir() {
		return "", "", &apperrors.StoreError{Op: "load", Path: relPath, Err: fmt.Errorf("%w: is a directory", apperrors.ErrNotEditable)}
	}
	if err := sandbox.ValidateEditExtension(safePath, s.cfg.AllowedExtensions); err != nil {
		return "", "", &apperrors.StoreError{Op: "load", Path: relPath, Err: err}
	}
	if s.cfg.MaxFileSize > 0 && info.Size() > s.cfg.MaxFileSize {
		return "", "", &apperrors.StoreError{Op: "load", Path: relPath, Err: fmt.Errorf("%w: file too large (%d bytes, max %d)",
			apperrors.ErrResourceLimit, info.Size(), s.cfg.MaxFileSize)}
	}

	data, err := os.ReadFile(safePath)
	if err != nil {
		return "", "", &apperrors.StoreError{Op: "load", Path: relPath, Err: err}
	}
	return string(data), filepath.Base(safePath), nil
}

// SaveText overwrites (or creates) the text file at relPath
func (s *Store) SaveText(ctx context.Context, relPath, content string) error {
	safePath, err := s.prepareWrite(ctx, "save", relPath, content)
	if err != nil {
		return err
	}

	if s.cfg.BackupBeforeWrite {
		if _, err := os.Stat(safePath); err == nil {
			if _, err := CreateBackup(safePath); err != nil {
				return &apperrors.StoreError{Op: "save", Path: relPath, Err: err}
			}
		}
	}

	if err := WriteFileAtomic(safePath, []byte(content)); err != nil {
		return &apperrors.StoreError{Op: "save", Path: relPath, Err: err}
	}

	s.snapshot(ctx, safePath, "save "+relPath)
	return nil
}

// CreateText writes a new text file at relPath and refuses to replace an existing one
func (s *Store) CreateText(ctx context.Context, relPath, content string) error {
	safePath, err := s.prepareWrite(ctx, "create", relPath, content)
	if err != nil {
		return err
	}

	if _, err := os.Lstat(safePath); err == nil {
		return &apperrors.StoreError{Op: "create", Path: relPath, Err: apperrors.ErrAlreadyExists}
	}

	if err := writeFileExclusive(safePath, []byte(content)); err != nil {
		if os.IsExist(err) {
			return &apperrors.StoreError{Op: "create", Path: relPath, Err: apperrors.ErrAlreadyExists}
		}
		return &apperrors.StoreError{Op: "create", Path: relPath, Err: err}
	}

	s.snapshot(ctx, safePath, "create "+relPath)
	return nil
}

func (s *Store) resolve(op, relPath string) (string, error) {
	safePath, err := sandbox.ValidatePath(relPath, s.cfg.Root, s.cfg.ExcludedPaths)
	if err != nil {
		return "", &apperrors.StoreError{Op: op, Path: relPath, Err: err}
	}
	return safePath, nil
}

func (s *Store) prepareWrite(ctx context.Context, op, relPath, content string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	safePath, err := s.resolve(op, relPath)
	if err != nil {
		return "", err
	}
	if safePath == s.cfg.Root {
		return "", &apperrors.StoreError{Op: op, Path: relPath, Err: fmt.Errorf("%w: is a directory", apperrors.ErrNotEditable)}
	}
	if info, err := os.Stat(safePath); err == nil && info.IsDir() {
		return "", &apperrors.StoreError{Op: op, Path: relPath, Err: fmt.Errorf("%w: is a directory", apperrors.ErrNotEditable)}
	}
	if err := sandbox.ValidateEditExtension(safePath, s.cfg.AllowedExtensions); err != nil {
		return "", &apperrors.StoreError{Op: op, Path: relPath, Err: err}
	}
	if s.cfg.MaxFileSize > 0 && int64(len(content)) > s.cfg.MaxFileSize {
		return "", &apperrors.StoreError{Op: op, Path: relPath, Err: fmt.Errorf("%w: content too large (%d bytes, max %d)",
			apperrors.ErrResourceLimit, len(content), s.cfg.MaxFileSize)}
	}

	if err := os.MkdirAll(filepath.Dir(safePath), 0755); err != nil {
		return "", &apperrors.StoreError{Op: op, Path: relPath, Err: fmt.Errorf("failed to create directory: %w", err)}
	}
	return safePath, nil
}

// snapshot failures do not undo a write that already reached disk
func (s *Store) snapshot(ctx context.Context, safePath, message string) {
	if s.snapshotter == nil {
		return
	}
	rel, err := sandbox.RelativePath(safePath, s.cfg.Root)
	if err != nil {
		log.Printf("Warning: snapshot skipped for %s: %v", safePath, err)
		return
	}
	if err := s.snapshotter.Snapshot(ctx, rel, message); err != nil {
		log.Printf("Warning: snapshot failed for %s: %v", rel, err)
	}
}

// CreateBackup copies an existing file to <path>.bak.<unix seconds>
func CreateBackup(filePath string) (string, error) {
	backupPath := fmt.Sprintf("%s.bak.%d", filePath, time.Now().Unix())

	original, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read original file: %w", err)
	}
	if err := os.WriteFile(backupPath, original, 0644); err != nil {
		return "", fmt.Errorf("failed to create backup: %w", err)
	}
	return backupPath, nil
}

// WriteFileAtomic writes data to a temp file next to filePath and renames it into place
func WriteFileAtomic(filePath string, data []byte) error {
	tempPath := tempName(filePath)

	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tempPath, filePath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to move temp file: %w", err)
	}
	return nil
}

// writeFileExclusive is WriteFileAtomic that fails with an os.ErrExist error
// when filePath appears before the final link.
func writeFileExclusive(filePath string, data []byte) error {
	tempPath := tempName(filePath)

	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	defer os.Remove(tempPath)

	if err := os.Link(tempPath, filePath); err != nil {
		return err
	}
	return nil
}

func tempName(filePath string) string {
	return filePath + ".tmp." + strconv.FormatInt(time.Now().UnixNano(), 10)
}
