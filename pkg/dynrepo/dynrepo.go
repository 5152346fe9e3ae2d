package dynrepo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

const (
	scratchDirBase = "/tmp/file-explorer-scratch"
	authorName     = "File Explorer"
	authorEmail    = "file-explorer@example.com"
)

// CreateScratch creates a throwaway root with an initialized git repository.
// If KEEP_SCRATCH_ROOTS=true, the root persists after the program exits.
// Otherwise, the caller is responsible for cleanup.
func CreateScratch() (string, error) {
	var dir string
	var err error

	if os.Getenv("KEEP_SCRATCH_ROOTS") == "true" {
		if err = os.MkdirAll(scratchDirBase, 0755); err != nil {
			return "", fmt.Errorf("failed to create base directory: %w", err)
		}
		dir, err = os.MkdirTemp(scratchDirBase, "root-")
		if err != nil {
			return "", fmt.Errorf("failed to create scratch directory: %w", err)
		}
	} else {
		dir, err = os.MkdirTemp("", "file-explorer-")
		if err != nil {
			return "", fmt.Errorf("failed to create temp directory: %w", err)
		}
	}

	repo, err := initRepo(dir)
	if err != nil {
		os.RemoveAll(dir)
		return "", err
	}

	// Create an initial commit so HEAD points to something
	readme := []byte("# Scratch Root\n\nFiles saved from the editor are committed here.\n")
	if err := os.WriteFile(filepath.Join(dir, "README.md"), readme, 0644); err != nil {
		os.RemoveAll(dir)
		return "", fmt.Errorf("failed to create README: %w", err)
	}
	if err := commitFile(repo, "README.md", "Initial commit"); err != nil {
		os.RemoveAll(dir)
		return "", err
	}

	return dir, nil
}

// Cleanup removes a scratch root
func Cleanup(dir string) error {
	return os.RemoveAll(dir)
}

// Snapshotter commits every saved file to the git repository at the store root
type Snapshotter struct {
	mu   sync.Mutex
	repo *git.Repository
}

// OpenSnapshotter opens the repository at root, initializing one if none exists
func OpenSnapshotter(root string) (*Snapshotter, error) {
	repo, err := git.PlainOpen(root)
	if errors.Is(err, git.ErrRepositoryNotExists) {
		repo, err = initRepo(root)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot repository: %w", err)
	}
	return &Snapshotter{repo: repo}, nil
}

// Snapshot stages relPath and commits it with message. Unchanged files are skipped.
func (s *Snapshotter) Snapshot(ctx context.Context, relPath, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	wt, err := s.repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return fmt.Errorf("failed to read worktree status: %w", err)
	}
	// clean tracked files are absent from the status map
	if _, changed := status[relPath]; !changed {
		return nil
	}
	return commitFile(s.repo, relPath, message)
}

// History returns the commit messages that touched relPath, newest first
func (s *Snapshotter) History(relPath string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	iter, err := s.repo.Log(&git.LogOptions{FileName: &relPath})
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	defer iter.Close()

	var messages []string
	err = iter.ForEach(func(c *object.Commit) error {
		messages = append(messages, strings.TrimSpace(c.Message))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	return messages, nil
}

func initRepo(dir string) (*git.Repository, error) {
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize git repository: %w", err)
	}

	cfg, err := repo.Config()
	if err != nil {
		return nil, fmt.Errorf("failed to get repository config: %w", err)
	}
	cfg.User.Name = authorName
	cfg.User.Email = authorEmail
	if err := repo.SetConfig(cfg); err != nil {
		return nil, fmt.Errorf("failed to set repository config: %w", err)
	}
	return repo, nil
}

func commitFile(repo *git.Repository, relPath, message string) error {
	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}
	if _, err := wt.Add(relPath); err != nil {
		return fmt.Errorf("failed to add %s: %w", relPath, err)
	}
	_, err = wt.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  authorName,
			Email: authorEmail,
			When:  time.Now(),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to commit %s: %w", relPath, err)
	}
	return nil
}
