package sandbox

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/computerscienceiscool/file-explorer/pkg/errors"
)

// ValidatePath resolves requestedPath against root and rejects anything that would
// leave the root, either lexically or through a symlink, or that hits an excluded
// name or directory. The returned path is absolute.
func ValidatePath(requestedPath string, root string, excludedPaths []string) (string, error) {
	// Clean the path to resolve . and .. and remove redundant separators
	cleanPath := filepath.Clean(filepath.FromSlash(requestedPath))

	var absPath string
	if filepath.IsAbs(cleanPath) {
		absPath = cleanPath
	} else {
		absPath = filepath.Join(root, cleanPath)
	}
	absPath = filepath.Clean(absPath)

	if !within(absPath, root) {
		return "", fmt.Errorf("%w: path traversal outside root: %s", apperrors.ErrPathSecurity, requestedPath)
	}

	// Symlinks may point anywhere; compare the resolved location too
	if resolved, err := resolveExisting(absPath); err == nil {
		resolvedRoot, rootErr := filepath.EvalSymlinks(root)
		if rootErr == nil && !within(resolved, resolvedRoot) {
			return "", fmt.Errorf("%w: symlink escapes root: %s", apperrors.ErrPathSecurity, requestedPath)
		}
	}

	for _, excluded := range excludedPaths {
		matched, err := filepath.Match(excluded, filepath.Base(absPath))
		if err != nil {
			continue
		}
		if matched && absPath != root {
			return "", fmt.Errorf("%w: path is in excluded list: %s", apperrors.ErrPathSecurity, filepath.Base(absPath))
		}

		excludedAbs := filepath.Join(root, excluded)
		if strings.HasPrefix(absPath, excludedAbs+string(filepath.Separator)) {
			return "", fmt.Errorf("%w: path is in excluded directory: %s", apperrors.ErrPathSecurity, excluded)
		}
	}

	return absPath, nil
}

// RelativePath converts an absolute path under root back to a slash-separated store path
func RelativePath(absPath, root string) (string, error) {
	rel, err := filepath.Rel(root, absPath)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

func within(path, root string) bool {
	return path == root || strings.HasPrefix(path, root+string(filepath.Separator))
}

// resolveExisting evaluates symlinks on the longest existing prefix of path
// and re-appends the part that does not exist yet.
func resolveExisting(path string) (string, error) {
	rest := ""
	current := path
	for {
		if _, err := os.Lstat(current); err == nil {
			resolved, err := filepath.EvalSymlinks(current)
			if err != nil {
				return "", err
			}
			if rest == "" {
				return resolved, nil
			}
			return filepath.Join(resolved, rest), nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", os.ErrNotExist
		}
		rest = filepath.Join(filepath.Base(current), rest)
		current = parent
	}
}
