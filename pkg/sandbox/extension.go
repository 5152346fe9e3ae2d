package sandbox

import (
	"fmt"
	"path/filepath"
	"strings"

	apperrors "github.com/computerscienceiscool/file-explorer/pkg/errors"
)

// DefaultEditableExtensions lists the text formats the editor opens when no
// explicit list is configured. Files without an extension are always editable.
var DefaultEditableExtensions = []string{
	".txt", ".json", ".csv", ".tsv", ".xml", ".html", ".css", ".js",
	".md", ".yaml", ".yml", ".ini", ".conf", ".log",
}

// IsEditable reports whether filePath may be opened in the editor
func IsEditable(filePath string, allowedExtensions []string) bool {
	if len(allowedExtensions) == 0 {
		allowedExtensions = DefaultEditableExtensions
	}

	ext := strings.ToLower(filepath.Ext(filePath))
	if ext == "" {
		return true
	}

	for _, allowedExt := range allowedExtensions {
		if strings.ToLower(allowedExt) == ext {
			return true
		}
	}
	return false
}

// ValidateEditExtension checks if the file extension is allowed for editing
func ValidateEditExtension(filePath string, allowedExtensions []string) error {
	if IsEditable(filePath, allowedExtensions) {
		return nil
	}
	return fmt.Errorf("%w: file extension not allowed: %s", apperrors.ErrNotEditable, strings.ToLower(filepath.Ext(filePath)))
}
