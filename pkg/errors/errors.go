package errors

import (
	stderrors "errors"
	"fmt"
	"regexp"
	"strings"
)

// Error kinds surfaced by the store and the editor session
var (
	ErrNotFound       = fmt.Errorf("NOT_FOUND")
	ErrNotEditable    = fmt.Errorf("NOT_EDITABLE")
	ErrAlreadyExists  = fmt.Errorf("ALREADY_EXISTS")
	ErrPersist        = fmt.Errorf("PERSIST_ERROR")
	ErrNoActiveMatch  = fmt.Errorf("NO_ACTIVE_MATCH")
	ErrRange          = fmt.Errorf("RANGE_ERROR")
	ErrPathSecurity   = fmt.Errorf("PATH_SECURITY")
	ErrResourceLimit  = fmt.Errorf("RESOURCE_LIMIT")
	ErrInvalidName    = fmt.Errorf("INVALID_NAME")
	ErrUnsavedChanges = fmt.Errorf("UNSAVED_CHANGES")
	ErrSessionClosed  = fmt.Errorf("SESSION_CLOSED")
	ErrStaleIndex     = fmt.Errorf("STALE_INDEX")
)

// kinds is ordered so that Code reports the most specific kind first
var kinds = []error{
	ErrNotFound,
	ErrNotEditable,
	ErrAlreadyExists,
	ErrPathSecurity,
	ErrResourceLimit,
	ErrInvalidName,
	ErrNoActiveMatch,
	ErrRange,
	ErrStaleIndex,
	ErrUnsavedChanges,
	ErrSessionClosed,
	ErrPersist,
}

// StoreError wraps failures coming out of the file store
type StoreError struct {
	Op   string
	Path string
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// PersistError reports a save that did not reach the store.
// Is(ErrPersist) always holds; the store cause stays reachable through Unwrap.
type PersistError struct {
	Path string
	Err  error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("%s: could not save %s: %v", ErrPersist, e.Path, e.Err)
}

func (e *PersistError) Unwrap() []error {
	return []error{ErrPersist, e.Err}
}

// RangeError reports buffer offsets outside [0, Len]
type RangeError struct {
	Start int
	End   int
	Len   int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s: range [%d,%d) invalid for length %d", ErrRange, e.Start, e.End, e.Len)
}

func (e *RangeError) Unwrap() error {
	return ErrRange
}

// Is is a shorthand for the standard library errors.Is
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As is a shorthand for the standard library errors.As
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// Code returns the error kind code, or "INTERNAL" for unclassified errors
func Code(err error) string {
	if err == nil {
		return ""
	}
	var persistErr *PersistError
	if stderrors.As(err, &persistErr) {
		return ErrPersist.Error()
	}
	for _, kind := range kinds {
		if stderrors.Is(err, kind) {
			return kind.Error()
		}
	}
	return "INTERNAL"
}

var (
	unixPath = regexp.MustCompile(`(^|[\s('"])/[a-zA-Z0-9/_\-\.]+/`)
	winPath  = regexp.MustCompile(`(^|[\s('"])[A-Z]:\\[a-zA-Z0-9\\_\-\.]+\\`)
)

// Message returns the user-visible text for err.
// Directory prefixes of absolute paths are removed so the sandbox root is never shown.
func Message(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	msg = unixPath.ReplaceAllString(msg, "$1")
	msg = winPath.ReplaceAllString(msg, "$1")
	return strings.TrimSpace(msg)
}
