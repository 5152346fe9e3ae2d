package editor

import (
	"context"
	"fmt"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	apperrors "github.com/computerscienceiscool/file-explorer/pkg/errors"
)

// FileStore is the file store the session loads from and saves to.
// Paths are relative to the store root and use forward slashes.
type FileStore interface {
	LoadText(ctx context.Context, path string) (content, filename string, err error)
	SaveText(ctx context.Context, path, content string) error
	CreateText(ctx context.Context, path, content string) error
}

// AuditFunc receives the outcome of every session operation that touches the store
type AuditFunc func(cmd, arg string, success bool, errMsg string)

// State is the life-cycle state of a session
type State int

const (
	StateClosed State = iota
	StateClean
	StateDirty
)

func (s State) String() string {
	switch s {
	case StateClean:
		return "clean"
	case StateDirty:
		return "dirty"
	default:
		return "closed"
	}
}

// Stats are the line and character counters shown under the editor
type Stats struct {
	Lines int `json:"lines"`
	Chars int `json:"chars"`
}

// Session is one open editing session. It is not safe for concurrent use.
type Session struct {
	id       string
	path     string
	filename string
	original string
	buf      *Buffer
	finder   *Finder
	store    FileStore
	audit    AuditFunc
	closed   bool
}

// Option configures a session at open time
type Option func(*Session)

// WithAudit routes operation outcomes to fn
func WithAudit(fn AuditFunc) Option {
	return func(s *Session) {
		s.audit = fn
	}
}

// WithID overrides the generated session identifier
func WithID(id string) Option {
	return func(s *Session) {
		if id != "" {
			s.id = id
		}
	}
}

// Open loads path from store and starts a clean session on it
func Open(ctx context.Context, store FileStore, filePath string, opts ...Option) (*Session, error) {
	s := &Session{
		id:    uuid.NewString(),
		path:  filePath,
		store: store,
	}
	for _, opt := range opts {
		opt(s)
	}

	content, filename, err := store.LoadText(ctx, filePath)
	if err != nil {
		s.logAudit("open", filePath, false, apperrors.Message(err))
		return nil, err
	}

	s.filename = filename
	s.original = content
	s.buf = NewBuffer(content)
	s.finder = NewFinder(s.buf)
	s.logAudit("open", filePath, true, "")
	return s, nil
}

// ID returns the session identifier
func (s *Session) ID() string {
	return s.id
}

// Path returns the store path being edited
func (s *Session) Path() string {
	return s.path
}

// Filename returns the base name reported by the store
func (s *Session) Filename() string {
	return s.filename
}

// Text returns the working content
func (s *Session) Text() (string, error) {
	if s.closed {
		return "", apperrors.ErrSessionClosed
	}
	return s.buf.Text(), nil
}

// Dirty reports whether the working content differs from the last loaded or saved content
func (s *Session) Dirty() bool {
	if s.closed {
		return false
	}
	return s.buf.Text() != s.original
}

// State returns the current life-cycle state
func (s *Session) State() State {
	switch {
	case s.closed:
		return StateClosed
	case s.Dirty():
		return StateDirty
	default:
		return StateClean
	}
}

// SetText replaces the whole working content, as a typed edit does
func (s *Session) SetText(text string) error {
	if s.closed {
		return apperrors.ErrSessionClosed
	}
	s.buf.SetText(text)
	s.refind()
	return nil
}

// Edit replaces [start, end) of the working content with text
func (s *Session) Edit(start, end int, text string) error {
	if s.closed {
		return apperrors.ErrSessionClosed
	}
	if _, err := s.buf.ReplaceRange(start, end, text); err != nil {
		return err
	}
	s.refind()
	return nil
}

// refind keeps the index in step with the buffer after an edit
func (s *Session) refind() {
	if !s.finder.Query().IsEmpty() {
		s.finder.Rebuild()
	}
}

// Find sets the query and rebuilds the match index
func (s *Session) Find(q Query) error {
	if s.closed {
		return apperrors.ErrSessionClosed
	}
	s.finder.SetQuery(q)
	return nil
}

// ClearFind drops the query and all match state, as closing the find panel does
func (s *Session) ClearFind() error {
	if s.closed {
		return apperrors.ErrSessionClosed
	}
	s.finder.Clear()
	return nil
}

// Next moves to the next match
func (s *Session) Next() error {
	if s.closed {
		return apperrors.ErrSessionClosed
	}
	s.finder.Next()
	return nil
}

// Previous moves to the previous match
func (s *Session) Previous() error {
	if s.closed {
		return apperrors.ErrSessionClosed
	}
	s.finder.Previous()
	return nil
}

// ReplaceCurrent replaces the current match with text
func (s *Session) ReplaceCurrent(text string) error {
	if s.closed {
		return apperrors.ErrSessionClosed
	}
	return s.finder.ReplaceCurrent(text)
}

// ReplaceAll replaces every occurrence of the query with text
func (s *Session) ReplaceAll(text string) (int, error) {
	if s.closed {
		return 0, apperrors.ErrSessionClosed
	}
	q := s.finder.Query()
	count, err := s.finder.ReplaceAll(text)
	if err != nil {
		s.logAudit("replace-all", q.Pattern, false, apperrors.Message(err))
		return 0, err
	}
	s.logAudit("replace-all", q.Pattern, true, fmt.Sprintf("count:%d", count))
	return count, nil
}

// Query returns the active query
func (s *Session) Query() Query {
	if s.closed {
		return Query{}
	}
	return s.finder.Query()
}

// Matches returns the current match spans
func (s *Session) Matches() []Span {
	if s.closed {
		return nil
	}
	return s.finder.Index().Spans()
}

// Position returns the cursor position, or -1
func (s *Session) Position() int {
	if s.closed {
		return -1
	}
	return s.finder.Position()
}

// Current returns the match under the cursor
func (s *Session) Current() (Span, bool) {
	if s.closed {
		return Span{}, false
	}
	return s.finder.Current()
}

// FindStatus returns the find panel status text
func (s *Session) FindStatus() string {
	if s.closed {
		return ""
	}
	return s.finder.Status()
}

// Stats returns the counters for the working content
func (s *Session) Stats() Stats {
	if s.closed {
		return Stats{}
	}
	return ComputeStats(s.buf.Text())
}

// ComputeStats counts lines split on "\n" and characters in runes
func ComputeStats(text string) Stats {
	return Stats{
		Lines: strings.Count(text, "\n") + 1,
		Chars: utf8.RuneCountInString(text),
	}
}

// Save writes the working content back to the session path.
// A failed save leaves the session dirty so the caller can retry.
func (s *Session) Save(ctx context.Context) error {
	if s.closed {
		return apperrors.ErrSessionClosed
	}

	content := s.buf.Text()
	if err := s.store.SaveText(ctx, s.path, content); err != nil {
		perr := &apperrors.PersistError{Path: s.path, Err: err}
		s.logAudit("save", s.path, false, apperrors.Message(perr))
		return perr
	}

	s.original = content
	s.logAudit("save", s.path, true, fmt.Sprintf("chars:%d", utf8.RuneCountInString(content)))
	return nil
}

// SaveAs writes the working content to newName next to the session path and
// returns the new path. The session keeps editing its original path.
func (s *Session) SaveAs(ctx context.Context, newName string) (string, error) {
	if s.closed {
		return "", apperrors.ErrSessionClosed
	}

	newPath, err := siblingPath(s.path, newName)
	if err != nil {
		s.logAudit("save-as", newName, false, apperrors.Message(err))
		return "", err
	}

	if err := s.store.CreateText(ctx, newPath, s.buf.Text()); err != nil {
		if !keepsKind(err) {
			err = &apperrors.PersistError{Path: newPath, Err: err}
		}
		s.logAudit("save-as", newPath, false, apperrors.Message(err))
		return "", err
	}

	s.logAudit("save-as", newPath, true, "")
	return newPath, nil
}

// Close ends the session. Unsaved changes need confirmed set.
func (s *Session) Close(confirmed bool) error {
	if s.closed {
		return apperrors.ErrSessionClosed
	}
	if s.Dirty() && !confirmed {
		return apperrors.ErrUnsavedChanges
	}

	discarded := s.Dirty()
	s.closed = true
	s.finder = nil
	s.buf = nil
	s.logAudit("close", s.path, true, fmt.Sprintf("discarded:%t", discarded))
	return nil
}

func (s *Session) logAudit(cmd, arg string, success bool, errMsg string) {
	if s.audit != nil {
		s.audit(cmd, arg, success, errMsg)
	}
}

// keepsKind reports whether a saveAs failure is a rejection of the target
// rather than a write failure, so it surfaces under its own kind
func keepsKind(err error) bool {
	return apperrors.Is(err, apperrors.ErrAlreadyExists) ||
		apperrors.Is(err, apperrors.ErrNotEditable) ||
		apperrors.Is(err, apperrors.ErrResourceLimit) ||
		apperrors.Is(err, apperrors.ErrPathSecurity)
}

// siblingPath joins name onto the directory of p. name must be a bare file name.
func siblingPath(p, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", apperrors.ErrInvalidName, name)
	}
	dir := path.Dir(strings.ReplaceAll(p, `\`, "/"))
	if dir == "." {
		return name, nil
	}
	return path.Join(dir, name), nil
}
