package web

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/computerscienceiscool/file-explorer/pkg/audit"
	"github.com/computerscienceiscool/file-explorer/pkg/editor"
	apperrors "github.com/computerscienceiscool/file-explorer/pkg/errors"
)

var errUnknownSession = fmt.Errorf("%w: unknown session", apperrors.ErrSessionClosed)

// entry serializes every operation on one session, so a close issued while
// a save is in flight waits for the save to resolve.
type entry struct {
	mu   sync.Mutex
	sess *editor.Session
}

// Registry owns the open editor sessions
type Registry struct {
	store editor.FileStore
	sink  audit.Sink

	mu       sync.Mutex
	sessions map[string]*entry
}

// NewRegistry creates an empty registry. sink may be nil.
func NewRegistry(store editor.FileStore, sink audit.Sink) *Registry {
	return &Registry{
		store:    store,
		sink:     sink,
		sessions: make(map[string]*entry),
	}
}

// Open starts a session on path and registers it
func (r *Registry) Open(ctx context.Context, path string) (*editor.Session, error) {
	id := uuid.NewString()
	sess, err := editor.Open(ctx, r.store, path,
		editor.WithID(id),
		editor.WithAudit(audit.ForSession(r.sink, id)),
	)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.sessions[id] = &entry{sess: sess}
	r.mu.Unlock()
	return sess, nil
}

// With runs fn while holding the session's lock
func (r *Registry) With(id string, fn func(*editor.Session) error) error {
	r.mu.Lock()
	e, ok := r.sessions[id]
	r.mu.Unlock()
	if !ok {
		return errUnknownSession
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.sess)
}

// Close closes the session and removes it once the close succeeds
func (r *Registry) Close(id string, confirmed bool) error {
	err := r.With(id, func(sess *editor.Session) error {
		return sess.Close(confirmed)
	})
	if err != nil {
		return err
	}

	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
	return nil
}

// Discard closes the session without a confirmation check, dropping unsaved changes
func (r *Registry) Discard(id string) {
	err := r.With(id, func(sess *editor.Session) error {
		if sess.Dirty() {
			log.Printf("Warning: discarding unsaved session %s (%s)", id, sess.Path())
		}
		return sess.Close(true)
	})
	if err != nil {
		if !apperrors.Is(err, apperrors.ErrSessionClosed) {
			log.Printf("Warning: discarding session %s: %v", id, err)
		}
		return
	}

	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

// DiscardAll closes every session
func (r *Registry) DiscardAll() {
	r.mu.Lock()
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	r.mu.Unlock()

	for _, id := range ids {
		r.Discard(id)
	}
}

// Len returns the number of open sessions
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
