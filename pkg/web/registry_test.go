package web

import (
	"bytes"
	"context"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/computerscienceiscool/file-explorer/pkg/editor"
	apperrors "github.com/computerscienceiscool/file-explorer/pkg/errors"
)

type blockingStore struct {
	fileStore
	started chan struct{}
	release chan struct{}
}

func (b *blockingStore) SaveText(ctx context.Context, path, content string) error {
	close(b.started)
	<-b.release
	return b.fileStore.SaveText(ctx, path, content)
}

func TestCloseWaitsForPendingSave(t *testing.T) {
	inner, _ := newStoreWith(t, map[string]string{"a.txt": "abc"})
	fs := &blockingStore{fileStore: inner, started: make(chan struct{}), release: make(chan struct{})}
	reg := NewRegistry(fs, nil)

	sess, err := reg.Open(context.Background(), "a.txt")
	require.NoError(t, err)
	require.NoError(t, sess.SetText("abcd"))
	id := sess.ID()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		err := reg.With(id, func(s *editor.Session) error { return s.Save(context.Background()) })
		assert.NoError(t, err)
	}()
	<-fs.started

	closed := make(chan error, 1)
	go func() { closed <- reg.Close(id, false) }()

	select {
	case err := <-closed:
		t.Fatalf("close returned before the save finished: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	close(fs.release)
	wg.Wait()

	select {
	case err := <-closed:
		assert.NoError(t, err, "the save succeeded so the session was clean")
	case <-time.After(2 * time.Second):
		t.Fatal("close did not return")
	}
	assert.Equal(t, 0, reg.Len())
}

func TestRegistryUnknownSession(t *testing.T) {
	inner, _ := newStoreWith(t, nil)
	reg := NewRegistry(inner, nil)

	err := reg.With("missing", func(*editor.Session) error { return nil })
	assert.ErrorIs(t, err, apperrors.ErrSessionClosed)
	assert.ErrorIs(t, reg.Close("missing", true), apperrors.ErrSessionClosed)
}

func TestRegistryDiscardAll(t *testing.T) {
	inner, _ := newStoreWith(t, map[string]string{"a.txt": "abc", "b.txt": "def"})
	reg := NewRegistry(inner, nil)

	a, err := reg.Open(context.Background(), "a.txt")
	require.NoError(t, err)
	require.NoError(t, a.SetText("dirty"))
	_, err = reg.Open(context.Background(), "b.txt")
	require.NoError(t, err)
	assert.Equal(t, 2, reg.Len())

	reg.DiscardAll()
	assert.Equal(t, 0, reg.Len())
	assert.Equal(t, editor.StateClosed, a.State())
}

func TestRegistryDiscardWarnsOnUnsavedChanges(t *testing.T) {
	var logs bytes.Buffer
	log.SetOutput(&logs)
	defer log.SetOutput(os.Stderr)

	inner, _ := newStoreWith(t, map[string]string{"a.txt": "abc", "b.txt": "def"})
	reg := NewRegistry(inner, nil)

	clean, err := reg.Open(context.Background(), "a.txt")
	require.NoError(t, err)
	reg.Discard(clean.ID())
	assert.NotContains(t, logs.String(), "unsaved")

	dirty, err := reg.Open(context.Background(), "b.txt")
	require.NoError(t, err)
	require.NoError(t, dirty.SetText("changed"))
	reg.Discard(dirty.ID())

	assert.Contains(t, logs.String(), "Warning: discarding unsaved session "+dirty.ID())
	assert.Equal(t, 0, reg.Len())
	assert.Equal(t, editor.StateClosed, dirty.State())
}

type recordingSink struct {
	mu    sync.Mutex
	lines []string
}

func (r *recordingSink) Log(sessionID, command, argument string, success bool, errorMsg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, sessionID+" "+command)
}

func TestRegistryAuditsWithSessionID(t *testing.T) {
	inner, _ := newStoreWith(t, map[string]string{"a.txt": "abc"})
	sink := &recordingSink{}
	reg := NewRegistry(inner, sink)

	sess, err := reg.Open(context.Background(), "a.txt")
	require.NoError(t, err)
	require.NoError(t, reg.Close(sess.ID(), false))

	assert.Equal(t, []string{sess.ID() + " open", sess.ID() + " close"}, sink.lines)
}
