package store

import (
	"errors"
	"sync"
	"testing"

	"github.com/MakeenTechnology/tiny-idb-helper/lib/db"
	"github.com/MakeenTechnology/tiny-idb-helper/lib/db/engines/bolt"
	"github.com/MakeenTechnology/tiny-idb-helper/lib/db/engines/maple"
	"github.com/stretchr/testify/require"
)

// forEachBackend runs fn once with a persistent (bolt) store and once with a store
// that has no persistent storage and falls back to memory.
func forEachBackend(t *testing.T, fn func(t *testing.T, s *Store)) {
	t.Helper()

	t.Run("persistent", func(t *testing.T) {
		t.Parallel()
		s := NewStore(bolt.NewOpener(bolt.Options{Dir: t.TempDir(), NoSync: true}), nil)
		t.Cleanup(func() { _ = s.Close() })
		fn(t, s)
	})

	t.Run("volatile", func(t *testing.T) {
		t.Parallel()
		s := NewStore(nil, nil)
		t.Cleanup(func() { _ = s.Close() })
		fn(t, s)
	})
}

// recordingOpener hands out maple handles and records every Open call.
// Handles are kept per name so a test can write raw bytes behind the store's back.
type recordingOpener struct {
	mu        sync.Mutex
	available bool
	err       error
	opened    []string
	handles   map[string]db.KVDB

	// gate, if set, blocks the first Open call until it is closed.
	gate    chan struct{}
	entered chan struct{}
}

func newRecordingOpener() *recordingOpener {
	return &recordingOpener{available: true, handles: map[string]db.KVDB{}}
}

func (o *recordingOpener) Available() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.available
}

func (o *recordingOpener) Open(name string) (db.KVDB, error) {
	o.mu.Lock()
	o.opened = append(o.opened, name)
	first := len(o.opened) == 1
	gate, entered, err := o.gate, o.entered, o.err
	o.mu.Unlock()

	if first && gate != nil {
		close(entered)
		<-gate
	}
	if err != nil {
		return nil, err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	handle := maple.NewMapleDB(nil)
	o.handles[name] = handle
	return handle, nil
}

func (o *recordingOpener) openedNames() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.opened...)
}

func (o *recordingOpener) handle(name string) db.KVDB {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.handles[name]
}

// requireCode asserts that err is an *Error with the given code.
func requireCode(t *testing.T, err error, code Code) {
	t.Helper()
	require.Error(t, err)
	var e *Error
	require.True(t, errors.As(err, &e), "expected *store.Error, got %T: %v", err, err)
	require.Equal(t, code, e.Code, "unexpected code, error: %v", err)
}
