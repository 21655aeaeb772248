package store

import (
	"os"
	"sort"
	"testing"

	"github.com/MakeenTechnology/tiny-idb-helper/lib/db/engines/bolt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnumeration(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *Store) {
		keys, err := s.Keys()
		require.NoError(t, err)
		assert.Empty(t, keys)

		require.NoError(t, s.Set("a", 1))
		require.NoError(t, s.Set("b", "two"))
		require.NoError(t, s.Set("c", nil))
		require.NoError(t, s.Set("d", Undefined))

		keys, err = s.Keys()
		require.NoError(t, err)
		sort.Strings(keys)
		assert.Equal(t, []string{"a", "b", "c", "d"}, keys)

		values, err := s.Values()
		require.NoError(t, err)
		assert.ElementsMatch(t, []any{1.0, "two", nil, Undefined}, values)

		entries, err := s.Entries()
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"a": 1.0, "b": "two", "c": nil, "d": Undefined}, entries)

		n, err := s.Length()
		require.NoError(t, err)
		assert.Equal(t, 4, n)
	})
}

func TestValuesDegradeToRawForm(t *testing.T) {
	opener := newRecordingOpener()
	s := NewStore(opener, nil)

	require.NoError(t, s.Set("ok", map[string]any{"fine": true}))
	require.NoError(t, opener.handle(DefaultStoreName).Put("broken", []byte("{oops")))

	values, err := s.Values()
	require.NoError(t, err)
	assert.ElementsMatch(t, []any{map[string]any{"fine": true}, "{oops"}, values)

	// Entries decodes through Get and reports the corruption
	_, err = s.Entries()
	requireCode(t, err, CodeDeserialization)
}

func TestReplaceAll(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *Store) {
		require.NoError(t, s.Set("old1", "x"))
		require.NoError(t, s.Set("old2", "y"))

		require.NoError(t, s.ReplaceAll(map[string]any{"a": 1, "b": 2}))

		n, err := s.Length()
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		for _, key := range []string{"old1", "old2"} {
			_, found, err := s.Get(key)
			require.NoError(t, err)
			assert.False(t, found, "key %s", key)
		}

		entries, err := s.Entries()
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"a": 1.0, "b": 2.0}, entries)
	})
}

func TestReplaceAllRejectsInvalidPayload(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *Store) {
		require.NoError(t, s.Set("kept", true))

		requireCode(t, s.ReplaceAll(nil), CodeInvalidArgument)
		requireCode(t, s.ReplaceAll(map[string]any{"": 1}), CodeInvalidArgument)

		// argument errors happen before anything is cleared
		has, err := s.Has("kept")
		require.NoError(t, err)
		assert.True(t, has)
	})
}

func TestReplaceAllIsNotAtomic(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *Store) {
		require.NoError(t, s.Set("old", 1))

		// keys are written in sorted order, "b" fails after "a" was stored
		err := s.ReplaceAll(map[string]any{"a": 1, "b": make(chan int), "c": 3})
		requireCode(t, err, CodeSerialization)

		keys, err := s.Keys()
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, keys)
	})
}

func TestReplaceAllWithEmptyMapClears(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *Store) {
		require.NoError(t, s.Set("old", 1))
		require.NoError(t, s.ReplaceAll(map[string]any{}))

		n, err := s.Length()
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}

func TestClear(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *Store) {
		keys := []string{"a", "b", "c"}
		for _, key := range keys {
			require.NoError(t, s.Set(key, key))
		}

		require.NoError(t, s.Clear())

		n, err := s.Length()
		require.NoError(t, err)
		assert.Zero(t, n)

		for _, key := range keys {
			_, found, err := s.Get(key)
			require.NoError(t, err)
			assert.False(t, found, "key %s", key)
		}

		// the store keeps working after a clear
		require.NoError(t, s.Set("after", 1))
		n, err = s.Length()
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})
}

func TestPersistentClearDestroysNamespace(t *testing.T) {
	opener := bolt.NewOpener(bolt.Options{Dir: t.TempDir(), NoSync: true})
	s := NewStore(opener, nil)
	defer s.Close()

	require.NoError(t, s.Set("k", 1))
	path := opener.Path(DefaultStoreName)
	_, err := os.Stat(path)
	require.NoError(t, err)
	initializations := s.Initializations()

	require.NoError(t, s.Clear())
	assert.Equal(t, BackendUninitialized, s.Backend())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "namespace file must be removed, stat err = %v", err)

	// the next operation opens a fresh namespace
	n, err := s.Length()
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, BackendPersistent, s.Backend())
	assert.Equal(t, initializations+1, s.Initializations())
}
