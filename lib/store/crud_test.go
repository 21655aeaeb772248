package store

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	values := map[string]any{
		"null":      nil,
		"undefined": Undefined,
		"number":    3.25,
		"string":    "text",
		"bool":      false,
		"array":     []any{1.0, []any{"nested"}, nil},
		"object":    map[string]any{"a": 1.0, "b": map[string]any{"c": []any{true}}},
	}

	forEachBackend(t, func(t *testing.T, s *Store) {
		for key, value := range values {
			require.NoError(t, s.Set(key, value))
		}
		for key, want := range values {
			got, found, err := s.Get(key)
			require.NoError(t, err)
			assert.True(t, found, "key %s", key)
			assert.Equal(t, want, got, "key %s", key)
		}
	})
}

func TestGoValuesDecodeAsJSON(t *testing.T) {
	type point struct {
		X int `json:"x"`
		Y int `json:"y"`
	}

	forEachBackend(t, func(t *testing.T, s *Store) {
		require.NoError(t, s.Set("point", point{X: 1, Y: 2}))

		got, found, err := s.Get("point")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, map[string]any{"x": 1.0, "y": 2.0}, got)
	})
}

func TestAbsenceIsDistinctFromNullAndUndefined(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *Store) {
		require.NoError(t, s.Set("null", nil))
		require.NoError(t, s.Set("undefined", Undefined))

		value, found, err := s.Get("missing")
		require.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, value)

		value, found, err = s.Get("null")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Nil(t, value)

		value, found, err = s.Get("undefined")
		require.NoError(t, err)
		assert.True(t, found)
		assert.True(t, IsUndefined(value))
	})
}

func TestHasCountsNullAsPresent(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *Store) {
		has, err := s.Has("k")
		require.NoError(t, err)
		assert.False(t, has)

		require.NoError(t, s.Set("k", nil))
		has, err = s.Has("k")
		require.NoError(t, err)
		assert.True(t, has, "a key holding null is present")

		require.NoError(t, s.Set("u", Undefined))
		has, err = s.Has("u")
		require.NoError(t, err)
		assert.True(t, has, "a key holding undefined is present")

		require.NoError(t, s.Remove("k"))
		has, err = s.Has("k")
		require.NoError(t, err)
		assert.False(t, has)
	})
}

func TestRemoveMissingKey(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *Store) {
		assert.NoError(t, s.Remove("never-set"))
	})
}

func TestNullify(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *Store) {
		require.NoError(t, s.Set("k", "value"))
		require.NoError(t, s.Nullify("k"))

		value, found, err := s.Get("k")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Nil(t, value)
	})
}

func TestSetCircularValueLeavesStateUnchanged(t *testing.T) {
	cyclic := map[string]any{}
	cyclic["self"] = cyclic

	forEachBackend(t, func(t *testing.T, s *Store) {
		// absent key stays absent
		requireCode(t, s.Set("fresh", cyclic), CodeSerialization)
		_, found, err := s.Get("fresh")
		require.NoError(t, err)
		assert.False(t, found)

		// previous value is kept
		require.NoError(t, s.Set("existing", "before"))
		requireCode(t, s.Set("existing", cyclic), CodeSerialization)
		value, _, err := s.Get("existing")
		require.NoError(t, err)
		assert.Equal(t, "before", value)
	})
}

func TestInvalidKeys(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *Store) {
		long := strings.Repeat("k", MaxKeySize+1)

		for _, key := range []string{"", long} {
			_, _, err := s.Get(key)
			requireCode(t, err, CodeInvalidArgument)
			requireCode(t, s.Set(key, 1), CodeInvalidArgument)
			requireCode(t, s.Remove(key), CodeInvalidArgument)
			requireCode(t, s.Nullify(key), CodeInvalidArgument)
			_, err = s.Has(key)
			requireCode(t, err, CodeInvalidArgument)
		}

		// the longest allowed key works on every backend
		require.NoError(t, s.Set(long[1:], 1))
	})
}

func TestGetCorruptValue(t *testing.T) {
	opener := newRecordingOpener()
	s := NewStore(opener, nil)

	require.NoError(t, s.Set("ok", 1))
	require.NoError(t, opener.handle(DefaultStoreName).Put("broken", []byte("{oops")))

	_, _, err := s.Get("broken")
	requireCode(t, err, CodeDeserialization)

	// a corrupt value still counts as an error for Has, not as absent
	_, err = s.Has("broken")
	requireCode(t, err, CodeDeserialization)
}

func TestErrorsMatchByCode(t *testing.T) {
	s := NewStore(nil, nil)
	err := s.Set("", 1)

	assert.ErrorIs(t, err, &Error{Code: CodeInvalidArgument})
	assert.NotErrorIs(t, err, &Error{Code: CodeSerialization})
	assert.True(t, IsCode(err, CodeInvalidArgument))
	assert.Contains(t, err.Error(), "INVALID_ARGUMENT")
}
