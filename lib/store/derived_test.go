package store

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIncrementDecrement(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *Store) {
		n, err := s.IncrementOne("c")
		require.NoError(t, err)
		assert.Equal(t, 1.0, n)

		require.NoError(t, s.Remove("c"))

		n, err = s.Increment("c", 5)
		require.NoError(t, err)
		assert.Equal(t, 5.0, n)

		n, err = s.Decrement("c", 2)
		require.NoError(t, err)
		assert.Equal(t, 3.0, n)

		n, err = s.DecrementOne("c")
		require.NoError(t, err)
		assert.Equal(t, 2.0, n)

		stored, _, err := s.Get("c")
		require.NoError(t, err)
		assert.Equal(t, 2.0, stored)
	})
}

func TestIncrementNonNumberStartsAtZero(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *Store) {
		require.NoError(t, s.Set("c", "seven"))

		n, err := s.Increment("c", 2)
		require.NoError(t, err)
		assert.Equal(t, 2.0, n)
	})
}

func TestIncrementRejectsNonFiniteAmount(t *testing.T) {
	s := NewStore(nil, nil)

	for _, amount := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := s.Increment("c", amount)
		requireCode(t, err, CodeInvalidArgument)
		_, err = s.Decrement("c", amount)
		requireCode(t, err, CodeInvalidArgument)
	}

	has, err := s.Has("c")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestToggle(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *Store) {
		v, err := s.Toggle("f")
		require.NoError(t, err)
		assert.True(t, v)

		v, err = s.Toggle("f")
		require.NoError(t, err)
		assert.False(t, v)

		require.NoError(t, s.Set("f", "non-empty"))
		v, err = s.Toggle("f")
		require.NoError(t, err)
		assert.False(t, v)
	})
}

func TestTruthy(t *testing.T) {
	falsy := []any{nil, Undefined, false, 0.0, math.NaN(), ""}
	truthyValues := []any{true, 1.0, -1.0, "0", []any{}, map[string]any{}}

	for _, v := range falsy {
		assert.False(t, truthy(v), "%#v", v)
	}
	for _, v := range truthyValues {
		assert.True(t, truthy(v), "%#v", v)
	}
}

func TestAppendPrepend(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *Store) {
		list, err := s.Append("list", "x")
		require.NoError(t, err)
		assert.Equal(t, []any{"x"}, list)

		list, err = s.Prepend("list", "y")
		require.NoError(t, err)
		assert.Equal(t, []any{"y", "x"}, list)

		list, err = s.Append("list", map[string]any{"z": 1.0})
		require.NoError(t, err)
		assert.Equal(t, []any{"y", "x", map[string]any{"z": 1.0}}, list)

		stored, _, err := s.Get("list")
		require.NoError(t, err)
		assert.Equal(t, list, stored)
	})
}

func TestPrependOnNonArrayStartsEmpty(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *Store) {
		require.NoError(t, s.Set("list", map[string]any{"not": "a list"}))

		list, err := s.Prepend("list", 1)
		require.NoError(t, err)
		assert.Equal(t, []any{1}, list)

		stored, _, err := s.Get("list")
		require.NoError(t, err)
		assert.Equal(t, []any{1.0}, stored)
	})
}

func TestAppendUnencodableValueKeepsList(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *Store) {
		_, err := s.Append("list", "a")
		require.NoError(t, err)

		_, err = s.Append("list", make(chan int))
		requireCode(t, err, CodeSerialization)

		stored, _, err := s.Get("list")
		require.NoError(t, err)
		assert.Equal(t, []any{"a"}, stored)
	})
}

// Derived operations are not atomic. Sequential calls never lose updates,
// concurrent ones may; the result is only bounded.
func TestConcurrentIncrementsAreNotAtomic(t *testing.T) {
	s := NewStore(nil, nil)

	const workers = 16
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.IncrementOne("c")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	n, _, err := s.Get("c")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n.(float64), 1.0)
	assert.LessOrEqual(t, n.(float64), float64(workers))
}
