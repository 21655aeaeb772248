package util

import (
	"strings"
	"testing"

	"github.com/MakeenTechnology/tiny-idb-helper/lib/common"
	"github.com/MakeenTechnology/tiny-idb-helper/lib/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapString(t *testing.T) {
	text := strings.Repeat("word ", 30)
	for _, line := range strings.Split(WrapString(text), "\n") {
		assert.LessOrEqual(t, len(line), Wrap)
	}
	assert.Equal(t, "short text", WrapString("  short   text "))
	assert.Equal(t, "", WrapString(""))
}

func TestParseValue(t *testing.T) {
	assert.Equal(t, float64(42), ParseValue("42"))
	assert.Equal(t, true, ParseValue("true"))
	assert.Nil(t, ParseValue("null"))
	assert.Equal(t, "hello", ParseValue(`"hello"`))
	assert.Equal(t, "hello world", ParseValue("hello world"))
	assert.Equal(t, []any{float64(1), "a"}, ParseValue(`[1,"a"]`))
	assert.Equal(t, map[string]any{"a": float64(1)}, ParseValue(`{"a":1}`))
	assert.True(t, store.IsUndefined(ParseValue("undefined")))
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, `"1"`, FormatValue("1"))
	assert.Equal(t, `1`, FormatValue(float64(1)))
	assert.Equal(t, `null`, FormatValue(nil))
	assert.Equal(t, `undefined`, FormatValue(store.Undefined))
}

func TestNewStore(t *testing.T) {
	t.Run("persistent", func(t *testing.T) {
		s, err := NewStore(&common.StoreConfig{
			DataDir:           t.TempDir(),
			StoreName:         "cli",
			OpenTimeoutSecond: 1,
			NoSync:            true,
		})
		require.NoError(t, err)
		defer s.Close()

		require.NoError(t, s.Set("k", "v"))
		assert.Equal(t, store.BackendPersistent, s.Backend())
	})

	t.Run("memory only", func(t *testing.T) {
		s, err := NewStore(&common.StoreConfig{StoreName: "cli"})
		require.NoError(t, err)
		defer s.Close()

		require.NoError(t, s.Set("k", "v"))
		assert.True(t, s.IsUsingFallback())
	})

	t.Run("invalid name", func(t *testing.T) {
		_, err := NewStore(&common.StoreConfig{StoreName: " "})
		assert.True(t, store.IsCode(err, store.CodeInvalidConfiguration))
	})
}
