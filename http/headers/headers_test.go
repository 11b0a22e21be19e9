package headers

import (
	"slices"
	"testing"

	"github.com/indigo-web/wire/errors"
	"github.com/stretchr/testify/require"
)

func TestHeaders(t *testing.T) {
	var storage [4]Header
	headers := New(storage[:])
	require.NoError(t, headers.Add("Hello", "world"))
	require.NoError(t, headers.Add("Some", "multiple"))
	require.NoError(t, headers.Add("some", "values"))

	t.Run("Value", func(t *testing.T) {
		require.Equal(t, "world", headers.Value("hello"))
		require.Equal(t, "multiple", headers.Value("SOME"))
		require.Empty(t, headers.Value("Random"))
	})

	t.Run("Values", func(t *testing.T) {
		require.Equal(t, []string{"multiple", "values"}, slices.Collect(headers.Values("Some")))
		require.Empty(t, slices.Collect(headers.Values("Random")))
	})

	t.Run("Has", func(t *testing.T) {
		require.True(t, headers.Has("HELLO"))
		require.False(t, headers.Has("Random"))
	})

	t.Run("order", func(t *testing.T) {
		var names []string
		for name := range headers.Iter() {
			names = append(names, name)
		}

		require.Equal(t, []string{"Hello", "Some", "some"}, names)
		require.Equal(t, []Header{{"Hello", "world"}, {"Some", "multiple"}, {"some", "values"}}, headers.Expose())
	})

	t.Run("capacity", func(t *testing.T) {
		require.Equal(t, 4, headers.Cap())
		require.NoError(t, headers.Add("Fourth", "field"))
		require.ErrorIs(t, headers.Add("Fifth", "field"), errors.ErrTooManyHeaders)
		require.Equal(t, 4, headers.Len())
	})

	t.Run("clear keeps storage", func(t *testing.T) {
		headers.Clear()
		require.True(t, headers.Empty())
		require.Equal(t, 4, headers.Cap())
	})

	t.Run("zero capacity", func(t *testing.T) {
		empty := New(nil)
		require.ErrorIs(t, empty.Add("Hello", "world"), errors.ErrTooManyHeaders)
	})
}
