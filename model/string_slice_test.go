package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringSliceRoundTrip(t *testing.T) {
	t.Parallel()

	s := StringSlice{"a@example.com", "b@example.com"}

	v, err := s.Value()
	require.NoError(t, err)
	assert.Equal(t, "a@example.com,b@example.com", v)

	var out StringSlice
	require.NoError(t, out.Scan(v))
	assert.Equal(t, s, out)
}

func TestStringSliceEmpty(t *testing.T) {
	t.Parallel()

	v, err := StringSlice{}.Value()
	require.NoError(t, err)
	assert.Equal(t, "", v)

	var out StringSlice
	require.NoError(t, out.Scan(""))
	assert.Empty(t, out)

	require.NoError(t, out.Scan(nil))
	assert.Empty(t, out)
}

func TestStringSliceRejectsCommas(t *testing.T) {
	t.Parallel()

	_, err := StringSlice{"a,b@example.com"}.Value()
	assert.Error(t, err)
}

func TestStringSliceContains(t *testing.T) {
	t.Parallel()

	s := StringSlice{"a@example.com"}
	assert.True(t, s.Contains("a@example.com"))
	assert.False(t, s.Contains("a@example"))
}
