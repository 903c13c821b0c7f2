package prefs

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageSize_Unset(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	_, ok, err := s.PageSize()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPageSize_RoundTrip(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.SetPageSize(15))

	size, ok, err := s.PageSize()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 15, size)
}

func TestSetPageSize_RejectsUnknownSize(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	assert.Error(t, s.SetPageSize(25))

	_, ok, err := s.PageSize()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPageSize_PersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "prefs.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.SetPageSize(20))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	size, ok, err := s.PageSize()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 20, size)
}
