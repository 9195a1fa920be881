package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := NewMemoryStore()

	creds, err := s.Get()
	require.NoError(t, err)
	assert.True(t, creds.Empty())

	require.NoError(t, s.Set("acc", "ref"))
	creds, err = s.Get()
	require.NoError(t, err)
	assert.Equal(t, "acc", creds.Access)
	assert.Equal(t, "ref", creds.Refresh)

	require.NoError(t, s.Clear())
	creds, err = s.Get()
	require.NoError(t, err)
	assert.True(t, creds.Empty())
	assert.Empty(t, creds.Refresh)
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "tokens.json")
	s, err := NewFileStore(path)
	require.NoError(t, err)

	creds, err := s.Get()
	require.NoError(t, err)
	assert.True(t, creds.Empty(), "fresh store must be empty")

	require.NoError(t, s.Set("acc-1", "ref-1"))
	creds, err = s.Get()
	require.NoError(t, err)
	assert.Equal(t, "acc-1", creds.Access)
	assert.Equal(t, "ref-1", creds.Refresh)

	// Overwrite replaces the whole pair.
	require.NoError(t, s.Set("acc-2", "ref-2"))
	creds, err = s.Get()
	require.NoError(t, err)
	assert.Equal(t, "acc-2", creds.Access)
	assert.Equal(t, "ref-2", creds.Refresh)

	require.NoError(t, s.Clear())
	creds, err = s.Get()
	require.NoError(t, err)
	assert.True(t, creds.Empty())

	// Clearing an already-empty store is fine.
	require.NoError(t, s.Clear())
}

func TestFileStorePairNeverSplit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	s, err := NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Set("acc", "ref"))

	// A reader always sees both tokens of some pair or neither; a file
	// holding only one key would mean a torn write.
	creds, err := s.Get()
	require.NoError(t, err)
	if creds.Access != "" || creds.Refresh != "" {
		assert.NotEmpty(t, creds.Access)
		assert.NotEmpty(t, creds.Refresh)
	}
}

func TestFileStoreCorruptFileReadsAsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	s, err := NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	creds, err := s.Get()
	require.NoError(t, err)
	assert.True(t, creds.Empty())
}
