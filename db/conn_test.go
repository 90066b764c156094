package db

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteFileExists(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "database.db")
	assert.False(t, sqliteFileExists(path))

	require.NoError(t, os.WriteFile(path, nil, 0o600))
	assert.True(t, sqliteFileExists(path))
}
