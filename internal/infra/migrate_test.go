package infra

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindMigrationDir_WalksUp(t *testing.T) {
	root := t.TempDir()
	want := filepath.Join(root, "db", "migrations")
	require.NoError(t, os.MkdirAll(want, 0o755))
	nested := filepath.Join(root, "internal", "infra")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	t.Chdir(nested)

	got, err := filepath.EvalSymlinks(FindMigrationDir())
	require.NoError(t, err)
	want, err = filepath.EvalSymlinks(want)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFindMigrationDir_FallsBack(t *testing.T) {
	t.Chdir(t.TempDir())
	assert.Equal(t, filepath.Join("db", "migrations"), FindMigrationDir())
}
