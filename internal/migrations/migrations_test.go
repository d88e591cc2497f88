package migrations

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestGetMigrationPathFromConfig(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, dir, getMigrationPath(dir, zap.NewNop()))
}

func TestGetMigrationPathFallback(t *testing.T) {
	// Из internal/migrations миграции лежат в ../../scripts/migrations
	got := getMigrationPath("does/not/exist", zap.NewNop())

	info, err := os.Stat(got)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, "migrations", filepath.Base(got))
}

func TestGetMigrationPathMissing(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Chdir(wd) })

	require.NoError(t, os.Chdir(t.TempDir()))
	assert.Equal(t, "missing", getMigrationPath("missing", zap.NewNop()))
}

func TestMigrationFilesPresent(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("..", "..", "scripts", "migrations", "*.sql"))
	require.NoError(t, err)
	assert.NotEmpty(t, files)
}
