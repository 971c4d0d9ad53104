package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, nil, 0o644))
}

func TestListFilesByExtension(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	touch(t, filepath.Join(dir, "b.asc"))
	touch(t, filepath.Join(dir, "a.ASC"))
	touch(t, filepath.Join(dir, "notes.txt"))
	touch(t, filepath.Join(dir, "sub", "c.asc"))

	names, err := ListFilesByExtension(dir, ".asc")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.ASC", "b.asc"}, names)
}

func TestFindFilesByExtension_Recurses(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	touch(t, filepath.Join(dir, "b.asc"))
	touch(t, filepath.Join(dir, "sub", "c.asc"))
	touch(t, filepath.Join(dir, "sub", "c.prj"))

	paths, err := FindFilesByExtension(dir, "asc")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{filepath.Join(dir, "b.asc"), filepath.Join(dir, "sub", "c.asc")}, paths)
}

func TestEmptyExtensionPanics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { _, _ = ListFilesByExtension(t.TempDir(), "") })
	assert.Panics(t, func() { _, _ = FindFilesByExtension(t.TempDir(), "") })
}
