package finder

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const header = "NCOLS 2\nNROWS 2\nXLLCENTER 0\nYLLCENTER 0\nCELLSIZE 5\nNODATA_VALUE -9999\n"

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestFind(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := t.TempDir()
	writeFile(t, dir, "a.asc", header+"1 2\n3 -9999\n")
	writeFile(t, dir, "b.asc", header+"1 2\n3 4\n")
	writeFile(t, dir, "c.asc", header+"-9999 -9999\n-9999 -9999\n")
	writeFile(t, dir, "broken.asc", "not a grid\n")
	writeFile(t, dir, "notes.txt", "-9999\n")

	// --- Act ---
	names, err := Find(context.Background(), Options{InputDir: dir, Extension: "asc", Token: "-9999", Workers: 2})

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, []string{"a.asc", "c.asc"}, names, "header sentinel must not count as a hit")
}

func TestFind_PartialTokensDoNotMatch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "a.asc", header+"12 2\n3 4\n")

	names, err := Find(context.Background(), Options{InputDir: dir, Token: "1"})

	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestFind_EmptyToken(t *testing.T) {
	t.Parallel()

	_, err := Find(context.Background(), Options{InputDir: t.TempDir()})
	require.Error(t, err)
}

func TestWriteReport(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path, err := WriteReport(dir, "nodata", []string{"a.asc", "c.asc"})

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "nodata.txt"), path)
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "FILE NAME\na.asc\nc.asc\n", string(b))
}
