package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const grid4x4 = "NCOLS 4\nNROWS 4\nXLLCENTER 0\nYLLCENTER 0\nCELLSIZE 10\nNODATA_VALUE -9999\n" +
	"1 2 3 4\n5 6 7 8\n9 10 11 12\n13 14 15 16\n"

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err := Execute(context.Background(), &out, &errOut, args)
	return out.String(), err
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr), "want *ExitError, got %T: %v", err, err)
	return exitErr.Code
}

func TestExecute_Help(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "--help")

	require.NoError(t, err)
	assert.Contains(t, out, "Usage:")
	for _, sub := range []string{"slice", "watch", "cleanup", "find", "copy", "features"} {
		assert.Contains(t, out, sub)
	}
}

func TestExecute_UsageErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		args []string
	}{
		{name: "unknown flag", args: []string{"slice", "--this-is-not-a-valid-flag"}},
		{name: "invalid log format", args: []string{"slice", "--log-format", "xml", "-i", ".", "-o", ".", "-x", "1", "-y", "1"}},
		{name: "invalid tile size", args: []string{"slice", "-i", ".", "-o", ".", "-x", "0", "-y", "2"}},
		{name: "missing cleanup flags", args: []string{"cleanup"}},
		{name: "invalid features format", args: []string{"features", "--root", ".", "--report-dir", ".", "--format", "csv"}},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := execute(t, tc.args...)

			require.Error(t, err)
			assert.Equal(t, 2, exitCode(t, err))
		})
	}
}

func TestExecute_Slice(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	in, out := t.TempDir(), t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(in, "dem.asc"), []byte(grid4x4), 0o644))

	// --- Act ---
	_, err := execute(t, "slice", "--log-format", "json", "-i", in, "-o", out, "-x", "3", "-y", "3")

	// --- Assert ---
	require.NoError(t, err)
	entries, err := os.ReadDir(filepath.Join(out, "dem"))
	require.NoError(t, err)
	assert.Len(t, entries, 4)
	assert.FileExists(t, filepath.Join(out, "dem", "dem_2_2.asc"))
}

func TestExecute_SliceWithJobFile(t *testing.T) {
	t.Parallel()

	in, out := t.TempDir(), t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(in, "dem.asc"), []byte(grid4x4), 0o644))
	job := filepath.Join(t.TempDir(), "job.hcl")
	require.NoError(t, os.WriteFile(job, []byte(`
input_dir    = "`+filepath.ToSlash(in)+`"
output_dir   = "`+filepath.ToSlash(out)+`"
tile_columns = 4
tile_rows    = 4
`), 0o600))

	_, err := execute(t, "slice", "-c", job, "--tile-rows", "2")

	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(out, "dem", "dem_1_1.asc"))
	assert.FileExists(t, filepath.Join(out, "dem", "dem_1_2.asc"))
	assert.NoFileExists(t, filepath.Join(out, "dem", "dem_2_1.asc"))
}

func TestExecute_Cleanup(t *testing.T) {
	t.Parallel()

	out := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(out, "bad"), 0o755))
	ledgerPath := filepath.Join(t.TempDir(), "BROKEN FILES.txt")
	require.NoError(t, os.WriteFile(ledgerPath, []byte("bad.asc\tsource\n"), 0o644))

	stdout, err := execute(t, "cleanup", "--ledger", ledgerPath, "-o", out)

	require.NoError(t, err)
	assert.Contains(t, stdout, "Removed 1 directories")
	assert.NoDirExists(t, filepath.Join(out, "bad"))
}

func TestExecute_Find(t *testing.T) {
	t.Parallel()

	in, reports := t.TempDir(), t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(in, "dem.asc"), []byte(grid4x4), 0o644))

	stdout, err := execute(t, "find", "-i", in, "--token", "11", "--report-dir", reports, "--name", "eleven")

	require.NoError(t, err)
	assert.Contains(t, stdout, "1 files listed")
	b, err := os.ReadFile(filepath.Join(reports, "eleven.txt"))
	require.NoError(t, err)
	assert.Equal(t, "FILE NAME\ndem.asc\n", string(b))
}

func TestExecute_Features(t *testing.T) {
	t.Parallel()

	in, out, reports := t.TempDir(), t.TempDir(), t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(in, "dem.asc"), []byte(grid4x4), 0o644))
	_, err := execute(t, "slice", "-i", in, "-o", out, "-x", "2", "-y", "2")
	require.NoError(t, err)

	_, err = execute(t, "features", "--root", out, "--report-dir", reports)

	require.NoError(t, err)
	b, err := os.ReadFile(filepath.Join(reports, "FILES FEATURES.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(b), "MIN_X MAX_X MIN_Y MAX_Y PATH CELLSIZE NROWS NCOLS\n")
	assert.Contains(t, string(b), "20 30 20 30 "+filepath.Join(out, "dem", "dem_2_2.asc")+" 10 2 2\n")
}

func TestExecute_Copy(t *testing.T) {
	t.Parallel()

	in, dst := t.TempDir(), filepath.Join(t.TempDir(), "dst")
	require.NoError(t, os.WriteFile(filepath.Join(in, "A_B_C_D_0001_E.asc"), []byte("x"), 0o644))
	sheets := filepath.Join(t.TempDir(), "sheets.txt")
	require.NoError(t, os.WriteFile(sheets, []byte("0001\n"), 0o644))

	_, err := execute(t, "copy", "-i", in, "-o", dst, "--sheets", sheets)

	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dst, "A_B_C_D_0001_E.asc"))
}
