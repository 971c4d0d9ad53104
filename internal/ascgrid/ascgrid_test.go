package ascgrid

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/gridslicer/internal/grid"
	"github.com/specialistvlad/gridslicer/internal/tiling"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `NCOLS 4
NROWS 4
XLLCENTER 0
YLLCENTER 0
CELLSIZE 10
NODATA_VALUE -9999
1 2 3 4
5 6 7 8
9 10 11 12
13 14 15 16
`

func writeGrid(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestParseHeader(t *testing.T) {
	t.Parallel()

	m, consumed, err := ParseHeader(bufio.NewReader(strings.NewReader(sample)))
	require.NoError(t, err)

	assert.Equal(t, 4, m.Columns)
	assert.Equal(t, 4, m.Rows)
	assert.Equal(t, 10.0, m.CellSize)
	assert.Equal(t, -9999.0, m.NoData)
	assert.Equal(t, "10", m.CellSizeToken)
	assert.Equal(t, "-9999", m.NoDataToken)
	assert.Equal(t, grid.AnchorCenter, m.Anchor)
	assert.Equal(t, int64(strings.Index(sample, "1 2 3 4")), consumed)
}

func TestParseHeader_CornerAnchorAndLowercaseKeys(t *testing.T) {
	t.Parallel()

	in := "ncols 3\nnrows 2\nxllcorner 100.5\nyllcorner 200.25\ncellsize 0.5\nnodata_value -3.4e38\n"
	m, _, err := ParseHeader(bufio.NewReader(strings.NewReader(in)))
	require.NoError(t, err)

	assert.Equal(t, grid.AnchorCorner, m.Anchor)
	assert.Equal(t, 100.5, m.OriginX)
	assert.Equal(t, 200.25, m.OriginY)
	assert.Equal(t, "-3.4e38", m.NoDataToken)
}

func TestParseHeader_Malformed(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"truncated":         "NCOLS 4\nNROWS 4\n",
		"missing value":     "NCOLS\nNROWS 4\nXLLCENTER 0\nYLLCENTER 0\nCELLSIZE 1\nNODATA_VALUE 0\n",
		"unknown key":       "NCOLS 4\nNROWS 4\nXLLCENTER 0\nYLLCENTER 0\nCELLSIZE 1\nFOO 0\n",
		"duplicate":         "NCOLS 4\nNCOLS 4\nXLLCENTER 0\nYLLCENTER 0\nCELLSIZE 1\nNODATA_VALUE 0\n",
		"fractional":        "NCOLS 4.5\nNROWS 4\nXLLCENTER 0\nYLLCENTER 0\nCELLSIZE 1\nNODATA_VALUE 0\n",
		"center x corner y": "NCOLS 4\nNROWS 4\nXLLCENTER 0\nYLLCORNER 0\nCELLSIZE 1\nNODATA_VALUE 0\n",
		"corner x center y": "NCOLS 4\nNROWS 4\nXLLCORNER 0\nYLLCENTER 0\nCELLSIZE 1\nNODATA_VALUE 0\n",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := ParseHeader(bufio.NewReader(strings.NewReader(in)))
			require.ErrorIs(t, err, grid.ErrMalformedHeader)
		})
	}
}

func TestParseHeader_ReadErrorIsNotMalformed(t *testing.T) {
	t.Parallel()

	errDevice := errors.New("input/output error")
	br := bufio.NewReader(io.MultiReader(strings.NewReader("NCOLS 4\nNROWS 4\n"), iotest.ErrReader(errDevice)))

	_, _, err := ParseHeader(br)

	require.ErrorIs(t, err, errDevice)
	assert.NotErrorIs(t, err, grid.ErrMalformedHeader)
}

func TestLoadMetadata_UnreadableFileIsNotMalformed(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "folder.asc"), 0o755))

	_, err := LoadMetadata(dir, "folder.asc")

	require.Error(t, err)
	assert.NotErrorIs(t, err, grid.ErrMalformedHeader)
	assert.False(t, grid.IsInvalidParameter(err))
}

func TestLoadMetadata(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeGrid(t, dir, "MDT_0001.asc", sample)

	m, err := LoadMetadata(dir, "MDT_0001.asc")
	require.NoError(t, err)
	assert.Equal(t, "MDT_0001", m.SourceID)
	assert.Equal(t, "MDT_0001.asc", m.FileName)

	writeGrid(t, dir, "zero.asc", strings.Replace(sample, "NCOLS 4", "NCOLS 0", 1))
	_, err = LoadMetadata(dir, "zero.asc")
	require.Error(t, err)
	assert.True(t, grid.IsInvalidParameter(err))
}

func TestReader_ReadRows(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeGrid(t, dir, "g.asc", sample)
	m, err := LoadMetadata(dir, "g.asc")
	require.NoError(t, err)

	r, err := Open(dir, m)
	require.NoError(t, err)
	defer r.Close()

	ctx := context.Background()
	got, err := r.ReadRows(ctx, tiling.Range{Start: 1, End: 3})
	require.NoError(t, err)
	if diff := cmp.Diff([][]string{{"5", "6", "7", "8"}, {"9", "10", "11", "12"}}, got); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}

	// Going backwards rewinds to the start of the matrix.
	got, err = r.ReadRows(ctx, tiling.Range{Start: 0, End: 1})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"1", "2", "3", "4"}}, got)

	_, err = r.ReadRows(ctx, tiling.Range{Start: 3, End: 5})
	require.Error(t, err)
	assert.True(t, grid.IsInvalidParameter(err))
}

func TestReader_ShortRowIsSourceUnavailable(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeGrid(t, dir, "g.asc", strings.Replace(sample, "9 10 11 12", "9 10 11", 1))
	m, err := LoadMetadata(dir, "g.asc")
	require.NoError(t, err)

	r, err := Open(dir, m)
	require.NoError(t, err)
	defer r.Close()

	_, err = r.ReadRows(context.Background(), tiling.Range{Start: 0, End: 4})
	require.Error(t, err)
	assert.True(t, grid.IsSourceUnavailable(err))
	assert.ErrorIs(t, err, grid.ErrMalformedRow)
}

func TestReader_TruncatedMatrix(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeGrid(t, dir, "g.asc", strings.TrimSuffix(sample, "13 14 15 16\n"))
	m, err := LoadMetadata(dir, "g.asc")
	require.NoError(t, err)

	r, err := Open(dir, m)
	require.NoError(t, err)
	defer r.Close()

	_, err = r.ReadRows(context.Background(), tiling.Range{Start: 2, End: 4})
	require.ErrorIs(t, err, grid.ErrMalformedRow)
}

func TestEncode(t *testing.T) {
	t.Parallel()

	h := Header{Columns: 2, Rows: 2, LowerX: 20, LowerY: 10.5, CellSize: "10", NoData: "-9999"}
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, h, [][]string{{"3", "4"}, {"7", "8"}}))

	want := "NCOLS 2\nNROWS 2\nXLLCENTER 20\nYLLCENTER 10.5\nCELLSIZE 10\nNODATA_VALUE -9999\n3 4\n7 8\n"
	assert.Equal(t, want, buf.String())

	h.Anchor = grid.AnchorCorner
	buf.Reset()
	require.NoError(t, Encode(&buf, h, [][]string{{"3", "4"}, {"7", "8"}}))
	assert.Contains(t, buf.String(), "XLLCORNER 20\nYLLCORNER 10.5\n")

	require.Error(t, Encode(&buf, h, [][]string{{"3", "4"}}))
	require.Error(t, Encode(&buf, h, [][]string{{"3"}, {"7", "8"}}))
}
