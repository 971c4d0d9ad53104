package ascgrid

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/specialistvlad/gridslicer/internal/grid"
)

// HeaderLines is the number of lines in a grid header.
const HeaderLines = 6

const (
	keyNCols    = "NCOLS"
	keyNRows    = "NROWS"
	keyCellSize = "CELLSIZE"
	keyNoData   = "NODATA_VALUE"
)

// Header is the header of a grid file about to be written.
type Header struct {
	Columns int
	Rows    int
	LowerX  float64
	LowerY  float64
	Anchor  grid.Anchor

	// CellSize and NoData are written verbatim.
	CellSize string
	NoData   string
}

// HeaderFor returns the header a tile of m with the given shape carries.
func HeaderFor(m grid.Metadata, columns, rows int, lowerX, lowerY float64) Header {
	return Header{
		Columns:  columns,
		Rows:     rows,
		LowerX:   lowerX,
		LowerY:   lowerY,
		Anchor:   m.Anchor,
		CellSize: m.CellSizeToken,
		NoData:   m.NoDataToken,
	}
}

// WriteHeader writes the six header lines.
func WriteHeader(w io.Writer, h Header) error {
	_, err := fmt.Fprintf(w, "%s %d\n%s %d\nXLL%s %s\nYLL%s %s\n%s %s\n%s %s\n",
		keyNCols, h.Columns,
		keyNRows, h.Rows,
		h.Anchor, FormatNumber(h.LowerX),
		h.Anchor, FormatNumber(h.LowerY),
		keyCellSize, h.CellSize,
		keyNoData, h.NoData,
	)
	return err
}

// FormatNumber renders a coordinate with the fewest digits that round-trip.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ParseHeader reads the six header lines from br and returns the parsed
// metadata (without file name or source id) and the number of bytes consumed.
func ParseHeader(br *bufio.Reader) (grid.Metadata, int64, error) {
	var (
		m        grid.Metadata
		consumed int64
		seen     = make(map[string]bool, HeaderLines)
		anchorY  grid.Anchor
	)

	for n := 0; n < HeaderLines; n++ {
		line, err := br.ReadString('\n')
		consumed += int64(len(line))
		switch {
		case err == nil, errors.Is(err, io.EOF) && line != "":
		case errors.Is(err, io.EOF):
			return grid.Metadata{}, consumed, fmt.Errorf("%w: line %d: unexpected end of file", grid.ErrMalformedHeader, n+1)
		default:
			return grid.Metadata{}, consumed, fmt.Errorf("failed to read header line %d: %w", n+1, err)
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			return grid.Metadata{}, consumed, fmt.Errorf("%w: line %d: expected \"KEY value\", got %q", grid.ErrMalformedHeader, n+1, strings.TrimSpace(line))
		}
		key, value := strings.ToUpper(fields[0]), fields[1]

		switch key {
		case keyNCols:
			m.Columns, err = parseCount(value)
		case keyNRows:
			m.Rows, err = parseCount(value)
		case "XLLCENTER", "XLLCORNER":
			m.OriginX, err = strconv.ParseFloat(value, 64)
			if strings.HasSuffix(key, "CORNER") {
				m.Anchor = grid.AnchorCorner
			}
			key = "XLL"
		case "YLLCENTER", "YLLCORNER":
			m.OriginY, err = strconv.ParseFloat(value, 64)
			if strings.HasSuffix(key, "CORNER") {
				anchorY = grid.AnchorCorner
			}
			key = "YLL"
		case keyCellSize:
			m.CellSize, err = strconv.ParseFloat(value, 64)
			m.CellSizeToken = value
		case keyNoData:
			m.NoData, err = strconv.ParseFloat(value, 64)
			m.NoDataToken = value
		default:
			return grid.Metadata{}, consumed, fmt.Errorf("%w: unknown key %q", grid.ErrMalformedHeader, fields[0])
		}
		if err != nil {
			return grid.Metadata{}, consumed, fmt.Errorf("%w: %s: %v", grid.ErrMalformedHeader, key, err)
		}
		if seen[key] {
			return grid.Metadata{}, consumed, fmt.Errorf("%w: duplicate key %s", grid.ErrMalformedHeader, key)
		}
		seen[key] = true
	}

	if m.Anchor != anchorY {
		return grid.Metadata{}, consumed, fmt.Errorf("%w: X origin is %s but Y origin is %s", grid.ErrMalformedHeader, m.Anchor, anchorY)
	}
	return m, consumed, nil
}

// parseCount accepts "4" as well as "4.0", which some exporters write.
func parseCount(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("%q is not an integer", s)
	}
	return int(f), nil
}

// LoadMetadata parses the header of dir/fileName into a validated Metadata.
func LoadMetadata(dir, fileName string) (grid.Metadata, error) {
	path := filepath.Join(dir, fileName)
	f, err := os.Open(path)
	if err != nil {
		return grid.Metadata{}, fmt.Errorf("failed to open grid %s: %w", path, err)
	}
	defer f.Close()

	m, _, err := ParseHeader(bufio.NewReader(f))
	if err != nil {
		return grid.Metadata{}, fmt.Errorf("failed to parse header of %s: %w", path, err)
	}
	m.FileName = fileName
	m.SourceID = grid.StemOf(fileName)

	if err := m.Validate(); err != nil {
		return grid.Metadata{}, fmt.Errorf("grid %s: %w", path, err)
	}
	return m, nil
}
