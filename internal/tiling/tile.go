package tiling

import (
	"github.com/specialistvlad/gridslicer/internal/grid"
)

// TileSpec is everything needed to emit one tile: its header fields and the
// block of the source matrix it covers.
type TileSpec struct {
	// Column is the 0-based tile column, left to right.
	Column int
	// Row is the 1-based tile row, bottom to top.
	Row int

	ColumnCount int
	RowCount    int
	LowerLeftX  float64
	LowerLeftY  float64

	// SourceRows indexes source rows top to bottom.
	SourceRows    Range
	SourceColumns Range
}

// ResolveTile computes the TileSpec of tile (i, j).
func ResolveTile(m grid.Metadata, b Blueprint, i, j int) (TileSpec, error) {
	if i < 0 || i >= b.TileColumns {
		return TileSpec{}, grid.NewInvalidParameterError("tile_column", i, "out of range")
	}
	if j < 1 || j > b.TileRows {
		return TileSpec{}, grid.NewInvalidParameterError("tile_row", j, "out of range")
	}

	columnCount := b.columnCount(i)
	colStart := i * b.TileWidth

	// Position does not depend on remainder status, only extent does.
	return TileSpec{
		Column:        i,
		Row:           j,
		ColumnCount:   columnCount,
		RowCount:      b.rowCount(j),
		LowerLeftX:    m.OriginX + (m.CellSize*float64(b.TileWidth))*float64(i),
		LowerLeftY:    m.OriginY + (m.CellSize*float64(b.TileHeight))*float64(j-1),
		SourceRows:    b.bands[b.TileRows-j],
		SourceColumns: Range{Start: colStart, End: colStart + columnCount},
	}, nil
}

// Band is one horizontal strip of tiles sharing the same source rows.
type Band struct {
	// Row is the 1-based tile row of the band.
	Row  int
	Rows Range
}

// Bands returns the tile rows from the top of the grid down, which is the order
// their source rows appear in the file.
func (b Blueprint) Bands() []Band {
	out := make([]Band, len(b.bands))
	for k, r := range b.bands {
		out[k] = Band{Row: b.TileRows - k, Rows: r}
	}
	return out
}

// Plan lists every tile in emission order: bands top to bottom, tiles left to
// right within a band.
func Plan(m grid.Metadata, b Blueprint) ([]TileSpec, error) {
	specs := make([]TileSpec, 0, b.Tiles())
	for _, band := range b.Bands() {
		for i := 0; i < b.TileColumns; i++ {
			spec, err := ResolveTile(m, b, i, band.Row)
			if err != nil {
				return nil, err
			}
			specs = append(specs, spec)
		}
	}
	return specs, nil
}
