package tiling

import (
	"fmt"

	"github.com/specialistvlad/gridslicer/internal/grid"
)

// Range is a half-open index range [Start, End).
type Range struct {
	Start int
	End   int
}

// Len returns the number of indices in the range.
func (r Range) Len() int {
	return r.End - r.Start
}

// String renders the range in interval notation.
func (r Range) String() string {
	return fmt.Sprintf("[%d,%d)", r.Start, r.End)
}

// Blueprint is the tile-grid shape of one source grid for one tile size.
type Blueprint struct {
	TileWidth  int
	TileHeight int

	TileColumns int
	TileRows    int

	// RemainderColumns is the width of the rightmost tile column when the
	// source width is not a multiple of TileWidth, zero otherwise.
	RemainderColumns int
	// RemainderRows is the height of the topmost tile row when the source
	// height is not a multiple of TileHeight, zero otherwise.
	RemainderRows int

	// bands[k] is the source row range of the k-th tile row counted from the
	// top, i.e. tile row j = TileRows - k.
	bands []Range
}

// ComputeBlueprint derives the tile-grid shape for the given tile size.
func ComputeBlueprint(m grid.Metadata, tileWidth, tileHeight int) (Blueprint, error) {
	if tileWidth <= 0 {
		return Blueprint{}, grid.NewInvalidParameterError("tile_width", tileWidth, "must be greater than zero")
	}
	if tileHeight <= 0 {
		return Blueprint{}, grid.NewInvalidParameterError("tile_height", tileHeight, "must be greater than zero")
	}
	if err := m.Validate(); err != nil {
		return Blueprint{}, err
	}

	b := Blueprint{
		TileWidth:        tileWidth,
		TileHeight:       tileHeight,
		TileColumns:      (m.Columns + tileWidth - 1) / tileWidth,
		TileRows:         (m.Rows + tileHeight - 1) / tileHeight,
		RemainderColumns: m.Columns % tileWidth,
		RemainderRows:    m.Rows % tileHeight,
	}

	// Walk the tile rows top-down once, accumulating the source row offset.
	b.bands = make([]Range, b.TileRows)
	offset := 0
	for k := range b.bands {
		height := b.rowCount(b.TileRows - k)
		b.bands[k] = Range{Start: offset, End: offset + height}
		offset += height
	}

	return b, nil
}

// Tiles returns the total number of tiles.
func (b Blueprint) Tiles() int {
	return b.TileColumns * b.TileRows
}

// extent applies the edge rule for one axis: the last tile takes the remainder
// when there is one, every other tile takes the full size.
func extent(isLast bool, full, remainder int) int {
	if isLast && remainder != 0 {
		return remainder
	}
	return full
}

func (b Blueprint) columnCount(i int) int {
	return extent(i == b.TileColumns-1, b.TileWidth, b.RemainderColumns)
}

func (b Blueprint) rowCount(j int) int {
	return extent(j == b.TileRows, b.TileHeight, b.RemainderRows)
}
