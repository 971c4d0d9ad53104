package grid

import (
	"path/filepath"
	"strings"
)

// Anchor describes which point of the lower-left cell the header coordinates
// refer to.
type Anchor int

const (
	// AnchorCenter means XLLCENTER/YLLCENTER: the center of the lower-left cell.
	AnchorCenter Anchor = iota
	// AnchorCorner means XLLCORNER/YLLCORNER: the outer corner of the lower-left cell.
	AnchorCorner
)

// String returns the header key suffix used for the anchor.
func (a Anchor) String() string {
	if a == AnchorCorner {
		return "CORNER"
	}
	return "CENTER"
}

// Metadata is the immutable descriptor of one source grid.
type Metadata struct {
	// FileName is the source file name including its extension, e.g. "MDT05_0001.asc".
	FileName string
	// SourceID is the file name stem, used for the output directory and tile names.
	SourceID string

	Columns  int
	Rows     int
	OriginX  float64
	OriginY  float64
	CellSize float64
	NoData   float64
	Anchor   Anchor

	// CellSizeToken and NoDataToken keep the header values exactly as written in
	// the source so tiles can reproduce them byte for byte.
	CellSizeToken string
	NoDataToken   string
}

// Ext returns the file extension of the source without the leading dot.
func (m Metadata) Ext() string {
	return strings.TrimPrefix(filepath.Ext(m.FileName), ".")
}

// Validate checks the structural invariant columns > 0, rows > 0, cellSize > 0.
func (m Metadata) Validate() error {
	if m.Columns <= 0 {
		return NewInvalidParameterError("columns", m.Columns, "must be greater than zero")
	}
	if m.Rows <= 0 {
		return NewInvalidParameterError("rows", m.Rows, "must be greater than zero")
	}
	if !(m.CellSize > 0) {
		return NewInvalidParameterError("cell_size", m.CellSize, "must be greater than zero")
	}
	return nil
}

// StemOf returns the part of a file name before its first dot, the way source
// identifiers are derived from file names.
func StemOf(fileName string) string {
	base := filepath.Base(fileName)
	if i := strings.IndexByte(base, '.'); i > 0 {
		return base[:i]
	}
	return base
}
