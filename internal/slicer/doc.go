// Package slicer drives the tiling of one source grid.
//
// SliceGrid computes the blueprint, then walks the tile rows from the top of
// the grid down. Each band of source rows is read once through a CellReader and
// cut into every tile of that band, which a TileWriter persists. The output is
// the same as visiting tiles column by column, with one read of the source.
//
// Errors leave the package classified: grid.InvalidParameterError before any
// I/O, grid.SourceUnavailableError for read failures and
// grid.OutputWriteError for write failures. Partially written output is left
// in place.
package slicer
