// Package tiling computes how a source grid is partitioned into tiles.
//
// Everything in this package is pure: a Blueprint is derived from grid
// metadata and the requested tile size, and a TileSpec is derived from a
// Blueprint and a tile index. No files are touched here.
//
// Tile indices follow the naming used on disk. Tile columns i run left to right
// starting at 0. Tile rows j run bottom to top starting at 1, because header
// coordinates reference the south-west corner. Source rows, on the other hand,
// are stored north to south, so the topmost tile row (j == TileRows) maps to the
// first source rows and j == 1 maps to the last ones.
package tiling
