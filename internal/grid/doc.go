// Package grid holds the format-independent description of a source elevation
// grid and the error taxonomy shared by every stage of the slicing pipeline.
//
// A Metadata value is built once per source file by the header parser in the
// ascgrid package and is read-only afterwards. The tiling, slicer and batch
// packages depend on this package but never on each other's concrete types.
package grid
