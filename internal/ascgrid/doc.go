// Package ascgrid reads and writes ESRI ASCII grid files.
//
// A grid file starts with six "KEY value" lines (NCOLS, NROWS, XLLCENTER or
// XLLCORNER, YLLCENTER or YLLCORNER, CELLSIZE, NODATA_VALUE) followed by NROWS
// lines of NCOLS whitespace-separated tokens, north to south. Cell values are
// treated as opaque tokens and are never parsed.
package ascgrid
