// Package sink provides the TileWriter implementations used by the slicer:
// a local directory tree and an S3-compatible bucket.
package sink
