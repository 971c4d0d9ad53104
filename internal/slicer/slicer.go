package slicer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/specialistvlad/gridslicer/internal/ascgrid"
	"github.com/specialistvlad/gridslicer/internal/ctxlog"
	"github.com/specialistvlad/gridslicer/internal/grid"
	"github.com/specialistvlad/gridslicer/internal/tiling"
)

// CellReader yields the tokens of a contiguous block of source rows.
type CellReader interface {
	ReadRows(ctx context.Context, rows tiling.Range) ([][]string, error)
}

// TileWriter persists tiles. Prepare is called once per source grid before the
// first tile and creates the directory (or prefix) named after the source.
type TileWriter interface {
	Prepare(ctx context.Context, sourceID string) error
	WriteTile(ctx context.Context, sourceID, name string, h ascgrid.Header, rows [][]string) error
}

// Report summarizes the slicing of one source grid.
type Report struct {
	SourceID     string
	FileName     string
	Blueprint    tiling.Blueprint
	TilesWritten int
	Elapsed      time.Duration
}

// TileName returns the file name of a tile: <sourceId>_<column>_<row>.<ext>,
// both indices 1-based, column left to right and row bottom to top.
func TileName(m grid.Metadata, spec tiling.TileSpec) string {
	name := fmt.Sprintf("%s_%d_%d", m.SourceID, spec.Column+1, spec.Row)
	if ext := m.Ext(); ext != "" {
		name += "." + ext
	}
	return name
}

// SliceGrid tiles one source grid. On failure the returned Report still tells
// how many tiles were written before the error.
func SliceGrid(ctx context.Context, m grid.Metadata, tileWidth, tileHeight int, reader CellReader, writer TileWriter) (Report, error) {
	logger := ctxlog.FromContext(ctx).With("source", m.SourceID)
	start := time.Now()
	report := Report{SourceID: m.SourceID, FileName: m.FileName}

	bp, err := tiling.ComputeBlueprint(m, tileWidth, tileHeight)
	if err != nil {
		return finish(&report, start), err
	}
	report.Blueprint = bp
	logger.Debug("Blueprint computed.", "tile_columns", bp.TileColumns, "tile_rows", bp.TileRows,
		"remainder_columns", bp.RemainderColumns, "remainder_rows", bp.RemainderRows)

	if err := writer.Prepare(ctx, m.SourceID); err != nil {
		return finish(&report, start), asOutputError(m.SourceID, m.SourceID, err)
	}

	for _, band := range bp.Bands() {
		rows, err := reader.ReadRows(ctx, band.Rows)
		if err != nil {
			return finish(&report, start), asSourceError(m.SourceID, err)
		}

		for i := 0; i < bp.TileColumns; i++ {
			spec, err := tiling.ResolveTile(m, bp, i, band.Row)
			if err != nil {
				return finish(&report, start), err
			}

			name := TileName(m, spec)
			h := ascgrid.HeaderFor(m, spec.ColumnCount, spec.RowCount, spec.LowerLeftX, spec.LowerLeftY)
			if err := writer.WriteTile(ctx, m.SourceID, name, h, cutColumns(rows, spec.SourceColumns)); err != nil {
				return finish(&report, start), asOutputError(m.SourceID, name, err)
			}
			report.TilesWritten++
			logger.Debug("Tile written.", "tile", name, "rows", spec.SourceRows.String(), "columns", spec.SourceColumns.String())
		}
	}

	return finish(&report, start), nil
}

func finish(r *Report, start time.Time) Report {
	r.Elapsed = time.Since(start)
	return *r
}

// cutColumns returns views of rows restricted to cols.
func cutColumns(rows [][]string, cols tiling.Range) [][]string {
	out := make([][]string, len(rows))
	for k, row := range rows {
		out[k] = row[cols.Start:cols.End]
	}
	return out
}

// asSourceError keeps typed and cancellation errors as they are and classifies
// anything else coming from a reader as a source failure.
func asSourceError(sourceID string, err error) error {
	if isClassified(err) {
		return err
	}
	return grid.NewSourceUnavailableError(sourceID, err)
}

func asOutputError(sourceID, path string, err error) error {
	if isClassified(err) {
		return err
	}
	return grid.NewOutputWriteError(sourceID, path, err)
}

func isClassified(err error) bool {
	return grid.IsSourceUnavailable(err) || grid.IsOutputWrite(err) || grid.IsInvalidParameter(err) ||
		errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
