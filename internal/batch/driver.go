package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/specialistvlad/gridslicer/internal/ascgrid"
	"github.com/specialistvlad/gridslicer/internal/ctxlog"
	"github.com/specialistvlad/gridslicer/internal/fsutil"
	"github.com/specialistvlad/gridslicer/internal/grid"
	"github.com/specialistvlad/gridslicer/internal/ledger"
	"github.com/specialistvlad/gridslicer/internal/metrics"
	"github.com/specialistvlad/gridslicer/internal/slicer"
)

// Options selects the sources of a batch and the tile size.
type Options struct {
	InputDir    string
	Extension   string
	TileColumns int
	TileRows    int
}

// Validate rejects tile sizes that can never produce a tile.
func (o Options) Validate() error {
	if o.TileColumns <= 0 {
		return grid.NewInvalidParameterError("tile_columns", o.TileColumns, "must be greater than zero")
	}
	if o.TileRows <= 0 {
		return grid.NewInvalidParameterError("tile_rows", o.TileRows, "must be greater than zero")
	}
	if o.Extension == "" {
		return grid.NewInvalidParameterError("extension", o.Extension, "must not be empty")
	}
	return nil
}

// CellSource is an open source grid.
type CellSource interface {
	slicer.CellReader
	io.Closer
}

// OpenFunc opens the data rows of a source grid.
type OpenFunc func(dir string, m grid.Metadata) (CellSource, error)

// OpenASCII opens sources with the ascgrid streaming reader.
func OpenASCII(dir string, m grid.Metadata) (CellSource, error) {
	return ascgrid.Open(dir, m)
}

// Driver runs batches. Writer and Ledger are required.
type Driver struct {
	Writer  slicer.TileWriter
	Ledger  ledger.Ledger
	Metrics *metrics.Metrics
	// Out receives the human-readable summary, if set.
	Out io.Writer
	// Open defaults to OpenASCII.
	Open OpenFunc
}

// Run slices every matching file in opts.InputDir.
func (d *Driver) Run(ctx context.Context, opts Options) (Summary, error) {
	summary := Summary{RunID: uuid.NewString()}
	start := time.Now()
	ctx = ctxlog.With(ctx, "run_id", summary.RunID)
	logger := ctxlog.FromContext(ctx)

	if err := opts.Validate(); err != nil {
		return summary, err
	}

	names, err := fsutil.ListFilesByExtension(opts.InputDir, opts.Extension)
	if err != nil {
		return summary, fmt.Errorf("failed to scan input directory %s: %w", opts.InputDir, err)
	}
	logger.Info("🚀 Starting batch.", "input_dir", opts.InputDir, "sources", len(names),
		"tile_columns", opts.TileColumns, "tile_rows", opts.TileRows)

	// Tiles land in <output>/<stem>, so only the first source of a stem is sliced.
	owners := make(map[string]string, len(names))
	for _, name := range names {
		stem := grid.StemOf(name)
		if owner, taken := owners[stem]; taken {
			err := grid.NewInvalidParameterError("file_name", name,
				fmt.Sprintf("output directory %q already belongs to %s", stem, owner))
			summary.Results = append(summary.Results, d.reject(ctx, name, err))
			continue
		}
		owners[stem] = name

		res := d.SliceFile(ctx, opts, name)
		summary.Results = append(summary.Results, res)
		if res.Interrupted {
			summary.Elapsed = time.Since(start)
			return summary, ctx.Err()
		}
	}

	summary.Elapsed = time.Since(start)
	logger.Info("🏁 Batch finished.", "sources", len(summary.Results), "broken", len(summary.Broken()),
		"elapsed", summary.Elapsed.String())
	if d.Out != nil {
		writeBatchFooter(d.Out, summary.Elapsed, time.Now())
	}
	return summary, nil
}

// SliceFile processes a single source file and never returns an error: the
// outcome, including any failure, is in the FileResult.
func (d *Driver) SliceFile(ctx context.Context, opts Options, name string) FileResult {
	logger := ctxlog.FromContext(ctx).With("file", name)
	res := FileResult{FileName: name}
	start := time.Now()

	if info, err := os.Stat(filepath.Join(opts.InputDir, name)); err == nil {
		res.SizeBytes = info.Size()
	}

	m, err := ascgrid.LoadMetadata(opts.InputDir, name)
	if err != nil {
		// A header that parses but violates the grid invariant is a parameter
		// problem of this file; anything else means the file could not be read.
		if grid.IsInvalidParameter(err) || errors.Is(err, grid.ErrMalformedHeader) {
			res.Err = err
			res.Elapsed = time.Since(start)
			logger.Error("Skipping source with invalid header.", "error", err)
			d.observe(res)
			return res
		}
		err = grid.NewSourceUnavailableError(grid.StemOf(name), err)
		return d.fail(ctx, res, start, err)
	}

	open := d.Open
	if open == nil {
		open = OpenASCII
	}
	src, err := open(opts.InputDir, m)
	if err != nil {
		return d.fail(ctx, res, start, err)
	}
	defer src.Close()

	report, err := slicer.SliceGrid(ctx, m, opts.TileColumns, opts.TileRows, src, d.Writer)
	res.Report = report
	if err != nil {
		return d.fail(ctx, res, start, err)
	}

	res.Elapsed = time.Since(start)
	logger.Info("Source sliced.", "tiles", report.TilesWritten, "size_mb", res.SizeMB(),
		"elapsed", res.Elapsed.String(), "sec_per_mb", res.SecondsPerMB())
	d.observe(res)
	if d.Out != nil {
		writeFileSummary(d.Out, res, time.Now())
	}
	return res
}

// fail records a failed source. Cancellation is reported but never ledgered,
// since the source itself is fine.
func (d *Driver) fail(ctx context.Context, res FileResult, start time.Time, err error) FileResult {
	logger := ctxlog.FromContext(ctx).With("file", res.FileName)
	res.Err = err
	res.Elapsed = time.Since(start)

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		res.Interrupted = true
		logger.Warn("Slicing interrupted.", "tiles_written", res.Report.TilesWritten)
		d.observe(res)
		return res
	}

	if grid.IsInvalidParameter(err) {
		logger.Error("Source rejected.", "error", err)
		d.observe(res)
		return res
	}

	kind := ledger.KindSource
	if grid.IsOutputWrite(err) {
		kind = ledger.KindOutput
	}

	logger.Warn("Source is broken, recording it in the ledger.", "kind", kind, "error", err,
		"tiles_written", res.Report.TilesWritten)
	if lerr := d.Ledger.Record(ctx, ledger.Entry{FileName: res.FileName, Kind: kind}); lerr != nil {
		logger.Error("Failed to record broken source.", "error", lerr)
	} else {
		res.Ledgered = true
	}
	d.observe(res)
	if d.Out != nil {
		writeBrokenNotice(d.Out, res)
		writeFileSummary(d.Out, res, time.Now())
	}
	return res
}

// reject reports a source that is not sliced at all. It is not ledgered: its
// ledger line would make cleanup remove another source's tiles.
func (d *Driver) reject(ctx context.Context, name string, err error) FileResult {
	res := FileResult{FileName: name, Err: err}
	ctxlog.FromContext(ctx).Error("Skipping source.", "file", name, "error", err)
	d.observe(res)
	return res
}

func (d *Driver) observe(res FileResult) {
	d.Metrics.ObserveSource(res.Result(), res.Report.TilesWritten, res.SizeBytes, res.Elapsed)
}
