// Package features reports the extent and shape of every tile under an
// output root, as a space-separated text file or an Excel workbook.
package features

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/specialistvlad/gridslicer/internal/ascgrid"
	"github.com/specialistvlad/gridslicer/internal/ctxlog"
	"github.com/specialistvlad/gridslicer/internal/fsutil"
	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"
)

// Report formats.
const (
	FormatText = "txt"
	FormatXLSX = "xlsx"
)

// ReportName is the base name of the report file.
const ReportName = "FILES FEATURES"

const sheetName = "Features"

// Columns is the report header.
var Columns = []string{"MIN_X", "MAX_X", "MIN_Y", "MAX_Y", "PATH", "CELLSIZE", "NROWS", "NCOLS"}

// Feature describes one tile. Max coordinates refer to the same anchor as
// the header, i.e. min + cellsize*(n-1).
type Feature struct {
	MinX, MaxX float64
	MinY, MaxY float64
	Path       string
	CellSize   string
	Rows       int
	Columns    int
}

// Options configures a report.
type Options struct {
	Root      string
	Extension string
	ReportDir string
	Format    string
	Workers   int
}

// Collect reads the header of every grid file below root. Files with an
// invalid header are logged and left out.
func Collect(ctx context.Context, root, ext string, workers int) ([]Feature, error) {
	logger := ctxlog.FromContext(ctx)
	if ext == "" {
		ext = "asc"
	}
	paths, err := fsutil.FindFilesByExtension(root, ext)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	found := make([]*Feature, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			m, err := ascgrid.LoadMetadata(filepath.Dir(p), filepath.Base(p))
			if err != nil {
				logger.Warn("Skipping file with unreadable header.", "path", p, "error", err)
				return nil
			}
			found[i] = &Feature{
				MinX:     m.OriginX,
				MaxX:     m.OriginX + m.CellSize*float64(m.Columns-1),
				MinY:     m.OriginY,
				MaxY:     m.OriginY + m.CellSize*float64(m.Rows-1),
				Path:     p,
				CellSize: m.CellSizeToken,
				Rows:     m.Rows,
				Columns:  m.Columns,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []Feature
	for _, f := range found {
		if f != nil {
			out = append(out, *f)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Path < out[b].Path })
	return out, nil
}

// Record collects the features under opts.Root and writes the report into
// opts.ReportDir. It returns the report path.
func Record(ctx context.Context, opts Options) (string, error) {
	logger := ctxlog.FromContext(ctx)

	fs, err := Collect(ctx, opts.Root, opts.Extension, opts.Workers)
	if err != nil {
		return "", err
	}

	var path string
	switch opts.Format {
	case "", FormatText:
		path = filepath.Join(opts.ReportDir, ReportName+".txt")
		err = writeTextFile(path, fs)
	case FormatXLSX:
		path = filepath.Join(opts.ReportDir, ReportName+".xlsx")
		err = WriteXLSX(path, fs)
	default:
		return "", fmt.Errorf("unknown report format %q", opts.Format)
	}
	if err != nil {
		return "", err
	}
	logger.Info("Features report written.", "path", path, "tiles", len(fs))
	return path, nil
}

// WriteText writes one space-separated line per feature under the header.
func WriteText(w io.Writer, fs []Feature) error {
	bw := bufio.NewWriter(w)
	for i, c := range Columns {
		if i > 0 {
			bw.WriteByte(' ')
		}
		bw.WriteString(c)
	}
	bw.WriteByte('\n')
	for _, f := range fs {
		fmt.Fprintf(bw, "%s %s %s %s %s %s %d %d\n",
			ascgrid.FormatNumber(f.MinX), ascgrid.FormatNumber(f.MaxX),
			ascgrid.FormatNumber(f.MinY), ascgrid.FormatNumber(f.MaxY),
			f.Path, f.CellSize, f.Rows, f.Columns)
	}
	return bw.Flush()
}

func writeTextFile(path string, fs []Feature) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	if err := WriteText(f, fs); err != nil {
		f.Close()
		return fmt.Errorf("failed to write report: %w", err)
	}
	return f.Close()
}

// WriteXLSX writes the features to a single-sheet workbook.
func WriteXLSX(path string, fs []Feature) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := f.SetSheetRow(sheetName, "A1", &Columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, ft := range fs {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{ft.MinX, ft.MaxX, ft.MinY, ft.MaxY, ft.Path, ft.CellSize, ft.Rows, ft.Columns}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}
