// Package finder lists the grid files whose data matrix contains a given
// token, such as a no-data sentinel or a suspicious elevation.
package finder

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/specialistvlad/gridslicer/internal/ascgrid"
	"github.com/specialistvlad/gridslicer/internal/ctxlog"
	"github.com/specialistvlad/gridslicer/internal/fsutil"
	"golang.org/x/sync/errgroup"
)

// ReportHeader is the first line of a report file.
const ReportHeader = "FILE NAME"

// Options configures a search.
type Options struct {
	InputDir  string
	Extension string
	Token     string
	// Workers bounds the number of files scanned at once. Zero means GOMAXPROCS.
	Workers int
}

// Find returns the sorted names of the files in opts.InputDir whose data rows
// contain opts.Token. Header lines are not searched. Files that cannot be
// parsed are logged and skipped.
func Find(ctx context.Context, opts Options) ([]string, error) {
	logger := ctxlog.FromContext(ctx)
	if opts.Token == "" {
		return nil, errors.New("search token must not be empty")
	}

	if opts.Extension == "" {
		opts.Extension = "asc"
	}
	names, err := fsutil.ListFilesByExtension(opts.InputDir, opts.Extension)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", opts.InputDir, err)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	hits := make([]bool, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			found, err := containsToken(gctx, filepath.Join(opts.InputDir, name), opts.Token)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				logger.Warn("Skipping unreadable file.", "file", name, "error", err)
				return nil
			}
			if found {
				logger.Info("File was included.", "file", name)
			}
			hits[i] = found
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []string
	for i, hit := range hits {
		if hit {
			out = append(out, names[i])
		}
	}
	return out, nil
}

// WriteReport writes names to <dir>/<reportName>.txt under ReportHeader and
// returns the report path.
func WriteReport(dir, reportName string, names []string) (string, error) {
	path := filepath.Join(dir, reportName+".txt")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create report: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintln(w, ReportHeader)
	for _, n := range names {
		fmt.Fprintln(w, n)
	}
	if err := w.Flush(); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, f.Close()
}

func containsToken(ctx context.Context, path, token string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	br := bufio.NewReaderSize(f, 1<<20)
	if _, _, err := ascgrid.ParseHeader(br); err != nil {
		return false, err
	}

	sc := bufio.NewScanner(br)
	sc.Split(bufio.ScanWords)
	for n := 0; sc.Scan(); n++ {
		if n%65536 == 0 {
			if err := ctx.Err(); err != nil {
				return false, err
			}
		}
		if sc.Text() == token {
			return true, nil
		}
	}
	return false, sc.Err()
}
