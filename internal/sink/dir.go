package sink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/specialistvlad/gridslicer/internal/ascgrid"
	"github.com/specialistvlad/gridslicer/internal/grid"
)

// DirWriter writes tiles to <Root>/<sourceId>/<name>.
type DirWriter struct {
	Root string
}

// NewDirWriter creates a DirWriter rooted at root.
func NewDirWriter(root string) *DirWriter {
	return &DirWriter{Root: root}
}

// Prepare creates the per-source directory. An existing directory is reused
// and its tiles are overwritten.
func (w *DirWriter) Prepare(_ context.Context, sourceID string) error {
	dir := filepath.Join(w.Root, sourceID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return grid.NewOutputWriteError(sourceID, dir, err)
	}
	return nil
}

// WriteTile encodes one tile into its own file.
func (w *DirWriter) WriteTile(_ context.Context, sourceID, name string, h ascgrid.Header, rows [][]string) (err error) {
	path := filepath.Join(w.Root, sourceID, name)
	f, err := os.Create(path)
	if err != nil {
		return grid.NewOutputWriteError(sourceID, path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = grid.NewOutputWriteError(sourceID, path, cerr)
		}
	}()

	if err := ascgrid.Encode(f, h, rows); err != nil {
		return grid.NewOutputWriteError(sourceID, path, fmt.Errorf("encode tile: %w", err))
	}
	return nil
}
