// Package cleanup removes the partial output of sources recorded in the
// broken-sources ledger, so they can be sliced again from scratch.
package cleanup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/gridslicer/internal/ctxlog"
	"github.com/specialistvlad/gridslicer/internal/grid"
	"github.com/specialistvlad/gridslicer/internal/ledger"
)

// Result lists what a cleanup did, by source id.
type Result struct {
	Removed []string
	Missing []string
}

// Run removes <outputRoot>/<stem> for every entry of the ledger at ledgerPath.
// Directories that do not exist are reported as missing, not as errors.
func Run(ctx context.Context, ledgerPath, outputRoot string) (Result, error) {
	logger := ctxlog.FromContext(ctx)
	var res Result

	entries, err := ledger.ReadFile(ledgerPath)
	if err != nil {
		return res, fmt.Errorf("failed to read ledger %s: %w", ledgerPath, err)
	}
	logger.Debug("Ledger read.", "path", ledgerPath, "entries", len(entries))

	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		stem := grid.StemOf(e.FileName)
		if _, dup := seen[stem]; dup {
			continue
		}
		seen[stem] = struct{}{}

		// Only direct children of the output root may be removed, never the
		// root itself or anything above it.
		dir := filepath.Join(outputRoot, stem)
		if stem == "" || strings.ContainsAny(stem, `/\`) || filepath.Dir(dir) != filepath.Clean(outputRoot) {
			logger.Warn("Ignoring ledger entry with unsafe name.", "entry", e.FileName)
			continue
		}

		if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
			logger.Debug("Nothing to remove.", "dir", dir)
			res.Missing = append(res.Missing, stem)
			continue
		}
		if err := os.RemoveAll(dir); err != nil {
			return res, fmt.Errorf("failed to remove %s: %w", dir, err)
		}
		logger.Info("Removed output of broken source.", "source", e.FileName, "dir", dir)
		res.Removed = append(res.Removed, stem)
	}
	return res, nil
}
