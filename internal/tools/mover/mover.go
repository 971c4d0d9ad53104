// Package mover copies the grid files that belong to a list of map sheets.
//
// Source names are underscore-separated, e.g. "PNOA_MDT05_ETRS89_HU30_0559_LID.asc",
// and one of the fields (index 4 by default) is the sheet number.
package mover

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/gridslicer/internal/ctxlog"
)

// DefaultFieldIndex is the position of the sheet number in a file name.
const DefaultFieldIndex = 4

// Options configures a copy.
type Options struct {
	InputDir   string
	OutputDir  string
	SheetsPath string
	FieldIndex int
}

// ReadSheets reads one sheet number per line, ignoring blank lines.
func ReadSheets(path string) (map[string]struct{}, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sheet list: %w", err)
	}
	defer f.Close()

	sheets := make(map[string]struct{})
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if s := strings.TrimSpace(sc.Text()); s != "" {
			sheets[s] = struct{}{}
		}
	}
	return sheets, sc.Err()
}

// SheetOf returns the field at index of the extension-less name, or false
// when the name has too few fields.
func SheetOf(name string, index int) (string, bool) {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	fields := strings.Split(stem, "_")
	if index < 0 || index >= len(fields) {
		return "", false
	}
	return fields[index], true
}

// Copy copies every regular file in opts.InputDir whose sheet is listed in
// opts.SheetsPath into opts.OutputDir, keeping modification times. It returns
// the copied names.
func Copy(ctx context.Context, opts Options) ([]string, error) {
	logger := ctxlog.FromContext(ctx)

	sheets, err := ReadSheets(opts.SheetsPath)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(opts.InputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", opts.InputDir, err)
	}
	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", opts.OutputDir, err)
	}

	var copied []string
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return copied, err
		}
		if !e.Type().IsRegular() {
			continue
		}
		sheet, ok := SheetOf(e.Name(), opts.FieldIndex)
		if !ok {
			continue
		}
		if _, want := sheets[sheet]; !want {
			continue
		}
		if err := copyFile(filepath.Join(opts.InputDir, e.Name()), filepath.Join(opts.OutputDir, e.Name())); err != nil {
			return copied, err
		}
		logger.Debug("File copied.", "file", e.Name(), "sheet", sheet)
		copied = append(copied, e.Name())
	}
	logger.Info("Sheet files copied.", "count", len(copied), "sheets", len(sheets))
	return copied, nil
}

func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", src, err)
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", dst, cerr)
		}
		if err == nil {
			err = os.Chtimes(dst, info.ModTime(), info.ModTime())
		}
	}()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	return nil
}
