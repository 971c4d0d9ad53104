// Package fsutil provides file system utility functions.
package fsutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// HasExtension reports whether name ends in .ext, ignoring case. ext may be
// given with or without the leading dot.
func HasExtension(name, ext string) bool {
	ext = strings.TrimPrefix(ext, ".")
	return strings.EqualFold(strings.TrimPrefix(filepath.Ext(name), "."), ext)
}

// ListFilesByExtension returns the names (not paths) of the regular files
// directly inside dir whose extension is ext, sorted.
func ListFilesByExtension(dir, ext string) ([]string, error) {
	if ext == "" {
		panic("extension must not be empty")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() && HasExtension(e.Name(), ext) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// FindFilesByExtension recursively searches the given root path for all files ending
// with the specified extension. It returns a slice of their full paths.
func FindFilesByExtension(rootPath string, extension string) ([]string, error) {
	if extension == "" {
		panic("extension must not be empty")
	}

	var files []string
	err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && HasExtension(d.Name(), extension) {
			files = append(files, path)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	return files, nil
}
