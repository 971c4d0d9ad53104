// Package ledger records source grids that could not be sliced, so a cleanup
// pass can remove their partial output and a later run can retry them.
//
// The file ledger is append-only and safe for concurrent use. Each line is
// "<file name>\t<kind>"; bare file names written by older tools are read back
// as KindSource.
package ledger

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// DefaultFileName is the ledger file created next to the source grids.
const DefaultFileName = "BROKEN FILES.txt"

// Kind tells why a source was ledgered.
type Kind string

const (
	// KindSource marks a source that became unreadable.
	KindSource Kind = "source"
	// KindOutput marks a source whose tiles could not be written.
	KindOutput Kind = "output"
)

// Entry is one ledgered source.
type Entry struct {
	FileName string
	Kind     Kind
}

// Ledger is the append-only broken-sources record.
type Ledger interface {
	Record(ctx context.Context, e Entry) error
}

// File appends entries to a text file.
type File struct {
	mu   sync.Mutex
	path string
}

// NewFile returns a ledger backed by path. The file is created on first use.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the ledger file location.
func (l *File) Path() string {
	return l.path
}

// Record appends e and syncs the file before returning.
func (l *File) Record(_ context.Context, e Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("failed to create ledger directory: %w", err)
	}
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open ledger %s: %w", l.path, err)
	}
	if _, err := fmt.Fprintf(f, "%s\t%s\n", e.FileName, e.Kind); err != nil {
		f.Close()
		return fmt.Errorf("failed to append to ledger %s: %w", l.path, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("failed to sync ledger %s: %w", l.path, err)
	}
	return f.Close()
}

// ReadFile parses a ledger file. A missing file yields no entries.
func ReadFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var entries []Entry
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		name, kind, found := strings.Cut(line, "\t")
		e := Entry{FileName: name, Kind: KindSource}
		if found && kind != "" {
			e.Kind = Kind(kind)
		}
		entries = append(entries, e)
	}
	return entries, sc.Err()
}

// Memory keeps entries in memory, for tests and dry runs.
type Memory struct {
	mu      sync.Mutex
	entries []Entry
}

// Record appends e.
func (l *Memory) Record(_ context.Context, e Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, e)
	return nil
}

// Entries returns a copy of what was recorded, in order.
func (l *Memory) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Entry(nil), l.entries...)
}
