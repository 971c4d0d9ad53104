// Package watch slices grid files as they arrive in a directory.
//
// A file is handed over once it has been quiet, with no create, write or
// rename event, for the debounce interval, so large grids that are still
// being copied in are not read half-written.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/specialistvlad/gridslicer/internal/ctxlog"
	"github.com/specialistvlad/gridslicer/internal/fsutil"
)

// DefaultDebounce is used when New is given a non-positive interval.
const DefaultDebounce = 2 * time.Second

// Handler processes one settled file, given by name relative to the watched
// directory.
type Handler func(ctx context.Context, name string)

// Watcher watches one directory, non-recursively.
type Watcher struct {
	dir      string
	ext      string
	debounce time.Duration
	handle   Handler

	fsw     *fsnotify.Watcher
	pending map[string]time.Time
}

// New starts watching dir. Events that happen before Run is called are kept
// and processed once it is.
func New(dir, ext string, debounce time.Duration, handle Handler) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	return &Watcher{
		dir:      dir,
		ext:      ext,
		debounce: debounce,
		handle:   handle,
		fsw:      fsw,
		pending:  make(map[string]time.Time),
	}, nil
}

// Run processes events until ctx is done, then releases the watcher. Files
// are handled one at a time, in name order when several settle together.
func (w *Watcher) Run(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx).With("dir", w.dir)
	defer w.fsw.Close()

	tick := w.debounce / 4
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	logger.Info("👀 Watching for new grid files.", "extension", w.ext, "debounce", w.debounce.String())
	for {
		select {
		case <-ctx.Done():
			logger.Info("Watcher stopped.", "pending", len(w.pending))
			return nil

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.observe(ctx, ev)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			logger.Error("Watcher error.", "error", err)

		case now := <-ticker.C:
			w.flush(ctx, now)
		}
	}
}

// Close releases the watcher without running it.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func (w *Watcher) observe(ctx context.Context, ev fsnotify.Event) {
	name := filepath.Base(ev.Name)
	if !fsutil.HasExtension(name, w.ext) {
		return
	}
	switch {
	case ev.Has(fsnotify.Create), ev.Has(fsnotify.Write):
		w.pending[name] = time.Now()
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		// Rename is reported for the old name; the new one arrives as Create.
		delete(w.pending, name)
	default:
		return
	}
	ctxlog.FromContext(ctx).Debug("File event.", "file", name, "op", ev.Op.String())
}

func (w *Watcher) flush(ctx context.Context, now time.Time) {
	var ready []string
	for name, last := range w.pending {
		if now.Sub(last) >= w.debounce {
			ready = append(ready, name)
		}
	}
	sort.Strings(ready)
	for _, name := range ready {
		if ctx.Err() != nil {
			return
		}
		delete(w.pending, name)
		w.handle(ctx, name)
	}
}
