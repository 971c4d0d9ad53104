package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/specialistvlad/gridslicer/internal/grid"
	"github.com/specialistvlad/gridslicer/internal/metrics"
	"github.com/specialistvlad/gridslicer/internal/slicer"
)

// FileResult is the outcome of one source file.
type FileResult struct {
	FileName  string
	SizeBytes int64
	Report    slicer.Report
	Elapsed   time.Duration
	Err       error
	// Ledgered is true when the file was recorded as broken.
	Ledgered bool
	// Interrupted is true when the context was cancelled mid-file.
	Interrupted bool
}

// SizeMB returns the file size in megabytes (10^6 bytes).
func (r FileResult) SizeMB() float64 {
	return float64(r.SizeBytes) / 1e6
}

// SecondsPerMB is the size-normalized processing time, zero for empty files.
func (r FileResult) SecondsPerMB() float64 {
	if r.SizeBytes == 0 {
		return 0
	}
	return r.Elapsed.Seconds() / r.SizeMB()
}

// Result maps the outcome onto a metrics result label.
func (r FileResult) Result() string {
	switch {
	case r.Err == nil:
		return metrics.ResultOK
	case r.Interrupted || errors.Is(r.Err, context.Canceled):
		return metrics.ResultInterrupted
	case grid.IsOutputWrite(r.Err):
		return metrics.ResultOutputError
	case grid.IsInvalidParameter(r.Err), errors.Is(r.Err, grid.ErrMalformedHeader):
		return metrics.ResultInvalid
	default:
		return metrics.ResultSourceError
	}
}

// Summary is the outcome of a whole batch.
type Summary struct {
	RunID   string
	Results []FileResult
	Elapsed time.Duration
}

// Broken lists the file names recorded in the ledger during this batch.
func (s Summary) Broken() []string {
	var out []string
	for _, r := range s.Results {
		if r.Ledgered {
			out = append(out, r.FileName)
		}
	}
	return out
}

// TilesWritten totals the tiles of every source.
func (s Summary) TilesWritten() int {
	n := 0
	for _, r := range s.Results {
		n += r.Report.TilesWritten
	}
	return n
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func writeFileSummary(w io.Writer, r FileResult, now time.Time) {
	fmt.Fprintf(w, "\n    File name: %s\n", r.FileName)
	fmt.Fprintf(w, "    File size: %v MB\n", round2(r.SizeMB()))
	fmt.Fprintf(w, "    Tiles written: %d\n", r.Report.TilesWritten)
	fmt.Fprintf(w, "    ABSOLUTE processing time: %v seconds\n", round2(r.Elapsed.Seconds()))
	fmt.Fprintf(w, "    RELATIVE processing time: %v sec/MB\n", round2(r.SecondsPerMB()))
	fmt.Fprintf(w, "    TIME: %s\n\n", now.Format("15:04:05"))
}

func writeBrokenNotice(w io.Writer, r FileResult) {
	fmt.Fprintf(w, "    __File %s is broken__\n", r.FileName)
}

func writeBatchFooter(w io.Writer, elapsed time.Duration, now time.Time) {
	fmt.Fprintf(w, "\nABSOLUTE time for the whole process: %s\n", FormatElapsed(elapsed))
	fmt.Fprintf(w, "TIME: %s\n\n", now.Format("15:04:05"))
}

// FormatElapsed renders a batch duration the way operators read it: seconds
// with two decimals under a minute, whole minutes and seconds under an hour,
// hours, minutes and seconds beyond.
func FormatElapsed(d time.Duration) string {
	secs := d.Seconds()
	if secs < 60 {
		return fmt.Sprintf("%v seconds", round2(secs))
	}
	total := int(secs)
	hours, minutes, seconds := total/3600, (total%3600)/60, total%60
	if hours > 0 {
		return fmt.Sprintf("%d hours, %d minutes and %d seconds", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d minutes and %d seconds", minutes, seconds)
}
