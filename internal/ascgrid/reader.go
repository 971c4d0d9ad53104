package ascgrid

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/gridslicer/internal/grid"
	"github.com/specialistvlad/gridslicer/internal/tiling"
)

const readBufferSize = 1 << 20

// Reader streams the data rows of one source grid. Reading forward is a plain
// sequential scan; asking for rows that were already consumed rewinds to the
// start of the matrix.
type Reader struct {
	meta       grid.Metadata
	f          *os.File
	br         *bufio.Reader
	dataOffset int64
	next       int
}

// Open opens the grid file described by m, located in dir.
func Open(dir string, m grid.Metadata) (*Reader, error) {
	f, err := os.Open(filepath.Join(dir, m.FileName))
	if err != nil {
		return nil, grid.NewSourceUnavailableError(m.SourceID, err)
	}

	br := bufio.NewReaderSize(f, readBufferSize)
	_, offset, err := ParseHeader(br)
	if err != nil {
		f.Close()
		return nil, grid.NewSourceUnavailableError(m.SourceID, err)
	}

	return &Reader{meta: m, f: f, br: br, dataOffset: offset}, nil
}

// ReadRows returns the tokens of the source rows in rows, each row holding
// exactly NCOLS tokens.
func (r *Reader) ReadRows(ctx context.Context, rows tiling.Range) ([][]string, error) {
	if rows.Start < 0 || rows.End > r.meta.Rows || rows.Start > rows.End {
		return nil, grid.NewInvalidParameterError("rows", rows.String(), fmt.Sprintf("outside [0,%d)", r.meta.Rows))
	}
	if rows.Start < r.next {
		if err := r.rewind(); err != nil {
			return nil, err
		}
	}
	for r.next < rows.Start {
		if _, err := r.readRow(ctx); err != nil {
			return nil, err
		}
	}

	out := make([][]string, 0, rows.Len())
	for r.next < rows.End {
		tokens, err := r.readRow(ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, tokens)
	}
	return out, nil
}

func (r *Reader) readRow(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for {
		line, err := r.br.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			if errors.Is(err, io.EOF) {
				err = fmt.Errorf("%w: matrix ends after %d of %d rows", grid.ErrMalformedRow, r.next, r.meta.Rows)
			}
			return nil, grid.NewSourceUnavailableError(r.meta.SourceID, err)
		}

		tokens := strings.Fields(line)
		if len(tokens) == 0 {
			continue
		}
		if len(tokens) != r.meta.Columns {
			return nil, grid.NewSourceUnavailableError(r.meta.SourceID,
				fmt.Errorf("%w: row %d has %d tokens, want %d", grid.ErrMalformedRow, r.next, len(tokens), r.meta.Columns))
		}
		r.next++
		return tokens, nil
	}
}

func (r *Reader) rewind() error {
	if _, err := r.f.Seek(r.dataOffset, io.SeekStart); err != nil {
		return grid.NewSourceUnavailableError(r.meta.SourceID, err)
	}
	r.br.Reset(r.f)
	r.next = 0
	return nil
}

// Close releases the underlying file.
func (r *Reader) Close() error {
	return r.f.Close()
}
