package ascgrid

import (
	"bufio"
	"fmt"
	"io"
)

// Encode writes a complete grid file: the header followed by one line per row
// with tokens separated by single spaces.
func Encode(w io.Writer, h Header, rows [][]string) error {
	if len(rows) != h.Rows {
		return fmt.Errorf("header declares %d rows, got %d", h.Rows, len(rows))
	}

	bw := bufio.NewWriter(w)
	if err := WriteHeader(bw, h); err != nil {
		return err
	}
	for n, row := range rows {
		if len(row) != h.Columns {
			return fmt.Errorf("row %d: header declares %d columns, got %d", n, h.Columns, len(row))
		}
		for k, token := range row {
			if k > 0 {
				bw.WriteByte(' ')
			}
			bw.WriteString(token)
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}
