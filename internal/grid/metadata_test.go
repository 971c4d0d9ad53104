package grid

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadata_Validate(t *testing.T) {
	t.Parallel()

	valid := Metadata{Columns: 4, Rows: 4, CellSize: 10}
	require.NoError(t, valid.Validate())

	cases := map[string]Metadata{
		"zero columns":   {Columns: 0, Rows: 4, CellSize: 10},
		"negative rows":  {Columns: 4, Rows: -1, CellSize: 10},
		"zero cell size": {Columns: 4, Rows: 4, CellSize: 0},
	}
	for name, m := range cases {
		t.Run(name, func(t *testing.T) {
			err := m.Validate()
			require.Error(t, err)
			assert.True(t, IsInvalidParameter(err), "expected InvalidParameterError, got %T", err)
		})
	}
}

func TestStemAndExt(t *testing.T) {
	t.Parallel()

	m := Metadata{FileName: "MDT05_0559.asc"}
	assert.Equal(t, "asc", m.Ext())
	assert.Equal(t, "MDT05_0559", StemOf(m.FileName))
	assert.Equal(t, "MDT05_0559", StemOf("/data/in/MDT05_0559.asc"))
	assert.Equal(t, "noext", StemOf("noext"))
}

func TestErrorPredicatesSeeThroughWrapping(t *testing.T) {
	t.Parallel()

	src := fmt.Errorf("tile 3: %w", NewSourceUnavailableError("a", io.ErrUnexpectedEOF))
	assert.True(t, IsSourceUnavailable(src))
	assert.False(t, IsOutputWrite(src))
	assert.True(t, errors.Is(src, io.ErrUnexpectedEOF))

	out := fmt.Errorf("tile 3: %w", NewOutputWriteError("a", "/out/a/a_1_1.asc", io.ErrShortWrite))
	assert.True(t, IsOutputWrite(out))
	assert.False(t, IsSourceUnavailable(out))
	assert.Contains(t, out.Error(), "/out/a/a_1_1.asc")
}
