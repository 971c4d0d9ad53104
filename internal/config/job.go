package config

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/specialistvlad/gridslicer/internal/grid"
	"github.com/specialistvlad/gridslicer/internal/ledger"
)

// Output kinds.
const (
	OutputLocal = "local"
	OutputS3    = "s3"
)

// DefaultExtension is the source grid extension used when none is set.
const DefaultExtension = "asc"

// Environment variables read by FromEnv.
const (
	EnvInputDir    = "GRIDSLICER_INPUT_DIR"
	EnvOutputDir   = "GRIDSLICER_OUTPUT_DIR"
	EnvTileColumns = "GRIDSLICER_TILE_COLUMNS"
	EnvTileRows    = "GRIDSLICER_TILE_ROWS"
)

// Job describes one slicing run.
type Job struct {
	InputDir    string
	OutputDir   string
	Extension   string
	TileColumns int
	TileRows    int
	LedgerPath  string
	Output      Output
}

// Output selects where tiles go.
type Output struct {
	Kind string
	S3   S3Output
}

// S3Output addresses a bucket. Credentials come from the AWS default chain.
type S3Output struct {
	Bucket   string
	Prefix   string
	Region   string
	Endpoint string
}

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// FromEnv builds a partial Job from the GRIDSLICER_* variables.
func FromEnv(lookup LookupFunc) (Job, error) {
	var j Job
	if v, ok := lookup(EnvInputDir); ok {
		j.InputDir = v
	}
	if v, ok := lookup(EnvOutputDir); ok {
		j.OutputDir = v
	}
	for key, dst := range map[string]*int{EnvTileColumns: &j.TileColumns, EnvTileRows: &j.TileRows} {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return Job{}, fmt.Errorf("invalid %s %q: %w", key, v, err)
		}
		*dst = n
	}
	return j, nil
}

// Merge overlays every field that is set in over.
func (j *Job) Merge(over Job) {
	if over.InputDir != "" {
		j.InputDir = over.InputDir
	}
	if over.OutputDir != "" {
		j.OutputDir = over.OutputDir
	}
	if over.Extension != "" {
		j.Extension = over.Extension
	}
	if over.TileColumns != 0 {
		j.TileColumns = over.TileColumns
	}
	if over.TileRows != 0 {
		j.TileRows = over.TileRows
	}
	if over.LedgerPath != "" {
		j.LedgerPath = over.LedgerPath
	}
	if over.Output.Kind != "" {
		j.Output.Kind = over.Output.Kind
	}
	s3 := over.Output.S3
	if s3.Bucket != "" {
		j.Output.S3.Bucket = s3.Bucket
	}
	if s3.Prefix != "" {
		j.Output.S3.Prefix = s3.Prefix
	}
	if s3.Region != "" {
		j.Output.S3.Region = s3.Region
	}
	if s3.Endpoint != "" {
		j.Output.S3.Endpoint = s3.Endpoint
	}
}

// ApplyDefaults fills the fields that have a built-in default.
func (j *Job) ApplyDefaults() {
	if j.Extension == "" {
		j.Extension = DefaultExtension
	}
	j.Extension = strings.TrimPrefix(j.Extension, ".")
	if j.Output.Kind == "" {
		j.Output.Kind = OutputLocal
	}
	if j.LedgerPath == "" && j.InputDir != "" {
		j.LedgerPath = filepath.Join(j.InputDir, ledger.DefaultFileName)
	}
}

// Validate checks a fully merged Job.
func (j Job) Validate() error {
	if j.InputDir == "" {
		return grid.NewInvalidParameterError("input_dir", j.InputDir, "is required")
	}
	if j.TileColumns <= 0 {
		return grid.NewInvalidParameterError("tile_columns", j.TileColumns, "must be greater than zero")
	}
	if j.TileRows <= 0 {
		return grid.NewInvalidParameterError("tile_rows", j.TileRows, "must be greater than zero")
	}
	switch j.Output.Kind {
	case OutputLocal:
		if j.OutputDir == "" {
			return grid.NewInvalidParameterError("output_dir", j.OutputDir, "is required for local output")
		}
	case OutputS3:
		if j.Output.S3.Bucket == "" {
			return grid.NewInvalidParameterError("output.s3.bucket", j.Output.S3.Bucket, "is required for s3 output")
		}
	default:
		return grid.NewInvalidParameterError("output.kind", j.Output.Kind, "must be 'local' or 's3'")
	}
	return nil
}
