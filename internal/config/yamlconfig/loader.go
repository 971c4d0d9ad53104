// Package yamlconfig loads job files written in YAML.
package yamlconfig

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/specialistvlad/gridslicer/internal/config"
	"github.com/specialistvlad/gridslicer/internal/ctxlog"
	"gopkg.in/yaml.v3"
)

// Loader is the YAML implementation of config.Loader.
type Loader struct{}

// NewLoader creates a YAML job loader.
func NewLoader() *Loader {
	return &Loader{}
}

type jobFile struct {
	InputDir    string     `yaml:"input_dir"`
	OutputDir   string     `yaml:"output_dir"`
	Extension   string     `yaml:"extension"`
	TileColumns int        `yaml:"tile_columns"`
	TileRows    int        `yaml:"tile_rows"`
	LedgerPath  string     `yaml:"ledger_path"`
	Output      outputFile `yaml:"output"`
}

type outputFile struct {
	Kind string `yaml:"kind"`
	S3   struct {
		Bucket   string `yaml:"bucket"`
		Prefix   string `yaml:"prefix"`
		Region   string `yaml:"region"`
		Endpoint string `yaml:"endpoint"`
	} `yaml:"s3"`
}

// Load decodes the job file at path. Unknown keys are rejected.
func (l *Loader) Load(ctx context.Context, path string) (*config.Job, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("YAML job loader started.", "path", path)

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open YAML file %s: %w", path, err)
	}
	defer f.Close()

	var jf jobFile
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&jf); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode YAML file %s: %w", path, err)
	}

	job := &config.Job{
		InputDir:    jf.InputDir,
		OutputDir:   jf.OutputDir,
		Extension:   jf.Extension,
		TileColumns: jf.TileColumns,
		TileRows:    jf.TileRows,
		LedgerPath:  jf.LedgerPath,
		Output: config.Output{
			Kind: jf.Output.Kind,
			S3: config.S3Output{
				Bucket:   jf.Output.S3.Bucket,
				Prefix:   jf.Output.S3.Prefix,
				Region:   jf.Output.S3.Region,
				Endpoint: jf.Output.S3.Endpoint,
			},
		},
	}

	logger.Debug("YAML job loaded.", "input_dir", job.InputDir, "output_kind", job.Output.Kind)
	return job, nil
}
