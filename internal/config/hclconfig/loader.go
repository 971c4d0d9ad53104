// Package hclconfig loads job files written in HCL.
//
// Expressions are evaluated with an `env` object holding the process
// environment, so a job file can say `input_dir = env.DEM_DIR`.
package hclconfig

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/gridslicer/internal/config"
	"github.com/specialistvlad/gridslicer/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// Loader is the HCL implementation of config.Loader.
type Loader struct {
	// Env is exposed to expressions as `env`. Nil means the process
	// environment.
	Env map[string]string
}

// NewLoader creates a loader bound to the process environment.
func NewLoader() *Loader {
	return &Loader{}
}

type jobFile struct {
	InputDir    string       `hcl:"input_dir,optional"`
	OutputDir   string       `hcl:"output_dir,optional"`
	Extension   string       `hcl:"extension,optional"`
	TileColumns int          `hcl:"tile_columns,optional"`
	TileRows    int          `hcl:"tile_rows,optional"`
	LedgerPath  string       `hcl:"ledger_path,optional"`
	Output      *outputBlock `hcl:"output,block"`
}

// outputBlock is `output "local" {}` or `output "s3" { bucket = ... }`.
type outputBlock struct {
	Kind     string `hcl:"kind,label"`
	Bucket   string `hcl:"bucket,optional"`
	Prefix   string `hcl:"prefix,optional"`
	Region   string `hcl:"region,optional"`
	Endpoint string `hcl:"endpoint,optional"`
}

// Load parses and decodes the job file at path.
func (l *Loader) Load(ctx context.Context, path string) (*config.Job, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL job loader started.", "path", path)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}

	var jf jobFile
	diags = gohcl.DecodeBody(file.Body, l.evalContext(), &jf)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", path, diags)
	}

	job := &config.Job{
		InputDir:    jf.InputDir,
		OutputDir:   jf.OutputDir,
		Extension:   jf.Extension,
		TileColumns: jf.TileColumns,
		TileRows:    jf.TileRows,
		LedgerPath:  jf.LedgerPath,
	}
	if jf.Output != nil {
		job.Output = config.Output{
			Kind: jf.Output.Kind,
			S3: config.S3Output{
				Bucket:   jf.Output.Bucket,
				Prefix:   jf.Output.Prefix,
				Region:   jf.Output.Region,
				Endpoint: jf.Output.Endpoint,
			},
		}
	}

	logger.Debug("HCL job loaded.", "input_dir", job.InputDir, "output_kind", job.Output.Kind)
	return job, nil
}

func (l *Loader) evalContext() *hcl.EvalContext {
	env := l.Env
	if env == nil {
		env = environ()
	}
	vals := make(map[string]cty.Value, len(env))
	for k, v := range env {
		vals[k] = cty.StringVal(v)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{"env": cty.ObjectVal(vals)},
	}
}

func environ() map[string]string {
	out := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok && k != "" {
			out[k] = v
		}
	}
	return out
}
