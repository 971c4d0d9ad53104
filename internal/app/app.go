package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/gridslicer/internal/batch"
	"github.com/specialistvlad/gridslicer/internal/config"
	"github.com/specialistvlad/gridslicer/internal/config/hclconfig"
	"github.com/specialistvlad/gridslicer/internal/config/yamlconfig"
	"github.com/specialistvlad/gridslicer/internal/ctxlog"
	"github.com/specialistvlad/gridslicer/internal/ledger"
	"github.com/specialistvlad/gridslicer/internal/metrics"
	"github.com/specialistvlad/gridslicer/internal/sink"
	"github.com/specialistvlad/gridslicer/internal/slicer"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	ctx     context.Context
	outW    io.Writer
	logger  *slog.Logger
	config  *Config
	job     config.Job
	metrics *metrics.Metrics
	ledger  *ledger.File
	driver  *batch.Driver

	httpServer *http.Server
	httpAddr   net.Addr
}

// Option customizes NewApp.
type Option func(*options)

type options struct {
	lookupEnv config.LookupFunc
	writer    slicer.TileWriter
}

// WithLookupEnv replaces os.LookupEnv as the source of GRIDSLICER_* variables.
func WithLookupEnv(fn config.LookupFunc) Option {
	return func(o *options) { o.lookupEnv = fn }
}

// WithTileWriter replaces the tile sink selected by the job's output kind.
func WithTileWriter(w slicer.TileWriter) Option {
	return func(o *options) { o.writer = w }
}

// NewApp is the constructor for the main application. It resolves the job
// from environment, job file and flags, in increasing precedence, and wires
// the batch driver.
func NewApp(ctx context.Context, outW io.Writer, cfg *Config, opts ...Option) (*App, error) {
	o := options{lookupEnv: os.LookupEnv}
	for _, opt := range opts {
		opt(&o)
	}

	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Logger configured successfully.")

	job, err := resolveJob(ctx, cfg, o.lookupEnv)
	if err != nil {
		return nil, err
	}
	logger.Debug("Job resolved.", "input_dir", job.InputDir, "output_kind", job.Output.Kind,
		"tile_columns", job.TileColumns, "tile_rows", job.TileRows, "ledger", job.LedgerPath)

	writer := o.writer
	if writer == nil {
		writer, err = newTileWriter(ctx, job)
		if err != nil {
			return nil, err
		}
	}

	m := metrics.New()
	led := ledger.NewFile(job.LedgerPath)
	return &App{
		ctx:     ctx,
		outW:    outW,
		logger:  logger,
		config:  cfg,
		job:     job,
		metrics: m,
		ledger:  led,
		driver: &batch.Driver{
			Writer:  writer,
			Ledger:  led,
			Metrics: m,
			Out:     outW,
		},
	}, nil
}

// Job returns the resolved job. This is primarily for testing.
func (a *App) Job() config.Job {
	return a.job
}

func (a *App) batchOptions() batch.Options {
	return batch.Options{
		InputDir:    a.job.InputDir,
		Extension:   a.job.Extension,
		TileColumns: a.job.TileColumns,
		TileRows:    a.job.TileRows,
	}
}

func resolveJob(ctx context.Context, cfg *Config, lookupEnv config.LookupFunc) (config.Job, error) {
	job, err := config.FromEnv(lookupEnv)
	if err != nil {
		return config.Job{}, err
	}

	if cfg.JobPath != "" {
		loader, err := loaderFor(cfg.JobPath)
		if err != nil {
			return config.Job{}, err
		}
		fileJob, err := loader.Load(ctx, cfg.JobPath)
		if err != nil {
			return config.Job{}, fmt.Errorf("failed to load job file: %w", err)
		}
		job.Merge(*fileJob)
	}

	job.Merge(cfg.Flags)
	job.ApplyDefaults()
	if err := job.Validate(); err != nil {
		return config.Job{}, err
	}
	return job, nil
}

// loaderFor picks a job file loader by extension.
func loaderFor(path string) (config.Loader, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hcl":
		return hclconfig.NewLoader(), nil
	case ".yaml", ".yml":
		return yamlconfig.NewLoader(), nil
	default:
		return nil, fmt.Errorf("unsupported job file %s: want .hcl, .yaml or .yml", path)
	}
}

func newTileWriter(ctx context.Context, job config.Job) (slicer.TileWriter, error) {
	switch job.Output.Kind {
	case config.OutputS3:
		s3 := job.Output.S3
		w, err := sink.NewS3Writer(ctx, sink.S3Options{
			Bucket:    s3.Bucket,
			Prefix:    s3.Prefix,
			Region:    s3.Region,
			Endpoint:  s3.Endpoint,
			PathStyle: s3.Endpoint != "",
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create S3 tile writer: %w", err)
		}
		return w, nil
	default:
		return sink.NewDirWriter(job.OutputDir), nil
	}
}
