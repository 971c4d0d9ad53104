package app

import (
	"context"
	"fmt"

	"github.com/specialistvlad/gridslicer/internal/batch"
	"github.com/specialistvlad/gridslicer/internal/ctxlog"
	"github.com/specialistvlad/gridslicer/internal/watch"
)

// Run slices every grid of the job's input directory once.
func (a *App) Run(ctx context.Context) (batch.Summary, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if err := a.healthCheckServer(); err != nil {
		return batch.Summary{}, err
	}
	defer a.closeHealthCheckServer()

	summary, err := a.driver.Run(ctx, a.batchOptions())
	if err != nil {
		return summary, fmt.Errorf("batch failed: %w", err)
	}
	if broken := summary.Broken(); len(broken) > 0 {
		a.logger.Warn("Some sources are broken.", "count", len(broken), "ledger", a.ledger.Path())
	}

	a.logger.Debug("App.Run method finished.")
	return summary, nil
}

// Watch slices grids as they appear in the job's input directory until ctx
// is cancelled.
func (a *App) Watch(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Watch method started.")

	if err := a.healthCheckServer(); err != nil {
		return err
	}
	defer a.closeHealthCheckServer()

	opts := a.batchOptions()
	if err := opts.Validate(); err != nil {
		return err
	}
	w, err := watch.New(opts.InputDir, opts.Extension, a.config.WatchDebounce, func(ctx context.Context, name string) {
		a.driver.SliceFile(ctx, opts, name)
	})
	if err != nil {
		return err
	}
	return w.Run(ctx)
}
