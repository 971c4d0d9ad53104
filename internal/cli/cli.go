package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/specialistvlad/gridslicer/internal/app"
	"github.com/specialistvlad/gridslicer/internal/grid"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(err error) error {
	return &ExitError{Code: 2, Message: err.Error()}
}

// globalFlags are shared by every command.
type globalFlags struct {
	logLevel        string
	logFormat       string
	healthcheckPort int
}

func (g *globalFlags) appConfig() (*app.Config, error) {
	cfg, err := app.NewConfig(app.Config{
		LogLevel:        g.logLevel,
		LogFormat:       g.logFormat,
		HealthcheckPort: g.healthcheckPort,
	})
	if err != nil {
		return nil, usageError(err)
	}
	return cfg, nil
}

// loggerContext is used by the tool commands, which do not build an App.
func (g *globalFlags) loggerContext(cmd *cobra.Command) (context.Context, error) {
	if _, err := g.appConfig(); err != nil {
		return nil, err
	}
	return app.LoggerContext(cmd.Context(), cmd.ErrOrStderr(), g.logLevel, g.logFormat), nil
}

// NewRootCommand builds the gridslicer command tree. Human-readable reports
// go to outW, logs to errW.
func NewRootCommand(outW, errW io.Writer) *cobra.Command {
	g := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "gridslicer",
		Short: "Slice ESRI ASCII grid rasters into smaller tiles",
		Long: `gridslicer cuts every ESRI ASCII grid (.asc) of a directory into tiles of a
fixed number of cells, recomputing each tile's georeferenced header.

Tiles of a source "NAME.asc" are written to "<output>/NAME/NAME_<col>_<row>.asc",
numbered from the lower-left corner. Sources that become unreadable are
recorded in a broken-files ledger and can be removed with "gridslicer cleanup".`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(outW)
	cmd.SetErr(errW)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	cmd.PersistentFlags().StringVar(&g.logFormat, "log-format", "auto", "Log output format. Options: 'auto', 'text' or 'json'.")
	cmd.PersistentFlags().IntVar(&g.healthcheckPort, "healthcheck-port", 0, "Port for the /health and /metrics server. 0 is disabled.")

	cmd.AddCommand(sliceCommand(g))
	cmd.AddCommand(watchCommand(g))
	cmd.AddCommand(cleanupCommand(g))
	cmd.AddCommand(findCommand(g))
	cmd.AddCommand(copyCommand(g))
	cmd.AddCommand(featuresCommand(g))

	return cmd
}

// Execute runs the command tree with args. Invalid flags and invalid job
// parameters come back as an *ExitError with code 2.
func Execute(ctx context.Context, outW, errW io.Writer, args []string) error {
	cmd := NewRootCommand(outW, errW)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}
	if grid.IsInvalidParameter(err) {
		return usageError(err)
	}
	return fmt.Errorf("gridslicer: %w", err)
}
