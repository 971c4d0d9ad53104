package cli

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/specialistvlad/gridslicer/internal/app"
	"github.com/specialistvlad/gridslicer/internal/config"
	"github.com/specialistvlad/gridslicer/internal/watch"
)

// jobFlags binds the job settings. Flags left at their zero value do not
// override the job file or the environment.
type jobFlags struct {
	configPath string
	job        config.Job
}

func (f *jobFlags) bind(fs *pflag.FlagSet) {
	fs.StringVarP(&f.configPath, "config", "c", "", "Path to a .hcl or .yaml job file.")
	fs.StringVarP(&f.job.InputDir, "input", "i", "", "Directory holding the source grids (env "+config.EnvInputDir+").")
	fs.StringVarP(&f.job.OutputDir, "output", "o", "", "Directory receiving one sub-directory of tiles per source (env "+config.EnvOutputDir+").")
	fs.StringVar(&f.job.Extension, "extension", "", "Source grid file extension. (default \"asc\")")
	fs.IntVarP(&f.job.TileColumns, "tile-columns", "x", 0, "Maximum number of cells of a tile along X.")
	fs.IntVarP(&f.job.TileRows, "tile-rows", "y", 0, "Maximum number of cells of a tile along Y.")
	fs.StringVar(&f.job.LedgerPath, "ledger", "", "Broken-files ledger path. (default \"<input>/BROKEN FILES.txt\")")
	fs.StringVar(&f.job.Output.Kind, "output-kind", "", "Tile destination: 'local' or 's3'. (default \"local\")")
	fs.StringVar(&f.job.Output.S3.Bucket, "s3-bucket", "", "Bucket receiving the tiles when output-kind is s3.")
	fs.StringVar(&f.job.Output.S3.Prefix, "s3-prefix", "", "Key prefix for uploaded tiles.")
	fs.StringVar(&f.job.Output.S3.Region, "s3-region", "", "AWS region of the bucket.")
	fs.StringVar(&f.job.Output.S3.Endpoint, "s3-endpoint", "", "Custom S3 endpoint, e.g. a MinIO server.")
}

func (f *jobFlags) newApp(cmd *cobra.Command, g *globalFlags, debounce time.Duration) (*app.App, error) {
	cfg, err := g.appConfig()
	if err != nil {
		return nil, err
	}
	cfg.JobPath = f.configPath
	cfg.Flags = f.job
	cfg.WatchDebounce = debounce
	return app.NewApp(cmd.Context(), cmd.ErrOrStderr(), cfg)
}

func sliceCommand(g *globalFlags) *cobra.Command {
	f := &jobFlags{}

	cmd := &cobra.Command{
		Use:   "slice",
		Short: "Slice every grid of the input directory once",
		Example: `  gridslicer slice -i ./dem -o ./tiles -x 500 -y 500
  gridslicer slice -c job.hcl --log-format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := f.newApp(cmd, g, 0)
			if err != nil {
				return err
			}
			_, err = a.Run(cmd.Context())
			return err
		},
	}
	f.bind(cmd.Flags())
	return cmd
}

func watchCommand(g *globalFlags) *cobra.Command {
	f := &jobFlags{}
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Slice grids as they arrive in the input directory",
		Long: `Watch the input directory and slice each grid file once it has stopped
changing for the debounce interval. Runs until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := f.newApp(cmd, g, debounce)
			if err != nil {
				return err
			}
			return a.Watch(cmd.Context())
		},
	}
	f.bind(cmd.Flags())
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "Quiet time before a new file is sliced.")
	return cmd
}
