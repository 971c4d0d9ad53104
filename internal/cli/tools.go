package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/specialistvlad/gridslicer/internal/tools/cleanup"
	"github.com/specialistvlad/gridslicer/internal/tools/features"
	"github.com/specialistvlad/gridslicer/internal/tools/finder"
	"github.com/specialistvlad/gridslicer/internal/tools/mover"
)

// required takes flag name and value pairs.
func required(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			return usageError(fmt.Errorf("--%s is required", pairs[i]))
		}
	}
	return nil
}

func cleanupCommand(g *globalFlags) *cobra.Command {
	var ledgerPath, outputDir string

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Remove the tiles of sources recorded in the broken-files ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := required("ledger", ledgerPath, "output", outputDir); err != nil {
				return err
			}
			ctx, err := g.loggerContext(cmd)
			if err != nil {
				return err
			}
			res, err := cleanup.Run(ctx, ledgerPath, outputDir)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d directories, %d already missing.\n", len(res.Removed), len(res.Missing))
			return nil
		},
	}
	cmd.Flags().StringVarP(&ledgerPath, "ledger", "l", "", "Path to the broken-files ledger.")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Tile output root the ledgered sources were sliced into.")
	return cmd
}

func findCommand(g *globalFlags) *cobra.Command {
	opts := finder.Options{}
	var reportDir, reportName string

	cmd := &cobra.Command{
		Use:     "find",
		Short:   "List grid files whose data contains a token",
		Example: `  gridslicer find -i ./dem --token -9999 --report-dir . --name nodata`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := required("input", opts.InputDir, "token", opts.Token, "report-dir", reportDir); err != nil {
				return err
			}
			ctx, err := g.loggerContext(cmd)
			if err != nil {
				return err
			}
			names, err := finder.Find(ctx, opts)
			if err != nil {
				return err
			}
			path, err := finder.WriteReport(reportDir, reportName, names)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d files listed in %s\n", len(names), path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&opts.InputDir, "input", "i", "", "Directory holding the grids to search.")
	cmd.Flags().StringVar(&opts.Extension, "extension", "asc", "Grid file extension.")
	cmd.Flags().StringVar(&opts.Token, "token", "", "Value to look for in the data rows.")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "Files scanned at once. 0 means one per CPU.")
	cmd.Flags().StringVar(&reportDir, "report-dir", "", "Directory receiving the report.")
	cmd.Flags().StringVar(&reportName, "name", "FOUND FILES", "Report file name without extension.")
	return cmd
}

func copyCommand(g *globalFlags) *cobra.Command {
	opts := mover.Options{}

	cmd := &cobra.Command{
		Use:   "copy",
		Short: "Copy the grid files of the map sheets listed in a text file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := required("input", opts.InputDir, "output", opts.OutputDir, "sheets", opts.SheetsPath); err != nil {
				return err
			}
			if opts.FieldIndex < 0 {
				return usageError(errors.New("--field must not be negative"))
			}
			ctx, err := g.loggerContext(cmd)
			if err != nil {
				return err
			}
			copied, err := mover.Copy(ctx, opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d files copied to %s\n", len(copied), opts.OutputDir)
			return nil
		},
	}
	cmd.Flags().StringVarP(&opts.InputDir, "input", "i", "", "Directory holding the grid files.")
	cmd.Flags().StringVarP(&opts.OutputDir, "output", "o", "", "Destination directory.")
	cmd.Flags().StringVar(&opts.SheetsPath, "sheets", "", "Text file with one sheet number per line.")
	cmd.Flags().IntVar(&opts.FieldIndex, "field", mover.DefaultFieldIndex, "Index of the sheet number among the '_'-separated name fields.")
	return cmd
}

func featuresCommand(g *globalFlags) *cobra.Command {
	opts := features.Options{}

	cmd := &cobra.Command{
		Use:   "features",
		Short: "Report the extent and shape of every tile under an output root",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := required("root", opts.Root, "report-dir", opts.ReportDir); err != nil {
				return err
			}
			switch opts.Format {
			case features.FormatText, features.FormatXLSX:
			default:
				return usageError(fmt.Errorf("invalid format %q: must be 'txt' or 'xlsx'", opts.Format))
			}
			ctx, err := g.loggerContext(cmd)
			if err != nil {
				return err
			}
			path, err := features.Record(ctx, opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Features written to %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.Root, "root", "", "Tile output root to scan.")
	cmd.Flags().StringVar(&opts.Extension, "extension", "asc", "Tile file extension.")
	cmd.Flags().StringVar(&opts.ReportDir, "report-dir", "", "Directory receiving the report.")
	cmd.Flags().StringVar(&opts.Format, "format", features.FormatText, "Report format: 'txt' or 'xlsx'.")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "Files read at once. 0 means one per CPU.")
	return cmd
}
