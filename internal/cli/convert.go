package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/celltower/pkg/celltower"
	"github.com/matzehuels/celltower/pkg/pipeline"
)

// convertCommand creates the convert command.
func (c *CLI) convertCommand() *cobra.Command {
	var (
		output  string
		url     string
		noCache bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "convert [export.json|-]",
		Short: "Convert an OFCOM export to the interchange dataset",
		Long: `Convert an OFCOM export to the interchange dataset.

The export is a GeoJSON FeatureCollection in LV95 (EPSG:2056). Every point is
projected to WGS84 and categorized: the operator is the first word of the
station name, the power descriptor becomes very-low, low, medium or high.

The input is a file, '-' for standard input, or --url to download it. The
dataset is written to standard output unless -o is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			run := c.pipelineOptions()
			run.Source = pipeline.SourceOFCOM
			run.Lang, run.Name, run.Refresh = opts.Lang, opts.Name, opts.Refresh
			if err := inputOptions(&run, args, url, cmd.InOrStdin()); err != nil {
				return err
			}
			return c.runConvert(cmd.Context(), run, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&url, "url", "", "download the export from this URL")
	cmd.Flags().StringVar(&opts.Lang, "lang", "", "attribute language: fr (default), en")
	cmd.Flags().StringVar(&opts.Name, "name", "", "dataset name (default: "+celltower.DefaultDatasetName+")")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "ignore cached downloads and conversions")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// runConvert converts the input and writes the dataset.
func (c *CLI) runConvert(ctx context.Context, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	d, cacheHit, err := runner.ConvertWithCacheInfo(ctx, opts)
	if err != nil {
		return fmt.Errorf("convert: %w", err)
	}
	prog.done(fmt.Sprintf("Converted %d sites", d.Len()))

	if output == "" || output == "-" {
		return celltower.WriteDataset(os.Stdout, d)
	}
	if err := celltower.WriteDatasetFile(d, output); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}

	printSuccess("Conversion complete")
	printFile(output)
	printDetail("%d sites · %d operators · %s", d.Len(), len(d.Operators()), cacheLabel(cacheHit))
	printNewline()
	printNextStep("Render", "celltower render "+output)
	return nil
}

func cacheLabel(hit bool) string {
	if hit {
		return iconCached
	}
	return iconFresh
}
