package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/celltower/pkg/pipeline"
)

// defaultBase names outputs when the input has no file name.
const defaultBase = "celltowers"

// renderCommand creates the render command, the full pipeline in one step.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
		url        string
		operators  string
		noCache    bool
		pick       bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "render [input|-]",
		Short: "Render the antenna map and other artifacts",
		Long: `Render the antenna map and other artifacts.

The input is an OFCOM export or an interchange dataset; the kind is detected
from its content. Sites are decluttered in file order, then written in each
requested format:

  html     interactive Leaflet map, one layer per operator
  json     interchange dataset with adjusted coordinates
  geojson  FeatureCollection with placement details
  png,svg  static scatter plot
  chart    zoomable scatter page
  groups   diagram of the proximity groups

Use --pick to choose the operators interactively. Results are cached locally
for faster subsequent runs.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats := pipeline.DefaultFormats
			if formatsStr != "" {
				var err error
				if formats, err = pipeline.ParseFormats(formatsStr); err != nil {
					return err
				}
			}

			if err := checkDeclutterFlags(cmd, opts); err != nil {
				return err
			}
			run := c.pipelineOptions()
			run.Formats = formats
			run.Lang, run.Name, run.Refresh, run.Title = opts.Lang, opts.Name, opts.Refresh, opts.Title
			run.Tolerance, run.DownOffset, run.RightOffset = opts.Tolerance, opts.DownOffset, opts.RightOffset
			run.SkipDeclutter = opts.SkipDeclutter
			run.Operators = splitList(operators)
			if err := inputOptions(&run, args, url, cmd.InOrStdin()); err != nil {
				return err
			}
			return c.runRender(cmd, run, output, noCache, pick)
		},
	}

	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): html (default), json, geojson, png, svg, chart, groups, all (comma-separated)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVar(&url, "url", "", "download the OFCOM export from this URL")
	cmd.Flags().StringVar(&opts.Lang, "lang", "", "attribute language of the export: fr (default), en")
	cmd.Flags().StringVar(&opts.Name, "name", "", "dataset name")
	cmd.Flags().StringVar(&opts.Title, "title", "", "map title")
	cmd.Flags().StringVar(&operators, "operators", "", "render only these operators (comma-separated)")
	cmd.Flags().BoolVar(&pick, "pick", false, "choose the operators interactively")
	cmd.Flags().BoolVar(&opts.SkipDeclutter, "no-declutter", false, "keep sites at their input positions")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "ignore cached downloads and conversions")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	addDeclutterFlags(cmd, &opts)

	return cmd
}

// runRender executes the pipeline and writes every artifact.
func (c *CLI) runRender(cmd *cobra.Command, opts pipeline.Options, output string, noCache, pick bool) error {
	ctx := cmd.Context()
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	if pick {
		if !isTerminal(os.Stdin) || len(opts.Data) > 0 {
			return errors.New("--pick needs an interactive terminal on stdin")
		}
		d, err := runner.Convert(ctx, opts)
		if err != nil {
			return fmt.Errorf("convert: %w", err)
		}
		ops, err := pickOperators(ctx, d, c.Config, cmd.InOrStdin(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		opts.Operators = ops
		c.Logger.Debug("picked operators", "operators", ops)
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", strings.Join(opts.Formats, ", ")))
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	paths, err := writeArtifacts(result.Artifacts, opts.Formats, outputBase(output, opts), output)
	if err != nil {
		return err
	}

	printSuccess("Render complete")
	for _, p := range paths {
		printFile(p)
	}
	printStats(result.Declutter, result.CacheInfo.ConvertHit && result.CacheInfo.RenderHit)
	if len(opts.Operators) > 0 {
		printDetail("operators: %s", strings.Join(opts.Operators, ", "))
	}
	printNewline()
	if len(paths) > 0 {
		printNextStep("Serve", "celltower serve "+inputArg(opts))
	}
	return nil
}

// writeArtifacts writes one file per format. A single format is written to
// output as given; otherwise files are named base + extension.
func writeArtifacts(artifacts map[string][]byte, formats []string, base, output string) ([]string, error) {
	var paths []string
	for _, format := range formats {
		data, ok := artifacts[format]
		if !ok {
			continue
		}
		path := base + pipeline.Extension(format)
		if len(formats) == 1 && output != "" {
			path = output
		}
		if err := writeFile(path, data); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		if path != "-" {
			paths = append(paths, path)
		}
	}
	return paths, nil
}

// outputExtensions lists artifact suffixes, compound ones first.
var outputExtensions = []string{".chart.html", ".groups.svg", ".geojson", ".html", ".json", ".png", ".svg"}

// outputBase derives the base output path from -o or the input.
// Known format extensions are stripped from -o.
func outputBase(output string, opts pipeline.Options) string {
	if output != "" {
		for _, ext := range outputExtensions {
			if strings.HasSuffix(output, ext) {
				return strings.TrimSuffix(output, ext)
			}
		}
		return output
	}
	if opts.Input != "" {
		base := filepath.Base(opts.Input)
		return strings.TrimSuffix(base, filepath.Ext(base))
	}
	if opts.Name != "" {
		return opts.Name
	}
	return defaultBase
}

func inputArg(opts pipeline.Options) string {
	switch {
	case opts.Input != "":
		return opts.Input
	case opts.URL != "":
		return "--url " + opts.URL
	default:
		return "-"
	}
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}
