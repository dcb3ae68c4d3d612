package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/celltower/pkg/pipeline"
	"github.com/matzehuels/celltower/pkg/server"
)

// defaultAddr is the listen address of the serve command.
const defaultAddr = "localhost:8080"

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		url       string
		operators string
		noCache   bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "serve [input|-]",
		Short: "Render every artifact once and serve it over HTTP",
		Long: `Render every artifact once and serve it over HTTP.

Routes:

  /                     interactive map
  /celltowers.json      interchange dataset
  /celltowers.geojson   GeoJSON
  /chart                zoomable scatter page
  /plot.png, /plot.svg  static plot
  /groups.svg           proximity groups
  /healthz              run summary

The server stops on interrupt.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkDeclutterFlags(cmd, opts); err != nil {
				return err
			}
			run := c.pipelineOptions()
			run.Formats = pipeline.AllFormats
			run.Lang, run.Title, run.SkipDeclutter = opts.Lang, opts.Title, opts.SkipDeclutter
			run.Tolerance, run.DownOffset, run.RightOffset = opts.Tolerance, opts.DownOffset, opts.RightOffset
			run.Operators = splitList(operators)
			if err := inputOptions(&run, args, url, cmd.InOrStdin()); err != nil {
				return err
			}
			return c.runServe(cmd, run, addr, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", defaultAddr, "listen address")
	cmd.Flags().StringVar(&url, "url", "", "download the OFCOM export from this URL")
	cmd.Flags().StringVar(&opts.Lang, "lang", "", "attribute language of the export: fr (default), en")
	cmd.Flags().StringVar(&opts.Title, "title", "", "map title")
	cmd.Flags().StringVar(&operators, "operators", "", "serve only these operators (comma-separated)")
	cmd.Flags().BoolVar(&opts.SkipDeclutter, "no-declutter", false, "keep sites at their input positions")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	addDeclutterFlags(cmd, &opts)

	return cmd
}

func (c *CLI) runServe(cmd *cobra.Command, opts pipeline.Options, addr string, noCache bool) error {
	ctx := cmd.Context()
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Rendering all formats...")
	spinner.Start()
	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	printSuccess("Serving %d sites", result.Dataset.Len())
	printStats(result.Declutter, result.CacheInfo.RenderHit)
	printKeyValue("map", StyleLink.Render("http://"+addr+"/"))
	printKeyValue("health", StyleLink.Render("http://"+addr+"/healthz"))

	c.Logger.Info("listening", "addr", addr, "run", result.RunID)
	if err := server.New(result, c.Logger).ListenAndServe(ctx, addr); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	c.Logger.Info("server stopped")
	return ctx.Err()
}
