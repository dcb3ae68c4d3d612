package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/celltower/pkg/celltower"
	apperrors "github.com/matzehuels/celltower/pkg/errors"
	"github.com/matzehuels/celltower/pkg/pipeline"
)

// declutterCommand creates the declutter command.
func (c *CLI) declutterCommand() *cobra.Command {
	var (
		output    string
		operators string
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "declutter [dataset.json|-]",
		Short: "Nudge overlapping sites of a dataset apart",
		Long: `Nudge overlapping sites of a dataset apart.

Sites are processed in file order. A site closer than --tolerance degrees to
an earlier anchor is moved down or right, alternating per anchor; all other
sites become anchors themselves. The dataset is written back with the
adjusted coordinates.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkDeclutterFlags(cmd, opts); err != nil {
				return err
			}
			run := c.pipelineOptions()
			run.Source = pipeline.SourceDataset
			run.Tolerance, run.DownOffset, run.RightOffset = opts.Tolerance, opts.DownOffset, opts.RightOffset
			run.Operators = splitList(operators)
			if err := inputOptions(&run, args, "", cmd.InOrStdin()); err != nil {
				return err
			}
			return c.runDeclutter(cmd.Context(), run, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&operators, "operators", "", "keep only these operators (comma-separated)")
	addDeclutterFlags(cmd, &opts)

	return cmd
}

// addDeclutterFlags registers the flags overriding [declutter] in the config file.
func addDeclutterFlags(cmd *cobra.Command, opts *pipeline.Options) {
	cmd.Flags().Float64Var(&opts.Tolerance, "tolerance", 0, "proximity threshold in degrees (default 0.001)")
	cmd.Flags().Float64Var(&opts.DownOffset, "down", 0, "latitude offset of a down nudge (default -0.0002)")
	cmd.Flags().Float64Var(&opts.RightOffset, "right", 0, "longitude offset of a right nudge (default 0.0002)")
}

// checkDeclutterFlags rejects an explicit --tolerance of zero, which the
// options would otherwise read as "use the default", and invalid values.
func checkDeclutterFlags(cmd *cobra.Command, opts pipeline.Options) error {
	if cmd.Flags().Changed("tolerance") && opts.Tolerance == 0 {
		return apperrors.New(apperrors.ErrCodeInvalidInput, "--tolerance must be positive")
	}
	return opts.ValidateForDeclutter()
}

// runDeclutter loads the dataset, declutters it and writes it back.
func (c *CLI) runDeclutter(ctx context.Context, opts pipeline.Options, output string) error {
	if err := opts.ValidateForDeclutter(); err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, true)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	d, err := runner.Convert(ctx, opts)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}
	if len(opts.Operators) > 0 {
		d = d.FilterOperators(opts.Operators)
	}

	prog := newProgress(c.Logger)
	out, _, stats := runner.Declutter(ctx, d, opts)
	prog.done(fmt.Sprintf("Decluttered %d sites", out.Len()))
	c.Logger.Debug("declutter stats",
		"anchors", stats.Anchors,
		"down", stats.ShiftedDown,
		"right", stats.ShiftedRight,
		"unshifted", stats.Unshifted,
		"max_group", stats.MaxGroupSize,
		"max_move_m", fmt.Sprintf("%.1f", stats.MaxDisplacementMeters))

	if output == "" || output == "-" {
		return celltower.WriteDataset(os.Stdout, out)
	}
	if err := celltower.WriteDatasetFile(out, output); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}

	printSuccess("Declutter complete")
	printFile(output)
	printStats(stats, false)
	return nil
}

// splitList splits a comma-separated flag, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
