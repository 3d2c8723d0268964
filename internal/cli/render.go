package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/layerroute/pkg/design"
	"github.com/matzehuels/layerroute/pkg/errors"
	"github.com/matzehuels/layerroute/pkg/pipeline"
)

// drawingFormats are the formats the render command accepts.
var drawingFormats = map[string]bool{
	pipeline.FormatDOT: true,
	pipeline.FormatSVG: true,
	pipeline.FormatPNG: true,
	pipeline.FormatPDF: true,
}

// renderCommand creates the render command for writing routing drawings.
// PNG and PDF output needs rsvg-convert on PATH.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := routeOpts{}

	cmd := &cobra.Command{
		Use:   "render <design.toml>",
		Short: "Route a design and draw every layer to SVG, PNG or PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr, pipeline.FormatSVG)
			if err := validateDrawingFormats(opts.formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], &opts)
		},
	}

	opts.addSearchFlags(cmd)
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, dot (comma-separated)")
	cmd.Flags().Float64Var(&opts.scale, "scale", pipeline.DefaultScale, "PNG scale factor")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")

	return cmd
}

func validateDrawingFormats(formats []string) error {
	for _, f := range formats {
		if !drawingFormats[f] {
			return errors.New(errors.ErrCodeInvalidInput, "invalid format: %s (must be 'svg', 'png', 'pdf' or 'dot')", f)
		}
	}
	return nil
}

// runRender routes input and writes the drawings to files.
func (c *CLI) runRender(ctx context.Context, input string, opts *routeOpts) error {
	d, err := design.Load(input)
	if err != nil {
		return err
	}

	spinner := newSearchSpinner(ctx, c.logOut, fmt.Sprintf("Routing %s:", displayName(d, input)))
	spinner.Start()
	res, err := c.execute(ctx, d, opts, spinner.Progress)
	if err != nil {
		if spinner.Cancelled() {
			spinner.Stop()
			return err
		}
		spinner.StopWithError(errors.UserMessage(err))
		return err
	}
	spinner.StopWithSuccess(fmt.Sprintf("Routed %d/%d nets, total cost %d", res.Outcome.Routed, len(res.Outcome.Results), res.Outcome.TotalCost))

	return c.writeArtifacts(res.Artifacts, opts.formats, opts.output, input, false)
}
