package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/layerroute/pkg/design"
	"github.com/matzehuels/layerroute/pkg/pipeline"
	"github.com/matzehuels/layerroute/pkg/route/ordering"
)

// routeOpts holds the command-line flags shared by route and render.
type routeOpts struct {
	strategy string
	workers  int
	limit    int
	maxNets  int
	timeout  time.Duration
	formats  []string
	scale    float64
	output   string
	refresh  bool
	quiet    bool
}

// pipelineOptions converts the flags to pipeline options. Zero values defer
// to the design's [router] table.
func (o *routeOpts) pipelineOptions(c *CLI, progress ordering.ProgressFunc) pipeline.Options {
	return pipeline.Options{
		Strategy: o.strategy,
		Timeout:  o.timeout,
		Workers:  o.workers,
		Limit:    o.limit,
		MaxNets:  o.maxNets,
		Refresh:  o.refresh,
		Formats:  o.formats,
		Scale:    o.scale,
		Logger:   c.Logger,
		Progress: progress,
	}
}

// addSearchFlags registers the order-search flags.
func (o *routeOpts) addSearchFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.strategy, "strategy", "s", "", "order search: auto (default), exhaustive, heuristic, sequential")
	cmd.Flags().IntVarP(&o.workers, "workers", "w", defaultWorkers(), "parallel trials for the exhaustive search")
	cmd.Flags().IntVar(&o.limit, "limit", 0, "stop the exhaustive search after this many orders (0 = all)")
	cmd.Flags().IntVar(&o.maxNets, "max-nets", 0, "largest net count searched exhaustively by auto")
	cmd.Flags().DurationVar(&o.timeout, "timeout", 0, "stop the order search after this long and keep the best so far")
	cmd.Flags().BoolVar(&o.refresh, "refresh", false, "ignore cached outcomes")
}

// routeCommand creates the route command.
func (c *CLI) routeCommand() *cobra.Command {
	var formatsStr string
	opts := routeOpts{}

	cmd := &cobra.Command{
		Use:   "route <design.toml>",
		Short: "Route the nets of a design and print the layer layouts",
		Long: `Route loads a TOML design, searches net processing orders and prints the
best result. Text, JSON and DOT outputs go to stdout unless -o is given;
SVG, PNG and PDF are written next to the design.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr, pipeline.FormatText)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			return c.runRoute(cmd.Context(), args[0], &opts)
		},
	}

	opts.addSearchFlags(cmd)
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): "+strings.Join(pipeline.FormatNames(), ", ")+" (comma-separated)")
	cmd.Flags().Float64Var(&opts.scale, "scale", pipeline.DefaultScale, "PNG scale factor")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "skip the summary")

	return cmd
}

// runRoute loads input, routes it and writes the requested outputs.
func (c *CLI) runRoute(ctx context.Context, input string, opts *routeOpts) error {
	logger := loggerFromContext(ctx)

	d, err := design.Load(input)
	if err != nil {
		return err
	}
	logger.Infof("Loaded %s: %d nets", displayName(d, input), len(d.Nets))

	res, err := c.execute(ctx, d, opts)
	if err != nil {
		return err
	}
	if !opts.quiet {
		printOutcome(c.logOut, res)
	}
	return c.writeArtifacts(res.Artifacts, opts.formats, opts.output, input, true)
}

// execute runs the pipeline with a search reporter attached.
func (c *CLI) execute(ctx context.Context, d *design.Design, opts *routeOpts, watchers ...ordering.ProgressFunc) (*pipeline.Result, error) {
	runner := c.newRunner()
	defer runner.Close()

	reporter := newSearchReporter(loggerFromContext(ctx))
	progress := ordering.ProgressFunc(reporter.Progress)
	if len(watchers) > 0 {
		progress = func(explored, total, bestRouted, bestCost int) {
			reporter.Progress(explored, total, bestRouted, bestCost)
			for _, w := range watchers {
				w(explored, total, bestRouted, bestCost)
			}
		}
	}
	prog := newProgress(loggerFromContext(ctx))
	res, err := runner.Execute(ctx, d, opts.pipelineOptions(c, progress))
	if err != nil {
		return nil, err
	}
	reporter.Done(res.Search)
	prog.done(fmt.Sprintf("Routed %d/%d nets", res.Stats.Routed, res.Stats.Nets))
	return res, nil
}

// writeArtifacts stores each rendered format. Without an output path,
// drawings land next to input and text formats are printed when printText
// is set.
func (c *CLI) writeArtifacts(artifacts map[string][]byte, formats []string, output, input string, printText bool) error {
	for _, format := range formats {
		data := artifacts[format]
		var path string
		switch {
		case output != "" && len(formats) == 1:
			path = output
		case output != "":
			path = basePath(output, input) + "." + fileExt(format)
		case printText && isTextFormat(format):
			if _, err := c.stdout().Write(data); err != nil {
				return err
			}
			continue
		default:
			path = basePath("", input) + "." + fileExt(format)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return err
		}
		printFile(c.logOut, path)
	}
	return nil
}

func isTextFormat(format string) bool {
	switch format {
	case pipeline.FormatText, pipeline.FormatJSON, pipeline.FormatDOT:
		return true
	}
	return false
}

func fileExt(format string) string {
	switch format {
	case pipeline.FormatText:
		return "txt"
	case pipeline.FormatChart:
		return "html"
	}
	return format
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a format extension (.svg, .txt, etc.), it strips that extension.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := strings.TrimPrefix(filepath.Ext(output), ".")
	if ext == "txt" || ext == "html" || pipeline.ValidFormats[ext] {
		return strings.TrimSuffix(output, "."+ext)
	}
	return output
}

func displayName(d *design.Design, input string) string {
	if d.Name != "" {
		return d.Name
	}
	return filepath.Base(input)
}
