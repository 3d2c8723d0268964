package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/layerroute/pkg/design"
	"github.com/matzehuels/layerroute/pkg/gen"
)

// generateOpts holds the command-line flags for the generate command.
type generateOpts struct {
	layers, rows, cols int
	nets               int
	name               string
	output             string
	gen                gen.Generator

	batch            int
	minNets, maxNets int
	batchDir         string
}

// generateCommand creates the generate command, which writes a random
// design. The same seed and flags always produce the same file.
func (c *CLI) generateCommand() *cobra.Command {
	opts := generateOpts{layers: 2, rows: 8, cols: 8, nets: 4, minNets: 6, maxNets: 10}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a random routing design",
		Long: `Write a random routing design.

With --batch N, draw N netlists on one grid instead and write per-net
features (Manhattan distance, layer span, dominant direction, endpoints)
as CSV for training order models. --batch-dir also saves every netlist as
a design file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.batch > 0 {
				return c.runGenerateBatch(cmd.Context(), &opts)
			}
			return c.runGenerate(cmd.Context(), &opts)
		},
	}

	cmd.Flags().IntVar(&opts.layers, "layers", opts.layers, "number of layers")
	cmd.Flags().IntVar(&opts.rows, "rows", opts.rows, "rows per layer")
	cmd.Flags().IntVar(&opts.cols, "cols", opts.cols, "columns per layer")
	cmd.Flags().IntVarP(&opts.nets, "nets", "n", opts.nets, "number of nets")
	cmd.Flags().Uint64Var(&opts.gen.Seed, "seed", 1, "random seed")
	cmd.Flags().IntVar(&opts.gen.MinCost, "min-cost", gen.DefaultMinCost, "lowest cell cost")
	cmd.Flags().IntVar(&opts.gen.MaxCost, "max-cost", gen.DefaultMaxCost, "highest cell cost")
	cmd.Flags().Float64Var(&opts.gen.ViaDensity, "via-density", gen.DefaultViaDensity, "fraction of locations with a via (negative for none)")
	cmd.Flags().BoolVar(&opts.gen.ExclusiveTerminals, "exclusive", false, "never let two nets share an endpoint")
	cmd.Flags().StringVar(&opts.name, "name", "", "design name (default random-<seed>)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().IntVar(&opts.batch, "batch", 0, "draw this many netlists and write their net features as CSV")
	cmd.Flags().IntVar(&opts.minNets, "batch-min-nets", opts.minNets, "fewest nets per batch netlist")
	cmd.Flags().IntVar(&opts.maxNets, "batch-max-nets", opts.maxNets, "most nets per batch netlist")
	cmd.Flags().StringVar(&opts.batchDir, "batch-dir", "", "also save each batch netlist as a design in this directory")

	return cmd
}

func (c *CLI) runGenerate(ctx context.Context, opts *generateOpts) error {
	logger := loggerFromContext(ctx)

	g, err := opts.gen.Grid(opts.layers, opts.rows, opts.cols)
	if err != nil {
		return err
	}
	nets, err := opts.gen.Nets(g, opts.nets)
	if err != nil {
		return err
	}

	d := design.FromProblem(opts.designName(), g, nets)
	logger.Debugf("Generated %dx%dx%d grid with %d nets (seed %d)", opts.layers, opts.rows, opts.cols, len(nets), opts.gen.Seed)

	if opts.output == "" {
		return design.Encode(c.stdout(), d)
	}
	if err := design.Save(opts.output, d); err != nil {
		return err
	}
	printFile(c.logOut, opts.output)
	return nil
}

func (o *generateOpts) designName() string {
	if o.name != "" {
		return o.name
	}
	return fmt.Sprintf("random-%d", o.gen.Seed)
}

// runGenerateBatch writes the feature CSV for a batch of netlists sharing
// one grid.
func (c *CLI) runGenerateBatch(ctx context.Context, opts *generateOpts) error {
	logger := loggerFromContext(ctx)

	g, err := opts.gen.Grid(opts.layers, opts.rows, opts.cols)
	if err != nil {
		return err
	}
	netlists, err := opts.gen.Batch(g, opts.batch, opts.minNets, opts.maxNets)
	if err != nil {
		return err
	}
	logger.Infof("Generated %d netlists on a %dx%dx%d grid (seed %d)", len(netlists), opts.layers, opts.rows, opts.cols, opts.gen.Seed)

	if opts.batchDir != "" {
		if err := os.MkdirAll(opts.batchDir, 0o755); err != nil {
			return err
		}
		for i, nets := range netlists {
			name := fmt.Sprintf("%s-%d", opts.designName(), i)
			path := filepath.Join(opts.batchDir, name+".toml")
			if err := design.Save(path, design.FromProblem(name, g, nets)); err != nil {
				return err
			}
		}
		printFile(c.logOut, opts.batchDir)
	}

	if opts.output == "" {
		return gen.WriteFeatures(c.stdout(), netlists)
	}
	var buf bytes.Buffer
	if err := gen.WriteFeatures(&buf, netlists); err != nil {
		return err
	}
	if err := os.WriteFile(opts.output, buf.Bytes(), 0o644); err != nil {
		return err
	}
	printFile(c.logOut, opts.output)
	return nil
}
