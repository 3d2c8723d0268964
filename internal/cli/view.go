package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/layerroute/pkg/design"
	"github.com/matzehuels/layerroute/pkg/pipeline"
	"github.com/matzehuels/layerroute/pkg/render"
)

// viewCommand creates the view command, an interactive browser for the
// routed layers.
func (c *CLI) viewCommand() *cobra.Command {
	opts := routeOpts{formats: []string{pipeline.FormatText}}
	var plain bool

	cmd := &cobra.Command{
		Use:   "view <design.toml>",
		Short: "Route a design and browse the layers interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runView(cmd.Context(), args[0], &opts, plain)
		},
	}

	opts.addSearchFlags(cmd)
	cmd.Flags().BoolVar(&plain, "plain", false, "print every layer in colour and exit")

	return cmd
}

func (c *CLI) runView(ctx context.Context, input string, opts *routeOpts, plain bool) error {
	d, err := design.Load(input)
	if err != nil {
		return err
	}
	res, err := c.execute(ctx, d, opts)
	if err != nil {
		return err
	}

	model := NewLayerViewModel(displayName(d, input), res.Grid,
		render.Project(res.Grid, res.Outcome), render.NewReport(res.Outcome))

	if plain {
		w := c.stdout()
		for layer := range res.Grid.Layers() {
			fmt.Fprintln(w, StyleTitle.Render(fmt.Sprintf("Layer %d:", layer)))
			fmt.Fprintln(w, styledLayer(model.Layout, model.Grid, layer, -1))
		}
		fmt.Fprintln(w, model.netTable())
		return nil
	}

	_, err = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
