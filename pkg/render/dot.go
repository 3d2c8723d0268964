package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/layerroute/pkg/errors"
	"github.com/matzehuels/layerroute/pkg/grid"
	"github.com/matzehuels/layerroute/pkg/route"
	"github.com/matzehuels/layerroute/pkg/route/pathfind"
)

// cellSize is the spacing between cell centres, in inches.
const cellSize = 0.5

var palette = []string{
	"#4e79a7", "#f28e2b", "#e15759", "#76b7b2", "#59a14f", "#edc948",
	"#b07aa1", "#ff9da7", "#9c755f", "#bab0ac", "#86bcb6", "#d37295",
}

// NetColor returns the fill colour for the net at input position index.
func NetColor(index int) string {
	return palette[index%len(palette)]
}

// ToDOT converts a routed grid to Graphviz DOT. Every cell is a pinned box
// labelled with its base cost; layers are laid out left to right. Routed
// cells take their net's colour, and path segments become edges (dashed
// for vias). Render it with [RenderSVG], which uses the neato engine so
// the pinned positions hold.
func ToDOT(g *grid.Grid, out *route.Outcome) string {
	owner := make([]int, g.Size())
	for i := range owner {
		owner[i] = -1
	}
	layout := Project(g, out)

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  splines=false;\n")
	buf.WriteString("  node [shape=box, style=filled, fillcolor=white, fixedsize=true, width=0.42, height=0.42, fontsize=10];\n")
	buf.WriteString("\n")

	if out != nil {
		for _, res := range out.Results {
			for _, p := range res.Path {
				if g.Contains(p) {
					owner[g.Index(p)] = res.Index
				}
			}
		}
	}

	for layer := range g.Layers() {
		x, y := panelOrigin(g, layer)
		fmt.Fprintf(&buf, "  \"title%d\" [shape=plaintext, style=\"\", fixedsize=false, fontsize=14, label=\"Layer %d\", pos=\"%.2f,%.2f!\"];\n",
			layer, layer, x+float64(g.Cols()-1)*cellSize/2, y+cellSize)

		for row := range g.Rows() {
			for col := range g.Cols() {
				p := grid.Pt(col, row, layer)
				fmt.Fprintf(&buf, "  %q [%s];\n", nodeID(p), cellAttrs(g, layout, owner, p))
			}
		}
	}

	if out != nil {
		buf.WriteString("\n")
		for _, res := range out.Results {
			if !res.Routed {
				continue
			}
			color := NetColor(res.Index)
			for i := 1; i < len(res.Path); i++ {
				a, b := res.Path[i-1], res.Path[i]
				style := "solid"
				if pathfind.IsViaStep(a, b) {
					style = "dashed"
				}
				fmt.Fprintf(&buf, "  %q -- %q [color=%q, penwidth=3, style=%s];\n", nodeID(a), nodeID(b), color, style)
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func panelOrigin(g *grid.Grid, layer int) (float64, float64) {
	return float64(layer*(g.Cols()+1)) * cellSize, 0
}

func nodeID(p grid.Point) string {
	return fmt.Sprintf("c%d_%d_%d", p.Layer, p.Y, p.X)
}

func cellAttrs(g *grid.Grid, layout *Layout, owner []int, p grid.Point) string {
	ox, oy := panelOrigin(g, p.Layer)
	attrs := fmt.Sprintf("label=\"%d\", pos=\"%.2f,%.2f!\"",
		g.CostAt(p), ox+float64(p.X)*cellSize, oy-float64(p.Y)*cellSize)

	switch sym := layout.At(p); {
	case sym == FreeMarker:
	case sym == ViaMarker:
		attrs += fmt.Sprintf(", fillcolor=%q, penwidth=3, shape=doublecircle", NetColor(owner[g.Index(p)]))
	default:
		attrs += fmt.Sprintf(", fillcolor=%q, fontcolor=white", NetColor(owner[g.Index(p)]))
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz with the neato engine.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "init graphviz")
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "render")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
