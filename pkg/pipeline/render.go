package pipeline

import (
	"bytes"
	"context"
	"strconv"

	"github.com/matzehuels/layerroute/pkg/errors"
	"github.com/matzehuels/layerroute/pkg/grid"
	"github.com/matzehuels/layerroute/pkg/render"
	"github.com/matzehuels/layerroute/pkg/route"
	"github.com/matzehuels/layerroute/pkg/route/ordering"
)

// Render generates output artifacts in the requested formats. The SVG is
// laid out at most once and reused for PNG and PDF. search feeds the chart
// format.
func Render(ctx context.Context, g *grid.Grid, out *route.Outcome, search ordering.Stats, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	var svg []byte
	svgOnce := func() ([]byte, error) {
		if svg != nil {
			return svg, nil
		}
		var err error
		svg, err = render.RenderSVG(ctx, render.ToDOT(g, out))
		return svg, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var (
			data []byte
			err  error
		)
		switch format {
		case FormatText:
			var buf bytes.Buffer
			err = render.WriteText(&buf, render.Project(g, out))
			data = buf.Bytes()
		case FormatJSON:
			var buf bytes.Buffer
			err = render.WriteJSON(&buf, out)
			data = buf.Bytes()
		case FormatDOT:
			data = []byte(render.ToDOT(g, out))
		case FormatSVG:
			data, err = svgOnce()
		case FormatPNG:
			if data, err = svgOnce(); err == nil {
				data, err = render.ToPNG(ctx, data, opts.Scale)
			}
		case FormatPDF:
			if data, err = svgOnce(); err == nil {
				data, err = render.ToPDF(ctx, data)
			}
		case FormatChart:
			var buf bytes.Buffer
			err = render.WriteSearchChart(&buf, "Net order search", search)
			data = buf.Bytes()
		default:
			err = ValidateFormat(format)
		}
		if err != nil {
			return nil, errors.Wrap(errors.GetCodeOr(err, errors.ErrCodeRenderFailed), err, "render %s", format)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func formatScale(scale float64) string {
	return strconv.FormatFloat(scale, 'f', 2, 64)
}
