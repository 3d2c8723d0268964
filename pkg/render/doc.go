// Package render turns a routing outcome into something to look at.
//
// # Overview
//
// Rendering is a pure projection of a [grid.Grid] and a [route.Outcome]:
//
//   - [Project] builds a [Layout], one symbol per cell. Routed cells show
//     their net's marker (A, B, ... by input position, '*' past Z), cells
//     where a path changes layer show the via marker '#', and free cells
//     show '.'.
//   - [WriteText] prints a Layout as "Layer N:" blocks.
//   - [NewReport] and [WriteJSON] produce a machine-readable summary.
//   - [ToDOT] and [RenderSVG] draw the routed grid with Graphviz, one panel
//     per layer side by side.
//   - [WriteSearchChart] plots how the explored net orders scored.
//
// # Format Conversion
//
// [ToPDF] and [ToPNG] convert any SVG using the external rsvg-convert tool
// (from librsvg).
//
//	svg, err := render.RenderSVG(ctx, render.ToDOT(g, outcome))
//	png, err := render.ToPNG(ctx, svg, 2.0)  // 2x scale
package render
