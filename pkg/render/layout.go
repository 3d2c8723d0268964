package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/matzehuels/layerroute/pkg/grid"
	"github.com/matzehuels/layerroute/pkg/route"
)

// Layout symbols.
const (
	FreeMarker     = '.'
	ViaMarker      = '#'
	OverflowMarker = '*'
)

// NetMarker returns the symbol for the net at input position index.
func NetMarker(index int) rune {
	if index >= 0 && index < 26 {
		return rune('A' + index)
	}
	return OverflowMarker
}

// Layout is a symbolic picture of a routed grid.
type Layout struct {
	layers, rows, cols int
	cells              []rune
}

// Project draws out on g. Under a congestion policy several nets may share
// a cell; the net processed last wins, except that via cells always show
// the via marker.
func Project(g *grid.Grid, out *route.Outcome) *Layout {
	l := &Layout{
		layers: g.Layers(),
		rows:   g.Rows(),
		cols:   g.Cols(),
		cells:  make([]rune, g.Size()),
	}
	for i := range l.cells {
		l.cells[i] = FreeMarker
	}
	if out == nil {
		return l
	}

	vias := make([]bool, g.Size())
	for _, res := range out.Results {
		if !res.Routed {
			continue
		}
		marker := NetMarker(res.Index)
		for i, p := range res.Path {
			if !g.Contains(p) {
				continue
			}
			l.cells[g.Index(p)] = marker
			if i > 0 && res.Path[i-1].Layer != p.Layer {
				vias[g.Index(p)] = true
				vias[g.Index(res.Path[i-1])] = true
			}
		}
	}
	for i, v := range vias {
		if v {
			l.cells[i] = ViaMarker
		}
	}
	return l
}

// Layers returns the number of layers.
func (l *Layout) Layers() int { return l.layers }

// At returns the symbol at p.
func (l *Layout) At(p grid.Point) rune {
	return l.cells[(p.Layer*l.rows+p.Y)*l.cols+p.X]
}

// Rows returns the rows of one layer as strings, symbols separated by a
// space.
func (l *Layout) Rows(layer int) []string {
	out := make([]string, l.rows)
	var b strings.Builder
	for y := range l.rows {
		b.Reset()
		for x := range l.cols {
			if x > 0 {
				b.WriteByte(' ')
			}
			b.WriteRune(l.At(grid.Pt(x, y, layer)))
		}
		out[y] = b.String()
	}
	return out
}

// WriteText prints every layer as a "Layer N:" block.
func WriteText(w io.Writer, l *Layout) error {
	for layer := range l.layers {
		if layer > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "Layer %d:\n", layer); err != nil {
			return err
		}
		for _, row := range l.Rows(layer) {
			if _, err := fmt.Fprintln(w, row); err != nil {
				return err
			}
		}
	}
	return nil
}
