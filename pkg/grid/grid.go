package grid

import (
	"fmt"

	"github.com/matzehuels/layerroute/pkg/errors"
)

// Point is a cell coordinate: X is the column, Y the row.
type Point struct {
	X     int `json:"x"`
	Y     int `json:"y"`
	Layer int `json:"layer"`
}

// Pt is a short constructor for Point.
func Pt(x, y, layer int) Point { return Point{X: x, Y: y, Layer: layer} }

// String renders the point as "(x,y)[Ln]".
func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)[L%d]", p.X, p.Y, p.Layer)
}

// SamePlanar reports whether p and q share a (row, column) location.
func (p Point) SamePlanar(q Point) bool {
	return p.X == q.X && p.Y == q.Y
}

// Grid holds the immutable cost and via tables of a routing fabric.
// It is safe for concurrent readers.
type Grid struct {
	layers, rows, cols int
	costs              []int // dense, index (layer*rows+row)*cols+col
	vias               ViaTopology
}

// New builds a Grid from a [layer][row][col] cost table and a via topology.
// A nil topology is treated as [NoVias].
//
// New copies the table. It returns an INVALID_GRID error if the table is
// empty or ragged, or if any cost is below 1.
func New(costs [][][]int, vias ViaTopology) (*Grid, error) {
	if len(costs) == 0 || len(costs[0]) == 0 || len(costs[0][0]) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidGrid, "cost table must have at least one layer, row and column")
	}
	layers, rows, cols := len(costs), len(costs[0]), len(costs[0][0])

	g := &Grid{
		layers: layers,
		rows:   rows,
		cols:   cols,
		costs:  make([]int, 0, layers*rows*cols),
		vias:   vias,
	}
	if g.vias == nil {
		g.vias = NoVias{}
	}

	for l, layer := range costs {
		if len(layer) != rows {
			return nil, errors.New(errors.ErrCodeInvalidGrid, "layer %d has %d rows, want %d", l, len(layer), rows)
		}
		for r, row := range layer {
			if len(row) != cols {
				return nil, errors.New(errors.ErrCodeInvalidGrid, "layer %d row %d has %d columns, want %d", l, r, len(row), cols)
			}
			for c, cost := range row {
				if cost < 1 {
					return nil, errors.New(errors.ErrCodeInvalidGrid, "cost at layer %d row %d col %d is %d, must be >= 1", l, r, c, cost)
				}
				g.costs = append(g.costs, cost)
			}
		}
	}
	return g, nil
}

// Uniform builds a Grid where every cell costs cost.
func Uniform(layers, rows, cols, cost int, vias ViaTopology) (*Grid, error) {
	if layers <= 0 || rows <= 0 || cols <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidGrid, "dimensions must be positive, got %dx%dx%d", layers, rows, cols)
	}
	table := make([][][]int, layers)
	for l := range table {
		table[l] = make([][]int, rows)
		for r := range table[l] {
			row := make([]int, cols)
			for c := range row {
				row[c] = cost
			}
			table[l][r] = row
		}
	}
	return New(table, vias)
}

// Layers returns the number of layers.
func (g *Grid) Layers() int { return g.layers }

// Rows returns the number of rows per layer.
func (g *Grid) Rows() int { return g.rows }

// Cols returns the number of columns per layer.
func (g *Grid) Cols() int { return g.cols }

// Size returns the total number of cells across all layers.
func (g *Grid) Size() int { return len(g.costs) }

// Vias returns the grid's via topology.
func (g *Grid) Vias() ViaTopology { return g.vias }

// Contains reports whether p lies within the grid bounds.
func (g *Grid) Contains(p Point) bool {
	return p.Layer >= 0 && p.Layer < g.layers &&
		p.Y >= 0 && p.Y < g.rows &&
		p.X >= 0 && p.X < g.cols
}

// Validate returns an INVALID_COORDINATE error if p is outside the grid.
func (g *Grid) Validate(p Point) error {
	if p.Layer < 0 || p.Layer >= g.layers {
		return errors.New(errors.ErrCodeInvalidCoordinate, "%s references layer %d, grid has %d layers", p, p.Layer, g.layers)
	}
	if !g.Contains(p) {
		return errors.New(errors.ErrCodeInvalidCoordinate, "%s outside %dx%d grid", p, g.cols, g.rows)
	}
	return nil
}

// Index maps an in-bounds point to its dense cell index.
// The result is undefined for points outside the grid; call Validate first.
func (g *Grid) Index(p Point) int {
	return (p.Layer*g.rows+p.Y)*g.cols + p.X
}

// Point is the inverse of Index.
func (g *Grid) Point(i int) Point {
	c := i % g.cols
	i /= g.cols
	return Point{X: c, Y: i % g.rows, Layer: i / g.rows}
}

// Cost returns the base traversal cost of p.
func (g *Grid) Cost(p Point) (int, error) {
	if err := g.Validate(p); err != nil {
		return 0, err
	}
	return g.costs[g.Index(p)], nil
}

// CostAt returns the base cost of an in-bounds point without validation.
// Search loops use it after bounds have been checked once.
func (g *Grid) CostAt(p Point) int {
	return g.costs[g.Index(p)]
}

// ViaAvailable reports whether a layer transition between layerA and layerB
// is permitted at (row, col). Only adjacent, existing layers can be joined.
func (g *Grid) ViaAvailable(row, col, layerA, layerB int) bool {
	if row < 0 || row >= g.rows || col < 0 || col >= g.cols {
		return false
	}
	lower, upper := min(layerA, layerB), max(layerA, layerB)
	if upper-lower != 1 || lower < 0 || upper >= g.layers {
		return false
	}
	return g.vias.Allows(row, col, lower)
}

// Table returns a copy of the cost table as [layer][row][col].
func (g *Grid) Table() [][][]int {
	out := make([][][]int, g.layers)
	for l := range out {
		out[l] = make([][]int, g.rows)
		for r := range out[l] {
			start := (l*g.rows + r) * g.cols
			out[l][r] = append([]int(nil), g.costs[start:start+g.cols]...)
		}
	}
	return out
}

// WithCost returns a copy of g where the cell at p costs cost.
// The original grid is unchanged.
func (g *Grid) WithCost(p Point, cost int) (*Grid, error) {
	if err := g.Validate(p); err != nil {
		return nil, err
	}
	if cost < 1 {
		return nil, errors.New(errors.ErrCodeInvalidGrid, "cost at %s is %d, must be >= 1", p, cost)
	}
	out := *g
	out.costs = append([]int(nil), g.costs...)
	out.costs[g.Index(p)] = cost
	return &out, nil
}
