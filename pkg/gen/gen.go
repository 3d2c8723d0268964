// Package gen builds random grids and netlists from an explicit seed.
//
// A Generator owns its random source; nothing here touches process-wide
// random state, so the same seed and settings always produce the same
// output. Costs, vias and nets are drawn from independent streams derived
// from the seed: changing the net count never changes the generated costs.
package gen

import (
	"math/rand/v2"
	"strconv"

	"github.com/matzehuels/layerroute/pkg/errors"
	"github.com/matzehuels/layerroute/pkg/grid"
	"github.com/matzehuels/layerroute/pkg/route"
)

// Defaults for zero-valued Generator fields.
const (
	DefaultMinCost    = 1
	DefaultMaxCost    = 9
	DefaultViaDensity = 0.1
)

// Generator draws random routing problems.
type Generator struct {
	Seed uint64

	// MinCost and MaxCost bound cell costs, inclusive. MinCost is raised to 1.
	MinCost int
	MaxCost int

	// ViaDensity is the fraction of planar locations that get a stacked via.
	// Zero selects DefaultViaDensity; a negative value places none.
	ViaDensity float64

	// ExclusiveTerminals forbids two nets from sharing an endpoint.
	ExclusiveTerminals bool
}

// stream ids keep the draws for each artifact independent.
const (
	streamCosts uint64 = iota + 1
	streamVias
	streamNets
	streamBatch
)

func (g Generator) rng(stream uint64) *rand.Rand {
	return rand.New(rand.NewPCG(g.Seed, g.Seed^(stream*0x9e3779b97f4a7c15)))
}

func (g Generator) costRange() (lo, hi int) {
	lo, hi = g.MinCost, g.MaxCost
	if lo == 0 && hi == 0 {
		lo, hi = DefaultMinCost, DefaultMaxCost
	}
	lo = max(lo, 1)
	hi = max(hi, lo)
	return lo, hi
}

// Costs returns a [layer][row][col] table with every cost in
// [MinCost, MaxCost].
func (g Generator) Costs(layers, rows, cols int) [][][]int {
	r := g.rng(streamCosts)
	lo, hi := g.costRange()

	table := make([][][]int, layers)
	for l := range table {
		table[l] = make([][]int, rows)
		for y := range table[l] {
			table[l][y] = make([]int, cols)
			for x := range table[l][y] {
				table[l][y][x] = lo + r.IntN(hi-lo+1)
			}
		}
	}
	return table
}

// Vias places stacked vias at roughly ViaDensity of the planar locations.
func (g Generator) Vias(rows, cols int) *grid.StackedVias {
	r := g.rng(streamVias)
	density := g.ViaDensity
	if density == 0 {
		density = DefaultViaDensity
	}
	density = min(max(density, 0), 1)

	v := grid.NewStackedVias(rows, cols)
	for y := range rows {
		for x := range cols {
			if r.Float64() < density {
				v.Set(y, x)
			}
		}
	}
	return v
}

// Grid combines Costs and Vias into a grid.
func (g Generator) Grid(layers, rows, cols int) (*grid.Grid, error) {
	return grid.New(g.Costs(layers, rows, cols), g.Vias(rows, cols))
}

// maxDraws bounds the rejection sampling in Nets.
const maxDraws = 10000

// Nets draws n nets inside gr. Each net has distinct endpoints, and no two
// nets connect the same pair of points in either direction. Nets are named
// A, B, C, ... then N27, N28, ... past Z.
//
// Nets fails with INVALID_INPUT when the grid is too small to hold n such
// nets.
func (g Generator) Nets(gr *grid.Grid, n int) ([]route.Net, error) {
	if n < 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "net count must be >= 0, got %d", n)
	}
	if gr.Size() < 2 {
		if n == 0 {
			return nil, nil
		}
		return nil, errors.New(errors.ErrCodeInvalidInput, "grid has %d cells, need at least 2 for a net", gr.Size())
	}
	r := g.rng(streamNets)

	type pair struct{ a, b grid.Point }
	usedPairs := make(map[pair]bool)
	usedPoints := make(map[grid.Point]bool)
	terminal := func() grid.Point {
		return gr.Point(r.IntN(gr.Size()))
	}

	nets := make([]route.Net, 0, n)
	for i := range n {
		placed := false
		for range maxDraws {
			src, dst := terminal(), terminal()
			if src == dst || usedPairs[pair{src, dst}] || usedPairs[pair{dst, src}] {
				continue
			}
			if g.ExclusiveTerminals && (usedPoints[src] || usedPoints[dst]) {
				continue
			}
			usedPairs[pair{src, dst}] = true
			usedPoints[src], usedPoints[dst] = true, true
			nets = append(nets, route.Net{ID: NetName(i), Start: src, Target: dst})
			placed = true
			break
		}
		if !placed {
			return nil, errors.New(errors.ErrCodeInvalidInput, "could not place net %d of %d on a %dx%dx%d grid",
				i+1, n, gr.Layers(), gr.Rows(), gr.Cols())
		}
	}
	return nets, nil
}

// NetName returns the generated name of the i-th net.
func NetName(i int) string {
	if i < 26 {
		return string(rune('A' + i))
	}
	return "N" + strconv.Itoa(i+1)
}
