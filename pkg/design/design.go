// Package design reads and writes routing problems as TOML design files.
//
// A design bundles everything one routing session needs: the grid (costs
// and via topology), the nets, and the router settings. Files look like:
//
//	name = "demo"
//
//	[grid]
//	layers = 2
//	rows = 6
//	cols = 6
//	default_cost = 1
//
//	[vias]
//	kind = "stacked"     # none | all | stacked | layer
//	at = [[1, 1], [4, 3]] # stacked: [row, col]; layer: [row, col, lower]
//
//	[router]
//	via_cost = 20
//	strategy = "auto"
//
//	[[nets]]
//	id = "A"
//	start = [0, 0, 0]  # [x, y, layer]
//	target = [5, 5, 1]
//
// The same structure is accepted as JSON by the HTTP API.
package design

import (
	"time"

	"github.com/matzehuels/layerroute/pkg/errors"
	"github.com/matzehuels/layerroute/pkg/grid"
	"github.com/matzehuels/layerroute/pkg/route"
	"github.com/matzehuels/layerroute/pkg/route/ordering"
	"github.com/matzehuels/layerroute/pkg/route/pathfind"
)

// Design is a complete routing problem.
type Design struct {
	Name   string     `toml:"name,omitempty" json:"name,omitempty"`
	Grid   GridSpec   `toml:"grid" json:"grid"`
	Vias   ViaSpec    `toml:"vias" json:"vias"`
	Router RouterSpec `toml:"router" json:"router"`
	Nets   []NetSpec  `toml:"nets" json:"nets"`
}

// GridSpec describes the cost table. Either Costs is given, indexed
// [layer][row][col], or every cell costs DefaultCost (1 when unset).
type GridSpec struct {
	Layers      int       `toml:"layers" json:"layers"`
	Rows        int       `toml:"rows" json:"rows"`
	Cols        int       `toml:"cols" json:"cols"`
	DefaultCost int       `toml:"default_cost,omitempty" json:"default_cost,omitempty"`
	Costs       [][][]int `toml:"costs,omitempty" json:"costs,omitempty"`
}

// ViaSpec describes the via topology.
type ViaSpec struct {
	Kind grid.ViaKind `toml:"kind,omitempty" json:"kind,omitempty"`
	At   [][]int      `toml:"at,omitempty" json:"at,omitempty"`
}

// RouterSpec holds router and order-search settings. Unset fields take the
// package defaults.
type RouterSpec struct {
	ViaCost             *int     `toml:"via_cost,omitempty" json:"via_cost,omitempty"`
	TurnCost            int      `toml:"turn_cost,omitempty" json:"turn_cost,omitempty"`
	DisableVias         bool     `toml:"disable_vias,omitempty" json:"disable_vias,omitempty"`
	Policy              string   `toml:"policy,omitempty" json:"policy,omitempty"`
	CongestionIncrement int      `toml:"congestion_increment,omitempty" json:"congestion_increment,omitempty"`
	Strategy            string   `toml:"strategy,omitempty" json:"strategy,omitempty"`
	Timeout             Duration `toml:"timeout,omitempty" json:"timeout,omitempty"`
	Workers             int      `toml:"workers,omitempty" json:"workers,omitempty"`
	Limit               int      `toml:"limit,omitempty" json:"limit,omitempty"`
	MaxNets             int      `toml:"max_nets,omitempty" json:"max_nets,omitempty"`
}

// NetSpec is a net with [x, y, layer] endpoints.
type NetSpec struct {
	ID     string `toml:"id" json:"id"`
	Start  [3]int `toml:"start" json:"start"`
	Target [3]int `toml:"target" json:"target"`
}

// Duration is a time.Duration written as a string such as "1m30s".
type Duration time.Duration

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "invalid duration %q", b)
	}
	*d = Duration(v)
	return nil
}

// BuildGrid constructs the grid the design describes.
func (d *Design) BuildGrid() (*grid.Grid, error) {
	vias, err := d.viaTopology()
	if err != nil {
		return nil, err
	}
	gs := d.Grid
	if len(gs.Costs) == 0 {
		cost := gs.DefaultCost
		if cost == 0 {
			cost = 1
		}
		return grid.Uniform(gs.Layers, gs.Rows, gs.Cols, cost, vias)
	}

	g, err := grid.New(gs.Costs, vias)
	if err != nil {
		return nil, err
	}
	if (gs.Layers != 0 && gs.Layers != g.Layers()) ||
		(gs.Rows != 0 && gs.Rows != g.Rows()) ||
		(gs.Cols != 0 && gs.Cols != g.Cols()) {
		return nil, errors.New(errors.ErrCodeInvalidGrid,
			"grid dimensions %dx%dx%d do not match cost table %dx%dx%d",
			gs.Layers, gs.Rows, gs.Cols, g.Layers(), g.Rows(), g.Cols())
	}
	return g, nil
}

func (d *Design) dims() (layers, rows, cols int) {
	gs := d.Grid
	if len(gs.Costs) > 0 && len(gs.Costs[0]) > 0 {
		return len(gs.Costs), len(gs.Costs[0]), len(gs.Costs[0][0])
	}
	return gs.Layers, gs.Rows, gs.Cols
}

func (d *Design) viaTopology() (grid.ViaTopology, error) {
	layers, rows, cols := d.dims()
	vs := d.Vias

	switch vs.Kind {
	case "", grid.ViaKindNone:
		if len(vs.At) > 0 {
			return nil, errors.New(errors.ErrCodeInvalidInput, "via locations given but kind is %q", string(grid.ViaKindNone))
		}
		return grid.NoVias{}, nil
	case grid.ViaKindAll:
		return grid.AllVias{}, nil
	case grid.ViaKindStacked:
		v := grid.NewStackedVias(rows, cols)
		for i, at := range vs.At {
			if len(at) != 2 || !inRange(at[0], rows) || !inRange(at[1], cols) {
				return nil, errors.New(errors.ErrCodeInvalidCoordinate, "via %d: %v is not a [row, col] inside %dx%d", i, at, rows, cols)
			}
			v.Set(at[0], at[1])
		}
		return v, nil
	case grid.ViaKindLayer:
		v := grid.NewLayerVias(layers, rows, cols)
		for i, at := range vs.At {
			if len(at) != 3 || !inRange(at[0], rows) || !inRange(at[1], cols) || !inRange(at[2], layers-1) {
				return nil, errors.New(errors.ErrCodeInvalidCoordinate, "via %d: %v is not a [row, col, lower] inside %dx%dx%d", i, at, layers, rows, cols)
			}
			v.Set(at[0], at[1], at[2])
		}
		return v, nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown via kind %q (must be none, all, stacked or layer)", string(vs.Kind))
	}
}

func inRange(v, n int) bool { return v >= 0 && v < n }

// RouteNets converts the net specs.
func (d *Design) RouteNets() []route.Net {
	nets := make([]route.Net, len(d.Nets))
	for i, n := range d.Nets {
		nets[i] = route.Net{
			ID:     n.ID,
			Start:  grid.Pt(n.Start[0], n.Start[1], n.Start[2]),
			Target: grid.Pt(n.Target[0], n.Target[1], n.Target[2]),
		}
	}
	return nets
}

// FinderConfig returns the path search settings.
func (d *Design) FinderConfig() pathfind.Config {
	cfg := pathfind.DefaultConfig()
	if d.Router.ViaCost != nil {
		cfg.ViaCost = *d.Router.ViaCost
	}
	cfg.TurnCost = d.Router.TurnCost
	cfg.Vias = !d.Router.DisableVias
	return cfg
}

// Policy returns the occupancy policy.
func (d *Design) Policy() grid.Policy {
	return grid.Policy{Kind: grid.PolicyKind(d.Router.Policy), Increment: d.Router.CongestionIncrement}
}

// Strategy returns the order search strategy.
func (d *Design) Strategy() (ordering.Strategy, error) {
	return ordering.ParseStrategy(d.Router.Strategy)
}

// Validate checks the whole design: name, grid, vias, router settings and
// net IDs. Nets with an endpoint outside the grid are accepted; the router
// skips them with INVALID_COORDINATE and routes the rest (see OutsideNets).
func (d *Design) Validate() error {
	if err := errors.ValidateDesignName(d.Name); err != nil {
		return err
	}
	if _, err := d.BuildGrid(); err != nil {
		return err
	}
	if err := d.FinderConfig().Validate(); err != nil {
		return err
	}
	if _, err := d.Policy().Normalize(); err != nil {
		return err
	}
	if _, err := d.Strategy(); err != nil {
		return err
	}
	r := d.Router
	if r.Timeout < 0 || r.Workers < 0 || r.Limit < 0 || r.MaxNets < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "router timeout, workers, limit and max_nets must be >= 0")
	}

	ids := make([]string, len(d.Nets))
	for i, n := range d.Nets {
		ids[i] = n.ID
	}
	return errors.ValidateUniqueNetIDs(ids)
}

// OutsideNets returns the nets with an endpoint outside the grid, in input
// order. It returns nil when the grid itself is invalid.
func (d *Design) OutsideNets() []route.Net {
	g, err := d.BuildGrid()
	if err != nil {
		return nil
	}
	var out []route.Net
	for _, n := range d.RouteNets() {
		if !g.Contains(n.Start) || !g.Contains(n.Target) {
			out = append(out, n)
		}
	}
	return out
}

// FromProblem builds a design for an existing grid and net list, as written
// by the generate command. Costs are always spelled out.
func FromProblem(name string, g *grid.Grid, nets []route.Net) *Design {
	d := &Design{
		Name: name,
		Grid: GridSpec{
			Layers: g.Layers(),
			Rows:   g.Rows(),
			Cols:   g.Cols(),
			Costs:  g.Table(),
		},
		Vias: viaSpecOf(g),
		Nets: make([]NetSpec, len(nets)),
	}
	for i, n := range nets {
		d.Nets[i] = NetSpec{
			ID:     n.ID,
			Start:  [3]int{n.Start.X, n.Start.Y, n.Start.Layer},
			Target: [3]int{n.Target.X, n.Target.Y, n.Target.Layer},
		}
	}
	return d
}

func viaSpecOf(g *grid.Grid) ViaSpec {
	switch v := g.Vias().(type) {
	case grid.NoVias:
		return ViaSpec{Kind: grid.ViaKindNone}
	case grid.AllVias:
		return ViaSpec{Kind: grid.ViaKindAll}
	case *grid.StackedVias:
		spec := ViaSpec{Kind: grid.ViaKindStacked}
		for row := range g.Rows() {
			for col := range g.Cols() {
				if v.Has(row, col) {
					spec.At = append(spec.At, []int{row, col})
				}
			}
		}
		return spec
	default:
		spec := ViaSpec{Kind: grid.ViaKindLayer}
		for row := range g.Rows() {
			for col := range g.Cols() {
				for lower := 0; lower < g.Layers()-1; lower++ {
					if v.Allows(row, col, lower) {
						spec.At = append(spec.At, []int{row, col, lower})
					}
				}
			}
		}
		return spec
	}
}
