package route

import (
	"slices"

	"github.com/matzehuels/layerroute/pkg/grid"
)

// Net is one source-to-target connection request.
type Net struct {
	ID     string     `json:"id"`
	Start  grid.Point `json:"start"`
	Target grid.Point `json:"target"`
}

// Manhattan returns the planar distance between the net's endpoints.
func (n Net) Manhattan() int {
	return abs(n.Start.X-n.Target.X) + abs(n.Start.Y-n.Target.Y)
}

// LayerSpan returns the number of layers between the endpoints.
func (n Net) LayerSpan() int {
	return abs(n.Start.Layer - n.Target.Layer)
}

// NetResult is the outcome for a single net.
type NetResult struct {
	// Index is the net's position in the caller's input list.
	Index  int          `json:"index"`
	Net    Net          `json:"net"`
	Routed bool         `json:"routed"`
	Path   []grid.Point `json:"path,omitempty"`
	Cost   int          `json:"cost,omitempty"`
	// Err says why an unrouted net failed. It is nil for routed nets.
	Err error `json:"-"`
}

// Outcome is the result of routing a list of nets in one order.
type Outcome struct {
	// Order lists input indices in processing order.
	Order []int `json:"order"`
	// Results are in processing order.
	Results   []NetResult `json:"results"`
	Routed    int         `json:"routed"`
	TotalCost int         `json:"total_cost"`
}

// ByIndex returns the results sorted by input index.
func (o *Outcome) ByIndex() []NetResult {
	out := slices.Clone(o.Results)
	slices.SortFunc(out, func(a, b NetResult) int { return a.Index - b.Index })
	return out
}

// Unrouted returns the results of nets that could not be routed, in
// processing order.
func (o *Outcome) Unrouted() []NetResult {
	var out []NetResult
	for _, r := range o.Results {
		if !r.Routed {
			out = append(out, r)
		}
	}
	return out
}

// Complete reports whether every net was routed.
func (o *Outcome) Complete() bool { return o.Routed == len(o.Results) }

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
