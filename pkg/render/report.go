package render

import (
	"encoding/json"
	"io"

	"github.com/matzehuels/layerroute/pkg/errors"
	"github.com/matzehuels/layerroute/pkg/grid"
	"github.com/matzehuels/layerroute/pkg/route"
	"github.com/matzehuels/layerroute/pkg/route/pathfind"
)

// Report is the JSON view of an outcome.
type Report struct {
	Routed    int         `json:"routed"`
	Nets      int         `json:"nets"`
	TotalCost int         `json:"total_cost"`
	Order     []string    `json:"order"`
	Results   []NetReport `json:"results"`
}

// NetReport describes one net. Results are listed in input order.
type NetReport struct {
	ID     string       `json:"id"`
	Marker string       `json:"marker"`
	Routed bool         `json:"routed"`
	Cost   int          `json:"cost,omitempty"`
	Vias   int          `json:"vias,omitempty"`
	Path   []grid.Point `json:"path,omitempty"`
	Error  string       `json:"error,omitempty"`
	Code   errors.Code  `json:"code,omitempty"`
}

// NewReport summarizes out.
func NewReport(out *route.Outcome) *Report {
	r := &Report{
		Routed:    out.Routed,
		Nets:      len(out.Results),
		TotalCost: out.TotalCost,
		Order:     make([]string, 0, len(out.Results)),
		Results:   make([]NetReport, 0, len(out.Results)),
	}
	for _, res := range out.Results {
		r.Order = append(r.Order, res.Net.ID)
	}
	for _, res := range out.ByIndex() {
		nr := NetReport{
			ID:     res.Net.ID,
			Marker: string(NetMarker(res.Index)),
			Routed: res.Routed,
			Cost:   res.Cost,
			Path:   res.Path,
			Vias:   countVias(res.Path),
		}
		if res.Err != nil {
			nr.Error = errors.UserMessage(res.Err)
			nr.Code = errors.GetCode(res.Err)
		}
		r.Results = append(r.Results, nr)
	}
	return r
}

func countVias(path []grid.Point) int {
	n := 0
	for i := 1; i < len(path); i++ {
		if pathfind.IsViaStep(path[i-1], path[i]) {
			n++
		}
	}
	return n
}

// WriteJSON writes the report for out as indented JSON.
func WriteJSON(w io.Writer, out *route.Outcome) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewReport(out))
}
