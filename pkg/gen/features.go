package gen

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/matzehuels/layerroute/pkg/errors"
	"github.com/matzehuels/layerroute/pkg/grid"
	"github.com/matzehuels/layerroute/pkg/route"
)

// Batch draws count netlists on gr, each with between minNets and maxNets
// nets inclusive. Netlist i depends only on the seed and i.
func (g Generator) Batch(gr *grid.Grid, count, minNets, maxNets int) ([][]route.Net, error) {
	if count < 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "batch size must be >= 0, got %d", count)
	}
	if minNets < 0 || maxNets < minNets {
		return nil, errors.New(errors.ErrCodeInvalidInput, "net range [%d, %d] is empty", minNets, maxNets)
	}
	r := g.rng(streamBatch)

	out := make([][]route.Net, count)
	for i := range count {
		n := minNets + r.IntN(maxNets-minNets+1)
		sub := g
		sub.Seed = g.Seed ^ (uint64(i+1) * 0xbf58476d1ce4e5b9)
		nets, err := sub.Nets(gr, n)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "netlist %d", i)
		}
		out[i] = nets
	}
	return out, nil
}

// Features describes one net for order prediction.
type Features struct {
	Netlist            int
	NetID              string
	Manhattan          int
	LayerDiff          int
	HorizontalDominant bool
	Start, Target      grid.Point
}

// NetFeatures computes the features of n, which belongs to netlist.
func NetFeatures(netlist int, n route.Net) Features {
	dx, dy := n.Target.X-n.Start.X, n.Target.Y-n.Start.Y
	return Features{
		Netlist:            netlist,
		NetID:              n.ID,
		Manhattan:          n.Manhattan(),
		LayerDiff:          n.LayerSpan(),
		HorizontalDominant: abs(dx) >= abs(dy),
		Start:              n.Start,
		Target:             n.Target,
	}
}

var featureHeader = []string{
	"netlist_id", "net_id", "manhattan_dist", "layer_diff", "is_horizontal_dominant",
	"src_x", "src_y", "src_z", "dst_x", "dst_y", "dst_z",
}

// WriteFeatures writes one CSV row per net of every netlist, netlist i
// being numbered i.
func WriteFeatures(w io.Writer, netlists [][]route.Net) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(featureHeader); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write feature header")
	}
	for i, nets := range netlists {
		for _, n := range nets {
			if err := cw.Write(NetFeatures(i, n).record()); err != nil {
				return errors.Wrap(errors.ErrCodeInternal, err, "write features of net %s", n.ID)
			}
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "flush features")
	}
	return nil
}

func (f Features) record() []string {
	horizontal := "0"
	if f.HorizontalDominant {
		horizontal = "1"
	}
	itoa := strconv.Itoa
	return []string{
		itoa(f.Netlist), f.NetID, itoa(f.Manhattan), itoa(f.LayerDiff), horizontal,
		itoa(f.Start.X), itoa(f.Start.Y), itoa(f.Start.Layer),
		itoa(f.Target.X), itoa(f.Target.Y), itoa(f.Target.Layer),
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
