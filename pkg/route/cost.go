package route

import (
	"github.com/matzehuels/layerroute/pkg/errors"
	"github.com/matzehuels/layerroute/pkg/grid"
	"github.com/matzehuels/layerroute/pkg/route/pathfind"
)

// PathCost recomputes the cost of path on m under cfg: every cell's cost
// (start included), plus cfg.ViaCost per layer change and cfg.TurnCost per
// change of planar direction. A via keeps the planar direction, so a turn
// made across a via is still charged.
//
// PathCost also checks that every step is a unit orthogonal move on one
// layer or a permitted via, and returns INVALID_INPUT otherwise. Occupancy
// is not consulted.
func PathCost(m *grid.Model, path []grid.Point, cfg pathfind.Config) (int, error) {
	if len(path) == 0 {
		return 0, errors.New(errors.ErrCodeInvalidInput, "empty path")
	}
	for i, p := range path {
		if err := m.Grid.Validate(p); err != nil {
			return 0, errors.Wrap(errors.ErrCodeInvalidInput, err, "path step %d", i)
		}
	}

	cost := m.CostAt(path[0])
	last := pathfind.NoDir
	for i := 1; i < len(path); i++ {
		a, b := path[i-1], path[i]
		cost += m.CostAt(b)

		if pathfind.IsViaStep(a, b) {
			if !cfg.Vias || !m.ViaAvailable(a.Y, a.X, a.Layer, b.Layer) {
				return 0, errors.New(errors.ErrCodeInvalidInput, "path step %d: no via between %s and %s", i, a, b)
			}
			cost += cfg.ViaCost
			continue
		}

		d := pathfind.StepDir(a, b)
		if d == pathfind.NoDir {
			return 0, errors.New(errors.ErrCodeInvalidInput, "path step %d: %s to %s is not a unit move", i, a, b)
		}
		if cfg.TracksTurns() && last != pathfind.NoDir && d != last {
			cost += cfg.TurnCost
		}
		last = d
	}
	return cost, nil
}
