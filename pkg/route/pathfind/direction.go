package pathfind

import "github.com/matzehuels/layerroute/pkg/grid"

// Dir is a planar move direction.
type Dir int

// Planar directions in expansion order. NoDir marks the start of a path and
// any step that is not a planar unit move.
const (
	East Dir = iota
	South
	North
	West
	NoDir
)

// numDirStates counts the directions plus NoDir.
const numDirStates = int(NoDir) + 1

var dirDelta = [...]struct{ dx, dy int }{
	East:  {1, 0},
	South: {0, 1},
	North: {0, -1},
	West:  {-1, 0},
}

// String implements fmt.Stringer.
func (d Dir) String() string {
	switch d {
	case East:
		return "east"
	case South:
		return "south"
	case North:
		return "north"
	case West:
		return "west"
	default:
		return "none"
	}
}

// Step moves p one cell in direction d on the same layer.
func (d Dir) Step(p grid.Point) grid.Point {
	if d < East || d > West {
		return p
	}
	return grid.Point{X: p.X + dirDelta[d].dx, Y: p.Y + dirDelta[d].dy, Layer: p.Layer}
}

// StepDir classifies the move from a to b. It returns the planar direction
// for a unit orthogonal move on one layer and NoDir for anything else,
// including layer changes.
func StepDir(a, b grid.Point) Dir {
	if a.Layer != b.Layer {
		return NoDir
	}
	dx, dy := b.X-a.X, b.Y-a.Y
	for d, delta := range dirDelta {
		if delta.dx == dx && delta.dy == dy {
			return Dir(d)
		}
	}
	return NoDir
}

// IsViaStep reports whether a and b share a planar location on adjacent
// layers.
func IsViaStep(a, b grid.Point) bool {
	if !a.SamePlanar(b) {
		return false
	}
	d := a.Layer - b.Layer
	return d == 1 || d == -1
}
