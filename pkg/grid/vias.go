package grid

// ViaTopology decides where a path may change layer.
//
// Allows reports whether a via at (row, col) joins layer lower and layer
// lower+1. Transitions are bidirectional. Callers guarantee that row, col
// and both layers are in bounds.
type ViaTopology interface {
	Allows(row, col, lower int) bool
}

// ViaKind names a via topology in configuration files.
type ViaKind string

// Via kinds accepted by design files.
const (
	ViaKindNone    ViaKind = "none"
	ViaKindAll     ViaKind = "all"
	ViaKindStacked ViaKind = "stacked"
	ViaKindLayer   ViaKind = "layer"
)

// NoVias isolates every layer.
type NoVias struct{}

// Allows always returns false.
func (NoVias) Allows(int, int, int) bool { return false }

// AllVias connects adjacent layers everywhere.
type AllVias struct{}

// Allows always returns true.
func (AllVias) Allows(int, int, int) bool { return true }

// StackedVias marks (row, col) locations where a via runs through the
// whole layer stack, joining every pair of adjacent layers.
type StackedVias struct {
	rows, cols int
	at         []bool
}

// NewStackedVias returns an empty stacked topology for a rows×cols plane.
func NewStackedVias(rows, cols int) *StackedVias {
	return &StackedVias{rows: rows, cols: cols, at: make([]bool, rows*cols)}
}

// Set places a stacked via at (row, col). Out-of-range locations are ignored.
func (v *StackedVias) Set(row, col int) *StackedVias {
	if row >= 0 && row < v.rows && col >= 0 && col < v.cols {
		v.at[row*v.cols+col] = true
	}
	return v
}

// Has reports whether a stacked via exists at (row, col).
func (v *StackedVias) Has(row, col int) bool {
	if row < 0 || row >= v.rows || col < 0 || col >= v.cols {
		return false
	}
	return v.at[row*v.cols+col]
}

// Allows implements ViaTopology.
func (v *StackedVias) Allows(row, col, _ int) bool {
	return v.Has(row, col)
}

// Count returns the number of via locations.
func (v *StackedVias) Count() int {
	n := 0
	for _, ok := range v.at {
		if ok {
			n++
		}
	}
	return n
}

// LayerVias marks vias per location and per adjacent layer pair.
// A via set at (row, col, lower) joins layers lower and lower+1 only.
type LayerVias struct {
	rows, cols, pairs int
	at                []bool
}

// NewLayerVias returns an empty per-layer topology for a grid with the
// given number of layers.
func NewLayerVias(layers, rows, cols int) *LayerVias {
	pairs := max(layers-1, 0)
	return &LayerVias{rows: rows, cols: cols, pairs: pairs, at: make([]bool, rows*cols*pairs)}
}

// Set places a via joining lower and lower+1 at (row, col).
// Out-of-range locations are ignored.
func (v *LayerVias) Set(row, col, lower int) *LayerVias {
	if i, ok := v.index(row, col, lower); ok {
		v.at[i] = true
	}
	return v
}

// Allows implements ViaTopology.
func (v *LayerVias) Allows(row, col, lower int) bool {
	i, ok := v.index(row, col, lower)
	return ok && v.at[i]
}

func (v *LayerVias) index(row, col, lower int) (int, bool) {
	if row < 0 || row >= v.rows || col < 0 || col >= v.cols || lower < 0 || lower >= v.pairs {
		return 0, false
	}
	return (row*v.cols+col)*v.pairs + lower, true
}

var (
	_ ViaTopology = NoVias{}
	_ ViaTopology = AllVias{}
	_ ViaTopology = (*StackedVias)(nil)
	_ ViaTopology = (*LayerVias)(nil)
)
