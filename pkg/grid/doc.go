// Package grid models a multi-layer routing fabric: per-cell traversal
// costs, the via topology that permits layer changes, and the occupancy
// state that records which cells routed nets have claimed.
//
// # Overview
//
// A [Grid] is immutable once built. It is indexed (layer, row, column) and
// every cost is at least 1, which keeps every edge weight of the routing
// graph positive. Layer changes are allowed only where the grid's
// [ViaTopology] says so:
//
//	NoVias       layers are isolated
//	AllVias      every location connects adjacent layers
//	StackedVias  a per-(row,col) flag connects all adjacent layers
//	LayerVias    a per-(row,col) flag for each pair of adjacent layers
//
// An [Occupancy] is the mutable part. It is owned by one routing trial and
// shares nothing with other trials, so trials can run side by side against
// the same Grid. [Occupancy.MarkBlocked] is its only mutator for hard
// blocking; it is idempotent and there is no rollback. Start over with
// [NewOccupancy] for a clean slate.
//
// A [Model] bundles a Grid, an Occupancy and a [Policy]. Under
// [PolicyBlock] claimed cells become obstacles. Under [PolicyCongestion]
// nothing is ever blocked; instead every claim raises the claimed cells'
// cost by a fixed increment for later nets. The two policies never mix.
//
// # Coordinates
//
// A [Point] is (X, Y, Layer) where X is the column and Y the row. Any
// coordinate outside the grid is rejected with an INVALID_COORDINATE error
// before the operation does anything else.
package grid
