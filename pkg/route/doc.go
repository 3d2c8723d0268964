// Package route routes a list of nets, one after another, against a shared
// occupancy state.
//
// [Router.Route] processes nets in a caller-supplied order. Each net is
// searched with a [pathfind.Finder]; on success its path is claimed in the
// [grid.Model] (blocked, or charged as congestion, depending on the model's
// policy) so later nets must avoid or pay for it. A net that cannot be routed
// is recorded with its reason and the batch continues. Per-net failures never
// abort a batch; only a cancelled context, a malformed order or a broken
// internal invariant do.
//
// Every routed path is re-costed independently with [PathCost] and compared
// with the cost the search reported.
//
// The order in which nets are processed matters: see package
// [github.com/matzehuels/layerroute/pkg/route/ordering] for searching over
// orders.
package route
