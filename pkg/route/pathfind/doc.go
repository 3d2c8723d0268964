// Package pathfind finds minimum-cost paths through a layered routing grid.
//
// # Overview
//
// [Finder.Find] is a single-source, single-target Dijkstra search over the
// cells of a [grid.Model]. One engine covers every router variant; a
// [Config] switches capabilities on or off:
//
//   - Vias: allow layer changes where the grid's via topology permits them,
//     at ViaCost plus the destination cell's cost.
//   - Blocking: treat cells claimed by earlier nets as obstacles.
//   - TurnCost: charge a penalty whenever the path changes planar direction.
//
// # Costs
//
// The cost of a path is the sum of the costs of every cell on it, the start
// cell included, plus ViaCost per layer change and TurnCost per change of
// planar direction. All cell costs are at least 1, so all edge weights are
// positive and the search may stop as soon as the target is popped.
//
// # Turn penalty
//
// With a turn cost the price of the next move depends on how the current
// cell was entered, so the search state becomes (cell, incoming direction).
// The start has no direction, and a via keeps the planar direction the path
// had before it. Without a turn cost the direction is not tracked and the
// state space is one node per cell.
//
// # Determinism
//
// Frontier entries with equal cost are ordered by (layer, row, column,
// direction), neighbours are expanded in a fixed order and relaxation only
// accepts strict improvements. Repeated calls on the same model return the
// same path.
//
// # Complexity
//
// O(E log V) with V = layers × rows × cols (× 5 with turn tracking) and at
// most six outgoing edges per node.
package pathfind
