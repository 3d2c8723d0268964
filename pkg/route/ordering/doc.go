// Package ordering searches over the order in which nets are routed.
//
// Because routed nets block (or congest) the cells they use, the order in
// which [route.Router] processes nets decides which nets succeed and what
// they cost. An [Optimizer] picks an order and returns the best outcome it
// found:
//
//   - [Exhaustive]: every permutation of the net indices, in lexicographic
//     order. Exact, but factorial: capped at MaxNets (default 9) nets. An
//     optional Limit caps the number of orders tried, and a Timeout or a
//     cancelled context stops the search with the best outcome so far.
//   - [Heuristic]: a single trial with short nets first, ordered by
//     Manhattan distance plus layer span.
//   - [Sequential]: a single trial in input order.
//   - [Auto]: Exhaustive up to MaxNets, Heuristic above.
//
// # Scoring
//
// Outcomes are compared by routed count (more is better), then total cost
// (lower is better); see [Better]. Among equal scores the order found first
// in lexicographic enumeration wins, so results are reproducible.
//
// # Parallel trials
//
// Each trial routes against its own fresh [grid.Model]; the cost and via
// tables are shared read-only. With Workers > 1 the Exhaustive search runs
// trials on an ants goroutine pool and reduces them into a mutex-guarded
// best. The reduction compares enumeration ranks as well as scores, so a
// completed parallel search returns exactly what the serial search returns.
package ordering
