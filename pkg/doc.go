// Package pkg provides the core libraries for layerroute, a multi-layer grid
// router.
//
// # Overview
//
// layerroute connects pairs of cells (nets) in a 3-D cost grid with
// minimum-cost paths. Paths move orthogonally within a layer and change
// layer through vias. Nets compete for cells, so the order in which they are
// routed matters; layerroute searches that order for the best result.
//
// # Architecture
//
// The typical data flow:
//
//	TOML design
//	     ↓
//	[design] (decode, validate, build the grid)
//	     ↓
//	[route/ordering] (search net orders)
//	     ↓
//	[route] + [route/pathfind] (route each net on a [grid.Model])
//	     ↓
//	[render] (text, JSON, DOT, SVG, PNG, PDF)
//
// [pipeline] wires these stages together with caching and is shared by the
// CLI and the HTTP [api].
//
// # Main Packages
//
// ## Routing
//
// [grid] - Cost tables, via topologies, occupancy and the block and
// congestion policies.
//
// [route/pathfind] - Dijkstra search over (cell, direction) states with
// deterministic tie-breaking.
//
// [route] - Routes a list of nets in a fixed order, claiming each path.
//
// [route/ordering] - Exhaustive, heuristic, sequential and auto order
// searches. The exhaustive search runs trials on a worker pool.
//
// [perm] - Lexicographic permutation enumeration.
//
// ## Inputs and Outputs
//
// [design] - TOML design files.
//
// [gen] - Seeded random grids and netlists.
//
// [render] - Layer layouts, reports and Graphviz drawings.
//
// ## Infrastructure
//
// [pipeline] - design → route → render with content-addressed caching.
//
// [cache] - Cache interface with null and in-memory implementations.
//
// [api] - HTTP handlers over the pipeline.
//
// [observability] - Hooks for routing, pipeline, cache and HTTP events.
//
// [errors] - Coded errors shared by every package.
//
// [buildinfo] - Version information set at build time.
//
// # Testing
//
// Run tests:
//
//	go test ./...                  # All tests
//	go test ./pkg/route/...        # Specific package
//	go test -run Example ./pkg/... # Examples only
package pkg
