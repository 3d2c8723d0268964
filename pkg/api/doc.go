// Package api serves the routing pipeline over HTTP.
//
// Endpoints:
//
//	POST /v1/route                         route a design (TOML, or JSON with Content-Type: application/json)
//	GET  /v1/results/{id}                  fetch a stored result
//	GET  /v1/results/{id}/artifacts/{fmt}  fetch one rendered artifact
//	GET  /healthz                          liveness and build info
//
// POST /v1/route accepts the query parameters strategy, workers, limit,
// max_nets, timeout (a Go duration) and formats (comma separated).
//
// Results are kept in the process's cache and are gone after a restart.
package api
