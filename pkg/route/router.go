package route

import (
	"context"
	"io"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/layerroute/pkg/errors"
	"github.com/matzehuels/layerroute/pkg/grid"
	"github.com/matzehuels/layerroute/pkg/observability"
	"github.com/matzehuels/layerroute/pkg/perm"
	"github.com/matzehuels/layerroute/pkg/route/pathfind"
)

// Router routes nets sequentially against one grid.Model.
//
// A Router holds no per-call state; one Router may serve concurrent Route
// calls as long as each call gets its own Model.
type Router struct {
	Finder *pathfind.Finder
	Logger *log.Logger
}

// NewRouter creates a router. A nil finder uses pathfind.DefaultConfig and a
// nil logger discards output.
func NewRouter(f *pathfind.Finder, logger *log.Logger) *Router {
	if f == nil {
		f = pathfind.New(pathfind.DefaultConfig())
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Router{Finder: f, Logger: logger}
}

// Route processes nets in the given order against m, claiming each routed
// path before the next net is searched. A nil order means input order.
//
// Unroutable nets (UNREACHABLE or INVALID_COORDINATE) are recorded on their
// NetResult and never stop the batch. Route itself fails only when:
//   - order is not a permutation of the net indices (INVALID_INPUT);
//   - ctx is done before all nets were processed (ctx.Err());
//   - a found path fails its independent cost check (INTERNAL_ERROR).
//
// m is mutated; pass a fresh model for a clean slate.
func (r *Router) Route(ctx context.Context, m *grid.Model, nets []Net, order []int) (*Outcome, error) {
	if order == nil {
		order = perm.Seq(len(nets))
	} else if !perm.Valid(order, len(nets)) {
		return nil, errors.New(errors.ErrCodeInvalidInput, "order %v is not a permutation of %d nets", order, len(nets))
	}

	out := &Outcome{
		Order:   slices.Clone(order),
		Results: make([]NetResult, 0, len(nets)),
	}
	hooks := observability.Routing()

	for _, idx := range order {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := r.routeNet(m, idx, nets[idx])
		if err != nil {
			return nil, err
		}
		if res.Routed {
			out.Routed++
			out.TotalCost += res.Cost
			hooks.OnNetRouted(ctx, res.Net.ID, res.Cost, len(res.Path))
		} else {
			hooks.OnNetFailed(ctx, res.Net.ID, res.Err)
		}
		out.Results = append(out.Results, res)
	}

	r.Logger.Debug("routed batch", "order", out.Order, "routed", out.Routed, "nets", len(nets), "cost", out.TotalCost)
	return out, nil
}

func (r *Router) routeNet(m *grid.Model, idx int, net Net) (NetResult, error) {
	res := NetResult{Index: idx, Net: net}

	found, err := r.Finder.Find(m, net.Start, net.Target)
	if err != nil {
		if !errors.IsUnreachable(err) && !errors.IsInvalidCoordinate(err) {
			return res, errors.Wrap(errors.ErrCodeInternal, err, "net %s", net.ID)
		}
		res.Err = err
		r.Logger.Debug("net unrouted", "net", net.ID, "reason", errors.UserMessage(err))
		return res, nil
	}

	// Re-cost before claiming: under congestion the claim changes cell costs.
	cost, err := PathCost(m, found.Path, r.Finder.Config())
	if err != nil {
		return res, errors.Wrap(errors.ErrCodeInternal, err, "net %s: search returned a malformed path", net.ID)
	}
	if cost != found.Cost {
		return res, errors.New(errors.ErrCodeInternal, "net %s: search reported cost %d but path costs %d", net.ID, found.Cost, cost)
	}
	if err := m.Claim(found.Path); err != nil {
		return res, errors.Wrap(errors.ErrCodeInternal, err, "net %s: claim path", net.ID)
	}

	res.Routed = true
	res.Path = found.Path
	res.Cost = cost
	r.Logger.Debug("net routed", "net", net.ID, "cost", cost, "cells", len(found.Path), "expanded", found.Expanded)
	return res, nil
}
