package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/layerroute/pkg/api"
	"github.com/matzehuels/layerroute/pkg/cache"
	"github.com/matzehuels/layerroute/pkg/pipeline"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr         string
	routeTimeout time.Duration
	maxBody      int64
	cacheEntries int
}

// serveCommand creates the serve command, which exposes the pipeline over
// HTTP until interrupted.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{
		addr:         "127.0.0.1:8080",
		routeTimeout: 30 * time.Second,
		maxBody:      api.DefaultMaxBodyBytes,
		cacheEntries: defaultCacheEntries,
	}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the routing pipeline over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().DurationVar(&opts.routeTimeout, "timeout", opts.routeTimeout, "order-search timeout per request")
	cmd.Flags().Int64Var(&opts.maxBody, "max-body", opts.maxBody, "largest accepted design, in bytes")
	cmd.Flags().IntVar(&opts.cacheEntries, "cache-entries", opts.cacheEntries, "in-memory cache capacity")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts *serveOpts) error {
	logger := loggerFromContext(ctx)

	runner := pipeline.NewRunner(cache.NewMemoryCache(opts.cacheEntries), nil, logger)
	defer runner.Close()

	srv := api.NewServer(runner, logger,
		api.WithMaxBodyBytes(opts.maxBody),
		api.WithRouteTimeout(opts.routeTimeout))

	logger.Info("Listening", "addr", opts.addr)
	return srv.ListenAndServe(ctx, opts.addr)
}
