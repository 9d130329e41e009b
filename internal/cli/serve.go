package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flowatlas/flowatlas/internal/server"
	"github.com/flowatlas/flowatlas/pkg/cache"
	"github.com/flowatlas/flowatlas/pkg/pipeline"
	"github.com/flowatlas/flowatlas/pkg/store"
)

// serveCommand creates the serve command running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the build pipeline over HTTP",
		Long: `Serve the build pipeline over HTTP.

The server accepts behavior documents on POST /api/v1/builds, runs the
full pipeline, and persists results so graphs and layouts can be fetched
separately.

Backends are configured in flowatlas.toml: a [redis] section enables the
Redis pipeline cache, a [mongo] section enables persistent build storage.
Without them the server uses the local file cache and in-memory storage.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if addr == "" {
				addr = c.Config.Server.Addr
			}

			pipelineCache, err := c.serverCache(cmd)
			if err != nil {
				return err
			}
			runner := pipeline.NewRunner(pipelineCache, nil, c.Logger)
			defer runner.Close()

			buildStore, err := c.serverStore(cmd)
			if err != nil {
				return err
			}
			defer buildStore.Close(ctx)

			srv := server.New(runner, buildStore, c.Logger)
			srv.Options = c.Config.PipelineOptions()

			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config, default :8080)")

	return cmd
}

func (c *CLI) serverCache(cmd *cobra.Command) (cache.Cache, error) {
	if c.Config.Redis.Addr == "" {
		return newCache(false)
	}
	rc, err := cache.NewRedisCache(cmd.Context(), c.Config.RedisConfig())
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	c.Logger.Info("using redis cache", "addr", c.Config.Redis.Addr)
	return rc, nil
}

func (c *CLI) serverStore(cmd *cobra.Command) (store.Store, error) {
	if c.Config.Mongo.URI == "" {
		return store.NewMemoryStore(), nil
	}
	ms, err := store.NewMongoStore(cmd.Context(), c.Config.MongoConfig())
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	c.Logger.Info("using mongodb store", "database", c.Config.Mongo.Database)
	return ms, nil
}
