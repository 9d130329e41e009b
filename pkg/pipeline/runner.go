package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/flowatlas/flowatlas/pkg/cache"
	"github.com/flowatlas/flowatlas/pkg/graph"
	"github.com/flowatlas/flowatlas/pkg/layout"
	"github.com/flowatlas/flowatlas/pkg/observability"
	"github.com/flowatlas/flowatlas/pkg/spec"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete parse → build → layout pipeline with caching.
func (r *Runner) Execute(ctx context.Context, docs []spec.Document, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{}

	// Stage 1: Parse + Build
	buildStart := time.Now()
	observability.Pipeline().OnBuildStart(ctx, len(docs))
	g, buildHit, err := r.BuildWithCacheInfo(ctx, docs, opts, result)
	observability.Pipeline().OnBuildComplete(ctx, nodeCountOf(g), time.Since(buildStart), err)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	result.Graph = g
	result.Stats.BuildTime = time.Since(buildStart)
	result.Stats.NodeCount = g.NodeCount()
	result.Stats.EdgeCount = g.EdgeCount()
	result.CacheInfo.GraphHit = buildHit

	// Compute graph hash for cache keys and API responses
	if graphData, err := graph.MarshalGraph(g); err == nil {
		result.GraphHash = cache.Hash(graphData)
	}

	r.Logger.Info("built graph",
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"duration", result.Stats.BuildTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	observability.Pipeline().OnLayoutStart(ctx, opts.LayoutKeyOpts().Engine, g.NodeCount())
	l, layoutHit, err := r.ComputeLayoutWithCacheInfo(ctx, g, opts)
	observability.Pipeline().OnLayoutComplete(ctx, opts.LayoutKeyOpts().Engine, time.Since(layoutStart), err)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = l
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"engine", l.Engine,
		"communities", len(l.Communities),
		"duration", result.Stats.LayoutTime)

	return result, nil
}

// BuildWithCacheInfo parses documents into a graph with caching and
// returns cache hit info. When result is non-nil, parse collisions and
// per-document errors are recorded on it (cache hits record none, since
// parsing is skipped).
func (r *Runner) BuildWithCacheInfo(ctx context.Context, docs []spec.Document, opts Options, result *Result) (*graph.Graph, bool, error) {
	opts.SetParseDefaults()
	r.applyLogger(&opts)

	cacheKey := r.Keyer.GraphKey(docsHash(docs), opts.GraphKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if g, err := graph.UnmarshalGraph(data); err == nil {
				observability.Cache().OnCacheHit(ctx, "graph")
				return g, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "graph")
	}

	res := spec.Parse(docs, spec.Options{
		Vocabulary: opts.Vocab(),
		Logger:     opts.Logger,
	})
	if result != nil {
		result.Collisions = res.Collisions
		result.DocumentErrors = res.Errors
	}
	for _, derr := range res.Errors {
		opts.Logger.Warn("document skipped", "document", derr.Document, "err", derr.Err)
	}

	g := graph.Build(res)

	// Cache the result
	if data, err := graph.MarshalGraph(g); err == nil {
		if r.Cache.Set(ctx, cacheKey, data, cache.TTLGraph) == nil {
			observability.Cache().OnCacheSet(ctx, "graph", len(data))
		}
	}

	return g, false, nil
}

// Build is a convenience wrapper that calls BuildWithCacheInfo and discards
// the cache hit info.
func (r *Runner) Build(ctx context.Context, docs []spec.Document, opts Options) (*graph.Graph, error) {
	g, _, err := r.BuildWithCacheInfo(ctx, docs, opts, nil)
	return g, err
}

// ComputeLayoutWithCacheInfo computes a layout with caching and returns
// cache hit info.
func (r *Runner) ComputeLayoutWithCacheInfo(ctx context.Context, g *graph.Graph, opts Options) (*layout.Layout, bool, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	// Compute cache key
	graphData, _ := graph.MarshalGraph(g)
	graphHash := cache.Hash(graphData)
	cacheKey := r.Keyer.LayoutKey(graphHash, opts.LayoutKeyOpts())

	// Try cache first
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if cached, err := layout.UnmarshalLayout(data); err == nil {
				observability.Cache().OnCacheHit(ctx, "layout")
				return cached, true, nil
			}
			// If deserialization fails, fall through to recompute
		}
		observability.Cache().OnCacheMiss(ctx, "layout")
	}

	composer := layout.NewComposer(opts.engine(), opts.Layout, opts.Logger)
	l, err := composer.Compose(ctx, g)
	if err != nil {
		return nil, false, err
	}

	// Cache the result
	if data, err := layout.MarshalLayout(l); err == nil {
		if r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout) == nil {
			observability.Cache().OnCacheSet(ctx, "layout", len(data))
		}
	}

	return l, false, nil
}

// ComputeLayout is a convenience wrapper that calls
// ComputeLayoutWithCacheInfo and discards the cache hit info.
func (r *Runner) ComputeLayout(ctx context.Context, g *graph.Graph, opts Options) (*layout.Layout, error) {
	l, _, err := r.ComputeLayoutWithCacheInfo(ctx, g, opts)
	return l, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func docsHash(docs []spec.Document) string {
	names := make([]string, len(docs))
	contents := make([][]byte, len(docs))
	for i, d := range docs {
		names[i] = d.Name
		contents[i] = d.Data
	}
	return cache.HashDocuments(names, contents)
}

func nodeCountOf(g *graph.Graph) int {
	if g == nil {
		return 0
	}
	return g.NodeCount()
}
