// Package pipeline provides the core build pipeline for flowatlas.
//
// This package implements the complete parse → build → layout pipeline that
// can be used by CLI, API, and editor components. By centralizing this logic,
// we ensure consistent behavior across all entry points and avoid code
// duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Parse: Read behavior documents into entities and references
//  2. Build: Derive the visible reference graph
//  3. Layout: Compute spatial positions via a layout engine
//
// Parse and build always run together; their combined result is what gets
// cached. Layout can be run independently against an existing graph.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{Engine: pipeline.EngineGrid}
//	result, err := runner.Execute(ctx, docs, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	positions := result.Layout.Positions
//
// For interactive callers where a newer request supersedes in-flight work,
// wrap the runner in a [Scheduler].
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/flowatlas/flowatlas/pkg/cache"
	"github.com/flowatlas/flowatlas/pkg/graph"
	"github.com/flowatlas/flowatlas/pkg/layout"
	"github.com/flowatlas/flowatlas/pkg/layout/graphviz"
	"github.com/flowatlas/flowatlas/pkg/layout/grid"
	"github.com/flowatlas/flowatlas/pkg/spec"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, API, and Editor
// =============================================================================

// Engine names accepted by Options.Engine.
const (
	EngineGraphviz = "graphviz"
	EngineGrid     = "grid"
)

// DefaultEngine is the engine used when Options.Engine is empty.
const DefaultEngine = EngineGraphviz

// ValidEngines is the set of supported layout engines.
var ValidEngines = map[string]bool{
	EngineGraphviz: true,
	EngineGrid:     true,
}

// ValidateEngine checks that an engine name is valid.
func ValidateEngine(engine string) error {
	if !ValidEngines[engine] {
		return fmt.Errorf("invalid engine: %q (must be one of: graphviz, grid)", engine)
	}
	return nil
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the build pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Parse options
	Vocabulary []string `json:"vocabulary,omitempty"` // extra entity types beyond the defaults
	Refresh    bool     `json:"refresh,omitempty"`    // bypass the cache and rebuild

	// Layout options
	Engine string        `json:"engine,omitempty"`
	Layout layout.Config `json:"layout,omitempty"`

	// Runtime options (not serialized)
	Logger       *log.Logger   `json:"-"`
	LayoutEngine layout.Engine `json:"-"` // overrides Engine when set

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// ValidateAndSetDefaults checks fields and applies defaults for the full
// pipeline. This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	o.SetParseDefaults()
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetParseDefaults sets default values for parsing.
func (o *Options) SetParseDefaults() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Engine == "" && o.LayoutEngine == nil {
		o.Engine = DefaultEngine
	}
	if o.Layout == (layout.Config{}) {
		o.Layout = layout.DefaultConfig()
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if o.LayoutEngine != nil {
		return nil
	}
	return ValidateEngine(o.Engine)
}

// engine resolves the layout engine implementation.
func (o *Options) engine() layout.Engine {
	if o.LayoutEngine != nil {
		return o.LayoutEngine
	}
	if o.Engine == EngineGrid {
		return grid.New()
	}
	return graphviz.New()
}

// Vocab builds the entity type vocabulary from the defaults plus any
// configured extras.
func (o *Options) Vocab() spec.Vocabulary {
	return spec.DefaultVocabulary().Extend(o.Vocabulary...)
}

// GraphKeyOpts returns cache key options for the parse and build stages.
func (o *Options) GraphKeyOpts() cache.GraphKeyOpts {
	return cache.GraphKeyOpts{Vocabulary: o.Vocabulary}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	name := o.Engine
	if o.LayoutEngine != nil {
		name = o.LayoutEngine.Name()
	}
	return cache.LayoutKeyOpts{
		Engine:         name,
		NodeWidth:      o.Layout.NodeWidth,
		ExternalWeight: o.Layout.ExternalWeight,
		StrongTie:      o.Layout.StrongTie,
		MaxCommunity:   o.Layout.MaxCommunitySize,
	}
}

// =============================================================================
// Result - Pipeline Outputs
// =============================================================================

// Result contains the outputs of a pipeline run.
type Result struct {
	// Graph is the derived reference graph.
	Graph *graph.Graph

	// GraphHash is the content hash of the graph.
	GraphHash string

	// Layout contains the computed positions and communities.
	Layout *layout.Layout

	// Collisions lists duplicate entity ids encountered while parsing.
	// Empty when the graph came from cache.
	Collisions []string

	// DocumentErrors lists documents that failed to parse. Parsing is
	// isolated per document, so these do not fail the run.
	DocumentErrors []spec.DocumentError

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	BuildTime  time.Duration
	LayoutTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	GraphHit  bool // Whether the built graph came from cache
	LayoutHit bool // Whether the layout came from cache
}
