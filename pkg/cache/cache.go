// Package cache provides pluggable result caching for the flowatlas pipeline.
//
// The pipeline caches two kinds of results: built graphs (keyed by the content
// hash of the input documents plus parse options) and computed layouts (keyed
// by the graph hash plus layout options). Three backends are provided:
//
//   - FileCache: file-based storage for CLI usage (~/.cache/flowatlas/)
//   - RedisCache: Redis-backed storage for server deployments
//   - NullCache: no-op cache for tests or when caching is disabled
package cache

import (
	"context"
	"time"
)

// TTL values for different cached result types.
const (
	// TTLGraph is how long built graphs stay cached. Graph builds are cheap
	// relative to layout, so a shorter TTL keeps stale documents from lingering.
	TTLGraph = 12 * time.Hour

	// TTLLayout is how long computed layouts stay cached. Layout is the
	// expensive stage, so layouts are kept longer.
	TTLLayout = 48 * time.Hour
)

// Cache is the interface for cache backends.
type Cache interface {
	// Get retrieves a value. The bool reports whether the key was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL. A zero TTL means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// GraphKeyOpts are the parse/build options that affect graph identity.
type GraphKeyOpts struct {
	Vocabulary []string
}

// LayoutKeyOpts are the layout options that affect layout identity.
type LayoutKeyOpts struct {
	Engine         string
	NodeWidth      float64
	ExternalWeight int
	StrongTie      int
	MaxCommunity   int
}

// Keyer generates cache keys for the different result types.
// Implementations must be deterministic: equal inputs yield equal keys.
type Keyer interface {
	// GraphKey generates a key for a built graph from the content hash of the
	// input documents and the options that affect the build.
	GraphKey(docsHash string, opts GraphKeyOpts) string

	// LayoutKey generates a key for a computed layout from the graph hash
	// and the options that affect the layout.
	LayoutKey(graphHash string, opts LayoutKeyOpts) string
}

// DefaultKeyer is the standard key generator.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard key generator.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// GraphKey generates a key for a built graph.
func (k *DefaultKeyer) GraphKey(docsHash string, opts GraphKeyOpts) string {
	return hashKey("graph", docsHash, opts)
}

// LayoutKey generates a key for a computed layout.
func (k *DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
