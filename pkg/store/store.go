// Package store provides persistence for completed builds.
//
// A build bundles the derived graph and its layout under a stable id so the
// API can serve them without re-running the pipeline. Two backends are
// provided:
//   - memory: In-memory storage for development/testing
//   - mongo: MongoDB-backed storage for server deployments
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/flowatlas/flowatlas/pkg/graph"
	"github.com/flowatlas/flowatlas/pkg/layout"
)

// ErrNotFound is returned when a build does not exist.
var ErrNotFound = errors.New("build not found")

// Build is one persisted pipeline result.
type Build struct {
	ID        string         `json:"id" bson:"_id"`
	Name      string         `json:"name" bson:"name"`
	CreatedAt time.Time      `json:"created_at" bson:"created_at"`
	GraphHash string         `json:"graph_hash" bson:"graph_hash"`
	Graph     *graph.Graph   `json:"graph" bson:"graph"`
	Layout    *layout.Layout `json:"layout" bson:"layout"`
}

// Summary is the listing view of a build, without the graph and layout
// payloads.
type Summary struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	GraphHash string    `json:"graph_hash" bson:"graph_hash"`
}

// Summary returns the listing view of the build.
func (b *Build) Summary() Summary {
	return Summary{ID: b.ID, Name: b.Name, CreatedAt: b.CreatedAt, GraphHash: b.GraphHash}
}

// New creates a build record with a fresh id.
func New(name, graphHash string, g *graph.Graph, l *layout.Layout) *Build {
	return &Build{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
		GraphHash: graphHash,
		Graph:     g,
		Layout:    l,
	}
}

// Store is the interface for build storage backends.
type Store interface {
	// Put stores a build, replacing any existing build with the same id.
	Put(ctx context.Context, b *Build) error

	// Get retrieves a build by id. Returns ErrNotFound if it doesn't exist.
	Get(ctx context.Context, id string) (*Build, error)

	// List returns summaries of the most recent builds, newest first.
	// A non-positive limit returns everything.
	List(ctx context.Context, limit int) ([]Summary, error)

	// Delete removes a build. Deleting a missing build returns ErrNotFound.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close(ctx context.Context) error
}
