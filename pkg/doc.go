// Package pkg provides the core libraries for FlowAtlas behavior maps.
//
// # Overview
//
// FlowAtlas turns YAML behavior documents into a positioned reference graph
// that a frontend can draw. The pkg directory is organized into five main
// areas:
//
//  1. [spec] - Document parsing (entities, components, reference extraction)
//  2. [graph] - The visible reference graph and its JSON codec
//  3. [layout] - Epic clustering, community detection, hierarchical layout
//  4. [pipeline] - Orchestration (parse → build → layout) with caching
//  5. [store] - Persisted builds for the HTTP API
//
// # Architecture
//
// The typical data flow through FlowAtlas:
//
//	YAML behavior documents
//	         ↓
//	    [spec] package (entities + references)
//	         ↓
//	    [graph] package (visible reference graph)
//	         ↓
//	    [layout] package (epic clusters + absolute positions)
//	         ↓
//	    JSON for the rendering frontend
//
// # Quick Start
//
// Most callers go through the pipeline:
//
//	runner := pipeline.NewRunner(nil, nil, nil)
//	result, err := runner.Execute(ctx, docs, pipeline.Options{})
//
// Supporting packages: [cache] hashes inputs and persists pipeline results,
// [errors] defines the structured error codes shared by CLI and API,
// [observability] carries the lifecycle hooks, and [buildinfo] reports the
// binary version.
package pkg
