// Package spec parses declarative behavior documents into typed entities
// and extracted cross-entity references.
//
// A behavior document is a YAML mapping from colon-delimited identifiers
// (e.g. "screen:checkout:summary") to records describing screens, dialogs,
// actions, events and supporting entities. Parsing classifies each
// top-level key against a closed type vocabulary, decodes the record into
// a tagged recursive Value, extracts the entity's component tree and
// effects, and walks every string in the record for sigil references
// ("$screen:a:b") and bare component references ("component:card").
//
// Parsing is tolerant by design: unrecognized top-level keys are free-form
// metadata and are skipped; a document that fails to parse contributes
// nothing but does not abort entities from other documents; references to
// ids that never materialize are recorded, not rejected.
package spec

import (
	"fmt"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"
)

// Document is one named input document.
type Document struct {
	Name string
	Data []byte
}

// DocumentError reports a document whose text could not be parsed.
// The failure is isolated: other documents' entities are unaffected.
type DocumentError struct {
	Document string
	Err      error
}

// Error returns the formatted error message.
func (e *DocumentError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Document, e.Err)
}

// Unwrap returns the underlying parse error.
func (e *DocumentError) Unwrap() error { return e.Err }

// Options configures a parse pass.
type Options struct {
	// Vocabulary is the recognized entity type set.
	// Nil means DefaultVocabulary.
	Vocabulary Vocabulary

	// Logger receives collision warnings. Nil means log.Default.
	Logger *log.Logger
}

// Result is the output of one parse pass over a set of documents.
type Result struct {
	// Entities maps entity id to the parsed entity. On id collision the
	// last definition wins; see Collisions.
	Entities map[string]*Entity

	// Order lists entity ids in first-seen document order.
	Order []string

	// References is the flat list of every reference extracted from every
	// record, in document order and left-to-right within each string.
	References []Reference

	// ReferencedIDs is the set of all reference targets.
	ReferencedIDs map[string]struct{}

	// Collisions lists ids that were defined more than once. Overwriting
	// may mask an authoring error, so collisions are surfaced as warnings
	// rather than silently resolved.
	Collisions []string

	// Errors holds per-document parse failures.
	Errors []DocumentError
}

// Entity returns the entity with the given id, or nil.
func (r *Result) Entity(id string) *Entity { return r.Entities[id] }

// IsReferenced reports whether any reference targets the id.
func (r *Result) IsReferenced(id string) bool {
	_, ok := r.ReferencedIDs[id]
	return ok
}

// EntitiesInOrder returns the parsed entities in first-seen document order.
func (r *Result) EntitiesInOrder() []*Entity {
	out := make([]*Entity, 0, len(r.Order))
	for _, id := range r.Order {
		out = append(out, r.Entities[id])
	}
	return out
}

// Parse runs one parse pass over the documents.
//
// Documents are processed in the order given. An identifier defined in
// several documents resolves last-write-wins, with the collision recorded
// and logged. A document that is not valid YAML, or whose top level is not
// a mapping, contributes a DocumentError and nothing else.
func Parse(docs []Document, opts Options) *Result {
	vocab := opts.Vocabulary
	if vocab == nil {
		vocab = DefaultVocabulary()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	res := &Result{
		Entities:      make(map[string]*Entity),
		ReferencedIDs: make(map[string]struct{}),
	}

	for _, doc := range docs {
		if err := parseDocument(res, doc, vocab, logger); err != nil {
			res.Errors = append(res.Errors, DocumentError{Document: doc.Name, Err: err})
		}
	}

	for _, ref := range res.References {
		res.ReferencedIDs[ref.Target] = struct{}{}
	}
	return res
}

func parseDocument(res *Result, doc Document, vocab Vocabulary, logger *log.Logger) error {
	var root yaml.Node
	if err := yaml.Unmarshal(doc.Data, &root); err != nil {
		return err
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		// Empty document: nothing to contribute.
		return nil
	}
	top := root.Content[0]
	if top.Kind != yaml.MappingNode {
		return fmt.Errorf("top level must be a mapping, got %s", yamlKindName(top.Kind))
	}

	for i := 0; i+1 < len(top.Content); i += 2 {
		keyNode, valNode := top.Content[i], top.Content[i+1]
		id, ok := ParseID(keyNode.Value, vocab)
		if !ok {
			// Free-form metadata entry, not an entity.
			continue
		}

		entity := parseEntity(id, fromNode(valNode))
		if _, exists := res.Entities[id.Raw]; exists {
			res.Collisions = append(res.Collisions, id.Raw)
			logger.Warn("duplicate entity id, last definition wins",
				"id", id.Raw, "document", doc.Name)
		} else {
			res.Order = append(res.Order, id.Raw)
		}
		res.Entities[id.Raw] = entity

		entity.Raw.WalkStrings("", func(path, s string) {
			res.References = append(res.References, extractReferences(id.Raw, path, s)...)
		})
	}
	return nil
}

func yamlKindName(k yaml.Kind) string {
	switch k {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	}
	return "unknown"
}
