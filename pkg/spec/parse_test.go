package spec

import (
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func TestParseIgnoresFreeFormKeys(t *testing.T) {
	docs := []Document{{Name: "meta.yaml", Data: []byte(`
version: 3
owner: team-checkout
screen:shop:cart:
  description: cart
`)}}
	res := Parse(docs, Options{Logger: quietLogger()})
	if len(res.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	if len(res.Order) != 1 || res.Order[0] != "screen:shop:cart" {
		t.Errorf("Order = %v, want only the screen entity", res.Order)
	}
}

func TestParseErrorIsolatedPerDocument(t *testing.T) {
	docs := []Document{
		{Name: "good.yaml", Data: []byte("screen:a:one:\n  description: ok\n")},
		{Name: "bad.yaml", Data: []byte(":\n\t- broken: [\n")},
		{Name: "also_good.yaml", Data: []byte("action:a:go:\n  effects:\n    - $screen:a:one\n")},
	}
	res := Parse(docs, Options{Logger: quietLogger()})

	if len(res.Errors) != 1 {
		t.Fatalf("got %d errors, want 1: %v", len(res.Errors), res.Errors)
	}
	if res.Errors[0].Document != "bad.yaml" {
		t.Errorf("error document = %q", res.Errors[0].Document)
	}
	if res.Entity("screen:a:one") == nil || res.Entity("action:a:go") == nil {
		t.Error("entities from healthy documents must survive a bad document")
	}
}

func TestParseNonMappingDocument(t *testing.T) {
	docs := []Document{{Name: "list.yaml", Data: []byte("- just\n- a\n- list\n")}}
	res := Parse(docs, Options{Logger: quietLogger()})
	if len(res.Errors) != 1 {
		t.Fatalf("got %d errors, want 1", len(res.Errors))
	}
	if !strings.Contains(res.Errors[0].Error(), "mapping") {
		t.Errorf("error should mention mapping requirement: %v", res.Errors[0])
	}
}

func TestParseCollisionLastWriteWins(t *testing.T) {
	docs := []Document{
		{Name: "one.yaml", Data: []byte("screen:a:home:\n  description: first\n")},
		{Name: "two.yaml", Data: []byte("screen:a:home:\n  description: second\n")},
	}
	res := Parse(docs, Options{Logger: quietLogger()})

	if got := res.Entity("screen:a:home").Description; got != "second" {
		t.Errorf("Description = %q, want the later definition", got)
	}
	if len(res.Collisions) != 1 || res.Collisions[0] != "screen:a:home" {
		t.Errorf("Collisions = %v, want [screen:a:home]", res.Collisions)
	}
	if len(res.Order) != 1 {
		t.Errorf("Order = %v, overwritten id must appear once", res.Order)
	}
}

func TestParseReferencedIDs(t *testing.T) {
	docs := []Document{{Name: "flow.yaml", Data: []byte(`
action:t:finish:
  effects:
    - $screen:t:results
screen:t:results:
  description: results page
`)}}
	res := Parse(docs, Options{Logger: quietLogger()})

	if !res.IsReferenced("screen:t:results") {
		t.Error("screen:t:results should be in ReferencedIDs")
	}
	if res.IsReferenced("action:t:finish") {
		t.Error("action:t:finish is referenced by nobody")
	}
	if len(res.References) != 1 {
		t.Fatalf("got %d references, want 1", len(res.References))
	}
	ref := res.References[0]
	if ref.Source != "action:t:finish" || ref.Target != "screen:t:results" {
		t.Errorf("reference = %+v", ref)
	}
	if ref.Path != "effects[0]" {
		t.Errorf("Path = %q, want effects[0]", ref.Path)
	}
}

func TestParseDanglingReferenceIsLegal(t *testing.T) {
	docs := []Document{{Name: "flow.yaml", Data: []byte(`
action:t:go:
  effects:
    - $screen:t:nowhere
`)}}
	res := Parse(docs, Options{Logger: quietLogger()})
	if len(res.Errors) != 0 {
		t.Fatalf("dangling reference must not be an error: %v", res.Errors)
	}
	if !res.IsReferenced("screen:t:nowhere") {
		t.Error("dangling target should still be recorded")
	}
}

func TestParseAnchorAliasExpansion(t *testing.T) {
	docs := []Document{{Name: "anchors.yaml", Data: []byte(`
screen:a:base:
  components: &shared
    - id: header
screen:a:clone:
  components: *shared
`)}}
	res := Parse(docs, Options{Logger: quietLogger()})
	if len(res.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	clone := res.Entity("screen:a:clone")
	if len(clone.Components) != 1 || clone.Components[0].ID != "header" {
		t.Errorf("alias expansion failed: %+v", clone.Components)
	}
}

func TestParseMergeKeys(t *testing.T) {
	docs := []Document{{Name: "merge.yaml", Data: []byte(`
screen:a:base: &base
  description: base screen
  layout: stack
screen:a:special:
  <<: *base
  description: special screen
`)}}
	res := Parse(docs, Options{Logger: quietLogger()})
	if len(res.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	sp := res.Entity("screen:a:special")
	if sp.Description != "special screen" {
		t.Errorf("explicit key must win over merge, got %q", sp.Description)
	}
	if sp.Layout != "stack" {
		t.Errorf("merged key missing, Layout = %q", sp.Layout)
	}
}
