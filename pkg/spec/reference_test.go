package spec

import (
	"reflect"
	"testing"
)

func TestReferenceNormalization(t *testing.T) {
	// All separator spellings and a trailing parameter clause must
	// normalize to the same target id.
	tests := []struct {
		in   string
		want string
	}{
		{"$screen:a:b", "screen:a:b"},
		{"$screen.a.b", "screen:a:b"},
		{"$screen:a:b ( k: v )", "screen:a:b"},
		{"$screen.a:b", "screen:a:b"},
		{"$action:checkout:submit", "action:checkout:submit"},
		{"$event.cart.updated", "event:cart:updated"},
	}
	for _, tt := range tests {
		if got := FirstReferenceTarget(tt.in); got != tt.want {
			t.Errorf("FirstReferenceTarget(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBareComponentReference(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"component:card", "component:card"},
		{"{{ repeat component:list.item }}", "component:list:item"},
		{"no references here", ""},
		// Embedded in a longer word: not a reference.
		{"subcomponent:card", ""},
	}
	for _, tt := range tests {
		if got := FirstReferenceTarget(tt.in); got != tt.want {
			t.Errorf("FirstReferenceTarget(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSigilSwallowsBareMatch(t *testing.T) {
	// "$component:card" is one sigil reference, not a sigil match plus a
	// bare match.
	refs := extractReferences("action:a", "effects[0]", "$component:card")
	if len(refs) != 1 {
		t.Fatalf("got %d references, want 1: %+v", len(refs), refs)
	}
	if refs[0].Target != "component:card" {
		t.Errorf("Target = %q, want %q", refs[0].Target, "component:card")
	}
	if refs[0].Type != "component" {
		t.Errorf("Type = %q, want %q", refs[0].Type, "component")
	}
}

func TestMultipleReferencesLeftToRight(t *testing.T) {
	refs := extractReferences("action:a", "value",
		"open $screen:shop:cart then fire $event:cart:open via component:badge")

	want := []string{"screen:shop:cart", "event:cart:open", "component:badge"}
	var got []string
	for _, r := range refs {
		got = append(got, r.Target)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("targets = %v, want %v", got, want)
	}
}

func TestReferenceFields(t *testing.T) {
	refs := extractReferences("screen:shop:cart", "components[2].action", "$action:shop:buy")
	if len(refs) != 1 {
		t.Fatalf("got %d references, want 1", len(refs))
	}
	r := refs[0]
	if r.Source != "screen:shop:cart" {
		t.Errorf("Source = %q", r.Source)
	}
	if r.Type != "action" {
		t.Errorf("Type = %q", r.Type)
	}
	if r.Path != "components[2].action" {
		t.Errorf("Path = %q", r.Path)
	}
}

func TestTrailingProsePunctuation(t *testing.T) {
	if got := FirstReferenceTarget("see $screen:a:b."); got != "screen:a:b" {
		t.Errorf("got %q, want %q", got, "screen:a:b")
	}
}

func TestNoMatchInPlainText(t *testing.T) {
	for _, s := range []string{"", "hello world", "price: $100", "$Screen:a"} {
		if got := FirstReferenceTarget(s); got != "" {
			t.Errorf("FirstReferenceTarget(%q) = %q, want none", s, got)
		}
	}
}
