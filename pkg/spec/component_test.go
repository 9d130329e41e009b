package spec

import "testing"

func parseOne(t *testing.T, doc string) *Entity {
	t.Helper()
	res := Parse([]Document{{Name: "test.yaml", Data: []byte(doc)}}, Options{})
	if len(res.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	if len(res.Order) != 1 {
		t.Fatalf("got %d entities, want 1", len(res.Order))
	}
	return res.Entities[res.Order[0]]
}

func TestComponentStringElement(t *testing.T) {
	e := parseOne(t, `
screen:shop:cart:
  components:
    - $component:inline:card
`)
	c := e.Components[0]
	if c.ID != "$component:inline:card" {
		t.Errorf("ID = %q, want the raw string value", c.ID)
	}
	if c.Type != "unknown" {
		t.Errorf("Type = %q, want unknown", c.Type)
	}
	if c.Ref != "component:inline:card" {
		t.Errorf("Ref = %q, want component:inline:card", c.Ref)
	}
	if c.Depth != 0 {
		t.Errorf("Depth = %d, want 0", c.Depth)
	}
}

func TestComponentSynthesizedIDs(t *testing.T) {
	e := parseOne(t, `
screen:shop:cart:
  components:
    - label: first
    - id: explicit
      label: second
    - label: third
`)
	want := []string{"screen:shop:cart_0", "explicit", "screen:shop:cart_2"}
	for i, c := range e.Components {
		if c.ID != want[i] {
			t.Errorf("Components[%d].ID = %q, want %q", i, c.ID, want[i])
		}
	}
}

func TestComponentTreeDepths(t *testing.T) {
	e := parseOne(t, `
screen:shop:cart:
  components:
    - id: list
      components:
        - id: row
          components:
            - id: cell
`)
	list := e.Components[0]
	if list.Type != "components" {
		t.Errorf("group Type = %q, want components", list.Type)
	}
	if list.Depth != 0 {
		t.Errorf("root Depth = %d, want 0", list.Depth)
	}

	row := list.Children[0]
	if row.Depth != list.Depth+1 {
		t.Errorf("child Depth = %d, want parent+1 = %d", row.Depth, list.Depth+1)
	}
	cell := row.Children[0]
	if cell.Depth != row.Depth+1 {
		t.Errorf("grandchild Depth = %d, want %d", cell.Depth, row.Depth+1)
	}
	if cell.Type != "unknown" {
		t.Errorf("leaf Type = %q, want unknown", cell.Type)
	}
}

func TestNestedSynthesizedIDsUseParentPrefix(t *testing.T) {
	e := parseOne(t, `
screen:shop:cart:
  components:
    - id: list
      components:
        - label: anonymous
`)
	child := e.Components[0].Children[0]
	if child.ID != "list_0" {
		t.Errorf("nested synthesized ID = %q, want list_0", child.ID)
	}
}

func TestComponentExplicitTypeKept(t *testing.T) {
	e := parseOne(t, `
screen:shop:cart:
  components:
    - id: hero
      type: image
      components:
        - id: caption
`)
	if got := e.Components[0].Type; got != "image" {
		t.Errorf("Type = %q, explicit type must not be overridden", got)
	}
}

func TestComponentRefPrecedence(t *testing.T) {
	// Value is scanned before action.
	e := parseOne(t, `
screen:shop:cart:
  components:
    - id: both
      value: $screen:shop:detail
      action: $action:shop:buy
    - id: action_only
      action: $action:shop:buy
`)
	if got := e.Components[0].Ref; got != "screen:shop:detail" {
		t.Errorf("Ref = %q, want value reference first", got)
	}
	if got := e.Components[1].Ref; got != "action:shop:buy" {
		t.Errorf("Ref = %q, want action reference", got)
	}
}
