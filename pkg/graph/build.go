package graph

import (
	"fmt"

	"github.com/flowatlas/flowatlas/pkg/spec"
)

// Build derives the reference graph from one parse pass.
//
// Visibility rule: an entity whose type is not "component" becomes a node
// iff it has at least one component, at least one effect entry, or its id
// is referenced by anyone. Component entities are never independently
// visible; they appear only inlined in a referencing parent's tree.
//
// Edges come from two sources, deduplicated by ordered (source, target)
// pair with the first writer keeping the chosen anchor:
//
//  1. a flattened component carrying a reference whose target is visible
//     (anchored at that component), then
//  2. a raw extracted reference whose endpoints are both visible.
//
// Build never emits an edge whose target is not a materialized node.
// Given fixed parsed input it is deterministic: rebuilding yields the same
// node and edge sets in the same order.
func Build(res *spec.Result) *Graph {
	g := &Graph{}

	visible := make(map[string]*spec.Entity)
	for _, e := range res.EntitiesInOrder() {
		if e.ID.IsComponent() {
			continue
		}
		if !e.HasComponents() && !e.HasEffects() && !res.IsReferenced(e.ID.Raw) {
			continue
		}
		visible[e.ID.Raw] = e
	}

	for _, e := range res.EntitiesInOrder() {
		if _, ok := visible[e.ID.Raw]; !ok {
			continue
		}
		g.Nodes = append(g.Nodes, buildNode(e, res, visible))
	}
	g.reindex()

	g.Edges = deriveEdges(g, res, visible)
	return g
}

// buildNode flattens the entity's component tree and appends the flattened
// rendering of its effects, in document order.
func buildNode(e *spec.Entity, res *spec.Result, visible map[string]*spec.Entity) Node {
	n := Node{
		ID:          e.ID.Raw,
		Type:        e.ID.Type,
		Epic:        e.ID.Epic,
		Name:        e.ID.Name,
		Description: e.Description,
		Tags:        e.Tags,
		Referenced:  res.IsReferenced(e.ID.Raw),
	}
	active := map[string]bool{e.ID.Raw: true}
	n.Components = flattenComponents(e.Components, 0, res, nil, active)

	synth := 0
	n.Components = flattenEffects(e.Effects, e.ID.Raw, 0, &synth, n.Components)

	for i := range n.Components {
		n.Components[i].Status = refStatus(n.Components[i].Ref, res, visible)
	}
	return n
}

// refStatus resolves a component's reference status. A reference to a
// component entity counts as connected once inlined, even though the
// target never becomes a node of its own.
func refStatus(ref string, res *spec.Result, visible map[string]*spec.Entity) RefStatus {
	switch {
	case ref == "":
		return RefStatusNone
	case visible[ref] != nil:
		return RefStatusConnected
	case isComponentEntity(res, ref):
		return RefStatusConnected
	default:
		return RefStatusDangling
	}
}

func isComponentEntity(res *spec.Result, id string) bool {
	e := res.Entity(id)
	return e != nil && e.ID.IsComponent()
}

// flattenComponents walks the tree depth-first, preserving the depths
// assigned during parsing shifted by depthShift. A component referencing a
// component entity has that entity's own tree spliced in one level below
// it; the active set guards against reference cycles.
func flattenComponents(tree []spec.Component, depthShift int, res *spec.Result, out []Component, active map[string]bool) []Component {
	for _, c := range tree {
		out = append(out, Component{
			ID:     c.ID,
			Type:   c.Type,
			Label:  c.Label,
			Value:  c.Value,
			Action: c.Action,
			Depth:  c.Depth + depthShift,
			Ref:    c.Ref,
		})
		if c.Ref != "" && isComponentEntity(res, c.Ref) && !active[c.Ref] {
			inlined := res.Entity(c.Ref)
			active[c.Ref] = true
			out = flattenComponents(inlined.Components, c.Depth+depthShift+1, res, out, active)
			delete(active, c.Ref)
		}
		out = flattenComponents(c.Children, depthShift, res, out, active)
	}
	return out
}

// flattenEffects renders effect entries as synthetic components. A bare
// string becomes one "effect" component at the current depth. An
// if/then/else record becomes a "condition" component followed by "then"
// and "else" markers one level deeper, whose branch entries expand
// recursively below them.
func flattenEffects(effects []spec.Value, entityID string, depth int, synth *int, out []Component) []Component {
	for _, eff := range effects {
		switch {
		case eff.IsString():
			out = append(out, Component{
				ID:    nextSynthID(entityID, ComponentTypeEffect, synth),
				Type:  ComponentTypeEffect,
				Value: eff.Str,
				Depth: depth,
				Ref:   spec.FirstReferenceTarget(eff.Str),
			})
		case eff.Kind == spec.KindMap:
			if _, isCond := eff.Get("if"); isCond {
				out = flattenCondition(eff, entityID, depth, synth, out)
				continue
			}
			// Unrecognized record shape: keep it as an opaque effect whose
			// reference, if any, is still resolved.
			out = append(out, Component{
				ID:    nextSynthID(entityID, ComponentTypeEffect, synth),
				Type:  ComponentTypeEffect,
				Depth: depth,
				Ref:   firstReferenceInValue(eff),
			})
		}
	}
	return out
}

func flattenCondition(eff spec.Value, entityID string, depth int, synth *int, out []Component) []Component {
	cond, _ := eff.Get("if")
	c := Component{
		ID:    nextSynthID(entityID, ComponentTypeCondition, synth),
		Type:  ComponentTypeCondition,
		Depth: depth,
	}
	if cond.IsString() {
		c.Value = cond.Str
		c.Ref = spec.FirstReferenceTarget(cond.Str)
	}
	out = append(out, c)

	for _, branch := range []string{"then", "else"} {
		entries := eff.GetList(branch)
		if single, ok := eff.Get(branch); ok && len(entries) == 0 && !single.IsNull() {
			// A scalar branch is treated as a one-entry list.
			entries = []spec.Value{single}
		}
		if len(entries) == 0 {
			continue
		}
		markerType := ComponentTypeThen
		if branch == "else" {
			markerType = ComponentTypeElse
		}
		out = append(out, Component{
			ID:    nextSynthID(entityID, markerType, synth),
			Type:  markerType,
			Depth: depth + 1,
		})
		out = flattenEffects(entries, entityID, depth+2, synth, out)
	}
	return out
}

func nextSynthID(entityID, kind string, synth *int) string {
	id := fmt.Sprintf("%s_%s_%d", entityID, kind, *synth)
	*synth++
	return id
}

// firstReferenceInValue walks an opaque value for its first reference.
func firstReferenceInValue(v spec.Value) string {
	target := ""
	v.WalkStrings("", func(_, s string) {
		if target == "" {
			target = spec.FirstReferenceTarget(s)
		}
	})
	return target
}

// deriveEdges merges component-anchored edge candidates with raw extracted
// references, deduplicated by ordered pair.
func deriveEdges(g *Graph, res *spec.Result, visible map[string]*spec.Entity) []Edge {
	var edges []Edge
	seen := make(map[string]struct{})

	add := func(e Edge) {
		key := e.Source + "\x00" + e.Target
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		edges = append(edges, e)
	}

	// Source (a): anchored component references.
	for _, n := range g.Nodes {
		for _, c := range n.Components {
			if c.Ref == "" || visible[c.Ref] == nil {
				continue
			}
			add(Edge{
				Source:     n.ID,
				Target:     c.Ref,
				Anchor:     c.ID,
				TargetType: visible[c.Ref].ID.Type,
			})
		}
	}

	// Source (b): raw references between visible nodes, unanchored.
	for _, ref := range res.References {
		if visible[ref.Source] == nil || visible[ref.Target] == nil {
			continue
		}
		targetType := ref.Type
		if target := visible[ref.Target]; target != nil {
			targetType = target.ID.Type
		}
		add(Edge{
			Source:     ref.Source,
			Target:     ref.Target,
			TargetType: targetType,
		})
	}

	return edges
}
