package spec

import (
	"regexp"
	"strings"
)

// Reference is one extracted cross-entity pointer.
//
// Targets are normalized to colon-only ids, so "$screen.a.b" and
// "$screen:a:b" both yield the target "screen:a:b". A target need not
// exist: dangling references are legal and only surfaced, never fatal.
type Reference struct {
	Source string `json:"source" bson:"source"`       // id of the entity whose record contains the reference
	Target string `json:"target" bson:"target"`       // normalized target id
	Type   string `json:"type" bson:"type"`           // target type token, e.g. "screen"
	Path   string `json:"path,omitempty" bson:"path"` // where in the record the reference was found (diagnostic only)
}

// sigilPattern matches inline sigil references: a "$" marker, a lowercase
// type token, a "." or ":" separator, then a path of lowercase
// alphanumerics and ".", ":", "-", "_". A trailing parenthesized parameter
// clause is permitted after the path; the pattern simply stops before it,
// so "$screen:a:b ( k: v )" and "$screen:a:b" match identically.
var sigilPattern = regexp.MustCompile(`\$([a-z]+)[.:]([a-z0-9][a-z0-9.:_-]*)`)

// barePattern matches the sigil-less "component:<path>" form used inside
// loop and template expressions.
var barePattern = regexp.MustCompile(`component:([a-z0-9][a-z0-9.:_-]*)`)

// refMatch is one grammar match within a single string.
type refMatch struct {
	typ   string
	path  string
	start int
}

// scanString applies both reference grammars to s and returns all matches
// in left-to-right order. Bare component matches overlapping a sigil match
// are dropped ("$component:x" is a single sigil reference, not two).
func scanString(s string) []refMatch {
	if !strings.ContainsAny(s, "$c") {
		return nil
	}

	var matches []refMatch
	type span struct{ start, end int }
	var sigilSpans []span

	for _, m := range sigilPattern.FindAllStringSubmatchIndex(s, -1) {
		sigilSpans = append(sigilSpans, span{m[0], m[1]})
		matches = append(matches, refMatch{
			typ:   s[m[2]:m[3]],
			path:  trimPath(s[m[4]:m[5]]),
			start: m[0],
		})
	}

	for _, m := range barePattern.FindAllStringSubmatchIndex(s, -1) {
		overlaps := false
		for _, sp := range sigilSpans {
			if m[0] < sp.end && m[1] > sp.start {
				overlaps = true
				break
			}
		}
		if overlaps {
			continue
		}
		// Reject matches embedded in a longer word ("subcomponent:x").
		if m[0] > 0 {
			prev := s[m[0]-1]
			if prev == '_' || prev == '-' || (prev >= 'a' && prev <= 'z') || (prev >= '0' && prev <= '9') {
				continue
			}
		}
		matches = append(matches, refMatch{
			typ:   TypeComponent,
			path:  trimPath(s[m[2]:m[3]]),
			start: m[0],
		})
	}

	// Left-to-right order across both grammars.
	for i := 1; i < len(matches); i++ {
		for j := i; j > 0 && matches[j].start < matches[j-1].start; j-- {
			matches[j], matches[j-1] = matches[j-1], matches[j]
		}
	}
	return matches
}

// trimPath drops trailing separators picked up from surrounding prose,
// e.g. "see $screen:a:b." should not yield a path ending in ".".
func trimPath(path string) string {
	return strings.TrimRight(path, ".:")
}

// normalizeTarget produces the canonical target id for a match: the type
// token, a colon, and the path with every "." rewritten to ":".
func normalizeTarget(typ, path string) string {
	return typ + ":" + strings.ReplaceAll(path, ".", ":")
}

// extractReferences records every reference found in one string of an
// entity's record. Multiple matches in one string are all recorded.
func extractReferences(source, recordPath, s string) []Reference {
	matches := scanString(s)
	if len(matches) == 0 {
		return nil
	}
	refs := make([]Reference, 0, len(matches))
	for _, m := range matches {
		refs = append(refs, Reference{
			Source: source,
			Target: normalizeTarget(m.typ, m.path),
			Type:   m.typ,
			Path:   recordPath,
		})
	}
	return refs
}

// FirstReferenceTarget returns the normalized target of the first reference
// in s, or "" when s contains none. Components and flattened effects use
// this to resolve the reference that anchors their edge.
func FirstReferenceTarget(s string) string {
	matches := scanString(s)
	if len(matches) == 0 {
		return ""
	}
	return normalizeTarget(matches[0].typ, matches[0].path)
}
