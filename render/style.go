package render

import (
	"sort"
	"strings"

	"github.com/laikadoc/laika/ast"
)

// Specificity orders competing StyleDeclarations the way CSS does:
// id-selectors beat class-selectors beat type-selectors, ties broken
// by declaration order (§3.6/§4.7's CSS-subset cascade).
type Specificity struct {
	IDs     int
	Classes int
	Types   int
	order   int
}

// Less reports whether s sorts before other in cascade order (lowest
// wins first, so the cascade applies other on top of s).
func (s Specificity) Less(other Specificity) bool {
	if s.IDs != other.IDs {
		return s.IDs < other.IDs
	}
	if s.Classes != other.Classes {
		return s.Classes < other.Classes
	}
	if s.Types != other.Types {
		return s.Types < other.Types
	}
	return s.order < other.order
}

// Selector is the small subset of CSS selectors the cascade supports:
// a type name (node category), a "." class, or a "#" id, matched
// against a node's Options and runtime type name.
type Selector struct {
	Type string // e.g. "Paragraph"; empty to match any type
	ID   string
	Class string
}

func (s Selector) specificity(order int) Specificity {
	sp := Specificity{order: order}
	if s.ID != "" {
		sp.IDs = 1
	}
	if s.Class != "" {
		sp.Classes = 1
	}
	if s.Type != "" {
		sp.Types = 1
	}
	return sp
}

func (s Selector) matches(typeName string, opts ast.Options) bool {
	if s.Type != "" && s.Type != typeName {
		return false
	}
	if s.ID != "" {
		if opts.ID == nil || *opts.ID != s.ID {
			return false
		}
	}
	if s.Class != "" && !opts.HasStyle(s.Class) {
		return false
	}
	return true
}

// StyleDeclaration binds a Selector to a set of property/value pairs.
type StyleDeclaration struct {
	Selector   Selector
	Properties map[string]string
}

// StyleDeclarationSet is an ordered collection of declarations; later
// declarations of equal specificity win, matching CSS's "last rule
// wins on a tie" cascade rule.
type StyleDeclarationSet struct {
	decls []StyleDeclaration
}

// NewStyleDeclarationSet builds a cascade from declarations in source
// order (earliest-declared-first, as they'd appear in a stylesheet).
func NewStyleDeclarationSet(decls ...StyleDeclaration) *StyleDeclarationSet {
	return &StyleDeclarationSet{decls: decls}
}

// Add appends another declaration, participating in the cascade after
// everything already present.
func (s *StyleDeclarationSet) Add(d StyleDeclaration) { s.decls = append(s.decls, d) }

// ComputedStyle resolves the final property map for a node of the
// given type name, applying every matching declaration in increasing
// specificity order.
func (s *StyleDeclarationSet) ComputedStyle(typeName string, opts ast.Options) map[string]string {
	type match struct {
		spec  Specificity
		props map[string]string
	}
	var matches []match
	for i, d := range s.decls {
		if d.Selector.matches(typeName, opts) {
			matches = append(matches, match{spec: d.Selector.specificity(i), props: d.Properties})
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].spec.Less(matches[j].spec) })
	out := map[string]string{}
	for _, m := range matches {
		for k, v := range m.props {
			out[k] = v
		}
	}
	return out
}

// InlineStyle renders a computed style map as a CSS `style="..."`
// attribute value, properties sorted for deterministic output.
func InlineStyle(props map[string]string) string {
	if len(props) == 0 {
		return ""
	}
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(k)
		b.WriteByte(':')
		b.WriteString(props[k])
		b.WriteByte(';')
	}
	return b.String()
}
