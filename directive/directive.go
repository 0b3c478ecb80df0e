// Package directive implements the extension-point machinery of §5:
// block/span directives invoked as `@:name(attrs) { body }` and rST
// text roles invoked as `` `text`:role: ``. A directive Spec declares
// its positional and named attributes, how its body is interpreted,
// and a handler that builds the replacement node; a Registry looks
// specs up by name and reports unknown-directive/decode failures as
// Invalid nodes rather than panicking, mirroring the teacher's
// never-panic parse-error discipline (org/error.go's ParseError model).
package directive

import (
	"fmt"
	"strconv"

	"github.com/laikadoc/laika/ast"
	"github.com/laikadoc/laika/cursor"
)

// BodyMode controls how a directive's body text is interpreted before
// being handed to its handler.
type BodyMode int

const (
	// BodyNone: the directive takes no body at all.
	BodyNone BodyMode = iota
	// BodyRaw: the body is passed through as an unparsed string.
	BodyRaw
	// BodyBlocks: the body is parsed as nested block-level content.
	BodyBlocks
	// BodySpans: the body is parsed as inline span content.
	BodySpans
)

// AttributeKind names the decoded Go type an attribute value is
// converted to before the handler runs.
type AttributeKind int

const (
	AttrString AttributeKind = iota
	AttrInt
	AttrBool
)

// AttributeSpec describes one positional or named attribute a
// directive accepts.
type AttributeSpec struct {
	Name     string // empty for a purely positional attribute
	Kind     AttributeKind
	Required bool
	Default  string
}

// Attributes is the decoded result of matching a call's raw attribute
// list against a Spec's AttributeSpecs.
type Attributes struct {
	strings map[string]string
	ints    map[string]int
	bools   map[string]bool
}

func newAttributes() Attributes {
	return Attributes{strings: map[string]string{}, ints: map[string]int{}, bools: map[string]bool{}}
}

func (a Attributes) String(name string) (string, bool) { v, ok := a.strings[name]; return v, ok }
func (a Attributes) Int(name string) (int, bool)        { v, ok := a.ints[name]; return v, ok }
func (a Attributes) Bool(name string) (bool, bool)      { v, ok := a.bools[name]; return v, ok }

// BlockContext is what a block directive's handler receives: its
// decoded attributes, its raw or parsed body (depending on BodyMode),
// the body split into Segments (§4.4's `@@:`-separated multi-segment
// form — a single element holding the whole body when no separator
// was present), and the source position of the call for diagnostics.
type BlockContext struct {
	Attrs    Attributes
	RawBody  string
	Segments []string
	Blocks   []ast.Block
	Spans    []ast.Span
	Position cursor.Position
}

// SpanContext is the span-directive / text-role analogue.
type SpanContext struct {
	Attrs    Attributes
	Content  string
	Segments []string
	Position cursor.Position
}

// Spec is one registered directive or role. Terminator overrides the
// `@:@` default line a Laika-flavor directive call's body reads until
// when no `{ brace body }` is present (§6.3); it's ignored by specs
// that only ever appear with a brace body or no body at all.
type Spec struct {
	Name       string
	Attributes []AttributeSpec
	Body       BodyMode
	Terminator string
	BuildBlock func(BlockContext) ast.Block // nil for span-only specs
	BuildSpan  func(SpanContext) ast.Span   // nil for block-only specs
}

// Registry looks specs up by name; separate namespaces for block
// directives and span-level text roles, matching §5's separation
// between `@:name(...)` directives and `` `text`:role: `` roles.
type Registry struct {
	directives  map[string]Spec
	roles       map[string]Spec
	defaultRole string
}

// NewRegistry builds an empty registry. defaultRole names the role
// applied to InterpretedText nodes with no explicit `:role:` suffix
// (§5.2); pass "" to leave interpreted text unresolved until a role is
// registered under that name.
func NewRegistry(defaultRole string) *Registry {
	return &Registry{directives: map[string]Spec{}, roles: map[string]Spec{}, defaultRole: defaultRole}
}

// RegisterDirective adds a block-level directive spec.
func (r *Registry) RegisterDirective(s Spec) { r.directives[s.Name] = s }

// RegisterRole adds a text-role spec.
func (r *Registry) RegisterRole(s Spec) { r.roles[s.Name] = s }

// Directive looks up a block directive by name.
func (r *Registry) Directive(name string) (Spec, bool) {
	s, ok := r.directives[name]
	return s, ok
}

// Role looks up a text role by name, falling back to the default role
// when name is empty.
func (r *Registry) Role(name string) (Spec, bool) {
	if name == "" {
		name = r.defaultRole
	}
	s, ok := r.roles[name]
	return s, ok
}

// RawAttrs is the unparsed attribute list captured by the block/span
// parser: positional values in order, plus any `name=value` pairs.
type RawAttrs struct {
	Positional []string
	Named      map[string]string
}

// Decode matches raw against spec's AttributeSpecs, applying defaults
// and type conversion. It never panics: a decode failure is returned
// as an error for the caller to wrap into an InvalidBlock/InvalidSpan.
func Decode(spec Spec, raw RawAttrs) (Attributes, error) {
	out := newAttributes()
	posIdx := 0
	for _, as := range spec.Attributes {
		var rawValue string
		var found bool
		if as.Name != "" {
			rawValue, found = raw.Named[as.Name]
		}
		if !found && posIdx < len(raw.Positional) {
			rawValue, found = raw.Positional[posIdx], true
			posIdx++
		}
		if !found {
			if as.Required {
				return out, fmt.Errorf("directive %q: missing required attribute %q", spec.Name, attrLabel(as))
			}
			rawValue = as.Default
			if rawValue == "" {
				continue
			}
		}
		if err := assign(&out, as, rawValue); err != nil {
			return out, fmt.Errorf("directive %q: attribute %q: %w", spec.Name, attrLabel(as), err)
		}
	}
	return out, nil
}

func attrLabel(as AttributeSpec) string {
	if as.Name != "" {
		return as.Name
	}
	return "(positional)"
}

func assign(out *Attributes, as AttributeSpec, raw string) error {
	switch as.Kind {
	case AttrString:
		out.strings[attrKey(as)] = raw
	case AttrInt:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("not an integer: %q", raw)
		}
		out.ints[attrKey(as)] = n
	case AttrBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("not a boolean: %q", raw)
		}
		out.bools[attrKey(as)] = b
	}
	return nil
}

func attrKey(as AttributeSpec) string {
	if as.Name != "" {
		return as.Name
	}
	return "_"
}

// InvalidBlockFor builds the standard Invalid replacement for a block
// directive that failed to parse or decode (§5.3, §7): Invalid nodes
// are never discarded by the core, only filtered at render/fail time.
func InvalidBlockFor(name string, err error, pos cursor.Position, source string) ast.Block {
	return ast.InvalidBlock{
		Message:  fmt.Sprintf("directive %q: %v", name, err),
		Severity: ast.SeverityError,
		Source:   ast.Fragment{Source: source, Position: pos},
	}
}

// InvalidSpanFor is the span-level analogue.
func InvalidSpanFor(name string, err error, pos cursor.Position, source string) ast.Span {
	return ast.InvalidSpan{
		Message:  fmt.Sprintf("role %q: %v", name, err),
		Severity: ast.SeverityError,
		Source:   ast.Fragment{Source: source, Position: pos},
	}
}
