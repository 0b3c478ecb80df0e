// Package render implements the L7 renderer-hook contract of §6: a
// Formatter abstraction a concrete output format's node handlers use
// to emit indentation-aware output, a Renderer that tries
// override-registered handlers before its format's defaults, and an
// ExtensionBundle composition model (config-struct merging, no
// inheritance) so multiple extensions can each contribute handlers to
// the same render pass.
//
// Grounded on the teacher's exporter pattern (go-org ships separate
// org.HTMLWriter/org.OrgWriter types, each a big switch-on-node-type
// visitor writing into a strings.Builder with manual indent tracking);
// this package factors that pattern into a reusable Formatter/Renderer
// pair so a concrete format only supplies per-node-type handler
// functions instead of reimplementing indentation and path
// translation from scratch.
package render

import (
	"fmt"
	"strings"

	"github.com/laikadoc/laika/ast"
)

// Formatter is what a node handler uses to produce output. It is
// passed to every handler so handlers never touch a raw
// strings.Builder directly, keeping indentation and path translation
// centralized.
type Formatter interface {
	// Child renders a single child node (of whichever category fits
	// the call site) by dispatching back through the owning Renderer.
	Child(n ast.Node) string
	// Children renders and concatenates a list of nodes.
	Children(ns []ast.Node) string
	// IndentedElement renders body one indent level deeper.
	IndentedElement(body string) string
	// TextElement appends raw text without going through Child/Children
	// (used for raw/Literal content that must not be escaped again).
	TextElement(text string) string
	// WithoutIndentation renders body with indentation suppressed,
	// for constructs (raw HTML blocks, for instance) that must not be
	// reflowed.
	WithoutIndentation(body string) string
	// TranslatePath maps an InternalTarget's document path into the
	// format's own addressing scheme (e.g. "guide/intro" -> "guide/intro.html").
	TranslatePath(path string) string
	// Style resolves n's computed style properties against the
	// Renderer's cascade (§3.6/§4.7), keyed by n's concrete type name.
	Style(typeName string, n ast.Node) map[string]string
}

// NodeHandler renders one concrete node type into output text using f
// for any nested rendering it needs to do.
type NodeHandler func(f Formatter, n ast.Node) (string, bool)

// Renderer drives one output format: a name (for error messages and
// ExtensionBundle merge logging), an ordered list of override handlers
// tried first, and a default handler tried last.
type Renderer struct {
	Format    string
	Styles    *StyleDeclarationSet
	overrides []NodeHandler
	defaults  []NodeHandler
	indent    int
	translate func(string) string
}

// New builds a Renderer for the named format. translatePath may be nil,
// in which case paths pass through unchanged.
func New(format string, translatePath func(string) string) *Renderer {
	if translatePath == nil {
		translatePath = func(p string) string { return p }
	}
	return &Renderer{Format: format, translate: translatePath, Styles: NewStyleDeclarationSet()}
}

// RegisterDefault adds a fallback handler, tried after all overrides.
func (r *Renderer) RegisterDefault(h NodeHandler) { r.defaults = append(r.defaults, h) }

// RegisterOverride adds a handler tried before the format's own
// defaults — this is how an ExtensionBundle customizes built-in
// rendering without subclassing (§6.4: "override-registration tried
// before default").
func (r *Renderer) RegisterOverride(h NodeHandler) { r.overrides = append(r.overrides, h) }

// Render renders a single node, trying overrides then defaults.
func (r *Renderer) Render(n ast.Node) string {
	f := &formatter{r: r}
	return f.Child(n)
}

// RenderAll renders a list of blocks as a document by concatenating
// each block's output in order. No separator is added between blocks;
// any line break comes from the handlers' own output.
func (r *Renderer) RenderAll(blocks []ast.Block) string {
	nodes := make([]ast.Node, len(blocks))
	for i, b := range blocks {
		nodes[i] = b
	}
	f := &formatter{r: r}
	return f.Children(nodes)
}

func (r *Renderer) dispatch(f Formatter, n ast.Node) string {
	for _, h := range r.overrides {
		if out, ok := h(f, n); ok {
			return out
		}
	}
	for _, h := range r.defaults {
		if out, ok := h(f, n); ok {
			return out
		}
	}
	return fmt.Sprintf("<!-- unhandled node %T -->", n)
}

type formatter struct {
	r      *Renderer
	indent int
}

func (f *formatter) Child(n ast.Node) string { return f.r.dispatch(f, n) }

func (f *formatter) Children(ns []ast.Node) string {
	var b strings.Builder
	for _, n := range ns {
		b.WriteString(f.Child(n))
	}
	return b.String()
}

func (f *formatter) IndentedElement(body string) string {
	pad := strings.Repeat("  ", f.indent+1)
	lines := strings.Split(strings.TrimRight(body, "\n"), "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = pad + l
		}
	}
	return strings.Join(lines, "\n") + "\n"
}

func (f *formatter) TextElement(text string) string { return text }

func (f *formatter) WithoutIndentation(body string) string { return body }

func (f *formatter) TranslatePath(path string) string { return f.r.translate(path) }

func (f *formatter) Style(typeName string, n ast.Node) map[string]string {
	if f.r.Styles == nil {
		return nil
	}
	return f.r.Styles.ComputedStyle(typeName, n.NodeOptions())
}

// ExtensionBundle groups related handler registrations (and, per
// §6.4's config-struct-not-inheritance rule, any format-agnostic
// configuration an extension wants to contribute) so a caller can
// compose several bundles onto one Renderer without subclassing it.
type ExtensionBundle struct {
	Name     string
	Defaults []NodeHandler
	Override []NodeHandler
}

// Apply registers bundle's handlers onto r, overrides first so later
// bundles in a composition list win ties over earlier ones only when
// they themselves register an override (default handler order is
// insertion order, first match wins, so composition order matters).
func (b ExtensionBundle) Apply(r *Renderer) {
	for _, h := range b.Override {
		r.RegisterOverride(h)
	}
	for _, h := range b.Defaults {
		r.RegisterDefault(h)
	}
}

// Compose applies every bundle to r in order.
func Compose(r *Renderer, bundles ...ExtensionBundle) {
	for _, b := range bundles {
		b.Apply(r)
	}
}
