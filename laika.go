// Package laika ties the parser, directive, configuration, rewrite,
// and render layers together into the document-tree/transformer API
// of §3.4/§6.1. Grounded on the teacher's Configuration/Document split
// (org/document.go: a long-lived Configuration carrying sane defaults
// and hooks, handed to a one-shot Document produced by Parse), this
// package generalizes that shape from "one org-mode Document" to
// "any registered dialect, producing a Document that can sit inside a
// virtual-path document tree."
package laika

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/laikadoc/laika/ast"
	"github.com/laikadoc/laika/config"
	"github.com/laikadoc/laika/cursor"
	"github.com/laikadoc/laika/diag"
	"github.com/laikadoc/laika/directive"
	"github.com/laikadoc/laika/markup/markdown"
	"github.com/laikadoc/laika/markup/rst"
	"github.com/laikadoc/laika/render"
	"github.com/laikadoc/laika/rewrite"
)

// Dialect is what a markup front-end (markup/markdown, markup/rst)
// supplies to the transformer: a block-only pass for the "parse,
// inline markup deferred" shape and a full pass that expands inline
// markup too, matching both packages' existing Parser method sets.
type Dialect interface {
	ParseBlocks(input string) []ast.Block
	Parse(input string) []ast.Block
}

// Configuration is the long-lived, reusable driver: dialect registry,
// directive/role registry, default settings, logging and file-reading
// hooks (kept exactly in the teacher's shape per org.Configuration),
// plus the Invalid-node policy and config/extension state a
// Transform call needs. Safe for concurrent read-only use once built;
// WithConfigValue/Using mutate it and are meant to be called during
// setup, not from concurrent goroutines (§5: parallelism happens at
// document granularity, not inside one Configuration).
type Configuration struct {
	Dialects        map[string]Dialect
	Directives      *directive.Registry
	DefaultSettings map[string]string
	InvalidPolicy   rewrite.InvalidPolicy
	AutoSection     bool
	Log             *log.Logger
	ReadFile        func(filename string) ([]byte, error)

	extensions []render.ExtensionBundle
	values     map[string]config.Value
}

// New returns a Configuration with sane defaults: both bundled
// dialects registered under "markdown"/"rst", directive calls wired
// into markdown via NewWithDirectives the same way rst always accepts
// a registry, the default Invalid policy of §7, and the teacher's own
// logging/file-reading hook defaults (org.New()'s Log/ReadFile), since
// those ambient hooks stay regardless of which document-tree features
// are in scope.
func New() *Configuration {
	reg := directive.NewRegistry("")
	c := &Configuration{
		Directives:      reg,
		DefaultSettings: map[string]string{},
		InvalidPolicy:   rewrite.DefaultInvalidPolicy(),
		AutoSection:     true,
		Log:             log.New(os.Stderr, "laika: ", 0),
		ReadFile:        os.ReadFile,
	}
	c.Dialects = map[string]Dialect{
		"markdown": markdown.NewWithDirectives(reg),
		"rst":      rst.New(reg),
	}
	return c
}

// Silent disables warning logging, mirroring org.Configuration.Silent.
func (c *Configuration) Silent() *Configuration {
	c.Log = log.New(io.Discard, "", 0)
	return c
}

// WithConfigValue records a HOCON-lite config value under key, to be
// deep-merged and substitution-resolved (§3.5/§4.6) the next time a
// Document is produced. Returns c so calls can chain the way
// org.Configuration.Parse/Silent do.
func (c *Configuration) WithConfigValue(key string, v config.Value) *Configuration {
	if c.values == nil {
		c.values = map[string]config.Value{}
	}
	c.values[key] = v
	return c
}

// Using registers a render extension bundle (§6.4) applied to every
// Renderer passed to Transform.
func (c *Configuration) Using(bundle render.ExtensionBundle) *Configuration {
	c.extensions = append(c.extensions, bundle)
	return c
}

// Document is one parsed, tree-addressable unit: its virtual Path
// (§3.4: "/a/b/c"-style), its parsed content rooted at a RootElement,
// any named fragments carved out of it by directives (§3.4's
// fragments map), the resolved configuration in effect for it, and
// any non-fatal diagnostics accumulated along the way.
type Document struct {
	Path        string
	Content     ast.Block // always an ast.RootElement
	Fragments   map[string]ast.Node
	Config      config.Value
	Errors      []error
	Diagnostics diag.Collector
}

func (c *Configuration) dialect(format string) (Dialect, error) {
	d, ok := c.Dialects[format]
	if !ok {
		return nil, fmt.Errorf("laika: no dialect registered for format %q", format)
	}
	return d, nil
}

func (c *Configuration) resolvedConfig() (config.Value, error) {
	obj := make(map[string]config.Value, len(c.values))
	for k, v := range c.values {
		obj[k] = v
	}
	root := config.Object(obj)
	return config.Resolve(root)
}

// ParseUnresolved runs the block and span passes for format but skips
// every rewrite phase: link ids, footnote references, and
// substitutions are left exactly as the dialect produced them
// (§6.1's parse_unresolved). Useful for tooling that wants to inspect
// or transform raw parser output before reference resolution runs.
func (c *Configuration) ParseUnresolved(format, input string) (*Document, error) {
	d, err := c.dialect(format)
	if err != nil {
		return nil, err
	}
	blocks := d.Parse(input)
	cfg, cfgErr := c.resolvedConfig()
	doc := &Document{
		Content:   ast.RootElement{Content: blocks},
		Fragments: map[string]ast.Node{},
		Config:    cfg,
	}
	if cfgErr != nil {
		doc.Errors = append(doc.Errors, cfgErr)
		doc.Diagnostics.Add(diag.New(diag.KindConfig, cfgErr.Error(), ast.SeverityError, doc.Path, cursor.Position{}, "", cfgErr))
	}
	return doc, nil
}

// Parse runs ParseUnresolved and then every rewrite phase of §4.5/§7 in
// order: link-definition harvesting, substitution-definition
// harvesting, substitution expansion, link resolution, footnote
// numbering, section nesting, and Invalid-node policy filtering. An
// unknown format is reported as a plain error with a nil Document; any
// other returned error is a *rewrite.InvalidDocument, and in that case
// the Document itself is still populated (with Invalid nodes below
// the policy's RenderThreshold already removed) so a caller can choose
// to render it anyway.
func (c *Configuration) Parse(format, input string) (*Document, error) {
	doc, err := c.ParseUnresolved(format, input)
	if err != nil {
		return nil, err
	}
	root := doc.Content.(ast.RootElement)
	blocks := root.Content

	linkTargets := rewrite.CollectLinkDefinitions(blocks)
	subDefs := c.harvestSubstitutions(blocks, format)
	blocks = rewrite.RemoveLinkDefinitions(blocks)

	blocks, subErr := rewrite.ResolveSubstitutions(blocks, subDefs)
	if subErr != nil {
		doc.Errors = append(doc.Errors, subErr)
		doc.Diagnostics.Add(diag.New(diag.KindCycle, subErr.Error(), ast.SeverityError, doc.Path, cursor.Position{}, "", subErr))
	}
	blocks = rewrite.ResolveLinks(blocks, linkTargets)
	numbers := rewrite.FootnoteOrder(blocks)
	blocks = rewrite.ApplyFootnoteNumbers(blocks, numbers)
	blocks = rewrite.BuildSections(blocks, c.AutoSection)

	filtered, invErr := rewrite.CollectInvalid(blocks, c.InvalidPolicy)
	doc.Content = ast.RootElement{Content: filtered}
	if invErr != nil {
		var invDoc *rewrite.InvalidDocument
		if errors.As(invErr, &invDoc) {
			for _, cause := range invDoc.Errors.Errors {
				if d, ok := cause.(*diag.Diagnostic); ok {
					d.Path = doc.Path
					doc.Diagnostics.Add(d)
				}
			}
		}
		return doc, invErr
	}
	return doc, nil
}

// harvestSubstitutions pulls rST-style substitution definitions back
// out of the InvalidBlock carriers markup/rst.parseSubstitutionDef
// produces (Message: "substitution:"+name), re-parsing each
// replacement's inline markup through the same dialect so the
// resulting rewrite.SubstitutionDefinitions map holds real spans
// rather than raw source text.
func (c *Configuration) harvestSubstitutions(blocks []ast.Block, format string) rewrite.SubstitutionDefinitions {
	defs := rewrite.SubstitutionDefinitions{}
	d, err := c.dialect(format)
	if err != nil {
		return defs
	}
	var walk func([]ast.Block)
	walk = func(bs []ast.Block) {
		for _, b := range bs {
			if inv, ok := b.(ast.InvalidBlock); ok && strings.HasPrefix(inv.Message, "substitution:") {
				name := strings.TrimPrefix(inv.Message, "substitution:")
				defs[name] = spansOf(d.Parse(inv.Source.Source))
			}
			if bc, ok := b.(ast.BlockContainer); ok {
				walk(bc.ChildBlocks())
			}
		}
	}
	walk(blocks)
	return defs
}

// spansOf extracts the span sequence from a one-paragraph parse
// result, the shape a substitution replacement or directive-call span
// body always takes.
func spansOf(blocks []ast.Block) []ast.Span {
	if len(blocks) == 0 {
		return nil
	}
	if p, ok := blocks[0].(ast.Paragraph); ok {
		return p.Spans
	}
	return nil
}

// Transform runs Parse and renders the result through r, composing
// any extension bundles registered via Using onto r first (§6.1's
// transform: parse + render in one call, surfacing InvalidDocument on
// fatal Invalid nodes instead of a half-rendered string).
func (c *Configuration) Transform(format, input string, r *render.Renderer) (string, error) {
	doc, err := c.Parse(format, input)
	if err != nil {
		return "", err
	}
	render.Compose(r, c.extensions...)
	root := doc.Content.(ast.RootElement)
	return r.RenderAll(root.Content), nil
}
