package laika

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/laikadoc/laika/ast"
)

// DocumentTree is one directory-like node of the §3.4 document tree:
// its own Document (nil for a path that exists only as a container of
// children, like a directory with no index document) plus its
// children keyed by path segment.
type DocumentTree struct {
	Path     string
	Document *Document
	Children map[string]*DocumentTree
}

// DocumentTreeRoot owns the whole tree, addressed by "/"-separated
// virtual paths (§3.4).
type DocumentTreeRoot struct {
	root *DocumentTree
}

// NewDocumentTreeRoot returns an empty tree rooted at "/".
func NewDocumentTreeRoot() *DocumentTreeRoot {
	return &DocumentTreeRoot{root: &DocumentTree{Path: "/", Children: map[string]*DocumentTree{}}}
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

// Insert places doc at its own Path, creating any intermediate
// directory nodes that don't exist yet. Insert is not safe to call
// concurrently with other Insert/Lookup calls on the same tree — §5
// parallelizes per-document Parse/Resolve, not tree mutation itself.
func (t *DocumentTreeRoot) Insert(doc *Document) {
	segs := splitPath(doc.Path)
	node := t.root
	built := ""
	for _, seg := range segs {
		built += "/" + seg
		child, ok := node.Children[seg]
		if !ok {
			child = &DocumentTree{Path: built, Children: map[string]*DocumentTree{}}
			node.Children[seg] = child
		}
		node = child
	}
	node.Document = doc
}

// Lookup returns the Document stored at path, if any.
func (t *DocumentTreeRoot) Lookup(path string) (*Document, bool) {
	segs := splitPath(path)
	node := t.root
	for _, seg := range segs {
		child, ok := node.Children[seg]
		if !ok {
			return nil, false
		}
		node = child
	}
	if node.Document == nil {
		return nil, false
	}
	return node.Document, true
}

// TOCEntry is one row of the tree-wide table of contents §5's
// cross-document aggregation step builds: a document's path paired
// with whatever title text its first Title/level-1 Header carries.
type TOCEntry struct {
	Path  string
	Title string
}

// ValidateCrossReferences is the synchronous, read-only aggregation
// pass of §5's cross-document supplement: it never spawns goroutines
// itself, takes docs as a plain snapshot slice (never a shared
// mutable map other goroutines could still be writing to), and is
// meant to run only after every document's own Resolve/Build phase
// (i.e. Configuration.Parse) has already completed independently —
// the happens-before edge is the caller's responsibility, typically a
// sync.WaitGroup joining one goroutine per document before this call.
// It checks every resolved InternalTarget against the known document
// paths and returns the tree-wide TOC sorted by path, plus an
// aggregated error (via go-multierror) for every broken reference
// found.
func (t *DocumentTreeRoot) ValidateCrossReferences(docs []Document) ([]TOCEntry, error) {
	known := make(map[string]bool, len(docs))
	for _, d := range docs {
		known[d.Path] = true
	}

	var merr *multierror.Error
	toc := make([]TOCEntry, 0, len(docs))
	for _, d := range docs {
		root, ok := d.Content.(ast.RootElement)
		if !ok {
			continue
		}
		toc = append(toc, TOCEntry{Path: d.Path, Title: firstTitle(root.Content)})

		ast.RewriteSpans(root.Content, func(s ast.Span) ast.SpanAction {
			var target ast.LinkTarget
			switch v := s.(type) {
			case ast.SpanLink:
				target = v.Target
			case ast.Image:
				target = v.Target
			default:
				return ast.RetainSpan()
			}
			if it, ok := target.(ast.InternalTarget); ok && !known[it.Path] {
				merr = multierror.Append(merr, fmt.Errorf("%s: broken cross-document reference to %q", d.Path, it.Path))
			}
			return ast.RetainSpan()
		})
	}

	sort.Slice(toc, func(i, j int) bool { return toc[i].Path < toc[j].Path })
	return toc, merr.ErrorOrNil()
}

// firstTitle walks blocks for the first Title or level-1 Header and
// flattens its spans into plain text, for the tree-wide TOC.
func firstTitle(blocks []ast.Block) string {
	var found string
	var walk func([]ast.Block) bool
	walk = func(bs []ast.Block) bool {
		for _, b := range bs {
			switch v := b.(type) {
			case ast.Title:
				found = plainText(v.Spans)
				return true
			case ast.Header:
				if v.Level == 1 {
					found = plainText(v.Spans)
					return true
				}
			}
			if bc, ok := b.(ast.BlockContainer); ok {
				if walk(bc.ChildBlocks()) {
					return true
				}
			}
		}
		return false
	}
	walk(blocks)
	return found
}

// plainText flattens a span sequence into its literal text content,
// descending into SpanContainers, ignoring spans (links, breaks) that
// carry no text of their own.
func plainText(spans []ast.Span) string {
	var b strings.Builder
	var walk func([]ast.Span)
	walk = func(ss []ast.Span) {
		for _, s := range ss {
			switch v := s.(type) {
			case ast.Text:
				b.WriteString(v.Content)
			case ast.Literal:
				b.WriteString(v.Content)
			default:
				if sc, ok := s.(ast.SpanContainer); ok {
					walk(sc.ChildSpans())
				}
			}
		}
	}
	walk(spans)
	return b.String()
}
