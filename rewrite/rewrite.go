// Package rewrite implements the L6 phase engine of §4.5/§7: resolving
// cross-references (links, footnotes, substitutions), building nested
// sections from a flat header sequence, and applying the Invalid-node
// render/fail filter policy with aggregated diagnostics.
//
// Grounded on the teacher's Document-level error bookkeeping
// (org/error.go's ParseError/ErrorType and Document.AddError/HasErrors/
// WriteErrors), generalized from "a flat slice of errors attached to
// one Document" into the spec's "Invalid nodes stay in the tree,
// policy decides render vs. fail, multi-cause failures aggregate"
// model (§7), using github.com/hashicorp/go-multierror for the
// aggregation the teacher did by hand with a slice and a loop.
package rewrite

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/laikadoc/laika/ast"
	"github.com/laikadoc/laika/diag"
)

// LinkTargets maps a lowercased link id to its resolved URL/title,
// gathered from LinkDefinition blocks during Resolve (§4.5: link-id
// matching is case-insensitive).
type LinkTargets map[string]ast.LinkDefinition

// CollectLinkDefinitions walks blocks (via BlockContainer) gathering
// every LinkDefinition, keyed by its already-lowercased ID.
func CollectLinkDefinitions(blocks []ast.Block) LinkTargets {
	out := LinkTargets{}
	var walk func([]ast.Block)
	walk = func(bs []ast.Block) {
		for _, b := range bs {
			if ld, ok := b.(ast.LinkDefinition); ok {
				out[strings.ToLower(ld.ID)] = ld
				continue
			}
			if bc, ok := b.(ast.BlockContainer); ok {
				walk(bc.ChildBlocks())
			}
		}
	}
	walk(blocks)
	return out
}

// RemoveLinkDefinitions drops LinkDefinition blocks from the final
// tree: once collected by CollectLinkDefinitions they carry no render
// output of their own (§4.5).
func RemoveLinkDefinitions(blocks []ast.Block) []ast.Block {
	out, _ := ast.RewriteBlocks(blocks, func(b ast.Block) ast.BlockAction {
		if _, ok := b.(ast.LinkDefinition); ok {
			return ast.RemoveBlock()
		}
		return ast.RetainBlock()
	})
	return out
}

// ResolveLinks rewrites every SpanLink/Image carrying an
// UnresolvedTarget into an ExternalTarget (or an InvalidSpan when the
// id isn't found among targets), per §4.5.
func ResolveLinks(blocks []ast.Block, targets LinkTargets) []ast.Block {
	out, _ := ast.RewriteSpans(blocks, func(s ast.Span) ast.SpanAction {
		switch v := s.(type) {
		case ast.SpanLink:
			unresolved, ok := v.Target.(ast.UnresolvedTarget)
			if !ok {
				return ast.RetainSpan()
			}
			def, found := targets[strings.ToLower(unresolved.RefID)]
			if !found {
				return ast.ReplaceSpan(ast.InvalidSpan{
					Message:  fmt.Sprintf("unresolved link id reference: %s", unresolved.RefID),
					Severity: ast.SeverityError,
					Source:   ast.Fragment{Source: unresolved.RefID, Position: v.Position()},
				})
			}
			v.Target = ast.ExternalTarget{URL: def.URL}
			if v.Title == nil && def.Title != "" {
				title := def.Title
				v.Title = &title
			}
			return ast.ReplaceSpan(v)
		case ast.Image:
			unresolved, ok := v.Target.(ast.UnresolvedTarget)
			if !ok {
				return ast.RetainSpan()
			}
			def, found := targets[strings.ToLower(unresolved.RefID)]
			if !found {
				return ast.ReplaceSpan(ast.InvalidSpan{
					Message:  fmt.Sprintf("unresolved link id reference: %s", unresolved.RefID),
					Severity: ast.SeverityError,
					Source:   ast.Fragment{Source: unresolved.RefID, Position: v.Position()},
				})
			}
			v.Target = ast.ExternalTarget{URL: def.URL}
			if v.Title == nil && def.Title != "" {
				title := def.Title
				v.Title = &title
			}
			return ast.ReplaceSpan(v)
		default:
			return ast.RetainSpan()
		}
	})
	return out
}

// SubstitutionDefinitions maps a (case-sensitive, §4.5) substitution
// name to its replacement span sequence.
type SubstitutionDefinitions map[string][]ast.Span

// ResolveSubstitutions replaces every SubstitutionReference with its
// definition's span sequence, detecting cycles (a substitution whose
// expansion itself references the substitution being expanded) rather
// than looping forever.
func ResolveSubstitutions(blocks []ast.Block, defs SubstitutionDefinitions) ([]ast.Block, error) {
	var errs *multierror.Error
	visiting := map[string]bool{}
	var expand func(name string) ([]ast.Span, error)
	expand = func(name string) ([]ast.Span, error) {
		if visiting[name] {
			return nil, fmt.Errorf("substitution cycle detected at %q", name)
		}
		def, ok := defs[name]
		if !ok {
			return nil, fmt.Errorf("no substitution registered for |%s|", name)
		}
		visiting[name] = true
		defer delete(visiting, name)
		out, _ := ast.RewriteSpanList(def, func(s ast.Span) ast.SpanAction {
			ref, ok := s.(ast.SubstitutionReference)
			if !ok {
				return ast.RetainSpan()
			}
			nested, err := expand(ref.Name)
			if err != nil {
				errs = multierror.Append(errs, err)
				return ast.RetainSpan()
			}
			return ast.ReplaceManySpans(nested)
		})
		return out, nil
	}

	out, _ := ast.RewriteSpans(blocks, func(s ast.Span) ast.SpanAction {
		ref, ok := s.(ast.SubstitutionReference)
		if !ok {
			return ast.RetainSpan()
		}
		replacement, err := expand(ref.Name)
		if err != nil {
			errs = multierror.Append(errs, err)
			return ast.ReplaceSpan(ast.InvalidSpan{
				Message:  err.Error(),
				Severity: ast.SeverityError,
				Source:   ast.Fragment{Source: ref.Name, Position: ref.Position()},
			})
		}
		return ast.ReplaceManySpans(replacement)
	})
	return out, errs.ErrorOrNil()
}

// footnoteSymbols is rST's autosymbol footnote sequence (§4.5); once
// exhausted, autoSymbol repeats it doubling the symbol on each further
// pass ("*", "**", ... after ten symbols have been used once).
var footnoteSymbols = []string{"*", "†", "‡", "§", "¶", "#", "♠", "♥", "♦", "♣"}

// autoSymbol returns the marker for the index-th (0-based) "*"-labeled
// autosymbol footnote.
func autoSymbol(index int) string {
	reps := index/len(footnoteSymbols) + 1
	return strings.Repeat(footnoteSymbols[index%len(footnoteSymbols)], reps)
}

// footnoteAssignment is one resolved (Number, Display) pair a Footnote
// definition or FootnoteReference is stamped with.
type footnoteAssignment struct {
	Number  int
	Display string
}

// FootnoteNumbering is the numbering model §4.5 describes: stable
// assignments keyed by raw label for the numeric and named-autonumber
// ("#name") schemes, plus separate document-order queues for the two
// *anonymous* schemes ("#" and "*") — anonymous labels can't be keyed
// by the label string alone since every anonymous footnote in a
// document shares the same raw label ("#" or "*"); distinct anonymous
// definitions/references are instead paired up by the order they're
// encountered, which is what ApplyFootnoteNumbers' two passes do.
type FootnoteNumbering struct {
	byLabel    map[string]footnoteAssignment
	anonNumber []footnoteAssignment
	anonSymbol []footnoteAssignment
}

func (n FootnoteNumbering) lookup(label string, numberIdx, symbolIdx *int) (footnoteAssignment, bool) {
	switch label {
	case "#":
		if *numberIdx >= len(n.anonNumber) {
			return footnoteAssignment{}, false
		}
		a := n.anonNumber[*numberIdx]
		*numberIdx++
		return a, true
	case "*":
		if *symbolIdx >= len(n.anonSymbol) {
			return footnoteAssignment{}, false
		}
		a := n.anonSymbol[*symbolIdx]
		*symbolIdx++
		return a, true
	default:
		a, ok := n.byLabel[label]
		return a, ok
	}
}

// FootnoteOrder walks Footnote definitions in document order and
// assigns each a number/display marker per §4.5's four labeling
// schemes: a numeric label ("3") keeps its own literal value; "#"
// autonumbers claim the lowest unused positive integer; "*"
// autosymbols draw from footnoteSymbols, doubling past ten; "#name"
// named autonumbers resolve to one stable number shared by every
// definition/reference using that name. Numeric labels are reserved
// before any autonumber is claimed, so an autonumber never collides
// with an explicit literal number appearing anywhere in the document.
func FootnoteOrder(blocks []ast.Block) FootnoteNumbering {
	var labels []string
	var walk func([]ast.Block)
	walk = func(bs []ast.Block) {
		for _, b := range bs {
			if fn, ok := b.(ast.Footnote); ok {
				labels = append(labels, fn.Label)
			}
			if bc, ok := b.(ast.BlockContainer); ok {
				walk(bc.ChildBlocks())
			}
		}
	}
	walk(blocks)

	used := map[int]bool{}
	for _, label := range labels {
		if n, err := strconv.Atoi(label); err == nil {
			used[n] = true
		}
	}
	claim := func() int {
		n := 1
		for used[n] {
			n++
		}
		used[n] = true
		return n
	}

	byLabel := map[string]footnoteAssignment{}
	var anonNumber, anonSymbol []footnoteAssignment
	symbolIdx := 0
	for _, label := range labels {
		if n, err := strconv.Atoi(label); err == nil {
			byLabel[label] = footnoteAssignment{Number: n, Display: label}
			continue
		}
		switch {
		case label == "#":
			n := claim()
			anonNumber = append(anonNumber, footnoteAssignment{Number: n, Display: strconv.Itoa(n)})
		case label == "*":
			anonSymbol = append(anonSymbol, footnoteAssignment{Display: autoSymbol(symbolIdx)})
			symbolIdx++
		case strings.HasPrefix(label, "#"):
			if _, assigned := byLabel[label]; !assigned {
				n := claim()
				byLabel[label] = footnoteAssignment{Number: n, Display: strconv.Itoa(n)}
			}
		default:
			// Not one of §4.5's four label forms (the rST parser never
			// produces one); fall back to stable first-seen numbering.
			if _, assigned := byLabel[label]; !assigned {
				n := claim()
				byLabel[label] = footnoteAssignment{Number: n, Display: strconv.Itoa(n)}
			}
		}
	}
	return FootnoteNumbering{byLabel: byLabel, anonNumber: anonNumber, anonSymbol: anonSymbol}
}

// ApplyFootnoteNumbers stamps both Footnote definitions and
// FootnoteReference spans from numbering, in two separate document-
// order passes so the anonymous ("#"/"*") schemes' queues line up a
// definition with its corresponding reference by relative position.
// A reference with no matching assignment becomes an InvalidSpan.
func ApplyFootnoteNumbers(blocks []ast.Block, numbering FootnoteNumbering) []ast.Block {
	defNumberIdx, defSymbolIdx := 0, 0
	out, _ := ast.RewriteBlocks(blocks, func(b ast.Block) ast.BlockAction {
		fn, ok := b.(ast.Footnote)
		if !ok {
			return ast.RetainBlock()
		}
		a, found := numbering.lookup(fn.Label, &defNumberIdx, &defSymbolIdx)
		if !found {
			return ast.RetainBlock()
		}
		fn.Number, fn.Display = a.Number, a.Display
		return ast.ReplaceBlock(fn)
	})

	refNumberIdx, refSymbolIdx := 0, 0
	out, _ = ast.RewriteSpans(out, func(s ast.Span) ast.SpanAction {
		ref, ok := s.(ast.FootnoteReference)
		if !ok {
			return ast.RetainSpan()
		}
		a, found := numbering.lookup(ref.Label, &refNumberIdx, &refSymbolIdx)
		if !found {
			return ast.ReplaceSpan(ast.InvalidSpan{
				Message:  fmt.Sprintf("no footnote definition for label %q", ref.Label),
				Severity: ast.SeverityError,
				Source:   ast.Fragment{Source: ref.Label, Position: ref.Position()},
			})
		}
		ref.Number, ref.Display = a.Number, a.Display
		return ast.ReplaceSpan(ref)
	})
	return out
}

// BuildSections nests a flat sequence of Header/content blocks into
// Section blocks according to heading level, the Build phase of §4.5.
// Autosectionnumbering, when enabled, stamps each Section's Header
// with a hierarchical "section-1-2-3"-style id via Options.WithID.
func BuildSections(blocks []ast.Block, autoNumber bool) []ast.Block {
	type frame struct {
		level    ast.HeaderLevel
		header   ast.Header
		content  []ast.Block
		ordinals []int // one counter per nesting depth, for autoNumber
	}
	root := &frame{level: 0, ordinals: []int{0}}
	stack := []*frame{root}

	closeTo := func(level ast.HeaderLevel) {
		for len(stack) > 1 && stack[len(stack)-1].level >= level {
			done := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			sec := ast.Section{Header: done.header, Content: done.content}
			sec.Pos = done.header.Position()
			parent := stack[len(stack)-1]
			parent.content = append(parent.content, sec)
		}
	}

	for _, b := range blocks {
		h, ok := b.(ast.Header)
		if !ok {
			top := stack[len(stack)-1]
			top.content = append(top.content, b)
			continue
		}
		closeTo(h.Level)
		parent := stack[len(stack)-1]
		depth := len(stack)
		for len(parent.ordinals) < depth {
			parent.ordinals = append(parent.ordinals, 0)
		}
		parent.ordinals[depth-1]++
		headerOut := h
		if autoNumber {
			path := make([]string, 0, depth)
			for i := 0; i < depth && i < len(parent.ordinals); i++ {
				path = append(path, fmt.Sprintf("%d", parent.ordinals[i]))
			}
			headerOut.Opts = headerOut.Opts.WithID("section-" + strings.Join(path, "-"))
		}
		stack = append(stack, &frame{level: h.Level, header: headerOut, ordinals: append([]int{}, parent.ordinals...)})
	}
	closeTo(0)
	return root.content
}

// InvalidPolicy governs how Invalid nodes are treated at render/fail
// time (§7): a node at or above RenderThreshold is still emitted by
// the renderer; a node at or above FailThreshold turns the whole
// transform into an error via InvalidDocument.
type InvalidPolicy struct {
	RenderThreshold ast.Severity
	FailThreshold   ast.Severity
}

// DefaultInvalidPolicy renders warnings and above, fails on error and
// above, matching §7's stated defaults.
func DefaultInvalidPolicy() InvalidPolicy {
	return InvalidPolicy{RenderThreshold: ast.SeverityWarning, FailThreshold: ast.SeverityError}
}

// InvalidDocument aggregates every Invalid node that met FailThreshold
// into one error, via go-multierror, instead of the caller having to
// discover failures one at a time.
type InvalidDocument struct {
	Errors *multierror.Error
}

func (e *InvalidDocument) Error() string { return e.Errors.Error() }
func (e *InvalidDocument) Unwrap() error { return e.Errors }

// CollectInvalid walks the tree for InvalidBlock/InvalidSpan nodes
// meeting or exceeding policy.FailThreshold, returning an
// *InvalidDocument when any are found (nil otherwise). It also returns
// the tree with every Invalid node that falls below
// policy.RenderThreshold removed.
func CollectInvalid(blocks []ast.Block, policy InvalidPolicy) ([]ast.Block, error) {
	var failures []error
	filtered, _ := ast.RewriteBlocks(blocks, func(b ast.Block) ast.BlockAction {
		inv, ok := b.(ast.InvalidBlock)
		if !ok {
			return ast.RetainBlock()
		}
		if inv.Severity.AtLeast(policy.FailThreshold) {
			failures = append(failures, diag.New(diag.KindInvalidNode, inv.Message, inv.Severity, "", inv.Source.Position, inv.Source.Source, nil))
		}
		if !inv.Severity.AtLeast(policy.RenderThreshold) {
			return ast.RemoveBlock()
		}
		return ast.RetainBlock()
	})
	filtered, _ = ast.RewriteSpans(filtered, func(s ast.Span) ast.SpanAction {
		inv, ok := s.(ast.InvalidSpan)
		if !ok {
			return ast.RetainSpan()
		}
		if inv.Severity.AtLeast(policy.FailThreshold) {
			failures = append(failures, diag.New(diag.KindInvalidNode, inv.Message, inv.Severity, "", inv.Source.Position, inv.Source.Source, nil))
		}
		if !inv.Severity.AtLeast(policy.RenderThreshold) {
			return ast.RemoveSpan()
		}
		return ast.RetainSpan()
	})
	if len(failures) == 0 {
		return filtered, nil
	}
	sort.Slice(failures, func(i, j int) bool { return failures[i].Error() < failures[j].Error() })
	var merr *multierror.Error
	for _, f := range failures {
		merr = multierror.Append(merr, f)
	}
	return filtered, &InvalidDocument{Errors: merr}
}

