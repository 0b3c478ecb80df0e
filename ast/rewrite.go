package ast

// ActionKind is the verdict a rewrite function returns for one node.
type ActionKind int

const (
	ActionRetain ActionKind = iota
	ActionReplace
	ActionRemove
	ActionReplaceMany
)

// BlockAction is the Action sum type specialized to Block, returned by
// a rewrite_blocks function.
type BlockAction struct {
	Kind    ActionKind
	One     Block
	Many    []Block
}

func RetainBlock() BlockAction                  { return BlockAction{Kind: ActionRetain} }
func ReplaceBlock(b Block) BlockAction          { return BlockAction{Kind: ActionReplace, One: b} }
func RemoveBlock() BlockAction                  { return BlockAction{Kind: ActionRemove} }
func ReplaceManyBlocks(bs []Block) BlockAction  { return BlockAction{Kind: ActionReplaceMany, Many: bs} }

// SpanAction is the Span-category analogue.
type SpanAction struct {
	Kind ActionKind
	One  Span
	Many []Span
}

func RetainSpan() SpanAction                 { return SpanAction{Kind: ActionRetain} }
func ReplaceSpan(s Span) SpanAction          { return SpanAction{Kind: ActionReplace, One: s} }
func RemoveSpan() SpanAction                 { return SpanAction{Kind: ActionRemove} }
func ReplaceManySpans(ss []Span) SpanAction  { return SpanAction{Kind: ActionReplaceMany, Many: ss} }

// BlockRule is a rewrite_blocks function.
type BlockRule func(Block) BlockAction

// SpanRule is a rewrite_spans function.
type SpanRule func(Span) SpanAction

// RewriteBlocks descends bottom-up through any BlockContainer, running
// fn on each block after its own block children have already been
// rewritten. It never looks inside SpanHolder content: spans are the
// business of RewriteSpans. If fn returns Retain for every node the
// same slice (by contents) is handed back with changed == false, so
// callers can skip producing a new tree.
func RewriteBlocks(nodes []Block, fn BlockRule) ([]Block, bool) {
	changed := false
	out := make([]Block, 0, len(nodes))
	for _, n := range nodes {
		n2 := n
		if bc, ok := n.(BlockContainer); ok {
			newChildren, childChanged := RewriteBlocks(bc.ChildBlocks(), fn)
			if childChanged {
				n2 = bc.WithChildBlocks(newChildren)
				changed = true
			}
		}
		act := fn(n2)
		switch act.Kind {
		case ActionRetain:
			out = append(out, n2)
		case ActionReplace:
			out = append(out, act.One)
			changed = true
		case ActionRemove:
			changed = true
		case ActionReplaceMany:
			out = append(out, act.Many...)
			changed = true
		}
	}
	if !changed {
		return nodes, false
	}
	return out, true
}

// RewriteSpans walks the full Block tree to reach every SpanHolder,
// and within each one rewrites its Span tree bottom-up through any
// SpanContainer, applying fn. Block structure itself is left alone;
// use RewriteBlocks for that.
func RewriteSpans(nodes []Block, fn SpanRule) ([]Block, bool) {
	changed := false
	out := make([]Block, 0, len(nodes))
	for _, n := range nodes {
		n2 := n
		if bc, ok := n.(BlockContainer); ok {
			newChildren, childChanged := RewriteSpans(bc.ChildBlocks(), fn)
			if childChanged {
				n2 = bc.WithChildBlocks(newChildren)
				changed = true
			}
		}
		if sh, ok := n2.(SpanHolder); ok {
			newSpans, spansChanged := RewriteSpanList(sh.ChildSpans(), fn)
			if spansChanged {
				n2 = sh.WithChildSpans(newSpans)
				changed = true
			}
		}
		out = append(out, n2)
	}
	if !changed {
		return nodes, false
	}
	return out, true
}

// RewriteSpanList rewrites a flat list of Span siblings bottom-up,
// descending into SpanContainers first.
func RewriteSpanList(spans []Span, fn SpanRule) ([]Span, bool) {
	changed := false
	out := make([]Span, 0, len(spans))
	for _, s := range spans {
		s2 := s
		if sc, ok := s.(SpanContainer); ok {
			newChildren, childChanged := RewriteSpanList(sc.ChildSpans(), fn)
			if childChanged {
				s2 = sc.WithChildSpans(newChildren)
				changed = true
			}
		}
		act := fn(s2)
		switch act.Kind {
		case ActionRetain:
			out = append(out, s2)
		case ActionReplace:
			out = append(out, act.One)
			changed = true
		case ActionRemove:
			changed = true
		case ActionReplaceMany:
			out = append(out, act.Many...)
			changed = true
		}
	}
	if !changed {
		return spans, false
	}
	return out, true
}
