package markup

import (
	"github.com/laikadoc/laika/ast"
	"github.com/laikadoc/laika/cursor"
)

// ExpandSpans runs the span pass over every UnresolvedSpanSequence
// placeholder left by the block pass (§4.3's two-pass discipline).
// Each placeholder's captured fragment is re-parsed with a cursor
// derived from its original position, so diagnostics raised during
// the span pass still cite the original input even though the span
// pass itself runs against a captured substring.
func ExpandSpans(blocks []ast.Block, engine SpanEngine) []ast.Block {
	out, _ := ast.RewriteSpans(blocks, func(s ast.Span) ast.SpanAction {
		seq, ok := s.(ast.UnresolvedSpanSequence)
		if !ok {
			return ast.RetainSpan()
		}
		fragCursor := cursor.Nested(seq.Source.Source, seq.Source.Position.StartLine, seq.Source.Position.StartColumn, 0)
		return ast.ReplaceManySpans(engine.ParseAt(fragCursor))
	})
	return out
}
