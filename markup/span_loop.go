package markup

import (
	"github.com/laikadoc/laika/ast"
	"github.com/laikadoc/laika/cursor"
	"github.com/laikadoc/laika/parse"
)

// SpanEngine drives the span parsing loop of §4.3: for each position
// it consumes text until a registered span parser's start character is
// reached, tries that character's candidates in registration order,
// and falls back to literal text when none apply.
type SpanEngine struct {
	table parse.Table[ast.Span]
}

// NewSpanEngine builds the dispatch table from the low-level
// SpanParserBuilders, already bound to a RecursiveParsers handle.
func NewSpanEngine(builders []SpanParserBuilder, rp RecursiveParsers) SpanEngine {
	parsers := make([]parse.Prefixed[ast.Span], 0, len(builders))
	for _, b := range builders {
		parsers = append(parsers, b.Build(rp))
	}
	return SpanEngine{table: parse.NewTable(parsers...)}
}

// Parse runs the loop across the entire input, returning the flat
// span sequence. ParseAt emits one Text span for each non-empty gap
// between recognized constructs, matching the teacher's behavior of
// only emitting a Text span when there's a non-empty gap.
func (e SpanEngine) Parse(input string) []ast.Span {
	return e.ParseAt(cursor.New(input))
}

// ParseAt runs the loop starting at an arbitrary cursor, used when
// re-parsing a captured fragment so that positions still point at the
// original source (§3.1, §4.3).
func (e SpanEngine) ParseAt(cur cursor.Cursor) []ast.Span {
	var spans []ast.Span
	textStart := cur
	flushText := func(end cursor.Cursor) {
		if end.Offset() > textStart.Offset() {
			content := textStart.Capture(end.Offset() - textStart.Offset())
			spans = append(spans, ast.Text{Content: content})
		}
	}
	for !cur.AtEOF() {
		b, _ := cur.CharAt(0)
		r := rune(b)
		if res, ok := e.table.TryAll(r, cur); ok {
			flushText(cur)
			spans = append(spans, res.Value)
			cur = res.Next
			textStart = cur
			continue
		}
		cur = cur.Advance(1)
	}
	flushText(cur)
	return spans
}
