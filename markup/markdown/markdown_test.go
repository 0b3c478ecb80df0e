package markdown

import (
	"testing"

	"github.com/laikadoc/laika/ast"
	"github.com/laikadoc/laika/directive"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func firstSpanText(t *testing.T, spans []ast.Span) string {
	t.Helper()
	require.Len(t, spans, 1)
	txt, ok := spans[0].(ast.Text)
	require.True(t, ok, "expected ast.Text, got %T", spans[0])
	return txt.Content
}

func TestParse_ATXHeading(t *testing.T) {
	blocks := New().Parse("## Section Title\n")
	require.Len(t, blocks, 1)
	h, ok := blocks[0].(ast.Header)
	require.True(t, ok, "expected ast.Header, got %T", blocks[0])
	assert.Equal(t, ast.HeaderLevel(2), h.Level)
	assert.Equal(t, "Section Title", firstSpanText(t, h.Spans))
}

func TestParse_Paragraph(t *testing.T) {
	blocks := New().Parse("hello world\n")
	require.Len(t, blocks, 1)
	p, ok := blocks[0].(ast.Paragraph)
	require.True(t, ok, "expected ast.Paragraph, got %T", blocks[0])
	assert.Equal(t, "hello world", firstSpanText(t, p.Spans))
}

func TestParse_ThematicBreak(t *testing.T) {
	blocks := New().Parse("---\n")
	require.Len(t, blocks, 1)
	_, ok := blocks[0].(ast.Rule)
	assert.True(t, ok, "expected ast.Rule, got %T", blocks[0])
}

func TestParse_FencedCodeBlock(t *testing.T) {
	blocks := New().ParseBlocks("```go\nfmt.Println(1)\n```\n")
	require.Len(t, blocks, 1)
	c, ok := blocks[0].(ast.CodeBlock)
	require.True(t, ok, "expected ast.CodeBlock, got %T", blocks[0])
	assert.Equal(t, "go", c.Lang)
	require.Len(t, c.Spans, 1)
	lit, ok := c.Spans[0].(ast.Literal)
	require.True(t, ok)
	assert.Equal(t, "fmt.Println(1)", lit.Content)
}

func TestParse_BulletList(t *testing.T) {
	blocks := New().ParseBlocks("- one\n- two\n")
	require.Len(t, blocks, 1)
	l, ok := blocks[0].(ast.BulletList)
	require.True(t, ok, "expected ast.BulletList, got %T", blocks[0])
	assert.Len(t, l.Items, 2)
}

func TestParse_OrderedList(t *testing.T) {
	blocks := New().ParseBlocks("1. one\n2. two\n")
	require.Len(t, blocks, 1)
	l, ok := blocks[0].(ast.EnumList)
	require.True(t, ok, "expected ast.EnumList, got %T", blocks[0])
	assert.Len(t, l.Items, 2)
}

func TestParse_BlockQuote(t *testing.T) {
	blocks := New().ParseBlocks("> quoted text\n")
	require.Len(t, blocks, 1)
	q, ok := blocks[0].(ast.QuotedBlock)
	require.True(t, ok, "expected ast.QuotedBlock, got %T", blocks[0])
	require.Len(t, q.Content, 1)
}

func TestParse_LinkDefinitionIsLowercasedByID(t *testing.T) {
	blocks := New().ParseBlocks("[Foo]: https://example.com \"a title\"\n")
	require.Len(t, blocks, 1)
	ld, ok := blocks[0].(ast.LinkDefinition)
	require.True(t, ok, "expected ast.LinkDefinition, got %T", blocks[0])
	assert.Equal(t, "foo", ld.ID)
	assert.Equal(t, "https://example.com", ld.URL)
	assert.Equal(t, "a title", ld.Title)
}

func TestParse_Table(t *testing.T) {
	src := "| a | b |\n| --- | :---: |\n| 1 | 2 |\n"
	blocks := New().ParseBlocks(src)
	require.Len(t, blocks, 1)
	tbl, ok := blocks[0].(ast.Table)
	require.True(t, ok, "expected ast.Table, got %T", blocks[0])
	require.Len(t, tbl.Head, 1)
	require.Len(t, tbl.Body, 1)
	head := tbl.Head[0].(ast.Row)
	require.Len(t, head.Cells, 2)
	cell := head.Cells[1].(ast.Cell)
	assert.Equal(t, ast.AlignCenter, cell.Align)
}

func TestSpanEngine_Emphasis(t *testing.T) {
	p := New()
	spans := p.spans.Parse("hello *world*")
	require.Len(t, spans, 2)
	assert.Equal(t, "hello ", spans[0].(ast.Text).Content)
	em, ok := spans[1].(ast.Emphasized)
	require.True(t, ok, "expected ast.Emphasized, got %T", spans[1])
	assert.Equal(t, "world", firstSpanText(t, em.Content))
}

func TestSpanEngine_Strong(t *testing.T) {
	p := New()
	spans := p.spans.Parse("**bold**")
	require.Len(t, spans, 1)
	s, ok := spans[0].(ast.Strong)
	require.True(t, ok, "expected ast.Strong, got %T", spans[0])
	assert.Equal(t, "bold", firstSpanText(t, s.Content))
}

func TestSpanEngine_InlineCode(t *testing.T) {
	p := New()
	spans := p.spans.Parse("use `fmt.Println`")
	require.Len(t, spans, 2)
	code, ok := spans[1].(ast.InlineCode)
	require.True(t, ok, "expected ast.InlineCode, got %T", spans[1])
	require.Len(t, code.Spans, 1)
	assert.Equal(t, "fmt.Println", code.Spans[0].(ast.Literal).Content)
}

func TestSpanEngine_InlineLink(t *testing.T) {
	p := New()
	spans := p.spans.Parse("see [docs](https://example.com \"Docs\")")
	require.Len(t, spans, 2)
	link, ok := spans[1].(ast.SpanLink)
	require.True(t, ok, "expected ast.SpanLink, got %T", spans[1])
	target, ok := link.Target.(ast.ExternalTarget)
	require.True(t, ok)
	assert.Equal(t, "https://example.com", target.URL)
	require.NotNil(t, link.Title)
	assert.Equal(t, "Docs", *link.Title)
}

func TestSpanEngine_ReferenceLinkIsUnresolved(t *testing.T) {
	p := New()
	spans := p.spans.Parse("[Foo][]")
	require.Len(t, spans, 1)
	link, ok := spans[0].(ast.SpanLink)
	require.True(t, ok, "expected ast.SpanLink, got %T", spans[0])
	target, ok := link.Target.(ast.UnresolvedTarget)
	require.True(t, ok, "expected ast.UnresolvedTarget, got %T", link.Target)
	assert.Equal(t, "foo", target.RefID)
}

func TestSpanEngine_Autolink(t *testing.T) {
	p := New()
	spans := p.spans.Parse("go to https://example.com/path now")
	require.Len(t, spans, 3)
	link, ok := spans[1].(ast.SpanLink)
	require.True(t, ok, "expected ast.SpanLink, got %T", spans[1])
	target := link.Target.(ast.ExternalTarget)
	assert.Equal(t, "https://example.com/path", target.URL)
}

func TestSpanEngine_Strikethrough(t *testing.T) {
	p := New()
	spans := p.spans.Parse("~~gone~~")
	require.Len(t, spans, 1)
	s, ok := spans[0].(ast.Strikethrough)
	require.True(t, ok, "expected ast.Strikethrough, got %T", spans[0])
	assert.Equal(t, "gone", firstSpanText(t, s.Content))
}

func TestParse_ExpandsUnresolvedSpansOnFullParse(t *testing.T) {
	blocks := New().Parse("hello *world*\n")
	require.Len(t, blocks, 1)
	p := blocks[0].(ast.Paragraph)
	for _, s := range p.Spans {
		_, stillUnresolved := s.(ast.UnresolvedSpanSequence)
		assert.False(t, stillUnresolved, "Parse must expand every placeholder")
	}
	require.Len(t, p.Spans, 2)
	assert.IsType(t, ast.Emphasized{}, p.Spans[1])
}

func TestParse_DirectiveCallWithoutRegistryStaysPlainText(t *testing.T) {
	blocks := New().Parse("@:warn(loud){ be careful }\n")
	require.Len(t, blocks, 1)
	_, ok := blocks[0].(ast.Paragraph)
	assert.True(t, ok, "expected directive_call to be inert without NewWithDirectives")
}

func TestParse_KnownDirectiveBuildsBlock(t *testing.T) {
	reg := directive.NewRegistry("")
	reg.RegisterDirective(directive.Spec{
		Name: "warn",
		Body: directive.BodySpans,
		BuildBlock: func(ctx directive.BlockContext) ast.Block {
			p := ast.Paragraph{Spans: ctx.Spans}
			p.Pos = ctx.Position
			return p
		},
	})
	blocks := NewWithDirectives(reg).Parse("@:warn(){ be careful }\n")
	require.Len(t, blocks, 1)
	_, ok := blocks[0].(ast.Paragraph)
	assert.True(t, ok)
}

func TestParse_UnknownDirectiveBecomesInvalid(t *testing.T) {
	reg := directive.NewRegistry("")
	blocks := NewWithDirectives(reg).Parse("@:nope(){ x }\n")
	require.Len(t, blocks, 1)
	_, ok := blocks[0].(ast.InvalidBlock)
	assert.True(t, ok)
}
