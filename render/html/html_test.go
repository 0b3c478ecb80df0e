package html

import (
	"testing"

	"github.com/laikadoc/laika/ast"
	"github.com/stretchr/testify/assert"
)

func TestRender_ParagraphWithEmphasis(t *testing.T) {
	r := New(nil)
	para := ast.Paragraph{Spans: []ast.Span{
		ast.Text{Content: "hello "},
		ast.Emphasized{Content: []ast.Span{ast.Text{Content: "world"}}},
	}}
	out := r.Render(para)
	assert.Contains(t, out, "<p>")
	assert.Contains(t, out, "<em>world</em>")
}

func TestRender_EscapesText(t *testing.T) {
	r := New(nil)
	out := r.Render(ast.Text{Content: "<script>"})
	assert.NotContains(t, out, "<script>")
}

func TestRender_InternalLinkUsesTranslatePath(t *testing.T) {
	r := New(func(p string) string { return "/docs/" + p })
	link := ast.SpanLink{Content: []ast.Span{ast.Text{Content: "here"}}, Target: ast.InternalTarget{Path: "guide"}}
	out := r.Render(link)
	assert.Contains(t, out, `href="/docs/guide"`)
}

func TestRender_InvalidSpanRendersMessage(t *testing.T) {
	r := New(nil)
	out := r.Render(ast.InvalidSpan{Message: "broken ref"})
	assert.Contains(t, out, "broken ref")
	assert.Contains(t, out, "laika-invalid")
}

func TestRender_TableAppliesColumnAlignment(t *testing.T) {
	r := New(nil)
	row := ast.Row{Cells: []ast.Block{ast.Cell{Kind: ast.HeadCell, Align: ast.AlignRight, Spans: []ast.Span{ast.Text{Content: "Qty"}}}}}
	table := ast.Table{Head: []ast.Block{row}}
	out := r.Render(table)
	assert.Contains(t, out, `align="right"`)
	assert.Contains(t, out, "Qty")
}
