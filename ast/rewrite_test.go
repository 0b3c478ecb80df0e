package ast_test

import (
	"testing"

	"github.com/laikadoc/laika/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func textSpan(s string) ast.Span {
	return ast.Text{Content: s}
}

func TestRewriteSpans_RetainIsNoOp(t *testing.T) {
	tree := []ast.Block{ast.Paragraph{Spans: []ast.Span{textSpan("a"), textSpan("b")}}}
	out, changed := ast.RewriteSpans(tree, func(s ast.Span) ast.SpanAction { return ast.RetainSpan() })
	require.False(t, changed)
	assert.Equal(t, tree, out)
}

func TestRewriteSpans_ReplaceIsIdempotent(t *testing.T) {
	upcase := func(s ast.Span) ast.SpanAction {
		if t, ok := s.(ast.Text); ok && t.Content == "a" {
			return ast.ReplaceSpan(ast.Text{Content: "A"})
		}
		return ast.RetainSpan()
	}
	tree := []ast.Block{ast.Paragraph{Spans: []ast.Span{textSpan("a")}}}
	once, changed1 := ast.RewriteSpans(tree, upcase)
	require.True(t, changed1)
	twice, changed2 := ast.RewriteSpans(once, upcase)
	require.False(t, changed2)
	assert.Equal(t, once, twice)
}

func TestRewriteSpans_RemoveDropsNode(t *testing.T) {
	dropB := func(s ast.Span) ast.SpanAction {
		if t, ok := s.(ast.Text); ok && t.Content == "b" {
			return ast.RemoveSpan()
		}
		return ast.RetainSpan()
	}
	tree := []ast.Block{ast.Paragraph{Spans: []ast.Span{textSpan("a"), textSpan("b"), textSpan("c")}}}
	out, changed := ast.RewriteSpans(tree, dropB)
	require.True(t, changed)
	p := out[0].(ast.Paragraph)
	require.Len(t, p.Spans, 2)
	assert.Equal(t, "a", p.Spans[0].(ast.Text).Content)
	assert.Equal(t, "c", p.Spans[1].(ast.Text).Content)
}

func TestRewriteSpans_DescendsIntoContainers(t *testing.T) {
	tree := []ast.Block{ast.Paragraph{Spans: []ast.Span{
		ast.Strong{Content: []ast.Span{textSpan("x")}},
	}}}
	upcase := func(s ast.Span) ast.SpanAction {
		if t, ok := s.(ast.Text); ok && t.Content == "x" {
			return ast.ReplaceSpan(ast.Text{Content: "X"})
		}
		return ast.RetainSpan()
	}
	out, changed := ast.RewriteSpans(tree, upcase)
	require.True(t, changed)
	strong := out[0].(ast.Paragraph).Spans[0].(ast.Strong)
	assert.Equal(t, "X", strong.Content[0].(ast.Text).Content)
}

func TestRewriteBlocks_DescendsIntoListItems(t *testing.T) {
	tree := []ast.Block{ast.BulletList{Items: []ast.Block{
		ast.ListItem{Children: []ast.Block{ast.Rule{}}},
	}}}
	dropRule := func(b ast.Block) ast.BlockAction {
		if _, ok := b.(ast.Rule); ok {
			return ast.RemoveBlock()
		}
		return ast.RetainBlock()
	}
	out, changed := ast.RewriteBlocks(tree, dropRule)
	require.True(t, changed)
	item := out[0].(ast.BulletList).Items[0].(ast.ListItem)
	assert.Empty(t, item.Children)
}
