package rst

import (
	"testing"

	"github.com/laikadoc/laika/ast"
	"github.com/laikadoc/laika/directive"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBlocks_UnderlinedSectionHeader(t *testing.T) {
	p := New(nil)
	blocks := p.ParseBlocks("Title\n=====\n\nBody text.\n")
	require.Len(t, blocks, 2)
	h, ok := blocks[0].(ast.Header)
	require.True(t, ok)
	assert.Equal(t, ast.HeaderLevel(1), h.Level)
}

func TestParseBlocks_OverlinedSectionHeaderMatchesUnderline(t *testing.T) {
	p := New(nil)
	blocks := p.ParseBlocks("=====\nTitle\n=====\n")
	require.Len(t, blocks, 1)
	_, ok := blocks[0].(ast.Header)
	assert.True(t, ok)
}

func TestParseBlocks_DistinctDecorationsGetDistinctLevels(t *testing.T) {
	p := New(nil)
	blocks := p.ParseBlocks("Top\n===\n\nSub\n---\n")
	require.Len(t, blocks, 2)
	top := blocks[0].(ast.Header)
	sub := blocks[1].(ast.Header)
	assert.Equal(t, ast.HeaderLevel(1), top.Level)
	assert.Equal(t, ast.HeaderLevel(2), sub.Level)
}

func TestParseBlocks_BulletList(t *testing.T) {
	p := New(nil)
	blocks := p.ParseBlocks("- one\n- two\n")
	require.Len(t, blocks, 1)
	list, ok := blocks[0].(ast.BulletList)
	require.True(t, ok)
	assert.Len(t, list.Items, 2)
}

func TestParseBlocks_FootnoteDefinition(t *testing.T) {
	p := New(nil)
	blocks := p.ParseBlocks(".. [#note] An explanation.\n")
	require.Len(t, blocks, 1)
	f, ok := blocks[0].(ast.Footnote)
	require.True(t, ok)
	assert.Equal(t, "#note", f.Label)
}

func TestParseBlocks_HyperlinkTarget(t *testing.T) {
	p := New(nil)
	blocks := p.ParseBlocks(".. _example: https://example.com\n")
	require.Len(t, blocks, 1)
	ld, ok := blocks[0].(ast.LinkDefinition)
	require.True(t, ok)
	assert.Equal(t, "example", ld.ID)
	assert.Equal(t, "https://example.com", ld.URL)
}

func TestParseBlocks_LiteralBlockAfterDoubleColon(t *testing.T) {
	p := New(nil)
	blocks := p.ParseBlocks("Example::\n\n    code here\n")
	require.Len(t, blocks, 1)
	seq, ok := blocks[0].(ast.BlockSequence)
	require.True(t, ok)
	require.Len(t, seq.Content, 2)
	_, ok = seq.Content[1].(ast.LiteralBlock)
	assert.True(t, ok)
}

func TestParseBlocks_UnknownDirectiveBecomesInvalid(t *testing.T) {
	p := New(nil)
	blocks := p.ParseBlocks(".. note:: something\n")
	require.Len(t, blocks, 1)
	_, ok := blocks[0].(ast.InvalidBlock)
	assert.True(t, ok)
}

func TestParseBlocks_KnownDirectiveBuildsBlock(t *testing.T) {
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
	p := New(reg)
	blocks := p.ParseBlocks(".. warn:: careful now\n")
	require.Len(t, blocks, 1)
	_, ok := blocks[0].(ast.Paragraph)
	assert.True(t, ok)
}

func TestParse_InlineEmphasisStrongAndLiteral(t *testing.T) {
	p := New(nil)
	blocks := p.Parse("An *em* and **strong** and ``code``.\n")
	require.Len(t, blocks, 1)
	para := blocks[0].(ast.Paragraph)
	var sawEm, sawStrong, sawLit bool
	for _, s := range para.Spans {
		switch s.(type) {
		case ast.Emphasized:
			sawEm = true
		case ast.Strong:
			sawStrong = true
		case ast.Literal:
			sawLit = true
		}
	}
	assert.True(t, sawEm)
	assert.True(t, sawStrong)
	assert.True(t, sawLit)
}

func TestParse_NamedHyperlinkReference(t *testing.T) {
	p := New(nil)
	blocks := p.Parse("See `the docs <https://example.com/docs>`_ for more.\n")
	para := blocks[0].(ast.Paragraph)
	var link ast.SpanLink
	var found bool
	for _, s := range para.Spans {
		if l, ok := s.(ast.SpanLink); ok {
			link, found = l, true
		}
	}
	require.True(t, found)
	ext := link.Target.(ast.ExternalTarget)
	assert.Equal(t, "https://example.com/docs", ext.URL)
}

func TestParse_SubstitutionReference(t *testing.T) {
	p := New(nil)
	blocks := p.Parse("Built with |product|.\n")
	para := blocks[0].(ast.Paragraph)
	var found bool
	for _, s := range para.Spans {
		if sub, ok := s.(ast.SubstitutionReference); ok {
			assert.Equal(t, "product", sub.Name)
			found = true
		}
	}
	assert.True(t, found)
}

func TestParse_FootnoteReference(t *testing.T) {
	p := New(nil)
	blocks := p.Parse("A claim [1]_.\n")
	para := blocks[0].(ast.Paragraph)
	var found bool
	for _, s := range para.Spans {
		if ref, ok := s.(ast.FootnoteReference); ok {
			assert.Equal(t, "1", ref.Label)
			found = true
		}
	}
	assert.True(t, found)
}
