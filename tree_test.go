package laika

import (
	"testing"

	"github.com/laikadoc/laika/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentTreeRoot_InsertAndLookup(t *testing.T) {
	tree := NewDocumentTreeRoot()
	doc := &Document{Path: "/guide/intro"}
	tree.Insert(doc)

	got, ok := tree.Lookup("/guide/intro")
	require.True(t, ok)
	assert.Same(t, doc, got)

	_, ok = tree.Lookup("/guide")
	assert.False(t, ok, "an intermediate directory node with no document of its own is not found")

	_, ok = tree.Lookup("/nope")
	assert.False(t, ok)
}

func TestValidateCrossReferences_BuildsSortedTOC(t *testing.T) {
	tree := NewDocumentTreeRoot()
	docs := []Document{
		{Path: "/b", Content: ast.RootElement{Content: []ast.Block{
			ast.Title{Spans: []ast.Span{ast.Text{Content: "Beta"}}},
		}}},
		{Path: "/a", Content: ast.RootElement{Content: []ast.Block{
			ast.Title{Spans: []ast.Span{ast.Text{Content: "Alpha"}}},
		}}},
	}
	toc, err := tree.ValidateCrossReferences(docs)
	require.NoError(t, err)
	require.Len(t, toc, 2)
	assert.Equal(t, "/a", toc[0].Path)
	assert.Equal(t, "Alpha", toc[0].Title)
	assert.Equal(t, "/b", toc[1].Path)
	assert.Equal(t, "Beta", toc[1].Title)
}

func TestValidateCrossReferences_FlagsBrokenInternalLink(t *testing.T) {
	tree := NewDocumentTreeRoot()
	docs := []Document{
		{Path: "/a", Content: ast.RootElement{Content: []ast.Block{
			ast.Paragraph{Spans: []ast.Span{
				ast.SpanLink{Target: ast.InternalTarget{Path: "/missing"}},
			}},
		}}},
	}
	_, err := tree.ValidateCrossReferences(docs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/missing")
}

func TestValidateCrossReferences_ImageTargetCountsAsKnownPath(t *testing.T) {
	tree := NewDocumentTreeRoot()
	docs := []Document{
		{Path: "/a", Content: ast.RootElement{Content: []ast.Block{
			ast.Paragraph{Spans: []ast.Span{
				ast.Image{Target: ast.InternalTarget{Path: "/a"}},
			}},
		}}},
	}
	_, err := tree.ValidateCrossReferences(docs)
	assert.NoError(t, err)
}

func TestFirstTitle_FallsBackToLevelOneHeader(t *testing.T) {
	blocks := []ast.Block{
		ast.Header{Level: 1, Spans: []ast.Span{ast.Text{Content: "Top"}}},
		ast.Header{Level: 2, Spans: []ast.Span{ast.Text{Content: "Sub"}}},
	}
	assert.Equal(t, "Top", firstTitle(blocks))
}

func TestPlainText_DescendsThroughSpanContainers(t *testing.T) {
	spans := []ast.Span{
		ast.Strong{Content: []ast.Span{ast.Text{Content: "bold"}}},
		ast.Text{Content: " plain"},
	}
	assert.Equal(t, "bold plain", plainText(spans))
}
