package laika

import (
	"io"
	"testing"

	"github.com/laikadoc/laika/ast"
	"github.com/laikadoc/laika/diag"
	"github.com/laikadoc/laika/render/html"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RegistersBothBundledDialects(t *testing.T) {
	c := New()
	assert.Contains(t, c.Dialects, "markdown")
	assert.Contains(t, c.Dialects, "rst")
}

func TestParseUnresolved_LeavesLinkDefinitionsInPlace(t *testing.T) {
	c := New()
	doc, err := c.ParseUnresolved("markdown", "[Foo]: https://example.com\n")
	require.NoError(t, err)
	root := doc.Content.(ast.RootElement)
	require.Len(t, root.Content, 1)
	_, ok := root.Content[0].(ast.LinkDefinition)
	assert.True(t, ok, "expected ParseUnresolved to skip RemoveLinkDefinitions")
}

func TestParse_ResolvesReferenceLinkAgainstDefinition(t *testing.T) {
	c := New()
	doc, err := c.Parse("markdown", "[Foo]: https://example.com \"A title\"\n\nsee [Foo][]\n")
	require.NoError(t, err)
	root := doc.Content.(ast.RootElement)
	require.Len(t, root.Content, 1)
	p, ok := root.Content[0].(ast.Paragraph)
	require.True(t, ok, "expected link definition block to be removed, leaving only the paragraph")

	var link ast.SpanLink
	for _, s := range p.Spans {
		if l, ok := s.(ast.SpanLink); ok {
			link = l
		}
	}
	target, ok := link.Target.(ast.ExternalTarget)
	require.True(t, ok, "expected resolved ExternalTarget, got %T", link.Target)
	assert.Equal(t, "https://example.com", target.URL)
	require.NotNil(t, link.Title)
	assert.Equal(t, "A title", *link.Title)
}

func TestParse_UnknownReferenceBecomesInvalidAndFailsByDefault(t *testing.T) {
	c := New()
	doc, err := c.Parse("markdown", "see [Nowhere][]\n")
	require.Error(t, err)
	require.Len(t, doc.Diagnostics.All(), 1)
	assert.True(t, doc.Diagnostics.HasErrors())
	invalid := doc.Diagnostics.ByKind(diag.KindInvalidNode)
	require.Len(t, invalid, 1)
	assert.Contains(t, invalid[0].Message, "unresolved link id reference: nowhere")
}

func TestParse_UnknownFormatReturnsError(t *testing.T) {
	c := New()
	_, err := c.Parse("nonexistent", "whatever\n")
	require.Error(t, err)
}

func TestSilent_DiscardsLogOutput(t *testing.T) {
	c := New().Silent()
	require.NotNil(t, c.Log)
	assert.Equal(t, io.Discard, c.Log.Writer())
}

func TestTransform_RendersResolvedDocumentToHTML(t *testing.T) {
	c := New()
	r := html.New(nil)
	out, err := c.Transform("markdown", "hello *world*\n", r)
	require.NoError(t, err)
	assert.Contains(t, out, "<em>world</em>")
}

func TestTransform_PropagatesFatalInvalidDocument(t *testing.T) {
	c := New()
	r := html.New(nil)
	_, err := c.Transform("markdown", "see [Nowhere][]\n", r)
	require.Error(t, err)
}

func TestHarvestSubstitutions_ReparsesReplacementThroughSameDialect(t *testing.T) {
	c := New()
	blocks := []ast.Block{
		ast.InvalidBlock{Message: "substitution:company", Source: ast.Fragment{Source: "Acme *Inc*"}},
	}
	defs := c.harvestSubstitutions(blocks, "markdown")
	spans, ok := defs["company"]
	require.True(t, ok)
	require.Len(t, spans, 2)
	assert.Equal(t, "Acme ", spans[0].(ast.Text).Content)
}
