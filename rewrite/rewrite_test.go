package rewrite

import (
	"testing"

	"github.com/laikadoc/laika/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveLinks_MatchesCaseInsensitively(t *testing.T) {
	link := ast.SpanLink{Target: ast.UnresolvedTarget{RefID: "Example"}}
	para := ast.Paragraph{Spans: []ast.Span{link}}
	targets := LinkTargets{"example": ast.LinkDefinition{ID: "example", URL: "https://example.com"}}
	out := ResolveLinks([]ast.Block{para}, targets)
	got := out[0].(ast.Paragraph).Spans[0].(ast.SpanLink)
	ext, ok := got.Target.(ast.ExternalTarget)
	require.True(t, ok)
	assert.Equal(t, "https://example.com", ext.URL)
}

func TestResolveLinks_UnresolvedBecomesInvalid(t *testing.T) {
	link := ast.SpanLink{Target: ast.UnresolvedTarget{RefID: "nowhere"}}
	para := ast.Paragraph{Spans: []ast.Span{link}}
	out := ResolveLinks([]ast.Block{para}, LinkTargets{})
	inv, ok := out[0].(ast.Paragraph).Spans[0].(ast.InvalidSpan)
	require.True(t, ok)
	assert.Equal(t, "unresolved link id reference: nowhere", inv.Message)
}

func TestResolveSubstitutions_ExpandsReference(t *testing.T) {
	defs := SubstitutionDefinitions{"company": {ast.Text{Content: "Acme"}}}
	para := ast.Paragraph{Spans: []ast.Span{ast.SubstitutionReference{Name: "company"}}}
	out, err := ResolveSubstitutions([]ast.Block{para}, defs)
	require.NoError(t, err)
	txt := out[0].(ast.Paragraph).Spans[0].(ast.Text)
	assert.Equal(t, "Acme", txt.Content)
}

func TestResolveSubstitutions_DetectsCycle(t *testing.T) {
	defs := SubstitutionDefinitions{
		"a": {ast.SubstitutionReference{Name: "b"}},
		"b": {ast.SubstitutionReference{Name: "a"}},
	}
	para := ast.Paragraph{Spans: []ast.Span{ast.SubstitutionReference{Name: "a"}}}
	_, err := ResolveSubstitutions([]ast.Block{para}, defs)
	require.Error(t, err)
}

func TestFootnoteOrder_NumericLabelsKeepTheirValue(t *testing.T) {
	blocks := []ast.Block{
		ast.Footnote{Label: "5"},
		ast.Footnote{Label: "2"},
	}
	numbering := FootnoteOrder(blocks)
	out := ApplyFootnoteNumbers(blocks, numbering)
	assert.Equal(t, 5, out[0].(ast.Footnote).Number)
	assert.Equal(t, "5", out[0].(ast.Footnote).Display)
	assert.Equal(t, 2, out[1].(ast.Footnote).Number)
	assert.Equal(t, "2", out[1].(ast.Footnote).Display)
}

func TestFootnoteOrder_AutonumberClaimsLowestUnusedInteger(t *testing.T) {
	// "2" is reserved by the explicit numeric label, so the first "#"
	// autonumber must skip it and claim 1, and the second must skip the
	// now-claimed 1 too, landing on 3.
	blocks := []ast.Block{
		ast.Footnote{Label: "2"},
		ast.Footnote{Label: "#"},
		ast.Footnote{Label: "#"},
	}
	numbering := FootnoteOrder(blocks)
	out := ApplyFootnoteNumbers(blocks, numbering)
	assert.Equal(t, 2, out[0].(ast.Footnote).Number)
	assert.Equal(t, 1, out[1].(ast.Footnote).Number)
	assert.Equal(t, 3, out[2].(ast.Footnote).Number)
}

func TestFootnoteOrder_AutosymbolCyclesAndDoubles(t *testing.T) {
	blocks := make([]ast.Block, 0, 11)
	for i := 0; i < 11; i++ {
		blocks = append(blocks, ast.Footnote{Label: "*"})
	}
	numbering := FootnoteOrder(blocks)
	out := ApplyFootnoteNumbers(blocks, numbering)
	assert.Equal(t, "*", out[0].(ast.Footnote).Display)
	assert.Equal(t, "♣", out[9].(ast.Footnote).Display)
	assert.Equal(t, "**", out[10].(ast.Footnote).Display) // wraps around, doubling
}

func TestFootnoteOrder_NamedAutonumberIsStableAcrossUses(t *testing.T) {
	blocks := []ast.Block{
		ast.Footnote{Label: "#recurring"},
		ast.Footnote{Label: "#other"},
	}
	refs := []ast.Span{
		ast.FootnoteReference{Label: "#recurring"},
		ast.FootnoteReference{Label: "#other"},
		ast.FootnoteReference{Label: "#recurring"},
	}
	numbering := FootnoteOrder(blocks)
	out := ApplyFootnoteNumbers(blocks, numbering)
	recurringNumber := out[0].(ast.Footnote).Number
	otherNumber := out[1].(ast.Footnote).Number
	assert.NotEqual(t, recurringNumber, otherNumber)

	para := ast.Paragraph{Spans: refs}
	outSpans := ApplyFootnoteNumbers([]ast.Block{para}, numbering)
	gotSpans := outSpans[0].(ast.Paragraph).Spans
	assert.Equal(t, recurringNumber, gotSpans[0].(ast.FootnoteReference).Number)
	assert.Equal(t, otherNumber, gotSpans[1].(ast.FootnoteReference).Number)
	assert.Equal(t, recurringNumber, gotSpans[2].(ast.FootnoteReference).Number)
}

func TestApplyFootnoteNumbers_PairsAnonymousDefinitionsAndReferencesByDocumentOrder(t *testing.T) {
	// Every "#" definition and every "#" reference shares the literal
	// label "#"; only their relative order tells the first reference
	// apart from the second.
	blocks := []ast.Block{
		ast.Footnote{Label: "#"},
		ast.Footnote{Label: "#"},
		ast.Paragraph{Spans: []ast.Span{
			ast.FootnoteReference{Label: "#"},
			ast.FootnoteReference{Label: "#"},
		}},
	}
	numbering := FootnoteOrder(blocks)
	out := ApplyFootnoteNumbers(blocks, numbering)
	firstDef := out[0].(ast.Footnote).Number
	secondDef := out[1].(ast.Footnote).Number
	spans := out[2].(ast.Paragraph).Spans
	assert.Equal(t, firstDef, spans[0].(ast.FootnoteReference).Number)
	assert.Equal(t, secondDef, spans[1].(ast.FootnoteReference).Number)
	assert.NotEqual(t, firstDef, secondDef)
}

func TestBuildSections_NestsByHeaderLevel(t *testing.T) {
	blocks := []ast.Block{
		ast.Header{Level: 1},
		ast.Paragraph{},
		ast.Header{Level: 2},
		ast.Paragraph{},
	}
	sections := BuildSections(blocks, false)
	require.Len(t, sections, 1)
	top := sections[0].(ast.Section)
	require.Len(t, top.Content, 2) // paragraph + nested section
	_, ok := top.Content[1].(ast.Section)
	assert.True(t, ok)
}

func TestBuildSections_AutoNumberAssignsHierarchicalSectionIDs(t *testing.T) {
	blocks := []ast.Block{
		ast.Header{Level: 1},
		ast.Header{Level: 2},
		ast.Header{Level: 1},
	}
	sections := BuildSections(blocks, true)
	require.Len(t, sections, 2)

	first := sections[0].(ast.Section)
	firstHeader := first.Header.(ast.Header)
	require.NotNil(t, firstHeader.Opts.ID)
	assert.Equal(t, "section-1", *firstHeader.Opts.ID)

	require.Len(t, first.Content, 1)
	nested := first.Content[0].(ast.Section)
	nestedHeader := nested.Header.(ast.Header)
	require.NotNil(t, nestedHeader.Opts.ID)
	assert.Equal(t, "section-1-1", *nestedHeader.Opts.ID)

	second := sections[1].(ast.Section)
	secondHeader := second.Header.(ast.Header)
	require.NotNil(t, secondHeader.Opts.ID)
	assert.Equal(t, "section-2", *secondHeader.Opts.ID)
}

func TestCollectInvalid_FailsAboveThreshold(t *testing.T) {
	blocks := []ast.Block{ast.InvalidBlock{Message: "broken", Severity: ast.SeverityError}}
	_, err := CollectInvalid(blocks, DefaultInvalidPolicy())
	require.Error(t, err)
	var invDoc *InvalidDocument
	require.ErrorAs(t, err, &invDoc)
}

func TestCollectInvalid_RendersWarningsWithoutFailing(t *testing.T) {
	blocks := []ast.Block{ast.InvalidBlock{Message: "minor", Severity: ast.SeverityWarning}}
	out, err := CollectInvalid(blocks, DefaultInvalidPolicy())
	require.NoError(t, err)
	assert.Len(t, out, 1)
}

func TestCollectInvalid_DropsBelowRenderThreshold(t *testing.T) {
	blocks := []ast.Block{ast.InvalidBlock{Message: "fyi", Severity: ast.SeverityInfo}}
	out, err := CollectInvalid(blocks, DefaultInvalidPolicy())
	require.NoError(t, err)
	assert.Len(t, out, 0)
}
