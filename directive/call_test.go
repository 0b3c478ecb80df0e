package directive

import (
	"strings"
	"testing"

	"github.com/laikadoc/laika/ast"
	"github.com/laikadoc/laika/cursor"
	"github.com/laikadoc/laika/markup"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func segmentCarrier(ctx BlockContext) ast.Block {
	return ast.InvalidBlock{Message: strings.Join(ctx.Segments, "|"), Severity: ast.SeverityInfo}
}

func noopParseBlocks(input string, pos markup.Position) []ast.Block { return nil }
func noopParseSpans(input string) []ast.Span                        { return nil }

func TestBlockDirectiveParser_BraceBodyIsASingleSegment(t *testing.T) {
	reg := NewRegistry("")
	reg.RegisterDirective(Spec{Name: "note", Body: BodyRaw, BuildBlock: segmentCarrier})
	result := BlockDirectiveParser(reg, noopParseBlocks, noopParseSpans)(cursor.New("@:note{ hello there }"))
	require.True(t, result.OK())
	blk := result.Value.(ast.InvalidBlock)
	assert.Equal(t, "hello there", blk.Message)
}

func TestBlockDirectiveParser_DefaultTerminatorSplitsOnSeparator(t *testing.T) {
	reg := NewRegistry("")
	reg.RegisterDirective(Spec{Name: "term", Body: BodyRaw, BuildBlock: segmentCarrier})
	input := "@:term\nfirst part\n@@:\nsecond part\n@:@\n"
	result := BlockDirectiveParser(reg, noopParseBlocks, noopParseSpans)(cursor.New(input))
	require.True(t, result.OK())
	blk := result.Value.(ast.InvalidBlock)
	assert.Equal(t, "first part|second part", blk.Message)
}

func TestBlockDirectiveParser_PerDirectiveTerminatorOverride(t *testing.T) {
	reg := NewRegistry("")
	reg.RegisterDirective(Spec{Name: "term", Body: BodyRaw, Terminator: "END", BuildBlock: segmentCarrier})
	input := "@:term\nonly part\nEND\n"
	result := BlockDirectiveParser(reg, noopParseBlocks, noopParseSpans)(cursor.New(input))
	require.True(t, result.OK())
	blk := result.Value.(ast.InvalidBlock)
	assert.Equal(t, "only part", blk.Message)
}

func TestReadBraceBody_NoBodyPresent(t *testing.T) {
	body, _, ok := readBraceBody(cursor.New("plain text"))
	assert.False(t, ok)
	assert.Empty(t, body)
}
