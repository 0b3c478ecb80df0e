package diag

import (
	"strings"
	"testing"

	"github.com/laikadoc/laika/ast"
	"github.com/laikadoc/laika/cursor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnostic_ErrorIncludesLocationAndCaret(t *testing.T) {
	d := New(KindSyntax, "unexpected token", ast.SeverityError, "doc.md",
		cursor.Position{StartLine: 2, StartColumn: 4}, "bad ^ line", nil)
	msg := d.Error()
	assert.Contains(t, msg, "doc.md:2:4")
	assert.Contains(t, msg, "unexpected token")
	assert.Contains(t, msg, "bad ^ line")
}

func TestDiagnostic_UnwrapReturnsCause(t *testing.T) {
	cause := assert.AnError
	d := New(KindConfig, "failed", ast.SeverityError, "", cursor.Position{}, "", cause)
	require.ErrorIs(t, d, cause)
}

func TestCollector_HasErrorsRespectsSeverity(t *testing.T) {
	var c Collector
	c.Add(New(KindSyntax, "just a heads up", ast.SeverityWarning, "", cursor.Position{}, "", nil))
	assert.False(t, c.HasErrors())

	c.Add(New(KindCycle, "broken", ast.SeverityError, "", cursor.Position{}, "", nil))
	assert.True(t, c.HasErrors())
}

func TestCollector_ByKindFilters(t *testing.T) {
	var c Collector
	c.Add(New(KindSyntax, "a", ast.SeverityInfo, "", cursor.Position{}, "", nil))
	c.Add(New(KindCycle, "b", ast.SeverityError, "", cursor.Position{}, "", nil))
	c.Add(New(KindCycle, "c", ast.SeverityError, "", cursor.Position{}, "", nil))

	assert.Len(t, c.ByKind(KindCycle), 2)
	assert.Len(t, c.ByKind(KindSyntax), 1)
	assert.Len(t, c.ByKind(KindIO), 0)
}

func TestCollector_WriteToWritesOnePerLine(t *testing.T) {
	var c Collector
	c.Add(New(KindSyntax, "first", ast.SeverityWarning, "", cursor.Position{}, "", nil))
	c.Add(New(KindSyntax, "second", ast.SeverityWarning, "", cursor.Position{}, "", nil))

	var b strings.Builder
	require.NoError(t, c.WriteTo(&b))
	lines := strings.Split(strings.TrimRight(b.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "first")
	assert.Contains(t, lines[1], "second")
}
