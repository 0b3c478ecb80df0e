package directive

import (
	"testing"

	"github.com/laikadoc/laika/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_RequiredAttributeMissing(t *testing.T) {
	spec := Spec{Name: "note", Attributes: []AttributeSpec{{Name: "", Required: true, Kind: AttrString}}}
	_, err := Decode(spec, RawAttrs{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required attribute")
}

func TestDecode_PositionalAndNamedAttributes(t *testing.T) {
	spec := Spec{Name: "image", Attributes: []AttributeSpec{
		{Kind: AttrString},
		{Name: "width", Kind: AttrInt, Default: "0"},
	}}
	attrs, err := Decode(spec, RawAttrs{Positional: []string{"logo.png"}, Named: map[string]string{"width": "200"}})
	require.NoError(t, err)
	v, ok := attrs.String("_")
	require.True(t, ok)
	assert.Equal(t, "logo.png", v)
	w, ok := attrs.Int("width")
	require.True(t, ok)
	assert.Equal(t, 200, w)
}

func TestDecode_BadIntegerFails(t *testing.T) {
	spec := Spec{Name: "x", Attributes: []AttributeSpec{{Name: "n", Kind: AttrInt, Required: true}}}
	_, err := Decode(spec, RawAttrs{Named: map[string]string{"n": "not-a-number"}})
	require.Error(t, err)
}

func TestRegistry_UnknownDirectiveIsReportedNotPanicked(t *testing.T) {
	reg := NewRegistry("")
	_, ok := reg.Directive("missing")
	assert.False(t, ok)
	blk := InvalidBlockFor("missing", errUnknown("missing"), ast.Fragment{}.Position, "")
	inv, ok := blk.(ast.InvalidBlock)
	require.True(t, ok)
	assert.Equal(t, ast.SeverityError, inv.Severity)
}

func TestRegistry_DefaultRole(t *testing.T) {
	reg := NewRegistry("code")
	reg.RegisterRole(Spec{Name: "code", BuildSpan: func(ctx SpanContext) ast.Span {
		return ast.InlineCode{Spans: []ast.Span{ast.Literal{Content: ctx.Content}}}
	}})
	spec, ok := reg.Role("")
	require.True(t, ok)
	assert.Equal(t, "code", spec.Name)
}
