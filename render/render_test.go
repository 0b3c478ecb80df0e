package render

import (
	"testing"

	"github.com/laikadoc/laika/ast"
	"github.com/stretchr/testify/assert"
)

func TestRenderer_OverrideWinsOverDefault(t *testing.T) {
	r := New("test", nil)
	r.RegisterDefault(func(f Formatter, n ast.Node) (string, bool) {
		if _, ok := n.(ast.Text); ok {
			return "default", true
		}
		return "", false
	})
	r.RegisterOverride(func(f Formatter, n ast.Node) (string, bool) {
		if _, ok := n.(ast.Text); ok {
			return "override", true
		}
		return "", false
	})
	assert.Equal(t, "override", r.Render(ast.Text{Content: "x"}))
}

func TestRenderer_UnhandledNodeFallsThrough(t *testing.T) {
	r := New("test", nil)
	out := r.Render(ast.Text{Content: "x"})
	assert.Contains(t, out, "unhandled node")
}

func TestExtensionBundle_ComposesMultipleBundles(t *testing.T) {
	r := New("test", nil)
	a := ExtensionBundle{Defaults: []NodeHandler{func(f Formatter, n ast.Node) (string, bool) {
		if _, ok := n.(ast.Rule); ok {
			return "rule-a", true
		}
		return "", false
	}}}
	b := ExtensionBundle{Defaults: []NodeHandler{func(f Formatter, n ast.Node) (string, bool) {
		if _, ok := n.(ast.Text); ok {
			return "text-b", true
		}
		return "", false
	}}}
	Compose(r, a, b)
	assert.Equal(t, "rule-a", r.Render(ast.Rule{}))
	assert.Equal(t, "text-b", r.Render(ast.Text{}))
}

func TestComputedStyle_IDBeatsClassBeatsType(t *testing.T) {
	set := NewStyleDeclarationSet(
		StyleDeclaration{Selector: Selector{Type: "Paragraph"}, Properties: map[string]string{"color": "black"}},
		StyleDeclaration{Selector: Selector{Class: "note"}, Properties: map[string]string{"color": "blue"}},
		StyleDeclaration{Selector: Selector{ID: "intro"}, Properties: map[string]string{"color": "red"}},
	)
	id := "intro"
	opts := ast.Options{ID: &id, Styles: map[string]struct{}{"note": {}}}
	computed := set.ComputedStyle("Paragraph", opts)
	assert.Equal(t, "red", computed["color"])
}

func TestInlineStyle_SortsPropertiesDeterministically(t *testing.T) {
	out := InlineStyle(map[string]string{"color": "red", "background": "white"})
	assert.Equal(t, "background:white; color:red;", out)
}
