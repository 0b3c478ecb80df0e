package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_ScalarsAndNesting(t *testing.T) {
	src := `
		title = "Laika"
		depth = 3
		strict = true
		laika {
			autosectionnumbering = false
		}
	`
	v, err := Parse(src)
	require.NoError(t, err)
	title, ok := v.Get("title")
	require.True(t, ok)
	assert.Equal(t, "Laika", title.Str)
	depth, ok := v.Get("depth")
	require.True(t, ok)
	assert.Equal(t, int64(3), depth.Int)
	nested, ok := v.Get("laika.autosectionnumbering")
	require.True(t, ok)
	assert.Equal(t, false, nested.Bool)
}

func TestParse_Array(t *testing.T) {
	v, err := Parse(`tags = [one, two, "three"]`)
	require.NoError(t, err)
	tags, ok := v.Get("tags")
	require.True(t, ok)
	require.Len(t, tags.Array, 3)
	assert.Equal(t, "three", tags.Array[2].Str)
}

func TestResolve_SimpleSubstitution(t *testing.T) {
	v, err := Parse(`
		base = hello
		greeting = ${base}
	`)
	require.NoError(t, err)
	resolved, err := Resolve(v)
	require.NoError(t, err)
	greeting, ok := resolved.Get("greeting")
	require.True(t, ok)
	assert.Equal(t, "hello", greeting.Str)
}

func TestResolve_OptionalSubstitutionDropsMissingKey(t *testing.T) {
	v, err := Parse(`present = ${?missing}`)
	require.NoError(t, err)
	resolved, err := Resolve(v)
	require.NoError(t, err)
	_, ok := resolved.Get("present")
	assert.False(t, ok)
}

func TestResolve_CycleIsDetected(t *testing.T) {
	v, err := Parse(`
		a = ${b}
		b = ${a}
	`)
	require.NoError(t, err)
	_, err = Resolve(v)
	require.Error(t, err)
	var rf *ResolverFailed
	require.ErrorAs(t, err, &rf)
}

func TestResolve_ConcatenatesBarewordWithSubstitution(t *testing.T) {
	v, err := Parse(`
		name = world
		greeting = hello ${name}
	`)
	require.NoError(t, err)
	resolved, err := Resolve(v)
	require.NoError(t, err)
	greeting, ok := resolved.Get("greeting")
	require.True(t, ok)
	assert.Equal(t, KindString, greeting.Kind)
	assert.Equal(t, "hello world", greeting.Str)
}

func TestResolve_ConcatenatesQuotedStringWithSubstitution(t *testing.T) {
	v, err := Parse(`
		name = World
		greeting = "Hello, "${name}
	`)
	require.NoError(t, err)
	resolved, err := Resolve(v)
	require.NoError(t, err)
	greeting, ok := resolved.Get("greeting")
	require.True(t, ok)
	assert.Equal(t, "Hello, World", greeting.Str)
}

func TestParse_SingleBarewordValueStillClassifiesAsScalar(t *testing.T) {
	v, err := Parse(`count = 42`)
	require.NoError(t, err)
	count, ok := v.Get("count")
	require.True(t, ok)
	assert.Equal(t, KindInt, count.Kind)
	assert.Equal(t, int64(42), count.Int)
}

func TestWithFallback_MergesNestedObjectsKeepingOverride(t *testing.T) {
	base, err := Parse(`laika { strict = false; depth = 1 }`)
	require.NoError(t, err)
	override, err := Parse(`laika { strict = true }`)
	require.NoError(t, err)
	merged := override.WithFallback(base)
	strict, ok := merged.Get("laika.strict")
	require.True(t, ok)
	assert.Equal(t, true, strict.Bool)
	depth, ok := merged.Get("laika.depth")
	require.True(t, ok)
	assert.Equal(t, int64(1), depth.Int)
}
