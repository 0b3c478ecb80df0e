package markup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize_ExpandsTabsToColumn(t *testing.T) {
	out := Normalize("a\tb", 4)
	assert.Equal(t, "a   b", out)
}

func TestNormalize_CRLFBecomesLF(t *testing.T) {
	out := Normalize("one\r\ntwo\rthree", 4)
	assert.Equal(t, "one\ntwo\nthree", out)
}

func TestNormalize_IsIdempotent(t *testing.T) {
	input := "line one\r\n\tline two"
	once := Normalize(input, TabStops)
	twice := Normalize(once, TabStops)
	assert.Equal(t, once, twice)
}

func TestNormalize_PreservesLineCount(t *testing.T) {
	input := "a\r\nb\rc\nd"
	out := Normalize(input, TabStops)
	lines := 1
	for _, r := range out {
		if r == '\n' {
			lines++
		}
	}
	assert.Equal(t, 4, lines)
}
