// Package markup provides the two-pass block/span parsing discipline
// shared by every markup front-end (§4.3): whitespace preprocessing,
// the PrefixedParser-backed span loop, and the high/low-precedence
// block loop with paragraph-interruption support. Concrete grammars
// live in the markup/markdown and markup/rst subpackages.
package markup

import "strings"

// TabStops is the default tab-expansion width (§4.3).
const TabStops = 4

// Normalize runs the whitespace preprocessing pass once per source
// string: \r\n and \r become \n, tabs expand to spaces at tabStops
// columns (preserving column position), and form feed/vertical tab
// collapse to a single space. It is idempotent and preserves line
// count, both required by §8.
func Normalize(input string, tabStops int) string {
	if tabStops <= 0 {
		tabStops = TabStops
	}
	input = strings.ReplaceAll(input, "\r\n", "\n")
	input = strings.ReplaceAll(input, "\r", "\n")

	var b strings.Builder
	b.Grow(len(input))
	col := 0
	for i := 0; i < len(input); i++ {
		switch c := input[i]; c {
		case '\t':
			spaces := tabStops - (col % tabStops)
			for j := 0; j < spaces; j++ {
				b.WriteByte(' ')
			}
			col += spaces
		case '\n':
			b.WriteByte('\n')
			col = 0
		case '\f', '\v':
			b.WriteByte(' ')
			col++
		default:
			b.WriteByte(c)
			col++
		}
	}
	return b.String()
}
