package markup

import (
	"github.com/laikadoc/laika/ast"
	"github.com/laikadoc/laika/cursor"
	"github.com/laikadoc/laika/parse"
)

// BlockEngine drives the block parsing loop of §4.3: at each line it
// tries every high-precedence parser whose start characters include
// the line's first byte; if none match, it falls back to the
// low-precedence group (generally just the paragraph parser). The
// builders' Pos restriction is not consulted: every parser is tried at
// every nesting level.
type BlockEngine struct {
	builders []BlockParserBuilder
	high     []parse.Prefixed[ast.Block]
	low      []parse.Prefixed[ast.Block]
}

// NewBlockEngine builds both precedence groups, bound to rp.
func NewBlockEngine(builders []BlockParserBuilder, rp RecursiveParsers) BlockEngine {
	e := BlockEngine{builders: builders}
	for _, b := range builders {
		p := b.Build(rp)
		if b.Prec == PrecedenceHigh {
			e.high = append(e.high, p)
		} else {
			e.low = append(e.low, p)
		}
	}
	return e
}

// Builders exposes the registered builders, e.g. so a paragraph parser
// can consult InterruptsParagraph against sibling high-precedence
// parsers' declared prefixes.
func (e BlockEngine) Builders() []BlockParserBuilder { return e.builders }

// Parse repeatedly tries the high-precedence group, then the
// low-precedence group, appending whichever block succeeds and
// advancing the cursor, until EOF. A line that no parser of either
// group matches is skipped and produces no block (a catch-all
// low-precedence parser, as the paragraph rule is, keeps this from
// happening). The pos argument is not used.
func (e BlockEngine) Parse(cur cursor.Cursor, pos Position) []ast.Block {
	var out []ast.Block
	for !cur.AtEOF() {
		if isBlankLine(cur) {
			cur = skipBlankLines(cur)
			continue
		}
		b, _ := cur.CharAt(0)
		r := rune(b)
		matched := false
		for _, p := range e.high {
			if !p.StartsWith(r) {
				continue
			}
			if res := p.Run(cur); res.OK() {
				out = append(out, res.Value)
				cur = res.Next
				matched = true
				break
			}
		}
		if matched {
			continue
		}
		for _, p := range e.low {
			if len(p.StartChars) > 0 && !p.StartsWith(r) {
				continue
			}
			if res := p.Run(cur); res.OK() {
				out = append(out, res.Value)
				cur = res.Next
				matched = true
				break
			}
		}
		if !matched {
			// No registered parser claimed this line: skip it rather
			// than looping forever.
			cur = skipLine(cur)
		}
	}
	return out
}

func isBlankLine(cur cursor.Cursor) bool {
	line := cur.LineContent()
	for _, c := range line {
		if c != ' ' && c != '\t' {
			return false
		}
	}
	return true
}

func skipBlankLines(cur cursor.Cursor) cursor.Cursor {
	for !cur.AtEOF() && isBlankLine(cur) {
		cur = skipLine(cur)
	}
	return cur
}

func skipLine(cur cursor.Cursor) cursor.Cursor {
	n := len(cur.LineContent())
	cur = cur.Advance(n)
	if b, ok := cur.CharAt(0); ok && b == '\n' {
		cur = cur.Advance(1)
	}
	return cur
}
