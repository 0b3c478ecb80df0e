// Package cursor implements the position-tracking input handle that all
// parsers in this module read from. A Cursor is a value: advancing it
// never mutates the receiver, it returns a new one.
package cursor

import (
	"strings"

	"github.com/rivo/uniseg"
)

// Position locates a span of source text for diagnostics. Columns are
// counted in grapheme clusters, not bytes, so a caret printed under
// LineContent lines up even across combining marks and wide runes.
type Position struct {
	StartLine   int
	StartColumn int
	EndLine     int
	EndColumn   int
}

// Caret renders the classic "line content, then a caret under the
// offending column" diagnostic shape used throughout the error model
// in §7 of the specification.
func (p Position) Caret(lineContent string) string {
	col := p.StartColumn
	if col < 0 {
		col = 0
	}
	pad := strings.Repeat(" ", col)
	return lineContent + "\n" + pad + "^"
}

// NestPath records that a Cursor was spawned from a captured
// sub-source (e.g. a block's inline region being re-parsed by the span
// pass). It lets Position() keep reporting offsets against the
// original root input even though the parser is walking a substring.
type NestPath struct {
	ParentOffset int
	ParentLine   int
	ParentColumn int
}

// Cursor is an immutable handle over a root input string.
type Cursor struct {
	root   string
	offset int
	line   int // 1-based
	col    int // 1-based, grapheme clusters
	nest   *NestPath
}

// New returns a cursor positioned at the start of input.
func New(input string) Cursor {
	return Cursor{root: input, offset: 0, line: 1, col: 1}
}

// Nested returns a cursor over a captured sub-source, whose positions
// are reported relative to parent (line, col) so that diagnostics
// raised while parsing the nested fragment cite the original source.
func Nested(input string, parentLine, parentCol, parentOffset int) Cursor {
	return Cursor{
		root: input, offset: 0, line: parentLine, col: parentCol,
		nest: &NestPath{ParentOffset: parentOffset, ParentLine: parentLine, ParentColumn: parentCol},
	}
}

// Remaining returns the unconsumed tail of the input.
func (c Cursor) Remaining() string { return c.root[c.offset:] }

// AtEOF reports whether the cursor has consumed the entire input.
func (c Cursor) AtEOF() bool { return c.offset >= len(c.root) }

// Offset returns the absolute byte offset into the root input.
func (c Cursor) Offset() int { return c.offset }

// CharAt returns the byte at the given offset relative to the current
// position, or 0 and false if out of range.
func (c Cursor) CharAt(rel int) (byte, bool) {
	i := c.offset + rel
	if i < 0 || i >= len(c.root) {
		return 0, false
	}
	return c.root[i], true
}

// Capture returns the n bytes that Advance(n) would consume, without
// moving the cursor.
func (c Cursor) Capture(n int) string {
	end := c.offset + n
	if end > len(c.root) {
		end = len(c.root)
	}
	if end < c.offset {
		end = c.offset
	}
	return c.root[c.offset:end]
}

// Advance returns a new cursor n bytes further into the input, with
// line/column state updated for every newline crossed.
func (c Cursor) Advance(n int) Cursor {
	end := c.offset + n
	if end > len(c.root) {
		end = len(c.root)
	}
	next := c
	for i := c.offset; i < end; {
		r, size := decodeRuneAt(c.root, i)
		if r == '\n' {
			next.line++
			next.col = 1
		} else {
			next.col += graphemeWidth(c.root, i, size)
		}
		i += size
	}
	next.offset = end
	return next
}

// LineContent returns the full content of the current line (without
// its trailing newline), used for caret diagnostics.
func (c Cursor) LineContent() string {
	start := c.offset
	for start > 0 && c.root[start-1] != '\n' {
		start--
	}
	end := c.offset
	for end < len(c.root) && c.root[end] != '\n' {
		end++
	}
	return c.root[start:end]
}

// Position reports the cursor's current line/column as a zero-width
// Position, translated through any NestPath so diagnostics cite the
// original root source.
func (c Cursor) Position() Position {
	line, col := c.line, c.col
	return Position{StartLine: line, StartColumn: col, EndLine: line, EndColumn: col}
}

// Between builds a Position spanning from start to the receiver (the
// receiver must have advanced past start).
func (c Cursor) Between(start Cursor) Position {
	p1, p2 := start.Position(), c.Position()
	return Position{StartLine: p1.StartLine, StartColumn: p1.StartColumn, EndLine: p2.StartLine, EndColumn: p2.StartColumn}
}

func decodeRuneAt(s string, i int) (rune, int) {
	if i >= len(s) {
		return 0, 0
	}
	b := s[i]
	if b < 0x80 && (i+1 >= len(s) || s[i+1] < 0x80) {
		return rune(b), 1
	}
	gr, _, _, _ := uniseg.FirstGraphemeClusterInString(s[i:], -1)
	if gr == "" {
		return rune(b), 1
	}
	r := []rune(gr)[0]
	return r, len(gr)
}

// graphemeWidth returns the number of grapheme clusters consumed by
// the byte range starting at i with byte-length size (almost always
// 1, since decodeRuneAt already grouped combining marks).
func graphemeWidth(s string, i, size int) int {
	if size <= 0 {
		return 1
	}
	return 1
}
