package parse

import "github.com/laikadoc/laika/cursor"

// Prefixed tags a Parser with the set of characters it could possibly
// start matching on. The span parsing loop (markup package) builds an
// O(1) rune->[]Prefixed table from this tag instead of trying every
// candidate parser at every position, which would be quadratic in the
// number of registered span/directive parsers.
type Prefixed[T any] struct {
	Parser     Parser[T]
	StartChars map[rune]bool
}

// NewPrefixed tags p with an explicit, non-empty start-char set.
func NewPrefixed[T any](p Parser[T], startChars ...rune) Prefixed[T] {
	set := make(map[rune]bool, len(startChars))
	for _, r := range startChars {
		set[r] = true
	}
	return Prefixed[T]{Parser: p, StartChars: set}
}

// Run delegates to the underlying parser.
func (pp Prefixed[T]) Run(cur cursor.Cursor) Result[T] { return pp.Parser(cur) }

// StartsWith reports whether r is a character this parser could match
// on. With an empty StartChars set it reports false for every r; the
// block loop runs low-precedence parsers with an empty set without
// consulting StartsWith, so for them the empty set means unrestricted.
func (pp Prefixed[T]) StartsWith(r rune) bool { return pp.StartChars[r] }

// Or unions the start-char sets; the combined parser still behaves
// like Parser.Or (p.Parser first, q.Parser on failure).
func (pp Prefixed[T]) Or(qp Prefixed[T]) Prefixed[T] {
	merged := make(map[rune]bool, len(pp.StartChars)+len(qp.StartChars))
	for r := range pp.StartChars {
		merged[r] = true
	}
	for r := range qp.StartChars {
		merged[r] = true
	}
	return Prefixed[T]{Parser: pp.Parser.Or(qp.Parser), StartChars: merged}
}

// MapPrefixed transforms a Prefixed parser's value while keeping its
// start-char tag, since mapping never changes what the parser can
// start on.
func MapPrefixed[A, B any](pp Prefixed[A], f func(A) B) Prefixed[B] {
	return Prefixed[B]{Parser: Map(pp.Parser, f), StartChars: pp.StartChars}
}

// Table is the rune -> candidate-parsers dispatch structure the span
// loop consults: for the character at the cursor, only parsers tagged
// with that start char are tried, in registration order.
type Table[T any] struct {
	byChar map[rune][]Prefixed[T]
}

// NewTable builds a dispatch table from a set of Prefixed parsers,
// preserving registration order within each character's bucket (used
// by the span loop's "try each candidate in order" rule, and by the
// longest-delimiter-first tie-break when callers register longer
// markers before shorter ones).
func NewTable[T any](parsers ...Prefixed[T]) Table[T] {
	t := Table[T]{byChar: map[rune][]Prefixed[T]{}}
	for _, p := range parsers {
		for r := range p.StartChars {
			t.byChar[r] = append(t.byChar[r], p)
		}
	}
	return t
}

// Candidates returns the parsers registered for r, in order.
func (t Table[T]) Candidates(r rune) []Prefixed[T] { return t.byChar[r] }

// TryAll attempts each candidate for r in order, returning the first
// success. If none match, ok is false and the character should be
// treated as literal text by the caller.
func (t Table[T]) TryAll(r rune, cur cursor.Cursor) (Result[T], bool) {
	for _, cand := range t.Candidates(r) {
		if res := cand.Run(cur); res.OK() {
			return res, true
		}
	}
	return Result[T]{}, false
}
