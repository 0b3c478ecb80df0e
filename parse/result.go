// Package parse implements the combinator algebra of §4.1: a Parser[T]
// is a pure function from a cursor.Cursor to a Result[T]. Failures are
// values, never panics or exceptions; alternation picks the branch
// whose MaxOffset reached furthest into the input, left-to-right on
// ties, and never rewinds the cursor consumed by a chosen branch.
package parse

import "github.com/laikadoc/laika/cursor"

// Failure describes why a parser did not produce a value.
type Failure struct {
	Message   string
	Cursor    cursor.Cursor
	MaxOffset int
}

// Result is the outcome of running a Parser[T]: either a Value and the
// Next cursor to resume from, or a Failure.
type Result[T any] struct {
	ok    bool
	Value T
	Next  cursor.Cursor
	Err   Failure
}

// Success builds a successful Result.
func Success[T any](value T, next cursor.Cursor) Result[T] {
	return Result[T]{ok: true, Value: value, Next: next}
}

// Fail builds a failed Result anchored at cur, with MaxOffset defaulting
// to cur's own offset (the failure reached no further than where it was
// raised).
func Fail[T any](message string, cur cursor.Cursor) Result[T] {
	return Result[T]{ok: false, Err: Failure{Message: message, Cursor: cur, MaxOffset: cur.Offset()}}
}

// FailAt builds a failed Result with an explicit MaxOffset, used when
// propagating a failure that occurred deeper in the input than where
// this combinator itself started (e.g. inside a sequence).
func FailAt[T any](message string, cur cursor.Cursor, maxOffset int) Result[T] {
	if maxOffset < cur.Offset() {
		maxOffset = cur.Offset()
	}
	return Result[T]{ok: false, Err: Failure{Message: message, Cursor: cur, MaxOffset: maxOffset}}
}

// OK reports whether the result succeeded.
func (r Result[T]) OK() bool { return r.ok }

// mergeOffset returns the larger of two MaxOffsets, the tie-breaker
// being left-to-right precedence handled by the caller (it keeps the
// left failure's Message/Cursor on a tie).
func mergeOffset(a, b Failure) Failure {
	if b.MaxOffset > a.MaxOffset {
		return b
	}
	return a
}
