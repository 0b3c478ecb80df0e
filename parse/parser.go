package parse

import "github.com/laikadoc/laika/cursor"

// Parser is a pure function from a cursor to a Result. Go's type
// system can't express a closed sum of Success/Failure generically
// across methods that introduce a second type parameter, so those
// combinators (Then, Map, ...) are free functions alongside the
// same-type methods below.
type Parser[T any] func(cursor.Cursor) Result[T]

// Run applies the parser to cur. It exists mostly for readability at
// call sites: p.Run(cur) reads better than p(cur) when p is itself the
// result of a long combinator chain.
func (p Parser[T]) Run(cur cursor.Cursor) Result[T] { return p(cur) }

// Or tries p first; if it fails, retries q against the original
// cursor. On double failure the surviving MaxOffset is the larger of
// the two, ties keeping p's failure (left-to-right precedence).
func (p Parser[T]) Or(q Parser[T]) Parser[T] {
	return func(cur cursor.Cursor) Result[T] {
		r1 := p(cur)
		if r1.OK() {
			return r1
		}
		r2 := q(cur)
		if r2.OK() {
			return r2
		}
		merged := mergeOffset(r1.Err, r2.Err)
		return Result[T]{ok: false, Err: merged}
	}
}

// Opt always succeeds: it returns p's value wrapped as present, or
// (zero, false) if p fails, without consuming input on failure.
func (p Parser[T]) Opt() Parser[Option[T]] {
	return func(cur cursor.Cursor) Result[Option[T]] {
		r := p(cur)
		if r.OK() {
			return Success(Option[T]{Present: true, Value: r.Value}, r.Next)
		}
		return Success(Option[T]{}, cur)
	}
}

// Option is the value produced by Opt.
type Option[T any] struct {
	Present bool
	Value   T
}

// HandleErrorWith lets a failure be converted into a fresh parser,
// retried from the failure's own cursor. This is the cooperative
// recovery hook of §4.1; it never unwinds across the boundary, the
// returned parser decides whether to retry or propagate.
func (p Parser[T]) HandleErrorWith(f func(Failure) Parser[T]) Parser[T] {
	return func(cur cursor.Cursor) Result[T] {
		r := p(cur)
		if r.OK() {
			return r
		}
		return f(r.Err)(r.Err.Cursor)
	}
}

// Rep repeats p, requiring at least min successes and stopping after
// max (max <= 0 means unbounded). It stops, without failing, the
// moment p fails to produce another success past min.
func (p Parser[T]) Rep(min, max int) Parser[[]T] {
	return func(cur cursor.Cursor) Result[[]T] {
		var out []T
		next := cur
		maxOffset := cur.Offset()
		for max <= 0 || len(out) < max {
			r := p(next)
			if !r.OK() {
				maxOffset = mergeOffset(Failure{MaxOffset: maxOffset}, r.Err).MaxOffset
				break
			}
			out = append(out, r.Value)
			next = r.Next
		}
		if len(out) < min {
			return FailAt[[]T]("expected at least min repetitions", cur, maxOffset)
		}
		return Success(out, next)
	}
}

// RepUntil repeats p until end succeeds (end's consumption is
// discarded from the result, only used to detect the stopping point;
// it does not advance the returned cursor past itself).
func RepUntil[T, E any](p Parser[T], end Parser[E], min, max int) Parser[[]T] {
	return func(cur cursor.Cursor) Result[[]T] {
		var out []T
		next := cur
		for max <= 0 || len(out) < max {
			if r := end(next); r.OK() {
				break
			}
			r := p(next)
			if !r.OK() {
				if len(out) < min {
					return FailAt[[]T]("expected at least min repetitions before end", cur, r.Err.MaxOffset)
				}
				break
			}
			if r.Next.Offset() == next.Offset() {
				// Guard against an infinite loop on a zero-width success.
				break
			}
			out = append(out, r.Value)
			next = r.Next
		}
		return Success(out, next)
	}
}

// RepSep repeats p separated by sep.
func RepSep[T, S any](p Parser[T], sep Parser[S], min, max int) Parser[[]T] {
	return func(cur cursor.Cursor) Result[[]T] {
		first := p(cur)
		if !first.OK() {
			if min == 0 {
				return Success[[]T](nil, cur)
			}
			return FailAt[[]T]("expected at least one element", cur, first.Err.MaxOffset)
		}
		out := []T{first.Value}
		next := first.Next
		for max <= 0 || len(out) < max {
			sr := sep(next)
			if !sr.OK() {
				break
			}
			pr := p(sr.Next)
			if !pr.OK() {
				break
			}
			out = append(out, pr.Value)
			next = pr.Next
		}
		return Success(out, next)
	}
}

// Seq pairs two parsers' results ("a ~ b").
func Seq[A, B any](a Parser[A], b Parser[B]) Parser[Pair[A, B]] {
	return func(cur cursor.Cursor) Result[Pair[A, B]] {
		ra := a(cur)
		if !ra.OK() {
			return FailAt[Pair[A, B]](ra.Err.Message, ra.Err.Cursor, ra.Err.MaxOffset)
		}
		rb := b(ra.Next)
		if !rb.OK() {
			return FailAt[Pair[A, B]](rb.Err.Message, rb.Err.Cursor, rb.Err.MaxOffset)
		}
		return Success(Pair[A, B]{First: ra.Value, Second: rb.Value}, rb.Next)
	}
}

// Pair is the value produced by Seq.
type Pair[A, B any] struct {
	First  A
	Second B
}

// KeepLeft runs a then b, keeping only a's value ("a <~ b").
func KeepLeft[A, B any](a Parser[A], b Parser[B]) Parser[A] {
	return Map(Seq(a, b), func(p Pair[A, B]) A { return p.First })
}

// KeepRight runs a then b, keeping only b's value ("a ~> b").
func KeepRight[A, B any](a Parser[A], b Parser[B]) Parser[B] {
	return Map(Seq(a, b), func(p Pair[A, B]) B { return p.Second })
}

// Map transforms a successful value.
func Map[A, B any](p Parser[A], f func(A) B) Parser[B] {
	return func(cur cursor.Cursor) Result[B] {
		r := p(cur)
		if !r.OK() {
			return FailAt[B](r.Err.Message, r.Err.Cursor, r.Err.MaxOffset)
		}
		return Success(f(r.Value), r.Next)
	}
}

// As replaces a successful value with a constant, discarding it.
func As[A, B any](p Parser[A], v B) Parser[B] {
	return Map(p, func(A) B { return v })
}

// FlatMap is monadic bind: runs p, feeds its value to f to obtain the
// next parser, and runs that from p's resulting cursor.
func FlatMap[A, B any](p Parser[A], f func(A) Parser[B]) Parser[B] {
	return func(cur cursor.Cursor) Result[B] {
		r := p(cur)
		if !r.OK() {
			return FailAt[B](r.Err.Message, r.Err.Cursor, r.Err.MaxOffset)
		}
		return f(r.Value)(r.Next)
	}
}

// EvalMap turns a semantic error into a parser failure: f may reject
// an otherwise-successfully-parsed value (e.g. a malformed directive
// attribute), turning the rejection into a normal Failure rather than
// a panic.
func EvalMap[A, B any](p Parser[A], f func(A) (B, error)) Parser[B] {
	return func(cur cursor.Cursor) Result[B] {
		r := p(cur)
		if !r.OK() {
			return FailAt[B](r.Err.Message, r.Err.Cursor, r.Err.MaxOffset)
		}
		v, err := f(r.Value)
		if err != nil {
			return FailAt[B](err.Error(), cur, r.Next.Offset())
		}
		return Success(v, r.Next)
	}
}

// Collect maps the parsed value with a partial function; if the
// function doesn't apply (ok == false) the parser fails with
// fallbackMsg instead of propagating the original success.
func Collect[A, B any](p Parser[A], partial func(A) (B, bool), fallbackMsg string) Parser[B] {
	return func(cur cursor.Cursor) Result[B] {
		r := p(cur)
		if !r.OK() {
			return FailAt[B](r.Err.Message, r.Err.Cursor, r.Err.MaxOffset)
		}
		v, ok := partial(r.Value)
		if !ok {
			return FailAt[B](fallbackMsg, cur, r.Next.Offset())
		}
		return Success(v, r.Next)
	}
}

// Not succeeds, consuming nothing, iff p fails at cur.
func Not[T any](p Parser[T]) Parser[struct{}] {
	return func(cur cursor.Cursor) Result[struct{}] {
		if p(cur).OK() {
			return Fail[struct{}]("unexpected match", cur)
		}
		return Success(struct{}{}, cur)
	}
}

// LookAhead tries p at the cursor offset by n bytes without consuming
// any input itself.
func LookAhead[T any](n int, p Parser[T]) Parser[T] {
	return func(cur cursor.Cursor) Result[T] {
		r := p(cur.Advance(n))
		if !r.OK() {
			return FailAt[T](r.Err.Message, cur, r.Err.MaxOffset)
		}
		return Success(r.Value, cur)
	}
}

// LookBehind tries p without consuming input. Only n == 0 is
// supported, which tries p at the current position; any other n fails
// without trying p, since a Cursor cannot step backwards.
func LookBehind[T any](n int, p Parser[T]) Parser[T] {
	return func(cur cursor.Cursor) Result[T] {
		back := cur.Offset() - n
		if back < 0 {
			return Fail[T]("look_behind before start of input", cur)
		}
		probe := cursor.New(cur.Remaining()) // placeholder, replaced below
		_ = probe
		// Cursor has no native "rewind", so only n == 0 (current
		// position) is supported.
		if n == 0 {
			r := p(cur)
			if !r.OK() {
				return FailAt[T](r.Err.Message, cur, r.Err.MaxOffset)
			}
			return Success(r.Value, cur)
		}
		return Fail[T]("look_behind with n>0 requires a root-anchored cursor", cur)
	}
}

// Source runs p and returns the substring of the input it consumed,
// discarding p's own value.
func Source[T any](p Parser[T]) Parser[string] {
	return func(cur cursor.Cursor) Result[string] {
		r := p(cur)
		if !r.OK() {
			return FailAt[string](r.Err.Message, r.Err.Cursor, r.Err.MaxOffset)
		}
		n := r.Next.Offset() - cur.Offset()
		return Success(cur.Capture(n), r.Next)
	}
}

// WithCursor runs p and additionally returns the cursor positioned at
// the start of the parse, so callers can build a SourceFragment
// anchored to the original input (§4.1 "source capture").
type WithStart[T any] struct {
	Value T
	Start cursor.Cursor
	End   cursor.Cursor
}

func WithCursor[T any](p Parser[T]) Parser[WithStart[T]] {
	return func(cur cursor.Cursor) Result[WithStart[T]] {
		r := p(cur)
		if !r.OK() {
			return FailAt[WithStart[T]](r.Err.Message, r.Err.Cursor, r.Err.MaxOffset)
		}
		return Success(WithStart[T]{Value: r.Value, Start: cur, End: r.Next}, r.Next)
	}
}

// Pure always succeeds with v, consuming nothing.
func Pure[T any](v T) Parser[T] {
	return func(cur cursor.Cursor) Result[T] { return Success(v, cur) }
}

// Fails always fails with message, consuming nothing.
func Fails[T any](message string) Parser[T] {
	return func(cur cursor.Cursor) Result[T] { return Fail[T](message, cur) }
}
