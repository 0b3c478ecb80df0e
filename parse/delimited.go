package parse

import (
	"strings"

	"github.com/laikadoc/laika/cursor"
)

// DelimitedOptions configures the DelimitedText scanner of §4.1.
type DelimitedOptions struct {
	AcceptEOF     bool // treat running out of input as a valid terminator
	NonEmpty      bool // require at least one character before the delimiter
	KeepDelimiter bool // leave the delimiter unconsumed
	FailOn        map[rune]bool
}

// DelimitedText reads characters until delimiter matches, honoring
// opts. It is the building block inline spans use to find where
// emphasis, literal text, and similar delimited constructs end.
func DelimitedText(delimiter string, opts DelimitedOptions) Parser[string] {
	return func(cur cursor.Cursor) Result[string] {
		rest := cur.Remaining()
		i := 0
		for {
			if i+len(delimiter) <= len(rest) && rest[i:i+len(delimiter)] == delimiter {
				if opts.NonEmpty && i == 0 {
					return Fail[string]("delimited text must be non-empty", cur)
				}
				content := rest[:i]
				consumed := i
				if !opts.KeepDelimiter {
					consumed += len(delimiter)
				}
				return Success(content, cur.Advance(consumed))
			}
			if i >= len(rest) {
				if opts.AcceptEOF {
					if opts.NonEmpty && i == 0 {
						return Fail[string]("delimited text must be non-empty", cur)
					}
					return Success(rest[:i], cur.Advance(i))
				}
				return Fail[string]("delimiter not found before end of input", cur)
			}
			if len(opts.FailOn) > 0 {
				r := rune(rest[i])
				if opts.FailOn[r] {
					return Fail[string]("encountered a fail_on character before the delimiter", cur)
				}
			}
			i++
		}
	}
}

// InlineEventKind distinguishes the two outcomes of ScanInline: an
// embedded span starting here that the caller must recurse into, or
// the enclosing span's own end delimiter.
type InlineEventKind int

const (
	InlineText InlineEventKind = iota
	InlineNestedDelimiter
	InlineEndDelimiter
)

// InlineEvent is one step of the inline delimited-text scan: either a
// run of plain text, a nested span's start character (the caller
// recurses, then the scan resumes after the embedded span), or the
// enclosing delimiter.
type InlineEvent struct {
	Kind      InlineEventKind
	Text      string // InlineText, and captured text for InlineEndDelimiter
	StartChar rune   // InlineNestedDelimiter
	Next      cursor.Cursor
}

// ScanInline performs the one-pass span loop of §4.1/§4.3: it consumes
// characters from cur until either isNestedStart reports a candidate
// embedded-span start char, or isEnd matches the enclosing delimiter
// at the current position. It returns one event per call: the pending
// run of text when there is one, otherwise the stopping point itself,
// so callers drive it in a loop, recursively parsing nested spans
// between calls.
func ScanInline(cur cursor.Cursor, isNestedStart func(r rune) bool, isEnd func(cursor.Cursor) (matched bool, length int)) InlineEvent {
	start := cur
	probe := cur
	for {
		if probe.AtEOF() {
			return InlineEvent{Kind: InlineText, Text: start.Capture(probe.Offset() - start.Offset()), Next: probe}
		}
		if ok, n := isEnd(probe); ok {
			text := start.Capture(probe.Offset() - start.Offset())
			if text != "" {
				return InlineEvent{Kind: InlineText, Text: text, Next: probe}
			}
			return InlineEvent{Kind: InlineEndDelimiter, Text: text, Next: probe.Advance(n)}
		}
		b, _ := probe.CharAt(0)
		r := rune(b)
		if isNestedStart != nil && isNestedStart(r) {
			text := start.Capture(probe.Offset() - start.Offset())
			if text != "" {
				return InlineEvent{Kind: InlineText, Text: text, Next: probe}
			}
			return InlineEvent{Kind: InlineNestedDelimiter, StartChar: r, Next: probe}
		}
		probe = probe.Advance(1)
	}
}

// LongestFirst sorts candidate delimiter strings so that longer runs
// (e.g. "***") are tried, and therefore bind, before shorter ones
// ("**", then "*") as required by §4.3's tie-break rule.
func LongestFirst(delims []string) []string {
	out := append([]string(nil), delims...)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && len(out[j]) > len(out[j-1]); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// HasPrefixAt reports whether s appears at cur's current position.
func HasPrefixAt(cur cursor.Cursor, s string) bool {
	return strings.HasPrefix(cur.Remaining(), s)
}
