package markdown

import (
	"regexp"
	"strings"

	"github.com/laikadoc/laika/ast"
	"github.com/laikadoc/laika/cursor"
	"github.com/laikadoc/laika/directive"
	"github.com/laikadoc/laika/markup"
	"github.com/laikadoc/laika/parse"
)

func (p *Parser) spanBuilders() []markup.SpanParserBuilder {
	builders := []markup.SpanParserBuilder{
		{Name: "escape", Build: func(rp markup.RecursiveParsers) parse.Prefixed[ast.Span] {
			return parse.NewPrefixed(parseEscape, '\\')
		}},
		{Name: "hard_break", Build: func(rp markup.RecursiveParsers) parse.Prefixed[ast.Span] {
			return parse.NewPrefixed(parseHardBreak, ' ', '\\')
		}},
		{Name: "code_span", Build: func(rp markup.RecursiveParsers) parse.Prefixed[ast.Span] {
			return parse.NewPrefixed(parseCodeSpan, '`')
		}},
		{Name: "autolink", Build: func(rp markup.RecursiveParsers) parse.Prefixed[ast.Span] {
			return parse.NewPrefixed(parseAutolink, 'h')
		}},
		{Name: "image", Build: func(rp markup.RecursiveParsers) parse.Prefixed[ast.Span] {
			return parse.NewPrefixed(parseImage(rp), '!')
		}},
		{Name: "link", Recursive: true, Build: func(rp markup.RecursiveParsers) parse.Prefixed[ast.Span] {
			return parse.NewPrefixed(parseLink(rp), '[')
		}},
		{Name: "strong_emphasis", Recursive: true, Build: func(rp markup.RecursiveParsers) parse.Prefixed[ast.Span] {
			return parse.NewPrefixed(parseDelimitedRun(rp), '*', '_')
		}},
		{Name: "strikethrough", Recursive: true, Build: func(rp markup.RecursiveParsers) parse.Prefixed[ast.Span] {
			return parse.NewPrefixed(parseStrikethrough(rp), '~')
		}},
	}
	if p.directives != nil {
		builders = append(builders, markup.SpanParserBuilder{
			Name: "directive_call", Build: func(rp markup.RecursiveParsers) parse.Prefixed[ast.Span] {
				return parse.NewPrefixed(directive.SpanDirectiveParser(p.directives, rp.ParseSpans), '@')
			},
		})
	}
	return builders
}

func parseEscape(cur cursor.Cursor) parse.Result[ast.Span] {
	b, ok := cur.CharAt(1)
	if !ok || !isASCIIPunct(b) {
		return parse.Fail[ast.Span]("not an escape sequence", cur)
	}
	next := cur.Advance(2)
	return parse.Success[ast.Span](ast.Text{Content: string(b)}, next)
}

func isASCIIPunct(b byte) bool {
	return strings.ContainsRune("!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~", rune(b))
}

func parseHardBreak(cur cursor.Cursor) parse.Result[ast.Span] {
	c0, _ := cur.CharAt(0)
	if c0 == '\\' {
		if b, ok := cur.CharAt(1); ok && b == '\n' {
			return parse.Success[ast.Span](ast.LineBreak{Hard: true}, cur.Advance(2))
		}
		return parse.Fail[ast.Span]("not a hard break", cur)
	}
	line := remainingOfLine(cur)
	if len(line) == 0 || !strings.HasSuffix(line, "  ") {
		return parse.Fail[ast.Span]("not a hard break", cur)
	}
	next := cur.Advance(len(line))
	if b, ok := next.CharAt(0); ok && b == '\n' {
		return parse.Success[ast.Span](ast.LineBreak{Hard: true}, next.Advance(1))
	}
	return parse.Fail[ast.Span]("hard break needs a following line", cur)
}

func remainingOfLine(cur cursor.Cursor) string {
	rest := cur.Remaining()
	if i := strings.IndexByte(rest, '\n'); i >= 0 {
		return rest[:i]
	}
	return rest
}

// parseCodeSpan matches a run of N backticks, then the shortest text
// up to a matching run of exactly N backticks (CommonMark §6.1).
func parseCodeSpan(cur cursor.Cursor) parse.Result[ast.Span] {
	n := runLength(cur, '`')
	if n == 0 {
		return parse.Fail[ast.Span]("not a code span", cur)
	}
	afterOpen := cur.Advance(n)
	rest := afterOpen.Remaining()
	closeMarker := strings.Repeat("`", n)
	idx := findClosingRun(rest, '`', n)
	if idx < 0 {
		return parse.Fail[ast.Span]("unterminated code span", cur)
	}
	content := rest[:idx]
	content = strings.Trim(content, " ")
	content = strings.ReplaceAll(content, "\n", " ")
	next := afterOpen.Advance(idx + len(closeMarker))
	return parse.Success[ast.Span](ast.InlineCode{Spans: []ast.Span{ast.Literal{Content: content}}}, next)
}

func runLength(cur cursor.Cursor, r byte) int {
	n := 0
	for {
		b, ok := cur.CharAt(n)
		if !ok || b != r {
			break
		}
		n++
	}
	return n
}

// findClosingRun finds the first run of exactly n copies of r in s that
// is not part of a longer run, returning its byte offset or -1.
func findClosingRun(s string, r byte, n int) int {
	for i := 0; i+n <= len(s); {
		if s[i] != r {
			i++
			continue
		}
		j := i
		for j < len(s) && s[j] == r {
			j++
		}
		if j-i == n {
			return i
		}
		i = j
	}
	return -1
}

var autolinkRegexp = regexp.MustCompile(`^https?://[^\s<>]+`)

func parseAutolink(cur cursor.Cursor) parse.Result[ast.Span] {
	rest := cur.Remaining()
	m := autolinkRegexp.FindString(rest)
	if m == "" {
		return parse.Fail[ast.Span]("not an autolink", cur)
	}
	m = strings.TrimRight(m, ".,;:!?)")
	next := cur.Advance(len(m))
	link := ast.SpanLink{Content: []ast.Span{ast.Text{Content: m}}, Target: ast.ExternalTarget{URL: m}}
	return parse.Success[ast.Span](link, next)
}

func parseImage(rp markup.RecursiveParsers) parse.Parser[ast.Span] {
	return func(cur cursor.Cursor) parse.Result[ast.Span] {
		b, ok := cur.CharAt(1)
		if !ok || b != '[' {
			return parse.Fail[ast.Span]("not an image", cur)
		}
		linkRes := parseLink(rp)(cur.Advance(1))
		if !linkRes.OK() {
			return parse.Fail[ast.Span]("not an image", cur)
		}
		spanLink := linkRes.Value.(ast.SpanLink)
		var description strings.Builder
		for _, s := range spanLink.Content {
			if t, ok := s.(ast.Text); ok {
				description.WriteString(t.Content)
			}
		}
		img := ast.Image{Description: description.String(), Target: spanLink.Target, Title: spanLink.Title}
		return parse.Success[ast.Span](img, linkRes.Next)
	}
}

// parseLink handles both inline links `[text](url "title")` and
// reference links `[text][id]` / shortcut references `[text]`. The
// reference forms are left with an UnresolvedTarget for the rewrite
// engine's Resolve phase (§4.5/§6.2) to fill in from LinkDefinitions.
func parseLink(rp markup.RecursiveParsers) parse.Parser[ast.Span] {
	return func(cur cursor.Cursor) parse.Result[ast.Span] {
		b0, ok := cur.CharAt(0)
		if !ok || b0 != '[' {
			return parse.Fail[ast.Span]("not a link", cur)
		}
		textEnd, ok := matchBracket(cur, 1)
		if !ok {
			return parse.Fail[ast.Span]("unterminated link text", cur)
		}
		text := cur.Capture(textEnd + 1)[1:textEnd]
		afterText := cur.Advance(textEnd + 1)
		content := rp.ParseSpans(text)

		if b, ok := afterText.CharAt(0); ok && b == '(' {
			closeParen, ok := matchParen(afterText, 1)
			if ok {
				inside := afterText.Capture(closeParen + 1)[1:closeParen]
				url, title := splitURLTitle(inside)
				next := afterText.Advance(closeParen + 1)
				link := ast.SpanLink{Content: content, Target: ast.ExternalTarget{URL: url}}
				if title != "" {
					link.Title = &title
				}
				return parse.Success[ast.Span](link, next)
			}
		}
		if b, ok := afterText.CharAt(0); ok && b == '[' {
			idEnd, ok := matchBracket(afterText, 1)
			if ok {
				id := afterText.Capture(idEnd + 1)[1:idEnd]
				next := afterText.Advance(idEnd + 1)
				if id == "" {
					id = text
				}
				link := ast.SpanLink{Content: content, Target: ast.UnresolvedTarget{RefID: strings.ToLower(strings.TrimSpace(id))}}
				return parse.Success[ast.Span](link, next)
			}
		}
		link := ast.SpanLink{Content: content, Target: ast.UnresolvedTarget{RefID: strings.ToLower(strings.TrimSpace(text))}}
		return parse.Success[ast.Span](link, afterText)
	}
}

func splitURLTitle(s string) (string, string) {
	s = strings.TrimSpace(s)
	i := strings.IndexByte(s, '"')
	if i < 0 {
		return s, ""
	}
	url := strings.TrimSpace(s[:i])
	title := strings.Trim(s[i:], `" `)
	return url, title
}

// matchBracket/matchParen return the offset (relative to cur) of the
// matching close delimiter, honoring nesting, starting the scan at
// offset `from`.
func matchBracket(cur cursor.Cursor, from int) (int, bool) {
	return matchDelim(cur, from, '[', ']')
}

func matchParen(cur cursor.Cursor, from int) (int, bool) {
	return matchDelim(cur, from, '(', ')')
}

func matchDelim(cur cursor.Cursor, from int, open, close byte) (int, bool) {
	depth := 1
	i := from
	for {
		b, ok := cur.CharAt(i)
		if !ok || b == '\n' {
			return 0, false
		}
		switch b {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return i, true
			}
		}
		i++
	}
}

// parseDelimitedRun handles `*`/`_` emphasis and strong emphasis by
// matching a run of the same character, finding the matching closing
// run, and recursing into the enclosed text for nested spans. A run of
// three or more opens as strong emphasis ("**"); the extra delimiter
// characters are parsed as ordinary text, so "***" has no combined
// strong-and-emphasis reading.
func parseDelimitedRun(rp markup.RecursiveParsers) parse.Parser[ast.Span] {
	return func(cur cursor.Cursor) parse.Result[ast.Span] {
		c0, _ := cur.CharAt(0)
		n := runLength(cur, c0)
		if n == 0 {
			return parse.Fail[ast.Span]("not an emphasis delimiter", cur)
		}
		if n > 2 {
			n = 2 // only emphasis (1) and strong (2) are recognized; a
			// longer run is treated as a strong delimiter plus literal
			// leftover characters handled by the caller on the next pass
		}
		if nextB, ok := cur.CharAt(n); !ok || nextB == ' ' || nextB == '\n' {
			return parse.Fail[ast.Span]("not a valid opening delimiter", cur)
		}
		marker := strings.Repeat(string(c0), n)
		afterOpen := cur.Advance(n)
		idx := indexClosingMarker(afterOpen.Remaining(), marker, c0)
		if idx < 0 {
			return parse.Fail[ast.Span]("no matching closing delimiter", cur)
		}
		inner := afterOpen.Capture(idx)
		content := rp.ParseSpans(inner)
		next := afterOpen.Advance(idx + len(marker))
		var span ast.Span
		if n == 1 {
			span = ast.Emphasized{Content: content}
		} else {
			span = ast.Strong{Content: content}
		}
		return parse.Success[ast.Span](span, next)
	}
}

func isWhitespaceOrPunct(b byte) bool {
	return b == ' ' || b == '\n' || b == '\t' || isASCIIPunct(b)
}

// indexClosingMarker finds the first occurrence of marker in s that is
// preceded by a non-space character (a valid closing flank) and is not
// itself part of a longer run of the same delimiter character.
func indexClosingMarker(s, marker string, c byte) int {
	for i := 0; i+len(marker) <= len(s); {
		if s[i] != c {
			i++
			continue
		}
		runEnd := i
		for runEnd < len(s) && s[runEnd] == c {
			runEnd++
		}
		runLen := runEnd - i
		if runLen >= len(marker) && i > 0 && s[i-1] != ' ' && s[i-1] != '\n' {
			return i
		}
		i = runEnd
	}
	return -1
}

func parseStrikethrough(rp markup.RecursiveParsers) parse.Parser[ast.Span] {
	return func(cur cursor.Cursor) parse.Result[ast.Span] {
		if runLength(cur, '~') < 2 {
			return parse.Fail[ast.Span]("not a strikethrough delimiter", cur)
		}
		afterOpen := cur.Advance(2)
		idx := strings.Index(afterOpen.Remaining(), "~~")
		if idx < 0 {
			return parse.Fail[ast.Span]("unterminated strikethrough", cur)
		}
		inner := afterOpen.Capture(idx)
		content := rp.ParseSpans(inner)
		next := afterOpen.Advance(idx + 2)
		return parse.Success[ast.Span](ast.Strikethrough{Content: content}, next)
	}
}
