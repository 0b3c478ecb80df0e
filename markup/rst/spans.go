package rst

import (
	"regexp"
	"strings"

	"github.com/laikadoc/laika/ast"
	"github.com/laikadoc/laika/cursor"
	"github.com/laikadoc/laika/directive"
	"github.com/laikadoc/laika/markup"
	"github.com/laikadoc/laika/parse"
)

var (
	footnoteRefRegexp = regexp.MustCompile(`^\[(#[a-zA-Z0-9_-]*|\d+|\*)\]_`)
	namedRefRegexp    = regexp.MustCompile("^`([^`<]+) <([^>]+)>`_")
	shortRefRegexp    = regexp.MustCompile("^`([^`]+)`_")
	substRefRegexp    = regexp.MustCompile(`^\|([^|\s][^|]*)\|`)
)

func (p *Parser) spanBuilders() []markup.SpanParserBuilder {
	return []markup.SpanParserBuilder{
		{Name: "strong", Build: func(rp markup.RecursiveParsers) parse.Prefixed[ast.Span] {
			return parse.NewPrefixed(parseDelimited(rp, "**"), '*')
		}},
		{Name: "emphasis", Build: func(rp markup.RecursiveParsers) parse.Prefixed[ast.Span] {
			return parse.NewPrefixed(parseDelimited(rp, "*"), '*')
		}},
		{Name: "inline_literal", Build: func(rp markup.RecursiveParsers) parse.Prefixed[ast.Span] {
			return parse.NewPrefixed(parseInlineLiteral, '`')
		}},
		{Name: "named_hyperlink_ref", Build: func(rp markup.RecursiveParsers) parse.Prefixed[ast.Span] {
			return parse.NewPrefixed(parseNamedHyperlink, '`')
		}},
		{Name: "short_hyperlink_ref", Build: func(rp markup.RecursiveParsers) parse.Prefixed[ast.Span] {
			return parse.NewPrefixed(parseShortHyperlink, '`')
		}},
		{Name: "interpreted_text", Build: func(rp markup.RecursiveParsers) parse.Prefixed[ast.Span] {
			return parse.NewPrefixed(directive.InterpretedTextParser(p.directives), '`', ':')
		}},
		{Name: "footnote_reference", Build: func(rp markup.RecursiveParsers) parse.Prefixed[ast.Span] {
			return parse.NewPrefixed(parseFootnoteReference, '[')
		}},
		{Name: "substitution_reference", Build: func(rp markup.RecursiveParsers) parse.Prefixed[ast.Span] {
			return parse.NewPrefixed(parseSubstitutionReference, '|')
		}},
	}
}

// parseDelimited handles both `**strong**` and `*emphasis*`, the two
// rST inline-markup forms sharing a marker-pair-with-no-whitespace-
// adjacent-to-the-marker rule (simplified here to: not immediately
// followed by whitespace on open, not immediately preceded by
// whitespace on close).
func parseDelimited(rp markup.RecursiveParsers, marker string) parse.Parser[ast.Span] {
	return func(cur cursor.Cursor) parse.Result[ast.Span] {
		rest := cur.Remaining()
		if !strings.HasPrefix(rest, marker) {
			return parse.Fail[ast.Span]("not a delimiter", cur)
		}
		afterOpen := cur.Advance(len(marker))
		if b, ok := afterOpen.CharAt(0); !ok || b == ' ' || b == '\n' {
			return parse.Fail[ast.Span]("no content after opening marker", cur)
		}
		body := afterOpen.Remaining()
		searchFrom := 1
		for {
			idx := strings.Index(body[searchFrom:], marker)
			if idx < 0 {
				return parse.Fail[ast.Span]("no matching closing marker", cur)
			}
			idx += searchFrom
			if body[idx-1] != ' ' && body[idx-1] != '\n' {
				inner := afterOpen.Capture(idx)
				content := rp.ParseSpans(inner)
				next := afterOpen.Advance(idx + len(marker))
				var span ast.Span
				if marker == "**" {
					span = ast.Strong{Content: content}
				} else {
					span = ast.Emphasized{Content: content}
				}
				return parse.Success[ast.Span](span, next)
			}
			searchFrom = idx + len(marker)
		}
	}
}

func parseInlineLiteral(cur cursor.Cursor) parse.Result[ast.Span] {
	rest := cur.Remaining()
	if !strings.HasPrefix(rest, "``") {
		return parse.Fail[ast.Span]("not an inline literal", cur)
	}
	afterOpen := cur.Advance(2)
	end := strings.Index(afterOpen.Remaining(), "``")
	if end < 0 {
		return parse.Fail[ast.Span]("unterminated inline literal", cur)
	}
	content := afterOpen.Capture(end)
	next := afterOpen.Advance(end + 2)
	return parse.Success[ast.Span](ast.Literal{Content: content}, next)
}

func parseNamedHyperlink(cur cursor.Cursor) parse.Result[ast.Span] {
	m := namedRefRegexp.FindStringSubmatch(cur.Remaining())
	if m == nil {
		return parse.Fail[ast.Span]("not a named hyperlink reference", cur)
	}
	next := cur.Advance(len(m[0]))
	link := ast.SpanLink{Content: []ast.Span{ast.Text{Content: m[1]}}, Target: ast.ExternalTarget{URL: m[2]}}
	return parse.Success[ast.Span](link, next)
}

func parseShortHyperlink(cur cursor.Cursor) parse.Result[ast.Span] {
	m := shortRefRegexp.FindStringSubmatch(cur.Remaining())
	if m == nil {
		return parse.Fail[ast.Span]("not a short hyperlink reference", cur)
	}
	next := cur.Advance(len(m[0]))
	link := ast.SpanLink{Content: []ast.Span{ast.Text{Content: m[1]}}, Target: ast.UnresolvedTarget{RefID: strings.ToLower(m[1])}}
	return parse.Success[ast.Span](link, next)
}

func parseFootnoteReference(cur cursor.Cursor) parse.Result[ast.Span] {
	m := footnoteRefRegexp.FindStringSubmatch(cur.Remaining())
	if m == nil {
		return parse.Fail[ast.Span]("not a footnote reference", cur)
	}
	next := cur.Advance(len(m[0]))
	return parse.Success[ast.Span](ast.FootnoteReference{Label: m[1]}, next)
}

func parseSubstitutionReference(cur cursor.Cursor) parse.Result[ast.Span] {
	m := substRefRegexp.FindStringSubmatch(cur.Remaining())
	if m == nil {
		return parse.Fail[ast.Span]("not a substitution reference", cur)
	}
	next := cur.Advance(len(m[0]))
	return parse.Success[ast.Span](ast.SubstitutionReference{Name: strings.TrimSpace(m[1])}, next)
}
