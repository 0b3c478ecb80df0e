// Package rst implements the reStructuredText dialect of §4.3/§5:
// underline/overline section headers with first-seen decoration
// ordering, bullet/enumerated lists, indented block quotes and literal
// blocks, explicit markup blocks (footnotes, citations, hyperlink
// targets, substitution definitions, directives, comments), and
// interpreted text/substitution spans. Grounded on the same
// regex-per-construct, switch-on-leading-character style as the
// markdown dialect, itself retargeted from the teacher's
// document.go/inline.go/list.go.
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

// Parser is the rST front-end. Unlike Markdown, rST assigns header
// levels by the order in which distinct underline/overline decoration
// characters are first encountered (§5.1's "decoration ordering"),
// which is state a single Parser instance must thread across its
// whole block pass — hence decorations lives on the Parser rather
// than being recomputed per call like Markdown's stateless regexes.
type Parser struct {
	blocks      *markup.BlockEngine
	spans       *markup.SpanEngine
	decorations *decorationOrder
	directives  *directive.Registry
}

// New builds an rST parser. reg may be nil, in which case an empty
// registry is used: every directive call is reported Invalid, and
// interpreted text stays an InterpretedText node with its role
// unapplied (§5.3's extension points are opt-in).
func New(reg *directive.Registry) *Parser {
	if reg == nil {
		reg = directive.NewRegistry("")
	}
	p := &Parser{decorations: newDecorationOrder(), directives: reg}
	rp := markup.RecursiveParsers{
		ParseBlocks: func(input string, pos markup.Position) []ast.Block {
			return p.blocks.Parse(cursor.New(input), pos)
		},
		ParseSpans: func(input string) []ast.Span {
			return p.spans.Parse(input)
		},
	}
	blocks := markup.NewBlockEngine(p.blockBuilders(), rp)
	spans := markup.NewSpanEngine(p.spanBuilders(), rp)
	p.blocks = &blocks
	p.spans = &spans
	return p
}

// ParseBlocks runs the block pass only, leaving inline regions as
// UnresolvedSpanSequence placeholders.
func (p *Parser) ParseBlocks(input string) []ast.Block {
	normalized := markup.Normalize(input, markup.TabStops)
	return p.blocks.Parse(cursor.New(normalized), markup.PositionRootOnly)
}

// Parse runs the block pass then expands every span placeholder.
func (p *Parser) Parse(input string) []ast.Block {
	blocks := p.ParseBlocks(input)
	return markup.ExpandSpans(blocks, *p.spans)
}

func inlineFragment(text string, pos cursor.Position) []ast.Span {
	return []ast.Span{ast.UnresolvedSpanSequence{Source: ast.Fragment{Source: text, Position: pos}}}
}

// decorationOrder assigns each distinct underline/overline character
// the next unused header level the first time it's seen, per rST's
// "the first encountered style defines level 1" rule.
type decorationOrder struct {
	order map[byte]ast.HeaderLevel
	next  ast.HeaderLevel
}

func newDecorationOrder() *decorationOrder {
	return &decorationOrder{order: map[byte]ast.HeaderLevel{}, next: 1}
}

func (d *decorationOrder) levelFor(decoChar byte) ast.HeaderLevel {
	if lvl, ok := d.order[decoChar]; ok {
		return lvl
	}
	lvl := d.next
	d.order[decoChar] = lvl
	d.next++
	return lvl
}

var (
	decoCharRegexp      = regexp.MustCompile(`^[!-/:-@\[-` + "`" + `{-~]$`)
	bulletRegexp        = regexp.MustCompile(`^( {0,3})([-*+])( +)(.*)$`)
	enumRegexp          = regexp.MustCompile(`^( {0,3})(#|\d{1,9})([.)])( +)(.*)$`)
	directiveLineRegexp = regexp.MustCompile(`^\.\. +([a-zA-Z][a-zA-Z0-9_-]*)::(.*)$`)
	footnoteDefRegexp   = regexp.MustCompile(`^\.\. +\[(#[a-zA-Z0-9_-]*|\d+|\*)\]\s+(.*)$`)
	citationDefRegexp   = regexp.MustCompile(`^\.\. +\[([a-zA-Z][a-zA-Z0-9_-]*)\]\s+(.*)$`)
	linkTargetRegexp    = regexp.MustCompile(`^\.\. +_([^:]+):\s*(\S*)\s*$`)
	substDefRegexp      = regexp.MustCompile(`^\.\. +\|([^|]+)\|\s+replace::\s*(.*)$`)
	commentRegexp       = regexp.MustCompile(`^\.\. (?:\s.*)?$`)
)

func (p *Parser) blockBuilders() []markup.BlockParserBuilder {
	return []markup.BlockParserBuilder{
		{Name: "literal_block_marker", Prec: markup.PrecedenceHigh, Pos: markup.PositionAny,
			Build: func(rp markup.RecursiveParsers) parse.Prefixed[ast.Block] {
				return parse.NewPrefixed(parseAnonymousLiteralBlock, ':')
			}},
		{Name: "directive_call", Recursive: true, Prec: markup.PrecedenceHigh, Pos: markup.PositionAny, Interrupter: "..",
			Build: func(rp markup.RecursiveParsers) parse.Prefixed[ast.Block] {
				return parse.NewPrefixed(p.parseExplicitMarkup(rp), '.')
			}},
		{Name: "bullet_list", Recursive: true, Prec: markup.PrecedenceHigh, Pos: markup.PositionAny,
			Build: func(rp markup.RecursiveParsers) parse.Prefixed[ast.Block] {
				return parse.NewPrefixed(parseList(rp, bulletRegexp, false), '-', '*', '+')
			}},
		{Name: "enum_list", Recursive: true, Prec: markup.PrecedenceHigh, Pos: markup.PositionAny,
			Build: func(rp markup.RecursiveParsers) parse.Prefixed[ast.Block] {
				return parse.NewPrefixed(parseList(rp, enumRegexp, true), '#', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9')
			}},
		// section_header and block_quote cannot declare a bounded start-
		// char set (a title or a quoted line may start with any
		// character), so they run as low-precedence candidates, tried
		// in order before the paragraph catch-all rather than as
		// high-precedence parsers (which require a non-empty StartChars
		// set per markup.BlockParserBuilder's contract).
		{Name: "section_header", Prec: markup.PrecedenceLow, Pos: markup.PositionAny,
			Build: func(rp markup.RecursiveParsers) parse.Prefixed[ast.Block] {
				return parse.Prefixed[ast.Block]{Parser: p.parseSectionHeader}
			}},
		{Name: "block_quote", Recursive: true, Prec: markup.PrecedenceLow, Pos: markup.PositionAny,
			Build: func(rp markup.RecursiveParsers) parse.Prefixed[ast.Block] {
				return parse.Prefixed[ast.Block]{Parser: parseBlockQuote(rp)}
			}},
		{Name: "paragraph", Prec: markup.PrecedenceLow, Pos: markup.PositionAny,
			Build: func(rp markup.RecursiveParsers) parse.Prefixed[ast.Block] {
				return parse.Prefixed[ast.Block]{Parser: p.parseParagraph}
			}},
	}
}

// parseSectionHeader recognizes both the underline-only and
// overline+underline forms: a (possibly overlined) title line followed
// by a matching run of one repeated punctuation character at least as
// long as the title.
func (p *Parser) parseSectionHeader(cur cursor.Cursor) parse.Result[ast.Block] {
	start := cur
	line1 := cur.LineContent()
	overline := isDecoLine(line1)
	var decoChar byte
	var titleCur, afterTitle cursor.Cursor
	if overline {
		decoChar = line1[0]
		titleCur = advancePastLine(cur)
		if titleCur.AtEOF() {
			return parse.Fail[ast.Block]("overline with no title", cur)
		}
		afterTitle = advancePastLine(titleCur)
	} else {
		titleCur = cur
		afterTitle = advancePastLine(cur)
	}
	title := strings.TrimSpace(titleCur.LineContent())
	if title == "" || afterTitle.AtEOF() {
		return parse.Fail[ast.Block]("not a section header", cur)
	}
	underline := afterTitle.LineContent()
	if !isDecoLine(underline) {
		return parse.Fail[ast.Block]("missing underline", cur)
	}
	if overline && underline[0] != decoChar {
		return parse.Fail[ast.Block]("overline/underline mismatch", cur)
	}
	decoChar = underline[0]
	if len(strings.TrimRight(underline, "\r\n")) < len([]rune(title)) {
		return parse.Fail[ast.Block]("underline shorter than title", cur)
	}
	next := advancePastLine(afterTitle)
	level := p.decorations.levelFor(decoChar)
	h := ast.Header{Level: level, Spans: inlineFragment(title, titleCur.Position())}
	h.Pos = next.Between(start)
	return parse.Success[ast.Block](h, next)
}

// isDecoLine reports whether line is one punctuation character repeated
// at least twice, optionally followed by whitespace.
func isDecoLine(line string) bool {
	t := strings.TrimRight(line, " \t\r\f")
	if len(t) < 2 || !decoCharRegexp.MatchString(t[:1]) {
		return false
	}
	return strings.Count(t, t[:1]) == len(t)
}

// parseAnonymousLiteralBlock handles a paragraph-terminating "::" on
// its own line (rather than trailing an existing paragraph, which the
// paragraph parser itself handles) followed by an indented block.
func parseAnonymousLiteralBlock(cur cursor.Cursor) parse.Result[ast.Block] {
	line := strings.TrimRight(cur.LineContent(), " \t")
	if line != "::" {
		return parse.Fail[ast.Block]("not a literal block marker", cur)
	}
	start := cur
	next := skipBlank(advancePastLine(cur))
	if next.AtEOF() || leadingSpaces(next.LineContent()) == 0 {
		return parse.Fail[ast.Block]("literal block marker with no indented body", cur)
	}
	indent := leadingSpaces(next.LineContent())
	var lines []string
	for !next.AtEOF() {
		l := next.LineContent()
		if strings.TrimSpace(l) == "" {
			lines = append(lines, "")
			next = advancePastLine(next)
			continue
		}
		if leadingSpaces(l) < indent {
			break
		}
		lines = append(lines, l[indent:])
		next = advancePastLine(next)
	}
	lit := ast.LiteralBlock{Content: strings.Join(lines, "\n")}
	lit.Pos = next.Between(start)
	return parse.Success[ast.Block](lit, next)
}

func parseBlockQuote(rp markup.RecursiveParsers) parse.Parser[ast.Block] {
	return func(cur cursor.Cursor) parse.Result[ast.Block] {
		line := cur.LineContent()
		if leadingSpaces(line) == 0 || strings.TrimSpace(line) == "" {
			return parse.Fail[ast.Block]("not a block quote", cur)
		}
		indent := leadingSpaces(line)
		start := cur
		var stripped []string
		next := cur
		for !next.AtEOF() {
			l := next.LineContent()
			if strings.TrimSpace(l) == "" {
				stripped = append(stripped, "")
				next = advancePastLine(next)
				continue
			}
			if leadingSpaces(l) < indent {
				break
			}
			stripped = append(stripped, l[indent:])
			next = advancePastLine(next)
		}
		content := rp.ParseBlocks(strings.Join(stripped, "\n"), markup.PositionNestedOnly)
		qb := ast.QuotedBlock{Content: content}
		qb.Pos = next.Between(start)
		return parse.Success[ast.Block](qb, next)
	}
}

func parseList(rp markup.RecursiveParsers, itemRegexp *regexp.Regexp, ordered bool) parse.Parser[ast.Block] {
	return func(cur cursor.Cursor) parse.Result[ast.Block] {
		if !itemRegexp.MatchString(cur.LineContent()) {
			return parse.Fail[ast.Block]("not a list item", cur)
		}
		start := cur
		var items []ast.Block
		next := cur
		for !next.AtEOF() && itemRegexp.MatchString(next.LineContent()) {
			item, n2 := parseListItem(rp, next, itemRegexp, ordered)
			items = append(items, item)
			next = n2
		}
		pos := next.Between(start)
		var list ast.Block
		if ordered {
			el := ast.EnumList{Items: items}
			el.Pos = pos
			list = el
		} else {
			bl := ast.BulletList{Items: items}
			bl.Pos = pos
			list = bl
		}
		return parse.Success(list, next)
	}
}

func parseListItem(rp markup.RecursiveParsers, cur cursor.Cursor, itemRegexp *regexp.Regexp, ordered bool) (ast.Block, cursor.Cursor) {
	start := cur
	m := itemRegexp.FindStringSubmatch(cur.LineContent())
	marker, firstContent := m[2], m[4]
	gapLen := len(m[3])
	minIndent := len(m[1]) + len(marker) + gapLen
	var raw []string
	raw = append(raw, firstContent)
	next := advancePastLine(cur)
	for !next.AtEOF() {
		l := next.LineContent()
		if strings.TrimSpace(l) == "" {
			raw = append(raw, "")
			next = advancePastLine(next)
			continue
		}
		indent := leadingSpaces(l)
		if indent < minIndent {
			break
		}
		raw = append(raw, l[minIndent:])
		next = advancePastLine(next)
	}
	children := rp.ParseBlocks(strings.Join(raw, "\n"), markup.PositionNestedOnly)
	item := ast.ListItem{Bullet: marker, Children: children}
	item.Pos = next.Between(start)
	return item, next
}

func leadingSpaces(s string) int {
	n := 0
	for n < len(s) && s[n] == ' ' {
		n++
	}
	return n
}

func skipBlank(cur cursor.Cursor) cursor.Cursor {
	for !cur.AtEOF() && strings.TrimSpace(cur.LineContent()) == "" {
		cur = advancePastLine(cur)
	}
	return cur
}

func advancePastLine(cur cursor.Cursor) cursor.Cursor {
	n := len(cur.LineContent())
	next := cur.Advance(n)
	if b, ok := next.CharAt(0); ok && b == '\n' {
		next = next.Advance(1)
	}
	return next
}

func (p *Parser) parseParagraph(cur cursor.Cursor) parse.Result[ast.Block] {
	if cur.AtEOF() {
		return parse.Fail[ast.Block]("nothing left to parse", cur)
	}
	start := cur
	var lines []string
	next := cur
	for !next.AtEOF() {
		l := next.LineContent()
		if strings.TrimSpace(l) == "" {
			break
		}
		if len(lines) > 0 && markup.InterruptsParagraph(p.blockBuilders(), l) {
			break
		}
		lines = append(lines, l)
		next = advancePastLine(next)
	}
	if len(lines) == 0 {
		return parse.Fail[ast.Block]("empty paragraph", cur)
	}
	text := strings.Join(lines, "\n")
	if strings.HasSuffix(strings.TrimRight(text, " \t"), "::") {
		trimmed := strings.TrimSuffix(strings.TrimRight(text, " \t"), "::")
		para := ast.Paragraph{Spans: inlineFragment(trimmed, start.Position())}
		para.Pos = next.Between(start)
		litNext := skipBlank(next)
		if !litNext.AtEOF() && leadingSpaces(litNext.LineContent()) > 0 {
			litStart := litNext
			indent := leadingSpaces(litNext.LineContent())
			var litLines []string
			for !litNext.AtEOF() {
				l := litNext.LineContent()
				if strings.TrimSpace(l) == "" {
					litLines = append(litLines, "")
					litNext = advancePastLine(litNext)
					continue
				}
				if leadingSpaces(l) < indent {
					break
				}
				litLines = append(litLines, l[indent:])
				litNext = advancePastLine(litNext)
			}
			lit := ast.LiteralBlock{Content: strings.Join(litLines, "\n")}
			lit.Pos = litNext.Between(litStart)
			seq := ast.BlockSequence{Content: []ast.Block{para, lit}}
			seq.Pos = litNext.Between(start)
			return parse.Success[ast.Block](seq, litNext)
		}
		return parse.Success[ast.Block](para, next)
	}
	para := ast.Paragraph{Spans: inlineFragment(text, start.Position())}
	para.Pos = next.Between(start)
	return parse.Success[ast.Block](para, next)
}
