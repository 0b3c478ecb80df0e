// Package markdown implements the GitHub-Flavored Markdown dialect of
// §4.3/§6.3: CommonMark-ish blocks and spans plus GFM's strikethrough,
// tables, fenced code with info strings, and autolinks. Grounded on
// the teacher's regex-per-construct, switch-on-leading-character style
// (alexispurslane/go-org's document.go/inline.go/list.go), retargeted
// from org-mode syntax to Markdown syntax.
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

// Parser is the Markdown front-end: a bound block engine plus span
// engine, wired together through a RecursiveParsers handle so block
// parsers that embed other blocks (list items, block quotes) and
// every block that holds inline content can recurse without a global
// registry (§9).
type Parser struct {
	blocks     *markup.BlockEngine
	spans      *markup.SpanEngine
	directives *directive.Registry
}

// New builds a Markdown parser with the standard GFM block and span
// grammars and no directive-call support.
func New() *Parser { return newParser(nil) }

// NewWithDirectives builds a Markdown parser that also recognizes the
// format-agnostic `@:name(attrs) { body }` directive call (§4.4) at
// both block and span level, alongside the usual GFM grammar.
func NewWithDirectives(reg *directive.Registry) *Parser { return newParser(reg) }

func newParser(reg *directive.Registry) *Parser {
	p := &Parser{directives: reg}
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
// UnresolvedSpanSequence placeholders (§4.3's two-pass discipline).
func (p *Parser) ParseBlocks(input string) []ast.Block {
	normalized := markup.Normalize(input, markup.TabStops)
	return p.blocks.Parse(cursor.New(normalized), markup.PositionRootOnly)
}

// Parse runs the block pass then immediately expands every span
// placeholder, returning a tree with no UnresolvedSpanSequence nodes
// left. This is the "parse_unresolved" shape of §6.1 restricted to
// Markdown: references are still unresolved link-id/footnote/etc
// placeholders, only inline markup itself has been parsed.
func (p *Parser) Parse(input string) []ast.Block {
	blocks := p.ParseBlocks(input)
	return markup.ExpandSpans(blocks, *p.spans)
}

// inlineFragment wraps source text captured during the block pass as
// a span-holder's unresolved content, to be expanded by ExpandSpans.
func inlineFragment(text string, pos cursor.Position) []ast.Span {
	return []ast.Span{ast.UnresolvedSpanSequence{Source: ast.Fragment{Source: text, Position: pos}}}
}

var (
	thematicBreakRegexp = regexp.MustCompile(`^ {0,3}(?:(?:-[ \t]*){3,}|(?:\*[ \t]*){3,}|(?:_[ \t]*){3,})$`)
	atxHeadingRegexp    = regexp.MustCompile(`^ {0,3}(#{1,6})(?:\s+(.*?))?\s*#*\s*$`)
	fenceOpenRegexp     = regexp.MustCompile("^ {0,3}(```+|~~~+)[ \t]*([^`\n]*)$")
	blockQuoteRegexp    = regexp.MustCompile(`^ {0,3}> ?(.*)$`)
	unorderedRegexp     = regexp.MustCompile(`^( {0,3})([-*+])( +)(.*)$`)
	orderedRegexp       = regexp.MustCompile(`^( {0,3})(\d{1,9})([.)])( +)(.*)$`)
	linkDefRegexp       = regexp.MustCompile(`^ {0,3}\[([^\]]+)\]:\s*(\S+)(?:\s+"([^"]*)")?\s*$`)
	tableRowRegexp      = regexp.MustCompile(`^\s*\|?(.+\|.*)\|?\s*$`)
	tableSepCellRegexp  = regexp.MustCompile(`^:?-+:?$`)
)

func (p *Parser) blockBuilders() []markup.BlockParserBuilder {
	builders := []markup.BlockParserBuilder{
		{Name: "thematic_break", Prec: markup.PrecedenceHigh, Pos: markup.PositionAny, Interrupter: "---",
			Build: func(rp markup.RecursiveParsers) parse.Prefixed[ast.Block] {
				return parse.NewPrefixed(parseThematicBreak, '-', '*', '_')
			}},
		{Name: "atx_heading", Prec: markup.PrecedenceHigh, Pos: markup.PositionAny, Interrupter: "#",
			Build: func(rp markup.RecursiveParsers) parse.Prefixed[ast.Block] {
				return parse.NewPrefixed(parseATXHeading, '#')
			}},
		{Name: "fenced_code", Prec: markup.PrecedenceHigh, Pos: markup.PositionAny, Interrupter: "```",
			Build: func(rp markup.RecursiveParsers) parse.Prefixed[ast.Block] {
				return parse.NewPrefixed(parseFencedCode, '`', '~')
			}},
		{Name: "link_definition", Prec: markup.PrecedenceHigh, Pos: markup.PositionAny,
			Build: func(rp markup.RecursiveParsers) parse.Prefixed[ast.Block] {
				return parse.NewPrefixed(parseLinkDefinition, '[')
			}},
		{Name: "table", Prec: markup.PrecedenceHigh, Pos: markup.PositionAny,
			Build: func(rp markup.RecursiveParsers) parse.Prefixed[ast.Block] {
				return parse.NewPrefixed(parseTable('|'), '|')
			}},
		{Name: "block_quote", Recursive: true, Prec: markup.PrecedenceHigh, Pos: markup.PositionAny, Interrupter: ">",
			Build: func(rp markup.RecursiveParsers) parse.Prefixed[ast.Block] {
				return parse.NewPrefixed(parseBlockQuote(rp), '>')
			}},
		{Name: "bullet_list", Recursive: true, Prec: markup.PrecedenceHigh, Pos: markup.PositionAny,
			Build: func(rp markup.RecursiveParsers) parse.Prefixed[ast.Block] {
				return parse.NewPrefixed(parseBulletList(rp), '-', '*', '+')
			}},
		{Name: "ordered_list", Recursive: true, Prec: markup.PrecedenceHigh, Pos: markup.PositionAny,
			Build: func(rp markup.RecursiveParsers) parse.Prefixed[ast.Block] {
				return parse.NewPrefixed(parseOrderedList(rp), '0', '1', '2', '3', '4', '5', '6', '7', '8', '9')
			}},
		{Name: "paragraph", Prec: markup.PrecedenceLow, Pos: markup.PositionAny,
			Build: func(rp markup.RecursiveParsers) parse.Prefixed[ast.Block] {
				return parse.Prefixed[ast.Block]{Parser: parseParagraph(p.interrupters())}
			}},
	}
	if p.directives != nil {
		builders = append([]markup.BlockParserBuilder{
			{Name: "directive_call", Prec: markup.PrecedenceHigh, Pos: markup.PositionAny, Interrupter: "@:",
				Build: func(rp markup.RecursiveParsers) parse.Prefixed[ast.Block] {
					return parse.NewPrefixed(directive.BlockDirectiveParser(p.directives, rp.ParseBlocks, rp.ParseSpans), '@')
				}},
		}, builders...)
	}
	return builders
}

// interrupters lists the Interrupter prefixes parseParagraph checks to
// decide when a following line starts a new block instead of
// continuing the paragraph, mirroring the same prefixes declared on
// blockBuilders without re-running their Build closures.
func (p *Parser) interrupters() []markup.BlockParserBuilder {
	builders := []markup.BlockParserBuilder{
		{Interrupter: "---"},
		{Interrupter: "#"},
		{Interrupter: "```"},
		{Interrupter: ">"},
	}
	if p.directives != nil {
		builders = append(builders, markup.BlockParserBuilder{Interrupter: "@:"})
	}
	return builders
}

func parseThematicBreak(cur cursor.Cursor) parse.Result[ast.Block] {
	line := cur.LineContent()
	if !thematicBreakRegexp.MatchString(line) {
		return parse.Fail[ast.Block]("not a thematic break", cur)
	}
	start := cur
	next := advancePastLine(cur)
	rule := ast.Rule{}
	rule.Pos = next.Between(start)
	return parse.Success[ast.Block](rule, next)
}

func parseATXHeading(cur cursor.Cursor) parse.Result[ast.Block] {
	line := cur.LineContent()
	m := atxHeadingRegexp.FindStringSubmatch(line)
	if m == nil {
		return parse.Fail[ast.Block]("not an ATX heading", cur)
	}
	start := cur
	level := len(m[1])
	content := strings.TrimSpace(m[2])
	contentPos := cur.Position()
	next := advancePastLine(cur)
	h := ast.Header{Level: ast.HeaderLevel(level), Spans: inlineFragment(content, contentPos)}
	h.Pos = next.Between(start)
	return parse.Success[ast.Block](h, next)
}

func parseFencedCode(cur cursor.Cursor) parse.Result[ast.Block] {
	line := cur.LineContent()
	m := fenceOpenRegexp.FindStringSubmatch(line)
	if m == nil {
		return parse.Fail[ast.Block]("not a fenced code block", cur)
	}
	start := cur
	fence, info := m[1], strings.TrimSpace(m[2])
	fenceChar := fence[0]
	next := advancePastLine(cur)
	var contentLines []string
	for !next.AtEOF() {
		l := next.LineContent()
		trimmed := strings.TrimLeft(l, " ")
		if strings.HasPrefix(trimmed, strings.Repeat(string(fenceChar), len(fence))) && strings.Trim(trimmed, string(fenceChar)+" \t") == "" {
			next = advancePastLine(next)
			break
		}
		contentLines = append(contentLines, l)
		next = advancePastLine(next)
	}
	lang := strings.Fields(info)
	var language string
	if len(lang) > 0 {
		language = lang[0]
	}
	code := ast.CodeBlock{Lang: language, Spans: []ast.Span{ast.Literal{Content: strings.Join(contentLines, "\n")}}}
	code.Pos = next.Between(start)
	return parse.Success[ast.Block](code, next)
}

func parseLinkDefinition(cur cursor.Cursor) parse.Result[ast.Block] {
	line := cur.LineContent()
	m := linkDefRegexp.FindStringSubmatch(line)
	if m == nil {
		return parse.Fail[ast.Block]("not a link reference definition", cur)
	}
	start := cur
	next := advancePastLine(cur)
	ld := ast.LinkDefinition{ID: strings.ToLower(strings.TrimSpace(m[1])), URL: m[2], Title: m[3]}
	ld.Pos = next.Between(start)
	return parse.Success[ast.Block](ld, next)
}

func parseBlockQuote(rp markup.RecursiveParsers) parse.Parser[ast.Block] {
	return func(cur cursor.Cursor) parse.Result[ast.Block] {
		line := cur.LineContent()
		if !blockQuoteRegexp.MatchString(line) {
			return parse.Fail[ast.Block]("not a block quote", cur)
		}
		start := cur
		var stripped []string
		next := cur
		for !next.AtEOF() {
			l := next.LineContent()
			m := blockQuoteRegexp.FindStringSubmatch(l)
			if m == nil {
				break
			}
			stripped = append(stripped, m[1])
			next = advancePastLine(next)
		}
		content := rp.ParseBlocks(strings.Join(stripped, "\n"), markup.PositionNestedOnly)
		qb := ast.QuotedBlock{Content: content}
		qb.Pos = next.Between(start)
		return parse.Success[ast.Block](qb, next)
	}
}

func parseBulletList(rp markup.RecursiveParsers) parse.Parser[ast.Block] {
	return parseList(rp, unorderedRegexp, false)
}

func parseOrderedList(rp markup.RecursiveParsers) parse.Parser[ast.Block] {
	return parseList(rp, orderedRegexp, true)
}

// parseList implements the teacher's list.go discipline (minIndent
// captured from the marker, re-lexing the dedented first line, then
// consuming sibling lines at the same indent) retargeted at Markdown
// bullet/ordered markers instead of org's.
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
	var marker, firstContent string
	var gapLen int
	if ordered {
		marker, firstContent = m[2]+m[3], m[5]
		gapLen = len(m[4])
	} else {
		marker, firstContent = m[2], m[4]
		gapLen = len(m[3])
	}
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

func parseTable(sep byte) func(cur cursor.Cursor) parse.Result[ast.Block] {
	return func(cur cursor.Cursor) parse.Result[ast.Block] {
		headerLine := cur.LineContent()
		if !strings.ContainsRune(headerLine, rune(sep)) {
			return parse.Fail[ast.Block]("not a table", cur)
		}
		start := cur
		afterHeader := advancePastLine(cur)
		if afterHeader.AtEOF() {
			return parse.Fail[ast.Block]("table missing alignment row", cur)
		}
		sepLine := afterHeader.LineContent()
		aligns, ok := parseAlignmentRow(sepLine, sep)
		if !ok {
			return parse.Fail[ast.Block]("not a table alignment row", cur)
		}
		headerCells := splitTableRow(headerLine, sep)
		next := advancePastLine(afterHeader)
		var bodyRows []ast.Block
		for !next.AtEOF() {
			l := next.LineContent()
			if strings.TrimSpace(l) == "" || !strings.ContainsRune(l, rune(sep)) {
				break
			}
			cells := splitTableRow(l, sep)
			bodyRows = append(bodyRows, buildRow(cells, aligns, ast.BodyCell))
			next = advancePastLine(next)
		}
		head := []ast.Block{buildRow(headerCells, aligns, ast.HeadCell)}
		table := ast.Table{Head: head, Body: bodyRows}
		table.Pos = next.Between(start)
		return parse.Success[ast.Block](table, next)
	}
}

func buildRow(cells []string, aligns []ast.Alignment, kind ast.CellKind) ast.Block {
	out := make([]ast.Block, len(cells))
	for i, c := range cells {
		a := ast.AlignDefault
		if i < len(aligns) {
			a = aligns[i]
		}
		out[i] = ast.Cell{Kind: kind, Align: a, Spans: inlineFragment(strings.TrimSpace(c), cursor.Position{})}
	}
	return ast.Row{Cells: out}
}

func splitTableRow(line string, sep byte) []string {
	trimmed := strings.TrimSpace(line)
	trimmed = strings.TrimPrefix(trimmed, string(sep))
	trimmed = strings.TrimSuffix(trimmed, string(sep))
	parts := strings.Split(trimmed, string(sep))
	return parts
}

func parseAlignmentRow(line string, sep byte) ([]ast.Alignment, bool) {
	cells := splitTableRow(line, sep)
	out := make([]ast.Alignment, len(cells))
	for i, c := range cells {
		c = strings.TrimSpace(c)
		if !tableSepCellRegexp.MatchString(c) {
			return nil, false
		}
		left, right := strings.HasPrefix(c, ":"), strings.HasSuffix(c, ":")
		switch {
		case left && right:
			out[i] = ast.AlignCenter
		case right:
			out[i] = ast.AlignRight
		case left:
			out[i] = ast.AlignLeft
		default:
			out[i] = ast.AlignDefault
		}
	}
	return out, true
}

func parseParagraph(interrupters []markup.BlockParserBuilder) parse.Parser[ast.Block] {
	return func(cur cursor.Cursor) parse.Result[ast.Block] {
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
			if len(lines) > 0 && markup.InterruptsParagraph(interrupters, l) {
				break
			}
			lines = append(lines, l)
			next = advancePastLine(next)
		}
		if len(lines) == 0 {
			return parse.Fail[ast.Block]("empty paragraph", cur)
		}
		text := strings.Join(lines, "\n")
		// Legacy literal-block discipline shared with rST: a paragraph
		// ending with "::" turns the following indented block into a
		// literal block rather than continuing inline parsing.
		if strings.HasSuffix(strings.TrimRight(text, " \t"), "::") {
			literalNext := skipBlank(next)
			if !literalNext.AtEOF() && leadingSpaces(literalNext.LineContent()) > 0 {
				indent := leadingSpaces(literalNext.LineContent())
				var litLines []string
				n2 := literalNext
				for !n2.AtEOF() {
					l := n2.LineContent()
					if strings.TrimSpace(l) == "" {
						litLines = append(litLines, "")
						n2 = advancePastLine(n2)
						continue
					}
					if leadingSpaces(l) < indent {
						break
					}
					litLines = append(litLines, l[indent:])
					n2 = advancePastLine(n2)
				}
				para := ast.Paragraph{Spans: inlineFragment(strings.TrimSuffix(text, "::"), start.Position())}
				para.Pos = next.Between(start)
				lit := ast.LiteralBlock{Content: strings.Join(litLines, "\n")}
				lit.Pos = n2.Between(literalNext)
				seq := ast.BlockSequence{Content: []ast.Block{para, lit}}
				seq.Pos = n2.Between(start)
				return parse.Success[ast.Block](seq, n2)
			}
		}
		para := ast.Paragraph{Spans: inlineFragment(text, start.Position())}
		para.Pos = next.Between(start)
		return parse.Success[ast.Block](para, next)
	}
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
