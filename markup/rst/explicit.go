package rst

import (
	"strings"

	"github.com/laikadoc/laika/ast"
	"github.com/laikadoc/laika/cursor"
	"github.com/laikadoc/laika/directive"
	"github.com/laikadoc/laika/markup"
	"github.com/laikadoc/laika/parse"
)

// parseExplicitMarkup dispatches every construct beginning with rST's
// ".. " explicit markup start on to its specific form: footnote,
// citation, hyperlink target, substitution definition, directive call,
// or (when none of those patterns match) a plain comment — rST's own
// fallback rule for ".. " blocks it doesn't otherwise recognize.
func (p *Parser) parseExplicitMarkup(rp markup.RecursiveParsers) parse.Parser[ast.Block] {
	return func(cur cursor.Cursor) parse.Result[ast.Block] {
		line := cur.LineContent()
		if !strings.HasPrefix(line, "..") {
			return parse.Fail[ast.Block]("not explicit markup", cur)
		}
		if m := footnoteDefRegexp.FindStringSubmatch(line); m != nil {
			return parseFootnoteLike(cur, m[1], m[2], false)
		}
		if m := citationDefRegexp.FindStringSubmatch(line); m != nil {
			return parseFootnoteLike(cur, m[1], m[2], true)
		}
		if m := linkTargetRegexp.FindStringSubmatch(line); m != nil {
			return parseLinkTarget(cur, m[1], m[2])
		}
		if m := substDefRegexp.FindStringSubmatch(line); m != nil {
			return parseSubstitutionDef(cur, m[1], m[2])
		}
		if m := directiveLineRegexp.FindStringSubmatch(line); m != nil {
			return p.parseDirective(rp, cur, m[1], m[2])
		}
		return parseComment(cur)
	}
}

// parseFootnoteLike handles both footnote (`.. [#label] text` /
// `.. [1] text` / `.. [*] text`) and citation (`.. [key] text`)
// definitions, which share an indented-continuation body discipline.
func parseFootnoteLike(cur cursor.Cursor, label, firstLine string, citation bool) parse.Result[ast.Block] {
	start := cur
	next := advancePastLine(cur)
	lines := []string{firstLine}
	for !next.AtEOF() {
		l := next.LineContent()
		if strings.TrimSpace(l) == "" {
			lines = append(lines, "")
			next = advancePastLine(next)
			continue
		}
		if leadingSpaces(l) < 3 {
			break
		}
		lines = append(lines, strings.TrimPrefix(l, "   "))
		next = advancePastLine(next)
	}
	content := []ast.Block{}
	if text := strings.TrimSpace(strings.Join(lines, "\n")); text != "" {
		para := ast.Paragraph{Spans: inlineFragment(text, start.Position())}
		content = append(content, para)
	}
	var block ast.Block
	if citation {
		c := ast.Citation{Label: label, Content: content}
		c.Pos = next.Between(start)
		block = c
	} else {
		f := ast.Footnote{Label: label, Content: content}
		f.Pos = next.Between(start)
		block = f
	}
	return parse.Success[ast.Block](block, next)
}

func parseLinkTarget(cur cursor.Cursor, name, url string) parse.Result[ast.Block] {
	start := cur
	next := advancePastLine(cur)
	ld := ast.LinkDefinition{ID: strings.ToLower(strings.TrimSpace(name)), URL: strings.TrimSpace(url)}
	ld.Pos = next.Between(start)
	return parse.Success[ast.Block](ld, next)
}

func parseSubstitutionDef(cur cursor.Cursor, name, replacement string) parse.Result[ast.Block] {
	start := cur
	next := advancePastLine(cur)
	// Substitution definitions aren't part of the rendered tree; they
	// feed rewrite.SubstitutionDefinitions out of band, so the block
	// pass records them as an InvalidBlock with SeverityInfo purely as
	// a carrier — rewrite's caller is expected to harvest these before
	// running CollectInvalid, the same way it harvests LinkDefinitions.
	src := ast.Fragment{Source: replacement, Position: start.Position()}
	b := ast.InvalidBlock{Message: "substitution:" + strings.TrimSpace(name), Severity: ast.SeverityInfo, Source: src}
	b.Pos = next.Between(start)
	return parse.Success[ast.Block](b, next)
}

func (p *Parser) parseDirective(rp markup.RecursiveParsers, cur cursor.Cursor, name, argLine string) parse.Result[ast.Block] {
	start := cur
	next := advancePastLine(cur)
	var bodyLines []string
	for !next.AtEOF() {
		l := next.LineContent()
		if strings.TrimSpace(l) == "" {
			bodyLines = append(bodyLines, "")
			next = advancePastLine(next)
			continue
		}
		if leadingSpaces(l) < 3 {
			break
		}
		bodyLines = append(bodyLines, strings.TrimPrefix(l, "   "))
		next = advancePastLine(next)
	}
	pos := next.Between(start)
	spec, ok := p.directives.Directive(strings.TrimSpace(name))
	if !ok {
		msg := "no directive registered under " + name
		return parse.Success[ast.Block](directive.InvalidBlockFor(name, errNoSuchDirective(msg), pos, argLine), next)
	}
	raw := directive.RawAttrs{}
	for _, tok := range strings.Fields(strings.TrimSpace(argLine)) {
		raw.Positional = append(raw.Positional, tok)
	}
	attrs, err := directive.Decode(spec, raw)
	if err != nil {
		return parse.Success[ast.Block](directive.InvalidBlockFor(name, err, pos, argLine), next)
	}
	body := strings.Join(bodyLines, "\n")
	ctx := directive.BlockContext{Attrs: attrs, RawBody: body, Segments: splitBodySegments(bodyLines), Position: pos}
	switch spec.Body {
	case directive.BodyBlocks:
		ctx.Blocks = rp.ParseBlocks(body, markup.PositionNestedOnly)
	case directive.BodySpans:
		ctx.Spans = rp.ParseSpans(body)
	}
	if spec.BuildBlock == nil {
		return parse.Success[ast.Block](directive.InvalidBlockFor(name, errNotABlockDirective(name), pos, body), next)
	}
	return parse.Success[ast.Block](spec.BuildBlock(ctx), next)
}

// splitBodySegments implements §4.4's `@@:`-separated multi-segment
// directive bodies for the rST indented-body form: lines that trim to
// exactly "@@:" divide the body into segments, each rejoined and
// trimmed; a body with no separator line yields a single segment.
func splitBodySegments(bodyLines []string) []string {
	var segments []string
	var cur []string
	for _, l := range bodyLines {
		if strings.TrimSpace(l) == "@@:" {
			segments = append(segments, strings.TrimSpace(strings.Join(cur, "\n")))
			cur = nil
			continue
		}
		cur = append(cur, l)
	}
	segments = append(segments, strings.TrimSpace(strings.Join(cur, "\n")))
	return segments
}

func parseComment(cur cursor.Cursor) parse.Result[ast.Block] {
	start := cur
	next := advancePastLine(cur)
	for !next.AtEOF() {
		l := next.LineContent()
		if strings.TrimSpace(l) == "" || leadingSpaces(l) < 3 {
			break
		}
		next = advancePastLine(next)
	}
	// Comments produce no visible output at all, so callers must drop
	// them; they're expressed as an InvalidBlock with SeverityInfo
	// rather than a render-visible node, matching the substitution
	// definition carrier above.
	b := ast.InvalidBlock{Message: "comment", Severity: ast.SeverityInfo}
	b.Pos = next.Between(start)
	return parse.Success[ast.Block](b, next)
}

type directiveError string

func (e directiveError) Error() string { return string(e) }

func errNoSuchDirective(msg string) error  { return directiveError(msg) }
func errNotABlockDirective(name string) error {
	return directiveError("directive " + name + " does not produce a block")
}
