package directive

import (
	"fmt"
	"strings"

	"github.com/laikadoc/laika/ast"
	"github.com/laikadoc/laika/cursor"
	"github.com/laikadoc/laika/markup"
	"github.com/laikadoc/laika/parse"
)

// ParseBlocksFunc/ParseSpansFunc let a directive body in BodyBlocks or
// BodySpans mode recurse into the host dialect's own parsers, mirroring
// markup.RecursiveParsers without creating an import cycle (directive
// must not import a concrete markup/<dialect> package).
type ParseBlocksFunc func(input string, pos markup.Position) []ast.Block
type ParseSpansFunc func(input string) []ast.Span

// defaultTerminator is the `@:@` body-ending line §6.3 specifies for a
// Laika-flavor directive called without a `{ brace body }`.
const defaultTerminator = "@:@"

// readDirectiveBody resolves a call's body against the spec that was
// looked up for it: a `{ brace body }` immediately after the attribute
// list always wins and is a single segment; otherwise, if the spec
// expects a body at all, the body runs until spec's terminator
// (defaultTerminator unless overridden), with `@@:` lines splitting it
// into the multiple segments §4.4's separator attributes describe.
func readDirectiveBody(after cursor.Cursor, spec Spec, specOK bool) (body string, segments []string, next cursor.Cursor, hasBody bool) {
	if b, bodyEnd, ok := readBraceBody(after); ok {
		return b, []string{b}, bodyEnd, true
	}
	if !specOK || spec.Body == BodyNone {
		return "", nil, after, false
	}
	term := spec.Terminator
	if term == "" {
		term = defaultTerminator
	}
	segs, afterBody, found := readTerminatedBody(after, term)
	if !found {
		return "", nil, after, false
	}
	return strings.Join(segs, "\n"), segs, afterBody, true
}

// readTerminatedBody reads a body that runs until terminator appears
// on its own line, splitting on `@@:` lines into §4.4's multi-segment
// form. Leading/trailing blank lines around each segment are trimmed.
func readTerminatedBody(cur cursor.Cursor, terminator string) (segments []string, next cursor.Cursor, found bool) {
	rest := cur.Remaining()
	lines := strings.Split(rest, "\n")
	var bodyLines []string
	consumed := 0
	for i, l := range lines {
		if strings.TrimSpace(l) == terminator {
			consumed += len(l)
			if i < len(lines)-1 {
				consumed++ // the newline readTerminatedBody's caller should also skip
			}
			segments = splitOnSeparator(bodyLines)
			return segments, cur.Advance(consumed), true
		}
		bodyLines = append(bodyLines, l)
		consumed += len(l) + 1 // line content plus its newline
	}
	return nil, cur, false
}

func splitOnSeparator(lines []string) []string {
	var segments []string
	var cur []string
	for _, l := range lines {
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

// BlockDirectiveParser returns a markup.BlockParserBuilder.Build
// closure that recognizes `@:name(attrs)` followed by either a
// `{ body }` block or a terminator-delimited body (§6.3), looks the
// name up in reg, decodes attributes, and invokes the spec's
// BuildBlock. Unknown names or decode failures become InvalidBlock
// rather than a parse failure, since a directive call is unambiguously
// a directive call once `@:` is seen (§5.3).
func BlockDirectiveParser(reg *Registry, parseBlocks ParseBlocksFunc, parseSpans ParseSpansFunc) parse.Parser[ast.Block] {
	return func(cur cursor.Cursor) parse.Result[ast.Block] {
		start := cur
		if !hasPrefix(cur, "@:") {
			return parse.Fail[ast.Block]("not a directive call", cur)
		}
		after := cur.Advance(2)
		name, after := readIdent(after)
		if name == "" {
			return parse.Fail[ast.Block]("directive call missing a name", cur)
		}
		raw, after := readRawAttrs(after)
		spec, ok := reg.Directive(name)
		body, segments, next, _ := readDirectiveBody(after, spec, ok)
		bodyEnd := next
		// A block-level call owns the rest of its line: trailing blanks
		// and the line break are consumed so the block loop resumes on
		// the following line.
		rest := next.Remaining()
		i := 0
		for i < len(rest) && (rest[i] == ' ' || rest[i] == '\t') {
			i++
		}
		if i == len(rest) {
			next = next.Advance(i)
		} else if rest[i] == '\n' {
			next = next.Advance(i + 1)
		}
		pos := bodyEnd.Between(start)

		if !ok {
			return parse.Success[ast.Block](InvalidBlockFor(name, errUnknown(name), pos, start.Capture(bodyEnd.Offset()-start.Offset())), next)
		}
		attrs, err := Decode(spec, raw)
		if err != nil {
			return parse.Success[ast.Block](InvalidBlockFor(name, err, pos, body), next)
		}
		ctx := BlockContext{Attrs: attrs, RawBody: body, Segments: segments, Position: pos}
		switch spec.Body {
		case BodyBlocks:
			ctx.Blocks = parseBlocks(body, markup.PositionNestedOnly)
		case BodySpans:
			ctx.Spans = parseSpans(body)
		}
		if spec.BuildBlock == nil {
			return parse.Success[ast.Block](InvalidBlockFor(name, errNotABlock(name), pos, body), next)
		}
		return parse.Success[ast.Block](spec.BuildBlock(ctx), next)
	}
}

// SpanDirectiveParser is the span-level counterpart, for directives
// usable inline (e.g. `@:footnote(1){ ... }` appearing mid-paragraph).
func SpanDirectiveParser(reg *Registry, parseSpans ParseSpansFunc) parse.Parser[ast.Span] {
	return func(cur cursor.Cursor) parse.Result[ast.Span] {
		start := cur
		if !hasPrefix(cur, "@:") {
			return parse.Fail[ast.Span]("not a directive call", cur)
		}
		after := cur.Advance(2)
		name, after := readIdent(after)
		if name == "" {
			return parse.Fail[ast.Span]("directive call missing a name", cur)
		}
		raw, after := readRawAttrs(after)
		spec, ok := reg.Directive(name)
		body, segments, next, _ := readDirectiveBody(after, spec, ok)
		pos := next.Between(start)

		if !ok || spec.BuildSpan == nil {
			return parse.Success[ast.Span](InvalidSpanFor(name, errUnknown(name), pos, body), next)
		}
		attrs, err := Decode(spec, raw)
		if err != nil {
			return parse.Success[ast.Span](InvalidSpanFor(name, err, pos, body), next)
		}
		ctx := SpanContext{Attrs: attrs, Content: body, Segments: segments, Position: pos}
		return parse.Success[ast.Span](spec.BuildSpan(ctx), next)
	}
}

// InterpretedTextParser recognizes the rST `` `text`:role: `` and
// `:role:`text`` forms, resolving against reg's role table (or its
// default role when no explicit `:role:` suffix is present).
func InterpretedTextParser(reg *Registry) parse.Parser[ast.Span] {
	return func(cur cursor.Cursor) parse.Result[ast.Span] {
		start := cur
		b0, ok := cur.CharAt(0)
		leadingRole := ""
		after := cur
		if ok && b0 == ':' {
			role, rest := readRoleName(cur.Advance(1))
			if role == "" {
				return parse.Fail[ast.Span]("not interpreted text", cur)
			}
			if b, ok := rest.CharAt(0); !ok || b != '`' {
				return parse.Fail[ast.Span]("not interpreted text", cur)
			}
			leadingRole = role
			after = rest
		} else if !ok || b0 != '`' {
			return parse.Fail[ast.Span]("not interpreted text", cur)
		}
		afterBacktick := after.Advance(1)
		end := strings.IndexByte(afterBacktick.Remaining(), '`')
		if end < 0 {
			return parse.Fail[ast.Span]("unterminated interpreted text", cur)
		}
		content := afterBacktick.Capture(end)
		afterClose := afterBacktick.Advance(end + 1)
		role := leadingRole
		next := afterClose
		if role == "" {
			if b, ok := afterClose.CharAt(0); ok && b == ':' {
				name, rest := readRoleName(afterClose.Advance(1))
				if name != "" {
					if b2, ok := rest.CharAt(0); ok && b2 == ':' {
						role = name
						next = rest.Advance(1)
					}
				}
			}
		}
		pos := next.Between(start)
		spec, ok := reg.Role(role)
		if !ok {
			it := ast.InterpretedText{Content: content, Role: role}
			it.Pos = pos
			return parse.Success[ast.Span](it, next)
		}
		if _, err := Decode(spec, RawAttrs{}); err != nil || spec.BuildSpan == nil {
			return parse.Success[ast.Span](InvalidSpanFor(role, errUnknown(role), pos, content), next)
		}
		return parse.Success[ast.Span](spec.BuildSpan(SpanContext{Content: content, Position: pos}), next)
	}
}

func hasPrefix(cur cursor.Cursor, s string) bool {
	rest := cur.Remaining()
	return len(rest) >= len(s) && rest[:len(s)] == s
}

func readIdent(cur cursor.Cursor) (string, cursor.Cursor) {
	rest := cur.Remaining()
	i := 0
	for i < len(rest) && isIdentByte(rest[i]) {
		i++
	}
	return rest[:i], cur.Advance(i)
}

func readRoleName(cur cursor.Cursor) (string, cursor.Cursor) {
	return readIdent(cur)
}

func isIdentByte(b byte) bool {
	return b == '-' || b == '_' ||
		(b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// readRawAttrs parses an optional `(pos1, pos2, name=value, ...)` list.
func readRawAttrs(cur cursor.Cursor) (RawAttrs, cursor.Cursor) {
	raw := RawAttrs{Named: map[string]string{}}
	b, ok := cur.CharAt(0)
	if !ok || b != '(' {
		return raw, cur
	}
	rest := cur.Remaining()
	end := strings.IndexByte(rest, ')')
	if end < 0 {
		return raw, cur
	}
	inside := rest[1:end]
	next := cur.Advance(end + 1)
	if strings.TrimSpace(inside) == "" {
		return raw, next
	}
	for _, part := range strings.Split(inside, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if eq := strings.IndexByte(part, '='); eq >= 0 {
			key := strings.TrimSpace(part[:eq])
			val := strings.Trim(strings.TrimSpace(part[eq+1:]), `"`)
			raw.Named[key] = val
			continue
		}
		raw.Positional = append(raw.Positional, strings.Trim(part, `"`))
	}
	return raw, next
}

// readBraceBody parses an optional ` { body }` suffix, returning the
// body text, the cursor just past the closing brace, and whether a
// body was present at all.
func readBraceBody(cur cursor.Cursor) (string, cursor.Cursor, bool) {
	i := 0
	rest := cur.Remaining()
	for i < len(rest) && (rest[i] == ' ' || rest[i] == '\t') {
		i++
	}
	if i >= len(rest) || rest[i] != '{' {
		return "", cur, false
	}
	depth := 1
	j := i + 1
	for j < len(rest) && depth > 0 {
		switch rest[j] {
		case '{':
			depth++
		case '}':
			depth--
		}
		j++
	}
	if depth != 0 {
		return "", cur, false
	}
	body := strings.TrimSpace(rest[i+1 : j-1])
	return body, cur.Advance(j), true
}

func errUnknown(name string) error { return fmt.Errorf("no directive or role registered under %q", name) }

func errNotABlock(name string) error { return fmt.Errorf("directive %q does not produce a block", name) }
