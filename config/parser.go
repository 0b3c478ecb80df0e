package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/laikadoc/laika/cursor"
)

// Parse reads a HOCON-lite document: nested `{ }` objects, `[ ]`
// arrays, bare/quoted string, int, float, bool and null scalars, and
// `${path}`/`${?path}` substitutions left unresolved for Resolve to
// fill in (§5's deferred-substitution model).
func Parse(source string) (Value, error) {
	p := &parser{cur: cursor.New(source)}
	p.skipWS()
	v, err := p.parseObjectBody(true)
	if err != nil {
		return Value{}, err
	}
	return v, nil
}

type parser struct {
	cur cursor.Cursor
}

func (p *parser) errf(format string, args ...any) error {
	pos := p.cur.Position()
	return fmt.Errorf("config:%d:%d: %s", pos.StartLine, pos.StartColumn, fmt.Sprintf(format, args...))
}

func (p *parser) peek() (byte, bool) { return p.cur.CharAt(0) }

func (p *parser) advance(n int) { p.cur = p.cur.Advance(n) }

func (p *parser) skipWS() {
	for {
		b, ok := p.peek()
		if !ok {
			return
		}
		switch b {
		case ' ', '\t', '\n', '\r', ',', ';':
			p.advance(1)
		case '#':
			for {
				b2, ok2 := p.peek()
				if !ok2 || b2 == '\n' {
					break
				}
				p.advance(1)
			}
		default:
			return
		}
	}
}

// parseObjectBody reads `key = value` (or `key value`, or `key { ... }`)
// pairs until a closing `}` or, for root, EOF. The enclosing braces of
// a root document are optional, matching HOCON's convention.
func (p *parser) parseObjectBody(root bool) (Value, error) {
	obj := map[string]Value{}
	for {
		p.skipWS()
		b, ok := p.peek()
		if !ok {
			if !root {
				return Value{}, p.errf("unexpected end of input, expected '}'")
			}
			break
		}
		if b == '}' {
			if root {
				return Value{}, p.errf("unexpected '}'")
			}
			break
		}
		key, err := p.parseKey()
		if err != nil {
			return Value{}, err
		}
		p.skipWS()
		val, err := p.parseAssignedValue()
		if err != nil {
			return Value{}, err
		}
		if existing, has := obj[key]; has && existing.Kind == KindObject && val.Kind == KindObject {
			obj[key] = val.WithFallback(existing)
		} else {
			obj[key] = val
		}
	}
	return Object(obj), nil
}

func (p *parser) parseKey() (string, error) {
	rest := p.cur.Remaining()
	i := 0
	for i < len(rest) && rest[i] != '=' && rest[i] != ':' && rest[i] != '{' &&
		rest[i] != ' ' && rest[i] != '\t' && rest[i] != '\n' {
		i++
	}
	if i == 0 {
		return "", p.errf("expected a key")
	}
	key := strings.TrimSpace(rest[:i])
	p.advance(i)
	return key, nil
}

// parseAssignedValue handles `= value`, `: value`, and the HOCON
// shorthand of an object value directly following its key with no
// separator (`key { ... }`).
func (p *parser) parseAssignedValue() (Value, error) {
	p.skipWS()
	b, ok := p.peek()
	if ok && (b == '=' || b == ':') {
		p.advance(1)
		p.skipWS()
	}
	return p.parseValue()
}

func (p *parser) parseValue() (Value, error) {
	b, ok := p.peek()
	if !ok {
		return Value{}, p.errf("expected a value")
	}
	switch {
	case b == '{':
		p.advance(1)
		v, err := p.parseObjectBody(false)
		if err != nil {
			return Value{}, err
		}
		p.skipWS()
		if b2, ok2 := p.peek(); !ok2 || b2 != '}' {
			return Value{}, p.errf("expected '}'")
		}
		p.advance(1)
		return v, nil
	case b == '[':
		return p.parseArray()
	default:
		return p.parseConcatenation()
	}
}

// parseConcatenation reads one or more adjacent quoted-string,
// substitution, and bareword parts with no separator between them and
// joins them, HOCON's string-concatenation rule (e.g.
// `greeting = hello ${name}` concatenates a bareword and a
// substitution once the substitution resolves). A single bareword part
// is classified exactly as a standalone bare value would be
// (true/false/null/int/float/string); anything else yields a Concat
// value for Resolve to join once every substitution is filled in.
func (p *parser) parseConcatenation() (Value, error) {
	var parts []Value
	var fromBare []bool
	for {
		b, ok := p.peek()
		if !ok || isValueTerminator(b) {
			break
		}
		switch b {
		case '"':
			v, err := p.parseQuotedString()
			if err != nil {
				return Value{}, err
			}
			parts = append(parts, v)
			fromBare = append(fromBare, false)
		case '$':
			v, err := p.parseSubstitution()
			if err != nil {
				return Value{}, err
			}
			parts = append(parts, v)
			fromBare = append(fromBare, false)
		default:
			token, err := p.readBareToken()
			if err != nil {
				return Value{}, err
			}
			parts = append(parts, String(token))
			fromBare = append(fromBare, true)
		}
	}
	if len(parts) == 0 {
		return Value{}, p.errf("expected a value")
	}
	if len(parts) == 1 {
		if fromBare[0] {
			return classifyBare(strings.TrimSpace(parts[0].Str)), nil
		}
		return parts[0], nil
	}
	return Concat(parts), nil
}

// readBareToken reads an unquoted run up to the next structural
// character, value terminator, or the start of a quoted string or
// substitution part, preserving any interior whitespace verbatim so a
// concatenation like `hello ${name}` keeps the space between parts.
func (p *parser) readBareToken() (string, error) {
	rest := p.cur.Remaining()
	i := 0
	for i < len(rest) && !isValueTerminator(rest[i]) && rest[i] != '$' && rest[i] != '"' {
		i++
	}
	if i == 0 {
		return "", p.errf("expected a value")
	}
	p.advance(i)
	return rest[:i], nil
}

// isValueTerminator reports whether b ends a value (and, inside a
// concatenation, the whole concatenated value): newline, the HOCON
// item separators, or a closing brace/bracket.
func isValueTerminator(b byte) bool {
	switch b {
	case '\n', ',', ';', '}', ']':
		return true
	default:
		return false
	}
}

// classifyBare converts a trimmed bareword token into the scalar Kind
// it spells: true/false/null keywords, then int, then float, else a
// plain string.
func classifyBare(token string) Value {
	switch token {
	case "true":
		return Bool(true)
	case "false":
		return Bool(false)
	case "null":
		return Null()
	}
	if n, err := strconv.ParseInt(token, 10, 64); err == nil {
		return Int(n)
	}
	if f, err := strconv.ParseFloat(token, 64); err == nil {
		return Float(f)
	}
	return String(token)
}

func (p *parser) parseArray() (Value, error) {
	p.advance(1) // '['
	var items []Value
	for {
		p.skipWS()
		b, ok := p.peek()
		if !ok {
			return Value{}, p.errf("unexpected end of input, expected ']'")
		}
		if b == ']' {
			p.advance(1)
			return Array(items), nil
		}
		v, err := p.parseValue()
		if err != nil {
			return Value{}, err
		}
		items = append(items, v)
	}
}

func (p *parser) parseQuotedString() (Value, error) {
	p.advance(1) // opening quote
	var b strings.Builder
	for {
		c, ok := p.peek()
		if !ok {
			return Value{}, p.errf("unterminated string")
		}
		if c == '"' {
			p.advance(1)
			return String(b.String()), nil
		}
		if c == '\\' {
			p.advance(1)
			esc, ok := p.peek()
			if !ok {
				return Value{}, p.errf("unterminated escape")
			}
			b.WriteByte(unescape(esc))
			p.advance(1)
			continue
		}
		b.WriteByte(c)
		p.advance(1)
	}
}

func unescape(c byte) byte {
	switch c {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	default:
		return c
	}
}

// parseSubstitution reads `${path}` or `${?path}`.
func (p *parser) parseSubstitution() (Value, error) {
	p.advance(1) // '$'
	if b, ok := p.peek(); !ok || b != '{' {
		return Value{}, p.errf("expected '{' after '$'")
	}
	p.advance(1)
	optional := false
	if b, ok := p.peek(); ok && b == '?' {
		optional = true
		p.advance(1)
	}
	rest := p.cur.Remaining()
	end := strings.IndexByte(rest, '}')
	if end < 0 {
		return Value{}, p.errf("unterminated substitution")
	}
	path := strings.TrimSpace(rest[:end])
	p.advance(end + 1)
	return Substitution(path, optional), nil
}

