package luatab

import (
	"fmt"
	"strings"
)

// keywords are the reserved words of Lua 5.1. None of them may be used as a
// bare table key.
var keywords = map[string]struct{}{
	"and": {}, "break": {}, "do": {}, "else": {}, "elseif": {}, "end": {},
	"false": {}, "for": {}, "function": {}, "if": {}, "in": {}, "local": {},
	"nil": {}, "not": {}, "or": {}, "repeat": {}, "return": {}, "then": {},
	"true": {}, "until": {}, "while": {},
}

// Quote returns s as a double-quoted Lua string literal.
//
// Quotes, backslashes and the named control characters use backslash
// escapes; other ASCII control bytes use decimal escapes (\ddd). Everything
// else, including non-ASCII text, is copied verbatim.
func Quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	writeQuoted(&b, s)
	return b.String()
}

// QuoteString is like [Quote] for a [Value]. It fails with [ErrTypeKind]
// unless v is [Text].
func QuoteString(v Value) (string, error) {
	s, ok := v.(Text)
	if !ok {
		return "", fmt.Errorf("%w: string literal requires text, got %s", ErrTypeKind, describe(v))
	}
	return Quote(string(s)), nil
}

func writeQuoted(b *strings.Builder, s string) {
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		default:
			if c < 0x20 || c == 0x7f {
				fmt.Fprintf(b, `\%03d`, c)
				continue
			}
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
}

// IsIdentifier reports whether s is a syntactically valid Lua name: a letter
// or underscore followed by letters, digits or underscores.
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '_', 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		case '0' <= c && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// IsReserved reports whether s is a Lua keyword or matches the _UPPERCASE
// pattern Lua reserves for internal globals such as _VERSION.
func IsReserved(s string) bool {
	if _, ok := keywords[s]; ok {
		return true
	}
	if len(s) < 2 || s[0] != '_' {
		return false
	}
	for i := 1; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return true
}

// EncodeKey returns key in table-constructor form, without the " = ".
// With [KeyShort] a legal, unreserved identifier is written bare; every
// other key is written as ["key"].
func EncodeKey(key string, f KeyFormat) string {
	if f == KeyShort && IsIdentifier(key) && !IsReserved(key) {
		return key
	}
	var b strings.Builder
	b.Grow(len(key) + 4)
	b.WriteByte('[')
	writeQuoted(&b, key)
	b.WriteByte(']')
	return b.String()
}

func describe(v Value) string {
	if v == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%T", v)
}
