package utils

import "strings"

var stringEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	"\t", `\t`,
	"\r", `\r`,
	"\n", `\n`,
)

// EscapeString backslash-escapes the characters ClickHouse requires to be escaped
// inside single-quoted string literals and in HTTP query parameter values.
//
// Examples:
//   - "it's" -> "it\'s"
//   - "a\tb" -> "a\\tb"
//   - "" -> ""
func EscapeString(s string) string {
	if s == "" {
		return s
	}

	return stringEscaper.Replace(s)
}

// QuoteString wraps s in single quotes after escaping it.
//
// Examples:
//   - "UTC" -> "'UTC'"
//   - "it's" -> "'it\'s'"
func QuoteString(s string) string {
	return "'" + EscapeString(s) + "'"
}

// QuoteIdentifier wraps name in double quotes, escaping backslashes and embedded
// double quotes.
//
// Examples:
//   - "Album" -> "\"Album\""
//   - "a\"b" -> "\"a\\\"b\""
func QuoteIdentifier(name string) string {
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(name) + `"`
}

// BacktickIdentifier wraps name in backticks, escaping backslashes and embedded
// backticks.
//
// Examples:
//   - "table" -> "`table`"
//   - "db.table" -> "`db.table`"
func BacktickIdentifier(name string) string {
	return "`" + strings.NewReplacer(`\`, `\\`, "`", "\\`").Replace(name) + "`"
}

// IsBareIdentifier reports whether name can be rendered without quotes, i.e. it
// matches [A-Za-z_][A-Za-z0-9_]*.
func IsBareIdentifier(name string) bool {
	if name == "" {
		return false
	}

	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}

	return true
}

// Unquote strips the surrounding quote characters from a quoted literal and
// resolves backslash escapes. When the quote character is a single quote, a doubled
// quote (”) is also accepted as an escaped quote.
//
// Examples:
//   - `'it\'s'` -> "it's"
//   - `'it”s'` -> "it's"
//   - `"a\\b"` -> `a\b`
func Unquote(s string) string {
	if len(s) < 2 {
		return s
	}

	quote := s[0]
	inner := s[1 : len(s)-1]

	var b strings.Builder
	b.Grow(len(inner))

	for i := 0; i < len(inner); i++ {
		c := inner[i]
		switch {
		case c == '\\' && i+1 < len(inner):
			i++
			b.WriteByte(unescapeByte(inner[i]))
		case c == quote && quote == '\'' && i+1 < len(inner) && inner[i+1] == '\'':
			i++
			b.WriteByte('\'')
		default:
			b.WriteByte(c)
		}
	}

	return b.String()
}

func unescapeByte(c byte) byte {
	switch c {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	case '0':
		return 0
	case 'b':
		return '\b'
	case 'f':
		return '\f'
	default:
		return c
	}
}
