// Package format prints ast statements as ClickHouse SQL.
//
// Statements are printed in one of two forms. Inline printing embeds every
// parameter as a literal and is what explain output shows. Once parameters have
// been extracted with ast.Extract, the same printer renders {pN:Type}
// placeholders, which is the form sent to ClickHouse alongside the param_pN
// values.
//
// Usage:
//
//	// Compact, single line output
//	sql := format.Inline(stmt)
//
//	// Multi-line output for humans
//	var buf bytes.Buffer
//	err := format.Format(&buf, format.Pretty, stmt)
//
//	// Placeholders instead of values
//	pstmt := ast.Extract(stmt)
//	sql := format.Parameterized(pstmt)
//
// Identifiers created with ast.Quoted are printed in double quotes and string
// literals are single quoted with backslash escapes.
package format
