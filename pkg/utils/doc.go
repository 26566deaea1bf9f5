// Package utils provides small helpers shared across the module.
//
// # String and Identifier Quoting (identifier.go)
//
// ClickHouse string literals are single-quoted and backslash-escaped. The same
// escaping applies to values sent as HTTP query parameters, so EscapeString is used
// both by the SQL printer and by the parameter encoder:
//
//	utils.EscapeString("it's")   // it\'s
//	utils.QuoteString("it's")    // 'it\'s'
//
// Identifiers derived from user input (table, column, and field names) are always
// double-quoted:
//
//	utils.QuoteIdentifier("Album")    // "Album"
//	utils.QuoteIdentifier(`a"b`)      // "a\"b"
//
// Unquote reverses any of the three quoting styles ('...', "...", `...`) and is
// used by the type and query parsers when capturing quoted tokens.
//
// # Pointers (ptr.go)
//
// Ptr returns a pointer to a copy of its argument, which is handy when building
// request and configuration structs with optional fields:
//
//	limit := utils.Ptr(uint32(10))
package utils
