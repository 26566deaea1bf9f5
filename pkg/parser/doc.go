// Package parser provides participle-based parsers for ClickHouse data type strings
// and parameterized SQL.
//
// Two grammars are exposed:
//
//   - ParseDataType recognizes the full ClickHouse type surface, as reported by
//     system.columns: scalars, Nullable, LowCardinality, Array, Map, Tuple
//     (named and anonymous), Nested, Enum, Decimal variants, DateTime/DateTime64
//     with optional timezone, and AggregateFunction/SimpleAggregateFunction.
//   - ParseParameterizedQuery splits SQL text into literal fragments and
//     {name: Type} or {name: Identifier} parameter holes. Braces inside
//     single-quoted strings are left alone and a trailing semicolon is consumed.
//
// Both results print back to ClickHouse surface syntax via String(). Parse failures
// are reported as *ParseError values carrying the line and column of the first
// failing input position.
//
// Basic usage:
//
//	dt, err := parser.ParseDataType("Nullable(DateTime64(9, 'UTC'))")
//	if err != nil {
//		return err
//	}
//
//	q, err := parser.ParseParameterizedQuery(`SELECT * FROM "default"."Artist" WHERE ArtistId = {id: Int32}`)
//	if err != nil {
//		return err
//	}
package parser
