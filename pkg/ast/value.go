package ast

import (
	"strconv"
	"strings"

	"github.com/pseudomuto/ndc-clickhouse/pkg/utils"
)

// Value is a constant. It is one of Number, String, Boolean, Null, Array, Tuple,
// or Map.
type Value interface {
	value()
}

type (
	// Number is a numeric literal kept in its textual form.
	Number string

	// String is a string literal, stored unescaped.
	String string

	// Boolean is TRUE or FALSE.
	Boolean bool

	// Null is NULL.
	Null struct{}

	// Array is [a, b, c].
	Array []Value

	// Tuple is (a, b, c).
	Tuple []Value

	// Map is {'k': v, ...}.
	Map []MapEntry

	// MapEntry is a single key/value pair of a Map.
	MapEntry struct {
		Key   Value
		Value Value
	}
)

func (Number) value()  {}
func (String) value()  {}
func (Boolean) value() {}
func (Null) value()    {}
func (Array) value()   {}
func (Tuple) value()   {}
func (Map) value()     {}

// InlineValue renders v as a SQL literal.
//
// Examples:
//   - String("it's") -> 'it\'s'
//   - Array{Number("1"), Null{}} -> [1, NULL]
//   - Map{{Key: String("k"), Value: Boolean(true)}} -> {'k': true}
func InlineValue(v Value) string {
	switch v := v.(type) {
	case Number:
		return string(v)
	case String:
		return utils.QuoteString(string(v))
	case Boolean:
		return strconv.FormatBool(bool(v))
	case Null:
		return "NULL"
	case Array:
		return "[" + joinValues(v, ", ", InlineValue) + "]"
	case Tuple:
		return "(" + joinValues(v, ", ", InlineValue) + ")"
	case Map:
		entries := make([]string, 0, len(v))
		for _, e := range v {
			entries = append(entries, InlineValue(e.Key)+": "+InlineValue(e.Value))
		}
		return "{" + strings.Join(entries, ", ") + "}"
	default:
		return ""
	}
}

// ParameterValue renders v in the form ClickHouse expects for an HTTP query
// parameter (param_<name>=<value>). Top-level strings are escaped but not quoted
// and NULL is \N. Inside arrays, tuples, and maps, strings are quoted.
//
// Examples:
//   - String("it's") -> it\'s
//   - Null{} -> \N
//   - Array{String("a"), String("b")} -> ['a','b']
func ParameterValue(v Value) string {
	switch v := v.(type) {
	case String:
		return utils.EscapeString(string(v))
	case Null:
		return `\N`
	default:
		return nestedParameterValue(v)
	}
}

func nestedParameterValue(v Value) string {
	switch v := v.(type) {
	case Number:
		return string(v)
	case String:
		return utils.QuoteString(string(v))
	case Boolean:
		return strconv.FormatBool(bool(v))
	case Null:
		return "NULL"
	case Array:
		return "[" + joinValues(v, ",", nestedParameterValue) + "]"
	case Tuple:
		return "(" + joinValues(v, ",", nestedParameterValue) + ")"
	case Map:
		entries := make([]string, 0, len(v))
		for _, e := range v {
			entries = append(entries, nestedParameterValue(e.Key)+":"+nestedParameterValue(e.Value))
		}
		return "{" + strings.Join(entries, ",") + "}"
	default:
		return ""
	}
}

func joinValues(values []Value, sep string, render func(Value) string) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, render(v))
	}

	return strings.Join(parts, sep)
}
