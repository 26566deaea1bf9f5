package parser

import (
	"strings"

	"github.com/pseudomuto/ndc-clickhouse/pkg/utils"
)

// Scalar names a ClickHouse scalar type that takes no parameters.
type Scalar string

const (
	Bool    Scalar = "Bool"
	String  Scalar = "String"
	UInt8   Scalar = "UInt8"
	UInt16  Scalar = "UInt16"
	UInt32  Scalar = "UInt32"
	UInt64  Scalar = "UInt64"
	UInt128 Scalar = "UInt128"
	UInt256 Scalar = "UInt256"
	Int8    Scalar = "Int8"
	Int16   Scalar = "Int16"
	Int32   Scalar = "Int32"
	Int64   Scalar = "Int64"
	Int128  Scalar = "Int128"
	Int256  Scalar = "Int256"
	Float32 Scalar = "Float32"
	Float64 Scalar = "Float64"
	Date    Scalar = "Date"
	Date32  Scalar = "Date32"
	UUID    Scalar = "UUID"
	IPv4    Scalar = "IPv4"
	IPv6    Scalar = "IPv6"
	JSON    Scalar = "JSON"
	Nothing Scalar = "Nothing"
)

type (
	// DataType represents any ClickHouse data type. Exactly one field is set.
	DataType struct {
		// Nullable wrapper (e.g., Nullable(String))
		Nullable *NullableType `parser:"  @@"`
		// LowCardinality wrapper (e.g., LowCardinality(String))
		LowCardinality *LowCardinalityType `parser:"| @@"`
		// Array types (e.g., Array(String))
		Array *ArrayType `parser:"| @@"`
		// Map types (e.g., Map(String, UInt32))
		Map *MapType `parser:"| @@"`
		// Tuple types, named or anonymous (e.g., Tuple(name String, age UInt8))
		Tuple *TupleType `parser:"| @@"`
		// Nested types (e.g., Nested(id UInt32, name String))
		Nested *NestedType `parser:"| @@"`
		// Enum types (e.g., Enum8('a' = 1, 'b' = 2))
		Enum *EnumType `parser:"| @@"`
		// AggregateFunction(name, T...)
		AggregateFunction *AggregateFunctionType `parser:"| @@"`
		// SimpleAggregateFunction(name, T...)
		SimpleAggregateFunction *SimpleAggregateFunctionType `parser:"| @@"`
		// DateTime64(precision[, 'tz'])
		DateTime64 *DateTime64Type `parser:"| @@"`
		// DateTime[('tz')]
		DateTime *DateTimeType `parser:"| @@"`
		// Decimal(P, S)
		Decimal *DecimalType `parser:"| @@"`
		// Decimal32(S), Decimal64(S), Decimal128(S), Decimal256(S)
		SizedDecimal *SizedDecimalType `parser:"| @@"`
		// FixedString(N)
		FixedString *FixedStringType `parser:"| @@"`
		// Parameterless scalars (e.g., String, UInt64, UUID)
		Scalar *Scalar `parser:"| @('Bool' | 'String' | 'UInt8' | 'UInt16' | 'UInt32' | 'UInt64' | 'UInt128' | 'UInt256' | 'Int8' | 'Int16' | 'Int32' | 'Int64' | 'Int128' | 'Int256' | 'Float32' | 'Float64' | 'Date32' | 'Date' | 'UUID' | 'IPv4' | 'IPv6' | 'JSON' | 'Nothing')"`
	}

	// NullableType represents Nullable(T)
	NullableType struct {
		Type *DataType `parser:"'Nullable' '(' @@ ')'"`
	}

	// LowCardinalityType represents LowCardinality(T)
	LowCardinalityType struct {
		Type *DataType `parser:"'LowCardinality' '(' @@ ')'"`
	}

	// ArrayType represents Array(T)
	ArrayType struct {
		Type *DataType `parser:"'Array' '(' @@ ')'"`
	}

	// MapType represents Map(K, V)
	MapType struct {
		Key   *DataType `parser:"'Map' '(' @@ ','"`
		Value *DataType `parser:"@@ ')'"`
	}

	// TupleType represents Tuple(T1, T2, ...) or Tuple(name1 T1, name2 T2, ...)
	TupleType struct {
		Elements []*TupleElement `parser:"'Tuple' '(' (@@ (',' @@)*)? ')'"`
	}

	// TupleElement is a single, optionally named, tuple element.
	TupleElement struct {
		// Try to parse name + type first, then fall back to just type
		Name *Identifier `parser:"  @(Ident | QuotedIdent | BacktickIdent)"`
		Type *DataType   `parser:"  @@"`
		// For anonymous elements we just have the type
		Unnamed *DataType `parser:"| @@"`
	}

	// NestedType represents Nested(name1 T1, name2 T2, ...)
	NestedType struct {
		Fields []*NestedField `parser:"'Nested' '(' @@ (',' @@)* ')'"`
	}

	// NestedField represents a single column of a Nested type.
	NestedField struct {
		Name Identifier `parser:"@(Ident | QuotedIdent | BacktickIdent)"`
		Type *DataType  `parser:"@@"`
	}

	// EnumType represents Enum('a', 'b'), Enum8('a' = 1) or Enum16('a' = 1).
	EnumType struct {
		Kind     string         `parser:"@('Enum8' | 'Enum16' | 'Enum') '('"`
		Variants []*EnumVariant `parser:"@@ (',' @@)* ')'"`
	}

	// EnumVariant is a quoted name with an optional integer value.
	EnumVariant struct {
		Name  SingleQuoted `parser:"@String"`
		Value *string      `parser:"('=' @Number)?"`
	}

	// AggregateFunctionType represents AggregateFunction(def, T...)
	AggregateFunctionType struct {
		Function  *AggregateFunctionDefinition `parser:"'AggregateFunction' '(' @@"`
		Arguments []*DataType                  `parser:"(',' @@)* ')'"`
	}

	// SimpleAggregateFunctionType represents SimpleAggregateFunction(def, T...)
	SimpleAggregateFunctionType struct {
		Function  *AggregateFunctionDefinition `parser:"'SimpleAggregateFunction' '(' @@"`
		Arguments []*DataType                  `parser:"(',' @@)* ')'"`
	}

	// AggregateFunctionDefinition is a function name with optional parameters, e.g.
	// quantiles(0.5, 0.9).
	AggregateFunctionDefinition struct {
		Name       Identifier                    `parser:"@(Ident | QuotedIdent | BacktickIdent)"`
		Parameters []*AggregateFunctionParameter `parser:"('(' (@@ (',' @@)*)? ')')?"`
	}

	// AggregateFunctionParameter is a string, float or integer parameter.
	AggregateFunctionParameter struct {
		Text   *SingleQuoted `parser:"  @String"`
		Number *string       `parser:"| @Number"`
	}

	// DateTimeType represents DateTime or DateTime('tz')
	DateTimeType struct {
		Timezone *SingleQuoted `parser:"'DateTime' ('(' @String ')')?"`
	}

	// DateTime64Type represents DateTime64(precision) or DateTime64(precision, 'tz')
	DateTime64Type struct {
		Precision string        `parser:"'DateTime64' '(' @Number"`
		Timezone  *SingleQuoted `parser:"(',' @String)? ')'"`
	}

	// DecimalType represents Decimal(P, S)
	DecimalType struct {
		Precision string  `parser:"'Decimal' '(' @Number"`
		Scale     *string `parser:"(',' @Number)? ')'"`
	}

	// SizedDecimalType represents Decimal32(S), Decimal64(S), Decimal128(S) or Decimal256(S)
	SizedDecimalType struct {
		Kind  string `parser:"@('Decimal32' | 'Decimal64' | 'Decimal128' | 'Decimal256')"`
		Scale string `parser:"'(' @Number ')'"`
	}

	// FixedStringType represents FixedString(N)
	FixedStringType struct {
		Length string `parser:"'FixedString' '(' @Number ')'"`
	}
)

// SingleQuoted is the unescaped value of a single-quoted string literal.
type SingleQuoted string

// Capture implements participle.Capture.
func (s *SingleQuoted) Capture(values []string) error {
	*s = SingleQuoted(utils.Unquote(strings.Join(values, "")))
	return nil
}

func (s SingleQuoted) String() string {
	return utils.QuoteString(string(s))
}

// NewScalar returns a DataType for the given scalar.
func NewScalar(s Scalar) *DataType {
	return &DataType{Scalar: &s}
}

// NewNullable wraps t in Nullable.
func NewNullable(t *DataType) *DataType {
	return &DataType{Nullable: &NullableType{Type: t}}
}

// NewArray wraps t in Array.
func NewArray(t *DataType) *DataType {
	return &DataType{Array: &ArrayType{Type: t}}
}

// String renders the data type using ClickHouse surface syntax.
func (d *DataType) String() string {
	if d == nil {
		return ""
	}

	switch {
	case d.Nullable != nil:
		return "Nullable(" + d.Nullable.Type.String() + ")"
	case d.LowCardinality != nil:
		return "LowCardinality(" + d.LowCardinality.Type.String() + ")"
	case d.Array != nil:
		return "Array(" + d.Array.Type.String() + ")"
	case d.Map != nil:
		return "Map(" + d.Map.Key.String() + ", " + d.Map.Value.String() + ")"
	case d.Tuple != nil:
		return d.Tuple.String()
	case d.Nested != nil:
		return d.Nested.String()
	case d.Enum != nil:
		return d.Enum.String()
	case d.AggregateFunction != nil:
		return formatAggregate("AggregateFunction", d.AggregateFunction.Function, d.AggregateFunction.Arguments)
	case d.SimpleAggregateFunction != nil:
		return formatAggregate("SimpleAggregateFunction", d.SimpleAggregateFunction.Function, d.SimpleAggregateFunction.Arguments)
	case d.DateTime64 != nil:
		if d.DateTime64.Timezone != nil {
			return "DateTime64(" + d.DateTime64.Precision + ", " + d.DateTime64.Timezone.String() + ")"
		}
		return "DateTime64(" + d.DateTime64.Precision + ")"
	case d.DateTime != nil:
		if d.DateTime.Timezone != nil {
			return "DateTime(" + d.DateTime.Timezone.String() + ")"
		}
		return "DateTime"
	case d.Decimal != nil:
		if d.Decimal.Scale != nil {
			return "Decimal(" + d.Decimal.Precision + ", " + *d.Decimal.Scale + ")"
		}
		return "Decimal(" + d.Decimal.Precision + ")"
	case d.SizedDecimal != nil:
		return d.SizedDecimal.Kind + "(" + d.SizedDecimal.Scale + ")"
	case d.FixedString != nil:
		return "FixedString(" + d.FixedString.Length + ")"
	case d.Scalar != nil:
		return string(*d.Scalar)
	default:
		return ""
	}
}

func (t *TupleType) String() string {
	elements := make([]string, 0, len(t.Elements))
	for _, e := range t.Elements {
		if e.Name != nil {
			elements = append(elements, e.Name.String()+" "+e.Type.String())
		} else {
			elements = append(elements, e.Unnamed.String())
		}
	}

	return "Tuple(" + strings.Join(elements, ", ") + ")"
}

// ElementType returns the type of the element regardless of whether it is named.
func (e *TupleElement) ElementType() *DataType {
	if e.Name != nil {
		return e.Type
	}

	return e.Unnamed
}

func (n *NestedType) String() string {
	fields := make([]string, 0, len(n.Fields))
	for _, f := range n.Fields {
		fields = append(fields, f.Name.String()+" "+f.Type.String())
	}

	return "Nested(" + strings.Join(fields, ", ") + ")"
}

func (e *EnumType) String() string {
	variants := make([]string, 0, len(e.Variants))
	for _, v := range e.Variants {
		if v.Value != nil {
			variants = append(variants, v.Name.String()+" = "+*v.Value)
		} else {
			variants = append(variants, v.Name.String())
		}
	}

	return e.Kind + "(" + strings.Join(variants, ", ") + ")"
}

func (a *AggregateFunctionDefinition) String() string {
	if len(a.Parameters) == 0 {
		return a.Name.String()
	}

	params := make([]string, 0, len(a.Parameters))
	for _, p := range a.Parameters {
		params = append(params, p.String())
	}

	return a.Name.String() + "(" + strings.Join(params, ", ") + ")"
}

func (p *AggregateFunctionParameter) String() string {
	if p.Text != nil {
		return p.Text.String()
	}
	if p.Number != nil {
		return *p.Number
	}

	return ""
}

// IsFloat reports whether the parameter is a floating point number.
func (p *AggregateFunctionParameter) IsFloat() bool {
	return p.Number != nil && strings.ContainsAny(*p.Number, ".eE")
}

func formatAggregate(kind string, fn *AggregateFunctionDefinition, args []*DataType) string {
	parts := []string{fn.String()}
	for _, a := range args {
		parts = append(parts, a.String())
	}

	return kind + "(" + strings.Join(parts, ", ") + ")"
}
