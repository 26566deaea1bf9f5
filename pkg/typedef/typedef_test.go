package typedef_test

import (
	"testing"

	"github.com/pseudomuto/ndc-clickhouse/pkg/ndc"
	"github.com/pseudomuto/ndc-clickhouse/pkg/parser"
	. "github.com/pseudomuto/ndc-clickhouse/pkg/typedef"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		schema   ndc.Type
		castType string
	}{
		{input: "Int32", schema: ndc.NamedType("Int32"), castType: "Int32"},
		{input: "Nullable(String)", schema: ndc.NullableType(ndc.NamedType("String")), castType: "Nullable(String)"},
		{input: "LowCardinality(String)", schema: ndc.NamedType("String"), castType: "String"},
		{input: "LowCardinality(Nullable(String))", schema: ndc.NullableType(ndc.NamedType("String")), castType: "Nullable(String)"},
		{input: "FixedString(3)", schema: ndc.NamedType("String"), castType: "String"},
		{input: "Decimal(9, 2)", schema: ndc.NamedType("Decimal(9, 2)"), castType: "String"},
		{input: "Decimal64(4)", schema: ndc.NamedType("Decimal64(4)"), castType: "String"},
		{input: "Date32", schema: ndc.NamedType("Date32"), castType: "String"},
		{input: "DateTime('UTC')", schema: ndc.NamedType("DateTime('UTC')"), castType: "String"},
		{input: "DateTime64(9)", schema: ndc.NamedType("DateTime64(9)"), castType: "String"},
		{input: "Array(Nullable(Float64))", schema: ndc.ArrayType(ndc.NullableType(ndc.NamedType("Float64"))), castType: "Array(Nullable(Float64))"},
		{input: "Map(String, UInt8)", schema: ndc.NamedType("t_c"), castType: "JSON"},
		{input: "Tuple(String, UInt8)", schema: ndc.NamedType("t_c"), castType: "JSON"},
		{input: "Nothing", schema: ndc.NamedType("t_c"), castType: "JSON"},
		{input: "Enum8('a' = 1, 'b' = 2)", schema: ndc.NamedType("t_c"), castType: "String"},
		{input: "SimpleAggregateFunction(sum, UInt64)", schema: ndc.NamedType("UInt64"), castType: "UInt64"},
		{input: "AggregateFunction(max, Int16)", schema: ndc.NamedType("Int16"), castType: "Int16"},
		{input: "AggregateFunction(anyIf, String, UInt8)", schema: ndc.NamedType("String"), castType: "String"},
		{input: "AggregateFunction(argMax, String, UInt8)", schema: ndc.NamedType("t_c"), castType: "JSON"},
		{input: "Tuple(a Int32, b Nullable(String))", schema: ndc.NamedType("t_c"), castType: `Tuple("a" Int32, "b" Nullable(String))`},
		{input: "Nested(a Int32, b Decimal(9, 2))", schema: ndc.ArrayType(ndc.NamedType("t_c")), castType: `Array(Tuple("a" Int32, "b" String))`},
		{input: "Nested(a Int32, a String)", schema: ndc.NamedType("t_c"), castType: "JSON"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			def := New(Namespace("t", "c"), parser.MustParseDataType(tt.input))
			require.Equal(t, tt.schema, def.SchemaType())
			require.Equal(t, tt.castType, def.CastType().String())
		})
	}
}

func TestNew_Namespaces(t *testing.T) {
	t.Parallel()

	def := New("Album_Meta", parser.MustParseDataType("Tuple(info Tuple(label String), tags Nested(name String, kind Enum8('x' = 1)))"))

	obj, ok := def.(*Object)
	require.True(t, ok)
	require.Equal(t, "Album_Meta", obj.Name)

	info, _ := obj.Fields.Get("info")
	require.Equal(t, "Album_Meta.info", info.(*Object).Name)

	tags, _ := obj.Fields.Get("tags")
	nested := tags.(*Array).Element.(*Object)
	require.Equal(t, "Album_Meta.tags", nested.Name)

	kind, _ := nested.Fields.Get("kind")
	require.Equal(t, "Album_Meta.tags_kind", kind.(*Scalar).Name())
	require.Equal(t, []string{"x"}, kind.(*Scalar).EnumVariants)
}

func TestScalar_Aggregates(t *testing.T) {
	t.Parallel()

	aggregates := func(typ string) map[string]string {
		s := Underlying(New("ns", parser.MustParseDataType(typ))).(*Scalar)
		out := map[string]string{}
		for _, fn := range s.Aggregates() {
			out[fn.Name] = fn.ResultType.String()
		}
		return out
	}

	stats := map[string]string{
		"avg": "Float64", "stddevPop": "Float64", "stddevSamp": "Float64", "varPop": "Float64", "varSamp": "Float64",
	}
	with := func(m map[string]string) map[string]string {
		for k, v := range stats {
			m[k] = v
		}
		return m
	}

	require.Equal(t, with(map[string]string{"max": "UInt8", "min": "UInt8", "sum": "UInt64"}), aggregates("UInt8"))
	require.Equal(t, with(map[string]string{"max": "UInt128", "min": "UInt128", "sum": "UInt128"}), aggregates("UInt128"))
	require.Equal(t, with(map[string]string{"max": "Int32", "min": "Int32", "sum": "Int64"}), aggregates("Int32"))
	require.Equal(t, with(map[string]string{"max": "Int256", "min": "Int256", "sum": "Int256"}), aggregates("Int256"))
	require.Equal(t, with(map[string]string{"max": "Float64", "min": "Float32", "sum": "Float32"}), aggregates("Float32"))
	require.Equal(t, with(map[string]string{"max": "Decimal(9, 2)", "min": "Decimal(9, 2)", "sum": "Decimal(9, 2)"}), aggregates("Decimal(9, 2)"))
	require.Equal(t, map[string]string{"max": "DateTime64(3)", "min": "DateTime64(3)"}, aggregates("Nullable(DateTime64(3))"))
	require.Equal(t, map[string]string{"max": "Date", "min": "Date"}, aggregates("Date"))

	for _, typ := range []string{"String", "Bool", "UUID", "IPv4", "IPv6", "JSON", "Enum8('a' = 1)"} {
		require.Empty(t, aggregates(typ), typ)
	}

	s := New("ns", parser.MustParseDataType("Int64")).(*Scalar)
	fn, ok := s.Aggregate("sum")
	require.True(t, ok)
	require.Equal(t, "Int64", fn.ResultType.String())

	_, ok = s.Aggregate("median")
	require.False(t, ok)
}

func TestScalar_ComparisonOperators(t *testing.T) {
	t.Parallel()

	operators := func(typ string) []string {
		s := New("ns", parser.MustParseDataType(typ)).(*Scalar)
		var names []string
		for _, op := range s.ComparisonOperators() {
			names = append(names, op.Name)
		}
		return names
	}

	equality := []string{"_eq", "_neq", "_in", "_nin"}
	ordered := append(append([]string{}, equality...), "_gt", "_lt", "_gte", "_lte")
	strings := append(append([]string{}, ordered...), "_like", "_nlike", "_ilike", "_nilike", "_match")

	require.Equal(t, strings, operators("String"))
	require.Equal(t, ordered, operators("Int32"))
	require.Equal(t, ordered, operators("UUID"))
	require.Equal(t, ordered, operators("DateTime"))
	require.Equal(t, ordered, operators("Decimal(9, 2)"))
	require.Equal(t, equality, operators("Bool"))
	require.Equal(t, equality, operators("Enum8('a' = 1)"))

	s := New("ns", parser.MustParseDataType("Int32")).(*Scalar)
	in, ok := s.ComparisonOperator("_in")
	require.True(t, ok)
	require.Equal(t, "Array(Int32)", in.ArgumentType.String())
	require.Equal(t, ndc.ComparisonOperatorIn, in.Kind)

	match, ok := New("ns", parser.MustParseDataType("String")).(*Scalar).ComparisonOperator("_match")
	require.True(t, ok)
	require.True(t, match.Function)
	require.Equal(t, "match", match.SQL)

	_, ok = s.ComparisonOperator("_like")
	require.False(t, ok)
}

func TestScalar_Representation(t *testing.T) {
	t.Parallel()

	tests := map[string]ndc.TypeRepresentationKind{
		"Bool":          ndc.RepresentationBoolean,
		"String":        ndc.RepresentationString,
		"UInt8":         ndc.RepresentationInt16,
		"UInt32":        ndc.RepresentationInt64,
		"UInt64":        ndc.RepresentationBigInteger,
		"Int8":          ndc.RepresentationInt8,
		"Int64":         ndc.RepresentationInt64,
		"Float32":       ndc.RepresentationFloat32,
		"Decimal(9, 2)": ndc.RepresentationString,
		"Date":          ndc.RepresentationDate,
		"DateTime":      ndc.RepresentationString,
		"UUID":          ndc.RepresentationUUID,
		"IPv4":          ndc.RepresentationString,
		"JSON":          ndc.RepresentationJSON,
	}

	for typ, expected := range tests {
		s := New("ns", parser.MustParseDataType(typ)).(*Scalar)
		require.Equal(t, expected, s.Representation().Type, typ)
	}

	enum := New("ns", parser.MustParseDataType("Enum8('a' = 1, 'b' = 2)")).(*Scalar)
	require.Equal(t, &ndc.TypeRepresentation{Type: ndc.RepresentationEnum, OneOf: []string{"a", "b"}}, enum.Representation())
}

func TestSchemaTypes(t *testing.T) {
	t.Parallel()

	types := NewSchemaTypes()
	types.Add(New("Album_AlbumId", parser.MustParseDataType("Int32")))
	types.Add(New("Album_Meta", parser.MustParseDataType("Tuple(label Nullable(String), score Float32)")))
	types.Add(New("Album_Props", parser.MustParseDataType("Map(String, String)")))
	types.Add(New("Album_Other", parser.MustParseDataType("Int32")))

	var scalars []string
	for pair := types.Scalars.Oldest(); pair != nil; pair = pair.Next() {
		scalars = append(scalars, pair.Key)
	}
	require.Equal(t, []string{"Int32", "Int64", "Float64", "String", "Float32", "Album_Props"}, scalars)

	obj, ok := types.Objects.Get("Album_Meta")
	require.True(t, ok)
	label, ok := obj.Fields.Get("label")
	require.True(t, ok)
	require.Equal(t, ndc.NullableType(ndc.NamedType("String")), label.Type)

	int32Type, _ := types.Scalars.Get("Int32")
	sum, ok := int32Type.AggregateFunctions.Get("sum")
	require.True(t, ok)
	require.Equal(t, ndc.NullableType(ndc.NamedType("Int64")), sum.ResultType)

	gt, ok := int32Type.ComparisonOperators.Get("_gt")
	require.True(t, ok)
	require.Equal(t, ndc.ComparisonOperatorCustom, gt.Type)
	require.Equal(t, ndc.NamedType("Int32"), *gt.ArgumentType)

	nin, _ := int32Type.ComparisonOperators.Get("_nin")
	require.Equal(t, ndc.ArrayType(ndc.NamedType("Int32")), *nin.ArgumentType)

	eq, _ := int32Type.ComparisonOperators.Get("_eq")
	require.Nil(t, eq.ArgumentType)
}
