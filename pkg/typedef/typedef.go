package typedef

import (
	"github.com/pseudomuto/ndc-clickhouse/pkg/ndc"
	"github.com/pseudomuto/ndc-clickhouse/pkg/parser"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// TypeDefinition is the connector-facing view of a ClickHouse data type. It is one
// of *Scalar, *Nullable, *Array, *Object, or *Unknown.
type TypeDefinition interface {
	// SchemaType returns the NDC type reference for the definition.
	SchemaType() ndc.Type
	// CastType returns the type ClickHouse output is cast to for this definition.
	CastType() *parser.DataType

	typeDefinition()
}

type (
	// Scalar is a leaf type.
	Scalar struct {
		Kind ScalarKind
		// DataType is the scalar's ClickHouse type with modifiers removed.
		DataType *parser.DataType
		// EnumVariants lists the allowed values for enums.
		EnumVariants []string
		// Namespace names enum scalars in the schema.
		Namespace string
	}

	// Nullable wraps a type whose values may be null.
	Nullable struct {
		Inner TypeDefinition
	}

	// Array is a list of Element values.
	Array struct {
		Element TypeDefinition
	}

	// Object is a named record with ordered fields. Name is unique across the
	// schema because it is derived from the enclosing namespace.
	Object struct {
		Name   string
		Fields *orderedmap.OrderedMap[string, TypeDefinition]
	}

	// Unknown is a type the connector cannot describe precisely. Values are passed
	// through as JSON.
	Unknown struct {
		Name string
	}
)

func (*Scalar) typeDefinition()   {}
func (*Nullable) typeDefinition() {}
func (*Array) typeDefinition()    {}
func (*Object) typeDefinition()   {}
func (*Unknown) typeDefinition()  {}

// Name returns the schema name of the scalar type. Enums are named by their
// namespace so that distinct variant sets never collide.
func (s *Scalar) Name() string {
	if s.Kind == KindEnum {
		return s.Namespace
	}

	return s.DataType.String()
}

// SchemaType implements TypeDefinition.
func (s *Scalar) SchemaType() ndc.Type { return ndc.NamedType(s.Name()) }

// SchemaType implements TypeDefinition.
func (n *Nullable) SchemaType() ndc.Type { return ndc.NullableType(n.Inner.SchemaType()) }

// CastType implements TypeDefinition.
func (n *Nullable) CastType() *parser.DataType { return parser.NewNullable(n.Inner.CastType()) }

// SchemaType implements TypeDefinition.
func (a *Array) SchemaType() ndc.Type { return ndc.ArrayType(a.Element.SchemaType()) }

// CastType implements TypeDefinition.
func (a *Array) CastType() *parser.DataType { return parser.NewArray(a.Element.CastType()) }

// SchemaType implements TypeDefinition.
func (o *Object) SchemaType() ndc.Type { return ndc.NamedType(o.Name) }

// CastType implements TypeDefinition. Objects become named tuples so that the
// output carries field names.
func (o *Object) CastType() *parser.DataType {
	tuple := &parser.TupleType{}
	for pair := o.Fields.Oldest(); pair != nil; pair = pair.Next() {
		tuple.Elements = append(tuple.Elements, &parser.TupleElement{
			Name: &parser.Identifier{Value: pair.Key, Quoting: parser.DoubleQuoted},
			Type: pair.Value.CastType(),
		})
	}

	return &parser.DataType{Tuple: tuple}
}

// SchemaType implements TypeDefinition.
func (u *Unknown) SchemaType() ndc.Type { return ndc.NamedType(u.Name) }

// CastType implements TypeDefinition.
func (u *Unknown) CastType() *parser.DataType { return parser.NewScalar(parser.JSON) }

// New classifies dt. namespace must be unique per column; it is extended with
// field names as the walk descends into tuples (joined with ".") and nested
// structures (joined with "_").
//
// Example:
//
//	def := typedef.New("Album_Tags", parser.MustParseDataType("Array(Nullable(String))"))
//	// &Array{Element: &Nullable{Inner: &Scalar{Kind: KindString, ...}}}
func New(namespace string, dt *parser.DataType) TypeDefinition {
	switch {
	case dt.Nullable != nil:
		return &Nullable{Inner: New(namespace, dt.Nullable.Type)}
	case dt.LowCardinality != nil:
		return New(namespace, dt.LowCardinality.Type)
	case dt.Array != nil:
		return &Array{Element: New(namespace, dt.Array.Type)}
	case dt.FixedString != nil:
		return &Scalar{Kind: KindString, DataType: stringType}
	case dt.Enum != nil:
		variants := make([]string, 0, len(dt.Enum.Variants))
		for _, v := range dt.Enum.Variants {
			variants = append(variants, string(v.Name))
		}
		return &Scalar{Kind: KindEnum, DataType: stringType, EnumVariants: variants, Namespace: namespace}
	case dt.Decimal != nil, dt.SizedDecimal != nil:
		return &Scalar{Kind: KindDecimal, DataType: dt}
	case dt.DateTime != nil:
		return &Scalar{Kind: KindDateTime, DataType: dt}
	case dt.DateTime64 != nil:
		return &Scalar{Kind: KindDateTime64, DataType: dt}
	case dt.Tuple != nil:
		return newTuple(namespace, dt.Tuple)
	case dt.Nested != nil:
		return newNested(namespace, dt.Nested)
	case dt.Map != nil:
		return &Unknown{Name: namespace}
	case dt.SimpleAggregateFunction != nil:
		if args := dt.SimpleAggregateFunction.Arguments; len(args) == 1 {
			return New(namespace, args[0])
		}
		return &Unknown{Name: namespace}
	case dt.AggregateFunction != nil:
		return newAggregateFunction(namespace, dt.AggregateFunction)
	case dt.Scalar != nil:
		if kind, ok := scalarKinds[*dt.Scalar]; ok {
			return &Scalar{Kind: kind, DataType: dt}
		}
		return &Unknown{Name: namespace}
	default:
		return &Unknown{Name: namespace}
	}
}

func newTuple(namespace string, t *parser.TupleType) TypeDefinition {
	fields := orderedmap.New[string, TypeDefinition]()
	for _, e := range t.Elements {
		if e.Name == nil {
			return &Unknown{Name: namespace}
		}
		fields.Set(e.Name.Value, New(namespace+"."+e.Name.Value, e.Type))
	}

	return &Object{Name: namespace, Fields: fields}
}

func newNested(namespace string, n *parser.NestedType) TypeDefinition {
	fields := orderedmap.New[string, TypeDefinition]()
	for _, f := range n.Fields {
		if _, exists := fields.Get(f.Name.Value); exists {
			return &Unknown{Name: namespace}
		}
		fields.Set(f.Name.Value, New(namespace+"_"+f.Name.Value, f.Type))
	}

	return &Array{Element: &Object{Name: namespace, Fields: fields}}
}

func newAggregateFunction(namespace string, a *parser.AggregateFunctionType) TypeDefinition {
	switch {
	case len(a.Arguments) == 1:
		return New(namespace, a.Arguments[0])
	case a.Function.Name.Value == "anyIf" && len(a.Arguments) == 2:
		return New(namespace, a.Arguments[0])
	default:
		return &Unknown{Name: namespace}
	}
}

// Namespace returns the root namespace for a column of a collection.
func Namespace(collection, column string) string {
	return collection + "_" + column
}

// Underlying strips Nullable wrappers from def.
func Underlying(def TypeDefinition) TypeDefinition {
	for {
		n, ok := def.(*Nullable)
		if !ok {
			return def
		}
		def = n.Inner
	}
}
