package typedef

import (
	"github.com/pseudomuto/ndc-clickhouse/pkg/ndc"
	"github.com/pseudomuto/ndc-clickhouse/pkg/parser"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ScalarKind classifies a scalar for the purpose of deriving its operators,
// aggregate functions, JSON representation, and cast type.
type ScalarKind int

const (
	KindBool ScalarKind = iota
	KindString
	KindUInt8
	KindUInt16
	KindUInt32
	KindUInt64
	KindUInt128
	KindUInt256
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindInt128
	KindInt256
	KindFloat32
	KindFloat64
	KindDecimal
	KindDate
	KindDate32
	KindDateTime
	KindDateTime64
	KindUUID
	KindIPv4
	KindIPv6
	KindJSON
	KindEnum
)

var scalarKinds = map[parser.Scalar]ScalarKind{
	parser.Bool:    KindBool,
	parser.String:  KindString,
	parser.UInt8:   KindUInt8,
	parser.UInt16:  KindUInt16,
	parser.UInt32:  KindUInt32,
	parser.UInt64:  KindUInt64,
	parser.UInt128: KindUInt128,
	parser.UInt256: KindUInt256,
	parser.Int8:    KindInt8,
	parser.Int16:   KindInt16,
	parser.Int32:   KindInt32,
	parser.Int64:   KindInt64,
	parser.Int128:  KindInt128,
	parser.Int256:  KindInt256,
	parser.Float32: KindFloat32,
	parser.Float64: KindFloat64,
	parser.Date:    KindDate,
	parser.Date32:  KindDate32,
	parser.UUID:    KindUUID,
	parser.IPv4:    KindIPv4,
	parser.IPv6:    KindIPv6,
	parser.JSON:    KindJSON,
}

func (k ScalarKind) isUnsigned() bool { return k >= KindUInt8 && k <= KindUInt256 }
func (k ScalarKind) isSigned() bool   { return k >= KindInt8 && k <= KindInt256 }
func (k ScalarKind) isFloat() bool    { return k == KindFloat32 || k == KindFloat64 }
func (k ScalarKind) isTemporal() bool { return k >= KindDate && k <= KindDateTime64 }

func (k ScalarKind) isOrdered() bool {
	switch {
	case k.isUnsigned(), k.isSigned(), k.isFloat(), k.isTemporal():
		return true
	}

	switch k {
	case KindDecimal, KindString, KindUUID, KindIPv4, KindIPv6, KindJSON:
		return true
	default:
		return false
	}
}

// AggregateFunction is an aggregate a scalar column supports, with the type of its
// result.
type AggregateFunction struct {
	Name       string
	ResultType *parser.DataType
}

// ComparisonOperator is a binary comparison a scalar column supports.
type ComparisonOperator struct {
	Name string
	// SQL is the SQL operator or, when Function is true, the SQL function name.
	SQL      string
	Function bool
	// Kind is the NDC classification of the operator.
	Kind ndc.ComparisonOperatorKind
	// ArgumentType is the type of the right-hand side.
	ArgumentType *parser.DataType
}

var (
	float64Type = parser.NewScalar(parser.Float64)
	stringType  = parser.NewScalar(parser.String)
)

// Aggregates returns the aggregate functions available on s, in a fixed order.
func (s *Scalar) Aggregates() []AggregateFunction {
	same := s.DataType
	stats := func(fns ...AggregateFunction) []AggregateFunction {
		for _, name := range []string{"avg", "stddevPop", "stddevSamp", "varPop", "varSamp"} {
			fns = append(fns, AggregateFunction{Name: name, ResultType: float64Type})
		}
		return fns
	}

	switch k := s.Kind; {
	case k.isUnsigned():
		return stats(
			AggregateFunction{Name: "max", ResultType: same},
			AggregateFunction{Name: "min", ResultType: same},
			AggregateFunction{Name: "sum", ResultType: sumType(k)},
		)
	case k.isSigned():
		return stats(
			AggregateFunction{Name: "max", ResultType: same},
			AggregateFunction{Name: "min", ResultType: same},
			AggregateFunction{Name: "sum", ResultType: sumType(k)},
		)
	case k.isFloat():
		return stats(
			AggregateFunction{Name: "max", ResultType: float64Type},
			AggregateFunction{Name: "min", ResultType: same},
			AggregateFunction{Name: "sum", ResultType: same},
		)
	case k == KindDecimal:
		return stats(
			AggregateFunction{Name: "max", ResultType: same},
			AggregateFunction{Name: "min", ResultType: same},
			AggregateFunction{Name: "sum", ResultType: same},
		)
	case k.isTemporal():
		return []AggregateFunction{
			{Name: "max", ResultType: same},
			{Name: "min", ResultType: same},
		}
	default:
		return nil
	}
}

// Aggregate returns the named aggregate function, if s supports it.
func (s *Scalar) Aggregate(name string) (AggregateFunction, bool) {
	for _, fn := range s.Aggregates() {
		if fn.Name == name {
			return fn, true
		}
	}

	return AggregateFunction{}, false
}

func sumType(k ScalarKind) *parser.DataType {
	switch k {
	case KindUInt128:
		return parser.NewScalar(parser.UInt128)
	case KindUInt256:
		return parser.NewScalar(parser.UInt256)
	case KindInt128:
		return parser.NewScalar(parser.Int128)
	case KindInt256:
		return parser.NewScalar(parser.Int256)
	}

	if k.isUnsigned() {
		return parser.NewScalar(parser.UInt64)
	}

	return parser.NewScalar(parser.Int64)
}

// ComparisonOperators returns the comparison operators available on s, in a fixed
// order.
func (s *Scalar) ComparisonOperators() []ComparisonOperator {
	self := s.DataType
	array := parser.NewArray(self)

	ops := []ComparisonOperator{
		{Name: "_eq", SQL: "=", Kind: ndc.ComparisonOperatorEqual, ArgumentType: self},
		{Name: "_neq", SQL: "!=", Kind: ndc.ComparisonOperatorCustom, ArgumentType: self},
		{Name: "_in", SQL: "IN", Kind: ndc.ComparisonOperatorIn, ArgumentType: array},
		{Name: "_nin", SQL: "NOT IN", Kind: ndc.ComparisonOperatorCustom, ArgumentType: array},
	}

	if s.Kind.isOrdered() {
		ops = append(ops,
			ComparisonOperator{Name: "_gt", SQL: ">", Kind: ndc.ComparisonOperatorCustom, ArgumentType: self},
			ComparisonOperator{Name: "_lt", SQL: "<", Kind: ndc.ComparisonOperatorCustom, ArgumentType: self},
			ComparisonOperator{Name: "_gte", SQL: ">=", Kind: ndc.ComparisonOperatorCustom, ArgumentType: self},
			ComparisonOperator{Name: "_lte", SQL: "<=", Kind: ndc.ComparisonOperatorCustom, ArgumentType: self},
		)
	}

	if s.Kind == KindString {
		ops = append(ops,
			ComparisonOperator{Name: "_like", SQL: "LIKE", Kind: ndc.ComparisonOperatorCustom, ArgumentType: stringType},
			ComparisonOperator{Name: "_nlike", SQL: "NOT LIKE", Kind: ndc.ComparisonOperatorCustom, ArgumentType: stringType},
			ComparisonOperator{Name: "_ilike", SQL: "ILIKE", Kind: ndc.ComparisonOperatorCustom, ArgumentType: stringType},
			ComparisonOperator{Name: "_nilike", SQL: "NOT ILIKE", Kind: ndc.ComparisonOperatorCustom, ArgumentType: stringType},
			ComparisonOperator{Name: "_match", SQL: "match", Function: true, Kind: ndc.ComparisonOperatorCustom, ArgumentType: stringType},
		)
	}

	return ops
}

// ComparisonOperator returns the named comparison operator, if s supports it.
func (s *Scalar) ComparisonOperator(name string) (ComparisonOperator, bool) {
	for _, op := range s.ComparisonOperators() {
		if op.Name == name {
			return op, true
		}
	}

	return ComparisonOperator{}, false
}

// Representation returns how values of s are encoded in query responses.
func (s *Scalar) Representation() *ndc.TypeRepresentation {
	kind := ndc.RepresentationString

	switch s.Kind {
	case KindBool:
		kind = ndc.RepresentationBoolean
	case KindInt8:
		kind = ndc.RepresentationInt8
	case KindInt16, KindUInt8:
		kind = ndc.RepresentationInt16
	case KindInt32, KindUInt16:
		kind = ndc.RepresentationInt32
	case KindInt64, KindUInt32:
		kind = ndc.RepresentationInt64
	case KindUInt64, KindUInt128, KindUInt256, KindInt128, KindInt256:
		kind = ndc.RepresentationBigInteger
	case KindFloat32:
		kind = ndc.RepresentationFloat32
	case KindFloat64:
		kind = ndc.RepresentationFloat64
	case KindDate, KindDate32:
		kind = ndc.RepresentationDate
	case KindUUID:
		kind = ndc.RepresentationUUID
	case KindJSON:
		kind = ndc.RepresentationJSON
	case KindEnum:
		return &ndc.TypeRepresentation{Type: ndc.RepresentationEnum, OneOf: s.EnumVariants}
	}

	return &ndc.TypeRepresentation{Type: kind}
}

// CastType is the type the value is cast to in query output. Types that would
// lose precision or format awkwardly in JSON are rendered as strings.
func (s *Scalar) CastType() *parser.DataType {
	switch s.Kind {
	case KindEnum, KindDecimal, KindDate, KindDate32, KindDateTime, KindDateTime64:
		return stringType
	default:
		return s.DataType
	}
}

// Definition returns the NDC scalar type definition for s.
func (s *Scalar) Definition() ndc.ScalarType {
	aggs := orderedmap.New[string, ndc.AggregateFunctionDefinition]()
	for _, fn := range s.Aggregates() {
		aggs.Set(fn.Name, ndc.AggregateFunctionDefinition{
			ResultType: ndc.NullableType(ndc.NamedType(fn.ResultType.String())),
		})
	}

	ops := orderedmap.New[string, ndc.ComparisonOperatorDefinition]()
	for _, op := range s.ComparisonOperators() {
		def := ndc.ComparisonOperatorDefinition{Type: op.Kind}
		if op.Kind == ndc.ComparisonOperatorCustom {
			argType := ndc.NamedType(s.Name())
			if op.ArgumentType.Array != nil {
				argType = ndc.ArrayType(argType)
			}
			def.ArgumentType = &argType
		}
		ops.Set(op.Name, def)
	}

	return ndc.ScalarType{
		Representation:      s.Representation(),
		AggregateFunctions:  aggs,
		ComparisonOperators: ops,
	}
}
