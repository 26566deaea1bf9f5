package ndc

import orderedmap "github.com/wk8/go-ordered-map/v2"

type (
	// TypeKind discriminates Type values.
	TypeKind string

	// TypeRepresentationKind names the JSON representation of a scalar type.
	TypeRepresentationKind string

	// ComparisonOperatorKind discriminates ComparisonOperatorDefinition values.
	ComparisonOperatorKind string
)

const (
	TypeKindNamed     TypeKind = "named"
	TypeKindNullable  TypeKind = "nullable"
	TypeKindArray     TypeKind = "array"
	TypeKindPredicate TypeKind = "predicate"

	RepresentationBoolean    TypeRepresentationKind = "boolean"
	RepresentationString     TypeRepresentationKind = "string"
	RepresentationInt8       TypeRepresentationKind = "int8"
	RepresentationInt16      TypeRepresentationKind = "int16"
	RepresentationInt32      TypeRepresentationKind = "int32"
	RepresentationInt64      TypeRepresentationKind = "int64"
	RepresentationFloat32    TypeRepresentationKind = "float32"
	RepresentationFloat64    TypeRepresentationKind = "float64"
	RepresentationBigInteger TypeRepresentationKind = "biginteger"
	RepresentationDate       TypeRepresentationKind = "date"
	RepresentationUUID       TypeRepresentationKind = "uuid"
	RepresentationJSON       TypeRepresentationKind = "json"
	RepresentationEnum       TypeRepresentationKind = "enum"

	ComparisonOperatorEqual  ComparisonOperatorKind = "equal"
	ComparisonOperatorIn     ComparisonOperatorKind = "in"
	ComparisonOperatorCustom ComparisonOperatorKind = "custom"
)

type (
	// SchemaResponse is the body of GET /schema.
	SchemaResponse struct {
		ScalarTypes *orderedmap.OrderedMap[string, ScalarType] `json:"scalar_types"`
		ObjectTypes *orderedmap.OrderedMap[string, ObjectType] `json:"object_types"`
		Collections []CollectionInfo                           `json:"collections"`
		Functions   []FunctionInfo                             `json:"functions"`
		Procedures  []ProcedureInfo                            `json:"procedures"`
	}

	// Type is a reference to a scalar or object type, possibly wrapped.
	Type struct {
		Type           TypeKind `json:"type"`
		Name           string   `json:"name,omitempty"`
		UnderlyingType *Type    `json:"underlying_type,omitempty"`
		ElementType    *Type    `json:"element_type,omitempty"`
		ObjectTypeName string   `json:"object_type_name,omitempty"`
	}

	// TypeRepresentation tells clients how values of a scalar are encoded in JSON.
	TypeRepresentation struct {
		Type  TypeRepresentationKind `json:"type"`
		OneOf []string               `json:"one_of,omitempty"`
	}

	// ScalarType describes a scalar and the operations it supports.
	ScalarType struct {
		Representation      *TypeRepresentation                                          `json:"representation,omitempty"`
		AggregateFunctions  *orderedmap.OrderedMap[string, AggregateFunctionDefinition]  `json:"aggregate_functions"`
		ComparisonOperators *orderedmap.OrderedMap[string, ComparisonOperatorDefinition] `json:"comparison_operators"`
	}

	// AggregateFunctionDefinition describes an aggregate function on a scalar.
	AggregateFunctionDefinition struct {
		ResultType Type `json:"result_type"`
	}

	// ComparisonOperatorDefinition describes a comparison operator on a scalar.
	ComparisonOperatorDefinition struct {
		Type         ComparisonOperatorKind `json:"type"`
		ArgumentType *Type                  `json:"argument_type,omitempty"`
	}

	// ObjectType describes the fields of an object.
	ObjectType struct {
		Description *string                                     `json:"description,omitempty"`
		Fields      *orderedmap.OrderedMap[string, ObjectField] `json:"fields"`
	}

	// ObjectField is a single field of an ObjectType.
	ObjectField struct {
		Description *string                 `json:"description,omitempty"`
		Type        Type                    `json:"type"`
		Arguments   map[string]ArgumentInfo `json:"arguments,omitempty"`
	}

	// ArgumentInfo describes a collection, function, or procedure argument.
	ArgumentInfo struct {
		Description *string `json:"description,omitempty"`
		Type        Type    `json:"type"`
	}

	// CollectionInfo describes a queryable collection.
	CollectionInfo struct {
		Name                  string                                       `json:"name"`
		Description           *string                                      `json:"description,omitempty"`
		Arguments             *orderedmap.OrderedMap[string, ArgumentInfo] `json:"arguments"`
		Type                  string                                       `json:"type"`
		UniquenessConstraints map[string]UniquenessConstraint              `json:"uniqueness_constraints"`
		ForeignKeys           map[string]ForeignKeyConstraint              `json:"foreign_keys"`
	}

	// UniquenessConstraint lists columns whose values are unique together.
	UniquenessConstraint struct {
		UniqueColumns []string `json:"unique_columns"`
	}

	// ForeignKeyConstraint maps columns of a collection onto another collection.
	ForeignKeyConstraint struct {
		ColumnMapping     map[string]string `json:"column_mapping"`
		ForeignCollection string            `json:"foreign_collection"`
	}

	// FunctionInfo describes a function. The connector exposes none.
	FunctionInfo struct {
		Name        string                                       `json:"name"`
		Description *string                                      `json:"description,omitempty"`
		Arguments   *orderedmap.OrderedMap[string, ArgumentInfo] `json:"arguments"`
		ResultType  Type                                         `json:"result_type"`
	}

	// ProcedureInfo describes a procedure.
	ProcedureInfo struct {
		Name        string                                       `json:"name"`
		Description *string                                      `json:"description,omitempty"`
		Arguments   *orderedmap.OrderedMap[string, ArgumentInfo] `json:"arguments"`
		ResultType  Type                                         `json:"result_type"`
	}
)

// NamedType returns a reference to the named scalar or object type.
func NamedType(name string) Type {
	return Type{Type: TypeKindNamed, Name: name}
}

// NullableType wraps t as nullable.
func NullableType(t Type) Type {
	return Type{Type: TypeKindNullable, UnderlyingType: &t}
}

// ArrayType wraps t as an array.
func ArrayType(t Type) Type {
	return Type{Type: TypeKindArray, ElementType: &t}
}
