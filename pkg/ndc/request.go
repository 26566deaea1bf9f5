package ndc

import (
	"encoding/json"

	"github.com/pkg/errors"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

type (
	// ArgumentType discriminates Argument and RelationshipArgument values.
	ArgumentType string

	// FieldType discriminates Field values.
	FieldType string

	// NestedFieldType discriminates NestedField values.
	NestedFieldType string

	// AggregateType discriminates Aggregate values.
	AggregateType string

	// ExpressionType discriminates Expression values.
	ExpressionType string

	// ComparisonTargetType discriminates ComparisonTarget values.
	ComparisonTargetType string

	// ComparisonValueType discriminates ComparisonValue values.
	ComparisonValueType string

	// ExistsInCollectionType discriminates ExistsInCollection values.
	ExistsInCollectionType string

	// OrderByTargetType discriminates OrderByTarget values.
	OrderByTargetType string

	// OrderDirection is the sort direction of an OrderByElement.
	OrderDirection string

	// RelationshipType is the cardinality of a Relationship.
	RelationshipType string

	// UnaryComparisonOperator names a comparison that takes no value.
	UnaryComparisonOperator string
)

const (
	ArgumentTypeLiteral  ArgumentType = "literal"
	ArgumentTypeVariable ArgumentType = "variable"
	ArgumentTypeColumn   ArgumentType = "column"

	FieldTypeColumn       FieldType = "column"
	FieldTypeRelationship FieldType = "relationship"

	NestedFieldTypeObject NestedFieldType = "object"
	NestedFieldTypeArray  NestedFieldType = "array"

	AggregateTypeColumnCount  AggregateType = "column_count"
	AggregateTypeSingleColumn AggregateType = "single_column"
	AggregateTypeStarCount    AggregateType = "star_count"

	ExpressionTypeAnd                      ExpressionType = "and"
	ExpressionTypeOr                       ExpressionType = "or"
	ExpressionTypeNot                      ExpressionType = "not"
	ExpressionTypeUnaryComparisonOperator  ExpressionType = "unary_comparison_operator"
	ExpressionTypeBinaryComparisonOperator ExpressionType = "binary_comparison_operator"
	ExpressionTypeExists                   ExpressionType = "exists"

	ComparisonTargetTypeColumn               ComparisonTargetType = "column"
	ComparisonTargetTypeRootCollectionColumn ComparisonTargetType = "root_collection_column"

	ComparisonValueTypeColumn   ComparisonValueType = "column"
	ComparisonValueTypeScalar   ComparisonValueType = "scalar"
	ComparisonValueTypeVariable ComparisonValueType = "variable"

	ExistsInCollectionTypeRelated   ExistsInCollectionType = "related"
	ExistsInCollectionTypeUnrelated ExistsInCollectionType = "unrelated"

	OrderByTargetTypeColumn                OrderByTargetType = "column"
	OrderByTargetTypeSingleColumnAggregate OrderByTargetType = "single_column_aggregate"
	OrderByTargetTypeStarCountAggregate    OrderByTargetType = "star_count_aggregate"

	OrderDirectionAsc  OrderDirection = "asc"
	OrderDirectionDesc OrderDirection = "desc"

	RelationshipTypeObject RelationshipType = "object"
	RelationshipTypeArray  RelationshipType = "array"

	UnaryComparisonOperatorIsNull UnaryComparisonOperator = "is_null"
)

// RelationshipArgument is an Argument supplied while traversing a relationship.
type RelationshipArgument = Argument

type (
	// QueryRequest is the body of POST /query and POST /query/explain.
	QueryRequest struct {
		Collection              string                  `json:"collection"`
		Query                   Query                   `json:"query"`
		Arguments               map[string]Argument     `json:"arguments"`
		CollectionRelationships map[string]Relationship `json:"collection_relationships"`
		// Variables is nil when the request carries no variables. An empty, non-nil
		// slice means the caller sent an empty list, which is rejected by the planner.
		Variables []map[string]json.RawMessage `json:"variables,omitempty"`
	}

	// Query describes the rows and aggregates requested from a collection.
	Query struct {
		Aggregates *orderedmap.OrderedMap[string, Aggregate] `json:"aggregates,omitempty"`
		Fields     *orderedmap.OrderedMap[string, Field]     `json:"fields,omitempty"`
		Limit      *uint32                                   `json:"limit,omitempty"`
		Offset     *uint32                                   `json:"offset,omitempty"`
		OrderBy    *OrderBy                                  `json:"order_by,omitempty"`
		Predicate  *Expression                               `json:"predicate,omitempty"`
	}

	// Argument is a collection argument bound to a literal or a variable. Arguments
	// supplied when traversing a relationship may also reference a column of the
	// source collection (ArgumentTypeColumn).
	Argument struct {
		Type  ArgumentType    `json:"type"`
		Name  string          `json:"name,omitempty"`
		Value json.RawMessage `json:"value,omitempty"`
	}

	// Relationship is a named edge between two collections.
	Relationship struct {
		// ColumnMapping maps source column names to target column names.
		ColumnMapping    *orderedmap.OrderedMap[string, string] `json:"column_mapping"`
		RelationshipType RelationshipType                       `json:"relationship_type"`
		TargetCollection string                                 `json:"target_collection"`
		Arguments        map[string]RelationshipArgument        `json:"arguments"`
	}

	// Field is a requested row field: a column (optionally with a nested field
	// selection) or a relationship.
	Field struct {
		Type FieldType `json:"type"`

		// column
		Column string       `json:"column,omitempty"`
		Fields *NestedField `json:"fields,omitempty"`

		// relationship
		Query        *Query `json:"query,omitempty"`
		Relationship string `json:"relationship,omitempty"`

		Arguments map[string]RelationshipArgument `json:"arguments,omitempty"`
	}

	// NestedField selects sub-fields of an object or array column. On the wire both
	// arms use the "fields" key: an object of fields for objects and a nested field
	// for arrays.
	NestedField struct {
		Type NestedFieldType
		// Fields is set for object selections.
		Fields *orderedmap.OrderedMap[string, Field]
		// Element is set for array selections.
		Element *NestedField
	}

	// Aggregate is a requested aggregate over the selected rows.
	Aggregate struct {
		Type      AggregateType `json:"type"`
		Column    string        `json:"column,omitempty"`
		FieldPath []string      `json:"field_path,omitempty"`
		Distinct  bool          `json:"distinct,omitempty"`
		Function  string        `json:"function,omitempty"`
	}

	// OrderBy lists the sort keys of a query.
	OrderBy struct {
		Elements []OrderByElement `json:"elements"`
	}

	// OrderByElement is a single sort key.
	OrderByElement struct {
		OrderDirection OrderDirection `json:"order_direction"`
		Target         OrderByTarget  `json:"target"`
	}

	// OrderByTarget is a column, or an aggregate reached through a relationship path.
	OrderByTarget struct {
		Type      OrderByTargetType `json:"type"`
		Name      string            `json:"name,omitempty"`
		Column    string            `json:"column,omitempty"`
		Function  string            `json:"function,omitempty"`
		FieldPath []string          `json:"field_path,omitempty"`
		Path      []PathElement     `json:"path"`
	}

	// PathElement is one relationship hop in an order-by or comparison path.
	PathElement struct {
		Relationship string                          `json:"relationship"`
		Arguments    map[string]RelationshipArgument `json:"arguments"`
		Predicate    *Expression                     `json:"predicate,omitempty"`
	}

	// Expression is a boolean predicate.
	Expression struct {
		Type ExpressionType `json:"type"`

		// and, or
		Expressions []Expression `json:"expressions,omitempty"`
		// not
		Expression *Expression `json:"expression,omitempty"`

		// unary_comparison_operator, binary_comparison_operator
		Column   *ComparisonTarget `json:"column,omitempty"`
		Operator string            `json:"operator,omitempty"`
		Value    *ComparisonValue  `json:"value,omitempty"`

		// exists
		InCollection *ExistsInCollection `json:"in_collection,omitempty"`
		Predicate    *Expression         `json:"predicate,omitempty"`
	}

	// ComparisonTarget is the left-hand side of a comparison.
	ComparisonTarget struct {
		Type      ComparisonTargetType `json:"type"`
		Name      string               `json:"name"`
		Path      []PathElement        `json:"path,omitempty"`
		FieldPath []string             `json:"field_path,omitempty"`
	}

	// ComparisonValue is the right-hand side of a comparison.
	ComparisonValue struct {
		Type   ComparisonValueType `json:"type"`
		Column *ComparisonTarget   `json:"column,omitempty"`
		Value  json.RawMessage     `json:"value,omitempty"`
		Name   string              `json:"name,omitempty"`
	}

	// ExistsInCollection names the collection an exists expression ranges over.
	ExistsInCollection struct {
		Type         ExistsInCollectionType          `json:"type"`
		Relationship string                          `json:"relationship,omitempty"`
		Collection   string                          `json:"collection,omitempty"`
		Arguments    map[string]RelationshipArgument `json:"arguments"`
	}
)

type nestedFieldJSON struct {
	Type   NestedFieldType `json:"type"`
	Fields json.RawMessage `json:"fields"`
}

// MarshalJSON implements json.Marshaler.
func (n NestedField) MarshalJSON() ([]byte, error) {
	var (
		fields []byte
		err    error
	)

	switch n.Type {
	case NestedFieldTypeArray:
		fields, err = json.Marshal(n.Element)
	default:
		fields, err = json.Marshal(n.Fields)
	}
	if err != nil {
		return nil, err
	}

	return json.Marshal(nestedFieldJSON{Type: n.Type, Fields: fields})
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *NestedField) UnmarshalJSON(data []byte) error {
	var raw nestedFieldJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	n.Type = raw.Type
	switch raw.Type {
	case NestedFieldTypeArray:
		n.Element = &NestedField{}
		return json.Unmarshal(raw.Fields, n.Element)
	case NestedFieldTypeObject:
		n.Fields = orderedmap.New[string, Field]()
		return json.Unmarshal(raw.Fields, n.Fields)
	default:
		return errors.Errorf("unknown nested field type: %q", raw.Type)
	}
}
