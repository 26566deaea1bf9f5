package typestring

import (
	"github.com/pseudomuto/ndc-clickhouse/pkg/config"
	"github.com/pseudomuto/ndc-clickhouse/pkg/ndc"
	"github.com/pseudomuto/ndc-clickhouse/pkg/parser"
	"github.com/pseudomuto/ndc-clickhouse/pkg/typedef"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

var (
	countType = parser.NewScalar(parser.UInt32)
	emptyType = &parser.DataType{Map: &parser.MapType{
		Key:   parser.NewScalar(parser.Nothing),
		Value: parser.NewScalar(parser.Nothing),
	}}
)

// Builder produces cast types for the collections of a single request.
type Builder struct {
	cfg           *config.ServerConfig
	relationships map[string]ndc.Relationship
}

// New returns a Builder that resolves collections in cfg and relationship fields
// in relationships.
func New(cfg *config.ServerConfig, relationships map[string]ndc.Relationship) *Builder {
	return &Builder{cfg: cfg, relationships: relationships}
}

// RowsetTypeString returns the cast type of a rowset: a tuple with a rows
// element when q selects fields and an aggregates element when it selects
// aggregates. A query with neither is Map(Nothing, Nothing), which ClickHouse
// renders as an empty object.
//
// Example:
//
//	s, err := typestring.New(cfg, req.CollectionRelationships).RowsetTypeString("Album", &req.Query)
//	// Tuple(rows Array(Tuple("Title" String)))
func (b *Builder) RowsetTypeString(collection string, q *ndc.Query) (string, error) {
	dt, err := b.rowset(collection, q)
	if err != nil {
		return "", err
	}

	return dt.String(), nil
}

// RowsTypeString returns Array(Tuple("alias" T, ...)) for the requested fields.
func (b *Builder) RowsTypeString(collection string, fields *orderedmap.OrderedMap[string, ndc.Field]) (string, error) {
	dt, err := b.rows(collection, fields)
	if err != nil {
		return "", err
	}

	return dt.String(), nil
}

// AggregatesTypeString returns Tuple("alias" T, ...) for the requested aggregates.
func (b *Builder) AggregatesTypeString(collection string, aggregates *orderedmap.OrderedMap[string, ndc.Aggregate]) (string, error) {
	dt, err := b.aggregates(collection, aggregates)
	if err != nil {
		return "", err
	}

	return dt.String(), nil
}

// FieldTypeString returns the cast type of a single field.
func (b *Builder) FieldTypeString(collection string, field ndc.Field) (string, error) {
	coll, err := b.collection(collection)
	if err != nil {
		return "", err
	}

	dt, err := b.field(coll, field)
	if err != nil {
		return "", err
	}

	return dt.String(), nil
}

func (b *Builder) collection(alias string) (*config.Collection, error) {
	coll, err := b.cfg.Collection(alias)
	if err != nil {
		return nil, &Error{Collection: alias, Message: err.Error()}
	}

	return coll, nil
}

func (b *Builder) rowset(collection string, q *ndc.Query) (*parser.DataType, error) {
	if q == nil || (q.Fields == nil && q.Aggregates == nil) {
		return emptyType, nil
	}

	tuple := &parser.TupleType{}
	if q.Fields != nil {
		rows, err := b.rows(collection, q.Fields)
		if err != nil {
			return nil, err
		}
		tuple.Elements = append(tuple.Elements, element("rows", parser.Unquoted, rows))
	}

	if q.Aggregates != nil {
		aggs, err := b.aggregates(collection, q.Aggregates)
		if err != nil {
			return nil, err
		}
		tuple.Elements = append(tuple.Elements, element("aggregates", parser.Unquoted, aggs))
	}

	return &parser.DataType{Tuple: tuple}, nil
}

func (b *Builder) rows(collection string, fields *orderedmap.OrderedMap[string, ndc.Field]) (*parser.DataType, error) {
	if fields == nil || fields.Len() == 0 {
		return parser.NewArray(emptyType), nil
	}

	coll, err := b.collection(collection)
	if err != nil {
		return nil, err
	}

	tuple := &parser.TupleType{}
	for pair := fields.Oldest(); pair != nil; pair = pair.Next() {
		dt, err := b.field(coll, pair.Value)
		if err != nil {
			return nil, err
		}
		tuple.Elements = append(tuple.Elements, element(pair.Key, parser.DoubleQuoted, dt))
	}

	return parser.NewArray(&parser.DataType{Tuple: tuple}), nil
}

func (b *Builder) field(coll *config.Collection, field ndc.Field) (*parser.DataType, error) {
	switch field.Type {
	case ndc.FieldTypeColumn:
		col, err := coll.Column(field.Column)
		if err != nil {
			return nil, &Error{Collection: coll.Alias, Column: field.Column, Message: "unknown column"}
		}
		if field.Fields != nil {
			return nil, &Error{Collection: coll.Alias, Column: field.Column, Message: "nested field selection is not supported"}
		}

		return typedef.New(typedef.Namespace(coll.TypeName, col.Alias), col.Type).CastType(), nil
	case ndc.FieldTypeRelationship:
		rel, ok := b.relationships[field.Relationship]
		if !ok {
			return nil, &Error{Collection: coll.Alias, Relationship: field.Relationship, Message: "unknown relationship"}
		}

		return b.rowset(rel.TargetCollection, field.Query)
	default:
		return nil, &Error{Collection: coll.Alias, Message: "unknown field type " + quote(string(field.Type))}
	}
}

func (b *Builder) aggregates(collection string, aggregates *orderedmap.OrderedMap[string, ndc.Aggregate]) (*parser.DataType, error) {
	if aggregates == nil || aggregates.Len() == 0 {
		return emptyType, nil
	}

	coll, err := b.collection(collection)
	if err != nil {
		return nil, err
	}

	tuple := &parser.TupleType{}
	for pair := aggregates.Oldest(); pair != nil; pair = pair.Next() {
		dt, err := b.aggregate(coll, pair.Value)
		if err != nil {
			return nil, err
		}
		tuple.Elements = append(tuple.Elements, element(pair.Key, parser.DoubleQuoted, dt))
	}

	return &parser.DataType{Tuple: tuple}, nil
}

func (b *Builder) aggregate(coll *config.Collection, agg ndc.Aggregate) (*parser.DataType, error) {
	switch agg.Type {
	case ndc.AggregateTypeStarCount, ndc.AggregateTypeColumnCount:
		return countType, nil
	case ndc.AggregateTypeSingleColumn:
		col, err := coll.Column(agg.Column)
		if err != nil {
			return nil, &Error{Collection: coll.Alias, Column: agg.Column, Message: "unknown column"}
		}

		def := typedef.Underlying(typedef.New(typedef.Namespace(coll.TypeName, col.Alias), col.Type))
		scalar, ok := def.(*typedef.Scalar)
		if !ok {
			return nil, &Error{Collection: coll.Alias, Column: agg.Column, Aggregate: agg.Function, Message: "column type " + col.Type.String() + " has no aggregate functions"}
		}

		fn, ok := scalar.Aggregate(agg.Function)
		if !ok {
			return nil, &Error{Collection: coll.Alias, Column: agg.Column, Aggregate: agg.Function, Message: "unknown aggregate function for type " + col.Type.String()}
		}

		return parser.NewNullable(typedef.New("", fn.ResultType).CastType()), nil
	default:
		return nil, &Error{Collection: coll.Alias, Message: "unknown aggregate type " + quote(string(agg.Type))}
	}
}

func element(name string, quoting parser.Quoting, dt *parser.DataType) *parser.TupleElement {
	return &parser.TupleElement{
		Name: &parser.Identifier{Value: name, Quoting: quoting},
		Type: dt,
	}
}
