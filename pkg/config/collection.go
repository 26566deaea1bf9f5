package config

import (
	"github.com/pkg/errors"
	"github.com/pseudomuto/ndc-clickhouse/pkg/parser"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Collection is a table or a collection-exposed native query, with its row type
// resolved.
type Collection struct {
	Alias string
	// Exactly one of Table and Query is set.
	Table *TableConfig
	Query *QueryConfig
	// TypeName is the alias of the table or query that defines the row type.
	TypeName string
	Type     *ObjectTypeDefinition
}

// Collection looks up a collection by alias. Tables take precedence over queries,
// and queries exposed as procedures are not collections.
func (c *ServerConfig) Collection(alias string) (*Collection, error) {
	coll := &Collection{Alias: alias}

	var ref ReturnTypeRef
	if t, ok := c.Tables.Get(alias); ok {
		coll.Table = t
		ref = t.ReturnType
	} else if q, ok := c.Queries.Get(alias); ok && q.ExposedAs == ExposedAsCollection {
		coll.Query = q
		ref = q.ReturnType
	} else {
		return nil, errors.Errorf("unknown collection %q", alias)
	}

	name, def, err := c.ResolveReturnType(ref)
	if err != nil {
		return nil, errors.Wrapf(err, "collection %q", alias)
	}

	coll.TypeName = name
	coll.Type = def
	return coll, nil
}

// Column returns the column exposed under alias.
func (c *Collection) Column(alias string) (*ColumnDefinition, error) {
	col, ok := c.Type.Columns.Get(alias)
	if !ok {
		return nil, errors.Errorf("unknown column %q in collection %q", alias, c.Alias)
	}

	return col, nil
}

// Arguments returns the collection's arguments and their types. A native query
// argument declared as Identifier has a nil type.
func (c *Collection) Arguments() *orderedmap.OrderedMap[string, *parser.DataType] {
	if c.Table != nil {
		return c.Table.Arguments
	}

	return c.Query.Arguments()
}

// Arguments returns the distinct parameter holes of the query in order of first
// appearance. Identifier holes map to a nil type.
func (q *QueryConfig) Arguments() *orderedmap.OrderedMap[string, *parser.DataType] {
	args := orderedmap.New[string, *parser.DataType]()
	if q.Query == nil {
		return args
	}

	for _, p := range q.Query.Parameters() {
		if _, exists := args.Get(p.Name.Value); !exists {
			args.Set(p.Name.Value, p.Type.DataType)
		}
	}

	return args
}
