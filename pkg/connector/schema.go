package connector

import (
	"github.com/pkg/errors"
	"github.com/pseudomuto/ndc-clickhouse/pkg/config"
	"github.com/pseudomuto/ndc-clickhouse/pkg/ndc"
	"github.com/pseudomuto/ndc-clickhouse/pkg/parser"
	"github.com/pseudomuto/ndc-clickhouse/pkg/typedef"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Schema describes cfg as an NDC schema. Every row type becomes an object type
// named after the table or query that declares it, tables and collection-exposed
// queries become collections, and procedure-exposed queries become procedures.
// Scalar and nested object types are collected from the column types in the
// order they are first seen.
func Schema(cfg *config.ServerConfig) (*ndc.SchemaResponse, error) {
	types := typedef.NewSchemaTypes()
	objects := orderedmap.New[string, ndc.ObjectType]()

	for pair := cfg.TableTypes.Oldest(); pair != nil; pair = pair.Next() {
		fields := orderedmap.New[string, ndc.ObjectField]()
		for col := pair.Value.Columns.Oldest(); col != nil; col = col.Next() {
			def := typedef.New(typedef.Namespace(pair.Key, col.Key), col.Value.Type)
			types.Add(def)

			fields.Set(col.Key, ndc.ObjectField{Description: col.Value.Comment, Type: def.SchemaType()})
		}

		objects.Set(pair.Key, ndc.ObjectType{Description: pair.Value.Comment, Fields: fields})
	}

	resp := &ndc.SchemaResponse{
		ScalarTypes: types.Scalars,
		ObjectTypes: objects,
		Collections: []ndc.CollectionInfo{},
		Functions:   []ndc.FunctionInfo{},
		Procedures:  []ndc.ProcedureInfo{},
	}

	for pair := cfg.Tables.Oldest(); pair != nil; pair = pair.Next() {
		t := pair.Value

		typeName, _, err := cfg.ResolveReturnType(t.ReturnType)
		if err != nil {
			return nil, errors.Wrapf(err, "table %q", t.Alias)
		}

		info := ndc.CollectionInfo{
			Name:                  t.Alias,
			Description:           t.Comment,
			Arguments:             arguments(t.Alias, t.Arguments, types),
			Type:                  typeName,
			UniquenessConstraints: map[string]ndc.UniquenessConstraint{},
			ForeignKeys:           map[string]ndc.ForeignKeyConstraint{},
		}
		if pk := t.PrimaryKey; pk != nil && len(pk.Columns) > 0 {
			info.UniquenessConstraints[pk.Name] = ndc.UniquenessConstraint{UniqueColumns: pk.Columns}
		}

		resp.Collections = append(resp.Collections, info)
	}

	for pair := cfg.Queries.Oldest(); pair != nil; pair = pair.Next() {
		q := pair.Value

		typeName, _, err := cfg.ResolveReturnType(q.ReturnType)
		if err != nil {
			return nil, errors.Wrapf(err, "query %q", q.Alias)
		}

		args := arguments(q.Alias, q.Arguments(), types)

		switch q.ExposedAs {
		case config.ExposedAsProcedure:
			resp.Procedures = append(resp.Procedures, ndc.ProcedureInfo{
				Name:        q.Alias,
				Description: q.Comment,
				Arguments:   args,
				ResultType:  ndc.ArrayType(ndc.NamedType(typeName)),
			})
		default:
			resp.Collections = append(resp.Collections, ndc.CollectionInfo{
				Name:                  q.Alias,
				Description:           q.Comment,
				Arguments:             args,
				Type:                  typeName,
				UniquenessConstraints: map[string]ndc.UniquenessConstraint{},
				ForeignKeys:           map[string]ndc.ForeignKeyConstraint{},
			})
		}
	}

	for pair := types.Objects.Oldest(); pair != nil; pair = pair.Next() {
		if _, exists := objects.Get(pair.Key); !exists {
			objects.Set(pair.Key, pair.Value)
		}
	}

	return resp, nil
}

// arguments describes collection arguments. Identifier arguments, which have no
// data type, are published as strings.
func arguments(collection string, args *orderedmap.OrderedMap[string, *parser.DataType], types *typedef.SchemaTypes) *orderedmap.OrderedMap[string, ndc.ArgumentInfo] {
	out := orderedmap.New[string, ndc.ArgumentInfo]()
	if args == nil {
		return out
	}

	for pair := args.Oldest(); pair != nil; pair = pair.Next() {
		dt := pair.Value
		if dt == nil {
			dt = parser.NewScalar(parser.String)
		}

		def := typedef.New(typedef.Namespace(collection, pair.Key), dt)
		types.Add(def)

		out.Set(pair.Key, ndc.ArgumentInfo{Type: def.SchemaType()})
	}

	return out
}
