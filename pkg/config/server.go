package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/pseudomuto/ndc-clickhouse/pkg/parser"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

type (
	// ConnectionConfig holds the ClickHouse HTTP endpoint and credentials.
	ConnectionConfig struct {
		URL      string
		Username string
		Password string
	}

	// ServerConfig is the validated, immutable configuration used by the planner
	// and the connector. All maps are keyed by alias.
	ServerConfig struct {
		Connection ConnectionConfig
		Tables     *orderedmap.OrderedMap[string, *TableConfig]
		Queries    *orderedmap.OrderedMap[string, *QueryConfig]
		// TableTypes holds the inline row types, keyed by the alias of the table or
		// query that declared them.
		TableTypes *orderedmap.OrderedMap[string, *ObjectTypeDefinition]
	}

	// TableConfig describes a table or (parameterized) view exposed as a collection.
	TableConfig struct {
		Alias      string
		Name       string
		Schema     string
		Comment    *string
		PrimaryKey *PrimaryKey
		Arguments  *orderedmap.OrderedMap[string, *parser.DataType]
		ReturnType ReturnTypeRef
	}

	// QueryConfig describes a native query.
	QueryConfig struct {
		Alias      string
		ExposedAs  ExposedAs
		Comment    *string
		Query      *parser.ParameterizedQuery
		ReturnType ReturnTypeRef
	}

	// ReturnTypeRef points at the row type of a collection. References are resolved
	// on use, never at load.
	ReturnTypeRef struct {
		Kind ReturnTypeKind
		// Name is the alias of the table or query that owns the row type.
		Name string
	}

	// ObjectTypeDefinition is a row type.
	ObjectTypeDefinition struct {
		Comment *string
		Columns *orderedmap.OrderedMap[string, *ColumnDefinition]
	}

	// ColumnDefinition is a column of a row type.
	ColumnDefinition struct {
		Alias   string
		Name    string
		Type    *parser.DataType
		Comment *string
	}

	// ValidationError collects every problem found while building a ServerConfig.
	ValidationError struct {
		Problems []string
	}
)

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid configuration:\n  - %s", strings.Join(e.Problems, "\n  - "))
}

func (e *ValidationError) addf(format string, args ...any) {
	e.Problems = append(e.Problems, fmt.Sprintf(format, args...))
}

// Load reads the configuration document from dir and builds a ServerConfig from it.
//
// Example:
//
//	cfg, err := config.Load("/etc/connector", config.ConnectionConfig{
//		URL:      os.Getenv("CLICKHOUSE_URL"),
//		Username: os.Getenv("CLICKHOUSE_USERNAME"),
//		Password: os.Getenv("CLICKHOUSE_PASSWORD"),
//	})
//	if err != nil {
//		return err
//	}
func Load(dir string, conn ConnectionConfig) (*ServerConfig, error) {
	f, err := ReadFile(dir)
	if err != nil {
		return nil, err
	}

	return Build(f, dir, conn)
}

// Build validates f and returns the corresponding ServerConfig. Every type string
// and native query is parsed; all failures are reported together in a
// *ValidationError. Native query files are resolved relative to dir.
func Build(f *File, dir string, conn ConnectionConfig) (*ServerConfig, error) {
	cfg := &ServerConfig{
		Connection: conn,
		Tables:     orderedmap.New[string, *TableConfig](),
		Queries:    orderedmap.New[string, *QueryConfig](),
		TableTypes: orderedmap.New[string, *ObjectTypeDefinition](),
	}

	verr := &ValidationError{}

	for pair := f.Tables.Oldest(); pair != nil; pair = pair.Next() {
		alias, table := pair.Key, pair.Value

		tc := &TableConfig{
			Alias:      alias,
			Name:       table.Name,
			Schema:     table.Schema,
			Comment:    table.Comment,
			PrimaryKey: table.PrimaryKey,
			Arguments:  orderedmap.New[string, *parser.DataType](),
		}

		if table.Arguments != nil {
			for arg := table.Arguments.Oldest(); arg != nil; arg = arg.Next() {
				dt, err := parser.ParseDataType(arg.Value)
				if err != nil {
					verr.addf("table %q argument %q: %v", alias, arg.Key, err)
					continue
				}
				tc.Arguments.Set(arg.Key, dt)
			}
		}

		tc.ReturnType = buildReturnType(cfg, verr, "table", alias, table.ReturnType)
		cfg.Tables.Set(alias, tc)
	}

	for pair := f.Queries.Oldest(); pair != nil; pair = pair.Next() {
		alias, query := pair.Key, pair.Value

		if _, exists := cfg.Tables.Get(alias); exists {
			verr.addf("query %q: alias is already used by a table", alias)
			continue
		}

		qc := &QueryConfig{
			Alias:     alias,
			ExposedAs: query.ExposedAs,
			Comment:   query.Comment,
		}

		switch query.ExposedAs {
		case ExposedAsCollection, ExposedAsProcedure:
		default:
			verr.addf("query %q: exposed_as must be %q or %q, got %q", alias, ExposedAsCollection, ExposedAsProcedure, query.ExposedAs)
		}

		path := query.File
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}

		sql, err := os.ReadFile(path)
		if err != nil {
			verr.addf("query %q: %v", alias, errors.Wrapf(err, "failed to read file: %s", query.File))
		} else if qc.Query, err = parser.ParseParameterizedQuery(string(sql)); err != nil {
			verr.addf("query %q: %v", alias, err)
		}

		qc.ReturnType = buildReturnType(cfg, verr, "query", alias, query.ReturnType)
		cfg.Queries.Set(alias, qc)
	}

	for pair := cfg.Tables.Oldest(); pair != nil; pair = pair.Next() {
		if _, _, err := cfg.ResolveReturnType(pair.Value.ReturnType); err != nil {
			verr.addf("table %q: %v", pair.Key, err)
		}
		if pk := pair.Value.PrimaryKey; pk != nil {
			if _, def, err := cfg.ResolveReturnType(pair.Value.ReturnType); err == nil {
				for _, col := range pk.Columns {
					if _, ok := def.Columns.Get(col); !ok {
						verr.addf("table %q: primary key column %q is not a column of the table", pair.Key, col)
					}
				}
			}
		}
	}

	for pair := cfg.Queries.Oldest(); pair != nil; pair = pair.Next() {
		if _, _, err := cfg.ResolveReturnType(pair.Value.ReturnType); err != nil {
			verr.addf("query %q: %v", pair.Key, err)
		}
	}

	if len(verr.Problems) > 0 {
		return nil, verr
	}

	return cfg, nil
}

func buildReturnType(cfg *ServerConfig, verr *ValidationError, kind, alias string, rt ReturnType) ReturnTypeRef {
	switch rt.Kind {
	case ReturnTypeDefinition:
		def := &ObjectTypeDefinition{Columns: orderedmap.New[string, *ColumnDefinition]()}
		if rt.Columns != nil {
			for col := rt.Columns.Oldest(); col != nil; col = col.Next() {
				dt, err := parser.ParseDataType(col.Value.Type)
				if err != nil {
					verr.addf("%s %q column %q: %v", kind, alias, col.Key, err)
					continue
				}

				name := col.Value.Name
				if name == "" {
					name = col.Key
				}

				def.Columns.Set(col.Key, &ColumnDefinition{
					Alias:   col.Key,
					Name:    name,
					Type:    dt,
					Comment: col.Value.Comment,
				})
			}
		}

		cfg.TableTypes.Set(alias, def)
		return ReturnTypeRef{Kind: ReturnTypeDefinition, Name: alias}
	case ReturnTypeTableReference:
		return ReturnTypeRef{Kind: ReturnTypeTableReference, Name: rt.TableName}
	case ReturnTypeQueryReference:
		return ReturnTypeRef{Kind: ReturnTypeQueryReference, Name: rt.QueryName}
	default:
		verr.addf("%s %q: unknown return type kind %q", kind, alias, rt.Kind)
		return ReturnTypeRef{Kind: rt.Kind}
	}
}

// Table returns the table exposed under alias.
func (c *ServerConfig) Table(alias string) (*TableConfig, bool) {
	return c.Tables.Get(alias)
}

// Query returns the native query exposed under alias.
func (c *ServerConfig) Query(alias string) (*QueryConfig, bool) {
	return c.Queries.Get(alias)
}

// ResolveReturnType follows table and query references until it reaches an inline
// definition, returning the name of the row type and its definition.
func (c *ServerConfig) ResolveReturnType(ref ReturnTypeRef) (string, *ObjectTypeDefinition, error) {
	seen := map[ReturnTypeRef]bool{}

	for {
		if seen[ref] {
			return "", nil, errors.Errorf("return type reference cycle at %s %q", ref.Kind, ref.Name)
		}
		seen[ref] = true

		switch ref.Kind {
		case ReturnTypeDefinition:
			def, ok := c.TableTypes.Get(ref.Name)
			if !ok {
				return "", nil, errors.Errorf("unknown table type %q", ref.Name)
			}
			return ref.Name, def, nil
		case ReturnTypeTableReference:
			t, ok := c.Tables.Get(ref.Name)
			if !ok {
				return "", nil, errors.Errorf("return type references unknown table %q", ref.Name)
			}
			ref = t.ReturnType
		case ReturnTypeQueryReference:
			q, ok := c.Queries.Get(ref.Name)
			if !ok {
				return "", nil, errors.Errorf("return type references unknown query %q", ref.Name)
			}
			ref = q.ReturnType
		default:
			return "", nil, errors.Errorf("unknown return type kind %q", ref.Kind)
		}
	}
}
