package config_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	. "github.com/pseudomuto/ndc-clickhouse/pkg/config"
	"github.com/pseudomuto/ndc-clickhouse/pkg/consts"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Parallel()

	cfg, err := Load("testdata/chinook", ConnectionConfig{URL: "http://localhost:8123"})
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8123", cfg.Connection.URL)

	t.Run("tables", func(t *testing.T) {
		t.Parallel()

		album, ok := cfg.Table("Album")
		require.True(t, ok)
		require.Equal(t, "chinook", album.Schema)
		require.Equal(t, "Album", album.Name)
		require.Equal(t, "Albums by artist", *album.Comment)
		require.Equal(t, []string{"AlbumId"}, album.PrimaryKey.Columns)

		view, ok := cfg.Table("ArtistByName")
		require.True(t, ok)
		require.Equal(t, "artist_by_name", view.Name)
		arg, ok := view.Arguments.Get("ArtistName")
		require.True(t, ok)
		require.Equal(t, "String", arg.String())
	})

	t.Run("column aliases", func(t *testing.T) {
		t.Parallel()

		name, def, err := cfg.ResolveReturnType(ReturnTypeRef{Kind: ReturnTypeTableReference, Name: "ArtistByName"})
		require.NoError(t, err)
		require.Equal(t, "Artist", name)

		col, ok := def.Columns.Get("DisplayName")
		require.True(t, ok)
		require.Equal(t, "Name", col.Name)
		require.Equal(t, "Nullable(String)", col.Type.String())
		require.Equal(t, "Artist name", *col.Comment)

		col, ok = def.Columns.Get("ArtistId")
		require.True(t, ok)
		require.Equal(t, "ArtistId", col.Name)
	})

	t.Run("queries", func(t *testing.T) {
		t.Parallel()

		q, ok := cfg.Query("AlbumsByArtist")
		require.True(t, ok)
		require.Equal(t, ExposedAsCollection, q.ExposedAs)
		require.Len(t, q.Query.Parameters(), 1)
		require.Equal(t, "ArtistId", q.Query.Parameters()[0].Name.Value)

		name, _, err := cfg.ResolveReturnType(q.ReturnType)
		require.NoError(t, err)
		require.Equal(t, "Album", name)

		q, ok = cfg.Query("ArtistNames")
		require.True(t, ok)
		require.Equal(t, ExposedAsProcedure, q.ExposedAs)

		name, def, err := cfg.ResolveReturnType(q.ReturnType)
		require.NoError(t, err)
		require.Equal(t, "ArtistNames", name)
		require.Equal(t, 1, def.Columns.Len())
	})
}

func TestLoad_YAML(t *testing.T) {
	t.Parallel()

	cfg, err := Load("testdata/yaml", ConnectionConfig{})
	require.NoError(t, err)

	var tables []string
	for pair := cfg.Tables.Oldest(); pair != nil; pair = pair.Next() {
		tables = append(tables, pair.Key)
	}
	require.Equal(t, []string{"Zebra", "Aardvark"}, tables)

	_, def, err := cfg.ResolveReturnType(ReturnTypeRef{Kind: ReturnTypeTableReference, Name: "Zebra"})
	require.NoError(t, err)

	var columns []string
	for pair := def.Columns.Oldest(); pair != nil; pair = pair.Next() {
		columns = append(columns, pair.Key)
	}
	require.Equal(t, []string{"z", "a", "m"}, columns)

	m, _ := def.Columns.Get("m")
	require.Equal(t, "Mixed Case", m.Name)
	require.Equal(t, "Nullable(DateTime64(9, 'UTC'))", m.Type.String())

	q, _ := cfg.Query("ArtistNames")
	name, _, err := cfg.ResolveReturnType(q.ReturnType)
	require.NoError(t, err)
	require.Equal(t, "Named", name)
}

func TestBuild_Errors(t *testing.T) {
	t.Parallel()

	doc := `{
		"tables": {
			"Bad": {
				"name": "bad",
				"schema": "default",
				"arguments": {"x": "Strang"},
				"primary_key": {"name": "pk", "columns": ["missing"]},
				"return_type": {"kind": "definition", "columns": {"a": "Int32", "b": "Nullable(String"}}
			},
			"Dangling": {
				"name": "dangling",
				"schema": "default",
				"return_type": {"kind": "table_reference", "table_name": "Nope"}
			},
			"Loop": {
				"name": "loop",
				"schema": "default",
				"return_type": {"kind": "table_reference", "table_name": "Loop"}
			}
		},
		"queries": {
			"Bad": {"exposed_as": "collection", "file": "x.sql", "return_type": {"kind": "table_reference", "table_name": "Bad"}},
			"Weird": {"exposed_as": "function", "file": "missing.sql", "return_type": {"kind": "table_reference", "table_name": "Bad"}}
		}
	}`

	f, err := ParseFile(strings.NewReader(doc))
	require.NoError(t, err)

	_, err = Build(f, t.TempDir(), ConnectionConfig{})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	msg := err.Error()
	require.Contains(t, msg, `table "Bad" argument "x"`)
	require.Contains(t, msg, `table "Bad" column "b"`)
	require.Contains(t, msg, `primary key column "missing"`)
	require.Contains(t, msg, `unknown table "Nope"`)
	require.Contains(t, msg, `reference cycle`)
	require.Contains(t, msg, `query "Bad": alias is already used by a table`)
	require.Contains(t, msg, `query "Weird": exposed_as must be`)
	require.Contains(t, msg, `failed to read file: missing.sql`)
}

func TestParseFile_Errors(t *testing.T) {
	t.Parallel()

	_, err := ParseFile(strings.NewReader(`{"tables": [}`))
	require.ErrorContains(t, err, "failed to unmarshal configuration")

	_, err = ParseFile(strings.NewReader(`{"tables": {}, "bogus": true}`))
	require.ErrorContains(t, err, "failed to unmarshal configuration")

	_, err = ParseYAML(strings.NewReader("tables: [\n"))
	require.ErrorContains(t, err, "failed to unmarshal configuration")
}

func TestReadFile_Missing(t *testing.T) {
	t.Parallel()

	f, err := ReadFile(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, 0, f.Tables.Len())
	require.Equal(t, 0, f.Queries.Len())
}

func TestWriteFile(t *testing.T) {
	t.Parallel()

	src, err := ReadFile("testdata/chinook")
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, WriteFile(dir, src))

	schema, err := os.ReadFile(filepath.Join(dir, consts.SchemaFileName))
	require.NoError(t, err)
	require.Equal(t, JSONSchema(), schema)

	out, err := ReadFile(dir)
	require.NoError(t, err)

	expected, err := os.ReadFile("testdata/chinook/configuration.json")
	require.NoError(t, err)
	actual, err := os.ReadFile(filepath.Join(dir, consts.ConfigFileName))
	require.NoError(t, err)
	require.JSONEq(t, string(expected), string(actual))

	require.Equal(t, src.Tables.Len(), out.Tables.Len())
	artist, ok := out.Tables.Get("Artist")
	require.True(t, ok)
	col, ok := artist.ReturnType.Columns.Get("DisplayName")
	require.True(t, ok)
	require.Equal(t, "Name", col.Name)
}

func TestJSONSchema(t *testing.T) {
	t.Parallel()

	type object struct {
		Required   []string                   `json:"required"`
		Properties map[string]json.RawMessage `json:"properties"`
		OneOf      []json.RawMessage          `json:"oneOf"`
	}

	var schema struct {
		object
		Defs map[string]object `json:"$defs"`
	}
	require.NoError(t, json.Unmarshal(JSONSchema(), &schema))

	require.ElementsMatch(t, []string{"tables", "queries"}, schema.Required)
	require.JSONEq(t,
		`{"type": "object", "additionalProperties": {"$ref": "#/$defs/TableFile"}}`,
		string(schema.Properties["tables"]),
	)
	require.JSONEq(t,
		`{"type": "object", "additionalProperties": {"$ref": "#/$defs/QueryFile"}}`,
		string(schema.Properties["queries"]),
	)

	t.Run("every field is described", func(t *testing.T) {
		t.Parallel()

		for name, v := range map[string]any{
			"TableFile":  TableFile{},
			"QueryFile":  QueryFile{},
			"PrimaryKey": PrimaryKey{},
			"ReturnType": ReturnType{},
		} {
			def, ok := schema.Defs[name]
			require.True(t, ok, name)

			typ := reflect.TypeOf(v)
			for i := range typ.NumField() {
				field, _, _ := strings.Cut(typ.Field(i).Tag.Get("json"), ",")
				require.Contains(t, def.Properties, field, "%s.%s", name, typ.Field(i).Name)
			}
		}
	})

	t.Run("required fields", func(t *testing.T) {
		t.Parallel()

		require.ElementsMatch(t, []string{"name", "schema", "return_type"}, schema.Defs["TableFile"].Required)
		require.ElementsMatch(t, []string{"exposed_as", "file", "return_type"}, schema.Defs["QueryFile"].Required)
		require.ElementsMatch(t, []string{"kind"}, schema.Defs["ReturnType"].Required)
	})

	t.Run("enums", func(t *testing.T) {
		t.Parallel()

		var exposedAs, kind struct {
			Enum []string `json:"enum"`
		}
		require.NoError(t, json.Unmarshal(schema.Defs["QueryFile"].Properties["exposed_as"], &exposedAs))
		require.Equal(t, []string{"collection", "procedure"}, exposedAs.Enum)

		require.NoError(t, json.Unmarshal(schema.Defs["ReturnType"].Properties["kind"], &kind))
		require.Equal(t, []string{"definition", "table_reference", "query_reference"}, kind.Enum)
	})

	t.Run("column forms", func(t *testing.T) {
		t.Parallel()

		require.Len(t, schema.Defs["ColumnFile"].OneOf, 2)
		require.JSONEq(t,
			`{"type": "object", "additionalProperties": {"$ref": "#/$defs/ColumnFile"}}`,
			string(schema.Defs["ReturnType"].Properties["columns"]),
		)
	})
}
