package config

import (
	"strconv"

	"github.com/pseudomuto/ndc-clickhouse/pkg/utils"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

type (
	// IntrospectedTable is a table or view as reported by the database.
	IntrospectedTable struct {
		Schema     string
		Name       string
		Comment    string
		PrimaryKey []string
		Columns    []IntrospectedColumn
		Arguments  []IntrospectedArgument
	}

	// IntrospectedColumn is a column as reported by system.columns.
	IntrospectedColumn struct {
		Name    string
		Type    string
		Comment string
	}

	// IntrospectedArgument is a {name: Type} parameter of a parameterized view.
	IntrospectedArgument struct {
		Name string
		Type string
	}
)

type tableKey struct {
	schema string
	name   string
}

// Regenerate produces a new configuration document from the introspected tables,
// keeping everything a user may have customized in prev:
//
//   - tables are re-identified by (schema, name) and keep their alias
//   - columns are re-identified by physical name and keep their alias
//   - tables whose return type is a reference keep that reference
//   - queries are copied unchanged
//
// Tables that no longer exist are dropped. New tables are aliased by name, falling
// back to schema_name when the name is taken.
func Regenerate(prev *File, tables []IntrospectedTable) *File {
	if prev == nil {
		prev = NewFile()
	}

	prevTables := make(map[tableKey]string, prev.Tables.Len())
	for pair := prev.Tables.Oldest(); pair != nil; pair = pair.Next() {
		prevTables[tableKey{schema: pair.Value.Schema, name: pair.Value.Name}] = pair.Key
	}

	used := make(map[string]bool)
	for pair := prev.Queries.Oldest(); pair != nil; pair = pair.Next() {
		used[pair.Key] = true
	}

	next := NewFile()
	for _, t := range tables {
		alias, existed := prevTables[tableKey{schema: t.Schema, name: t.Name}]

		var old TableFile
		if existed {
			old, _ = prev.Tables.Get(alias)
		}
		if !existed || used[alias] {
			alias = uniqueAlias(used, t.Schema, t.Name)
		}
		used[alias] = true

		next.Tables.Set(alias, regenerateTable(t, old, existed))
	}

	for pair := prev.Queries.Oldest(); pair != nil; pair = pair.Next() {
		next.Queries.Set(pair.Key, pair.Value)
	}

	return next
}

func regenerateTable(t IntrospectedTable, old TableFile, existed bool) TableFile {
	oldColumns := make(map[string]string)
	if existed && old.ReturnType.Kind == ReturnTypeDefinition && old.ReturnType.Columns != nil {
		for col := old.ReturnType.Columns.Oldest(); col != nil; col = col.Next() {
			name := col.Value.Name
			if name == "" {
				name = col.Key
			}
			oldColumns[name] = col.Key
		}
	}

	columns := orderedmap.New[string, ColumnFile]()
	aliases := make(map[string]string, len(t.Columns))
	for _, c := range t.Columns {
		alias, ok := oldColumns[c.Name]
		if !ok {
			alias = c.Name
		}
		aliases[c.Name] = alias

		col := ColumnFile{Type: c.Type}
		if alias != c.Name {
			col.Name = c.Name
		}
		if c.Comment != "" {
			col.Comment = utils.Ptr(c.Comment)
		}
		columns.Set(alias, col)
	}

	table := TableFile{
		Name:       t.Name,
		Schema:     t.Schema,
		Comment:    old.Comment,
		PrimaryKey: old.PrimaryKey,
		ReturnType: ReturnType{Kind: ReturnTypeDefinition, Columns: columns},
	}

	if t.Comment != "" {
		table.Comment = utils.Ptr(t.Comment)
	}

	if len(t.PrimaryKey) > 0 {
		pk := &PrimaryKey{Name: t.Name + "_pkey"}
		if old.PrimaryKey != nil {
			pk.Name = old.PrimaryKey.Name
		}
		for _, c := range t.PrimaryKey {
			pk.Columns = append(pk.Columns, aliases[c])
		}
		table.PrimaryKey = pk
	}

	if len(t.Arguments) > 0 {
		table.Arguments = orderedmap.New[string, string]()
		for _, a := range t.Arguments {
			table.Arguments.Set(a.Name, a.Type)
		}
	}

	if existed && old.ReturnType.Kind != ReturnTypeDefinition && old.ReturnType.Kind != "" {
		table.ReturnType = old.ReturnType
	}

	return table
}

func uniqueAlias(used map[string]bool, schema, name string) string {
	if !used[name] {
		return name
	}

	alias := schema + "_" + name
	for i := 2; used[alias]; i++ {
		alias = schema + "_" + name + "_" + strconv.Itoa(i)
	}

	return alias
}
