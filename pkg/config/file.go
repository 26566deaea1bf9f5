package config

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/pseudomuto/ndc-clickhouse/pkg/consts"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

type (
	// ReturnTypeKind discriminates ReturnType values.
	ReturnTypeKind string

	// ExposedAs controls whether a native query is published as a collection or a
	// procedure.
	ExposedAs string
)

const (
	// ReturnTypeDefinition declares the columns inline.
	ReturnTypeDefinition ReturnTypeKind = "definition"
	// ReturnTypeTableReference reuses the row type of another table.
	ReturnTypeTableReference ReturnTypeKind = "table_reference"
	// ReturnTypeQueryReference reuses the row type of another native query.
	ReturnTypeQueryReference ReturnTypeKind = "query_reference"

	ExposedAsCollection ExposedAs = "collection"
	ExposedAsProcedure  ExposedAs = "procedure"
)

type (
	// File is the configuration document as stored on disk. Map keys are aliases:
	// the names exposed to clients, which survive regeneration.
	File struct {
		Schema  string                                    `json:"$schema,omitempty"`
		Tables  *orderedmap.OrderedMap[string, TableFile] `json:"tables"`
		Queries *orderedmap.OrderedMap[string, QueryFile] `json:"queries"`
	}

	// TableFile describes a physical table or view.
	TableFile struct {
		Name       string                                 `json:"name" jsonschema_description:"Physical table name."`
		Schema     string                                 `json:"schema" jsonschema_description:"Physical database name."`
		Comment    *string                                `json:"comment,omitempty"`
		PrimaryKey *PrimaryKey                            `json:"primary_key,omitempty"`
		Arguments  *orderedmap.OrderedMap[string, string] `json:"arguments,omitempty" jsonschema_description:"Parameterized view arguments, mapping argument names to ClickHouse types."`
		ReturnType ReturnType                             `json:"return_type"`
	}

	// QueryFile describes a native query whose SQL lives in a separate file.
	QueryFile struct {
		ExposedAs  ExposedAs  `json:"exposed_as" jsonschema:"enum=collection,enum=procedure"`
		Comment    *string    `json:"comment,omitempty"`
		File       string     `json:"file" jsonschema_description:"Path to the SQL file, relative to the configuration directory. Parameters are written as {name: Type}."`
		ReturnType ReturnType `json:"return_type"`
	}

	// PrimaryKey lists the columns (by alias) that uniquely identify a row.
	PrimaryKey struct {
		Name    string   `json:"name"`
		Columns []string `json:"columns"`
	}

	// ReturnType is either an inline column definition or a reference, by alias, to
	// the row type of a table or query.
	ReturnType struct {
		Kind      ReturnTypeKind                             `json:"kind" jsonschema:"enum=definition,enum=table_reference,enum=query_reference"`
		Columns   *orderedmap.OrderedMap[string, ColumnFile] `json:"columns,omitempty"`
		TableName string                                     `json:"table_name,omitempty"`
		QueryName string                                     `json:"query_name,omitempty"`
	}

	// ColumnFile is a column definition. In the document it is either a bare type
	// string, in which case the physical name equals the alias, or an object with an
	// explicit physical name.
	ColumnFile struct {
		Name    string
		Type    string
		Comment *string
	}
)

type columnFileJSON struct {
	Name    string  `json:"name"`
	Type    string  `json:"type"`
	Comment *string `json:"comment,omitempty"`
}

// MarshalJSON implements json.Marshaler. Columns without a physical name or comment
// are written in the short form.
func (c ColumnFile) MarshalJSON() ([]byte, error) {
	if c.Name == "" && c.Comment == nil {
		return json.Marshal(c.Type)
	}

	return json.Marshal(columnFileJSON(c))
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *ColumnFile) UnmarshalJSON(data []byte) error {
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte(`"`)) {
		c.Name = ""
		c.Comment = nil
		return json.Unmarshal(data, &c.Type)
	}

	var raw columnFileJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*c = ColumnFile(raw)
	return nil
}

// NewFile returns an empty configuration document pointing at the schema file.
func NewFile() *File {
	return &File{
		Schema:  consts.SchemaFileName,
		Tables:  orderedmap.New[string, TableFile](),
		Queries: orderedmap.New[string, QueryFile](),
	}
}

// ParseFile decodes a JSON configuration document.
//
// Example:
//
//	f, err := config.ParseFile(strings.NewReader(`{"tables": {}, "queries": {}}`))
//	if err != nil {
//		return err
//	}
func ParseFile(r io.Reader) (*File, error) {
	f := NewFile()
	f.Schema = ""

	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(f); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal configuration")
	}

	if f.Tables == nil {
		f.Tables = orderedmap.New[string, TableFile]()
	}
	if f.Queries == nil {
		f.Queries = orderedmap.New[string, QueryFile]()
	}

	return f, nil
}

// ReadFile reads the configuration document from dir. configuration.json is
// preferred; configuration.yaml is used when it is the only one present. A missing
// document yields an empty File so that init can run against a fresh directory.
func ReadFile(dir string) (*File, error) {
	path := filepath.Join(dir, consts.ConfigFileName)
	data, err := os.ReadFile(path)
	if err == nil {
		return ParseFile(bytes.NewReader(data))
	}
	if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "failed to read file: %s", path)
	}

	path = filepath.Join(dir, consts.ConfigYAMLFileName)
	data, err = os.ReadFile(path)
	if err == nil {
		return ParseYAML(bytes.NewReader(data))
	}
	if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "failed to read file: %s", path)
	}

	return NewFile(), nil
}

// WriteFile writes f as indented JSON to dir along with the JSON schema describing
// it.
func WriteFile(dir string, f *File) error {
	if err := os.MkdirAll(dir, consts.ModeDir); err != nil {
		return errors.Wrapf(err, "failed to create directory: %s", dir)
	}

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal configuration")
	}

	path := filepath.Join(dir, consts.ConfigFileName)
	if err := os.WriteFile(path, append(data, '\n'), consts.ModeFile); err != nil {
		return errors.Wrapf(err, "failed to write file: %s", path)
	}

	path = filepath.Join(dir, consts.SchemaFileName)
	if err := os.WriteFile(path, JSONSchema(), consts.ModeFile); err != nil {
		return errors.Wrapf(err, "failed to write file: %s", path)
	}

	return nil
}
