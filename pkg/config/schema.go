package config

import (
	"bytes"
	"encoding/json"
	"reflect"
	"sync"

	"github.com/invopop/jsonschema"
	"github.com/pkg/errors"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Ordered maps marshal as plain objects, so their schema is an object whose
// values follow the map's value type.
var orderedMapValues = map[reflect.Type]*jsonschema.Schema{
	reflect.TypeOf(orderedmap.OrderedMap[string, TableFile]{}):  {Ref: "#/$defs/TableFile"},
	reflect.TypeOf(orderedmap.OrderedMap[string, QueryFile]{}):  {Ref: "#/$defs/QueryFile"},
	reflect.TypeOf(orderedmap.OrderedMap[string, ColumnFile]{}): {Ref: "#/$defs/ColumnFile"},
	reflect.TypeOf(orderedmap.OrderedMap[string, string]{}):     {Type: "string"},
}

func orderedMapSchema(t reflect.Type) *jsonschema.Schema {
	if values, ok := orderedMapValues[t]; ok {
		return &jsonschema.Schema{Type: "object", AdditionalProperties: values}
	}
	return nil
}

var jsonSchema = sync.OnceValue(func() []byte {
	root := &jsonschema.Reflector{Anonymous: true, ExpandedStruct: true, Mapper: orderedMapSchema}
	defs := &jsonschema.Reflector{Anonymous: true, Mapper: orderedMapSchema}

	s := root.Reflect(&File{})
	s.Title = "ClickHouse connector configuration"
	s.Description = "Tables and native queries exposed by the ClickHouse data connector. " +
		"Keys of the tables and queries objects are aliases, the names clients see."
	if s.Definitions == nil {
		s.Definitions = jsonschema.Definitions{}
	}

	// Map values are only reachable through the mapper, so their definitions are
	// reflected on their own.
	for _, v := range []any{&TableFile{}, &QueryFile{}, ColumnFile{}} {
		for name, def := range defs.Reflect(v).Definitions {
			s.Definitions[name] = def
		}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		panic(errors.Wrap(err, "failed to marshal configuration schema"))
	}

	return buf.Bytes()
})

// JSONSchema returns the JSON schema describing the configuration document. It is
// reflected from File and the types it contains.
func JSONSchema() []byte {
	return bytes.Clone(jsonSchema())
}

// JSONSchema describes the two accepted column forms.
func (ColumnFile) JSONSchema() *jsonschema.Schema {
	props := jsonschema.NewProperties()
	props.Set("name", &jsonschema.Schema{Type: "string", Description: "Physical column name."})
	props.Set("type", &jsonschema.Schema{Type: "string", Description: "ClickHouse type."})
	props.Set("comment", &jsonschema.Schema{Type: "string"})

	return &jsonschema.Schema{
		OneOf: []*jsonschema.Schema{
			{Type: "string", Description: "ClickHouse type. The physical column name equals the alias."},
			{
				Type:                 "object",
				Properties:           props,
				Required:             []string{"name", "type"},
				AdditionalProperties: jsonschema.FalseSchema,
			},
		},
	}
}
