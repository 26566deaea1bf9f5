package typedef

import (
	"github.com/pseudomuto/ndc-clickhouse/pkg/ndc"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// SchemaTypes accumulates the scalar and object types referenced by a set of type
// definitions, in first-seen order.
type SchemaTypes struct {
	Scalars *orderedmap.OrderedMap[string, ndc.ScalarType]
	Objects *orderedmap.OrderedMap[string, ndc.ObjectType]
}

// NewSchemaTypes returns an empty SchemaTypes.
func NewSchemaTypes() *SchemaTypes {
	return &SchemaTypes{
		Scalars: orderedmap.New[string, ndc.ScalarType](),
		Objects: orderedmap.New[string, ndc.ObjectType](),
	}
}

// Add registers def and every type it references.
func (s *SchemaTypes) Add(def TypeDefinition) {
	switch d := def.(type) {
	case *Scalar:
		s.addScalar(d)
	case *Nullable:
		s.Add(d.Inner)
	case *Array:
		s.Add(d.Element)
	case *Object:
		if _, exists := s.Objects.Get(d.Name); exists {
			return
		}

		fields := orderedmap.New[string, ndc.ObjectField]()
		for pair := d.Fields.Oldest(); pair != nil; pair = pair.Next() {
			fields.Set(pair.Key, ndc.ObjectField{Type: pair.Value.SchemaType()})
		}
		s.Objects.Set(d.Name, ndc.ObjectType{Fields: fields})

		for pair := d.Fields.Oldest(); pair != nil; pair = pair.Next() {
			s.Add(pair.Value)
		}
	case *Unknown:
		if _, exists := s.Scalars.Get(d.Name); exists {
			return
		}

		s.Scalars.Set(d.Name, ndc.ScalarType{
			Representation:      &ndc.TypeRepresentation{Type: ndc.RepresentationJSON},
			AggregateFunctions:  orderedmap.New[string, ndc.AggregateFunctionDefinition](),
			ComparisonOperators: orderedmap.New[string, ndc.ComparisonOperatorDefinition](),
		})
	}
}

func (s *SchemaTypes) addScalar(sc *Scalar) {
	if _, exists := s.Scalars.Get(sc.Name()); exists {
		return
	}

	s.Scalars.Set(sc.Name(), sc.Definition())

	for _, fn := range sc.Aggregates() {
		s.Add(New("", fn.ResultType))
	}
}
