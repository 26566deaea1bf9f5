package parser

import "strings"

type (
	// ParameterizedQuery is SQL text split into literal fragments and typed parameter
	// holes, in source order. Adjacent literal text is always merged into a single
	// fragment.
	ParameterizedQuery struct {
		Elements []*QueryElement
		// Terminator holds the consumed trailing semicolon (and surrounding
		// whitespace) if the query had one.
		Terminator string
	}

	// QueryElement is either a literal fragment or a parameter hole.
	QueryElement struct {
		Text      *string
		Parameter *Parameter
	}

	// Parameter is a {name: Type} or {name: Identifier} hole.
	Parameter struct {
		Name Identifier
		Type ParameterType
	}

	// ParameterType is either a ClickHouse data type or the Identifier sentinel,
	// which means the hole is substituted as a table or column name.
	ParameterType struct {
		Identifier bool
		DataType   *DataType
	}
)

type (
	queryGrammar struct {
		Elements   []*queryElement `parser:"@@*"`
		Terminator *string         `parser:"@Terminator?"`
	}

	queryElement struct {
		Parameter *queryParameter `parser:"  @@"`
		Text      *string         `parser:"| @(Text | String | QuotedIdent | BacktickIdent | Comment)"`
	}

	queryParameter struct {
		Name Identifier          `parser:"'{' @(Ident | QuotedIdent | BacktickIdent) ':'"`
		Type *queryParameterType `parser:"@@ '}'"`
	}

	queryParameterType struct {
		Identifier bool      `parser:"  @'Identifier'"`
		DataType   *DataType `parser:"| @@"`
	}
)

func (g *queryGrammar) build() *ParameterizedQuery {
	q := &ParameterizedQuery{}
	if g.Terminator != nil {
		q.Terminator = *g.Terminator
	}

	var text strings.Builder
	flush := func() {
		if text.Len() == 0 {
			return
		}

		s := text.String()
		q.Elements = append(q.Elements, &QueryElement{Text: &s})
		text.Reset()
	}

	for _, e := range g.Elements {
		if e.Text != nil {
			text.WriteString(*e.Text)
			continue
		}

		flush()
		q.Elements = append(q.Elements, &QueryElement{
			Parameter: &Parameter{
				Name: e.Parameter.Name,
				Type: ParameterType{
					Identifier: e.Parameter.Type.Identifier,
					DataType:   e.Parameter.Type.DataType,
				},
			},
		})
	}
	flush()

	return q
}

// Parameters returns the parameter holes in the order they appear. A name that
// appears more than once is returned once per occurrence.
func (q *ParameterizedQuery) Parameters() []*Parameter {
	var params []*Parameter
	for _, e := range q.Elements {
		if e.Parameter != nil {
			params = append(params, e.Parameter)
		}
	}

	return params
}

// Body renders the query without the consumed terminator, suitable for embedding
// as a subquery.
func (q *ParameterizedQuery) Body() string {
	var b strings.Builder
	for _, e := range q.Elements {
		b.WriteString(e.String())
	}

	return b.String()
}

// String renders the query exactly as it was parsed, including any terminator.
func (q *ParameterizedQuery) String() string {
	return q.Body() + q.Terminator
}

func (e *QueryElement) String() string {
	if e.Text != nil {
		return *e.Text
	}

	return e.Parameter.String()
}

func (p *Parameter) String() string {
	return "{" + p.Name.String() + ": " + p.Type.String() + "}"
}

func (t ParameterType) String() string {
	if t.Identifier {
		return "Identifier"
	}

	return t.DataType.String()
}
