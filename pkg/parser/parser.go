package parser

import (
	"fmt"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/pkg/errors"
)

// typeRules are shared by the data type lexer and the parameter state of the
// parameterized query lexer, so both grammars see identical token names.
var typeRules = []lexer.SimpleRule{
	{Name: "String", Pattern: `'(?:[^'\\]|\\.|'')*'`},
	{Name: "QuotedIdent", Pattern: `"(?:[^"\\]|\\.)*"`},
	{Name: "BacktickIdent", Pattern: "`(?:[^`\\\\]|\\\\.)*`"},
	{Name: "Number", Pattern: `-?\d+(?:\.\d+)?(?:[eE][+-]?\d+)?`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Punct", Pattern: `[(),=:]`},
	{Name: "Whitespace", Pattern: `\s+`},
}

var (
	// dataTypeLexer tokenizes ClickHouse type strings as they appear in system.columns.
	dataTypeLexer = lexer.MustSimple(typeRules)

	// queryLexer splits SQL text into literal fragments and {name: Type} holes. Braces
	// inside strings, quoted identifiers and comments never open a parameter.
	queryLexer = lexer.MustStateful(queryLexerRules())

	dataTypeParser = participle.MustBuild[DataType](
		participle.Lexer(dataTypeLexer),
		participle.Elide("Whitespace"),
		participle.UseLookahead(4),
	)

	queryParser = participle.MustBuild[queryGrammar](
		participle.Lexer(queryLexer),
		participle.Elide("Whitespace"),
		participle.UseLookahead(4),
	)
)

func queryLexerRules() lexer.Rules {
	param := []lexer.Rule{
		{Name: "ParamClose", Pattern: `\}`, Action: lexer.Pop()},
	}
	for _, r := range typeRules {
		param = append(param, lexer.Rule{Name: r.Name, Pattern: r.Pattern})
	}

	return lexer.Rules{
		"Root": {
			{Name: "String", Pattern: `'(?:[^'\\]|\\.|'')*'`},
			{Name: "QuotedIdent", Pattern: `"(?:[^"\\]|\\.)*"`},
			{Name: "BacktickIdent", Pattern: "`(?:[^`\\\\]|\\\\.)*`"},
			{Name: "Comment", Pattern: `--[^\n]*|/\*(?s:.*?)\*/`},
			{Name: "ParamOpen", Pattern: `\{`, Action: lexer.Push("Param")},
			{Name: "Terminator", Pattern: `\s*;\s*$`},
			// Whitespace is its own fragment so Terminator can claim the run
			// before a trailing semicolon.
			{Name: "Text", Pattern: `[^'"\x60{;\s/-]+|\s+|[;/-]`},
		},
		"Param": param,
	}
}

// ParseError describes the first position at which a type string or parameterized
// query failed to parse.
type ParseError struct {
	Input   string
	Line    int
	Column  int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%d:%d: %s (input: %q)", e.Line, e.Column, e.Message, e.Input)
}

func newParseError(input string, err error) error {
	var perr participle.Error
	if errors.As(err, &perr) {
		pos := perr.Position()
		return &ParseError{
			Input:   input,
			Line:    pos.Line,
			Column:  pos.Column,
			Message: perr.Message(),
		}
	}

	return &ParseError{Input: input, Line: 1, Column: 1, Message: err.Error()}
}

// ParseDataType parses a ClickHouse data type string such as
// "Nullable(DateTime64(9, 'UTC'))" into a DataType tree.
//
// Example:
//
//	dt, err := parser.ParseDataType("Array(Nullable(String))")
//	if err != nil {
//		return err
//	}
//
//	fmt.Println(dt.Array.Type.Nullable.Type) // String
func ParseDataType(input string) (*DataType, error) {
	dt, err := dataTypeParser.ParseString("", input)
	if err != nil {
		return nil, newParseError(input, err)
	}

	return dt, nil
}

// MustParseDataType is like ParseDataType but panics on error. It is meant for
// package level variables and tests.
func MustParseDataType(input string) *DataType {
	dt, err := ParseDataType(input)
	if err != nil {
		panic(err)
	}

	return dt
}

// ParseParameterizedQuery splits a SQL string into literal fragments and typed
// parameter holes.
//
// Example:
//
//	q, err := parser.ParseParameterizedQuery(`SELECT * FROM t WHERE id = {id: UInt32};`)
//	if err != nil {
//		return err
//	}
//
//	for _, p := range q.Parameters() {
//		fmt.Println(p.Name, p.Type) // id UInt32
//	}
func ParseParameterizedQuery(input string) (*ParameterizedQuery, error) {
	g, err := queryParser.ParseString("", input)
	if err != nil {
		return nil, newParseError(input, err)
	}

	return g.build(), nil
}
