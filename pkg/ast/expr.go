package ast

import "github.com/pseudomuto/ndc-clickhouse/pkg/parser"

// Expr is a SQL expression. It is one of *Ident, *CompoundIdent, *BinaryOp,
// *UnaryOp, *Nested, *Literal, *Parameter, *Placeholder, *Function, *Lambda,
// *List, or *Wildcard.
type Expr interface {
	expr()
}

// Ident is an identifier. Quoted identifiers are printed in double quotes, bare
// ones as-is.
type Ident struct {
	Value  string
	Quoted bool
}

// ObjectName is a possibly schema-qualified name.
type ObjectName []*Ident

type (
	// CompoundIdent is a dotted reference such as _origin."AlbumId".
	CompoundIdent struct {
		Parts []*Ident
	}

	// BinaryOp is left OP right.
	BinaryOp struct {
		Left  Expr
		Op    BinaryOperator
		Right Expr
	}

	// UnaryOp is a prefix or postfix operator applied to Expr.
	UnaryOp struct {
		Op   UnaryOperator
		Expr Expr
	}

	// Nested is a parenthesized expression.
	Nested struct {
		Expr Expr
	}

	// Literal embeds a constant that is never turned into a query parameter.
	Literal struct {
		Value Value
	}

	// Parameter is a value that is printed inline for explain output and becomes
	// a {pN:Type} placeholder when parameters are extracted.
	Parameter struct {
		Value Value
		Type  *parser.DataType
	}

	// Placeholder is an extracted parameter reference, {Name:Type}.
	Placeholder struct {
		Name string
		Type *parser.DataType
	}

	// Function is a function call.
	Function struct {
		Name     ObjectName
		Args     []*FunctionArg
		Over     *WindowSpec
		Distinct bool
	}

	// FunctionArg is an argument to a function or table function, optionally named
	// (name=expr) and aliased (expr AS alias).
	FunctionArg struct {
		Name  *Ident
		Expr  Expr
		Alias *Ident
	}

	// WindowSpec is the OVER clause of a window function.
	WindowSpec struct {
		PartitionBy []Expr
		OrderBy     []*OrderByExpr
	}

	// Lambda is (params) -> body.
	Lambda struct {
		Params []*Ident
		Body   Expr
	}

	// List is an inline parenthesized list of expressions.
	List struct {
		Exprs []Expr
	}

	// Wildcard is *.
	Wildcard struct{}
)

// BinaryOperator enumerates binary operators.
type BinaryOperator string

const (
	OpEq       BinaryOperator = "="
	OpNotEq    BinaryOperator = "!="
	OpGt       BinaryOperator = ">"
	OpLt       BinaryOperator = "<"
	OpGtEq     BinaryOperator = ">="
	OpLtEq     BinaryOperator = "<="
	OpAnd      BinaryOperator = "AND"
	OpOr       BinaryOperator = "OR"
	OpLike     BinaryOperator = "LIKE"
	OpNotLike  BinaryOperator = "NOT LIKE"
	OpILike    BinaryOperator = "ILIKE"
	OpNotILike BinaryOperator = "NOT ILIKE"
	OpIn       BinaryOperator = "IN"
	OpNotIn    BinaryOperator = "NOT IN"
)

// UnaryOperator enumerates unary operators.
type UnaryOperator int

const (
	OpNot UnaryOperator = iota
	OpIsNull
	OpIsNotNull
)

func (*Ident) expr()         {}
func (*CompoundIdent) expr() {}
func (*BinaryOp) expr()      {}
func (*UnaryOp) expr()       {}
func (*Nested) expr()        {}
func (*Literal) expr()       {}
func (*Parameter) expr()     {}
func (*Placeholder) expr()   {}
func (*Function) expr()      {}
func (*Lambda) expr()        {}
func (*List) expr()          {}
func (*Wildcard) expr()      {}

// Bare returns an unquoted identifier. It is used for synthetic names such as
// _origin and _row.
func Bare(name string) *Ident {
	return &Ident{Value: name}
}

// Quoted returns a double-quoted identifier. It is used for every name derived
// from user input or configuration.
func Quoted(name string) *Ident {
	return &Ident{Value: name, Quoted: true}
}

// Compound joins parts into a dotted identifier.
func Compound(parts ...*Ident) *CompoundIdent {
	return &CompoundIdent{Parts: parts}
}

// Name builds an ObjectName from parts.
func Name(parts ...*Ident) ObjectName {
	return ObjectName(parts)
}

// Call returns a function call with positional arguments.
func Call(name string, args ...Expr) *Function {
	fn := &Function{Name: Name(Bare(name))}
	for _, a := range args {
		fn.Args = append(fn.Args, &FunctionArg{Expr: a})
	}

	return fn
}

// Eq returns left = right.
func Eq(left, right Expr) *BinaryOp {
	return &BinaryOp{Left: left, Op: OpEq, Right: right}
}

// And folds exprs with AND. It returns nil for no expressions and the expression
// itself for one.
func And(exprs ...Expr) Expr {
	return fold(OpAnd, exprs)
}

// Or folds exprs with OR, like And.
func Or(exprs ...Expr) Expr {
	return fold(OpOr, exprs)
}

func fold(op BinaryOperator, exprs []Expr) Expr {
	var out Expr
	for _, e := range exprs {
		if e == nil {
			continue
		}
		if out == nil {
			out = e
			continue
		}
		out = &BinaryOp{Left: out, Op: op, Right: e}
	}

	return out
}

// Lit returns a literal expression.
func Lit(v Value) *Literal {
	return &Literal{Value: v}
}

// Param returns an inline parameter of the given type.
func Param(v Value, t *parser.DataType) *Parameter {
	return &Parameter{Value: v, Type: t}
}
