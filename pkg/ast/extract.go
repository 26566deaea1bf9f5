package ast

import (
	"fmt"
	"strconv"
)

// QueryParameter is an extracted parameter, sent to ClickHouse as
// param_<name>=<value>. Name already carries the param_ prefix.
type QueryParameter struct {
	Name  string
	Value string
}

// ParameterizedStatement is a statement whose inline parameters have been replaced
// by {pN:Type} placeholders, together with the extracted values.
type ParameterizedStatement struct {
	stmt       *Statement
	Parameters []QueryParameter
}

// Statement returns the underlying statement for printing. It must not be passed
// to Extract.
func (p *ParameterizedStatement) Statement() *Statement {
	return p.stmt
}

// Explain returns a copy of p that prints as EXPLAIN <query> with the same
// parameters.
func (p *ParameterizedStatement) Explain() *ParameterizedStatement {
	stmt := *p.stmt
	stmt.Explain = true

	return &ParameterizedStatement{stmt: &stmt, Parameters: p.Parameters}
}

// Extract replaces every inline Parameter in stmt with a Placeholder named pN,
// numbering from 0 in the order the clauses are printed, and returns the
// parameterized statement along with the extracted values.
//
// stmt is modified in place. Extracting the same statement twice is a programming
// error and panics.
//
// Example:
//
//	pstmt := ast.Extract(stmt)
//	for _, p := range pstmt.Parameters {
//		values.Set(p.Name, p.Value) // param_p0=10
//	}
func Extract(stmt *Statement) *ParameterizedStatement {
	if stmt.extracted {
		panic("ast: statement parameters were already extracted")
	}
	stmt.extracted = true

	e := &extractor{}
	e.query(stmt.Query)

	return &ParameterizedStatement{stmt: stmt, Parameters: e.params}
}

type extractor struct {
	next   int
	params []QueryParameter
}

func (e *extractor) query(q *Query) {
	if q == nil {
		return
	}

	for _, w := range q.With {
		e.query(w.Query)
	}
	for _, s := range q.Select {
		s.Expr = e.expr(s.Expr)
	}
	for _, f := range q.From {
		e.tableWithJoins(f)
	}
	q.Where = e.expr(q.Where)
	e.exprs(q.GroupBy)
	e.orderBy(q.OrderBy)
	if q.LimitBy != nil {
		e.exprs(q.LimitBy.By)
	}
}

func (e *extractor) tableWithJoins(t *TableWithJoins) {
	e.tableFactor(t.Relation)
	for _, j := range t.Joins {
		e.tableFactor(j.Relation)
		j.Operator.Constraint.On = e.expr(j.Operator.Constraint.On)
	}
}

func (e *extractor) tableFactor(t TableFactor) {
	switch t := t.(type) {
	case *Table:
		e.args(t.Args)
	case *Derived:
		e.query(t.Subquery)
	case *TableFunction:
		e.args(t.Args)
	case *NativeQuery:
		for i := range t.Elements {
			t.Elements[i].Expr = e.expr(t.Elements[i].Expr)
		}
	case nil:
	default:
		panic(fmt.Sprintf("ast: unexpected table factor %T", t))
	}
}

func (e *extractor) args(args []*FunctionArg) {
	for _, a := range args {
		a.Expr = e.expr(a.Expr)
	}
}

func (e *extractor) exprs(exprs []Expr) {
	for i := range exprs {
		exprs[i] = e.expr(exprs[i])
	}
}

func (e *extractor) orderBy(items []*OrderByExpr) {
	for _, o := range items {
		o.Expr = e.expr(o.Expr)
	}
}

func (e *extractor) expr(x Expr) Expr {
	switch x := x.(type) {
	case nil:
		return nil
	case *Parameter:
		name := "p" + strconv.Itoa(e.next)
		e.next++
		e.params = append(e.params, QueryParameter{Name: "param_" + name, Value: ParameterValue(x.Value)})
		return &Placeholder{Name: name, Type: x.Type}
	case *Placeholder:
		panic("ast: placeholder found while extracting parameters")
	case *BinaryOp:
		x.Left = e.expr(x.Left)
		x.Right = e.expr(x.Right)
	case *UnaryOp:
		x.Expr = e.expr(x.Expr)
	case *Nested:
		x.Expr = e.expr(x.Expr)
	case *Function:
		e.args(x.Args)
		if x.Over != nil {
			e.exprs(x.Over.PartitionBy)
			e.orderBy(x.Over.OrderBy)
		}
	case *Lambda:
		x.Body = e.expr(x.Body)
	case *List:
		e.exprs(x.Exprs)
	case *Ident, *CompoundIdent, *Literal, *Wildcard:
	default:
		panic(fmt.Sprintf("ast: unexpected expression %T", x))
	}

	return x
}
