package ast

import "github.com/pseudomuto/ndc-clickhouse/pkg/parser"

// TableFactor is a relation in a FROM clause or join. It is one of *Table,
// *Derived, *TableFunction, or *NativeQuery.
type TableFactor interface {
	tableFactor()
}

type (
	// Table is a named table. When Args is non-nil the table is a parameterized
	// view and is printed as a call: "schema"."view"(name=value, ...).
	Table struct {
		Name  ObjectName
		Args  []*FunctionArg
		Alias *Ident
	}

	// Derived is a subquery in FROM.
	Derived struct {
		Subquery *Query
		Alias    *Ident
	}

	// TableFunction is a table-valued function call such as format(...).
	TableFunction struct {
		Name  ObjectName
		Args  []*FunctionArg
		Alias *Ident
	}

	// NativeQuery splices user-provided parameterized SQL as a subquery. Each
	// parameter hole of the original query is replaced by a bound expression.
	NativeQuery struct {
		Elements []NativeQueryElement
		Alias    *Ident
	}

	// NativeQueryElement is literal SQL text or a bound parameter expression.
	NativeQueryElement struct {
		Text string
		Expr Expr
	}

	// Join attaches a relation to the preceding FROM entry.
	Join struct {
		Relation TableFactor
		Operator JoinOperator
	}

	// JoinOperator is the join kind and its constraint.
	JoinOperator struct {
		Kind       JoinKind
		Constraint JoinConstraint
	}

	// JoinConstraint is ON expr, USING (cols), NATURAL, or nothing. At most one of
	// On, Using, and Natural is set.
	JoinConstraint struct {
		On      Expr
		Using   []*Ident
		Natural bool
	}
)

// JoinKind enumerates the supported joins.
type JoinKind int

const (
	InnerJoin JoinKind = iota
	LeftOuterJoin
	RightOuterJoin
	FullOuterJoin
	CrossJoin
)

func (*Table) tableFactor()         {}
func (*Derived) tableFactor()       {}
func (*TableFunction) tableFactor() {}
func (*NativeQuery) tableFactor()   {}

// NewNativeQuery copies the literal fragments of q and binds each parameter hole
// using bind.
func NewNativeQuery(q *parser.ParameterizedQuery, alias *Ident, bind func(*parser.Parameter) (Expr, error)) (*NativeQuery, error) {
	nq := &NativeQuery{Alias: alias}
	for _, e := range q.Elements {
		if e.Text != nil {
			nq.Elements = append(nq.Elements, NativeQueryElement{Text: *e.Text})
			continue
		}

		expr, err := bind(e.Parameter)
		if err != nil {
			return nil, err
		}
		nq.Elements = append(nq.Elements, NativeQueryElement{Expr: expr})
	}

	return nq, nil
}

// LeftJoinOn returns a LEFT OUTER JOIN of relation on cond.
func LeftJoinOn(relation TableFactor, cond Expr) *Join {
	return &Join{Relation: relation, Operator: JoinOperator{Kind: LeftOuterJoin, Constraint: JoinConstraint{On: cond}}}
}

// InnerJoinOn returns an INNER JOIN of relation on cond.
func InnerJoinOn(relation TableFactor, cond Expr) *Join {
	return &Join{Relation: relation, Operator: JoinOperator{Kind: InnerJoin, Constraint: JoinConstraint{On: cond}}}
}

// CrossJoinOf returns a CROSS JOIN of relation.
func CrossJoinOf(relation TableFactor) *Join {
	return &Join{Relation: relation, Operator: JoinOperator{Kind: CrossJoin}}
}
