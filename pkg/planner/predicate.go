package planner

import (
	"github.com/pseudomuto/ndc-clickhouse/pkg/ast"
	"github.com/pseudomuto/ndc-clickhouse/pkg/config"
	"github.com/pseudomuto/ndc-clickhouse/pkg/ndc"
	"github.com/pseudomuto/ndc-clickhouse/pkg/parser"
	"github.com/pseudomuto/ndc-clickhouse/pkg/typedef"
)

// comparison builds a comparison against the column col of target, read through
// left.
type comparison func(target *scope, left ast.Expr, col *config.ColumnDefinition) (ast.Expr, error)

// predicate lowers e against s. Joins required by relationship paths and exists
// expressions are attached to the FROM clause of s.
func (b *builder) predicate(s *scope, e *ndc.Expression) (ast.Expr, error) {
	switch e.Type {
	case ndc.ExpressionTypeAnd, ndc.ExpressionTypeOr:
		exprs := make([]ast.Expr, 0, len(e.Expressions))
		for i := range e.Expressions {
			x, err := b.predicate(s, &e.Expressions[i])
			if err != nil {
				return nil, err
			}
			exprs = append(exprs, x)
		}

		if e.Type == ndc.ExpressionTypeAnd {
			if len(exprs) == 0 {
				return ast.Lit(ast.Boolean(true)), nil
			}
			return conjunction(exprs), nil
		}

		if len(exprs) == 0 {
			return ast.Lit(ast.Boolean(false)), nil
		}
		return disjunction(exprs), nil
	case ndc.ExpressionTypeNot:
		if e.Expression == nil {
			return nil, badRequest("not expression without an operand")
		}

		x, err := b.predicate(s, e.Expression)
		if err != nil {
			return nil, err
		}
		return &ast.UnaryOp{Op: ast.OpNot, Expr: &ast.Nested{Expr: x}}, nil
	case ndc.ExpressionTypeUnaryComparisonOperator:
		if ndc.UnaryComparisonOperator(e.Operator) != ndc.UnaryComparisonOperatorIsNull {
			return nil, badRequest("unknown unary comparison operator %q", e.Operator)
		}

		return b.compare(s, e.Column, func(_ *scope, left ast.Expr, _ *config.ColumnDefinition) (ast.Expr, error) {
			return &ast.UnaryOp{Op: ast.OpIsNull, Expr: left}, nil
		})
	case ndc.ExpressionTypeBinaryComparisonOperator:
		if e.Value == nil {
			return nil, badRequest("binary comparison %q without a value", e.Operator)
		}

		return b.compare(s, e.Column, b.binaryComparison(s, e.Operator, e.Value))
	case ndc.ExpressionTypeExists:
		if e.InCollection == nil {
			return nil, badRequest("exists expression without a collection")
		}

		return b.exists(s, e.InCollection, e.Predicate)
	default:
		return nil, badRequest("unknown expression type %q", e.Type)
	}
}

// compare resolves target against s and applies build to it.
//
// A column reached through a relationship path from the origin of a row subquery
// is compared through an array of its values, collected by a grouped subquery, so
// that the outer row is neither duplicated nor dropped:
//
//	arrayExists((_value_0) -> _value_0 = 'AC/DC', _exists_0._values)
//
// Inside other subqueries the path is joined directly.
func (b *builder) compare(s *scope, target *ndc.ComparisonTarget, build comparison) (ast.Expr, error) {
	if target == nil {
		return nil, badRequest("comparison without a column")
	}
	if len(target.FieldPath) > 0 {
		return nil, notSupported("field path in comparison on column %q", target.Name)
	}

	switch target.Type {
	case ndc.ComparisonTargetTypeColumn:
	case ndc.ComparisonTargetTypeRootCollectionColumn:
		if !s.origin || len(target.Path) > 0 {
			return nil, notSupported("root collection column %q referenced from a nested scope", target.Name)
		}
	default:
		return nil, badRequest("unknown comparison target type %q", target.Type)
	}

	if len(target.Path) == 0 {
		col, err := s.lookup(target.Name)
		if err != nil {
			return nil, err
		}
		return build(s, s.column(col), col)
	}

	if !s.origin {
		last, preds, err := b.hops(s, target.Path)
		if err != nil {
			return nil, err
		}

		col, err := last.lookup(target.Name)
		if err != nil {
			return nil, err
		}

		cmp, err := build(last, last.column(col), col)
		if err != nil {
			return nil, err
		}
		return conjunction(append(preds, cmp)), nil
	}

	alias := b.nextExists()
	first := target.Path[0]
	sq, err := b.follow(s, first.Relationship, first.Arguments)
	if err != nil {
		return nil, err
	}

	if first.Predicate != nil {
		pred, err := b.predicate(sq.scope, first.Predicate)
		if err != nil {
			return nil, err
		}
		sq.where = append(sq.where, pred)
	}

	last, preds, err := b.hops(sq.scope, target.Path[1:])
	if err != nil {
		return nil, err
	}
	sq.where = append(sq.where, preds...)

	col, err := last.lookup(target.Name)
	if err != nil {
		return nil, err
	}

	q := sq.query(&ast.SelectItem{Expr: ast.Call("groupArray", last.column(col)), Alias: ast.Bare(valuesAlias)})
	q.GroupBy = sq.groupBy()
	s.join(sq.join(alias, q))

	value := b.nextValue()
	cmp, err := build(last, value, col)
	if err != nil {
		return nil, err
	}

	return ast.Call("arrayExists",
		&ast.Lambda{Params: []*ast.Ident{value}, Body: cmp},
		ast.Compound(alias, ast.Bare(valuesAlias)),
	), nil
}

// binaryComparison returns a comparison applying the operator named op, with the
// right-hand side resolved against s.
func (b *builder) binaryComparison(s *scope, op string, value *ndc.ComparisonValue) comparison {
	return func(target *scope, left ast.Expr, col *config.ColumnDefinition) (ast.Expr, error) {
		def := typedef.Underlying(typedef.New(typedef.Namespace(target.coll.TypeName, col.Alias), col.Type))
		scalar, ok := def.(*typedef.Scalar)
		if !ok {
			return nil, badRequest("column %q of collection %q with type %s does not support comparisons", col.Alias, target.coll.Alias, col.Type)
		}

		operator, ok := scalar.ComparisonOperator(op)
		if !ok {
			return nil, badRequest("unknown comparison operator %q for column %q of collection %q", op, col.Alias, target.coll.Alias)
		}

		argType := operator.ArgumentType
		if isNullable(col.Type) {
			argType = nullable(argType)
		}

		right, err := b.comparisonValue(s, value, argType)
		if err != nil {
			return nil, err
		}

		if operator.Function {
			return ast.Call(operator.SQL, left, right), nil
		}

		return &ast.BinaryOp{Left: left, Op: ast.BinaryOperator(operator.SQL), Right: right}, nil
	}
}

// comparisonValue resolves the right-hand side of a comparison to a value of type
// dt.
func (b *builder) comparisonValue(s *scope, value *ndc.ComparisonValue, dt *parser.DataType) (ast.Expr, error) {
	switch value.Type {
	case ndc.ComparisonValueTypeScalar:
		v, err := castValue(value.Value, dt)
		if err != nil {
			return nil, wrap(KindBadRequest, err, "invalid comparison value")
		}
		return ast.Param(v, dt), nil
	case ndc.ComparisonValueTypeVariable:
		return b.variable(value.Name)
	case ndc.ComparisonValueTypeColumn:
		target := value.Column
		if target == nil {
			return nil, badRequest("column comparison value without a column")
		}
		if len(target.Path) > 0 || len(target.FieldPath) > 0 {
			return nil, notSupported("comparison against column %q through a path", target.Name)
		}
		if target.Type == ndc.ComparisonTargetTypeRootCollectionColumn && !s.origin {
			return nil, notSupported("root collection column %q referenced from a nested scope", target.Name)
		}

		col, err := s.lookup(target.Name)
		if err != nil {
			return nil, err
		}
		return s.column(col), nil
	default:
		return nil, badRequest("unknown comparison value type %q", value.Type)
	}
}

// exists lowers an exists expression to a keyed subquery joined onto s. The
// subquery yields at most one row per key, so the join never multiplies rows of
// s.
func (b *builder) exists(s *scope, in *ndc.ExistsInCollection, pred *ndc.Expression) (ast.Expr, error) {
	alias := b.nextExists()

	var (
		sq  *subquery
		err error
	)
	switch in.Type {
	case ndc.ExistsInCollectionTypeRelated:
		sq, err = b.follow(s, in.Relationship, in.Arguments)
	case ndc.ExistsInCollectionTypeUnrelated:
		var coll *config.Collection
		if coll, err = b.collection(in.Collection); err == nil {
			sq, err = b.startSubquery(coll, in.Arguments)
		}
	default:
		err = badRequest("unknown exists collection type %q", in.Type)
	}
	if err != nil {
		return nil, err
	}

	if pred != nil {
		where, err := b.predicate(sq.scope, pred)
		if err != nil {
			return nil, err
		}
		sq.where = append(sq.where, where)
	}

	by := sq.groupBy()

	// Without keys the subquery is cross joined, so it must yield exactly one row.
	if len(by) == 0 {
		q := sq.query(&ast.SelectItem{
			Expr:  &ast.BinaryOp{Left: ast.Call("COUNT", &ast.Wildcard{}), Op: ast.OpGt, Right: ast.Lit(ast.Number("0"))},
			Alias: alias,
		})
		s.join(sq.join(alias, q))
		return ast.Eq(ast.Compound(alias, alias), ast.Lit(ast.Boolean(true))), nil
	}

	q := sq.query(&ast.SelectItem{Expr: ast.Lit(ast.Boolean(true)), Alias: alias})
	q.LimitBy = &ast.LimitBy{Limit: 1, By: by}
	s.join(sq.join(alias, q))

	return ast.Eq(ast.Compound(alias, alias), ast.Lit(ast.Boolean(true))), nil
}

func isNullable(dt *parser.DataType) bool {
	if dt.LowCardinality != nil {
		dt = dt.LowCardinality.Type
	}

	return dt.Nullable != nil
}

// nullable wraps dt in Nullable. Arrays get nullable elements instead, since
// ClickHouse has no Nullable(Array(...)).
func nullable(dt *parser.DataType) *parser.DataType {
	if dt.Array != nil {
		return parser.NewArray(nullable(dt.Array.Type))
	}
	if dt.Nullable != nil {
		return dt
	}

	return parser.NewNullable(dt)
}
