package planner

import (
	"github.com/pseudomuto/ndc-clickhouse/pkg/ast"
	"github.com/pseudomuto/ndc-clickhouse/pkg/ndc"
)

// orderBy lowers the sort keys of a query against s. Keys reached through a
// relationship path are computed by a _order_by_N subquery joined onto s.
func (b *builder) orderBy(s *scope, ob *ndc.OrderBy) ([]*ast.OrderByExpr, error) {
	exprs := make([]*ast.OrderByExpr, 0, len(ob.Elements))

	for _, elem := range ob.Elements {
		var desc bool
		switch elem.OrderDirection {
		case ndc.OrderDirectionAsc:
		case ndc.OrderDirectionDesc:
			desc = true
		default:
			return nil, badRequest("unknown order direction %q", elem.OrderDirection)
		}

		expr, err := b.orderByTarget(s, &elem.Target)
		if err != nil {
			return nil, err
		}

		exprs = append(exprs, &ast.OrderByExpr{Expr: expr, Desc: desc})
	}

	return exprs, nil
}

func (b *builder) orderByTarget(s *scope, target *ndc.OrderByTarget) (ast.Expr, error) {
	if len(target.FieldPath) > 0 {
		return nil, notSupported("field path in order by %q", target.Name)
	}

	switch target.Type {
	case ndc.OrderByTargetTypeColumn:
		if len(target.Path) == 0 {
			col, err := s.lookup(target.Name)
			if err != nil {
				return nil, err
			}
			return s.column(col), nil
		}

		return b.orderByPath(s, target.Path, false, func(last *scope) (ast.Expr, error) {
			col, err := last.lookup(target.Name)
			if err != nil {
				return nil, err
			}
			return last.column(col), nil
		})
	case ndc.OrderByTargetTypeSingleColumnAggregate:
		if len(target.Path) == 0 {
			return nil, unexpected("order by aggregate %q of column %q without a relationship path", target.Function, target.Column)
		}

		return b.orderByPath(s, target.Path, true, func(last *scope) (ast.Expr, error) {
			col, err := last.lookup(target.Column)
			if err != nil {
				return nil, err
			}
			if _, err := aggregateFunction(last.coll, col, target.Function); err != nil {
				return nil, err
			}
			return ast.Call(target.Function, last.column(col)), nil
		})
	case ndc.OrderByTargetTypeStarCountAggregate:
		if len(target.Path) == 0 {
			return nil, unexpected("order by star count without a relationship path")
		}

		return b.orderByPath(s, target.Path, true, func(*scope) (ast.Expr, error) {
			return ast.Call("COUNT", &ast.Wildcard{}), nil
		})
	default:
		return nil, badRequest("unknown order by target type %q", target.Type)
	}
}

// orderByPath joins a subquery computing value at the end of path onto s and
// returns a reference to the computed value. Aggregates are grouped by the
// subquery's keys; plain columns keep the first row per key.
func (b *builder) orderByPath(s *scope, path []ndc.PathElement, aggregate bool, value func(last *scope) (ast.Expr, error)) (ast.Expr, error) {
	alias := b.nextOrderBy()

	first := path[0]
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

	last, preds, err := b.hops(sq.scope, path[1:])
	if err != nil {
		return nil, err
	}
	sq.where = append(sq.where, preds...)

	v, err := value(last)
	if err != nil {
		return nil, err
	}

	by := sq.groupBy()
	item := &ast.SelectItem{Expr: v, Alias: ast.Bare(orderByValue)}

	var q *ast.Query
	switch {
	case aggregate:
		q = sq.query(item)
		q.GroupBy = by
	case len(by) > 0:
		q = sq.query(item)
		q.LimitBy = &ast.LimitBy{Limit: 1, By: by}
	default:
		// Cross joined, so the subquery must yield exactly one row.
		item.Expr = ast.Call("any", v)
		q = sq.query(item)
	}

	s.join(sq.join(alias, q))
	return ast.Compound(alias, ast.Bare(orderByValue)), nil
}
