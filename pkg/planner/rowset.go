package planner

import (
	"math"

	"github.com/pseudomuto/ndc-clickhouse/pkg/ast"
	"github.com/pseudomuto/ndc-clickhouse/pkg/config"
	"github.com/pseudomuto/ndc-clickhouse/pkg/ndc"
	"github.com/pseudomuto/ndc-clickhouse/pkg/typedef"
)

// rowset plans the rowset subquery of a collection. It selects one _rowset value
// per group, where groups are formed by relkeys (the target columns of the
// relationship that led here) and the variable set id:
//
//	SELECT tuple(groupArray(tuple(_row."_field_a", ...)), tuple(count(*), ...)) AS _rowset, ...
//	FROM (<row subquery>) AS _row
//	GROUP BY _row."_relkey_x", _row._varset_id
func (b *builder) rowset(collection string, q *ndc.Query, args map[string]ndc.Argument, relkeys []string) (*ast.Query, error) {
	coll, err := b.collection(collection)
	if err != nil {
		return nil, err
	}

	row, err := b.row(coll, q, args, relkeys)
	if err != nil {
		return nil, err
	}

	ref := func(name string) ast.Expr {
		return ast.Compound(ast.Bare(rowAlias), ast.Quoted(name))
	}

	var parts []ast.Expr
	if q.Fields != nil {
		var fields []ast.Expr
		for pair := q.Fields.Oldest(); pair != nil; pair = pair.Next() {
			fields = append(fields, ref(fieldPrefix+pair.Key))
		}
		parts = append(parts, ast.Call("groupArray", tupleOrEmpty(fields)))
	}

	if q.Aggregates != nil {
		var aggs []ast.Expr
		for pair := q.Aggregates.Oldest(); pair != nil; pair = pair.Next() {
			agg := pair.Value
			switch agg.Type {
			case ndc.AggregateTypeStarCount:
				aggs = append(aggs, ast.Call("COUNT", &ast.Wildcard{}))
			case ndc.AggregateTypeColumnCount:
				fn := ast.Call("COUNT", ref(aggPrefix+pair.Key))
				fn.Distinct = agg.Distinct
				aggs = append(aggs, fn)
			case ndc.AggregateTypeSingleColumn:
				aggs = append(aggs, ast.Call(agg.Function, ref(aggPrefix+pair.Key)))
			}
		}
		parts = append(parts, tupleOrEmpty(aggs))
	}

	value := ast.Call("any", ast.Call("map"))
	if len(parts) > 0 {
		value = ast.Call("tuple", parts...)
	}

	query := &ast.Query{
		Select: []*ast.SelectItem{{Expr: value, Alias: ast.Bare(rowsetField)}},
		From: []*ast.TableWithJoins{{
			Relation: &ast.Derived{Subquery: row, Alias: ast.Bare(rowAlias)},
		}},
	}

	for _, key := range relkeys {
		query.Select = append(query.Select, &ast.SelectItem{Expr: ref(relkeyPrefix + key), Alias: ast.Quoted(relkeyPrefix + key)})
		query.GroupBy = append(query.GroupBy, ref(relkeyPrefix+key))
	}

	if b.vars != nil {
		query.Select = append(query.Select, &ast.SelectItem{Expr: varsetID(rowAlias), Alias: ast.Bare(varsetIDAlias)})
		query.GroupBy = append(query.GroupBy, varsetID(rowAlias))
	}

	return query, nil
}

// row plans the row subquery of a collection: one output row per matching row of
// the collection (per variable set), with a column for every requested field,
// every column an aggregate reads, and every relationship key.
func (b *builder) row(coll *config.Collection, q *ndc.Query, args map[string]ndc.Argument, relkeys []string) (*ast.Query, error) {
	s := newScope(coll, ast.Bare(originAlias), true)

	relation, err := b.relation(coll, args, s.alias)
	if err != nil {
		return nil, err
	}

	if b.vars != nil {
		s.join(ast.CrossJoinOf(varsTable()))
	}

	query := &ast.Query{}
	selectAs := func(expr ast.Expr, alias *ast.Ident) {
		query.Select = append(query.Select, &ast.SelectItem{Expr: expr, Alias: alias})
	}

	if q.Fields != nil {
		for pair := q.Fields.Oldest(); pair != nil; pair = pair.Next() {
			expr, err := b.field(s, pair.Key, pair.Value)
			if err != nil {
				return nil, err
			}
			selectAs(expr, ast.Quoted(fieldPrefix+pair.Key))
		}
	}

	if q.Aggregates != nil {
		for pair := q.Aggregates.Oldest(); pair != nil; pair = pair.Next() {
			expr, err := b.aggregateColumn(s, pair.Key, pair.Value)
			if err != nil {
				return nil, err
			}
			if expr != nil {
				selectAs(expr, ast.Quoted(aggPrefix+pair.Key))
			}
		}
	}

	var keys []ast.Expr
	for _, key := range relkeys {
		col, err := s.lookup(key)
		if err != nil {
			return nil, err
		}
		selectAs(s.column(col), ast.Quoted(relkeyPrefix+key))
		keys = append(keys, s.column(col))
	}

	if b.vars != nil {
		selectAs(varsetID(varsAlias), ast.Bare(varsetIDAlias))
		keys = append(keys, varsetID(varsAlias))
	}

	if len(query.Select) == 0 {
		selectAs(ast.Lit(ast.Null{}), nil)
	}

	if q.Predicate != nil {
		if query.Where, err = b.predicate(s, q.Predicate); err != nil {
			return nil, err
		}
	}

	if q.OrderBy != nil {
		if query.OrderBy, err = b.orderBy(s, q.OrderBy); err != nil {
			return nil, err
		}
	}

	switch {
	case q.Limit == nil && q.Offset == nil:
	case len(keys) > 0:
		limit := uint32(math.MaxUint32)
		if q.Limit != nil {
			limit = *q.Limit
		}
		query.LimitBy = &ast.LimitBy{Limit: limit, Offset: q.Offset, By: keys}
	default:
		query.Limit = q.Limit
		query.Offset = q.Offset
	}

	query.From = []*ast.TableWithJoins{{Relation: relation, Joins: *s.joins}}
	return query, nil
}

// field returns the expression selected for a requested field. Relationship
// fields join the related rowset onto s.
func (b *builder) field(s *scope, alias string, field ndc.Field) (ast.Expr, error) {
	switch field.Type {
	case ndc.FieldTypeColumn:
		col, err := s.lookup(field.Column)
		if err != nil {
			return nil, err
		}
		if field.Fields != nil {
			return nil, notSupported("nested field selection on column %q of collection %q", field.Column, s.coll.Alias)
		}
		if len(field.Arguments) > 0 {
			return nil, notSupported("arguments on column %q of collection %q", field.Column, s.coll.Alias)
		}
		return s.column(col), nil
	case ndc.FieldTypeRelationship:
		return b.relationshipField(s, alias, field)
	default:
		return nil, badRequest("unknown type %q for field %q", field.Type, alias)
	}
}

func (b *builder) relationshipField(s *scope, alias string, field ndc.Field) (ast.Expr, error) {
	rel, err := b.relationship(field.Relationship)
	if err != nil {
		return nil, err
	}

	args := mergeArguments(rel.Arguments, field.Arguments)
	for name, arg := range args {
		if arg.Type == ndc.ArgumentTypeColumn {
			return nil, notSupported("column argument %q in relationship %q", name, field.Relationship)
		}
	}

	var relkeys []string
	if rel.ColumnMapping != nil {
		for pair := rel.ColumnMapping.Oldest(); pair != nil; pair = pair.Next() {
			relkeys = append(relkeys, pair.Value)
		}
	}

	q := field.Query
	if q == nil {
		q = &ndc.Query{}
	}

	child, err := b.rowset(rel.TargetCollection, q, args, relkeys)
	if err != nil {
		return nil, err
	}

	relAlias := synthetic(relPrefix, alias)

	var conds []ast.Expr
	if rel.ColumnMapping != nil {
		for pair := rel.ColumnMapping.Oldest(); pair != nil; pair = pair.Next() {
			src, err := s.lookup(pair.Key)
			if err != nil {
				return nil, err
			}
			conds = append(conds, ast.Eq(s.column(src), ast.Compound(relAlias, ast.Quoted(relkeyPrefix+pair.Value))))
		}
	}
	if b.vars != nil {
		conds = append(conds, ast.Eq(varsetID(varsAlias), ast.Compound(relAlias, ast.Bare(varsetIDAlias))))
	}

	derived := &ast.Derived{Subquery: child, Alias: relAlias}
	if len(conds) == 0 {
		s.join(ast.CrossJoinOf(derived))
	} else {
		s.join(ast.LeftJoinOn(derived, ast.And(conds...)))
	}

	return ast.Compound(relAlias, ast.Bare(rowsetField)), nil
}

// aggregateColumn returns the column an aggregate reads, or nil for star counts.
func (b *builder) aggregateColumn(s *scope, alias string, agg ndc.Aggregate) (ast.Expr, error) {
	switch agg.Type {
	case ndc.AggregateTypeStarCount:
		return nil, nil
	case ndc.AggregateTypeColumnCount, ndc.AggregateTypeSingleColumn:
	default:
		return nil, badRequest("unknown type %q for aggregate %q", agg.Type, alias)
	}

	if len(agg.FieldPath) > 0 {
		return nil, notSupported("field path in aggregate %q", alias)
	}

	col, err := s.lookup(agg.Column)
	if err != nil {
		return nil, err
	}

	if agg.Type == ndc.AggregateTypeSingleColumn {
		if _, err := aggregateFunction(s.coll, col, agg.Function); err != nil {
			return nil, err
		}
	}

	return s.column(col), nil
}

// aggregateFunction looks up a single-column aggregate function for a column.
func aggregateFunction(coll *config.Collection, col *config.ColumnDefinition, name string) (typedef.AggregateFunction, error) {
	def := typedef.Underlying(typedef.New(typedef.Namespace(coll.TypeName, col.Alias), col.Type))
	if scalar, ok := def.(*typedef.Scalar); ok {
		if fn, ok := scalar.Aggregate(name); ok {
			return fn, nil
		}
	}

	return typedef.AggregateFunction{}, badRequest("unknown aggregate function %q for column %q of collection %q with type %s", name, col.Alias, coll.Alias, col.Type)
}

func tupleOrEmpty(exprs []ast.Expr) ast.Expr {
	if len(exprs) == 0 {
		return ast.Call("map")
	}

	return ast.Call("tuple", exprs...)
}
