package planner

import (
	"strconv"

	"github.com/pseudomuto/ndc-clickhouse/pkg/ast"
	"github.com/pseudomuto/ndc-clickhouse/pkg/config"
	"github.com/pseudomuto/ndc-clickhouse/pkg/utils"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

const (
	originAlias = "_origin"
	rowAlias    = "_row"

	fieldPrefix  = "_field_"
	aggPrefix    = "_agg_"
	relkeyPrefix = "_relkey_"
	relPrefix    = "_rel_"
	valuesAlias  = "_values"
	orderByValue = "_order_by_value"
)

// scope is a relation of a subquery under construction. Predicates and order-by
// targets lowered against a scope attach their joins to the subquery's FROM
// clause, which every scope of that subquery shares.
type scope struct {
	coll  *config.Collection
	alias *ast.Ident
	// origin is set for the base relation of a row subquery. Only the origin may
	// group relationship paths into _exists_N subqueries.
	origin bool
	joins  *[]*ast.Join
}

func newScope(coll *config.Collection, alias *ast.Ident, origin bool) *scope {
	return &scope{coll: coll, alias: alias, origin: origin, joins: &[]*ast.Join{}}
}

// child returns a scope for another relation of the same subquery.
func (s *scope) child(coll *config.Collection, alias *ast.Ident) *scope {
	return &scope{coll: coll, alias: alias, joins: s.joins}
}

func (s *scope) join(j *ast.Join) {
	*s.joins = append(*s.joins, j)
}

func (s *scope) column(col *config.ColumnDefinition) ast.Expr {
	return ast.Compound(s.alias, ast.Quoted(col.Name))
}

func (s *scope) lookup(alias string) (*config.ColumnDefinition, error) {
	col, err := s.coll.Column(alias)
	if err != nil {
		return nil, wrap(KindBadRequest, err, "failed to resolve column")
	}

	return col, nil
}

// subquery is a derived table joined back onto an outer scope through key
// columns. It backs relationship paths, exists expressions, and order-by
// targets.
type subquery struct {
	scope    *scope
	relation ast.TableFactor
	where    []ast.Expr
	keys     []*ast.SelectItem
	by       []ast.Expr
	on       []joinKey
	vars     bool
}

// joinKey compares an outer expression with a key column of the subquery.
type joinKey struct {
	outer ast.Expr
	key   *ast.Ident
}

// mapping adds a _relkey_ column for every target column of m, each compared to
// the corresponding source column of outer.
func (sq *subquery) mapping(outer *scope, m *orderedmap.OrderedMap[string, string]) error {
	if m == nil {
		return nil
	}

	for pair := m.Oldest(); pair != nil; pair = pair.Next() {
		src, err := outer.lookup(pair.Key)
		if err != nil {
			return err
		}

		tgt, err := sq.scope.lookup(pair.Value)
		if err != nil {
			return err
		}

		key := ast.Quoted(relkeyPrefix + pair.Value)
		sq.keys = append(sq.keys, &ast.SelectItem{Expr: sq.scope.column(tgt), Alias: key})
		sq.by = append(sq.by, sq.scope.column(tgt))
		sq.on = append(sq.on, joinKey{outer: outer.column(src), key: key})
	}

	return nil
}

// query returns the subquery selecting items followed by its keys.
func (sq *subquery) query(items ...*ast.SelectItem) *ast.Query {
	q := &ast.Query{
		Select: append(items, sq.keys...),
		From:   []*ast.TableWithJoins{{Relation: sq.relation, Joins: *sq.scope.joins}},
		Where:  ast.And(sq.where...),
	}

	if sq.vars {
		q.Select = append(q.Select, &ast.SelectItem{Expr: varsetID(varsAlias), Alias: ast.Bare(varsetIDAlias)})
	}

	return q
}

// groupBy returns the key expressions, including the variable set id.
func (sq *subquery) groupBy() []ast.Expr {
	by := append([]ast.Expr{}, sq.by...)
	if sq.vars {
		by = append(by, varsetID(varsAlias))
	}

	return by
}

// join joins q, aliased alias, onto the outer scope.
func (sq *subquery) join(alias *ast.Ident, q *ast.Query) *ast.Join {
	var conds []ast.Expr
	for _, k := range sq.on {
		conds = append(conds, ast.Eq(k.outer, ast.Compound(alias, k.key)))
	}
	if sq.vars {
		conds = append(conds, ast.Eq(varsetID(varsAlias), ast.Compound(alias, ast.Bare(varsetIDAlias))))
	}

	derived := &ast.Derived{Subquery: q, Alias: alias}
	if len(conds) == 0 {
		return ast.CrossJoinOf(derived)
	}

	return ast.LeftJoinOn(derived, ast.And(conds...))
}

// synthetic returns the identifier prefix+suffix, quoted only when necessary.
func synthetic(prefix string, suffix any) *ast.Ident {
	var name string
	switch s := suffix.(type) {
	case int:
		name = prefix + strconv.Itoa(s)
	case string:
		name = prefix + s
	}

	if utils.IsBareIdentifier(name) {
		return ast.Bare(name)
	}

	return ast.Quoted(name)
}

// conjunction ANDs exprs, parenthesizing when there is more than one.
func conjunction(exprs []ast.Expr) ast.Expr {
	return group(ast.And(exprs...), len(exprs))
}

func disjunction(exprs []ast.Expr) ast.Expr {
	return group(ast.Or(exprs...), len(exprs))
}

func group(e ast.Expr, n int) ast.Expr {
	if n > 1 {
		return &ast.Nested{Expr: e}
	}

	return e
}
