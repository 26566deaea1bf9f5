package planner

import (
	"sort"

	"github.com/pseudomuto/ndc-clickhouse/pkg/ast"
	"github.com/pseudomuto/ndc-clickhouse/pkg/config"
	"github.com/pseudomuto/ndc-clickhouse/pkg/ndc"
	"github.com/pseudomuto/ndc-clickhouse/pkg/parser"
)

// relation returns the table factor reading coll with args bound. Tables with
// arguments are parameterized views and are called like functions; native queries
// are spliced in as subqueries.
func (b *builder) relation(coll *config.Collection, args map[string]ndc.Argument, alias *ast.Ident) (ast.TableFactor, error) {
	declared := coll.Arguments()

	names := make([]string, 0, len(args))
	for name := range args {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, ok := declared.Get(name); !ok {
			return nil, badRequest("unknown argument %q for collection %q", name, coll.Alias)
		}
	}

	if t := coll.Table; t != nil {
		name := ast.Name(ast.Quoted(t.Name))
		if t.Schema != "" {
			name = ast.Name(ast.Quoted(t.Schema), ast.Quoted(t.Name))
		}

		table := &ast.Table{Name: name, Alias: alias}
		if declared.Len() == 0 {
			return table, nil
		}

		table.Args = make([]*ast.FunctionArg, 0, declared.Len())
		for pair := declared.Oldest(); pair != nil; pair = pair.Next() {
			arg, ok := args[pair.Key]
			if !ok {
				return nil, badRequest("missing argument %q for collection %q", pair.Key, coll.Alias)
			}

			expr, err := b.argument(coll, pair.Key, arg, pair.Value)
			if err != nil {
				return nil, err
			}

			table.Args = append(table.Args, &ast.FunctionArg{Name: synthetic(pair.Key, ""), Expr: expr})
		}

		return table, nil
	}

	return ast.NewNativeQuery(coll.Query.Query, alias, func(p *parser.Parameter) (ast.Expr, error) {
		arg, ok := args[p.Name.Value]
		if !ok {
			return nil, badRequest("missing argument %q for collection %q", p.Name.Value, coll.Alias)
		}

		if p.Type.Identifier {
			if arg.Type != ndc.ArgumentTypeLiteral {
				return nil, notSupported("argument %q of collection %q is an identifier and must be a literal", p.Name.Value, coll.Alias)
			}

			v, err := castValue(arg.Value, parser.NewScalar(parser.String))
			if err != nil {
				return nil, wrap(KindBadRequest, err, "invalid identifier for argument %q of collection %q", p.Name.Value, coll.Alias)
			}

			return ast.Quoted(string(v.(ast.String))), nil
		}

		return b.argument(coll, p.Name.Value, arg, p.Type.DataType)
	})
}

// argument binds a collection argument to a value of type dt.
func (b *builder) argument(coll *config.Collection, name string, arg ndc.Argument, dt *parser.DataType) (ast.Expr, error) {
	switch arg.Type {
	case ndc.ArgumentTypeLiteral:
		v, err := castValue(arg.Value, dt)
		if err != nil {
			return nil, wrap(KindBadRequest, err, "invalid value for argument %q of collection %q", name, coll.Alias)
		}
		return ast.Param(v, dt), nil
	case ndc.ArgumentTypeVariable:
		return b.variable(arg.Name)
	case ndc.ArgumentTypeColumn:
		return nil, notSupported("column argument %q of collection %q", name, coll.Alias)
	default:
		return nil, badRequest("unknown argument type %q for argument %q of collection %q", arg.Type, name, coll.Alias)
	}
}

// mergeArguments overlays the arguments supplied at the point of use onto the
// relationship's own arguments.
func mergeArguments(base, override map[string]ndc.RelationshipArgument) map[string]ndc.Argument {
	args := make(map[string]ndc.Argument, len(base)+len(override))
	for k, v := range base {
		args[k] = v
	}
	for k, v := range override {
		args[k] = v
	}

	return args
}

// startSubquery begins a derived table over coll. When the request has variables
// the table is cross joined with _vars so that predicates can reference them and
// results can be keyed by variable set.
func (b *builder) startSubquery(coll *config.Collection, args map[string]ndc.Argument) (*subquery, error) {
	alias := b.nextPath()
	relation, err := b.relation(coll, args, alias)
	if err != nil {
		return nil, err
	}

	sq := &subquery{scope: newScope(coll, alias, false), relation: relation, vars: b.vars != nil}
	if sq.vars {
		sq.scope.join(ast.CrossJoinOf(varsTable()))
	}

	return sq, nil
}

// follow begins a derived table over the target of a relationship of outer,
// keyed by the relationship's column mapping.
func (b *builder) follow(outer *scope, name string, args map[string]ndc.RelationshipArgument) (*subquery, error) {
	rel, err := b.relationship(name)
	if err != nil {
		return nil, err
	}

	coll, err := b.collection(rel.TargetCollection)
	if err != nil {
		return nil, err
	}

	sq, err := b.startSubquery(coll, mergeArguments(rel.Arguments, args))
	if err != nil {
		return nil, err
	}

	if err := sq.mapping(outer, rel.ColumnMapping); err != nil {
		return nil, err
	}

	return sq, nil
}

// hops joins each relationship of path onto the subquery of s with INNER joins
// and returns the scope of the last relation together with the path's
// predicates.
func (b *builder) hops(s *scope, path []ndc.PathElement) (*scope, []ast.Expr, error) {
	var preds []ast.Expr
	current := s

	for _, elem := range path {
		rel, err := b.relationship(elem.Relationship)
		if err != nil {
			return nil, nil, err
		}

		coll, err := b.collection(rel.TargetCollection)
		if err != nil {
			return nil, nil, err
		}

		alias := b.nextPath()
		relation, err := b.relation(coll, mergeArguments(rel.Arguments, elem.Arguments), alias)
		if err != nil {
			return nil, nil, err
		}

		next := current.child(coll, alias)

		var conds []ast.Expr
		if rel.ColumnMapping != nil {
			for pair := rel.ColumnMapping.Oldest(); pair != nil; pair = pair.Next() {
				src, err := current.lookup(pair.Key)
				if err != nil {
					return nil, nil, err
				}
				tgt, err := next.lookup(pair.Value)
				if err != nil {
					return nil, nil, err
				}
				conds = append(conds, ast.Eq(current.column(src), next.column(tgt)))
			}
		}

		if len(conds) == 0 {
			current.join(ast.CrossJoinOf(relation))
		} else {
			current.join(ast.InnerJoinOn(relation, ast.And(conds...)))
		}

		if elem.Predicate != nil {
			pred, err := b.predicate(next, elem.Predicate)
			if err != nil {
				return nil, nil, err
			}
			preds = append(preds, pred)
		}

		current = next
	}

	return current, preds, nil
}
