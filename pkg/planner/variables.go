package planner

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"

	"github.com/pseudomuto/ndc-clickhouse/pkg/ast"
)

const (
	varsAlias     = "_vars"
	varsetIDAlias = "_varset_id"
	varPrefix     = "_var_"
)

// variables is the columnar form of the request's variable sets. It is fed to
// ClickHouse through format(JSONColumns, ...) so that every set becomes one row of
// _vars, numbered from 1 in request order.
type variables struct {
	names []string
	count int
	json  string
}

func newVariables(sets []map[string]json.RawMessage) (*variables, error) {
	if len(sets) == 0 {
		return nil, badRequest("variables must contain at least one variable set when present")
	}

	seen := map[string]bool{}
	var names []string
	for _, set := range sets {
		for name := range set {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)

	var buf bytes.Buffer
	buf.WriteString(`{"` + varsetIDAlias + `":[`)
	for i := range sets {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Itoa(i + 1))
	}
	buf.WriteByte(']')

	for _, name := range names {
		key, err := json.Marshal(varPrefix + name)
		if err != nil {
			return nil, wrap(KindBadRequest, err, "failed to serialize variable %q", name)
		}

		buf.WriteByte(',')
		buf.Write(key)
		buf.WriteString(":[")
		for i, set := range sets {
			if i > 0 {
				buf.WriteByte(',')
			}

			raw, ok := set[name]
			if !ok || len(bytes.TrimSpace(raw)) == 0 {
				buf.WriteString("null")
				continue
			}
			if err := json.Compact(&buf, raw); err != nil {
				return nil, wrap(KindBadRequest, err, "failed to serialize variable %q of variable set %d", name, i)
			}
		}
		buf.WriteByte(']')
	}
	buf.WriteByte('}')

	return &variables{names: names, count: len(sets), json: buf.String()}, nil
}

func (v *variables) has(name string) bool {
	i := sort.SearchStrings(v.names, name)
	return i < len(v.names) && v.names[i] == name
}

// withItem binds _vars to the decoded variable columns.
func (v *variables) withItem() *ast.WithItem {
	return &ast.WithItem{
		Name: ast.Bare(varsAlias),
		Query: &ast.Query{
			Select: []*ast.SelectItem{{Expr: &ast.Wildcard{}}},
			From: []*ast.TableWithJoins{{
				Relation: &ast.TableFunction{
					Name: ast.Name(ast.Bare("format")),
					Args: []*ast.FunctionArg{
						{Expr: ast.Bare("JSONColumns")},
						{Expr: ast.Lit(ast.String(v.json))},
					},
				},
			}},
		},
	}
}

func varsTable() *ast.Table {
	return &ast.Table{Name: ast.Name(ast.Bare(varsAlias))}
}

func varsetID(relation string) ast.Expr {
	return ast.Compound(ast.Bare(relation), ast.Bare(varsetIDAlias))
}
