package format

import (
	"strconv"

	"github.com/pseudomuto/ndc-clickhouse/pkg/ast"
)

func (p *printer) statement(stmt *ast.Statement) {
	if stmt.Explain {
		p.write("EXPLAIN ")
	}

	p.query(stmt.Query)

	if stmt.Format != "" {
		p.sep()
		p.write("FORMAT ", stmt.Format)
	}

	p.write(";")
}

func (p *printer) query(q *ast.Query) {
	if len(q.With) > 0 {
		p.clause("WITH", len(q.With), func(i int) {
			p.ident(q.With[i].Name)
			p.write(" AS ")
			p.subquery(q.With[i].Query)
		})
		p.sep()
	}

	p.clause("SELECT", len(q.Select), func(i int) {
		p.selectItem(q.Select[i])
	})

	if len(q.From) > 0 {
		p.sep()
		p.clause("FROM", len(q.From), func(i int) {
			p.tableWithJoins(q.From[i])
		})
	}

	if q.Where != nil {
		p.sep()
		p.clause("WHERE", 1, func(int) {
			p.expr(q.Where)
		})
	}

	if len(q.GroupBy) > 0 {
		p.sep()
		p.clause("GROUP BY", len(q.GroupBy), func(i int) {
			p.expr(q.GroupBy[i])
		})
	}

	if len(q.OrderBy) > 0 {
		p.sep()
		p.clause("ORDER BY", len(q.OrderBy), func(i int) {
			p.orderByExpr(q.OrderBy[i])
		})
	}

	if lb := q.LimitBy; lb != nil {
		p.sep()
		p.write("LIMIT ", strconv.FormatUint(uint64(lb.Limit), 10))
		if lb.Offset != nil {
			p.write(" OFFSET ", strconv.FormatUint(uint64(*lb.Offset), 10))
		}
		p.write(" BY ")
		p.exprList(lb.By)
	}

	if q.Limit != nil {
		p.sep()
		p.write("LIMIT ", strconv.FormatUint(uint64(*q.Limit), 10))
	}

	if q.Offset != nil {
		p.sep()
		p.write("OFFSET ", strconv.FormatUint(uint64(*q.Offset), 10))
	}
}

// clause writes a keyword followed by n comma separated items.
func (p *printer) clause(keyword string, n int, item func(int)) {
	p.write(keyword)
	p.indented(func() {
		for i := range n {
			if i > 0 {
				p.write(",")
			}
			p.sep()
			item(i)
		}
	})
}

func (p *printer) subquery(q *ast.Query) {
	p.write("(")
	p.indented(func() {
		p.newline()
		p.query(q)
	})
	p.newline()
	p.write(")")
}

func (p *printer) selectItem(s *ast.SelectItem) {
	p.expr(s.Expr)
	p.alias(s.Alias)
}

func (p *printer) alias(alias *ast.Ident) {
	if alias != nil {
		p.write(" AS ")
		p.ident(alias)
	}
}

func (p *printer) orderByExpr(o *ast.OrderByExpr) {
	p.expr(o.Expr)
	if o.Desc {
		p.write(" DESC")
	} else {
		p.write(" ASC")
	}
}

func (p *printer) tableWithJoins(t *ast.TableWithJoins) {
	p.tableFactor(t.Relation)
	for _, j := range t.Joins {
		p.sep()
		p.join(j)
	}
}

func (p *printer) join(j *ast.Join) {
	c := j.Operator.Constraint
	if c.Natural {
		p.write("NATURAL ")
	}

	switch j.Operator.Kind {
	case ast.InnerJoin:
		p.write("INNER JOIN ")
	case ast.LeftOuterJoin:
		p.write("LEFT JOIN ")
	case ast.RightOuterJoin:
		p.write("RIGHT JOIN ")
	case ast.FullOuterJoin:
		p.write("FULL OUTER JOIN ")
	case ast.CrossJoin:
		p.write("CROSS JOIN ")
	}

	p.tableFactor(j.Relation)

	switch {
	case c.On != nil:
		p.write(" ON ")
		p.expr(c.On)
	case len(c.Using) > 0:
		p.write(" USING (")
		for i, id := range c.Using {
			if i > 0 {
				p.write(", ")
			}
			p.ident(id)
		}
		p.write(")")
	}
}

func (p *printer) tableFactor(t ast.TableFactor) {
	switch t := t.(type) {
	case *ast.Table:
		p.objectName(t.Name)
		if t.Args != nil {
			p.functionArgs(t.Args)
		}
		p.alias(t.Alias)
	case *ast.Derived:
		p.subquery(t.Subquery)
		p.alias(t.Alias)
	case *ast.TableFunction:
		p.objectName(t.Name)
		p.functionArgs(t.Args)
		p.alias(t.Alias)
	case *ast.NativeQuery:
		p.write("(")
		for _, e := range t.Elements {
			if e.Expr != nil {
				p.expr(e.Expr)
			} else {
				p.write(e.Text)
			}
		}
		p.write(")")
		p.alias(t.Alias)
	}
}
