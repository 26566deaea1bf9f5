package format

import (
	"github.com/pseudomuto/ndc-clickhouse/pkg/ast"
	"github.com/pseudomuto/ndc-clickhouse/pkg/utils"
)

func (p *printer) ident(id *ast.Ident) {
	if id.Quoted {
		p.write(utils.QuoteIdentifier(id.Value))
		return
	}

	p.write(id.Value)
}

func (p *printer) objectName(name ast.ObjectName) {
	for i, id := range name {
		if i > 0 {
			p.write(".")
		}
		p.ident(id)
	}
}

func (p *printer) exprList(exprs []ast.Expr) {
	for i, e := range exprs {
		if i > 0 {
			p.write(", ")
		}
		p.expr(e)
	}
}

func (p *printer) functionArgs(args []*ast.FunctionArg) {
	p.write("(")
	p.args(args)
	p.write(")")
}

func (p *printer) args(args []*ast.FunctionArg) {
	for i, a := range args {
		if i > 0 {
			p.write(", ")
		}
		if a.Name != nil {
			p.ident(a.Name)
			p.write("=")
		}
		p.expr(a.Expr)
		p.alias(a.Alias)
	}
}

func (p *printer) expr(e ast.Expr) {
	switch e := e.(type) {
	case *ast.Ident:
		p.ident(e)
	case *ast.CompoundIdent:
		p.objectName(e.Parts)
	case *ast.BinaryOp:
		p.expr(e.Left)
		p.write(" ", string(e.Op), " ")
		p.expr(e.Right)
	case *ast.UnaryOp:
		switch e.Op {
		case ast.OpNot:
			p.write("NOT ")
			p.expr(e.Expr)
		case ast.OpIsNull:
			p.expr(e.Expr)
			p.write(" IS NULL")
		case ast.OpIsNotNull:
			p.expr(e.Expr)
			p.write(" IS NOT NULL")
		}
	case *ast.Nested:
		p.write("(")
		p.expr(e.Expr)
		p.write(")")
	case *ast.Literal:
		p.write(ast.InlineValue(e.Value))
	case *ast.Parameter:
		p.write(ast.InlineValue(e.Value))
	case *ast.Placeholder:
		p.write("{", e.Name, ":", e.Type.String(), "}")
	case *ast.Function:
		p.function(e)
	case *ast.Lambda:
		p.write("(")
		for i, id := range e.Params {
			if i > 0 {
				p.write(", ")
			}
			p.ident(id)
		}
		p.write(") -> ")
		p.expr(e.Body)
	case *ast.List:
		p.write("(")
		p.exprList(e.Exprs)
		p.write(")")
	case *ast.Wildcard:
		p.write("*")
	}
}

func (p *printer) function(fn *ast.Function) {
	p.objectName(fn.Name)
	if fn.Distinct {
		p.write("(DISTINCT ")
		p.args(fn.Args)
		p.write(")")
	} else {
		p.functionArgs(fn.Args)
	}

	if w := fn.Over; w != nil {
		p.write(" OVER (")
		if len(w.PartitionBy) > 0 {
			p.write("PARTITION BY ")
			p.exprList(w.PartitionBy)
		}
		if len(w.OrderBy) > 0 {
			if len(w.PartitionBy) > 0 {
				p.write(" ")
			}
			p.write("ORDER BY ")
			for i, o := range w.OrderBy {
				if i > 0 {
					p.write(", ")
				}
				p.orderByExpr(o)
			}
		}
		p.write(")")
	}
}
