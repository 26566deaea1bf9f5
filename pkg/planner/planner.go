package planner

import (
	"github.com/pseudomuto/ndc-clickhouse/pkg/ast"
	"github.com/pseudomuto/ndc-clickhouse/pkg/config"
	"github.com/pseudomuto/ndc-clickhouse/pkg/format"
	"github.com/pseudomuto/ndc-clickhouse/pkg/ndc"
	"github.com/pseudomuto/ndc-clickhouse/pkg/typestring"
)

const (
	rowsetAlias = "rowset"
	rowsetField = "_rowset"
)

// Planner turns NDC query requests into ClickHouse statements. It only reads the
// configuration and is safe for concurrent use.
type Planner struct {
	cfg *config.ServerConfig
}

// New returns a Planner for the collections in cfg.
func New(cfg *config.ServerConfig) *Planner {
	return &Planner{cfg: cfg}
}

// Plan is a planned request.
type Plan struct {
	// Statement is the planned statement with inline parameters.
	Statement *ast.Statement
	// Rowsets is the number of rowsets the statement returns: one per variable set,
	// or one when the request has no variables.
	Rowsets int
}

// SQL returns the statement on a single line with inline parameters. It must be
// called before Parameterize.
func (p *Plan) SQL() string {
	return format.Inline(p.Statement)
}

// Pretty returns the statement across multiple lines with inline parameters, for
// explain output. It must be called before Parameterize.
func (p *Plan) Pretty() string {
	return format.New(format.Pretty).String(p.Statement)
}

// Parameterize extracts the statement's parameters. It can only be called once.
func (p *Plan) Parameterize() *ast.ParameterizedStatement {
	return ast.Extract(p.Statement)
}

// Build plans req.
//
// The statement selects one row per rowset. Each row holds a single "rowset"
// column cast to the shape of the requested rowset, so ClickHouse's JSON output
// can be passed through without reshaping:
//
//	SELECT cast(_rowset._rowset, 'Tuple(rows Array(Tuple("Title" String)))') AS "rowset"
//	FROM (...) AS _rowset
//	FORMAT JSON;
//
// Example:
//
//	plan, err := planner.New(cfg).Build(req)
//	if err != nil {
//		return err
//	}
//
//	pstmt := plan.Parameterize()
//	sql := format.Parameterized(pstmt)
func (p *Planner) Build(req *ndc.QueryRequest) (*Plan, error) {
	b := &builder{cfg: p.cfg, relationships: req.CollectionRelationships}

	rowsets := 1
	if req.Variables != nil {
		vars, err := newVariables(req.Variables)
		if err != nil {
			return nil, err
		}

		b.vars = vars
		rowsets = vars.count
	}

	rowset, err := b.rowset(req.Collection, &req.Query, req.Arguments, nil)
	if err != nil {
		return nil, err
	}

	var result ast.Expr = ast.Lit(ast.Null{})
	if req.Query.Fields != nil || req.Query.Aggregates != nil {
		castType, err := typestring.New(p.cfg, req.CollectionRelationships).RowsetTypeString(req.Collection, &req.Query)
		if err != nil {
			return nil, wrap(KindTypecasting, err, "failed to build result type for collection %q", req.Collection)
		}

		result = ast.Call("cast",
			ast.Compound(ast.Bare(rowsetField), ast.Bare(rowsetField)),
			ast.Lit(ast.String(castType)),
		)
	}

	derived := &ast.Derived{Subquery: rowset, Alias: ast.Bare(rowsetField)}
	root := &ast.Query{
		Select: []*ast.SelectItem{{Expr: result, Alias: ast.Quoted(rowsetAlias)}},
		From:   []*ast.TableWithJoins{{Relation: derived}},
	}

	if b.vars != nil {
		root.With = []*ast.WithItem{b.vars.withItem()}
		root.From = []*ast.TableWithJoins{{
			Relation: varsTable(),
			Joins:    []*ast.Join{ast.LeftJoinOn(derived, ast.Eq(varsetID(varsAlias), varsetID(rowsetField)))},
		}}
		root.OrderBy = []*ast.OrderByExpr{{Expr: varsetID(varsAlias)}}
	}

	return &Plan{Statement: ast.NewStatement(root), Rowsets: rowsets}, nil
}

// builder holds the state of a single Build call. Alias counters live here so
// that planning the same request twice yields the same SQL.
type builder struct {
	cfg           *config.ServerConfig
	relationships map[string]ndc.Relationship
	vars          *variables

	existsCount  int
	orderByCount int
	pathCount    int
	valueCount   int
}

func (b *builder) collection(alias string) (*config.Collection, error) {
	coll, err := b.cfg.Collection(alias)
	if err != nil {
		return nil, wrap(KindBadRequest, err, "failed to resolve collection")
	}

	return coll, nil
}

func (b *builder) relationship(name string) (ndc.Relationship, error) {
	rel, ok := b.relationships[name]
	if !ok {
		return ndc.Relationship{}, badRequest("unknown relationship %q", name)
	}

	return rel, nil
}

func (b *builder) variable(name string) (ast.Expr, error) {
	if b.vars == nil {
		return nil, badRequest("variable %q is referenced but the request has no variables", name)
	}
	if !b.vars.has(name) {
		return nil, badRequest("variable %q is not defined in any variable set", name)
	}

	return ast.Compound(ast.Bare(varsAlias), ast.Quoted(varPrefix+name)), nil
}

func (b *builder) nextExists() *ast.Ident {
	id := synthetic("_exists_", b.existsCount)
	b.existsCount++
	return id
}

func (b *builder) nextOrderBy() *ast.Ident {
	id := synthetic("_order_by_", b.orderByCount)
	b.orderByCount++
	return id
}

func (b *builder) nextPath() *ast.Ident {
	id := synthetic("_path_", b.pathCount)
	b.pathCount++
	return id
}

func (b *builder) nextValue() *ast.Ident {
	id := synthetic("_value_", b.valueCount)
	b.valueCount++
	return id
}
