package format_test

import (
	"bytes"
	"testing"

	"github.com/pseudomuto/ndc-clickhouse/pkg/ast"
	. "github.com/pseudomuto/ndc-clickhouse/pkg/format"
	"github.com/pseudomuto/ndc-clickhouse/pkg/parser"
	"github.com/pseudomuto/ndc-clickhouse/pkg/utils"
	"github.com/stretchr/testify/require"
	"gotest.tools/v3/golden"
)

const compactSample = `WITH _vars AS (SELECT * FROM format(JSONColumns, '{"_varset_id":[1]}')) ` +
	`SELECT cast(_rowset._rowset, 'Tuple(rows Array(Tuple("a" Int32)))') AS "rowset" ` +
	`FROM _vars LEFT JOIN (SELECT _origin."AlbumId" AS "_field_id" FROM "public"."Album" AS _origin ` +
	`WHERE _origin."ArtistId" = 1 LIMIT 10) AS _rowset ON _vars._varset_id = _rowset._varset_id ` +
	`ORDER BY _vars._varset_id ASC FORMAT JSON;`

func sampleStatement() *ast.Statement {
	rowset := &ast.Query{
		Select: []*ast.SelectItem{
			{Expr: ast.Compound(ast.Bare("_origin"), ast.Quoted("AlbumId")), Alias: ast.Quoted("_field_id")},
		},
		From: []*ast.TableWithJoins{{
			Relation: &ast.Table{Name: ast.Name(ast.Quoted("public"), ast.Quoted("Album")), Alias: ast.Bare("_origin")},
		}},
		Where: ast.Eq(
			ast.Compound(ast.Bare("_origin"), ast.Quoted("ArtistId")),
			ast.Param(ast.Number("1"), parser.NewScalar(parser.Int32)),
		),
		Limit: utils.Ptr(uint32(10)),
	}

	vars := &ast.Query{
		Select: []*ast.SelectItem{{Expr: &ast.Wildcard{}}},
		From: []*ast.TableWithJoins{{
			Relation: &ast.TableFunction{
				Name: ast.Name(ast.Bare("format")),
				Args: []*ast.FunctionArg{
					{Expr: ast.Bare("JSONColumns")},
					{Expr: ast.Lit(ast.String(`{"_varset_id":[1]}`))},
				},
			},
		}},
	}

	varsetID := func(rel string) ast.Expr {
		return ast.Compound(ast.Bare(rel), ast.Bare("_varset_id"))
	}

	return ast.NewStatement(&ast.Query{
		With: []*ast.WithItem{{Name: ast.Bare("_vars"), Query: vars}},
		Select: []*ast.SelectItem{{
			Expr: ast.Call(
				"cast",
				ast.Compound(ast.Bare("_rowset"), ast.Bare("_rowset")),
				ast.Lit(ast.String(`Tuple(rows Array(Tuple("a" Int32)))`)),
			),
			Alias: ast.Quoted("rowset"),
		}},
		From: []*ast.TableWithJoins{{
			Relation: &ast.Table{Name: ast.Name(ast.Bare("_vars"))},
			Joins: []*ast.Join{
				ast.LeftJoinOn(
					&ast.Derived{Subquery: rowset, Alias: ast.Bare("_rowset")},
					ast.Eq(varsetID("_vars"), varsetID("_rowset")),
				),
			},
		}},
		OrderBy: []*ast.OrderByExpr{{Expr: varsetID("_vars")}},
	})
}

func TestFormatter(t *testing.T) {
	t.Parallel()

	t.Run("compact", func(t *testing.T) {
		t.Parallel()

		require.Equal(t, compactSample, Inline(sampleStatement()))
	})

	t.Run("pretty", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		require.NoError(t, Format(&buf, Pretty, sampleStatement()))
		golden.Assert(t, buf.String()+"\n", "pretty.sql")
	})

	t.Run("explain", func(t *testing.T) {
		t.Parallel()

		stmt := ast.NewStatement(&ast.Query{Select: []*ast.SelectItem{{Expr: ast.Lit(ast.Number("1"))}}})
		stmt.Explain = true
		require.Equal(t, "EXPLAIN SELECT 1 FORMAT JSON;", Inline(stmt))

		stmt.Format = ""
		require.Equal(t, "EXPLAIN SELECT 1;", Inline(stmt))
	})

	t.Run("parameterized", func(t *testing.T) {
		t.Parallel()

		pstmt := ast.Extract(sampleStatement())
		require.Equal(t, []ast.QueryParameter{{Name: "param_p0", Value: "1"}}, pstmt.Parameters)

		var buf bytes.Buffer
		require.NoError(t, New(Defaults).FormatParameterized(&buf, pstmt))
		require.Contains(t, buf.String(), `WHERE _origin."ArtistId" = {p0:Int32} LIMIT 10`)
		require.Equal(t, buf.String(), Parameterized(pstmt))
	})
}

func TestFormatter_Clauses(t *testing.T) {
	t.Parallel()

	col := func(name string) ast.Expr {
		return ast.Compound(ast.Bare("_row"), ast.Quoted(name))
	}

	tests := []struct {
		name  string
		query *ast.Query
		want  string
	}{
		{
			name: "group by with limit by",
			query: &ast.Query{
				Select:  []*ast.SelectItem{{Expr: col("a")}, {Expr: ast.Call("count"), Alias: ast.Quoted("n")}},
				From:    []*ast.TableWithJoins{{Relation: &ast.Table{Name: ast.Name(ast.Bare("t")), Alias: ast.Bare("_row")}}},
				GroupBy: []ast.Expr{col("a")},
				OrderBy: []*ast.OrderByExpr{{Expr: col("a"), Desc: true}, {Expr: col("b")}},
				LimitBy: &ast.LimitBy{Limit: 5, Offset: utils.Ptr(uint32(2)), By: []ast.Expr{col("a")}},
			},
			want: `SELECT _row."a", count() AS "n" FROM t AS _row GROUP BY _row."a" ORDER BY _row."a" DESC, _row."b" ASC LIMIT 5 OFFSET 2 BY _row."a"`,
		},
		{
			name: "limit and offset",
			query: &ast.Query{
				Select: []*ast.SelectItem{{Expr: &ast.Wildcard{}}},
				From:   []*ast.TableWithJoins{{Relation: &ast.Table{Name: ast.Name(ast.Bare("t"))}}},
				Limit:  utils.Ptr(uint32(10)),
				Offset: utils.Ptr(uint32(20)),
			},
			want: "SELECT * FROM t LIMIT 10 OFFSET 20",
		},
		{
			name: "joins",
			query: &ast.Query{
				Select: []*ast.SelectItem{{Expr: &ast.Wildcard{}}},
				From: []*ast.TableWithJoins{{
					Relation: &ast.Table{Name: ast.Name(ast.Bare("a"))},
					Joins: []*ast.Join{
						ast.InnerJoinOn(&ast.Table{Name: ast.Name(ast.Bare("b"))}, ast.Eq(ast.Bare("x"), ast.Bare("y"))),
						ast.CrossJoinOf(&ast.Table{Name: ast.Name(ast.Bare("c"))}),
						{
							Relation: &ast.Table{Name: ast.Name(ast.Bare("d"))},
							Operator: ast.JoinOperator{Kind: ast.FullOuterJoin, Constraint: ast.JoinConstraint{Using: []*ast.Ident{ast.Bare("k"), ast.Quoted("j")}}},
						},
						{
							Relation: &ast.Table{Name: ast.Name(ast.Bare("e"))},
							Operator: ast.JoinOperator{Kind: ast.RightOuterJoin, Constraint: ast.JoinConstraint{On: ast.Eq(ast.Bare("x"), ast.Bare("z"))}},
						},
					},
				}},
			},
			want: `SELECT * FROM a INNER JOIN b ON x = y CROSS JOIN c FULL OUTER JOIN d USING (k, "j") RIGHT JOIN e ON x = z`,
		},
		{
			name: "parameterized view",
			query: &ast.Query{
				Select: []*ast.SelectItem{{Expr: &ast.Wildcard{}}},
				From: []*ast.TableWithJoins{{
					Relation: &ast.Table{
						Name:  ast.Name(ast.Quoted("default"), ast.Quoted("artist_by_name")),
						Args:  []*ast.FunctionArg{{Name: ast.Quoted("ArtistName"), Expr: ast.Lit(ast.String("AC/DC"))}},
						Alias: ast.Bare("_origin"),
					},
				}},
			},
			want: `SELECT * FROM "default"."artist_by_name"("ArtistName"='AC/DC') AS _origin`,
		},
		{
			name: "native query",
			query: &ast.Query{
				Select: []*ast.SelectItem{{Expr: &ast.Wildcard{}}},
				From: []*ast.TableWithJoins{{
					Relation: &ast.NativeQuery{
						Elements: []ast.NativeQueryElement{
							{Text: "SELECT * FROM albums WHERE artist = "},
							{Expr: ast.Lit(ast.Number("7"))},
						},
						Alias: ast.Bare("_origin"),
					},
				}},
			},
			want: "SELECT * FROM (SELECT * FROM albums WHERE artist = 7) AS _origin",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			stmt := &ast.Statement{Query: tt.query}
			require.Equal(t, tt.want+";", Inline(stmt))
		})
	}
}

func TestExpr(t *testing.T) {
	t.Parallel()

	x := ast.Quoted("x")
	tests := []struct {
		name string
		expr ast.Expr
		want string
	}{
		{"quoted identifier", ast.Quoted(`we"ird`), `"we\"ird"`},
		{"not", &ast.UnaryOp{Op: ast.OpNot, Expr: &ast.Nested{Expr: ast.Eq(x, ast.Lit(ast.Number("1")))}}, `NOT ("x" = 1)`},
		{"is null", &ast.UnaryOp{Op: ast.OpIsNull, Expr: x}, `"x" IS NULL`},
		{"is not null", &ast.UnaryOp{Op: ast.OpIsNotNull, Expr: x}, `"x" IS NOT NULL`},
		{"and", ast.And(ast.Eq(x, ast.Bare("a")), nil, &ast.BinaryOp{Left: x, Op: ast.OpLike, Right: ast.Lit(ast.String("%a"))}), `"x" = a AND "x" LIKE '%a'`},
		{"in", &ast.BinaryOp{Left: x, Op: ast.OpNotIn, Right: ast.Lit(ast.Array{ast.String("a"), ast.Null{}})}, `"x" NOT IN ['a', NULL]`},
		{"inline parameter", ast.Param(ast.String("it's"), parser.NewScalar(parser.String)), `'it\'s'`},
		{"placeholder", &ast.Placeholder{Name: "p3", Type: parser.MustParseDataType("Array(Nullable(String))")}, "{p3:Array(Nullable(String))}"},
		{"distinct", &ast.Function{Name: ast.Name(ast.Bare("count")), Args: []*ast.FunctionArg{{Expr: x}}, Distinct: true}, `count(DISTINCT "x")`},
		{"lambda", ast.Call("arrayExists", &ast.Lambda{Params: []*ast.Ident{ast.Bare("e")}, Body: ast.Eq(ast.Bare("e"), ast.Lit(ast.Boolean(true)))}, x), `arrayExists((e) -> e = true, "x")`},
		{"list", &ast.List{Exprs: []ast.Expr{ast.Bare("a"), ast.Bare("b")}}, "(a, b)"},
		{
			"window",
			&ast.Function{
				Name: ast.Name(ast.Bare("row_number")),
				Over: &ast.WindowSpec{
					PartitionBy: []ast.Expr{ast.Bare("a")},
					OrderBy:     []*ast.OrderByExpr{{Expr: ast.Bare("b"), Desc: true}},
				},
			},
			"row_number() OVER (PARTITION BY a ORDER BY b DESC)",
		},
		{"tuple literal", ast.Lit(ast.Tuple{ast.Number("1"), ast.Map{{Key: ast.String("k"), Value: ast.Boolean(false)}}}), "(1, {'k': false})"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tt.want, Expr(tt.expr))
		})
	}
}
