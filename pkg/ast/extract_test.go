package ast_test

import (
	"testing"

	. "github.com/pseudomuto/ndc-clickhouse/pkg/ast"
	"github.com/pseudomuto/ndc-clickhouse/pkg/parser"
	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	t.Parallel()

	int32Type := parser.NewScalar(parser.Int32)
	stringType := parser.NewScalar(parser.String)

	build := func() *Statement {
		sub := &Query{
			Select: []*SelectItem{{Expr: Param(Number("1"), int32Type)}},
			From: []*TableWithJoins{{
				Relation: &Table{
					Name: Name(Quoted("v")),
					Args: []*FunctionArg{{Name: Quoted("arg"), Expr: Param(String("view"), stringType)}},
				},
			}},
			Where: Eq(Bare("a"), Param(String("where"), stringType)),
		}

		return NewStatement(&Query{
			With:   []*WithItem{{Name: Bare("w"), Query: &Query{Select: []*SelectItem{{Expr: Param(Number("0"), int32Type)}}}}},
			Select: []*SelectItem{{Expr: Call("f", Lit(Number("9")), Param(Null{}, parser.NewNullable(stringType)))}},
			From: []*TableWithJoins{{
				Relation: &Table{Name: Name(Bare("w"))},
				Joins: []*Join{
					LeftJoinOn(&Derived{Subquery: sub, Alias: Bare("_rel")}, Eq(Bare("b"), Param(Array{String("x")}, parser.NewArray(stringType)))),
				},
			}},
			OrderBy: []*OrderByExpr{{Expr: Param(Number("2"), int32Type)}},
		})
	}

	t.Run("numbers parameters in clause order", func(t *testing.T) {
		t.Parallel()

		stmt := build()
		require.False(t, stmt.Extracted())

		pstmt := Extract(stmt)
		require.True(t, stmt.Extracted())
		require.Same(t, stmt, pstmt.Statement())
		require.Equal(t, []QueryParameter{
			{Name: "param_p0", Value: "0"},
			{Name: "param_p1", Value: `\N`},
			{Name: "param_p2", Value: "1"},
			{Name: "param_p3", Value: "view"},
			{Name: "param_p4", Value: "where"},
			{Name: "param_p5", Value: "['x']"},
			{Name: "param_p6", Value: "2"},
		}, pstmt.Parameters)

		fn := stmt.Query.Select[0].Expr.(*Function)
		require.IsType(t, &Literal{}, fn.Args[0].Expr)
		require.Equal(t, &Placeholder{Name: "p1", Type: parser.NewNullable(stringType)}, fn.Args[1].Expr)
	})

	t.Run("is deterministic", func(t *testing.T) {
		t.Parallel()

		require.Equal(t, Extract(build()).Parameters, Extract(build()).Parameters)
	})

	t.Run("panics when extracted twice", func(t *testing.T) {
		t.Parallel()

		stmt := build()
		Extract(stmt)
		require.Panics(t, func() { Extract(stmt) })
	})

	t.Run("panics on placeholders", func(t *testing.T) {
		t.Parallel()

		stmt := NewStatement(&Query{Select: []*SelectItem{{Expr: &Placeholder{Name: "p0", Type: int32Type}}}})
		require.Panics(t, func() { Extract(stmt) })
	})

	t.Run("no parameters", func(t *testing.T) {
		t.Parallel()

		pstmt := Extract(NewStatement(&Query{Select: []*SelectItem{{Expr: Lit(Number("1"))}}}))
		require.Empty(t, pstmt.Parameters)
	})
}

func TestNewNativeQuery(t *testing.T) {
	t.Parallel()

	q, err := parser.ParseParameterizedQuery("SELECT * FROM t WHERE a = {a: Int32} AND b = {b: String};")
	require.NoError(t, err)

	nq, err := NewNativeQuery(q, Bare("_origin"), func(p *parser.Parameter) (Expr, error) {
		return Param(String(p.Name.Value), p.Type.DataType), nil
	})
	require.NoError(t, err)
	require.Len(t, nq.Elements, 4)
	require.Equal(t, "SELECT * FROM t WHERE a = ", nq.Elements[0].Text)
	require.Equal(t, Param(String("a"), parser.NewScalar(parser.Int32)), nq.Elements[1].Expr)
	require.Equal(t, " AND b = ", nq.Elements[2].Text)
}

func TestAndOr(t *testing.T) {
	t.Parallel()

	require.Nil(t, And())
	require.Nil(t, Or(nil, nil))
	require.Equal(t, Bare("a"), And(nil, Bare("a")))
	require.Equal(t, &BinaryOp{
		Left:  &BinaryOp{Left: Bare("a"), Op: OpOr, Right: Bare("b")},
		Op:    OpOr,
		Right: Bare("c"),
	}, Or(Bare("a"), Bare("b"), Bare("c")))
}
