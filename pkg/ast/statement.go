package ast

type (
	// Statement is a complete query, ready to be printed with inline literals or to
	// have its parameters extracted.
	Statement struct {
		Query   *Query
		Format  string
		Explain bool

		extracted bool
	}

	// Query is a SELECT with its optional clauses.
	Query struct {
		With    []*WithItem
		Select  []*SelectItem
		From    []*TableWithJoins
		Where   Expr
		GroupBy []Expr
		OrderBy []*OrderByExpr
		LimitBy *LimitBy
		Limit   *uint32
		Offset  *uint32
	}

	// WithItem binds a subquery to a name: name AS (query).
	WithItem struct {
		Name  *Ident
		Query *Query
	}

	// SelectItem is a projected expression with an optional alias.
	SelectItem struct {
		Expr  Expr
		Alias *Ident
	}

	// TableWithJoins is a FROM entry.
	TableWithJoins struct {
		Relation TableFactor
		Joins    []*Join
	}

	// OrderByExpr is a sort key.
	OrderByExpr struct {
		Expr Expr
		Desc bool
	}

	// LimitBy is ClickHouse's LIMIT n [OFFSET m] BY keys clause.
	LimitBy struct {
		Limit  uint32
		Offset *uint32
		By     []Expr
	}
)

// NewStatement wraps q in a statement that returns FORMAT JSON.
func NewStatement(q *Query) *Statement {
	return &Statement{Query: q, Format: "JSON"}
}

// Extracted reports whether the statement's parameters were already extracted.
func (s *Statement) Extracted() bool {
	return s.extracted
}
