// Package planner compiles NDC query requests into ClickHouse statements.
//
// A request is planned bottom up. Every collection read becomes a pair of
// subqueries: a row subquery selecting one row per matching record from the
// collection (aliased _origin), and a rowset subquery folding those rows into a
// single _rowset value per group. Groups are keyed by the relationship columns
// that led to the collection and, when the request has variables, by the variable
// set id. Relationship fields are rowset subqueries joined onto the row subquery
// of their parent.
//
// Predicates and sort keys that traverse relationships are computed by keyed
// subqueries (_exists_N and _order_by_N) that yield at most one row per key, so
// joining them never changes the number of rows of the collection being read.
//
// Values supplied by the request are embedded as typed parameters. They are
// printed inline by format.Inline and turned into {pN:Type} placeholders by
// ast.Extract.
package planner
