package format

import (
	"io"
	"strings"

	"github.com/pseudomuto/ndc-clickhouse/pkg/ast"
)

// FormatterOptions controls formatting behavior
type FormatterOptions struct {
	// Pretty places each clause and list item on its own line and indents
	// subqueries. When false the statement is printed on a single line.
	Pretty bool
	// IndentSize specifies the number of spaces for each indent level
	IndentSize int
}

var (
	// Defaults prints statements on a single line. This is the form sent to
	// ClickHouse.
	Defaults = FormatterOptions{IndentSize: 2}

	// Pretty prints statements across multiple lines. This is the form shown in
	// explain output.
	Pretty = FormatterOptions{Pretty: true, IndentSize: 2}
)

// Formatter handles SQL statement formatting with configurable options
type Formatter struct {
	options FormatterOptions
}

// New creates a new Formatter with the specified options
func New(options FormatterOptions) *Formatter {
	return &Formatter{options: options}
}

// Format writes stmt with every parameter embedded as an inline literal.
func (f *Formatter) Format(w io.Writer, stmt *ast.Statement) error {
	_, err := io.WriteString(w, f.String(stmt))
	return err
}

// FormatParameterized writes the parameterized form of a statement, with
// {pN:Type} placeholders in place of parameter values.
func (f *Formatter) FormatParameterized(w io.Writer, stmt *ast.ParameterizedStatement) error {
	return f.Format(w, stmt.Statement())
}

// String returns the formatted statement.
func (f *Formatter) String(stmt *ast.Statement) string {
	p := &printer{options: f.options}
	p.statement(stmt)
	return p.String()
}

// Format writes stmt using the given options (convenience function)
func Format(w io.Writer, options FormatterOptions, stmt *ast.Statement) error {
	return New(options).Format(w, stmt)
}

// Inline returns stmt on a single line with inline literals.
func Inline(stmt *ast.Statement) string {
	return New(Defaults).String(stmt)
}

// Parameterized returns the parameterized statement on a single line.
func Parameterized(stmt *ast.ParameterizedStatement) string {
	return New(Defaults).String(stmt.Statement())
}

// Expr returns the SQL for a single expression.
func Expr(e ast.Expr) string {
	p := &printer{options: Defaults}
	p.expr(e)
	return p.String()
}

// printer accumulates output. Clause separators and subquery parentheses depend on
// options.Pretty; expressions are always printed inline.
type printer struct {
	options FormatterOptions
	level   int
	b       strings.Builder
}

func (p *printer) String() string {
	return p.b.String()
}

func (p *printer) write(s ...string) {
	for _, part := range s {
		p.b.WriteString(part)
	}
}

// newline starts a new line at the current level in pretty mode and writes
// nothing otherwise.
func (p *printer) newline() {
	if !p.options.Pretty {
		return
	}

	p.b.WriteByte('\n')
	p.b.WriteString(strings.Repeat(" ", p.level*p.options.IndentSize))
}

// sep separates clauses and list items: a newline in pretty mode, a space
// otherwise.
func (p *printer) sep() {
	if p.options.Pretty {
		p.newline()
		return
	}

	p.b.WriteByte(' ')
}

func (p *printer) indented(fn func()) {
	p.level++
	fn()
	p.level--
}
