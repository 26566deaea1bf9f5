package clickhouse

import (
	"context"
	"crypto/tls"
	"log/slog"
	"net"
	"net/url"
	"strings"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/pkg/errors"
	"github.com/pseudomuto/ndc-clickhouse/pkg/config"
	"github.com/pseudomuto/ndc-clickhouse/pkg/parser"
)

const (
	tablesQuery = `
		SELECT database, name, comment, primary_key, engine, as_select
		FROM system.tables
		WHERE database NOT IN ('system', 'information_schema', 'INFORMATION_SCHEMA')
		  AND is_temporary = 0
		  AND name NOT LIKE '.inner%'
		ORDER BY database, name
	`

	columnsQuery = `
		SELECT database, table, name, type, comment
		FROM system.columns
		WHERE database NOT IN ('system', 'information_schema', 'INFORMATION_SCHEMA')
		ORDER BY database, table, position
	`
)

// Open connects to the ClickHouse HTTP interface described by conn.
//
// Example:
//
//	conn, err := clickhouse.Open(ctx, config.ConnectionConfig{
//		URL:      "http://localhost:8123",
//		Username: "default",
//	})
//	if err != nil {
//		return err
//	}
//	defer conn.Close()
func Open(ctx context.Context, conn config.ConnectionConfig) (driver.Conn, error) {
	u, err := url.Parse(conn.URL)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid ClickHouse URL %q", conn.URL)
	}

	opts := &clickhouse.Options{
		Protocol: clickhouse.HTTP,
		Addr:     []string{hostPort(u)},
		Auth: clickhouse.Auth{
			Username: conn.Username,
			Password: conn.Password,
		},
	}
	if u.Scheme == "https" {
		opts.TLS = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	c, err := clickhouse.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open ClickHouse connection")
	}

	if err := c.Ping(ctx); err != nil {
		_ = c.Close()
		return nil, errors.Wrap(err, "failed to connect to ClickHouse")
	}

	return c, nil
}

// Introspect lists the user tables and views of the server with their columns.
// Parameterized views also report their {name: Type} arguments, discovered by
// parsing the view body.
func Introspect(ctx context.Context, conn driver.Conn) ([]config.IntrospectedTable, error) {
	version, err := Version(ctx, conn)
	if err != nil {
		return nil, err
	}
	slog.Info("Introspecting ClickHouse", "version", version.String())

	columns, err := introspectColumns(ctx, conn)
	if err != nil {
		return nil, err
	}

	rows, err := conn.Query(ctx, tablesQuery)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query tables")
	}
	defer func() { _ = rows.Close() }()

	var tables []config.IntrospectedTable
	for rows.Next() {
		var database, name, comment, primaryKey, engine, asSelect string
		if err := rows.Scan(&database, &name, &comment, &primaryKey, &engine, &asSelect); err != nil {
			return nil, errors.Wrap(err, "failed to scan table row")
		}

		table := config.IntrospectedTable{
			Schema:     database,
			Name:       name,
			Comment:    comment,
			PrimaryKey: splitPrimaryKey(primaryKey),
			Columns:    columns[database+"."+name],
		}

		if engine == "View" && version.SupportsParameterizedViews() {
			if table.Arguments, err = viewArguments(asSelect); err != nil {
				return nil, errors.Wrapf(err, "failed to parse view %s.%s", database, name)
			}
		}

		tables = append(tables, table)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error iterating table rows")
	}

	return tables, nil
}

func introspectColumns(ctx context.Context, conn driver.Conn) (map[string][]config.IntrospectedColumn, error) {
	rows, err := conn.Query(ctx, columnsQuery)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query columns")
	}
	defer func() { _ = rows.Close() }()

	columns := make(map[string][]config.IntrospectedColumn)
	for rows.Next() {
		var database, table string
		var col config.IntrospectedColumn
		if err := rows.Scan(&database, &table, &col.Name, &col.Type, &col.Comment); err != nil {
			return nil, errors.Wrap(err, "failed to scan column row")
		}

		key := database + "." + table
		columns[key] = append(columns[key], col)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error iterating column rows")
	}

	return columns, nil
}

// viewArguments returns the distinct typed parameter holes of a view body in
// order of first appearance. Identifier holes cannot be bound by value and are
// skipped.
func viewArguments(body string) ([]config.IntrospectedArgument, error) {
	if !strings.Contains(body, "{") {
		return nil, nil
	}

	q, err := parser.ParseParameterizedQuery(body)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var args []config.IntrospectedArgument
	for _, p := range q.Parameters() {
		if p.Type.Identifier || seen[p.Name.Value] {
			continue
		}

		seen[p.Name.Value] = true
		args = append(args, config.IntrospectedArgument{Name: p.Name.Value, Type: p.Type.DataType.String()})
	}

	return args, nil
}

// splitPrimaryKey splits the primary_key expression of system.tables, such as
// "a, b", into column names.
func splitPrimaryKey(expr string) []string {
	var cols []string
	for _, col := range strings.Split(expr, ",") {
		if col = strings.TrimSpace(col); col != "" {
			cols = append(cols, col)
		}
	}

	return cols
}

func hostPort(u *url.URL) string {
	if u.Port() != "" {
		return u.Host
	}

	port := "8123"
	if u.Scheme == "https" {
		port = "8443"
	}

	return net.JoinHostPort(u.Hostname(), port)
}
