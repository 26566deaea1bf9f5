// Package clickhouse talks to a ClickHouse server on behalf of the connector.
//
// Two paths are provided. Client executes planned statements over the HTTP
// interface, sending the statement as the POST body and each extracted parameter
// as a param_<name> query value, and decodes the FORMAT JSON response into one
// ndc.RowSet per variable set. Introspect uses the clickhouse-go driver to read
// system.tables and system.columns so that a configuration can be generated or
// refreshed from a live server.
//
// Example usage:
//
//	state := clickhouse.NewState(0)
//	client := clickhouse.NewClient(cfg.Connection, state)
//
//	plan, err := planner.New(cfg).Build(req)
//	if err != nil {
//		return err
//	}
//
//	rowsets, err := client.Query(ctx, plan.Parameterize(), plan.Rowsets)
//	if err != nil {
//		return err
//	}
//
// Introspection:
//
//	conn, err := clickhouse.Open(ctx, cfg.Connection)
//	if err != nil {
//		return err
//	}
//	defer conn.Close()
//
//	tables, err := clickhouse.Introspect(ctx, conn)
package clickhouse
