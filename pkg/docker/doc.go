// Package docker runs a disposable ClickHouse server for integration tests.
//
// A Container wraps the testcontainers-go ClickHouse module. It can seed the
// server with init scripts and mount a config.d directory, and reports the
// connection settings the connector needs to reach the server over HTTP.
//
// Example:
//
//	ch := docker.New(docker.Options{InitScripts: []string{"testdata/chinook.sql"}})
//	if err := ch.Start(ctx); err != nil {
//		t.Fatal(err)
//	}
//	t.Cleanup(func() { _ = ch.Stop(context.Background()) })
//
//	conn, err := ch.Connection(ctx)
//	client := clickhouse.NewClient(conn, clickhouse.NewState(0))
package docker
