// Package cmd implements the ndc-clickhouse command line.
//
// Commands:
//   - serve: load the configuration and serve the NDC endpoints
//   - init: introspect the database and write a new configuration
//   - update: re-introspect the database, keeping existing aliases and queries
//   - validate: report every problem in the configuration
//   - watch: accepted for compatibility, does nothing yet
//
// Connection settings and the configuration directory are global flags that
// fall back to the CLICKHOUSE_* and HASURA_* environment variables.
package cmd
