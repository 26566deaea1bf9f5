// Package connector serves the NDC HTTP protocol on top of the planner and a
// ClickHouse executor.
//
// Endpoints:
//   - GET /capabilities and GET /schema describe the connector and the
//     configured collections.
//   - POST /query plans the request, executes it, and returns one rowset per
//     variable set.
//   - POST /query/explain returns the generated SQL, its parameters, and the
//     ClickHouse execution plan.
//   - POST /mutation and POST /mutation/explain always answer 501.
//   - GET /health pings ClickHouse.
//
// Planning errors are reported with the status that matches their kind: bad
// requests and typecasting failures as 400, unsupported features as 501, and
// internal failures as 500.
package connector
