// Package ast is an in-memory model of the ClickHouse SELECT statements emitted by
// the planner.
//
// A statement can be rendered two ways. Printed as built (see package format),
// every Parameter is embedded as an escaped literal, which is what explain output
// shows. Passed through Extract, every Parameter is replaced by a {pN:Type}
// placeholder and its value is returned separately for use as an HTTP query
// parameter. Extract mutates the statement and may only run once per statement.
//
// Identifiers carry their quoting: Bare names are printed as-is and are reserved
// for synthetic aliases such as _origin or _row; Quoted names are printed in
// double quotes and are used for anything derived from configuration or requests.
package ast
