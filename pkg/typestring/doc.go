// Package typestring builds the ClickHouse type that the root of a planned query
// is cast to.
//
// ClickHouse renders a named tuple as a JSON object, so casting the rowset tuple
// to a type whose element names are the requested aliases produces a response
// body that already has the shape of an NDC rowset:
//
//	Tuple(rows Array(Tuple("Title" String, "Artist" Tuple(rows Array(...)))), aggregates Tuple("count" UInt32))
//
// The builder walks fields and aggregates in request order, so tuple positions
// line up with the columns the planner selects.
package typestring
