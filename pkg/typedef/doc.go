// Package typedef classifies parsed ClickHouse data types into the shapes the
// connector exposes: scalars, nullables, arrays, objects, and unknown types.
//
// Each scalar kind carries a fixed catalog of aggregate functions and comparison
// operators, a JSON representation, and a cast type used to force the shape of
// query output. Nested object types are named by a namespace derived from the
// collection, column, and field path so that every synthetic object in the
// published schema has a stable, unique name.
package typedef
