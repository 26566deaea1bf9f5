// Package config loads, validates, and regenerates the connector configuration.
//
// The configuration directory holds a configuration.json document (or a
// configuration.yaml variant), the SQL files of any native queries, and the
// configuration.schema.json file describing the document. The document maps
// aliases, the names clients see, to physical tables and to native queries:
//
//	{
//	  "tables": {
//	    "Album": {
//	      "name": "Album",
//	      "schema": "chinook",
//	      "primary_key": {"name": "PK_Album", "columns": ["AlbumId"]},
//	      "return_type": {"kind": "definition", "columns": {"AlbumId": "Int32", "Title": "String"}}
//	    }
//	  },
//	  "queries": {
//	    "AlbumsByArtist": {
//	      "exposed_as": "collection",
//	      "file": "queries/albums_by_artist.sql",
//	      "return_type": {"kind": "table_reference", "table_name": "Album"}
//	    }
//	  }
//	}
//
// Load parses every type string and native query up front and reports all
// problems at once through *ValidationError. Return type references between tables
// and queries are kept by name and resolved on use with ResolveReturnType.
//
// Regenerate merges freshly introspected tables into an existing document while
// keeping table and column aliases, reference return types, and native queries
// intact.
package config
