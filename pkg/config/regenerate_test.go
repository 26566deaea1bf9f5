package config_test

import (
	"testing"

	. "github.com/pseudomuto/ndc-clickhouse/pkg/config"
	"github.com/stretchr/testify/require"
)

func TestRegenerate(t *testing.T) {
	t.Parallel()

	prev, err := ReadFile("testdata/chinook")
	require.NoError(t, err)

	next := Regenerate(prev, []IntrospectedTable{
		{
			Schema:     "chinook",
			Name:       "Artist",
			PrimaryKey: []string{"ArtistId"},
			Columns: []IntrospectedColumn{
				{Name: "ArtistId", Type: "Int32"},
				{Name: "Name", Type: "Nullable(String)"},
				{Name: "Country", Type: "LowCardinality(String)", Comment: "ISO code"},
			},
		},
		{
			Schema:    "chinook",
			Name:      "artist_by_name",
			Arguments: []IntrospectedArgument{{Name: "ArtistName", Type: "String"}},
			Columns: []IntrospectedColumn{
				{Name: "ArtistId", Type: "Int32"},
				{Name: "Name", Type: "Nullable(String)"},
			},
		},
		{
			Schema:  "chinook",
			Name:    "Track",
			Comment: "Tracks",
			Columns: []IntrospectedColumn{{Name: "TrackId", Type: "Int32"}},
		},
		{
			Schema:  "staging",
			Name:    "Track",
			Columns: []IntrospectedColumn{{Name: "TrackId", Type: "Int64"}},
		},
		{
			Schema:  "chinook",
			Name:    "AlbumsByArtist",
			Columns: []IntrospectedColumn{{Name: "x", Type: "UInt8"}},
		},
	})

	var aliases []string
	for pair := next.Tables.Oldest(); pair != nil; pair = pair.Next() {
		aliases = append(aliases, pair.Key)
	}
	require.Equal(t, []string{"Artist", "ArtistByName", "Track", "staging_Track", "chinook_AlbumsByArtist"}, aliases)

	t.Run("dropped tables are removed", func(t *testing.T) {
		_, ok := next.Tables.Get("Album")
		require.False(t, ok)
	})

	t.Run("column aliases are kept", func(t *testing.T) {
		artist, _ := next.Tables.Get("Artist")
		require.Equal(t, ReturnTypeDefinition, artist.ReturnType.Kind)
		require.Equal(t, "PK_Artist", artist.PrimaryKey.Name)
		require.Equal(t, []string{"ArtistId"}, artist.PrimaryKey.Columns)

		var columns []string
		for pair := artist.ReturnType.Columns.Oldest(); pair != nil; pair = pair.Next() {
			columns = append(columns, pair.Key)
		}
		require.Equal(t, []string{"ArtistId", "DisplayName", "Country"}, columns)

		display, _ := artist.ReturnType.Columns.Get("DisplayName")
		require.Equal(t, "Name", display.Name)

		country, _ := artist.ReturnType.Columns.Get("Country")
		require.Empty(t, country.Name)
		require.Equal(t, "ISO code", *country.Comment)
	})

	t.Run("reference return types are kept", func(t *testing.T) {
		view, _ := next.Tables.Get("ArtistByName")
		require.Equal(t, ReturnTypeTableReference, view.ReturnType.Kind)
		require.Equal(t, "Artist", view.ReturnType.TableName)

		arg, ok := view.Arguments.Get("ArtistName")
		require.True(t, ok)
		require.Equal(t, "String", arg)
	})

	t.Run("new tables", func(t *testing.T) {
		track, _ := next.Tables.Get("Track")
		require.Equal(t, "chinook", track.Schema)
		require.Equal(t, "Tracks", *track.Comment)
		require.Nil(t, track.PrimaryKey)

		staging, _ := next.Tables.Get("staging_Track")
		require.Equal(t, "staging", staging.Schema)
	})

	t.Run("queries are copied", func(t *testing.T) {
		require.Equal(t, prev.Queries.Len(), next.Queries.Len())
		q, ok := next.Queries.Get("AlbumsByArtist")
		require.True(t, ok)
		require.Equal(t, "queries/albums_by_artist.sql", q.File)
	})
}

func TestRegenerate_Empty(t *testing.T) {
	t.Parallel()

	next := Regenerate(nil, []IntrospectedTable{
		{Schema: "default", Name: "events", Columns: []IntrospectedColumn{{Name: "id", Type: "UInt64"}}},
	})

	require.Equal(t, 1, next.Tables.Len())
	require.Equal(t, 0, next.Queries.Len())
	require.Equal(t, "configuration.schema.json", next.Schema)
}
