package connector_test

import (
	"testing"

	"github.com/pseudomuto/ndc-clickhouse/pkg/config"
	. "github.com/pseudomuto/ndc-clickhouse/pkg/connector"
	"github.com/pseudomuto/ndc-clickhouse/pkg/ndc"
	"github.com/stretchr/testify/require"
)

func TestSchema(t *testing.T) {
	t.Parallel()

	schema, err := Schema(loadConfig(t))
	require.NoError(t, err)

	collections := make(map[string]ndc.CollectionInfo)
	var names []string
	for _, c := range schema.Collections {
		names = append(names, c.Name)
		collections[c.Name] = c
	}
	require.Equal(t, []string{"Album", "Artist", "Track", "ArtistByName", "AlbumsByArtist"}, names)
	require.Empty(t, schema.Functions)
	require.Empty(t, schema.Procedures)

	t.Run("collections", func(t *testing.T) {
		t.Parallel()

		view := collections["ArtistByName"]
		require.Equal(t, "Artist", view.Type)
		arg, ok := view.Arguments.Get("ArtistName")
		require.True(t, ok)
		require.Equal(t, ndc.NamedType("String"), arg.Type)

		query := collections["AlbumsByArtist"]
		require.Equal(t, "Album", query.Type)
		arg, ok = query.Arguments.Get("ArtistId")
		require.True(t, ok)
		require.Equal(t, ndc.NamedType("Int32"), arg.Type)

		require.Equal(t, 0, collections["Album"].Arguments.Len())
	})

	t.Run("object types", func(t *testing.T) {
		t.Parallel()

		var objects []string
		for pair := schema.ObjectTypes.Oldest(); pair != nil; pair = pair.Next() {
			objects = append(objects, pair.Key)
		}
		require.Equal(t, []string{"Album", "Artist", "Track"}, objects)

		artist, ok := schema.ObjectTypes.Get("Artist")
		require.True(t, ok)
		name, ok := artist.Fields.Get("DisplayName")
		require.True(t, ok)
		require.Equal(t, ndc.NullableType(ndc.NamedType("String")), name.Type)

		track, ok := schema.ObjectTypes.Get("Track")
		require.True(t, ok)
		tags, ok := track.Fields.Get("Tags")
		require.True(t, ok)
		require.Equal(t, ndc.ArrayType(ndc.NamedType("String")), tags.Type)
	})

	t.Run("scalar types", func(t *testing.T) {
		t.Parallel()

		for _, name := range []string{"Int32", "String", "UInt32"} {
			_, ok := schema.ScalarTypes.Get(name)
			require.True(t, ok, name)
		}
	})
}

func TestSchema_Procedures(t *testing.T) {
	t.Parallel()

	f, err := config.ReadFile("../planner/testdata")
	require.NoError(t, err)

	f.Queries.Set("RefreshAlbums", config.QueryFile{
		ExposedAs:  config.ExposedAsProcedure,
		File:       "queries/albums_by_artist.sql",
		ReturnType: config.ReturnType{Kind: config.ReturnTypeQueryReference, QueryName: "AlbumsByArtist"},
	})

	cfg, err := config.Build(f, "../planner/testdata", config.ConnectionConfig{})
	require.NoError(t, err)

	schema, err := Schema(cfg)
	require.NoError(t, err)
	require.Len(t, schema.Procedures, 1)

	proc := schema.Procedures[0]
	require.Equal(t, "RefreshAlbums", proc.Name)
	require.Equal(t, ndc.ArrayType(ndc.NamedType("Album")), proc.ResultType)
	_, ok := proc.Arguments.Get("ArtistId")
	require.True(t, ok)

	for _, c := range schema.Collections {
		require.NotEqual(t, "RefreshAlbums", c.Name)
	}
}
