package config_test

import (
	"testing"

	. "github.com/pseudomuto/ndc-clickhouse/pkg/config"
	"github.com/stretchr/testify/require"
)

func TestServerConfig_Collection(t *testing.T) {
	t.Parallel()

	cfg, err := Load("testdata/chinook", ConnectionConfig{})
	require.NoError(t, err)

	tests := []struct {
		alias    string
		typeName string
		args     []string
		table    bool
	}{
		{alias: "Album", typeName: "Album", table: true},
		{alias: "ArtistByName", typeName: "Artist", args: []string{"ArtistName"}, table: true},
		{alias: "AlbumsByArtist", typeName: "Album", args: []string{"ArtistId"}},
	}

	for _, tt := range tests {
		t.Run(tt.alias, func(t *testing.T) {
			t.Parallel()

			coll, err := cfg.Collection(tt.alias)
			require.NoError(t, err)
			require.Equal(t, tt.alias, coll.Alias)
			require.Equal(t, tt.typeName, coll.TypeName)
			require.Equal(t, tt.table, coll.Table != nil)
			require.Equal(t, !tt.table, coll.Query != nil)

			var args []string
			for pair := coll.Arguments().Oldest(); pair != nil; pair = pair.Next() {
				args = append(args, pair.Key)
			}
			require.Equal(t, tt.args, args)
		})
	}

	t.Run("columns", func(t *testing.T) {
		t.Parallel()

		coll, err := cfg.Collection("Artist")
		require.NoError(t, err)

		col, err := coll.Column("DisplayName")
		require.NoError(t, err)
		require.Equal(t, "Name", col.Name)
		require.Equal(t, "Nullable(String)", col.Type.String())

		_, err = coll.Column("Name")
		require.EqualError(t, err, `unknown column "Name" in collection "Artist"`)
	})

	t.Run("procedures are not collections", func(t *testing.T) {
		t.Parallel()

		_, err := cfg.Collection("ArtistNames")
		require.EqualError(t, err, `unknown collection "ArtistNames"`)

		_, err = cfg.Collection("Nope")
		require.EqualError(t, err, `unknown collection "Nope"`)
	})
}
