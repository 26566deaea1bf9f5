package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/pseudomuto/ndc-clickhouse/pkg/config"
	"github.com/pseudomuto/ndc-clickhouse/pkg/consts"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	app := New(Version{Version: "test"})
	app.Writer = &stdout
	app.ErrWriter = &stderr

	err := app.Run(context.Background(), append([]string{"ndc-clickhouse"}, args...))
	return stdout.String(), stderr.String(), err
}

func chinookTables() []config.IntrospectedTable {
	return []config.IntrospectedTable{
		{
			Schema:     "chinook",
			Name:       "Album",
			PrimaryKey: []string{"AlbumId"},
			Columns: []config.IntrospectedColumn{
				{Name: "AlbumId", Type: "Int32"},
				{Name: "Title", Type: "String"},
			},
		},
		{
			Schema: "chinook",
			Name:   "artist_by_name",
			Columns: []config.IntrospectedColumn{
				{Name: "ArtistId", Type: "Int32"},
				{Name: "Name", Type: "Nullable(String)"},
			},
			Arguments: []config.IntrospectedArgument{{Name: "ArtistName", Type: "String"}},
		},
	}
}

func TestValidateCommand(t *testing.T) {
	t.Parallel()

	t.Run("valid", func(t *testing.T) {
		t.Parallel()

		out, _, err := run(t, "--configuration", "../planner/testdata", "validate")
		require.NoError(t, err)
		require.Equal(t, "Configuration is valid: 4 tables, 1 queries\n", out)
	})

	t.Run("invalid", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, consts.ConfigFileName), []byte(`{
			"tables": {
				"Bad": {"name": "bad", "schema": "s", "return_type": {"kind": "definition", "columns": {"a": "Nope(", "b": "Int32"}}},
				"Ref": {"name": "ref", "schema": "s", "return_type": {"kind": "table_reference", "table_name": "Missing"}}
			},
			"queries": {}
		}`), consts.ModeFile))

		_, errOut, err := run(t, "--configuration", dir, "validate")

		var verr *config.ValidationError
		require.True(t, errors.As(err, &verr))
		require.Len(t, verr.Problems, 2)
		require.Contains(t, errOut, `table "Bad" column "a"`)
		require.Contains(t, errOut, `unknown table "Missing"`)
	})
}

func TestWatchCommand(t *testing.T) {
	t.Parallel()

	_, _, err := run(t, "watch")
	require.NoError(t, err)
}

func TestRootCommand_InvalidLogLevel(t *testing.T) {
	t.Parallel()

	_, _, err := run(t, "--log-level", "loud", "watch")
	require.ErrorContains(t, err, `invalid log level "loud"`)
}

func TestCommands_RequireConnection(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"serve", "init", "update"} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, _, err := run(t, "--configuration", t.TempDir(), name)
			require.ErrorContains(t, err, "a ClickHouse URL is required")
		})
	}
}

func TestConnection_FromEnvironment(t *testing.T) {
	t.Setenv(consts.EnvClickHouseURL, "http://clickhouse:8123")
	t.Setenv(consts.EnvClickHouseUsername, "reader")
	t.Setenv(consts.EnvClickHousePassword, "s3cret")

	var got config.ConnectionConfig
	app := New(Version{})
	app.Commands[len(app.Commands)-1].Action = func(_ context.Context, cmd *cli.Command) error {
		got = connection(cmd)
		return nil
	}

	require.NoError(t, app.Run(context.Background(), []string{"ndc-clickhouse", "watch"}))
	require.Equal(t, config.ConnectionConfig{URL: "http://clickhouse:8123", Username: "reader", Password: "s3cret"}, got)
}

func TestInitCommand_ExistingConfiguration(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, config.WriteFile(dir, config.NewFile()))

	_, _, err := run(t, "--clickhouse-url", "http://localhost:8123", "--configuration", dir, "init")
	require.ErrorContains(t, err, "already exists")
}

func TestRegenerate(t *testing.T) {
	t.Parallel()

	fake := func(context.Context, config.ConnectionConfig) ([]config.IntrospectedTable, error) {
		return chinookTables(), nil
	}

	t.Run("fresh", func(t *testing.T) {
		t.Parallel()

		f, err := regenerate(context.Background(), config.NewFile(), config.ConnectionConfig{}, fake)
		require.NoError(t, err)

		var aliases []string
		for pair := f.Tables.Oldest(); pair != nil; pair = pair.Next() {
			aliases = append(aliases, pair.Key)
		}
		require.Equal(t, []string{"Album", "artist_by_name"}, aliases)

		dir := t.TempDir()
		require.NoError(t, config.WriteFile(dir, f))

		cfg, err := config.Load(dir, config.ConnectionConfig{})
		require.NoError(t, err)

		view, ok := cfg.Table("artist_by_name")
		require.True(t, ok)
		_, ok = view.Arguments.Get("ArtistName")
		require.True(t, ok)
	})

	t.Run("keeps aliases", func(t *testing.T) {
		t.Parallel()

		prev := config.NewFile()
		prev.Tables.Set("Albums", config.TableFile{
			Name:       "Album",
			Schema:     "chinook",
			ReturnType: config.ReturnType{Kind: config.ReturnTypeDefinition},
		})

		f, err := regenerate(context.Background(), prev, config.ConnectionConfig{}, fake)
		require.NoError(t, err)

		_, ok := f.Tables.Get("Albums")
		require.True(t, ok)
		_, ok = f.Tables.Get("Album")
		require.False(t, ok)
	})

	t.Run("introspection failure", func(t *testing.T) {
		t.Parallel()

		failing := func(context.Context, config.ConnectionConfig) ([]config.IntrospectedTable, error) {
			return nil, errors.New("connection refused")
		}

		_, err := regenerate(context.Background(), config.NewFile(), config.ConnectionConfig{}, failing)
		require.ErrorContains(t, err, "connection refused")
	})
}

func TestListen_StopsWithContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, listen(ctx, "127.0.0.1:0", nil))
}
