package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/pseudomuto/ndc-clickhouse/pkg/clickhouse"
	"github.com/pseudomuto/ndc-clickhouse/pkg/config"
	"github.com/pseudomuto/ndc-clickhouse/pkg/consts"
	"github.com/urfave/cli/v3"
)

// introspector lists the tables of the database behind conn.
type introspector func(ctx context.Context, conn config.ConnectionConfig) ([]config.IntrospectedTable, error)

// initCmd returns a CLI command that introspects the database and writes a new
// configuration. It refuses to overwrite an existing configuration unless
// --force is given.
//
// Example usage:
//
//	ndc-clickhouse --clickhouse-url http://localhost:8123 init
func initCmd() *cli.Command {
	return &cli.Command{
		Name:   "init",
		Usage:  "Create a configuration by introspecting the database",
		Before: requireConnection,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "force",
				Usage: "overwrite an existing configuration",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			dir := cmd.String("configuration")
			if !cmd.Bool("force") {
				for _, name := range []string{consts.ConfigFileName, consts.ConfigYAMLFileName} {
					if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
						return errors.Errorf("%s already exists, use update or --force", filepath.Join(dir, name))
					}
				}
			}

			f, err := regenerate(ctx, config.NewFile(), connection(cmd), introspect)
			if err != nil {
				return err
			}

			return write(cmd, dir, f)
		},
	}
}

// update returns a CLI command that re-introspects the database and rewrites
// the configuration, keeping the aliases and native queries of the existing one.
//
// Example usage:
//
//	ndc-clickhouse --configuration ./connector update
func update() *cli.Command {
	return &cli.Command{
		Name:   "update",
		Usage:  "Refresh the configuration from the database",
		Before: requireConnection,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			dir := cmd.String("configuration")

			prev, err := config.ReadFile(dir)
			if err != nil {
				return err
			}

			f, err := regenerate(ctx, prev, connection(cmd), introspect)
			if err != nil {
				return err
			}

			return write(cmd, dir, f)
		},
	}
}

func regenerate(ctx context.Context, prev *config.File, conn config.ConnectionConfig, fn introspector) (*config.File, error) {
	tables, err := fn(ctx, conn)
	if err != nil {
		return nil, err
	}

	return config.Regenerate(prev, tables), nil
}

func write(cmd *cli.Command, dir string, f *config.File) error {
	if err := config.WriteFile(dir, f); err != nil {
		return err
	}

	fmt.Fprintf(cmd.Root().Writer, "Wrote %d tables and %d queries to %s\n",
		f.Tables.Len(), f.Queries.Len(), filepath.Join(dir, consts.ConfigFileName))
	return nil
}

func introspect(ctx context.Context, conn config.ConnectionConfig) ([]config.IntrospectedTable, error) {
	db, err := clickhouse.Open(ctx, conn)
	if err != nil {
		return nil, err
	}
	defer func() { _ = db.Close() }()

	return clickhouse.Introspect(ctx, db)
}
