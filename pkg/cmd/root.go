package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/pkg/errors"
	"github.com/pseudomuto/ndc-clickhouse/pkg/config"
	"github.com/pseudomuto/ndc-clickhouse/pkg/consts"
	"github.com/urfave/cli/v3"
)

// Version describes the build, as stamped by the release tooling.
type Version struct {
	Version   string
	Commit    string
	Timestamp string
}

// Run creates and executes the connector CLI with the given arguments.
//
// Global flags, each of which can also be supplied through its environment
// variable:
//   - --configuration: directory holding configuration.json (HASURA_CONFIGURATION_DIRECTORY)
//   - --clickhouse-url, --clickhouse-username, --clickhouse-password: connection
//     settings (CLICKHOUSE_URL, CLICKHOUSE_USERNAME, CLICKHOUSE_PASSWORD)
//   - --log-level: debug, info, warn, or error (NDC_CLICKHOUSE_LOG_LEVEL)
//
// Example usage:
//
//	# Introspect the database and write a fresh configuration
//	err := cmd.Run(ctx, version, []string{"ndc-clickhouse", "init"})
//
//	# Serve the connector on port 8080
//	err := cmd.Run(ctx, version, []string{"ndc-clickhouse", "--configuration", "/etc/connector", "serve"})
func Run(ctx context.Context, v Version, args []string) error {
	cli.VersionPrinter = func(cmd *cli.Command) {
		fmt.Fprintln(cmd.Writer, "Version:", v.Version)
		fmt.Fprintln(cmd.Writer, "Commit:", v.Commit)
		fmt.Fprintln(cmd.Writer, "Date:", v.Timestamp)
	}

	return New(v).Run(ctx, args)
}

// New returns the root command without running it.
func New(v Version) *cli.Command {
	return &cli.Command{
		Name:  "ndc-clickhouse",
		Usage: "A native data connector for ClickHouse",
		Description: `ndc-clickhouse serves the NDC protocol for a ClickHouse database. Queries
are compiled to a single SQL statement whose result is cast into the exact
shape of the requested rowsets.`,
		Version: v.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "configuration",
				Aliases: []string{"c"},
				Usage:   "the configuration directory",
				Sources: cli.EnvVars(consts.EnvConfigurationDir),
				Value:   ".",
				Config: cli.StringConfig{
					TrimSpace: true,
				},
			},
			&cli.StringFlag{
				Name:    "clickhouse-url",
				Usage:   "the ClickHouse HTTP endpoint, e.g. http://localhost:8123",
				Sources: cli.EnvVars(consts.EnvClickHouseURL),
			},
			&cli.StringFlag{
				Name:    "clickhouse-username",
				Usage:   "the ClickHouse user",
				Sources: cli.EnvVars(consts.EnvClickHouseUsername),
				Value:   "default",
			},
			&cli.StringFlag{
				Name:    "clickhouse-password",
				Usage:   "the ClickHouse password",
				Sources: cli.EnvVars(consts.EnvClickHousePassword),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "the minimum level to log (debug, info, warn, error)",
				Sources: cli.EnvVars(consts.EnvLogLevel),
				Value:   "info",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			var level slog.Level
			if err := level.UnmarshalText([]byte(cmd.String("log-level"))); err != nil {
				return ctx, errors.Wrapf(err, "invalid log level %q", cmd.String("log-level"))
			}

			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
			return ctx, nil
		},
		Commands: []*cli.Command{
			serve(),
			initCmd(),
			update(),
			validate(),
			watch(),
		},
	}
}

func connection(cmd *cli.Command) config.ConnectionConfig {
	return config.ConnectionConfig{
		URL:      cmd.String("clickhouse-url"),
		Username: cmd.String("clickhouse-username"),
		Password: cmd.String("clickhouse-password"),
	}
}

func requireConnection(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.String("clickhouse-url") == "" {
		return ctx, errors.Errorf("a ClickHouse URL is required (--clickhouse-url or %s)", consts.EnvClickHouseURL)
	}

	return ctx, nil
}
