package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pkg/errors"
	"github.com/pseudomuto/ndc-clickhouse/pkg/config"
	"github.com/pseudomuto/ndc-clickhouse/pkg/connector"
	"github.com/urfave/cli/v3"
)

// validate returns a CLI command that loads the configuration, parsing every
// type string and native query, and builds the schema from it. Every problem is
// reported, not just the first.
//
// Example usage:
//
//	ndc-clickhouse --configuration ./connector validate
func validate() *cli.Command {
	return &cli.Command{
		Name:  "validate",
		Usage: "Check the configuration for errors",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := config.Load(cmd.String("configuration"), connection(cmd))
			if err != nil {
				var verr *config.ValidationError
				if errors.As(err, &verr) {
					for _, p := range verr.Problems {
						fmt.Fprintln(cmd.Root().ErrWriter, "  -", p)
					}
				}

				return err
			}

			if _, err := connector.Schema(cfg); err != nil {
				return err
			}

			fmt.Fprintf(cmd.Root().Writer, "Configuration is valid: %d tables, %d queries\n", cfg.Tables.Len(), cfg.Queries.Len())
			return nil
		},
	}
}

// watch returns a CLI command reserved for reloading the configuration on
// change. It is accepted but does nothing yet.
func watch() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Watch the configuration for changes (not implemented)",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			slog.Warn("watch is not implemented", "configuration", cmd.String("configuration"))
			return nil
		},
	}
}
