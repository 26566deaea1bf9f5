package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/pseudomuto/ndc-clickhouse/pkg/clickhouse"
	"github.com/pseudomuto/ndc-clickhouse/pkg/config"
	"github.com/pseudomuto/ndc-clickhouse/pkg/connector"
	"github.com/pseudomuto/ndc-clickhouse/pkg/consts"
	"github.com/urfave/cli/v3"
)

const shutdownTimeout = 10 * time.Second

// serve returns a CLI command that loads the configuration and serves the NDC
// endpoints until the context is cancelled.
//
// Example usage:
//
//	# Serve on the default port
//	ndc-clickhouse --clickhouse-url http://localhost:8123 serve
//
//	# Require a bearer token
//	HASURA_SERVICE_TOKEN_SECRET=s3cret ndc-clickhouse serve --port 9090
func serve() *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "Serve the connector",
		Before: requireConnection,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "the port to listen on",
				Sources: cli.EnvVars(consts.EnvConnectorPort),
				Value:   consts.DefaultPort,
			},
			&cli.StringFlag{
				Name:    "service-token-secret",
				Usage:   "a bearer token callers must present",
				Sources: cli.EnvVars(consts.EnvServiceTokenSecret),
			},
			&cli.DurationFlag{
				Name:  "query-timeout",
				Usage: "the maximum time a single ClickHouse request may take",
				Value: clickhouse.DefaultTimeout,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := config.Load(cmd.String("configuration"), connection(cmd))
			if err != nil {
				return err
			}

			client := clickhouse.NewClient(cfg.Connection, clickhouse.NewState(cmd.Duration("query-timeout")))
			srv, err := connector.New(cfg, client, connector.Options{
				ServiceTokenSecret: cmd.String("service-token-secret"),
			})
			if err != nil {
				return err
			}

			addr := net.JoinHostPort("", fmt.Sprint(cmd.Int("port")))
			return listen(ctx, addr, srv.Handler())
		},
	}
}

// listen serves handler on addr and shuts down gracefully once ctx is done.
func listen(ctx context.Context, addr string, handler http.Handler) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		slog.Info("Serving connector", "addr", addr)
		errc <- server.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return errors.Wrap(err, "server stopped")
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "failed to shut down server")
	}

	return nil
}
