package connector

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pseudomuto/ndc-clickhouse/pkg/ast"
	"github.com/pseudomuto/ndc-clickhouse/pkg/config"
	"github.com/pseudomuto/ndc-clickhouse/pkg/ndc"
	"github.com/pseudomuto/ndc-clickhouse/pkg/planner"
)

type (
	// Executor runs planned statements. *clickhouse.Client satisfies it.
	Executor interface {
		Query(ctx context.Context, pstmt *ast.ParameterizedStatement, rowsets int) ([]ndc.RowSet, error)
		Explain(ctx context.Context, pstmt *ast.ParameterizedStatement) (string, error)
		Ping(ctx context.Context) error
	}

	// Options configures a Server.
	Options struct {
		// ServiceTokenSecret, when set, must be presented as a bearer token on every
		// endpoint except /health.
		ServiceTokenSecret string
	}

	// Server serves the NDC endpoints for a single configuration.
	Server struct {
		cfg     *config.ServerConfig
		exec    Executor
		planner *planner.Planner
		schema  *ndc.SchemaResponse
		options Options
	}
)

// New returns a Server for cfg. The schema is computed up front, so an
// unresolvable return type is reported here rather than on the first request.
//
// Example:
//
//	client := clickhouse.NewClient(cfg.Connection, clickhouse.NewState(0))
//	srv, err := connector.New(cfg, client, connector.Options{})
//	if err != nil {
//		return err
//	}
//
//	return http.ListenAndServe(":8080", srv.Handler())
func New(cfg *config.ServerConfig, exec Executor, opts Options) (*Server, error) {
	schema, err := Schema(cfg)
	if err != nil {
		return nil, err
	}

	return &Server{
		cfg:     cfg,
		exec:    exec,
		planner: planner.New(cfg),
		schema:  schema,
		options: opts,
	}, nil
}

// Handler returns the HTTP handler for the connector.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(authenticate(s.options.ServiceTokenSecret))

		r.Get("/capabilities", s.handleCapabilities)
		r.Get("/schema", s.handleSchema)
		r.Post("/query", s.handleQuery)
		r.Post("/query/explain", s.handleQueryExplain)
		r.Post("/mutation", s.handleMutation)
		r.Post("/mutation/explain", s.handleMutation)
	})

	return r
}
