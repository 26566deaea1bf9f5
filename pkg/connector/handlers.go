package connector

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/pkg/errors"
	"github.com/pseudomuto/ndc-clickhouse/pkg/ndc"
	"github.com/pseudomuto/ndc-clickhouse/pkg/planner"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Keys of the explain response details.
const (
	DetailSQLQuery      = "SQL Query"
	DetailParameters    = "Parameters"
	DetailExecutionPlan = "Execution Plan"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.exec.Ping(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, errors.Wrap(err, "ClickHouse is unreachable"))
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleCapabilities(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, ndc.DefaultCapabilities())
}

func (s *Server) handleSchema(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.schema)
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	plan, ok := s.plan(w, r)
	if !ok {
		return
	}

	rowsets, err := s.exec.Query(r.Context(), plan.Parameterize(), plan.Rowsets)
	if err != nil {
		writeError(w, http.StatusInternalServerError, errors.Wrap(err, "failed to execute query"))
		return
	}

	writeJSON(w, http.StatusOK, ndc.QueryResponse(rowsets))
}

func (s *Server) handleQueryExplain(w http.ResponseWriter, r *http.Request) {
	plan, ok := s.plan(w, r)
	if !ok {
		return
	}

	// Pretty must run before Parameterize replaces the inline parameters.
	sql := plan.Pretty()
	pstmt := plan.Parameterize()

	params := orderedmap.New[string, string]()
	for _, p := range pstmt.Parameters {
		params.Set(p.Name, p.Value)
	}
	encoded, err := json.Marshal(params)
	if err != nil {
		writeError(w, http.StatusInternalServerError, errors.Wrap(err, "failed to encode parameters"))
		return
	}

	explained, err := s.exec.Explain(r.Context(), pstmt)
	if err != nil {
		writeError(w, http.StatusInternalServerError, errors.Wrap(err, "failed to explain query"))
		return
	}

	writeJSON(w, http.StatusOK, ndc.ExplainResponse{Details: map[string]string{
		DetailSQLQuery:      sql,
		DetailParameters:    string(encoded),
		DetailExecutionPlan: explained,
	}})
}

func (s *Server) handleMutation(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusNotImplemented, errors.New("mutations are not supported"))
}

// plan decodes the query request and builds its plan, writing the error
// response itself when either step fails.
func (s *Server) plan(w http.ResponseWriter, r *http.Request) (*planner.Plan, bool) {
	var req ndc.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.Wrap(err, "invalid query request"))
		return nil, false
	}

	plan, err := s.planner.Build(&req)
	if err != nil {
		writeError(w, statusFor(err), err)
		return nil, false
	}

	if slog.Default().Enabled(r.Context(), slog.LevelDebug) {
		slog.Debug("Planned query", "collection", req.Collection, "sql", plan.SQL())
	}

	return plan, true
}
