package connector

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/pkg/errors"
	"github.com/pseudomuto/ndc-clickhouse/pkg/clickhouse"
	"github.com/pseudomuto/ndc-clickhouse/pkg/ndc"
	"github.com/pseudomuto/ndc-clickhouse/pkg/planner"
)

// statusFor maps a planning error to the HTTP status reported to the caller.
func statusFor(err error) int {
	var perr *planner.Error
	if !errors.As(err, &perr) {
		return http.StatusInternalServerError
	}

	switch perr.Kind {
	case planner.KindBadRequest, planner.KindTypecasting:
		return http.StatusBadRequest
	case planner.KindNotSupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	details := map[string]any{}

	var perr *planner.Error
	if errors.As(err, &perr) {
		details["kind"] = perr.Kind.String()
	}

	var cherr *clickhouse.Error
	if errors.As(err, &cherr) {
		details["clickhouse_status"] = cherr.StatusCode
	}

	if status >= http.StatusInternalServerError {
		slog.Error("Request failed", "status", status, "error", err)
	}

	writeJSON(w, status, ndc.ErrorResponse{Message: err.Error(), Details: details})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}
