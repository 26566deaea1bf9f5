package ndc

import "encoding/json"

type (
	// QueryResponse holds one RowSet per variable set, or a single RowSet when the
	// request carried no variables.
	QueryResponse []RowSet

	// RowSet is the result of a query for one variable set. Rows and aggregate
	// values are kept as raw JSON so field order produced by the database is
	// preserved when the response is re-encoded. Either is nil when it was not
	// requested; an empty result is the JSON array [].
	RowSet struct {
		Aggregates json.RawMessage `json:"aggregates,omitempty"`
		Rows       json.RawMessage `json:"rows,omitempty"`
	}

	// ExplainResponse is the body returned by the explain endpoints.
	ExplainResponse struct {
		Details map[string]string `json:"details"`
	}

	// ErrorResponse is the body returned for any non-2xx status.
	ErrorResponse struct {
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	}
)
