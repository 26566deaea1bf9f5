package clickhouse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"github.com/pseudomuto/ndc-clickhouse/pkg/ast"
	"github.com/pseudomuto/ndc-clickhouse/pkg/config"
	"github.com/pseudomuto/ndc-clickhouse/pkg/format"
	"github.com/pseudomuto/ndc-clickhouse/pkg/ndc"
)

const (
	headerUser = "X-ClickHouse-User"
	headerKey  = "X-ClickHouse-Key"

	// rowsetColumn is the single column every planned statement selects.
	rowsetColumn = "rowset"
	// explainColumn is the column EXPLAIN returns its plan in.
	explainColumn = "explain"
)

type (
	// Client runs planned statements against the ClickHouse HTTP interface.
	Client struct {
		conn  config.ConnectionConfig
		state *State
	}

	// Response is a FORMAT JSON response body.
	Response struct {
		Meta       []Column                     `json:"meta"`
		Data       []map[string]json.RawMessage `json:"data"`
		Rows       int                          `json:"rows"`
		Statistics Statistics                   `json:"statistics"`
	}

	// Column describes a result column.
	Column struct {
		Name string `json:"name"`
		Type string `json:"type"`
	}

	// Statistics reports the cost of a query.
	Statistics struct {
		Elapsed   float64 `json:"elapsed"`
		RowsRead  uint64  `json:"rows_read"`
		BytesRead uint64  `json:"bytes_read"`
	}
)

// NewClient returns a Client for conn that shares state's HTTP client.
//
// Example:
//
//	client := clickhouse.NewClient(cfg.Connection, clickhouse.NewState(0))
//
//	plan, err := planner.New(cfg).Build(req)
//	if err != nil {
//		return err
//	}
//
//	rowsets, err := client.Query(ctx, plan.Parameterize(), plan.Rowsets)
func NewClient(conn config.ConnectionConfig, state *State) *Client {
	return &Client{conn: conn, state: state}
}

// Query executes pstmt and returns its rowsets in variable set order. The
// statement must select a single rowset column, one row per variable set. A null
// rowset decodes to an empty RowSet, and missing trailing rowsets are filled with
// empty ones.
func (c *Client) Query(ctx context.Context, pstmt *ast.ParameterizedStatement, rowsets int) ([]ndc.RowSet, error) {
	resp, err := c.Execute(ctx, pstmt)
	if err != nil {
		return nil, err
	}

	if len(resp.Data) > rowsets {
		return nil, errors.Errorf("expected %d rowsets, got %d", rowsets, len(resp.Data))
	}

	out := make([]ndc.RowSet, rowsets)
	for i, row := range resp.Data {
		raw, ok := row[rowsetColumn]
		if !ok {
			return nil, errors.Errorf("row %d has no %s column", i, rowsetColumn)
		}
		if isNull(raw) {
			continue
		}

		if err := json.Unmarshal(raw, &out[i]); err != nil {
			return nil, errors.Wrapf(err, "failed to decode rowset %d", i)
		}
	}

	return out, nil
}

// Explain returns ClickHouse's plan for pstmt, one step per line.
func (c *Client) Explain(ctx context.Context, pstmt *ast.ParameterizedStatement) (string, error) {
	resp, err := c.Execute(ctx, pstmt.Explain())
	if err != nil {
		return "", err
	}

	lines := make([]string, 0, len(resp.Data))
	for _, row := range resp.Data {
		var line string
		if err := json.Unmarshal(row[explainColumn], &line); err != nil {
			return "", errors.Wrap(err, "failed to decode explain output")
		}
		lines = append(lines, line)
	}

	return strings.Join(lines, "\n"), nil
}

// Execute sends pstmt with its parameters and decodes the FORMAT JSON response.
func (c *Client) Execute(ctx context.Context, pstmt *ast.ParameterizedStatement) (*Response, error) {
	endpoint, err := c.endpoint("/")
	if err != nil {
		return nil, err
	}

	params := endpoint.Query()
	for _, p := range pstmt.Parameters {
		params.Set(p.Name, p.Value)
	}
	endpoint.RawQuery = params.Encode()

	sql := format.Parameterized(pstmt)
	slog.Debug("Executing statement", "sql", sql, "parameters", len(pstmt.Parameters))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), strings.NewReader(sql))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	c.authenticate(req)

	res, err := c.state.HTTPClient().Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to send request to ClickHouse")
	}
	defer func() { _ = res.Body.Close() }()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read ClickHouse response")
	}

	if res.StatusCode != http.StatusOK {
		return nil, &Error{StatusCode: res.StatusCode, Message: string(bytes.TrimSpace(body))}
	}

	var resp Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errors.Wrap(err, "failed to decode ClickHouse response")
	}

	slog.Debug("Executed statement",
		"rows", resp.Rows,
		"elapsed", resp.Statistics.Elapsed,
		"rows_read", resp.Statistics.RowsRead,
		"bytes_read", resp.Statistics.BytesRead,
	)

	return &resp, nil
}

// Ping checks that ClickHouse is reachable. Any HTTP response counts as alive.
func (c *Client) Ping(ctx context.Context) error {
	endpoint, err := c.endpoint("/ping")
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}
	c.authenticate(req)

	res, err := c.state.HTTPClient().Do(req)
	if err != nil {
		return errors.Wrap(err, "failed to reach ClickHouse")
	}
	_, _ = io.Copy(io.Discard, res.Body)
	return res.Body.Close()
}

func (c *Client) endpoint(path string) (*url.URL, error) {
	u, err := url.Parse(c.conn.URL)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid ClickHouse URL %q", c.conn.URL)
	}

	u.Path = strings.TrimSuffix(u.Path, "/") + path
	return u, nil
}

func (c *Client) authenticate(req *http.Request) {
	req.Header.Set(headerUser, c.conn.Username)
	req.Header.Set(headerKey, c.conn.Password)
}

// Error is a non-200 response from ClickHouse.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("clickhouse returned %d: %s", e.StatusCode, e.Message)
}

func isNull(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}
