package clickhouse

import (
	"net/http"
	"sync"
	"time"
)

// DefaultTimeout bounds a single request to ClickHouse, including reading the
// response body.
const DefaultTimeout = 5 * time.Minute

// State holds the resources shared by every request a connector serves. The HTTP
// client is created on first use and reused afterwards.
type State struct {
	timeout time.Duration

	mu     sync.Mutex
	client *http.Client
}

// NewState returns a State whose HTTP client times out after timeout. A zero
// timeout uses DefaultTimeout.
func NewState(timeout time.Duration) *State {
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	return &State{timeout: timeout}
}

// HTTPClient returns the shared HTTP client, creating it if needed. Concurrent
// callers racing on the first call all receive the same client.
func (s *State) HTTPClient() *http.Client {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client == nil {
		s.client = &http.Client{Timeout: s.timeout}
	}

	return s.client
}
