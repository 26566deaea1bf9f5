package docker

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/pseudomuto/ndc-clickhouse/pkg/config"
	"github.com/stretchr/testify/require"
)

// SkipIfUnavailable skips t when running with -short or when no Docker daemon
// answers.
func SkipIfUnavailable(t *testing.T) {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping Docker tests in short mode")
	}

	if _, err := exec.LookPath("docker"); err != nil {
		t.Skip("Docker not available")
	}

	if err := exec.CommandContext(t.Context(), "docker", "ps").Run(); err != nil {
		t.Skip("Docker daemon not running")
	}
}

// StartForTest starts a container for opts, stops it when t finishes, and
// returns its connection settings. The test is skipped when Docker is
// unavailable.
func StartForTest(t *testing.T, opts Options) config.ConnectionConfig {
	t.Helper()

	SkipIfUnavailable(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	ch := New(opts)
	t.Cleanup(func() { _ = ch.Stop(context.Background()) })

	require.NoError(t, ch.Start(ctx), "Failed to start ClickHouse container")

	conn, err := ch.Connection(ctx)
	require.NoError(t, err)

	return conn
}
