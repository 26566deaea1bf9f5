package docker

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/go-connections/nat"
	"github.com/pkg/errors"
	"github.com/pseudomuto/ndc-clickhouse/pkg/config"
	"github.com/pseudomuto/ndc-clickhouse/pkg/consts"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/clickhouse"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	// HTTPPort is the ClickHouse HTTP interface port inside the container.
	HTTPPort = 8123

	username = "default"
)

type (
	// Options configures a ClickHouse test container.
	Options struct {
		// Image is the ClickHouse image to run (default: consts.DefaultClickHouseImage).
		Image string

		// InitScripts are .sql or .sh files run once the server is up, in order.
		// Relative paths are resolved against the working directory.
		InitScripts []string

		// ConfigDir is an optional directory mounted as config.d.
		ConfigDir string
	}

	// Container manages a throwaway ClickHouse server for integration tests.
	Container struct {
		options   Options
		container *clickhouse.ClickHouseContainer
	}
)

// New returns a Container for opts. Nothing is started until Start is called.
//
// Example:
//
//	ch := docker.New(docker.Options{InitScripts: []string{"testdata/chinook.sql"}})
//	if err := ch.Start(ctx); err != nil {
//		t.Fatal(err)
//	}
//	defer ch.Stop(ctx)
//
//	conn, err := ch.Connection(ctx)
func New(opts Options) *Container {
	if opts.Image == "" {
		opts.Image = consts.DefaultClickHouseImage
	}

	return &Container{options: opts}
}

// Start runs the container and waits until the HTTP interface answers.
func (c *Container) Start(ctx context.Context) error {
	if c.container != nil {
		return errors.New("container is already running")
	}

	httpPort := nat.Port(fmt.Sprintf("%d/tcp", HTTPPort))
	customizers := []testcontainers.ContainerCustomizer{
		clickhouse.WithUsername(username),
		clickhouse.WithPassword(""),
		testcontainers.WithEnv(map[string]string{"CLICKHOUSE_DEFAULT_ACCESS_MANAGEMENT": "1"}),
		testcontainers.WithWaitStrategyAndDeadline(
			5*time.Minute,
			wait.
				NewHTTPStrategy("/ping").
				WithPort(httpPort).
				WithStatusCodeMatcher(func(status int) bool {
					return status == 200
				}),
		),
	}

	if len(c.options.InitScripts) > 0 {
		scripts := make([]string, len(c.options.InitScripts))
		for i, script := range c.options.InitScripts {
			abs, err := filepath.Abs(script)
			if err != nil {
				return errors.Wrapf(err, "failed to get absolute path for init script: %s", script)
			}
			scripts[i] = abs
		}

		customizers = append(customizers, clickhouse.WithInitScripts(scripts...))
	}

	if c.options.ConfigDir != "" {
		abs, err := filepath.Abs(c.options.ConfigDir)
		if err != nil {
			return errors.Wrapf(err, "failed to get absolute path for ConfigDir: %s", c.options.ConfigDir)
		}

		customizers = append(
			customizers,
			testcontainers.WithHostConfigModifier(func(hostConfig *container.HostConfig) {
				hostConfig.Mounts = []mount.Mount{
					{
						Type:   mount.TypeBind,
						Source: abs,
						Target: "/etc/clickhouse-server/config.d",
					},
				}
			}),
		)
	}

	ch, err := clickhouse.Run(ctx, c.options.Image, customizers...)
	if err != nil {
		return errors.Wrap(err, "failed to start ClickHouse container")
	}

	c.container = ch
	return nil
}

// Stop terminates the container. Stopping a container that is not running is a
// no-op.
func (c *Container) Stop(ctx context.Context) error {
	if c.container == nil {
		return nil
	}

	err := c.container.Terminate(ctx)
	c.container = nil

	if err != nil {
		return errors.Wrap(err, "failed to stop ClickHouse container")
	}

	return nil
}

// Connection returns the settings for reaching the container's HTTP interface
// from the host.
func (c *Container) Connection(ctx context.Context) (config.ConnectionConfig, error) {
	if c.container == nil {
		return config.ConnectionConfig{}, errors.New("container is not running")
	}

	host, err := c.container.Host(ctx)
	if err != nil {
		return config.ConnectionConfig{}, errors.Wrap(err, "failed to get container host")
	}

	port, err := c.container.MappedPort(ctx, nat.Port(fmt.Sprintf("%d/tcp", HTTPPort)))
	if err != nil {
		return config.ConnectionConfig{}, errors.Wrap(err, "failed to get container port")
	}

	return config.ConnectionConfig{
		URL:      fmt.Sprintf("http://%s:%s", host, port.Port()),
		Username: username,
	}, nil
}

// IsRunning reports whether Start has succeeded and Stop has not been called.
func (c *Container) IsRunning() bool {
	return c.container != nil
}
