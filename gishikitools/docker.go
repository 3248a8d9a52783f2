package gishikitools

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/ory/dockertest"
)

// DockerServiceConfig describes a throwaway container and how to connect to
// it once it listens on InternalPort.
type DockerServiceConfig[T any] struct {
	DockerImage    string
	DockerImageTag string
	InternalPort   int
	Environment    map[string]string
	// MaxWait bounds how long Builder is retried, two minutes when zero.
	MaxWait time.Duration
	Builder func(host string, port int) (T, error)
}

func (d DockerServiceConfig[T]) Env() []string {
	env := []string{}
	for k, v := range d.Environment {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}

	return env
}

// GetDockerService starts the container, retries Builder until it connects
// and purges the container when the test ends. Skipped in short mode.
func GetDockerService[T any](
	t *testing.T,
	config DockerServiceConfig[T],
) T {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping long-running test in short mode.")
	}

	// uses a sensible default on windows (tcp/http) and linux/osx (socket)
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("Could not construct pool: %s", err)
	}

	if config.MaxWait > 0 {
		pool.MaxWait = config.MaxWait
	} else {
		pool.MaxWait = 2 * time.Minute
	}

	if err := pool.Client.Ping(); err != nil {
		t.Fatalf("Could not connect to Docker: %s", err)
	}

	resource, err := pool.Run(
		config.DockerImage,
		config.DockerImageTag,
		config.Env(),
	)
	if err != nil {
		t.Fatalf("Could not start %s:%s: %s", config.DockerImage, config.DockerImageTag, err)
	}

	t.Cleanup(func() {
		if err := pool.Purge(resource); err != nil {
			t.Errorf("Could not purge %s: %s", config.DockerImage, err)
		}
	})

	host, port, err := serviceAddress(os.Getenv("DOCKER_HOST"), resource.GetHostPort(fmt.Sprintf("%d/tcp", config.InternalPort)))
	if err != nil {
		t.Fatalf("Could not resolve service address: %s", err)
	}

	var service T
	if err := pool.Retry(func() error {
		var err error
		service, err = config.Builder(host, port)
		return err
	}); err != nil {
		t.Fatalf("Could not connect to %s: %s", config.DockerImage, err)
	}

	return service
}

// serviceAddress returns the published host port, reached through the
// daemon's host when DOCKER_HOST points at a remote tcp daemon.
func serviceAddress(dockerHost string, hostPort string) (string, int, error) {
	host, portString, err := net.SplitHostPort(hostPort)
	if err != nil {
		return "", 0, err
	}

	port, err := strconv.Atoi(portString)
	if err != nil {
		return "", 0, fmt.Errorf("invalid port in %q: %w", hostPort, err)
	}

	if dockerHost != "" {
		u, err := url.Parse(dockerHost)
		if err != nil {
			return "", 0, err
		}

		if u.Scheme == "tcp" && u.Hostname() != "" {
			host = u.Hostname()
		}
	}

	return host, port, nil
}
