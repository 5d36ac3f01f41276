// Package runtime wraps the container runtime's network management API.
// The pipeline consumes only the narrow Client interface so every stage can
// be tested against a mock.
package runtime

import (
	"errors"
	"fmt"

	docker "github.com/fsouza/go-dockerclient"
)

// Client is the subset of the Docker Engine network API the pipeline uses.
// *docker.Client satisfies it directly.
type Client interface {
	CreateNetwork(opts docker.CreateNetworkOptions) (*docker.Network, error)
	NetworkInfo(nameOrID string) (*docker.Network, error)
	ListNetworks() ([]docker.Network, error)
}

// Connect builds a client from the environment (DOCKER_HOST and friends)
// and verifies the daemon is reachable. An unreachable daemon is fatal for
// the caller: no provisioning or policy work may start without it.
func Connect() (Client, error) {
	c, err := docker.NewClientFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to build docker client: %w", err)
	}
	if err := c.Ping(); err != nil {
		return nil, fmt.Errorf("docker daemon unreachable: %w", err)
	}
	return c, nil
}

// IsNotFound reports whether err means the named network does not exist,
// as opposed to a transport or daemon failure.
func IsNotFound(err error) bool {
	var noSuch *docker.NoSuchNetwork
	return errors.As(err, &noSuch)
}
