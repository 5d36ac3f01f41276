package subnet

import (
	"errors"
	"testing"

	docker "github.com/fsouza/go-dockerclient"
	"github.com/stretchr/testify/require"

	"grimm.is/floe/internal/logging"
	"grimm.is/floe/internal/runtime"
)

func testLogger() *logging.Logger {
	return logging.New(logging.Config{Level: logging.LevelError})
}

func ipam(subnet string) docker.IPAMOptions {
	return docker.IPAMOptions{Config: []docker.IPAMConfig{{Subnet: subnet}}}
}

func TestResolve(t *testing.T) {
	rt := runtime.NewMockClient()
	rt.SeedNetwork(docker.Network{Name: "web", IPAM: ipam("172.20.0.0/16")})
	rt.SeedNetwork(docker.Network{Name: "db", IPAM: ipam("172.25.0.0/24")})
	// A network this run never touched still resolves: targets may
	// reference it.
	rt.SeedNetwork(docker.Network{Name: "legacy", IPAM: ipam("10.10.0.0/24")})
	// No IPAM configuration at all
	rt.SeedNetwork(docker.Network{Name: "bare"})

	m := NewResolver(rt, testLogger()).Resolve()

	require.Len(t, m, 3)
	cidr, ok := m.Lookup("web")
	require.True(t, ok)
	require.Equal(t, "172.20.0.0/16", cidr)
	cidr, ok = m.Lookup("legacy")
	require.True(t, ok)
	require.Equal(t, "10.10.0.0/24", cidr)

	_, ok = m.Lookup("bare")
	require.False(t, ok, "network without IPAM must be omitted, not errored")
}

func TestResolveInspectFailureSkipsNetwork(t *testing.T) {
	rt := runtime.NewMockClient()
	rt.On("ListNetworks").Return([]docker.Network{{Name: "web"}, {Name: "flaky"}}, nil)
	rt.On("NetworkInfo", "web").Return(&docker.Network{Name: "web", IPAM: ipam("172.20.0.0/16")}, nil)
	rt.On("NetworkInfo", "flaky").Return(nil, errors.New("timeout"))

	m := NewResolver(rt, testLogger()).Resolve()

	require.Len(t, m, 1)
	_, ok := m.Lookup("flaky")
	require.False(t, ok)
}

func TestResolveListFailure(t *testing.T) {
	rt := runtime.NewMockClient()
	rt.On("ListNetworks").Return(nil, errors.New("daemon gone"))

	m := NewResolver(rt, testLogger()).Resolve()
	require.Empty(t, m)
}

func TestPrimarySubnetPicksFirstConfigured(t *testing.T) {
	n := &docker.Network{IPAM: docker.IPAMOptions{Config: []docker.IPAMConfig{
		{Subnet: ""},
		{Subnet: "172.25.0.0/24"},
		{Subnet: "fd00:1::/64"},
	}}}
	require.Equal(t, "172.25.0.0/24", primarySubnet(n))
}
