package provision

import (
	"errors"
	"testing"

	docker "github.com/fsouza/go-dockerclient"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"grimm.is/floe/internal/config"
	"grimm.is/floe/internal/logging"
	"grimm.is/floe/internal/runtime"
)

type fakeLinks struct {
	present map[string]bool
}

func (f fakeLinks) LinkExists(name string) (bool, error) {
	return f.present[name], nil
}

func testLogger() *logging.Logger {
	return logging.New(logging.Config{Level: logging.LevelError})
}

func newTestProvisioner(rt runtime.Client) *Provisioner {
	return New(rt, testLogger()).WithLinkChecker(fakeLinks{present: map[string]bool{"eth0": true, "eth1": true}})
}

func TestRunCreatesMissingNetworks(t *testing.T) {
	rt := runtime.NewMockClient()
	rt.On("CreateNetwork", mock.Anything).Return(nil, nil)

	specs := []config.NetworkSpec{
		{Name: "web", Type: config.TypeBridge, AllowedNetworks: []string{"db"}},
		{Name: "db", Type: config.TypeBridge, Subnet: "172.25.0.0/24"},
	}

	reg := newTestProvisioner(rt).Run(specs)

	require.Equal(t, []string{"web", "db"}, reg.Names())
	for _, e := range reg {
		require.True(t, e.Created)
	}
	// Adjacency list carried through unchanged
	web, ok := reg.Lookup("web")
	require.True(t, ok)
	require.Equal(t, []string{"db"}, web.Spec.AllowedNetworks)

	rt.AssertNumberOfCalls(t, "CreateNetwork", 2)
}

func TestRunSkipsSpecsMissingNameOrType(t *testing.T) {
	rt := runtime.NewMockClient()
	rt.On("CreateNetwork", mock.Anything).Return(nil, nil)

	specs := []config.NetworkSpec{
		{Type: config.TypeBridge},              // no name
		{Name: "untyped"},                      // no type
		{Name: "web", Type: config.TypeBridge}, // valid
	}

	reg := newTestProvisioner(rt).Run(specs)

	// Invalid siblings never affect the valid spec
	require.Equal(t, []string{"web"}, reg.Names())
	rt.AssertNumberOfCalls(t, "CreateNetwork", 1)
}

func TestRunExcludesIncompleteMacvlan(t *testing.T) {
	rt := runtime.NewMockClient()

	specs := []config.NetworkSpec{
		{Name: "iot", Type: config.TypeMacvlan, ParentInterface: "eth1"}, // missing subnet+gateway
	}

	reg := newTestProvisioner(rt).Run(specs)

	require.Empty(t, reg)
	rt.AssertNotCalled(t, "CreateNetwork", mock.Anything)
}

func TestRunExcludesUnknownType(t *testing.T) {
	rt := runtime.NewMockClient()

	reg := newTestProvisioner(rt).Run([]config.NetworkSpec{{Name: "x", Type: "overlay"}})

	require.Empty(t, reg)
	rt.AssertNotCalled(t, "CreateNetwork", mock.Anything)
}

func TestRunRegistersExistingWithoutCreate(t *testing.T) {
	rt := runtime.NewMockClient()
	rt.SeedNetwork(docker.Network{ID: "abc123", Name: "web", Driver: "bridge"})

	specs := []config.NetworkSpec{{Name: "web", Type: config.TypeBridge, AllowedNetworks: []string{"db"}}}

	p := newTestProvisioner(rt)
	first := p.Run(specs)
	second := p.Run(specs)

	// Two passes over an unchanged runtime yield identical registries and
	// never attempt creation.
	require.Equal(t, first, second)
	require.Len(t, first, 1)
	require.False(t, first[0].Created)
	require.Equal(t, "abc123", first[0].ID)
	rt.AssertNotCalled(t, "CreateNetwork", mock.Anything)
}

func TestRunCreationFailureExcludesEntry(t *testing.T) {
	rt := runtime.NewMockClient()
	rt.On("CreateNetwork", mock.MatchedBy(func(opts docker.CreateNetworkOptions) bool {
		return opts.Name == "bad"
	})).Return(nil, errors.New("driver exploded"))
	rt.On("CreateNetwork", mock.Anything).Return(nil, nil)

	specs := []config.NetworkSpec{
		{Name: "bad", Type: config.TypeBridge},
		{Name: "good", Type: config.TypeBridge},
	}

	reg := newTestProvisioner(rt).Run(specs)

	// The failed network is presumed not to exist for the policy pass.
	require.Equal(t, []string{"good"}, reg.Names())
}

func TestRunDiscoverOnly(t *testing.T) {
	rt := runtime.NewMockClient()
	rt.SeedNetwork(docker.Network{ID: "id-web", Name: "web", Driver: "bridge"})

	specs := []config.NetworkSpec{
		{Name: "web", Type: config.TypeBridge},
		{Name: "ghost", Type: config.TypeBridge, AllowedNetworks: []string{"web"}},
	}

	p := newTestProvisioner(rt)
	p.DiscoverOnly = true
	reg := p.Run(specs)

	// Only pre-existing networks are registered; nothing is created.
	require.Equal(t, []string{"web"}, reg.Names())
	rt.AssertNotCalled(t, "CreateNetwork", mock.Anything)
}

func TestBuildCreateOptions(t *testing.T) {
	t.Run("bridge with host interface", func(t *testing.T) {
		opts, err := buildCreateOptions(config.NetworkSpec{
			Name: "web", Type: config.TypeBridge,
			Subnet: "172.25.0.0/24", Gateway: "172.25.0.1", IPRange: "172.25.0.128/25",
			HostInterface: "br-web",
		})
		require.NoError(t, err)
		require.Equal(t, "bridge", opts.Driver)
		require.Equal(t, "br-web", opts.Options[optBridgeName])
		require.NotNil(t, opts.IPAM)
		require.Equal(t, "172.25.0.0/24", opts.IPAM.Config[0].Subnet)
		require.Equal(t, "172.25.0.1", opts.IPAM.Config[0].Gateway)
		require.Equal(t, "172.25.0.128/25", opts.IPAM.Config[0].IPRange)
	})

	t.Run("bridge without addressing has no IPAM", func(t *testing.T) {
		opts, err := buildCreateOptions(config.NetworkSpec{Name: "web", Type: config.TypeBridge})
		require.NoError(t, err)
		require.Nil(t, opts.IPAM)
	})

	t.Run("macvlan sets parent", func(t *testing.T) {
		opts, err := buildCreateOptions(config.NetworkSpec{
			Name: "iot", Type: config.TypeMacvlan,
			ParentInterface: "eth1", Subnet: "192.168.50.0/24", Gateway: "192.168.50.1",
		})
		require.NoError(t, err)
		require.Equal(t, "eth1", opts.Options[optParent])
		_, hasMode := opts.Options[optIPvlanMode]
		require.False(t, hasMode)
	})

	t.Run("ipvlan sets parent and mode", func(t *testing.T) {
		opts, err := buildCreateOptions(config.NetworkSpec{
			Name: "iot", Type: config.TypeIPvlan,
			ParentInterface: "eth1", Subnet: "192.168.50.0/24", Gateway: "192.168.50.1",
			Mode: "l3",
		})
		require.NoError(t, err)
		require.Equal(t, "eth1", opts.Options[optParent])
		require.Equal(t, "l3", opts.Options[optIPvlanMode])
	})

	t.Run("ipvlan omitted mode left to runtime", func(t *testing.T) {
		opts, err := buildCreateOptions(config.NetworkSpec{
			Name: "iot", Type: config.TypeIPvlan,
			ParentInterface: "eth1", Subnet: "192.168.50.0/24", Gateway: "192.168.50.1",
		})
		require.NoError(t, err)
		_, hasMode := opts.Options[optIPvlanMode]
		require.False(t, hasMode)
	})

	t.Run("host interface ignored for macvlan", func(t *testing.T) {
		opts, err := buildCreateOptions(config.NetworkSpec{
			Name: "iot", Type: config.TypeMacvlan,
			ParentInterface: "eth1", Subnet: "192.168.50.0/24", Gateway: "192.168.50.1",
			HostInterface: "br-iot",
		})
		require.NoError(t, err)
		_, hasBridgeName := opts.Options[optBridgeName]
		require.False(t, hasBridgeName)
	})

	t.Run("managed-by label", func(t *testing.T) {
		opts, err := buildCreateOptions(config.NetworkSpec{Name: "web", Type: config.TypeBridge})
		require.NoError(t, err)
		require.Contains(t, opts.Labels, ManagedByLabel)
	})
}
