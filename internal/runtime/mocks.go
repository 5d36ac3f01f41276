package runtime

import (
	"sync"

	docker "github.com/fsouza/go-dockerclient"
	"github.com/stretchr/testify/mock"
)

// MockClient is a mock implementation of Client for pipeline tests.
// Alongside the programmed expectations it keeps an in-memory network
// inventory so tests can express "these networks exist" without scripting
// every call.
type MockClient struct {
	mock.Mock
	mu       sync.Mutex
	networks map[string]*docker.Network
}

// NewMockClient creates a mock client with an empty inventory.
func NewMockClient() *MockClient {
	return &MockClient{networks: make(map[string]*docker.Network)}
}

// SeedNetwork adds a network to the in-memory inventory without going
// through CreateNetwork, simulating a pre-existing network.
func (m *MockClient) SeedNetwork(n docker.Network) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := n
	m.networks[n.Name] = &cp
}

func (m *MockClient) CreateNetwork(opts docker.CreateNetworkOptions) (*docker.Network, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	args := m.Called(opts)
	if err := args.Error(1); err != nil {
		return nil, err
	}
	if n := args.Get(0); n != nil {
		created := n.(*docker.Network)
		m.networks[created.Name] = created
		return created, nil
	}
	// Default behavior: materialize a network from the request.
	created := &docker.Network{
		ID:     "mock-" + opts.Name,
		Name:   opts.Name,
		Driver: opts.Driver,
	}
	if opts.IPAM != nil {
		created.IPAM = *opts.IPAM
	}
	m.networks[opts.Name] = created
	return created, nil
}

func (m *MockClient) NetworkInfo(nameOrID string) (*docker.Network, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if expected := m.expectationFor("NetworkInfo"); expected {
		args := m.Called(nameOrID)
		if args.Get(0) == nil {
			return nil, args.Error(1)
		}
		return args.Get(0).(*docker.Network), args.Error(1)
	}
	if n, ok := m.networks[nameOrID]; ok {
		return n, nil
	}
	return nil, &docker.NoSuchNetwork{ID: nameOrID}
}

func (m *MockClient) ListNetworks() ([]docker.Network, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if expected := m.expectationFor("ListNetworks"); expected {
		args := m.Called()
		if args.Get(0) == nil {
			return nil, args.Error(1)
		}
		return args.Get(0).([]docker.Network), args.Error(1)
	}
	nets := make([]docker.Network, 0, len(m.networks))
	for _, n := range m.networks {
		nets = append(nets, *n)
	}
	return nets, nil
}

// expectationFor reports whether the test programmed an expectation for the
// given method; without one the in-memory inventory answers instead.
func (m *MockClient) expectationFor(method string) bool {
	for _, call := range m.ExpectedCalls {
		if call.Method == method {
			return true
		}
	}
	return false
}
