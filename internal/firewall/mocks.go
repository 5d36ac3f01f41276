//go:build linux

package firewall

import (
	"sync"

	"github.com/google/nftables"
	"github.com/stretchr/testify/mock"
)

// MockNFTablesConn is a mock implementation of NFTablesConn for testing.
// It tracks tables, chains and per-chain rules in memory; rules are
// prepended to mirror InsertRule's insert-at-head semantics.
type MockNFTablesConn struct {
	mock.Mock
	mu sync.Mutex

	tables map[string]*nftables.Table
	chains map[string]*nftables.Chain
	rules  map[string][]*nftables.Rule
}

// NewMockNFTablesConn creates a new mock nftables connection.
func NewMockNFTablesConn() *MockNFTablesConn {
	return &MockNFTablesConn{
		tables: make(map[string]*nftables.Table),
		chains: make(map[string]*nftables.Chain),
		rules:  make(map[string][]*nftables.Rule),
	}
}

func (m *MockNFTablesConn) AddTable(t *nftables.Table) *nftables.Table {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Called(t)
	m.tables[t.Name] = t
	return t
}

func (m *MockNFTablesConn) AddChain(c *nftables.Chain) *nftables.Chain {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Called(c)
	m.chains[c.Table.Name+"/"+c.Name] = c
	return c
}

func (m *MockNFTablesConn) InsertRule(r *nftables.Rule) *nftables.Rule {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Called(r)
	key := r.Table.Name + "/" + r.Chain.Name
	m.rules[key] = append([]*nftables.Rule{r}, m.rules[key]...)
	return r
}

func (m *MockNFTablesConn) Flush() error {
	args := m.Called()
	return args.Error(0)
}

// Rules returns the rules recorded for a chain, head first.
func (m *MockNFTablesConn) Rules(table, chain string) []*nftables.Rule {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rules[table+"/"+chain]
}

// Chain returns a recorded chain, if present.
func (m *MockNFTablesConn) Chain(table, chain string) *nftables.Chain {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.chains[table+"/"+chain]
}
