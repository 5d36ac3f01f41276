// Package config defines the declarative network topology document and its
// invariants. The loader yields specs in document order; everything past
// loading (existence checks, creation, policy) is owned by the pipeline
// packages.
package config

import (
	"strings"
)

// Network types understood by the provisioner. These double as the Docker
// network driver names.
const (
	TypeBridge  = "bridge"
	TypeMacvlan = "macvlan"
	TypeIPvlan  = "ipvlan"
)

// IPvlan operating modes. An omitted mode defers to the runtime's default.
var IPvlanModes = []string{"l2", "l3", "l3s"}

// NetworkSpec is one declared network and its allowed peers.
type NetworkSpec struct {
	Name            string   `yaml:"name"`
	Type            string   `yaml:"type"`
	ParentInterface string   `yaml:"parent_interface,omitempty"`
	Subnet          string   `yaml:"subnet,omitempty"`
	Gateway         string   `yaml:"gateway,omitempty"`
	IPRange         string   `yaml:"ip_range,omitempty"`
	HostInterface   string   `yaml:"host_interface,omitempty"`
	Mode            string   `yaml:"mode,omitempty"`
	AllowedNetworks []string `yaml:"allowed_networks,omitempty"`
}

// Config is the root of the topology document.
type Config struct {
	Networks []NetworkSpec `yaml:"networks"`
}

// Targets returns the adjacency list with surrounding whitespace trimmed
// and empty tokens dropped. Order is preserved.
func (s *NetworkSpec) Targets() []string {
	targets := make([]string, 0, len(s.AllowedNetworks))
	for _, t := range s.AllowedNetworks {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		targets = append(targets, t)
	}
	return targets
}
