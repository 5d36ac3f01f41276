package config

import (
	"fmt"
	"net"

	"github.com/apparentlymart/go-cidr/cidr"

	"grimm.is/floe/internal/validation"
)

// ValidateCreate checks the invariants a spec must satisfy before a create
// request may be issued for it. Name and type presence are checked earlier
// by the provisioner (they gate registration, not only creation).
//
// A violation excludes the spec from creation but never aborts processing
// of sibling specs.
func (s *NetworkSpec) ValidateCreate() error {
	switch s.Type {
	case TypeBridge, TypeMacvlan, TypeIPvlan:
	default:
		return fmt.Errorf("unknown network type %q", s.Type)
	}

	if s.Type == TypeMacvlan || s.Type == TypeIPvlan {
		if s.ParentInterface == "" || s.Subnet == "" || s.Gateway == "" {
			return fmt.Errorf("%s network requires parent_interface, subnet and gateway", s.Type)
		}
	}

	if s.ParentInterface != "" {
		if err := validation.ValidateInterfaceName(s.ParentInterface); err != nil {
			return fmt.Errorf("parent_interface: %w", err)
		}
	}
	if s.HostInterface != "" {
		if err := validation.ValidateInterfaceName(s.HostInterface); err != nil {
			return fmt.Errorf("host_interface: %w", err)
		}
	}

	var subnetNet *net.IPNet
	if s.Subnet != "" {
		if err := validation.ValidateCIDR(s.Subnet); err != nil {
			return fmt.Errorf("subnet: %w", err)
		}
		_, subnetNet, _ = net.ParseCIDR(s.Subnet)
	}

	if s.Gateway != "" {
		if err := validation.ValidateIP(s.Gateway); err != nil {
			return fmt.Errorf("gateway: %w", err)
		}
		if subnetNet != nil && !subnetNet.Contains(net.ParseIP(s.Gateway)) {
			return fmt.Errorf("gateway %s is outside subnet %s", s.Gateway, s.Subnet)
		}
	}

	if s.IPRange != "" {
		if err := validation.ValidateCIDR(s.IPRange); err != nil {
			return fmt.Errorf("ip_range: %w", err)
		}
		if subnetNet != nil {
			_, rangeNet, _ := net.ParseCIDR(s.IPRange)
			first, last := cidr.AddressRange(rangeNet)
			if !subnetNet.Contains(first) || !subnetNet.Contains(last) {
				return fmt.Errorf("ip_range %s is not contained in subnet %s", s.IPRange, s.Subnet)
			}
		}
	}

	if s.Type == TypeIPvlan && s.Mode != "" {
		if err := validation.ValidateAllowlist(s.Mode, IPvlanModes); err != nil {
			return fmt.Errorf("mode: %w", err)
		}
	}

	return nil
}
