package provision

import (
	"fmt"

	docker "github.com/fsouza/go-dockerclient"

	"grimm.is/floe/internal/brand"
	"grimm.is/floe/internal/config"
)

// Docker driver option keys.
const (
	optBridgeName = "com.docker.network.bridge.name"
	optParent     = "parent"
	optIPvlanMode = "ipvlan_mode"
)

// ManagedByLabel marks networks created by this tool.
const ManagedByLabel = "is.grimm.managed-by"

// buildCreateOptions maps a validated spec onto a typed create request.
// Composition is per driver: bridge takes optional addressing and a custom
// host bridge name; macvlan/ipvlan take the mandatory parent and
// addressing, ipvlan additionally its mode. host_interface is accepted but
// has no effect outside bridge.
func buildCreateOptions(spec config.NetworkSpec) (docker.CreateNetworkOptions, error) {
	opts := docker.CreateNetworkOptions{
		Name:    spec.Name,
		Driver:  spec.Type,
		Options: make(map[string]interface{}),
		Labels:  map[string]string{ManagedByLabel: brand.LowerName},
	}

	if spec.Subnet != "" {
		opts.IPAM = &docker.IPAMOptions{
			Config: []docker.IPAMConfig{{
				Subnet:  spec.Subnet,
				Gateway: spec.Gateway,
				IPRange: spec.IPRange,
			}},
		}
	}

	switch spec.Type {
	case config.TypeBridge:
		if spec.HostInterface != "" {
			opts.Options[optBridgeName] = spec.HostInterface
		}
	case config.TypeMacvlan:
		opts.Options[optParent] = spec.ParentInterface
	case config.TypeIPvlan:
		opts.Options[optParent] = spec.ParentInterface
		if spec.Mode != "" {
			opts.Options[optIPvlanMode] = spec.Mode
		}
	default:
		// ValidateCreate rejects these earlier; kept as a guard.
		return docker.CreateNetworkOptions{}, fmt.Errorf("unknown network type %q", spec.Type)
	}

	return opts, nil
}
