// Package subnet discovers the address ranges the runtime actually
// allocated, as opposed to what the topology document requested. A bridge
// network declared without a subnet only gets one at creation time, and
// pre-existing networks never passed through this run's creation logic at
// all, so the map is rebuilt from live runtime state on every run.
package subnet

import (
	docker "github.com/fsouza/go-dockerclient"

	"grimm.is/floe/internal/logging"
	"grimm.is/floe/internal/runtime"
)

// Map ties a network name to its primary allocated CIDR. Absence of a name
// is a valid, expected outcome (no address management configured), not an
// error.
type Map map[string]string

// Lookup returns the allocated CIDR for name.
func (m Map) Lookup(name string) (string, bool) {
	cidr, ok := m[name]
	return cidr, ok
}

// Resolver builds a Map from the complete current network inventory — a
// superset of the registry, since policy targets may reference networks
// this run never touched.
type Resolver struct {
	runtime runtime.Client
	log     *logging.Logger
}

// NewResolver creates a Resolver talking to the given runtime.
func NewResolver(rt runtime.Client, log *logging.Logger) *Resolver {
	if log == nil {
		log = logging.Default()
	}
	return &Resolver{runtime: rt, log: log}
}

// Resolve enumerates all networks the runtime knows about and inspects
// each for its primary allocated range. Per-network failures are skipped
// with a diagnostic; they never fail the whole pass.
func (r *Resolver) Resolve() Map {
	m := make(Map)

	nets, err := r.runtime.ListNetworks()
	if err != nil {
		r.log.Error("cannot enumerate networks", "error", err)
		return m
	}

	for _, n := range nets {
		info, err := r.runtime.NetworkInfo(n.Name)
		if err != nil {
			r.log.Warn("cannot inspect network, omitting from subnet map", "network", n.Name, "error", err)
			continue
		}
		cidr := primarySubnet(info)
		if cidr == "" {
			r.log.Warn("no subnet determinable, omitting from subnet map", "network", n.Name)
			continue
		}
		r.log.Debug("resolved subnet", "network", n.Name, "subnet", cidr)
		m[n.Name] = cidr
	}

	return m
}

// primarySubnet returns the first configured IPAM range.
func primarySubnet(n *docker.Network) string {
	for _, c := range n.IPAM.Config {
		if c.Subnet != "" {
			return c.Subnet
		}
	}
	return ""
}
