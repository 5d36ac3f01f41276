// Package policy translates declared adjacency lists into concrete,
// direction-aware rule requests. It is pure derivation: the registry and
// subnet map come in as explicit values, an ordered request list comes out,
// and nothing external is touched.
package policy

import (
	"grimm.is/floe/internal/logging"
	"grimm.is/floe/internal/provision"
	"grimm.is/floe/internal/subnet"
)

// Request authorizes traffic from one resolved subnet to another. The
// relation is directional as declared; no reverse request is synthesized.
// Return traffic is expected to be admitted by the stateful enforcement
// point downstream, which this engine does not verify.
type Request struct {
	SourceNetwork string
	TargetNetwork string
	SourceSubnet  string
	TargetSubnet  string
}

// Engine derives rule requests from a registry and a subnet map.
type Engine struct {
	log *logging.Logger
}

// NewEngine creates an Engine.
func NewEngine(log *logging.Logger) *Engine {
	if log == nil {
		log = logging.Default()
	}
	return &Engine{log: log}
}

// Derive walks the registry in registration order and emits one request
// per resolvable (source, target) pair. Requests are not deduplicated: two
// networks declaring each other produce two independent requests.
func (e *Engine) Derive(reg provision.Registry, subnets subnet.Map) []Request {
	var reqs []Request

	for _, entry := range reg {
		name := entry.Spec.Name
		targets := entry.Spec.Targets()
		if len(targets) == 0 {
			continue
		}

		src, ok := subnets.Lookup(name)
		if !ok {
			// No partial rules for a source we cannot place.
			e.log.Warn("source subnet unresolved, skipping all pairs for network", "network", name)
			continue
		}

		for _, target := range targets {
			dst, ok := subnets.Lookup(target)
			if !ok {
				e.log.Warn("target subnet unresolved, skipping pair", "source", name, "target", target)
				continue
			}
			e.log.Debug("derived pair", "source", name, "target", target, "source_subnet", src, "target_subnet", dst)
			reqs = append(reqs, Request{
				SourceNetwork: name,
				TargetNetwork: target,
				SourceSubnet:  src,
				TargetSubnet:  dst,
			})
		}
	}

	return reqs
}
