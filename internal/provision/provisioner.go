// Package provision validates network specs against the live runtime and
// creates the networks that are missing, producing the registry the policy
// pass derives rules from.
package provision

import (
	"grimm.is/floe/internal/config"
	"grimm.is/floe/internal/logging"
	"grimm.is/floe/internal/runtime"
	"grimm.is/floe/internal/validation"
)

// Provisioner walks the declared specs in document order and builds the
// registry of networks that exist after the pass. Each spec is handled
// independently; a bad or failing spec never aborts its siblings.
type Provisioner struct {
	runtime runtime.Client
	links   LinkChecker
	log     *logging.Logger

	// DiscoverOnly skips the creation path entirely: only specs whose
	// network the runtime already reports existing are registered.
	DiscoverOnly bool
}

// New creates a Provisioner talking to the given runtime.
func New(rt runtime.Client, log *logging.Logger) *Provisioner {
	if log == nil {
		log = logging.Default()
	}
	return &Provisioner{
		runtime: rt,
		links:   newLinkChecker(),
		log:     log,
	}
}

// WithLinkChecker overrides the host link checker (used by tests).
func (p *Provisioner) WithLinkChecker(lc LinkChecker) *Provisioner {
	p.links = lc
	return p
}

// Run processes specs strictly in document order and returns the registry.
func (p *Provisioner) Run(specs []config.NetworkSpec) Registry {
	reg := make(Registry, 0, len(specs))

	for _, spec := range specs {
		if spec.Name == "" {
			p.log.Error("skipping network with no name")
			continue
		}
		if spec.Type == "" {
			p.log.Error("skipping network with no type", "network", spec.Name)
			continue
		}
		if err := validation.ValidateNetworkName(spec.Name); err != nil {
			p.log.Error("skipping network with invalid name", "network", validation.SanitizeString(spec.Name), "error", err)
			continue
		}

		existing, err := p.runtime.NetworkInfo(spec.Name)
		if err == nil {
			// Already present: no create, but it still participates in
			// the policy pass.
			p.log.Info("network already exists", "network", spec.Name, "type", spec.Type)
			reg = append(reg, Entry{Spec: spec, Created: false, ID: existing.ID})
			continue
		}
		if !runtime.IsNotFound(err) {
			// The create call below is the authority; an inspect hiccup
			// is treated as absence.
			p.log.Debug("network inspect failed, assuming absent", "network", spec.Name, "error", err)
		}

		if p.DiscoverOnly {
			p.log.Warn("network not present in runtime, not registered", "network", spec.Name)
			continue
		}

		if err := spec.ValidateCreate(); err != nil {
			p.log.Error("invalid network spec", "network", spec.Name, "error", err)
			continue
		}
		p.checkParentLink(spec)

		opts, err := buildCreateOptions(spec)
		if err != nil {
			p.log.Error("cannot build create request", "network", spec.Name, "error", err)
			continue
		}

		created, err := p.runtime.CreateNetwork(opts)
		if err != nil {
			// Presumed not to exist for the policy pass.
			p.log.Error("network creation failed", "network", spec.Name, "error", err)
			continue
		}
		p.log.Info("network created", "network", spec.Name, "type", spec.Type)
		reg = append(reg, Entry{Spec: spec, Created: true, ID: created.ID})
	}

	return reg
}

// checkParentLink warns when a macvlan/ipvlan parent interface is not
// visible on the host. Advisory only: the create call remains the
// authority on whether the parent is usable.
func (p *Provisioner) checkParentLink(spec config.NetworkSpec) {
	if spec.ParentInterface == "" {
		return
	}
	if spec.Type != config.TypeMacvlan && spec.Type != config.TypeIPvlan {
		return
	}
	exists, err := p.links.LinkExists(spec.ParentInterface)
	if err != nil {
		p.log.Debug("cannot check parent interface", "interface", spec.ParentInterface, "error", err)
		return
	}
	if !exists {
		p.log.Warn("parent interface not found on host", "network", spec.Name, "interface", spec.ParentInterface)
	}
}
