package provision

import "grimm.is/floe/internal/config"

// Entry is one network confirmed to exist after the provisioning pass.
// The spec (including its adjacency list) is carried through unchanged.
type Entry struct {
	Spec    config.NetworkSpec
	Created bool   // false when the network pre-existed this run
	ID      string // runtime network ID when known
}

// Registry is the ordered set of networks that exist after provisioning.
// It is built once per run, never mutated afterwards, and never persisted.
type Registry []Entry

// Names returns the registered network names in registration order.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for _, e := range r {
		names = append(names, e.Spec.Name)
	}
	return names
}

// Lookup returns the entry for name, if registered.
func (r Registry) Lookup(name string) (Entry, bool) {
	for _, e := range r {
		if e.Spec.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}
