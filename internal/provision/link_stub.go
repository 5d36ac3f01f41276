//go:build !linux

package provision

// LinkChecker answers whether a host network interface exists.
type LinkChecker interface {
	LinkExists(name string) (bool, error)
}

// Link inspection is only available on Linux; elsewhere the pre-check is a
// no-op and the runtime's create call decides.
type noopLinkChecker struct{}

func newLinkChecker() LinkChecker {
	return noopLinkChecker{}
}

func (noopLinkChecker) LinkExists(string) (bool, error) {
	return true, nil
}
