//go:build linux

package provision

import (
	"github.com/vishvananda/netlink"
)

// LinkChecker answers whether a host network interface exists.
type LinkChecker interface {
	LinkExists(name string) (bool, error)
}

type netlinkChecker struct{}

func newLinkChecker() LinkChecker {
	return netlinkChecker{}
}

func (netlinkChecker) LinkExists(name string) (bool, error) {
	if _, err := netlink.LinkByName(name); err != nil {
		if _, notFound := err.(netlink.LinkNotFoundError); notFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
