//go:build linux

package firewall

import (
	"fmt"
	"net"

	"github.com/google/nftables/expr"
	"golang.org/x/sys/unix"
)

// IP header offsets for payload matching.
const (
	// IPv4 (RFC 791)
	ipv4SrcOffset uint32 = 12
	ipv4DstOffset uint32 = 16
	ipv4AddrLen   uint32 = 4

	// IPv6 (RFC 8200)
	ipv6SrcOffset uint32 = 8
	ipv6DstOffset uint32 = 24
	ipv6AddrLen   uint32 = 16
)

// acceptExprs builds the expression list for one src→dst accept rule:
// an NFPROTO guard (the table is inet, so IPv4 rules must not match IPv6
// packets and vice versa), source and destination CIDR matches, a counter
// and the accept verdict.
func acceptExprs(srcCIDR, dstCIDR string) ([]expr.Any, error) {
	src, err := parseCIDR(srcCIDR)
	if err != nil {
		return nil, fmt.Errorf("source %q: %w", srcCIDR, err)
	}
	dst, err := parseCIDR(dstCIDR)
	if err != nil {
		return nil, fmt.Errorf("target %q: %w", dstCIDR, err)
	}

	srcV6 := src.IP.To4() == nil
	dstV6 := dst.IP.To4() == nil
	if srcV6 != dstV6 {
		return nil, fmt.Errorf("address family mismatch between %s and %s", srcCIDR, dstCIDR)
	}

	proto := byte(unix.NFPROTO_IPV4)
	if srcV6 {
		proto = byte(unix.NFPROTO_IPV6)
	}

	exprs := []expr.Any{
		&expr.Meta{Key: expr.MetaKeyNFPROTO, Register: 1},
		&expr.Cmp{Op: expr.CmpOpEq, Register: 1, Data: []byte{proto}},
	}
	exprs = append(exprs, cidrMatch(src, true)...)
	exprs = append(exprs, cidrMatch(dst, false)...)
	exprs = append(exprs,
		&expr.Counter{},
		&expr.Verdict{Kind: expr.VerdictAccept},
	)
	return exprs, nil
}

// cidrMatch loads the source or destination address from the network
// header, masks it to the prefix, and compares it against the network
// address.
func cidrMatch(ipNet *net.IPNet, isSrc bool) []expr.Any {
	isV6 := ipNet.IP.To4() == nil

	var offset, length uint32
	if isV6 {
		length = ipv6AddrLen
		if isSrc {
			offset = ipv6SrcOffset
		} else {
			offset = ipv6DstOffset
		}
	} else {
		length = ipv4AddrLen
		if isSrc {
			offset = ipv4SrcOffset
		} else {
			offset = ipv4DstOffset
		}
	}

	exprs := []expr.Any{
		&expr.Payload{
			DestRegister: 1,
			Base:         expr.PayloadBaseNetworkHeader,
			Offset:       offset,
			Len:          length,
		},
	}

	ones, bits := ipNet.Mask.Size()
	if ones < bits {
		exprs = append(exprs, &expr.Bitwise{
			SourceRegister: 1,
			DestRegister:   1,
			Len:            length,
			Mask:           ipNet.Mask,
			Xor:            make([]byte, length),
		})
	}

	target := ipNet.IP.Mask(ipNet.Mask)
	if isV6 {
		target = target.To16()
	} else {
		target = target.To4()
	}
	exprs = append(exprs, &expr.Cmp{
		Op:       expr.CmpOpEq,
		Register: 1,
		Data:     target,
	})

	return exprs
}

// parseCIDR parses a CIDR, accepting a bare IP as a host route.
func parseCIDR(s string) (*net.IPNet, error) {
	if _, ipNet, err := net.ParseCIDR(s); err == nil {
		return ipNet, nil
	}
	ip := net.ParseIP(s)
	if ip == nil {
		return nil, fmt.Errorf("not an IP or CIDR")
	}
	if ip4 := ip.To4(); ip4 != nil {
		return &net.IPNet{IP: ip4, Mask: net.CIDRMask(32, 32)}, nil
	}
	return &net.IPNet{IP: ip, Mask: net.CIDRMask(128, 128)}, nil
}
