//go:build linux

package firewall

import (
	"testing"

	"github.com/google/nftables/expr"
	"github.com/stretchr/testify/require"
)

func payloadOffsets(exprs []expr.Any) []uint32 {
	var offsets []uint32
	for _, e := range exprs {
		if p, ok := e.(*expr.Payload); ok {
			offsets = append(offsets, p.Offset)
		}
	}
	return offsets
}

func TestAcceptExprsIPv4(t *testing.T) {
	exprs, err := acceptExprs("172.20.0.0/16", "172.25.0.0/24")
	require.NoError(t, err)

	// src offset 12, dst offset 16
	require.Equal(t, []uint32{12, 16}, payloadOffsets(exprs))

	// NFPROTO guard first
	meta, ok := exprs[0].(*expr.Meta)
	require.True(t, ok)
	require.Equal(t, expr.MetaKeyNFPROTO, meta.Key)

	// masked matches for partial prefixes
	bitwise := 0
	for _, e := range exprs {
		if _, ok := e.(*expr.Bitwise); ok {
			bitwise++
		}
	}
	require.Equal(t, 2, bitwise)

	// counter then accept at the tail
	_, ok = exprs[len(exprs)-2].(*expr.Counter)
	require.True(t, ok)
	verdict, ok := exprs[len(exprs)-1].(*expr.Verdict)
	require.True(t, ok)
	require.Equal(t, expr.VerdictAccept, verdict.Kind)
}

func TestAcceptExprsIPv6(t *testing.T) {
	exprs, err := acceptExprs("fd00:1::/64", "fd00:2::/64")
	require.NoError(t, err)

	// src offset 8, dst offset 24
	require.Equal(t, []uint32{8, 24}, payloadOffsets(exprs))
	for _, e := range exprs {
		if p, ok := e.(*expr.Payload); ok {
			require.Equal(t, uint32(16), p.Len)
		}
	}
}

func TestAcceptExprsHostAddressSkipsMask(t *testing.T) {
	exprs, err := acceptExprs("10.0.1.5/32", "10.0.2.9")
	require.NoError(t, err)

	for _, e := range exprs {
		if _, ok := e.(*expr.Bitwise); ok {
			t.Fatal("full-length prefix must not emit a bitwise mask")
		}
	}
}

func TestAcceptExprsMixedFamilies(t *testing.T) {
	_, err := acceptExprs("10.0.1.0/24", "fd00:1::/64")
	require.Error(t, err)
}

func TestAcceptExprsInvalid(t *testing.T) {
	_, err := acceptExprs("garbage", "10.0.2.0/24")
	require.Error(t, err)
	_, err = acceptExprs("10.0.1.0/24", "garbage")
	require.Error(t, err)
}

func TestParseCIDRMasksNetworkAddress(t *testing.T) {
	ipNet, err := parseCIDR("172.20.5.9/16")
	require.NoError(t, err)
	require.Equal(t, "172.20.0.0/16", ipNet.String())
}
