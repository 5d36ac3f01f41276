package firewall

// Names of the nftables objects owned by floe.
const (
	// TableName is the inet table holding both enforcement chains.
	TableName = "floe"

	// ForwardChainName is enforcement point A: a filter chain on the
	// forward hook, evaluated for routed traffic between networks and
	// subject to connection tracking.
	ForwardChainName = "forward"

	// RawChainName is enforcement point B: a filter chain on the
	// prerouting hook at raw priority, evaluated before connection
	// tracking. It admits flows that bypass forward-chain evaluation,
	// e.g. due to macvlan/ipvlan routing.
	RawChainName = "prerouting"
)
