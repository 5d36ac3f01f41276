//go:build !linux

package firewall

import (
	"errors"

	"grimm.is/floe/internal/logging"
	"grimm.is/floe/internal/policy"
)

// NFTApplier is unavailable off Linux; rule application needs nftables.
type NFTApplier struct{}

// NewApplier always fails on non-Linux hosts.
func NewApplier(log *logging.Logger) (*NFTApplier, error) {
	return nil, errors.New("firewall rule application requires linux/nftables")
}

func (a *NFTApplier) Apply(reqs []policy.Request) []Result {
	results := make([]Result, 0, len(reqs))
	err := errors.New("nftables unavailable on this platform")
	for _, req := range reqs {
		results = append(results, Result{Request: req, ForwardErr: err, RawErr: err})
	}
	return results
}
