package firewall

import (
	"fmt"

	"grimm.is/floe/internal/policy"
)

// Applier applies rule requests at both enforcement points and reports
// per-pair outcomes.
type Applier interface {
	Apply(reqs []policy.Request) []Result
}

// Result is the outcome of applying one rule request. Each enforcement
// point's insertion is attempted and checked independently; there is no
// rollback of a point that succeeded when the other failed.
type Result struct {
	Request    policy.Request
	ForwardErr error
	RawErr     error
}

// Applied reports whether both enforcement points accepted the rule.
func (r Result) Applied() bool {
	return r.ForwardErr == nil && r.RawErr == nil
}

// Err summarizes the per-point failures, or nil when fully applied.
func (r Result) Err() error {
	switch {
	case r.ForwardErr != nil && r.RawErr != nil:
		return fmt.Errorf("forward chain: %v; raw chain: %v", r.ForwardErr, r.RawErr)
	case r.ForwardErr != nil:
		return fmt.Errorf("forward chain: %w", r.ForwardErr)
	case r.RawErr != nil:
		return fmt.Errorf("raw chain: %w", r.RawErr)
	default:
		return nil
	}
}
