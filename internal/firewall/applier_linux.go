//go:build linux

package firewall

import (
	"fmt"

	"github.com/google/nftables"

	"grimm.is/floe/internal/logging"
	"grimm.is/floe/internal/policy"
)

// NFTApplier inserts accept rules for rule requests at both enforcement
// points. Insertion is unconditional — at the head of the chain, with no
// prior existence check — so repeated runs over an unchanged topology
// accumulate duplicate equivalent rules.
type NFTApplier struct {
	conn NFTablesConn
	log  *logging.Logger

	table   *nftables.Table
	forward *nftables.Chain
	raw     *nftables.Chain
}

// NewApplier creates an applier with a live nftables connection.
func NewApplier(log *logging.Logger) (*NFTApplier, error) {
	conn, err := nftables.New()
	if err != nil {
		return nil, fmt.Errorf("failed to open nftables connection: %w", err)
	}
	return NewApplierWithConn(NewRealNFTablesConn(conn), log), nil
}

// NewApplierWithConn creates an applier with an injected connection.
func NewApplierWithConn(conn NFTablesConn, log *logging.Logger) *NFTApplier {
	if log == nil {
		log = logging.Default()
	}
	return &NFTApplier{conn: conn, log: log}
}

// ensureChains upserts the floe table and both enforcement chains.
// AddTable/AddChain are upserts in nftables, so this is safe to repeat.
func (a *NFTApplier) ensureChains() error {
	a.table = a.conn.AddTable(&nftables.Table{
		Family: nftables.TableFamilyINet,
		Name:   TableName,
	})
	a.forward = a.conn.AddChain(&nftables.Chain{
		Name:     ForwardChainName,
		Table:    a.table,
		Type:     nftables.ChainTypeFilter,
		Hooknum:  nftables.ChainHookForward,
		Priority: nftables.ChainPriorityFilter,
	})
	a.raw = a.conn.AddChain(&nftables.Chain{
		Name:     RawChainName,
		Table:    a.table,
		Type:     nftables.ChainTypeFilter,
		Hooknum:  nftables.ChainHookPrerouting,
		Priority: nftables.ChainPriorityRaw,
	})
	if err := a.conn.Flush(); err != nil {
		return fmt.Errorf("failed to ensure table/chains: %w", err)
	}
	return nil
}

// Apply inserts each request at both enforcement points, committing and
// checking each point independently. A pair counts as applied only when
// both points succeed; a half-applied pair is left as is.
func (a *NFTApplier) Apply(reqs []policy.Request) []Result {
	results := make([]Result, 0, len(reqs))
	if len(reqs) == 0 {
		return results
	}

	if err := a.ensureChains(); err != nil {
		a.log.Error("cannot set up enforcement chains", "error", err)
		for _, req := range reqs {
			results = append(results, Result{Request: req, ForwardErr: err, RawErr: err})
		}
		return results
	}

	for _, req := range reqs {
		res := Result{Request: req}
		res.ForwardErr = a.insertAccept(a.forward, req)
		res.RawErr = a.insertAccept(a.raw, req)

		if res.Applied() {
			a.log.Info("rule applied",
				"source", req.SourceNetwork, "target", req.TargetNetwork,
				"source_subnet", req.SourceSubnet, "target_subnet", req.TargetSubnet)
		} else {
			a.log.Error("rule application failed",
				"source", req.SourceNetwork, "target", req.TargetNetwork,
				"error", res.Err())
		}
		results = append(results, res)
	}

	return results
}

// insertAccept builds the src→dst accept rule and commits it to one chain.
func (a *NFTApplier) insertAccept(chain *nftables.Chain, req policy.Request) error {
	exprs, err := acceptExprs(req.SourceSubnet, req.TargetSubnet)
	if err != nil {
		return err
	}
	a.conn.InsertRule(&nftables.Rule{
		Table: a.table,
		Chain: chain,
		Exprs: exprs,
	})
	if err := a.conn.Flush(); err != nil {
		return fmt.Errorf("insert into %s failed: %w", chain.Name, err)
	}
	return nil
}
