// Package cmd implements the CLI entry points.
package cmd

import (
	"fmt"
	"io"
	"os"

	"grimm.is/floe/internal/brand"
	"grimm.is/floe/internal/config"
	"grimm.is/floe/internal/firewall"
	"grimm.is/floe/internal/logging"
	"grimm.is/floe/internal/persist"
	"grimm.is/floe/internal/policy"
	"grimm.is/floe/internal/provision"
	"grimm.is/floe/internal/runtime"
	"grimm.is/floe/internal/subnet"
)

// Options selects the operating mode for a run.
type Options struct {
	ConfigFile string

	// DiscoverOnly skips network creation; only pre-existing networks are
	// registered and fed to policy derivation.
	DiscoverOnly bool

	// DryRun queries the runtime read-only and prints the rule requests
	// that would be applied, without creating networks or inserting rules.
	DryRun bool

	// Save persists applied rules as a replay script (best-effort).
	Save bool

	// StateDir overrides the state directory for --save.
	StateDir string

	// Out receives dry-run output; defaults to stdout.
	Out io.Writer
}

func (o Options) out() io.Writer {
	if o.Out != nil {
		return o.Out
	}
	return os.Stdout
}

func (o Options) stateDir() string {
	if o.StateDir != "" {
		return o.StateDir
	}
	return brand.GetStateDir()
}

// Summary reports what a run did, for logging and tests.
type Summary struct {
	Registered int
	Created    int
	Requests   int
	Applied    int
	Failed     int
}

// RunApply loads the topology document and runs the full pipeline:
// provision, resolve subnets, derive policy, apply rules. Config and
// runtime availability failures are fatal and happen before any work;
// everything downstream degrades per entry or per pair.
func RunApply(opts Options) error {
	log := logging.Default()

	cfg, err := config.LoadFile(opts.ConfigFile)
	if err != nil {
		return err
	}
	if len(cfg.Networks) == 0 {
		log.Warn("no networks declared in config", "config", opts.ConfigFile)
	}

	rt, err := runtime.Connect()
	if err != nil {
		return err
	}

	var applier firewall.Applier
	if !opts.DryRun {
		a, err := firewall.NewApplier(log.WithComponent("firewall"))
		if err != nil {
			return err
		}
		applier = a
	}

	_, err = runPipeline(rt, applier, cfg, opts, log)
	return err
}

// runPipeline is the collaborator-injected core of RunApply.
func runPipeline(rt runtime.Client, applier firewall.Applier, cfg *config.Config, opts Options, log *logging.Logger) (Summary, error) {
	prov := provision.New(rt, log.WithComponent("provision"))
	prov.DiscoverOnly = opts.DiscoverOnly || opts.DryRun
	registry := prov.Run(cfg.Networks)

	var sum Summary
	sum.Registered = len(registry)
	for _, e := range registry {
		if e.Created {
			sum.Created++
		}
	}

	subnets := subnet.NewResolver(rt, log.WithComponent("subnet")).Resolve()
	reqs := policy.NewEngine(log.WithComponent("policy")).Derive(registry, subnets)
	sum.Requests = len(reqs)

	if opts.DryRun {
		printRequests(opts.out(), reqs)
		return sum, nil
	}

	results := applier.Apply(reqs)
	for _, r := range results {
		if r.Applied() {
			sum.Applied++
		} else {
			sum.Failed++
		}
	}

	log.Info("run complete",
		"registered", sum.Registered,
		"created", sum.Created,
		"rule_requests", sum.Requests,
		"applied", sum.Applied,
		"failed", sum.Failed)

	if opts.Save {
		saver := persist.NewSaver(opts.stateDir(), log.WithComponent("persist"))
		if err := saver.Save(results); err != nil {
			// Best-effort: the run still counts as successful.
			log.Warn("could not persist applied rules", "error", err)
		}
	}

	return sum, nil
}

func printRequests(w io.Writer, reqs []policy.Request) {
	if len(reqs) == 0 {
		fmt.Fprintln(w, "no rule requests derived")
		return
	}
	for _, r := range reqs {
		fmt.Fprintf(w, "allow %s -> %s (%s -> %s)\n",
			r.SourceNetwork, r.TargetNetwork, r.SourceSubnet, r.TargetSubnet)
	}
}
