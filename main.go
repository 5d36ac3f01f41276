package main

import (
	"flag"
	"fmt"
	"os"

	"grimm.is/floe/cmd"
	"grimm.is/floe/internal/brand"
	"grimm.is/floe/internal/logging"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "apply":
		opts, err := parseRunFlags("apply", os.Args[2:])
		if err != nil {
			os.Exit(1)
		}
		if err := cmd.RunApply(opts); err != nil {
			fmt.Fprintf(os.Stderr, "Apply failed: %v\n", err)
			os.Exit(1)
		}

	case "discover":
		// Like apply, but never creates networks: policy is derived for
		// pre-existing networks only.
		opts, err := parseRunFlags("discover", os.Args[2:])
		if err != nil {
			os.Exit(1)
		}
		opts.DiscoverOnly = true
		if err := cmd.RunApply(opts); err != nil {
			fmt.Fprintf(os.Stderr, "Discover failed: %v\n", err)
			os.Exit(1)
		}

	case "show":
		showFlags := flag.NewFlagSet("show", flag.ExitOnError)
		configFile := configFlag(showFlags)
		showFlags.Parse(os.Args[2:])

		if err := cmd.RunShow(*configFile, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Show failed: %v\n", err)
			os.Exit(1)
		}

	case "version":
		fmt.Printf("%s %s (commit %s, built %s)\n", brand.Name, brand.Version, brand.GitCommit, brand.BuildTime)

	case "help", "-h", "--help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func configFlag(fs *flag.FlagSet) *string {
	configFile := fs.String("config", brand.DefaultConfigFile(), "Topology file")
	fs.StringVar(configFile, "c", brand.DefaultConfigFile(), "Topology file (short)")
	return configFile
}

func parseRunFlags(name string, args []string) (cmd.Options, error) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	configFile := configFlag(fs)

	dryRun := fs.Bool("dry-run", false, "Print derived rules without creating networks or inserting rules")
	fs.BoolVar(dryRun, "n", false, "Dry run (short)")

	save := fs.Bool("save", false, "Persist applied rules as an nft replay script")

	verbose := fs.Bool("verbose", false, "Debug logging")
	fs.BoolVar(verbose, "v", false, "Debug logging (short)")

	jsonLog := fs.Bool("json", false, "JSON log output")

	if err := fs.Parse(args); err != nil {
		return cmd.Options{}, err
	}

	logCfg := logging.DefaultConfig()
	if *verbose {
		logCfg.Level = logging.LevelDebug
	}
	logCfg.JSON = *jsonLog
	logging.SetDefault(logging.New(logCfg))

	return cmd.Options{
		ConfigFile: *configFile,
		DryRun:     *dryRun,
		Save:       *save,
	}, nil
}

func printUsage() {
	fmt.Printf(`%s - %s

Usage:
  %s <command> [options]

Commands:
  apply     Provision declared networks and apply segmentation policy
            Options: --config (-c) <file>, --dry-run (-n), --save, --verbose (-v), --json
  discover  Derive and apply policy for pre-existing networks only (no creation)
            Options: same as apply
  show      Display the parsed topology and validation status
            Options: --config (-c) <file>
  version   Show version information
  help      Show this help

Examples:
  %s apply                          # Provision and apply policy
  %s apply -c ./networks.yaml -n    # Preview derived rules
  %s discover --save                # Policy for existing networks, persisted
`, brand.Name, brand.Description, brand.BinaryName, brand.BinaryName, brand.BinaryName, brand.BinaryName)
}
