package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"grimm.is/floe/internal/config"
)

// RunShow loads the topology document and prints each declared network
// with its validation status. The runtime is never contacted.
func RunShow(configFile string, out io.Writer) error {
	if out == nil {
		out = os.Stdout
	}

	cfg, err := config.LoadFile(configFile)
	if err != nil {
		return err
	}

	if len(cfg.Networks) == 0 {
		fmt.Fprintln(out, "no networks declared")
		return nil
	}

	for _, spec := range cfg.Networks {
		status := "ok"
		switch {
		case spec.Name == "":
			status = "invalid: missing name"
		case spec.Type == "":
			status = "invalid: missing type"
		default:
			if err := spec.ValidateCreate(); err != nil {
				status = "invalid: " + err.Error()
			}
		}

		name := spec.Name
		if name == "" {
			name = "(unnamed)"
		}

		fmt.Fprintf(out, "%-20s %-8s %-18s %s\n", name, spec.Type, spec.Subnet, status)
		if targets := spec.Targets(); len(targets) > 0 {
			fmt.Fprintf(out, "%-20s allows: %s\n", "", strings.Join(targets, ", "))
		}
	}

	return nil
}
