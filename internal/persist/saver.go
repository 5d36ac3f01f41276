// Package persist renders the rules applied in a run as an `nft -f` script
// so the policy can be replayed at boot. Saving is best-effort: any failure
// is reported to the caller as a warning condition, never as a run failure.
package persist

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"

	"grimm.is/floe/internal/firewall"
	"grimm.is/floe/internal/logging"
)

// ScriptName is the file written under the state directory.
const ScriptName = "policy.nft"

// Saver writes the replay script for applied rules.
type Saver struct {
	dir string
	log *logging.Logger
}

// NewSaver creates a Saver writing under stateDir.
func NewSaver(stateDir string, log *logging.Logger) *Saver {
	if log == nil {
		log = logging.Default()
	}
	return &Saver{dir: stateDir, log: log}
}

// Save renders fully-applied results into the replay script and writes it
// atomically (temp file + rename). Pairs that failed at either enforcement
// point are not persisted.
func (s *Saver) Save(results []firewall.Result) error {
	script := renderScript(results)

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("cannot create state dir: %w", err)
	}

	path := filepath.Join(s.dir, ScriptName)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(script), 0644); err != nil {
		return fmt.Errorf("cannot write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("cannot move script into place: %w", err)
	}

	s.log.Info("persisted policy script", "path", path)
	return nil
}

func renderScript(results []firewall.Result) string {
	var b strings.Builder
	b.WriteString("#!/usr/sbin/nft -f\n")
	b.WriteString("# Generated by floe. Replays the last applied segmentation policy.\n\n")

	fmt.Fprintf(&b, "add table inet %s\n", firewall.TableName)
	fmt.Fprintf(&b, "add chain inet %s %s { type filter hook forward priority filter ; }\n",
		firewall.TableName, firewall.ForwardChainName)
	fmt.Fprintf(&b, "add chain inet %s %s { type filter hook prerouting priority raw ; }\n",
		firewall.TableName, firewall.RawChainName)

	for _, res := range results {
		if !res.Applied() {
			continue
		}
		req := res.Request
		match := fmt.Sprintf("%s saddr %s %s daddr %s counter accept",
			addrFamily(req.SourceSubnet), req.SourceSubnet,
			addrFamily(req.TargetSubnet), req.TargetSubnet)
		fmt.Fprintf(&b, "add rule inet %s %s %s comment \"%s -> %s\"\n",
			firewall.TableName, firewall.ForwardChainName, match,
			req.SourceNetwork, req.TargetNetwork)
		fmt.Fprintf(&b, "add rule inet %s %s %s comment \"%s -> %s\"\n",
			firewall.TableName, firewall.RawChainName, match,
			req.SourceNetwork, req.TargetNetwork)
	}

	return b.String()
}

// addrFamily returns the nft address keyword prefix for a CIDR.
func addrFamily(cidr string) string {
	ip, _, err := net.ParseCIDR(cidr)
	if err != nil {
		ip = net.ParseIP(cidr)
	}
	if ip != nil && ip.To4() == nil {
		return "ip6"
	}
	return "ip"
}
