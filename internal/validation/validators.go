package validation

import (
	"fmt"
	"net"
	"regexp"
	"strings"
)

var (
	// Valid interface name: alphanumeric, dash, underscore, dot (for VLANs), max 15 chars
	interfaceNameRegex = regexp.MustCompile(`^[a-zA-Z0-9_.-]{1,15}$`)

	// Valid network name: alphanumeric, dash, underscore, dot
	networkNameRegex = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

	// Dangerous characters that should never appear in identifiers
	dangerousChars = []string{";", "|", "&", "$", "`", "(", ")", "<", ">", "\\", "\"", "'", "\n", "\r"}
)

// ValidateInterfaceName validates a host network interface name.
func ValidateInterfaceName(name string) error {
	if name == "" {
		return fmt.Errorf("interface name cannot be empty")
	}

	if len(name) > 15 {
		return fmt.Errorf("interface name too long (max 15 characters): %s", name)
	}

	if !interfaceNameRegex.MatchString(name) {
		return fmt.Errorf("invalid interface name: %s (must be alphanumeric with -_.)", name)
	}

	for _, char := range dangerousChars {
		if strings.Contains(name, char) {
			return fmt.Errorf("interface name contains dangerous character: %s", char)
		}
	}

	return nil
}

// ValidateNetworkName validates a container network name.
func ValidateNetworkName(name string) error {
	if name == "" {
		return fmt.Errorf("network name cannot be empty")
	}

	if len(name) > 255 {
		return fmt.Errorf("network name too long (max 255 characters)")
	}

	if !networkNameRegex.MatchString(name) {
		return fmt.Errorf("invalid network name: %s (must be alphanumeric with -_.)", name)
	}

	for _, char := range dangerousChars {
		if strings.Contains(name, char) {
			return fmt.Errorf("network name contains dangerous character: %s", char)
		}
	}

	return nil
}

// ValidateCIDR validates a CIDR range.
func ValidateCIDR(s string) error {
	if s == "" {
		return fmt.Errorf("CIDR cannot be empty")
	}
	if _, _, err := net.ParseCIDR(s); err != nil {
		return fmt.Errorf("invalid CIDR: %w", err)
	}
	return nil
}

// ValidateIP validates a bare IP address.
func ValidateIP(s string) error {
	if s == "" {
		return fmt.Errorf("IP cannot be empty")
	}
	if net.ParseIP(s) == nil {
		return fmt.Errorf("invalid IP address: %s", s)
	}
	return nil
}

// ValidateAllowlist checks if a value is in an allowed list.
func ValidateAllowlist(value string, allowed []string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("value not in allowlist: %s", value)
}

// SanitizeString removes dangerous characters from a string (for display purposes).
func SanitizeString(s string) string {
	for _, char := range dangerousChars {
		s = strings.ReplaceAll(s, char, "")
	}
	return s
}
