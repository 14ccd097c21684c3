package domain

import (
	"fmt"
	"net"
	"strings"
)

// Hostname is the identity the client intended to connect to, normalized for
// matching against certificate SANs: lowercased, trailing dot stripped, no
// port. It is created fresh per handshake and never cached across
// connections.
type Hostname struct {
	value string
}

const maxHostnameLength = 253

const spiffePrefix = "spiffe://"

// NewHostname validates and normalizes a hostname. A failure here is a
// genuine fault in the caller's input, not a trust judgment, so it surfaces
// as an error rather than a Decision.
//
// spiffe:// identifiers are kept verbatim: SPIFFE ID paths are case-sensitive
// and DNS normalization does not apply to them.
func NewHostname(value string) (Hostname, error) {
	name := strings.TrimSpace(value)
	if name == "" {
		return Hostname{}, fmt.Errorf("hostname cannot be empty")
	}
	if strings.ContainsAny(name, " \t\r\n") {
		return Hostname{}, fmt.Errorf("hostname contains whitespace: %q", value)
	}
	if len(name) > maxHostnameLength {
		return Hostname{}, fmt.Errorf("hostname exceeds maximum length of %d characters", maxHostnameLength)
	}

	if strings.HasPrefix(strings.ToLower(name), spiffePrefix) {
		return Hostname{value: name}, nil
	}

	name = strings.ToLower(strings.TrimSuffix(name, "."))
	if strings.Contains(name, ":") && net.ParseIP(name) == nil {
		return Hostname{}, fmt.Errorf("hostname must not include a port: %q", value)
	}

	return Hostname{value: name}, nil
}

// String returns the normalized hostname.
func (h Hostname) String() string {
	return h.value
}

// IsZero reports whether the hostname is the zero value.
func (h Hostname) IsZero() bool {
	return h.value == ""
}

// IsSPIFFE reports whether the hostname is actually a spiffe:// identifier,
// as used by mesh deployments where the peer identity is an X509-SVID rather
// than a DNS name.
func (h Hostname) IsSPIFFE() bool {
	return strings.HasPrefix(strings.ToLower(h.value), spiffePrefix)
}
