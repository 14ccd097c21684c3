// Package transport installs a trust policy into the TLS configurations the
// consuming network stack hands to its clients. The transport owns the
// handshake; this package only converts the policy's Decision into the
// accept-or-abort signal crypto/tls expects.
package transport

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"

	"github.com/sufield/trustgate/internal/core/domain"
	"github.com/sufield/trustgate/internal/core/ports"
)

// RejectionError aborts a handshake whose peer the policy rejected. It
// carries the Decision so the transport can log the specific reason while
// reporting a generic failure upward.
type RejectionError struct {
	Hostname string
	Decision domain.Decision
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("peer %q rejected by trust policy: %s", e.Hostname, e.Decision)
}

// ClientTLSConfig builds a tls.Config whose server verification is delegated
// to the given policy. Standard verification is disabled and replaced by the
// VerifyPeerCertificate callback, so the policy is the single place trust is
// decided; the serverName is both the SNI value and the identity the policy
// evaluates against.
func ClientTLSConfig(policy ports.TrustPolicy, serverName string) (*tls.Config, error) {
	if policy == nil {
		return nil, fmt.Errorf("trust policy cannot be nil")
	}

	host, err := domain.NewHostname(serverName)
	if err != nil {
		return nil, fmt.Errorf("invalid server name: %w", err)
	}

	return &tls.Config{
		MinVersion: tls.VersionTLS12,
		ServerName: serverName,

		// Verification is not skipped, it is replaced: the callback below
		// runs on every handshake.
		InsecureSkipVerify:    true,
		VerifyPeerCertificate: verifyFunc(policy, host),
	}, nil
}

func verifyFunc(policy ports.TrustPolicy, host domain.Hostname) func(rawCerts [][]byte, verifiedChains [][]*x509.Certificate) error {
	return func(rawCerts [][]byte, _ [][]*x509.Certificate) error {
		// Unparseable handshake bytes are a genuine fault, surfaced as an
		// error distinct from any trust Decision.
		chain, err := domain.ParseServerTrustChain(rawCerts)
		if err != nil {
			return err
		}

		decision := policy.Evaluate(chain, host)
		if !decision.IsTrusted() {
			return &RejectionError{Hostname: host.String(), Decision: decision}
		}
		return nil
	}
}
