// Package spiffe adapts the trust-policy contract to mesh deployments where
// the peer presents an X509-SVID instead of a public-CA certificate.
package spiffe

import (
	"fmt"

	"github.com/spiffe/go-spiffe/v2/bundle/x509bundle"
	"github.com/spiffe/go-spiffe/v2/spiffeid"
	"github.com/spiffe/go-spiffe/v2/spiffetls/tlsconfig"
	"github.com/spiffe/go-spiffe/v2/svid/x509svid"

	"github.com/sufield/trustgate/internal/core/domain"
)

// Authorizer validates the verified peer identity. Aliased from go-spiffe so
// callers can use the stock authorizers directly.
type Authorizer = tlsconfig.Authorizer

// AuthorizeMemberOf returns an Authorizer accepting any workload in the given
// trust domain.
func AuthorizeMemberOf(trustDomain string) (Authorizer, error) {
	td, err := spiffeid.TrustDomainFromString(trustDomain)
	if err != nil {
		return nil, fmt.Errorf("invalid trust domain %q: %w", trustDomain, err)
	}
	return tlsconfig.AuthorizeMemberOf(td), nil
}

// AuthorizeID returns an Authorizer accepting exactly one SPIFFE ID.
func AuthorizeID(id string) (Authorizer, error) {
	parsed, err := spiffeid.FromString(id)
	if err != nil {
		return nil, fmt.Errorf("invalid SPIFFE ID %q: %w", id, err)
	}
	return tlsconfig.AuthorizeID(parsed), nil
}

// IdentityPolicy evaluates peers as X509-SVIDs: the chain must verify against
// the trust-domain bundle and the resulting identity must satisfy the
// authorizer. It implements the same contract as the strict and permissive
// variants, so transports do not care which world the peer lives in.
type IdentityPolicy struct {
	bundles    x509bundle.Source
	authorizer Authorizer
}

// NewIdentityPolicy creates an SVID-based policy. A nil authorizer accepts
// any identity the bundle verifies, mirroring tlsconfig.AuthorizeAny.
func NewIdentityPolicy(bundles x509bundle.Source, authorizer Authorizer) (*IdentityPolicy, error) {
	if bundles == nil {
		return nil, fmt.Errorf("bundle source cannot be nil")
	}
	if authorizer == nil {
		authorizer = tlsconfig.AuthorizeAny()
	}
	return &IdentityPolicy{bundles: bundles, authorizer: authorizer}, nil
}

// Evaluate verifies the chain as an X509-SVID. When the hostname is itself a
// spiffe:// identifier it must equal the verified SVID ID; identity failures
// of either kind report as a hostname mismatch.
func (p *IdentityPolicy) Evaluate(chain domain.ServerTrustChain, host domain.Hostname) domain.Decision {
	if chain.IsEmpty() {
		return domain.Rejected(domain.ReasonEmptyChain, "")
	}

	id, verifiedChains, err := x509svid.Verify(chain.Certificates(), p.bundles)
	if err != nil {
		return domain.Rejected(domain.ReasonChainValidationFailed, err.Error())
	}

	if host.IsSPIFFE() {
		expected, err := spiffeid.FromString(host.String())
		if err != nil {
			return domain.Rejected(domain.ReasonHostnameMismatch,
				fmt.Sprintf("expected identity %q is not a valid SPIFFE ID", host))
		}
		if expected != id {
			return domain.Rejected(domain.ReasonHostnameMismatch,
				fmt.Sprintf("peer SVID %q does not match expected identity %q", id, expected))
		}
	}

	if err := p.authorizer(id, verifiedChains); err != nil {
		return domain.Rejected(domain.ReasonHostnameMismatch,
			fmt.Sprintf("peer SVID %q not authorized: %v", id, err))
	}

	return domain.Trusted()
}
