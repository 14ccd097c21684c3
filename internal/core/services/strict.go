// Package services implements the trust-policy variants.
package services

import (
	"crypto/x509"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sufield/trustgate/internal/core/domain"
)

// StrictPolicy is the production trust policy. It performs standard
// chain-of-trust validation against a root pool, hostname validation against
// the leaf's SANs, and an optional pinning check.
//
// The checks short-circuit in that order: pinning is the most expensive step
// and is skipped whenever standard validation has already failed, and each
// rejection carries exactly one reason.
type StrictPolicy struct {
	roots *x509.CertPool
	pins  atomic.Pointer[domain.PinSet]
	now   func() time.Time
}

// StrictPolicyOption configures a StrictPolicy at construction.
type StrictPolicyOption func(*StrictPolicy)

// WithRoots overrides the trust store used for chain validation. The default
// (nil pool) is the platform's system root store.
func WithRoots(roots *x509.CertPool) StrictPolicyOption {
	return func(p *StrictPolicy) {
		p.roots = roots
	}
}

// WithPins installs the pinning configuration. Without it pinning is skipped
// for every host.
func WithPins(pins *domain.PinSet) StrictPolicyOption {
	return func(p *StrictPolicy) {
		if pins != nil {
			p.pins.Store(pins)
		}
	}
}

// WithClock overrides the validity-period clock.
func WithClock(now func() time.Time) StrictPolicyOption {
	return func(p *StrictPolicy) {
		if now != nil {
			p.now = now
		}
	}
}

// NewStrictPolicy creates the production policy.
func NewStrictPolicy(opts ...StrictPolicyOption) *StrictPolicy {
	p := &StrictPolicy{now: time.Now}
	p.pins.Store(domain.EmptyPinSet())
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Evaluate applies chain validation, hostname validation, and the pinning
// check, in order, short-circuiting on the first failure.
func (p *StrictPolicy) Evaluate(chain domain.ServerTrustChain, host domain.Hostname) domain.Decision {
	if chain.IsEmpty() {
		return domain.Rejected(domain.ReasonEmptyChain, "")
	}

	leaf := chain.Leaf()

	intermediates := x509.NewCertPool()
	for _, cert := range chain.Intermediates() {
		intermediates.AddCert(cert)
	}

	// DNSName is left empty so identity matching stays a separate step with
	// its own rejection reason.
	if _, err := leaf.Verify(x509.VerifyOptions{
		Roots:         p.roots,
		Intermediates: intermediates,
		CurrentTime:   p.now(),
		KeyUsages:     []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	}); err != nil {
		return domain.Rejected(domain.ReasonChainValidationFailed, err.Error())
	}

	if !hostnameMatches(leaf, host) {
		return domain.Rejected(domain.ReasonHostnameMismatch,
			fmt.Sprintf("certificate for %q does not match %q", subjectSummary(leaf), host))
	}

	pins := p.pins.Load()
	applicable := pins.ForHost(host)
	if len(applicable) == 0 {
		return domain.Trusted()
	}

	for _, cert := range chain.Certificates() {
		fp, err := domain.FingerprintOf(cert, pins.Algorithm())
		if err != nil {
			continue
		}
		for _, pin := range applicable {
			if fp.Equal(pin) {
				return domain.Trusted()
			}
		}
	}

	return domain.Rejected(domain.ReasonPinMismatch,
		fmt.Sprintf("no certificate in the chain matches the %d pin(s) configured for %q", len(applicable), host))
}

// ReplacePins atomically swaps the pinning configuration. Concurrent
// evaluations see either the old snapshot or the new one, never a mix.
func (p *StrictPolicy) ReplacePins(pins *domain.PinSet) {
	if pins == nil {
		pins = domain.EmptyPinSet()
	}
	p.pins.Store(pins)
}

// Pins returns the current pin snapshot, for diagnostics.
func (p *StrictPolicy) Pins() *domain.PinSet {
	return p.pins.Load()
}

// hostnameMatches applies SAN matching, falling back to the legacy subject
// common name only when the certificate carries no SANs at all.
// x509.VerifyHostname stopped consulting the common name in Go 1.15, but
// SAN-less certificates from legacy issuers are still in circulation.
func hostnameMatches(leaf *x509.Certificate, host domain.Hostname) bool {
	if leaf.VerifyHostname(host.String()) == nil {
		return true
	}
	if len(leaf.DNSNames) > 0 || len(leaf.IPAddresses) > 0 || len(leaf.URIs) > 0 || len(leaf.EmailAddresses) > 0 {
		return false
	}
	return matchNamePattern(leaf.Subject.CommonName, host.String())
}

// matchNamePattern matches a certificate name against a hostname with the
// usual single-label wildcard rule.
func matchNamePattern(pattern, host string) bool {
	pattern = strings.ToLower(strings.TrimSuffix(pattern, "."))
	if pattern == "" {
		return false
	}
	if rest, ok := strings.CutPrefix(pattern, "*."); ok {
		dot := strings.IndexByte(host, '.')
		return dot > 0 && host[dot+1:] == rest
	}
	return pattern == host
}

func subjectSummary(cert *x509.Certificate) string {
	if len(cert.DNSNames) > 0 {
		return fmt.Sprintf("%v", cert.DNSNames)
	}
	return cert.Subject.CommonName
}
