package spiffe

import (
	"crypto/x509"
	"net/url"
	"testing"

	"github.com/spiffe/go-spiffe/v2/bundle/x509bundle"
	"github.com/spiffe/go-spiffe/v2/spiffeid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sufield/trustgate/internal/certtest"
	"github.com/sufield/trustgate/internal/core/domain"
)

func trustDomain(t *testing.T) spiffeid.TrustDomain {
	t.Helper()
	td, err := spiffeid.TrustDomainFromString("example.org")
	require.NoError(t, err)
	return td
}

func svidChain(t *testing.T, ca *certtest.CA, path string) domain.ServerTrustChain {
	t.Helper()
	uri, err := url.Parse("spiffe://example.org" + path)
	require.NoError(t, err)

	leaf := ca.IssueLeaf(t, certtest.LeafOptions{URIs: []*url.URL{uri}})
	chain, err := domain.NewServerTrustChain([]*x509.Certificate{leaf})
	require.NoError(t, err)
	return chain
}

func mustHostname(t *testing.T, value string) domain.Hostname {
	t.Helper()
	h, err := domain.NewHostname(value)
	require.NoError(t, err)
	return h
}

func TestNewIdentityPolicyValidation(t *testing.T) {
	_, err := NewIdentityPolicy(nil, nil)
	require.Error(t, err)
}

func TestIdentityPolicyTrustsVerifiedSVID(t *testing.T) {
	ca := certtest.NewCA(t, "mesh-root")
	bundle := x509bundle.FromX509Authorities(trustDomain(t), []*x509.Certificate{ca.Cert})

	policy, err := NewIdentityPolicy(bundle, nil)
	require.NoError(t, err)

	decision := policy.Evaluate(svidChain(t, ca, "/payment-service"), mustHostname(t, "spiffe://example.org/payment-service"))
	assert.True(t, decision.IsTrusted(), "verified SVID must be trusted: %s", decision)
}

func TestIdentityPolicyPreservesPathCase(t *testing.T) {
	ca := certtest.NewCA(t, "mesh-root")
	bundle := x509bundle.FromX509Authorities(trustDomain(t), []*x509.Certificate{ca.Cert})

	policy, err := NewIdentityPolicy(bundle, nil)
	require.NoError(t, err)

	// SPIFFE ID paths are case-sensitive; the expected identity must reach
	// the comparison without being case-folded.
	chain := svidChain(t, ca, "/Payment-Service")
	decision := policy.Evaluate(chain, mustHostname(t, "spiffe://example.org/Payment-Service"))
	assert.True(t, decision.IsTrusted(), "mixed-case path must match verbatim: %s", decision)

	decision = policy.Evaluate(chain, mustHostname(t, "spiffe://example.org/payment-service"))
	require.False(t, decision.IsTrusted())
	assert.Equal(t, domain.ReasonHostnameMismatch, decision.Reason())
}

func TestIdentityPolicyRejectsEmptyChain(t *testing.T) {
	ca := certtest.NewCA(t, "mesh-root")
	bundle := x509bundle.FromX509Authorities(trustDomain(t), []*x509.Certificate{ca.Cert})

	policy, err := NewIdentityPolicy(bundle, nil)
	require.NoError(t, err)

	decision := policy.Evaluate(domain.ServerTrustChain{}, mustHostname(t, "spiffe://example.org/payment-service"))
	require.False(t, decision.IsTrusted())
	assert.Equal(t, domain.ReasonEmptyChain, decision.Reason())
}

func TestIdentityPolicyRejectsUnknownAuthority(t *testing.T) {
	ca := certtest.NewCA(t, "mesh-root")
	rogueCA := certtest.NewCA(t, "rogue-root")
	bundle := x509bundle.FromX509Authorities(trustDomain(t), []*x509.Certificate{ca.Cert})

	policy, err := NewIdentityPolicy(bundle, nil)
	require.NoError(t, err)

	decision := policy.Evaluate(svidChain(t, rogueCA, "/payment-service"), mustHostname(t, "spiffe://example.org/payment-service"))
	require.False(t, decision.IsTrusted())
	assert.Equal(t, domain.ReasonChainValidationFailed, decision.Reason())
}

func TestIdentityPolicyRejectsIdentityMismatch(t *testing.T) {
	ca := certtest.NewCA(t, "mesh-root")
	bundle := x509bundle.FromX509Authorities(trustDomain(t), []*x509.Certificate{ca.Cert})

	policy, err := NewIdentityPolicy(bundle, nil)
	require.NoError(t, err)

	decision := policy.Evaluate(svidChain(t, ca, "/billing-service"), mustHostname(t, "spiffe://example.org/payment-service"))
	require.False(t, decision.IsTrusted())
	assert.Equal(t, domain.ReasonHostnameMismatch, decision.Reason())
	assert.Contains(t, decision.Detail(), "billing-service")
}

func TestIdentityPolicyAuthorizer(t *testing.T) {
	ca := certtest.NewCA(t, "mesh-root")
	bundle := x509bundle.FromX509Authorities(trustDomain(t), []*x509.Certificate{ca.Cert})

	t.Run("member of trust domain", func(t *testing.T) {
		authorizer, err := AuthorizeMemberOf("example.org")
		require.NoError(t, err)
		policy, err := NewIdentityPolicy(bundle, authorizer)
		require.NoError(t, err)

		decision := policy.Evaluate(svidChain(t, ca, "/payment-service"), mustHostname(t, "spiffe://example.org/payment-service"))
		assert.True(t, decision.IsTrusted())
	})

	t.Run("exact id refused", func(t *testing.T) {
		authorizer, err := AuthorizeID("spiffe://example.org/billing-service")
		require.NoError(t, err)
		policy, err := NewIdentityPolicy(bundle, authorizer)
		require.NoError(t, err)

		// Hostname is a plain DNS name here, so only the authorizer
		// constrains the identity.
		decision := policy.Evaluate(svidChain(t, ca, "/payment-service"), mustHostname(t, "payments.internal"))
		require.False(t, decision.IsTrusted())
		assert.Equal(t, domain.ReasonHostnameMismatch, decision.Reason())
	})
}

func TestAuthorizerConstructorsValidate(t *testing.T) {
	_, err := AuthorizeMemberOf("not a trust domain")
	require.Error(t, err)

	_, err = AuthorizeID("not-a-spiffe-id")
	require.Error(t, err)
}
