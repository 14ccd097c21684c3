// Package trustgate provides pluggable TLS trust-validation policies: a
// strict policy for production (standard chain and hostname validation plus
// optional certificate or public-key pinning) and a permissive policy for
// test harnesses talking to fixtures with self-signed certificates.
//
// The active policy is a process-wide choice made once at startup and handed
// to the transport layer; it is never renegotiated per request.
package trustgate

import (
	"github.com/sufield/trustgate/internal/core/domain"
	"github.com/sufield/trustgate/internal/core/ports"
	"github.com/sufield/trustgate/internal/core/services"
)

// Core types, re-exported so consumers never import internal packages.
type (
	// TrustPolicy decides, per handshake, whether a certificate chain and
	// hostname should be trusted.
	TrustPolicy = ports.TrustPolicy

	// Decision is the two-valued outcome of one evaluation.
	Decision = domain.Decision

	// Reason classifies a rejection.
	Reason = domain.Reason

	// ServerTrustChain is the peer's certificate chain, leaf first.
	ServerTrustChain = domain.ServerTrustChain

	// Hostname is the normalized identity the client intended to reach.
	Hostname = domain.Hostname

	// Fingerprint is a SHA-256 digest of a certificate or its public key.
	Fingerprint = domain.Fingerprint

	// PinAlgorithm selects what fingerprints digest.
	PinAlgorithm = domain.PinAlgorithm

	// PinSet is the immutable pinning configuration snapshot.
	PinSet = domain.PinSet

	// StrictPolicy is the production policy variant.
	StrictPolicy = services.StrictPolicy

	// StrictPolicyOption configures a StrictPolicy at construction.
	StrictPolicyOption = services.StrictPolicyOption

	// PermissivePolicy is the validation-bypassing test variant.
	PermissivePolicy = services.PermissivePolicy
)

// Rejection reasons.
const (
	ReasonEmptyChain            = domain.ReasonEmptyChain
	ReasonChainValidationFailed = domain.ReasonChainValidationFailed
	ReasonHostnameMismatch      = domain.ReasonHostnameMismatch
	ReasonPinMismatch           = domain.ReasonPinMismatch
)

// Pin algorithms.
const (
	PinAlgorithmSPKISHA256 = domain.PinAlgorithmSPKISHA256
	PinAlgorithmCertSHA256 = domain.PinAlgorithmCertSHA256
)

// Strict-policy construction.
var (
	// NewStrictPolicy creates the production policy.
	NewStrictPolicy = services.NewStrictPolicy

	// WithRoots overrides the trust store (default: system roots).
	WithRoots = services.WithRoots

	// WithPins installs the pinning configuration.
	WithPins = services.WithPins

	// WithClock overrides the validity-period clock, for tests.
	WithClock = services.WithClock

	// NewPermissivePolicy creates the validation-bypassing policy. Wiring
	// it into production is a configuration error; prefer LoadPolicy,
	// which enforces the test-mode gate.
	NewPermissivePolicy = services.NewPermissivePolicy
)

// Value-object constructors.
var (
	// NewHostname validates and normalizes a hostname.
	NewHostname = domain.NewHostname

	// NewServerTrustChain wraps already-parsed certificates, leaf first.
	NewServerTrustChain = domain.NewServerTrustChain

	// ParseServerTrustChain parses raw DER certificates from a handshake.
	ParseServerTrustChain = domain.ParseServerTrustChain

	// NewPinSet builds a pin set from serialized fingerprints per host.
	NewPinSet = domain.NewPinSet

	// FingerprintOf computes a certificate's fingerprint.
	FingerprintOf = domain.FingerprintOf

	// ParseFingerprint parses the "sha256/<base64>" form.
	ParseFingerprint = domain.ParseFingerprint
)
