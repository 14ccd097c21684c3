// Package ports defines the contracts between the trust-evaluation core and
// the transports that consume it.
package ports

import "github.com/sufield/trustgate/internal/core/domain"

// TrustPolicy decides, for one TLS handshake, whether the presented
// certificate chain and intended hostname should be trusted.
//
// Evaluate is total: every call terminates in exactly one Decision and never
// returns an error — an untrusted peer is an expected outcome, not a fault.
// Implementations must be pure functions of their inputs and their own
// immutable configuration (no I/O, no mutation of shared state) so that many
// simultaneous handshakes can evaluate concurrently without coordination.
//
// Which policy is active is a process-wide choice made once at startup;
// callers must not swap policies per request.
type TrustPolicy interface {
	Evaluate(chain domain.ServerTrustChain, host domain.Hostname) domain.Decision
}

// PinReplacer is implemented by policies whose pin set can be reloaded at
// runtime. Replacement must install a whole new snapshot atomically; in-place
// mutation of a live pin set is never permitted.
type PinReplacer interface {
	ReplacePins(pins *domain.PinSet)
}
