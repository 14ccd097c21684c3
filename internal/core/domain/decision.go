// Package domain holds the value objects of trust evaluation: certificate
// chains, hostnames, fingerprints, pin sets, and the Decision every
// evaluation terminates in.
package domain

import "fmt"

// Reason classifies why an evaluation rejected a peer. It is data on the
// Decision, not an error type: an untrusted certificate is an expected
// outcome, not a fault.
type Reason string

const (
	// ReasonNone is the reason carried by a trusted Decision.
	ReasonNone Reason = ""

	// ReasonEmptyChain means the peer presented no certificates at all.
	ReasonEmptyChain Reason = "no certificate presented"

	// ReasonChainValidationFailed covers expired, revoked, malformed, and
	// untrusted-root failures from standard chain building.
	ReasonChainValidationFailed Reason = "chain validation failed"

	// ReasonHostnameMismatch means the leaf certificate does not identify
	// the host the client intended to reach.
	ReasonHostnameMismatch Reason = "hostname mismatch"

	// ReasonPinMismatch means pins are configured for the host and no
	// certificate in the chain matched any of them.
	ReasonPinMismatch Reason = "pin mismatch"
)

// Decision is the two-valued outcome of a trust evaluation. Every evaluation
// terminates in exactly one Decision; there is no partial or ambiguous state.
// A rejected Decision carries a Reason and an optional detail string for
// diagnostics.
type Decision struct {
	trusted bool
	reason  Reason
	detail  string
}

// Trusted returns the accepting Decision.
func Trusted() Decision {
	return Decision{trusted: true}
}

// Rejected returns a rejecting Decision with the given reason. The detail is
// free-form diagnostic text; it should not be surfaced to untrusted contexts.
func Rejected(reason Reason, detail string) Decision {
	return Decision{reason: reason, detail: detail}
}

// IsTrusted reports whether the peer should be trusted.
func (d Decision) IsTrusted() bool {
	return d.trusted
}

// Reason returns the rejection reason, or ReasonNone for a trusted Decision.
func (d Decision) Reason() Reason {
	return d.reason
}

// Detail returns the diagnostic detail attached to a rejection.
func (d Decision) Detail() string {
	return d.detail
}

// String renders the Decision for logs.
func (d Decision) String() string {
	if d.trusted {
		return "trusted"
	}
	if d.detail == "" {
		return fmt.Sprintf("rejected (%s)", d.reason)
	}
	return fmt.Sprintf("rejected (%s): %s", d.reason, d.detail)
}
