package services

import "github.com/sufield/trustgate/internal/core/domain"

// PermissivePolicy trusts any non-empty chain for any hostname, bypassing
// chain, hostname, and pin checks entirely. It exists so test harnesses can
// connect to fixtures with self-signed or mismatched certificates.
//
// Selecting it is gated at the configuration layer: the loader refuses
// permissive mode unless the test-mode flag is set, so production wiring
// cannot reach this policy silently.
type PermissivePolicy struct{}

// NewPermissivePolicy creates the validation-bypassing policy.
func NewPermissivePolicy() *PermissivePolicy {
	return &PermissivePolicy{}
}

// Evaluate trusts everything except an empty chain. An empty chain is not a
// valid handshake input under any policy.
func (p *PermissivePolicy) Evaluate(chain domain.ServerTrustChain, host domain.Hostname) domain.Decision {
	if chain.IsEmpty() {
		return domain.Rejected(domain.ReasonEmptyChain, "")
	}
	return domain.Trusted()
}
